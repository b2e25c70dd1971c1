package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"character-manager/client"
	"character-manager/core/config"
	"character-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchServer string
	watchCoarse bool
)

// watchCmd attaches a live view session to a character and prints every
// reconciled snapshot. Useful for demos and for eyeballing the event flow.
var watchCmd = &cobra.Command{
	Use:   "watch [character id]",
	Short: "Follow a character's live updates",
	Long: `Joins a character's room and prints the sheet after every change.
With --coarse the session re-fetches on any signal instead of patching.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var characterID uint
		if _, err := fmt.Sscanf(args[0], "%d", &characterID); err != nil || characterID == 0 {
			return fmt.Errorf("invalid character id %q", args[0])
		}

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logg, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: "console"})
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		base := watchServer
		if base == "" {
			base = "http://localhost:" + cfg.Server.Port
		}
		wsURL := strings.Replace(base, "http", "ws", 1) + "/ws"

		ctx := cmd.Context()
		sock, err := client.Dial(ctx, wsURL, logg)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
		}

		var rec client.Reconciler = client.PatchReconciler{}
		if watchCoarse {
			rec = client.CoarseReconciler{}
		}

		ctrl := client.NewController(characterID, client.NewAPI(base), sock, rec, logg)
		ctrl.OnChange = printSheet

		if err := ctrl.Start(ctx); err != nil {
			return fmt.Errorf("failed to load character %d: %w", characterID, err)
		}
		if snap := ctrl.Snapshot(); snap != nil {
			printSheet(*snap)
		}
		logg.Info("Watching character", zap.Uint("id", characterID), zap.Bool("coarse", watchCoarse))

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		ctrl.Stop()
		return nil
	},
}

func printSheet(char client.Character) {
	fmt.Printf("\n%s — Level %d %s %s\n", char.Name, char.Level, char.Race, char.CharacterClass)
	fmt.Println("Abilities:")
	for _, a := range char.Abilities {
		fmt.Printf("  %s: %d\n", a.Name, a.Score)
	}
	fmt.Println("Equipment:")
	for _, e := range char.Equipment {
		fmt.Printf("  %s x%d\n", e.Name, e.Quantity)
	}
}

func init() {
	watchCmd.Flags().StringVar(&watchServer, "server", "", "server base URL (default http://localhost:<port>)")
	watchCmd.Flags().BoolVar(&watchCoarse, "coarse", false, "re-fetch on every signal instead of patching")
	RootCmd.AddCommand(watchCmd)
}
