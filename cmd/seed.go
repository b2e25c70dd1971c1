package cmd

import (
	"fmt"
	"os"

	"character-manager/core/config"
	"character-manager/core/database"
	"character-manager/core/logger"
	"character-manager/feature/character/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedName string

// seedCmd inserts a demo character so a fresh install has something to look at.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a demo character",
	Long:  `Creates a character with the six ability scores and some starter equipment.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			fmt.Printf("Failed to create logger: %v\n", err)
			os.Exit(1)
		}

		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Database connection failed", zap.Error(err))
		}
		if err := db.AutoMigrate(&models.Character{}, &models.Ability{}, &models.Equipment{}); err != nil {
			logg.Fatal("Schema migration failed", zap.Error(err))
		}

		char := models.Character{
			Name:           seedName,
			Race:           "Human",
			CharacterClass: "Fighter",
			Level:          1,
			Abilities: []models.Ability{
				{Name: "STR", Score: 15},
				{Name: "DEX", Score: 13},
				{Name: "CON", Score: 14},
				{Name: "INT", Score: 10},
				{Name: "WIS", Score: 12},
				{Name: "CHA", Score: 8},
			},
			Equipment: []models.Equipment{
				{Name: "Longsword", Quantity: 1},
				{Name: "Torch", Quantity: 5},
				{Name: "Rations", Quantity: 10},
			},
		}
		if err := db.Create(&char).Error; err != nil {
			logg.Fatal("Seed failed", zap.Error(err))
		}

		logg.Info("Seeded character",
			zap.Uint("id", char.ID),
			zap.String("name", char.Name))
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedName, "name", "Tordek", "name of the seeded character")
	RootCmd.AddCommand(seedCmd)
}
