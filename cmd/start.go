package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"character-manager/core/config"
	"character-manager/core/database"
	"character-manager/core/hub"
	"character-manager/core/loader"
	"character-manager/core/logger"
	"character-manager/core/middleware/auth"
	"character-manager/core/middleware/rayid"
	"character-manager/core/storage"

	"character-manager/feature/character"
	"character-manager/feature/character/models"
	"character-manager/feature/live"
	"character-manager/feature/portrait"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "character-manager/docs/swagger"
)

// @title Character Manager API
// @version 1.0
// @description Real-time character sheet API with room-scoped live updates.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the character manager server",
	Long:  `Starts the HTTP server, the notification hub and all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to the record store. The resource API cannot run without it.
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Database connection failed", zap.Error(err))
		}
		if err := db.AutoMigrate(&models.Character{}, &models.Ability{}, &models.Equipment{}); err != nil {
			logg.Fatal("Schema migration failed", zap.Error(err))
		}

		// 4. Initialize Storage (Optional; portraits disabled on failure)
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Warn("Optional storage client failed, portraits disabled", zap.Error(err))
			store = nil
		}

		// 5. Notification Hub
		notifier := hub.New(cfg.Hub, logg)

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		// Logging Middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// Auth (Protect the REST API; the websocket channel and docs stay open)
		app.Use(auth.New(auth.Config{
			ApiKey:         cfg.Server.ApiKey,
			ExemptPrefixes: []string{"/ws", "/swagger"},
		}))

		// 7. Register Features
		mgr := loader.NewManager()
		mgr.Register(character.NewFeature(db, notifier, logg))
		mgr.Register(live.NewFeature(notifier, logg))
		mgr.Register(portrait.NewFeature(store, cfg.Storage.Bucket, notifier, logg))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
