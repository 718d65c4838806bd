package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"codex-manager/core/config"
	"codex-manager/core/loader"
	"codex-manager/core/logger"
	"codex-manager/core/middleware/auth"
	"codex-manager/core/middleware/rayid"

	"codex-manager/feature/codex"
	"codex-manager/feature/sources"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the codex manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
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

		// 3. Assemble Sources, Reader and Cache
		srcs, err := buildSources(cfg, logg)
		if err != nil {
			logg.Fatal("Failed to assemble content sources", zap.Error(err))
		}
		reader, dataCache := buildCache(cfg, srcs, logg)

		// 4. Background Maintenance
		if interval := cfg.Cache.MaintenanceInterval(); interval > 0 {
			if err := dataCache.StartMaintenance(interval); err != nil {
				logg.Fatal("Failed to start cache maintenance", zap.Error(err))
			}
			logg.Info("Cache maintenance started", zap.Duration("interval", interval))
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()

		// Register Features
		mgr.Register(codex.NewFeature(dataCache, logg))
		mgr.Register(sources.NewFeature(reader, cfg.Sources.Policy(), logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			// Log error if happened
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Warm the cache before serving traffic
		if err := dataCache.WarmCache(cmd.Context()); err != nil {
			logg.Warn("Cache warm-up failed, serving cold", zap.Error(err))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		dataCache.StopMaintenance()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
