package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"affiliate-sync/core/loader"
	"affiliate-sync/core/logger"
	"affiliate-sync/core/middleware/auth"
	"affiliate-sync/core/middleware/rayid"
	"affiliate-sync/feature/affiliate"
	"affiliate-sync/feature/feedback"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP server",
	Long: `Starts the HTTP server with the public vote endpoint and, when an API key
is configured, the protected affiliate admin endpoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := newApp(context.Background(), "")
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer a.close()
		logg := a.logger
		zap.ReplaceGlobals(logg)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// RayID first so every later log line carries it.
		app.Use(rayid.New())
		app.Use(recover.New())
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
		app.Use(cors.New(cors.Config{
			AllowOrigins: a.cfg.Server.Origins(),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + auth.DefaultHeader,
		}))

		public := loader.NewManager()
		public.Register(feedback.NewFeature(a.db, logg))
		if err := public.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		if a.cfg.Server.AdminEnabled() {
			admin := loader.NewManager()
			admin.Register(affiliate.NewFeature(a.service))
			group := app.Group("/admin", auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))
			if err := admin.LoadAll(group); err != nil {
				logg.Fatal("Failed to load admin features", zap.Error(err))
			}
		} else {
			logg.Warn("No API key configured, admin endpoints are disabled")
		}

		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			if err := app.Listen(":" + a.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

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
