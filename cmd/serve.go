package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pelusa-v/tidbid/internal/account"
	"github.com/pelusa-v/tidbid/internal/chat"
	"github.com/pelusa-v/tidbid/internal/config"
	"github.com/pelusa-v/tidbid/internal/handlers"
	"github.com/pelusa-v/tidbid/internal/logger"
	"github.com/pelusa-v/tidbid/internal/metrics"
	"github.com/pelusa-v/tidbid/internal/session"
)

const shutdownTimeout = 5 * time.Second

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Listen address, overrides server.listen")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	applyLogLevel(cfg)
	if err := logger.Init(cfg.Log.File); err != nil {
		return err
	}
	defer logger.Close()
	log := logger.Component("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir, err := account.Open(cfg.Directory.DSN,
		account.WithDemoCredentials(cfg.Auth.DemoCredentials),
		account.WithAdmin(cfg.Auth.AdminEmail, cfg.Auth.AdminPassword),
	)
	if err != nil {
		return fmt.Errorf("error opening client directory: %w", err)
	}
	defer dir.Close()

	hub := chat.NewManager()
	go hub.Start(ctx)

	m := metrics.New()
	var h *handlers.Handler
	sessions := session.NewRegistry(cfg,
		session.WithHub(hub),
		session.WithRecorder(m),
		session.WithHooks(session.Hooks{
			Opened: func(string) { m.SessionOpened() },
			Closed: func(id string) {
				m.SessionClosed()
				h.SessionClosed(id)
			},
		}),
	)
	h = handlers.NewHandler(handlers.Deps{
		Config:    cfg,
		Sessions:  sessions,
		Hub:       hub,
		Directory: dir,
		Metrics:   m,
	})
	go sessions.Run(ctx, cfg.Server.SweepInterval)

	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, func(next *config.Config) {
				applyLogLevel(next)
				sessions.Reload(next)
			})
			if err != nil {
				log.Warn("config watch stopped", "path", configPath, "error", err)
			}
		}()
	}

	app := handlers.NewApp()
	h.RegisterRoutes(app)

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.Listen)
		errc <- app.Listen(cfg.Server.Listen)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Warn("shutdown", "error", err)
	}
	sessions.Close()
	return nil
}

// applyLogLevel sets the configured level; --debug always wins.
func applyLogLevel(cfg *config.Config) {
	if debugMode {
		logger.SetDebug(true)
		return
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
}
