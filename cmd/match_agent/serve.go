package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/talent-match/internal/config"
	"github.com/jonathan/talent-match/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the matching, summary and comparison
endpoints. Authentication is enabled when JWT_SECRET is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to the configured port)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srvCfg := server.Config{
		Port:       cfg.Port,
		RateLimit:  cfg.RateLimit,
		RateBurst:  cfg.RateBurst,
		APIClients: cfg.APIClients,
	}
	if servePort != 0 {
		srvCfg.Port = servePort
	}

	if a.db != nil {
		if serveMigrate {
			if err := a.db.Migrate(ctx); err != nil {
				return err
			}
		}
		srvCfg.Ping = a.db.Ping
	}

	srvCfg.JWT, err = config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}
	if srvCfg.JWT != nil {
		srvCfg.Secrets, err = config.NewSecretConfig()
		if err != nil {
			return fmt.Errorf("failed to load secret config: %w", err)
		}
		if len(srvCfg.APIClients) == 0 {
			a.logger.Warn("authentication enabled but no api_clients configured")
		}
	}

	srv, err := server.New(a.service, srvCfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	a.logger.Info("serving",
		zap.Int("port", srvCfg.Port),
		zap.Bool("auth", srvCfg.JWT != nil),
		zap.Bool("database", a.db != nil),
	)
	return srv.Run(ctx)
}
