package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/skills-dossier/internal/config"
	"github.com/jonathan/skills-dossier/internal/db"
	"github.com/jonathan/skills-dossier/internal/llm"
	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/parsing"
	"github.com/jonathan/skills-dossier/internal/server"
	"github.com/jonathan/skills-dossier/internal/server/ratelimit"
)

type configLoader func() (*config.AppConfig, error)

func newServeCmd(load configLoader) *cobra.Command {
	var (
		port    int
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start the HTTP server exposing authentication, profile and CV parsing endpoints.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "Port to listen on (overrides PORT)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply the database schema before serving")
	return cmd
}

func runServe(parent context.Context, cfg *config.AppConfig, migrate bool) error {
	logger.Init(cfg.Logger())

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}
	rateConfig, err := ratelimit.LoadConfig()
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if migrate {
		if err := database.Migrate(ctx); err != nil {
			return err
		}
	}

	orchestrator, closeParser, err := newOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeParser()

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		CORSOrigin:     cfg.CORSOrigin,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		JWT:            jwtConfig,
		Password:       passwordConfig,
		RateLimit:      rateConfig,
	}, database, orchestrator)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}

// newOrchestrator builds the CV parsing orchestrator. Without a credential no
// remote client is created and the orchestrator returns minimal records.
func newOrchestrator(ctx context.Context, cfg *config.AppConfig) (*parsing.Orchestrator, func(), error) {
	parserConfig := cfg.Parser()
	if !parserConfig.Enabled() {
		logger.Warn().Str("provider", parserConfig.Provider).Msg("no CV parser credential configured")
		return parsing.NewOrchestrator(parserConfig, nil), func() {}, nil
	}

	client, err := llm.NewClient(ctx, cfg.LLM())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create CV parser client: %w", err)
	}
	logger.Info().Str("provider", parserConfig.Provider).Str("model", client.Model()).Msg("remote CV parser enabled")
	return parsing.NewOrchestrator(parserConfig, client), func() { _ = client.Close() }, nil
}
