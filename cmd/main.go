package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/anirec/internal/repositories"
	"github.com/desertthunder/anirec/internal/services"
	"github.com/desertthunder/anirec/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv(shared.ConfigEnv)
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			logger.Fatalf("invalid config %s: %v", configPath, err)
		}
		config = loaded
	}

	db, err := shared.OpenStore(config)
	if err != nil {
		logger.Fatalf("failed to open database %s: %v", config.Database.Path, err)
	}
	defer db.Close()

	credentials := repositories.NewCredentialRepository(db)
	history := repositories.NewSearchHistoryRepository(db)

	api := services.NewAPIService(config.Backend.BaseURL, nil)
	api.SetTokenProvider(credentials)
	api.SetLimiter(services.NewLimiter(config.Backend))
	api.SetLogger(logger)

	runner := NewRunner(RunnerOpts{
		Config:      config,
		ConfigPath:  configPath,
		API:         api,
		Backend:     services.NewAnimeService(api),
		Credentials: credentials,
		History:     history,
		Logger:      logger,
	})

	app := &cli.Command{
		Name:    "anirec",
		Usage:   "Search anime, keep favorites and get recommendations",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			return
		}
		db.Close()
		logger.Fatalf("application error: %v", err)
	}
}
