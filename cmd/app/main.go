package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/inkwell/internal"
	"github.com/starford/inkwell/internal/mcpserver"
	"github.com/starford/inkwell/internal/postservice"
	"github.com/starford/inkwell/internal/seed"
	pkgconfig "github.com/starford/inkwell/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func seedPosts(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(os.Stdout, cfg.App.LogLevel)

	posts := seed.Defaults()
	if path := cmd.String("file"); path != "" {
		if posts, err = seed.LoadFile(path); err != nil {
			return err
		}
	}

	st, err := internal.OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	_, err = seed.Run(ctx, postservice.New(st), posts, logger)
	return err
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the protocol.
	slog.SetDefault(internal.NewLogger(os.Stderr, cfg.App.LogLevel))

	st, err := internal.OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	return mcpserver.New(postservice.New(st)).ServeStdio()
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:   "inkwell",
		Usage:  "Personal blog server with an offline-capable terminal client",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:  "seed",
				Usage: "Insert sample posts when the store is empty",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "YAML file with a top-level posts list (defaults to the built-in samples)",
					},
				},
				Action: seedPosts,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the post tools over MCP stdio",
				Action: serveMCP,
			},
			clientCommand(),
		},
	}
}

func main() {
	cmd := newApp()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
