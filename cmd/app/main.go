package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/jotter/internal"
	pkgconfig "github.com/starford/jotter/pkg/config"
)

type runner func(ctx context.Context, opts ...internal.Option) error

// loadConfig reads the optional config file and applies flag overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cmd.IsSet("remote") {
		cfg.Remote.URL = cmd.String("remote")
		if err := cfg.Remote.Validate(); err != nil {
			return nil, err
		}
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
		if err := cfg.App.HTTP.Validate(); err != nil {
			return nil, fmt.Errorf("port: %w", err)
		}
	}
	return cfg, nil
}

func action(run runner) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := run(ctx, internal.WithConfig(cfg)); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func main() {
	tuiAction := action(internal.RunTUI)

	cmd := &cli.Command{
		Name:   "jotter",
		Usage:  "Plain-text notes in a directory of .txt files",
		Action: tuiAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "remote",
				Usage:   "URL of a jotter server; the privileged side then runs there",
				Sources: cli.EnvVars("JOTTER_REMOTE_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "tui",
				Usage:  "Edit notes in the terminal (default)",
				Action: tuiAction,
			},
			{
				Name:   "serve",
				Usage:  "Serve the file and menu requests over HTTP",
				Action: action(internal.RunServer),
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "HTTP port, overrides app.http.port",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Expose the notes as MCP tools over stdio",
				Action: action(internal.RunMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
