package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/ghdoc/internal/adapter/driven/github"
	"github.com/ericfisherdev/ghdoc/internal/config"
)

// Build information. Populated at build-time via -ldflags flag.
var version = "dev"

func main() {
	var cfg *config.Config

	app := &cli.Command{
		Name:      "ghdoc",
		Usage:     "Edit GitHub issues and pull requests as plain text documents",
		UsageText: "ghdoc [global options] command [command options]",
		Description: `ghdoc renders an issue or pull request, with its comments, reviews and
review threads, onto a line-addressed text surface and saves local edits back
to GitHub.

Configuration is read from GHDOC_* environment variables, on top of the
optional YAML file named by --config.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML config file",
				Sources: cli.EnvVars("GHDOC_CONFIG"),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if path := c.String("config"); path != "" {
				if err := os.Setenv("GHDOC_CONFIG", path); err != nil {
					return ctx, err
				}
			}

			loaded, err := config.Load()
			if err != nil {
				return ctx, err
			}
			cfg = loaded

			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "serve",
				Usage:     "Serve the surface API for a host editor",
				UsageText: "ghdoc serve",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return runServe(ctx, cfg)
				},
			},
			{
				Name:      "render",
				Usage:     "Print the rendered document of one surface",
				UsageText: "ghdoc render [--state] [--decorations] <scheme>://<owner>/<repo>/<issue|pull>/<number>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "state", Usage: "print the persisted-state JSON instead of the text"},
					&cli.BoolFlag{Name: "decorations", Usage: "print extents and folds as JSON after the text"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return runRender(ctx, cfg, c)
				},
			},
			{
				Name:      "healthcheck",
				Usage:     "Exit non-zero unless the local server answers its health endpoint",
				UsageText: "ghdoc healthcheck",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return checkHealth(ctx, cfg.ListenAddr)
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// newGitHubClient creates the GitHub client for the configured host.
func newGitHubClient(cfg *config.Config) (*githubadapter.Client, error) {
	if !cfg.HasGitHubCredentials() {
		slog.Warn("no github token configured, only public repositories can be loaded and saves will fail")
	}

	if cfg.GitHubBaseURL != "" {
		return githubadapter.NewEnterpriseClient(cfg.GitHubToken, cfg.GitHubBaseURL)
	}
	return githubadapter.NewClient(cfg.GitHubToken), nil
}
