// Package cli holds the bookshelf command tree. Running the binary without a
// subcommand starts the web server.
package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/logging"
)

// BuildInfo is stamped into the binary at build time via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
}

// commandContext loads the configuration once for whichever command runs.
type commandContext struct {
	build        BuildInfo
	databaseFlag string
	logLevelFlag string

	config *config.Config
}

func (c *commandContext) ensureConfig() *config.Config {
	if c.config == nil {
		cfg := config.NewConfig()
		if path := strings.TrimSpace(c.databaseFlag); path != "" {
			cfg.Database.Path = path
		}
		if level := strings.TrimSpace(c.logLevelFlag); level != "" {
			cfg.Log.Level = level
		}
		c.config = cfg
	}
	return c.config
}

// NewRootCommand builds the command tree.
func NewRootCommand(build BuildInfo) *cobra.Command {
	ctx := &commandContext{build: build}
	serve := newServeCommand(ctx)

	rootCmd := &cobra.Command{
		Use:           "bookshelf",
		Short:         "A small catalog of books grouped by topic",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.ensureConfig()
			logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
			return nil
		},
		RunE: serve.RunE,
	}

	rootCmd.PersistentFlags().StringVar(&ctx.databaseFlag, "database", "", "Catalog database path (overrides DATABASE_PATH)")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newSeedCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newHashPasswordCommand(ctx))
	rootCmd.AddCommand(newVersionCommand(ctx))

	return rootCmd
}
