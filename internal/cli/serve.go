package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshelf/internal/entrypoint"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(cmd.Context(), ctx.ensureConfig(), ctx.build.Version)
		},
	}
}
