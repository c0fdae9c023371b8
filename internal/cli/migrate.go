package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshelf/internal/database"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.ensureConfig().Database.Path
			db, err := database.NewDatabase(path)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date\n", path)
			return nil
		},
	}
}
