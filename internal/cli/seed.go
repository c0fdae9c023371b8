package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/seed"
)

// cliActor is the audit actor for writes made from the command line.
const cliActor = "cli"

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Prefill the catalog from a JSON file",
		Long: "Adds every entry of the seed file whose ISBN is not in the catalog yet.\n" +
			"Running it twice adds nothing the second time.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := seed.Load(file)
			if err != nil {
				return err
			}

			db, err := database.NewDatabase(ctx.ensureConfig().Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			reader := catalog.NewReader(db.DB)
			result, err := seed.Run(cmd.Context(), catalog.NewMaintainer(db.DB), reader, entries)

			auditService := audit.NewService(auditrepo.NewRepository(db.DB))
			details := fmt.Sprintf("file=%s added=%d skipped=%d", file, result.Added, result.Skipped)
			auditService.Record(cliActor, entities.AuditActionSeed, "catalog", "", details, err)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Seed")
			fmt.Fprintln(out, "====")
			fmt.Fprintf(out, "Entries: %d\n", len(entries))
			fmt.Fprintf(out, "Added:   %d\n", result.Added)
			fmt.Fprintf(out, "Skipped: %d\n", result.Skipped)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", config.DefaultSeedPath, "Seed file path")
	return cmd
}
