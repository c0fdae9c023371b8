package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// errCatalogDirty makes check exit non-zero when problems remain.
var errCatalogDirty = errors.New("catalog integrity check found problems")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Scan the catalog for orphan rows and dangling links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewDatabase(ctx.ensureConfig().Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			integrity := catalog.NewIntegrity(db.DB)
			report, err := integrity.Scan(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			encoded, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(encoded))

			if report.Clean() {
				fmt.Fprintln(out, "Catalog is consistent")
				return nil
			}
			if !repair {
				return errCatalogDirty
			}

			result, err := integrity.Repair(cmd.Context())
			auditService := audit.NewService(auditrepo.NewRepository(db.DB))
			auditService.Record(cliActor, entities.AuditActionRepair, "catalog", "", tasks.DescribeRepair(result), err)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Repaired: %s\n", tasks.DescribeRepair(result))

			// Repair does not touch duplicate slugs.
			after, err := integrity.Scan(cmd.Context())
			if err != nil {
				return err
			}
			if !after.Clean() {
				return errCatalogDirty
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "Remove dangling links and prune orphans")
	return cmd
}
