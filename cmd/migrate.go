package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"equipment-tracker/internal/platform/db"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|version]",
	Short:     "Apply or roll back schema migrations",
	Long:      "up applies every pending migration, down rolls back one step, version prints the applied version.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{db.MigrateUp, db.MigrateDown, "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		if args[0] == "version" {
			v, dirty, err := db.MigrationVersion(cfg.DB, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
			return nil
		}
		return db.Migrate(cfg.DB, args[0], log)
	},
}
