package cli

import (
	"fmt"

	"clementus360/focusflow/config"
	"clementus360/focusflow/sqlite"

	"github.com/spf13/cobra"
)

func migrateCmd(load settingsLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the local SQLite schema",
		Long: `Apply pending SQLite migrations to DATABASE_PATH.

The Supabase schema is managed in the Supabase project; see supabase/schema.sql.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := load()
			if err != nil {
				return err
			}
			if settings.Store != config.StoreSQLite {
				return fmt.Errorf("migrate only applies to the %s store (STORE=%s)", config.StoreSQLite, settings.Store)
			}

			db, err := sqlite.Open(settings.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := db.SchemaVersion()
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", settings.DatabasePath, version)
			return nil
		},
	}
}
