package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgard/lifesync/internal/database"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			db, err := database.Open(a.cfg.Database.Path, a.log)
			if err != nil {
				return err
			}
			database.Close(db, a.log)
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date\n", a.cfg.Database.Path)
			return nil
		},
	}
}
