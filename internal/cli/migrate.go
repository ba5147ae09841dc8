package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, closeDB, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer closeDB()
			printSuccess(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}
