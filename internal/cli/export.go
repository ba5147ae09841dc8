package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"catalog-service/internal/models"
	"catalog-service/internal/services"
)

func newExportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:       "export <products|services>",
		Short:     "Write every active item of a kind to an XLSX file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"products", "services"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = kind.Plural() + "_export.xlsx"
			}

			store, logger, closeDB, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			svc := services.NewCatalogService(kind, store, nil, nil, logger)
			if err := svc.Export(cmd.Context(), f); err != nil {
				return fmt.Errorf("export %s: %w", kind.Plural(), err)
			}
			printSuccess(cmd.OutOrStdout(), "Exported %s to %s", kind.Plural(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <kind>_export.xlsx)")
	return cmd
}

func parseKind(arg string) (models.ItemKind, error) {
	kind, ok := models.ParseItemKind(arg)
	if !ok {
		return "", fmt.Errorf("unknown kind %q, expected products or services", arg)
	}
	return kind, nil
}
