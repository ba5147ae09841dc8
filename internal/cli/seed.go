package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"catalog-service/internal/seed"
)

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load media types, categories and brands",
		Long:  "Loads reference data from a YAML file, or the built-in defaults. Existing rows are left alone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadSeed(file)
			if err != nil {
				return err
			}

			store, logger, closeDB, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			result, err := seed.Apply(cmd.Context(), store, data, logger)
			if err != nil {
				return fmt.Errorf("apply seed data: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Created %d media type(s), %d categor(ies), %d brand(s)",
				result.MediaTypes, result.Categories, result.Brands)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed YAML file (defaults to the built-in data)")
	return cmd
}

func loadSeed(path string) (*seed.Data, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return seed.Load(f)
}
