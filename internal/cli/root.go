// Package cli implements catalogctl, the admin command line for the catalog
// database.
package cli

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"catalog-service/internal/config"
	"catalog-service/internal/repository"
)

// NewRootCommand builds catalogctl with every subcommand attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Admin tool for the catalog database",
		Long:          "catalogctl migrates the catalog schema, loads reference data and exports catalog items",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	root.AddCommand(newMigrateCommand(), newSeedCommand(), newExportCommand())
	return root
}

// Execute runs the CLI
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), "%v", err)
		return err
	}
	return nil
}

// openStore connects with the same settings as the server and migrates.
func openStore(cmd *cobra.Command) (*repository.Store, *logrus.Logger, func(), error) {
	cfg := config.Load()
	logger := config.NewLogger(cfg)
	logger.SetOutput(cmd.ErrOrStderr())

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return repository.NewStore(db), logger, closer(db), nil
}

func closer(db *gorm.DB) func() {
	return func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func printSuccess(w io.Writer, msg string, args ...interface{}) {
	fmt.Fprintf(w, "✓ "+msg+"\n", args...)
}

func printError(w io.Writer, msg string, args ...interface{}) {
	fmt.Fprintf(w, "✗ "+msg+"\n", args...)
}
