package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/config"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string
	var siret string
	var vatNumber string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new treasury project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, name, siret, vatNumber)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&siret, "siret", "", "SIRET number")
	cmd.Flags().StringVar(&vatNumber, "vat-number", "", "intra-community VAT number")

	return cmd
}

func runInit(dir, name, siret, vatNumber string) error {
	if err := os.MkdirAll(filepath.Join(dir, "exports"), 0o755); err != nil {
		return fmt.Errorf("creating exports directory: %w", err)
	}

	cfg := config.Default(name)
	cfg.Business.SIRET = siret
	cfg.Business.VATNumber = vatNumber
	cfg.Database.Path = filepath.Join(dir, "tresorerie.db")
	if err := config.Save(filepath.Join(dir, "tresorerie.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Create the database file and its schema up front.
	db, err := store.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	db.Close()

	fmt.Printf("Initialized treasury project at %s\n", dir)
	return nil
}
