package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/export"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/tva"
)

func newExportCommand() *cobra.Command {
	var year int
	var snapshotPath string
	var out string

	cmd := &cobra.Command{
		Use:   "export <ca3|ventes|achats|reglements|mouvements|fec>",
		Short: "Write an accounting CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			now := time.Now()
			if year == 0 {
				year = now.Year()
			}

			var snap model.Snapshot
			if snapshotPath != "" {
				if snap, err = readSnapshot(snapshotPath); err != nil {
					return err
				}
			} else if args[0] != "mouvements" {
				return fmt.Errorf("export %s requires --snapshot", args[0])
			}
			company := export.Company{
				Name:      e.cfg.Business.Name,
				SIRET:     e.cfg.Business.SIRET,
				VATNumber: e.cfg.Business.VATNumber,
			}

			var rows [][]string
			switch args[0] {
			case "ca3":
				b := tva.Compute(snap.Invoices, snap.Expenses, e.store.Mouvements(), e.store.Settings(), year, now)
				rows = export.CA3Rows(b.CA3, company, year)
				if out == "" {
					out = fmt.Sprintf("declaration_tva_ca3_%d.csv", year)
				}
			case "ventes":
				rows = export.SalesJournalRows(snap.Invoices, year)
				if out == "" {
					out = fmt.Sprintf("journal_ventes_%d.csv", year)
				}
			case "achats":
				rows = export.PurchaseJournalRows(snap.Expenses, year)
				if out == "" {
					out = fmt.Sprintf("journal_achats_%d.csv", year)
				}
			case "reglements":
				rows = export.ReglementRows(snap.Payments, snap.Invoices, year)
				if out == "" {
					out = fmt.Sprintf("reglements_%d.csv", year)
				}
			case "mouvements":
				rows = export.MouvementRows(e.store.Mouvements(), year)
				if out == "" {
					out = fmt.Sprintf("tresorerie_mouvements_%d.csv", year)
				}
			case "fec":
				rows = export.FECRows(snap.Invoices, snap.Expenses, year)
				if out == "" {
					out = export.FECFilename(company.SIRET, year)
				}
			default:
				return fmt.Errorf("unknown export %q", args[0])
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			defer f.Close()
			if err := export.WriteCSV(f, rows); err != nil {
				return err
			}

			fmt.Printf("Wrote %s (%d rows)\n", out, len(rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to export (default: current)")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "JSON snapshot of business records")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: conventional name)")

	return cmd
}
