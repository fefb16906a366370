package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/tva"
)

func newTVACommand() *cobra.Command {
	var year int
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "tva",
		Short: "Compute the VAT position for a year",
		Args:  cobra.NoArgs,
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

			snap, err := readSnapshot(snapshotPath)
			if err != nil {
				return err
			}

			b := tva.Compute(snap.Invoices, snap.Expenses, e.store.Mouvements(), e.store.Settings(), year, now)
			if b.IsFranchise {
				fmt.Println("Regime franchise en base: pas de TVA a declarer")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MOIS\tCOLLECTEE\tDEDUCTIBLE\tNET")
			for _, m := range b.Monthly {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					m.Label, m.Collectee.StringFixed(2), m.Deductible.StringFixed(2), m.Net.StringFixed(2))
			}
			fmt.Fprintln(w, "\tTRIMESTRES")
			for _, q := range b.Quarterly {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					q.Label, q.Collectee.StringFixed(2), q.Deductible.StringFixed(2), q.Net.StringFixed(2))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\nTVA collectee: %s\n", eur(b.Total.Collectee))
			fmt.Printf("TVA deductible: %s\n", eur(b.Total.Deductible))
			fmt.Printf("TVA nette: %s\n", eur(b.Total.Net))
			if b.NextDeadline != nil {
				fmt.Printf("Prochaine echeance: %s (%s)\n",
					b.NextDeadline.Date.Format("2006-01-02"), b.NextDeadline.Period)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to compute (default: current)")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "JSON snapshot of business records (required)")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}
