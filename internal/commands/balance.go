package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/forecast"
)

func newBalanceCommand() *cobra.Command {
	var horizon int
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance and monthly cash flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			now := time.Now()

			previsions := e.store.Previsions()
			settings := e.store.Settings()

			fmt.Printf("Solde actuel: %s\n\n", eur(forecast.CurrentBalance(previsions, settings)))

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MOIS\tENTREES\tSORTIES\tSOLDE CUMULE")
			for _, b := range forecast.MonthlyBuckets(previsions, settings, horizon, now) {
				marker := ""
				if b.IsCurrent {
					marker = " *"
				}
				fmt.Fprintf(w, "%04d-%02d%s\t%s\t%s\t%s\n",
					b.Year, int(b.Month), marker,
					b.Entrees.StringFixed(2), b.Sorties.StringFixed(2), b.CumulBalance.StringFixed(2))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			var alerts []forecast.Alert
			if snapshotPath != "" {
				snap, err := readSnapshot(snapshotPath)
				if err != nil {
					return err
				}
				alerts = forecast.Alerts(previsions, snap.Invoices, settings, now)
			} else {
				alerts = forecast.Alerts(previsions, nil, settings, now)
			}
			for _, a := range alerts {
				fmt.Printf("\n! %s\n", a.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&horizon, "horizon", 6, "number of months to display")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "business snapshot for invoice alerts")

	return cmd
}

func newProjectionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projection",
		Short: "Project the balance over the next six months",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			proj := forecast.ShortTermProjection(e.store.Previsions(), e.store.Settings(), time.Now())

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MOIS\tENTREES\tSORTIES\tSOLDE\tBASE")
			for _, p := range proj.Points {
				basis := "moyenne"
				if p.IsScheduled {
					basis = "previsions"
				}
				if p.Estimated {
					basis += " (estime)"
				}
				fmt.Fprintf(w, "%04d-%02d\t%s\t%s\t%s\t%s\n",
					p.Year, int(p.Month),
					p.Entrees.StringFixed(2), p.Sorties.StringFixed(2), p.Balance.StringFixed(2), basis)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if proj.FirstNegative >= 0 {
				p := proj.Points[proj.FirstNegative]
				fmt.Printf("\n! Solde negatif prevu en %04d-%02d\n", p.Year, int(p.Month))
			} else if proj.FirstBelowThreshold >= 0 {
				p := proj.Points[proj.FirstBelowThreshold]
				fmt.Printf("\n! Solde sous le seuil d'alerte en %04d-%02d\n", p.Year, int(p.Month))
			}
			return nil
		},
	}
}
