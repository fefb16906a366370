package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/forecast"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
)

func newMouvementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mouvement",
		Short: "Manage realized cash transactions",
	}
	cmd.AddCommand(newMouvementAddCommand())
	cmd.AddCommand(newMouvementListCommand())
	cmd.AddCommand(newMouvementPaidCommand())
	cmd.AddCommand(newMouvementCancelCommand())
	return cmd
}

func newMouvementAddCommand() *cobra.Command {
	var (
		flow            string
		amount          string
		day             string
		category        string
		vatRate         string
		notes           string
		autoliquidation bool
	)

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Record a cash transaction with VAT decomposition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			date, err := parseDay(day)
			if err != nil {
				return err
			}
			rate, err := parseAmount(vatRate)
			if err != nil {
				return err
			}

			m, err := e.store.AddMouvement(context.Background(), model.Mouvement{
				Type:            model.FlowType(flow),
				Description:     args[0],
				Amount:          amt,
				VATRate:         rate,
				Autoliquidation: autoliquidation,
				Date:            date,
				Category:        category,
				Notes:           notes,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Added mouvement %s: %s TTC (%s HT, %s TVA)\n",
				m.ID, eur(m.Amount), m.AmountHT.StringFixed(2), m.AmountVAT.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&flow, "type", "sortie", "flow direction: entree or sortie")
	cmd.Flags().StringVar(&amount, "amount", "", "amount TTC (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&day, "date", "", "date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&category, "category", "", "category label")
	cmd.Flags().StringVar(&vatRate, "vat-rate", "20", "VAT rate percent")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form note")
	cmd.Flags().BoolVar(&autoliquidation, "autoliquidation", false, "reverse-charge VAT")

	return cmd
}

func newMouvementListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cash transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			mouvements := e.store.Mouvements()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTYPE\tTTC\tHT\tTVA\tSTATUT\tDESCRIPTION")
			for _, m := range mouvements {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					m.ID, m.Date.Format("2006-01-02"), m.Type, m.Amount.StringFixed(2),
					m.AmountHT.StringFixed(2), m.AmountVAT.StringFixed(2), m.Status, m.Description)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			k := forecast.MouvementKPIs(mouvements, time.Now())
			fmt.Printf("\nEncaisse: %s (ce mois %s)  Decaisse: %s (ce mois %s)  Net: %s\n",
				k.TotalEntrees.StringFixed(2), k.EntreesThisMonth.StringFixed(2),
				k.TotalSorties.StringFixed(2), k.SortiesThisMonth.StringFixed(2),
				eur(k.SoldeNet))
			return nil
		},
	}
}

func newMouvementPaidCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paid <id>",
		Short: "Mark a mouvement as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			m, err := e.store.MarkMouvementPaid(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Marked %s as paid\n", m.ID)
			return nil
		},
	}
}

func newMouvementCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a mouvement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			m, err := e.store.CancelMouvement(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Cancelled %s\n", m.ID)
			return nil
		},
	}
}
