package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/recurrence"
)

func newPrevisionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prevision",
		Short: "Manage planned cash flows",
	}
	cmd.AddCommand(newPrevisionAddCommand())
	cmd.AddCommand(newPrevisionListCommand())
	cmd.AddCommand(newPrevisionPaidCommand())
	cmd.AddCommand(newPrevisionDeleteCommand())
	return cmd
}

func newPrevisionAddCommand() *cobra.Command {
	var (
		flow       string
		amount     string
		day        string
		category   string
		recurrence string
	)

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Add a planned cash flow",
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

			p, err := e.store.AddPrevision(context.Background(), model.Prevision{
				Type:        model.FlowType(flow),
				Description: args[0],
				Amount:      amt,
				Date:        date,
				Category:    category,
				Recurrence:  model.Recurrence(recurrence),
			})
			if err != nil {
				return err
			}

			fmt.Printf("Added prevision %s: %s %s on %s\n", p.ID, p.Type, eur(p.Amount), p.Date.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVar(&flow, "type", "sortie", "flow direction: entree or sortie")
	cmd.Flags().StringVar(&amount, "amount", "", "amount TTC (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&day, "date", "", "date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&category, "category", "", "category label")
	cmd.Flags().StringVar(&recurrence, "recurrence", "unique", "unique, mensuel, trimestriel or annuel")

	return cmd
}

func newPrevisionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List planned cash flows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTYPE\tMONTANT\tSTATUT\tRECURRENCE\tDESCRIPTION")
			for _, p := range e.store.Previsions() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					p.ID, p.Date.Format("2006-01-02"), p.Type, p.Amount.StringFixed(2),
					p.Status, p.Recurrence, p.Description)
			}
			return w.Flush()
		},
	}
}

func newPrevisionPaidCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paid <id>",
		Short: "Mark a prevision as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			ctx := context.Background()

			p, err := e.store.MarkPrevisionPaid(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Marked %s as paid\n", p.ID)

			// A paid recurring instance immediately rolls the plan forward.
			next, err := recurrence.NewExpander(e.store).EnsureNextAfterPaid(ctx, p.ID, time.Now())
			if err != nil {
				return err
			}
			if next != nil {
				fmt.Printf("Scheduled next instance on %s\n", next.Date.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func newPrevisionDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prevision and its recurring instances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.store.DeletePrevision(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
