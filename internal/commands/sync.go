package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/recurrence"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/syncer"
)

func newSyncCommand() *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Materialize external business records into the treasury",
		Long: `Reads a snapshot of invoices, expenses, accepted quotes and payments
and materializes each record exactly once: invoices and quote remainders
become entree previsions, expenses become sortie previsions, payments
become paid mouvements. Re-running on an unchanged snapshot is a no-op.
The batch recurrence pass then fills the next three months of recurring
previsions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			ctx := context.Background()

			snap, err := readSnapshot(snapshotPath)
			if err != nil {
				return err
			}

			res, err := syncer.NewEngine(e.store).SyncNow(ctx, snap)
			if err != nil {
				return err
			}

			created, err := recurrence.NewExpander(e.store).ExpandAll(ctx, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("Synced %d records (%d invoices, %d quotes, %d expenses, %d payments), %d skipped\n",
				res.Total(), res.Invoices, res.Quotes, res.Expenses, res.Payments, res.Skipped)
			if created > 0 {
				fmt.Printf("Scheduled %d recurring instances\n", created)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "JSON snapshot of business records (required)")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}
