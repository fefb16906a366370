package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/forecast"
)

func newScenarioCommand() *cobra.Command {
	var (
		preset      string
		entreesAdj  string
		sortiesAdj  string
		extraEntree string
		extraSortie string
	)

	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Simulate twelve months under what-if parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			var params forecast.ScenarioParams
			if preset != "" {
				p, ok := forecast.ParamsForPreset(preset)
				if !ok {
					return fmt.Errorf("unknown preset %q", preset)
				}
				params = p
			} else {
				if params.EntreesAdjPct, err = parseAmount(entreesAdj); err != nil {
					return err
				}
				if params.SortiesAdjPct, err = parseAmount(sortiesAdj); err != nil {
					return err
				}
				if params.ExtraEntree, err = parseAmount(extraEntree); err != nil {
					return err
				}
				if params.ExtraSortie, err = parseAmount(extraSortie); err != nil {
					return err
				}
			}

			res := forecast.ScenarioProjection(e.store.Previsions(), e.store.Settings(), params, time.Now())

			fmt.Printf("Scenario: %s\n\n", forecast.MatchPreset(params))
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MOIS\tBASE ENTREES\tBASE SORTIES\tBASE SOLDE\tSCENARIO ENTREES\tSCENARIO SORTIES\tSCENARIO SOLDE")
			for i := range res.Baseline {
				b, s := res.Baseline[i], res.Scenario[i]
				fmt.Fprintf(w, "%04d-%02d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					b.Year, int(b.Month),
					b.Entrees.StringFixed(2), b.Sorties.StringFixed(2), b.Balance.StringFixed(2),
					s.Entrees.StringFixed(2), s.Sorties.StringFixed(2), s.Balance.StringFixed(2))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			sum := res.Summary
			fmt.Printf("\nSolde final: %s (base %s, delta %s)\n",
				eur(sum.ScenarioEnd), sum.BaselineEnd.StringFixed(2), sum.Delta.StringFixed(2))
			if sum.ScenarioFirstNegative >= 0 {
				p := res.Scenario[sum.ScenarioFirstNegative]
				fmt.Printf("! Solde negatif en %04d-%02d\n", p.Year, int(p.Month))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "current, optimiste, pessimiste or nouveau_chantier")
	cmd.Flags().StringVar(&entreesAdj, "entrees-adj", "0", "entrees adjustment percent")
	cmd.Flags().StringVar(&sortiesAdj, "sorties-adj", "0", "sorties adjustment percent")
	cmd.Flags().StringVar(&extraEntree, "extra-entree", "0", "flat monthly extra entree")
	cmd.Flags().StringVar(&extraSortie, "extra-sortie", "0", "flat monthly extra sortie")

	return cmd
}
