package forecast

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
)

// historyMonths is how far back the trailing averages look.
const historyMonths = 6

// Point is one projected month.
type Point struct {
	Year        int
	Month       time.Month
	Entrees     decimal.Decimal
	Sorties     decimal.Decimal
	Balance     decimal.Decimal
	IsScheduled bool
	Estimated   bool
}

// Projection is a balance forecast with its warning positions. First*
// fields are point indexes, -1 when the series never crosses.
type Projection struct {
	Points              []Point
	FirstNegative       int
	FirstBelowThreshold int
}

// ShortTermProjection forecasts six months starting with the current
// one. A month with scheduled (prevu) previsions uses their totals;
// otherwise each side falls back to its trailing average over the past
// months that had activity, and sorties fall back further to the total
// of recurring sortie previsions. A month with no basis on either side
// projects zero and is flagged estimated. The balance chain is seeded
// from CurrentBalance.
func ShortTermProjection(previsions []model.Prevision, settings model.Settings, now time.Time) Projection {
	return project(previsions, settings, 6, now)
}

func project(previsions []model.Prevision, settings model.Settings, months int, now time.Time) Projection {
	deduped := model.DedupPrevisions(previsions)
	start := monthStart(now)

	avgEntrees := trailingAverage(deduped, model.FlowEntree, start)
	avgSorties := trailingAverage(deduped, model.FlowSortie, start)
	if avgSorties.IsZero() {
		avgSorties = recurringSortieTotal(deduped)
	}

	balance := CurrentBalance(previsions, settings)
	proj := Projection{FirstNegative: -1, FirstBelowThreshold: -1}
	for i := 0; i < months; i++ {
		d := start.AddDate(0, i, 0)
		point := Point{Year: d.Year(), Month: d.Month()}

		schedE := scheduledTotal(deduped, model.FlowEntree, d)
		schedS := scheduledTotal(deduped, model.FlowSortie, d)
		point.IsScheduled = !schedE.IsZero() || !schedS.IsZero()

		point.Entrees = schedE
		if schedE.IsZero() {
			point.Entrees = avgEntrees
		}
		point.Sorties = schedS
		if schedS.IsZero() {
			point.Sorties = avgSorties
		}
		point.Estimated = !point.IsScheduled && avgEntrees.IsZero() && avgSorties.IsZero()

		balance = balance.Add(point.Entrees).Sub(point.Sorties)
		point.Balance = balance
		if proj.FirstNegative < 0 && balance.IsNegative() {
			proj.FirstNegative = i
		}
		if proj.FirstBelowThreshold < 0 && balance.LessThan(settings.AlertThreshold) {
			proj.FirstBelowThreshold = i
		}
		proj.Points = append(proj.Points, point)
	}
	return proj
}

// scheduledTotal sums the prevu previsions of one side in one month.
func scheduledTotal(previsions []model.Prevision, typ model.FlowType, month time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, p := range previsions {
		if p.Type != typ || p.Status != model.StatusPrevu {
			continue
		}
		if p.Date.Year() == month.Year() && p.Date.Month() == month.Month() {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// trailingAverage averages one side's monthly totals over the months
// before start that had activity. Months with nothing recorded do not
// dilute the average.
func trailingAverage(previsions []model.Prevision, typ model.FlowType, start time.Time) decimal.Decimal {
	sum := decimal.Zero
	active := 0
	for i := 1; i <= historyMonths; i++ {
		d := start.AddDate(0, -i, 0)
		monthTotal := decimal.Zero
		for _, p := range previsions {
			if p.Type != typ {
				continue
			}
			if p.Date.Year() == d.Year() && p.Date.Month() == d.Month() {
				monthTotal = monthTotal.Add(p.Amount)
			}
		}
		if !monthTotal.IsZero() {
			sum = sum.Add(monthTotal)
			active++
		}
	}
	if active == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(active))).Round(2)
}

// recurringSortieTotal is the sortie fallback baseline: one period of
// every recurring sortie family.
func recurringSortieTotal(previsions []model.Prevision) decimal.Decimal {
	total := decimal.Zero
	for _, p := range previsions {
		if p.Type == model.FlowSortie && p.IsRecurrenceRoot() {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// ScenarioParams are the what-if sliders of the twelve-month simulation.
type ScenarioParams struct {
	EntreesAdjPct decimal.Decimal
	SortiesAdjPct decimal.Decimal
	ExtraEntree   decimal.Decimal
	ExtraSortie   decimal.Decimal
}

// Named scenario presets.
const (
	PresetCurrent         = "current"
	PresetOptimiste       = "optimiste"
	PresetPessimiste      = "pessimiste"
	PresetNouveauChantier = "nouveau_chantier"
	PresetCustom          = "custom"
)

var presets = map[string]ScenarioParams{
	PresetCurrent: {},
	PresetOptimiste: {
		EntreesAdjPct: decimal.NewFromInt(20),
		SortiesAdjPct: decimal.NewFromInt(-10),
	},
	PresetPessimiste: {
		EntreesAdjPct: decimal.NewFromInt(-25),
		SortiesAdjPct: decimal.NewFromInt(15),
	},
	PresetNouveauChantier: {
		ExtraEntree: decimal.NewFromInt(15000),
		ExtraSortie: decimal.NewFromInt(5000),
	},
}

// ParamsForPreset returns a named preset's parameters.
func ParamsForPreset(name string) (ScenarioParams, bool) {
	p, ok := presets[name]
	return p, ok
}

// MatchPreset names the preset the parameters correspond to, or
// PresetCustom when any slider sits outside every preset.
func MatchPreset(params ScenarioParams) string {
	for _, name := range []string{PresetCurrent, PresetOptimiste, PresetPessimiste, PresetNouveauChantier} {
		p := presets[name]
		if params.EntreesAdjPct.Equal(p.EntreesAdjPct) &&
			params.SortiesAdjPct.Equal(p.SortiesAdjPct) &&
			params.ExtraEntree.Equal(p.ExtraEntree) &&
			params.ExtraSortie.Equal(p.ExtraSortie) {
			return name
		}
	}
	return PresetCustom
}

// ScenarioSummary compares the scenario series to its baseline.
type ScenarioSummary struct {
	BaselineEnd                 decimal.Decimal
	ScenarioEnd                 decimal.Decimal
	Delta                       decimal.Decimal
	BaselineFirstNegative       int
	ScenarioFirstNegative       int
	BaselineFirstBelowThreshold int
	ScenarioFirstBelowThreshold int
}

// ScenarioResult is a twelve-month what-if simulation.
type ScenarioResult struct {
	Baseline []Point
	Scenario []Point
	Summary  ScenarioSummary
}

// ScenarioProjection simulates twelve months under the given parameters:
// each baseline month is transformed by the percentage sliders and the
// flat monthly extras, then both balance chains run from CurrentBalance.
// Negative balances are a valid outcome, never an error.
func ScenarioProjection(previsions []model.Prevision, settings model.Settings, params ScenarioParams, now time.Time) ScenarioResult {
	baseline := project(previsions, settings, 12, now)

	entreeFactor := one.Add(params.EntreesAdjPct.Div(hundred))
	sortieFactor := one.Add(params.SortiesAdjPct.Div(hundred))

	res := ScenarioResult{
		Baseline: baseline.Points,
		Summary: ScenarioSummary{
			BaselineFirstNegative:       baseline.FirstNegative,
			BaselineFirstBelowThreshold: baseline.FirstBelowThreshold,
			ScenarioFirstNegative:       -1,
			ScenarioFirstBelowThreshold: -1,
		},
	}

	balance := CurrentBalance(previsions, settings)
	for i, base := range baseline.Points {
		point := base
		point.Entrees = base.Entrees.Mul(entreeFactor).Add(params.ExtraEntree).Round(2)
		point.Sorties = base.Sorties.Mul(sortieFactor).Add(params.ExtraSortie).Round(2)
		balance = balance.Add(point.Entrees).Sub(point.Sorties)
		point.Balance = balance
		if res.Summary.ScenarioFirstNegative < 0 && balance.IsNegative() {
			res.Summary.ScenarioFirstNegative = i
		}
		if res.Summary.ScenarioFirstBelowThreshold < 0 && balance.LessThan(settings.AlertThreshold) {
			res.Summary.ScenarioFirstBelowThreshold = i
		}
		res.Scenario = append(res.Scenario, point)
	}

	if n := len(baseline.Points); n > 0 {
		res.Summary.BaselineEnd = baseline.Points[n-1].Balance
		res.Summary.ScenarioEnd = res.Scenario[n-1].Balance
		res.Summary.Delta = res.Summary.ScenarioEnd.Sub(res.Summary.BaselineEnd)
	}
	return res
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)
