// Package forecast derives balances, monthly buckets and projections
// from the treasury records. Every function here is a pure derivation
// over an already-fetched snapshot; missing data yields zeros, never
// errors.
package forecast

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
)

// CurrentBalance is the realized cash position: initial balance plus
// paid entrees minus paid sorties, over deduplicated previsions.
func CurrentBalance(previsions []model.Prevision, settings model.Settings) decimal.Decimal {
	balance := settings.InitialBalance
	for _, p := range model.DedupPrevisions(previsions) {
		if p.Status != model.StatusPaye {
			continue
		}
		switch p.Type {
		case model.FlowEntree:
			balance = balance.Add(p.Amount)
		case model.FlowSortie:
			balance = balance.Sub(p.Amount)
		}
	}
	return balance
}

// Bucket is one month of aggregated cash flow.
type Bucket struct {
	Year         int
	Month        time.Month
	Entrees      decimal.Decimal
	Sorties      decimal.Decimal
	CumulBalance decimal.Decimal
	IsCurrent    bool
	IsFuture     bool
}

// MonthlyBuckets aggregates deduplicated previsions of every status into
// monthly totals around now: at most six past months (current included)
// and horizon-dependent future months, never fewer than six buckets in
// total. CumulBalance accumulates strictly left to right from the
// initial balance.
func MonthlyBuckets(previsions []model.Prevision, settings model.Settings, horizonMonths int, now time.Time) []Bucket {
	n := horizonMonths
	if n < 6 {
		n = 6
	}
	past := n
	if past > 6 {
		past = 6
	}
	future := n - past

	base := monthStart(now)
	buckets := make([]Bucket, 0, n)
	for i := past - 1; i >= 0; i-- {
		d := base.AddDate(0, -i, 0)
		buckets = append(buckets, Bucket{
			Year:      d.Year(),
			Month:     d.Month(),
			IsCurrent: i == 0,
		})
	}
	for i := 1; i <= future; i++ {
		d := base.AddDate(0, i, 0)
		buckets = append(buckets, Bucket{
			Year:     d.Year(),
			Month:    d.Month(),
			IsFuture: true,
		})
	}

	for _, p := range model.DedupPrevisions(previsions) {
		for i := range buckets {
			if buckets[i].Year != p.Date.Year() || buckets[i].Month != p.Date.Month() {
				continue
			}
			switch p.Type {
			case model.FlowEntree:
				buckets[i].Entrees = buckets[i].Entrees.Add(p.Amount)
			case model.FlowSortie:
				buckets[i].Sorties = buckets[i].Sorties.Add(p.Amount)
			}
			break
		}
	}

	cumul := settings.InitialBalance
	for i := range buckets {
		cumul = cumul.Add(buckets[i].Entrees).Sub(buckets[i].Sorties)
		buckets[i].CumulBalance = cumul
	}
	return buckets
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// KPIs are the realized/planned mouvement totals shown on the treasury
// dashboard.
type KPIs struct {
	TotalEntrees     decimal.Decimal
	TotalSorties     decimal.Decimal
	EntreesPrevu     decimal.Decimal
	SortiesPrevu     decimal.Decimal
	EntreesThisMonth decimal.Decimal
	SortiesThisMonth decimal.Decimal
	SoldeNet         decimal.Decimal
}

// MouvementKPIs totals deduplicated mouvements by status and side.
// Cancelled mouvements count nowhere.
func MouvementKPIs(mouvements []model.Mouvement, now time.Time) KPIs {
	var k KPIs
	for _, m := range model.DedupMouvements(mouvements) {
		thisMonth := m.Date.Year() == now.Year() && m.Date.Month() == now.Month()
		switch m.Status {
		case model.StatusPaye:
			if m.Type == model.FlowEntree {
				k.TotalEntrees = k.TotalEntrees.Add(m.Amount)
				if thisMonth {
					k.EntreesThisMonth = k.EntreesThisMonth.Add(m.Amount)
				}
			} else {
				k.TotalSorties = k.TotalSorties.Add(m.Amount)
				if thisMonth {
					k.SortiesThisMonth = k.SortiesThisMonth.Add(m.Amount)
				}
			}
		case model.StatusPrevu:
			if m.Type == model.FlowEntree {
				k.EntreesPrevu = k.EntreesPrevu.Add(m.Amount)
			} else {
				k.SortiesPrevu = k.SortiesPrevu.Add(m.Amount)
			}
		}
	}
	k.SoldeNet = k.TotalEntrees.Sub(k.TotalSorties)
	return k
}

// Alert kinds raised by the treasury dashboard.
const (
	AlertNegativeBalance = "negative_balance"
	AlertLargeInflow     = "large_inflow"
)

// largeInflowFloor is the single-invoice amount worth a heads-up.
var largeInflowFloor = decimal.NewFromInt(10000)

// Alert is a dashboard warning.
type Alert struct {
	Kind    string
	Message string
}

// Alerts surfaces dashboard warnings: a projected negative cumulative
// balance in the current or future buckets, and any single unpaid
// invoice of 10 000 or more falling due within seven days.
func Alerts(previsions []model.Prevision, invoices []model.Invoice, settings model.Settings, now time.Time) []Alert {
	var alerts []Alert

	for _, b := range MonthlyBuckets(previsions, settings, 6, now) {
		if (b.IsCurrent || b.IsFuture) && b.CumulBalance.IsNegative() {
			alerts = append(alerts, Alert{
				Kind:    AlertNegativeBalance,
				Message: "Attention : solde negatif prevu. Pensez a relancer vos factures impayees.",
			})
			break
		}
	}

	in7 := now.AddDate(0, 0, 7)
	for _, f := range invoices {
		if f.IsPaid() {
			continue
		}
		due := f.SyncDate()
		if due.Before(now) || due.After(in7) {
			continue
		}
		if f.Remaining().GreaterThanOrEqual(largeInflowFloor) {
			alerts = append(alerts, Alert{
				Kind:    AlertLargeInflow,
				Message: "Encaissement important attendu sous 7 jours : facture " + f.Number,
			})
			break
		}
	}
	return alerts
}
