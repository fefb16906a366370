// Package tva computes the French VAT position of the business:
// monthly, quarterly and per-rate breakdowns, filing deadlines and the
// CA3 declaration lines.
package tva

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
)

var monthNames = [12]string{"Jan", "Fev", "Mar", "Avr", "Mai", "Jun", "Jul", "Aou", "Sep", "Oct", "Nov", "Dec"}

// Month is one month of collected and deductible VAT.
type Month struct {
	Label      string
	Collectee  decimal.Decimal
	Deductible decimal.Decimal
	Net        decimal.Decimal
}

// Quarter aggregates three calendar months. Quarters are fixed
// (T1 = Jan-Mar) regardless of any fiscal-year setting.
type Quarter struct {
	Label      string
	Collectee  decimal.Decimal
	Deductible decimal.Decimal
	Net        decimal.Decimal
}

// Rate accumulates bases and VAT per rate.
type Rate struct {
	Base           decimal.Decimal
	Collectee      decimal.Decimal
	BaseDeductible decimal.Decimal
	Deductible     decimal.Decimal
}

// Totals is the year-wide position.
type Totals struct {
	Collectee  decimal.Decimal
	Deductible decimal.Decimal
	Net        decimal.Decimal
}

// Deadline is the next VAT filing date.
type Deadline struct {
	Date   time.Time
	Label  string
	Period string
}

// CA3 carries the declaration lines of the periodic VAT return.
type CA3 struct {
	Ligne01 decimal.Decimal // HT bases at 20 / 10 / 5.5%
	Ligne08 decimal.Decimal // collected at 20%
	Ligne09 decimal.Decimal // collected at 10%
	Ligne9B decimal.Decimal // collected at 5.5%
	Ligne16 decimal.Decimal // total collected
	Ligne19 decimal.Decimal // total deductible
	Ligne23 decimal.Decimal // total deductible
	Ligne28 decimal.Decimal // net: positive owed, negative credit
}

// Breakdown is the full VAT report for one year.
type Breakdown struct {
	Monthly      [12]Month
	Quarterly    [4]Quarter
	ByRate       map[string]Rate
	Total        Totals
	NextDeadline *Deadline
	Regime       model.VATRegime
	CA3          CA3
	IsFranchise  bool
}

// acceptedStatuses are the invoice states that owe VAT.
var acceptedStatuses = map[string]bool{
	"accepte": true,
	"signe":   true,
	"payee":   true,
	"paye":    true,
}

// Compute builds the VAT breakdown for year. Under the franchise regime
// no VAT is collected or deductible: the report is all zeros with no
// deadline, whatever the inputs hold.
func Compute(invoices []model.Invoice, expenses []model.Expense, mouvements []model.Mouvement, settings model.Settings, year int, now time.Time) Breakdown {
	b := Breakdown{
		ByRate: make(map[string]Rate),
		Regime: settings.VATRegime,
	}
	for i := range b.Monthly {
		b.Monthly[i].Label = monthNames[i]
	}
	b.Quarterly[0].Label = "T1 (Jan-Mar)"
	b.Quarterly[1].Label = "T2 (Avr-Jun)"
	b.Quarterly[2].Label = "T3 (Jul-Sep)"
	b.Quarterly[3].Label = "T4 (Oct-Dec)"

	if settings.VATRegime == model.RegimeFranchise {
		b.IsFranchise = true
		return b
	}

	for _, f := range invoices {
		if !acceptedStatuses[f.Status] || f.IssueDate.Year() != year {
			continue
		}
		rate := model.RateOrDefault(f.VATRate)
		ht := f.TotalHT
		if ht.IsZero() && !f.TotalTTC.IsZero() {
			ht = f.TotalTTC.Div(one.Add(rate.Div(hundred)))
		}
		vat := f.TotalTTC.Sub(ht)
		if vat.IsPositive() {
			m := int(f.IssueDate.Month()) - 1
			b.Monthly[m].Collectee = b.Monthly[m].Collectee.Add(vat)
		}
		r := b.ByRate[rate.String()]
		r.Base = r.Base.Add(ht)
		r.Collectee = r.Collectee.Add(f.TotalTTC.Sub(ht))
		b.ByRate[rate.String()] = r
	}

	for _, d := range expenses {
		if d.Date.Year() != year {
			continue
		}
		rate := model.RateOrDefault(d.VATRate)
		ht := d.Amount.Div(one.Add(rate.Div(hundred)))
		vat := d.Amount.Sub(ht)
		if vat.IsPositive() {
			m := int(d.Date.Month()) - 1
			b.Monthly[m].Deductible = b.Monthly[m].Deductible.Add(vat)
		}
		r := b.ByRate[rate.String()]
		r.BaseDeductible = r.BaseDeductible.Add(ht)
		r.Deductible = r.Deductible.Add(vat)
		b.ByRate[rate.String()] = r
	}

	for _, m := range mouvements {
		if m.Date.Year() != year || m.Status == model.StatusAnnule {
			continue
		}
		if !m.AmountVAT.IsPositive() {
			continue
		}
		// Synced payments settle invoices already counted above.
		if m.Source == model.SourcePaiement {
			continue
		}
		idx := int(m.Date.Month()) - 1
		if m.Type == model.FlowEntree {
			b.Monthly[idx].Collectee = b.Monthly[idx].Collectee.Add(m.AmountVAT)
		} else {
			b.Monthly[idx].Deductible = b.Monthly[idx].Deductible.Add(m.AmountVAT)
		}
	}

	for i := range b.Monthly {
		b.Monthly[i].Net = b.Monthly[i].Collectee.Sub(b.Monthly[i].Deductible)
		b.Total.Collectee = b.Total.Collectee.Add(b.Monthly[i].Collectee)
		b.Total.Deductible = b.Total.Deductible.Add(b.Monthly[i].Deductible)

		q := i / 3
		b.Quarterly[q].Collectee = b.Quarterly[q].Collectee.Add(b.Monthly[i].Collectee)
		b.Quarterly[q].Deductible = b.Quarterly[q].Deductible.Add(b.Monthly[i].Deductible)
	}
	b.Total.Net = b.Total.Collectee.Sub(b.Total.Deductible)
	for i := range b.Quarterly {
		b.Quarterly[i].Net = b.Quarterly[i].Collectee.Sub(b.Quarterly[i].Deductible)
	}

	b.NextDeadline = nextDeadline(settings.VATRegime, now)
	b.CA3 = ca3(b.ByRate, b.Total)
	return b
}

// nextDeadline returns the next filing date strictly after now:
// the 24th of next month under the mensuel regime, the next of
// May/Aug/Nov 24 and Feb 24 of the following year under trimestriel.
func nextDeadline(regime model.VATRegime, now time.Time) *Deadline {
	switch regime {
	case model.RegimeMensuel:
		next := time.Date(now.Year(), now.Month()+1, 24, 0, 0, 0, 0, time.UTC)
		return &Deadline{
			Date:   next,
			Label:  "24 " + monthNames[next.Month()-1],
			Period: monthNames[now.Month()-1],
		}
	case model.RegimeTrimestriel:
		candidates := []struct {
			month   time.Month
			quarter string
		}{
			{time.May, "T1"},
			{time.August, "T2"},
			{time.November, "T3"},
			{time.February, "T4"},
		}
		for _, c := range candidates {
			year := now.Year()
			if c.month == time.February {
				year++
			}
			deadline := time.Date(year, c.month, 24, 0, 0, 0, 0, time.UTC)
			if deadline.After(now) {
				return &Deadline{
					Date:   deadline,
					Label:  "24 " + monthNames[c.month-1],
					Period: c.quarter,
				}
			}
		}
	}
	return nil
}

func ca3(byRate map[string]Rate, total Totals) CA3 {
	r20 := byRate["20"]
	r10 := byRate["10"]
	r55 := byRate["5.5"]
	return CA3{
		Ligne01: r20.Base.Add(r10.Base).Add(r55.Base),
		Ligne08: r20.Collectee,
		Ligne09: r10.Collectee,
		Ligne9B: r55.Collectee,
		Ligne16: total.Collectee,
		Ligne19: total.Deductible,
		Ligne23: total.Deductible,
		Ligne28: total.Net,
	}
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)
