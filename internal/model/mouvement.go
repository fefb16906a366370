package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mouvement is a realized cash transaction carrying its VAT decomposition.
type Mouvement struct {
	ID                 string          `json:"id"`
	Type               FlowType        `json:"type"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"montant"` // TTC
	AmountHT           decimal.Decimal `json:"montantHt"`
	AmountVAT          decimal.Decimal `json:"montantTva"`
	VATRate            decimal.Decimal `json:"tauxTva"`
	Autoliquidation    bool            `json:"autoliquidation,omitempty"`
	Date               time.Time       `json:"date"`
	Category           string          `json:"categorie,omitempty"`
	Status             Status          `json:"statut"`
	Recurrence         Recurrence      `json:"recurrence,omitempty"`
	RecurrenceParentID string          `json:"recurrenceParentId,omitempty"`
	Source             Source          `json:"source,omitempty"`
	LinkedID           string          `json:"linkedId,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// DedupKey returns the duplicate detection key, same tuple as previsions.
func (m Mouvement) DedupKey() string {
	return dedupKey(m.Description, m.Date, m.Amount, m.Type)
}

// DedupMouvements filters out duplicate mouvements, first occurrence wins.
func DedupMouvements(ms []Mouvement) []Mouvement {
	seen := make(map[string]bool, len(ms))
	out := make([]Mouvement, 0, len(ms))
	for _, m := range ms {
		key := m.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

// VATParts is the HT/TVA decomposition of a TTC amount.
type VATParts struct {
	HT  decimal.Decimal
	VAT decimal.Decimal
}

// WithVAT decomposes a TTC amount at the given rate, rounded to cents.
// Under autoliquidation the buyer self-assesses: HT equals the full
// amount and no VAT is carried.
func WithVAT(amount, rate decimal.Decimal, autoliquidation bool) VATParts {
	if autoliquidation {
		return VATParts{HT: amount.Round(2)}
	}
	ht := amount.Div(one.Add(rate.Div(hundred))).Round(2)
	return VATParts{HT: ht, VAT: amount.Sub(ht).Round(2)}
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	// DefaultVATRate applies when an upstream record carries no rate.
	DefaultVATRate = decimal.NewFromInt(20)
)

// RateOrDefault substitutes the 20% default for an absent (zero) rate.
func RateOrDefault(rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return DefaultVATRate
	}
	return rate
}
