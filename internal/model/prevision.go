package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FlowType is the direction of a cash movement.
type FlowType string

const (
	FlowEntree FlowType = "entree"
	FlowSortie FlowType = "sortie"
)

// Valid reports whether the flow type is a known value.
func (t FlowType) Valid() bool {
	return t == FlowEntree || t == FlowSortie
}

// Status is the lifecycle state of a prevision or mouvement.
// Previsions only move prevu -> paye; mouvements may also be annule.
type Status string

const (
	StatusPrevu  Status = "prevu"
	StatusPaye   Status = "paye"
	StatusAnnule Status = "annule"
)

// Recurrence is the repetition rule of a record.
type Recurrence string

const (
	RecurrenceUnique      Recurrence = "unique"
	RecurrenceMensuel     Recurrence = "mensuel"
	RecurrenceTrimestriel Recurrence = "trimestriel"
	RecurrenceAnnuel      Recurrence = "annuel"
)

// Valid reports whether the recurrence is a known value.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceUnique, RecurrenceMensuel, RecurrenceTrimestriel, RecurrenceAnnuel:
		return true
	}
	return false
}

// IntervalMonths returns the number of months between two instances,
// or 0 for non-recurring records.
func (r Recurrence) IntervalMonths() int {
	switch r {
	case RecurrenceMensuel:
		return 1
	case RecurrenceTrimestriel:
		return 3
	case RecurrenceAnnuel:
		return 12
	}
	return 0
}

// Source identifies who or what created a record.
type Source string

const (
	SourceManual      Source = "manual"
	SourceAutoFacture Source = "auto_facture"
	SourceAutoDepense Source = "auto_depense"
	SourceAutoDevis   Source = "auto_devis_accepte"
	SourceBTPCharge   Source = "btp_charge"
	SourceWizard      Source = "wizard"
	SourcePaiement    Source = "paiement"
)

// Prevision is a planned cash inflow or outflow.
type Prevision struct {
	ID                 string          `json:"id"`
	Type               FlowType        `json:"type"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"montant"`
	Date               time.Time       `json:"date"`
	Category           string          `json:"categorie,omitempty"`
	Status             Status          `json:"statut"`
	Recurrence         Recurrence      `json:"recurrence"`
	RecurrenceParentID string          `json:"recurrenceParentId,omitempty"`
	Source             Source          `json:"source"`
	LinkedID           string          `json:"linkedId,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// IsRecurrenceRoot reports whether p can spawn recurring instances.
func (p Prevision) IsRecurrenceRoot() bool {
	return p.Recurrence != RecurrenceUnique && p.Recurrence != "" && p.RecurrenceParentID == ""
}

// DedupKey returns the content-based duplicate detection key:
// description, year-month, amount at cent precision, and flow type.
// Records sharing a key are duplicates; only the first in stable input
// order survives any aggregation.
func (p Prevision) DedupKey() string {
	return dedupKey(p.Description, p.Date, p.Amount, p.Type)
}

func dedupKey(description string, date time.Time, amount decimal.Decimal, typ FlowType) string {
	return fmt.Sprintf("%s|%04d-%02d|%s|%s", description, date.Year(), int(date.Month()), amount.StringFixed(2), typ)
}

// DedupPrevisions filters out duplicate previsions, keeping the first
// occurrence of each key in input order. Storage may legitimately hold
// legacy duplicates, so this runs at every aggregation boundary rather
// than only at insert time.
func DedupPrevisions(ps []Prevision) []Prevision {
	seen := make(map[string]bool, len(ps))
	out := make([]Prevision, 0, len(ps))
	for _, p := range ps {
		key := p.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
