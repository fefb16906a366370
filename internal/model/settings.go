package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// VATRegime is the VAT filing regime of the business.
type VATRegime string

const (
	RegimeMensuel     VATRegime = "mensuel"
	RegimeTrimestriel VATRegime = "trimestriel"
	RegimeFranchise   VATRegime = "franchise"
)

// Valid reports whether the regime is a known value.
func (r VATRegime) Valid() bool {
	return r == RegimeMensuel || r == RegimeTrimestriel || r == RegimeFranchise
}

// Settings is the per-account treasury configuration singleton.
// It is created with defaults, mutated by merge-update, never deleted.
type Settings struct {
	InitialBalance     decimal.Decimal `json:"soldeInitial"`
	InitialBalanceDate time.Time       `json:"soldeDate"`
	AlertThreshold     decimal.Decimal `json:"seuilAlerte"`
	VATRegime          VATRegime       `json:"regimeTva"`
	VATNumber          string          `json:"numeroTva,omitempty"`
}

// DefaultSettings returns the settings a fresh account starts with.
func DefaultSettings() Settings {
	return Settings{
		AlertThreshold: decimal.NewFromInt(5000),
		VATRegime:      RegimeTrimestriel,
	}
}

// SettingsPatch carries the fields of a merge-update; nil means unchanged.
type SettingsPatch struct {
	InitialBalance     *decimal.Decimal
	InitialBalanceDate *time.Time
	AlertThreshold     *decimal.Decimal
	VATRegime          *VATRegime
	VATNumber          *string
}

// Apply merges the patch into s, leaving nil fields untouched.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.InitialBalance != nil {
		s.InitialBalance = *p.InitialBalance
	}
	if p.InitialBalanceDate != nil {
		s.InitialBalanceDate = *p.InitialBalanceDate
	}
	if p.AlertThreshold != nil {
		s.AlertThreshold = *p.AlertThreshold
	}
	if p.VATRegime != nil {
		s.VATRegime = *p.VATRegime
	}
	if p.VATNumber != nil {
		s.VATNumber = *p.VATNumber
	}
	return s
}
