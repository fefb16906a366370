package model

import "fmt"

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// ValidatePrevision checks a prevision before any write. Violations are
// rejected synchronously; nothing is partially written.
func ValidatePrevision(p Prevision) []ValidationError {
	var errs []ValidationError

	if p.Description == "" {
		errs = append(errs, ValidationError{Field: "description", Description: "missing description"})
	}
	if p.Amount.IsNegative() {
		errs = append(errs, ValidationError{Field: "montant", Description: fmt.Sprintf("negative amount %s", p.Amount)})
	}
	if p.Date.IsZero() {
		errs = append(errs, ValidationError{Field: "date", Description: "missing date"})
	}
	if !p.Type.Valid() {
		errs = append(errs, ValidationError{Field: "type", Description: fmt.Sprintf("unknown type %q", p.Type)})
	}
	if p.Recurrence != "" && !p.Recurrence.Valid() {
		errs = append(errs, ValidationError{Field: "recurrence", Description: fmt.Sprintf("unknown recurrence %q", p.Recurrence)})
	}
	if p.Status != "" && p.Status != StatusPrevu && p.Status != StatusPaye {
		errs = append(errs, ValidationError{Field: "statut", Description: fmt.Sprintf("unknown status %q", p.Status)})
	}
	if p.RecurrenceParentID != "" && p.RecurrenceParentID == p.ID {
		errs = append(errs, ValidationError{Field: "recurrenceParentId", Description: "self-referential parent"})
	}
	return errs
}

// ValidateMouvement checks a mouvement before any write.
func ValidateMouvement(m Mouvement) []ValidationError {
	var errs []ValidationError

	if m.Description == "" {
		errs = append(errs, ValidationError{Field: "description", Description: "missing description"})
	}
	if m.Amount.IsNegative() {
		errs = append(errs, ValidationError{Field: "montant", Description: fmt.Sprintf("negative amount %s", m.Amount)})
	}
	if m.Date.IsZero() {
		errs = append(errs, ValidationError{Field: "date", Description: "missing date"})
	}
	if !m.Type.Valid() {
		errs = append(errs, ValidationError{Field: "type", Description: fmt.Sprintf("unknown type %q", m.Type)})
	}
	if m.Status != "" && m.Status != StatusPrevu && m.Status != StatusPaye && m.Status != StatusAnnule {
		errs = append(errs, ValidationError{Field: "statut", Description: fmt.Sprintf("unknown status %q", m.Status)})
	}
	if m.VATRate.IsNegative() {
		errs = append(errs, ValidationError{Field: "tauxTva", Description: fmt.Sprintf("negative rate %s", m.VATRate)})
	}
	return errs
}
