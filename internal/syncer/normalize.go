package syncer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
)

// Upstream exports are alias-heavy: the same field arrives as total_ttc or
// totalTTC, tvaRate or taux_tva or tva_rate, and so on depending on which
// layer produced the record. This adapter resolves every alias once, at the
// engine boundary, so the core algorithms only ever see the canonical
// shapes in internal/model.

// rawSnapshot matches the upstream export envelope.
type rawSnapshot struct {
	Invoices       []map[string]any `json:"devis"`
	Expenses       []map[string]any `json:"depenses"`
	AcceptedQuotes []map[string]any `json:"devisAcceptes"`
	Payments       []map[string]any `json:"paiements"`

	// English envelope aliases.
	InvoicesAlt       []map[string]any `json:"invoices"`
	ExpensesAlt       []map[string]any `json:"expenses"`
	AcceptedQuotesAlt []map[string]any `json:"acceptedQuotes"`
	PaymentsAlt       []map[string]any `json:"payments"`
}

// ParseSnapshot decodes a raw JSON export into a canonical Snapshot.
func ParseSnapshot(data []byte) (model.Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}

	var snap model.Snapshot
	for _, m := range append(raw.Invoices, raw.InvoicesAlt...) {
		snap.Invoices = append(snap.Invoices, NormalizeInvoice(m))
	}
	for _, m := range append(raw.Expenses, raw.ExpensesAlt...) {
		snap.Expenses = append(snap.Expenses, NormalizeExpense(m))
	}
	for _, m := range append(raw.AcceptedQuotes, raw.AcceptedQuotesAlt...) {
		snap.AcceptedQuotes = append(snap.AcceptedQuotes, NormalizeQuote(m))
	}
	for _, m := range append(raw.Payments, raw.PaymentsAlt...) {
		snap.Payments = append(snap.Payments, NormalizePayment(m))
	}
	return snap, nil
}

// NormalizeInvoice maps a raw invoice row to the canonical shape.
func NormalizeInvoice(m map[string]any) model.Invoice {
	return model.Invoice{
		ID:           str(m, "id"),
		Number:       str(m, "numero", "number"),
		ClientID:     str(m, "client_id", "clientId"),
		ClientName:   str(m, "client_nom", "clientName", "client"),
		Object:       str(m, "objet", "titre", "object"),
		Status:       str(m, "statut", "status"),
		TotalTTC:     dec(m, "total_ttc", "totalTTC", "montant_ttc"),
		TotalHT:      dec(m, "total_ht", "totalHT", "montant_ht"),
		TotalPaid:    dec(m, "montant_paye", "totalPaid", "montantPaye"),
		VATRate:      dec(m, "tvaRate", "taux_tva", "tva_rate", "tauxTva"),
		IssueDate:    day(m, "date", "createdAt", "created_at"),
		DueDate:      day(m, "date_echeance", "dueDate", "dateEcheance"),
		ValidityDate: day(m, "date_validite", "validityDate", "dateValidite"),
	}
}

// NormalizeQuote maps a raw accepted-quote row to the canonical shape.
func NormalizeQuote(m map[string]any) model.Quote {
	return model.Quote{
		ID:           str(m, "id"),
		Number:       str(m, "numero", "number"),
		ClientID:     str(m, "client_id", "clientId"),
		ClientName:   str(m, "client_nom", "clientName", "client"),
		Object:       str(m, "objet", "titre", "object"),
		Status:       str(m, "statut", "status"),
		TotalTTC:     dec(m, "total_ttc", "totalTTC", "montant_ttc"),
		TotalHT:      dec(m, "total_ht", "totalHT", "montant_ht"),
		TotalPaid:    dec(m, "montant_paye", "totalPaid", "montantPaye"),
		VATRate:      dec(m, "tvaRate", "taux_tva", "tva_rate", "tauxTva"),
		IssueDate:    day(m, "date", "createdAt", "created_at"),
		ValidityDate: day(m, "date_validite", "validityDate", "dateValidite"),
	}
}

// NormalizeExpense maps a raw expense row to the canonical shape.
func NormalizeExpense(m map[string]any) model.Expense {
	return model.Expense{
		ID:            str(m, "id"),
		Description:   str(m, "description", "libelle"),
		Supplier:      str(m, "fournisseur", "supplier"),
		InvoiceNumber: str(m, "numeroFacture", "numero_facture"),
		Category:      str(m, "categorie", "category"),
		Amount:        dec(m, "montant", "amount"),
		AmountHT:      dec(m, "montantHt", "montant_ht"),
		VATRate:       dec(m, "tvaRate", "tauxTva", "tva_rate", "taux_tva"),
		Date:          day(m, "date", "createdAt", "created_at"),
	}
}

// NormalizePayment maps a raw payment row to the canonical shape.
func NormalizePayment(m map[string]any) model.Payment {
	return model.Payment{
		ID:              str(m, "id"),
		Amount:          dec(m, "montant", "amount"),
		Date:            day(m, "date_reglement", "dateReglement", "date"),
		LinkedInvoiceID: str(m, "devisId", "devis_id", "linkedInvoiceId", "facture_id"),
		Method:          str(m, "modePaiement", "mode_paiement", "method"),
		Reference:       str(m, "reference"),
		Notes:           str(m, "notes"),
	}
}

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return decimal.NewFromFloat(v).String()
		}
	}
	return ""
}

func dec(m map[string]any, keys ...string) decimal.Decimal {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			if v != 0 {
				return decimal.NewFromFloat(v)
			}
		case string:
			if v == "" {
				continue
			}
			if d, err := decimal.NewFromString(v); err == nil && !d.IsZero() {
				return d
			}
		case json.Number:
			if d, err := decimal.NewFromString(v.String()); err == nil && !d.IsZero() {
				return d
			}
		}
	}
	return decimal.Zero
}

var dayFormats = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

func day(m map[string]any, keys ...string) time.Time {
	for _, k := range keys {
		s, ok := m[k].(string)
		if !ok || s == "" {
			continue
		}
		for _, layout := range dayFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
		}
	}
	return time.Time{}
}
