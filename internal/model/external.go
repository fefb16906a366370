package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical shapes for the consumed business collections. Upstream field
// aliases are resolved by the syncer's normalization adapter; the engines
// only ever see these.

// Invoice is a client invoice (facture).
type Invoice struct {
	ID           string
	Number       string
	ClientID     string
	ClientName   string
	Object       string
	Status       string // brouillon, envoye, accepte, signe, payee...
	TotalTTC     decimal.Decimal
	TotalHT      decimal.Decimal // zero when upstream only carries TTC
	TotalPaid    decimal.Decimal
	VATRate      decimal.Decimal // zero when absent; callers apply RateOrDefault
	IssueDate    time.Time
	DueDate      time.Time
	ValidityDate time.Time
}

// Remaining returns the unpaid part of the invoice, never negative.
func (f Invoice) Remaining() decimal.Decimal {
	r := f.TotalTTC.Sub(f.TotalPaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// IsPaid reports whether the invoice is settled.
func (f Invoice) IsPaid() bool {
	return f.Status == "payee" || f.Status == "paye"
}

// SyncDate is the prevision date for an invoice: due date, then
// validity date, then issue date.
func (f Invoice) SyncDate() time.Time {
	switch {
	case !f.DueDate.IsZero():
		return f.DueDate
	case !f.ValidityDate.IsZero():
		return f.ValidityDate
	default:
		return f.IssueDate
	}
}

// Quote is an accepted devis not yet invoiced; same shape as Invoice.
type Quote struct {
	ID           string
	Number       string
	ClientID     string
	ClientName   string
	Object       string
	Status       string
	TotalTTC     decimal.Decimal
	TotalHT      decimal.Decimal
	TotalPaid    decimal.Decimal
	VATRate      decimal.Decimal
	IssueDate    time.Time
	ValidityDate time.Time
}

// Remaining returns the uninvoiced balance of the quote, never negative.
func (q Quote) Remaining() decimal.Decimal {
	r := q.TotalTTC.Sub(q.TotalPaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// SyncDate is the prevision date for a quote: validity date, then issue date.
func (q Quote) SyncDate() time.Time {
	if !q.ValidityDate.IsZero() {
		return q.ValidityDate
	}
	return q.IssueDate
}

// Expense is a recorded business expense (depense), assumed already paid.
type Expense struct {
	ID            string
	Description   string
	Supplier      string
	InvoiceNumber string
	Category      string
	Amount        decimal.Decimal // TTC
	AmountHT      decimal.Decimal // zero when upstream only carries TTC
	VATRate       decimal.Decimal // zero when absent
	Date          time.Time
}

// Payment is a received payment against an invoice.
type Payment struct {
	ID              string
	Amount          decimal.Decimal
	Date            time.Time
	LinkedInvoiceID string
	Method          string
	Reference       string
	Notes           string
}

// Snapshot is one read-only view of the external business collections,
// fetched by the caller and handed to the sync engine.
type Snapshot struct {
	Invoices       []Invoice
	Expenses       []Expense
	AcceptedQuotes []Quote
	Payments       []Payment
}
