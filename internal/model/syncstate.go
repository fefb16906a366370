package model

// SyncState tracks the external ids already materialized into the store,
// one append-only set per source collection. It is read at engine start,
// mutated in memory, and flushed only after a successful sync batch.
type SyncState struct {
	Invoices       []string `json:"devis"`
	Expenses       []string `json:"depenses"`
	AcceptedQuotes []string `json:"acceptedDevis"`
	Payments       []string `json:"paiements"`
}

func has(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// HasInvoice reports whether the invoice id was already processed.
func (s SyncState) HasInvoice(id string) bool { return has(s.Invoices, id) }

// HasExpense reports whether the expense id was already processed.
func (s SyncState) HasExpense(id string) bool { return has(s.Expenses, id) }

// HasAcceptedQuote reports whether the quote id was already processed.
func (s SyncState) HasAcceptedQuote(id string) bool { return has(s.AcceptedQuotes, id) }

// HasPayment reports whether the payment id was already processed.
func (s SyncState) HasPayment(id string) bool { return has(s.Payments, id) }

// AddInvoice appends an invoice id if not already present.
func (s *SyncState) AddInvoice(id string) {
	if !has(s.Invoices, id) {
		s.Invoices = append(s.Invoices, id)
	}
}

// AddExpense appends an expense id if not already present.
func (s *SyncState) AddExpense(id string) {
	if !has(s.Expenses, id) {
		s.Expenses = append(s.Expenses, id)
	}
}

// AddAcceptedQuote appends a quote id if not already present.
func (s *SyncState) AddAcceptedQuote(id string) {
	if !has(s.AcceptedQuotes, id) {
		s.AcceptedQuotes = append(s.AcceptedQuotes, id)
	}
}

// AddPayment appends a payment id if not already present.
func (s *SyncState) AddPayment(id string) {
	if !has(s.Payments, id) {
		s.Payments = append(s.Payments, id)
	}
}
