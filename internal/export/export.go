// Package export builds the accounting CSV field sets: the CA3
// declaration, sales and purchase journals, reglement and mouvement
// listings, and the statutory FEC entries file.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/tva"
)

// Company identifies the business on exported documents.
type Company struct {
	Name      string
	SIRET     string
	VATNumber string
}

// acceptedStatuses are the invoice states that reach the journals.
var acceptedStatuses = map[string]bool{
	"accepte": true,
	"signe":   true,
	"payee":   true,
	"paye":    true,
}

// CA3Rows renders the periodic VAT declaration lines.
func CA3Rows(ca3 tva.CA3, company Company, year int) [][]string {
	name := company.Name
	if name == "" {
		name = "ChantierPro"
	}
	return [][]string{
		{"Declaration CA3 simplifiee", "", ""},
		{"Entreprise", name, ""},
		{"N TVA", company.VATNumber, ""},
		{"Annee", strconv.Itoa(year), ""},
		{"", "", ""},
		{"Ligne", "Libelle", "Montant (EUR)"},
		{"01", "Ventes, prestations de services (HT)", ca3.Ligne01.StringFixed(2)},
		{"08", "Operations imposables a 20%", ca3.Ligne08.StringFixed(2)},
		{"09", "Operations imposables a 10%", ca3.Ligne09.StringFixed(2)},
		{"9B", "Operations imposables a 5,5%", ca3.Ligne9B.StringFixed(2)},
		{"16", "Total TVA brute", ca3.Ligne16.StringFixed(2)},
		{"19", "TVA deductible sur biens et services", ca3.Ligne19.StringFixed(2)},
		{"23", "Total TVA deductible", ca3.Ligne23.StringFixed(2)},
		{"28", "TVA nette due (ou credit)", ca3.Ligne28.StringFixed(2)},
	}
}

// SalesJournalRows lists the accepted invoices of year with a trailing
// total row.
func SalesJournalRows(invoices []model.Invoice, year int) [][]string {
	rows := [][]string{
		{"Date", "N Facture", "Client", "Objet", "HT (EUR)", "TVA (EUR)", "TTC (EUR)", "Taux TVA (%)"},
	}

	totalHT := decimal.Zero
	totalTTC := decimal.Zero
	for _, f := range invoices {
		if !acceptedStatuses[f.Status] || f.IssueDate.Year() != year {
			continue
		}
		rate := model.RateOrDefault(f.VATRate)
		ht := invoiceHT(f, rate)
		rows = append(rows, []string{
			dayString(f.IssueDate),
			f.Number,
			f.ClientName,
			f.Object,
			ht.StringFixed(2),
			f.TotalTTC.Sub(ht).StringFixed(2),
			f.TotalTTC.StringFixed(2),
			rate.String(),
		})
		totalHT = totalHT.Add(ht)
		totalTTC = totalTTC.Add(f.TotalTTC)
	}

	rows = append(rows, []string{
		"", "", "", "TOTAL",
		totalHT.StringFixed(2),
		totalTTC.Sub(totalHT).StringFixed(2),
		totalTTC.StringFixed(2),
		"",
	})
	return rows
}

// PurchaseJournalRows lists the expenses of year with a trailing total
// row.
func PurchaseJournalRows(expenses []model.Expense, year int) [][]string {
	rows := [][]string{
		{"Date", "Fournisseur", "Description", "Categorie", "HT (EUR)", "TVA (EUR)", "TTC (EUR)", "Taux TVA (%)"},
	}

	totalHT := decimal.Zero
	totalTTC := decimal.Zero
	for _, d := range expenses {
		if d.Date.Year() != year {
			continue
		}
		rate := model.RateOrDefault(d.VATRate)
		ht := expenseHT(d, rate)
		rows = append(rows, []string{
			dayString(d.Date),
			d.Supplier,
			d.Description,
			d.Category,
			ht.StringFixed(2),
			d.Amount.Sub(ht).StringFixed(2),
			d.Amount.StringFixed(2),
			rate.String(),
		})
		totalHT = totalHT.Add(ht)
		totalTTC = totalTTC.Add(d.Amount)
	}

	rows = append(rows, []string{
		"", "", "", "TOTAL",
		totalHT.StringFixed(2),
		totalTTC.Sub(totalHT).StringFixed(2),
		totalTTC.StringFixed(2),
		"",
	})
	return rows
}

// ReglementRows lists the payments of year, resolving the linked
// invoice for its number and client.
func ReglementRows(payments []model.Payment, invoices []model.Invoice, year int) [][]string {
	rows := [][]string{
		{"Date", "N Devis/Facture", "Client", "Montant (EUR)", "Mode de paiement", "Type", "Reference", "Notes"},
	}

	for _, p := range payments {
		if p.Date.Year() != year {
			continue
		}
		number := ""
		client := "N/A"
		for _, f := range invoices {
			if f.ID == p.LinkedInvoiceID {
				number = f.Number
				if f.ClientName != "" {
					client = f.ClientName
				}
				break
			}
		}
		method := p.Method
		if method == "" {
			method = "virement"
		}
		rows = append(rows, []string{
			dayString(p.Date),
			number,
			client,
			p.Amount.StringFixed(2),
			method,
			"paiement",
			p.Reference,
			p.Notes,
		})
	}
	return rows
}

// MouvementRows lists the treasury mouvements of year.
func MouvementRows(mouvements []model.Mouvement, year int) [][]string {
	rows := [][]string{
		{"Date", "Description", "Type", "Categorie", "Statut", "HT (EUR)", "TVA (EUR)", "TTC (EUR)", "Taux TVA (%)", "Recurrent", "Notes"},
	}

	for _, m := range mouvements {
		if m.Date.Year() != year {
			continue
		}
		side := "Sortie"
		if m.Type == model.FlowEntree {
			side = "Entree"
		}
		recurrent := "Non"
		if m.Recurrence != "" && m.Recurrence != model.RecurrenceUnique {
			recurrent = "Oui"
		}
		rows = append(rows, []string{
			dayString(m.Date),
			m.Description,
			side,
			m.Category,
			string(m.Status),
			m.AmountHT.StringFixed(2),
			m.AmountVAT.StringFixed(2),
			m.Amount.StringFixed(2),
			model.RateOrDefault(m.VATRate).String(),
			recurrent,
			m.Notes,
		})
	}
	return rows
}

// FECFilename is the statutory name: SIRET + FEC + closing date.
func FECFilename(siret string, year int) string {
	if siret == "" {
		siret = "ENTREPRISE"
	}
	return fmt.Sprintf("FEC_%s_%d0101_%d1231.csv", siret, year, year)
}

func invoiceHT(f model.Invoice, rate decimal.Decimal) decimal.Decimal {
	if !f.TotalHT.IsZero() {
		return f.TotalHT
	}
	if f.TotalTTC.IsZero() {
		return decimal.Zero
	}
	return f.TotalTTC.Div(one.Add(rate.Div(hundred)))
}

func expenseHT(d model.Expense, rate decimal.Decimal) decimal.Decimal {
	if !d.AmountHT.IsZero() {
		return d.AmountHT
	}
	return d.Amount.Div(one.Add(rate.Div(hundred)))
}

func dayString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)
