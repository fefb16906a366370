package export

import (
	"fmt"
	"time"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
)

// PCG account numbers used in the FEC entries.
const (
	accountClients       = "411000"
	accountSales         = "706000"
	accountVATCollected  = "445710"
	accountPurchases     = "606000"
	accountVATDeductible = "445660"
	accountSuppliers     = "401000"
)

// fecHeader is the 18 statutory columns of the entries file.
var fecHeader = []string{
	"JournalCode", "JournalLib", "EcritureNum", "EcritureDate",
	"CompteNum", "CompteLib", "CompAuxNum", "CompAuxLib",
	"PieceRef", "PieceDate", "EcritureLib", "Debit", "Credit",
	"EcritureLet", "DateLet", "ValidDate", "Montantdevise", "Idevise",
}

// FECRows builds the statutory accounting entries for year: each sale
// posts a client debit balanced by a revenue credit and a collected-VAT
// credit, each purchase posts expense and deductible-VAT debits
// balanced by a supplier credit. Zero-VAT lines are omitted; every
// entry stays balanced.
func FECRows(invoices []model.Invoice, expenses []model.Expense, year int) [][]string {
	rows := [][]string{fecHeader}
	num := 1

	for _, f := range invoices {
		if !acceptedStatuses[f.Status] || f.IssueDate.Year() != year {
			continue
		}
		rate := model.RateOrDefault(f.VATRate)
		ht := invoiceHT(f, rate)
		vat := f.TotalTTC.Sub(ht)
		date := fecDate(f.IssueDate)
		ecriture := fmt.Sprintf("%06d", num)
		label := f.Object
		if label == "" {
			label = "Vente"
		}

		rows = append(rows,
			fecRow("VE", "Journal des ventes", ecriture, date,
				accountClients, "Clients", f.ClientID, f.ClientName,
				f.Number, label, f.TotalTTC.StringFixed(2), "0.00"),
			fecRow("VE", "Journal des ventes", ecriture, date,
				accountSales, "Prestations de services", "", "",
				f.Number, label, "0.00", ht.StringFixed(2)),
		)
		if vat.IsPositive() {
			rows = append(rows, fecRow("VE", "Journal des ventes", ecriture, date,
				accountVATCollected, "TVA collectee", "", "",
				f.Number, "TVA "+rate.String()+"%", "0.00", vat.StringFixed(2)))
		}
		num++
	}

	for _, d := range expenses {
		if d.Date.Year() != year {
			continue
		}
		rate := model.RateOrDefault(d.VATRate)
		ht := expenseHT(d, rate)
		vat := d.Amount.Sub(ht)
		date := fecDate(d.Date)
		ecriture := fmt.Sprintf("%06d", num)
		label := d.Description
		if label == "" {
			label = "Achat"
		}

		rows = append(rows, fecRow("HA", "Journal des achats", ecriture, date,
			accountPurchases, "Achats", "", d.Supplier,
			d.InvoiceNumber, label, ht.StringFixed(2), "0.00"))
		if vat.IsPositive() {
			rows = append(rows, fecRow("HA", "Journal des achats", ecriture, date,
				accountVATDeductible, "TVA deductible", "", "",
				d.InvoiceNumber, "TVA "+rate.String()+"%", vat.StringFixed(2), "0.00"))
		}
		rows = append(rows, fecRow("HA", "Journal des achats", ecriture, date,
			accountSuppliers, "Fournisseurs", "", d.Supplier,
			d.InvoiceNumber, label, "0.00", d.Amount.StringFixed(2)))
		num++
	}
	return rows
}

func fecRow(journal, journalLib, ecriture, date, account, accountLib, auxNum, auxLib, piece, label, debit, credit string) []string {
	return []string{
		journal, journalLib, ecriture, date,
		account, accountLib, auxNum, auxLib,
		piece, date, label, debit, credit,
		"", "", date, "", "EUR",
	}
}

func fecDate(t time.Time) string {
	return t.Format("20060102")
}
