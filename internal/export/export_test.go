package export

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/model"
	"github.com/seguinhugo06-lgtm/chantierpro-sub003/internal/tva"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleInvoices() []model.Invoice {
	return []model.Invoice{
		{
			ID:         "fac-1",
			Number:     "F2025-001",
			ClientID:   "cli-1",
			ClientName: "Dupont SARL",
			Object:     "Renovation toiture",
			Status:     "payee",
			TotalTTC:   dec("1200"),
			TotalHT:    dec("1000"),
			VATRate:    dec("20"),
			IssueDate:  date(2025, time.March, 1),
		},
		{
			ID:        "fac-2",
			Number:    "F2025-002",
			Status:    "brouillon",
			TotalTTC:  dec("500"),
			IssueDate: date(2025, time.March, 5),
		},
		{
			ID:        "fac-3",
			Number:    "F2024-090",
			Status:    "payee",
			TotalTTC:  dec("900"),
			IssueDate: date(2024, time.November, 5),
		},
	}
}

func sampleExpenses() []model.Expense {
	return []model.Expense{
		{
			ID:            "dep-1",
			Description:   "Ciment",
			Supplier:      "Point P",
			InvoiceNumber: "PP-889",
			Category:      "Materiaux",
			Amount:        dec("240"),
			VATRate:       dec("20"),
			Date:          date(2025, time.March, 5),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var sb strings.Builder
	err := WriteCSV(&sb, [][]string{
		{"Date", "Libelle", "Montant"},
		{"2025-03-01", `Ciment "special", sac`, "120.00"},
	})
	require.NoError(t, err)

	out := sb.String()
	assert.True(t, strings.HasPrefix(out, "\uFEFF"), "UTF-8 BOM first")
	assert.Contains(t, out, "Date,Libelle,Montant\n")
	assert.Contains(t, out, `"Ciment ""special"", sac"`)
	assert.False(t, strings.HasSuffix(out, "\n"), "no trailing newline")
}

func TestSalesJournalRows(t *testing.T) {
	rows := SalesJournalRows(sampleInvoices(), 2025)
	// Header, one accepted 2025 invoice, total.
	require.Len(t, rows, 3)

	assert.Equal(t, "F2025-001", rows[1][1])
	assert.Equal(t, "Dupont SARL", rows[1][2])
	assert.Equal(t, "1000.00", rows[1][4])
	assert.Equal(t, "200.00", rows[1][5])
	assert.Equal(t, "1200.00", rows[1][6])
	assert.Equal(t, "20", rows[1][7])

	total := rows[2]
	assert.Equal(t, "TOTAL", total[3])
	assert.Equal(t, "1000.00", total[4])
	assert.Equal(t, "1200.00", total[6])
}

func TestPurchaseJournalRows(t *testing.T) {
	rows := PurchaseJournalRows(sampleExpenses(), 2025)
	require.Len(t, rows, 3)

	assert.Equal(t, "Point P", rows[1][1])
	assert.Equal(t, "200.00", rows[1][4])
	assert.Equal(t, "40.00", rows[1][5])
	assert.Equal(t, "240.00", rows[1][6])
}

func TestReglementRows(t *testing.T) {
	payments := []model.Payment{
		{ID: "pay-1", Amount: dec("200"), Date: date(2025, time.March, 5), LinkedInvoiceID: "fac-1", Reference: "VIR-99"},
		{ID: "pay-2", Amount: dec("50"), Date: date(2024, time.March, 5)},
	}

	rows := ReglementRows(payments, sampleInvoices(), 2025)
	require.Len(t, rows, 2, "only the 2025 payment")
	assert.Equal(t, "F2025-001", rows[1][1])
	assert.Equal(t, "Dupont SARL", rows[1][2])
	assert.Equal(t, "200.00", rows[1][3])
	assert.Equal(t, "virement", rows[1][4], "default payment method")
	assert.Equal(t, "VIR-99", rows[1][6])
}

func TestMouvementRows(t *testing.T) {
	mouvements := []model.Mouvement{
		{
			ID: "m1", Type: model.FlowEntree, Description: "Reglement recu",
			Amount: dec("1200"), AmountHT: dec("1000"), AmountVAT: dec("200"), VATRate: dec("20"),
			Date: date(2025, time.March, 5), Status: model.StatusPaye, Recurrence: model.RecurrenceMensuel,
			Notes: "Acompte chantier Dupont",
		},
	}

	rows := MouvementRows(mouvements, 2025)
	require.Len(t, rows, 2)
	require.Len(t, rows[1], 11)
	assert.Equal(t, "Entree", rows[1][2])
	assert.Equal(t, "paye", rows[1][4])
	assert.Equal(t, "Oui", rows[1][9])
	assert.Equal(t, "Acompte chantier Dupont", rows[1][10])
}

func TestCA3Rows(t *testing.T) {
	ca3 := tva.CA3{
		Ligne01: dec("3000"),
		Ligne08: dec("200"),
		Ligne16: dec("355"),
		Ligne28: dec("315"),
	}
	rows := CA3Rows(ca3, Company{Name: "Seguin BTP", VATNumber: "FR123"}, 2025)

	require.Len(t, rows, 14)
	assert.Equal(t, []string{"Entreprise", "Seguin BTP", ""}, rows[1])
	assert.Equal(t, []string{"01", "Ventes, prestations de services (HT)", "3000.00"}, rows[6])
	assert.Equal(t, []string{"28", "TVA nette due (ou credit)", "315.00"}, rows[13])
}

func TestFECRowsBalancedTriples(t *testing.T) {
	rows := FECRows(sampleInvoices(), sampleExpenses(), 2025)

	require.Equal(t, fecHeader, rows[0])
	// One sale triple + one purchase triple.
	require.Len(t, rows, 7)

	sale := rows[1:4]
	assert.Equal(t, "VE", sale[0][0])
	assert.Equal(t, accountClients, sale[0][4])
	assert.Equal(t, "1200.00", sale[0][11], "client debit TTC")
	assert.Equal(t, accountSales, sale[1][4])
	assert.Equal(t, "1000.00", sale[1][12], "revenue credit HT")
	assert.Equal(t, accountVATCollected, sale[2][4])
	assert.Equal(t, "200.00", sale[2][12], "VAT credit")
	assert.Equal(t, "20250301", sale[0][3])
	assert.Equal(t, "000001", sale[0][2])

	purchase := rows[4:7]
	assert.Equal(t, "HA", purchase[0][0])
	assert.Equal(t, accountPurchases, purchase[0][4])
	assert.Equal(t, "200.00", purchase[0][11])
	assert.Equal(t, accountVATDeductible, purchase[1][4])
	assert.Equal(t, "40.00", purchase[1][11])
	assert.Equal(t, accountSuppliers, purchase[2][4])
	assert.Equal(t, "240.00", purchase[2][12], "supplier credit TTC")
	assert.Equal(t, "000002", purchase[0][2])

	// Debits equal credits per entry.
	for _, r := range rows[1:] {
		require.Len(t, r, 18)
	}
}

func TestFECFilename(t *testing.T) {
	assert.Equal(t, "FEC_12345678900011_20250101_20251231.csv", FECFilename("12345678900011", 2025))
	assert.Equal(t, "FEC_ENTREPRISE_20250101_20251231.csv", FECFilename("", 2025))
}
