package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/card-statement-parser/internal/failure"
	"github.com/insightdelivered/card-statement-parser/internal/models"
)

const hdfcSummary = `Millennia HDFC Bank Credit Card Statement

RAHUL KUMAR SHARMA                 Credit Card No. 5522 60XX XXXX 1234

TOTAL CREDIT LIMIT     AVAILABLE CREDIT LIMIT     AVAILABLE CASH LIMIT
(Including Cash)
C3,00,000.00           C1,45,000.00               C60,000.00
`

const hdfcTable = `
Domestic Transactions
Date                  Transaction Description           Amount (in Rs.)
08/10/2025 | 11:58    AMAZON PAY INDIA        +15       C1,500.75
09/10/2025            SWIGGY BANGALORE        EMI       C349.00
10/10/2025            PAYMENT RECEIVED                  C5,000.00  Cr
                      Total                             C6,849.75
`

func TestHDFCParser_Parse(t *testing.T) {
	p := &HDFCParser{}

	raw, err := p.Parse(layoutPages(hdfcSummary + hdfcTable))
	require.NoError(t, err)

	assert.Equal(t, models.IssuerHDFC, raw.Issuer)
	assert.Equal(t, "Millennia", raw.CardName)
	assert.Equal(t, "RAHUL KUMAR SHARMA", raw.NameOnCard)
	assert.Equal(t, "5522 60XX XXXX 1234", raw.MaskedNumber)
	assert.Equal(t, "C1,45,000.00", raw.AvailableLimit)

	want := []models.RawTransaction{
		{Page: 1, Date: "08/10/2025", Merchant: "AMAZON PAY INDIA", Amount: "C1,500.75"},
		{Page: 1, Date: "09/10/2025", Merchant: "SWIGGY BANGALORE", Amount: "C349.00"},
		{Page: 1, Date: "10/10/2025", Merchant: "PAYMENT RECEIVED", Amount: "C5,000.00 Cr"},
	}
	assert.Equal(t, want, raw.Transactions)
}

func TestHDFCParser_InlineLimit(t *testing.T) {
	summary := `Regalia Gold HDFC Bank Credit Card Statement
ANITA DESAI   Credit Card No.   4893XXXXXXXX9876
AVAILABLE CREDIT LIMIT   C2,10,500.00
`
	raw, err := (&HDFCParser{}).Parse(layoutPages(summary + hdfcTable))
	require.NoError(t, err)
	assert.Equal(t, "Regalia Gold", raw.CardName)
	assert.Equal(t, "ANITA DESAI", raw.NameOnCard)
	assert.Equal(t, "4893XXXXXXXX9876", raw.MaskedNumber)
	assert.Equal(t, "C2,10,500.00", raw.AvailableLimit)
}

func TestHDFCParser_MultiplePages(t *testing.T) {
	second := `
Date                  Transaction Description           Amount (in Rs.)
12/10/2025            IRCTC NEW DELHI                   C2,150.00
14/10/2025            REFUND AMAZON                     C499.00  Cr
`
	raw, err := (&HDFCParser{}).Parse(layoutPages(hdfcSummary + hdfcTable + "\f" + second))
	require.NoError(t, err)
	require.Len(t, raw.Transactions, 5)
	assert.Equal(t, 2, raw.Transactions[3].Page)
	assert.Equal(t, "IRCTC NEW DELHI", raw.Transactions[3].Merchant)
	assert.Equal(t, "C499.00 Cr", raw.Transactions[4].Amount)
}

func TestHDFCParser_TableEnds(t *testing.T) {
	noFooter := strings.Replace(hdfcTable, "                      Total                             C6,849.75\n", "", 1)

	tests := []struct {
		name string
		text string
	}{
		{
			name: "dated label right after the last row",
			text: noFooter + `15/11/2025            Payment Due Date
`,
		},
		{
			name: "dated label after a section heading",
			text: noFooter + `Important Dates
15/11/2025            Payment Due Date     C6,849.75
`,
		},
		{
			name: "dated text after the total footer",
			text: hdfcTable + `01/11/2025            Statement generated on request    C0.00
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := (&HDFCParser{}).Parse(layoutPages(hdfcSummary + tt.text))
			require.NoError(t, err)
			require.Len(t, raw.Transactions, 3)
			assert.Equal(t, "PAYMENT RECEIVED", raw.Transactions[2].Merchant)
		})
	}
}

func TestHDFCParser_WrappedDescription(t *testing.T) {
	table := `
Date                  Transaction Description           Amount (in Rs.)
08/10/2025            MAKEMYTRIP INDIA PVT              C8,420.00
                      LTD GURGAON
09/10/2025            SWIGGY BANGALORE                  C349.00
`
	raw, err := (&HDFCParser{}).Parse(layoutPages(hdfcSummary + table))
	require.NoError(t, err)
	require.Len(t, raw.Transactions, 2)
	assert.Equal(t, "SWIGGY BANGALORE", raw.Transactions[1].Merchant)
}

func TestHDFCParser_HyphenatedHolder(t *testing.T) {
	summary := strings.Replace(hdfcSummary, "RAHUL KUMAR SHARMA", "MARY-ANN D'SOUZA", 1)
	raw, err := (&HDFCParser{}).Parse(layoutPages(summary + hdfcTable))
	require.NoError(t, err)
	assert.Equal(t, "MARY-ANN D'SOUZA", raw.NameOnCard)
}

func TestHDFCParser_Failures(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantMsg string
	}{
		{
			name:    "no pages",
			text:    "",
			wantMsg: "no",
		},
		{
			name:    "missing title",
			text:    strings.Replace(hdfcSummary, "Credit Card Statement", "Account Summary", 1) + hdfcTable,
			wantMsg: "card name",
		},
		{
			name:    "missing card number label",
			text:    strings.Replace(hdfcSummary, "Credit Card No.", "Card", 1) + hdfcTable,
			wantMsg: "Credit Card No.",
		},
		{
			name:    "missing limit label",
			text:    strings.Replace(hdfcSummary, "AVAILABLE CREDIT LIMIT", "AVAILABLE LIMIT", 1) + hdfcTable,
			wantMsg: "AVAILABLE CREDIT LIMIT",
		},
		{
			name:    "no transaction table",
			text:    hdfcSummary,
			wantMsg: "no transaction table",
		},
		{
			name: "table without rows",
			text: hdfcSummary + `
Date                  Transaction Description           Amount (in Rs.)
                      Total                             C0.00
`,
			wantMsg: "no transactions",
		},
		{
			name: "row without amount",
			text: hdfcSummary + `
Date                  Transaction Description           Amount (in Rs.)
08/10/2025
`,
			wantMsg: "08/10/2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := layoutPages(tt.text)
			if tt.text == "" {
				pages = nil
			}
			_, err := (&HDFCParser{}).Parse(pages)
			require.Error(t, err)
			assert.Equal(t, failure.KindExtraction, failure.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		name   string
		cells  []string
		want   models.RawTransaction
		wantOK bool
	}{
		{
			name:   "plain row",
			cells:  []string{"08/10/2025", "AMAZON PAY INDIA", "1,500.75"},
			want:   models.RawTransaction{Date: "08/10/2025", Merchant: "AMAZON PAY INDIA", Amount: "1,500.75"},
			wantOK: true,
		},
		{
			name:   "date and merchant in one cell",
			cells:  []string{"08/10/2025 AMAZON PAY INDIA", "1,500.75"},
			want:   models.RawTransaction{Date: "08/10/2025", Merchant: "AMAZON PAY INDIA", Amount: "1,500.75"},
			wantOK: true,
		},
		{
			name:   "credit marker cell",
			cells:  []string{"10/10/2025", "PAYMENT RECEIVED", "5,000.00", "Cr"},
			want:   models.RawTransaction{Date: "10/10/2025", Merchant: "PAYMENT RECEIVED", Amount: "5,000.00 Cr"},
			wantOK: true,
		},
		{
			name:   "junk columns dropped",
			cells:  []string{"11/10/2025 | 09:12", "NETFLIX", "USD 15.49", "120 pts", "C1,310.00"},
			want:   models.RawTransaction{Date: "11/10/2025", Merchant: "NETFLIX", Amount: "C1,310.00"},
			wantOK: true,
		},
		{
			name:  "total footer skipped",
			cells: []string{"31/10/2025", "TOTAL AMOUNT DUE", "6,849.75"},
		},
		{
			name:  "only junk between date and amount",
			cells: []string{"31/10/2025", "EMI", "6,849.75"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := parseRow(tt.cells)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
