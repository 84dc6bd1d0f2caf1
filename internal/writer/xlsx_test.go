package writer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&XLSXWriter{}).Write(&buf, sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, transactionsSheet}, f.GetSheetList())

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Card Name", "Millennia"},
		{"Name On Card", "RAHUL KUMAR SHARMA"},
		{"Card Last 4 Digits", "1234"},
		{"Available Limit", "145000"},
	}, summary)

	rows, err := f.GetRows(transactionsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Merchant", "Type", "Amount"},
		{"08-Oct-2025", "AMAZON PAY INDIA", "DEBIT", "1500.75"},
		{"10-Oct-2025", "PAYMENT RECEIVED, THANK YOU", "CREDIT", "-5000"},
	}, rows)
}
