package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

const (
	summarySheet      = "Summary"
	transactionsSheet = "Transactions"
)

// XLSXWriter writes a workbook with a summary sheet and a transactions
// sheet. Amounts are stored as numbers so they can be summed.
type XLSXWriter struct{}

func (w *XLSXWriter) Write(out io.Writer, result *models.ParseResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summary := [][]any{
		{"Card Name", result.CardName},
		{"Name On Card", result.NameOnCard},
		{"Card Last 4 Digits", result.CardLast4Digits},
		{"Available Limit", result.AvailableLimit.Float64()},
	}
	if err := setRows(f, summarySheet, summary); err != nil {
		return err
	}

	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return fmt.Errorf("failed to create transactions sheet: %w", err)
	}
	rows := make([][]any, 0, len(result.Transactions)+1)
	rows = append(rows, []any{"Date", "Merchant", "Type", "Amount"})
	for _, txn := range result.Transactions {
		rows = append(rows, []any{txn.Date.String(), txn.Merchant, transactionType(txn.Amount), txn.Amount.Float64()})
	}
	if err := setRows(f, transactionsSheet, rows); err != nil {
		return err
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
