package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// CSVWriter writes transactions to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, result *models.ParseResult) error {
	return WriteFile(path, w, result)
}

// Write writes transactions in CSV format to the given writer. When
// IncludeHeader is set the statement summary is written first as "#" rows.
func (w *CSVWriter) Write(out io.Writer, result *models.ParseResult) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		summary := [][]string{
			{"# Card Name", result.CardName},
			{"# Name On Card", result.NameOnCard},
			{"# Card Last 4 Digits", result.CardLast4Digits},
			{"# Available Limit", formatAmount(result.AvailableLimit)},
		}
		for _, row := range summary {
			if row[1] == "" {
				continue
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV summary: %w", err)
			}
		}
	}

	rows := make([]csvRow, 0, len(result.Transactions))
	for _, txn := range result.Transactions {
		rows = append(rows, csvRow{
			Date:     txn.Date.String(),
			Merchant: txn.Merchant,
			Type:     transactionType(txn.Amount),
			Amount:   formatAmount(txn.Amount),
		})
	}

	// MarshalCSV writes the column header, the rows and flushes.
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// csvRow is one transaction line; the tags are the column headers.
type csvRow struct {
	Date     string `csv:"Date"`
	Merchant string `csv:"Merchant"`
	Type     string `csv:"Type"`
	Amount   string `csv:"Amount"`
}

// transactionType labels payments and refunds CREDIT, everything else DEBIT.
func transactionType(a models.Amount) string {
	if a.IsNegative() {
		return "CREDIT"
	}
	return "DEBIT"
}

func formatAmount(a models.Amount) string {
	return a.Decimal().StringFixed(2)
}
