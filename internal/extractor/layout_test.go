package extractor

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run lays out s one glyph per rune, 5.4pt apart, the way Courier 9pt is
// reported by the PDF reader.
func run(x, y float64, s string) []pdf.Text {
	var out []pdf.Text
	for _, r := range s {
		out = append(out, pdf.Text{Font: "Courier", FontSize: 9, X: x, Y: y, W: 5.4, S: string(r)})
		x += 5.4
	}
	return out
}

func TestBuildLines_GroupsByBaseline(t *testing.T) {
	var texts []pdf.Text
	// Drawn out of order, with a slightly raised baseline on one cell.
	texts = append(texts, run(160, 700.8, "AMAZON PAY INDIA")...)
	texts = append(texts, run(40, 720, "Date")...)
	texts = append(texts, run(40, 700, "08/10/2025")...)
	texts = append(texts, run(450, 700, "1,500.75")...)

	lines := buildLines(texts)
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"Date"}, lines[0].CellTexts())
	assert.Equal(t, []string{"08/10/2025", "AMAZON PAY INDIA", "1,500.75"}, lines[1].CellTexts())

	amount := lines[1].Cells[2]
	assert.InDelta(t, 450, amount.X, 0.01)
	assert.InDelta(t, 450+8*5.4, amount.EndX, 0.01)
}

func TestBuildLines_Empty(t *testing.T) {
	assert.Nil(t, buildLines(nil))
	assert.Nil(t, buildLines([]pdf.Text{{S: "\n"}, {S: ""}}))
}

func TestSplitCells(t *testing.T) {
	tests := []struct {
		name  string
		texts []pdf.Text
		want  []string
	}{
		{
			name:  "single spaces join words",
			texts: run(40, 0, "PAYMENT RECEIVED"),
			want:  []string{"PAYMENT RECEIVED"},
		},
		{
			name:  "double spaces split cells",
			texts: run(40, 0, "Total  1,000.00"),
			want:  []string{"Total", "1,000.00"},
		},
		{
			name:  "wide gap splits cells",
			texts: append(run(40, 0, "5,000.00"), run(100, 0, "Cr")...),
			want:  []string{"5,000.00", "Cr"},
		},
		{
			name:  "small gap without space glyph is a word break",
			texts: append(run(40, 0, "Credit"), run(40+6*5.4+3, 0, "Card")...),
			want:  []string{"Credit Card"},
		},
		{
			name:  "touching glyphs stay in one word",
			texts: append(run(40, 0, "12"), run(40+2*5.4, 0, "34")...),
			want:  []string{"1234"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := buildLines(tt.texts)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.want, lines[0].CellTexts())
		})
	}
}

func TestSplitCells_ZeroWidthGlyphs(t *testing.T) {
	texts := []pdf.Text{
		{FontSize: 10, X: 40, Y: 0, S: "A"},
		{FontSize: 10, X: 45, Y: 0, S: "B"},
		{FontSize: 10, X: 200, Y: 0, S: "C"},
	}
	lines := buildLines(texts)
	require.Len(t, lines, 1)
	assert.Equal(t, []string{"AB", "C"}, lines[0].CellTexts())
}

func TestPagesFromLayoutText(t *testing.T) {
	text := "Millennia Credit Card Statement\n" +
		"\n" +
		"Date        Transaction Description      Amount\n" +
		"08/10/2025  AMAZON PAY INDIA             1,500.75\n" +
		"\f" +
		"10/10/2025  PAYMENT RECEIVED             5,000.00 Cr\n" +
		"\f"

	pages := pagesFromLayoutText(text)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].Number)
	require.Len(t, pages[0].Lines, 3)
	assert.Equal(t, []string{"Millennia Credit Card Statement"}, pages[0].Lines[0].CellTexts())
	assert.Equal(t, []string{"08/10/2025", "AMAZON PAY INDIA", "1,500.75"}, pages[0].Lines[2].CellTexts())
	assert.InDelta(t, 12*layoutCharWidth, pages[0].Lines[2].Cells[1].X, 0.01)

	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, []string{"10/10/2025", "PAYMENT RECEIVED", "5,000.00 Cr"}, pages[1].Lines[0].CellTexts())
}
