package extractor

import (
	"strings"
	"testing"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

func textPages(texts ...string) []models.Page {
	pages := make([]models.Page, len(texts))
	for i, text := range texts {
		page := models.Page{Number: i + 1}
		for _, line := range strings.Split(text, "\n") {
			page.Lines = append(page.Lines, models.Line{Cells: []models.Cell{{Text: line}}})
		}
		pages[i] = page
	}
	return pages
}

func TestIsReadableText(t *testing.T) {
	tests := []struct {
		name  string
		pages []models.Page
		want  bool
	}{
		{
			name:  "statement text",
			pages: textPages("Millennia Credit Card Statement\nDate Transaction Description Amount\n08/10/2025 AMAZON PAY INDIA ₹1,500.75"),
			want:  true,
		},
		{
			name:  "too short",
			pages: textPages("Credit Card"),
			want:  false,
		},
		{
			name:  "glyph garbage",
			pages: textPages(strings.Repeat("ÿþýüûúùø÷öõôóòñð", 8)),
			want:  false,
		},
		{
			name:  "readable but no statement words",
			pages: textPages(strings.Repeat("lorem ipsum dolor sit amet ", 4)),
			want:  false,
		},
		{
			name:  "no pages",
			pages: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isReadableText(tt.pages); got != tt.want {
				t.Errorf("isReadableText() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextQuality(t *testing.T) {
	if q := textQuality(nil); q != 0 {
		t.Errorf("textQuality(nil) = %f, want 0", q)
	}
	if q := textQuality(textPages("abc ₹ 1,000")); q != 1 {
		t.Errorf("textQuality() = %f, want 1", q)
	}
}
