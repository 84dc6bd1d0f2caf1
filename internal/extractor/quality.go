package extractor

import (
	"strings"
	"unicode"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// textQuality returns the ratio of basic readable characters (ASCII letters,
// digits, common punctuation, whitespace and currency signs) to all
// characters. unicode.IsLetter is too broad: identity-encoded fonts decode
// into accented garbage that it would accept.
func textQuality(pages []models.Page) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page.Text() {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(".,-/:;()'\"%&@#!?+=*|", r) ||
				r == '₹' || r == '£' || r == '$' || r == '€' || r == '•' {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear on virtually every card statement. Text containing
// none of them is most likely undecoded glyph ids.
var commonWords = []string{
	"card", "credit", "statement", "date", "amount", "payment",
	"limit", "total", "transaction", "due", "balance", "account",
	"minimum", "reward", "page",
}

func containsCommonWords(pages []models.Page) bool {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(strings.ToLower(p.Text()))
		b.WriteByte(' ')
	}
	combined := b.String()
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 50 characters, more than 60% of them
// readable, and at least one common statement word.
func isReadableText(pages []models.Page) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsCommonWords(pages)
}

func totalTextLen(pages []models.Page) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p.Text()))
	}
	return n
}
