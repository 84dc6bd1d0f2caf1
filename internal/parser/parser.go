package parser

import (
	"sort"
	"strings"
	"sync"

	"github.com/insightdelivered/card-statement-parser/internal/failure"
	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// Parser defines the interface for card statement layouts.
type Parser interface {
	// Parse locates the summary labels and transaction tables in the page
	// layout and returns the printed strings.
	Parse(pages []models.Page) (*models.RawStatement, error)
	// BankName returns the human-readable issuer name.
	BankName() string
}

// Factory builds a Parser. Layouts are stateless, but a fresh value per
// request keeps them free to cache per-document data.
type Factory func() Parser

type registration struct {
	factory Factory
	markers []string
}

var (
	mu       sync.RWMutex
	registry = map[models.Issuer]registration{}
)

// Register adds a layout for issuer. markers are phrases, matched without
// case, whose presence in the statement text identifies the issuer.
func Register(issuer models.Issuer, markers []string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[issuer] = registration{factory: factory, markers: markers}
}

// New returns the layout registered for issuer.
func New(issuer models.Issuer) (Parser, error) {
	mu.RLock()
	defer mu.RUnlock()
	reg, ok := registry[models.Issuer(strings.ToLower(string(issuer)))]
	if !ok {
		return nil, failure.Input("Unsupported issuer %q; supported issuers: %s", issuer, strings.Join(issuerNames(), ", "))
	}
	return reg.factory(), nil
}

// Issuers returns the registered issuers in name order.
func Issuers() []models.Issuer {
	mu.RLock()
	defer mu.RUnlock()
	names := issuerNames()
	out := make([]models.Issuer, len(names))
	for i, n := range names {
		out[i] = models.Issuer(n)
	}
	return out
}

func issuerNames() []string {
	names := make([]string, 0, len(registry))
	for issuer := range registry {
		names = append(names, string(issuer))
	}
	sort.Strings(names)
	return names
}

// AutoDetect identifies the issuer from the statement text.
func AutoDetect(pages []models.Page) (models.Issuer, error) {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.Text())
		b.WriteByte('\n')
	}
	combined := b.String()

	mu.RLock()
	defer mu.RUnlock()
	for _, name := range issuerNames() {
		if containsAny(combined, registry[models.Issuer(name)].markers) {
			return models.Issuer(name), nil
		}
	}
	return "", failure.Extraction("statement template not recognised; supported issuers: %s", strings.Join(issuerNames(), ", "))
}

func containsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, needle := range needles {
		if needle != "" && strings.Contains(lower, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}
