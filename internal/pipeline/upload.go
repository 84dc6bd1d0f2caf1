package pipeline

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/insightdelivered/card-statement-parser/internal/failure"
)

const pdfMIME = "application/pdf"

// Upload is one statement submitted for parsing.
type Upload struct {
	Filename string
	// ContentType is the type declared by the client, if any.
	ContentType string
	Data        []byte
	Password    string
	// Issuer selects a statement layout; empty means auto-detect.
	Issuer string
}

// Validate checks the request before any decryption is attempted. Both the
// declared type and the leading bytes must say PDF.
func (u Upload) Validate() error {
	if u.Password == "" {
		return failure.Input("Password is required.")
	}
	if len(u.Data) == 0 {
		if u.Filename == "" {
			return failure.Input("No file uploaded. Use form field 'file'.")
		}
		return failure.Input("The uploaded file %q is empty.", filepath.Base(u.Filename))
	}
	if !u.declaresPDF() {
		return failure.Input("Invalid file type. Only PDF files are accepted.")
	}
	if detected := mimetype.Detect(u.Data); !detected.Is(pdfMIME) {
		return failure.Input("Invalid file type. Only PDF files are accepted.").
			Wrap(fmt.Errorf("content detected as %s", detected.String()))
	}
	return nil
}

// declaresPDF reports whether the declared content type allows a PDF. Generic
// binary types are accepted only when the filename says .pdf.
func (u Upload) declaresPDF() bool {
	mediaType := ""
	if u.ContentType != "" {
		mt, _, err := mime.ParseMediaType(u.ContentType)
		if err != nil {
			return false
		}
		mediaType = strings.ToLower(mt)
	}

	switch mediaType {
	case pdfMIME, "application/x-pdf":
		return true
	case "", "application/octet-stream", "binary/octet-stream":
		return strings.EqualFold(filepath.Ext(u.Filename), ".pdf")
	default:
		return false
	}
}
