package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/card-statement-parser/internal/failure"
	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// Extraction methods reported by Document.Method.
const (
	MethodLibrary   = "library"
	MethodPdftotext = "pdftotext"
)

// Options tunes how documents are opened and read.
type Options struct {
	// PdftotextFallback enables the external pdftotext command (poppler-utils)
	// for encryption schemes and font encodings the Go reader cannot handle.
	PdftotextFallback bool
}

// Document is an opened, decrypted statement.
type Document struct {
	reader    *pdf.Reader
	pages     []models.Page
	data      []byte
	password  string
	opts      Options
	method    string
	encrypted bool
}

// Open decrypts data with password. The password is offered to the reader
// exactly once; an incorrect password is never retried. Unencrypted files
// open regardless of the password.
func Open(ctx context.Context, data []byte, password string, opts Options) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = failure.Input("The file is not a valid PDF.").Wrap(fmt.Errorf("PDF library crashed: %v", r))
		}
	}()

	offered := false
	reader, openErr := pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), func() string {
		if offered {
			return ""
		}
		offered = true
		return password
	})

	encrypted := bytes.Contains(data, []byte("/Encrypt"))
	if openErr == nil {
		return &Document{
			reader:    reader,
			data:      data,
			password:  password,
			opts:      opts,
			method:    MethodLibrary,
			encrypted: encrypted,
		}, nil
	}

	if errors.Is(openErr, pdf.ErrInvalidPassword) {
		return nil, failure.Auth("Invalid password provided for the PDF.").Wrap(openErr)
	}

	if !isUnsupported(openErr, data) {
		return nil, failure.Input("The file is not a valid PDF.").Wrap(openErr)
	}

	if !opts.PdftotextFallback {
		return nil, failure.Input("The PDF uses an unsupported format or encryption scheme.").Wrap(openErr)
	}

	pages, popplerErr := extractWithPdftotext(ctx, data, password)
	if errors.Is(popplerErr, errWrongPassword) {
		return nil, failure.Auth("Invalid password provided for the PDF.").Wrap(popplerErr)
	}
	if popplerErr != nil {
		return nil, failure.Input("The PDF uses an unsupported format or encryption scheme.").
			Wrap(fmt.Errorf("%v; fallback: %w", openErr, popplerErr))
	}

	return &Document{
		pages:     pages,
		data:      data,
		password:  password,
		opts:      opts,
		method:    MethodPdftotext,
		encrypted: encrypted,
	}, nil
}

// isUnsupported reports whether the reader rejected a structurally valid
// file because of a feature it does not implement (AES-256, PDF 2.0).
func isUnsupported(err error, data []byte) bool {
	return strings.Contains(err.Error(), "unsupported PDF: encryption") ||
		bytes.HasPrefix(data, []byte("%PDF-2."))
}

// Method returns how the page text is produced.
func (d *Document) Method() string {
	return d.method
}

// Encrypted reports whether the file carried an encryption dictionary.
func (d *Document) Encrypted() bool {
	return d.encrypted
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	if d.reader == nil {
		return len(d.pages)
	}
	return d.reader.NumPage()
}

// Pages returns the reconstructed text layout of every page. Text that does
// not decode into readable characters is re-extracted with pdftotext when
// the fallback is enabled, and reported as an extraction failure otherwise.
func (d *Document) Pages(ctx context.Context) ([]models.Page, error) {
	if d.reader == nil {
		return d.pages, nil
	}

	pages, err := d.extractByContent(ctx)
	if err != nil {
		return nil, err
	}
	if isReadableText(pages) {
		return pages, nil
	}

	if d.opts.PdftotextFallback {
		popplerPages, popplerErr := extractWithPdftotext(ctx, d.data, d.password)
		if popplerErr == nil && isReadableText(popplerPages) {
			d.method = MethodPdftotext
			return popplerPages, nil
		}
	}

	return nil, failure.Extraction("no readable text could be extracted from the PDF; it may be scanned or use custom font encodings")
}

// extractByContent rebuilds rows from glyph positions, page by page.
func (d *Document) extractByContent(ctx context.Context) ([]models.Page, error) {
	numPages := d.reader.NumPage()
	if numPages == 0 {
		return nil, failure.Extraction("the PDF has no pages")
	}

	pages := make([]models.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := d.readPage(i)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (d *Document) readPage(num int) (page models.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failure.Extraction("could not read the content of page %d", num).Wrap(fmt.Errorf("PDF library crashed: %v", r))
		}
	}()

	page = models.Page{Number: num}
	p := d.reader.Page(num)
	if p.V.IsNull() {
		return page, nil
	}
	page.Lines = buildLines(p.Content().Text)
	return page, nil
}
