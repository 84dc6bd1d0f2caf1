package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

var errWrongPassword = errors.New("pdftotext: incorrect password")

// extractWithPdftotext runs the external pdftotext command (poppler-utils)
// in layout mode. It handles encryption schemes and font encodings the Go
// reader cannot. The upload is written to a temporary file that is removed
// before returning.
func extractWithPdftotext(ctx context.Context, data []byte, password string) ([]models.Page, error) {
	bin, err := exec.LookPath("pdftotext")
	if err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	args := []string{"-layout", "-enc", "UTF-8"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, tmp.Name(), "-")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if strings.Contains(stderr.String(), "Incorrect password") {
			return nil, errWrongPassword
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("pdftotext failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	pages := pagesFromLayoutText(stdout.String())
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftotext produced no output")
	}
	return pages, nil
}
