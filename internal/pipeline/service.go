// Package pipeline runs an uploaded statement through intake, decryption,
// layout extraction and normalization.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/failure"
	"github.com/insightdelivered/card-statement-parser/internal/metrics"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/normalizer"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
)

// Stage names used for timing metrics.
const (
	StageDecrypt   = "decrypt"
	StageExtract   = "extract"
	StageNormalize = "normalize"
)

// Service parses statements. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	normalizer *normalizer.Normalizer
	opts       extractor.Options
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewService builds a Service. m may be nil to disable metrics.
func NewService(norm *normalizer.Normalizer, opts extractor.Options, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		normalizer: norm,
		opts:       opts,
		metrics:    m,
		logger:     logger,
	}
}

// Parse runs every stage for one upload. Either a complete result or a
// categorized error is returned, never both.
func (s *Service) Parse(ctx context.Context, up Upload) (result *models.ParseResult, err error) {
	start := time.Now()
	log := s.logger.With(
		zap.String("filename", filepath.Base(up.Filename)),
		zap.Int("size", len(up.Data)),
	)

	defer func() {
		elapsed := time.Since(start)
		if err != nil {
			kind := failure.KindOf(err)
			s.metrics.ObserveParse(kind.String(), elapsed)
			fields := []zap.Field{zap.String("kind", kind.String()), zap.Error(err), zap.Duration("duration", elapsed)}
			if kind == failure.KindUnexpected {
				log.Error("statement parse failed", fields...)
			} else {
				log.Warn("statement rejected", fields...)
			}
			return
		}
		s.metrics.ObserveParse(metrics.OutcomeSuccess, elapsed)
		s.metrics.ObserveTransactions(len(result.Transactions))
		log.Info("statement parsed",
			zap.Int("transactions", len(result.Transactions)),
			zap.String("available_limit", s.normalizer.Display(result.AvailableLimit)),
			zap.Duration("duration", elapsed),
		)
	}()

	if err := up.Validate(); err != nil {
		return nil, err
	}

	// An explicit issuer is checked before any decryption work is done.
	var layout parser.Parser
	if up.Issuer != "" {
		if layout, err = parser.New(models.Issuer(up.Issuer)); err != nil {
			return nil, err
		}
	}

	stageStart := time.Now()
	doc, err := extractor.Open(ctx, up.Data, up.Password, s.opts)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStage(StageDecrypt, time.Since(stageStart))
	log.Debug("statement decrypted",
		zap.Bool("encrypted", doc.Encrypted()),
		zap.String("method", doc.Method()),
		zap.Int("pages", doc.NumPages()),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stageStart = time.Now()
	pages, err := doc.Pages(ctx)
	if err != nil {
		return nil, err
	}
	if layout == nil {
		issuer, err := parser.AutoDetect(pages)
		if err != nil {
			return nil, err
		}
		if layout, err = parser.New(issuer); err != nil {
			return nil, err
		}
	}
	raw, err := layout.Parse(pages)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStage(StageExtract, time.Since(stageStart))
	log.Debug("statement layout extracted",
		zap.String("layout", layout.BankName()),
		zap.Int("rows", len(raw.Transactions)),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stageStart = time.Now()
	result, err = s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStage(StageNormalize, time.Since(stageStart))
	return result, nil
}
