package mobile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"

	"golang.org/x/time/rate"

	"github.com/harrylevesque/idqr/internal/crypto"
	"github.com/harrylevesque/idqr/internal/models"
	"github.com/harrylevesque/idqr/internal/payload"
)

// Handler receives every interpreted scan. Returning an error stops the loop.
type Handler func(ctx context.Context, rec models.IdentityRecord) error

// ScannerOptions tunes the scan loop.
type ScannerOptions struct {
	// MaxScansPerSecond throttles reads from the source. Zero or less
	// disables throttling.
	MaxScansPerSecond float64
	// StopAfterFirst ends the loop after the first usable payload.
	StopAfterFirst bool
}

// Stats summarises one Run.
type Stats struct {
	Reads      int
	Skipped    int
	Interprets int
	Faults     int
}

// Scanner pulls payloads from a Source and hands interpreted records to a
// Handler.
type Scanner struct {
	source         Source
	parser         *payload.Parser
	limiter        *rate.Limiter
	stopAfterFirst bool
	logger         *slog.Logger
}

func NewScanner(src Source, parser *payload.Parser, opts ScannerOptions, logger *slog.Logger) *Scanner {
	if parser == nil {
		parser = payload.NewParser()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		source:         src,
		parser:         parser,
		limiter:        newLimiter(opts.MaxScansPerSecond),
		stopAfterFirst: opts.StopAfterFirst,
		logger:         logger,
	}
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 || math.IsInf(perSecond, 1) {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Run loops until the source is exhausted, ctx is done, the handler fails, or
// a usable payload was seen with StopAfterFirst set. Exhaustion is not an
// error.
func (s *Scanner) Run(ctx context.Context, handle Handler) (Stats, error) {
	var (
		stats Stats
		last  string
		seen  bool
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("[idqr.scanner] Scan loop cancelled", "reads", stats.Reads)
			return stats, ctx.Err()
		default:
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return stats, err
		}

		raw, err := s.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}
		stats.Reads++

		if raw == "" || (seen && raw == last) {
			stats.Skipped++
			continue
		}
		last, seen = raw, true

		rec, perr := s.parser.Interpret(raw)
		stats.Interprets++
		if perr != nil {
			stats.Faults++
			s.logger.Warn("[idqr.scanner] Payload only partially understood",
				"digest", crypto.Digest(raw), "bytes", len(raw), "err", perr)
		} else {
			s.logger.Debug("[idqr.scanner] Payload interpreted",
				"digest", crypto.Digest(raw), "bytes", len(raw), "shape", rec.Shape)
		}

		if err := handle(ctx, rec); err != nil {
			return stats, err
		}
		if s.stopAfterFirst && rec.Usable() {
			return stats, nil
		}
	}
}
