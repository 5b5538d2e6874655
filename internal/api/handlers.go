package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harrylevesque/idqr/internal/crypto"
	"github.com/harrylevesque/idqr/internal/payload"
	"github.com/harrylevesque/idqr/internal/utils"
)

// DefaultMaxPayloadBytes caps a scan request body when none is configured.
const DefaultMaxPayloadBytes = 16 << 10

// Options configures a Service.
type Options struct {
	MaxPayloadBytes int64
	Logger          *slog.Logger
	// Registry receives the service metrics. A fresh registry is created
	// when nil.
	Registry *prometheus.Registry
}

// Service implements the scan HTTP API.
type Service struct {
	parser          *payload.Parser
	maxPayloadBytes int64
	logger          *slog.Logger
	registry        *prometheus.Registry
	metrics         *metrics
	healthResponse  []byte
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ScanRequest is the JSON envelope accepted by POST /api/v1/scan.
type ScanRequest struct {
	Data *string `json:"data"`
}

func NewService(parser *payload.Parser, opts Options) *Service {
	if parser == nil {
		parser = payload.NewParser()
	}
	if opts.MaxPayloadBytes <= 0 {
		opts.MaxPayloadBytes = DefaultMaxPayloadBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	healthJSON, _ := json.Marshal(HealthResponse{Status: "ok"})

	return &Service{
		parser:          parser,
		maxPayloadBytes: opts.MaxPayloadBytes,
		logger:          opts.Logger,
		registry:        opts.Registry,
		metrics:         newMetrics(opts.Registry),
		healthResponse:  healthJSON,
	}
}

// Registry returns the registry holding the service metrics.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

// HandleHealth reports liveness.
func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(s.healthResponse)
}

func (s *Service) handleScan(w http.ResponseWriter, r *http.Request) {
	raw, err := s.readPayload(w, r)
	if err != nil {
		s.metrics.rejected.WithLabelValues(strconv.Itoa(utils.StatusCode(err))).Inc()
		respondError(w, err)
		return
	}

	start := time.Now()
	rec, perr := s.parser.Interpret(raw)
	format := payload.Detect(raw).String()
	outcome := "ok"
	if perr != nil {
		outcome = "fault"
	}
	s.metrics.scans.WithLabelValues(format, outcome).Inc()
	s.metrics.duration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	s.metrics.payloadBytes.Observe(float64(len(raw)))

	attrs := []any{
		"request_id", RequestIDFromContext(r.Context()),
		"digest", crypto.Digest(raw),
		"bytes", len(raw),
		"shape", rec.Shape,
	}
	if perr != nil {
		s.logger.Warn("[idqr.api] Payload only partially understood", append(attrs, "err", perr)...)
	} else {
		s.logger.Debug("[idqr.api] Payload interpreted", attrs...)
	}

	respondJSON(w, http.StatusOK, rec)
}

// readPayload returns the decoded QR text carried by the request, either the
// plain body or the "data" member of a JSON envelope.
func (s *Service) readPayload(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", utils.New(http.StatusRequestEntityTooLarge, "payload too large")
		}
		return "", utils.New(http.StatusBadRequest, "unable to read request body")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return string(body), nil
	}

	var req ScanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", utils.New(http.StatusBadRequest, "invalid JSON envelope")
	}
	if req.Data == nil {
		return "", utils.New(http.StatusBadRequest, `missing "data" field`)
	}
	return *req.Data, nil
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(data); err != nil {
			slog.Error("[idqr.api]: error encoding response", "err", err)
		}
	}
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, utils.StatusCode(err), map[string]string{"error": utils.PublicMessage(err)})
}
