package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/core/ports"
	"github.com/vlasenko/incident-analyst/internal/core/usecase"
	"github.com/vlasenko/incident-analyst/internal/observability/metrics"
)

// Config carries the transport knobs of the gateway. Zero values
// disable the corresponding gate.
type Config struct {
	Service         string
	RateLimitRPS    float64
	RateLimitBurst  int
	MaxInFlight     int
	MaxInFlightWait time.Duration
	MaxBodyBytes    int64
	MaxUploadBytes  int64
}

type Router struct {
	cfg Config

	extraction ports.FieldExtractionService
	generation ports.AnalysisService
	history    ports.HistoryService
	exporter   ports.HistoryExporter
	ingestor   ports.ReportIngestor
	reports    ports.ReportReader
	identity   ports.IdentityProvider
	metrics    *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg Config,
	extraction ports.FieldExtractionService,
	generation ports.AnalysisService,
	history ports.HistoryService,
	exporter ports.HistoryExporter,
	ingestor ports.ReportIngestor,
	reports ports.ReportReader,
	identity ports.IdentityProvider,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	if cfg.Service == "" {
		cfg.Service = "api"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	if cfg.MaxInFlightWait <= 0 {
		cfg.MaxInFlightWait = 2 * time.Second
	}
	return &Router{
		cfg:        cfg,
		extraction: extraction,
		generation: generation,
		history:    history,
		exporter:   exporter,
		ingestor:   ingestor,
		reports:    reports,
		identity:   identity,
		metrics:    serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/incidents/extract-fields", rt.extractFields)
	mux.HandleFunc("/v1/incidents/analyses", rt.analyses)
	mux.HandleFunc("/v1/incidents/analyses/export", rt.exportHistory)
	mux.HandleFunc("/v1/reports", rt.uploadReport)
	mux.HandleFunc("/v1/reports/", rt.getReportByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = authMiddleware(rt.identity, handler)
	handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, rt.cfg.MaxInFlightWait)
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.cfg.Service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) extractFields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeServerError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, ok := rt.readBody(w, r)
	if !ok {
		return
	}
	if violations := validateBody(extractFieldsSchema, body); violations != nil {
		writeValidationErrors(w, violations)
		return
	}

	var req struct {
		PDFText string `json:"pdfText"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeValidationErrors(w, map[string]string{"body": "request body is not valid JSON"})
		return
	}

	fields, err := rt.extraction.Extract(r.Context(), auth.FromContext(r.Context()), req.PDFText)
	if err != nil {
		rt.recordExtraction("error")
		writeDomainError(w, err)
		return
	}
	rt.recordExtraction("success")
	writeData(w, http.StatusOK, fields)
}

func (rt *Router) analyses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.generateAnalysis(w, r)
	case http.MethodGet:
		rt.listHistory(w, r)
	default:
		writeServerError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (rt *Router) generateAnalysis(w http.ResponseWriter, r *http.Request) {
	body, ok := rt.readBody(w, r)
	if !ok {
		return
	}
	if violations := validateBody(generateAnalysisSchema, body); violations != nil {
		writeValidationErrors(w, violations)
		return
	}

	var req struct {
		domain.IncidentFields
		PDFText string `json:"pdfText"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeValidationErrors(w, map[string]string{"body": "request body is not valid JSON"})
		return
	}

	result, err := rt.generation.Generate(r.Context(), auth.FromContext(r.Context()), req.IncidentFields, req.PDFText)
	if err != nil {
		rt.recordAnalysis("error", false)
		writeDomainError(w, err)
		return
	}
	rt.recordAnalysis("success", strings.HasPrefix(result.Summary, usecase.SummaryDegradedPrefix))
	writeData(w, http.StatusCreated, result)
}

func (rt *Router) listHistory(w http.ResponseWriter, r *http.Request) {
	records, err := rt.history.List(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, records)
}

func (rt *Router) exportHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeServerError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	workbook, err := rt.exporter.ExportHistoryXLSX(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="incident-analyses.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

func (rt *Router) uploadReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeServerError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeValidationErrors(w, map[string]string{"file": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	report, err := rt.ingestor.Upload(
		r.Context(),
		auth.FromContext(r.Context()),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusAccepted, report)
}

func (rt *Router) getReportByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeServerError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/reports/")
	if id == "" || strings.Contains(id, "/") {
		writeValidationErrors(w, map[string]string{"id": "report id is required"})
		return
	}

	report, err := rt.reports.Get(r.Context(), auth.FromContext(r.Context()), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

// readBody drains the request body under the configured cap. The cap
// guards the schema validator, which needs the whole body in memory.
func (rt *Router) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, rt.cfg.MaxBodyBytes))
	if err != nil {
		writeValidationErrors(w, map[string]string{"body": "request body unreadable or too large"})
		return nil, false
	}
	return body, true
}

func (rt *Router) recordExtraction(status string) {
	if rt.metrics != nil {
		rt.metrics.RecordExtraction(rt.cfg.Service, status)
	}
}

func (rt *Router) recordAnalysis(status string, degraded bool) {
	if rt.metrics != nil {
		rt.metrics.RecordAnalysis(rt.cfg.Service, status, degraded)
	}
}
