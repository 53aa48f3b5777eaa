// Package bootstrap wires the infrastructure into the use cases once,
// shared by the api, worker and mcp binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/vlasenko/incident-analyst/internal/config"
	"github.com/vlasenko/incident-analyst/internal/core/ports"
	"github.com/vlasenko/incident-analyst/internal/core/usecase"
	"github.com/vlasenko/incident-analyst/internal/export"
	"github.com/vlasenko/incident-analyst/internal/infrastructure/extractor/pdftext"
	"github.com/vlasenko/incident-analyst/internal/infrastructure/identity"
	"github.com/vlasenko/incident-analyst/internal/infrastructure/llm/openai"
	"github.com/vlasenko/incident-analyst/internal/infrastructure/queue/nats"
	"github.com/vlasenko/incident-analyst/internal/infrastructure/repository/postgres"
	"github.com/vlasenko/incident-analyst/internal/infrastructure/resilience"
	"github.com/vlasenko/incident-analyst/internal/infrastructure/storage/localfs"
	"github.com/vlasenko/incident-analyst/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue         *nats.Queue
	Identity      ports.IdentityProvider
	ServerMetrics *metrics.HTTPServerMetrics

	ExtractUC  ports.FieldExtractionService
	GenerateUC ports.AnalysisService
	HistoryUC  ports.HistoryService
	Exporter   ports.HistoryExporter
	UploadUC   *usecase.UploadReportUseCase
	ProcessUC  ports.ReportProcessor

	closeFn func()
}

// New wires the full dependency graph. The service name labels the
// metrics this process emits.
func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	incidentRepo := postgres.NewIncidentRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSUploadedSubject, cfg.NATSAnalysisSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	serverMetrics := metrics.NewHTTPServerMetrics(service)

	// Provider calls are strictly one attempt each; the breaker only
	// sheds load once the provider is clearly down.
	llmClient := openai.New(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		ObserveDuration: func(operation string, duration time.Duration) {
			serverMetrics.ObserveLLMCall(service, operation, duration)
		},
	}, resilience.NewExecutor(resilience.SingleAttempt()))
	fieldExtractor := openai.NewExtractor(llmClient)
	analyst := openai.NewAnalyst(llmClient)

	identityClient := identity.New(identity.Config{
		BaseURL: cfg.IdentityURL,
		Timeout: time.Duration(cfg.IdentityTimeoutSeconds) * time.Second,
	})

	textExtractor := pdftext.NewExtractor(storage)

	extractUC := usecase.NewExtractFieldsUseCase(fieldExtractor)
	generateUC := usecase.NewGenerateAnalysisUseCase(analyst, incidentRepo, queue)
	historyUC := usecase.NewHistoryUseCase(incidentRepo)
	uploadUC := usecase.NewUploadReportUseCase(reportRepo, storage, queue)
	processUC := usecase.NewProcessReportUseCase(reportRepo, textExtractor)
	exporter := export.NewService(historyUC, nil)

	return &App{
		Config: cfg,

		Queue:         queue,
		Identity:      identityClient,
		ServerMetrics: serverMetrics,

		ExtractUC:  extractUC,
		GenerateUC: generateUC,
		HistoryUC:  historyUC,
		Exporter:   exporter,
		UploadUC:   uploadUC,
		ProcessUC:  processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
