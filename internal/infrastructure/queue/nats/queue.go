// Package nats carries the pipeline events between the api and worker
// processes: uploaded reports flow to the text-extraction worker, and
// created analyses are announced for downstream consumers.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vlasenko/incident-analyst/internal/core/ports"
	"github.com/vlasenko/incident-analyst/internal/infrastructure/resilience"
)

var (
	_ ports.EventPublisher  = (*Queue)(nil)
	_ ports.EventSubscriber = (*Queue)(nil)
)

type Queue struct {
	conn            *nats.Conn
	uploadedSubject string
	createdSubject  string
	executor        *resilience.Executor
}

func New(url, uploadedSubject, createdSubject string) (*Queue, error) {
	return NewWithOptions(url, uploadedSubject, createdSubject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func NewWithOptions(url, uploadedSubject, createdSubject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("incident-analyst"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:            conn,
		uploadedSubject: uploadedSubject,
		createdSubject:  createdSubject,
		executor:        options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// event is the wire shape on both subjects. OccurredAt is stamped at
// publish time so consumers can measure delivery lag.
type event struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (q *Queue) PublishReportUploaded(ctx context.Context, reportID string) error {
	return q.publish(ctx, q.uploadedSubject, reportID)
}

func (q *Queue) PublishAnalysisCreated(ctx context.Context, analysisID string) error {
	return q.publish(ctx, q.createdSubject, analysisID)
}

func (q *Queue) publish(ctx context.Context, subject, id string) error {
	payload, err := json.Marshal(event{ID: id, OccurredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish."+subject, call, retryableNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeReportUploaded blocks until ctx is cancelled, feeding report
// ids to the handler from a shared worker queue group. The uploadedAt
// argument is zero when the message carries no timestamp.
func (q *Queue) SubscribeReportUploaded(ctx context.Context, handler func(ctx context.Context, reportID string, uploadedAt time.Time) error) error {
	sub, err := q.conn.QueueSubscribe(q.uploadedSubject, "workers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		var ev event
		if err := json.Unmarshal(msg.Data, &ev); err != nil || ev.ID == "" {
			// Bare-id payloads are tolerated.
			ev = event{ID: string(msg.Data)}
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, ev.ID, ev.OccurredAt); err != nil {
			slog.Error("report_handler_failed", "report_id", ev.ID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
