package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/quotebook/quotebook/internal/billing"
	jobmetrics "github.com/quotebook/quotebook/internal/jobs"
)

// Worker wraps the Asynq server.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Logger      *slog.Logger
	Concurrency int
	Handlers    []TaskHandler
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}
	return &Worker{server: srv, mux: mux, logger: cfg.Logger}
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Client submits export jobs to the queue.
type Client struct {
	client *asynq.Client
	store  *StatusStore
	newID  func() string
}

// NewClient constructs an Asynq client that records every enqueued export in
// store.
func NewClient(redisOpts asynq.RedisClientOpt, store *StatusStore) *Client {
	return &Client{
		client: asynq.NewClient(redisOpts),
		store:  store,
		newID:  uuid.NewString,
	}
}

// Enqueue schedules doc for rendering and returns its pending status. The
// caller does not wait for the file.
func (c *Client) Enqueue(ctx context.Context, doc billing.Document, format Format) (Status, error) {
	taskID := c.newID()
	task, err := NewRenderTask(RenderPayload{TaskID: taskID, Format: format, Document: doc})
	if err != nil {
		return Status{}, fmt.Errorf("build export task: %w", err)
	}
	st := Status{TaskID: taskID, Kind: string(doc.Kind), Number: doc.Number, Format: format}
	if err := c.store.Pending(ctx, st); err != nil {
		return Status{}, err
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.TaskID(taskID)); err != nil {
		return Status{}, fmt.Errorf("enqueue export: %w", err)
	}
	st.State = StatePending
	return st, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// HTMLRenderer turns HTML into PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Processor executes render tasks.
type Processor struct {
	renderer HTMLRenderer
	store    *StatusStore
	dir      string
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
}

// NewProcessor constructs a processor writing files into dir.
func NewProcessor(renderer HTMLRenderer, store *StatusStore, dir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{renderer: renderer, store: store, dir: dir, logger: logger, metrics: metrics}
}

// Handlers returns the task handlers the worker registers.
func (p *Processor) Handlers() []TaskHandler {
	return []TaskHandler{{Type: TaskTypeRenderDocument, Handler: p.HandleRenderTask}}
}

// HandleRenderTask processes TaskTypeRenderDocument tasks.
func (p *Processor) HandleRenderTask(ctx context.Context, t *asynq.Task) error {
	var payload RenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode export payload: %v: %w", err, asynq.SkipRetry)
	}
	tracker := p.metrics.Track(TaskTypeRenderDocument)
	err := p.Process(ctx, payload)
	if err != nil && lastAttempt(ctx) {
		if _, ferr := p.store.Fail(ctx, payload.TaskID, err); ferr != nil {
			p.logger.Warn("export failure not recorded", slog.String("task_id", payload.TaskID), slog.Any("error", ferr))
		}
	}
	return tracker.End(err)
}

// Process renders and saves one document, then signals completion.
func (p *Processor) Process(ctx context.Context, payload RenderPayload) error {
	html, err := RenderLayout(payload.Document)
	if err != nil {
		return err
	}

	var data []byte
	switch payload.Format {
	case FormatHTML:
		data = []byte(html)
	case FormatPDF, "":
		payload.Format = FormatPDF
		data, err = p.renderer.RenderHTML(ctx, html)
		if err != nil {
			return fmt.Errorf("render %s: %w", payload.Document.Number, err)
		}
	default:
		return fmt.Errorf("unsupported export format %q: %w", payload.Format, asynq.SkipRetry)
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("prepare export dir: %w", err)
	}
	path := filepath.Join(p.dir, FileName(payload.Document, payload.Format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	first, err := p.store.Complete(ctx, payload.TaskID, path)
	if err != nil {
		return err
	}
	if !first {
		p.logger.Info("export already finalised", slog.String("task_id", payload.TaskID))
		return nil
	}
	p.logger.Info("export written",
		slog.String("task_id", payload.TaskID),
		slog.String("document", payload.Document.Number),
		slog.String("file", path),
	)
	return nil
}

func lastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}
