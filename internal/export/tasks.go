// Package export renders quotes and invoices to files outside the request
// path. Requests enqueue an asynq task; the worker lays the document out as
// HTML, optionally converts it to PDF through Gotenberg, writes the file and
// records completion once in Redis.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/quotebook/quotebook/internal/billing"
)

const (
	// QueueDefault is the queue export tasks run on.
	QueueDefault = "default"
	// TaskTypeRenderDocument renders one quote or invoice.
	TaskTypeRenderDocument = "document:render"
	// MaxRetry bounds render attempts before the export is marked failed.
	MaxRetry = 3
)

// Format selects the rendered file type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// ParseFormat defaults to PDF.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "pdf":
		return FormatPDF, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: unsupported export format %q", billing.ErrValidation, raw)
}

// RenderPayload carries a full copy of the document so the worker never reads
// application state.
type RenderPayload struct {
	TaskID   string           `json:"task_id"`
	Format   Format           `json:"format"`
	Document billing.Document `json:"document"`
}

// NewRenderTask constructs an asynq task for payload.
func NewRenderTask(payload RenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRenderDocument, data, asynq.MaxRetry(MaxRetry)), nil
}

// FileName is the name the exported file is saved under, e.g.
// Invoice-INV-2024-0001.pdf.
func FileName(doc billing.Document, format Format) string {
	label := "Quote"
	if doc.Kind == billing.DocumentInvoice {
		label = "Invoice"
	}
	number := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, doc.Number)
	return fmt.Sprintf("%s-%s.%s", label, number, format)
}
