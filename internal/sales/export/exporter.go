// Package export renders stored invoices and proposals as CSV or PDF.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/odyssey-crm/internal/sales/documents"
)

// HTMLRenderer converts an HTML page to PDF. *report.Client satisfies it.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, filename, html string) ([]byte, error)
}

// Exporter implements documents.Exporter. Without an HTML renderer PDFs are
// laid out locally.
type Exporter struct {
	renderer HTMLRenderer
	logger   *slog.Logger
}

func NewExporter(renderer HTMLRenderer, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{renderer: renderer, logger: logger}
}

func (e *Exporter) RenderPDF(ctx context.Context, doc *documents.Document) ([]byte, error) {
	if e.renderer == nil {
		return renderLocalPDF(doc)
	}
	html, err := buildHTML(doc)
	if err != nil {
		return nil, fmt.Errorf("build html: %w", err)
	}
	pdf, err := e.renderer.RenderHTML(ctx, doc.DocNumber, html)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", doc.DocNumber, err)
	}
	e.logger.Debug("pdf rendered", slog.String("doc_number", doc.DocNumber), slog.Int("bytes", len(pdf)))
	return pdf, nil
}

var _ documents.Exporter = (*Exporter)(nil)
