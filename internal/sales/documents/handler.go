package documents

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-crm/internal/billing/form"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

// Exporter renders a stored document for download.
type Exporter interface {
	WriteCSV(w io.Writer, doc *Document) error
	RenderPDF(ctx context.Context, doc *Document) ([]byte, error)
}

type Handler struct {
	logger   *slog.Logger
	service  *Service
	exporter Exporter
}

func NewHandler(logger *slog.Logger, service *Service, exporter Exporter) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, exporter: exporter}
}

type kindHandler struct {
	*Handler
	kind Kind
}

func (h kindHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	companyID, _ := strconv.ParseInt(q.Get("company_id"), 10, 64)
	limit, offset := pageParams(q.Get("limit"), q.Get("offset"))

	req := ListRequest{
		CompanyID: companyID,
		Kind:      h.kind,
		Search:    q.Get("q"),
		Limit:     limit,
		Offset:    offset,
	}
	if status := q.Get("status"); status != "" {
		s := Status(status)
		req.Status = &s
	}
	for param, dest := range map[string]**time.Time{"from": &req.From, "to": &req.To} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", param+" must be YYYY-MM-DD")
			return
		}
		*dest = &day
	}

	docs, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list documents failed", slog.String("kind", string(h.kind)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":   docs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h kindHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Get(r.Context(), h.kind, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h kindHandler) ShowByReference(w http.ResponseWriter, r *http.Request) {
	ref, err := uuid.Parse(chi.URLParam(r, "reference"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document reference")
		return
	}
	doc, err := h.service.GetByReference(r.Context(), h.kind, ref)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h kindHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	doc, err := h.service.Create(r.Context(), h.kind, req)
	if err != nil {
		h.logger.Warn("create document failed", slog.String("kind", string(h.kind)), slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h kindHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req DocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	doc, err := h.service.Update(r.Context(), h.kind, id, req)
	if err != nil {
		h.logger.Warn("update document failed", slog.Int64("id", id), slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// Preview returns recomputed totals for an unsaved form.
func (h kindHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var in form.Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	snapshot, payload, err := h.service.Preview(r.Context(), in)
	if err != nil {
		h.logger.Error("preview failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"snapshot": snapshot,
		"payload":  payload,
	})
}

func (h kindHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	action := Action(chi.URLParam(r, "action"))
	doc, err := h.service.Transition(r.Context(), h.kind, id, action)
	if err != nil {
		h.logger.Warn("document transition failed",
			slog.Int64("id", id), slog.String("action", string(action)), slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h kindHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Get(r.Context(), h.kind, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.DocNumber+`.csv"`)
	if err := h.exporter.WriteCSV(w, doc); err != nil {
		h.logger.Error("csv export failed", slog.Int64("id", id), slog.Any("error", err))
	}
}

func (h kindHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Get(r.Context(), h.kind, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	pdf, err := h.exporter.RenderPDF(r.Context(), doc)
	if err != nil {
		h.logger.Error("pdf export failed", slog.Int64("id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Export Failed", "unable to render PDF")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.DocNumber+`.pdf"`)
	_, _ = w.Write(pdf)
}

func (h kindHandler) respondError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		httpx.ValidationProblem(w, verr.Fields)
		return
	}
	httpx.RespondError(w, err)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document ID")
		return 0, false
	}
	return id, true
}

func pageParams(rawLimit, rawOffset string) (int, int) {
	limit, err := strconv.Atoi(rawLimit)
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	offset, err := strconv.Atoi(rawOffset)
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
