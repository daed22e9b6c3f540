package taxes

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-crm/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers tax routes under /masterdata.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/taxes", h.List)
	r.Get("/taxes/reference", h.Reference)
	r.Post("/taxes", h.Create)
	r.Get("/taxes/{id}", h.Show)
	r.Put("/taxes/{id}", h.Update)
	r.Delete("/taxes/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromQuery(r.URL.Query())

	taxes, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list taxes failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":  taxes,
		"total": total,
		"page":  filters.Page,
		"limit": filters.Limit,
	})
}

// Reference serves the id/name/percentage list used by line item dropdowns.
func (h *Handler) Reference(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Reference(r.Context())
	if err != nil {
		h.logger.Error("tax reference failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": list})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	tax, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get tax failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tax)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req TaxRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	created, err := h.service.Create(r.Context(), req.toTax())
	if err != nil {
		h.logger.Warn("create tax failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req TaxRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	if err := h.service.Update(r.Context(), id, req.toTax()); err != nil {
		h.logger.Warn("update tax failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}

	tax, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tax)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete tax failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tax ID")
		return 0, false
	}
	return id, true
}
