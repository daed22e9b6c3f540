package documents

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers invoice and proposal routes under /sales.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/invoices", h.kindRoutes(KindInvoice))
	r.Route("/proposals", h.kindRoutes(KindProposal))
}

func (h *Handler) kindRoutes(kind Kind) func(chi.Router) {
	k := kindHandler{Handler: h, kind: kind}
	return func(r chi.Router) {
		r.Get("/", k.List)
		r.Post("/", k.Create)
		r.Post("/preview", k.Preview)
		r.Get("/ref/{reference}", k.ShowByReference)
		r.Get("/{id}", k.Show)
		r.Put("/{id}", k.Update)
		r.Post("/{id}/{action}", k.Transition)
		r.Get("/{id}/export.csv", k.ExportCSV)
		r.Get("/{id}/export.pdf", k.ExportPDF)
	}
}
