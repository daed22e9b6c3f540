package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-crm/internal/billing/form"
	"github.com/odyssey-erp/odyssey-crm/internal/billing/totals"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-crm/internal/sales/shared"
)

// TaxSource supplies the tax reference list used to price lines.
type TaxSource interface {
	Reference(ctx context.Context) (totals.TaxList, error)
}

type Service struct {
	repo     Repository
	taxes    TaxSource
	validate *validator.Validate
	logger   *slog.Logger
}

func NewService(repo Repository, taxes TaxSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		taxes:    taxes,
		validate: newValidator(),
		logger:   logger,
	}
}

func numberTemplate(kind Kind) string {
	if kind == KindProposal {
		return shared.ProposalNumberTemplate
	}
	return shared.InvoiceNumberTemplate
}

// Preview computes a form snapshot and the submit payload without storing
// anything. Malformed numbers are coerced rather than rejected.
func (s *Service) Preview(ctx context.Context, in form.Input) (form.Snapshot, form.Payload, error) {
	taxes, err := s.taxes.Reference(ctx)
	if err != nil {
		return form.Snapshot{}, form.Payload{}, fmt.Errorf("load taxes: %w", err)
	}
	f := form.New(taxes, in)
	return f.Snapshot(), f.Payload(), nil
}

func (s *Service) Create(ctx context.Context, kind Kind, req DocumentRequest) (*Document, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown document kind %q", httpx.ErrValidation, kind)
	}
	issue, due, err := validateRequest(s.validate, req)
	if err != nil {
		return nil, err
	}
	taxes, err := s.taxes.Reference(ctx)
	if err != nil {
		return nil, fmt.Errorf("load taxes: %w", err)
	}

	doc := Document{
		Reference:     uuid.New(),
		Kind:          kind,
		CompanyID:     req.CompanyID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: req.CustomerEmail,
		IssueDate:     issue,
		DueDate:       due,
		Status:        StatusDraft,
		Currency:      strings.ToUpper(req.Currency),
		Notes:         req.Notes,
	}
	in := req.toInput()
	price(&doc, in, taxes)

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		seq, err := repo.NextSequence(ctx, doc.CompanyID, kind, shared.NumberPeriod(issue))
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		doc.DocNumber, err = shared.FormatDocNumber(numberTemplate(kind), issue, seq)
		if err != nil {
			return err
		}
		id, err = repo.Create(ctx, doc)
		if err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return repo.ReplaceLines(ctx, id, doc.Lines)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		slog.String("kind", string(kind)),
		slog.String("doc_number", doc.DocNumber),
		slog.Float64("grand_total", doc.GrandTotal),
	)
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, kind Kind, id int64, req DocumentRequest) (*Document, error) {
	existing, err := s.get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !existing.Editable() {
		return nil, ErrNotEditable
	}

	req.CompanyID = existing.CompanyID
	issue, due, err := validateRequest(s.validate, req)
	if err != nil {
		return nil, err
	}
	taxes, err := s.taxes.Reference(ctx)
	if err != nil {
		return nil, fmt.Errorf("load taxes: %w", err)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !current.Editable() {
			return ErrNotEditable
		}
		doc := *current
		doc.CustomerName = strings.TrimSpace(req.CustomerName)
		doc.CustomerEmail = req.CustomerEmail
		doc.IssueDate = issue
		doc.DueDate = due
		doc.Currency = strings.ToUpper(req.Currency)
		doc.Notes = req.Notes
		price(&doc, req.toInput(), taxes)
		return save(ctx, repo, doc)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// save writes a draft and its lines. Repository.Update refuses rows that are
// no longer DRAFT, which rolls the line replacement back with it.
func save(ctx context.Context, repo Repository, doc Document) error {
	if err := repo.Update(ctx, doc); err != nil {
		if errors.Is(err, ErrNotEditable) {
			return err
		}
		return fmt.Errorf("update document: %w", err)
	}
	return repo.ReplaceLines(ctx, doc.ID, doc.Lines)
}

func (s *Service) Get(ctx context.Context, kind Kind, id int64) (*Document, error) {
	return s.get(ctx, kind, id)
}

// GetByReference looks a document up by its public reference.
func (s *Service) GetByReference(ctx context.Context, kind Kind, ref uuid.UUID) (*Document, error) {
	doc, err := s.repo.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if doc.Kind != kind {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *Service) get(ctx context.Context, kind Kind, id int64) (*Document, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid document ID", httpx.ErrValidation)
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Kind != kind {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context, req ListRequest) ([]Document, int, error) {
	if req.CompanyID <= 0 {
		return nil, 0, fmt.Errorf("%w: company_id is required", httpx.ErrValidation)
	}
	return s.repo.List(ctx, req)
}

// Transition applies a workflow action and returns the updated document.
func (s *Service) Transition(ctx context.Context, kind Kind, id int64, action Action) (*Document, error) {
	doc, err := s.get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	next, err := NextStatus(kind, doc.Status, action)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	s.logger.Info("document status changed",
		slog.String("doc_number", doc.DocNumber),
		slog.String("from", string(doc.Status)),
		slog.String("to", string(next)),
	)
	doc.Status = next
	return doc, nil
}

// RecalculateDraftsForTax reprices every draft that uses taxID against the
// current tax list. Documents that left DRAFT since the lookup are skipped.
func (s *Service) RecalculateDraftsForTax(ctx context.Context, taxID int64) (int, error) {
	ids, err := s.repo.ListDraftIDsByTax(ctx, taxID)
	if err != nil {
		return 0, fmt.Errorf("list drafts: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	taxes, err := s.taxes.Reference(ctx)
	if err != nil {
		return 0, fmt.Errorf("load taxes: %w", err)
	}

	updated := 0
	var errs []error
	for _, id := range ids {
		err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
			doc, err := repo.Get(ctx, id)
			if err != nil {
				return err
			}
			if !doc.Editable() {
				return ErrNotEditable
			}
			price(doc, inputOf(*doc), taxes)
			return save(ctx, repo, *doc)
		})
		switch {
		case errors.Is(err, ErrNotEditable):
			continue
		case err != nil:
			errs = append(errs, fmt.Errorf("document %d: %w", id, err))
		default:
			updated++
		}
	}
	s.logger.Info("drafts recalculated", slog.Int64("tax_id", taxID), slog.Int("updated", updated))
	return updated, errors.Join(errs...)
}

// price recomputes lines and totals of doc from in. Stored amounts are
// rounded to two decimals.
func price(doc *Document, in form.Input, taxes totals.TaxList) {
	derived := form.Derive(in, taxes)
	payload := form.BuildPayload(in, derived)

	doc.TaxEnabled = payload.TaxEnabled
	doc.DiscountType = string(payload.Discount.Type)
	doc.DiscountValue = payload.Discount.Value
	doc.Subtotal = payload.Subtotal
	doc.TotalTax = payload.TotalTax
	doc.TotalLineDiscount = payload.TotalLineDiscount
	doc.DocumentDiscountAmount = payload.DocumentDiscountAmount
	doc.TotalDiscount = payload.TotalDiscount
	doc.GrandTotal = payload.GrandTotal

	doc.Lines = make([]Line, len(payload.Lines))
	for i, p := range payload.Lines {
		l := Line{
			DocumentID:      doc.ID,
			LineOrder:       i + 1,
			Name:            strings.TrimSpace(p.Name),
			Quantity:        p.Quantity,
			UnitPrice:       p.UnitPrice,
			DiscountPercent: p.DiscountPercent,
			TaxName:         p.TaxName,
			TaxPercent:      p.TaxPercent,
			Amount:          p.Amount,
			DiscountAmount:  p.DiscountAmount,
			TaxAmount:       p.TaxAmount,
			LineTotal:       p.LineTotal,
		}
		if p.Description != "" {
			desc := p.Description
			l.Description = &desc
		}
		// Unknown tax ids are priced without tax and not stored.
		if _, ok := taxes.Find(p.TaxID); ok {
			taxID := p.TaxID
			l.TaxID = &taxID
		}
		doc.Lines[i] = l
	}
}
