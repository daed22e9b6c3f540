package taxes

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-crm/internal/billing/totals"
	"github.com/odyssey-erp/odyssey-crm/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/cache"
)

// RecalcEnqueuer schedules recomputation of drafts that reference a tax.
// revision identifies the tax write; each distinct revision gets its own run.
type RecalcEnqueuer interface {
	EnqueueRecalculate(ctx context.Context, taxID int64, revision time.Time) error
}

type Service struct {
	repo     Repository
	cache    *cache.JSONCache
	enqueuer RecalcEnqueuer
	logger   *slog.Logger
	loads    singleflight.Group
}

// NewService wires the tax service. cache and enqueuer may be nil.
func NewService(repo Repository, c *cache.JSONCache, enqueuer RecalcEnqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: c, enqueuer: enqueuer, logger: logger}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Tax, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Tax, error) {
	if id <= 0 {
		return Tax{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// Reference returns the tax list consumed by the totals calculator. Results
// are cached and concurrent misses share a single database load.
func (s *Service) Reference(ctx context.Context) (totals.TaxList, error) {
	key, err := s.cache.Key(ctx, "reference")
	if err != nil {
		s.logger.Warn("tax cache key", slog.Any("error", err))
		return s.loadReference(ctx)
	}

	// The load is shared by every waiter, so one caller going away must not
	// cancel it for the rest.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(key, func() (any, error) {
		var list totals.TaxList
		err := s.cache.Fetch(loadCtx, key, &list, func(ctx context.Context) (any, error) {
			return s.loadReference(ctx)
		})
		return list, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(totals.TaxList), nil
	}
}

func (s *Service) loadReference(ctx context.Context) (totals.TaxList, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	list := make(totals.TaxList, 0, len(rows))
	for _, t := range rows {
		list = append(list, t.Reference())
	}
	return list, nil
}

func (s *Service) Create(ctx context.Context, tax Tax) (Tax, error) {
	if err := s.validate(tax); err != nil {
		return Tax{}, err
	}
	created, err := s.repo.Create(ctx, tax)
	if err != nil {
		return Tax{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Update changes a tax and schedules recomputation of drafts using it.
func (s *Service) Update(ctx context.Context, id int64, tax Tax) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(tax); err != nil {
		return err
	}
	updated, err := s.repo.Update(ctx, id, tax)
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	s.enqueueRecalc(ctx, id, updated.UpdatedAt)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	// Lines keep their tax snapshot; the foreign key is cleared by the database.
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("tax cache bump", slog.Any("error", err))
	}
}

func (s *Service) enqueueRecalc(ctx context.Context, taxID int64, revision time.Time) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueueRecalculate(ctx, taxID, revision); err != nil {
		s.logger.Warn("enqueue draft recalculation", slog.Int64("tax_id", taxID), slog.Any("error", err))
	}
}
