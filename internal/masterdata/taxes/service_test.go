package taxes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-crm/internal/billing/totals"
	"github.com/odyssey-erp/odyssey-crm/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/cache"
)

type mockRepository struct {
	mu       sync.Mutex
	taxes    map[int64]Tax
	nextID   int64
	listAlls int
	writes   int
	// gate, when set, blocks ListAll until it is closed.
	gate    chan struct{}
	started chan struct{}
	once    sync.Once
}

func newMockRepository(seed ...Tax) *mockRepository {
	m := &mockRepository{taxes: make(map[int64]Tax), nextID: 1}
	for _, t := range seed {
		t.ID = m.nextID
		m.taxes[t.ID] = t
		m.nextID++
	}
	return m
}

func (m *mockRepository) List(ctx context.Context, filters shared.ListFilters) ([]Tax, int, error) {
	all, _ := m.ListAll(ctx)
	return all, len(all), nil
}

func (m *mockRepository) ListAll(ctx context.Context) ([]Tax, error) {
	if m.gate != nil {
		m.once.Do(func() { close(m.started) })
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listAlls++
	out := make([]Tax, 0, len(m.taxes))
	for id := int64(1); id < m.nextID; id++ {
		if t, ok := m.taxes[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Tax, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.taxes[id]
	if !ok {
		return Tax{}, shared.ErrNotFound
	}
	return t, nil
}

func (m *mockRepository) Create(ctx context.Context, tax Tax) (Tax, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tax.ID = m.nextID
	m.nextID++
	m.taxes[tax.ID] = tax
	return tax, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, tax Tax) (Tax, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.taxes[id]; !ok {
		return Tax{}, shared.ErrNotFound
	}
	m.writes++
	tax.ID = id
	tax.UpdatedAt = time.Date(2025, time.January, 1, 0, 0, m.writes, 0, time.UTC)
	m.taxes[id] = tax
	return tax, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.taxes[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.taxes, id)
	return nil
}

type recordingEnqueuer struct {
	taxIDs    []int64
	revisions []time.Time
}

func (r *recordingEnqueuer) EnqueueRecalculate(ctx context.Context, taxID int64, revision time.Time) error {
	r.taxIDs = append(r.taxIDs, taxID)
	r.revisions = append(r.revisions, revision)
	return nil
}

func newTestService(t *testing.T, repo Repository, enqueuer RecalcEnqueuer) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, cache.NewJSONCache(client, "taxes", time.Minute), enqueuer, nil)
}

func TestReferenceIsCached(t *testing.T) {
	repo := newMockRepository(Tax{Code: "GST18", Name: "GST 18%", Rate: 18})
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	first, err := svc.Reference(ctx)
	require.NoError(t, err)
	second, err := svc.Reference(ctx)
	require.NoError(t, err)

	require.Len(t, second, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, 18.0, second[0].Percentage)
	assert.Equal(t, 1, repo.listAlls)
}

func TestSharedLoadSurvivesFirstCallerCancel(t *testing.T) {
	repo := newMockRepository(Tax{Code: "GST18", Name: "GST 18%", Rate: 18})
	repo.gate = make(chan struct{})
	repo.started = make(chan struct{})
	svc := newTestService(t, repo, nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Reference(firstCtx)
		firstErr <- err
	}()
	<-repo.started

	type result struct {
		list totals.TaxList
		err  error
	}
	second := make(chan result, 1)
	go func() {
		list, err := svc.Reference(context.Background())
		second <- result{list, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(repo.gate)
	got := <-second
	require.NoError(t, got.err)
	require.Len(t, got.list, 1)
	assert.Equal(t, 18.0, got.list[0].Percentage)
}

func TestWritesInvalidateReference(t *testing.T) {
	repo := newMockRepository(Tax{Code: "GST18", Name: "GST 18%", Rate: 18})
	enqueuer := &recordingEnqueuer{}
	svc := newTestService(t, repo, enqueuer)
	ctx := context.Background()

	_, err := svc.Reference(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, 1, Tax{Code: "GST18", Name: "GST 18%", Rate: 12}))
	list, err := svc.Reference(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.0, list[0].Percentage)
	assert.Equal(t, []int64{1}, enqueuer.taxIDs)

	_, err = svc.Create(ctx, Tax{Code: "VAT5", Name: "VAT 5%", Rate: 5})
	require.NoError(t, err)
	list, err = svc.Reference(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.Delete(ctx, 1))
	list, err = svc.Reference(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, []int64{1}, enqueuer.taxIDs)
}

func TestEachRateChangeEnqueuesItsOwnRevision(t *testing.T) {
	repo := newMockRepository(Tax{Code: "GST18", Name: "GST 18%", Rate: 18})
	enqueuer := &recordingEnqueuer{}
	svc := newTestService(t, repo, enqueuer)
	ctx := context.Background()

	require.NoError(t, svc.Update(ctx, 1, Tax{Code: "GST18", Name: "GST", Rate: 15}))
	require.NoError(t, svc.Update(ctx, 1, Tax{Code: "GST18", Name: "GST", Rate: 12}))

	assert.Equal(t, []int64{1, 1}, enqueuer.taxIDs)
	require.Len(t, enqueuer.revisions, 2)
	assert.True(t, enqueuer.revisions[1].After(enqueuer.revisions[0]))
}

func TestValidation(t *testing.T) {
	svc := newTestService(t, newMockRepository(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Tax{Name: "No code", Rate: 5})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, Tax{Code: "X", Rate: 5})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, Tax{Code: "X", Name: "Too high", Rate: 101})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Get(ctx, 0)
	assert.ErrorIs(t, err, shared.ErrValidation)

	assert.ErrorIs(t, svc.Update(ctx, 9, Tax{Code: "X", Name: "Missing", Rate: 1}), shared.ErrNotFound)
}

func TestHandlerRoutes(t *testing.T) {
	repo := newMockRepository(Tax{Code: "GST18", Name: "GST 18%", Rate: 18})
	h := NewHandler(nil, newTestService(t, repo, nil))
	router := chi.NewRouter()
	router.Route("/masterdata", h.MountRoutes)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/masterdata/taxes/reference", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		Data []struct {
			ID         int64   `json:"id"`
			Percentage float64 `json:"percentage"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, 18.0, body.Data[0].Percentage)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/masterdata/taxes", strings.NewReader(`{"code":"","name":"x","rate":1}`)))
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/masterdata/taxes", strings.NewReader(`{"code":"VAT5","name":"VAT 5%","rate":5}`)))
	assert.Equal(t, http.StatusCreated, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/masterdata/taxes/99", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/masterdata/taxes/1", nil))
	assert.Equal(t, http.StatusNoContent, res.Code)
}
