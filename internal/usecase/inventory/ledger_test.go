package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartfox/fulfillment-service/internal/domain"
	"github.com/cartfox/fulfillment-service/internal/infrastructure/metrics"
)

// memInventoryRepo implements domain.InventoryRepository with the same
// conditional-write semantics as the postgres repository.
type memInventoryRepo struct {
	mu      sync.Mutex
	records map[domain.VariantRef]*domain.InventoryRecord
}

func newMemInventoryRepo() *memInventoryRepo {
	return &memInventoryRepo{records: make(map[domain.VariantRef]*domain.InventoryRecord)}
}

func (r *memInventoryRepo) seed(ref domain.VariantRef, available, reserved, version int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[ref] = &domain.InventoryRecord{
		ID:        ref.ProductID + "/" + ref.VariantID,
		ProductID: ref.ProductID,
		VariantID: ref.VariantID,
		Available: available,
		Reserved:  reserved,
		Version:   version,
	}
}

func (r *memInventoryRepo) GetByVariant(_ context.Context, ref domain.VariantRef) (*domain.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[ref]
	if !ok {
		return nil, domain.ErrInventoryNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *memInventoryRepo) CreateRecord(_ context.Context, record *domain.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref := domain.VariantRef{ProductID: record.ProductID, VariantID: record.VariantID}
	copied := *record
	r.records[ref] = &copied
	return nil
}

func (r *memInventoryRepo) UpdateConditional(_ context.Context, record *domain.InventoryRecord, expectedVersion int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref := domain.VariantRef{ProductID: record.ProductID, VariantID: record.VariantID}
	stored, ok := r.records[ref]
	if !ok {
		return false, domain.ErrInventoryNotFound
	}
	if stored.Version != expectedVersion {
		return false, nil
	}
	stored.Available = record.Available
	stored.Reserved = record.Reserved
	stored.Version = expectedVersion + 1
	return true, nil
}

// alwaysConflictRepo loses every conditional write.
type alwaysConflictRepo struct {
	*memInventoryRepo
}

func (r *alwaysConflictRepo) UpdateConditional(_ context.Context, _ *domain.InventoryRecord, _ int64) (bool, error) {
	return false, nil
}

func newTestLedger(repo domain.InventoryRepository) *Ledger {
	m := metrics.NewFulfillmentMetricsWith(prometheus.NewRegistry())
	return NewLedger(repo, m)
}

func TestAdjust_Decrement(t *testing.T) {
	repo := newMemInventoryRepo()
	ref := domain.VariantRef{ProductID: "p1", VariantID: "v1"}
	repo.seed(ref, 10, 0, 0)

	ledger := newTestLedger(repo)
	record, err := ledger.Adjust(context.Background(), ref, 4, domain.OpDecrement, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), record.Available)
	assert.Equal(t, int64(1), record.Version)
}

func TestAdjust_DecrementAcceptsNegativeDelta(t *testing.T) {
	repo := newMemInventoryRepo()
	ref := domain.VariantRef{ProductID: "p1", VariantID: "v1"}
	repo.seed(ref, 10, 0, 0)

	ledger := newTestLedger(repo)
	record, err := ledger.Adjust(context.Background(), ref, -4, domain.OpDecrement, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), record.Available)
}

func TestAdjust_InsufficientStock(t *testing.T) {
	repo := newMemInventoryRepo()
	ref := domain.VariantRef{ProductID: "p1", VariantID: "v1"}
	repo.seed(ref, 2, 0, 0)

	ledger := newTestLedger(repo)
	_, err := ledger.Adjust(context.Background(), ref, 3, domain.OpDecrement, 3)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Rejected, not clamped: nothing changed.
	record, err := repo.GetByVariant(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2), record.Available)
	assert.Equal(t, int64(0), record.Version)
}

func TestAdjust_IncrementAndSet(t *testing.T) {
	repo := newMemInventoryRepo()
	ref := domain.VariantRef{ProductID: "p1", VariantID: ""}
	repo.seed(ref, 5, 0, 0)

	ledger := newTestLedger(repo)

	record, err := ledger.Adjust(context.Background(), ref, 7, domain.OpIncrement, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12), record.Available)

	record, err = ledger.Adjust(context.Background(), ref, 3, domain.OpSet, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), record.Available)
	assert.Equal(t, int64(2), record.Version)
}

func TestAdjust_ConcurrencyExhausted(t *testing.T) {
	repo := newMemInventoryRepo()
	ref := domain.VariantRef{ProductID: "p1", VariantID: "v1"}
	repo.seed(ref, 10, 0, 0)

	ledger := newTestLedger(&alwaysConflictRepo{repo})
	_, err := ledger.Adjust(context.Background(), ref, 1, domain.OpDecrement, 3)
	require.ErrorIs(t, err, domain.ErrConcurrencyExhausted)
}

func TestAdjust_ConcurrentDecrementsBothSucceed(t *testing.T) {
	repo := newMemInventoryRepo()
	ref := domain.VariantRef{ProductID: "p1", VariantID: "v1"}
	repo.seed(ref, 10, 0, 0)

	ledger := newTestLedger(repo)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	deltas := []int64{5, 4}
	for i := range deltas {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Adjust(context.Background(), ref, deltas[i], domain.OpDecrement, 10)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	record, err := repo.GetByVariant(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.Available)
	assert.Equal(t, int64(2), record.Version)
}

// Oversell property: concurrent decrements summing past the available
// count never drive it negative, and total committed <= available.
func TestAdjust_NoOversell(t *testing.T) {
	repo := newMemInventoryRepo()
	ref := domain.VariantRef{ProductID: "p1", VariantID: "v1"}
	const k = 7
	repo.seed(ref, k, 0, 0)

	ledger := newTestLedger(repo)

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	committed := int64(0)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Adjust(context.Background(), ref, 1, domain.OpDecrement, workers*2)
			if err == nil {
				mu.Lock()
				committed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	record, err := repo.GetByVariant(context.Background(), ref)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, record.Available, int64(0))
	assert.LessOrEqual(t, committed, int64(k))
	assert.Equal(t, int64(k)-committed, record.Available)
}

func TestReserveAndRelease(t *testing.T) {
	repo := newMemInventoryRepo()
	ref := domain.VariantRef{ProductID: "p1", VariantID: "v1"}
	repo.seed(ref, 10, 0, 0)

	ledger := newTestLedger(repo)

	record, err := ledger.Reserve(context.Background(), ref, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), record.Reserved)
	// Reservations never touch on-hand stock.
	assert.Equal(t, int64(10), record.Available)

	record, err = ledger.Release(context.Background(), ref, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.Reserved)

	_, err = ledger.Release(context.Background(), ref, 5, 3)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestCheckAvailability(t *testing.T) {
	repo := newMemInventoryRepo()
	ref := domain.VariantRef{ProductID: "p1", VariantID: "v1"}
	repo.seed(ref, 3, 0, 0)

	ledger := newTestLedger(repo)

	ok, err := ledger.CheckAvailability(context.Background(), ref, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.CheckAvailability(context.Background(), ref, 4)
	require.NoError(t, err)
	assert.False(t, ok)

	available, err := ledger.GetAvailable(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, int64(3), available)
}

func TestAdjust_UnknownVariant(t *testing.T) {
	ledger := newTestLedger(newMemInventoryRepo())
	_, err := ledger.Adjust(context.Background(), domain.VariantRef{ProductID: "missing"}, 1, domain.OpDecrement, 3)
	require.ErrorIs(t, err, domain.ErrInventoryNotFound)
}
