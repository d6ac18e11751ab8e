package writer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/errors"

	"marketsnap/internal/dedup"
	"marketsnap/internal/model"
	"marketsnap/internal/model/enum"
	"marketsnap/pkg/exception"
)

// fakeStore keeps rows in memory and satisfies both the writer and the
// dedup store interfaces, so one instance drives the full save path.
type fakeStore struct {
	mode   enum.StoreMode
	nextID uint
	rows   map[uint]model.Snapshot
	fresh  map[string]uint

	insertErr  error
	updateErrs map[uint]error

	inserts int
	updates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		mode:  enum.StoreModePostgres,
		rows:  map[uint]model.Snapshot{},
		fresh: map[string]uint{},
	}
}

func (f *fakeStore) Mode() enum.StoreMode {
	return f.mode
}

func (f *fakeStore) RecentID(_ context.Context, ticker string, _ time.Duration) (uint, error) {
	id, ok := f.fresh[ticker]
	if !ok {
		return 0, exception.ErrStoreNoRows
	}
	return id, nil
}

func (f *fakeStore) MissingSince(_ context.Context, tickers []string, _ time.Duration) ([]string, error) {
	missing := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		if _, ok := f.fresh[ticker]; !ok {
			missing = append(missing, ticker)
		}
	}
	return missing, nil
}

func (f *fakeStore) InsertMany(_ context.Context, rows []*model.Snapshot) error {
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, row := range rows {
		f.nextID++
		row.ID = f.nextID
		f.rows[row.ID] = *row
		f.fresh[row.Ticker] = row.ID
	}
	return nil
}

func (f *fakeStore) UpdateOne(_ context.Context, id uint, row *model.Snapshot) error {
	f.updates++
	if err := f.updateErrs[id]; err != nil {
		return err
	}
	if _, ok := f.rows[id]; !ok {
		return exception.ErrStoreNoRows
	}
	kept := *row
	kept.ID = id
	f.rows[id] = kept
	return nil
}

func newBulk(store *fakeStore) *Bulk {
	return NewBulk(store, dedup.NewResolver(store, time.Hour))
}

func snap(ticker string, price float64) model.Snapshot {
	return model.Snapshot{
		Ticker:       ticker,
		CapturedAt:   time.Now().UTC(),
		CurrentPrice: &price,
	}
}

func TestSaveTwiceRefreshesInsteadOfDuplicating(t *testing.T) {
	store := newFakeStore()
	w := newBulk(store)

	first := w.Save(t.Context(), []model.Snapshot{snap("AAPL", 175.43)})
	assert.Equal(t, Result{Saved: 1}, first)
	require.Len(t, store.rows, 1)

	second := w.Save(t.Context(), []model.Snapshot{snap("AAPL", 180.10)})
	assert.Equal(t, Result{Saved: 1}, second)

	require.Len(t, store.rows, 1, "second save must refresh the row, not add one")
	assert.Equal(t, 1, store.updates)
	for _, row := range store.rows {
		require.NotNil(t, row.CurrentPrice)
		assert.InDelta(t, 180.10, *row.CurrentPrice, 1e-12)
	}
}

func TestInsertFailureDoesNotAbortUpdates(t *testing.T) {
	store := newFakeStore()
	w := newBulk(store)

	w.Save(t.Context(), []model.Snapshot{snap("AAPL", 175.43)})

	store.insertErr = errors.New("malformed record")
	res := w.Save(t.Context(), []model.Snapshot{
		snap("AAPL", 180.10),
		snap("MSFT", 410.00),
		snap("GOOG", 140.00),
	})

	assert.Equal(t, Result{Saved: 1, Failed: 2}, res)
	assert.Equal(t, 1, store.updates)

	row := store.rows[store.fresh["AAPL"]]
	require.NotNil(t, row.CurrentPrice)
	assert.InDelta(t, 180.10, *row.CurrentPrice, 1e-12)
}

func TestUpdateFailuresAreIsolated(t *testing.T) {
	store := newFakeStore()
	w := newBulk(store)

	w.Save(t.Context(), []model.Snapshot{snap("AAPL", 175.43), snap("MSFT", 400.00)})

	store.updateErrs = map[uint]error{store.fresh["AAPL"]: errors.New("deadlock")}
	res := w.Save(t.Context(), []model.Snapshot{snap("AAPL", 180.10), snap("MSFT", 410.00)})

	assert.Equal(t, Result{Saved: 1, Failed: 1}, res)

	msft := store.rows[store.fresh["MSFT"]]
	require.NotNil(t, msft.CurrentPrice)
	assert.InDelta(t, 410.00, *msft.CurrentPrice, 1e-12)
}

func TestFallbackReportsSavedWithoutMutation(t *testing.T) {
	store := newFakeStore()
	store.mode = enum.StoreModeFallback
	w := newBulk(store)

	res := w.Save(t.Context(), []model.Snapshot{snap("AAPL", 175.43), snap("MSFT", 410.00)})

	assert.Equal(t, Result{Saved: 2, Fallback: true}, res)
	assert.Empty(t, store.rows)
	assert.Zero(t, store.inserts)
	assert.Zero(t, store.updates)
}

func TestEmptyBatch(t *testing.T) {
	store := newFakeStore()
	w := newBulk(store)

	assert.Equal(t, Result{}, w.Save(t.Context(), nil))
	assert.Zero(t, store.inserts)
}
