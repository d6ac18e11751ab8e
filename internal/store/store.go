// Package store persists snapshots in PostgreSQL through gorm. A store that
// cannot reach its database at open time degrades to fallback mode instead of
// failing: every method then succeeds without touching storage, so a run can
// still exercise the full fetch pipeline.
package store

import (
	"context"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"

	"marketsnap/internal/model"
	"marketsnap/internal/model/enum"
	"marketsnap/pkg/conn"
	"marketsnap/pkg/exception"
)

const _defaultHistoryLimit = 10

// Store wraps one PostgreSQL connection. Each worker opens its own Store;
// instances are not shared across goroutines.
type Store struct {
	client *conn.Client
	db     *gorm.DB
	mode   enum.StoreMode
}

// Open connects to PostgreSQL with a single validated configuration. When the
// connection cannot be established the returned store runs in fallback mode
// and the cause is logged once.
func Open(opt conn.Option) *Store {
	client, err := conn.New(opt)
	if err != nil {
		logs.Errorf("connect store, err: %+v", err)
		logs.Info("store running in fallback mode, data will not be persisted")
		return NewFallback()
	}

	return &Store{client: client, db: client.DB(), mode: enum.StoreModePostgres}
}

// NewFallback creates a store that accepts every call without persisting.
func NewFallback() *Store {
	return &Store{mode: enum.StoreModeFallback}
}

// Mode reports whether the store persists or runs in fallback mode.
func (s *Store) Mode() enum.StoreMode {
	return s.mode
}

// Ping verifies the store can serve queries. A store in fallback mode reports
// exception.ErrStoreUnavailable instead of probing anything.
func (s *Store) Ping(ctx context.Context) error {
	if s.mode == enum.StoreModeFallback {
		return exception.ErrStoreUnavailable
	}

	if err := s.client.Ping(ctx); err != nil {
		return errors.Wrap(err, "ping store")
	}

	return nil
}

// EnsureSchema creates or migrates the snapshots table.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.mode == enum.StoreModeFallback {
		return nil
	}

	if err := s.db.WithContext(ctx).AutoMigrate(&model.Snapshot{}); err != nil {
		return errors.Wrap(err, "migrate snapshots table")
	}

	return nil
}

// RecentID returns the id of the newest row for ticker inside the freshness
// window. It returns exception.ErrStoreNoRows when no fresh row exists, which
// is the expected answer for a ticker due for ingestion.
func (s *Store) RecentID(ctx context.Context, ticker string, window time.Duration) (uint, error) {
	if s.mode == enum.StoreModeFallback {
		return 0, exception.ErrStoreNoRows
	}

	cutoff := time.Now().UTC().Add(-window)

	var row model.Snapshot
	err := s.db.WithContext(ctx).
		Select("id").
		Where("ticker = ? AND captured_at > ?", ticker, cutoff).
		Order("captured_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, exception.ErrStoreNoRows
		}
		return 0, errors.Wrapf(err, "query recent row, ticker: %s", ticker)
	}

	return row.ID, nil
}

// MissingSince returns the subset of tickers that have no row inside the
// freshness window, in input order, using a single query. In fallback mode
// every ticker is reported missing so ingestion proceeds.
func (s *Store) MissingSince(ctx context.Context, tickers []string, window time.Duration) ([]string, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	if s.mode == enum.StoreModeFallback {
		return tickers, nil
	}

	cutoff := time.Now().UTC().Add(-window)

	var present []string
	err := s.db.WithContext(ctx).
		Model(&model.Snapshot{}).
		Distinct("ticker").
		Where("ticker IN ? AND captured_at > ?", tickers, cutoff).
		Pluck("ticker", &present).Error
	if err != nil {
		return nil, errors.Wrapf(err, "query fresh tickers, count: %d", len(tickers))
	}

	fresh := make(map[string]struct{}, len(present))
	for _, ticker := range present {
		fresh[ticker] = struct{}{}
	}

	missing := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		if _, ok := fresh[ticker]; !ok {
			missing = append(missing, ticker)
		}
	}

	return missing, nil
}

// InsertMany writes rows with one multi-row INSERT in its own transaction.
func (s *Store) InsertMany(ctx context.Context, rows []*model.Snapshot) error {
	if len(rows) == 0 {
		return nil
	}

	if s.mode == enum.StoreModeFallback {
		return nil
	}

	if err := s.db.WithContext(ctx).Create(rows).Error; err != nil {
		return errors.Wrapf(err, "insert snapshots, count: %d", len(rows))
	}

	return nil
}

// UpdateOne replaces every metric column of the row with the given id,
// including nulls, in its own transaction. The capture time is rewritten as
// well, so updating re-anchors the freshness window.
func (s *Store) UpdateOne(ctx context.Context, id uint, row *model.Snapshot) error {
	if s.mode == enum.StoreModeFallback {
		return nil
	}

	res := s.db.WithContext(ctx).
		Model(&model.Snapshot{}).
		Where("id = ?", id).
		Select("*").
		Omit("id", "ticker", "created_at").
		Updates(row)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update snapshot, id: %d, ticker: %s", id, row.Ticker)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(exception.ErrStoreNoRows, "update snapshot, id: %d", id)
	}

	return nil
}

// DeleteOlderThan removes rows captured more than the given number of days
// ago and reports how many were removed.
func (s *Store) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, errors.Wrapf(exception.ErrInvalidArgument, "retention days: %d", days)
	}

	if s.mode == enum.StoreModeFallback {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	res := s.db.WithContext(ctx).
		Where("captured_at < ?", cutoff).
		Delete(&model.Snapshot{})
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "delete snapshots older than %d days", days)
	}

	return res.RowsAffected, nil
}

// History returns the newest rows for one ticker, most recent first.
func (s *Store) History(ctx context.Context, ticker string, limit int) ([]model.Snapshot, error) {
	if s.mode == enum.StoreModeFallback {
		return nil, nil
	}

	if limit <= 0 {
		limit = _defaultHistoryLimit
	}

	var rows []model.Snapshot
	err := s.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("captured_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "query history, ticker: %s", ticker)
	}

	return rows, nil
}

// CountSince counts rows captured after the given time.
func (s *Store) CountSince(ctx context.Context, since time.Time) (int64, error) {
	if s.mode == enum.StoreModeFallback {
		return 0, nil
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Snapshot{}).
		Where("captured_at > ?", since).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "count snapshots")
	}

	return count, nil
}

// RecentRows returns a sample of the newest rows captured after the given
// time, for manual verification.
func (s *Store) RecentRows(ctx context.Context, since time.Time, limit int) ([]model.Snapshot, error) {
	if s.mode == enum.StoreModeFallback {
		return nil, nil
	}

	if limit <= 0 {
		limit = _defaultHistoryLimit
	}

	var rows []model.Snapshot
	err := s.db.WithContext(ctx).
		Where("captured_at > ?", since).
		Order("captured_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query recent snapshots")
	}

	return rows, nil
}

// Close releases the underlying connection pool. Closing a fallback store is
// a no-op.
func (s *Store) Close() error {
	return s.client.Close()
}
