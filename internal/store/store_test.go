package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketsnap/internal/model"
	"marketsnap/internal/model/enum"
	"marketsnap/pkg/conn"
	"marketsnap/pkg/exception"
)

func TestOpenBadDSNFallsBack(t *testing.T) {
	st := Open(conn.Option{ConnString: "this is not a dsn"})
	require.NotNil(t, st)

	assert.Equal(t, enum.StoreModeFallback, st.Mode())
	assert.NoError(t, st.Close())
}

func TestFallbackPing(t *testing.T) {
	st := NewFallback()

	assert.ErrorIs(t, st.Ping(t.Context()), exception.ErrStoreUnavailable)
}

func TestFallbackReads(t *testing.T) {
	st := NewFallback()

	_, err := st.RecentID(t.Context(), "AAPL", 24*time.Hour)
	assert.ErrorIs(t, err, exception.ErrStoreNoRows)

	tickers := []string{"AAPL", "MSFT", "GOOG"}
	missing, err := st.MissingSince(t.Context(), tickers, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, tickers, missing)

	missing, err = st.MissingSince(t.Context(), nil, 24*time.Hour)
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, err := st.CountSince(t.Context(), time.Time{})
	require.NoError(t, err)
	assert.Zero(t, count)

	history, err := st.History(t.Context(), "AAPL", 5)
	require.NoError(t, err)
	assert.Nil(t, history)
}

func TestFallbackWrites(t *testing.T) {
	st := NewFallback()

	require.NoError(t, st.EnsureSchema(t.Context()))

	rows := []*model.Snapshot{{Ticker: "AAPL", CapturedAt: time.Now().UTC()}}
	assert.NoError(t, st.InsertMany(t.Context(), rows))
	assert.NoError(t, st.UpdateOne(t.Context(), 1, rows[0]))

	deleted, err := st.DeleteOlderThan(t.Context(), 30)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestDeleteOlderThanRejectsBadDays(t *testing.T) {
	st := NewFallback()

	_, err := st.DeleteOlderThan(t.Context(), 0)
	assert.ErrorIs(t, err, exception.ErrInvalidArgument)

	_, err = st.DeleteOlderThan(t.Context(), -7)
	assert.ErrorIs(t, err, exception.ErrInvalidArgument)
}
