// Package writer persists batches of normalized snapshots. Each batch is
// partitioned into rows that supersede a fresh row (updated one by one) and
// rows that are new (inserted with one statement). The two partitions commit
// independently so one bad record never sinks the whole batch.
package writer

import (
	"context"

	"github.com/yanun0323/logs"

	"marketsnap/internal/dedup"
	"marketsnap/internal/model"
	"marketsnap/internal/model/enum"
)

// Store is the slice of the snapshot store the writer needs.
type Store interface {
	InsertMany(ctx context.Context, rows []*model.Snapshot) error
	UpdateOne(ctx context.Context, id uint, row *model.Snapshot) error
	Mode() enum.StoreMode
}

// Result reports the outcome of one bulk save.
type Result struct {
	Saved    int
	Failed   int
	Fallback bool
}

// Bulk writes snapshot batches through one store connection.
type Bulk struct {
	store    Store
	resolver *dedup.Resolver
}

// NewBulk creates a bulk writer.
func NewBulk(store Store, resolver *dedup.Resolver) *Bulk {
	return &Bulk{store: store, resolver: resolver}
}

// Save persists a batch. In fallback mode every snapshot is reported saved
// with the fallback flag set and no store call is made. Insert failures cost
// the new partition only; each update failure costs one record.
func (w *Bulk) Save(ctx context.Context, snaps []model.Snapshot) Result {
	if len(snaps) == 0 {
		return Result{}
	}

	if w.store.Mode() == enum.StoreModeFallback {
		logs.Infof("fallback mode, would save %d snapshots", len(snaps))
		return Result{Saved: len(snaps), Fallback: true}
	}

	type supersede struct {
		id  uint
		row *model.Snapshot
	}

	var (
		inserts []*model.Snapshot
		updates []supersede
	)
	for i := range snaps {
		row := &snaps[i]
		if id, ok := w.resolver.Recent(ctx, row.Ticker); ok {
			updates = append(updates, supersede{id: id, row: row})
			continue
		}
		inserts = append(inserts, row)
	}

	var res Result

	if len(inserts) > 0 {
		if err := w.store.InsertMany(ctx, inserts); err != nil {
			logs.Errorf("bulk insert %d snapshots, err: %+v", len(inserts), err)
			res.Failed += len(inserts)
		} else {
			res.Saved += len(inserts)
		}
	}

	for _, u := range updates {
		if err := w.store.UpdateOne(ctx, u.id, u.row); err != nil {
			logs.Errorf("update snapshot, ticker: %s, err: %+v", u.row.Ticker, err)
			res.Failed++
			continue
		}
		res.Saved++
	}

	logs.Infof("saved %d/%d snapshots, new: %d, refreshed: %d",
		res.Saved, len(snaps), len(inserts), len(updates))

	return res
}
