// Package report persists and prints end-of-run summaries.
package report

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"marketsnap/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	_dirMode  = 0o755
	_fileMode = 0o644
)

// Write stores the summary as an indented JSON file under dir and returns
// the written path. The directory is created when missing. The file name
// carries the run timestamp, so repeated runs never overwrite each other.
func Write(dir string, summary model.RunSummary) (string, error) {
	if err := os.MkdirAll(dir, _dirMode); err != nil {
		return "", errors.Wrap(err, "create results dir")
	}

	ts := summary.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	path := filepath.Join(dir, "run_summary_"+ts.Format("20060102_150405")+".json")

	buf, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode summary")
	}

	if err := os.WriteFile(path, buf, _fileMode); err != nil {
		return "", errors.Wrap(err, "write summary")
	}

	return path, nil
}

// Print logs the summary in a readable form.
func Print(summary model.RunSummary) {
	logs.Infof("run %s finished in %.1fs", summary.RunID, summary.DurationSec)
	logs.Infof("tickers: %s, batches: %s, workers: %d, window: %dh",
		humanize.Comma(int64(summary.Tickers)),
		humanize.Comma(int64(summary.Batches)),
		summary.Workers,
		summary.WindowHours,
	)
	logs.Infof("fetched: %s, saved: %s, failed: %s, failed batches: %s",
		humanize.Comma(int64(summary.Fetched)),
		humanize.Comma(int64(summary.Saved)),
		humanize.Comma(int64(summary.Failed)),
		humanize.Comma(int64(summary.FailedBatches)),
	)
	if summary.FallbackMode {
		logs.Info("storage was unavailable, saved counts never reached the database")
	}
	for _, ws := range summary.PerWorker {
		logs.Infof("worker %d: %s, batches: %d, fetched: %s, saved: %s, failed: %s, avg fetch: %.0fms, avg write: %.0fms",
			ws.WorkerID,
			ws.State,
			ws.Batches,
			humanize.Comma(int64(ws.Fetched)),
			humanize.Comma(int64(ws.Saved)),
			humanize.Comma(int64(ws.Failed)),
			ws.AvgFetchMs,
			ws.AvgWriteMs,
		)
	}
}
