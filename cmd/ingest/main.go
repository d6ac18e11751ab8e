package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/joho/godotenv"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"marketsnap/internal/dedup"
	"marketsnap/internal/fetch"
	"marketsnap/internal/fetch/yahoo"
	"marketsnap/internal/model/enum"
	"marketsnap/internal/ops"
	"marketsnap/internal/report"
	"marketsnap/internal/source"
	"marketsnap/internal/store"
	"marketsnap/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ingest: %v", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg := ops.FromEnv()

	fileFlag := flag.String("file", cfg.Ingest.TickerFile, "ticker list file, one symbol per line")
	tickersFlag := flag.String("tickers", "", "comma separated tickers, overrides -file")
	limitFlag := flag.Int("limit", 0, "keep only the first N tickers, 0 keeps all")
	batchFlag := flag.Int("batch", cfg.Ingest.BatchSize, "tickers per provider call")
	workersFlag := flag.Int("workers", cfg.Ingest.Workers, "parallel workers")
	windowFlag := flag.Int("window", cfg.Ingest.WindowHours, "freshness window in hours")
	delayFlag := flag.Int("delay", cfg.Ingest.DelayMs, "pause between provider calls in ms")
	onlyMissing := flag.Bool("only-missing", false, "skip tickers already fresh inside the window")
	proxyFlag := flag.String("proxy", cfg.Ingest.ProxyURL, "route provider calls through this proxy")
	resultsFlag := flag.String("results", cfg.Ingest.ResultsDir, "directory for run summary files")
	migrateFlag := flag.Bool("migrate", false, "create or update the snapshots table before running")
	flag.Parse()

	cfg.Ingest.TickerFile = *fileFlag
	cfg.Ingest.BatchSize = *batchFlag
	cfg.Ingest.Workers = *workersFlag
	cfg.Ingest.WindowHours = *windowFlag
	cfg.Ingest.DelayMs = *delayFlag
	cfg.Ingest.ProxyURL = *proxyFlag
	cfg.Ingest.ResultsDir = *resultsFlag

	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Profiler.Enabled() {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.Profiler.ApplicationName,
			ServerAddress:   cfg.Profiler.ServerAddress,
			Tags: map[string]string{
				"cmd": "ingest",
			},
			Logger: emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return errors.Wrap(err, "start profiler")
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-sys.Shutdown():
			logs.Info("shutdown signal received, cancelling run")
			cancel()
		case <-ctx.Done():
		}
	}()

	var tickers []string
	if strings.TrimSpace(*tickersFlag) != "" {
		tickers = source.ParseList(*tickersFlag)
	} else {
		loaded, err := source.LoadFile(cfg.Ingest.TickerFile)
		if err != nil {
			return err
		}
		tickers = loaded
	}
	if len(tickers) == 0 {
		return errors.New("ticker universe is empty")
	}

	// The only-missing filter walks the full universe; the cap applies
	// only to plain runs.
	if !*onlyMissing {
		tickers = source.Cap(tickers, *limitFlag)
	}

	if *migrateFlag || *onlyMissing {
		st := store.Open(cfg.Store.Option())
		if *migrateFlag {
			if err := st.EnsureSchema(ctx); err != nil {
				_ = st.Close()
				return err
			}
		}
		if *onlyMissing {
			if st.Mode() == enum.StoreModeFallback {
				logs.Info("store unavailable, only-missing filter skipped")
			} else {
				before := len(tickers)
				tickers = dedup.NewResolver(st, cfg.Ingest.Window()).Filter(ctx, tickers)
				logs.Infof("only-missing: %d of %d tickers need refresh", len(tickers), before)
			}
		}
		_ = st.Close()
	}
	if len(tickers) == 0 {
		logs.Info("every ticker is fresh, nothing to ingest")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	egress := fetch.Egress{
		Enabled:  cfg.Ingest.ProxyURL != "",
		ProxyURL: cfg.Ingest.ProxyURL,
	}

	pool, err := worker.NewPool(worker.Config{
		Workers:   cfg.Ingest.Workers,
		BatchSize: cfg.Ingest.BatchSize,
		Window:    cfg.Ingest.Window(),
		Delay:     cfg.Ingest.Delay(),
		NewClient: func() fetch.Client {
			return yahoo.New(egress)
		},
		NewStore: func(context.Context) worker.Store {
			return store.Open(cfg.Store.Option())
		},
	})
	if err != nil {
		return err
	}

	summary := pool.Run(ctx, tickers)

	report.Print(summary)
	path, err := report.Write(cfg.Ingest.ResultsDir, summary)
	if err != nil {
		logs.Errorf("write summary, err: %+v", err)
	} else {
		logs.Infof("summary written to %s", path)
	}

	return nil
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
