package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"marketsnap/internal/ops"
	"marketsnap/internal/store"
)

func main() {
	days := flag.Int("days", 30, "delete snapshots older than this many days")
	dryRun := flag.Bool("dry-run", false, "count matching rows without deleting")
	flag.Parse()

	if *days <= 0 {
		log.Fatalf("days must be > 0")
	}

	_ = godotenv.Load()
	cfg := ops.FromEnv()

	st := store.Open(cfg.Store.Option())
	defer st.Close()

	ctx := context.Background()
	if err := st.Ping(ctx); err != nil {
		log.Fatalf("store unavailable, check DATABASE_URL or DB_* settings: %v", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -*days)

	if *dryRun {
		total, err := st.CountSince(ctx, time.Time{})
		if err != nil {
			log.Fatalf("count snapshots failed: %v", err)
		}
		kept, err := st.CountSince(ctx, cutoff)
		if err != nil {
			log.Fatalf("count recent snapshots failed: %v", err)
		}
		fmt.Printf("would delete %s of %s snapshots older than %s\n",
			humanize.Comma(total-kept), humanize.Comma(total), cutoff.Format("2006-01-02"))
		return
	}

	deleted, err := st.DeleteOlderThan(ctx, *days)
	if err != nil {
		log.Fatalf("delete failed: %v", err)
	}
	fmt.Printf("deleted %s snapshots older than %s\n",
		humanize.Comma(deleted), cutoff.Format("2006-01-02"))
}
