package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"marketsnap/internal/model"
	"marketsnap/internal/ops"
	"marketsnap/internal/store"
)

func main() {
	ticker := flag.String("ticker", "", "print capture history for this ticker")
	limit := flag.Int("limit", 10, "rows to print per section")
	sinceHours := flag.Int("since-hours", 24, "cutoff for the recent sections")
	flag.Parse()

	_ = godotenv.Load()
	cfg := ops.FromEnv()

	st := store.Open(cfg.Store.Option())
	defer st.Close()

	ctx := context.Background()
	if err := st.Ping(ctx); err != nil {
		log.Fatalf("store unavailable, check DATABASE_URL or DB_* settings: %v", err)
	}

	since := time.Now().UTC().Add(-time.Duration(*sinceHours) * time.Hour)

	total, err := st.CountSince(ctx, time.Time{})
	if err != nil {
		log.Fatalf("count snapshots failed: %v", err)
	}
	recent, err := st.CountSince(ctx, since)
	if err != nil {
		log.Fatalf("count recent snapshots failed: %v", err)
	}
	fmt.Printf("snapshots: %s total, %s captured in the last %dh\n",
		humanize.Comma(total), humanize.Comma(recent), *sinceHours)

	rows, err := st.RecentRows(ctx, since, *limit)
	if err != nil {
		log.Fatalf("recent snapshots failed: %v", err)
	}
	if len(rows) > 0 {
		fmt.Println("\nmost recent captures:")
		for _, row := range rows {
			printRow(row)
		}
	}

	if *ticker != "" {
		history, err := st.History(ctx, *ticker, *limit)
		if err != nil {
			log.Fatalf("history for %s failed: %v", *ticker, err)
		}
		fmt.Printf("\nhistory for %s:\n", *ticker)
		if len(history) == 0 {
			fmt.Println("  no rows")
		}
		for _, row := range history {
			printRow(row)
		}
	}
}

func printRow(row model.Snapshot) {
	fmt.Printf("  %-8s %-28s price=%-10s mcap=%-16s captured=%s\n",
		row.Ticker,
		text(row.CompanyName, 28),
		price(row.CurrentPrice),
		count(row.MarketCap),
		row.CapturedAt.Format("2006-01-02 15:04"),
	)
}

func text(s *string, width int) string {
	if s == nil {
		return "-"
	}
	if len(*s) > width {
		return (*s)[:width-3] + "..."
	}
	return *s
}

func price(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *f)
}

func count(n *int64) string {
	if n == nil {
		return "-"
	}
	return humanize.Comma(*n)
}
