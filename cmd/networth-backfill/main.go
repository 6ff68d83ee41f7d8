package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/networth_backend/config"
	"bitbucket.org/mmdatafocus/networth_backend/models"
	"bitbucket.org/mmdatafocus/networth_backend/utils"
	"github.com/bsm/redislock"
)

const backfillLockKey = "lock:networth-backfill"

func main() {
	from := flag.String("from", "", "Optional: start date (YYYY-MM-DD). Defaults to the earliest transaction.")
	to := flag.String("to", "", "Optional: end date (YYYY-MM-DD). Defaults to the upcoming month start.")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	// Ensure schema is up-to-date (creates daily_summaries if missing).
	models.MigrateTable()

	// Guard against overlapping runs when the job is scheduled on more than
	// one instance. Redis may be absent in dev; run unguarded then.
	config.ConnectRedisWithRetry()
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, backfillLockKey, 10*time.Minute, nil)
		if err == redislock.ErrNotObtained {
			fmt.Fprintln(os.Stderr, "another backfill is already running")
			os.Exit(1)
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "failed to obtain backfill lock: %v\n", err)
			os.Exit(1)
		} else {
			defer func() { _ = lock.Release(ctx) }()
		}
	}

	now := time.Now().UTC()
	var start time.Time
	if strings.TrimSpace(*from) != "" {
		parsed, err := utils.ParseDate(strings.TrimSpace(*from))
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -from date: %v\n", err)
			os.Exit(1)
		}
		start = utils.MonthStart(parsed)
	} else {
		var earliest *string
		err := db.WithContext(ctx).Model(&models.Transaction{}).
			Select("MIN(date)").Scan(&earliest).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to find earliest transaction: %v\n", err)
			os.Exit(1)
		}
		if earliest == nil || *earliest == "" {
			fmt.Println("no transactions; nothing to backfill")
			return
		}
		parsed, err := utils.ParseDate(*earliest)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad earliest transaction date %q: %v\n", *earliest, err)
			os.Exit(1)
		}
		start = utils.MonthStart(parsed)
	}
	end := utils.MonthStart(now).AddDate(0, 1, 0)
	if strings.TrimSpace(*to) != "" {
		parsed, err := utils.ParseDate(strings.TrimSpace(*to))
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -to date: %v\n", err)
			os.Exit(1)
		}
		end = utils.MonthStart(parsed)
	}

	calculator, err := models.LoadCalculator(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load accounts: %v\n", err)
		os.Exit(1)
	}
	snapshots, err := calculator.CalculateAll(utils.MonthStarts(start, end))
	if err != nil {
		fmt.Fprintf(os.Stderr, "calculation failed: %v\n", err)
		os.Exit(1)
	}

	for _, snapshot := range snapshots {
		if _, err := models.UpsertDailySummary(ctx, snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "failed to store summary for %s: %v\n", snapshot.Date, err)
			os.Exit(1)
		}
		fmt.Printf("stored %s net=%s\n", snapshot.Date, snapshot.Net.RoundFloor(2).StringFixed(2))
	}
	fmt.Printf("backfilled %d summaries\n", len(snapshots))
}
