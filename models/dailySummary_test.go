package models_test

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/networth_backend/models"
	"bitbucket.org/mmdatafocus/networth_backend/utils"
)

func TestDailySummaryRoundTripsSnapshot(t *testing.T) {
	checking := models.CalcAccount{
		ID:   "checking",
		Type: models.AccountTypeChecking,
		Entries: []models.Entry{
			entry(t, "2026-01-01", "123.45", models.EntryBalance),
		},
	}
	calculator := models.NewCalculator([]models.CalcAccount{checking})
	snapshot, err := calculator.Calculate(day(t, "2026-02-01"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	summary, err := models.NewDailySummary(snapshot)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if summary.Date != "2026-02-01" {
		t.Fatalf("expected row keyed by snapshot date, got %s", summary.Date)
	}
	if !summary.Net.Equal(dec("123.45")) {
		t.Fatalf("expected net column 123.45, got %s", summary.Net)
	}

	decoded, err := summary.Snapshot()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Date != snapshot.Date {
		t.Fatalf("date changed across round trip: %s", decoded.Date)
	}
	if !decoded.Net.Equal(dec("123.45")) {
		t.Fatalf("expected net 123.45 after round trip, got %s", decoded.Net)
	}
	if len(decoded.AccountBalances) != 1 || decoded.AccountBalances[0].AccountID != "checking" {
		t.Fatalf("account balances lost across round trip: %+v", decoded.AccountBalances)
	}
}

func TestDailySummaryRejectsCorruptDetail(t *testing.T) {
	summary := &models.DailySummary{Date: "2026-02-01", Detail: "{not json"}

	_, err := summary.Snapshot()
	if err == nil {
		t.Fatalf("expected error for corrupt detail")
	}
	if !errors.Is(err, utils.ErrorInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
}
