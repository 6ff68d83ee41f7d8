package models_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/networth_backend/models"
	"bitbucket.org/mmdatafocus/networth_backend/utils"
	"github.com/shopspring/decimal"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := utils.ParseDate(value)
	if err != nil {
		t.Fatalf("bad date %s: %v", value, err)
	}
	return date
}

func dec(value string) decimal.Decimal {
	d, _ := decimal.NewFromString(value)
	return d
}

func entry(t *testing.T, date string, value string, kind models.EntryKind) models.Entry {
	t.Helper()
	return models.Entry{Date: day(t, date), Value: dec(value), Kind: kind}
}

func totalBalance(t *testing.T, snapshot *models.Snapshot, totalType models.TotalType) models.TotalBalance {
	t.Helper()
	for _, balance := range snapshot.TotalBalances {
		if balance.Type == totalType {
			return balance
		}
	}
	t.Fatalf("snapshot has no total for %s", totalType)
	return models.TotalBalance{}
}

func TestCalculateEmptyLedgerIsZero(t *testing.T) {
	calculator := models.NewCalculator(nil)

	snapshot, err := calculator.Calculate(day(t, "2026-01-01"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !snapshot.Net.IsZero() {
		t.Fatalf("expected zero net, got %s", snapshot.Net)
	}

	snapshots, err := calculator.CalculateAll([]time.Time{day(t, "2026-01-01"), day(t, "2026-02-01")})
	if err != nil {
		t.Fatalf("calculate all: %v", err)
	}
	if len(snapshots) != 0 {
		t.Fatalf("expected zero-net snapshots dropped, got %d", len(snapshots))
	}
}

func TestAssetBalanceAdjustedByTransferOut(t *testing.T) {
	checking := models.CalcAccount{
		ID:   "checking",
		Type: models.AccountTypeChecking,
		Entries: []models.Entry{
			entry(t, "2026-01-01", "100", models.EntryBalance),
			entry(t, "2026-01-05", "30", models.EntryTransferOut),
		},
	}

	balance := checking.CalculateBalance(day(t, "2026-01-10"))
	if !balance.Equal(dec("70")) {
		t.Fatalf("expected balance 70, got %s", balance)
	}
	transfer := checking.CalculateTransfer(day(t, "2026-01-10"))
	if !transfer.Equal(dec("-30")) {
		t.Fatalf("expected transfer -30, got %s", transfer)
	}

	// before the transfer the balance assertion stands alone
	if got := checking.CalculateBalance(day(t, "2026-01-03")); !got.Equal(dec("100")) {
		t.Fatalf("expected balance 100 on the 3rd, got %s", got)
	}
	// before any entry the account is empty
	if got := checking.CalculateBalance(day(t, "2025-12-31")); !got.IsZero() {
		t.Fatalf("expected zero before first entry, got %s", got)
	}
}

func TestLaterBalanceReplacesRunningValue(t *testing.T) {
	savings := models.CalcAccount{
		ID:   "savings",
		Type: models.AccountTypeSavings,
		Entries: []models.Entry{
			entry(t, "2026-01-01", "100", models.EntryBalance),
			entry(t, "2026-01-05", "30", models.EntryTransferIn),
			entry(t, "2026-02-01", "500", models.EntryBalance),
		},
	}

	if got := savings.CalculateBalance(day(t, "2026-01-20")); !got.Equal(dec("130")) {
		t.Fatalf("expected 130 mid January, got %s", got)
	}
	if got := savings.CalculateBalance(day(t, "2026-02-10")); !got.Equal(dec("500")) {
		t.Fatalf("expected the February assertion to win, got %s", got)
	}
}

func TestLiabilityPaymentReducesBalance(t *testing.T) {
	creditCard := models.CalcAccount{
		ID:   "card",
		Type: models.AccountTypeCreditCard,
		Entries: []models.Entry{
			entry(t, "2026-01-01", "500", models.EntryBalance),
			entry(t, "2026-01-10", "100", models.EntryTransferIn),
		},
	}

	balance := creditCard.CalculateBalance(day(t, "2026-01-15"))
	if !balance.Equal(dec("400")) {
		t.Fatalf("expected outstanding 400, got %s", balance)
	}

	calculator := models.NewCalculator([]models.CalcAccount{creditCard})
	snapshot, err := calculator.Calculate(day(t, "2026-01-15"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !snapshot.Net.Equal(dec("-400")) {
		t.Fatalf("expected net -400, got %s", snapshot.Net)
	}
	cashLiability := totalBalance(t, snapshot, models.TotalTypeCashLiability)
	if !cashLiability.Balance.Equal(dec("400")) {
		t.Fatalf("expected category balance 400, got %s", cashLiability.Balance)
	}
}

func TestExternalAccountAlwaysZero(t *testing.T) {
	external := models.CalcAccount{
		ID:   "world",
		Type: models.AccountTypeExternal,
		Entries: []models.Entry{
			entry(t, "2026-01-01", "1000000", models.EntryBalance),
			entry(t, "2026-01-02", "50", models.EntryTransferOut),
		},
	}

	if got := external.CalculateBalance(day(t, "2026-02-01")); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
	if got := external.CalculateTransfer(day(t, "2026-02-01")); !got.IsZero() {
		t.Fatalf("expected zero transfer, got %s", got)
	}
}

func TestNetIsSignedSumOfCategories(t *testing.T) {
	calculator := models.NewCalculator([]models.CalcAccount{
		{
			ID:   "checking",
			Type: models.AccountTypeChecking,
			Entries: []models.Entry{
				entry(t, "2026-01-01", "250.50", models.EntryBalance),
			},
		},
		{
			ID:   "house",
			Type: models.AccountTypeAsset,
			Entries: []models.Entry{
				entry(t, "2026-01-01", "300000", models.EntryBalance),
			},
		},
		{
			ID:   "mortgage",
			Type: models.AccountTypeLoan,
			Entries: []models.Entry{
				entry(t, "2026-01-01", "200000", models.EntryBalance),
			},
		},
	})

	snapshot, err := calculator.Calculate(day(t, "2026-01-02"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	expected := decimal.Zero
	for _, balance := range snapshot.TotalBalances {
		switch balance.Type.CalculationType() {
		case models.CalculationTypeAsset:
			expected = expected.Add(balance.Balance.Decimal)
		case models.CalculationTypeLiability:
			expected = expected.Sub(balance.Balance.Decimal)
		}
	}
	if !snapshot.Net.Equal(expected) {
		t.Fatalf("net %s does not match signed category sum %s", snapshot.Net, expected)
	}
	if !snapshot.Net.Equal(dec("100250.50")) {
		t.Fatalf("expected net 100250.50, got %s", snapshot.Net)
	}
}

func TestFlowSeparatesTransfersFromGrowth(t *testing.T) {
	// 1000 asserted, 200 transferred in, then 1250 asserted: 50 is growth.
	investment := models.CalcAccount{
		ID:   "brokerage",
		Type: models.AccountTypeInvestment,
		Entries: []models.Entry{
			entry(t, "2026-01-01", "1000", models.EntryBalance),
			entry(t, "2026-01-10", "200", models.EntryTransferIn),
			entry(t, "2026-02-01", "1250", models.EntryBalance),
		},
	}

	calculator := models.NewCalculator([]models.CalcAccount{investment})
	snapshot, err := calculator.Calculate(day(t, "2026-02-02"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	longTerm := totalBalance(t, snapshot, models.TotalTypeLongTermAsset)
	if !longTerm.Balance.Equal(dec("1250")) {
		t.Fatalf("expected balance 1250, got %s", longTerm.Balance)
	}
	if !longTerm.Transfer.Equal(dec("200")) {
		t.Fatalf("expected transfer 200, got %s", longTerm.Transfer)
	}
	if !longTerm.Flow.Equal(dec("1050")) {
		t.Fatalf("expected flow 1050, got %s", longTerm.Flow)
	}
}

func TestCalculateAllThreadsDifferences(t *testing.T) {
	checking := models.CalcAccount{
		ID:   "checking",
		Type: models.AccountTypeChecking,
		Entries: []models.Entry{
			entry(t, "2026-01-15", "100", models.EntryBalance),
			entry(t, "2026-02-15", "160", models.EntryBalance),
		},
	}
	calculator := models.NewCalculator([]models.CalcAccount{checking})

	dates := []time.Time{
		day(t, "2026-01-01"), // before any data: zero, dropped
		day(t, "2026-02-01"),
		day(t, "2026-03-01"),
	}
	snapshots, err := calculator.CalculateAll(dates)
	if err != nil {
		t.Fatalf("calculate all: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}

	first, second := snapshots[0], snapshots[1]
	if first.Difference != nil {
		t.Fatalf("first nonzero snapshot must not carry a difference")
	}
	if second.Difference == nil {
		t.Fatalf("second snapshot must carry a difference")
	}
	if !second.Difference.Net.Equal(dec("60")) {
		t.Fatalf("expected net difference 60, got %s", second.Difference.Net)
	}
	// the difference restores the current value exactly
	if !first.Net.Add(second.Difference.Net.Decimal).Equal(second.Net.Decimal) {
		t.Fatalf("previous net + difference != current net")
	}
}

func TestZeroNetMidSeriesResetsDifferenceBaseline(t *testing.T) {
	checking := models.CalcAccount{
		ID:   "checking",
		Type: models.AccountTypeChecking,
		Entries: []models.Entry{
			entry(t, "2026-01-15", "100", models.EntryBalance),
			entry(t, "2026-02-15", "0", models.EntryBalance), // account emptied
			entry(t, "2026-03-15", "50", models.EntryBalance),
		},
	}
	calculator := models.NewCalculator([]models.CalcAccount{checking})

	dates := []time.Time{
		day(t, "2026-02-01"), // net 100
		day(t, "2026-03-01"), // net 0: dropped, baseline resets
		day(t, "2026-04-01"), // net 50
	}
	snapshots, err := calculator.CalculateAll(dates)
	if err != nil {
		t.Fatalf("calculate all: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected the zero snapshot dropped, got %d snapshots", len(snapshots))
	}
	if snapshots[0].Date != "2026-02-01" || snapshots[1].Date != "2026-04-01" {
		t.Fatalf("unexpected snapshot dates: %s, %s", snapshots[0].Date, snapshots[1].Date)
	}
	if snapshots[1].Difference != nil {
		t.Fatalf("snapshot after a zero-net gap must not carry a difference")
	}
}

func TestDifferenceAgainstDisappearedAccount(t *testing.T) {
	checking := models.CalcAccount{
		ID:   "checking",
		Type: models.AccountTypeChecking,
		Entries: []models.Entry{
			entry(t, "2026-01-01", "100", models.EntryBalance),
		},
	}
	savings := models.CalcAccount{
		ID:   "savings",
		Type: models.AccountTypeSavings,
		Entries: []models.Entry{
			entry(t, "2026-01-01", "40", models.EntryBalance),
		},
	}

	both := models.NewCalculator([]models.CalcAccount{checking, savings})
	previous, err := both.Calculate(day(t, "2026-01-02"))
	if err != nil {
		t.Fatalf("previous: %v", err)
	}

	onlyChecking := models.NewCalculator([]models.CalcAccount{checking})
	current, err := onlyChecking.CalculateWithPrevious(previous, day(t, "2026-02-01"))
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.Difference == nil {
		t.Fatalf("expected a difference block")
	}

	var savingsDelta *models.AccountBalance
	for i := range current.Difference.AccountBalances {
		if current.Difference.AccountBalances[i].AccountID == "savings" {
			savingsDelta = &current.Difference.AccountBalances[i]
		}
	}
	if savingsDelta == nil {
		t.Fatalf("disappeared account missing from difference")
	}
	if !savingsDelta.Balance.Equal(dec("-40")) {
		t.Fatalf("expected disappeared balance -40, got %s", savingsDelta.Balance)
	}
	if !current.Difference.Net.Equal(dec("-40")) {
		t.Fatalf("expected net difference -40, got %s", current.Difference.Net)
	}
}

func TestDifferenceAgainstAppearedAccount(t *testing.T) {
	checking := models.CalcAccount{
		ID:   "checking",
		Type: models.AccountTypeChecking,
		Entries: []models.Entry{
			entry(t, "2026-01-01", "100", models.EntryBalance),
		},
	}
	savings := models.CalcAccount{
		ID:   "savings",
		Type: models.AccountTypeSavings,
		Entries: []models.Entry{
			entry(t, "2026-01-20", "40", models.EntryBalance),
		},
	}

	onlyChecking := models.NewCalculator([]models.CalcAccount{checking})
	previous, err := onlyChecking.Calculate(day(t, "2026-01-02"))
	if err != nil {
		t.Fatalf("previous: %v", err)
	}

	both := models.NewCalculator([]models.CalcAccount{checking, savings})
	current, err := both.CalculateWithPrevious(previous, day(t, "2026-02-01"))
	if err != nil {
		t.Fatalf("current: %v", err)
	}

	var savingsDelta *models.AccountBalance
	for i := range current.Difference.AccountBalances {
		if current.Difference.AccountBalances[i].AccountID == "savings" {
			savingsDelta = &current.Difference.AccountBalances[i]
		}
	}
	if savingsDelta == nil {
		t.Fatalf("appeared account missing from difference")
	}
	if !savingsDelta.Balance.Equal(dec("40")) {
		t.Fatalf("expected appeared balance 40, got %s", savingsDelta.Balance)
	}
}

func TestDuplicateAccountIdIsInvariantError(t *testing.T) {
	account := models.CalcAccount{
		ID:   "dup",
		Type: models.AccountTypeChecking,
		Entries: []models.Entry{
			entry(t, "2026-01-01", "100", models.EntryBalance),
		},
	}
	calculator := models.NewCalculator([]models.CalcAccount{account, account})

	_, err := calculator.Calculate(day(t, "2026-01-02"))
	if err == nil {
		t.Fatalf("expected error for duplicated account id")
	}
	if !errors.Is(err, utils.ErrorInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
}

func TestAmountMarshalsWithFloorRounding(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12.345", `"12.34"`},
		{"12.349", `"12.34"`},
		{"-12.345", `"-12.35"`},
		{"7", `"7.00"`},
		{"0", `"0.00"`},
	}
	for _, tc := range cases {
		out, err := json.Marshal(models.NewAmount(dec(tc.in)))
		if err != nil {
			t.Fatalf("marshal %s: %v", tc.in, err)
		}
		if string(out) != tc.want {
			t.Fatalf("marshal %s: expected %s, got %s", tc.in, tc.want, out)
		}
	}
}

func TestSnapshotRoundTripsThroughJSON(t *testing.T) {
	checking := models.CalcAccount{
		ID:   "checking",
		Type: models.AccountTypeChecking,
		Entries: []models.Entry{
			entry(t, "2026-01-01", "100.10", models.EntryBalance),
		},
	}
	calculator := models.NewCalculator([]models.CalcAccount{checking})
	snapshot, err := calculator.Calculate(day(t, "2026-01-02"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded models.Snapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Date != snapshot.Date {
		t.Fatalf("date changed across round trip")
	}
	if !decoded.Net.Equal(dec("100.10")) {
		t.Fatalf("expected net 100.10 after round trip, got %s", decoded.Net)
	}
}
