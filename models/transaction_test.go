package models_test

import (
	"testing"

	"bitbucket.org/mmdatafocus/networth_backend/models"
)

func TestTransactionEntryPerspective(t *testing.T) {
	transfer := &models.Transaction{
		ID:            "t1",
		Date:          "2026-01-10",
		Value:         dec("25"),
		Type:          models.TransactionTypeTransfer,
		AccountId:     "savings",
		FromAccountId: strPtr("checking"),
	}

	in, ok := transfer.Entry("savings")
	if !ok || in.Kind != models.EntryTransferIn {
		t.Fatalf("expected transfer-in for destination, got %+v ok=%v", in, ok)
	}
	out, ok := transfer.Entry("checking")
	if !ok || out.Kind != models.EntryTransferOut {
		t.Fatalf("expected transfer-out for source, got %+v ok=%v", out, ok)
	}
	if _, ok := transfer.Entry("brokerage"); ok {
		t.Fatalf("uninvolved account must yield no entry")
	}
	if !in.Value.Equal(dec("25")) || !out.Value.Equal(dec("25")) {
		t.Fatalf("entry values must carry the transaction value")
	}
}

func TestBalanceEntryOnlyForOwner(t *testing.T) {
	balance := &models.Transaction{
		ID:        "t2",
		Date:      "2026-01-10",
		Value:     dec("100"),
		Type:      models.TransactionTypeBalance,
		AccountId: "savings",
	}

	entry, ok := balance.Entry("savings")
	if !ok || entry.Kind != models.EntryBalance {
		t.Fatalf("expected balance entry for owner, got %+v ok=%v", entry, ok)
	}
	if _, ok := balance.Entry("checking"); ok {
		t.Fatalf("balance must not produce entries for other accounts")
	}
}

func TestEntryRejectsMalformedDate(t *testing.T) {
	broken := &models.Transaction{
		ID:        "t3",
		Date:      "01/10/2026",
		Value:     dec("100"),
		Type:      models.TransactionTypeBalance,
		AccountId: "savings",
	}
	if _, ok := broken.Entry("savings"); ok {
		t.Fatalf("malformed date must not yield an entry")
	}
}

func TestAccountCalcAccountFiltersLedger(t *testing.T) {
	account := &models.Account{ID: "checking", Name: "Main", Type: models.AccountTypeChecking}
	transactions := []*models.Transaction{
		{ID: "t1", Date: "2026-01-01", Value: dec("100"), Type: models.TransactionTypeBalance, AccountId: "checking"},
		{ID: "t2", Date: "2026-01-02", Value: dec("30"), Type: models.TransactionTypeTransfer, AccountId: "savings", FromAccountId: strPtr("checking")},
		{ID: "t3", Date: "2026-01-03", Value: dec("999"), Type: models.TransactionTypeBalance, AccountId: "savings"},
	}

	calc := account.CalcAccount(transactions)
	if len(calc.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(calc.Entries))
	}
	if calc.Entries[0].Kind != models.EntryBalance || calc.Entries[1].Kind != models.EntryTransferOut {
		t.Fatalf("unexpected entry kinds: %+v", calc.Entries)
	}
}
