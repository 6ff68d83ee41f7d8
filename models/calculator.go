package models

import (
	"fmt"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/networth_backend/utils"
	"github.com/shopspring/decimal"
)

// Amount is a decimal that renders with floor rounding to two places.
// Arithmetic stays exact; only JSON output rounds, and it rounds down so a
// snapshot never reports more money than actually exists.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.RoundFloor(2).StringFixed(2))), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// EntryKind discriminates ledger entries from the perspective of one account.
// A persisted TRANSFER row becomes a transfer-in entry on the destination
// account and a transfer-out entry on the source account.
type EntryKind int

const (
	EntryBalance EntryKind = iota
	EntryTransferIn
	EntryTransferOut
)

// Entry is one dated monetary event in an account's ledger. Immutable;
// rebuilt from the persisted transaction on every load.
type Entry struct {
	Date  time.Time
	Value decimal.Decimal
	Kind  EntryKind
}

// balance folds the running balance through the entry. A balance entry
// asserts the absolute value on its date; transfers adjust the running value.
func (e Entry) balance(running decimal.Decimal) decimal.Decimal {
	switch e.Kind {
	case EntryBalance:
		return e.Value
	case EntryTransferIn:
		return running.Add(e.Value)
	default:
		return running.Sub(e.Value)
	}
}

// balanceReverse is the liability-side fold: money transferred in pays debt
// down, so transfer signs invert. Balance entries still assert outright.
func (e Entry) balanceReverse(running decimal.Decimal) decimal.Decimal {
	switch e.Kind {
	case EntryBalance:
		return e.Value
	case EntryTransferIn:
		return running.Sub(e.Value)
	default:
		return running.Add(e.Value)
	}
}

// transfer folds the running transfer total. Balance entries contribute
// nothing.
func (e Entry) transfer(running decimal.Decimal) decimal.Decimal {
	switch e.Kind {
	case EntryTransferIn:
		return running.Add(e.Value)
	case EntryTransferOut:
		return running.Sub(e.Value)
	default:
		return running
	}
}

func (e Entry) transferReverse(running decimal.Decimal) decimal.Decimal {
	switch e.Kind {
	case EntryTransferIn:
		return running.Sub(e.Value)
	case EntryTransferOut:
		return running.Add(e.Value)
	default:
		return running
	}
}

// CalcAccount is the calculation view of one account: identity, kind and its
// full ordered ledger. The persistence layer materializes it once per
// calculation; the engine never goes back to the database.
type CalcAccount struct {
	ID      string
	Name    string
	Type    AccountType
	Entries []Entry
}

// foldUntil runs step over every entry dated on or before date, oldest
// first. Entries strictly after date stop the fold.
func foldUntil(entries []Entry, date time.Time, step func(decimal.Decimal, Entry) decimal.Decimal) decimal.Decimal {
	value := decimal.Zero
	for _, entry := range entries {
		if entry.Date.After(date) {
			break
		}
		value = step(value, entry)
	}
	return value
}

// CalculateBalance returns the account value as of date. External
// placeholder accounts always report zero; they model entities outside this
// ledger's authority. Liability kinds fold with reversed transfer signs and
// report the outstanding magnitude as a positive number.
func (a CalcAccount) CalculateBalance(date time.Time) decimal.Decimal {
	switch a.Type.TotalType().CalculationType() {
	case CalculationTypeIgnored:
		return decimal.Zero
	case CalculationTypeLiability:
		return foldUntil(a.Entries, date, func(running decimal.Decimal, e Entry) decimal.Decimal {
			return e.balanceReverse(running)
		})
	default:
		return foldUntil(a.Entries, date, func(running decimal.Decimal, e Entry) decimal.Decimal {
			return e.balance(running)
		})
	}
}

// CalculateTransfer returns the accumulated transfer total as of date, with
// the same sign convention as CalculateBalance.
func (a CalcAccount) CalculateTransfer(date time.Time) decimal.Decimal {
	switch a.Type.TotalType().CalculationType() {
	case CalculationTypeIgnored:
		return decimal.Zero
	case CalculationTypeLiability:
		return foldUntil(a.Entries, date, func(running decimal.Decimal, e Entry) decimal.Decimal {
			return e.transferReverse(running)
		})
	default:
		return foldUntil(a.Entries, date, func(running decimal.Decimal, e Entry) decimal.Decimal {
			return e.transfer(running)
		})
	}
}

// TotalBalance is one category line of a snapshot.
type TotalBalance struct {
	Type     TotalType `json:"type"`
	Balance  Amount    `json:"balance"`
	Transfer Amount    `json:"transfer"`
	Flow     Amount    `json:"flow"`
}

// AccountBalance is one per-account line of a snapshot.
type AccountBalance struct {
	AccountID string `json:"accountId"`
	Balance   Amount `json:"balance"`
	Transfer  Amount `json:"transfer"`
}

// FlowGrouping is one rolled-up flow bucket of a snapshot.
type FlowGrouping struct {
	Type  FlowGroupingType `json:"type"`
	Value Amount           `json:"value"`
}

// Difference mirrors the snapshot shape with component-wise deltas against
// the previous snapshot.
type Difference struct {
	Net             Amount           `json:"net"`
	TotalBalances   []TotalBalance   `json:"totalBalances"`
	AccountBalances []AccountBalance `json:"accountBalances"`
	FlowGroupings   []FlowGrouping   `json:"flowGroupings"`
}

// Snapshot is the point-in-time result of one calculation.
type Snapshot struct {
	Date            string           `json:"date"`
	Net             Amount           `json:"net"`
	TotalBalances   []TotalBalance   `json:"totalBalances"`
	AccountBalances []AccountBalance `json:"accountBalances"`
	FlowGroupings   []FlowGrouping   `json:"flowGroupings"`
	Difference      *Difference      `json:"difference,omitempty"`
}

// totals is the mutable accumulator for one calculation. It lives for a
// single Calculate call and is never shared, which is why plain maps are
// fine here.
type totals struct {
	net             decimal.Decimal
	totalBalances   map[TotalType]*TotalBalance
	accountBalances map[string]*AccountBalance
	accountOrder    []string
	flowGroupings   map[FlowGroupingType]*FlowGrouping
}

func newTotals() *totals {
	t := &totals{
		net:             decimal.Zero,
		totalBalances:   make(map[TotalType]*TotalBalance),
		accountBalances: make(map[string]*AccountBalance),
		flowGroupings:   make(map[FlowGroupingType]*FlowGrouping),
	}
	for _, totalType := range AllTotalTypes {
		if totalType == TotalTypeIgnored {
			continue
		}
		t.totalBalances[totalType] = &TotalBalance{Type: totalType}
	}
	for _, groupingType := range AllFlowGroupingTypes {
		if groupingType == FlowGroupingTypeIgnored {
			continue
		}
		t.flowGroupings[groupingType] = &FlowGrouping{Type: groupingType}
	}
	return t
}

// addAccount records one account's balance and transfer and folds them into
// the category totals and net worth. A duplicated account id means the
// caller built the account list wrong; that is a bug, not bad input.
func (t *totals) addAccount(account CalcAccount, balance, transfer decimal.Decimal) error {
	if _, exists := t.accountBalances[account.ID]; exists {
		return fmt.Errorf("%w: account id %s duplicated in calculation", utils.ErrorInvariant, account.ID)
	}
	t.accountBalances[account.ID] = &AccountBalance{
		AccountID: account.ID,
		Balance:   NewAmount(balance),
		Transfer:  NewAmount(transfer),
	}
	t.accountOrder = append(t.accountOrder, account.ID)

	totalType := account.Type.TotalType()
	calculation := totalType.CalculationType()
	if calculation == CalculationTypeIgnored {
		return nil
	}
	current := t.totalBalances[totalType]
	current.Balance = NewAmount(current.Balance.Add(balance))
	current.Transfer = NewAmount(current.Transfer.Add(transfer))
	t.net = calculation.AddNet(t.net, balance)
	return nil
}

// finalizeFlows derives each category's flow and rolls it into the category's
// flow grouping. Runs once, after every account has been added.
func (t *totals) finalizeFlows() {
	for _, totalType := range AllTotalTypes {
		if totalType == TotalTypeIgnored {
			continue
		}
		current := t.totalBalances[totalType]
		flow := totalType.CalculationType().Flow(current.Balance.Decimal, current.Transfer.Decimal)
		current.Flow = NewAmount(flow)

		grouping := totalType.FlowGroupingType()
		if grouping == FlowGroupingTypeIgnored {
			continue
		}
		bucket := t.flowGroupings[grouping]
		bucket.Value = NewAmount(bucket.Value.Add(flow))
	}
}

func (t *totals) snapshot(date time.Time) *Snapshot {
	snapshot := &Snapshot{
		Date: date.Format(utils.DateLayout),
		Net:  NewAmount(t.net),
	}
	for _, totalType := range AllTotalTypes {
		if totalType == TotalTypeIgnored {
			continue
		}
		snapshot.TotalBalances = append(snapshot.TotalBalances, *t.totalBalances[totalType])
	}
	for _, accountID := range t.accountOrder {
		snapshot.AccountBalances = append(snapshot.AccountBalances, *t.accountBalances[accountID])
	}
	for _, groupingType := range AllFlowGroupingTypes {
		if groupingType == FlowGroupingTypeIgnored {
			continue
		}
		snapshot.FlowGroupings = append(snapshot.FlowGroupings, *t.flowGroupings[groupingType])
	}
	return snapshot
}

// difference compares the accumulated totals against a previous snapshot.
// Category and flow-grouping keys are fixed by the enums, so a missing key
// on either side is an invariant violation. Accounts come and go: an account
// present only previously contributes its full negation, an account present
// only now contributes its full value.
func (t *totals) difference(previous *Snapshot) (*Difference, error) {
	difference := &Difference{}

	seenTotals := make(map[TotalType]bool)
	for _, previousBalance := range previous.TotalBalances {
		seenTotals[previousBalance.Type] = true
		newer, ok := t.totalBalances[previousBalance.Type]
		if !ok {
			return nil, fmt.Errorf("%w: total type %s missing from current totals", utils.ErrorInvariant, previousBalance.Type)
		}
		difference.TotalBalances = append(difference.TotalBalances, TotalBalance{
			Type:     previousBalance.Type,
			Balance:  NewAmount(newer.Balance.Sub(previousBalance.Balance.Decimal)),
			Transfer: NewAmount(newer.Transfer.Sub(previousBalance.Transfer.Decimal)),
			Flow:     NewAmount(newer.Flow.Sub(previousBalance.Flow.Decimal)),
		})
	}
	for totalType := range t.totalBalances {
		if !seenTotals[totalType] {
			return nil, fmt.Errorf("%w: total type %s missing from previous snapshot", utils.ErrorInvariant, totalType)
		}
	}

	seenAccounts := make(map[string]bool)
	for _, previousBalance := range previous.AccountBalances {
		seenAccounts[previousBalance.AccountID] = true
		if newer, ok := t.accountBalances[previousBalance.AccountID]; ok {
			difference.AccountBalances = append(difference.AccountBalances, AccountBalance{
				AccountID: previousBalance.AccountID,
				Balance:   NewAmount(newer.Balance.Sub(previousBalance.Balance.Decimal)),
				Transfer:  NewAmount(newer.Transfer.Sub(previousBalance.Transfer.Decimal)),
			})
		} else {
			difference.AccountBalances = append(difference.AccountBalances, AccountBalance{
				AccountID: previousBalance.AccountID,
				Balance:   NewAmount(previousBalance.Balance.Neg()),
				Transfer:  NewAmount(previousBalance.Transfer.Neg()),
			})
		}
	}
	for _, accountID := range t.accountOrder {
		if !seenAccounts[accountID] {
			difference.AccountBalances = append(difference.AccountBalances, *t.accountBalances[accountID])
		}
	}

	seenGroupings := make(map[FlowGroupingType]bool)
	for _, previousGrouping := range previous.FlowGroupings {
		seenGroupings[previousGrouping.Type] = true
		newer, ok := t.flowGroupings[previousGrouping.Type]
		if !ok {
			return nil, fmt.Errorf("%w: flow grouping %s missing from current totals", utils.ErrorInvariant, previousGrouping.Type)
		}
		difference.FlowGroupings = append(difference.FlowGroupings, FlowGrouping{
			Type:  previousGrouping.Type,
			Value: NewAmount(newer.Value.Sub(previousGrouping.Value.Decimal)),
		})
	}
	for groupingType := range t.flowGroupings {
		if !seenGroupings[groupingType] {
			return nil, fmt.Errorf("%w: flow grouping %s missing from previous snapshot", utils.ErrorInvariant, groupingType)
		}
	}

	difference.Net = NewAmount(t.net.Sub(previous.Net.Decimal))
	return difference, nil
}

// Calculator derives net-worth snapshots from a fixed set of accounts. It is
// pure: it holds no connections and one instance may serve concurrent
// calculations as long as the account views are not mutated.
type Calculator struct {
	Accounts []CalcAccount
}

func NewCalculator(accounts []CalcAccount) *Calculator {
	return &Calculator{Accounts: accounts}
}

// Calculate computes the snapshot for a single date, with no difference
// block.
func (c *Calculator) Calculate(date time.Time) (*Snapshot, error) {
	return c.calculate(nil, date)
}

// CalculateWithPrevious computes the snapshot for a single date diffed
// against an earlier snapshot, which may come from a different account set.
func (c *Calculator) CalculateWithPrevious(previous *Snapshot, date time.Time) (*Snapshot, error) {
	return c.calculate(previous, date)
}

// CalculateAll computes one snapshot per date, threading each snapshot
// forward as the difference baseline for the next. Dates must be ascending.
// Snapshots with a net worth of exactly zero mean "no data yet" and are
// dropped from the output; they also reset the difference baseline, so the
// first nonzero snapshot after a gap carries no difference block.
func (c *Calculator) CalculateAll(dates []time.Time) ([]*Snapshot, error) {
	var snapshots []*Snapshot
	var previous *Snapshot
	for _, date := range dates {
		snapshot, err := c.calculate(previous, date)
		if err != nil {
			return nil, err
		}
		if !snapshot.Net.IsZero() {
			snapshots = append(snapshots, snapshot)
		}
		previous = snapshot
	}
	return snapshots, nil
}

func (c *Calculator) calculate(previous *Snapshot, date time.Time) (*Snapshot, error) {
	accumulated := newTotals()
	for _, account := range c.Accounts {
		balance := account.CalculateBalance(date)
		transfer := account.CalculateTransfer(date)
		if err := accumulated.addAccount(account, balance, transfer); err != nil {
			return nil, err
		}
	}
	accumulated.finalizeFlows()

	snapshot := accumulated.snapshot(date)
	if previous != nil && !previous.Net.IsZero() {
		difference, err := accumulated.difference(previous)
		if err != nil {
			return nil, err
		}
		snapshot.Difference = difference
	}
	return snapshot, nil
}
