package models

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/networth_backend/config"
	"bitbucket.org/mmdatafocus/networth_backend/utils"
)

type IssueType string

const IssueTransferWithoutBalance IssueType = "TRANSFER_WITHOUT_BALANCE"

// Issue flags a bookkeeping smell the calculator cannot correct on its own.
type Issue struct {
	IssueType     IssueType `json:"issueType"`
	AccountId     string    `json:"accountId"`
	TransactionId string    `json:"transactionId"`
	Date          string    `json:"date"`
}

// FindTransfersWithoutBalances scans the ledger for dates where an account
// moved money without asserting its balance. A transfer alone leaves the
// running value extrapolated, so a same-day balance is expected on every
// involved account. Only accounts listed in the ignored setting are exempt;
// external placeholders are flagged like any other account so the user
// silences them deliberately.
func FindTransfersWithoutBalances(transactions []*Transaction, ignored []string) []Issue {
	ignoredSet := make(map[string]bool, len(ignored))
	for _, id := range ignored {
		ignoredSet[id] = true
	}

	byDate := make(map[string][]*Transaction)
	var dates []string
	for _, transaction := range transactions {
		if _, seen := byDate[transaction.Date]; !seen {
			dates = append(dates, transaction.Date)
		}
		byDate[transaction.Date] = append(byDate[transaction.Date], transaction)
	}

	var issues []Issue
	for _, date := range dates {
		rows := byDate[date]

		hasBalance := make(map[string]bool)
		for _, row := range rows {
			if row.Type == TransactionTypeBalance {
				hasBalance[row.AccountId] = true
			}
		}

		// first transfer per account per date carries the issue
		flagged := make(map[string]bool)
		for _, row := range rows {
			if row.Type != TransactionTypeTransfer {
				continue
			}
			involved := []string{row.AccountId}
			if row.FromAccountId != nil && *row.FromAccountId != "" {
				involved = append(involved, *row.FromAccountId)
			}
			for _, accountId := range involved {
				if flagged[accountId] || hasBalance[accountId] || ignoredSet[accountId] {
					continue
				}
				flagged[accountId] = true
				issues = append(issues, Issue{
					IssueType:     IssueTransferWithoutBalance,
					AccountId:     accountId,
					TransactionId: row.ID,
					Date:          date,
				})
			}
		}
	}
	return issues
}

// ListIssues loads the full ledger and runs every issue scan against it.
func ListIssues(ctx context.Context) ([]Issue, error) {

	db := config.GetDB()
	var transactions []*Transaction
	err := db.WithContext(ctx).Order("date, created_at, id").Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	var ignored []string
	setting, err := FindSettingByKey(ctx, SettingKeyTransferWithoutBalanceIgnoredAccts)
	if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, err
	}
	if setting != nil {
		ignored = SettingValueList(setting.Value)
	}

	return FindTransfersWithoutBalances(transactions, ignored), nil
}
