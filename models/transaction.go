package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/networth_backend/config"
	"bitbucket.org/mmdatafocus/networth_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Transaction struct {
	ID            string          `gorm:"primary_key;size:36" json:"id"`
	Description   string          `gorm:"size:255" json:"description"`
	Date          string          `gorm:"index;size:10;not null" json:"date"`
	Value         decimal.Decimal `gorm:"type:decimal(24,6);not null" json:"value"`
	Type          TransactionType `gorm:"type:enum('BALANCE','TRANSFER');index;size:10;not null" json:"type"`
	AccountId     string          `gorm:"index;size:36;not null" json:"accountId"`
	FromAccountId *string         `gorm:"index;size:36" json:"fromAccountId"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTransaction struct {
	Description   string          `json:"description"`
	Date          string          `json:"date" binding:"required"`
	Value         decimal.Decimal `json:"value"`
	Type          TransactionType `json:"type" binding:"required"`
	AccountId     string          `json:"accountId"`
	FromAccountId *string         `json:"fromAccountId"`
}

// validate input for both create & update. (id = "" for create)

func (input *NewTransaction) validate(ctx context.Context, id string) error {
	if !input.Type.Valid() {
		return errors.New("invalid transaction type")
	}
	if _, err := utils.ParseDate(input.Date); err != nil {
		return errors.New("date must be formatted as " + utils.DateLayout)
	}
	if input.Value.IsNegative() {
		return errors.New("value cannot be negative")
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&Account{}).Where("id = ?", input.AccountId).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errors.New("account not found")
	}

	switch input.Type {
	case TransactionTypeBalance:
		if input.FromAccountId != nil && *input.FromAccountId != "" {
			return errors.New("balance cannot have a from account")
		}
		// one balance per account per day
		dbCtx := db.WithContext(ctx).Model(&Transaction{}).
			Where("account_id = ?", input.AccountId).
			Where("date = ?", input.Date).
			Where("type = ?", TransactionTypeBalance)
		if id != "" {
			dbCtx = dbCtx.Where("id <> ?", id)
		}
		if err := dbCtx.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("account already has a balance on this date")
		}
	case TransactionTypeTransfer:
		if input.FromAccountId == nil || *input.FromAccountId == "" {
			return errors.New("transfer requires a from account")
		}
		if *input.FromAccountId == input.AccountId {
			return errors.New("transfer cannot target its own from account")
		}
		if err := db.WithContext(ctx).Model(&Account{}).Where("id = ?", *input.FromAccountId).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.New("from account not found")
		}
	}
	return nil
}

// applyDefaultFromAccount fills a transfer's missing from account from the
// DEFAULT_TRANSACTION_FROM_ACCOUNT_ID setting, when configured.
func (input *NewTransaction) applyDefaultFromAccount(ctx context.Context) error {
	if input.Type != TransactionTypeTransfer {
		return nil
	}
	if input.FromAccountId != nil && *input.FromAccountId != "" {
		return nil
	}
	setting, err := FindSettingByKey(ctx, SettingKeyDefaultTransactionFromAccountId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil
		}
		return err
	}
	if setting.Value != "" {
		input.FromAccountId = &setting.Value
	}
	return nil
}

func CreateTransaction(ctx context.Context, input *NewTransaction) (*Transaction, error) {

	if err := input.applyDefaultFromAccount(ctx); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, ""); err != nil {
		return nil, err
	}

	transaction := Transaction{
		ID:            uuid.NewString(),
		Description:   input.Description,
		Date:          input.Date,
		Value:         input.Value,
		Type:          input.Type,
		AccountId:     input.AccountId,
		FromAccountId: input.FromAccountId,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func UpdateTransaction(ctx context.Context, id string, input *NewTransaction) (*Transaction, error) {

	if err := input.applyDefaultFromAccount(ctx); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var transaction Transaction
	err := db.WithContext(ctx).First(&transaction, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"Description":   input.Description,
		"Date":          input.Date,
		"Value":         input.Value,
		"Type":          input.Type,
		"AccountId":     input.AccountId,
		"FromAccountId": input.FromAccountId,
	}
	err = db.WithContext(ctx).Model(&transaction).Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func DeleteTransaction(ctx context.Context, id string) (*Transaction, error) {

	db := config.GetDB()
	var transaction Transaction
	err := db.WithContext(ctx).First(&transaction, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	err = db.WithContext(ctx).Delete(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func GetTransaction(ctx context.Context, id string) (*Transaction, error) {

	db := config.GetDB()
	var transaction Transaction
	err := db.WithContext(ctx).First(&transaction, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func GetTransactions(ctx context.Context, accountId *string) ([]*Transaction, error) {

	db := config.GetDB()
	var results []*Transaction

	dbCtx := db.WithContext(ctx)
	if accountId != nil && *accountId != "" {
		dbCtx = dbCtx.Where("account_id = ? OR from_account_id = ?", *accountId, *accountId)
	}
	err := dbCtx.Order("date DESC, created_at DESC, id DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Entry translates the persisted row into a ledger entry from one account's
// point of view. A transfer shows up twice, as transfer-in on its destination
// and transfer-out on its source; rows that do not involve the account yield
// no entry.
func (t *Transaction) Entry(accountId string) (Entry, bool) {
	date, err := utils.ParseDate(t.Date)
	if err != nil {
		return Entry{}, false
	}
	switch t.Type {
	case TransactionTypeBalance:
		if t.AccountId == accountId {
			return Entry{Date: date, Value: t.Value, Kind: EntryBalance}, true
		}
	case TransactionTypeTransfer:
		if t.AccountId == accountId {
			return Entry{Date: date, Value: t.Value, Kind: EntryTransferIn}, true
		}
		if t.FromAccountId != nil && *t.FromAccountId == accountId {
			return Entry{Date: date, Value: t.Value, Kind: EntryTransferOut}, true
		}
	}
	return Entry{}, false
}
