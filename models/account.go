package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/networth_backend/config"
	"bitbucket.org/mmdatafocus/networth_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Account struct {
	ID        string      `gorm:"primary_key;size:36" json:"id"`
	Name      string      `gorm:"index;size:100;not null" json:"name"`
	Type      AccountType `gorm:"type:enum('SAVINGS','CHECKING','LOAN','INVESTMENT','RETIREMENT','ASSET','CREDIT_CARD','EXTERNAL');index;size:20;not null" json:"type"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccount struct {
	Name string      `json:"name" binding:"required"`
	Type AccountType `json:"type" binding:"required"`
}

type UpdateAccountInput struct {
	Name string `json:"name" binding:"required"`
}

func CreateAccount(ctx context.Context, input *NewAccount) (*Account, error) {

	if !input.Type.Valid() {
		return nil, errors.New("invalid account type")
	}

	account := Account{
		ID:   uuid.NewString(),
		Name: input.Name,
		Type: input.Type,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAccount renames an account. The type is fixed at creation; changing
// it would silently rewrite the meaning of every historic transaction.
func UpdateAccount(ctx context.Context, id string, input *UpdateAccountInput) (*Account, error) {

	db := config.GetDB()
	var account Account
	err := db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	err = db.WithContext(ctx).Model(&account).Updates(map[string]interface{}{
		"Name": input.Name,
	}).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteAccount removes an account together with its configs and its own
// transactions. Transfers created from other accounts keep this account as
// their source, so those block the delete.
func DeleteAccount(ctx context.Context, id string) (*Account, error) {

	db := config.GetDB()
	var account Account
	err := db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	var count int64
	if err := db.WithContext(ctx).Model(&Transaction{}).
		Where("from_account_id = ? AND account_id <> ?", id, id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("this account is the source of transfers on other accounts")
	}

	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("account_id = ?", id).Delete(&Transaction{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Where("account_id = ?", id).Delete(&AccountConfig{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Delete(&account).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return &account, tx.Commit().Error
}

func GetAccount(ctx context.Context, id string) (*Account, error) {

	db := config.GetDB()
	var account Account
	err := db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &account, nil
}

func GetAccounts(ctx context.Context, name *string) ([]*Account, error) {

	db := config.GetDB()
	var results []*Account

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CalcAccount builds the calculation view of the account from an ordered
// transaction list. Rows that do not involve the account are skipped, so the
// caller may pass the whole ledger.
func (a *Account) CalcAccount(transactions []*Transaction) CalcAccount {
	calc := CalcAccount{
		ID:   a.ID,
		Name: a.Name,
		Type: a.Type,
	}
	for _, transaction := range transactions {
		if entry, ok := transaction.Entry(a.ID); ok {
			calc.Entries = append(calc.Entries, entry)
		}
	}
	return calc
}

// LoadCalculator materializes every account's ledger in two queries and
// returns a calculator ready to derive snapshots. Transactions are ordered
// oldest first; same-day rows keep insertion order so a later correction on
// the same date wins the balance fold.
func LoadCalculator(ctx context.Context) (*Calculator, error) {

	accounts, err := GetAccounts(ctx, nil)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var transactions []*Transaction
	err = db.WithContext(ctx).Order("date, created_at, id").Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	calcAccounts := make([]CalcAccount, 0, len(accounts))
	for _, account := range accounts {
		calcAccounts = append(calcAccounts, account.CalcAccount(transactions))
	}
	return NewCalculator(calcAccounts), nil
}
