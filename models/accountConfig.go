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

// AccountConfig is a named, typed value attached to an account, such as the
// interest rate on a savings account or loan. Which names an account accepts
// depends on its kind.
type AccountConfig struct {
	ID        string     `gorm:"primary_key;size:36" json:"id"`
	AccountId string     `gorm:"index;size:36;not null" json:"accountId"`
	Name      string     `gorm:"index;size:50;not null" json:"name"`
	Type      ConfigType `gorm:"size:20;not null" json:"type"`
	Value     string     `gorm:"size:100;not null" json:"value"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccountConfig struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// CanAddConfig reports whether the account kind accepts a new config with
// this name and value, given the configs the account already holds. Pure;
// the CRUD layer feeds it the persisted state.
func CanAddConfig(accountType AccountType, existing []*AccountConfig, name string, value string) bool {
	configType, ok := accountType.ConfigNames()[name]
	if !ok {
		return false
	}
	if !configType.ValidValue(value) {
		return false
	}
	for _, current := range existing {
		if current.Name == name {
			return false
		}
	}
	return true
}

// CanUpdateConfig reports whether an existing config may take a new value.
// The name is fixed; only the value may change, and it must still parse.
func CanUpdateConfig(accountType AccountType, current *AccountConfig, name string, value string) bool {
	if current.Name != name {
		return false
	}
	configType, ok := accountType.ConfigNames()[name]
	if !ok {
		return false
	}
	return configType.ValidValue(value)
}

func CreateAccountConfig(ctx context.Context, accountId string, input *NewAccountConfig) (*AccountConfig, error) {

	account, err := GetAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}
	existing, err := GetAccountConfigs(ctx, accountId)
	if err != nil {
		return nil, err
	}
	if !CanAddConfig(account.Type, existing, input.Name, input.Value) {
		return nil, errors.New("cannot create config")
	}

	accountConfig := AccountConfig{
		ID:        uuid.NewString(),
		AccountId: accountId,
		Name:      input.Name,
		Type:      account.Type.ConfigNames()[input.Name],
		Value:     input.Value,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Create(&accountConfig).Error
	if err != nil {
		return nil, err
	}
	return &accountConfig, nil
}

func UpdateAccountConfig(ctx context.Context, accountId string, id string, input *NewAccountConfig) (*AccountConfig, error) {

	account, err := GetAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var accountConfig AccountConfig
	err = db.WithContext(ctx).First(&accountConfig, "id = ? AND account_id = ?", id, accountId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	if !CanUpdateConfig(account.Type, &accountConfig, input.Name, input.Value) {
		return nil, errors.New("cannot update config")
	}

	err = db.WithContext(ctx).Model(&accountConfig).Updates(map[string]interface{}{
		"Value": input.Value,
	}).Error
	if err != nil {
		return nil, err
	}
	return &accountConfig, nil
}

func DeleteAccountConfig(ctx context.Context, accountId string, id string) (*AccountConfig, error) {

	db := config.GetDB()
	var accountConfig AccountConfig
	err := db.WithContext(ctx).First(&accountConfig, "id = ? AND account_id = ?", id, accountId).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	err = db.WithContext(ctx).Delete(&accountConfig).Error
	if err != nil {
		return nil, err
	}
	return &accountConfig, nil
}

func GetAccountConfigs(ctx context.Context, accountId string) ([]*AccountConfig, error) {

	db := config.GetDB()
	var results []*AccountConfig
	err := db.WithContext(ctx).Where("account_id = ?", accountId).Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
