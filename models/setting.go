package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/networth_backend/config"
	"bitbucket.org/mmdatafocus/networth_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Setting is a global key/value pair. Keys come from the closed SettingKey
// set and each key exists at most once.
type Setting struct {
	ID        string     `gorm:"primary_key;size:36" json:"id"`
	Key       SettingKey `gorm:"uniqueIndex;size:64;not null" json:"key"`
	Value     string     `gorm:"size:512" json:"value"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSetting struct {
	Key   SettingKey `json:"key" binding:"required"`
	Value string     `json:"value"`
}

func CreateSetting(ctx context.Context, input *NewSetting) (*Setting, error) {

	if !input.Key.Valid() {
		return nil, errors.New("invalid setting key")
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&Setting{}).Where("`key` = ?", input.Key).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("setting already exists")
	}

	setting := Setting{
		ID:    uuid.NewString(),
		Key:   input.Key,
		Value: input.Value,
	}
	err := db.WithContext(ctx).Create(&setting).Error
	if err != nil {
		// unique index on key catches the race the count check above misses
		if utils.IsDuplicateEntry(err) {
			return nil, errors.New("setting already exists")
		}
		return nil, err
	}
	return &setting, nil
}

// UpdateSetting changes a setting's value. The key in the input must match
// the stored key; settings never change identity.
func UpdateSetting(ctx context.Context, id string, input *NewSetting) (*Setting, error) {

	db := config.GetDB()
	var setting Setting
	err := db.WithContext(ctx).First(&setting, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	if setting.Key != input.Key {
		return nil, errors.New("setting key cannot be changed")
	}

	err = db.WithContext(ctx).Model(&setting).Updates(map[string]interface{}{
		"Value": input.Value,
	}).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func DeleteSetting(ctx context.Context, id string) (*Setting, error) {

	db := config.GetDB()
	var setting Setting
	err := db.WithContext(ctx).First(&setting, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	err = db.WithContext(ctx).Delete(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func GetSettings(ctx context.Context) ([]*Setting, error) {

	db := config.GetDB()
	var results []*Setting
	err := db.WithContext(ctx).Order("`key`").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func FindSettingByKey(ctx context.Context, key SettingKey) (*Setting, error) {

	db := config.GetDB()
	var setting Setting
	err := db.WithContext(ctx).First(&setting, "`key` = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &setting, nil
}

// SettingValueList splits a comma separated setting value into trimmed,
// non-empty items.
func SettingValueList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
