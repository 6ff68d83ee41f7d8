package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/networth_backend/config"
	"bitbucket.org/mmdatafocus/networth_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailySummary is a persisted snapshot row, written by the backfill command
// so dashboards can read historic nets without replaying the ledger.
type DailySummary struct {
	ID        string          `gorm:"primary_key;size:36" json:"id"`
	Date      string          `gorm:"uniqueIndex;size:10;not null" json:"date"`
	Net       decimal.Decimal `gorm:"type:decimal(24,6);not null" json:"net"`
	Detail    string          `gorm:"type:text" json:"detail"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewDailySummary encodes a snapshot into its persisted row form.
func NewDailySummary(snapshot *Snapshot) (*DailySummary, error) {
	detail, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	return &DailySummary{
		ID:     uuid.NewString(),
		Date:   snapshot.Date,
		Net:    snapshot.Net.Decimal,
		Detail: string(detail),
	}, nil
}

// Snapshot decodes the stored detail back into the snapshot it was written
// from. A row that fails to decode was corrupted after write; that is our
// bug, not the caller's.
func (s *DailySummary) Snapshot() (*Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal([]byte(s.Detail), &snapshot); err != nil {
		return nil, fmt.Errorf("%w: undecodable daily summary for %s: %v", utils.ErrorInvariant, s.Date, err)
	}
	return &snapshot, nil
}

// UpsertDailySummary stores a snapshot under its date, replacing any earlier
// row for the same date.
func UpsertDailySummary(ctx context.Context, snapshot *Snapshot) (*DailySummary, error) {

	summary, err := NewDailySummary(snapshot)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"net", "detail"}),
	}).Create(summary).Error
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func GetDailySummaries(ctx context.Context, from string, to string) ([]*DailySummary, error) {

	db := config.GetDB()
	var results []*DailySummary

	dbCtx := db.WithContext(ctx)
	if from != "" {
		dbCtx = dbCtx.Where("date >= ?", from)
	}
	if to != "" {
		dbCtx = dbCtx.Where("date <= ?", to)
	}
	err := dbCtx.Order("date").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetDailySnapshots returns the persisted snapshot series for the range,
// decoded and ascending by date.
func GetDailySnapshots(ctx context.Context, from string, to string) ([]*Snapshot, error) {

	summaries, err := GetDailySummaries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	snapshots := make([]*Snapshot, 0, len(summaries))
	for _, summary := range summaries {
		snapshot, err := summary.Snapshot()
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func GetDailySummary(ctx context.Context, date string) (*DailySummary, error) {

	db := config.GetDB()
	var summary DailySummary
	err := db.WithContext(ctx).First(&summary, "date = ?", date).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &summary, nil
}
