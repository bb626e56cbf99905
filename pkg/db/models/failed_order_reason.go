package models

import "time"

// FailedOrderReason counts order failures per reason and time bucket.
// Same upsert-by-composite-key semantics as DashboardStat.
type FailedOrderReason struct {
	ID        uint      `gorm:"primaryKey"`
	Reason    string    `gorm:"column:reason;type:text;not null;uniqueIndex:idx_failed_order_reasons_bucket,priority:1"`
	Year      int       `gorm:"column:year;not null;uniqueIndex:idx_failed_order_reasons_bucket,priority:2"`
	Month     int       `gorm:"column:month;not null;uniqueIndex:idx_failed_order_reasons_bucket,priority:3"`
	Week      int       `gorm:"column:week;not null;uniqueIndex:idx_failed_order_reasons_bucket,priority:4"`
	Value     float64   `gorm:"column:value;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table used by the goose migrations.
func (FailedOrderReason) TableName() string { return "failed_order_reasons" }
