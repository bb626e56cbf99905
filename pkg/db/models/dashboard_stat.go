package models

import "time"

// DashboardStat is a rolling counter keyed by metric type and time bucket.
// At most one row exists per (metric_type, year, month, week); updates are
// additive and rows are never deleted.
type DashboardStat struct {
	ID         uint      `gorm:"primaryKey"`
	MetricType string    `gorm:"column:metric_type;type:text;not null;uniqueIndex:idx_dashboard_stats_bucket,priority:1"`
	Year       int       `gorm:"column:year;not null;uniqueIndex:idx_dashboard_stats_bucket,priority:2"`
	Month      int       `gorm:"column:month;not null;uniqueIndex:idx_dashboard_stats_bucket,priority:3"`
	Week       int       `gorm:"column:week;not null;uniqueIndex:idx_dashboard_stats_bucket,priority:4"`
	Value      float64   `gorm:"column:value;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table used by the goose migrations.
func (DashboardStat) TableName() string { return "dashboard_stats" }

// Recognized metric types.
const (
	MetricOrders       = "orders"
	MetricSettlements  = "settlements"
	MetricFailedOrders = "failed_orders"
)

// ValidMetricType reports whether the metric type is one the dashboard tracks.
func ValidMetricType(metricType string) bool {
	switch metricType {
	case MetricOrders, MetricSettlements, MetricFailedOrders:
		return true
	}
	return false
}
