package dashboard

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nilecommerce/admin-service/pkg/db/models"
	"github.com/nilecommerce/admin-service/pkg/timebucket"
)

// Repository persists bucketed dashboard counters.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a dashboard repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var bucketConflictColumns = []clause.Column{
	{Name: "metric_type"}, {Name: "year"}, {Name: "month"}, {Name: "week"},
}

var reasonConflictColumns = []clause.Column{
	{Name: "reason"}, {Name: "year"}, {Name: "month"}, {Name: "week"},
}

// IncrementStat adds delta to the bucket's counter, creating the row when it
// does not exist. The whole operation is a single atomic statement, so
// concurrent increments to the same bucket never lose updates.
func (r *Repository) IncrementStat(ctx context.Context, metricType string, bucket timebucket.Bucket, delta float64) error {
	stat := models.DashboardStat{
		MetricType: metricType,
		Year:       bucket.Year,
		Month:      bucket.Month,
		Week:       bucket.Week,
		Value:      delta,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: bucketConflictColumns,
			DoUpdates: clause.Assignments(map[string]any{
				"value": gorm.Expr("value + excluded.value"),
			}),
		}).
		Create(&stat).Error
}

// IncrementReason mirrors IncrementStat for per-reason failure counters.
func (r *Repository) IncrementReason(ctx context.Context, reason string, bucket timebucket.Bucket, delta float64) error {
	row := models.FailedOrderReason{
		Reason: reason,
		Year:   bucket.Year,
		Month:  bucket.Month,
		Week:   bucket.Week,
		Value:  delta,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: reasonConflictColumns,
			DoUpdates: clause.Assignments(map[string]any{
				"value": gorm.Expr("value + excluded.value"),
			}),
		}).
		Create(&row).Error
}

// StatsForBucket returns the stat rows for a metric in a single bucket.
func (r *Repository) StatsForBucket(ctx context.Context, metricType string, bucket timebucket.Bucket) ([]models.DashboardStat, error) {
	var stats []models.DashboardStat
	err := r.db.WithContext(ctx).
		Where("metric_type = ? AND year = ? AND month = ? AND week = ?",
			metricType, bucket.Year, bucket.Month, bucket.Week).
		Find(&stats).Error
	return stats, err
}

// ReasonsForBucket returns the failure-reason rows in a single bucket.
func (r *Repository) ReasonsForBucket(ctx context.Context, bucket timebucket.Bucket) ([]models.FailedOrderReason, error) {
	var reasons []models.FailedOrderReason
	err := r.db.WithContext(ctx).
		Where("year = ? AND month = ? AND week = ?", bucket.Year, bucket.Month, bucket.Week).
		Find(&reasons).Error
	return reasons, err
}

// MonthSum is a per-month aggregate of a metric within one year.
type MonthSum struct {
	Month int     `gorm:"column:month"`
	Total float64 `gorm:"column:total"`
}

// MonthlySums groups a metric's rows by month within the year.
func (r *Repository) MonthlySums(ctx context.Context, metricType string, year int) ([]MonthSum, error) {
	var sums []MonthSum
	err := r.db.WithContext(ctx).
		Model(&models.DashboardStat{}).
		Select("month, SUM(value) AS total").
		Where("metric_type = ? AND year = ?", metricType, year).
		Group("month").
		Order("month ASC").
		Scan(&sums).Error
	return sums, err
}

// ReasonSum is a per-reason aggregate within one year.
type ReasonSum struct {
	Reason string  `gorm:"column:reason"`
	Total  float64 `gorm:"column:total"`
}

// TopReasonSums returns the highest-valued reasons in the year, descending.
func (r *Repository) TopReasonSums(ctx context.Context, year, limit int) ([]ReasonSum, error) {
	var sums []ReasonSum
	err := r.db.WithContext(ctx).
		Model(&models.FailedOrderReason{}).
		Select("reason, SUM(value) AS total").
		Where("year = ?", year).
		Group("reason").
		Order("total DESC").
		Limit(limit).
		Scan(&sums).Error
	return sums, err
}

// TotalReasonSum returns the sum over every reason in the year.
func (r *Repository) TotalReasonSum(ctx context.Context, year int) (float64, error) {
	var total *float64
	err := r.db.WithContext(ctx).
		Model(&models.FailedOrderReason{}).
		Select("SUM(value)").
		Where("year = ?", year).
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
