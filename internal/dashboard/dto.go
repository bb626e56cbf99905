package dashboard

import (
	"time"

	"github.com/nilecommerce/admin-service/pkg/timebucket"
)

// RecordStatRequest is the PUT /dashboard/stats payload. Value is a pointer
// so an omitted field can default to 1 while an explicit 0 stays 0.
type RecordStatRequest struct {
	MetricType string    `json:"metricType" validate:"required"`
	CreatedAt  time.Time `json:"createdAt" validate:"required"`
	Value      *float64  `json:"value"`
}

// RecordReasonRequest is the PUT /dashboard/failed-order-reasons payload.
type RecordReasonRequest struct {
	Reason    string    `json:"reason" validate:"required"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	Value     *float64  `json:"value"`
}

// StatDTO projects a stored counter row.
type StatDTO struct {
	MetricType string  `json:"metricType"`
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	Week       int     `json:"week"`
	Value      float64 `json:"value"`
}

// ReasonDTO projects a stored failure-reason row.
type ReasonDTO struct {
	Reason string  `json:"reason"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Week   int     `json:"week"`
	Value  float64 `json:"value"`
}

// WeekSnapshot bundles one ISO week's rows.
type WeekSnapshot struct {
	Bucket        timebucket.Bucket `json:"bucket"`
	Orders        []StatDTO         `json:"orders"`
	FailedReasons []ReasonDTO       `json:"failedReasons"`
}

// WeeklySummary is the GET /dashboard/stats response.
type WeeklySummary struct {
	CurrentWeek  WeekSnapshot `json:"currentWeek"`
	PreviousWeek WeekSnapshot `json:"previousWeek"`
	ActiveStores int          `json:"activeStores"`
}

// MonthTrend is one month's order volume within a year.
type MonthTrend struct {
	Month int     `json:"month"`
	Value float64 `json:"value"`
}

// ReasonSlice is one wedge of the failure-breakdown pie.
type ReasonSlice struct {
	Reason string  `json:"reason"`
	Value  float64 `json:"value"`
}
