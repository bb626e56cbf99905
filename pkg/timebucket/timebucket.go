// Package timebucket maps timestamps onto the (year, month, ISO week)
// coordinates the dashboard counters are keyed by.
package timebucket

import (
	"strings"
	"time"

	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
)

// Bucket is a dashboard counter grouping key. Year and Month follow the
// calendar date; Week is the ISO-8601 week number, which near year
// boundaries can belong to a different year than Year does.
type Bucket struct {
	Year  int
	Month int
	Week  int
}

// Compute derives the bucket for the given timestamp. Pure and total for
// any valid time.Time.
func Compute(t time.Time) Bucket {
	_, week := t.ISOWeek()
	return Bucket{
		Year:  t.Year(),
		Month: int(t.Month()),
		Week:  week,
	}
}

// Parse validates an RFC 3339 timestamp and returns its bucket.
func Parse(raw string) (Bucket, time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Bucket{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "timestamp is required")
	}
	t, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return Bucket{}, time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid timestamp")
	}
	return Compute(t), t, nil
}
