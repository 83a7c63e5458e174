// Package calendar builds the month view the mobile client renders.
package calendar

import (
	"fmt"
	"time"
)

// Day statuses.
const (
	StatusStudy  = "study"
	StatusSkip   = "skip"
	StatusFuture = "future"
)

// Day is one cell of the month view.
type Day struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Status string `json:"status"`
}

// BuildMonth lays out every day of the given month. Days after today are
// "future"; past days without a studied log are "skip" by construction.
// studied is keyed by YYYY-MM-DD.
func BuildMonth(year int, month time.Month, studied map[string]bool, today time.Time) []Day {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	days := make([]Day, 0, lastDay)
	for d := 1; d <= lastDay; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		dateStr := fmt.Sprintf("%04d-%02d-%02d", year, int(month), d)

		status := StatusSkip
		if date.After(today) {
			status = StatusFuture
		} else if studied[dateStr] {
			status = StatusStudy
		}
		days = append(days, Day{Date: dateStr, Status: status})
	}
	return days
}
