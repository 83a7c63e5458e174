// Package localdate derives calendar-day keys from instants in the
// configured time zone. The webhook handler and the scheduled jobs both go
// through At/Yesterday, so the two can never disagree about which day an
// event belongs to.
package localdate

import (
	"fmt"
	"time"
)

// Day is a calendar day in the configured zone.
type Day struct {
	Year  int
	Month time.Month
	Date  int
}

// At returns the local calendar day containing t.
func At(t time.Time, loc *time.Location) Day {
	local := t.In(loc)
	return Day{Year: local.Year(), Month: local.Month(), Date: local.Day()}
}

// Yesterday returns the local calendar day before the one containing t.
func Yesterday(t time.Time, loc *time.Location) Day {
	return At(t.In(loc).AddDate(0, 0, -1), loc)
}

// Key renders the 8-digit YYYYMMDD form used in studyLogs document ids.
func (d Day) Key() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Date)
}

// Midnight returns the day's 00:00 UTC timestamp, the representation stored
// on StudyLog.Date and Stats.LastStudyDate.
func (d Day) Midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, time.UTC)
}

// LogID builds the deterministic studyLogs document id for a user and day.
func LogID(userID string, d Day) string {
	return userID + "_" + d.Key()
}
