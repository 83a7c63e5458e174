package badges

import (
	"testing"

	"github.com/jime0083/BatsuGaku/models"
)

func earnedIDs(stats models.Stats) map[string]bool {
	ids := make(map[string]bool)
	for _, def := range Earned(stats) {
		ids[def.ID] = true
	}
	return ids
}

func TestEarnedTopTiers(t *testing.T) {
	stats := models.Stats{
		LongestStreak:  100,
		TotalStudyDays: 365,
		TotalSkipDays:  50,
	}

	ids := earnedIDs(stats)
	for _, want := range []string{"streak-100", "total-365", "skip-50"} {
		if !ids[want] {
			t.Errorf("expected %s to be earned", want)
		}
	}
	// Every tier at or below the stats must be present.
	if len(ids) != len(Definitions) {
		t.Errorf("expected all %d definitions earned, got %d", len(Definitions), len(ids))
	}
}

func TestEarnedRespectsThresholds(t *testing.T) {
	stats := models.Stats{
		LongestStreak:  13, // one short of streak-14
		TotalStudyDays: 30,
		TotalSkipDays:  9,
	}

	ids := earnedIDs(stats)
	for _, want := range []string{"streak-3", "streak-7", "total-10", "total-30"} {
		if !ids[want] {
			t.Errorf("expected %s to be earned", want)
		}
	}
	for _, unwanted := range []string{"streak-14", "total-50", "skip-10"} {
		if ids[unwanted] {
			t.Errorf("did not expect %s to be earned", unwanted)
		}
	}
}

func TestEarnedEmptyStats(t *testing.T) {
	if got := Earned(models.Stats{}); len(got) != 0 {
		t.Errorf("zero stats earned %d badges", len(got))
	}
}
