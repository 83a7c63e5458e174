package models

import "time"

// Badge records a tier a user has reached, keyed {userId}_{type}_{tier} so
// re-awarding is a no-op duplicate insert.
type Badge struct {
	ID         string    `bson:"_id" json:"id"`
	UserID     string    `bson:"userId" json:"user_id"`
	BadgeType  string    `bson:"badgeType" json:"badge_type"`
	BadgeTier  int       `bson:"badgeTier" json:"badge_tier"`
	AchievedAt time.Time `bson:"achievedAt" json:"achieved_at"`
}
