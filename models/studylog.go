package models

import "time"

// StudyLog is one document per user per local calendar day, keyed
// {userId}_{YYYYMMDD}. The deterministic id is what makes webhook delivery
// idempotent: retries and duplicates converge on the same document.
type StudyLog struct {
	ID          string     `bson:"_id" json:"id"`
	UserID      string     `bson:"userId" json:"user_id"`
	Date        time.Time  `bson:"date" json:"date"` // midnight of the local day
	Studied     bool       `bson:"studied" json:"studied"`
	PushCount   int        `bson:"pushCount" json:"push_count"`
	FirstPushAt *time.Time `bson:"firstPushAt" json:"first_push_at"` // set once, never overwritten
	CreatedAt   time.Time  `bson:"createdAt" json:"created_at"`
}
