package models

import "time"

// Income types accepted on a goal.
const (
	IncomeMonthly = "monthly"
	IncomeYearly  = "yearly"
)

// GitHubAuth is the per-provider link sub-record for GitHub. Token and
// webhook secret are stored encrypted only.
type GitHubAuth struct {
	ID                     string `bson:"id" json:"id"`
	Username               string `bson:"username" json:"username"`
	AccessTokenEncrypted   string `bson:"accessTokenEncrypted" json:"-"`
	WebhookSecretEncrypted string `bson:"webhookSecretEncrypted,omitempty" json:"-"`
	WebhookURL             string `bson:"webhookUrl,omitempty" json:"-"`
}

// XAuth is the per-provider link sub-record for X.
type XAuth struct {
	ID                   string `bson:"id" json:"id"`
	Username             string `bson:"username" json:"username"`
	AccessTokenEncrypted string `bson:"accessTokenEncrypted" json:"-"`
}

// Goal is what the user committed to; the penalty post is rendered from it.
type Goal struct {
	TargetIncome int64     `bson:"targetIncome" json:"target_income"`
	IncomeType   string    `bson:"incomeType" json:"income_type"`
	Skill        string    `bson:"skill" json:"skill"`
	SetAt        time.Time `bson:"setAt" json:"set_at"`
}

// Stats are the aggregate study counters rolled up by the daily job.
type Stats struct {
	CurrentMonthStudyDays int        `bson:"currentMonthStudyDays" json:"current_month_study_days"`
	CurrentMonthSkipDays  int        `bson:"currentMonthSkipDays" json:"current_month_skip_days"`
	TotalStudyDays        int        `bson:"totalStudyDays" json:"total_study_days"`
	TotalSkipDays         int        `bson:"totalSkipDays" json:"total_skip_days"`
	CurrentStreak         int        `bson:"currentStreak" json:"current_streak"`
	LongestStreak         int        `bson:"longestStreak" json:"longest_streak"`
	LastStudyDate         *time.Time `bson:"lastStudyDate" json:"last_study_date"`

	// Day key (YYYYMMDD) of the last day the daily evaluator processed for
	// this user. Guards against double rollup and double posting when the
	// scheduled trigger is re-delivered.
	LastEvaluatedDate string `bson:"lastEvaluatedDate,omitempty" json:"-"`
}

// NotificationSettings hold the push token and opt-in flags.
type NotificationSettings struct {
	StudyCompleted bool   `bson:"studyCompleted" json:"study_completed"`
	SkipWarning    bool   `bson:"skipWarning" json:"skip_warning"`
	PushToken      string `bson:"pushToken,omitempty" json:"push_token,omitempty"`
}

// User is one document per installation/account. The link flags are set
// only together with their sub-record, inside the same update.
type User struct {
	UserID             string               `bson:"_id" json:"user_id"`
	GitHub             *GitHubAuth          `bson:"github,omitempty" json:"github,omitempty"`
	X                  *XAuth               `bson:"x,omitempty" json:"x,omitempty"`
	GitHubLinked       bool                 `bson:"githubLinked" json:"github_linked"`
	XLinked            bool                 `bson:"xLinked" json:"x_linked"`
	SubscriptionActive bool                 `bson:"subscriptionActive" json:"subscription_active"`
	StripeCustomerID   string               `bson:"stripeCustomerId,omitempty" json:"-"`
	Goal               *Goal                `bson:"goal,omitempty" json:"goal,omitempty"`
	Stats              Stats                `bson:"stats" json:"stats"`
	Notifications      NotificationSettings `bson:"notificationSettings" json:"notification_settings"`
	CreatedAt          time.Time            `bson:"createdAt" json:"created_at"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updated_at"`
}

// HasGoal reports whether a usable goal is set.
func (u *User) HasGoal() bool {
	return u.Goal != nil && u.Goal.Skill != "" && u.Goal.TargetIncome > 0
}
