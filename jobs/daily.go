// Package jobs holds the scheduled batch work: the daily skip evaluation
// with its penalty post, and the pre-deadline warning notifications.
package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jime0083/BatsuGaku/badges"
	"github.com/jime0083/BatsuGaku/localdate"
	"github.com/jime0083/BatsuGaku/logger"
	"github.com/jime0083/BatsuGaku/models"
	"github.com/jime0083/BatsuGaku/notify"
	"github.com/jime0083/BatsuGaku/social"
)

// Store is the persistence surface the jobs need.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetStudyLog(ctx context.Context, logID string) (*models.StudyLog, error)
	ApplyDailyResult(ctx context.Context, userID string, stats models.Stats) error
	AwardBadge(ctx context.Context, badge *models.Badge) error
}

// Decrypter recovers a stored token from its encrypted blob.
type Decrypter interface {
	Decrypt(blob string) (string, error)
}

// Evaluator runs the per-user daily state machine. Users are independent:
// one user's failure is logged and never stops the batch.
type Evaluator struct {
	Store    Store
	Poster   social.Poster
	Cipher   Decrypter
	Notifier notify.Sender
	Zone     *time.Location
	Workers  int

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

func (e *Evaluator) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// RunDaily evaluates yesterday for every user: rolls up stats, awards newly
// reached badges, and posts the penalty for eligible users who did not
// study. Safe to re-invoke for the same day; already-evaluated users are
// skipped via the lastEvaluatedDate stamp.
func (e *Evaluator) RunDaily(ctx context.Context) error {
	now := e.now()
	yesterday := localdate.Yesterday(now, e.Zone)
	today := localdate.At(now, e.Zone)
	sameMonth := yesterday.Year == today.Year && yesterday.Month == today.Month

	users, err := e.Store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	pool := NewPool(e.Workers)
	pool.Start()
	for _, user := range users {
		user := user
		pool.Submit(func() error {
			return e.evaluateUser(ctx, &user, yesterday, sameMonth, now)
		})
	}
	processed, failed := pool.Wait()

	logger.Get().Info("daily evaluation finished",
		zap.String("day", yesterday.Key()),
		zap.Uint64("processed", processed),
		zap.Uint64("failed", failed))
	return nil
}

func (e *Evaluator) evaluateUser(ctx context.Context, user *models.User, day localdate.Day, sameMonth bool, now time.Time) error {
	if user.Stats.LastEvaluatedDate == day.Key() {
		logger.Get().Debug("user already evaluated for day",
			zap.String("user_id", user.UserID),
			zap.String("day", day.Key()))
		return nil
	}

	log, err := e.Store.GetStudyLog(ctx, localdate.LogID(user.UserID, day))
	if err != nil {
		return fmt.Errorf("get study log for user %s: %w", user.UserID, err)
	}
	// No record for the day means not studied, by construction.
	studied := log != nil && log.Studied

	newStats := rollup(user.Stats, studied, sameMonth, day.Key())
	if err := e.Store.ApplyDailyResult(ctx, user.UserID, newStats); err != nil {
		return fmt.Errorf("apply daily result for user %s: %w", user.UserID, err)
	}

	e.awardNewBadges(ctx, user.UserID, user.Stats, newStats, now)

	if studied || !eligibleForPenalty(user) {
		return nil
	}

	token, err := e.Cipher.Decrypt(user.X.AccessTokenEncrypted)
	if err != nil {
		return fmt.Errorf("decrypt x token for user %s: %w", user.UserID, err)
	}
	if err := e.Poster.Post(ctx, token, PenaltyMessage(user.Goal)); err != nil {
		return fmt.Errorf("penalty post for user %s: %w", user.UserID, err)
	}

	logger.Get().Info("penalty posted",
		zap.String("user_id", user.UserID),
		zap.String("day", day.Key()))
	return nil
}

// rollup applies one evaluated day to the aggregate counters. Month
// counters restart when the evaluated day belongs to the previous month.
func rollup(stats models.Stats, studied, sameMonth bool, dayKey string) models.Stats {
	if studied {
		stats.TotalStudyDays++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestStreak {
			stats.LongestStreak = stats.CurrentStreak
		}
		if sameMonth {
			stats.CurrentMonthStudyDays++
		} else {
			stats.CurrentMonthStudyDays = 0
			stats.CurrentMonthSkipDays = 0
		}
	} else {
		stats.TotalSkipDays++
		stats.CurrentStreak = 0
		if sameMonth {
			stats.CurrentMonthSkipDays++
		} else {
			stats.CurrentMonthStudyDays = 0
			stats.CurrentMonthSkipDays = 0
		}
	}
	stats.LastEvaluatedDate = dayKey
	return stats
}

func (e *Evaluator) awardNewBadges(ctx context.Context, userID string, before, after models.Stats, now time.Time) {
	had := make(map[string]bool)
	for _, def := range badges.Earned(before) {
		had[def.ID] = true
	}
	for _, def := range badges.Earned(after) {
		if had[def.ID] {
			continue
		}
		badge := &models.Badge{
			ID:         fmt.Sprintf("%s_%s_%d", userID, def.Type, def.Tier),
			UserID:     userID,
			BadgeType:  def.Type,
			BadgeTier:  def.Tier,
			AchievedAt: now,
		}
		if err := e.Store.AwardBadge(ctx, badge); err != nil {
			logger.Get().Error("failed to award badge",
				zap.String("user_id", userID),
				zap.String("badge_id", badge.ID),
				zap.Error(err))
		}
	}
}

// eligibleForPenalty gates the post on a fully set-up account: both links,
// an active subscription, a goal, and a decryptable X token.
func eligibleForPenalty(user *models.User) bool {
	return user.GitHubLinked &&
		user.XLinked &&
		user.SubscriptionActive &&
		user.HasGoal() &&
		user.X != nil &&
		user.X.AccessTokenEncrypted != ""
}

// PenaltyMessage renders the public skip post from the user's goal.
func PenaltyMessage(goal *models.Goal) string {
	label := "月収"
	if goal.IncomeType == models.IncomeYearly {
		label = "年収"
	}
	return fmt.Sprintf("今日は学習をサボってしまいました。%sを身につけて%s%d万円を目指すと宣言したのに…。明日は必ずやります。 #バツガク", goal.Skill, label, goal.TargetIncome)
}
