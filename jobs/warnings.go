package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jime0083/BatsuGaku/localdate"
	"github.com/jime0083/BatsuGaku/logger"
)

// Warning kinds, matching the two pre-deadline trigger times.
const (
	WarningFirst = "first" // 23:00 local
	WarningLast  = "last"  // 23:30 local
)

const warningTitle = "学習リマインド"

var warningBodies = map[string]string{
	WarningFirst: "今日はまだ学習していないようです。0:00 にサボり投稿がされます。",
	WarningLast:  "残り30分！0:00になるとXにサボり投稿されます。",
}

// RunWarning pushes a skip-warning reminder to opted-in users who have not
// studied today. A user who already pushed is never nudged, even if the
// trigger fires late.
func (e *Evaluator) RunWarning(ctx context.Context, kind string) error {
	body, ok := warningBodies[kind]
	if !ok {
		return fmt.Errorf("unknown warning kind %q", kind)
	}

	now := e.now()
	today := localdate.At(now, e.Zone)

	users, err := e.Store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	pool := NewPool(e.Workers)
	pool.Start()
	for _, user := range users {
		user := user
		pool.Submit(func() error {
			if !user.Notifications.SkipWarning || user.Notifications.PushToken == "" {
				return nil
			}

			log, err := e.Store.GetStudyLog(ctx, localdate.LogID(user.UserID, today))
			if err != nil {
				return fmt.Errorf("get study log for user %s: %w", user.UserID, err)
			}
			if log != nil && log.Studied {
				return nil
			}

			if err := e.Notifier.Send(ctx, user.Notifications.PushToken, warningTitle, body); err != nil {
				return fmt.Errorf("send warning to user %s: %w", user.UserID, err)
			}
			return nil
		})
	}
	processed, failed := pool.Wait()

	logger.Get().Info("warning notifications finished",
		zap.String("kind", kind),
		zap.String("day", today.Key()),
		zap.Uint64("processed", processed),
		zap.Uint64("failed", failed))
	return nil
}
