// Package handlers wires the HTTP surface: OAuth linking, webhook ingest,
// the mobile-client API, billing, and the scheduled-trigger endpoints.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jime0083/BatsuGaku/jobs"
	"github.com/jime0083/BatsuGaku/localdate"
	"github.com/jime0083/BatsuGaku/middleware"
	"github.com/jime0083/BatsuGaku/models"
	"github.com/jime0083/BatsuGaku/notify"
	"github.com/jime0083/BatsuGaku/oauth"
)

// Store is the persistence surface the handlers need; *mongodb.Store
// satisfies it.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	SetGitHubAuth(ctx context.Context, userID string, auth *models.GitHubAuth) error
	SetXAuth(ctx context.Context, userID string, auth *models.XAuth) error
	SetGoal(ctx context.Context, userID string, goal *models.Goal) error
	SetNotificationSettings(ctx context.Context, userID string, settings *models.NotificationSettings) error
	SetStripeCustomer(ctx context.Context, userID, customerID string) error
	SetSubscription(ctx context.Context, userID string, active bool) error
	SetSubscriptionByCustomer(ctx context.Context, customerID string, active bool) error
	CreateState(ctx context.Context, state *models.OAuthState) error
	ConsumeState(ctx context.Context, stateID string) (*models.OAuthState, error)
	RecordPush(ctx context.Context, userID string, day localdate.Day, now time.Time) (bool, error)
	ListMonthLogs(ctx context.Context, userID string, year int, month time.Month) ([]models.StudyLog, error)
}

// Cipher encrypts and decrypts persisted third-party credentials.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) (string, error)
}

// Handler carries the handlers' dependencies, constructed once in main.
type Handler struct {
	Store     Store
	Cipher    Cipher
	GitHub    *oauth.GitHubProvider
	X         *oauth.XProvider
	Notifier  notify.Sender
	Evaluator *jobs.Evaluator
	Zone      *time.Location

	StripePriceID      string
	CheckoutSuccessURL string
	CheckoutCancelURL  string

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func authedUserID(c *gin.Context) string {
	v, _ := c.Get(middleware.UserIDKey)
	id, _ := v.(string)
	return id
}
