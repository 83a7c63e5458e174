package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jime0083/BatsuGaku/apperr"
	"github.com/jime0083/BatsuGaku/localdate"
	"github.com/jime0083/BatsuGaku/models"
)

func notFoundErr(userID string) error {
	return fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
}

func invalidStateErr(stateID string) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalidState, stateID)
}

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	mu     sync.Mutex
	users  map[string]*models.User
	states map[string]*models.OAuthState
	logs   map[string]*models.StudyLog

	recordCalls int

	githubAuths map[string]*models.GitHubAuth
	xAuths      map[string]*models.XAuth
	goals       map[string]*models.Goal
}

func newHandlerFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]*models.User),
		states:      make(map[string]*models.OAuthState),
		logs:        make(map[string]*models.StudyLog),
		githubAuths: make(map[string]*models.GitHubAuth),
		xAuths:      make(map[string]*models.XAuth),
		goals:       make(map[string]*models.Goal),
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.UserID]; ok {
		return nil
	}
	f.users[user.UserID] = user
	return nil
}

func (f *fakeStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, notFoundErr(userID)
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) SetGitHubAuth(ctx context.Context, userID string, auth *models.GitHubAuth) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return notFoundErr(userID)
	}
	user.GitHub = auth
	user.GitHubLinked = true
	f.githubAuths[userID] = auth
	return nil
}

func (f *fakeStore) SetXAuth(ctx context.Context, userID string, auth *models.XAuth) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return notFoundErr(userID)
	}
	user.X = auth
	user.XLinked = true
	f.xAuths[userID] = auth
	return nil
}

func (f *fakeStore) SetGoal(ctx context.Context, userID string, goal *models.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return notFoundErr(userID)
	}
	f.goals[userID] = goal
	f.users[userID].Goal = goal
	return nil
}

func (f *fakeStore) SetNotificationSettings(ctx context.Context, userID string, settings *models.NotificationSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return notFoundErr(userID)
	}
	user.Notifications = *settings
	return nil
}

func (f *fakeStore) SetStripeCustomer(ctx context.Context, userID, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.StripeCustomerID = customerID
	}
	return nil
}

func (f *fakeStore) SetSubscription(ctx context.Context, userID string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return notFoundErr(userID)
	}
	user.SubscriptionActive = active
	return nil
}

func (f *fakeStore) SetSubscriptionByCustomer(ctx context.Context, customerID string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.StripeCustomerID == customerID {
			user.SubscriptionActive = active
		}
	}
	return nil
}

func (f *fakeStore) CreateState(ctx context.Context, state *models.OAuthState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[state.ID] = state
	return nil
}

func (f *fakeStore) ConsumeState(ctx context.Context, stateID string) (*models.OAuthState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[stateID]
	if !ok {
		return nil, invalidStateErr(stateID)
	}
	delete(f.states, stateID)
	return state, nil
}

func (f *fakeStore) RecordPush(ctx context.Context, userID string, day localdate.Day, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordCalls++
	id := localdate.LogID(userID, day)
	if log, ok := f.logs[id]; ok {
		log.PushCount++
		return false, nil
	}
	first := now
	f.logs[id] = &models.StudyLog{
		ID:          id,
		UserID:      userID,
		Date:        day.Midnight(),
		Studied:     true,
		PushCount:   1,
		FirstPushAt: &first,
		CreatedAt:   now,
	}
	return true, nil
}

func (f *fakeStore) ListMonthLogs(ctx context.Context, userID string, year int, month time.Month) ([]models.StudyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var logs []models.StudyLog
	for _, log := range f.logs {
		if log.UserID == userID && log.Date.Year() == year && log.Date.Month() == month {
			logs = append(logs, *log)
		}
	}
	return logs, nil
}

// passthroughCipher avoids real key material in handler tests.
type passthroughCipher struct{}

func (passthroughCipher) Encrypt(plaintext string) (string, error) { return plaintext, nil }
func (passthroughCipher) Decrypt(blob string) (string, error)      { return blob, nil }

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) Send(ctx context.Context, token, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, token)
	return nil
}
