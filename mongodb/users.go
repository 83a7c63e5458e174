package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jime0083/BatsuGaku/apperr"
	"github.com/jime0083/BatsuGaku/models"
)

// CreateUser inserts a fresh user document. Re-registering an existing id
// is a no-op so installation retries stay idempotent.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.users().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("error creating user %s: %w", user.UserID, err)
	}
	return nil
}

// GetUser fetches one user by id.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("error getting user %s: %w", userID, err)
	}
	return &user, nil
}

// ListUsers returns every user document. The user base is iterated in full
// by the scheduled jobs.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("error decoding users: %w", err)
	}
	return users, nil
}

// SetGitHubAuth merges the GitHub link sub-record into the user and raises
// the link flag in the same write, so the flag can never be true without a
// completed exchange.
func (s *Store) SetGitHubAuth(ctx context.Context, userID string, auth *models.GitHubAuth) error {
	update := bson.M{"$set": bson.M{
		"github":       auth,
		"githubLinked": true,
		"updatedAt":    time.Now(),
	}}
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("error linking github for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}
	return nil
}

// SetXAuth merges the X link sub-record into the user, same contract as
// SetGitHubAuth.
func (s *Store) SetXAuth(ctx context.Context, userID string, auth *models.XAuth) error {
	update := bson.M{"$set": bson.M{
		"x":         auth,
		"xLinked":   true,
		"updatedAt": time.Now(),
	}}
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("error linking x for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}
	return nil
}

// SetGoal replaces the user's goal sub-record.
func (s *Store) SetGoal(ctx context.Context, userID string, goal *models.Goal) error {
	update := bson.M{"$set": bson.M{
		"goal":      goal,
		"updatedAt": time.Now(),
	}}
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("error setting goal for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}
	return nil
}

// SetNotificationSettings replaces the user's notification preferences.
func (s *Store) SetNotificationSettings(ctx context.Context, userID string, settings *models.NotificationSettings) error {
	update := bson.M{"$set": bson.M{
		"notificationSettings": settings,
		"updatedAt":            time.Now(),
	}}
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("error setting notification settings for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}
	return nil
}

// SetStripeCustomer records the Stripe customer id after checkout starts.
func (s *Store) SetStripeCustomer(ctx context.Context, userID, customerID string) error {
	update := bson.M{"$set": bson.M{
		"stripeCustomerId": customerID,
		"updatedAt":        time.Now(),
	}}
	_, err := s.users().UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("error setting stripe customer for user %s: %w", userID, err)
	}
	return nil
}

// SetSubscription flips the subscription flag for one user.
func (s *Store) SetSubscription(ctx context.Context, userID string, active bool) error {
	update := bson.M{"$set": bson.M{
		"subscriptionActive": active,
		"updatedAt":          time.Now(),
	}}
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("error updating subscription for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}
	return nil
}

// SetSubscriptionByCustomer flips the subscription flag for the user owning
// a Stripe customer id. Unknown customers are ignored; Stripe retries
// webhooks and test events reference customers we never created.
func (s *Store) SetSubscriptionByCustomer(ctx context.Context, customerID string, active bool) error {
	update := bson.M{"$set": bson.M{
		"subscriptionActive": active,
		"updatedAt":          time.Now(),
	}}
	_, err := s.users().UpdateOne(ctx, bson.M{"stripeCustomerId": customerID}, update)
	if err != nil {
		return fmt.Errorf("error updating subscription for customer %s: %w", customerID, err)
	}
	return nil
}

// ApplyDailyResult writes the rolled-up stats for one evaluated day.
func (s *Store) ApplyDailyResult(ctx context.Context, userID string, stats models.Stats) error {
	update := bson.M{"$set": bson.M{
		"stats":     stats,
		"updatedAt": time.Now(),
	}}
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("error applying daily result for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}
	return nil
}
