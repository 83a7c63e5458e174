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

// CreateState persists a freshly issued OAuth state. The id comes from the
// caller's generator; uniqueness is its guarantee.
func (s *Store) CreateState(ctx context.Context, state *models.OAuthState) error {
	if _, err := s.states().InsertOne(ctx, state); err != nil {
		return fmt.Errorf("error creating oauth state: %w", err)
	}
	return nil
}

// ConsumeState looks up and deletes a state in one atomic operation.
// Deletion is unconditional: an expired state is removed first and then
// rejected, so a replay after any consume always sees "absent" and fails
// with ErrInvalidState, never ErrStateExpired.
func (s *Store) ConsumeState(ctx context.Context, stateID string) (*models.OAuthState, error) {
	var state models.OAuthState
	err := s.states().FindOneAndDelete(ctx, bson.M{"_id": stateID}).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrInvalidState, stateID)
		}
		return nil, fmt.Errorf("error consuming oauth state %s: %w", stateID, err)
	}

	if time.Now().After(state.ExpiresAt) {
		return nil, fmt.Errorf("%w: expired at %s", apperr.ErrStateExpired, state.ExpiresAt.Format(time.RFC3339))
	}
	return &state, nil
}
