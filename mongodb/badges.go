package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jime0083/BatsuGaku/models"
)

// AwardBadge inserts a badge document. The deterministic id makes repeated
// awards for the same tier a silent no-op.
func (s *Store) AwardBadge(ctx context.Context, badge *models.Badge) error {
	if _, err := s.badges().InsertOne(ctx, badge); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("error awarding badge %s: %w", badge.ID, err)
	}
	return nil
}
