package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jime0083/BatsuGaku/localdate"
	"github.com/jime0083/BatsuGaku/models"
)

// RecordPush applies one verified push event for the given local day. The
// studyLog upsert and the user's lastStudyDate update commit in a single
// transaction. The upsert is keyed on the deterministic log id, so any
// number of concurrent or duplicate deliveries converge on one document
// with pushCount equal to the delivery count; firstPushAt is written only
// on insert and never overwritten. Returns whether this call created the
// day's log (i.e. it was the first push of the day).
func (s *Store) RecordPush(ctx context.Context, userID string, day localdate.Day, now time.Time) (bool, error) {
	logID := localdate.LogID(userID, day)
	midnight := day.Midnight()

	session, err := s.client.StartSession()
	if err != nil {
		return false, fmt.Errorf("error starting session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		update := bson.M{
			"$inc": bson.M{"pushCount": 1},
			"$set": bson.M{"studied": true},
			"$setOnInsert": bson.M{
				"userId":      userID,
				"date":        midnight,
				"firstPushAt": now,
				"createdAt":   now,
			},
		}
		res, err := s.studyLogs().UpdateOne(ctx, bson.M{"_id": logID}, update, options.UpdateOne().SetUpsert(true))
		if err != nil {
			return nil, fmt.Errorf("error upserting study log %s: %w", logID, err)
		}

		userUpdate := bson.M{"$set": bson.M{
			"stats.lastStudyDate": midnight,
			"updatedAt":           now,
		}}
		if _, err := s.users().UpdateOne(ctx, bson.M{"_id": userID}, userUpdate); err != nil {
			return nil, fmt.Errorf("error updating last study date for user %s: %w", userID, err)
		}

		return res.UpsertedCount > 0, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// GetStudyLog fetches one log by its deterministic id. Absence is not an
// error: a missing log means "not studied" for that day.
func (s *Store) GetStudyLog(ctx context.Context, logID string) (*models.StudyLog, error) {
	var log models.StudyLog
	err := s.studyLogs().FindOne(ctx, bson.M{"_id": logID}).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting study log %s: %w", logID, err)
	}
	return &log, nil
}

// ListMonthLogs returns the user's logs whose date falls inside the given
// month.
func (s *Store) ListMonthLogs(ctx context.Context, userID string, year int, month time.Month) ([]models.StudyLog, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	filter := bson.M{
		"userId": userID,
		"date":   bson.M{"$gte": from, "$lt": to},
	}
	cursor, err := s.studyLogs().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing study logs for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var logs []models.StudyLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("error decoding study logs: %w", err)
	}
	return logs, nil
}
