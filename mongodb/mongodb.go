package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/jime0083/BatsuGaku/logger"
)

// Collection and database names.
var (
	UserCollection     = "users"
	StudyLogCollection = "studyLogs"
	StateCollection    = "oauthStates"
	BadgeCollection    = "badges"
	Database           = "batsugaku"
)

// Store wraps the Mongo client. It is constructed once at startup and
// passed to every component that persists anything.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and returns a ready Store.
func Connect(ctx context.Context, uri string) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(opts)
	if err != nil {
		logger.Get().Error("failed to connect to MongoDB", zap.Error(err))
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Get().Error("failed to ping MongoDB", zap.Error(err))
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}

	logger.Get().Info("successfully connected to MongoDB")
	return &Store{client: client, db: client.Database(Database)}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) {
	if err := s.client.Disconnect(ctx); err != nil {
		logger.Get().Error("failed to disconnect from MongoDB", zap.Error(err))
		return
	}
	logger.Get().Info("successfully disconnected from MongoDB")
}

func (s *Store) users() *mongo.Collection {
	return s.db.Collection(UserCollection)
}

func (s *Store) studyLogs() *mongo.Collection {
	return s.db.Collection(StudyLogCollection)
}

func (s *Store) states() *mongo.Collection {
	return s.db.Collection(StateCollection)
}

func (s *Store) badges() *mongo.Collection {
	return s.db.Collection(BadgeCollection)
}
