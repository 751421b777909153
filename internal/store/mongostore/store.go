// Package mongostore persists the message log in a MongoDB collection, one
// document per turn.
package mongostore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/store/clock"
)

// Config locates the collection.
type Config struct {
	URI        string
	Database   string
	Collection string
	Limit      int
}

// Store is a MongoDB backed message log.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	limit  int
	clock  *clock.Monotonic
	log    *slog.Logger
}

// document is the stored shape. _id is a driver generated ObjectID used only
// to break timestamp ties in insertion order.
type document struct {
	ObjectID  primitive.ObjectID `bson:"_id,omitempty"`
	ID        string             `bson:"id"`
	SessionID string             `bson:"session_id"`
	Role      string             `bson:"role"`
	Message   string             `bson:"message"`
	Timestamp time.Time          `bson:"timestamp"`
}

// Open connects, pings and ensures the session index.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, apperr.Storage("mongostore.open", fmt.Errorf("connect: %w", err))
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, apperr.Storage("mongostore.open", fmt.Errorf("ping: %w", err))
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, apperr.Storage("mongostore.open", fmt.Errorf("create index: %w", err))
	}

	log.Info("mongo store ready", "database", cfg.Database, "collection", cfg.Collection)
	return newStore(client, coll, cfg.Limit, log), nil
}

func newStore(client *mongo.Client, coll *mongo.Collection, limit int, log *slog.Logger) *Store {
	return &Store{
		client: client,
		coll:   coll,
		limit:  limit,
		clock:  clock.New(),
		log:    log,
	}
}

// findOptions sorts oldest first with _id breaking timestamp ties.
func findOptions(limit int) *options.FindOptions {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

// Append inserts one turn.
func (s *Store) Append(ctx context.Context, msg *chat.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	// BSON dates carry milliseconds; keep the caller's copy equal to what is stored.
	msg.Timestamp = s.clock.Stamp(msg.Timestamp).Truncate(time.Millisecond)

	doc := document{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		Role:      string(msg.Role),
		Message:   msg.Message,
		Timestamp: msg.Timestamp,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		s.log.Error("insert message failed", "session_id", msg.SessionID, "error", err)
		return apperr.Storage("mongostore.append", err)
	}
	return nil
}

// ListBySession returns the session turns oldest first.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]chat.Message, error) {
	cur, err := s.coll.Find(ctx, bson.M{"session_id": sessionID}, findOptions(s.limit))
	if err != nil {
		return nil, apperr.Storage("mongostore.list", err)
	}

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.Storage("mongostore.list", err)
	}

	out := make([]chat.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, chat.Message{
			ID:        d.ID,
			SessionID: d.SessionID,
			Role:      chat.Role(d.Role),
			Message:   d.Message,
			Timestamp: d.Timestamp.UTC(),
		})
	}
	return out, nil
}

// DeleteBySession removes every turn of the session.
func (s *Store) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return 0, apperr.Storage("mongostore.delete", err)
	}
	return res.DeletedCount, nil
}

// Remove deletes one turn.
func (s *Store) Remove(ctx context.Context, sessionID, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"session_id": sessionID, "id": id}); err != nil {
		return apperr.Storage("mongostore.remove", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return apperr.Storage("mongostore.close", err)
	}
	return nil
}
