// Package store defines the durable, session-scoped message log and opens the
// configured driver.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zhouzirui/legal-chat/backend/internal/config"
	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/store/badgerstore"
	"github.com/zhouzirui/legal-chat/backend/internal/store/memstore"
	"github.com/zhouzirui/legal-chat/backend/internal/store/mongostore"
	"github.com/zhouzirui/legal-chat/backend/internal/store/redisstore"
	"github.com/zhouzirui/legal-chat/backend/internal/store/sqlstore"
)

// MessageStore is an append-only log of chat turns grouped by session id.
//
// Append fills in ID and Timestamp when they are empty. ListBySession returns
// turns in ascending timestamp order, capped at the configured history limit,
// and an empty slice for unknown sessions. DeleteBySession is idempotent and
// reports how many turns were removed. Every failure is an apperr storage error.
type MessageStore interface {
	Append(ctx context.Context, msg *chat.Message) error
	ListBySession(ctx context.Context, sessionID string) ([]chat.Message, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
	// Remove deletes a single turn. Removing a missing turn is not an error.
	Remove(ctx context.Context, sessionID, id string) error
	Close(ctx context.Context) error
}

// Open connects the driver selected in cfg.
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (MessageStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log = log.With("store", cfg.Driver)

	switch cfg.Driver {
	case config.DriverMongo:
		return mongostore.Open(ctx, mongostore.Config{
			URI:        cfg.MongoURL,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			Limit:      cfg.HistoryLimit,
		}, log)
	case config.DriverSQLite:
		return sqlstore.Open(cfg.SQLiteDSN, cfg.HistoryLimit, log)
	case config.DriverBadger:
		return badgerstore.Open(cfg.BadgerPath, cfg.HistoryLimit, log)
	case config.DriverRedis:
		return redisstore.Open(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Limit:    cfg.HistoryLimit,
		}, log)
	case config.DriverMemory:
		return memstore.New(cfg.HistoryLimit), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
