// Package redisstore keeps each session as a Redis list of JSON encoded turns.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/store/clock"
)

const sessionKeyPrefix = "chat:session:"

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	Limit    int
}

// Store appends turns with RPUSH. Stamping and pushing happen under one lock so
// list order matches timestamp order for appends from this process.
type Store struct {
	mu     sync.Mutex
	client *redis.Client
	limit  int
	clock  *clock.Monotonic
	log    *slog.Logger
}

// Open connects and pings the server.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperr.Storage("redisstore.open", fmt.Errorf("ping %s: %w", cfg.Addr, err))
	}

	log.Info("redis store ready", "addr", cfg.Addr, "db", cfg.DB)
	return New(client, cfg.Limit, log), nil
}

// New wraps an existing client.
func New(client *redis.Client, limit int, log *slog.Logger) *Store {
	return &Store{client: client, limit: limit, clock: clock.New(), log: log}
}

func key(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Append pushes one turn onto the session list.
func (s *Store) Append(ctx context.Context, msg *chat.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg.Timestamp = s.clock.Stamp(msg.Timestamp)

	val, err := json.Marshal(msg)
	if err != nil {
		return apperr.Storage("redisstore.append", err)
	}

	if err := s.client.RPush(ctx, key(msg.SessionID), val).Err(); err != nil {
		s.log.Error("rpush failed", "session_id", msg.SessionID, "error", err)
		return apperr.Storage("redisstore.append", err)
	}
	return nil
}

// ListBySession returns the oldest turns first, at most limit of them.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]chat.Message, error) {
	stop := int64(-1)
	if s.limit > 0 {
		stop = int64(s.limit) - 1
	}

	raw, err := s.client.LRange(ctx, key(sessionID), 0, stop).Result()
	if err != nil {
		return nil, apperr.Storage("redisstore.list", err)
	}

	out := make([]chat.Message, 0, len(raw))
	for _, val := range raw {
		var m chat.Message
		if err := json.Unmarshal([]byte(val), &m); err != nil {
			return nil, apperr.Storage("redisstore.list", err)
		}
		out = append(out, m)
	}
	// Other instances push with their own clocks.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// DeleteBySession drops the list and reports how many turns it held.
func (s *Store) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	k := key(sessionID)

	var length *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		length = pipe.LLen(ctx, k)
		pipe.Del(ctx, k)
		return nil
	})
	if err != nil {
		return 0, apperr.Storage("redisstore.delete", err)
	}
	return length.Val(), nil
}

// Remove deletes the turn with the given id.
func (s *Store) Remove(ctx context.Context, sessionID, id string) error {
	k := key(sessionID)

	raw, err := s.client.LRange(ctx, k, 0, -1).Result()
	if err != nil {
		return apperr.Storage("redisstore.remove", err)
	}

	for _, val := range raw {
		var m chat.Message
		if err := json.Unmarshal([]byte(val), &m); err != nil {
			continue
		}
		if m.ID != id {
			continue
		}
		if err := s.client.LRem(ctx, k, 1, val).Err(); err != nil {
			return apperr.Storage("redisstore.remove", err)
		}
		return nil
	}
	return nil
}

// Close closes the client.
func (s *Store) Close(context.Context) error {
	if err := s.client.Close(); err != nil {
		return apperr.Storage("redisstore.close", err)
	}
	return nil
}
