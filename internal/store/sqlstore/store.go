// Package sqlstore persists the message log in SQLite through gorm.
package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/store/clock"
)

// record is the chat_messages row. Seq breaks timestamp ties in insertion order.
type record struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement"`
	ID        string    `gorm:"size:36;uniqueIndex"`
	SessionID string    `gorm:"not null;index:idx_session_timestamp,priority:1"`
	Role      string    `gorm:"size:16;not null"`
	Message   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"not null;index:idx_session_timestamp,priority:2"`
}

func (record) TableName() string {
	return "chat_messages"
}

// Store is a gorm backed message log.
type Store struct {
	db    *gorm.DB
	limit int
	clock *clock.Monotonic
	log   *slog.Logger
}

// Open opens (creating if needed) the SQLite database at dsn and migrates the
// schema. dsn "memory" selects a shared in-memory database.
func Open(dsn string, limit int, log *slog.Logger) (*Store, error) {
	if dsn == "memory" || dsn == "" {
		dsn = "file::memory:?cache=shared"
		log.Info("using in-memory sqlite database")
	} else if !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." && dir != "/" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, apperr.Storage("sqlstore.open", fmt.Errorf("create database directory %q: %w", dir, err))
			}
		}
	}

	gormLogger := logger.New(slogWriter{log: log}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, apperr.Storage("sqlstore.open", fmt.Errorf("connect %q: %w", dsn, err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperr.Storage("sqlstore.open", err)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&record{}); err != nil {
		_ = sqlDB.Close()
		return nil, apperr.Storage("sqlstore.open", fmt.Errorf("migrate: %w", err))
	}

	log.Info("sqlite store ready", "dsn", dsn)
	return &Store{db: db, limit: limit, clock: clock.New(), log: log}, nil
}

// Append inserts one turn.
func (s *Store) Append(ctx context.Context, msg *chat.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Timestamp = s.clock.Stamp(msg.Timestamp)

	row := record{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		Role:      string(msg.Role),
		Message:   msg.Message,
		Timestamp: msg.Timestamp,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Error("insert message failed", "session_id", msg.SessionID, "error", err)
		return apperr.Storage("sqlstore.append", err)
	}
	return nil
}

// ListBySession returns the session turns oldest first.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]chat.Message, error) {
	var rows []record
	q := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp asc").
		Order("seq asc")
	if s.limit > 0 {
		q = q.Limit(s.limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.Storage("sqlstore.list", err)
	}

	out := make([]chat.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, chat.Message{
			ID:        r.ID,
			SessionID: r.SessionID,
			Role:      chat.Role(r.Role),
			Message:   r.Message,
			Timestamp: r.Timestamp.UTC(),
		})
	}
	return out, nil
}

// DeleteBySession removes every turn of the session.
func (s *Store) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	res := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&record{})
	if res.Error != nil {
		return 0, apperr.Storage("sqlstore.delete", res.Error)
	}
	return res.RowsAffected, nil
}

// Remove deletes one turn.
func (s *Store) Remove(ctx context.Context, sessionID, id string) error {
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionID, id).
		Delete(&record{}).Error
	if err != nil {
		return apperr.Storage("sqlstore.remove", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperr.Storage("sqlstore.close", err)
	}
	if err := sqlDB.Close(); err != nil {
		return apperr.Storage("sqlstore.close", err)
	}
	return nil
}

// slogWriter routes gorm's logger into slog.
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}
