// Package badgerstore persists the message log in an embedded BadgerDB.
package badgerstore

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/store/clock"
)

// Store is a badger backed message log.
//
// Keys are "msg:{hex(session_id)}:{unix_nano padded to 19 digits}:{id}" so a
// prefix scan walks one session in chronological order. The session id is hex
// encoded so that ids containing ':' cannot overlap another session's prefix.
type Store struct {
	db    *badger.DB
	limit int
	clock *clock.Monotonic
	log   *slog.Logger
}

// Open opens the database in dir. dir "memory" keeps everything in RAM.
func Open(dir string, limit int, log *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	if dir == "memory" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, apperr.Storage("badgerstore.open", err)
	}

	log.Info("badger store ready", "path", dir)
	return &Store{db: db, limit: limit, clock: clock.New(), log: log}, nil
}

func sessionPrefix(sessionID string) []byte {
	return []byte("msg:" + hex.EncodeToString([]byte(sessionID)) + ":")
}

func messageKey(msg *chat.Message) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", sessionPrefix(msg.SessionID), msg.Timestamp.UnixNano(), msg.ID))
}

// Append writes one turn.
func (s *Store) Append(_ context.Context, msg *chat.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Timestamp = s.clock.Stamp(msg.Timestamp)

	value, err := json.Marshal(msg)
	if err != nil {
		return apperr.Storage("badgerstore.append", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(msg), value)
	})
	if err != nil {
		s.log.Error("write message failed", "session_id", msg.SessionID, "error", err)
		return apperr.Storage("badgerstore.append", err)
	}
	return nil
}

// ListBySession returns the session turns oldest first.
func (s *Store) ListBySession(_ context.Context, sessionID string) ([]chat.Message, error) {
	out := make([]chat.Message, 0)
	prefix := sessionPrefix(sessionID)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if s.limit > 0 && len(out) == s.limit {
				s.log.Debug("history limit reached", "session_id", sessionID, "limit", s.limit)
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var m chat.Message
				if err := json.Unmarshal(value, &m); err != nil {
					return err
				}
				out = append(out, m)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage("badgerstore.list", err)
	}
	return out, nil
}

// DeleteBySession removes every turn of the session.
func (s *Store) DeleteBySession(_ context.Context, sessionID string) (int64, error) {
	keys, err := s.keys(sessionPrefix(sessionID), func([]byte) bool { return true })
	if err != nil {
		return 0, apperr.Storage("badgerstore.delete", err)
	}
	if err := s.deleteKeys(keys); err != nil {
		return 0, apperr.Storage("badgerstore.delete", err)
	}
	return int64(len(keys)), nil
}

// Remove deletes one turn.
func (s *Store) Remove(_ context.Context, sessionID, id string) error {
	suffix := ":" + id
	keys, err := s.keys(sessionPrefix(sessionID), func(k []byte) bool {
		return strings.HasSuffix(string(k), suffix)
	})
	if err != nil {
		return apperr.Storage("badgerstore.remove", err)
	}
	if err := s.deleteKeys(keys); err != nil {
		return apperr.Storage("badgerstore.remove", err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close(context.Context) error {
	if err := s.db.Close(); err != nil {
		return apperr.Storage("badgerstore.close", err)
	}
	return nil
}

func (s *Store) keys(prefix []byte, match func([]byte) bool) ([][]byte, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			if match(k) {
				keys = append(keys, k)
			}
		}
		return nil
	})
	return keys, err
}

// deleteKeys removes keys, committing early whenever a transaction fills up.
func (s *Store) deleteKeys(keys [][]byte) error {
	txn := s.db.NewTransaction(true)
	defer func() { txn.Discard() }()

	for _, k := range keys {
		err := txn.Delete(k)
		if errors.Is(err, badger.ErrTxnTooBig) {
			if err := txn.Commit(); err != nil {
				return err
			}
			txn = s.db.NewTransaction(true)
			err = txn.Delete(k)
		}
		if err != nil {
			return err
		}
	}
	return txn.Commit()
}
