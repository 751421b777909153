// Package memstore keeps the message log in process memory. It backs local
// development and tests; nothing survives a restart.
package memstore

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/store/clock"
)

var errClosed = errors.New("memory store closed")

// Store holds turns per session in insertion order.
type Store struct {
	mu       sync.RWMutex
	messages map[string][]chat.Message
	limit    int
	clock    *clock.Monotonic
}

// New returns an empty store. limit <= 0 disables the history cap.
func New(limit int) *Store {
	return &Store{
		messages: make(map[string][]chat.Message),
		limit:    limit,
		clock:    clock.New(),
	}
}

// Append adds msg to its session.
func (s *Store) Append(_ context.Context, msg *chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.messages == nil {
		return apperr.Storage("memstore.append", errClosed)
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Timestamp = s.clock.Stamp(msg.Timestamp)

	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], *msg)
	return nil
}

// ListBySession returns a copy of the session log.
func (s *Store) ListBySession(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.messages == nil {
		return nil, apperr.Storage("memstore.list", errClosed)
	}

	messages := s.messages[sessionID]
	if s.limit > 0 && len(messages) > s.limit {
		messages = messages[:s.limit]
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// DeleteBySession drops the session log.
func (s *Store) DeleteBySession(_ context.Context, sessionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.messages == nil {
		return 0, apperr.Storage("memstore.delete", errClosed)
	}

	n := int64(len(s.messages[sessionID]))
	delete(s.messages, sessionID)
	return n, nil
}

// Remove deletes one turn.
func (s *Store) Remove(_ context.Context, sessionID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.messages == nil {
		return apperr.Storage("memstore.remove", errClosed)
	}

	messages := s.messages[sessionID]
	for i, m := range messages {
		if m.ID == id {
			s.messages[sessionID] = append(messages[:i:i], messages[i+1:]...)
			break
		}
	}
	if len(s.messages[sessionID]) == 0 {
		delete(s.messages, sessionID)
	}
	return nil
}

// Close releases the map. Later calls fail with a storage error.
func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	return nil
}
