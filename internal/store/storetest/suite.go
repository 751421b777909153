// Package storetest is a behavioural suite shared by every message store driver.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
)

// Store mirrors store.MessageStore; it is redeclared to keep driver tests free
// of an import cycle through the factory package.
type Store interface {
	Append(ctx context.Context, msg *chat.Message) error
	ListBySession(ctx context.Context, sessionID string) ([]chat.Message, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
	Remove(ctx context.Context, sessionID, id string) error
	Close(ctx context.Context) error
}

// Factory opens a fresh, empty store capped at limit messages per listing.
type Factory func(t *testing.T, limit int) Store

// Run executes the suite against stores produced by open.
func Run(t *testing.T, open Factory) {
	t.Run("AppendAssignsIDAndTimestamp", func(t *testing.T) { testAppendAssigns(t, open) })
	t.Run("ListOrdersByTimestamp", func(t *testing.T) { testListOrder(t, open) })
	t.Run("ListUnknownSessionIsEmpty", func(t *testing.T) { testListUnknown(t, open) })
	t.Run("SessionsAreIsolated", func(t *testing.T) { testIsolation(t, open) })
	t.Run("DeleteBySessionIsIdempotent", func(t *testing.T) { testDelete(t, open) })
	t.Run("RemoveSingleTurn", func(t *testing.T) { testRemove(t, open) })
	t.Run("UnicodeRoundTrip", func(t *testing.T) { testUnicode(t, open) })
	t.Run("ListIsCappedAtLimit", func(t *testing.T) { testLimit(t, open) })
	t.Run("ConcurrentAppends", func(t *testing.T) { testConcurrent(t, open) })
}

func uniqueSession(t *testing.T, name string) string {
	return fmt.Sprintf("%s-%s-%d", t.Name(), name, time.Now().UnixNano())
}

func testAppendAssigns(t *testing.T, open Factory) {
	req := require.New(t)
	ctx := context.Background()
	s := open(t, 100)
	sid := uniqueSession(t, "s")

	msg := chat.NewMessage(sid, chat.RoleUser, "What is a warranty?")
	req.NoError(s.Append(ctx, msg))
	req.NotEmpty(msg.ID)
	req.False(msg.Timestamp.IsZero())

	got, err := s.ListBySession(ctx, sid)
	req.NoError(err)
	req.Len(got, 1)
	req.Equal(msg.ID, got[0].ID)
	req.Equal(sid, got[0].SessionID)
	req.Equal(chat.RoleUser, got[0].Role)
	req.Equal("What is a warranty?", got[0].Message)
}

func testListOrder(t *testing.T, open Factory) {
	req := require.New(t)
	ctx := context.Background()
	s := open(t, 100)
	sid := uniqueSession(t, "s")

	for i := 0; i < 6; i++ {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		req.NoError(s.Append(ctx, chat.NewMessage(sid, role, fmt.Sprintf("turn %d", i))))
	}

	first, err := s.ListBySession(ctx, sid)
	req.NoError(err)
	req.Len(first, 6)
	for i, m := range first {
		req.Equal(fmt.Sprintf("turn %d", i), m.Message)
		if i > 0 {
			req.False(m.Timestamp.Before(first[i-1].Timestamp), "timestamps must not decrease")
		}
	}

	second, err := s.ListBySession(ctx, sid)
	req.NoError(err)
	req.Equal(ids(first), ids(second))
}

func testListUnknown(t *testing.T, open Factory) {
	req := require.New(t)
	s := open(t, 100)

	got, err := s.ListBySession(context.Background(), uniqueSession(t, "missing"))
	req.NoError(err)
	req.NotNil(got)
	req.Empty(got)
}

func testIsolation(t *testing.T, open Factory) {
	req := require.New(t)
	ctx := context.Background()
	s := open(t, 100)
	a, b := uniqueSession(t, "a"), uniqueSession(t, "b")

	req.NoError(s.Append(ctx, chat.NewMessage(a, chat.RoleUser, "for a")))
	req.NoError(s.Append(ctx, chat.NewMessage(b, chat.RoleUser, "for b")))
	req.NoError(s.Append(ctx, chat.NewMessage(a, chat.RoleAssistant, "reply a")))

	gotA, err := s.ListBySession(ctx, a)
	req.NoError(err)
	req.Len(gotA, 2)

	n, err := s.DeleteBySession(ctx, b)
	req.NoError(err)
	req.EqualValues(1, n)

	gotA, err = s.ListBySession(ctx, a)
	req.NoError(err)
	req.Len(gotA, 2)
}

func testDelete(t *testing.T, open Factory) {
	req := require.New(t)
	ctx := context.Background()
	s := open(t, 100)
	sid := uniqueSession(t, "s")

	for i := 0; i < 3; i++ {
		req.NoError(s.Append(ctx, chat.NewMessage(sid, chat.RoleUser, "x")))
	}

	n, err := s.DeleteBySession(ctx, sid)
	req.NoError(err)
	req.EqualValues(3, n)

	n, err = s.DeleteBySession(ctx, sid)
	req.NoError(err)
	req.EqualValues(0, n)

	got, err := s.ListBySession(ctx, sid)
	req.NoError(err)
	req.Empty(got)
}

func testRemove(t *testing.T, open Factory) {
	req := require.New(t)
	ctx := context.Background()
	s := open(t, 100)
	sid := uniqueSession(t, "s")

	keep := chat.NewMessage(sid, chat.RoleUser, "keep")
	drop := chat.NewMessage(sid, chat.RoleUser, "drop")
	req.NoError(s.Append(ctx, keep))
	req.NoError(s.Append(ctx, drop))

	req.NoError(s.Remove(ctx, sid, drop.ID))
	req.NoError(s.Remove(ctx, sid, "does-not-exist"))

	got, err := s.ListBySession(ctx, sid)
	req.NoError(err)
	req.Len(got, 1)
	req.Equal(keep.ID, got[0].ID)
}

func testUnicode(t *testing.T, open Factory) {
	req := require.New(t)
	ctx := context.Background()
	s := open(t, 100)
	sid := uniqueSession(t, "s")

	text := "Garantía «¿qué es?» 保修 \"quoted\" <tag> & emoji 🧾\n\ttab\\slash"
	req.NoError(s.Append(ctx, chat.NewMessage(sid, chat.RoleUser, text)))

	got, err := s.ListBySession(ctx, sid)
	req.NoError(err)
	req.Len(got, 1)
	req.Equal([]byte(text), []byte(got[0].Message))
}

func testLimit(t *testing.T, open Factory) {
	req := require.New(t)
	ctx := context.Background()
	s := open(t, 3)
	sid := uniqueSession(t, "s")

	for i := 0; i < 5; i++ {
		req.NoError(s.Append(ctx, chat.NewMessage(sid, chat.RoleUser, fmt.Sprintf("m%d", i))))
	}

	got, err := s.ListBySession(ctx, sid)
	req.NoError(err)
	req.Len(got, 3)
	req.Equal("m0", got[0].Message)
	req.Equal("m2", got[2].Message)
}

func testConcurrent(t *testing.T, open Factory) {
	req := require.New(t)
	ctx := context.Background()
	s := open(t, 1000)
	sessions := []string{uniqueSession(t, "a"), uniqueSession(t, "b"), uniqueSession(t, "c")}
	const perSession = 20

	var wg sync.WaitGroup
	errs := make(chan error, len(sessions)*perSession)
	for _, sid := range sessions {
		for i := 0; i < perSession; i++ {
			wg.Add(1)
			go func(sid string, i int) {
				defer wg.Done()
				errs <- s.Append(ctx, chat.NewMessage(sid, chat.RoleUser, fmt.Sprintf("%d", i)))
			}(sid, i)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	for _, sid := range sessions {
		got, err := s.ListBySession(ctx, sid)
		req.NoError(err)
		req.Len(got, perSession)
		for i, m := range got {
			req.Equal(sid, m.SessionID)
			if i > 0 {
				req.False(m.Timestamp.Before(got[i-1].Timestamp), "timestamps decrease at index %d", i)
			}
		}

		again, err := s.ListBySession(ctx, sid)
		req.NoError(err)
		req.Equal(ids(got), ids(again), "listing order is stable")
	}
}

func ids(messages []chat.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.ID
	}
	return out
}
