package badgerstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/observability"
	"github.com/zhouzirui/legal-chat/backend/internal/store/storetest"
)

func open(t *testing.T, dir string, limit int) *Store {
	t.Helper()
	s, err := Open(dir, limit, observability.Discard())
	require.NoError(t, err)
	return s
}

func TestStoreSuite(t *testing.T) {
	storetest.Run(t, func(t *testing.T, limit int) storetest.Store {
		s := open(t, t.TempDir(), limit)
		t.Cleanup(func() { _ = s.Close(context.Background()) })
		return s
	})
}

func TestInMemoryMode(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := open(t, "memory", 0)
	defer s.Close(ctx)

	req.NoError(s.Append(ctx, chat.NewMessage("s1", chat.RoleUser, "hello")))
	got, err := s.ListBySession(ctx, "s1")
	req.NoError(err)
	req.Len(got, 1)
}

func TestSessionIDsWithSeparatorsDoNotOverlap(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := open(t, t.TempDir(), 0)
	defer s.Close(ctx)

	req.NoError(s.Append(ctx, chat.NewMessage("a", chat.RoleUser, "short")))
	req.NoError(s.Append(ctx, chat.NewMessage("a:b", chat.RoleUser, "long")))

	got, err := s.ListBySession(ctx, "a")
	req.NoError(err)
	req.Len(got, 1)
	req.Equal("short", got[0].Message)

	n, err := s.DeleteBySession(ctx, "a")
	req.NoError(err)
	req.EqualValues(1, n)

	got, err = s.ListBySession(ctx, "a:b")
	req.NoError(err)
	req.Len(got, 1)
}

func TestDataSurvivesReopen(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	s := open(t, dir, 0)
	req.NoError(s.Append(ctx, chat.NewMessage("s1", chat.RoleUser, "durable")))
	req.NoError(s.Close(ctx))

	s = open(t, dir, 0)
	defer s.Close(ctx)
	got, err := s.ListBySession(ctx, "s1")
	req.NoError(err)
	req.Len(got, 1)
	req.Equal("durable", got[0].Message)
}
