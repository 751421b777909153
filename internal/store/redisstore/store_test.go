package redisstore

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/observability"
	"github.com/zhouzirui/legal-chat/backend/internal/store/storetest"
)

func openMini(t *testing.T, srv *miniredis.Miniredis, limit int) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, Config{Addr: srv.Addr(), Limit: limit}, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })
	return s
}

func TestStoreSuite(t *testing.T) {
	storetest.Run(t, func(t *testing.T, limit int) storetest.Store {
		return openMini(t, miniredis.RunT(t), limit)
	})
}

// Runs the suite against a real server, e.g. REDIS_ADDR=localhost:6379.
func TestStoreSuiteRealServer(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	storetest.Run(t, func(t *testing.T, limit int) storetest.Store {
		ctx := context.Background()
		s, err := Open(ctx, Config{Addr: addr, DB: 15, Limit: limit}, observability.Discard())
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close(ctx) })
		return s
	})
}

func TestConcurrentAppendsKeepTimestampOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := openMini(t, miniredis.RunT(t), 0)

	for round := 0; round < 10; round++ {
		sid := fmt.Sprintf("s-%d", round)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.Append(ctx, chat.NewMessage(sid, chat.RoleUser, fmt.Sprint(i))))
			}(i)
		}
		wg.Wait()

		got, err := s.ListBySession(ctx, sid)
		req.NoError(err)
		req.Len(got, 50)
		for i := 1; i < len(got); i++ {
			req.False(got[i].Timestamp.Before(got[i-1].Timestamp), "round %d index %d", round, i)
		}
	}
}

func TestListSortsPushesFromOtherInstances(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	srv := miniredis.RunT(t)
	a := openMini(t, srv, 0)
	b := openMini(t, srv, 0)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	later := chat.NewMessage("s1", chat.RoleUser, "later")
	later.Timestamp = base.Add(time.Second)
	earlier := chat.NewMessage("s1", chat.RoleAssistant, "earlier")
	earlier.Timestamp = base

	req.NoError(a.Append(ctx, later))
	req.NoError(b.Append(ctx, earlier))

	got, err := a.ListBySession(ctx, "s1")
	req.NoError(err)
	req.Len(got, 2)
	req.Equal("earlier", got[0].Message)
	req.Equal("later", got[1].Message)
}

func TestDeleteReportsCount(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	srv := miniredis.RunT(t)
	s := openMini(t, srv, 0)

	req.NoError(s.Append(ctx, chat.NewMessage("s1", chat.RoleUser, "one")))
	req.NoError(s.Append(ctx, chat.NewMessage("s1", chat.RoleAssistant, "two")))
	req.True(srv.Exists(sessionKeyPrefix + "s1"))

	n, err := s.DeleteBySession(ctx, "s1")
	req.NoError(err)
	req.EqualValues(2, n)
	req.False(srv.Exists(sessionKeyPrefix + "s1"))
}

func TestOpenUnreachable(t *testing.T) {
	_, err := Open(context.Background(), Config{Addr: "127.0.0.1:1"}, observability.Discard())
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindStorage))
}
