package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/store/storetest"
)

func TestStoreSuite(t *testing.T) {
	storetest.Run(t, func(t *testing.T, limit int) storetest.Store {
		return New(limit)
	})
}

func TestClosedStoreReturnsStorageError(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := New(10)
	req.NoError(s.Close(ctx))

	err := s.Append(ctx, chat.NewMessage("s1", chat.RoleUser, "hi"))
	req.True(apperr.IsKind(err, apperr.KindStorage))

	_, err = s.ListBySession(ctx, "s1")
	req.True(apperr.IsKind(err, apperr.KindStorage))

	_, err = s.DeleteBySession(ctx, "s1")
	req.True(apperr.IsKind(err, apperr.KindStorage))
}
