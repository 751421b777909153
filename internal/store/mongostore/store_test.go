package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/legal-chat/backend/internal/observability"
	"github.com/zhouzirui/legal-chat/backend/internal/store/storetest"
)

// These tests need a reachable MongoDB, e.g. MONGO_URL=mongodb://localhost:27017.
func TestStoreSuite(t *testing.T) {
	uri := os.Getenv("MONGO_URL")
	if uri == "" {
		t.Skip("MONGO_URL not set")
	}

	storetest.Run(t, func(t *testing.T, limit int) storetest.Store {
		ctx := context.Background()
		s, err := Open(ctx, Config{
			URI:        uri,
			Database:   "legal_chat_test",
			Collection: fmt.Sprintf("chat_messages_%d", time.Now().UnixNano()),
			Limit:      limit,
		}, observability.Discard())
		require.NoError(t, err)

		t.Cleanup(func() {
			_ = s.coll.Drop(ctx)
			_ = s.Close(ctx)
		})
		return s
	})
}
