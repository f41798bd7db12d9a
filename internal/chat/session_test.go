package chat_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/outlivehq/mindmitra/internal/ai"
	"github.com/outlivehq/mindmitra/internal/chat"
	"github.com/outlivehq/mindmitra/internal/database/types"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, rueidis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return mr, client
}

func newSessionStore(t *testing.T) (*chat.SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr, client := setupRedis(t)
	store := chat.NewSessionStore(client, config.Session{TTLMinutes: 60, MaxTurns: 4}, zap.NewNop())

	return store, mr
}

func TestSessionHistoryEmpty(t *testing.T) {
	t.Parallel()

	store, _ := newSessionStore(t)

	history, err := store.History(t.Context(), "CODE1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSessionAppendAndHistory(t *testing.T) {
	t.Parallel()

	store, _ := newSessionStore(t)
	ctx := t.Context()

	require.NoError(t, store.Append(ctx, "CODE1",
		ai.Turn{Role: types.RoleUser, Content: "hello"},
		ai.Turn{Role: types.RoleAssistant, Content: "hi, how are you?"},
	))

	history, err := store.History(ctx, "CODE1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, types.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, types.RoleAssistant, history[1].Role)
}

func TestSessionTrimsToMaxTurns(t *testing.T) {
	t.Parallel()

	store, _ := newSessionStore(t)
	ctx := t.Context()

	for i := range 4 {
		require.NoError(t, store.Append(ctx, "CODE1",
			ai.Turn{Role: types.RoleUser, Content: string(rune('a' + i))},
			ai.Turn{Role: types.RoleAssistant, Content: "reply"},
		))
	}

	history, err := store.History(ctx, "CODE1")
	require.NoError(t, err)
	require.Len(t, history, 4)

	// Oldest turns fall off
	assert.Equal(t, "c", history[0].Content)
}

func TestSessionIsolatedPerAccount(t *testing.T) {
	t.Parallel()

	store, _ := newSessionStore(t)
	ctx := t.Context()

	require.NoError(t, store.Append(ctx, "CODE1", ai.Turn{Role: types.RoleUser, Content: "one"}))

	history, err := store.History(ctx, "CODE2")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSessionClear(t *testing.T) {
	t.Parallel()

	store, _ := newSessionStore(t)
	ctx := t.Context()

	require.NoError(t, store.Append(ctx, "CODE1", ai.Turn{Role: types.RoleUser, Content: "one"}))
	require.NoError(t, store.Clear(ctx, "CODE1"))

	history, err := store.History(ctx, "CODE1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// Clearing again is a no-op
	require.NoError(t, store.Clear(ctx, "CODE1"))
}

func TestSessionExpires(t *testing.T) {
	t.Parallel()

	store, mr := newSessionStore(t)
	ctx := t.Context()

	require.NoError(t, store.Append(ctx, "CODE1", ai.Turn{Role: types.RoleUser, Content: "one"}))

	mr.FastForward(61 * time.Minute)

	history, err := store.History(ctx, "CODE1")
	require.NoError(t, err)
	assert.Empty(t, history)
}
