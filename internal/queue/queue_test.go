package queue_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/outlivehq/mindmitra/internal/queue"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTest(t *testing.T) *queue.Manager {
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

	return queue.NewManager(client, zap.NewNop())
}

func task(accountCode, messageID string, queuedAt time.Time) *queue.ModerationTask {
	return &queue.ModerationTask{
		AccountCode: accountCode,
		MessageID:   messageID,
		Text:        "message text",
		QueuedAt:    queuedAt,
	}
}

func TestAddAndLength(t *testing.T) {
	t.Parallel()

	manager := setupTest(t)
	ctx := t.Context()

	assert.Equal(t, 0, manager.Length(ctx))

	require.NoError(t, manager.Add(ctx, task("CODE1", "msg-1", time.Now())))
	require.NoError(t, manager.Add(ctx, task("CODE2", "msg-2", time.Now())))

	assert.Equal(t, 2, manager.Length(ctx))
}

func TestClaimReturnsOldestFirst(t *testing.T) {
	t.Parallel()

	manager := setupTest(t)
	ctx := t.Context()

	now := time.Now()
	require.NoError(t, manager.Add(ctx, task("CODE1", "msg-new", now)))
	require.NoError(t, manager.Add(ctx, task("CODE1", "msg-old", now.Add(-time.Minute))))

	tasks, err := manager.Claim(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.Equal(t, "msg-old", tasks[0].MessageID)
	assert.Equal(t, 1, manager.Length(ctx))
}

func TestClaimRemovesTasks(t *testing.T) {
	t.Parallel()

	manager := setupTest(t)
	ctx := t.Context()

	require.NoError(t, manager.Add(ctx, task("CODE1", "msg-1", time.Now())))

	tasks, err := manager.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "CODE1", tasks[0].AccountCode)

	tasks, err = manager.Claim(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestClaimEmptyQueue(t *testing.T) {
	t.Parallel()

	manager := setupTest(t)

	tasks, err := manager.Claim(t.Context(), 5)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestClaimBatchSize(t *testing.T) {
	t.Parallel()

	manager := setupTest(t)
	ctx := t.Context()

	now := time.Now()
	for i := range 5 {
		require.NoError(t, manager.Add(ctx,
			task("CODE1", string(rune('a'+i)), now.Add(time.Duration(i)*time.Second))))
	}

	tasks, err := manager.Claim(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
	assert.Equal(t, 2, manager.Length(ctx))
}
