//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	c, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	url, err := c.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

type handlerContador struct {
	mu      sync.Mutex
	fallos  int
	vistos  []string
	listo   chan struct{}
	esperan int
}

func (h *handlerContador) Process(_ context.Context, raw json.RawMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fallos > 0 {
		h.fallos--
		return errors.New("fallo")
	}
	var p ImpresionPayload
	_ = json.Unmarshal(raw, &p)
	h.vistos = append(h.vistos, p.TicketText)
	if len(h.vistos) == h.esperan {
		close(h.listo)
	}
	return nil
}

func TestPool_ReintentaHastaExito(t *testing.T) {
	rdb := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &handlerContador{fallos: 2, listo: make(chan struct{}), esperan: 1}
	pool := NewPool(rdb, PoolConfig{Workers: 1, MaxAttempts: 5, BaseBackoff: 10 * time.Millisecond})
	pool.Handle(QueueImpresion, JobImpresion, h)
	pool.Start(ctx)

	require.NoError(t, NewDispatcher(rdb, "").EnqueueImpresion(ctx, "ticket 1"))

	select {
	case <-h.listo:
	case <-time.After(20 * time.Second):
		t.Fatal("job was not processed")
	}
	assert.Equal(t, []string{"ticket 1"}, h.vistos)
	n, err := DLQLength(ctx, rdb, QueueImpresion)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPool_DLQYReplay(t *testing.T) {
	rdb := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())

	h := &handlerContador{fallos: 1000, listo: make(chan struct{}), esperan: 1}
	pool := NewPool(rdb, PoolConfig{Workers: 1, MaxAttempts: 2, BaseBackoff: 10 * time.Millisecond})
	pool.Handle(QueueImpresion, JobImpresion, h)
	pool.Start(ctx)

	require.NoError(t, NewDispatcher(rdb, "").EnqueueImpresion(ctx, "ticket perdido"))
	require.Eventually(t, func() bool {
		n, _ := DLQLength(ctx, rdb, QueueImpresion)
		return n == 1
	}, 20*time.Second, 50*time.Millisecond)
	cancel()

	moved, err := ReplayDLQ(context.Background(), rdb, QueueImpresion, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	raw, err := rdb.RPop(context.Background(), QueueImpresion).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, JobImpresion, job.Type)
	assert.Zero(t, job.Attempts, "replayed jobs start over")
}

func TestDispatcher_EmailSinDestinatario(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, NewDispatcher(rdb, "").EnqueueArqueoEmail(ctx, "X", dto.ArqueoResponse{ID: 1}))
	n, _ := rdb.LLen(ctx, QueueEmail).Result()
	assert.Zero(t, n)

	require.NoError(t, NewDispatcher(rdb, "a@b.mx").EnqueueArqueoEmail(ctx, "X", dto.ArqueoResponse{ID: 1}))
	n, _ = rdb.LLen(ctx, QueueEmail).Result()
	assert.Equal(t, int64(1), n)
}
