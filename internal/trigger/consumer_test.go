package trigger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"email-dispatch/internal/common/config"
	"email-dispatch/internal/common/logger"
	"email-dispatch/internal/store"
)

type recordingHandler struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (h *recordingHandler) Process(_ context.Context, collection, id string, _ store.Document) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, collection+"/"+id)
	return h.err
}

func (h *recordingHandler) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

type consumerFixture struct {
	client  *redis.Client
	store   *store.RedisStore
	handler *recordingHandler
	cfg     config.TriggerConfig
	cancel  context.CancelFunc
	done    chan struct{}
}

func startConsumer(t *testing.T) *consumerFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &consumerFixture{
		client:  client,
		store:   store.NewRedisWithClient(client),
		handler: &recordingHandler{},
		cfg: config.TriggerConfig{
			Stream:      "email-requests",
			Group:       "dispatchers",
			Consumer:    "test-1",
			BlockMs:     20,
			MaxInFlight: 4,
		},
		done: make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	t.Cleanup(f.stop)

	c := NewConsumer(client, f.store, f.handler, f.cfg, logger.NewNoOpLogger())
	go func() {
		defer close(f.done)
		_ = c.Run(ctx)
	}()
	return f
}

func (f *consumerFixture) stop() {
	f.cancel()
	select {
	case <-f.done:
	case <-time.After(5 * time.Second):
	}
}

func (f *consumerFixture) emit(t *testing.T, values map[string]interface{}) {
	t.Helper()
	require.NoError(t, f.client.XAdd(context.Background(), &redis.XAddArgs{
		Stream: f.cfg.Stream,
		Values: values,
	}).Err())
}

func (f *consumerFixture) pendingCount(t *testing.T) int64 {
	t.Helper()
	p, err := f.client.XPending(context.Background(), f.cfg.Stream, f.cfg.Group).Result()
	require.NoError(t, err)
	return p.Count
}

func TestConsumer_DeliversEventToHandler(t *testing.T) {
	f := startConsumer(t)
	ctx := context.Background()

	require.NoError(t, f.store.Update(ctx, "mail", "m1", store.Document{"to": "a@b.com"}))
	f.emit(t, map[string]interface{}{"collection": "mail", "documentId": "m1"})

	require.Eventually(t, func() bool {
		return f.handler.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"mail/m1"}, f.handler.calls)
	assert.Eventually(t, func() bool {
		return f.pendingCount(t) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsumer_AcksMalformedEvent(t *testing.T) {
	f := startConsumer(t)

	f.emit(t, map[string]interface{}{"collection": "mail"}) // no documentId

	assert.Eventually(t, func() bool {
		return f.pendingCount(t) == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, f.handler.callCount())
}

func TestConsumer_AcksEventForMissingDocument(t *testing.T) {
	f := startConsumer(t)

	f.emit(t, map[string]interface{}{"collection": "mail", "documentId": "ghost"})

	assert.Eventually(t, func() bool {
		return f.pendingCount(t) == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, f.handler.callCount())
}

func TestConsumer_SkipsAlreadySentRecord(t *testing.T) {
	f := startConsumer(t)
	ctx := context.Background()

	require.NoError(t, f.store.Update(ctx, "mail", "m1", store.Document{
		"to":     "a@b.com",
		"status": "sent",
	}))
	f.emit(t, map[string]interface{}{"collection": "mail", "documentId": "m1"})

	assert.Eventually(t, func() bool {
		return f.pendingCount(t) == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, f.handler.callCount())
}

func TestConsumer_AcksAfterHandlerError(t *testing.T) {
	f := startConsumer(t)
	f.handler.err = errors.New("terminal failure")
	ctx := context.Background()

	require.NoError(t, f.store.Update(ctx, "mail", "m1", store.Document{"to": "a@b.com"}))
	f.emit(t, map[string]interface{}{"collection": "mail", "documentId": "m1"})

	require.Eventually(t, func() bool {
		return f.handler.callCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The pipeline already recorded the error status, so the event must not
	// be redelivered.
	assert.Eventually(t, func() bool {
		return f.pendingCount(t) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsumer_ProcessesBacklogFromStreamStart(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	docs := store.NewRedisWithClient(client)
	ctx := context.Background()

	// Events appended before the consumer ever ran.
	require.NoError(t, docs.Update(ctx, "mail", "m1", store.Document{"to": "a@b.com"}))
	require.NoError(t, docs.Update(ctx, "mail", "m2", store.Document{"to": "c@d.com"}))
	for _, id := range []string{"m1", "m2"} {
		require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
			Stream: "email-requests",
			Values: map[string]interface{}{"collection": "mail", "documentId": id},
		}).Err())
	}

	handler := &recordingHandler{}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c := NewConsumer(client, docs, handler, config.TriggerConfig{
		Stream:      "email-requests",
		Group:       "dispatchers",
		Consumer:    "test-1",
		BlockMs:     20,
		MaxInFlight: 2,
	}, logger.NewNoOpLogger())
	go func() {
		defer close(done)
		_ = c.Run(runCtx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		return handler.callCount() == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"mail/m1", "mail/m2"}, handler.calls)
}
