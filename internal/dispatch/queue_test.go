package dispatch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/soyeahso/ircrelay/internal/domain"
	"github.com/soyeahso/ircrelay/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

func msg(id string) domain.OutboundMessage {
	return domain.OutboundMessage{ID: id, Text: "text " + id}
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(0, testLogger())
	for i := range 100 {
		q.Enqueue(msg(fmt.Sprint(i)))
	}
	assert.Equal(t, 100, q.Len())

	ctx := context.Background()
	for i := range 100 {
		got, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(i), got.ID)
	}
	assert.Equal(t, 0, q.Len())
	assert.Zero(t, q.Dropped())
}

func TestQueue_DequeueWaitsForEnqueue(t *testing.T) {
	q := NewQueue(0, testLogger())

	got := make(chan domain.OutboundMessage)
	go func() {
		m, err := q.Dequeue(context.Background())
		assert.NoError(t, err)
		got <- m
	}()

	time.Sleep(20 * time.Millisecond)
	q.Enqueue(msg("late"))

	select {
	case m := <-got:
		assert.Equal(t, "late", m.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("Dequeue did not wake up")
	}
}

func TestQueue_DequeueHonorsContext(t *testing.T) {
	q := NewQueue(0, testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_BoundedDropsOldest(t *testing.T) {
	q := NewQueue(2, testLogger())
	q.Enqueue(msg("a"))
	q.Enqueue(msg("b"))
	q.Enqueue(msg("c"))

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, uint64(1), q.Dropped())

	ctx := context.Background()
	first, err := q.Dequeue(ctx)
	require.NoError(t, err)
	second, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, []string{first.ID, second.ID})
}

func TestQueue_CloseDrainsThenReportsClosed(t *testing.T) {
	q := NewQueue(0, testLogger())
	q.Enqueue(msg("a"))
	q.Close()
	q.Enqueue(msg("after-close"))

	ctx := context.Background()
	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	_, err = q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueue_CloseWakesWaitingConsumer(t *testing.T) {
	q := NewQueue(0, testLogger())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not wake the consumer")
	}
}
