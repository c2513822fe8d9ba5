// Package dispatch hands finished messages from the source connection to
// the destination sender and fans each one out to every destination channel.
package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/soyeahso/ircrelay/internal/domain"
	"github.com/soyeahso/ircrelay/internal/logging"
)

// ErrQueueClosed is returned by Dequeue once the queue is closed and drained.
var ErrQueueClosed = errors.New("dispatch: queue closed")

// Queue is a FIFO between one producer and one consumer. Enqueue never
// blocks. With a positive capacity the oldest pending message is dropped to
// make room.
type Queue struct {
	mu       sync.Mutex
	items    []domain.OutboundMessage
	notify   chan struct{}
	capacity int
	dropped  uint64
	closed   bool
	log      *logging.Logger
}

// NewQueue creates a queue. A capacity of zero or less means unbounded.
func NewQueue(capacity int, log *logging.Logger) *Queue {
	return &Queue{
		notify:   make(chan struct{}, 1),
		capacity: capacity,
		log:      log.Sub("dispatch"),
	}
}

// Enqueue appends msg. Messages enqueued after Close are discarded.
func (q *Queue) Enqueue(msg domain.OutboundMessage) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.log.Debug().Str("id", msg.ID).Msg("queue closed, message discarded")
		return
	}
	if q.capacity > 0 && len(q.items) >= q.capacity {
		old := q.items[0]
		q.items[0] = domain.OutboundMessage{}
		q.items = q.items[1:]
		q.dropped++
		q.log.Warn().
			Str("id", old.ID).
			Int("capacity", q.capacity).
			Uint64("dropped", q.dropped).
			Msg("queue full, dropped oldest message")
	}
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue blocks until a message is available, the queue is closed and
// empty, or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (domain.OutboundMessage, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items[0] = domain.OutboundMessage{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return msg, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return domain.OutboundMessage{}, ErrQueueClosed
		}

		select {
		case <-ctx.Done():
			return domain.OutboundMessage{}, ctx.Err()
		case <-q.notify:
		}
	}
}

// Close stops accepting messages. Pending messages can still be dequeued.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many messages were discarded on overflow.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
