package dispatch

import (
	"context"
	"errors"

	"github.com/soyeahso/ircrelay/internal/domain"
	"github.com/soyeahso/ircrelay/internal/hooks"
	"github.com/soyeahso/ircrelay/internal/logging"
)

// Fanout is the single consumer of a Queue. Each message is sent to every
// channel in order, one send at a time.
type Fanout struct {
	queue     *Queue
	announcer domain.Announcer
	channels  []string
	hooks     *hooks.Manager
	log       *logging.Logger
}

// NewFanout creates a consumer that delivers to channels through announcer.
// The channel list is copied and never changes afterwards.
func NewFanout(queue *Queue, announcer domain.Announcer, channels []string, hm *hooks.Manager, log *logging.Logger) *Fanout {
	return &Fanout{
		queue:     queue,
		announcer: announcer,
		channels:  append([]string(nil), channels...),
		hooks:     hm,
		log:       log.Sub("dispatch"),
	}
}

// Run delivers messages until ctx is done or the queue is closed and drained.
// A closed queue ends Run without error.
func (f *Fanout) Run(ctx context.Context) error {
	for {
		msg, err := f.queue.Dequeue(ctx)
		if errors.Is(err, ErrQueueClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		f.Deliver(ctx, msg)
	}
}

// Deliver sends msg to every channel and returns the number of successful
// sends. A failed send is logged and does not affect the other channels.
func (f *Fanout) Deliver(ctx context.Context, msg domain.OutboundMessage) int {
	sent := 0
	for _, ch := range f.channels {
		if err := f.announcer.SendText(ctx, ch, msg.Text); err != nil {
			f.log.Warn().
				Err(err).
				Str("id", msg.ID).
				Str("channel", ch).
				Msg("send failed")
			f.hooks.EmitAsync(ctx, hooks.EventSendFailed, map[string]any{
				"id":      msg.ID,
				"channel": ch,
				"error":   err.Error(),
			})
			continue
		}
		sent++
	}

	f.log.Debug().
		Str("id", msg.ID).
		Int("sent", sent).
		Int("channels", len(f.channels)).
		Msg("message delivered")
	return sent
}
