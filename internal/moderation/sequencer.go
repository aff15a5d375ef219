package moderation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterJobDelay is the pause between jobs in a chat's drain loop. It
// absorbs eventual-consistency lag in the platform's delete/read ordering.
const DefaultInterJobDelay = 50 * time.Millisecond

// ProcessFunc handles one dequeued message.
type ProcessFunc func(ctx context.Context, msg *Message) error

// Sequencer guarantees that messages from a single chat are processed
// strictly in arrival order, never concurrently. Each chat gets an
// unbounded FIFO queue drained by at most one worker goroutine; the worker
// is spawned on the empty→non-empty transition and exits when the queue
// drains. Chats proceed fully in parallel with respect to each other.
type Sequencer struct {
	process ProcessFunc
	delay   time.Duration

	mu    sync.Mutex
	chats map[int64]*chatQueue
}

type chatQueue struct {
	mu      sync.Mutex
	pending []*Message
	active  bool // exclusivity token: true while a worker owns the queue
}

// NewSequencer creates a sequencer that runs process on every submitted
// message. delay <= 0 falls back to DefaultInterJobDelay.
func NewSequencer(process ProcessFunc, delay time.Duration) *Sequencer {
	if delay <= 0 {
		delay = DefaultInterJobDelay
	}
	return &Sequencer{
		process: process,
		delay:   delay,
		chats:   make(map[int64]*chatQueue),
	}
}

// Submit appends the message to its chat's queue and spawns a worker if
// none is active. The active flag is flipped under the queue mutex, so two
// near-simultaneous first messages cannot both spawn a worker.
func (s *Sequencer) Submit(ctx context.Context, msg *Message) {
	s.mu.Lock()
	q, ok := s.chats[msg.ChatID]
	if !ok {
		q = &chatQueue{}
		s.chats[msg.ChatID] = q
	}
	s.mu.Unlock()

	q.mu.Lock()
	q.pending = append(q.pending, msg)
	spawn := !q.active
	if spawn {
		q.active = true
	}
	q.mu.Unlock()

	if spawn {
		go s.drain(ctx, msg.ChatID, q)
	}
}

// drain pops jobs in FIFO order and processes them sequentially. A failed
// or panicking job is logged and does not abort the loop. The worker
// releases the exclusivity token and exits once the queue is empty.
func (s *Sequencer) drain(ctx context.Context, chatID int64, q *chatQueue) {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.active = false
			q.mu.Unlock()
			return
		}
		msg := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			// Shutdown: stop processing but leave remaining jobs queued.
			q.mu.Lock()
			q.active = false
			q.mu.Unlock()
			return
		case <-time.After(s.delay):
		}

		if err := s.runJob(ctx, msg); err != nil {
			slog.Error("message processing failed",
				"chat_id", chatID,
				"message_id", msg.MessageID,
				"sender_id", msg.Sender.ID,
				"error", err,
			)
		}
	}
}

func (s *Sequencer) runJob(ctx context.Context, msg *Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while processing message",
				"chat_id", msg.ChatID,
				"message_id", msg.MessageID,
				"panic", r,
			)
		}
	}()
	return s.process(ctx, msg)
}
