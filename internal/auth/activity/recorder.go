// Package activity records an audit trail of auth and team events. Recording
// is fire-and-forget: callers never block on, or fail because of, a sink.
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/pkg/idx"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
)

// Recorder accepts activity entries.
type Recorder interface {
	Record(ctx context.Context, e domain.ActivityEntry)
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Record(context.Context, domain.ActivityEntry) {}

// Sink persists or forwards a single entry.
type Sink interface {
	Write(ctx context.Context, e domain.ActivityEntry) error
}

const (
	defaultBufferSize = 256
	sinkTimeout       = 5 * time.Second
)

// AsyncRecorder buffers entries on a channel drained by one goroutine that
// fans each entry out to every sink. A full buffer drops the entry.
type AsyncRecorder struct {
	Logger *slog.Logger
	Sinks  []Sink

	// Now defaults to time.Now.
	Now func() time.Time

	entries   chan domain.ActivityEntry
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once

	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewAsyncRecorder creates a recorder with the given buffer size. Call Start
// before recording and Stop on shutdown.
func NewAsyncRecorder(logger *slog.Logger, bufferSize int, sinks ...Sink) *AsyncRecorder {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &AsyncRecorder{
		Logger:  logger,
		Sinks:   sinks,
		Now:     time.Now,
		entries: make(chan domain.ActivityEntry, bufferSize),
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (r *AsyncRecorder) Start() {
	r.startOnce.Do(func() {
		r.mu.Lock()
		r.started = true
		r.mu.Unlock()

		go r.run()
		r.Logger.Info("activity recorder started", "sinks", len(r.Sinks), "buffer", cap(r.entries))
	})
}

// Stop closes the buffer, waits for the worker to flush what is queued and
// returns. Entries recorded after Stop are dropped.
func (r *AsyncRecorder) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		close(r.entries)
		started := r.started
		r.mu.Unlock()

		if started {
			<-r.done
		}
		r.Logger.Info("activity recorder stopped")
	})
}

// Record stamps e with an ID, time and request metadata and queues it.
func (r *AsyncRecorder) Record(ctx context.Context, e domain.ActivityEntry) {
	if e.ID == "" {
		e.ID = idx.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.Now().UTC()
	}
	if info, ok := requestInfoFrom(ctx); ok {
		if e.IPAddress == "" {
			e.IPAddress = info.IPAddress
		}
		if e.UserAgent == "" {
			e.UserAgent = info.UserAgent
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return
	}

	select {
	case r.entries <- e:
	default:
		slogx.FromContext(ctx).Warn("activity buffer full, dropping entry", slog.String("action", e.Action))
	}
}

func (r *AsyncRecorder) run() {
	defer close(r.done)

	for e := range r.entries {
		r.deliver(e)
	}
}

func (r *AsyncRecorder) deliver(e domain.ActivityEntry) {
	for _, sink := range r.Sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		if err := sink.Write(ctx, e); err != nil {
			r.Logger.Error("activity sink write failed",
				slog.String("action", e.Action),
				slog.Any("err", err),
			)
		}
		cancel()
	}
}
