package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability/logctx"
)

const (
	componentOutbox = "outbox"

	defaultQueueSize      = 1024
	defaultConcurrency    = 8
	defaultHandlerTimeout = 30 * time.Second
)

var ErrClosed = errors.New("outbox: bus is stopped")

// Bus is an in-memory event bus for fanning domain events out to workers.
// It is not durable: events still queued when the process exits are lost.
type Bus struct {
	subMu          sync.RWMutex
	subs           map[string][]domoutbox.Handler
	queue          chan domoutbox.Event
	closeMu        sync.RWMutex // held for reading while sending on queue
	closed         bool
	startOnce      sync.Once
	stopOnce       sync.Once
	done           chan struct{}
	concurrency    int
	handlerTimeout time.Duration
	log            observability.Logger
	publishCounter observability.Counter // event_publish_total{event,outcome}
}

type Option func(*Bus)

func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queue = make(chan domoutbox.Event, n)
		}
	}
}

// WithConcurrency caps how many handlers of one event run at once.
func WithConcurrency(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.handlerTimeout = d
		}
	}
}

// NewBus creates a bus with a buffered queue and a concurrency cap.
func NewBus(tel observability.Observability, opts ...Option) *Bus {
	if tel == nil {
		tel = observability.Nop()
	}
	b := &Bus{
		subs:           make(map[string][]domoutbox.Handler),
		queue:          make(chan domoutbox.Event, defaultQueueSize),
		done:           make(chan struct{}),
		concurrency:    defaultConcurrency,
		handlerTimeout: defaultHandlerTimeout,
		log:            tel.Logger().With(observability.F("component", componentOutbox)),
		publishCounter: tel.Metrics().Counter(observability.MEventPublish),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		go b.dispatchLoop(context.WithoutCancel(ctx))
		logctx.FromOr(ctx, b.log).Info("event_bus_started")
	})
}

// Stop refuses new events, drains the queue and waits for the running
// handlers, or returns early when ctx ends.
func (b *Bus) Stop(ctx context.Context) error {
	b.stopOnce.Do(func() {
		b.closeMu.Lock()
		b.closed = true
		close(b.queue)
		b.closeMu.Unlock()
	})

	started := true
	b.startOnce.Do(func() { started = false })
	if !started {
		return nil
	}

	select {
	case <-b.done:
		logctx.FromOr(ctx, b.log).Info("event_bus_stopped")
		return nil
	case <-ctx.Done():
		logctx.FromOr(ctx, b.log).Warn("event_bus_stop_timeout", observability.Err(ctx.Err()))
		return ctx.Err()
	}
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	name := e.EventName()
	logger := logctx.FromOr(ctx, b.log).With(observability.F("event", name))

	b.closeMu.RLock()
	defer b.closeMu.RUnlock()

	if b.closed {
		b.publishCounter.Add(1, observability.L("event", name), observability.L("outcome", "closed"))
		return ErrClosed
	}

	select {
	case b.queue <- e:
		b.publishCounter.Add(1, observability.L("event", name), observability.L("outcome", "enqueued"))
		logger.Debug("event_enqueued")
		return nil
	case <-ctx.Done():
		b.publishCounter.Add(1, observability.L("event", name), observability.L("outcome", "aborted"))
		logger.Warn("event_enqueue_aborted",
			observability.Err(ctx.Err()),
		)
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	defer close(b.done)
	for e := range b.queue {
		b.fanout(ctx, e)
	}
}

func (b *Bus) fanout(ctx context.Context, e domoutbox.Event) {
	name := e.EventName()
	logger := b.log.With(observability.F("event", name))

	b.subMu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.subMu.RUnlock()

	if len(handlers) == 0 {
		logger.Debug("event_dropped_no_subscriber")
		return
	}

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for _, h := range handlers {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
				<-sem
				wg.Done()
			}()

			hctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
			defer cancel()
			hctx = logctx.With(hctx, logger)
			if err := h(hctx, e); err != nil {
				logger.Warn("event_handler_error",
					observability.Err(err),
				)
			}
		}()
	}

	wg.Wait()

	logger.Debug("event_fanned_out",
		observability.F("handlers", len(handlers)),
	)
}
