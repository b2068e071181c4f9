package broadcast

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/race-strategy-sim/log"
)

// Server fans out every value received from a source channel to all subscribers.
type Server[T any] interface {
	Subscribe() <-chan T
	CancelSubscription(<-chan T)
	Close()
}

type (
	Option[T any] func(*server[T])
	server[T any] struct {
		name           string
		source         <-chan T
		listeners      []chan T
		addListener    chan chan T
		removeListener chan (<-chan T)
		ctx            context.Context
		cancel         context.CancelFunc
		sendTimeout    time.Duration
		numRcv         atomic.Int64
		numSnd         atomic.Int64
		numSkip        atomic.Int64
		l              *log.Logger
	}
)

// WithSendTimeout sets how long a slow subscriber may block a single value.
func WithSendTimeout[T any](d time.Duration) Option[T] {
	return func(s *server[T]) {
		s.sendTimeout = d
	}
}

func WithLogger[T any](l *log.Logger) Option[T] {
	return func(s *server[T]) {
		s.l = l
	}
}

//nolint:whitespace // editor/linter issue
func New[T any](
	ctx context.Context,
	name string,
	source <-chan T,
	opts ...Option[T],
) Server[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := &server[T]{
		name:           name,
		source:         source,
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		sendTimeout:    50 * time.Millisecond,
		l:              log.Default().Named("broadcast"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMetrics()
	go s.serve()
	return s
}

func (s *server[T]) Subscribe() <-chan T {
	ch := make(chan T)
	select {
	case s.addListener <- ch:
	case <-s.ctx.Done():
		close(ch)
	}
	return ch
}

func (s *server[T]) CancelSubscription(ch <-chan T) {
	select {
	case s.removeListener <- ch:
	case <-s.ctx.Done():
	}
}

func (s *server[T]) Close() {
	s.l.Info("closing broadcast server",
		log.String("name", s.name),
		log.Int64("rcv", s.numRcv.Load()),
		log.Int64("snd", s.numSnd.Load()),
		log.Int64("skip", s.numSkip.Load()))
	s.cancel()
}

func (s *server[T]) setupMetrics() {
	meter := otel.GetMeterProvider().Meter("rss.broadcast")
	attrs := metric.WithAttributes(attribute.String("name", s.name))
	gauge := func(name, desc string, value func() int64) {
		if _, err := meter.Int64ObservableGauge(name,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(
				func(_ context.Context, o metric.Int64Observer) error {
					o.Observe(value(), attrs)
					return nil
				}),
		); err != nil {
			s.l.Error("failed to register metric",
				log.String("metric", name), log.ErrorField(err))
		}
	}
	gauge("rss.broadcast.rcv", "Number of received values",
		func() int64 { return s.numRcv.Load() })
	gauge("rss.broadcast.snd", "Number of delivered values",
		func() int64 { return s.numSnd.Load() })
	gauge("rss.broadcast.skip", "Number of values dropped for slow listeners",
		func() int64 { return s.numSkip.Load() })
}

func (s *server[T]) serve() {
	defer func() {
		for _, listener := range s.listeners {
			close(listener)
		}
		s.listeners = nil
	}()
	for {
		select {
		case <-s.ctx.Done():
			return
		case ch := <-s.addListener:
			s.listeners = append(s.listeners, ch)
		case ch := <-s.removeListener:
			for i, listener := range s.listeners {
				if listener == ch {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					close(listener)
					break
				}
			}
		case msg, ok := <-s.source:
			if !ok {
				return
			}
			s.numRcv.Add(1)
			for _, listener := range s.listeners {
				select {
				case listener <- msg:
					s.numSnd.Add(1)
				case <-time.After(s.sendTimeout):
					s.numSkip.Add(1)
				}
			}
		}
	}
}
