package subscription

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// BufferSize is the number of values queued per subscriber before TrySend
// starts dropping.
var BufferSize = 8

// Subscription queues published values and forwards them to the subscriber
// channel from its own goroutine, so a slow subscriber never blocks the publisher.
type Subscription[T any] struct {
	channel chan<- T
	queue   chan T
	dropped atomic.Uint64

	// stop ends forwarding; stopped is closed by it. done is closed once the
	// forwarding goroutine no longer writes to channel.
	stop    context.CancelFunc
	stopped <-chan struct{}
	done    chan struct{}
}

func NewSubscription[T any](channel chan<- T) *Subscription[T] {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription[T]{
		channel: channel,
		queue:   make(chan T, BufferSize),
		stop:    cancel,
		stopped: ctx.Done(),
		done:    make(chan struct{}),
	}
	go s.forward()
	return s
}

func (s *Subscription[T]) Unsubscribe() {
	_ = s.UnsubscribeWithContext(context.Background())
}

// UnsubscribeWithContext stops the subscription and waits until nothing more
// is written to the subscriber channel. Queued values are discarded.
func (s *Subscription[T]) UnsubscribeWithContext(ctx context.Context) error {
	s.stop()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

// Client returns the subscriber's handle of this subscription.
func (s *Subscription[T]) Client() *ClientSubscription[T] {
	return &ClientSubscription[T]{subscription: s}
}

// Done is closed once the subscription stopped forwarding.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription[T]) IsClosed() bool {
	select {
	case <-s.stopped:
		return true
	default:
		return false
	}
}

// Dropped returns the number of values discarded by TrySend.
func (s *Subscription[T]) Dropped() uint64 {
	return s.dropped.Load()
}

// TrySend queues a value without blocking. It reports false when the
// subscription is closed, or when its queue is full and the value is dropped.
func (s *Subscription[T]) TrySend(value T) bool {
	if s.IsClosed() {
		return false
	}
	select {
	case s.queue <- value:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

func (s *Subscription[T]) forward() {
	defer close(s.done)
	for {
		select {
		case <-s.stopped:
			return
		case value := <-s.queue:
			select {
			case s.channel <- value:
			case <-s.stopped:
				return
			}
		}
	}
}
