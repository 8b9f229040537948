package subscription

import "context"

// ClientSubscription is the subscriber's view of a subscription: it can stop
// the feed but cannot publish.
type ClientSubscription[T any] struct {
	subscription *Subscription[T]
}

func (c *ClientSubscription[T]) Unsubscribe() {
	c.subscription.Unsubscribe()
}

func (c *ClientSubscription[T]) UnsubscribeWithContext(ctx context.Context) (err error) {
	return c.subscription.UnsubscribeWithContext(ctx)
}

// Done returns the done channel of the subscription
func (c *ClientSubscription[T]) Done() <-chan struct{} {
	return c.subscription.Done()
}

// IsClosed returns status of the subscription
func (c *ClientSubscription[T]) IsClosed() bool {
	return c.subscription.IsClosed()
}

// Dropped returns the number of values the subscriber missed because it was too slow.
func (c *ClientSubscription[T]) Dropped() uint64 {
	return c.subscription.Dropped()
}
