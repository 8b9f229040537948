package state

import (
	"sync"

	"github.com/gaze-network/pool-portal/internal/subscription"
)

// Change is published to subscribers for every dispatched action.
type Change struct {
	Action Action
	State  State
}

// Store is the session state container. Actions are applied serially.
type Store struct {
	mu     sync.RWMutex
	state  State
	subs   map[uint64]*subscription.Subscription[Change]
	nextID uint64
}

func NewStore() *Store {
	return NewStoreWithState(Initial())
}

func NewStoreWithState(initial State) *Store {
	return &Store{
		state: initial,
		subs:  make(map[uint64]*subscription.Subscription[Change]),
	}
}

// Dispatch applies the actions in order and returns the resulting state.
func (s *Store) Dispatch(actions ...Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, action := range actions {
		s.state = Reduce(s.state, action)
		change := Change{Action: action, State: s.state}
		for _, sub := range s.subs {
			// slow subscribers miss changes instead of blocking dispatch
			sub.TrySend(change)
		}
	}
	return s.state
}

// GetState returns a snapshot of the current state.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe forwards every subsequent change to ch until unsubscribed.
func (s *Store) Subscribe(ch chan<- Change) *subscription.ClientSubscription[Change] {
	sub := subscription.NewSubscription(ch)

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = sub
	s.mu.Unlock()

	go func() {
		<-sub.Done()
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}()

	return sub.Client()
}

// Shutdown closes every subscription.
func (s *Store) Shutdown() {
	s.mu.RLock()
	subs := make([]*subscription.Subscription[Change], 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
