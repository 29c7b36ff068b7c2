// Package session owns the client auth state: it applies events through the
// pure reducer, persists the token through an injected TokenStore, and
// notifies subscribers on every transition.
package session

import (
	"sync"

	"contact-keeper/internal/client/state"
)

// Store keeps the current auth state and the persisted token in sync.
type Store struct {
	mu     sync.Mutex
	state  state.State
	tokens TokenStore
	subs   map[int]func(state.State)
	nextID int
}

func New(tokens TokenStore) *Store {
	return &Store{
		state:  state.State{Status: state.StatusUnauthenticated},
		tokens: tokens,
		subs:   make(map[int]func(state.State)),
	}
}

// Hydrate loads a previously persisted token into the state. The user stays
// unauthenticated until the profile is loaded against the server.
func (s *Store) Hydrate() error {
	token, err := s.tokens.Get()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Token = token
	next := s.state
	s.mu.Unlock()

	s.notify(next)
	return nil
}

// State returns the current snapshot.
func (s *Store) State() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every transition. The returned function
// unsubscribes.
func (s *Store) Subscribe(fn func(state.State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Dispatch applies the event and performs the token persistence side effects
// the reducer itself stays free of.
func (s *Store) Dispatch(ev state.Event) error {
	s.mu.Lock()
	s.state = state.Reduce(s.state, ev)
	next := s.state
	s.mu.Unlock()

	var err error
	switch ev := ev.(type) {
	case state.AuthSucceeded:
		err = s.tokens.Set(ev.Token)
	case state.AuthFailed, state.LoggedOut:
		err = s.tokens.Clear()
	}

	s.notify(next)
	return err
}

func (s *Store) notify(snapshot state.State) {
	s.mu.Lock()
	fns := make([]func(state.State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
