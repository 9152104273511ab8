// Package store is a serializing state container with a middleware chain.
//
// Reducers are pure functions applied under a mutex, so the state is only ever
// replaced by one reduction at a time. Middlewares wrap the dispatch function;
// the first middleware given to New is the outermost.
package store

import (
	"context"
	"sync"

	"github.com/zeptools/gw-dispatch/actions"
)

// Reducer maps (state, action) to the next state. It must not dispatch.
type Reducer[S any] func(state S, action actions.Action) S

// DispatchFunc sends an action down the chain.
// The returned value is whatever the chain produces: the action itself from the
// innermost dispatch, a decoded response body from the apicall middleware, etc.
type DispatchFunc func(ctx context.Context, action actions.Action) (any, error)

// API is the view of the store handed to middlewares
type API[S any] interface {
	GetState() S
	Dispatch(ctx context.Context, action actions.Action) (any, error)
}

// Middleware wraps next into a new DispatchFunc
type Middleware[S any] func(api API[S], next DispatchFunc) DispatchFunc

type Store[S any] struct {
	mu        sync.RWMutex
	reduceMu  sync.Mutex // serializes reductions
	state     S
	reducer   Reducer[S]
	dispatch  DispatchFunc
	listeners map[int]func(S)
	nextID    int
}

// Ensure *Store implements API
var _ API[struct{}] = (*Store[struct{}])(nil)

func New[S any](reducer Reducer[S], initial S, middlewares ...Middleware[S]) *Store[S] {
	s := &Store[S]{
		state:     initial,
		reducer:   reducer,
		listeners: make(map[int]func(S)),
	}
	s.dispatch = Chain[S](s, s.reduce, middlewares...)
	return s
}

// Chain applies middlewares to base in reverse order so the first is outermost
func Chain[S any](api API[S], base DispatchFunc, middlewares ...Middleware[S]) DispatchFunc {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](api, wrapped)
	}
	return wrapped
}

func (s *Store[S]) GetState() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store[S]) Dispatch(ctx context.Context, action actions.Action) (any, error) {
	return s.dispatch(ctx, action)
}

// Subscribe registers fn to receive the state after every reduction.
// fn runs in the dispatching goroutine, outside the store locks
func (s *Store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// reduce is the innermost dispatch
func (s *Store[S]) reduce(ctx context.Context, action actions.Action) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.reduceMu.Lock()
	s.mu.RLock()
	prev := s.state
	s.mu.RUnlock()
	next := s.reducer(prev, action)
	s.mu.Lock()
	s.state = next
	fns := make([]func(S), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	s.reduceMu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return action, nil
}
