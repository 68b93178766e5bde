// Package store holds the client-side state containers. Each container is a
// reducer over its state plus a request-sequence guard that drops responses
// superseded by a newer request or issued before the last reset.
package store

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/observability"
)

// Action type suffixes the store interprets on top of the reducer.
const (
	SuffixStart      = "_START"
	SuffixSuccess    = "_SUCCESS"
	SuffixError      = "_ERROR"
	SuffixReset      = "_RESET"
	SuffixClearError = "_CLEAR_ERROR"
)

// Action is a state transition. Seq is zero for unguarded actions.
type Action struct {
	Type    string
	Slot    string
	Seq     uint64
	Payload any
	Err     error
}

// Reducer applies an action to a copy of the state and returns the result.
type Reducer[S any] func(state S, action Action) S

// Status is the loading and error flag shared by every container.
type Status struct {
	IsLoading bool
	Error     string
}

// Snapshot is what subscribers observe.
type Snapshot[S any] struct {
	State  S
	Status Status
}

// Store is a mutex-guarded reducer container.
type Store[S any] struct {
	mu       sync.Mutex
	name     string
	initial  func() S
	state    S
	status   Status
	reduce   Reducer[S]
	next     uint64
	floor    uint64
	latest   map[string]uint64
	inflight map[uint64]string

	subMu       sync.Mutex
	subscribers map[int]func(Snapshot[S])
	nextSub     int

	logger zerolog.Logger
}

// New builds a Store. initial must return a fresh zero state on every call.
func New[S any](name string, initial func() S, reduce Reducer[S], logger zerolog.Logger) *Store[S] {
	return &Store[S]{
		name:        name,
		initial:     initial,
		state:       initial(),
		reduce:      reduce,
		latest:      make(map[string]uint64),
		inflight:    make(map[uint64]string),
		subscribers: make(map[int]func(Snapshot[S])),
		logger:      logger.With().Str("component", "store").Str("store", name).Logger(),
	}
}

// Name returns the store name used in logs and metrics.
func (s *Store[S]) Name() string {
	return s.name
}

// Begin issues the next sequence number for slot and applies op+"_START".
// Any older in-flight request on the same slot becomes stale. The empty slot
// is not tracked: requests on it are only invalidated by Reset.
func (s *Store[S]) Begin(op, slot string) uint64 {
	return s.BeginWith(op, slot, nil)
}

// BeginWith is Begin with a payload on the start action, for optimistic updates.
func (s *Store[S]) BeginWith(op, slot string, payload any) uint64 {
	s.mu.Lock()
	seq := s.beginLocked(op, slot, payload)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snapshot)
	return seq
}

// TryBegin is Begin that gives way: it starts nothing while a request on slot
// is in flight or when ready rejects the current state. It returns the state
// the request was started from.
func (s *Store[S]) TryBegin(op, slot string, ready func(S) bool) (uint64, S, bool) {
	s.mu.Lock()
	state := s.state
	if s.pendingLocked(slot) || (ready != nil && !ready(state)) {
		s.mu.Unlock()
		return 0, state, false
	}
	seq := s.beginLocked(op, slot, nil)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snapshot)
	return seq, state, true
}

func (s *Store[S]) beginLocked(op, slot string, payload any) uint64 {
	s.next++
	seq := s.next
	if slot != "" {
		s.latest[slot] = seq
		for pending, pendingSlot := range s.inflight {
			if pendingSlot == slot {
				delete(s.inflight, pending)
			}
		}
	}
	s.inflight[seq] = slot
	s.status = Status{IsLoading: true}
	s.state = s.reduce(s.state, Action{Type: op + SuffixStart, Slot: slot, Seq: seq, Payload: payload})
	return seq
}

func (s *Store[S]) pendingLocked(slot string) bool {
	if slot == "" {
		return false
	}
	for _, pendingSlot := range s.inflight {
		if pendingSlot == slot {
			return true
		}
	}
	return false
}

// Dispatch applies action unless it is stale. It reports whether the action was applied.
func (s *Store[S]) Dispatch(action Action) bool {
	s.mu.Lock()
	if s.staleLocked(action) {
		s.mu.Unlock()
		observability.StaleResponsesDropped().WithLabelValues(s.name).Inc()
		s.logger.Debug().Str("action", action.Type).Uint64("seq", action.Seq).Msg("dropped stale action")
		return false
	}

	switch {
	case strings.HasSuffix(action.Type, SuffixSuccess):
		s.settleLocked(action)
	case strings.HasSuffix(action.Type, SuffixError):
		s.settleLocked(action)
		s.status.Error = apperror.Message(action.Err)
	case strings.HasSuffix(action.Type, SuffixClearError):
		s.status.Error = ""
	}
	s.state = s.reduce(s.state, action)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snapshot)
	return true
}

// Reset returns the store to its initial state and invalidates every request issued so far.
// Calling it repeatedly yields the same state.
func (s *Store[S]) Reset() {
	s.mu.Lock()
	s.floor = s.next
	s.latest = make(map[string]uint64)
	s.inflight = make(map[uint64]string)
	s.status = Status{}
	s.state = s.initial()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug().Str("action", strings.ToUpper(s.name)+SuffixReset).Msg("store reset")
	s.publish(snapshot)
}

// ClearError clears the error message.
func (s *Store[S]) ClearError() {
	s.Dispatch(Action{Type: strings.ToUpper(s.name) + SuffixClearError})
}

// State returns the current state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the current loading and error flags.
func (s *Store[S]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns state and status together.
func (s *Store[S]) Snapshot() Snapshot[S] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// IsCurrent reports whether seq is still the latest request for slot.
func (s *Store[S]) IsCurrent(slot string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.staleLocked(Action{Slot: slot, Seq: seq})
}

// Subscribe registers fn for state changes and returns the unsubscribe func.
// fn is called outside the store lock.
func (s *Store[S]) Subscribe(fn func(Snapshot[S])) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store[S]) staleLocked(action Action) bool {
	if action.Seq == 0 {
		return false
	}
	if action.Seq <= s.floor {
		return true
	}
	return action.Slot != "" && action.Seq < s.latest[action.Slot]
}

func (s *Store[S]) settleLocked(action Action) {
	delete(s.inflight, action.Seq)
	s.status.IsLoading = len(s.inflight) > 0
}

func (s *Store[S]) snapshotLocked() Snapshot[S] {
	return Snapshot[S]{State: s.state, Status: s.status}
}

func (s *Store[S]) publish(snapshot Snapshot[S]) {
	s.subMu.Lock()
	fns := make([]func(Snapshot[S]), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// Run executes one guarded request: op_START, call, then op_SUCCESS with the
// result or op_ERROR with the error. Errors that are applied go to notifier;
// stale results are dropped silently.
func Run[S, T any](ctx context.Context, st *Store[S], notifier Notifier, op, slot string, call func(context.Context) (T, error)) (T, error) {
	seq := st.Begin(op, slot)
	result, err := call(ctx)
	if err != nil {
		Fail(ctx, st, notifier, op, slot, seq, err)
		return result, err
	}
	st.Dispatch(Action{Type: op + SuffixSuccess, Slot: slot, Seq: seq, Payload: result})
	return result, nil
}

// Fail dispatches op_ERROR and notifies when the action was applied.
func Fail[S any](ctx context.Context, st *Store[S], notifier Notifier, op, slot string, seq uint64, err error) bool {
	applied := st.Dispatch(Action{Type: op + SuffixError, Slot: slot, Seq: seq, Err: err})
	if applied && notifier != nil {
		notifier.Notify(ctx, err)
	}
	return applied
}
