package store

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// ListState is a fetched collection and the filter it was fetched with.
type ListState[T any] struct {
	Items  []T
	Filter string
}

// Loader fetches a collection. filter is store specific, e.g. a parent id.
type Loader[T any] func(ctx context.Context, filter string) ([]T, error)

type listResult[T any] struct {
	items  []T
	filter string
}

// ListStore is a read-only collection container for lookup tables.
type ListStore[T any] struct {
	*Store[ListState[T]]
	op       string
	load     Loader[T]
	notifier Notifier
}

// NewListStore builds a collection container named name.
func NewListStore[T any](name string, load Loader[T], notifier Notifier, logger zerolog.Logger) *ListStore[T] {
	op := strings.ToUpper(name) + "_FETCH"
	reduce := func(state ListState[T], action Action) ListState[T] {
		if action.Type == op+SuffixSuccess {
			result := action.Payload.(listResult[T])
			return ListState[T]{Items: result.items, Filter: result.filter}
		}
		return state
	}

	return &ListStore[T]{
		Store:    New(name, func() ListState[T] { return ListState[T]{} }, reduce, logger),
		op:       op,
		load:     load,
		notifier: notifier,
	}
}

// Fetch replaces the collection with the result for filter.
func (s *ListStore[T]) Fetch(ctx context.Context, filter string) ([]T, error) {
	result, err := Run(ctx, s.Store, s.notifier, s.op, "items", func(ctx context.Context) (listResult[T], error) {
		items, err := s.load(ctx, filter)
		return listResult[T]{items: items, filter: filter}, err
	})
	return result.items, err
}

// Items returns the current collection.
func (s *ListStore[T]) Items() []T {
	return s.State().Items
}
