package store

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/service"
)

const (
	opSearch   = "SEARCH"
	slotSearch = "search"
)

// SearchState is the latest query and its results.
type SearchState struct {
	Query   dto.SearchQuery
	Results dto.SearchResult
}

// SearchStore runs search-as-you-type. Only the most recently started query can land.
type SearchStore struct {
	*Store[SearchState]
	search   service.SearchService
	notifier Notifier
}

// NewSearchStore builds the search container.
func NewSearchStore(search service.SearchService, notifier Notifier, logger zerolog.Logger) *SearchStore {
	return &SearchStore{
		Store:    New("search", func() SearchState { return SearchState{} }, reduceSearch, logger),
		search:   search,
		notifier: notifier,
	}
}

// Search runs query. A blank query clears the results without a request.
func (s *SearchStore) Search(ctx context.Context, query dto.SearchQuery) (dto.SearchResult, error) {
	if strings.TrimSpace(query.Query) == "" {
		s.Reset()
		return dto.SearchResult{}, nil
	}

	seq := s.BeginWith(opSearch, slotSearch, query)
	results, err := s.search.Search(ctx, query)
	if err != nil {
		Fail(ctx, s.Store, s.notifier, opSearch, slotSearch, seq, err)
		return dto.SearchResult{}, err
	}
	s.Dispatch(Action{Type: opSearch + SuffixSuccess, Slot: slotSearch, Seq: seq, Payload: results})
	return results, nil
}

func reduceSearch(state SearchState, action Action) SearchState {
	switch action.Type {
	case opSearch + SuffixStart:
		state.Query = action.Payload.(dto.SearchQuery)
	case opSearch + SuffixSuccess:
		state.Results = action.Payload.(dto.SearchResult)
	}
	return state
}
