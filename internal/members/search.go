package members

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/resource"
)

var ErrSearch = errors.New("No se pudo buscar miembros")

const (
	// minQueryLen is the threshold in characters, not bytes, below which the
	// search never touches the network and just presents an empty result set.
	minQueryLen = 2

	// maxResults truncates whatever the backend returns for a selection
	// widget.
	maxResults = 10

	defaultDebounceWindow = 300 * time.Millisecond
)

type SearchState struct {
	Query   string
	Results []Member
	Loading bool
	Err     string
}

// SearchStore is the debounced member search behind selection widgets. A
// fetch is scheduled only after the quiescence window passes with no further
// typing, and only for queries of at least two characters.
type SearchStore struct {
	client   *api.Client
	logger   *slog.Logger
	debounce *resource.Debouncer

	mu      sync.Mutex
	track   resource.Tracker
	signal  resource.Signal
	query   string
	results []Member
	closed  bool
}

// SearchOption customizes a SearchStore.
type SearchOption func(*searchOptions)

type searchOptions struct {
	window time.Duration
}

// WithDebounceWindow overrides the 300ms quiescence window. Tests use it to
// keep the clock short.
func WithDebounceWindow(d time.Duration) SearchOption {
	return func(o *searchOptions) { o.window = d }
}

func NewSearchStore(client *api.Client, logger *slog.Logger, opts ...SearchOption) *SearchStore {
	o := searchOptions{window: defaultDebounceWindow}
	for _, opt := range opts {
		opt(&o)
	}
	return &SearchStore{
		client:   client,
		logger:   logger,
		debounce: resource.NewDebouncer(o.window),
		signal:   resource.NewSignal(),
	}
}

// SetQuery records the latest query text. Short queries clear the results
// immediately without a request and invalidate any fetch still in flight;
// longer ones schedule a fetch for when the typing quiesces. The scheduled
// task re-reads the query at fire time, so rapid retyping collapses to one
// request reflecting only the final text.
func (s *SearchStore) SetQuery(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.query = query

	if utf8.RuneCountInString(query) < minQueryLen {
		s.debounce.Cancel()
		gen := s.track.Begin()
		s.track.Finish(gen, "")
		s.results = nil
		s.signal.Notify()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.debounce.Schedule(s.fire)
}

func (s *SearchStore) fire() {
	s.mu.Lock()
	if s.closed || utf8.RuneCountInString(s.query) < minQueryLen {
		s.mu.Unlock()
		return
	}
	gen := s.track.Begin()
	query := s.query
	s.signal.Notify()
	s.mu.Unlock()

	q := url.Values{}
	q.Set("q", query)

	var results []Member
	err := s.client.Get(context.Background(), "/members/search", q, &results)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.logger.Error("failed to search members", "error", err)
		if s.track.Finish(gen, ErrSearch.Error()) {
			s.signal.Notify()
		}
		return
	}
	if !s.track.Finish(gen, "") {
		return
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	s.results = results
	s.signal.Notify()
}

func (s *SearchStore) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SearchState{
		Query:   s.query,
		Results: s.results,
		Loading: s.track.Loading(),
		Err:     s.track.Err(),
	}
}

func (s *SearchStore) Changes() <-chan struct{} {
	return s.signal.Wait()
}

// Close cancels any pending debounce outright and drops late responses.
func (s *SearchStore) Close() {
	s.debounce.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
