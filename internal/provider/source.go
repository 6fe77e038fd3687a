package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Source is one upstream payload keyed by token address.
type Source[T any] interface {
	Fetch(ctx context.Context, address string) (*T, error)
}

// FetchFunc adapts a plain function or method value to Source.
type FetchFunc[T any] func(ctx context.Context, address string) (*T, error)

func (f FetchFunc[T]) Fetch(ctx context.Context, address string) (*T, error) {
	return f(ctx, address)
}

// Memo shares one fetch between every scorer of a single analysis.
// It is request scoped and must not outlive the analysis it was built for.
type Memo[T any] struct {
	name string
	src  Source[T]

	once sync.Once
	val  *T
	err  error

	tracker *Tracker
}

func NewMemo[T any](name string, src Source[T], tracker *Tracker) *Memo[T] {
	return &Memo[T]{name: name, src: src, tracker: tracker}
}

// Fetch runs the underlying fetch at most once. Later callers get the same result,
// including the same error. A nil payload without an error is reported as ErrNotFound
// and a panicking source as ErrUnavailable.
func (m *Memo[T]) Fetch(ctx context.Context, address string) (*T, error) {
	m.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("provider", m.name).Str("address", address).Interface("panic", r).Msg("source panicked")
				m.val, m.err = nil, fmt.Errorf("%w: %s panicked: %v", ErrUnavailable, m.name, r)
			}
			if m.err != nil && m.tracker != nil {
				m.tracker.Missing(m.name)
			}
		}()
		if m.src == nil {
			m.err = ErrUnavailable
			return
		}
		m.val, m.err = m.src.Fetch(ctx, address)
		if m.err == nil && m.val == nil {
			m.err = ErrNotFound
		}
	})
	return m.val, m.err
}

// Tracker collects the names of sources that produced no usable data during one analysis.
type Tracker struct {
	mu      sync.Mutex
	missing map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{missing: make(map[string]struct{})}
}

func (t *Tracker) Missing(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.missing[name] = struct{}{}
}

// Names returns the missing sources in sorted order.
func (t *Tracker) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.missing))
	for name := range t.missing {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
