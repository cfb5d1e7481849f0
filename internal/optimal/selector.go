package optimal

import (
	"container/heap"
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-dca/internal/result"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
)

// Entry is a retained accumulator together with its ranking key.
type Entry struct {
	Key         decimal.Decimal
	Accumulator *result.Accumulator
	seq         uint64
}

// entryHeap is a min-heap on Key. Among equal keys the most recently inserted
// entry is the minimum, so it is evicted first.
type entryHeap []Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	return less(h[i], h[j])
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(Entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

func less(a, b Entry) bool {
	if cmp := a.Key.Cmp(b.Key); cmp != 0 {
		return cmp < 0
	}

	return a.seq > b.seq
}

// Selector keeps the topN accumulators with the largest ranking keys seen so
// far. It is safe for concurrent use.
type Selector struct {
	mu      sync.Mutex
	topN    int
	entries entryHeap
	nextSeq uint64
}

// NewSelector creates a selector retaining at most topN entries.
func NewSelector(topN int) (*Selector, error) {
	if topN < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "top N must be at least 1, got %d", topN)
	}

	return &Selector{
		mu:      sync.Mutex{},
		topN:    topN,
		entries: make(entryHeap, 0, topN),
		nextSeq: 0,
	}, nil
}

// TopN returns the capacity of the selector.
func (s *Selector) TopN() int {
	return s.topN
}

// AddOrDiscard offers an accumulator. While the selector is below capacity it
// is always retained; afterwards it replaces the current minimum only when its
// ranking key is strictly greater. An empty accumulator is rejected.
func (s *Selector) AddOrDiscard(acc *result.Accumulator) error {
	key, err := acc.RankingKey()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{Key: key, Accumulator: acc, seq: s.nextSeq}
	s.nextSeq++

	if len(s.entries) < s.topN {
		heap.Push(&s.entries, entry)

		return nil
	}

	if !key.GreaterThan(s.entries[0].Key) {
		return nil
	}

	s.entries[0] = entry
	heap.Fix(&s.entries, 0)

	return nil
}

// Len returns the number of retained entries.
func (s *Selector) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Min returns the entry that would be evicted next.
func (s *Selector) Min() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return Entry{}, false
	}

	return s.entries[0], true
}

// Snapshot returns the retained entries in ascending key order without
// changing the selector.
func (s *Selector) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)

	sort.Slice(out, func(i, j int) bool {
		return less(out[i], out[j])
	})

	return out
}

// Drain removes and returns every retained entry in ascending key order.
func (s *Selector) Drain() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for s.entries.Len() > 0 {
		out = append(out, heap.Pop(&s.entries).(Entry))
	}

	return out
}
