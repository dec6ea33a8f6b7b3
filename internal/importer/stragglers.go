package importer

import "sync"

// Straggler is a provider call that failed during the main pass
type Straggler struct {
	URI         string
	Category    string
	SubCategory string
	// Paged marks a page of a listing; retrying it continues through next_url.
	Paged bool
}

// StragglerQueue collects failed calls from concurrent workers. Items come
// back in enqueue order; with several writers that order is whatever the
// interleaving produced.
type StragglerQueue struct {
	mu    sync.Mutex
	items []Straggler
}

// Enqueue appends s.
func (q *StragglerQueue) Enqueue(s Straggler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, s)
}

// Len returns the number of queued items.
func (q *StragglerQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain empties the queue and returns what it held.
func (q *StragglerQueue) Drain() []Straggler {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}
