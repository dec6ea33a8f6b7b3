package polygon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrPageLimit is returned when a listing keeps supplying cursors past the configured page limit.
var ErrPageLimit = errors.New("page limit reached")

// Getter fetches a body for a uri. *Client satisfies it.
type Getter interface {
	GetString(ctx context.Context, uri string) (string, error)
}

// Paginator walks a cursor-paginated listing one page at a time.
// It is not restartable; create a new one to walk again.
type Paginator[T any] struct {
	getter   Getter
	next     string
	maxPages int
	pages    int
}

// NewPaginator starts a walk at uri. maxPages <= 0 means unlimited.
func NewPaginator[T any](getter Getter, uri string, maxPages int) *Paginator[T] {
	return &Paginator[T]{getter: getter, next: uri, maxPages: maxPages}
}

// More reports whether another page is available.
func (p *Paginator[T]) More() bool {
	return p.next != ""
}

// NextURI is the uri the next call to Next will fetch.
func (p *Paginator[T]) NextURI() string {
	return p.next
}

// Pages is the number of pages fetched so far.
func (p *Paginator[T]) Pages() int {
	return p.pages
}

// Next fetches and decodes the next page. On error the cursor is left on the
// failing uri so the caller can record it.
func (p *Paginator[T]) Next(ctx context.Context) (*Page[T], error) {
	if p.next == "" {
		return nil, errors.New("paginator exhausted")
	}
	if p.maxPages > 0 && p.pages >= p.maxPages {
		return nil, fmt.Errorf("%w after %d pages at %s", ErrPageLimit, p.pages, p.next)
	}

	uri := p.next
	body, err := p.getter.GetString(ctx, uri)
	if err != nil {
		return nil, err
	}

	var page Page[T]
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page %s: %w", uri, err)
	}
	page.URI = uri
	page.Raw = body

	p.pages++
	p.next = page.NextURL
	return &page, nil
}

// Collect walks every remaining page and returns all results.
func (p *Paginator[T]) Collect(ctx context.Context) ([]T, error) {
	var all []T
	for p.More() {
		page, err := p.Next(ctx)
		if err != nil {
			return all, err
		}
		all = append(all, page.Results...)
	}
	return all, nil
}
