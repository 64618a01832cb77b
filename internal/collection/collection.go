// ABOUTME: Generic paginated collection shared by every resource list
// ABOUTME: Holds one list with its page cursor, loading flag and local mutations

package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/changexio/changex-console/internal/client"
)

// ErrItemNotFound is returned when an operation names an id that is not in
// the loaded list.
var ErrItemNotFound = errors.New("item not in loaded list")

// Fetcher loads one page of raw records.
type Fetcher[T any] func(ctx context.Context, opts client.ListOptions) (*client.Page[T], error)

// Config binds a Collection to one resource.
type Config[T, V any] struct {
	// Name labels log lines, e.g. "cards".
	Name string
	// Fetch loads a page from the resource's list route.
	Fetch Fetcher[T]
	// ID returns the identifier of a raw record.
	ID func(T) string
	// View maps a raw record to its display shape.
	View func(T) V
}

// State is a snapshot of the collection's cursor and flags.
type State struct {
	Loading    bool
	HasItems   bool
	Len        int
	Page       int
	LastPage   int
	Offset     int
	TotalCount int
}

// HasMore reports whether pages after the current one exist.
func (s State) HasMore() bool {
	return s.Page < s.LastPage
}

// Collection is the client-side state of one paginated resource list.
// Items keep the order the server returned them in. Concurrent fetches are
// not sequenced: whichever response resolves last wins.
type Collection[T, V any] struct {
	cfg Config[T, V]

	mu         sync.Mutex
	items      []T
	views      []V
	viewsValid bool
	loading    int
	page       int
	lastPage   int
	offset     int
	totalCount int

	pending  sync.WaitGroup
	errMu    sync.Mutex
	bgErrors []error
}

// New creates an empty collection.
func New[T, V any](cfg Config[T, V]) *Collection[T, V] {
	if cfg.Fetch == nil || cfg.ID == nil || cfg.View == nil {
		panic(fmt.Sprintf("collection %q: Fetch, ID and View are required", cfg.Name))
	}
	return &Collection[T, V]{cfg: cfg}
}

// FetchFirstPage requests a page and replaces the whole list with it. On
// failure the previous list is kept.
func (c *Collection[T, V]) FetchFirstPage(ctx context.Context, opts client.ListOptions) error {
	page, err := c.fetch(ctx, opts)
	if err != nil {
		c.finishLoading()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), page.List...)
	c.setCursor(page)
	c.invalidate()
	c.loading--
	return nil
}

// LoadMore requests a page and appends its items. Items are not
// de-duplicated; requesting an already loaded page repeats its items.
func (c *Collection[T, V]) LoadMore(ctx context.Context, opts client.ListOptions) error {
	page, err := c.fetch(ctx, opts)
	if err != nil {
		c.finishLoading()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, page.List...)
	c.setCursor(page)
	c.invalidate()
	c.loading--
	return nil
}

// NextPage returns opts pointed at the page after the current one.
func (c *Collection[T, V]) NextPage(opts client.ListOptions) client.ListOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	opts.Page = c.page + 1
	return opts
}

// fetch marks the collection loading and requests a page. The caller ends
// the loading span once the result has been applied, or via finishLoading
// on error.
func (c *Collection[T, V]) fetch(ctx context.Context, opts client.ListOptions) (*client.Page[T], error) {
	c.mu.Lock()
	c.loading++
	c.mu.Unlock()

	page, err := c.cfg.Fetch(ctx, opts)
	if err != nil {
		slog.Debug("Collection fetch failed", "collection", c.cfg.Name, "page", opts.Page, "error", err)
		return nil, fmt.Errorf("failed to load %s: %w", c.cfg.Name, err)
	}
	if page == nil {
		return nil, fmt.Errorf("failed to load %s: empty response", c.cfg.Name)
	}
	return page, nil
}

func (c *Collection[T, V]) finishLoading() {
	c.mu.Lock()
	c.loading--
	c.mu.Unlock()
}

func (c *Collection[T, V]) setCursor(page *client.Page[T]) {
	c.page = page.Page
	c.lastPage = page.LastPage
	c.offset = page.Offset
	c.totalCount = page.TotalCount
}

// invalidate drops cached views. Caller holds mu.
func (c *Collection[T, V]) invalidate() {
	c.views = nil
	c.viewsValid = false
}

// indexOf returns the position of id or -1. Caller holds mu.
func (c *Collection[T, V]) indexOf(id string) int {
	for i, item := range c.items {
		if c.cfg.ID(item) == id {
			return i
		}
	}
	return -1
}

// MutateOne runs a server call for id and, on success, replaces the item
// with the record it returns. The list order is unchanged and no page is
// re-fetched. If the item left the list meanwhile the result is dropped.
func (c *Collection[T, V]) MutateOne(ctx context.Context, id string, call func(ctx context.Context) (T, error)) (T, error) {
	updated, err := call(ctx)
	if err != nil {
		return updated, err
	}
	if !c.ReplaceOne(id, updated) {
		slog.Debug("Mutated item no longer loaded", "collection", c.cfg.Name, "id", id)
	}
	return updated, nil
}

// ReplaceOne swaps the item matching id for item in place.
func (c *Collection[T, V]) ReplaceOne(id string, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.items[idx] = item
	c.invalidate()
	return true
}

// Update patches the item matching id in place.
func (c *Collection[T, V]) Update(id string, patch func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	patch(&c.items[idx])
	c.invalidate()
	return true
}

// Prepend inserts item at the head of the list.
func (c *Collection[T, V]) Prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
	c.invalidate()
}

// Drop removes the item matching id from the local list only.
func (c *Collection[T, V]) Drop(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drop(id)
}

func (c *Collection[T, V]) drop(id string) bool {
	kept := c.items[:0:0]
	for _, item := range c.items {
		if c.cfg.ID(item) != id {
			kept = append(kept, item)
		}
	}
	removed := len(kept) != len(c.items)
	c.items = kept
	c.invalidate()
	return removed
}

// RemoveOne removes id from the list immediately, then runs del in the
// background. A failed delete is not rolled back: the local list and the
// server disagree until the next FetchFirstPage. Wait reports such failures.
func (c *Collection[T, V]) RemoveOne(ctx context.Context, id string, del func(ctx context.Context, id string) error) {
	c.mu.Lock()
	c.drop(id)
	c.mu.Unlock()

	bg := context.WithoutCancel(ctx)
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		if err := del(bg, id); err != nil {
			slog.Warn("Background delete failed, list may be stale", "collection", c.cfg.Name, "id", id, "error", err)
			c.errMu.Lock()
			c.bgErrors = append(c.bgErrors, fmt.Errorf("delete %s %s: %w", c.cfg.Name, id, err))
			c.errMu.Unlock()
		}
	}()
}

// Wait blocks until background deletes finish and returns their failures
// since the previous Wait.
func (c *Collection[T, V]) Wait() error {
	c.pending.Wait()
	c.errMu.Lock()
	defer c.errMu.Unlock()
	err := errors.Join(c.bgErrors...)
	c.bgErrors = nil
	return err
}

// Find returns the item matching id.
func (c *Collection[T, V]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], true
	}
	var zero T
	return zero, false
}

// Get is Find reporting a missing id as ErrItemNotFound.
func (c *Collection[T, V]) Get(id string) (T, error) {
	item, ok := c.Find(id)
	if !ok {
		return item, fmt.Errorf("%s %q: %w", c.cfg.Name, id, ErrItemNotFound)
	}
	return item, nil
}

// IDs returns the identifiers of the loaded records in list order.
func (c *Collection[T, V]) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.items))
	for i, item := range c.items {
		out[i] = c.cfg.ID(item)
	}
	return out
}

// InvalidateViews drops the cached projection, for when View depends on
// state outside the list.
func (c *Collection[T, V]) InvalidateViews() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidate()
}

// Items returns a copy of the loaded raw records.
func (c *Collection[T, V]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Views returns the display projection of the list, computed on first use
// after each change.
func (c *Collection[T, V]) Views() []V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.viewsValid {
		c.views = make([]V, len(c.items))
		for i, item := range c.items {
			c.views[i] = c.cfg.View(item)
		}
		c.viewsValid = true
	}
	return append([]V(nil), c.views...)
}

// Select returns views of the items matching keep, in list order.
func (c *Collection[T, V]) Select(keep func(T) bool) []V {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []V
	for _, item := range c.items {
		if keep(item) {
			out = append(out, c.cfg.View(item))
		}
	}
	return out
}

// State returns the current cursor and flags.
func (c *Collection[T, V]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Loading:    c.loading > 0,
		HasItems:   len(c.items) > 0,
		Len:        len(c.items),
		Page:       c.page,
		LastPage:   c.lastPage,
		Offset:     c.offset,
		TotalCount: c.totalCount,
	}
}

// Loading reports whether a fetch is in flight.
func (c *Collection[T, V]) Loading() bool {
	return c.State().Loading
}

// HasItems reports whether the list is non-empty.
func (c *Collection[T, V]) HasItems() bool {
	return c.State().HasItems
}
