// ABOUTME: Tests for the generic paginated collection
// ABOUTME: Replace vs append semantics, loading flag, optimistic removal

package collection

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/changexio/changex-console/internal/client"
)

type item struct {
	ID   string
	Name string
}

type view struct {
	Label string
}

// pager serves canned pages keyed by page number.
type pager struct {
	mu      sync.Mutex
	pages   map[int]*client.Page[item]
	err     error
	seen    []client.ListOptions
	blockOn chan struct{}
	started chan struct{}
}

func (p *pager) fetch(ctx context.Context, opts client.ListOptions) (*client.Page[item], error) {
	p.mu.Lock()
	p.seen = append(p.seen, opts)
	block, started := p.blockOn, p.started
	p.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	if p.err != nil {
		return nil, p.err
	}
	page := opts.Page
	if page == 0 {
		page = 1
	}
	return p.pages[page], nil
}

func newTestCollection(p *pager) *Collection[item, view] {
	return New(Config[item, view]{
		Name:  "items",
		Fetch: p.fetch,
		ID:    func(i item) string { return i.ID },
		View:  func(i item) view { return view{Label: strings.ToUpper(i.Name)} },
	})
}

func twoPages() *pager {
	return &pager{pages: map[int]*client.Page[item]{
		1: {List: []item{{"a", "alpha"}, {"b", "bravo"}}, Page: 1, LastPage: 2, TotalCount: 3},
		2: {List: []item{{"c", "charlie"}}, Page: 2, LastPage: 2, Offset: 2, TotalCount: 3},
	}}
}

func ids(items []item) string {
	var parts []string
	for _, i := range items {
		parts = append(parts, i.ID)
	}
	return strings.Join(parts, ",")
}

func TestCollection_InitialState(t *testing.T) {
	c := newTestCollection(twoPages())
	s := c.State()
	if s.Loading || s.HasItems || s.Len != 0 {
		t.Errorf("expected empty idle collection, got %+v", s)
	}
}

func TestCollection_FetchFirstPageReplaces(t *testing.T) {
	p := twoPages()
	c := newTestCollection(p)
	ctx := context.Background()

	if err := c.FetchFirstPage(ctx, client.ListOptions{Page: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.FetchFirstPage(ctx, client.ListOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ids(c.Items()); got != "a,b" {
		t.Errorf("expected only second result set a,b, got %s", got)
	}
	s := c.State()
	if !s.HasItems || s.Page != 1 || s.LastPage != 2 || s.TotalCount != 3 {
		t.Errorf("unexpected state %+v", s)
	}
	if !s.HasMore() {
		t.Error("expected more pages")
	}
}

func TestCollection_LoadMoreAppends(t *testing.T) {
	c := newTestCollection(twoPages())
	ctx := context.Background()

	c.FetchFirstPage(ctx, client.ListOptions{})
	if err := c.LoadMore(ctx, c.NextPage(client.ListOptions{Search: "x"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ids(c.Items()); got != "a,b,c" {
		t.Errorf("expected a,b,c, got %s", got)
	}
	s := c.State()
	if s.Page != 2 || s.Offset != 2 || s.HasMore() {
		t.Errorf("unexpected cursor %+v", s)
	}
}

func TestCollection_LoadMoreSamePageDuplicates(t *testing.T) {
	c := newTestCollection(twoPages())
	ctx := context.Background()

	c.LoadMore(ctx, client.ListOptions{Page: 2})
	c.LoadMore(ctx, client.ListOptions{Page: 2})

	if got := ids(c.Items()); got != "c,c" {
		t.Errorf("expected duplicated block c,c, got %s", got)
	}
}

func TestCollection_FetchErrorKeepsListAndClearsLoading(t *testing.T) {
	p := twoPages()
	c := newTestCollection(p)
	ctx := context.Background()
	c.FetchFirstPage(ctx, client.ListOptions{})

	p.err = errors.New("boom")
	err := c.FetchFirstPage(ctx, client.ListOptions{})
	if err == nil || !strings.Contains(err.Error(), "failed to load items") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if !errors.Is(err, p.err) {
		t.Errorf("expected cause in chain, got %v", err)
	}
	if c.Loading() {
		t.Error("expected loading false after failure")
	}
	if got := ids(c.Items()); got != "a,b" {
		t.Errorf("expected previous list kept, got %s", got)
	}

	if err := c.LoadMore(ctx, client.ListOptions{Page: 2}); err == nil {
		t.Error("expected LoadMore error")
	}
	if c.Loading() {
		t.Error("expected loading false after LoadMore failure")
	}
}

func TestCollection_LoadingDuringFetch(t *testing.T) {
	p := twoPages()
	p.blockOn = make(chan struct{})
	p.started = make(chan struct{})
	c := newTestCollection(p)

	done := make(chan error)
	go func() { done <- c.FetchFirstPage(context.Background(), client.ListOptions{}) }()

	<-p.started
	if !c.Loading() {
		t.Error("expected loading true while fetch is in flight")
	}
	close(p.blockOn)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Loading() {
		t.Error("expected loading false after fetch")
	}
}

func TestCollection_LoadingEndsWithNewList(t *testing.T) {
	p := twoPages()
	p.blockOn = make(chan struct{})
	p.started = make(chan struct{})
	c := newTestCollection(p)

	done := make(chan error)
	go func() { done <- c.FetchFirstPage(context.Background(), client.ListOptions{}) }()
	<-p.started

	// Any snapshot reporting the fetch finished must already hold its items.
	settled := make(chan State)
	go func() {
		for {
			if s := c.State(); !s.Loading {
				settled <- s
				return
			}
			runtime.Gosched()
		}
	}()

	close(p.blockOn)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := <-settled; s.Len != 2 || s.Page != 1 {
		t.Errorf("expected 2 items on page 1 once loading ended, got %d on page %d", s.Len, s.Page)
	}
}

func TestCollection_EmptyPageClearsHasItems(t *testing.T) {
	p := twoPages()
	c := newTestCollection(p)
	ctx := context.Background()
	c.FetchFirstPage(ctx, client.ListOptions{})

	p.pages[1] = &client.Page[item]{List: []item{}, Page: 1, LastPage: 1}
	c.FetchFirstPage(ctx, client.ListOptions{})
	if c.HasItems() {
		t.Error("expected HasItems false for empty page")
	}
}

func TestCollection_RemoveOneIsOptimistic(t *testing.T) {
	c := newTestCollection(twoPages())
	ctx := context.Background()
	c.FetchFirstPage(ctx, client.ListOptions{})

	release := make(chan struct{})
	c.RemoveOne(ctx, "a", func(ctx context.Context, id string) error {
		<-release
		return errors.New("server refused")
	})

	if got := ids(c.Items()); got != "b" {
		t.Errorf("expected a removed before delete completes, got %s", got)
	}
	close(release)

	err := c.Wait()
	if err == nil || !strings.Contains(err.Error(), "server refused") {
		t.Errorf("expected background failure from Wait, got %v", err)
	}
	if got := ids(c.Items()); got != "b" {
		t.Errorf("expected no rollback after failed delete, got %s", got)
	}
	if err := c.Wait(); err != nil {
		t.Errorf("expected failures reported once, got %v", err)
	}
}

func TestCollection_RemoveOneSurvivesCallerCancel(t *testing.T) {
	c := newTestCollection(twoPages())
	c.FetchFirstPage(context.Background(), client.ListOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var sawCancel bool
	c.RemoveOne(ctx, "b", func(ctx context.Context, id string) error {
		sawCancel = ctx.Err() != nil
		return nil
	})
	if err := c.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawCancel {
		t.Error("expected background delete detached from caller cancellation")
	}
}

func TestCollection_MutateOneReplacesInPlace(t *testing.T) {
	c := newTestCollection(twoPages())
	ctx := context.Background()
	c.FetchFirstPage(ctx, client.ListOptions{})

	got, err := c.MutateOne(ctx, "a", func(ctx context.Context) (item, error) {
		return item{"a", "alpha-2"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "alpha-2" {
		t.Errorf("expected returned record, got %+v", got)
	}
	items := c.Items()
	if ids(items) != "a,b" || items[0].Name != "alpha-2" {
		t.Errorf("expected in-place replacement, got %+v", items)
	}

	_, err = c.MutateOne(ctx, "b", func(ctx context.Context) (item, error) {
		return item{}, errors.New("rejected")
	})
	if err == nil {
		t.Error("expected error")
	}
	if b, _ := c.Find("b"); b.Name != "bravo" {
		t.Errorf("expected b unchanged after failed call, got %+v", b)
	}
}

func TestCollection_ViewsCachedAndInvalidated(t *testing.T) {
	var calls int
	p := twoPages()
	c := New(Config[item, view]{
		Name:  "items",
		Fetch: p.fetch,
		ID:    func(i item) string { return i.ID },
		View: func(i item) view {
			calls++
			return view{Label: i.Name}
		},
	})
	c.FetchFirstPage(context.Background(), client.ListOptions{})

	c.Views()
	c.Views()
	if calls != 2 {
		t.Errorf("expected views computed once per item, got %d calls", calls)
	}

	c.Update("a", func(i *item) { i.Name = "patched" })
	views := c.Views()
	if views[0].Label != "patched" {
		t.Errorf("expected recomputed view, got %+v", views[0])
	}
	if calls != 4 {
		t.Errorf("expected recompute after update, got %d calls", calls)
	}
}

func TestCollection_PrependAndSelect(t *testing.T) {
	c := newTestCollection(twoPages())
	c.FetchFirstPage(context.Background(), client.ListOptions{})
	c.Prepend(item{"z", "zulu"})

	if got := ids(c.Items()); got != "z,a,b" {
		t.Errorf("expected z first, got %s", got)
	}
	selected := c.Select(func(i item) bool { return strings.HasPrefix(i.Name, "b") || i.ID == "z" })
	if len(selected) != 2 || selected[0].Label != "ZULU" || selected[1].Label != "BRAVO" {
		t.Errorf("unexpected selection %+v", selected)
	}
	if c.ReplaceOne("missing", item{}) {
		t.Error("expected ReplaceOne false for unknown id")
	}
	if _, ok := c.Find("missing"); ok {
		t.Error("expected Find false for unknown id")
	}
}

func TestCollection_GetAndIDs(t *testing.T) {
	c := newTestCollection(twoPages())
	c.FetchFirstPage(context.Background(), client.ListOptions{})

	if got := strings.Join(c.IDs(), ","); got != "a,b" {
		t.Errorf("expected a,b, got %s", got)
	}
	if _, err := c.Get("nope"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
	if it, err := c.Get("b"); err != nil || it.Name != "bravo" {
		t.Errorf("expected bravo, got %+v, %v", it, err)
	}
}
