// ABOUTME: Uniform tabular face over every resource collection
// ABOUTME: Lets the CLI and console browse any list without knowing its type

package resources

import (
	"context"
	"errors"
	"time"

	"github.com/changexio/changex-console/internal/client"
	"github.com/changexio/changex-console/internal/collection"
)

// now is the clock used by views for relative ages.
var now = time.Now

// ErrUnsupported is returned when a table has no such action.
var ErrUnsupported = errors.New("action not supported for this list")

// Table is a resource list rendered as rows of strings.
type Table interface {
	Name() string
	Title() string
	Columns() []string
	Rows() [][]string
	IDs() []string
	// Records returns the display records, for JSON output.
	Records() any

	FetchFirstPage(ctx context.Context, opts client.ListOptions) error
	LoadMore(ctx context.Context, opts client.ListOptions) error
	NextPage(opts client.ListOptions) client.ListOptions
	State() collection.State

	CanRemove() bool
	Remove(ctx context.Context, id string) error
	CanToggle() bool
	Toggle(ctx context.Context, id string) error
	// Wait drains background removals and returns their failures.
	Wait() error
}

// table adapts a Collection to Table.
type table[T, V any] struct {
	*collection.Collection[T, V]
	name    string
	title   string
	columns []string
	row     func(V) []string
	remove  func(ctx context.Context, id string) error
	toggle  func(ctx context.Context, id string) error
}

func (t *table[T, V]) Name() string      { return t.name }
func (t *table[T, V]) Title() string     { return t.title }
func (t *table[T, V]) Columns() []string { return t.columns }
func (t *table[T, V]) Records() any      { return t.Views() }
func (t *table[T, V]) CanRemove() bool   { return t.remove != nil }
func (t *table[T, V]) CanToggle() bool   { return t.toggle != nil }

func (t *table[T, V]) Rows() [][]string {
	views := t.Views()
	rows := make([][]string, len(views))
	for i, v := range views {
		rows[i] = t.row(v)
	}
	return rows
}

func (t *table[T, V]) Remove(ctx context.Context, id string) error {
	if t.remove == nil {
		return ErrUnsupported
	}
	return t.remove(ctx, id)
}

func (t *table[T, V]) Toggle(ctx context.Context, id string) error {
	if t.toggle == nil {
		return ErrUnsupported
	}
	return t.toggle(ctx, id)
}
