package classfile

import (
	"context"
	"fmt"

	"github.com/viant/javabind/index"
	"github.com/viant/javabind/symbol"
)

// Binder constructs lazy BytecodeBoundClass entries from a sequence of
// archive locations and registers them with a TopLevelIndex, in the
// priority order the caller invokes Bind (spec.md §2.5, §4.2: "Callers
// must insert in priority order: all source symbols first, then boot,
// then classpath").
type Binder struct {
	reader *Reader
	table  *symbol.Table
	byName map[string]*BytecodeBoundClass
}

// NewBinder builds a Binder sharing table for symbol interning, so
// classpath-derived symbols compare equal to any source symbol the caller
// has already interned under the same canonical name (a name collision
// across categories is resolved later by TopLevelIndex's first-insert-wins
// rule, not here).
func NewBinder(reader *Reader, table *symbol.Table) *Binder {
	return &Binder{reader: reader, table: table, byName: make(map[string]*BytecodeBoundClass)}
}

// Bind reads every archive in urls (in order) at the given priority
// location and inserts each resulting symbol into idx.
func (b *Binder) Bind(ctx context.Context, idx *index.TopLevelIndex, urls []string, loc symbol.Location) error {
	for _, url := range urls {
		classes, err := b.reader.ReadArchive(ctx, url, loc, b.table)
		if err != nil {
			return fmt.Errorf("classfile: binding %s: %w", url, err)
		}
		for _, c := range classes {
			if _, exists := b.byName[c.Symbol.Name]; !exists {
				b.byName[c.Symbol.Name] = c
			}
			idx.Insert(c.Symbol)
		}
	}
	return nil
}

// Lookup returns the decoded view for a previously bound class symbol.
func (b *Binder) Lookup(name string) (*BytecodeBoundClass, bool) {
	c, ok := b.byName[name]
	return c, ok
}
