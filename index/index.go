// Package index implements the TopLevelIndex: a global package-segment trie
// mapping short names to class symbols, populated in priority order
// (sources, then boot, then classpath) — spec.md §4.2.
package index

import (
	"strings"

	"github.com/viant/javabind/symbol"
)

// Scope maps a short name to a class symbol within one lexical region
// (spec.md glossary). It is also the node-local mapping used by
// TopLevelIndex at each trie level.
type Scope struct {
	entries map[string]*symbol.ClassSymbol
}

func newScope() *Scope { return &Scope{entries: make(map[string]*symbol.ClassSymbol)} }

// NewScope builds a Scope directly from a short-name-to-symbol mapping,
// for callers (e.g. PackageBoundPass building a class's member scope) that
// are not walking a TopLevelIndex insertion path.
func NewScope(entries map[string]*symbol.ClassSymbol) *Scope {
	s := newScope()
	for name, sym := range entries {
		s.entries[name] = sym
	}
	return s
}

// Lookup returns the symbol bound to name in this scope.
func (s *Scope) Lookup(name string) (*symbol.ClassSymbol, bool) {
	sym, ok := s.entries[name]
	return sym, ok
}

// insert records name -> sym, first-insert-wins (spec.md §4.2).
func (s *Scope) insert(name string, sym *symbol.ClassSymbol) {
	if _, exists := s.entries[name]; exists {
		return
	}
	s.entries[name] = sym
}

// Names returns every short name bound in this scope, for wildcard-import
// expansion (spec.md §4.3).
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.entries))
	for n := range s.entries {
		names = append(names, n)
	}
	return names
}

type node struct {
	scope    *Scope
	children map[string]*node
}

func newNode() *node {
	return &node{scope: newScope(), children: make(map[string]*node)}
}

// TopLevelIndex is the trie keyed by package segments described in
// spec.md §4.2.
type TopLevelIndex struct {
	root *node
}

// New creates an empty TopLevelIndex.
func New() *TopLevelIndex {
	return &TopLevelIndex{root: newNode()}
}

// Insert decomposes sym's canonical name into a package path and an
// outermost short name, then records it at that package's scope.
// Duplicate short-name insertions at the same package are dropped
// silently (first insert wins); callers are responsible for calling
// Insert in priority order: sources, then boot, then classpath.
func (idx *TopLevelIndex) Insert(sym *symbol.ClassSymbol) {
	pkgSegments, outerName := splitCanonical(sym.Name)
	n := idx.ensurePath(pkgSegments)
	n.scope.insert(outerName, sym)
}

// ensurePath walks/creates the trie path for pkgSegments and returns its
// node.
func (idx *TopLevelIndex) ensurePath(pkgSegments []string) *node {
	n := idx.root
	for _, seg := range pkgSegments {
		child, ok := n.children[seg]
		if !ok {
			child = newNode()
			n.children[seg] = child
		}
		n = child
	}
	return n
}

// LookupPackage returns the scope at the given package path, or false if no
// class has ever been inserted under that package or any of its
// sub-packages. The root (empty) package is always found.
func (idx *TopLevelIndex) LookupPackage(segments []string) (*Scope, bool) {
	n := idx.root
	for _, seg := range segments {
		child, ok := n.children[seg]
		if !ok {
			return nil, false
		}
		n = child
	}
	return n.scope, true
}

// Result is the outcome of a dotted-name walk: the symbol resolved so far
// and any trailing segments not yet consumed (member names that require a
// bound hierarchy to resolve, per spec.md §4.2).
type Result struct {
	Symbol    *symbol.ClassSymbol
	Remaining []string
}

// Lookup resolves a dotted name by walking segments: leading segments are
// tried as a package prefix against top-level scopes, longest prefix first,
// and once a class is found, remaining segments are returned unresolved for
// the caller to walk as member lookups (spec.md §4.2).
func (idx *TopLevelIndex) Lookup(segments []string) (Result, bool) {
	// Try package prefixes from the longest (all but the last segment) down
	// to the empty prefix; Java package/class name overlap (e.g. "a.b.C"
	// where "a.b" is the package) means the longest prefix where a
	// top-level class has been inserted, using the segment immediately after
	// that prefix as the class short name, is the match.
	for pkgLen := len(segments) - 1; pkgLen >= 0; pkgLen-- {
		pkgSegs := segments[:pkgLen]
		scope, ok := idx.LookupPackage(pkgSegs)
		if !ok {
			continue
		}
		shortName := segments[pkgLen]
		sym, ok := scope.Lookup(shortName)
		if !ok {
			continue
		}
		return Result{Symbol: sym, Remaining: append([]string(nil), segments[pkgLen+1:]...)}, true
	}
	return Result{}, false
}

// splitCanonical splits a canonical binary name "pkg/seg/Outer$Inner" into
// its package segments and outermost short name.
func splitCanonical(name string) (pkgSegments []string, outerName string) {
	slash := strings.LastIndex(name, "/")
	pkgPath := ""
	classPath := name
	if slash >= 0 {
		pkgPath = name[:slash]
		classPath = name[slash+1:]
	}
	if pkgPath != "" {
		pkgSegments = strings.Split(pkgPath, "/")
	}
	outerName = strings.SplitN(classPath, "$", 2)[0]
	return
}
