// Package scope implements the ordered import/member/package/top-level
// lookup used during resolution (spec.md §4.3 ScopeStack).
package scope

import (
	"github.com/viant/javabind/index"
	"github.com/viant/javabind/symbol"
)

// Source tags where a wildcard binding came from, purely for diagnostics.
type Source int

const (
	FromPackage Source = iota
	FromTypeStaticMembers
)

// Wildcard is one on-demand import source: either a package wildcard
// ("import p.*") or a type's static-member wildcard.
type Wildcard struct {
	Scope  *index.Scope
	Source Source
	Origin string // package path or owning type name, for diagnostics
}

// Stack composes a unit's lookup chain in the priority order spec.md §4.3
// prescribes:
//  1. single-type imports
//  2. enclosing class members and inherited member classes
//  3. same-package classes
//  4. on-demand wildcard imports
//  5. implicit wildcard import of the language root namespace
//  6. top-level index (fully qualified lookups)
type Stack struct {
	singleType map[string]*symbol.ClassSymbol
	members    []*index.Scope // enclosing-class member scopes, innermost first
	samePkg    *index.Scope
	wildcards  []Wildcard
	implicit   Wildcard
	hasImplicit bool
	top        *index.TopLevelIndex
}

// New builds an empty Stack over the given top-level index.
func New(top *index.TopLevelIndex) *Stack {
	return &Stack{
		singleType: make(map[string]*symbol.ClassSymbol),
		top:        top,
	}
}

// AddSingleTypeImport registers an explicit "import p.Name;" binding.
// Single-type imports cannot clash with each other; that conflict must be
// diagnosed at import-index construction time, so callers should check for
// a pre-existing different binding via SingleTypeConflict before calling
// this.
func (s *Stack) AddSingleTypeImport(name string, sym *symbol.ClassSymbol) {
	s.singleType[name] = sym
}

// SingleTypeConflict reports whether name is already bound to a different
// symbol than sym.
func (s *Stack) SingleTypeConflict(name string, sym *symbol.ClassSymbol) (*symbol.ClassSymbol, bool) {
	existing, ok := s.singleType[name]
	if ok && !symbol.Equal(existing, sym) {
		return existing, true
	}
	return nil, false
}

// PushMemberScope adds an enclosing-class member scope, innermost first
// (called once per enclosing level while walking outward).
func (s *Stack) PushMemberScope(sc *index.Scope) {
	s.members = append(s.members, sc)
}

// SetSamePackage sets the same-package class scope (step 3).
func (s *Stack) SetSamePackage(sc *index.Scope) { s.samePkg = sc }

// AddWildcard registers an on-demand import (step 4). Order of
// registration does not affect correctness: all step-4 wildcards are
// checked together and a clash is Ambiguous regardless of order.
func (s *Stack) AddWildcard(w Wildcard) { s.wildcards = append(s.wildcards, w) }

// SetImplicitRootImport registers the implicit wildcard import of the
// language root namespace (step 5). Per the Open Question decision in
// SPEC_FULL.md, this is consulted only after step 4's explicit wildcards,
// and a clash against an explicit wildcard resolves silently to the
// explicit one rather than raising Ambiguous.
func (s *Stack) SetImplicitRootImport(w Wildcard) {
	s.implicit = w
	s.hasImplicit = true
}

// Result is a scope lookup outcome.
type Result struct {
	Symbol    *symbol.ClassSymbol
	Ambiguous bool
	Sources   []string // diagnostic detail when Ambiguous
}

// Resolve looks up name through the full priority chain.
func (s *Stack) Resolve(name string) (Result, bool) {
	if sym, ok := s.singleType[name]; ok {
		return Result{Symbol: sym}, true
	}

	for _, m := range s.members {
		if sym, ok := m.Lookup(name); ok {
			return Result{Symbol: sym}, true
		}
	}

	if s.samePkg != nil {
		if sym, ok := s.samePkg.Lookup(name); ok {
			return Result{Symbol: sym}, true
		}
	}

	if res, ok := s.resolveWildcards(name); ok {
		return res, true
	}

	if s.hasImplicit {
		if sym, ok := s.implicit.Scope.Lookup(name); ok {
			return Result{Symbol: sym}, true
		}
	}

	if s.top != nil {
		if r, ok := s.top.Lookup(splitDotted(name)); ok && len(r.Remaining) == 0 {
			return Result{Symbol: r.Symbol}, true
		}
	}

	return Result{}, false
}

// resolveWildcards implements step 4: ambiguous-on-clash among explicit
// on-demand imports (spec.md §4.3).
func (s *Stack) resolveWildcards(name string) (Result, bool) {
	var found *symbol.ClassSymbol
	var sources []string
	for _, w := range s.wildcards {
		if sym, ok := w.Scope.Lookup(name); ok {
			if found != nil && !symbol.Equal(found, sym) {
				sources = append(sources, w.Origin)
				continue
			}
			if found == nil {
				found = sym
				sources = append(sources, w.Origin)
			}
		}
	}
	if found == nil {
		return Result{}, false
	}
	if len(sources) > 1 {
		return Result{Ambiguous: true, Sources: sources}, true
	}
	return Result{Symbol: found}, true
}

func splitDotted(name string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			segs = append(segs, name[start:i])
			start = i + 1
		}
	}
	segs = append(segs, name[start:])
	return segs
}
