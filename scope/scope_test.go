package scope_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/javabind/index"
	"github.com/viant/javabind/scope"
	"github.com/viant/javabind/symbol"
)

// singleEntryScope builds an index.Scope containing exactly one
// short-name -> symbol binding, the scope of the symbol's own package, for
// isolated ScopeStack tests.
func singleEntryScope(sym *symbol.ClassSymbol) *index.Scope {
	idx := index.New()
	idx.Insert(sym)
	segs := strings.Split(sym.Name, "/")
	sc, _ := idx.LookupPackage(segs[:len(segs)-1])
	return sc
}

func TestResolve_SingleTypeImportBeatsSamePackageAndWildcard(t *testing.T) {
	srcFoo := &symbol.ClassSymbol{Name: "Foo", Location: symbol.Source}
	cpFoo := &symbol.ClassSymbol{Name: "p/Foo", Location: symbol.Classpath}

	top := index.New()
	top.Insert(srcFoo)
	top.Insert(cpFoo)

	s := scope.New(top)
	s.SetSamePackage(singleEntryScope(srcFoo))
	s.AddWildcard(scope.Wildcard{Scope: singleEntryScope(srcFoo), Origin: "root"})
	s.AddSingleTypeImport("Foo", cpFoo)

	res, ok := s.Resolve("Foo")
	assert.True(t, ok)
	assert.False(t, res.Ambiguous)
	assert.Same(t, cpFoo, res.Symbol)
}

func TestResolve_WildcardClashIsAmbiguous(t *testing.T) {
	top := index.New()
	s := scope.New(top)

	fooA := &symbol.ClassSymbol{Name: "a/Foo"}
	fooB := &symbol.ClassSymbol{Name: "b/Foo"}
	aScope := singleEntryScope(fooA)
	bScope := singleEntryScope(fooB)

	s.AddWildcard(scope.Wildcard{Scope: aScope, Origin: "a"})
	s.AddWildcard(scope.Wildcard{Scope: bScope, Origin: "b"})

	res, ok := s.Resolve("Foo")
	assert.True(t, ok)
	assert.True(t, res.Ambiguous)
}

func TestResolve_ImplicitRootLosesToExplicitWildcard(t *testing.T) {
	top := index.New()
	s := scope.New(top)

	explicitFoo := &symbol.ClassSymbol{Name: "explicit/Foo"}
	explicitScope := singleEntryScope(explicitFoo)

	rootFoo := &symbol.ClassSymbol{Name: "lang/Foo"}
	rootScope := singleEntryScope(rootFoo)

	s.AddWildcard(scope.Wildcard{Scope: explicitScope, Origin: "explicit"})
	s.SetImplicitRootImport(scope.Wildcard{Scope: rootScope, Origin: "lang"})

	res, ok := s.Resolve("Foo")
	assert.True(t, ok)
	assert.False(t, res.Ambiguous)
	assert.Same(t, explicitFoo, res.Symbol)
}

func TestResolve_MemberScopeBeatsSamePackage(t *testing.T) {
	top := index.New()
	s := scope.New(top)

	memberInner := &symbol.ClassSymbol{Name: "Inner"}
	memberScope := singleEntryScope(memberInner)

	pkgInner := &symbol.ClassSymbol{Name: "p/Inner"}
	pkgScope := singleEntryScope(pkgInner)

	s.PushMemberScope(memberScope)
	s.SetSamePackage(pkgScope)

	res, ok := s.Resolve("Inner")
	assert.True(t, ok)
	assert.Same(t, memberInner, res.Symbol)
}
