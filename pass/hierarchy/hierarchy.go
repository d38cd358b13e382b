// Package hierarchy implements HierarchyPass (spec.md §4.5): resolves each
// source class's superclass, superinterfaces, and type-parameter symbols
// through a lazy environment so forward references across compilation
// units are tolerated and cycles in the extends graph are caught.
package hierarchy

import (
	"errors"

	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/diag"
	"github.com/viant/javabind/env"
	"github.com/viant/javabind/pass/packagebound"
	"github.com/viant/javabind/symbol"
)

// Class is the HeaderBound-stage entity.
type Class struct {
	*packagebound.Class
	Super      *symbol.ClassSymbol
	Interfaces []*symbol.ClassSymbol
	TypeParams []*symbol.TyVarSymbol
}

// Result is the pass's output, keyed by canonical class name.
type Result struct {
	Classes map[string]*Class
	Env     *env.Lazy[string, *Class]
}

// RootProvider supplies the language's built-in root symbols that extends
// clauses implicitly target when absent (object root, enum root, annotation
// root interface); supplied by the caller because they are not source
// classes themselves (they typically live on the bootclasspath).
type RootProvider struct {
	ObjectRoot     *symbol.ClassSymbol
	EnumRoot       *symbol.ClassSymbol
	AnnotationRoot *symbol.ClassSymbol
}

// Pass resolves the HeaderBound stage for every PackageBound class.
type Pass struct {
	roots RootProvider
	sink  *diag.Sink
}

// New builds a HierarchyPass using roots for implicit extends targets.
func New(roots RootProvider, sink *diag.Sink) *Pass {
	return &Pass{roots: roots, sink: sink}
}

// Run resolves every class in pb via a lazy environment keyed by canonical
// name, with base falling back to a classpath-derived lookup for symbols
// not owned by this pipeline run (spec.md §4.5: "Produced through a lazy
// environment over all source symbols, with the classpath environment as
// the base").
func (p *Pass) Run(pb *packagebound.Result, base env.Env[string, *Class]) *Result {
	if base == nil {
		base = env.NewSimple[string, *Class](nil)
	}

	completers := make(map[string]env.Completer[string, *Class], len(pb.Classes))
	var lazy *env.Lazy[string, *Class]

	for name, cls := range pb.Classes {
		cls := cls
		completers[name] = func(_ string) (*Class, error) {
			return p.complete(cls, lazy)
		}
	}

	lazy = env.NewLazy(completers, base)

	res := &Result{Classes: make(map[string]*Class, len(pb.Classes)), Env: lazy}
	for name := range pb.Classes {
		v, ok, err := lazy.Get(name)
		if err != nil {
			var cycle *env.CycleError
			if errors.As(err, &cycle) {
				p.sink.Report(diag.CyclicHierarchy, name, 0, "class participates in a cyclic hierarchy")
			}
			continue
		}
		if ok {
			res.Classes[name] = v
		}
	}
	return res
}

func (p *Pass) complete(cls *packagebound.Class, lazy *env.Lazy[string, *Class]) (*Class, error) {
	out := &Class{Class: cls}

	switch cls.Kind {
	case symbol.INTERFACE:
		out.Super = p.roots.ObjectRoot
	case symbol.ENUM:
		out.Super = p.roots.EnumRoot
	case symbol.ANNOTATION:
		out.Super = p.roots.AnnotationRoot
		out.Interfaces = append(out.Interfaces, p.roots.AnnotationRoot)
	default:
		if decl := cls.Decl; decl.Extends != nil {
			sym, err := p.resolveRef(cls, decl.Extends, lazy)
			if err != nil {
				return nil, err
			}
			out.Super = sym
		} else {
			out.Super = p.roots.ObjectRoot
		}
	}

	if cls.Kind != symbol.ANNOTATION {
		for _, iface := range cls.Decl.Implements {
			sym, err := p.resolveRef(cls, iface, lazy)
			if err != nil {
				return nil, err
			}
			if sym != nil {
				out.Interfaces = append(out.Interfaces, sym)
			}
		}
	}

	for _, tp := range cls.Decl.TypeParams {
		out.TypeParams = append(out.TypeParams, &symbol.TyVarSymbol{Owner: cls.Symbol, Name: tp.Name})
	}

	return out, nil
}

// resolveRef resolves a TypeRef naming a class (extends/implements entries
// are always RefName per the language grammar) against cls's scope, driving
// the referent's own hierarchy completion through lazy when the referent is
// itself a source class in the same pipeline run.
func (p *Pass) resolveRef(cls *packagebound.Class, ref *ast.TypeRef, lazy *env.Lazy[string, *Class]) (*symbol.ClassSymbol, error) {
	if ref == nil || ref.Kind != ast.RefName || len(ref.NameSegments) == 0 {
		return nil, nil
	}
	name := ref.NameSegments[0].Name
	for _, seg := range ref.NameSegments[1:] {
		name += "." + seg.Name
	}

	result, ok := cls.Stack.Resolve(name)
	if !ok {
		p.sink.Report(diag.NotFound, cls.Symbol.Name, int(ref.Pos), "cannot resolve %q", name)
		return nil, nil
	}
	if result.Ambiguous {
		p.sink.Report(diag.Ambiguous, cls.Symbol.Name, int(ref.Pos), "%q is ambiguous among %v", name, result.Sources)
		return nil, nil
	}

	// If the resolved symbol is itself a source class in this pipeline
	// run, force its hierarchy completion now so cycles are detected
	// through the lazy environment's in-progress marker rather than left
	// implicit.
	if _, _, err := lazy.Get(result.Symbol.Name); err != nil {
		return nil, err
	}

	return result.Symbol, nil
}
