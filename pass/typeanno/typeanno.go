// Package typeanno implements TypeAnnotationDisambiguator (spec.md §4.8):
// splits the annotations on a type-or-declaration position into
// declaration-annotations and type-annotations according to the
// annotation type's declared @Target meta-annotation.
package typeanno

import (
	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/diag"
	"github.com/viant/javabind/pass/typepass"
	"github.com/viant/javabind/symbol"
)

// Target enumerates the meta-annotation target kinds relevant here; only
// the two this pass discriminates between are modeled, matching the
// spec's "declaration-target only / type-use target only / both / neither"
// four-way split.
type Target int

const (
	TargetDeclaration Target = iota
	TargetTypeUse
)

// TargetProvider resolves an annotation type symbol's declared targets.
// An annotation type whose targets cannot be determined (e.g. unresolved)
// should return ok=false.
type TargetProvider interface {
	Targets(annotationType *symbol.ClassSymbol) (targets []Target, ok bool)
}

// Split is the disambiguated result for one annotated position.
type Split struct {
	Declaration []*ast.Annotation
	TypeUse     []*ast.Annotation
}

// Pass disambiguates annotation placement for every field and method in a
// typepass.Result.
type Pass struct {
	targets TargetProvider
	sink    *diag.Sink
}

// New builds a TypeAnnotationDisambiguator using targets to resolve each
// annotation type's @Target meta-annotation.
func New(targets TargetProvider, sink *diag.Sink) *Pass {
	return &Pass{targets: targets, sink: sink}
}

// FieldSplit is a field's disambiguated annotations.
type FieldSplit struct {
	Field *typepass.FieldBinding
	Split Split
}

// MethodSplit is a method's disambiguated annotations (applied to the
// method's own declaration-position annotations; parameter- and
// return-type annotations are carried on the corresponding ast.TypeRef and
// split the same way by calling Disambiguate directly).
type MethodSplit struct {
	Method *typepass.MethodBinding
	Split  Split
}

// Result is the pass's output, keyed by canonical class name.
type Result struct {
	Fields  map[string][]FieldSplit
	Methods map[string][]MethodSplit
}

// Run disambiguates every field's and method's declaration annotations
// across tp's classes.
func (p *Pass) Run(tp *typepass.Result) *Result {
	res := &Result{Fields: make(map[string][]FieldSplit), Methods: make(map[string][]MethodSplit)}
	for name, cls := range tp.Classes {
		for _, fb := range cls.Fields {
			res.Fields[name] = append(res.Fields[name], FieldSplit{Field: fb, Split: p.Disambiguate(cls, fb.RawAnnos, fb.Decl.Pos)})
		}
		for _, mb := range cls.Methods {
			res.Methods[name] = append(res.Methods[name], MethodSplit{Method: mb, Split: p.Disambiguate(cls, mb.RawAnnos, mb.Decl.Pos)})
		}
	}
	return res
}

// Disambiguate partitions annos into declaration- and type-annotations,
// preserving source order within each bucket (spec.md §4.8). cls supplies
// the scope the annotation type names are resolved against.
func (p *Pass) Disambiguate(cls *typepass.Class, annos []*ast.Annotation, pos ast.Pos) Split {
	var split Split
	for _, a := range annos {
		targets, ok := p.resolveTargets(cls, a)
		if !ok {
			p.sink.Report(diag.NotFound, a.TypeName, int(pos), "annotation type %q could not be resolved; defaulting to declaration-annotation", a.TypeName)
			split.Declaration = append(split.Declaration, a)
			continue
		}

		hasDecl, hasType := false, false
		for _, t := range targets {
			switch t {
			case TargetDeclaration:
				hasDecl = true
			case TargetTypeUse:
				hasType = true
			}
		}

		switch {
		case hasType && hasDecl:
			split.Declaration = append(split.Declaration, a)
			split.TypeUse = append(split.TypeUse, a)
		case hasType:
			split.TypeUse = append(split.TypeUse, a)
		case hasDecl:
			split.Declaration = append(split.Declaration, a)
		default:
			// Neither target present: position-dependent fallback to
			// declaration-annotation (spec.md §4.8).
			split.Declaration = append(split.Declaration, a)
		}
	}
	return split
}

func (p *Pass) resolveTargets(cls *typepass.Class, a *ast.Annotation) ([]Target, bool) {
	if p.targets == nil {
		return nil, false
	}
	result, ok := cls.Stack.Resolve(a.TypeName)
	if !ok || result.Ambiguous {
		return nil, false
	}
	return p.targets.Targets(result.Symbol)
}
