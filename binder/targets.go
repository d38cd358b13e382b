package binder

import (
	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/classfile"
	"github.com/viant/javabind/pass/typeanno"
	"github.com/viant/javabind/pass/typepass"
	"github.com/viant/javabind/symbol"
)

// newTargetProvider builds a TargetProvider backed by tp's source classes
// and cp's classpath views: a source annotation type's own Decl.Annos, or
// a classpath entry's retention-visible AnnotationRec list.
func newTargetProvider(tp *typepass.Result, cp *classfile.Binder) typeanno.TargetProvider {
	return &provider{tp: tp, cp: cp}
}

type provider struct {
	tp *typepass.Result
	cp *classfile.Binder
}

func (p *provider) Targets(annotationType *symbol.ClassSymbol) ([]typeanno.Target, bool) {
	if cls, ok := p.tp.Classes[annotationType.Name]; ok {
		return targetsFromAnnos(cls.Decl.Annos)
	}
	if view, ok := p.cp.Lookup(annotationType.Name); ok {
		return targetsFromRecs(view.Annotations())
	}
	return nil, false
}

// targetsFromAnnos scans a source annotation type's own declaration
// annotations for "@Target(...)"; only the single-value shorthand
// (@Target(ElementType.X)) is recognized — the tree-sitter expression
// builder does not model array-initializer element values, so an explicit
// "@Target({A, B})" list is reported as unresolved (ok=false) rather than
// guessed at.
func targetsFromAnnos(annos []*ast.Annotation) ([]typeanno.Target, bool) {
	for _, a := range annos {
		if a.TypeName != "Target" && a.TypeName != "java.lang.annotation.Target" {
			continue
		}
		val, ok := a.Args["value"]
		if !ok {
			return nil, false
		}
		name, ok := val.(ast.NameExpr)
		if !ok {
			return nil, false
		}
		t, ok := elementTypeTarget(name.Name)
		if !ok {
			return nil, false
		}
		return []typeanno.Target{t}, true
	}
	return nil, false
}

func targetsFromRecs(recs []classfile.AnnotationRec) ([]typeanno.Target, bool) {
	for _, r := range recs {
		if r.Type != "java/lang/annotation/Target" {
			continue
		}
		raw, ok := r.Args["value"]
		if !ok {
			return nil, false
		}
		name, ok := raw.(string)
		if !ok {
			return nil, false
		}
		t, ok := elementTypeTarget(name)
		if !ok {
			return nil, false
		}
		return []typeanno.Target{t}, true
	}
	return nil, false
}

func elementTypeTarget(name string) (typeanno.Target, bool) {
	switch name {
	case "TYPE_USE":
		return typeanno.TargetTypeUse, true
	case "TYPE", "FIELD", "METHOD", "PARAMETER", "CONSTRUCTOR", "ANNOTATION_TYPE", "PACKAGE", "LOCAL_VARIABLE":
		return typeanno.TargetDeclaration, true
	default:
		return typeanno.TargetDeclaration, false
	}
}
