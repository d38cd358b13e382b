// Package sourcebound implements SourceBoundPass (spec.md §4.4): the first
// stage of the pipeline, allocating a ClassSymbol for every top-level and
// nested type declaration in a set of parsed units and registering them with
// a TopLevelIndex, the way inspector/java/inspector.go's InspectSource walks
// a syntax tree once to seed its own graph.
package sourcebound

import (
	"strings"

	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/index"
	"github.com/viant/javabind/symbol"
)

// Class is the SourceBound-stage entity: a class symbol plus everything
// known about it without resolving any name (spec.md §3 stage table row
// "SourceBound").
type Class struct {
	Symbol    *symbol.ClassSymbol
	Decl      *ast.TypeDecl
	Unit      *ast.CompUnit
	Enclosing *Class // nil for a top-level class
	Members   map[string]*Class
	Kind      symbol.Kind
	Access    symbol.AccessFlags
}

// Result is the pass's output: every allocated class keyed by canonical
// name, plus the per-unit membership used by PackageBoundPass.
type Result struct {
	Classes   map[string]*Class
	UnitOwned map[*ast.CompUnit][]*Class
}

// Pass walks compilation units and allocates symbols into idx.
type Pass struct {
	table *symbol.Table
	idx   *index.TopLevelIndex
}

// New builds a SourceBoundPass sharing table (for symbol interning) and idx
// (for registration) with the rest of the pipeline.
func New(table *symbol.Table, idx *index.TopLevelIndex) *Pass {
	return &Pass{table: table, idx: idx}
}

// Run walks every unit, in order, allocating and registering class symbols.
// Callers insert source symbols before boot/classpath symbols, per spec.md
// §4.2's priority-order requirement.
func (p *Pass) Run(units []*ast.CompUnit) *Result {
	res := &Result{
		Classes:   make(map[string]*Class),
		UnitOwned: make(map[*ast.CompUnit][]*Class),
	}
	for _, unit := range units {
		prefix := packagePrefix(unit.Package)

		if unit.Package != nil && len(unit.Package.Annos) > 0 {
			pkgInfo := &ast.TypeDecl{
				Kind: ast.DeclInterface,
				Name: symbol.PackageInfoLeaf,
				Pos:  unit.Package.Pos,
			}
			p.allocate(pkgInfo, unit, prefix, nil, res)
		}

		for _, td := range unit.Types {
			p.allocate(td, unit, prefix, nil, res)
		}
	}
	return res
}

func (p *Pass) allocate(decl *ast.TypeDecl, unit *ast.CompUnit, prefix string, enclosing *Class, res *Result) *Class {
	name := decl.Name
	canonical := name
	if enclosing != nil {
		canonical = enclosing.Symbol.Name + "$" + name
	} else if prefix != "" {
		canonical = prefix + "/" + name
	}

	sym := p.table.Intern(canonical, symbol.Source)
	kind := declKind(decl.Kind)

	access := accessFlags(decl.Modifiers)
	// Types declared inside an interface or annotation are implicitly
	// public (spec.md §4.4).
	if enclosing != nil && (enclosing.Kind == symbol.INTERFACE || enclosing.Kind == symbol.ANNOTATION) {
		access |= symbol.FlagPublic
	}
	if decl.Name == symbol.PackageInfoLeaf {
		access |= symbol.FlagSynthetic
	}
	for _, a := range decl.Annos {
		if isDeprecatedAnno(a.TypeName) {
			access |= symbol.FlagDeprecated
		}
	}

	cls := &Class{
		Symbol:    sym,
		Decl:      decl,
		Unit:      unit,
		Enclosing: enclosing,
		Members:   make(map[string]*Class),
		Kind:      kind,
		Access:    access,
	}

	p.idx.Insert(sym)
	res.Classes[canonical] = cls
	res.UnitOwned[unit] = append(res.UnitOwned[unit], cls)
	if enclosing != nil {
		enclosing.Members[name] = cls
	}

	for _, nested := range decl.NestedTypes {
		p.allocate(nested, unit, prefix, cls, res)
	}

	return cls
}

func packagePrefix(pkg *ast.PkgDecl) string {
	if pkg == nil || len(pkg.Segments) == 0 {
		return ""
	}
	return strings.Join(pkg.Segments, "/")
}

func declKind(k ast.DeclKind) symbol.Kind {
	switch k {
	case ast.DeclInterface:
		return symbol.INTERFACE
	case ast.DeclEnum:
		return symbol.ENUM
	case ast.DeclAnnotation:
		return symbol.ANNOTATION
	default:
		return symbol.CLASS
	}
}

func accessFlags(m ast.Modifier) symbol.AccessFlags {
	var f symbol.AccessFlags
	if m&ast.ModPublic != 0 {
		f |= symbol.FlagPublic
	}
	if m&ast.ModPrivate != 0 {
		f |= symbol.FlagPrivate
	}
	if m&ast.ModProtected != 0 {
		f |= symbol.FlagProtected
	}
	if m&ast.ModStatic != 0 {
		f |= symbol.FlagStatic
	}
	if m&ast.ModFinal != 0 {
		f |= symbol.FlagFinal
	}
	if m&ast.ModAbstract != 0 {
		f |= symbol.FlagAbstract
	}
	return f
}

func isDeprecatedAnno(typeName string) bool {
	return typeName == "Deprecated" || strings.HasSuffix(typeName, ".Deprecated") || typeName == "java/lang/Deprecated"
}
