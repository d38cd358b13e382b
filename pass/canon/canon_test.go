package canon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/diag"
	"github.com/viant/javabind/index"
	"github.com/viant/javabind/pass/canon"
	"github.com/viant/javabind/pass/constant"
	"github.com/viant/javabind/pass/hierarchy"
	"github.com/viant/javabind/pass/packagebound"
	"github.com/viant/javabind/pass/sourcebound"
	"github.com/viant/javabind/pass/typeanno"
	"github.com/viant/javabind/pass/typepass"
	"github.com/viant/javabind/symbol"
	"github.com/viant/javabind/types"
)

type fakeTargets map[string][]typeanno.Target

func (f fakeTargets) Targets(sym *symbol.ClassSymbol) ([]typeanno.Target, bool) {
	t, ok := f[sym.Name]
	return t, ok
}

func roots() hierarchy.RootProvider {
	return hierarchy.RootProvider{
		ObjectRoot:     &symbol.ClassSymbol{Name: "lang/Object", Location: symbol.Boot},
		EnumRoot:       &symbol.ClassSymbol{Name: "lang/Enum", Location: symbol.Boot},
		AnnotationRoot: &symbol.ClassSymbol{Name: "lang/annotation/Annotation", Location: symbol.Boot},
	}
}

func buildTypePass(t *testing.T, table *symbol.Table, unit *ast.CompUnit) *typepass.Result {
	t.Helper()
	idx := index.New()
	sb := sourcebound.New(table, idx).Run([]*ast.CompUnit{unit})
	sink := diag.NewSink()
	pb := packagebound.New(idx, sink).Run(sb)
	hr := hierarchy.New(roots(), sink).Run(pb, nil)
	return typepass.New(hr, sink).Run()
}

// A field typed as the short name "I" resolved through Outer's own member
// scope is rewritten to the two-segment canonical form Outer / Outer$I,
// with an empty (non-generic) outer segment.
func TestPass_Run_ExpandsImplicitEnclosingSegment(t *testing.T) {
	inner := &ast.TypeDecl{Kind: ast.DeclClass, Name: "I"}
	field := &ast.FieldDecl{
		Name: "v",
		Type: &ast.TypeRef{Kind: ast.RefName, NameSegments: []ast.NameSegment{{Name: "I"}}},
	}
	outer := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Outer", NestedTypes: []*ast.TypeDecl{inner}, Fields: []*ast.FieldDecl{field}}
	unit := &ast.CompUnit{SourceFile: "u.java", Types: []*ast.TypeDecl{outer}}

	table := symbol.NewTable()
	tp := buildTypePass(t, table, unit)

	res := canon.New(table, nil, nil, nil).Run(tp)
	cls := res.Classes["Outer"]
	assert.Len(t, cls.Fields, 1)

	ct := cls.Fields[0].Type
	assert.Equal(t, types.ClassType, ct.Variant)
	assert.Len(t, ct.Segments, 2)
	assert.Equal(t, "Outer", ct.Segments[0].Sym.Name)
	assert.Empty(t, ct.Segments[0].TypeArgs)
	assert.Equal(t, "Outer$I", ct.Segments[1].Sym.Name)
}

// A two-segment textual reference that already named both levels keeps its
// type arguments attached to the declaring segment.
func TestPass_Run_PreservesTypeArgsOnDeclaringSegment(t *testing.T) {
	inner := &ast.TypeDecl{Kind: ast.DeclClass, Name: "I"}
	outer := &ast.TypeDecl{
		Kind:        ast.DeclClass,
		Name:        "Outer",
		TypeParams:  []*ast.TypeParamDecl{{Name: "T"}},
		NestedTypes: []*ast.TypeDecl{inner},
	}
	field := &ast.FieldDecl{
		Name: "v",
		Type: &ast.TypeRef{
			Kind: ast.RefName,
			NameSegments: []ast.NameSegment{
				{Name: "Outer", Args: []*ast.TypeRef{{Kind: ast.RefPrimitive, Prim: "int"}}},
				{Name: "I"},
			},
		},
	}
	user := &ast.TypeDecl{Kind: ast.DeclClass, Name: "User", Fields: []*ast.FieldDecl{field}}
	unit := &ast.CompUnit{SourceFile: "u.java", Types: []*ast.TypeDecl{outer, user}}

	table := symbol.NewTable()
	tp := buildTypePass(t, table, unit)

	res := canon.New(table, nil, nil, nil).Run(tp)
	ct := res.Classes["User"].Fields[0].Type
	assert.Len(t, ct.Segments, 2)
	assert.Equal(t, "Outer", ct.Segments[0].Sym.Name)
	assert.Len(t, ct.Segments[0].TypeArgs, 1)
	assert.Equal(t, "Outer$I", ct.Segments[1].Sym.Name)
	assert.Empty(t, ct.Segments[1].TypeArgs)
}

// Array and wildcard element types are canonicalized too.
func TestPass_Run_CanonicalizesThroughArrayAndWildcard(t *testing.T) {
	inner := &ast.TypeDecl{Kind: ast.DeclClass, Name: "I"}
	field := &ast.FieldDecl{
		Name: "vs",
		Type: &ast.TypeRef{
			Kind:    ast.RefArray,
			Element: &ast.TypeRef{Kind: ast.RefName, NameSegments: []ast.NameSegment{{Name: "I"}}},
		},
	}
	outer := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Outer", NestedTypes: []*ast.TypeDecl{inner}, Fields: []*ast.FieldDecl{field}}
	unit := &ast.CompUnit{SourceFile: "u.java", Types: []*ast.TypeDecl{outer}}

	table := symbol.NewTable()
	tp := buildTypePass(t, table, unit)

	res := canon.New(table, nil, nil, nil).Run(tp)
	ft := res.Classes["Outer"].Fields[0].Type
	assert.Equal(t, types.Array, ft.Variant)
	assert.Equal(t, types.ClassType, ft.Element.Variant)
	assert.Equal(t, "Outer$I", ft.Element.Segments[len(ft.Element.Segments)-1].Sym.Name)
}

// A final static int field's evaluated constant reaches the Bound-stage
// FieldBinding as Value, not just its raw initializer tree.
func TestPass_Run_PopulatesConstantFieldValue(t *testing.T) {
	field := &ast.FieldDecl{
		Name:        "MAX",
		Type:        &ast.TypeRef{Kind: ast.RefPrimitive, Prim: "int"},
		Modifiers:   ast.ModFinal | ast.ModStatic,
		Initializer: ast.LiteralExpr{Kind: ast.LitInt, Int: 100},
	}
	decl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Limits", Fields: []*ast.FieldDecl{field}}
	unit := &ast.CompUnit{SourceFile: "u.java", Types: []*ast.TypeDecl{decl}}

	table := symbol.NewTable()
	tp := buildTypePass(t, table, unit)

	cp := constant.New(tp, nil, nil, diag.NewSink())
	cr := cp.Run()

	res := canon.New(table, cr, nil, cp).Run(tp)
	fb := res.Classes["Limits"].Fields[0]
	if assert.NotNil(t, fb.Value) {
		assert.Equal(t, types.Int, fb.Value.Kind)
		assert.Equal(t, int64(100), fb.Value.Wide)
	}
}

// An annotation present on a declaration- and type-use position is split
// the same way at the Bound stage, with its argument expression folded to
// the constant it evaluates to.
func TestPass_Run_SplitsAnnotationsAndFoldsArgs(t *testing.T) {
	annoDecl := &ast.TypeDecl{Kind: ast.DeclAnnotation, Name: "Anno"}
	field := &ast.FieldDecl{
		Name: "v",
		Type: &ast.TypeRef{Kind: ast.RefPrimitive, Prim: "int"},
		Annos: []*ast.Annotation{{
			TypeName: "Anno",
			Args:     map[string]ast.Expr{"value": ast.LiteralExpr{Kind: ast.LitInt, Int: 7}},
		}},
	}
	testDecl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Test", Fields: []*ast.FieldDecl{field}}
	unit := &ast.CompUnit{SourceFile: "u.java", Types: []*ast.TypeDecl{annoDecl, testDecl}}

	table := symbol.NewTable()
	tp := buildTypePass(t, table, unit)

	sink := diag.NewSink()
	cp := constant.New(tp, nil, nil, sink)
	cr := cp.Run()
	ta := typeanno.New(fakeTargets{"Anno": {typeanno.TargetDeclaration, typeanno.TargetTypeUse}}, sink).Run(tp)

	res := canon.New(table, cr, ta, cp).Run(tp)
	fb := res.Classes["Test"].Fields[0]

	if assert.Len(t, fb.DeclAnnos, 1) {
		assert.Equal(t, "Anno", fb.DeclAnnos[0].TypeName)
		assert.Equal(t, int64(7), fb.DeclAnnos[0].Args["value"].Wide)
	}
	if assert.Len(t, fb.TypeAnnos, 1) {
		assert.Equal(t, int64(7), fb.TypeAnnos[0].Args["value"].Wide)
	}
}
