package hierarchy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/diag"
	"github.com/viant/javabind/index"
	"github.com/viant/javabind/pass/hierarchy"
	"github.com/viant/javabind/pass/packagebound"
	"github.com/viant/javabind/pass/sourcebound"
	"github.com/viant/javabind/symbol"
)

func roots() hierarchy.RootProvider {
	return hierarchy.RootProvider{
		ObjectRoot:     &symbol.ClassSymbol{Name: "lang/Object", Location: symbol.Boot},
		EnumRoot:       &symbol.ClassSymbol{Name: "lang/Enum", Location: symbol.Boot},
		AnnotationRoot: &symbol.ClassSymbol{Name: "lang/annotation/Annotation", Location: symbol.Boot},
	}
}

func nameRef(name string) *ast.TypeRef {
	return &ast.TypeRef{Kind: ast.RefName, NameSegments: []ast.NameSegment{{Name: name}}}
}

func TestPass_Run_ResolvesExplicitSuperclass(t *testing.T) {
	idx := index.New()
	table := symbol.NewTable()

	baseDecl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Base"}
	childDecl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Child", Extends: nameRef("Base")}
	unit := &ast.CompUnit{SourceFile: "u.java", Types: []*ast.TypeDecl{baseDecl, childDecl}}

	sb := sourcebound.New(table, idx).Run([]*ast.CompUnit{unit})
	pb := packagebound.New(idx, diag.NewSink()).Run(sb)

	sink := diag.NewSink()
	hr := hierarchy.New(roots(), sink).Run(pb, nil)

	child := hr.Classes["Child"]
	assert.NotNil(t, child.Super)
	assert.Equal(t, "Base", child.Super.Name)
	assert.False(t, sink.HasErrors())
}

func TestPass_Run_ClassWithoutExtendsGetsObjectRoot(t *testing.T) {
	idx := index.New()
	table := symbol.NewTable()
	decl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Plain"}
	unit := &ast.CompUnit{SourceFile: "u.java", Types: []*ast.TypeDecl{decl}}

	sb := sourcebound.New(table, idx).Run([]*ast.CompUnit{unit})
	pb := packagebound.New(idx, diag.NewSink()).Run(sb)
	hr := hierarchy.New(roots(), diag.NewSink()).Run(pb, nil)

	assert.Equal(t, "lang/Object", hr.Classes["Plain"].Super.Name)
}

func TestPass_Run_InterfaceHasNoExplicitExtends(t *testing.T) {
	idx := index.New()
	table := symbol.NewTable()
	decl := &ast.TypeDecl{Kind: ast.DeclInterface, Name: "Iface"}
	unit := &ast.CompUnit{SourceFile: "u.java", Types: []*ast.TypeDecl{decl}}

	sb := sourcebound.New(table, idx).Run([]*ast.CompUnit{unit})
	pb := packagebound.New(idx, diag.NewSink()).Run(sb)
	hr := hierarchy.New(roots(), diag.NewSink()).Run(pb, nil)

	assert.Equal(t, "lang/Object", hr.Classes["Iface"].Super.Name)
}

// Testable Property 3: cycle safety — exactly the classes on a cyclic
// extends graph are reported; other classes still bind.
func TestPass_Run_CyclicHierarchyReportedOnlyForCycleMembers(t *testing.T) {
	idx := index.New()
	table := symbol.NewTable()

	aDecl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "A", Extends: nameRef("B")}
	bDecl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "B", Extends: nameRef("A")}
	okDecl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Ok"}
	unit := &ast.CompUnit{SourceFile: "u.java", Types: []*ast.TypeDecl{aDecl, bDecl, okDecl}}

	sb := sourcebound.New(table, idx).Run([]*ast.CompUnit{unit})
	pb := packagebound.New(idx, diag.NewSink()).Run(sb)

	sink := diag.NewSink()
	hr := hierarchy.New(roots(), sink).Run(pb, nil)

	_, aBound := hr.Classes["A"]
	_, bBound := hr.Classes["B"]
	assert.False(t, aBound)
	assert.False(t, bBound)

	_, okBound := hr.Classes["Ok"]
	assert.True(t, okBound)

	var kinds []diag.Kind
	for _, d := range sink.Items() {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, diag.CyclicHierarchy)
}

func TestPass_Run_TypeParamsInDeclarationOrder(t *testing.T) {
	idx := index.New()
	table := symbol.NewTable()
	decl := &ast.TypeDecl{
		Kind: ast.DeclClass,
		Name: "Box",
		TypeParams: []*ast.TypeParamDecl{
			{Name: "K"},
			{Name: "V"},
		},
	}
	unit := &ast.CompUnit{SourceFile: "u.java", Types: []*ast.TypeDecl{decl}}

	sb := sourcebound.New(table, idx).Run([]*ast.CompUnit{unit})
	pb := packagebound.New(idx, diag.NewSink()).Run(sb)
	hr := hierarchy.New(roots(), diag.NewSink()).Run(pb, nil)

	box := hr.Classes["Box"]
	assert.Len(t, box.TypeParams, 2)
	assert.Equal(t, "K", box.TypeParams[0].Name)
	assert.Equal(t, "V", box.TypeParams[1].Name)
}
