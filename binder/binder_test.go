package binder_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	_ "github.com/viant/afs/mem"

	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/binder"
	"github.com/viant/javabind/types"
)

const bootArchive = `
{"name":"lang/Object","kind":"CLASS","accessFlags":1}
{"name":"lang/Enum","kind":"CLASS","accessFlags":1,"super":"lang/Object"}
{"name":"lang/annotation/Annotation","kind":"INTERFACE","accessFlags":1537}
{"name":"lang/String","kind":"CLASS","accessFlags":17,"super":"lang/Object"}
`

func primRef(name ast.PrimName) *ast.TypeRef {
	return &ast.TypeRef{Kind: ast.RefPrimitive, Prim: name}
}

// An end-to-end run: a Point class with two int fields and a getter method
// binds cleanly through every pass with no diagnostics.
func TestBind_EndToEnd(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	bootURL := "mem://localhost/archives/boot.jsonl"
	assert.NoError(t, fs.Upload(ctx, bootURL, 0644, strings.NewReader(bootArchive)))

	xField := &ast.FieldDecl{Name: "x", Type: primRef("int"), Modifiers: ast.ModPrivate}
	yField := &ast.FieldDecl{Name: "y", Type: primRef("int"), Modifiers: ast.ModPrivate}
	getX := &ast.MethodDecl{Name: "getX", Return: primRef("int"), Modifiers: ast.ModPublic}
	decl := &ast.TypeDecl{
		Kind:    ast.DeclClass,
		Name:    "Point",
		Fields:  []*ast.FieldDecl{xField, yField},
		Methods: []*ast.MethodDecl{getX},
	}
	unit := &ast.CompUnit{
		SourceFile: "Point.java",
		Package:    &ast.PkgDecl{Segments: []string{"geom"}},
		Types:      []*ast.TypeDecl{decl},
	}

	bindings, err := binder.Bind(ctx, []*ast.CompUnit{unit}, binder.Options{
		BootClasspath: []string{bootURL},
		FS:            fs,
	})
	assert.NoError(t, err)
	defer bindings.Close()

	assert.False(t, bindings.Sink.HasErrors())
	cls, ok := bindings.Classes["geom/Point"]
	assert.True(t, ok)
	assert.Equal(t, "lang/Object", cls.Super.Name)
	assert.Len(t, cls.Fields, 2)
	assert.Len(t, cls.Methods, 1)
	assert.Equal(t, types.Int, cls.Methods[0].Return.PrimKind)
}

// A final static int field initialized to a literal is evaluated and
// retained as a compile-time constant through the full pipeline.
func TestBind_EndToEnd_ConstantField(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	bootURL := "mem://localhost/archives/boot2.jsonl"
	assert.NoError(t, fs.Upload(ctx, bootURL, 0644, strings.NewReader(bootArchive)))

	field := &ast.FieldDecl{
		Name:        "MAX",
		Type:        primRef("int"),
		Modifiers:   ast.ModFinal | ast.ModStatic,
		Initializer: ast.LiteralExpr{Kind: ast.LitInt, Int: 100},
	}
	decl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Limits", Fields: []*ast.FieldDecl{field}}
	unit := &ast.CompUnit{SourceFile: "Limits.java", Types: []*ast.TypeDecl{decl}}

	bindings, err := binder.Bind(ctx, []*ast.CompUnit{unit}, binder.Options{
		BootClasspath: []string{bootURL},
		FS:            fs,
	})
	assert.NoError(t, err)
	defer bindings.Close()

	assert.False(t, bindings.Sink.HasErrors())
	cls, ok := bindings.Classes["Limits"]
	assert.True(t, ok)
	assert.Len(t, cls.Fields, 1)
	assert.NotNil(t, cls.Fields[0].Decl.Initializer)
	if assert.NotNil(t, cls.Fields[0].Value) {
		assert.Equal(t, types.Int, cls.Fields[0].Value.Kind)
		assert.Equal(t, int64(100), cls.Fields[0].Value.Wide)
	}
}
