package constant_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	_ "github.com/viant/afs/mem"

	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/classfile"
	"github.com/viant/javabind/diag"
	"github.com/viant/javabind/index"
	"github.com/viant/javabind/pass/constant"
	"github.com/viant/javabind/pass/hierarchy"
	"github.com/viant/javabind/pass/packagebound"
	"github.com/viant/javabind/pass/sourcebound"
	"github.com/viant/javabind/pass/typepass"
	"github.com/viant/javabind/symbol"
)

const libArchive = `
{"name":"p/Lib","kind":"CLASS","accessFlags":1,"super":"lang/Object","fields":[{"name":"SCONST","type":"S","accessFlags":25,"const":{"kind":"int","wide":2147483647}},{"name":"ZCONST","type":"Z","accessFlags":25,"const":{"kind":"int","wide":2147483647}}]}
`

func roots() hierarchy.RootProvider {
	return hierarchy.RootProvider{
		ObjectRoot:     &symbol.ClassSymbol{Name: "lang/Object", Location: symbol.Boot},
		EnumRoot:       &symbol.ClassSymbol{Name: "lang/Enum", Location: symbol.Boot},
		AnnotationRoot: &symbol.ClassSymbol{Name: "lang/annotation/Annotation", Location: symbol.Boot},
	}
}

func primRef(name ast.PrimName) *ast.TypeRef {
	return &ast.TypeRef{Kind: ast.RefPrimitive, Prim: name}
}

func fieldRefExpr(qualifier, name string) ast.Expr {
	return ast.NameExpr{Qualifier: qualifier, Name: name}
}

func intLit(v int64) ast.Expr { return ast.LiteralExpr{Kind: ast.LitInt, Int: v} }
func boolLit(v bool) ast.Expr { return ast.LiteralExpr{Kind: ast.LitBool, Bool: v} }

// E2 narrowing constant.
func TestPass_Run_NarrowingConstant(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	url := "mem://localhost/archives/lib.jsonl"
	assert.NoError(t, fs.Upload(ctx, url, 0644, strings.NewReader(libArchive)))

	table := symbol.NewTable()
	idx := index.New()
	binder := classfile.NewBinder(classfile.NewReaderWithService(fs), table)
	assert.NoError(t, binder.Bind(ctx, idx, []string{url}, symbol.Classpath))

	sconstField := &ast.FieldDecl{
		Name:        "SCONST",
		Type:        primRef("short"),
		Modifiers:   ast.ModFinal | ast.ModStatic,
		Initializer: ast.BinaryExpr{Op: "+", Left: fieldRefExpr("Lib", "SCONST"), Right: intLit(0)},
	}
	zconstField := &ast.FieldDecl{
		Name:        "ZCONST",
		Type:        primRef("boolean"),
		Modifiers:   ast.ModFinal | ast.ModStatic,
		Initializer: ast.BinaryExpr{Op: "||", Left: fieldRefExpr("Lib", "ZCONST"), Right: boolLit(false)},
	}
	decl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Test", Fields: []*ast.FieldDecl{sconstField, zconstField}}
	unit := &ast.CompUnit{
		SourceFile: "Test.java",
		Package:    &ast.PkgDecl{Segments: []string{"p"}},
		Imports:    []ast.Import{{Kind: ast.SingleType, Path: "p.Lib"}},
		Types:      []*ast.TypeDecl{decl},
	}

	sb := sourcebound.New(table, idx).Run([]*ast.CompUnit{unit})
	sink := diag.NewSink()
	pb := packagebound.New(idx, sink).Run(sb)
	hr := hierarchy.New(roots(), sink).Run(pb, nil)
	tp := typepass.New(hr, sink).Run()

	cp := constant.New(tp, binder, nil, sink)
	res := cp.Run()

	testCls := hr.Classes["p/Test"]
	sSym := symbol.FieldSymbol{Owner: testCls.Symbol, Name: "SCONST"}
	zSym := symbol.FieldSymbol{Owner: testCls.Symbol, Name: "ZCONST"}

	assert.False(t, res.NotConstant[sSym])
	assert.Equal(t, int64(-1), res.Values[sSym].Wide)

	assert.False(t, res.NotConstant[zSym])
	assert.True(t, res.Values[zSym].Bool)
}

// Testable Property 4 / E-adjacent: self-reference recovers locally.
func TestPass_Run_SelfReferenceRecoversLocally(t *testing.T) {
	field := &ast.FieldDecl{
		Name:        "A",
		Type:        primRef("int"),
		Modifiers:   ast.ModFinal,
		Initializer: ast.BinaryExpr{Op: "+", Left: fieldRefExpr("", "A"), Right: intLit(1)},
	}
	decl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Test", Fields: []*ast.FieldDecl{field}}
	unit := &ast.CompUnit{SourceFile: "Test.java", Types: []*ast.TypeDecl{decl}}

	idx := index.New()
	table := symbol.NewTable()
	sb := sourcebound.New(table, idx).Run([]*ast.CompUnit{unit})
	sink := diag.NewSink()
	pb := packagebound.New(idx, sink).Run(sb)
	hr := hierarchy.New(roots(), sink).Run(pb, nil)
	tp := typepass.New(hr, sink).Run()

	cp := constant.New(tp, noClasspath{}, nil, sink)
	res := cp.Run()

	testCls := hr.Classes["Test"]
	aSym := symbol.FieldSymbol{Owner: testCls.Symbol, Name: "A"}
	assert.True(t, res.NotConstant[aSym])
	_, hasValue := res.Values[aSym]
	assert.False(t, hasValue)

	// The field's declared modifiers (and its retained initializer) are
	// unaffected by the failed constant evaluation.
	tpCls := tp.Classes["Test"]
	assert.Equal(t, ast.ModFinal, tpCls.Fields[0].Decl.Modifiers&ast.ModFinal)
	assert.NotNil(t, tpCls.Fields[0].Decl.Initializer)
}

func TestPass_Run_MutualCycleRecoversBoth(t *testing.T) {
	fieldA := &ast.FieldDecl{
		Name:        "A",
		Type:        primRef("int"),
		Modifiers:   ast.ModFinal,
		Initializer: fieldRefExpr("", "B"),
	}
	fieldB := &ast.FieldDecl{
		Name:        "B",
		Type:        primRef("int"),
		Modifiers:   ast.ModFinal,
		Initializer: fieldRefExpr("", "A"),
	}
	decl := &ast.TypeDecl{Kind: ast.DeclClass, Name: "Test", Fields: []*ast.FieldDecl{fieldA, fieldB}}
	unit := &ast.CompUnit{SourceFile: "Test.java", Types: []*ast.TypeDecl{decl}}

	idx := index.New()
	table := symbol.NewTable()
	sb := sourcebound.New(table, idx).Run([]*ast.CompUnit{unit})
	sink := diag.NewSink()
	pb := packagebound.New(idx, sink).Run(sb)
	hr := hierarchy.New(roots(), sink).Run(pb, nil)
	tp := typepass.New(hr, sink).Run()

	cp := constant.New(tp, noClasspath{}, nil, sink)
	res := cp.Run()

	testCls := hr.Classes["Test"]
	aSym := symbol.FieldSymbol{Owner: testCls.Symbol, Name: "A"}
	bSym := symbol.FieldSymbol{Owner: testCls.Symbol, Name: "B"}
	assert.True(t, res.NotConstant[aSym])
	assert.True(t, res.NotConstant[bSym])
}

type noClasspath struct{}

func (noClasspath) Lookup(name string) (*classfile.BytecodeBoundClass, bool) { return nil, false }
