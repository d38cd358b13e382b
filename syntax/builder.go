// Package syntax builds ast.CompUnit values from Java source text using
// tree-sitter's Java grammar (github.com/smacker/go-tree-sitter), the same
// dependency and walking style inspector/java uses (ChildByFieldName-driven
// tree walks). It is explicitly a fixture builder for this module's CLI,
// not a general-purpose parser: the real tokenizer/parser is
// an external collaborator out of scope for the
// binder (spec.md §1).
package syntax

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/viant/javabind/ast"
)

// Builder parses Java source into ast.CompUnit values.
type Builder struct{}

// New creates a Builder.
func New() *Builder { return &Builder{} }

// Build parses src (attributed to sourceFile for diagnostics) into a
// CompUnit.
func (b *Builder) Build(src []byte, sourceFile string) (*ast.CompUnit, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("syntax: failed to parse %s: %w", sourceFile, err)
	}

	root := tree.RootNode()
	unit := &ast.CompUnit{SourceFile: sourceFile}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			unit.Package = buildPackageDecl(child, src)
		case "import_declaration":
			if imp, ok := buildImport(child, src); ok {
				unit.Imports = append(unit.Imports, imp)
			}
		case "class_declaration", "interface_declaration", "enum_declaration", "annotation_type_declaration":
			unit.Types = append(unit.Types, buildTypeDecl(child, src))
		}
	}

	if unit.Package != nil && len(unit.Package.Annos) > 0 {
		unit.Types = append(unit.Types, &ast.TypeDecl{
			Kind:      ast.DeclInterface,
			Name:      "package-info",
			Modifiers: 0,
			Annos:     unit.Package.Annos,
			Pos:       unit.Package.Pos,
		})
	}

	return unit, nil
}

func buildPackageDecl(node *sitter.Node, src []byte) *ast.PkgDecl {
	nameNode := node.NamedChild(0)
	if nameNode == nil {
		return &ast.PkgDecl{}
	}
	annos := collectLeadingAnnotations(node, src)
	return &ast.PkgDecl{
		Segments: strings.Split(nameNode.Content(src), "."),
		Annos:    annos,
		Pos:      ast.Pos(node.StartByte()),
	}
}

func buildImport(node *sitter.Node, src []byte) (ast.Import, bool) {
	inner := node.NamedChild(0)
	if inner == nil {
		return ast.Import{}, false
	}
	pos := ast.Pos(node.StartByte())

	if inner.Type() == "static_import" {
		scope := inner.ChildByFieldName("scope")
		name := inner.ChildByFieldName("name")
		if scope == nil {
			return ast.Import{}, false
		}
		if name != nil && name.Type() != "asterisk" {
			return ast.Import{Kind: ast.SingleStaticMember, Path: scope.Content(src), Member: name.Content(src), Pos: pos}, true
		}
		return ast.Import{Kind: ast.OnDemandStaticMember, Path: scope.Content(src), Pos: pos}, true
	}

	scope := inner.ChildByFieldName("scope")
	name := inner.ChildByFieldName("name")
	if scope != nil && name != nil {
		path := scope.Content(src) + "." + name.Content(src)
		return ast.Import{Kind: ast.SingleType, Path: path, Pos: pos}, true
	}
	if scope != nil {
		return ast.Import{Kind: ast.OnDemandType, Path: scope.Content(src), Pos: pos}, true
	}
	return ast.Import{}, false
}

func buildTypeDecl(node *sitter.Node, src []byte) *ast.TypeDecl {
	decl := &ast.TypeDecl{
		Pos: ast.Pos(node.StartByte()),
		End: ast.Pos(node.EndByte()),
	}

	switch node.Type() {
	case "class_declaration":
		decl.Kind = ast.DeclClass
	case "interface_declaration":
		decl.Kind = ast.DeclInterface
	case "enum_declaration":
		decl.Kind = ast.DeclEnum
	case "annotation_type_declaration":
		decl.Kind = ast.DeclAnnotation
	}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		decl.Name = nameNode.Content(src)
	}

	decl.Modifiers = modifiersOf(node, src)
	decl.Annos = collectLeadingAnnotations(node, src)
	decl.TypeParams = buildTypeParams(node, src)

	if sup := node.ChildByFieldName("superclass"); sup != nil {
		decl.Extends = buildTypeRefFromTypeNode(sup.NamedChild(0), src)
	}
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		for i := 0; i < int(ifaces.NamedChildCount()); i++ {
			decl.Implements = append(decl.Implements, buildTypeRefFromTypeNode(ifaces.NamedChild(i), src))
		}
	}

	body := node.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(i)
			switch child.Type() {
			case "field_declaration":
				decl.Fields = append(decl.Fields, buildFieldDecl(child, src)...)
			case "method_declaration":
				decl.Methods = append(decl.Methods, buildMethodDecl(child, src))
			case "constructor_declaration":
				decl.Methods = append(decl.Methods, buildConstructorDecl(child, src, decl.Name))
			case "class_declaration", "interface_declaration", "enum_declaration", "annotation_type_declaration":
				decl.NestedTypes = append(decl.NestedTypes, buildTypeDecl(child, src))
			}
		}
	}

	return decl
}

func modifiersOf(node *sitter.Node, src []byte) ast.Modifier {
	var m ast.Modifier
	if node.NamedChildCount() == 0 {
		return m
	}
	first := node.NamedChild(0)
	if first.Type() != "modifiers" {
		return m
	}
	for i := 0; i < int(first.NamedChildCount()); i++ {
		switch first.NamedChild(i).Type() {
		case "public":
			m |= ast.ModPublic
		case "private":
			m |= ast.ModPrivate
		case "protected":
			m |= ast.ModProtected
		case "static":
			m |= ast.ModStatic
		case "final":
			m |= ast.ModFinal
		case "abstract":
			m |= ast.ModAbstract
		}
	}
	return m
}

func collectLeadingAnnotations(node *sitter.Node, src []byte) []*ast.Annotation {
	var annos []*ast.Annotation
	if node.NamedChildCount() == 0 {
		return annos
	}
	first := node.NamedChild(0)
	if first.Type() != "modifiers" {
		return annos
	}
	for i := 0; i < int(first.NamedChildCount()); i++ {
		child := first.NamedChild(i)
		if child.Type() == "annotation" || child.Type() == "marker_annotation" {
			annos = append(annos, buildAnnotation(child, src))
		}
	}
	return annos
}

func buildAnnotation(node *sitter.Node, src []byte) *ast.Annotation {
	anno := &ast.Annotation{Pos: ast.Pos(node.StartByte()), Args: map[string]ast.Expr{}}
	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		anno.TypeName = nameNode.Content(src)
	}
	if node.Type() != "annotation" {
		return anno
	}
	argsNode := node.ChildByFieldName("arguments")
	if argsNode == nil {
		return anno
	}
	for i := 0; i < int(argsNode.NamedChildCount()); i++ {
		pair := argsNode.NamedChild(i)
		switch pair.Type() {
		case "element_value_pair":
			key := pair.ChildByFieldName("key")
			val := pair.ChildByFieldName("value")
			if key != nil && val != nil {
				anno.Args[key.Content(src)] = buildExpr(val, src)
			}
		default:
			// single "value" shorthand: @Anno("x")
			anno.Args["value"] = buildExpr(pair, src)
		}
	}
	return anno
}

func buildTypeParams(node *sitter.Node, src []byte) []*ast.TypeParamDecl {
	var tpNode *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if node.NamedChild(i).Type() == "type_parameters" {
			tpNode = node.NamedChild(i)
			break
		}
	}
	if tpNode == nil {
		return nil
	}
	var params []*ast.TypeParamDecl
	for i := 0; i < int(tpNode.NamedChildCount()); i++ {
		tp := tpNode.NamedChild(i)
		if tp.Type() != "type_parameter" {
			continue
		}
		p := &ast.TypeParamDecl{Pos: ast.Pos(tp.StartByte())}
		if nameNode := tp.ChildByFieldName("name"); nameNode != nil {
			p.Name = nameNode.Content(src)
		}
		if boundNode := tp.ChildByFieldName("bound"); boundNode != nil {
			for j := 0; j < int(boundNode.NamedChildCount()); j++ {
				p.Bounds = append(p.Bounds, buildTypeRefFromTypeNode(boundNode.NamedChild(j), src))
			}
		}
		params = append(params, p)
	}
	return params
}

func buildFieldDecl(node *sitter.Node, src []byte) []*ast.FieldDecl {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	mods := modifiersOf(node, src)
	annos := collectLeadingAnnotations(node, src)

	var out []*ast.FieldDecl
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		fd := &ast.FieldDecl{
			Name:      nameNode.Content(src),
			Type:      buildTypeRefFromTypeNode(typeNode, src),
			Modifiers: mods,
			Annos:     annos,
			Pos:       ast.Pos(node.StartByte()),
		}
		if valNode := child.ChildByFieldName("value"); valNode != nil {
			fd.Initializer = buildExpr(valNode, src)
		}
		out = append(out, fd)
	}
	return out
}

func buildMethodDecl(node *sitter.Node, src []byte) *ast.MethodDecl {
	m := &ast.MethodDecl{Pos: ast.Pos(node.StartByte())}
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		m.Name = nameNode.Content(src)
	}
	m.Modifiers = modifiersOf(node, src)
	m.Annos = collectLeadingAnnotations(node, src)
	m.TypeParams = buildTypeParams(node, src)

	if retNode := node.ChildByFieldName("type"); retNode != nil {
		m.Return = buildTypeRefFromTypeNode(retNode, src)
	} else {
		m.Return = &ast.TypeRef{Kind: ast.RefVoid}
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Params = buildParams(params, src)
	}
	if throws := node.ChildByFieldName("throws"); throws != nil {
		for i := 0; i < int(throws.NamedChildCount()); i++ {
			m.Throws = append(m.Throws, buildTypeRefFromTypeNode(throws.NamedChild(i), src))
		}
	}
	return m
}

func buildConstructorDecl(node *sitter.Node, src []byte, className string) *ast.MethodDecl {
	m := &ast.MethodDecl{Pos: ast.Pos(node.StartByte()), IsConstructor: true, Name: className}
	m.Modifiers = modifiersOf(node, src)
	m.Annos = collectLeadingAnnotations(node, src)
	m.TypeParams = buildTypeParams(node, src)
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Params = buildParams(params, src)
	}
	return m
}

func buildParams(node *sitter.Node, src []byte) []*ast.ParamDecl {
	var out []*ast.ParamDecl
	for i := 0; i < int(node.NamedChildCount()); i++ {
		p := node.NamedChild(i)
		switch p.Type() {
		case "formal_parameter":
			typeNode := p.ChildByFieldName("type")
			nameNode := p.ChildByFieldName("name")
			if typeNode == nil || nameNode == nil {
				continue
			}
			out = append(out, &ast.ParamDecl{Name: nameNode.Content(src), Type: buildTypeRefFromTypeNode(typeNode, src)})
		case "spread_parameter":
			if p.NamedChildCount() < 2 {
				continue
			}
			typeNode := p.NamedChild(0)
			declNode := p.NamedChild(1)
			nameNode := declNode.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			elem := buildTypeRefFromTypeNode(typeNode, src)
			out = append(out, &ast.ParamDecl{Name: nameNode.Content(src), Type: &ast.TypeRef{Kind: ast.RefArray, Element: elem}})
		}
	}
	return out
}

// buildTypeRefFromTypeNode converts a tree-sitter type node into a TypeRef,
// handling arrays, generics, and wildcards (spec.md E3, E5).
func buildTypeRefFromTypeNode(node *sitter.Node, src []byte) *ast.TypeRef {
	if node == nil {
		return nil
	}
	pos := ast.Pos(node.StartByte())

	switch node.Type() {
	case "array_type":
		elemNode := node.ChildByFieldName("element")
		dims := node.ChildByFieldName("dimensions")
		elem := buildTypeRefFromTypeNode(elemNode, src)
		n := 1
		if dims != nil {
			n = strings.Count(dims.Content(src), "[")
			if n == 0 {
				n = 1
			}
		}
		ref := elem
		for i := 0; i < n; i++ {
			ref = &ast.TypeRef{Kind: ast.RefArray, Element: ref, Pos: pos}
		}
		return ref
	case "generic_type":
		base := node.NamedChild(0)
		argsNode := node.ChildByFieldName("type_arguments")
		seg := ast.NameSegment{Name: base.Content(src)}
		if argsNode != nil {
			for i := 0; i < int(argsNode.NamedChildCount()); i++ {
				arg := argsNode.NamedChild(i)
				seg.Args = append(seg.Args, buildTypeArg(arg, src))
			}
		}
		return &ast.TypeRef{Kind: ast.RefName, NameSegments: []ast.NameSegment{seg}, Pos: pos}
	case "scoped_type_identifier":
		var segs []ast.NameSegment
		collectScopedSegments(node, src, &segs)
		return &ast.TypeRef{Kind: ast.RefName, NameSegments: segs, Pos: pos}
	case "boolean_type", "integral_type", "floating_point_type", "void_type":
		return &ast.TypeRef{Kind: refKindFor(node.Content(src)), Prim: ast.PrimName(node.Content(src)), Pos: pos}
	default:
		text := node.Content(src)
		if text == "void" {
			return &ast.TypeRef{Kind: ast.RefVoid, Pos: pos}
		}
		if prim, ok := primitiveName(text); ok {
			return &ast.TypeRef{Kind: ast.RefPrimitive, Prim: ast.PrimName(prim), Pos: pos}
		}
		return &ast.TypeRef{Kind: ast.RefName, NameSegments: []ast.NameSegment{{Name: text}}, Pos: pos}
	}
}

func refKindFor(text string) ast.TypeRefKind {
	if text == "void" {
		return ast.RefVoid
	}
	return ast.RefPrimitive
}

func primitiveName(text string) (string, bool) {
	switch text {
	case "boolean", "byte", "short", "char", "int", "long", "float", "double":
		return text, true
	}
	return "", false
}

func collectScopedSegments(node *sitter.Node, src []byte, out *[]ast.NameSegment) {
	scope := node.ChildByFieldName("scope")
	name := node.ChildByFieldName("name")
	if scope != nil {
		if scope.Type() == "scoped_type_identifier" {
			collectScopedSegments(scope, src, out)
		} else {
			*out = append(*out, ast.NameSegment{Name: scope.Content(src)})
		}
	}
	if name != nil {
		*out = append(*out, ast.NameSegment{Name: name.Content(src)})
	}
}

func buildTypeArg(node *sitter.Node, src []byte) *ast.TypeRef {
	if node.Type() == "wildcard" {
		w := &ast.TypeRef{Kind: ast.RefWildcard, Pos: ast.Pos(node.StartByte())}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			bound := buildTypeRefFromTypeNode(child, src)
			// tree-sitter-java distinguishes extends/super wildcards by a
			// preceding anonymous token; both bound slots are populated from
			// the same child position and disambiguated by the grammar's
			// own field name when present.
			if node.ChildByFieldName("extends") != nil {
				w.WildcardExtends = bound
			} else {
				w.WildcardSuper = bound
			}
		}
		return w
	}
	return buildTypeRefFromTypeNode(node, src)
}

// buildExpr walks a constant-expression subtree into ast.Expr, covering the
// operators spec.md §4.7 names: literals, field references, unary/binary
// operators, cast, ternary, string concatenation.
func buildExpr(node *sitter.Node, src []byte) ast.Expr {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		return parseIntLiteral(node.Content(src))
	case "decimal_floating_point_literal":
		return parseFloatLiteral(node.Content(src))
	case "true":
		return ast.LiteralExpr{Kind: ast.LitBool, Bool: true}
	case "false":
		return ast.LiteralExpr{Kind: ast.LitBool, Bool: false}
	case "string_literal":
		text := node.Content(src)
		return ast.LiteralExpr{Kind: ast.LitString, Str: strings.Trim(text, "\"")}
	case "character_literal":
		text := strings.Trim(node.Content(src), "'")
		if len(text) > 0 {
			return ast.LiteralExpr{Kind: ast.LitChar, Int: int64(text[0])}
		}
		return ast.LiteralExpr{Kind: ast.LitChar}
	case "identifier":
		return ast.NameExpr{Name: node.Content(src)}
	case "field_access":
		obj := node.ChildByFieldName("object")
		fieldNode := node.ChildByFieldName("field")
		if obj != nil && fieldNode != nil {
			return ast.NameExpr{Qualifier: obj.Content(src), Name: fieldNode.Content(src)}
		}
	case "unary_expression":
		if node.ChildCount() >= 2 {
			op := node.Child(0).Content(src)
			return ast.UnaryExpr{Op: op, Operand: buildExpr(node.Child(1), src)}
		}
	case "binary_expression":
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		opNode := node.ChildByFieldName("operator")
		op := ""
		if opNode != nil {
			op = opNode.Content(src)
		}
		return ast.BinaryExpr{Op: op, Left: buildExpr(left, src), Right: buildExpr(right, src)}
	case "cast_expression":
		typeNode := node.ChildByFieldName("type")
		valNode := node.ChildByFieldName("value")
		return ast.CastExpr{Type: buildTypeRefFromTypeNode(typeNode, src), Operand: buildExpr(valNode, src)}
	case "ternary_expression":
		cond := node.ChildByFieldName("condition")
		cons := node.ChildByFieldName("consequence")
		alt := node.ChildByFieldName("alternative")
		return ast.TernaryExpr{Cond: buildExpr(cond, src), Then: buildExpr(cons, src), Else: buildExpr(alt, src)}
	case "parenthesized_expression":
		if node.NamedChildCount() > 0 {
			return buildExpr(node.NamedChild(0), src)
		}
	}
	return ast.LiteralExpr{Kind: ast.LitString, Str: node.Content(src)}
}

func parseIntLiteral(text string) ast.LiteralExpr {
	clean := strings.ReplaceAll(text, "_", "")
	isLong := strings.HasSuffix(clean, "L") || strings.HasSuffix(clean, "l")
	if isLong {
		clean = clean[:len(clean)-1]
	}
	var v int64
	var err error
	switch {
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		u, e := strconv.ParseUint(clean[2:], 16, 64)
		v, err = int64(u), e
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		u, e := strconv.ParseUint(clean[2:], 2, 64)
		v, err = int64(u), e
	case len(clean) > 1 && clean[0] == '0':
		u, e := strconv.ParseUint(clean, 8, 64)
		v, err = int64(u), e
	default:
		u, e := strconv.ParseUint(clean, 10, 64)
		if e != nil {
			sv, se := strconv.ParseInt(clean, 10, 64)
			v, err = sv, se
		} else {
			v, err = int64(u), nil
		}
	}
	if err != nil {
		v = 0
	}
	kind := ast.LitInt
	if isLong {
		kind = ast.LitLong
	}
	return ast.LiteralExpr{Kind: kind, Int: v}
}

func parseFloatLiteral(text string) ast.LiteralExpr {
	clean := strings.TrimSuffix(strings.TrimSuffix(text, "f"), "F")
	isDouble := !strings.HasSuffix(text, "f") && !strings.HasSuffix(text, "F")
	f, _ := strconv.ParseFloat(clean, 64)
	kind := ast.LitFloat
	if isDouble {
		kind = ast.LitDouble
	}
	return ast.LiteralExpr{Kind: kind, Float: f}
}

// KindOf maps a tree-sitter primitive keyword to reflect.Kind, a familiar
// Go kind name for debug/log rendering. No code in the module calls it; it
// is not used for binding decisions.
func KindOf(prim string) reflect.Kind {
	switch prim {
	case "boolean":
		return reflect.Bool
	case "byte":
		return reflect.Int8
	case "short":
		return reflect.Int16
	case "char":
		return reflect.Int32
	case "int":
		return reflect.Int32
	case "long":
		return reflect.Int64
	case "float":
		return reflect.Float32
	case "double":
		return reflect.Float64
	default:
		return reflect.Invalid
	}
}
