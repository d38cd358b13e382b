// Package typepass implements TypePass (spec.md §4.6): resolves
// type-parameter bounds, field types, and method signatures using the
// canonical resolver layered over the hierarchy-aware environment
// HierarchyPass produced.
package typepass

import (
	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/diag"
	"github.com/viant/javabind/pass/hierarchy"
	"github.com/viant/javabind/symbol"
	"github.com/viant/javabind/types"
)

// FieldBinding is a TypeBound field.
type FieldBinding struct {
	Symbol *symbol.FieldSymbol
	Type   *types.Type
	Decl   *ast.FieldDecl
	// RawAnnos carries annotation argument trees unevaluated; the
	// constant evaluator folds them (spec.md §4.7).
	RawAnnos []*ast.Annotation
}

// MethodBinding is a TypeBound method or constructor signature.
type MethodBinding struct {
	Symbol     *symbol.MethodSymbol
	TypeParams []*symbol.TyVarSymbol
	Bounds     map[string][]*types.Type
	Params     []*types.Type
	Return     *types.Type
	Throws     []*types.Type
	Decl       *ast.MethodDecl
	RawAnnos   []*ast.Annotation
}

// Class is the TypeBound-stage entity.
type Class struct {
	*hierarchy.Class
	Bounds  map[string][]*types.Type // this class's own type-parameter bounds
	Fields  []*FieldBinding
	Methods []*MethodBinding
}

// Result is the pass's output, keyed by canonical class name.
type Result struct {
	Classes map[string]*Class
}

// Pass binds field/method/type-parameter types for every HeaderBound class.
type Pass struct {
	hr   *hierarchy.Result
	sink *diag.Sink
}

// New builds a TypePass over hr's resolved hierarchy.
func New(hr *hierarchy.Result, sink *diag.Sink) *Pass {
	return &Pass{hr: hr, sink: sink}
}

// Run binds every class in p.hr.
func (p *Pass) Run() *Result {
	res := &Result{Classes: make(map[string]*Class, len(p.hr.Classes))}
	for name, cls := range p.hr.Classes {
		res.Classes[name] = p.bindClass(cls)
	}
	return res
}

type typeCtx struct {
	cls        *hierarchy.Class
	methodVars map[string]*symbol.TyVarSymbol
}

func (p *Pass) bindClass(cls *hierarchy.Class) *Class {
	out := &Class{Class: cls, Bounds: make(map[string][]*types.Type)}
	ctx := &typeCtx{cls: cls}

	for _, tp := range cls.Decl.TypeParams {
		var bounds []*types.Type
		for _, b := range tp.Bounds {
			bounds = append(bounds, p.resolveType(ctx, b))
		}
		out.Bounds[tp.Name] = bounds
	}

	for _, fd := range cls.Decl.Fields {
		fb := &FieldBinding{
			Symbol:   &symbol.FieldSymbol{Owner: cls.Symbol, Name: fd.Name},
			Type:     p.resolveType(ctx, fd.Type),
			Decl:     fd,
			RawAnnos: fd.Annos,
		}
		out.Fields = append(out.Fields, fb)
	}

	methodIndex := make(map[string]int)
	for _, md := range cls.Decl.Methods {
		idx := methodIndex[md.Name]
		methodIndex[md.Name] = idx + 1
		out.Methods = append(out.Methods, p.bindMethod(ctx, cls, md, idx))
	}

	return out
}

func (p *Pass) bindMethod(ctx *typeCtx, cls *hierarchy.Class, md *ast.MethodDecl, ordinal int) *MethodBinding {
	msym := &symbol.MethodSymbol{Owner: cls.Symbol, Name: md.Name, Index: ordinal}

	mvars := make(map[string]*symbol.TyVarSymbol, len(md.TypeParams))
	for _, tp := range md.TypeParams {
		mvars[tp.Name] = &symbol.TyVarSymbol{Owner: msym, Name: tp.Name}
	}
	mctx := &typeCtx{cls: ctx.cls, methodVars: mvars}

	mb := &MethodBinding{Symbol: msym, Decl: md, RawAnnos: md.Annos}
	for _, tp := range md.TypeParams {
		mb.TypeParams = append(mb.TypeParams, mvars[tp.Name])
	}
	if len(md.TypeParams) > 0 {
		mb.Bounds = make(map[string][]*types.Type, len(md.TypeParams))
		for _, tp := range md.TypeParams {
			var bounds []*types.Type
			for _, b := range tp.Bounds {
				bounds = append(bounds, p.resolveType(mctx, b))
			}
			mb.Bounds[tp.Name] = bounds
		}
	}

	for _, param := range md.Params {
		mb.Params = append(mb.Params, p.resolveType(mctx, param.Type))
	}
	if md.Return != nil {
		mb.Return = p.resolveType(mctx, md.Return)
	} else {
		mb.Return = types.NewVoid()
	}
	for _, th := range md.Throws {
		mb.Throws = append(mb.Throws, p.resolveType(mctx, th))
	}

	return mb
}

// resolveType converts a syntactic TypeRef into a resolved types.Type,
// short-circuiting on primitives/void, walking outward through generic
// scopes for type-variable names before falling back to class-name lookup
// (spec.md §4.6).
func (p *Pass) resolveType(ctx *typeCtx, ref *ast.TypeRef) *types.Type {
	if ref == nil {
		return types.ErrorType()
	}

	switch ref.Kind {
	case ast.RefPrimitive:
		return types.NewPrimitive(primitiveKind(ref.Prim), p.resolveAnnos(ref.Annos)...)
	case ast.RefVoid:
		return types.NewVoid()
	case ast.RefArray:
		return types.NewArray(p.resolveType(ctx, ref.Element), p.resolveAnnos(ref.Annos)...)
	case ast.RefWildcard:
		t := &types.Type{Variant: types.Wildcard, Annos: p.resolveAnnos(ref.Annos)}
		if ref.WildcardExtends != nil {
			t.WildcardKind = types.Extends
			t.WildcardBound = p.resolveType(ctx, ref.WildcardExtends)
		} else if ref.WildcardSuper != nil {
			t.WildcardKind = types.Super
			t.WildcardBound = p.resolveType(ctx, ref.WildcardSuper)
		} else {
			t.WildcardKind = types.NoBound
		}
		return t
	case ast.RefName:
		return p.resolveNameRef(ctx, ref)
	}
	return types.ErrorType()
}

func (p *Pass) resolveNameRef(ctx *typeCtx, ref *ast.TypeRef) *types.Type {
	if len(ref.NameSegments) == 0 {
		return types.ErrorType()
	}
	first := ref.NameSegments[0]

	if tv, ok := p.lookupTypeVar(ctx, first.Name); ok {
		return types.NewTypeVariable(tv, p.resolveAnnos(ref.Annos)...)
	}

	result, ok := ctx.cls.Stack.Resolve(first.Name)
	if !ok {
		p.sink.Report(diag.NotFound, ctx.cls.Symbol.Name, int(ref.Pos), "cannot resolve type %q", first.Name)
		return types.ErrorType()
	}
	if result.Ambiguous {
		p.sink.Report(diag.Ambiguous, ctx.cls.Symbol.Name, int(ref.Pos), "%q is ambiguous among %v", first.Name, result.Sources)
		return types.ErrorType()
	}

	segments := []types.Segment{{
		Sym:      result.Symbol,
		TypeArgs: p.resolveTypeArgs(ctx, first.Args),
	}}

	current := result.Symbol
	for _, seg := range ref.NameSegments[1:] {
		member, ok := p.lookupMember(current, seg.Name)
		if !ok {
			p.sink.Report(diag.NotFound, ctx.cls.Symbol.Name, int(ref.Pos), "cannot resolve member type %q on %s", seg.Name, current.Name)
			return types.ErrorType()
		}
		current = member
		segments = append(segments, types.Segment{
			Sym:      member,
			TypeArgs: p.resolveTypeArgs(ctx, seg.Args),
		})
	}

	t := types.NewClass(segments...)
	t.Annos = p.resolveAnnos(ref.Annos)
	return t
}

func (p *Pass) resolveTypeArgs(ctx *typeCtx, args []*ast.TypeRef) []*types.Type {
	var out []*types.Type
	for _, a := range args {
		out = append(out, p.resolveType(ctx, a))
	}
	return out
}

func (p *Pass) resolveAnnos(annos []*ast.Annotation) []types.Annotation {
	if len(annos) == 0 {
		return nil
	}
	// This slot only reserves the position in the Type value; its type
	// symbol and args stay unset. TypeAnnotationDisambiguator and the
	// constant evaluator read declaration annotations from
	// FieldBinding/MethodBinding.RawAnnos, not these type-reference ones.
	out := make([]types.Annotation, len(annos))
	return out
}

// lookupTypeVar walks method type params, then cls's own type params, then
// outward through enclosing classes (spec.md §4.6).
func (p *Pass) lookupTypeVar(ctx *typeCtx, name string) (*symbol.TyVarSymbol, bool) {
	if ctx.methodVars != nil {
		if tv, ok := ctx.methodVars[name]; ok {
			return tv, true
		}
	}

	cls := ctx.cls
	for cls != nil {
		for _, tv := range cls.TypeParams {
			if tv.Name == name {
				return tv, true
			}
		}
		enc := cls.Class.Class.Enclosing
		if enc == nil {
			break
		}
		next, ok := p.hr.Classes[enc.Symbol.Name]
		if !ok {
			break
		}
		cls = next
	}
	return nil, false
}

// lookupMember resolves seg as a member short name of the class named by
// owner, using source declaration membership when owner is a bound source
// class. Classpath/boot member-type resolution is not modeled at this
// layer (spec.md §6's class-file-reader contract exposes fields/methods,
// not nested-member-type names, as a distinct lookup).
func (p *Pass) lookupMember(owner *symbol.ClassSymbol, seg string) (*symbol.ClassSymbol, bool) {
	cls, ok := p.hr.Classes[owner.Name]
	if !ok {
		return nil, false
	}
	member, ok := cls.Class.Class.Members[seg]
	if !ok {
		return nil, false
	}
	return member.Symbol, true
}

func primitiveKind(p ast.PrimName) types.PrimitiveKind {
	switch p {
	case "boolean":
		return types.Boolean
	case "byte":
		return types.Byte
	case "short":
		return types.Short
	case "char":
		return types.Char
	case "int":
		return types.Int
	case "long":
		return types.Long
	case "float":
		return types.Float
	case "double":
		return types.Double
	}
	return types.Int
}
