// Package canon implements Canonicalizer (spec.md §4.9): rewrites every
// class-typed reference so each enclosing level is made explicit, naming
// the *declaring* class for a segment rather than whatever class the
// reference happened to be resolved through, matching the binary-name
// decomposition style of inspector/java/type.go's qualifiedName /
// scopedName splitting on the last separator.
package canon

import (
	"strings"

	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/pass/constant"
	"github.com/viant/javabind/pass/typeanno"
	"github.com/viant/javabind/pass/typepass"
	"github.com/viant/javabind/symbol"
	"github.com/viant/javabind/types"
)

// Annotation is a Bound-stage annotation: its type name plus its argument
// expressions evaluated to constants, per spec.md §3's final row
// ("evaluated constant values substituted into ... annotation arguments").
// An argument that did not evaluate to a compile-time constant (the
// evaluator's own NotConstant recovery) is simply absent from Args.
type Annotation struct {
	TypeName string
	Args     map[string]types.Const
	Pos      ast.Pos
}

// ConstEvaluator evaluates a constant expression in the lexical context of
// a TypeBound class, driving annotation-argument folding the same way
// field initializers are folded (spec.md §4.7). *constant.Pass satisfies
// this.
type ConstEvaluator interface {
	EvalConst(cls *typepass.Class, expr ast.Expr) (types.Const, error)
}

// FieldBinding is a Bound-stage field: the same symbol and declaration as
// typepass.FieldBinding, with Type rewritten to canonical form, Value set
// when the field is a compile-time constant, and its annotations split
// into declaration- and type-use buckets with their arguments folded.
type FieldBinding struct {
	Symbol *symbol.FieldSymbol
	Type   *types.Type
	Decl   *ast.FieldDecl
	// Value holds the evaluated constant for a constant field (spec.md
	// §4.7); nil when the field isn't a syntactic constant or couldn't be
	// evaluated (constant.Result.NotConstant).
	Value *types.Const

	DeclAnnos []*Annotation
	TypeAnnos []*Annotation
}

// MethodBinding is a Bound-stage method or constructor signature.
type MethodBinding struct {
	Symbol     *symbol.MethodSymbol
	TypeParams []*symbol.TyVarSymbol
	Bounds     map[string][]*types.Type
	Params     []*types.Type
	Return     *types.Type
	Throws     []*types.Type
	Decl       *ast.MethodDecl

	DeclAnnos []*Annotation
	TypeAnnos []*Annotation
}

// Class is the Bound-stage entity (spec.md §3's final row).
type Class struct {
	*typepass.Class
	Bounds  map[string][]*types.Type
	Fields  []*FieldBinding
	Methods []*MethodBinding
}

// Result is the pass's output, keyed by canonical class name.
type Result struct {
	Classes map[string]*Class
}

// Pass rewrites every class-typed reference TypePass produced into
// canonical enclosing-class-qualified form, and assembles the rest of the
// Bound stage: evaluated constant values and the declaration/type-use
// annotation split (spec.md §3's final row).
type Pass struct {
	table *symbol.Table
	cr    *constant.Result
	ta    *typeanno.Result
	eval  ConstEvaluator
}

// New builds a Canonicalizer. table recovers the interned
// *symbol.ClassSymbol for each enclosing level of a class's binary name;
// cr supplies evaluated field constants (pass/constant); ta supplies the
// declaration/type-use annotation split (pass/typeanno); eval folds
// annotation-argument expressions to constants using the same evaluator
// that produced cr.
func New(table *symbol.Table, cr *constant.Result, ta *typeanno.Result, eval ConstEvaluator) *Pass {
	return &Pass{table: table, cr: cr, ta: ta, eval: eval}
}

// Run canonicalizes every field type and method signature in tp, and folds
// in each field's constant value and every annotation's declaration/type-use
// split with its arguments evaluated.
func (p *Pass) Run(tp *typepass.Result) *Result {
	res := &Result{Classes: make(map[string]*Class, len(tp.Classes))}
	for name, cls := range tp.Classes {
		out := &Class{Class: cls, Bounds: make(map[string][]*types.Type, len(cls.Bounds))}
		for tv, bounds := range cls.Bounds {
			out.Bounds[tv] = p.canonicalizeAll(bounds)
		}

		var fieldSplits []typeanno.FieldSplit
		var methodSplits []typeanno.MethodSplit
		if p.ta != nil {
			fieldSplits = p.ta.Fields[name]
			methodSplits = p.ta.Methods[name]
		}
		for i, fb := range cls.Fields {
			fbOut := &FieldBinding{
				Symbol: fb.Symbol,
				Type:   p.canonicalizeType(fb.Type),
				Decl:   fb.Decl,
				Value:  p.fieldValue(fb),
			}
			if i < len(fieldSplits) {
				fbOut.DeclAnnos = p.foldAnnotations(cls, fieldSplits[i].Split.Declaration)
				fbOut.TypeAnnos = p.foldAnnotations(cls, fieldSplits[i].Split.TypeUse)
			}
			out.Fields = append(out.Fields, fbOut)
		}

		for i, mb := range cls.Methods {
			mbOut := p.canonicalizeMethod(mb)
			if i < len(methodSplits) {
				mbOut.DeclAnnos = p.foldAnnotations(cls, methodSplits[i].Split.Declaration)
				mbOut.TypeAnnos = p.foldAnnotations(cls, methodSplits[i].Split.TypeUse)
			}
			out.Methods = append(out.Methods, mbOut)
		}
		res.Classes[name] = out
	}
	return res
}

// fieldValue looks up fb's evaluated constant in p.cr, keyed the same way
// pass/constant keys it (owner symbol + declared short name).
func (p *Pass) fieldValue(fb *typepass.FieldBinding) *types.Const {
	if p.cr == nil {
		return nil
	}
	fsym := symbol.FieldSymbol{Owner: fb.Symbol.Owner, Name: fb.Symbol.Name}
	if v, ok := p.cr.Values[fsym]; ok {
		return &v
	}
	return nil
}

// foldAnnotations evaluates every argument expression of each annotation in
// annos to a constant, dropping arguments that don't evaluate to one
// (spec.md §4.7's recovery policy applies the same way here as it does to
// field initializers).
func (p *Pass) foldAnnotations(cls *typepass.Class, annos []*ast.Annotation) []*Annotation {
	if len(annos) == 0 {
		return nil
	}
	out := make([]*Annotation, len(annos))
	for i, a := range annos {
		out[i] = p.foldAnnotation(cls, a)
	}
	return out
}

func (p *Pass) foldAnnotation(cls *typepass.Class, a *ast.Annotation) *Annotation {
	out := &Annotation{TypeName: a.TypeName, Pos: a.Pos}
	if len(a.Args) == 0 || p.eval == nil {
		return out
	}
	out.Args = make(map[string]types.Const, len(a.Args))
	for name, expr := range a.Args {
		v, err := p.eval.EvalConst(cls, expr)
		if err != nil {
			continue
		}
		out.Args[name] = v
	}
	return out
}

func (p *Pass) canonicalizeMethod(mb *typepass.MethodBinding) *MethodBinding {
	out := &MethodBinding{
		Symbol:     mb.Symbol,
		TypeParams: mb.TypeParams,
		Params:     p.canonicalizeAll(mb.Params),
		Return:     p.canonicalizeType(mb.Return),
		Throws:     p.canonicalizeAll(mb.Throws),
		Decl:       mb.Decl,
	}
	if len(mb.Bounds) > 0 {
		out.Bounds = make(map[string][]*types.Type, len(mb.Bounds))
		for tv, bounds := range mb.Bounds {
			out.Bounds[tv] = p.canonicalizeAll(bounds)
		}
	}
	return out
}

func (p *Pass) canonicalizeAll(in []*types.Type) []*types.Type {
	if len(in) == 0 {
		return nil
	}
	out := make([]*types.Type, len(in))
	for i, t := range in {
		out[i] = p.canonicalizeType(t)
	}
	return out
}

// canonicalizeType rewrites a resolved Type's class-typed references;
// primitive, void, type-variable and error types are returned unchanged,
// matching "raw uses remain raw" for anything that isn't a class reference.
func (p *Pass) canonicalizeType(t *types.Type) *types.Type {
	if t == nil {
		return nil
	}
	switch t.Variant {
	case types.Array:
		return types.NewArray(p.canonicalizeType(t.Element), t.Annos...)
	case types.Wildcard:
		nt := &types.Type{Variant: types.Wildcard, WildcardKind: t.WildcardKind, Annos: t.Annos}
		if t.WildcardBound != nil {
			nt.WildcardBound = p.canonicalizeType(t.WildcardBound)
		}
		return nt
	case types.ClassType:
		return p.canonicalizeClass(t)
	default:
		return t
	}
}

// canonicalizeClass rebuilds t's segment list from the innermost segment's
// declaring chain (derived from its binary name, not from however the
// reference happened to spell the qualification), carrying each original
// segment's type arguments and annotations forward onto the declaring level
// they actually belong to, and leaving newly-introduced levels empty
// (spec.md §4.9).
func (p *Pass) canonicalizeClass(t *types.Type) *types.Type {
	if len(t.Segments) == 0 {
		return t
	}
	target := t.Segments[len(t.Segments)-1].Sym
	chain := p.ancestryChain(target)

	byName := make(map[string]types.Segment, len(t.Segments))
	for _, seg := range t.Segments {
		byName[seg.Sym.Name] = seg
	}

	segments := make([]types.Segment, len(chain))
	for i, sym := range chain {
		if orig, ok := byName[sym.Name]; ok {
			segments[i] = types.Segment{Sym: sym, TypeArgs: p.canonicalizeAll(orig.TypeArgs), Annos: orig.Annos}
		} else {
			segments[i] = types.Segment{Sym: sym}
		}
	}

	nt := types.NewClass(segments...)
	nt.Annos = t.Annos
	return nt
}

// ancestryChain decomposes sym's canonical binary name ("pkg/seg/Outer$Inner$Leaf")
// into one symbol per nesting level, outermost first, interning any level
// not already known to the table (spec.md §3: "a canonical binary name of
// form pkg/seg/Outer$Inner$Leaf").
func (p *Pass) ancestryChain(sym *symbol.ClassSymbol) []*symbol.ClassSymbol {
	name := sym.Name
	pkg, leaf := "", name
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		pkg, leaf = name[:idx+1], name[idx+1:]
	}

	parts := strings.Split(leaf, "$")
	chain := make([]*symbol.ClassSymbol, len(parts))
	cur := pkg
	for i, part := range parts {
		if i == 0 {
			cur += part
		} else {
			cur += "$" + part
		}
		if s, ok := p.table.Lookup(cur); ok {
			chain[i] = s
		} else {
			chain[i] = p.table.Intern(cur, sym.Location)
		}
	}
	return chain
}
