// Package constant implements ConstantEvaluator (spec.md §4.7): a lazy
// fixed-point evaluator for constant field initializers, including
// references across compilation units and into the classpath, with local
// recovery from self-reference and cross-field cycles.
package constant

import (
	"errors"
	"fmt"

	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/classfile"
	"github.com/viant/javabind/diag"
	"github.com/viant/javabind/env"
	"github.com/viant/javabind/pass/typepass"
	"github.com/viant/javabind/symbol"
	"github.com/viant/javabind/types"
)

// ClasspathSource supplies classpath class views for field references that
// cross into the classpath (spec.md §4.7 "else if the referent is a
// classpath constant read the encoded value"). *classfile.Binder satisfies
// this interface.
type ClasspathSource interface {
	Lookup(name string) (*classfile.BytecodeBoundClass, bool)
}

// Result is the pass's output.
type Result struct {
	// Values holds the evaluated constant for every source field that is a
	// compile-time constant.
	Values map[symbol.FieldSymbol]types.Const
	// NotConstant holds every source field that qualified as a syntactic
	// constant (final, initializer, primitive/string type) but could not
	// be evaluated — typically a self-reference or cross-field cycle
	// (spec.md §4.7 self-reference policy, Testable Property 4). The
	// field's initializer and access flags are otherwise unchanged.
	NotConstant map[symbol.FieldSymbol]bool
}

type fieldCtx struct {
	cls *typepass.Class
	fb  *typepass.FieldBinding
}

// Pass evaluates every syntactic constant field across tp's classes.
type Pass struct {
	tp         *typepass.Result
	cp         ClasspathSource
	stringType *symbol.ClassSymbol
	sink       *diag.Sink

	fields      map[symbol.FieldSymbol]fieldCtx
	notConstant map[symbol.FieldSymbol]bool
	lazy        *env.Lazy[symbol.FieldSymbol, types.Const]
}

// New builds a ConstantEvaluator over tp's TypeBound classes. stringType is
// the language's String type symbol, used to recognize textual constants
// (spec.md glossary "Constant field"); cp resolves classpath field
// references.
func New(tp *typepass.Result, cp ClasspathSource, stringType *symbol.ClassSymbol, sink *diag.Sink) *Pass {
	p := &Pass{
		tp:          tp,
		cp:          cp,
		stringType:  stringType,
		sink:        sink,
		fields:      make(map[symbol.FieldSymbol]fieldCtx),
		notConstant: make(map[symbol.FieldSymbol]bool),
	}
	for _, cls := range tp.Classes {
		for _, fb := range cls.Fields {
			if !p.isConstantField(fb) {
				continue
			}
			fsym := symbol.FieldSymbol{Owner: cls.Symbol, Name: fb.Decl.Name}
			p.fields[fsym] = fieldCtx{cls: cls, fb: fb}
		}
	}
	return p
}

func (p *Pass) isConstantField(fb *typepass.FieldBinding) bool {
	if fb.Decl.Modifiers&ast.ModFinal == 0 || fb.Decl.Initializer == nil {
		return false
	}
	t := fb.Type
	if t == nil {
		return false
	}
	if t.Variant == types.Primitive {
		return true
	}
	if t.Variant == types.ClassType && p.stringType != nil {
		sym := t.ClassSymbolOf()
		return sym != nil && symbol.Equal(sym, p.stringType)
	}
	return false
}

// Run evaluates every syntactic constant field and returns the result.
func (p *Pass) Run() *Result {
	completers := make(map[symbol.FieldSymbol]env.Completer[symbol.FieldSymbol, types.Const], len(p.fields))
	for fsym := range p.fields {
		fsym := fsym
		completers[fsym] = func(_ symbol.FieldSymbol) (types.Const, error) {
			return p.evalField(fsym)
		}
	}
	p.lazy = env.NewLazy(completers, env.NewSimple[symbol.FieldSymbol, types.Const](nil))

	res := &Result{Values: make(map[symbol.FieldSymbol]types.Const), NotConstant: make(map[symbol.FieldSymbol]bool)}
	for fsym := range p.fields {
		v, ok, err := p.lazy.Get(fsym)
		if err != nil || !ok || p.notConstant[fsym] {
			res.NotConstant[fsym] = true
			continue
		}
		res.Values[fsym] = v
	}
	return res
}

// evalField is the completer body for a source constant field: evaluate
// its initializer, narrow to the declared kind, and recover locally from
// any cycle (spec.md §4.7 self-reference policy; Open Question decision:
// annotation-argument evaluation gets the same recovery through the same
// lazy environment, since both paths call evalExpr/evalField uniformly).
func (p *Pass) evalField(fsym symbol.FieldSymbol) (types.Const, error) {
	fc := p.fields[fsym]
	v, err := p.evalExpr(fc.cls, fc.fb.Decl.Initializer)
	if err != nil {
		var cycle *env.CycleError
		if errors.As(err, &cycle) {
			p.notConstant[fsym] = true
			return types.Const{}, nil
		}
		p.sink.Report(diag.NotConstant, fsym.String(), int(fc.fb.Decl.Pos), "%v", err)
		p.notConstant[fsym] = true
		return types.Const{}, nil
	}
	if fc.fb.Type.Variant == types.Primitive {
		v = types.NarrowTo(fc.fb.Type.PrimKind, v)
	}
	return v, nil
}

// EvalConst evaluates any constant expression (e.g. an annotation argument)
// in the lexical context of cls, driving the same lazy field environment a
// field initializer would (spec.md §4.7 "Annotation-argument evaluation is
// driven from the same evaluator").
func (p *Pass) EvalConst(cls *typepass.Class, expr ast.Expr) (types.Const, error) {
	return p.evalExpr(cls, expr)
}

func (p *Pass) evalExpr(cls *typepass.Class, expr ast.Expr) (types.Const, error) {
	switch e := expr.(type) {
	case ast.LiteralExpr:
		return literalConst(e), nil
	case ast.NameExpr:
		return p.resolveFieldRef(cls, e)
	case ast.UnaryExpr:
		return p.evalUnary(cls, e)
	case ast.BinaryExpr:
		return p.evalBinary(cls, e)
	case ast.CastExpr:
		return p.evalCast(cls, e)
	case ast.TernaryExpr:
		return p.evalTernary(cls, e)
	case ast.ConcatExpr:
		return p.evalConcat(cls, e)
	default:
		return types.Const{}, fmt.Errorf("constant: unsupported expression %T", expr)
	}
}

func literalConst(e ast.LiteralExpr) types.Const {
	switch e.Kind {
	case ast.LitBool:
		return types.NewBool(e.Bool)
	case ast.LitString:
		return types.NewString(e.Str)
	case ast.LitFloat:
		return types.NewFloat(types.Float, e.Float)
	case ast.LitDouble:
		return types.NewFloat(types.Double, e.Float)
	case ast.LitChar:
		return types.NewInt(types.Char, e.Int)
	case ast.LitLong:
		return types.NewInt(types.Long, e.Int)
	default:
		return types.NewInt(types.Int, e.Int)
	}
}

func (p *Pass) resolveFieldRef(cls *typepass.Class, expr ast.NameExpr) (types.Const, error) {
	ownerName := cls.Symbol.Name
	if expr.Qualifier != "" {
		res, ok := cls.Stack.Resolve(expr.Qualifier)
		if !ok || res.Ambiguous {
			p.sink.Report(diag.NotFound, cls.Symbol.Name, 0, "cannot resolve %q", expr.Qualifier)
			return types.Const{}, fmt.Errorf("constant: unresolved qualifier %q", expr.Qualifier)
		}
		ownerName = res.Symbol.Name
	}

	if srcCls, _, ok := p.findSourceField(ownerName, expr.Name); ok {
		fsym := symbol.FieldSymbol{Owner: srcCls.Symbol, Name: expr.Name}
		if _, owned := p.fields[fsym]; !owned {
			// Declared but not a syntactic constant (spec glossary): not
			// usable in a constant expression.
			return types.Const{}, fmt.Errorf("constant: %s is not a compile-time constant", fsym)
		}
		v, ok, err := p.lazy.Get(fsym)
		if err != nil {
			return types.Const{}, err
		}
		if !ok || p.notConstant[fsym] {
			return types.Const{}, fmt.Errorf("constant: %s is not a compile-time constant", fsym)
		}
		return v, nil
	}

	if rec, ok := p.findClasspathField(ownerName, expr.Name); ok {
		return decodeFieldConst(rec), nil
	}

	p.sink.Report(diag.NotFound, ownerName, 0, "cannot resolve field %q", expr.Name)
	return types.Const{}, fmt.Errorf("constant: field %q not found on %s", expr.Name, ownerName)
}

// findSourceField searches className's own declared fields, then climbs
// the superclass chain while the superclass is itself a source class.
// Climbing into a classpath superclass for an inherited constant is not
// performed here: inherited classpath constants are rare enough in
// practice (constants are conventionally referenced through their
// declaring type) that this module defers to a direct classpath lookup
// instead of chaining further.
func (p *Pass) findSourceField(className, fieldName string) (*typepass.Class, *typepass.FieldBinding, bool) {
	name := className
	for {
		cls, ok := p.tp.Classes[name]
		if !ok {
			return nil, nil, false
		}
		for _, fb := range cls.Fields {
			if fb.Decl.Name == fieldName {
				return cls, fb, true
			}
		}
		if cls.Super == nil {
			return nil, nil, false
		}
		name = cls.Super.Name
	}
}

func (p *Pass) findClasspathField(className, fieldName string) (*classfile.FieldRec, bool) {
	name := className
	for name != "" {
		view, ok := p.cp.Lookup(name)
		if !ok {
			return nil, false
		}
		for _, fr := range view.Fields() {
			if fr.Name == fieldName {
				if fr.Access&classfile.AccFinal == 0 || fr.Const == nil {
					return nil, false
				}
				return &fr, true
			}
		}
		name = view.Super()
	}
	return nil, false
}

func decodeFieldConst(fr *classfile.FieldRec) types.Const {
	kind := primitiveKindFromDescriptor(fr.Type)
	c := fr.Const
	switch kind {
	case types.Boolean:
		return types.Const{Kind: types.Boolean, Bool: c.Bool || c.Wide != 0}
	case types.StringKind:
		return types.NewString(c.Str)
	case types.Float, types.Double:
		return types.Const{Kind: kind, Float: c.Flt}
	default:
		return types.Const{Kind: kind, Wide: c.Wide}
	}
}

// primitiveKindFromDescriptor maps a class-file-style field descriptor to
// a PrimitiveKind, per spec.md §6's "descriptor-derived type" contract.
func primitiveKindFromDescriptor(desc string) types.PrimitiveKind {
	switch desc {
	case "Z":
		return types.Boolean
	case "B":
		return types.Byte
	case "S":
		return types.Short
	case "C":
		return types.Char
	case "I":
		return types.Int
	case "J":
		return types.Long
	case "F":
		return types.Float
	case "D":
		return types.Double
	default:
		return types.StringKind
	}
}

func (p *Pass) evalUnary(cls *typepass.Class, e ast.UnaryExpr) (types.Const, error) {
	v, err := p.evalExpr(cls, e.Operand)
	if err != nil {
		return types.Const{}, err
	}
	switch e.Op {
	case "!":
		return types.NewBool(!v.Bool), nil
	case "-":
		if v.Kind == types.Float || v.Kind == types.Double {
			return types.Const{Kind: v.Kind, Float: -v.Float}, nil
		}
		kind := v.Kind
		if kind.IsNarrowerThanInt() {
			kind = types.Int
		}
		return types.Const{Kind: kind, Wide: -types.Widen(v)}, nil
	case "+":
		return v, nil
	case "~":
		kind := v.Kind
		if kind.IsNarrowerThanInt() {
			kind = types.Int
		}
		return types.Const{Kind: kind, Wide: ^types.Widen(v)}, nil
	default:
		return types.Const{}, fmt.Errorf("constant: unsupported unary operator %q", e.Op)
	}
}

func (p *Pass) evalBinary(cls *typepass.Class, e ast.BinaryExpr) (types.Const, error) {
	// Boolean short-circuit (spec.md §4.7): evaluate the left operand
	// first, and only evaluate the right operand when its value is
	// actually needed.
	if e.Op == "&&" || e.Op == "||" {
		left, err := p.evalExpr(cls, e.Left)
		if err != nil {
			return types.Const{}, err
		}
		if e.Op == "&&" && !left.Bool {
			return types.NewBool(false), nil
		}
		if e.Op == "||" && left.Bool {
			return types.NewBool(true), nil
		}
		right, err := p.evalExpr(cls, e.Right)
		if err != nil {
			return types.Const{}, err
		}
		if e.Op == "&&" {
			return types.NewBool(left.Bool && right.Bool), nil
		}
		return types.NewBool(left.Bool || right.Bool), nil
	}

	left, err := p.evalExpr(cls, e.Left)
	if err != nil {
		return types.Const{}, err
	}
	right, err := p.evalExpr(cls, e.Right)
	if err != nil {
		return types.Const{}, err
	}

	if e.Op == "+" && (left.Kind == types.StringKind || right.Kind == types.StringKind) {
		return types.NewString(left.String() + right.String()), nil
	}

	switch e.Op {
	case "==", "!=", "<", "<=", ">", ">=":
		return evalComparison(e.Op, left, right), nil
	}

	if left.Kind == types.Float || left.Kind == types.Double || right.Kind == types.Float || right.Kind == types.Double {
		return evalFloatBinary(e.Op, left, right)
	}

	resultKind := types.WiderKind(left.Kind, right.Kind)
	lw, rw := types.Widen(left), types.Widen(right)
	var wide int64
	switch e.Op {
	case "+":
		wide = lw + rw
	case "-":
		wide = lw - rw
	case "*":
		wide = lw * rw
	case "/":
		if rw == 0 {
			return types.Const{}, fmt.Errorf("constant: division by zero")
		}
		wide = lw / rw
	case "%":
		if rw == 0 {
			return types.Const{}, fmt.Errorf("constant: division by zero")
		}
		wide = lw % rw
	case "&":
		wide = lw & rw
	case "|":
		wide = lw | rw
	case "^":
		wide = lw ^ rw
	case "<<":
		wide = lw << uint(rw)
	case ">>":
		wide = lw >> uint(rw)
	case ">>>":
		wide = int64(uint64(lw) >> uint(rw))
	default:
		return types.Const{}, fmt.Errorf("constant: unsupported binary operator %q", e.Op)
	}
	return types.Const{Kind: resultKind, Wide: wide}, nil
}

func evalComparison(op string, left, right types.Const) types.Const {
	var lf, rf float64
	if left.Kind == types.Float || left.Kind == types.Double || right.Kind == types.Float || right.Kind == types.Double {
		lf, rf = left.Float, right.Float
		if left.Kind != types.Float && left.Kind != types.Double {
			lf = float64(types.Widen(left))
		}
		if right.Kind != types.Float && right.Kind != types.Double {
			rf = float64(types.Widen(right))
		}
	} else {
		lf, rf = float64(types.Widen(left)), float64(types.Widen(right))
	}
	switch op {
	case "==":
		return types.NewBool(lf == rf)
	case "!=":
		return types.NewBool(lf != rf)
	case "<":
		return types.NewBool(lf < rf)
	case "<=":
		return types.NewBool(lf <= rf)
	case ">":
		return types.NewBool(lf > rf)
	default:
		return types.NewBool(lf >= rf)
	}
}

func evalFloatBinary(op string, left, right types.Const) (types.Const, error) {
	kind := types.Double
	if left.Kind != types.Double && right.Kind != types.Double {
		kind = types.Float
	}
	lf := left.Float
	if left.Kind != types.Float && left.Kind != types.Double {
		lf = float64(types.Widen(left))
	}
	rf := right.Float
	if right.Kind != types.Float && right.Kind != types.Double {
		rf = float64(types.Widen(right))
	}
	var v float64
	switch op {
	case "+":
		v = lf + rf
	case "-":
		v = lf - rf
	case "*":
		v = lf * rf
	case "/":
		v = lf / rf
	default:
		return types.Const{}, fmt.Errorf("constant: unsupported floating binary operator %q", op)
	}
	return types.Const{Kind: kind, Float: v}, nil
}

func (p *Pass) evalCast(cls *typepass.Class, e ast.CastExpr) (types.Const, error) {
	v, err := p.evalExpr(cls, e.Operand)
	if err != nil {
		return types.Const{}, err
	}
	if e.Type == nil || e.Type.Kind != ast.RefPrimitive {
		return v, nil
	}
	kind := primitiveKindFromKeyword(e.Type.Prim)
	if kind == types.Float || kind == types.Double {
		if v.Kind == types.Float || v.Kind == types.Double {
			return types.Const{Kind: kind, Float: v.Float}, nil
		}
		return types.Const{Kind: kind, Float: float64(types.Widen(v))}, nil
	}
	if v.Kind == types.Float || v.Kind == types.Double {
		return types.NarrowTo(kind, types.Const{Kind: types.Int, Wide: int64(v.Float)}), nil
	}
	return types.NarrowTo(kind, v), nil
}

func primitiveKindFromKeyword(p ast.PrimName) types.PrimitiveKind {
	switch p {
	case "boolean":
		return types.Boolean
	case "byte":
		return types.Byte
	case "short":
		return types.Short
	case "char":
		return types.Char
	case "long":
		return types.Long
	case "float":
		return types.Float
	case "double":
		return types.Double
	default:
		return types.Int
	}
}

func (p *Pass) evalTernary(cls *typepass.Class, e ast.TernaryExpr) (types.Const, error) {
	cond, err := p.evalExpr(cls, e.Cond)
	if err != nil {
		return types.Const{}, err
	}
	if cond.Bool {
		return p.evalExpr(cls, e.Then)
	}
	return p.evalExpr(cls, e.Else)
}

func (p *Pass) evalConcat(cls *typepass.Class, e ast.ConcatExpr) (types.Const, error) {
	var sb []byte
	for _, operand := range e.Operands {
		v, err := p.evalExpr(cls, operand)
		if err != nil {
			return types.Const{}, err
		}
		sb = append(sb, v.String()...)
	}
	return types.NewString(string(sb)), nil
}
