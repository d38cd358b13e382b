// Package types models the Type and constant-value variants shared by every
// binder pass, following inspector/graph/types.go's graph.Type shape but
// replacing its single-struct-with-every-field layout with a tagged
// variant, since a closed set of alternatives fits better than an open
// reflect.Kind-keyed struct.
package types

import "github.com/viant/javabind/symbol"

// Variant tags the alternative a Type value holds.
type Variant int

const (
	Primitive Variant = iota
	Void
	ClassType
	TypeVariable
	Array
	Wildcard
	// Error is the sentinel substituted when resolution fails, so later
	// passes can continue (spec §7).
	Error
)

// PrimitiveKind enumerates the primitive kinds plus the string pseudo-type,
// matching Const.Value's variant set.
type PrimitiveKind int

const (
	Boolean PrimitiveKind = iota
	Byte
	Short
	Char
	Int
	Long
	Float
	Double
	StringKind
)

// WildcardBound classifies a wildcard's bound, if any.
type WildcardBound int

const (
	NoBound WildcardBound = iota
	Extends
	Super
)

// Annotation is the slot for an annotation on a type use (spec §3, §4.6).
// TypePass creates one zero-valued placeholder per annotation on a type
// reference; no pass sets Type or Args. Resolved and folded annotations are
// in canon.Annotation.
type Annotation struct {
	Type *symbol.ClassSymbol
	Args map[string]any
}

// Segment is one simple-class level of a (possibly nested) class type,
// e.g. in "Outer<T>.Inner" there are two segments: Outer<T> and Inner.
type Segment struct {
	Sym       *symbol.ClassSymbol
	TypeArgs  []*Type
	Annos     []Annotation
}

// Type is the tagged union described in spec.md §3.
type Type struct {
	Variant Variant

	// Primitive
	PrimKind PrimitiveKind

	// ClassType: one segment per enclosing level, outermost first.
	Segments []Segment

	// TypeVariable
	TyVar *symbol.TyVarSymbol

	// Array
	Element *Type

	// Wildcard
	WildcardKind  WildcardBound
	WildcardBound *Type

	Annos []Annotation
}

// NewPrimitive builds a primitive Type.
func NewPrimitive(kind PrimitiveKind, annos ...Annotation) *Type {
	return &Type{Variant: Primitive, PrimKind: kind, Annos: annos}
}

// NewVoid builds the void Type.
func NewVoid() *Type { return &Type{Variant: Void} }

// NewClass builds a class Type from one or more segments, innermost last.
func NewClass(segments ...Segment) *Type {
	return &Type{Variant: ClassType, Segments: segments}
}

// NewArray builds an array Type over element.
func NewArray(element *Type, annos ...Annotation) *Type {
	return &Type{Variant: Array, Element: element, Annos: annos}
}

// NewTypeVariable builds a type-variable Type.
func NewTypeVariable(sym *symbol.TyVarSymbol, annos ...Annotation) *Type {
	return &Type{Variant: TypeVariable, TyVar: sym, Annos: annos}
}

// ErrorType is the sentinel substituted for a reference that failed to
// resolve (spec §7); later passes treat it as opaque and keep going.
func ErrorType() *Type { return &Type{Variant: Error} }

// IsError reports whether t is the error sentinel (nil counts as not-error
// so callers must still nil-check separately where a Type may be absent).
func (t *Type) IsError() bool { return t != nil && t.Variant == Error }

// ClassSymbolOf returns the symbol of the innermost (last) segment of a
// class-typed reference, or nil if t is not a class type.
func (t *Type) ClassSymbolOf() *symbol.ClassSymbol {
	if t == nil || t.Variant != ClassType || len(t.Segments) == 0 {
		return nil
	}
	return t.Segments[len(t.Segments)-1].Sym
}
