// Package ast defines the syntax-tree contract the binder consumes
// (spec.md §6): CompUnit and the declaration/expression nodes referenced by
// the passes. The tokenizer/parser that produces these values is an
// external collaborator out of this module's scope; ast only fixes the
// shape both sides agree on.
package ast

// Pos is a byte offset into a compilation unit's source text, following
// golang.org/x/tools/go/ast/astutil's convention of plain integer offsets
// rather than a line/column pair, resolved to line/column only at
// diagnostic-printing time.
type Pos int

// NoPos is the zero value meaning "no position available".
const NoPos Pos = 0

// CompUnit is one parsed source file (spec.md glossary).
type CompUnit struct {
	SourceFile string
	Package    *PkgDecl // nil if the unit declares no package
	Imports    []Import
	Types      []*TypeDecl
}

// PkgDecl is a unit's package declaration.
type PkgDecl struct {
	Segments []string
	Annos    []*Annotation
	Pos      Pos
}

// ImportKind classifies an import declaration (spec.md §6).
type ImportKind int

const (
	SingleType ImportKind = iota
	OnDemandType
	SingleStaticMember
	OnDemandStaticMember
)

// Import is one import declaration.
type Import struct {
	Kind ImportKind
	// Path is the package or type path being imported, e.g. "java.util" for
	// an on-demand type import or "java.util.List" for a single-type import.
	Path string
	// Member is set for SingleStaticMember/OnDemandStaticMember: the static
	// member name (empty for OnDemandStaticMember, meaning "all members").
	Member string
	Pos    Pos
}

// Modifier enumerates declaration modifiers relevant to binding.
type Modifier int

const (
	ModPublic Modifier = 1 << iota
	ModPrivate
	ModProtected
	ModStatic
	ModFinal
	ModAbstract
)

// DeclKind mirrors symbol.Kind at the syntax level.
type DeclKind int

const (
	DeclClass DeclKind = iota
	DeclInterface
	DeclEnum
	DeclAnnotation
)

// TypeDecl is a top-level or nested type declaration.
type TypeDecl struct {
	Kind      DeclKind
	Name      string
	Modifiers Modifier
	Annos     []*Annotation

	TypeParams []*TypeParamDecl

	Extends    *TypeRef   // nil if absent
	Implements []*TypeRef // "implements"/"extends" (interfaces) entries

	Fields      []*FieldDecl
	Methods     []*MethodDecl
	NestedTypes []*TypeDecl

	Pos, End Pos
}

// TypeParamDecl is a declared generic type-parameter, bound deferred until
// TypePass (spec.md §4.5 step 3).
type TypeParamDecl struct {
	Name   string
	Bounds []*TypeRef
	Pos    Pos
}

// TypeRefKind tags which alternative a TypeRef syntax node holds; resolved
// into a types.Type by the passes.
type TypeRefKind int

const (
	RefPrimitive TypeRefKind = iota
	RefVoid
	RefName // possibly-qualified class/type-variable name with type args
	RefArray
	RefWildcard
)

// PrimName is the textual primitive keyword ("int", "boolean", ...).
type PrimName string

// TypeRef is an unresolved syntactic type reference.
type TypeRef struct {
	Kind TypeRefKind

	Prim PrimName

	// RefName: dotted segments, each with optional type arguments, e.g.
	// "A<X>.B" -> [{Name:"A", Args:[X]}, {Name:"B"}].
	NameSegments []NameSegment

	Element *TypeRef // RefArray

	WildcardExtends *TypeRef // RefWildcard, bound-kind extends
	WildcardSuper   *TypeRef // RefWildcard, bound-kind super

	Annos []*Annotation
	Pos   Pos
}

// NameSegment is one dotted segment of a RefName TypeRef.
type NameSegment struct {
	Name string
	Args []*TypeRef
}

// FieldDecl is a field declaration.
type FieldDecl struct {
	Name        string
	Type        *TypeRef
	Modifiers   Modifier
	Annos       []*Annotation
	Initializer Expr // nil if none
	Pos         Pos
}

// MethodDecl is a method or constructor declaration.
type MethodDecl struct {
	Name          string
	IsConstructor bool
	Modifiers     Modifier
	Annos         []*Annotation
	TypeParams    []*TypeParamDecl
	Receiver      *TypeRef // non-nil only if the language models an explicit receiver type
	Params        []*ParamDecl
	Return        *TypeRef // nil for constructors
	Throws        []*TypeRef
	Pos           Pos
}

// ParamDecl is one formal parameter.
type ParamDecl struct {
	Name  string
	Type  *TypeRef
	Annos []*Annotation
}

// Annotation is a syntactic annotation use; Args are raw expressions until
// the constant evaluator folds them (spec.md §4.7).
type Annotation struct {
	TypeName string // possibly-qualified annotation type name
	Args     map[string]Expr
	Pos      Pos
}

// Expr is the recursive-descent expression AST the constant evaluator
// walks (spec.md §4.7).
type Expr interface{ exprTag() }

type LiteralExpr struct {
	Kind  LiteralKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

type LiteralKind int

const (
	LitBool LiteralKind = iota
	LitInt
	LitLong
	LitFloat
	LitDouble
	LitChar
	LitString
)

func (LiteralExpr) exprTag() {}

// NameExpr is a field reference, possibly qualified (e.g. "Other.CONST").
type NameExpr struct {
	Qualifier string // empty if unqualified
	Name      string
}

func (NameExpr) exprTag() {}

type UnaryExpr struct {
	Op      string
	Operand Expr
}

func (UnaryExpr) exprTag() {}

type BinaryExpr struct {
	Op          string
	Left, Right Expr
}

func (BinaryExpr) exprTag() {}

type CastExpr struct {
	Type    *TypeRef
	Operand Expr
}

func (CastExpr) exprTag() {}

type TernaryExpr struct {
	Cond, Then, Else Expr
}

func (TernaryExpr) exprTag() {}

// ConcatExpr models a chain of string-concatenation operands. The syntax
// builder does not produce it: it emits "+" as a BinaryExpr, which the
// evaluator concatenates when an operand is a string.
type ConcatExpr struct {
	Operands []Expr
}

func (ConcatExpr) exprTag() {}
