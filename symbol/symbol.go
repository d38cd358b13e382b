// Package symbol defines the opaque identities used across the binder:
// classes, fields, methods, and type variables. Equality is always by
// canonical name, never by pointer.
package symbol

import (
	"fmt"
	"sync"

	"github.com/minio/highwayhash"
)

// Kind classifies a ClassSymbol's declaration shape.
type Kind int

const (
	CLASS Kind = iota
	INTERFACE
	ENUM
	ANNOTATION
)

func (k Kind) String() string {
	switch k {
	case CLASS:
		return "CLASS"
	case INTERFACE:
		return "INTERFACE"
	case ENUM:
		return "ENUM"
	case ANNOTATION:
		return "ANNOTATION"
	default:
		return "UNKNOWN"
	}
}

// AccessFlags is the union of a declaration's modifier flags (spec.md
// §4.4 "Access flags are the union of modifier flags"), plus the synthetic
// bits the binder itself assigns (Synthetic for package-info, Deprecated
// when a @Deprecated annotation is observed, per E4).
type AccessFlags uint32

const (
	FlagPublic AccessFlags = 1 << iota
	FlagPrivate
	FlagProtected
	FlagStatic
	FlagFinal
	FlagAbstract
	FlagSynthetic
	FlagDeprecated
)

func (f AccessFlags) Has(bit AccessFlags) bool { return f&bit != 0 }

// Location marks where a class symbol was discovered.
type Location int

const (
	// Unassigned is the zero value; a symbol must never be observed in this
	// state once inserted into the top-level index.
	Unassigned Location = iota
	Source
	Boot
	Classpath
)

// ClassSymbol is the canonical identity of a class, interface, enum, or
// annotation type: a binary name of the form "pkg/seg/Outer$Inner$Leaf".
// Two ClassSymbols are the same class iff their Name fields are equal.
type ClassSymbol struct {
	Name     string
	Location Location
}

// PackageInfoLeaf is the synthetic leaf name used for a package's
// package-info declaration.
const PackageInfoLeaf = "package-info"

// String returns the canonical binary name.
func (c *ClassSymbol) String() string { return c.Name }

// Key returns the highwayhash-based intern bucket key for Name, reusing the
// same content-hash construction inspector/graph uses for node dedup.
func (c *ClassSymbol) Key() uint64 {
	h, _ := hashName(c.Name)
	return h
}

var internKey = []byte("JAVABIND-SYMBOL-TABLE-KEY-000001")

func hashName(name string) (uint64, error) {
	h, err := highwayhash.New64(internKey)
	if err != nil {
		return 0, err
	}
	_, err = h.Write([]byte(name))
	return h.Sum64(), err
}

// Table interns ClassSymbols so that equal canonical names always produce
// the same *ClassSymbol pointer, letting callers compare by identity after
// interning while equality is still defined by Name.
type Table struct {
	mu      sync.Mutex
	byName  map[string]*ClassSymbol
	buckets map[uint64][]*ClassSymbol
}

// NewTable creates an empty intern table.
func NewTable() *Table {
	return &Table{
		byName:  make(map[string]*ClassSymbol),
		buckets: make(map[uint64][]*ClassSymbol),
	}
}

// Intern returns the canonical *ClassSymbol for name, assigning loc the
// first time name is seen. Subsequent calls with a different loc do not
// change the recorded location: location is fixed at insertion time
// (spec invariant).
func (t *Table) Intern(name string, loc Location) *ClassSymbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sym, ok := t.byName[name]; ok {
		return sym
	}
	sym := &ClassSymbol{Name: name, Location: loc}
	t.byName[name] = sym
	key, _ := hashName(name)
	t.buckets[key] = append(t.buckets[key], sym)
	return sym
}

// Lookup returns the interned symbol for name, if any.
func (t *Table) Lookup(name string) (*ClassSymbol, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sym, ok := t.byName[name]
	return sym, ok
}

// FieldSymbol identifies a field by (owner, short name).
type FieldSymbol struct {
	Owner *ClassSymbol
	Name  string
}

func (f FieldSymbol) String() string { return fmt.Sprintf("%s#%s", f.Owner, f.Name) }

// MethodOwner is either a *ClassSymbol or a *MethodSymbol, matching the
// spec's "owner is either a class symbol or a method symbol" rule for
// type-variable owners.
type MethodOwner interface{ ownerTag() }

func (c *ClassSymbol) ownerTag() {}

// MethodSymbol identifies a method by (owner class, short name, Index).
// Overload resolution is out of scope for the binder (method bodies are not
// checked); each declared method gets its own MethodSymbol, and overloads
// of one name are told apart by Index, their declaration order.
type MethodSymbol struct {
	Owner *ClassSymbol
	Name  string
	Index int // ordinal among same-named declarations, for overloads
}

func (m *MethodSymbol) ownerTag() {}

func (m MethodSymbol) String() string { return fmt.Sprintf("%s#%s[%d]", m.Owner, m.Name, m.Index) }

// TyVarSymbol identifies a type-parameter symbol; Owner is a *ClassSymbol
// or a *MethodSymbol.
type TyVarSymbol struct {
	Owner MethodOwner
	Name  string
}

func (t TyVarSymbol) String() string { return fmt.Sprintf("%v<%s>", t.Owner, t.Name) }

// Equal reports whether two class symbols denote the same class.
func Equal(a, b *ClassSymbol) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name
}
