package classfile

// Record is the on-archive representation of one classpath/bootclasspath
// class entry. It stands in for a real binary class-file per the contract
// in spec.md §6 ("access flags, kind, supertype symbol, interface symbols,
// declared type parameters with bounds, fields ..., methods ..., annotations
// (retention-visible only)"); see SPEC_FULL.md §1 for why a JSON-lines
// encoding substitutes for the real binary format.
type Record struct {
	Name       string          `json:"name"` // canonical binary name
	Kind       string          `json:"kind"` // CLASS | INTERFACE | ENUM | ANNOTATION
	AccessFlag uint32          `json:"accessFlags"`
	Super      string          `json:"super,omitempty"`
	Interfaces []string        `json:"interfaces,omitempty"`
	TypeParams []TypeParamRec  `json:"typeParams,omitempty"`
	Fields     []FieldRec      `json:"fields,omitempty"`
	Methods    []MethodRec     `json:"methods,omitempty"`
	Annos      []AnnotationRec `json:"annotations,omitempty"`
}

type TypeParamRec struct {
	Name   string   `json:"name"`
	Bounds []string `json:"bounds,omitempty"`
}

// ConstRec carries an attribute-derived constant value for a final field of
// primitive/string type (spec.md §6).
type ConstRec struct {
	Kind string `json:"kind"` // boolean|byte|short|char|int|long|float|double|string
	Wide int64  `json:"wide,omitempty"`
	Flt  float64 `json:"float,omitempty"`
	Str  string `json:"str,omitempty"`
	Bool bool   `json:"bool,omitempty"`
}

type FieldRec struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"` // descriptor-derived type string, e.g. "I", "Ljava/lang/String;"
	Access    uint32    `json:"accessFlags"`
	Const     *ConstRec `json:"const,omitempty"`
	Annos     []AnnotationRec `json:"annotations,omitempty"`
}

type MethodRec struct {
	Name       string          `json:"name"`
	Descriptor string          `json:"descriptor"`
	Generic    string          `json:"genericSignature,omitempty"`
	Access     uint32          `json:"accessFlags"`
	Annos      []AnnotationRec `json:"annotations,omitempty"`
}

type AnnotationRec struct {
	Type string         `json:"type"`
	Args map[string]any `json:"args,omitempty"`
}

// Access flag bits relevant to binding (subset of the real class-file
// access_flags table).
const (
	AccPublic    uint32 = 0x0001
	AccFinal     uint32 = 0x0010
	AccInterface uint32 = 0x0200
	AccAbstract  uint32 = 0x0400
	AccAnnotation uint32 = 0x2000
	AccEnum      uint32 = 0x4000
	AccSynthetic uint32 = 0x1000
	AccDeprecated uint32 = 0x20000 // not a real class-file bit; this module's own synthesized marker for E4
	AccStatic    uint32 = 0x0008
)
