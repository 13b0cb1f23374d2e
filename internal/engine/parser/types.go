package parser

// SourcePosition is the span of a declaration or a usage site.
// Lines are 1-based, columns 0-based.
type SourcePosition struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

type DeclarationKind int

const (
	KindFunction DeclarationKind = iota
	KindClass
	KindVariable
)

func (k DeclarationKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Declaration is one symbol found by the declaration pass, already carrying
// its globally unique qualified name.
type Declaration struct {
	Name     string
	QName    string
	Kind     DeclarationKind
	Position SourcePosition

	// OwnerClass is the qname of the enclosing class when the declaration
	// was reclassified as a method, empty otherwise.
	OwnerClass string
}

// ImportUsage is an unresolved usage edge: the dependency pass only knows
// the target's qualified name. Reconciliation to real node ids happens later.
type ImportUsage struct {
	ConsumerID     string
	TargetQName    string
	TargetSymbol   string
	Alias          string
	Module         string // module part of the originating import statement
	ImportPosition SourcePosition
	UsagePositions []SourcePosition
}

type CallKind string

const (
	CallDirect      CallKind = "direct"
	CallMethod      CallKind = "method"
	CallConstructor CallKind = "constructor"
)

// Call is an unresolved call edge produced by the dependency pass.
type Call struct {
	ConsumerID  string
	TargetQName string
	Kind        CallKind
	Position    SourcePosition
}

// WildcardImport records a `from M import *` statement. It introduces no
// alias and cannot be resolved symbol-by-symbol.
type WildcardImport struct {
	Module   string
	Position SourcePosition
}

// DetailResult accumulates everything the dependency pass finds in one file.
type DetailResult struct {
	Usages    []ImportUsage
	Calls     []Call
	Wildcards []WildcardImport
}

// ContentReader supplies raw file content for cache-miss re-parses.
type ContentReader interface {
	ReadFile(path string) ([]byte, error)
}
