package analyzer

import (
	"github.com/cvet-dev/cvet/cvet/errors"
)

type SymbolKind uint8

const (
	VariableSymbolKind SymbolKind = iota
	ParameterSymbolKind
	FunctionSymbolKind
	TypeSymbolKind
	EnumConstantSymbolKind
)

func (self SymbolKind) String() string {
	switch self {
	case VariableSymbolKind:
		return "variable"
	case ParameterSymbolKind:
		return "parameter"
	case FunctionSymbolKind:
		return "function"
	case TypeSymbolKind:
		return "type"
	case EnumConstantSymbolKind:
		return "enum constant"
	default:
		panic("A new symbol kind was introduced without updating this code")
	}
}

type Symbol struct {
	Name    string
	Kind    SymbolKind
	Type    Type
	ScopeID uint
	Span    errors.Span

	// Used flips once the symbol is read anywhere; unused symbols are
	// reported when their scope is dropped.
	Used bool
	// Initialized tracks whether a variable has been given a value yet.
	// Parameters and file-scope variables start out initialized.
	Initialized bool
	// Defined distinguishes a function definition from a mere prototype.
	Defined bool

	warnedUninitialized bool
}

// Scope is one lexical scope. Scopes stay reachable through the symbol
// table after they are popped so that tooling can inspect the finished
// program.
type Scope struct {
	ID      uint
	Parent  *Scope
	symbols map[string]*Symbol
}

// Lookup searches this scope only.
func (self *Scope) Lookup(name string) (*Symbol, bool) {
	symbol, found := self.symbols[name]
	return symbol, found
}

func (self *Scope) insert(symbol *Symbol) {
	self.symbols[symbol.Name] = symbol
}

// SymbolTable owns every scope and symbol created during a check,
// including ones whose scope has already ended.
type SymbolTable struct {
	Global  *Scope
	scopes  []*Scope
	symbols []*Symbol
}

func NewSymbolTable() *SymbolTable {
	global := &Scope{
		ID:      0,
		Parent:  nil,
		symbols: make(map[string]*Symbol),
	}
	return &SymbolTable{
		Global:  global,
		scopes:  []*Scope{global},
		symbols: make([]*Symbol, 0),
	}
}

// NewScope creates a child scope of `parent` and retains it.
func (self *SymbolTable) NewScope(parent *Scope) *Scope {
	scope := &Scope{
		ID:      uint(len(self.scopes)),
		Parent:  parent,
		symbols: make(map[string]*Symbol),
	}
	self.scopes = append(self.scopes, scope)
	return scope
}

// Scopes returns every scope ever created, the global scope first.
func (self *SymbolTable) Scopes() []*Scope { return self.scopes }

// Symbols returns every symbol in declaration order.
func (self *SymbolTable) Symbols() []*Symbol { return self.symbols }

// Insert places a symbol into `scope`. The caller has already checked
// for duplicates.
func (self *SymbolTable) Insert(scope *Scope, symbol *Symbol) {
	symbol.ScopeID = scope.ID
	scope.insert(symbol)
	self.symbols = append(self.symbols, symbol)
}

// LookupChain resolves a name starting at `scope` and walking towards
// the global scope.
func (self *SymbolTable) LookupChain(scope *Scope, name string) (*Symbol, bool) {
	for current := scope; current != nil; current = current.Parent {
		if symbol, found := current.Lookup(name); found {
			return symbol, true
		}
	}
	return nil, false
}
