package analyzer

import (
	"context"
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/cvet-dev/cvet/cvet/ast"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
)

// suggestionDistance is the largest edit distance at which a visible
// name is still offered as a `did you mean` candidate.
const suggestionDistance = 2

type functionContext struct {
	ident      string
	returnType Type
	returnSpan errors.Span
}

type Analyzer struct {
	ctx      context.Context
	filename string
	diags    *diagnostic.Collector

	table   *SymbolTable
	current *Scope

	// records maps struct and union tags to their (possibly still
	// incomplete) type. C keeps tags in their own namespace.
	records map[string]*RecordType

	loopDepth       uint
	currentFunction *functionContext
}

func NewAnalyzer(ctx context.Context, filename string, diags *diagnostic.Collector) Analyzer {
	table := NewSymbolTable()
	return Analyzer{
		ctx:      ctx,
		filename: filename,
		diags:    diags,
		table:    table,
		current:  table.Global,
		records:  make(map[string]*RecordType),
	}
}

// Check walks the translation unit, fills the symbol table and emits
// semantic diagnostics. The returned error is non-nil only when the
// context was cancelled; every finding travels through the collector.
func (self *Analyzer) Check(tree ast.TranslationUnit) (*SymbolTable, *errors.Error) {
	for _, declaration := range tree.Declarations {
		if err := self.declaration(declaration); err != nil {
			return self.table, err
		}
	}
	return self.table, nil
}

func (self *Analyzer) cancelled() *errors.Error {
	select {
	case <-self.ctx.Done():
		return errors.NewError(
			errors.Span{Filename: self.filename},
			fmt.Sprintf("Semantic analysis has been cancelled: %s", self.ctx.Err()),
			errors.CancelledError,
		)
	default:
		return nil
	}
}

//
// Diagnostic helpers
//

func (self *Analyzer) semanticError(code diagnostic.Code, message string, span errors.Span, notes ...string) {
	self.diags.Emit(diagnostic.Diagnostic{
		Phase:   diagnostic.PhaseSemantic,
		Level:   diagnostic.LevelError,
		Code:    code,
		Message: message,
		Notes:   notes,
		Span:    span,
	})
}

func (self *Analyzer) semanticWarning(code diagnostic.Code, message string, span errors.Span, notes ...string) {
	self.diags.Emit(diagnostic.Diagnostic{
		Phase:   diagnostic.PhaseSemantic,
		Level:   diagnostic.LevelWarning,
		Code:    code,
		Message: message,
		Notes:   notes,
		Span:    span,
	})
}

//
// Scope management
//

func (self *Analyzer) pushScope() {
	self.current = self.table.NewScope(self.current)
}

// dropScope leaves the current scope, reporting its unused variables
// and parameters on the way out. The scope itself stays in the table.
func (self *Analyzer) dropScope() {
	for _, symbol := range self.table.Symbols() {
		if symbol.ScopeID != self.current.ID || symbol.Used {
			continue
		}
		if symbol.Kind != VariableSymbolKind && symbol.Kind != ParameterSymbolKind {
			continue
		}
		self.semanticWarning(
			diagnostic.UnusedSymbol,
			fmt.Sprintf("%s '%s' is unused", capitalized(symbol.Kind.String()), symbol.Name),
			symbol.Span,
			fmt.Sprintf("Remove the %s '%s' or use its value", symbol.Kind, symbol.Name),
		)
	}
	self.current = self.current.Parent
}

func capitalized(word string) string {
	if word == "" || word[0] < 'a' || word[0] > 'z' {
		return word
	}
	return string(word[0]-'a'+'A') + word[1:]
}

//
// Symbol declaration and resolution
//

// declareSymbol inserts a symbol into the current scope. Duplicates in
// the same scope are errors; shadowing an outer declaration is a
// warning. The symbol is inserted either way so that later uses
// resolve to something sensible.
func (self *Analyzer) declareSymbol(symbol *Symbol) *Symbol {
	if previous, found := self.current.Lookup(symbol.Name); found {
		self.semanticError(
			diagnostic.DuplicateDeclaration,
			fmt.Sprintf("Duplicate declaration of '%s' in the same scope", symbol.Name),
			symbol.Span,
			fmt.Sprintf("'%s' was previously declared at %s", symbol.Name, previous.Span),
		)
		return previous
	}
	if self.current.Parent != nil {
		if shadowed, found := self.table.LookupChain(self.current.Parent, symbol.Name); found && shadowed.Kind != FunctionSymbolKind {
			self.semanticWarning(
				diagnostic.ShadowedDeclaration,
				fmt.Sprintf("Declaration of '%s' shadows an outer declaration", symbol.Name),
				symbol.Span,
				fmt.Sprintf("The shadowed '%s' was declared at %s", symbol.Name, shadowed.Span),
			)
		}
	}
	self.table.Insert(self.current, symbol)
	return symbol
}

// resolveSymbol looks a name up through the scope chain, emitting an
// undeclared-identifier error with a spelling suggestion on failure.
func (self *Analyzer) resolveSymbol(name string, span errors.Span) (*Symbol, bool) {
	if symbol, found := self.table.LookupChain(self.current, name); found {
		return symbol, true
	}
	notes := make([]string, 0)
	if closest := self.closestName(name); closest != "" {
		notes = append(notes, fmt.Sprintf("A declaration with a similar name exists: did you mean '%s'?", closest))
	}
	self.semanticError(
		diagnostic.UndeclaredIdentifier,
		fmt.Sprintf("Use of undeclared identifier '%s'", name),
		span,
		notes...,
	)
	return nil, false
}

// closestName returns the visible name nearest to `name` by edit
// distance, or the empty string when nothing is close enough. Ties are
// broken lexicographically to keep output deterministic.
func (self *Analyzer) closestName(name string) string {
	best := ""
	bestDistance := suggestionDistance + 1
	for scope := self.current; scope != nil; scope = scope.Parent {
		for candidate := range scope.symbols {
			if candidate == name {
				continue
			}
			distance := levenshtein.ComputeDistance(name, candidate)
			if distance < bestDistance || (distance == bestDistance && (best == "" || candidate < best)) {
				best = candidate
				bestDistance = distance
			}
		}
	}
	return best
}
