// Package cvet ties the phases together: source decoding, lexing,
// parsing, semantic analysis and the style pass. Each phase keeps
// going after errors, so one run reports everything it can find.
package cvet

import (
	"context"

	"github.com/cvet-dev/cvet/cvet/analyzer"
	"github.com/cvet-dev/cvet/cvet/ast"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
	"github.com/cvet-dev/cvet/cvet/lexer"
	"github.com/cvet-dev/cvet/cvet/lint"
	"github.com/cvet-dev/cvet/cvet/parser"
	"github.com/cvet-dev/cvet/cvet/source"
)

// Output is the result of one analysis pass. Tree and Table are always
// usable, even for badly broken input; Diagnostics is sorted by span
// start and deduplicated.
type Output struct {
	Tree        ast.TranslationUnit
	Table       *analyzer.SymbolTable
	Diagnostics []diagnostic.Diagnostic
}

func (self Output) HasErrors() bool {
	for _, diag := range self.Diagnostics {
		if diag.Level == diagnostic.LevelError {
			return true
		}
	}
	return false
}

// Analyze runs the full pipeline over raw file contents. The returned
// error is non-nil only when the input cannot be decoded or the context
// was cancelled; every finding is a diagnostic in the output.
func Analyze(ctx context.Context, raw []byte, filename string, lintConfig lint.Config) (Output, *errors.Error) {
	program, err := source.Decode(raw, filename)
	if err != nil {
		// undecodable input is the one condition no later phase can
		// recover from; it still surfaces as a diagnostic so callers
		// deal with a single result shape
		return Output{
			Diagnostics: []diagnostic.Diagnostic{{
				Phase:   diagnostic.PhaseLexical,
				Level:   diagnostic.LevelError,
				Code:    diagnostic.InvalidEncoding,
				Message: err.Message,
				Span:    err.Span,
			}},
		}, err
	}

	diags := diagnostic.NewCollector()

	pars := parser.NewParser(ctx, lexer.NewLexer(program, filename, diags), filename, diags)
	tree, parseErr := pars.Parse()
	if parseErr != nil {
		return Output{Tree: tree, Diagnostics: diags.DrainSorted()}, parseErr
	}

	anal := analyzer.NewAnalyzer(ctx, filename, diags)
	table, checkErr := anal.Check(tree)
	if checkErr != nil {
		return Output{Tree: tree, Table: table, Diagnostics: diags.DrainSorted()}, checkErr
	}

	linter := lint.NewLinter(lintConfig, diags)
	linter.Check(tree)

	return Output{Tree: tree, Table: table, Diagnostics: diags.DrainSorted()}, nil
}

// Tokenize runs only the lexer, returning the full token stream
// including the trailing EOF token.
func Tokenize(raw []byte, filename string) ([]lexer.Token, []diagnostic.Diagnostic, *errors.Error) {
	program, err := source.Decode(raw, filename)
	if err != nil {
		return nil, nil, err
	}

	diags := diagnostic.NewCollector()
	lex := lexer.NewLexer(program, filename, diags)

	tokens := make([]lexer.Token, 0)
	for {
		token := lex.NextToken()
		tokens = append(tokens, token)
		if token.Kind == lexer.EOF {
			break
		}
	}
	return tokens, diags.DrainSorted(), nil
}

// Parse runs the lexer and parser, skipping semantic analysis.
func Parse(ctx context.Context, raw []byte, filename string) (ast.TranslationUnit, []diagnostic.Diagnostic, *errors.Error) {
	program, err := source.Decode(raw, filename)
	if err != nil {
		return ast.TranslationUnit{Filename: filename}, nil, err
	}

	diags := diagnostic.NewCollector()
	pars := parser.NewParser(ctx, lexer.NewLexer(program, filename, diags), filename, diags)
	tree, parseErr := pars.Parse()
	return tree, diags.DrainSorted(), parseErr
}
