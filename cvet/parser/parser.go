package parser

import (
	"context"
	"fmt"

	"github.com/cvet-dev/cvet/cvet/ast"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
	"github.com/cvet-dev/cvet/cvet/lexer"
)

// The Parser builds one TranslationUnit over the token stream, recovering
// from malformed constructs via panic-mode synchronization. It never
// fails on C-level malformation: every fault becomes a diagnostic plus an
// error node. The only hard error it can return is pass cancellation.
type Parser struct {
	ctx       context.Context
	lexer     lexer.Lexer
	prevToken lexer.Token
	currToken lexer.Token
	diags     *diagnostic.Collector
	// typedef names fed forward from completed declarations, used to
	// disambiguate type-vs-identifier
	typedefs map[string]struct{}
	filename string
}

func NewParser(ctx context.Context, lex lexer.Lexer, filename string, diags *diagnostic.Collector) Parser {
	return Parser{
		ctx:       ctx,
		lexer:     lex,
		prevToken: lexer.UnknownToken(errors.Location{}),
		currToken: lexer.UnknownToken(errors.Location{}),
		diags:     diags,
		typedefs:  make(map[string]struct{}),
		filename:  filename,
	}
}

func (self *Parser) next() {
	self.prevToken = self.currToken
	self.currToken = self.lexer.NextToken()
}

// cancelled is checked at statement-level recovery points so that an
// in-flight pass can be abandoned by a newer one.
func (self *Parser) cancelled() *errors.Error {
	select {
	case <-self.ctx.Done():
		return errors.NewError(self.currToken.Span, "analysis pass cancelled", errors.CancelledError)
	default:
		return nil
	}
}

func (self *Parser) Parse() (ast.TranslationUnit, *errors.Error) {
	self.next()
	startLoc := self.currToken.Span.Start

	declarations := make([]ast.Declaration, 0)

	for self.currToken.Kind != lexer.EOF {
		if err := self.cancelled(); err != nil {
			return ast.TranslationUnit{}, err
		}

		if self.currToken.Kind == lexer.Error {
			// already reported by the lexer
			self.next()
			continue
		}

		// a free-standing block: its contents must not be mistaken for
		// new translation-unit declarations
		if self.currToken.Kind == lexer.LCurly {
			block, err := self.blockStatement()
			if err != nil {
				return ast.TranslationUnit{}, err
			}
			declarations = append(declarations, ast.BlockDeclaration{
				Block: block,
				Range: block.Range,
			})
			continue
		}

		if !self.isDeclarationStart() {
			errToken := self.currToken
			span, count := self.syncDeclaration()
			self.diags.Emit(diagnostic.Diagnostic{
				Phase:    diagnostic.PhaseSyntax,
				Level:    diagnostic.LevelError,
				Code:     diagnostic.ExpectedDeclaration,
				Message:  fmt.Sprintf("Expected declaration, found '%s'", errToken.Kind),
				Span:     errToken.Span,
				Recovery: fmt.Sprintf("skipped %d token(s) up to the next declaration", count),
			})
			declarations = append(declarations, ast.ErrorDeclaration{Range: span})
			continue
		}

		decl, err := self.declaration(true)
		if err != nil {
			return ast.TranslationUnit{}, err
		}
		declarations = append(declarations, decl)
	}

	return ast.TranslationUnit{
		Declarations: declarations,
		Range: errors.Span{
			Start:    startLoc,
			End:      self.currToken.Span.End,
			Filename: self.filename,
		},
		Filename: self.filename,
	}, nil
}

//
// Error helpers
//

func (self *Parser) syntaxError(code diagnostic.Code, message string, span errors.Span) {
	self.diags.Error(diagnostic.PhaseSyntax, code, message, nil, span)
}

// expectRecoverable reports a missing token without discarding anything:
// the parse continues as if the token had been present.
func (self *Parser) expectRecoverable(expected lexer.TokenKind) bool {
	if self.currToken.Kind != expected {
		self.syntaxError(
			diagnostic.ExpectedToken,
			fmt.Sprintf("Expected '%s', found '%s'", expected, self.currToken.Kind),
			self.currToken.Span,
		)
		return false
	}
	self.next()
	return true
}

// spanFrom closes a half-open span at the end of the last consumed token.
func (self *Parser) spanFrom(start errors.Location) errors.Span {
	return errors.Span{
		Start:    start,
		End:      self.prevToken.Span.End,
		Filename: self.filename,
	}
}

//
// Panic-mode synchronization. The sets differ by grammar level to avoid
// over-discarding.
//

// syncDeclaration discards tokens until something can start a new
// declaration, or a `;` / `}` was consumed.
func (self *Parser) syncDeclaration() (errors.Span, int) {
	startLoc := self.currToken.Span.Start
	skipped := 0

	for {
		switch self.currToken.Kind {
		case lexer.EOF:
			return self.spanFrom(startLoc), skipped
		case lexer.Semicolon, lexer.RCurly:
			self.next()
			skipped++
			return self.spanFrom(startLoc), skipped
		case lexer.LCurly:
			// resume in front of the block; skipping into it would turn
			// its contents into translation-unit declarations
			return self.spanFrom(startLoc), skipped
		default:
			if self.isDeclarationStart() && skipped > 0 {
				return self.spanFrom(startLoc), skipped
			}
			self.next()
			skipped++
		}
	}
}

// syncStatement discards tokens until a statement can resume: past a `;`,
// in front of a `}`, or at a token that can start a new statement.
func (self *Parser) syncStatement() (errors.Span, int) {
	startLoc := self.currToken.Span.Start
	skipped := 0

	for {
		switch self.currToken.Kind {
		case lexer.EOF, lexer.RCurly:
			return self.spanFrom(startLoc), skipped
		case lexer.Semicolon:
			self.next()
			skipped++
			return self.spanFrom(startLoc), skipped
		case lexer.LCurly, lexer.If, lexer.While, lexer.Do, lexer.For,
			lexer.Return, lexer.Break, lexer.Continue:
			if skipped > 0 {
				return self.spanFrom(startLoc), skipped
			}
			self.next()
			skipped++
		default:
			if self.isDeclarationStart() && skipped > 0 {
				return self.spanFrom(startLoc), skipped
			}
			self.next()
			skipped++
		}
	}
}
