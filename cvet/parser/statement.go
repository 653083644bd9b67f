package parser

import (
	"fmt"

	"github.com/cvet-dev/cvet/cvet/ast"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
	"github.com/cvet-dev/cvet/cvet/lexer"
)

func (self *Parser) statement() (ast.Statement, *errors.Error) {
	if err := self.cancelled(); err != nil {
		return nil, err
	}

	switch self.currToken.Kind {
	case lexer.LCurly:
		block, err := self.blockStatement()
		if err != nil {
			return nil, err
		}
		return block, nil
	case lexer.If:
		return self.ifStatement()
	case lexer.While:
		return self.whileStatement()
	case lexer.Do:
		return self.doWhileStatement()
	case lexer.For:
		return self.forStatement()
	case lexer.Return:
		return self.returnStatement(), nil
	case lexer.Break:
		span := self.currToken.Span
		self.next()
		self.expectRecoverable(lexer.Semicolon)
		return ast.BreakStatement{Range: span}, nil
	case lexer.Continue:
		span := self.currToken.Span
		self.next()
		self.expectRecoverable(lexer.Semicolon)
		return ast.ContinueStatement{Range: span}, nil
	case lexer.Semicolon:
		span := self.currToken.Span
		self.next()
		return ast.EmptyStatement{Range: span}, nil
	case lexer.Error:
		// already reported by the lexer
		span := self.currToken.Span
		self.next()
		return ast.ErrorStatement{Range: span}, nil
	default:
		if self.isDeclarationStart() {
			decl, err := self.declaration(false)
			if err != nil {
				return nil, err
			}
			return ast.DeclarationStatement{
				Declaration: decl,
				Range:       decl.Span(),
			}, nil
		}
		return self.expressionStatement(), nil
	}
}

func (self *Parser) blockStatement() (ast.BlockStatement, *errors.Error) {
	startLoc := self.currToken.Span.Start
	self.expectRecoverable(lexer.LCurly)

	statements := make([]ast.Statement, 0)

	for self.currToken.Kind != lexer.RCurly && self.currToken.Kind != lexer.EOF {
		statement, err := self.statement()
		if err != nil {
			return ast.BlockStatement{}, err
		}
		statements = append(statements, statement)
	}

	self.expectRecoverable(lexer.RCurly)

	return ast.BlockStatement{
		Statements: statements,
		Range:      self.spanFrom(startLoc),
	}, nil
}

func (self *Parser) ifStatement() (ast.Statement, *errors.Error) {
	startLoc := self.currToken.Span.Start

	// skip the `if`
	self.next()

	self.expectRecoverable(lexer.LParen)
	condition := self.expression(0)
	self.expectRecoverable(lexer.RParen)

	then, err := self.statement()
	if err != nil {
		return nil, err
	}

	var elseBranch ast.Statement
	if self.currToken.Kind == lexer.Else {
		self.next()
		elseBranch, err = self.statement()
		if err != nil {
			return nil, err
		}
	}

	return ast.IfStatement{
		Condition: condition,
		Then:      then,
		Else:      elseBranch,
		Range:     self.spanFrom(startLoc),
	}, nil
}

func (self *Parser) whileStatement() (ast.Statement, *errors.Error) {
	startLoc := self.currToken.Span.Start

	// skip the `while`
	self.next()

	self.expectRecoverable(lexer.LParen)
	condition := self.expression(0)
	self.expectRecoverable(lexer.RParen)

	body, err := self.statement()
	if err != nil {
		return nil, err
	}

	return ast.WhileStatement{
		Condition: condition,
		Body:      body,
		Range:     self.spanFrom(startLoc),
	}, nil
}

func (self *Parser) doWhileStatement() (ast.Statement, *errors.Error) {
	startLoc := self.currToken.Span.Start

	// skip the `do`
	self.next()

	body, err := self.statement()
	if err != nil {
		return nil, err
	}

	self.expectRecoverable(lexer.While)
	self.expectRecoverable(lexer.LParen)
	condition := self.expression(0)
	self.expectRecoverable(lexer.RParen)
	self.expectRecoverable(lexer.Semicolon)

	return ast.DoWhileStatement{
		Body:      body,
		Condition: condition,
		Range:     self.spanFrom(startLoc),
	}, nil
}

func (self *Parser) forStatement() (ast.Statement, *errors.Error) {
	startLoc := self.currToken.Span.Start

	// skip the `for`
	self.next()

	self.expectRecoverable(lexer.LParen)

	var init ast.Statement
	switch {
	case self.currToken.Kind == lexer.Semicolon:
		self.next()
	case self.isDeclarationStart():
		decl, err := self.declaration(false)
		if err != nil {
			return nil, err
		}
		init = ast.DeclarationStatement{
			Declaration: decl,
			Range:       decl.Span(),
		}
	default:
		init = self.expressionStatement()
	}

	var condition ast.Expression
	if self.currToken.Kind != lexer.Semicolon {
		condition = self.expression(0)
	}
	self.expectRecoverable(lexer.Semicolon)

	var post ast.Expression
	if self.currToken.Kind != lexer.RParen {
		post = self.expression(0)
	}
	self.expectRecoverable(lexer.RParen)

	body, err := self.statement()
	if err != nil {
		return nil, err
	}

	return ast.ForStatement{
		Init:      init,
		Condition: condition,
		Post:      post,
		Body:      body,
		Range:     self.spanFrom(startLoc),
	}, nil
}

func (self *Parser) returnStatement() ast.Statement {
	startLoc := self.currToken.Span.Start

	// skip the `return`
	self.next()

	var value ast.Expression
	if self.currToken.Kind != lexer.Semicolon {
		value = self.expression(0)
	}
	self.expectRecoverable(lexer.Semicolon)

	return ast.ReturnStatement{
		Value: value,
		Range: self.spanFrom(startLoc),
	}
}

func (self *Parser) expressionStatement() ast.Statement {
	startIndex := self.currToken.Span.Start.Index
	expression := self.expression(0)

	if expression.Kind() == ast.ErrorExpressionKind && self.currToken.Span.Start.Index == startIndex {
		// no token was consumable as an expression: panic-mode sync so
		// the enclosing block makes progress
		span, count := self.syncStatement()
		if count > 0 {
			self.diags.Emit(diagnostic.Diagnostic{
				Phase:    diagnostic.PhaseSyntax,
				Level:    diagnostic.LevelError,
				Code:     diagnostic.ExpectedStatement,
				Message:  "Statement could not be parsed",
				Span:     span,
				Recovery: fmt.Sprintf("skipped %d token(s) up to the next statement", count),
			})
		}
		return ast.ErrorStatement{Range: span}
	}

	self.expectRecoverable(lexer.Semicolon)

	return ast.ExpressionStatement{
		Expression: expression,
		Range:      expression.Span(),
	}
}
