package ast

import (
	"fmt"
	"strings"

	"github.com/cvet-dev/cvet/cvet/errors"
)

type Statement interface {
	Kind() StatementKind
	Span() errors.Span
	String() string
}

type StatementKind uint8

const (
	BlockStatementKind StatementKind = iota
	IfStatementKind
	WhileStatementKind
	DoWhileStatementKind
	ForStatementKind
	ReturnStatementKind
	BreakStatementKind
	ContinueStatementKind
	ExpressionStatementKind
	DeclarationStatementKind
	EmptyStatementKind
	ErrorStatementKind
)

//
// Block statement
//

type BlockStatement struct {
	Statements []Statement
	Range      errors.Span
}

func (self BlockStatement) Kind() StatementKind { return BlockStatementKind }
func (self BlockStatement) Span() errors.Span   { return self.Range }
func (self BlockStatement) String() string {
	contents := make([]string, 0)
	for _, stmt := range self.Statements {
		contents = append(contents, strings.ReplaceAll(stmt.String(), "\n", "\n    "))
	}
	if len(contents) == 0 {
		return "{}"
	}
	return fmt.Sprintf("{\n    %s\n}", strings.Join(contents, "\n    "))
}

//
// If statement
//

type IfStatement struct {
	Condition Expression
	Then      Statement
	Else      Statement // nil when absent
	Range     errors.Span
}

func (self IfStatement) Kind() StatementKind { return IfStatementKind }
func (self IfStatement) Span() errors.Span   { return self.Range }
func (self IfStatement) String() string {
	out := fmt.Sprintf("if (%s) %s", self.Condition, self.Then)
	if self.Else != nil {
		out += fmt.Sprintf(" else %s", self.Else)
	}
	return out
}

//
// While statement
//

type WhileStatement struct {
	Condition Expression
	Body      Statement
	Range     errors.Span
}

func (self WhileStatement) Kind() StatementKind { return WhileStatementKind }
func (self WhileStatement) Span() errors.Span   { return self.Range }
func (self WhileStatement) String() string {
	return fmt.Sprintf("while (%s) %s", self.Condition, self.Body)
}

//
// Do-while statement
//

type DoWhileStatement struct {
	Body      Statement
	Condition Expression
	Range     errors.Span
}

func (self DoWhileStatement) Kind() StatementKind { return DoWhileStatementKind }
func (self DoWhileStatement) Span() errors.Span   { return self.Range }
func (self DoWhileStatement) String() string {
	return fmt.Sprintf("do %s while (%s);", self.Body, self.Condition)
}

//
// For statement
//

type ForStatement struct {
	// Init is nil, a DeclarationStatement or an ExpressionStatement
	Init      Statement
	Condition Expression // nil when absent
	Post      Expression // nil when absent
	Body      Statement
	Range     errors.Span
}

func (self ForStatement) Kind() StatementKind { return ForStatementKind }
func (self ForStatement) Span() errors.Span   { return self.Range }
func (self ForStatement) String() string {
	init := ";"
	if self.Init != nil {
		init = self.Init.String()
	}
	condition := ""
	if self.Condition != nil {
		condition = self.Condition.String()
	}
	post := ""
	if self.Post != nil {
		post = self.Post.String()
	}
	return fmt.Sprintf("for (%s %s; %s) %s", init, condition, post, self.Body)
}

//
// Return statement
//

type ReturnStatement struct {
	Value Expression // nil for a bare `return;`
	Range errors.Span
}

func (self ReturnStatement) Kind() StatementKind { return ReturnStatementKind }
func (self ReturnStatement) Span() errors.Span   { return self.Range }
func (self ReturnStatement) String() string {
	if self.Value == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", self.Value)
}

//
// Break / continue statements
//

type BreakStatement struct {
	Range errors.Span
}

func (self BreakStatement) Kind() StatementKind { return BreakStatementKind }
func (self BreakStatement) Span() errors.Span   { return self.Range }
func (self BreakStatement) String() string      { return "break;" }

type ContinueStatement struct {
	Range errors.Span
}

func (self ContinueStatement) Kind() StatementKind { return ContinueStatementKind }
func (self ContinueStatement) Span() errors.Span   { return self.Range }
func (self ContinueStatement) String() string      { return "continue;" }

//
// Expression statement
//

type ExpressionStatement struct {
	Expression Expression
	Range      errors.Span
}

func (self ExpressionStatement) Kind() StatementKind { return ExpressionStatementKind }
func (self ExpressionStatement) Span() errors.Span   { return self.Range }
func (self ExpressionStatement) String() string      { return self.Expression.String() + ";" }

//
// Declaration statement: a declaration at block scope
//

type DeclarationStatement struct {
	Declaration Declaration
	Range       errors.Span
}

func (self DeclarationStatement) Kind() StatementKind { return DeclarationStatementKind }
func (self DeclarationStatement) Span() errors.Span   { return self.Range }
func (self DeclarationStatement) String() string      { return self.Declaration.String() }

//
// Empty statement: a bare `;`
//

type EmptyStatement struct {
	Range errors.Span
}

func (self EmptyStatement) Kind() StatementKind { return EmptyStatementKind }
func (self EmptyStatement) Span() errors.Span   { return self.Range }
func (self EmptyStatement) String() string      { return ";" }

//
// Error statement: a recovered gap at statement level
//

type ErrorStatement struct {
	Range errors.Span
}

func (self ErrorStatement) Kind() StatementKind { return ErrorStatementKind }
func (self ErrorStatement) Span() errors.Span   { return self.Range }
func (self ErrorStatement) String() string      { return "/* error */;" }
