// Package lint is the style pass. It walks the finished tree without
// touching the symbol table and reports conventions violations as
// warnings, so a style finding never affects the analysis verdict.
package lint

import (
	"fmt"

	"github.com/cvet-dev/cvet/cvet/ast"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
	"github.com/cvet-dev/cvet/cvet/util"
)

type Linter struct {
	config Config
	diags  *diagnostic.Collector
}

func NewLinter(config Config, diags *diagnostic.Collector) Linter {
	return Linter{
		config: config,
		diags:  diags,
	}
}

func (self *Linter) Check(tree ast.TranslationUnit) {
	if !self.config.Enabled {
		return
	}
	for _, declaration := range tree.Declarations {
		self.declaration(declaration)
	}
}

func (self *Linter) styleWarning(code diagnostic.Code, message string, span errors.Span, notes ...string) {
	self.diags.Emit(diagnostic.Diagnostic{
		Phase:   diagnostic.PhaseStyle,
		Level:   diagnostic.LevelWarning,
		Code:    code,
		Message: message,
		Notes:   notes,
		Span:    span,
	})
}

//
// Declarations
//

func (self *Linter) declaration(node ast.Declaration) {
	switch node := node.(type) {
	case ast.FunctionDefinition:
		self.checkIdentCase(node.Ident, "function")
		if node.Body == nil {
			return
		}
		self.checkFunctionLength(node)
		for _, statement := range node.Body.Statements {
			self.statement(statement)
		}
	case ast.VariableDeclaration:
		for _, declarator := range node.Declarators {
			self.checkIdentCase(declarator.Ident, "variable")
			// literal initializers are where constants belong
		}
	case ast.TypedefDeclaration:
		self.checkIdentCase(node.Ident, "type")
	case ast.BlockDeclaration:
		self.statement(node.Block)
	case ast.RecordDeclaration, ast.EnumDeclaration, ast.ErrorDeclaration:
		// tags and enumerators are conventionally free-form
	default:
		panic("A new declaration kind was added without updating this code")
	}
}

func (self *Linter) checkIdentCase(ident ast.SpannedIdent, what string) {
	if self.config.IdentStyle != IdentStyleSnake || ident.Ident() == "" {
		return
	}
	for _, char := range ident.Ident() {
		if util.IsUpper(char) {
			self.styleWarning(
				diagnostic.StyleIdentCase,
				fmt.Sprintf("Name of %s '%s' is not snake_case", what, ident.Ident()),
				ident.Span(),
				fmt.Sprintf("Rename it to '%s'", toSnakeCase(ident.Ident())),
			)
			return
		}
	}
}

func (self *Linter) checkFunctionLength(node ast.FunctionDefinition) {
	if self.config.MaxFunctionLines == 0 {
		return
	}
	lines := node.Body.Range.End.Line - node.Body.Range.Start.Line + 1
	if lines > self.config.MaxFunctionLines {
		self.styleWarning(
			diagnostic.StyleLongFunction,
			fmt.Sprintf(
				"Function '%s' spans %d lines, the limit is %d",
				node.Ident.Ident(), lines, self.config.MaxFunctionLines,
			),
			node.Ident.Span(),
			"Consider splitting it into smaller functions",
		)
	}
}

//
// Statements
//

func (self *Linter) statement(node ast.Statement) {
	switch node := node.(type) {
	case ast.BlockStatement:
		for _, statement := range node.Statements {
			self.statement(statement)
		}
	case ast.IfStatement:
		self.checkBraced(node.Then, "if")
		self.statement(node.Then)
		if node.Else != nil {
			// `else if` chains read fine without braces
			if node.Else.Kind() != ast.IfStatementKind {
				self.checkBraced(node.Else, "else")
			}
			self.statement(node.Else)
		}
		self.expression(node.Condition)
	case ast.WhileStatement:
		self.checkBraced(node.Body, "while")
		self.statement(node.Body)
		self.expression(node.Condition)
	case ast.DoWhileStatement:
		self.checkBraced(node.Body, "do")
		self.statement(node.Body)
		self.expression(node.Condition)
	case ast.ForStatement:
		self.checkBraced(node.Body, "for")
		if node.Init != nil {
			self.statement(node.Init)
		}
		if node.Condition != nil {
			self.expression(node.Condition)
		}
		if node.Post != nil {
			self.expression(node.Post)
		}
		self.statement(node.Body)
	case ast.ReturnStatement:
		if node.Value != nil {
			self.expression(node.Value)
		}
	case ast.ExpressionStatement:
		self.expression(node.Expression)
	case ast.DeclarationStatement:
		self.declaration(node.Declaration)
	case ast.BreakStatement, ast.ContinueStatement, ast.EmptyStatement, ast.ErrorStatement:
		// nothing to check
	default:
		panic("A new statement kind was added without updating this code")
	}
}

func (self *Linter) checkBraced(body ast.Statement, keyword string) {
	if !self.config.RequireBraces {
		return
	}
	switch body.Kind() {
	case ast.BlockStatementKind, ast.ErrorStatementKind:
		return
	}
	self.styleWarning(
		diagnostic.StyleUnbracedBody,
		fmt.Sprintf("Body of '%s' is not enclosed in braces", keyword),
		body.Span(),
		"Wrap the body in '{' and '}'",
	)
}

//
// Expressions: magic number detection
//

func (self *Linter) expression(node ast.Expression) {
	switch node := node.(type) {
	case ast.IntLiteralExpression:
		self.checkMagicNumber(node)
	case ast.PrefixExpression:
		// a negated literal counts as one constant
		if literal, isLiteral := node.Operand.(ast.IntLiteralExpression); isLiteral &&
			node.Operator == ast.PrefixMinusOperator {
			self.checkMagicNumber(ast.IntLiteralExpression{Value: -literal.Value, Range: node.Range})
			return
		}
		self.expression(node.Operand)
	case ast.PostfixExpression:
		self.expression(node.Operand)
	case ast.InfixExpression:
		self.expression(node.Lhs)
		self.expression(node.Rhs)
	case ast.AssignExpression:
		self.expression(node.Lhs)
		self.expression(node.Rhs)
	case ast.ConditionalExpression:
		self.expression(node.Condition)
		self.expression(node.Then)
		self.expression(node.Else)
	case ast.CallExpression:
		self.expression(node.Callee)
		for _, argument := range node.Arguments {
			self.expression(argument)
		}
	case ast.IndexExpression:
		self.expression(node.Base)
		self.expression(node.Index)
	case ast.MemberExpression:
		self.expression(node.Base)
	case ast.CastExpression:
		self.expression(node.Operand)
	case ast.SizeofExpression:
		if node.Operand != nil {
			self.expression(node.Operand)
		}
	case ast.CommaExpression:
		self.expression(node.Lhs)
		self.expression(node.Rhs)
	case ast.IdentExpression, ast.FloatLiteralExpression,
		ast.CharLiteralExpression, ast.StringLiteralExpression, ast.ErrorExpression:
		// nothing to check
	default:
		panic("A new expression kind was added without updating this code")
	}
}

func (self *Linter) checkMagicNumber(node ast.IntLiteralExpression) {
	if !self.config.MagicNumbers {
		return
	}
	for _, allowed := range self.config.AllowedNumbers {
		if node.Value == allowed {
			return
		}
	}
	self.styleWarning(
		diagnostic.StyleMagicNumber,
		fmt.Sprintf("Magic number %d", node.Value),
		node.Range,
		"Give the constant a name, for example through an enum",
	)
}

func toSnakeCase(name string) string {
	out := make([]rune, 0, len(name))
	previousLower := false
	for _, char := range name {
		if util.IsUpper(char) {
			if previousLower {
				out = append(out, '_')
			}
			out = append(out, char-'A'+'a')
			previousLower = false
			continue
		}
		previousLower = char >= 'a' && char <= 'z'
		out = append(out, char)
	}
	return string(out)
}
