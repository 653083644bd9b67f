package analyzer

import (
	"fmt"

	"github.com/cvet-dev/cvet/cvet/ast"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
)

func (self *Analyzer) statement(node ast.Statement) *errors.Error {
	if err := self.cancelled(); err != nil {
		return err
	}

	switch node := node.(type) {
	case ast.BlockStatement:
		return self.blockStatement(node)
	case ast.IfStatement:
		self.condition(node.Condition)
		if err := self.statement(node.Then); err != nil {
			return err
		}
		if node.Else != nil {
			return self.statement(node.Else)
		}
	case ast.WhileStatement:
		self.condition(node.Condition)
		return self.loopBody(node.Body)
	case ast.DoWhileStatement:
		if err := self.loopBody(node.Body); err != nil {
			return err
		}
		self.condition(node.Condition)
	case ast.ForStatement:
		return self.forStatement(node)
	case ast.ReturnStatement:
		self.returnStatement(node)
	case ast.BreakStatement:
		if self.loopDepth == 0 {
			self.semanticError(
				diagnostic.InvalidControlFlow,
				"'break' is only allowed inside of a loop",
				node.Range,
			)
		}
	case ast.ContinueStatement:
		if self.loopDepth == 0 {
			self.semanticError(
				diagnostic.InvalidControlFlow,
				"'continue' is only allowed inside of a loop",
				node.Range,
			)
		}
	case ast.ExpressionStatement:
		self.expression(node.Expression)
	case ast.DeclarationStatement:
		return self.declaration(node.Declaration)
	case ast.EmptyStatement, ast.ErrorStatement:
		// nothing to check
	default:
		panic("A new statement kind was added without updating this code")
	}
	return nil
}

func (self *Analyzer) blockStatement(node ast.BlockStatement) *errors.Error {
	self.pushScope()
	for _, statement := range node.Statements {
		if err := self.statement(statement); err != nil {
			return err
		}
	}
	self.dropScope()
	return nil
}

func (self *Analyzer) loopBody(body ast.Statement) *errors.Error {
	self.loopDepth++
	err := self.statement(body)
	self.loopDepth--
	return err
}

// forStatement opens a scope of its own so that a declaration in the
// init clause is confined to the loop.
func (self *Analyzer) forStatement(node ast.ForStatement) *errors.Error {
	self.pushScope()
	if node.Init != nil {
		if err := self.statement(node.Init); err != nil {
			return err
		}
	}
	if node.Condition != nil {
		self.condition(node.Condition)
	}
	if node.Post != nil {
		self.expression(node.Post)
	}
	if err := self.loopBody(node.Body); err != nil {
		return err
	}
	self.dropScope()
	return nil
}

func (self *Analyzer) returnStatement(node ast.ReturnStatement) {
	if self.currentFunction == nil {
		self.semanticError(
			diagnostic.InvalidControlFlow,
			"'return' is only allowed inside of a function",
			node.Range,
		)
		if node.Value != nil {
			self.expression(node.Value)
		}
		return
	}

	returnType := self.currentFunction.returnType
	returnsVoid := returnType.Kind() == VoidTypeKind

	if node.Value == nil {
		if !returnsVoid && !isError(returnType) {
			self.semanticError(
				diagnostic.ReturnTypeMismatch,
				fmt.Sprintf("Function '%s' must return a value of type '%s'", self.currentFunction.ident, returnType),
				node.Range,
				fmt.Sprintf("The return type is declared at %s", self.currentFunction.returnSpan),
			)
		}
		return
	}

	valueType := self.expression(node.Value)
	if returnsVoid {
		if !isError(valueType) {
			self.semanticError(
				diagnostic.ReturnTypeMismatch,
				fmt.Sprintf("Function '%s' returns 'void' but a value is returned", self.currentFunction.ident),
				node.Value.Span(),
				fmt.Sprintf("The return type is declared at %s", self.currentFunction.returnSpan),
			)
		}
		return
	}

	if !assignable(returnType, valueType) {
		self.semanticError(
			diagnostic.ReturnTypeMismatch,
			fmt.Sprintf("Mismatched return type: expected '%s', found '%s'", returnType, decay(valueType)),
			node.Value.Span(),
			fmt.Sprintf("The return type is declared at %s", self.currentFunction.returnSpan),
		)
	}
}

// condition checks the controlling expression of if, while, do-while
// and for statements, which must have scalar type.
func (self *Analyzer) condition(node ast.Expression) {
	typ := self.expression(node)
	if isError(typ) {
		return
	}
	if !isScalar(typ) {
		self.semanticError(
			diagnostic.TypeMismatch,
			fmt.Sprintf("Condition must have scalar type, found '%s'", typ),
			node.Span(),
		)
	}
}
