package parser

import (
	"fmt"
	"strconv"

	"github.com/cvet-dev/cvet/cvet/ast"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/lexer"
)

// unaryPrec sits between the binary operators and the postfix operators.
const unaryPrec = 27

// assignmentExpression parses one expression without crossing a `,`, as
// required in initializers, arguments and enumerator values.
func (self *Parser) assignmentExpression() ast.Expression {
	return self.expression(2)
}

func (self *Parser) expression(prec uint8) ast.Expression {
	startLoc := self.currToken.Span.Start

	var lhs ast.Expression

	switch self.currToken.Kind {
	case lexer.Identifier:
		lhs = ast.IdentExpression{
			Ident: ast.NewSpannedIdent(self.currToken.Value, self.currToken.Span),
		}
		self.next()
	case lexer.IntLiteral:
		lhs = self.intLiteral()
	case lexer.FloatLiteral:
		lhs = self.floatLiteral()
	case lexer.CharLiteral:
		value := ' '
		if len(self.currToken.Value) > 0 {
			value = []rune(self.currToken.Value)[0]
		}
		lhs = ast.CharLiteralExpression{
			Value: value,
			Range: self.currToken.Span,
		}
		self.next()
	case lexer.StringLiteral:
		lhs = ast.StringLiteralExpression{
			Value: self.currToken.Value,
			Range: self.currToken.Span,
		}
		self.next()
	case lexer.LParen:
		lhs = self.groupedOrCastExpression()
	case lexer.Plus, lexer.Minus, lexer.Not, lexer.BitNot,
		lexer.Star, lexer.BitAnd, lexer.Increment, lexer.Decrement:
		lhs = self.prefixExpression()
	case lexer.Sizeof:
		lhs = self.sizeofExpression()
	case lexer.Error:
		// the lexer already reported this gap
		span := self.currToken.Span
		self.next()
		lhs = ast.ErrorExpression{Range: span}
	default:
		self.syntaxError(
			diagnostic.ExpectedExpression,
			fmt.Sprintf("Expected expression, found '%s'", self.currToken.Kind),
			self.currToken.Span,
		)
		return ast.ErrorExpression{Range: self.currToken.Span}
	}

	for left, right := self.currToken.Kind.Prec(); left > prec; left, right = self.currToken.Kind.Prec() {
		switch self.currToken.Kind {
		case lexer.Plus, lexer.Minus, lexer.Star, lexer.Slash, lexer.Percent,
			lexer.ShiftLeft, lexer.ShiftRight, lexer.BitOr, lexer.BitAnd,
			lexer.BitXor, lexer.Or, lexer.And, lexer.Equal, lexer.NotEqual,
			lexer.LessThan, lexer.LessThanEqual, lexer.GreaterThan,
			lexer.GreaterThanEqual:
			operator := infixOperator(self.currToken.Kind)
			self.next()
			rhs := self.expression(right)
			lhs = ast.InfixExpression{
				Lhs:      lhs,
				Rhs:      rhs,
				Operator: operator,
				Range:    self.spanFrom(startLoc),
			}
		case lexer.Assign, lexer.PlusAssign, lexer.MinusAssign,
			lexer.StarAssign, lexer.SlashAssign, lexer.PercentAssign,
			lexer.ShiftLeftAssign, lexer.ShiftRightAssign,
			lexer.BitOrAssign, lexer.BitAndAssign, lexer.BitXorAssign:
			operator := assignOperator(self.currToken.Kind)
			self.next()
			rhs := self.expression(right)
			lhs = ast.AssignExpression{
				Lhs:      lhs,
				Rhs:      rhs,
				Operator: operator,
				Range:    self.spanFrom(startLoc),
			}
		case lexer.QuestionMark:
			self.next()
			then := self.expression(0)
			self.expectRecoverable(lexer.Colon)
			elseBranch := self.expression(right)
			lhs = ast.ConditionalExpression{
				Condition: lhs,
				Then:      then,
				Else:      elseBranch,
				Range:     self.spanFrom(startLoc),
			}
		case lexer.Comma:
			self.next()
			rhs := self.expression(right)
			lhs = ast.CommaExpression{
				Lhs:   lhs,
				Rhs:   rhs,
				Range: self.spanFrom(startLoc),
			}
		case lexer.LParen:
			lhs = self.callExpression(lhs)
		case lexer.LBracket:
			self.next()
			index := self.expression(0)
			self.expectRecoverable(lexer.RBracket)
			lhs = ast.IndexExpression{
				Base:  lhs,
				Index: index,
				Range: self.spanFrom(startLoc),
			}
		case lexer.Dot, lexer.Arrow:
			deref := self.currToken.Kind == lexer.Arrow
			self.next()
			member := ast.SpannedIdent{}
			if self.currToken.Kind == lexer.Identifier {
				member = ast.NewSpannedIdent(self.currToken.Value, self.currToken.Span)
				self.next()
			} else {
				self.syntaxError(
					diagnostic.ExpectedToken,
					fmt.Sprintf("Expected member name, found '%s'", self.currToken.Kind),
					self.currToken.Span,
				)
			}
			lhs = ast.MemberExpression{
				Base:   lhs,
				Member: member,
				Deref:  deref,
				Range:  self.spanFrom(startLoc),
			}
		case lexer.Increment, lexer.Decrement:
			operator := ast.PostfixIncrementOperator
			if self.currToken.Kind == lexer.Decrement {
				operator = ast.PostfixDecrementOperator
			}
			self.next()
			lhs = ast.PostfixExpression{
				Operand:  lhs,
				Operator: operator,
				Range:    self.spanFrom(startLoc),
			}
		case lexer.Error:
			// confidently-local recovery: swallow the reported gap and
			// the operand after it, the result is a placeholder
			self.next()
			if self.canStartExpression() {
				rhs := self.expression(right)
				lhs = ast.ErrorExpression{Range: lhs.Span().Until(rhs.Span())}
			} else {
				lhs = ast.ErrorExpression{Range: self.spanFrom(startLoc)}
			}
		default:
			panic("A token kind with a precedence is not handled in the expression loop")
		}
	}

	return lhs
}

func (self *Parser) canStartExpression() bool {
	switch self.currToken.Kind {
	case lexer.Identifier, lexer.IntLiteral, lexer.FloatLiteral,
		lexer.CharLiteral, lexer.StringLiteral, lexer.LParen,
		lexer.Plus, lexer.Minus, lexer.Not, lexer.BitNot, lexer.Star,
		lexer.BitAnd, lexer.Increment, lexer.Decrement, lexer.Sizeof,
		lexer.Error:
		return true
	default:
		return false
	}
}

func (self *Parser) intLiteral() ast.Expression {
	span := self.currToken.Span
	raw := self.currToken.Value

	value, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		// out-of-range literals degrade to the maximum value
		value = int64(^uint64(0) >> 1)
	}

	self.next()
	return ast.IntLiteralExpression{
		Value: value,
		Range: span,
	}
}

func (self *Parser) floatLiteral() ast.Expression {
	span := self.currToken.Span

	value, err := strconv.ParseFloat(self.currToken.Value, 64)
	if err != nil {
		value = 0
	}

	self.next()
	return ast.FloatLiteralExpression{
		Value: value,
		Range: span,
	}
}

// groupedOrCastExpression disambiguates `(expr)` from `(type)expr` by
// looking at the token after the `(`.
func (self *Parser) groupedOrCastExpression() ast.Expression {
	startLoc := self.currToken.Span.Start

	// skip the `(`
	self.next()

	if self.isTypeSpecifierStart() {
		base := self.typeSpecifier()
		target := self.abstractDeclarator(base)
		self.expectRecoverable(lexer.RParen)

		var operand ast.Expression
		if self.canStartExpression() {
			operand = self.expression(unaryPrec)
		} else {
			self.syntaxError(
				diagnostic.ExpectedExpression,
				fmt.Sprintf("Expected expression after cast, found '%s'", self.currToken.Kind),
				self.currToken.Span,
			)
			operand = ast.ErrorExpression{Range: self.currToken.Span}
		}

		return ast.CastExpression{
			Target:  target,
			Operand: operand,
			Range:   self.spanFrom(startLoc),
		}
	}

	inner := self.expression(0)
	self.expectRecoverable(lexer.RParen)
	return inner
}

func (self *Parser) prefixExpression() ast.Expression {
	startLoc := self.currToken.Span.Start

	var operator ast.PrefixOperator
	switch self.currToken.Kind {
	case lexer.Plus:
		operator = ast.PrefixPlusOperator
	case lexer.Minus:
		operator = ast.PrefixMinusOperator
	case lexer.Not:
		operator = ast.PrefixNotOperator
	case lexer.BitNot:
		operator = ast.PrefixBitNotOperator
	case lexer.Star:
		operator = ast.PrefixDerefOperator
	case lexer.BitAnd:
		operator = ast.PrefixAddrOfOperator
	case lexer.Increment:
		operator = ast.PrefixIncrementOperator
	case lexer.Decrement:
		operator = ast.PrefixDecrementOperator
	default:
		panic("prefixExpression was called on a non-prefix token")
	}
	self.next()

	operand := self.expression(unaryPrec)

	return ast.PrefixExpression{
		Operator: operator,
		Operand:  operand,
		Range:    self.spanFrom(startLoc),
	}
}

func (self *Parser) sizeofExpression() ast.Expression {
	startLoc := self.currToken.Span.Start

	// skip the `sizeof`
	self.next()

	if self.currToken.Kind == lexer.LParen {
		self.next()
		if self.isTypeSpecifierStart() {
			base := self.typeSpecifier()
			target := self.abstractDeclarator(base)
			self.expectRecoverable(lexer.RParen)
			return ast.SizeofExpression{
				Target: target,
				Range:  self.spanFrom(startLoc),
			}
		}

		operand := self.expression(0)
		self.expectRecoverable(lexer.RParen)
		return ast.SizeofExpression{
			Operand: operand,
			Range:   self.spanFrom(startLoc),
		}
	}

	operand := self.expression(unaryPrec)
	return ast.SizeofExpression{
		Operand: operand,
		Range:   self.spanFrom(startLoc),
	}
}

func (self *Parser) callExpression(callee ast.Expression) ast.Expression {
	startLoc := callee.Span().Start

	// skip the `(`
	self.next()

	arguments := make([]ast.Expression, 0)
	for self.currToken.Kind != lexer.RParen && self.currToken.Kind != lexer.EOF {
		arguments = append(arguments, self.assignmentExpression())
		if self.currToken.Kind != lexer.Comma {
			break
		}
		self.next()
	}
	self.expectRecoverable(lexer.RParen)

	return ast.CallExpression{
		Callee:    callee,
		Arguments: arguments,
		Range:     self.spanFrom(startLoc),
	}
}

func infixOperator(kind lexer.TokenKind) ast.InfixOperator {
	switch kind {
	case lexer.Plus:
		return ast.AddInfixOperator
	case lexer.Minus:
		return ast.SubInfixOperator
	case lexer.Star:
		return ast.MulInfixOperator
	case lexer.Slash:
		return ast.DivInfixOperator
	case lexer.Percent:
		return ast.ModInfixOperator
	case lexer.ShiftLeft:
		return ast.ShiftLeftInfixOperator
	case lexer.ShiftRight:
		return ast.ShiftRightInfixOperator
	case lexer.BitOr:
		return ast.BitOrInfixOperator
	case lexer.BitAnd:
		return ast.BitAndInfixOperator
	case lexer.BitXor:
		return ast.BitXorInfixOperator
	case lexer.Or:
		return ast.OrInfixOperator
	case lexer.And:
		return ast.AndInfixOperator
	case lexer.Equal:
		return ast.EqualInfixOperator
	case lexer.NotEqual:
		return ast.NotEqualInfixOperator
	case lexer.LessThan:
		return ast.LessThanInfixOperator
	case lexer.GreaterThan:
		return ast.GreaterThanInfixOperator
	case lexer.LessThanEqual:
		return ast.LessThanEqualInfixOperator
	case lexer.GreaterThanEqual:
		return ast.GreaterThanEqualInfixOperator
	default:
		panic("A new infix token was introduced without updating this code")
	}
}

func assignOperator(kind lexer.TokenKind) ast.AssignOperator {
	switch kind {
	case lexer.Assign:
		return ast.PlainAssignOperator
	case lexer.PlusAssign:
		return ast.AddAssignOperator
	case lexer.MinusAssign:
		return ast.SubAssignOperator
	case lexer.StarAssign:
		return ast.MulAssignOperator
	case lexer.SlashAssign:
		return ast.DivAssignOperator
	case lexer.PercentAssign:
		return ast.ModAssignOperator
	case lexer.ShiftLeftAssign:
		return ast.ShiftLeftAssignOperator
	case lexer.ShiftRightAssign:
		return ast.ShiftRightAssignOperator
	case lexer.BitOrAssign:
		return ast.BitOrAssignOperator
	case lexer.BitAndAssign:
		return ast.BitAndAssignOperator
	case lexer.BitXorAssign:
		return ast.BitXorAssignOperator
	default:
		panic("A new assign token was introduced without updating this code")
	}
}
