package ast

import (
	"fmt"
	"strings"

	"github.com/cvet-dev/cvet/cvet/errors"
)

type Expression interface {
	Kind() ExpressionKind
	Span() errors.Span
	String() string
}

type ExpressionKind uint8

const (
	IdentExpressionKind ExpressionKind = iota
	IntLiteralExpressionKind
	FloatLiteralExpressionKind
	CharLiteralExpressionKind
	StringLiteralExpressionKind
	PrefixExpressionKind
	PostfixExpressionKind
	InfixExpressionKind
	AssignExpressionKind
	ConditionalExpressionKind
	CallExpressionKind
	IndexExpressionKind
	MemberExpressionKind
	CastExpressionKind
	SizeofExpressionKind
	CommaExpressionKind
	ErrorExpressionKind
)

//
// Ident expression
//

type IdentExpression struct {
	Ident SpannedIdent
}

func (self IdentExpression) Kind() ExpressionKind { return IdentExpressionKind }
func (self IdentExpression) Span() errors.Span    { return self.Ident.Span() }
func (self IdentExpression) String() string       { return self.Ident.Ident() }

//
// Literal expressions
//

type IntLiteralExpression struct {
	Value int64
	Range errors.Span
}

func (self IntLiteralExpression) Kind() ExpressionKind { return IntLiteralExpressionKind }
func (self IntLiteralExpression) Span() errors.Span    { return self.Range }
func (self IntLiteralExpression) String() string       { return fmt.Sprint(self.Value) }

type FloatLiteralExpression struct {
	Value float64
	Range errors.Span
}

func (self FloatLiteralExpression) Kind() ExpressionKind { return FloatLiteralExpressionKind }
func (self FloatLiteralExpression) Span() errors.Span    { return self.Range }
func (self FloatLiteralExpression) String() string       { return fmt.Sprint(self.Value) }

type CharLiteralExpression struct {
	Value rune
	Range errors.Span
}

func (self CharLiteralExpression) Kind() ExpressionKind { return CharLiteralExpressionKind }
func (self CharLiteralExpression) Span() errors.Span    { return self.Range }
func (self CharLiteralExpression) String() string       { return fmt.Sprintf("'%c'", self.Value) }

type StringLiteralExpression struct {
	Value string
	Range errors.Span
}

func (self StringLiteralExpression) Kind() ExpressionKind { return StringLiteralExpressionKind }
func (self StringLiteralExpression) Span() errors.Span    { return self.Range }
func (self StringLiteralExpression) String() string       { return fmt.Sprintf("%q", self.Value) }

//
// Prefix expression
//

type PrefixOperator uint8

const (
	PrefixPlusOperator PrefixOperator = iota
	PrefixMinusOperator
	PrefixNotOperator
	PrefixBitNotOperator
	PrefixDerefOperator
	PrefixAddrOfOperator
	PrefixIncrementOperator
	PrefixDecrementOperator
)

func (self PrefixOperator) String() string {
	switch self {
	case PrefixPlusOperator:
		return "+"
	case PrefixMinusOperator:
		return "-"
	case PrefixNotOperator:
		return "!"
	case PrefixBitNotOperator:
		return "~"
	case PrefixDerefOperator:
		return "*"
	case PrefixAddrOfOperator:
		return "&"
	case PrefixIncrementOperator:
		return "++"
	case PrefixDecrementOperator:
		return "--"
	default:
		panic("A new prefix operator was introduced without updating this code")
	}
}

type PrefixExpression struct {
	Operator PrefixOperator
	Operand  Expression
	Range    errors.Span
}

func (self PrefixExpression) Kind() ExpressionKind { return PrefixExpressionKind }
func (self PrefixExpression) Span() errors.Span    { return self.Range }
func (self PrefixExpression) String() string {
	return fmt.Sprintf("%s%s", self.Operator, self.Operand)
}

//
// Postfix expression: ++ / --
//

type PostfixOperator uint8

const (
	PostfixIncrementOperator PostfixOperator = iota
	PostfixDecrementOperator
)

func (self PostfixOperator) String() string {
	switch self {
	case PostfixIncrementOperator:
		return "++"
	case PostfixDecrementOperator:
		return "--"
	default:
		panic("A new postfix operator was introduced without updating this code")
	}
}

type PostfixExpression struct {
	Operand  Expression
	Operator PostfixOperator
	Range    errors.Span
}

func (self PostfixExpression) Kind() ExpressionKind { return PostfixExpressionKind }
func (self PostfixExpression) Span() errors.Span    { return self.Range }
func (self PostfixExpression) String() string {
	return fmt.Sprintf("%s%s", self.Operand, self.Operator)
}

//
// Infix expression
//

type InfixOperator uint8

const (
	AddInfixOperator InfixOperator = iota
	SubInfixOperator
	MulInfixOperator
	DivInfixOperator
	ModInfixOperator
	ShiftLeftInfixOperator
	ShiftRightInfixOperator
	BitOrInfixOperator
	BitAndInfixOperator
	BitXorInfixOperator
	OrInfixOperator
	AndInfixOperator
	EqualInfixOperator
	NotEqualInfixOperator
	LessThanInfixOperator
	GreaterThanInfixOperator
	LessThanEqualInfixOperator
	GreaterThanEqualInfixOperator
)

func (self InfixOperator) String() string {
	switch self {
	case AddInfixOperator:
		return "+"
	case SubInfixOperator:
		return "-"
	case MulInfixOperator:
		return "*"
	case DivInfixOperator:
		return "/"
	case ModInfixOperator:
		return "%"
	case ShiftLeftInfixOperator:
		return "<<"
	case ShiftRightInfixOperator:
		return ">>"
	case BitOrInfixOperator:
		return "|"
	case BitAndInfixOperator:
		return "&"
	case BitXorInfixOperator:
		return "^"
	case OrInfixOperator:
		return "||"
	case AndInfixOperator:
		return "&&"
	case EqualInfixOperator:
		return "=="
	case NotEqualInfixOperator:
		return "!="
	case LessThanInfixOperator:
		return "<"
	case GreaterThanInfixOperator:
		return ">"
	case LessThanEqualInfixOperator:
		return "<="
	case GreaterThanEqualInfixOperator:
		return ">="
	default:
		panic("A new infix operator was introduced without updating this code")
	}
}

// IsComparison reports whether the operator yields an int truth value
// regardless of its operand types.
func (self InfixOperator) IsComparison() bool {
	switch self {
	case EqualInfixOperator, NotEqualInfixOperator,
		LessThanInfixOperator, GreaterThanInfixOperator,
		LessThanEqualInfixOperator, GreaterThanEqualInfixOperator,
		OrInfixOperator, AndInfixOperator:
		return true
	default:
		return false
	}
}

// IsIntegerOnly reports whether both operands must have integer type.
func (self InfixOperator) IsIntegerOnly() bool {
	switch self {
	case ModInfixOperator, ShiftLeftInfixOperator, ShiftRightInfixOperator,
		BitOrInfixOperator, BitAndInfixOperator, BitXorInfixOperator:
		return true
	default:
		return false
	}
}

type InfixExpression struct {
	Lhs      Expression
	Rhs      Expression
	Operator InfixOperator
	Range    errors.Span
}

func (self InfixExpression) Kind() ExpressionKind { return InfixExpressionKind }
func (self InfixExpression) Span() errors.Span    { return self.Range }
func (self InfixExpression) String() string {
	return fmt.Sprintf("%s %s %s", self.Lhs, self.Operator, self.Rhs)
}

//
// Assign expression
//

type AssignOperator uint8

const (
	PlainAssignOperator AssignOperator = iota
	AddAssignOperator
	SubAssignOperator
	MulAssignOperator
	DivAssignOperator
	ModAssignOperator
	ShiftLeftAssignOperator
	ShiftRightAssignOperator
	BitOrAssignOperator
	BitAndAssignOperator
	BitXorAssignOperator
)

func (self AssignOperator) String() string {
	switch self {
	case PlainAssignOperator:
		return "="
	case AddAssignOperator:
		return "+="
	case SubAssignOperator:
		return "-="
	case MulAssignOperator:
		return "*="
	case DivAssignOperator:
		return "/="
	case ModAssignOperator:
		return "%="
	case ShiftLeftAssignOperator:
		return "<<="
	case ShiftRightAssignOperator:
		return ">>="
	case BitOrAssignOperator:
		return "|="
	case BitAndAssignOperator:
		return "&="
	case BitXorAssignOperator:
		return "^="
	default:
		panic("A new assign operator was introduced without updating this code")
	}
}

// Operation returns the underlying infix operator of a compound
// assignment. Calling it on a plain `=` is a bug.
func (self AssignOperator) Operation() InfixOperator {
	switch self {
	case AddAssignOperator:
		return AddInfixOperator
	case SubAssignOperator:
		return SubInfixOperator
	case MulAssignOperator:
		return MulInfixOperator
	case DivAssignOperator:
		return DivInfixOperator
	case ModAssignOperator:
		return ModInfixOperator
	case ShiftLeftAssignOperator:
		return ShiftLeftInfixOperator
	case ShiftRightAssignOperator:
		return ShiftRightInfixOperator
	case BitOrAssignOperator:
		return BitOrInfixOperator
	case BitAndAssignOperator:
		return BitAndInfixOperator
	case BitXorAssignOperator:
		return BitXorInfixOperator
	default:
		panic("Operation is undefined for the plain assign operator")
	}
}

type AssignExpression struct {
	Lhs      Expression
	Rhs      Expression
	Operator AssignOperator
	Range    errors.Span
}

func (self AssignExpression) Kind() ExpressionKind { return AssignExpressionKind }
func (self AssignExpression) Span() errors.Span    { return self.Range }
func (self AssignExpression) String() string {
	return fmt.Sprintf("%s %s %s", self.Lhs, self.Operator, self.Rhs)
}

//
// Conditional expression: cond ? then : else
//

type ConditionalExpression struct {
	Condition Expression
	Then      Expression
	Else      Expression
	Range     errors.Span
}

func (self ConditionalExpression) Kind() ExpressionKind { return ConditionalExpressionKind }
func (self ConditionalExpression) Span() errors.Span    { return self.Range }
func (self ConditionalExpression) String() string {
	return fmt.Sprintf("%s ? %s : %s", self.Condition, self.Then, self.Else)
}

//
// Call expression
//

type CallExpression struct {
	Callee    Expression
	Arguments []Expression
	Range     errors.Span
}

func (self CallExpression) Kind() ExpressionKind { return CallExpressionKind }
func (self CallExpression) Span() errors.Span    { return self.Range }
func (self CallExpression) String() string {
	arguments := make([]string, 0)
	for _, argument := range self.Arguments {
		arguments = append(arguments, argument.String())
	}
	return fmt.Sprintf("%s(%s)", self.Callee, strings.Join(arguments, ", "))
}

//
// Index expression
//

type IndexExpression struct {
	Base  Expression
	Index Expression
	Range errors.Span
}

func (self IndexExpression) Kind() ExpressionKind { return IndexExpressionKind }
func (self IndexExpression) Span() errors.Span    { return self.Range }
func (self IndexExpression) String() string {
	return fmt.Sprintf("%s[%s]", self.Base, self.Index)
}

//
// Member expression: base.member / base->member
//

type MemberExpression struct {
	Base   Expression
	Member SpannedIdent
	// Deref is true for `->`
	Deref bool
	Range errors.Span
}

func (self MemberExpression) Kind() ExpressionKind { return MemberExpressionKind }
func (self MemberExpression) Span() errors.Span    { return self.Range }
func (self MemberExpression) String() string {
	operator := "."
	if self.Deref {
		operator = "->"
	}
	return fmt.Sprintf("%s%s%s", self.Base, operator, self.Member)
}

//
// Cast expression
//

type CastExpression struct {
	Target  TypeSpec
	Operand Expression
	Range   errors.Span
}

func (self CastExpression) Kind() ExpressionKind { return CastExpressionKind }
func (self CastExpression) Span() errors.Span    { return self.Range }
func (self CastExpression) String() string {
	return fmt.Sprintf("(%s)%s", self.Target, self.Operand)
}

//
// Sizeof expression: exactly one of Target / Operand is set
//

type SizeofExpression struct {
	Target  TypeSpec
	Operand Expression
	Range   errors.Span
}

func (self SizeofExpression) Kind() ExpressionKind { return SizeofExpressionKind }
func (self SizeofExpression) Span() errors.Span    { return self.Range }
func (self SizeofExpression) String() string {
	if self.Target != nil {
		return fmt.Sprintf("sizeof(%s)", self.Target)
	}
	return fmt.Sprintf("sizeof(%s)", self.Operand)
}

//
// Comma expression
//

type CommaExpression struct {
	Lhs   Expression
	Rhs   Expression
	Range errors.Span
}

func (self CommaExpression) Kind() ExpressionKind { return CommaExpressionKind }
func (self CommaExpression) Span() errors.Span    { return self.Range }
func (self CommaExpression) String() string {
	return fmt.Sprintf("%s, %s", self.Lhs, self.Rhs)
}

//
// Error expression: a recovered gap at expression level
//

type ErrorExpression struct {
	Range errors.Span
}

func (self ErrorExpression) Kind() ExpressionKind { return ErrorExpressionKind }
func (self ErrorExpression) Span() errors.Span    { return self.Range }
func (self ErrorExpression) String() string       { return "/* error */" }
