package lexer

import (
	"github.com/cvet-dev/cvet/cvet/errors"
)

type Token struct {
	Kind  TokenKind
	Value string
	Span  errors.Span
}

type TokenKind uint8

const (
	Unknown TokenKind = iota
	EOF
	// Error wraps an illegal character or a maximal invalid run the
	// lexer recovered from. The parser treats it as an opaque gap.
	Error

	Semicolon    // ;
	Comma        // ,
	Colon        // :
	QuestionMark // ?
	Dot          // .
	Arrow        // ->

	LParen   // (
	RParen   // )
	LCurly   // {
	RCurly   // }
	LBracket // [
	RBracket // ]

	Or               // ||
	And              // &&
	Equal            // ==
	NotEqual         // !=
	LessThan         // <
	LessThanEqual    // <=
	GreaterThan      // >
	GreaterThanEqual // >=
	Not              // !

	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Percent    // %
	Increment  // ++
	Decrement  // --
	ShiftLeft  // <<
	ShiftRight // >>
	BitOr      // |
	BitAnd     // &
	BitXor     // ^
	BitNot     // ~

	Assign           // =
	PlusAssign       // +=
	MinusAssign      // -=
	StarAssign       // *=
	SlashAssign      // /=
	PercentAssign    // %=
	ShiftLeftAssign  // <<=
	ShiftRightAssign // >>=
	BitOrAssign      // |=
	BitAndAssign     // &=
	BitXorAssign     // ^=

	Void     // void
	Char     // char
	Short    // short
	Int      // int
	Long     // long
	Float    // float
	Double   // double
	Signed   // signed
	Unsigned // unsigned
	Const    // const
	Struct   // struct
	Union    // union
	Enum     // enum
	Typedef  // typedef
	If       // if
	Else     // else
	While    // while
	Do       // do
	For      // for
	Return   // return
	Break    // break
	Continue // continue
	Sizeof   // sizeof

	IntLiteral    // 42
	FloatLiteral  // 3.1415
	CharLiteral   // 'a' (token includes quotes whilst content excludes them)
	StringLiteral // "foo" (likewise)
	Identifier    // foobar
)

var keywords = map[string]TokenKind{
	"void":     Void,
	"char":     Char,
	"short":    Short,
	"int":      Int,
	"long":     Long,
	"float":    Float,
	"double":   Double,
	"signed":   Signed,
	"unsigned": Unsigned,
	"const":    Const,
	"struct":   Struct,
	"union":    Union,
	"enum":     Enum,
	"typedef":  Typedef,
	"if":       If,
	"else":     Else,
	"while":    While,
	"do":       Do,
	"for":      For,
	"return":   Return,
	"break":    Break,
	"continue": Continue,
	"sizeof":   Sizeof,
}

func newToken(kind TokenKind, value string, span errors.Span) Token {
	return Token{
		Kind:  kind,
		Value: value,
		Span:  span,
	}
}

func UnknownToken(location errors.Location) Token {
	return Token{
		Kind:  Unknown,
		Value: "",
		Span:  errors.Span{Start: location, End: location},
	}
}

func (self TokenKind) String() string {
	var display string
	switch self {
	case Unknown:
		display = "unknown"
	case EOF:
		display = "EOF"
	case Error:
		display = "error"
	case Semicolon:
		display = ";"
	case Comma:
		display = ","
	case Colon:
		display = ":"
	case QuestionMark:
		display = "?"
	case Dot:
		display = "."
	case Arrow:
		display = "->"
	case LParen:
		display = "("
	case RParen:
		display = ")"
	case LCurly:
		display = "{"
	case RCurly:
		display = "}"
	case LBracket:
		display = "["
	case RBracket:
		display = "]"
	case Or:
		display = "||"
	case And:
		display = "&&"
	case Equal:
		display = "=="
	case NotEqual:
		display = "!="
	case LessThan:
		display = "<"
	case LessThanEqual:
		display = "<="
	case GreaterThan:
		display = ">"
	case GreaterThanEqual:
		display = ">="
	case Not:
		display = "!"
	case Plus:
		display = "+"
	case Minus:
		display = "-"
	case Star:
		display = "*"
	case Slash:
		display = "/"
	case Percent:
		display = "%"
	case Increment:
		display = "++"
	case Decrement:
		display = "--"
	case ShiftLeft:
		display = "<<"
	case ShiftRight:
		display = ">>"
	case BitOr:
		display = "|"
	case BitAnd:
		display = "&"
	case BitXor:
		display = "^"
	case BitNot:
		display = "~"
	case Assign:
		display = "="
	case PlusAssign:
		display = "+="
	case MinusAssign:
		display = "-="
	case StarAssign:
		display = "*="
	case SlashAssign:
		display = "/="
	case PercentAssign:
		display = "%="
	case ShiftLeftAssign:
		display = "<<="
	case ShiftRightAssign:
		display = ">>="
	case BitOrAssign:
		display = "|="
	case BitAndAssign:
		display = "&="
	case BitXorAssign:
		display = "^="
	case Void:
		display = "void"
	case Char:
		display = "char"
	case Short:
		display = "short"
	case Int:
		display = "int"
	case Long:
		display = "long"
	case Float:
		display = "float"
	case Double:
		display = "double"
	case Signed:
		display = "signed"
	case Unsigned:
		display = "unsigned"
	case Const:
		display = "const"
	case Struct:
		display = "struct"
	case Union:
		display = "union"
	case Enum:
		display = "enum"
	case Typedef:
		display = "typedef"
	case If:
		display = "if"
	case Else:
		display = "else"
	case While:
		display = "while"
	case Do:
		display = "do"
	case For:
		display = "for"
	case Return:
		display = "return"
	case Break:
		display = "break"
	case Continue:
		display = "continue"
	case Sizeof:
		display = "sizeof"
	case IntLiteral:
		display = "integer literal"
	case FloatLiteral:
		display = "float literal"
	case CharLiteral:
		display = "character literal"
	case StringLiteral:
		display = "string literal"
	case Identifier:
		display = "identifier"
	default:
		panic("A new token was introduced without updating this code")
	}
	return display
}

// Prec returns the binding powers of a binary, ternary or assignment
// operator token following C precedence. Right-associative operators
// return an inverse pair.
func (self TokenKind) Prec() (left uint8, right uint8) {
	switch self {
	case Comma:
		return 1, 2
	case Assign, PlusAssign, MinusAssign, StarAssign,
		SlashAssign, PercentAssign,
		ShiftLeftAssign, ShiftRightAssign,
		BitOrAssign, BitAndAssign, BitXorAssign:
		// inverse order for right-associativity
		return 4, 3
	case QuestionMark:
		// inverse order for right-associativity
		return 6, 5
	case Or:
		return 7, 8
	case And:
		return 9, 10
	case BitOr:
		return 11, 12
	case BitXor:
		return 13, 14
	case BitAnd:
		return 15, 16
	case Equal, NotEqual:
		return 17, 18
	case LessThan, GreaterThan, LessThanEqual, GreaterThanEqual:
		return 19, 20
	case ShiftLeft, ShiftRight:
		return 21, 22
	case Plus, Minus:
		return 23, 24
	case Star, Slash, Percent:
		return 25, 26
	case LParen, LBracket, Dot, Arrow, Increment, Decrement:
		return 31, 32
	case Error:
		// a recovered illegal run between two operands binds like an
		// additive operator so the surrounding expression survives
		return 23, 24
	default:
		return 0, 0
	}
}
