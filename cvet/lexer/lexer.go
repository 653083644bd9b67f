package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
	"github.com/cvet-dev/cvet/cvet/util"
)

//
// Lexer
//

// The Lexer produces a lazy, forward-only token stream over one source
// buffer. It never halts on a malformed lexeme: faults are emitted into
// the pass collector and an `Error` token wrapping the offending run is
// produced so the parser can keep going.
type Lexer struct {
	currentIndex int
	currentChar  *rune
	nextChar     *rune
	program      []rune
	location     errors.Location
	filename     string
	diags        *diagnostic.Collector
}

func NewLexer(programSource string, filename string, diags *diagnostic.Collector) Lexer {
	program := []rune(programSource)
	programLen := len(program)
	var currentChar *rune
	var nextChar *rune

	if programLen == 0 {
		currentChar = nil
		nextChar = nil
	} else if programLen == 1 {
		currentChar = &program[0]
		nextChar = nil
	} else {
		currentChar = &program[0]
		nextChar = &program[1]
	}

	return Lexer{
		currentIndex: 0,
		currentChar:  currentChar,
		nextChar:     nextChar,
		program:      program,
		location:     errors.NewLocation(),
		filename:     filename,
		diags:        diags,
	}
}

func (self *Lexer) advance() {
	width := uint(1)
	if self.currentChar != nil {
		width = uint(utf8.RuneLen(*self.currentChar))
	}
	self.location.Advance(self.currentChar != nil && *self.currentChar == '\n', width)

	self.currentIndex++
	programLen := len(self.program)

	if self.currentIndex >= programLen {
		self.currentChar = nil
	} else {
		self.currentChar = &self.program[self.currentIndex]
	}

	if self.currentIndex+1 >= programLen {
		self.nextChar = nil
	} else {
		self.nextChar = &self.program[self.currentIndex+1]
	}
}

func (self *Lexer) span(start errors.Location) errors.Span {
	return errors.Span{
		Start:    start,
		End:      self.location,
		Filename: self.filename,
	}
}

func (self *Lexer) lexicalError(code diagnostic.Code, message string, recovery string, span errors.Span) {
	self.diags.Emit(diagnostic.Diagnostic{
		Phase:    diagnostic.PhaseLexical,
		Level:    diagnostic.LevelError,
		Code:     code,
		Message:  message,
		Span:     span,
		Recovery: recovery,
	})
}

func (self *Lexer) skipLineComment() {
	self.advance()
	self.advance()

	for self.currentChar != nil && *self.currentChar != '\n' {
		self.advance()
	}
}

func (self *Lexer) skipBlockComment() {
	startLocation := self.location
	self.advance()
	self.advance()

	for {
		if self.currentChar == nil {
			self.lexicalError(
				diagnostic.UnterminatedComment,
				"Block comment never closed",
				"treated remainder of input as comment",
				self.span(startLocation),
			)
			return
		}
		if self.nextChar != nil && *self.currentChar == '*' && *self.nextChar == '/' {
			self.advance()
			self.advance()
			return
		}
		self.advance()
	}
}

// Preprocessor directives are not expanded: the whole line is consumed.
func (self *Lexer) skipPreprocessorLine() {
	for self.currentChar != nil && *self.currentChar != '\n' {
		// a trailing backslash continues the directive on the next line
		if *self.currentChar == '\\' && self.nextChar != nil && *self.nextChar == '\n' {
			self.advance()
		}
		self.advance()
	}
}

func (self *Lexer) NextToken() Token {
outer:
	for self.currentChar != nil {
		switch *self.currentChar {
		case ' ', '\t', '\r', '\n':
			self.advance()
		case '#':
			self.skipPreprocessorLine()
		case '/':
			if self.nextChar != nil {
				switch *self.nextChar {
				case '/':
					self.skipLineComment()
					continue outer
				case '*':
					self.skipBlockComment()
					continue outer
				}
			}
			return self.makeSlash()
		case '"':
			return self.makeString()
		case '\'':
			return self.makeChar()
		case ';':
			return self.makeSingleChar(Semicolon, ';')
		case ',':
			return self.makeSingleChar(Comma, ',')
		case ':':
			return self.makeSingleChar(Colon, ':')
		case '?':
			return self.makeSingleChar(QuestionMark, '?')
		case '~':
			return self.makeSingleChar(BitNot, '~')
		case '(':
			return self.makeSingleChar(LParen, '(')
		case ')':
			return self.makeSingleChar(RParen, ')')
		case '{':
			return self.makeSingleChar(LCurly, '{')
		case '}':
			return self.makeSingleChar(RCurly, '}')
		case '[':
			return self.makeSingleChar(LBracket, '[')
		case ']':
			return self.makeSingleChar(RBracket, ']')
		case '.':
			if self.nextChar != nil && util.IsDigit(*self.nextChar) {
				return self.makeNumber()
			}
			return self.makeSingleChar(Dot, '.')
		case '=':
			return self.makeEquals()
		case '!':
			return self.makeNot()
		case '<':
			return self.makeLess()
		case '>':
			return self.makeGreater()
		case '+':
			return self.makePlus()
		case '-':
			return self.makeMinus()
		case '*':
			return self.makeDouble('*', Star, StarAssign)
		case '%':
			return self.makeDouble('%', Percent, PercentAssign)
		case '^':
			return self.makeDouble('^', BitXor, BitXorAssign)
		case '&':
			return self.makeAmp()
		case '|':
			return self.makePipe()
		default:
			if util.IsDigit(*self.currentChar) {
				return self.makeNumber()
			}
			if util.IsLetter(*self.currentChar) {
				return self.makeName()
			}
			return self.makeIllegalRun()
		}
	}
	return newToken(EOF, "EOF", self.span(self.location))
}

// makeIllegalRun consumes the maximal run of characters that cannot begin
// any lexeme, reports it once and wraps it in an `Error` token.
func (self *Lexer) makeIllegalRun() Token {
	startLocation := self.location
	var runBuf strings.Builder

	for self.currentChar != nil && !self.canStartLexeme(*self.currentChar) {
		runBuf.WriteRune(*self.currentChar)
		self.advance()
	}

	run := runBuf.String()
	message := fmt.Sprintf("Illegal character '%s'", run)
	if len([]rune(run)) > 1 {
		message = fmt.Sprintf("Illegal characters '%s'", run)
	}

	span := self.span(startLocation)
	self.lexicalError(
		diagnostic.IllegalCharacter,
		message,
		fmt.Sprintf("skipped %d character(s)", len([]rune(run))),
		span,
	)

	return newToken(Error, run, span)
}

func (self *Lexer) canStartLexeme(char rune) bool {
	if util.IsDigit(char) || util.IsLetter(char) {
		return true
	}
	switch char {
	case ' ', '\t', '\r', '\n', '#', '/', '"', '\'', ';', ',', ':', '?', '~',
		'(', ')', '{', '}', '[', ']', '.', '=', '!', '<', '>', '+', '-',
		'*', '%', '^', '&', '|':
		return true
	default:
		return false
	}
}

func (self *Lexer) makeString() Token {
	startLocation := self.location
	var valueBuf []rune

	// skip opening quote
	self.advance()

	for self.currentChar != nil && *self.currentChar != '"' {
		if *self.currentChar == '\n' {
			break
		}
		if *self.currentChar == '\\' {
			valueBuf = append(valueBuf, self.makeEscapeSequence())
		} else {
			valueBuf = append(valueBuf, *self.currentChar)
			self.advance()
		}
	}

	if self.currentChar == nil || *self.currentChar == '\n' {
		// reported at end-of-line (or end-of-input); the token keeps
		// what was consumed so the parser can proceed
		self.lexicalError(
			diagnostic.UnterminatedString,
			"String literal never closed",
			"treated consumed text as the literal",
			self.span(startLocation),
		)
		return newToken(StringLiteral, string(valueBuf), self.span(startLocation))
	}

	// skip closing quote
	self.advance()
	return newToken(StringLiteral, string(valueBuf), self.span(startLocation))
}

func (self *Lexer) makeChar() Token {
	startLocation := self.location
	var valueBuf []rune

	// skip opening quote
	self.advance()

	for self.currentChar != nil && *self.currentChar != '\'' {
		if *self.currentChar == '\n' {
			break
		}
		if *self.currentChar == '\\' {
			valueBuf = append(valueBuf, self.makeEscapeSequence())
		} else {
			valueBuf = append(valueBuf, *self.currentChar)
			self.advance()
		}
	}

	if self.currentChar == nil || *self.currentChar == '\n' {
		self.lexicalError(
			diagnostic.UnterminatedChar,
			"Character literal never closed",
			"treated consumed text as the literal",
			self.span(startLocation),
		)
		return newToken(CharLiteral, string(valueBuf), self.span(startLocation))
	}

	// skip closing quote
	self.advance()

	if len(valueBuf) != 1 {
		self.lexicalError(
			diagnostic.InvalidEscape,
			fmt.Sprintf("Character literal must contain exactly one character, found %d", len(valueBuf)),
			"",
			self.span(startLocation),
		)
	}

	return newToken(CharLiteral, string(valueBuf), self.span(startLocation))
}

func (self *Lexer) makeEscapeSequence() rune {
	startLocation := self.location
	self.advance()
	if self.currentChar == nil {
		self.lexicalError(
			diagnostic.InvalidEscape,
			"Unfinished escape sequence",
			"",
			self.span(startLocation),
		)
		return ' '
	}

	var char rune
	switch *self.currentChar {
	case '\\':
		char = '\\'
		self.advance()
	case '\'':
		char = '\''
		self.advance()
	case '"':
		char = '"'
		self.advance()
	case 'a':
		char = '\a'
		self.advance()
	case 'b':
		char = '\b'
		self.advance()
	case 'f':
		char = '\f'
		self.advance()
	case 'n':
		char = '\n'
		self.advance()
	case 'r':
		char = '\r'
		self.advance()
	case 't':
		char = '\t'
		self.advance()
	case 'v':
		char = '\v'
		self.advance()
	case 'x':
		char = self.escapePart("", startLocation, 16, 1, 2)
	default:
		// octal escapes carry one to three digits, the first is already
		// at hand
		if util.IsOctalDigit(*self.currentChar) {
			char = self.escapePart(string(*self.currentChar), startLocation, 8, 0, 2)
		} else {
			self.lexicalError(
				diagnostic.InvalidEscape,
				fmt.Sprintf("Invalid escape sequence '\\%c'", *self.currentChar),
				"kept the character verbatim",
				self.span(startLocation),
			)
			char = *self.currentChar
			self.advance()
		}
	}
	return char
}

func (self *Lexer) escapePart(esc string, startLocation errors.Location, radix int, minDigits uint8, maxDigits uint8) rune {
	self.advance()
	var digitFun func(rune) bool
	if radix == 16 {
		digitFun = util.IsHexDigit
	} else {
		digitFun = util.IsOctalDigit
	}

	consumed := uint8(0)
	for consumed < maxDigits && self.currentChar != nil && digitFun(*self.currentChar) {
		esc += string(*self.currentChar)
		self.advance()
		consumed++
	}
	if consumed < minDigits {
		self.lexicalError(
			diagnostic.InvalidEscape,
			"Invalid escape sequence",
			"",
			self.span(startLocation),
		)
		return ' '
	}

	code, _ := strconv.ParseInt(esc, radix, 32)
	return rune(code)
}

func (self *Lexer) makeNumber() Token {
	startLocation := self.location
	value := ""
	kind := IntLiteral

	if *self.currentChar == '0' && self.nextChar != nil && (*self.nextChar == 'x' || *self.nextChar == 'X') {
		value += string(*self.currentChar)
		self.advance()
		value += string(*self.currentChar)
		self.advance()
		for self.currentChar != nil && util.IsHexDigit(*self.currentChar) {
			value += string(*self.currentChar)
			self.advance()
		}
		return self.finishNumber(kind, value, startLocation)
	}

	for self.currentChar != nil && util.IsDigit(*self.currentChar) {
		value += string(*self.currentChar)
		self.advance()
	}

	if self.currentChar != nil && *self.currentChar == '.' {
		kind = FloatLiteral
		value += string(*self.currentChar)
		self.advance()
		for self.currentChar != nil && util.IsDigit(*self.currentChar) {
			value += string(*self.currentChar)
			self.advance()
		}
	}

	if self.currentChar != nil && (*self.currentChar == 'e' || *self.currentChar == 'E') {
		if self.nextChar != nil && (util.IsDigit(*self.nextChar) || *self.nextChar == '+' || *self.nextChar == '-') {
			kind = FloatLiteral
			value += string(*self.currentChar)
			self.advance()
			if *self.currentChar == '+' || *self.currentChar == '-' {
				value += string(*self.currentChar)
				self.advance()
			}
			for self.currentChar != nil && util.IsDigit(*self.currentChar) {
				value += string(*self.currentChar)
				self.advance()
			}
		}
	}

	return self.finishNumber(kind, value, startLocation)
}

// finishNumber consumes a trailing suffix greedily and flags an invalid
// one separately from the literal itself.
func (self *Lexer) finishNumber(kind TokenKind, value string, startLocation errors.Location) Token {
	suffixStart := self.location
	suffix := ""
	for self.currentChar != nil && (util.IsLetter(*self.currentChar) || util.IsDigit(*self.currentChar)) {
		suffix += string(*self.currentChar)
		self.advance()
	}

	if suffix != "" && !isValidNumberSuffix(kind, suffix) {
		self.lexicalError(
			diagnostic.InvalidNumberSuffix,
			fmt.Sprintf("Invalid suffix '%s' on numeric literal", suffix),
			"ignored the suffix",
			self.span(suffixStart),
		)
	}

	if suffix == "f" || suffix == "F" {
		kind = FloatLiteral
	}

	return newToken(kind, value, self.span(startLocation))
}

func isValidNumberSuffix(kind TokenKind, suffix string) bool {
	lower := strings.ToLower(suffix)
	if kind == FloatLiteral {
		return lower == "f" || lower == "l"
	}
	switch lower {
	case "u", "l", "ul", "lu", "ll", "ull", "llu", "f":
		return true
	default:
		return false
	}
}

func (self *Lexer) makeName() Token {
	startLocation := self.location
	value := ""

	for self.currentChar != nil && (util.IsLetter(*self.currentChar) || util.IsDigit(*self.currentChar)) {
		value += string(*self.currentChar)
		self.advance()
	}

	if kind, isKeyword := keywords[value]; isKeyword {
		return newToken(kind, value, self.span(startLocation))
	}
	return newToken(Identifier, value, self.span(startLocation))
}

func (self *Lexer) makeSingleChar(kind TokenKind, value rune) Token {
	startLocation := self.location
	self.advance()
	return newToken(kind, string(value), self.span(startLocation))
}

// makeDouble handles the single-char operator plus its `=` compound form.
func (self *Lexer) makeDouble(value rune, plain TokenKind, compound TokenKind) Token {
	startLocation := self.location
	self.advance()

	if self.currentChar != nil && *self.currentChar == '=' {
		self.advance()
		return newToken(compound, string(value)+"=", self.span(startLocation))
	}
	return newToken(plain, string(value), self.span(startLocation))
}

func (self *Lexer) makeEquals() Token {
	startLocation := self.location
	self.advance()

	if self.currentChar != nil && *self.currentChar == '=' {
		self.advance()
		return newToken(Equal, "==", self.span(startLocation))
	}
	return newToken(Assign, "=", self.span(startLocation))
}

func (self *Lexer) makeNot() Token {
	startLocation := self.location
	self.advance()

	if self.currentChar != nil && *self.currentChar == '=' {
		self.advance()
		return newToken(NotEqual, "!=", self.span(startLocation))
	}
	return newToken(Not, "!", self.span(startLocation))
}

func (self *Lexer) makeLess() Token {
	startLocation := self.location
	self.advance()

	if self.currentChar != nil {
		switch *self.currentChar {
		case '=':
			self.advance()
			return newToken(LessThanEqual, "<=", self.span(startLocation))
		case '<':
			self.advance()
			if self.currentChar != nil && *self.currentChar == '=' {
				self.advance()
				return newToken(ShiftLeftAssign, "<<=", self.span(startLocation))
			}
			return newToken(ShiftLeft, "<<", self.span(startLocation))
		}
	}
	return newToken(LessThan, "<", self.span(startLocation))
}

func (self *Lexer) makeGreater() Token {
	startLocation := self.location
	self.advance()

	if self.currentChar != nil {
		switch *self.currentChar {
		case '=':
			self.advance()
			return newToken(GreaterThanEqual, ">=", self.span(startLocation))
		case '>':
			self.advance()
			if self.currentChar != nil && *self.currentChar == '=' {
				self.advance()
				return newToken(ShiftRightAssign, ">>=", self.span(startLocation))
			}
			return newToken(ShiftRight, ">>", self.span(startLocation))
		}
	}
	return newToken(GreaterThan, ">", self.span(startLocation))
}

func (self *Lexer) makePlus() Token {
	startLocation := self.location
	self.advance()

	if self.currentChar != nil {
		switch *self.currentChar {
		case '+':
			self.advance()
			return newToken(Increment, "++", self.span(startLocation))
		case '=':
			self.advance()
			return newToken(PlusAssign, "+=", self.span(startLocation))
		}
	}
	return newToken(Plus, "+", self.span(startLocation))
}

func (self *Lexer) makeMinus() Token {
	startLocation := self.location
	self.advance()

	if self.currentChar != nil {
		switch *self.currentChar {
		case '-':
			self.advance()
			return newToken(Decrement, "--", self.span(startLocation))
		case '=':
			self.advance()
			return newToken(MinusAssign, "-=", self.span(startLocation))
		case '>':
			self.advance()
			return newToken(Arrow, "->", self.span(startLocation))
		}
	}
	return newToken(Minus, "-", self.span(startLocation))
}

func (self *Lexer) makeSlash() Token {
	return self.makeDouble('/', Slash, SlashAssign)
}

func (self *Lexer) makeAmp() Token {
	startLocation := self.location
	self.advance()

	if self.currentChar != nil {
		switch *self.currentChar {
		case '&':
			self.advance()
			return newToken(And, "&&", self.span(startLocation))
		case '=':
			self.advance()
			return newToken(BitAndAssign, "&=", self.span(startLocation))
		}
	}
	return newToken(BitAnd, "&", self.span(startLocation))
}

func (self *Lexer) makePipe() Token {
	startLocation := self.location
	self.advance()

	if self.currentChar != nil {
		switch *self.currentChar {
		case '|':
			self.advance()
			return newToken(Or, "||", self.span(startLocation))
		case '=':
			self.advance()
			return newToken(BitOrAssign, "|=", self.span(startLocation))
		}
	}
	return newToken(BitOr, "|", self.span(startLocation))
}
