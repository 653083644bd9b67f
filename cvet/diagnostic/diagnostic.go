package diagnostic

import (
	"fmt"
	"strings"

	"github.com/cvet-dev/cvet/cvet/errors"
)

type Phase uint8

const (
	PhaseLexical Phase = iota
	PhaseSyntax
	PhaseSemantic
	PhaseStyle
)

func (self Phase) String() string {
	switch self {
	case PhaseLexical:
		return "lexical"
	case PhaseSyntax:
		return "syntax"
	case PhaseSemantic:
		return "semantic"
	case PhaseStyle:
		return "style"
	default:
		panic("A new phase was added without updating this code")
	}
}

type Level uint8

const (
	LevelNote Level = iota
	LevelWarning
	LevelError
)

func (self Level) String() string {
	switch self {
	case LevelNote:
		return "Note"
	case LevelWarning:
		return "Warning"
	case LevelError:
		return "Error"
	default:
		panic("A new diagnostic level was added without updating this code")
	}
}

// Code is the stable identifier of a diagnostic condition. Codes are the
// contract downstream consumers match on; messages are free to change.
type Code string

const (
	// lexical
	IllegalCharacter    Code = "illegal-character"
	UnterminatedString  Code = "unterminated-string"
	UnterminatedChar    Code = "unterminated-char"
	UnterminatedComment Code = "unterminated-comment"
	InvalidNumberSuffix Code = "invalid-number-suffix"
	InvalidEscape       Code = "invalid-escape"

	// syntax
	ExpectedToken       Code = "expected-token"
	ExpectedDeclaration Code = "expected-declaration"
	ExpectedStatement   Code = "expected-statement"
	ExpectedExpression  Code = "expected-expression"

	// semantic
	DuplicateDeclaration Code = "duplicate-declaration"
	UndeclaredIdentifier Code = "undeclared-identifier"
	TypeMismatch         Code = "type-mismatch"
	ArgumentMismatch     Code = "argument-mismatch"
	NotAssignable        Code = "not-assignable"
	NotCallable          Code = "not-callable"
	InvalidSubscript     Code = "invalid-subscript"
	UnknownMember        Code = "unknown-member"
	InvalidControlFlow   Code = "invalid-control-flow"
	ReturnTypeMismatch   Code = "return-type-mismatch"
	VoidVariable         Code = "void-variable"
	ShadowedDeclaration  Code = "shadowed-declaration"
	UnusedSymbol         Code = "unused-symbol"
	UninitializedUse     Code = "uninitialized-use"

	// style
	StyleIdentCase    Code = "style-ident-case"
	StyleLongFunction Code = "style-long-function"
	StyleUnbracedBody Code = "style-unbraced-body"
	StyleMagicNumber  Code = "style-magic-number"

	// fatal
	InvalidEncoding Code = "invalid-encoding"
)

type Diagnostic struct {
	Phase   Phase       `json:"phase"`
	Level   Level       `json:"level"`
	Code    Code        `json:"code"`
	Message string      `json:"message"`
	Notes   []string    `json:"notes"`
	Span    errors.Span `json:"span"`
	// Recovery describes the recovery action the emitting phase took,
	// e.g. "skipped 4 tokens up to ';'". Empty when no recovery happened.
	Recovery string `json:"recovery,omitempty"`
}

// Display renders the diagnostic with a source excerpt and ANSI colors.
// The caller supplies the program text the spans refer to.
func (self Diagnostic) Display(program string) string {
	singleMarker := "^"
	markerMul := ""
	var color uint8 = 0

	switch self.Level {
	case LevelNote:
		markerMul = "~"
		color = 4 // blue
	case LevelWarning:
		markerMul = "~"
		color = 3 // yellow
	case LevelError:
		markerMul = "^"
		color = 1 // red
	}

	notes := ""
	for _, note := range self.Notes {
		notes += fmt.Sprintf("%s - note:\x1b[0m %s\n", ansiCol(36, true), note)
	}

	recovery := ""
	if self.Recovery != "" {
		recovery = fmt.Sprintf("%s - recovery:\x1b[0m %s\n", ansiCol(36, true), self.Recovery)
	}

	// no useful span, for instance on an empty source buffer
	if self.Span.Start.Line == 0 &&
		self.Span.Start.Column == 0 &&
		self.Span.End.Line == 0 &&
		self.Span.End.Column == 0 {
		return fmt.Sprintf(
			"%s%s [%s]\x1b[1;39m in %s\x1b[0m\n%s\n%s%s",
			ansiCol(color+30, true),
			self.Level,
			self.Code,
			self.Span.Filename,
			self.Message,
			notes,
			recovery,
		)
	}

	lines := strings.Split(program, "\n")

	line1 := ""
	if self.Span.Start.Line > 1 {
		line1 = fmt.Sprintf("\n \x1b[90m%- 3d | \x1b[0m%s", self.Span.Start.Line-1, lines[self.Span.Start.Line-2])
	}
	line2 := fmt.Sprintf(" \x1b[90m%- 3d | \x1b[0m%s", self.Span.Start.Line, lines[self.Span.Start.Line-1])
	line3 := ""
	if int(self.Span.Start.Line) < len(lines) {
		line3 = fmt.Sprintf("\n \x1b[90m%- 3d | \x1b[0m%s", self.Span.Start.Line+1, lines[self.Span.Start.Line])
	}

	markers := ""
	if self.Span.Start.Line == self.Span.End.Line {
		width := int(self.Span.End.Column) - int(self.Span.Start.Column)
		if width <= 1 {
			markers = singleMarker
		} else {
			markers = strings.Repeat(markerMul, width)
		}
	} else {
		// multiline span
		s := "s"
		if self.Span.End.Line-self.Span.Start.Line == 1 {
			s = ""
		}

		width := len(lines[self.Span.Start.Line-1]) - int(self.Span.Start.Column) + 1
		if width < 1 {
			width = 1
		}

		markers = fmt.Sprintf(
			"%s ...\n%s%s+ %d more line%s\x1b[0m",
			strings.Repeat(markerMul, width),
			strings.Repeat(" ", int(self.Span.Start.Column)+6),
			ansiCol(32, true),
			self.Span.End.Line-self.Span.Start.Line,
			s,
		)
	}
	marker := fmt.Sprintf(
		"%s%s%s\x1b[0m",
		ansiCol(color+30, true),
		strings.Repeat(" ", int(self.Span.Start.Column+6)),
		markers,
	)

	return fmt.Sprintf(
		"%s%v [%s]\x1b[39m at %s:%d:%d\x1b[0m\n%s\n%s\n%s%s\n\n%s%s\x1b[0m\n%s%s",
		ansiCol(color+30, true),
		self.Level,
		self.Code,
		self.Span.Filename,
		self.Span.Start.Line,
		self.Span.Start.Column,
		line1,
		line2,
		marker,
		line3,
		ansiCol(color+30, true),
		self.Message,
		notes,
		recovery,
	)
}

func ansiCol(color uint8, bold bool) string {
	if bold {
		return fmt.Sprintf("\x1b[1;%dm", color)
	}
	return fmt.Sprintf("\x1b[%dm", color)
}
