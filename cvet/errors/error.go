package errors

import "fmt"

// A Location is a position inside a source buffer.
// Index is the byte offset, Line and Column are 1-based.
type Location struct {
	Line   uint
	Column uint
	Index  uint
}

func NewLocation() Location {
	return Location{
		Line:   1,
		Column: 1,
		Index:  0,
	}
}

// Advance moves the location past one character. Width is the UTF-8
// byte width of that character, so Index stays a byte offset even for
// multibyte input; Column counts characters.
func (self *Location) Advance(newline bool, width uint) {
	self.Index += width
	if newline {
		self.Column = 1
		self.Line += 1
	} else {
		self.Column += 1
	}
}

// All spans are half-open: Start is the first position of the region,
// End is one past the last.
type Span struct {
	Start    Location
	End      Location
	Filename string
}

func NewSpan(start Location, end Location, filename string) Span {
	return Span{
		Start:    start,
		End:      end,
		Filename: filename,
	}
}

// Until returns the span from the start of `self` to the end of `other`.
func (self Span) Until(other Span) Span {
	return Span{
		Start:    self.Start,
		End:      other.End,
		Filename: self.Filename,
	}
}

func (self Span) String() string {
	return fmt.Sprintf("%s:%d:%d", self.Filename, self.Start.Line, self.Start.Column)
}

// IsEmpty reports whether the span covers zero bytes.
func (self Span) IsEmpty() bool {
	return self.Start.Index == self.End.Index
}

type Error struct {
	Kind    ErrorKind
	Message string
	Span    Span
}

type ErrorKind uint8

const (
	// The input could not be decoded as text at all.
	EncodingError ErrorKind = iota
	// The pass was abandoned through its context.
	CancelledError
)

func NewError(span Span, message string, kind ErrorKind) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Span:    span,
	}
}

func (self Error) Error() string {
	return fmt.Sprintf("%s: %s", self.Span, self.Message)
}
