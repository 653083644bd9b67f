package ast

import (
	"strings"

	"github.com/cvet-dev/cvet/cvet/errors"
)

//
// Spanned ident
//

func NewSpannedIdent(ident string, span errors.Span) SpannedIdent {
	return SpannedIdent{
		ident: ident,
		span:  span,
	}
}

type SpannedIdent struct {
	ident string
	span  errors.Span
}

func (self SpannedIdent) Ident() string     { return self.ident }
func (self SpannedIdent) Span() errors.Span { return self.span }
func (self SpannedIdent) String() string    { return self.ident }

//
// Translation unit
//

// A TranslationUnit is the single root of every parse, even over
// completely malformed input. Recovered gaps appear as error nodes.
type TranslationUnit struct {
	Declarations []Declaration
	Range        errors.Span
	Filename     string
}

func (self TranslationUnit) Span() errors.Span { return self.Range }

func (self TranslationUnit) String() string {
	declarations := make([]string, 0)
	for _, decl := range self.Declarations {
		declarations = append(declarations, decl.String())
	}
	return strings.Join(declarations, "\n\n")
}
