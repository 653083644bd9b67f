package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cvet-dev/cvet/cvet/diagnostic"
)

func lexAll(t *testing.T, program string) ([]Token, []diagnostic.Diagnostic) {
	t.Helper()

	diags := diagnostic.NewCollector()
	lexer := NewLexer(program, "test.c", diags)

	tokens := make([]Token, 0)
	for {
		token := lexer.NextToken()
		if token.Kind == EOF {
			break
		}
		assert.NotEqual(t, Unknown, token.Kind, "unknown token at %s", token.Span)
		tokens = append(tokens, token)
	}
	return tokens, diags.DrainSorted()
}

func kindsOf(tokens []Token) []TokenKind {
	kinds := make([]TokenKind, 0, len(tokens))
	for _, token := range tokens {
		kinds = append(kinds, token.Kind)
	}
	return kinds
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	tokens, diags := lexAll(t, "int unsigned_value; return returning;")
	assert.Empty(t, diags)
	assert.Equal(t, []TokenKind{
		Int, Identifier, Semicolon,
		Return, Identifier, Semicolon,
	}, kindsOf(tokens))
	assert.Equal(t, "unsigned_value", tokens[1].Value)
	assert.Equal(t, "returning", tokens[4].Value)
}

func TestOperators(t *testing.T) {
	tokens, diags := lexAll(t, "a <<= b >> c <= d < e ++ -- -> . && & |= ~ ^=")
	assert.Empty(t, diags)
	assert.Equal(t, []TokenKind{
		Identifier, ShiftLeftAssign, Identifier, ShiftRight, Identifier,
		LessThanEqual, Identifier, LessThan, Identifier,
		Increment, Decrement, Arrow, Dot, And, BitAnd, BitOrAssign, BitNot, BitXorAssign,
	}, kindsOf(tokens))
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  TokenKind
		value string
	}{
		{"42", IntLiteral, "42"},
		{"0x1F", IntLiteral, "0x1F"},
		{"10ul", IntLiteral, "10"},
		{"7ULL", IntLiteral, "7"},
		{"3.14", FloatLiteral, "3.14"},
		{".5", FloatLiteral, ".5"},
		{"1e3", FloatLiteral, "1e3"},
		{"2.5e-4", FloatLiteral, "2.5e-4"},
		// an `f` suffix turns an integer literal into a float one
		{"1f", FloatLiteral, "1"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			tokens, diags := lexAll(t, test.input)
			assert.Empty(t, diags)
			assert.Len(t, tokens, 1)
			assert.Equal(t, test.kind, tokens[0].Kind)
			assert.Equal(t, test.value, tokens[0].Value)
		})
	}
}

func TestInvalidNumberSuffix(t *testing.T) {
	tokens, diags := lexAll(t, "int x = 5xy;")
	assert.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InvalidNumberSuffix, diags[0].Code)
	assert.Equal(t, "ignored the suffix", diags[0].Recovery)

	// the literal itself survives with the suffix stripped
	assert.Equal(t, []TokenKind{Int, Identifier, Assign, IntLiteral, Semicolon}, kindsOf(tokens))
	assert.Equal(t, "5", tokens[3].Value)
}

func TestStringLiterals(t *testing.T) {
	tokens, diags := lexAll(t, `char *s = "hi\tthere\n";`)
	assert.Empty(t, diags)
	assert.Equal(t, StringLiteral, tokens[4].Kind)
	assert.Equal(t, "hi\tthere\n", tokens[4].Value)
}

func TestUnterminatedString(t *testing.T) {
	tokens, diags := lexAll(t, "char *s = \"oops;\nint x = 1;")
	assert.Len(t, diags, 1)
	assert.Equal(t, diagnostic.UnterminatedString, diags[0].Code)
	assert.Equal(t, uint(1), diags[0].Span.Start.Line)

	// lexing resumes on the next line
	assert.Equal(t, []TokenKind{
		Char, Star, Identifier, Assign, StringLiteral,
		Int, Identifier, Assign, IntLiteral, Semicolon,
	}, kindsOf(tokens))
	assert.Equal(t, "oops;", tokens[4].Value)
}

func TestCharLiterals(t *testing.T) {
	tokens, diags := lexAll(t, `char a = 'x'; char b = '\n'; char c = '\x41';`)
	assert.Empty(t, diags)
	assert.Equal(t, "x", tokens[3].Value)
	assert.Equal(t, "\n", tokens[8].Value)
	assert.Equal(t, "A", tokens[13].Value)
}

func TestOctalEscapes(t *testing.T) {
	tokens, diags := lexAll(t, `char a = '\7'; char b = '\77'; char c = '\101'; char *s = "\0";`)
	assert.Empty(t, diags)
	assert.Equal(t, "\a", tokens[3].Value)
	assert.Equal(t, "?", tokens[8].Value)
	assert.Equal(t, "A", tokens[13].Value)
	assert.Equal(t, "\x00", tokens[19].Value)
}

func TestCharLiteralTooLong(t *testing.T) {
	_, diags := lexAll(t, "char a = 'ab';")
	assert.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InvalidEscape, diags[0].Code)
}

func TestInvalidEscape(t *testing.T) {
	tokens, diags := lexAll(t, `char *s = "a\qb";`)
	assert.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InvalidEscape, diags[0].Code)
	// the offending character is kept verbatim
	assert.Equal(t, "aqb", tokens[4].Value)
}

func TestSpansUseByteOffsets(t *testing.T) {
	program := `char *s = "héllo"; int x;`
	tokens, diags := lexAll(t, program)
	assert.Empty(t, diags)

	literal := tokens[4]
	assert.Equal(t, StringLiteral, literal.Kind)
	assert.Equal(t, "héllo", literal.Value)

	// 'é' is two bytes wide: Index counts bytes, Column counts characters
	intToken := tokens[6]
	assert.Equal(t, Int, intToken.Kind)
	assert.Equal(t, uint(20), intToken.Span.Start.Index)
	assert.Equal(t, uint(20), intToken.Span.Start.Column)
	assert.Equal(t, "int", program[intToken.Span.Start.Index:intToken.Span.End.Index])
}

func TestComments(t *testing.T) {
	tokens, diags := lexAll(t, "int a; // trailing\n/* block\nspanning */ int b;")
	assert.Empty(t, diags)
	assert.Equal(t, []TokenKind{Int, Identifier, Semicolon, Int, Identifier, Semicolon}, kindsOf(tokens))
}

func TestUnterminatedBlockComment(t *testing.T) {
	tokens, diags := lexAll(t, "int a; /* never closed")
	assert.Len(t, diags, 1)
	assert.Equal(t, diagnostic.UnterminatedComment, diags[0].Code)
	assert.Equal(t, []TokenKind{Int, Identifier, Semicolon}, kindsOf(tokens))
}

func TestPreprocessorLinesAreSkipped(t *testing.T) {
	program := "#include <stdio.h>\n#define GREETING \\\n  \"hello\"\nint x;"
	tokens, diags := lexAll(t, program)
	assert.Empty(t, diags)
	assert.Equal(t, []TokenKind{Int, Identifier, Semicolon}, kindsOf(tokens))
	assert.Equal(t, uint(4), tokens[0].Span.Start.Line)
}

func TestIllegalCharacterRun(t *testing.T) {
	tokens, diags := lexAll(t, "int x = 5 @ 3;")

	// exactly one diagnostic for the run, never one per character
	assert.Len(t, diags, 1)
	assert.Equal(t, diagnostic.IllegalCharacter, diags[0].Code)
	assert.Equal(t, diagnostic.PhaseLexical, diags[0].Phase)
	assert.Equal(t, uint(10), diags[0].Span.Start.Index)
	assert.Equal(t, uint(11), diags[0].Span.End.Index)

	assert.Equal(t, []TokenKind{
		Int, Identifier, Assign, IntLiteral, Error, IntLiteral, Semicolon,
	}, kindsOf(tokens))
	assert.Equal(t, "@", tokens[4].Value)
}

func TestIllegalCharactersCoalesce(t *testing.T) {
	tokens, diags := lexAll(t, "int x = @@$ 3;")
	assert.Len(t, diags, 1)
	assert.Equal(t, "@@$", tokens[3].Value)
	assert.Equal(t, "skipped 3 character(s)", diags[0].Recovery)
}

func TestEmptyInput(t *testing.T) {
	tokens, diags := lexAll(t, "")
	assert.Empty(t, tokens)
	assert.Empty(t, diags)
}

func TestSpansAreHalfOpen(t *testing.T) {
	tokens, diags := lexAll(t, "int foo;")
	assert.Empty(t, diags)

	foo := tokens[1]
	assert.Equal(t, uint(4), foo.Span.Start.Index)
	assert.Equal(t, uint(7), foo.Span.End.Index)
	assert.Equal(t, uint(5), foo.Span.Start.Column)
	assert.Equal(t, uint(8), foo.Span.End.Column)
}
