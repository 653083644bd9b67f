package cvet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
	"github.com/cvet-dev/cvet/cvet/lexer"
	"github.com/cvet-dev/cvet/cvet/lint"
)

func run(t *testing.T, program string) Output {
	t.Helper()
	output, err := Analyze(context.Background(), []byte(program), "test.c", lint.DefaultConfig())
	require.Nil(t, err)
	return output
}

func TestCleanFile(t *testing.T) {
	output := run(t, `
enum { capacity = 8 };

int ring[capacity];

int wrap(int index) {
	return index % capacity;
}`)

	assert.Empty(t, output.Diagnostics)
	assert.False(t, output.HasErrors())
	assert.NotNil(t, output.Table)
	assert.Len(t, output.Tree.Declarations, 3)
}

func TestAllPhasesReportInOneRun(t *testing.T) {
	output := run(t, `
int first = 5 @ 3;
int second = ;
double third = "text";
int fourthValue = 4;`)

	assert.True(t, output.HasErrors())

	phases := make(map[diagnostic.Phase]int)
	for _, diag := range output.Diagnostics {
		phases[diag.Phase]++
	}
	assert.Equal(t, 1, phases[diagnostic.PhaseLexical])
	assert.Equal(t, 1, phases[diagnostic.PhaseSyntax])
	assert.Equal(t, 1, phases[diagnostic.PhaseSemantic])
	assert.Equal(t, 1, phases[diagnostic.PhaseStyle])

	// all four declarations survive their own errors
	assert.Len(t, output.Tree.Declarations, 4)
}

func TestDiagnosticsSortedByPosition(t *testing.T) {
	output := run(t, `
int broken = ;
void f(void) { undeclared(); }`)

	require.GreaterOrEqual(t, len(output.Diagnostics), 2)
	for i := 1; i < len(output.Diagnostics); i++ {
		previous := output.Diagnostics[i-1].Span.Start.Index
		current := output.Diagnostics[i].Span.Start.Index
		assert.LessOrEqual(t, previous, current)
	}
}

func TestRunsAreDeterministic(t *testing.T) {
	program := `
struct point { int x; int y; };
int get(struct point p) { return p.z + missing; }`

	first := run(t, program)
	second := run(t, program)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}

func TestUndecodableInput(t *testing.T) {
	raw := []byte{'i', 'n', 't', 0xC0, 0xC0}
	output, err := Analyze(context.Background(), raw, "test.c", lint.DefaultConfig())

	require.NotNil(t, err)
	assert.Equal(t, errors.EncodingError, err.Kind)

	require.Len(t, output.Diagnostics, 1)
	assert.Equal(t, diagnostic.InvalidEncoding, output.Diagnostics[0].Code)
	assert.True(t, output.HasErrors())
}

func TestCancelledAnalysis(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, []byte("int x = 1;"), "test.c", lint.DefaultConfig())
	require.NotNil(t, err)
	assert.Equal(t, errors.CancelledError, err.Kind)
}

func TestTokenize(t *testing.T) {
	tokens, diags, err := Tokenize([]byte("int x = 1;"), "test.c")
	require.Nil(t, err)
	assert.Empty(t, diags)

	kinds := make([]lexer.TokenKind, 0)
	for _, token := range tokens {
		kinds = append(kinds, token.Kind)
	}
	assert.Equal(t, []lexer.TokenKind{
		lexer.Int, lexer.Identifier, lexer.Assign, lexer.IntLiteral, lexer.Semicolon, lexer.EOF,
	}, kinds)
}

func TestParseOnlySkipsSemantics(t *testing.T) {
	// an undeclared identifier is fine when only parsing
	tree, diags, err := Parse(context.Background(), []byte("int f(void) { return missing; }"), "test.c")
	require.Nil(t, err)
	assert.Empty(t, diags)
	assert.Len(t, tree.Declarations, 1)
}
