package lint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/lexer"
	"github.com/cvet-dev/cvet/cvet/parser"
)

func lintWith(t *testing.T, config Config, program string) []diagnostic.Diagnostic {
	t.Helper()

	diags := diagnostic.NewCollector()
	lex := lexer.NewLexer(program, "test.c", diags)
	pars := parser.NewParser(context.Background(), lex, "test.c", diags)

	tree, err := pars.Parse()
	require.Nil(t, err)

	linter := NewLinter(config, diags)
	linter.Check(tree)
	return diags.DrainSorted()
}

func lint(t *testing.T, program string) []diagnostic.Diagnostic {
	return lintWith(t, DefaultConfig(), program)
}

func TestIdentCase(t *testing.T) {
	diags := lint(t, "int maxValue;\nvoid setValue(int v) { v++; }")

	require.Len(t, diags, 2)
	for _, diag := range diags {
		assert.Equal(t, diagnostic.StyleIdentCase, diag.Code)
		assert.Equal(t, diagnostic.PhaseStyle, diag.Phase)
		assert.Equal(t, diagnostic.LevelWarning, diag.Level)
	}
	assert.Contains(t, diags[0].Message, "'maxValue'")
	require.Len(t, diags[0].Notes, 1)
	assert.Contains(t, diags[0].Notes[0], "'max_value'")
	assert.Contains(t, diags[1].Notes[0], "'set_value'")
}

func TestIdentCaseDisabled(t *testing.T) {
	config := DefaultConfig()
	config.IdentStyle = IdentStyleAny

	diags := lintWith(t, config, "int maxValue;")
	assert.Empty(t, diags)
}

func TestSnakeCaseNamesPass(t *testing.T) {
	diags := lint(t, "int max_value;\nvoid set_value(int v) { v++; }")
	assert.Empty(t, diags)
}

func TestLongFunction(t *testing.T) {
	config := DefaultConfig()
	config.MaxFunctionLines = 3

	diags := lintWith(t, config, `int f(void) {
	int a = 0;
	a++;
	a++;
	return a;
}`)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.StyleLongFunction, diags[0].Code)
	assert.Contains(t, diags[0].Message, "'f' spans 6 lines, the limit is 3")
}

func TestFunctionLengthLimitDisabled(t *testing.T) {
	config := DefaultConfig()
	config.MaxFunctionLines = 0

	diags := lintWith(t, config, "int f(void) {\n\n\n\n\n\nreturn 0;\n}")
	assert.Empty(t, diags)
}

func TestUnbracedBodies(t *testing.T) {
	diags := lint(t, `void f(int n) {
	if (n) n--;
	while (n) { n--; }
	for (;;) n--;
}`)

	require.Len(t, diags, 2)
	assert.Equal(t, diagnostic.StyleUnbracedBody, diags[0].Code)
	assert.Contains(t, diags[0].Message, "'if'")
	assert.Contains(t, diags[1].Message, "'for'")
}

func TestElseIfChainIsExempt(t *testing.T) {
	diags := lint(t, `void f(int n) {
	if (n) { n--; }
	else if (n) { n++; }
	else { n = 0; }
}`)
	assert.Empty(t, diags)
}

func TestMagicNumbers(t *testing.T) {
	diags := lint(t, `void f(int n) {
	n = n * 1000;
	n = n + 1;
	n = n - -1;
}`)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.StyleMagicNumber, diags[0].Code)
	assert.Contains(t, diags[0].Message, "1000")
}

func TestMagicNumbersHonorAllowList(t *testing.T) {
	config := DefaultConfig()
	config.AllowedNumbers = append(config.AllowedNumbers, 1000)

	diags := lintWith(t, config, "void f(int n) { n = n * 1000; }")
	assert.Empty(t, diags)
}

func TestMagicNumbersDisabled(t *testing.T) {
	config := DefaultConfig()
	config.MagicNumbers = false

	diags := lintWith(t, config, "void f(int n) { n = n * 1000; }")
	assert.Empty(t, diags)
}

func TestFileScopeBlockIsLinted(t *testing.T) {
	diags := lint(t, "{ int camelName = 3; }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.StyleIdentCase, diags[0].Code)
	assert.Contains(t, diags[0].Message, "'camelName'")
}

func TestDisabledLinterIsSilent(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = false

	diags := lintWith(t, config, "int maxValue;\nvoid f(int n) { if (n) n = 1000; }")
	assert.Empty(t, diags)
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "max_value", toSnakeCase("maxValue"))
	assert.Equal(t, "httpserver", toSnakeCase("HTTPServer"))
	assert.Equal(t, "already_snake", toSnakeCase("already_snake"))
	assert.Equal(t, "x", toSnakeCase("X"))
}
