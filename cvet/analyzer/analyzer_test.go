package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/errors"
	"github.com/cvet-dev/cvet/cvet/lexer"
	"github.com/cvet-dev/cvet/cvet/parser"
)

func analyze(t *testing.T, program string) (*SymbolTable, []diagnostic.Diagnostic) {
	t.Helper()

	diags := diagnostic.NewCollector()
	lex := lexer.NewLexer(program, "test.c", diags)
	pars := parser.NewParser(context.Background(), lex, "test.c", diags)

	tree, err := pars.Parse()
	require.Nil(t, err)

	analyzer := NewAnalyzer(context.Background(), "test.c", diags)
	table, err := analyzer.Check(tree)
	require.Nil(t, err)

	return table, diags.DrainSorted()
}

func errorsOf(diags []diagnostic.Diagnostic) []diagnostic.Diagnostic {
	filtered := make([]diagnostic.Diagnostic, 0)
	for _, diag := range diags {
		if diag.Level == diagnostic.LevelError {
			filtered = append(filtered, diag)
		}
	}
	return filtered
}

func warningsOf(diags []diagnostic.Diagnostic) []diagnostic.Diagnostic {
	filtered := make([]diagnostic.Diagnostic, 0)
	for _, diag := range diags {
		if diag.Level == diagnostic.LevelWarning {
			filtered = append(filtered, diag)
		}
	}
	return filtered
}

func TestCleanProgram(t *testing.T) {
	_, diags := analyze(t, `
int add(int a, int b) { return a + b; }

int main(void) {
	int sum = add(1, 2);
	return sum;
}`)
	assert.Empty(t, diags)
}

func TestDuplicateDeclaration(t *testing.T) {
	_, diags := analyze(t, "int x;\nint x;")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.DuplicateDeclaration, diags[0].Code)
	assert.Equal(t, diagnostic.PhaseSemantic, diags[0].Phase)
	require.Len(t, diags[0].Notes, 1)
	assert.Contains(t, diags[0].Notes[0], "previously declared at test.c:1:5")
}

func TestFunctionRedefinition(t *testing.T) {
	_, diags := analyze(t, `
int f(void);
int f(void) { return 1; }
int f(void) { return 2; }`)

	errs := errorsOf(diags)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.DuplicateDeclaration, errs[0].Code)
}

func TestConflictingPrototype(t *testing.T) {
	_, diags := analyze(t, "int f(int a);\ndouble f(int a);")

	errs := errorsOf(diags)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.TypeMismatch, errs[0].Code)
}

func TestShadowingWarning(t *testing.T) {
	_, diags := analyze(t, `
int total;
void bump(void) {
	int total = 1;
	total = total + 1;
}`)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.ShadowedDeclaration, diags[0].Code)
	assert.Equal(t, diagnostic.LevelWarning, diags[0].Level)
}

func TestFileScopeBlockShadowingIsLegal(t *testing.T) {
	_, diags := analyze(t, "int a; { int a; }")
	assert.Empty(t, errorsOf(diags))

	warnings := warningsOf(diags)
	require.Len(t, warnings, 2)
	assert.Equal(t, diagnostic.ShadowedDeclaration, warnings[0].Code)
	assert.Equal(t, diagnostic.UnusedSymbol, warnings[1].Code)
}

func TestUndeclaredIdentifierSuggestion(t *testing.T) {
	_, diags := analyze(t, `
int counter;
int get(void) { return countr; }`)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.UndeclaredIdentifier, diags[0].Code)
	require.Len(t, diags[0].Notes, 1)
	assert.Contains(t, diags[0].Notes[0], "did you mean 'counter'?")
}

func TestUndeclaredErrorDoesNotCascade(t *testing.T) {
	// the unresolved callee must not additionally trip the call,
	// arithmetic and return checks
	_, diags := analyze(t, "int f(void) { return g(1) + 2; }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.UndeclaredIdentifier, diags[0].Code)
}

func TestUndeclaredInInitializerDoesNotCascade(t *testing.T) {
	// the initializer mismatch must not be reported on top of the
	// unresolved name that caused it
	_, diags := analyze(t, "int y = z + 1;")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.UndeclaredIdentifier, diags[0].Code)
}

func TestBlockScopeEnds(t *testing.T) {
	_, diags := analyze(t, `
int f(void) {
	{ int inner = 1; inner++; }
	return inner;
}`)

	errs := errorsOf(diags)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.UndeclaredIdentifier, errs[0].Code)
}

func TestAssignmentTypeMismatch(t *testing.T) {
	_, diags := analyze(t, `
void f(double *src) {
	int *dst;
	dst = src;
	*dst = 0;
}`)

	errs := errorsOf(diags)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.TypeMismatch, errs[0].Code)
	assert.Contains(t, errs[0].Message, "expected 'int*', found 'double*'")
}

func TestVoidPointerAssignsFreely(t *testing.T) {
	_, diags := analyze(t, `
void f(void *raw, int *typed) {
	typed = raw;
	raw = typed;
	*typed = 1;
}`)
	assert.Empty(t, errorsOf(diags))
}

func TestArgumentCountMismatch(t *testing.T) {
	_, diags := analyze(t, `
int add(int a, int b);
int use(void) { return add(1); }`)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.ArgumentMismatch, diags[0].Code)
	assert.Contains(t, diags[0].Message, "expects 2 argument(s), found 1")
}

func TestArgumentTypeMismatch(t *testing.T) {
	_, diags := analyze(t, `
void take(int *p);
void use(double d) { take(d); }`)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.ArgumentMismatch, diags[0].Code)
	assert.Contains(t, diags[0].Message, "Argument 1")
}

func TestNotCallable(t *testing.T) {
	_, diags := analyze(t, "void f(int x) { x(); }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.NotCallable, diags[0].Code)
	assert.Contains(t, diags[0].Message, "'int'")
}

func TestInvalidSubscript(t *testing.T) {
	_, diags := analyze(t, "int f(int a[], double d) { return a[d]; }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InvalidSubscript, diags[0].Code)
}

func TestSubscriptOnScalar(t *testing.T) {
	_, diags := analyze(t, "int f(int x) { return x[0]; }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InvalidSubscript, diags[0].Code)
}

func TestUnknownMemberSuggestion(t *testing.T) {
	_, diags := analyze(t, `
struct point { int x; int y; };
int get(struct point p) { return p.z; }`)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.UnknownMember, diags[0].Code)
	require.Len(t, diags[0].Notes, 1)
	assert.Contains(t, diags[0].Notes[0], "did you mean 'x'?")
}

func TestArrowOnValueAndDotOnPointer(t *testing.T) {
	_, diags := analyze(t, `
struct point { int x; int y; };
int a(struct point p) { return p->x; }
int b(struct point *p) { return p.x; }`)

	errs := errorsOf(diags)
	require.Len(t, errs, 2)
	assert.Equal(t, diagnostic.TypeMismatch, errs[0].Code)
	assert.Equal(t, diagnostic.TypeMismatch, errs[1].Code)
}

func TestIncompleteRecordAccess(t *testing.T) {
	_, diags := analyze(t, `
struct node;
int get(struct node *n) { return n->value; }`)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.TypeMismatch, diags[0].Code)
	assert.Contains(t, diags[0].Message, "incomplete")
}

func TestBreakOutsideLoop(t *testing.T) {
	_, diags := analyze(t, "void f(void) { break; }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InvalidControlFlow, diags[0].Code)
	assert.Contains(t, diags[0].Message, "'break'")
}

func TestContinueInsideLoopIsFine(t *testing.T) {
	_, diags := analyze(t, `
void f(int n) {
	while (n > 0) {
		n = n - 1;
		continue;
	}
}`)
	assert.Empty(t, diags)
}

func TestBareReturnInNonVoidFunction(t *testing.T) {
	_, diags := analyze(t, "int f(void) { return; }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.ReturnTypeMismatch, diags[0].Code)
	assert.Contains(t, diags[0].Message, "must return a value of type 'int'")
}

func TestValueReturnInVoidFunction(t *testing.T) {
	_, diags := analyze(t, "void f(void) { return 1; }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.ReturnTypeMismatch, diags[0].Code)
}

func TestNonScalarCondition(t *testing.T) {
	_, diags := analyze(t, `
struct point { int x; int y; };
void f(struct point p) {
	if (p) { return; }
}`)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.TypeMismatch, diags[0].Code)
	assert.Contains(t, diags[0].Message, "scalar")
}

func TestVoidVariable(t *testing.T) {
	_, diags := analyze(t, "void x;")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.VoidVariable, diags[0].Code)
}

func TestUnusedVariableWarning(t *testing.T) {
	_, diags := analyze(t, "void f(void) { int x = 1; }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.UnusedSymbol, diags[0].Code)
	assert.Equal(t, diagnostic.LevelWarning, diags[0].Level)
	assert.Contains(t, diags[0].Message, "'x' is unused")
}

func TestUnusedParameterWarning(t *testing.T) {
	_, diags := analyze(t, "int f(int used, int spare) { return used; }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.UnusedSymbol, diags[0].Code)
	assert.Contains(t, diags[0].Message, "'spare'")
}

func TestUninitializedUseWarnsOnce(t *testing.T) {
	_, diags := analyze(t, `
int f(void) {
	int x;
	int y = x + x;
	return y;
}`)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.UninitializedUse, diags[0].Code)
	assert.Equal(t, diagnostic.LevelWarning, diags[0].Level)
}

func TestAssignmentInitializes(t *testing.T) {
	_, diags := analyze(t, `
int f(void) {
	int x;
	x = 1;
	return x;
}`)
	assert.Empty(t, diags)
}

func TestAddressOfInitializes(t *testing.T) {
	// once the address escapes, any write path may have initialized it
	_, diags := analyze(t, `
void fill(int *p);
int f(void) {
	int x;
	fill(&x);
	return x;
}`)
	assert.Empty(t, diags)
}

func TestTypedefUsage(t *testing.T) {
	_, diags := analyze(t, `
typedef unsigned long usize;
usize grow(usize n) { return n + 1; }`)
	assert.Empty(t, diags)
}

func TestFunctionIsNotAssignable(t *testing.T) {
	_, diags := analyze(t, `
void g(void);
void f(void) { g = f; }`)

	errs := errorsOf(diags)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.NotAssignable, errs[0].Code)
	assert.Contains(t, errs[0].Message, "'g'")
}

func TestEnumConstantsAreIntegers(t *testing.T) {
	_, diags := analyze(t, `
enum color { RED, GREEN, BLUE };
int next(int c) { return c + GREEN; }`)
	assert.Empty(t, diags)
}

func TestNotAssignableTemporary(t *testing.T) {
	_, diags := analyze(t, "void f(int a, int b) { a + b = 1; }")

	errs := errorsOf(diags)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.NotAssignable, errs[0].Code)
}

func TestArrayInitializerByAssignment(t *testing.T) {
	_, diags := analyze(t, `
void f(int *p) {
	int buffer[4] = p;
	buffer[0] = 1;
}`)

	errs := errorsOf(diags)
	require.Len(t, errs, 1)
	assert.Equal(t, diagnostic.NotAssignable, errs[0].Code)
}

func TestArrayDecaysToPointer(t *testing.T) {
	_, diags := analyze(t, `
int sum(int *values, int count);
int total(void) {
	int values[3];
	return sum(values, 3);
}`)
	assert.Empty(t, errorsOf(diags))
}

func TestScopesAreRetained(t *testing.T) {
	table, diags := analyze(t, `
int f(int a) {
	int b = a;
	{ int c = b; return c; }
}`)
	assert.Empty(t, diags)

	// the global scope, the function scope and the inner block
	require.Len(t, table.Scopes(), 3)

	names := make([]string, 0)
	for _, symbol := range table.Symbols() {
		names = append(names, symbol.Name)
	}
	assert.Equal(t, []string{"f", "a", "b", "c"}, names)
}

func TestCancellation(t *testing.T) {
	diags := diagnostic.NewCollector()
	lex := lexer.NewLexer("int f(void) { return 1; }", "test.c", diags)
	pars := parser.NewParser(context.Background(), lex, "test.c", diags)
	tree, err := pars.Parse()
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analyzer := NewAnalyzer(ctx, "test.c", diags)
	_, err = analyzer.Check(tree)
	require.NotNil(t, err)
	assert.Equal(t, errors.CancelledError, err.Kind)
}
