package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvet-dev/cvet/cvet/ast"
	"github.com/cvet-dev/cvet/cvet/diagnostic"
	"github.com/cvet-dev/cvet/cvet/lexer"
)

func parse(t *testing.T, program string) (ast.TranslationUnit, []diagnostic.Diagnostic) {
	t.Helper()

	diags := diagnostic.NewCollector()
	lex := lexer.NewLexer(program, "test.c", diags)
	parser := NewParser(context.Background(), lex, "test.c", diags)

	tree, err := parser.Parse()
	require.Nil(t, err)
	return tree, diags.DrainSorted()
}

func TestEmptyInput(t *testing.T) {
	tree, diags := parse(t, "")
	assert.Empty(t, diags)
	assert.Empty(t, tree.Declarations)
	assert.Equal(t, "test.c", tree.Filename)
}

func TestVariableDeclarations(t *testing.T) {
	tree, diags := parse(t, "int x = 5, *p; unsigned long n;")
	assert.Empty(t, diags)
	require.Len(t, tree.Declarations, 2)

	first := tree.Declarations[0].(ast.VariableDeclaration)
	require.Len(t, first.Declarators, 2)
	assert.Equal(t, "x", first.Declarators[0].Ident.Ident())
	assert.NotNil(t, first.Declarators[0].Initializer)
	assert.Equal(t, "p", first.Declarators[1].Ident.Ident())
	assert.Equal(t, ast.PointerTypeSpecKind, first.Declarators[1].Type.Kind())

	second := tree.Declarations[1].(ast.VariableDeclaration)
	base := second.Base.(ast.BaseTypeSpec)
	assert.Equal(t, ast.BaseLong, base.Base)
	assert.True(t, base.Unsigned)
}

func TestArrayDeclarator(t *testing.T) {
	tree, diags := parse(t, "int *grid[3];")
	assert.Empty(t, diags)

	// an array of pointers to int
	declarator := tree.Declarations[0].(ast.VariableDeclaration).Declarators[0]
	array := declarator.Type.(ast.ArrayTypeSpec)
	assert.Equal(t, ast.PointerTypeSpecKind, array.Inner.Kind())
	assert.NotNil(t, array.Length)
}

func TestFunctionDefinition(t *testing.T) {
	tree, diags := parse(t, "int add(int a, int b) { return a + b; }")
	assert.Empty(t, diags)
	require.Len(t, tree.Declarations, 1)

	function := tree.Declarations[0].(ast.FunctionDefinition)
	assert.Equal(t, "add", function.Ident.Ident())
	require.Len(t, function.Params, 2)
	assert.Equal(t, "a", function.Params[0].Ident.Ident())
	require.NotNil(t, function.Body)
	require.Len(t, function.Body.Statements, 1)

	ret := function.Body.Statements[0].(ast.ReturnStatement)
	assert.Equal(t, ast.InfixExpressionKind, ret.Value.Kind())
}

func TestPrototypes(t *testing.T) {
	tree, diags := parse(t, "int add(int, int);\nvoid reset(void);")
	assert.Empty(t, diags)
	require.Len(t, tree.Declarations, 2)

	add := tree.Declarations[0].(ast.FunctionDefinition)
	assert.Nil(t, add.Body)
	assert.Len(t, add.Params, 2)
	assert.Equal(t, "", add.Params[0].Ident.Ident())

	reset := tree.Declarations[1].(ast.FunctionDefinition)
	assert.Nil(t, reset.Body)
	assert.Empty(t, reset.Params)
}

func TestTypedefFeedsForward(t *testing.T) {
	tree, diags := parse(t, "typedef unsigned long usize;\nusize n;")
	assert.Empty(t, diags)
	require.Len(t, tree.Declarations, 2)

	typedef := tree.Declarations[0].(ast.TypedefDeclaration)
	assert.Equal(t, "usize", typedef.Ident.Ident())

	// the typedef name now starts a declaration instead of an expression
	variable := tree.Declarations[1].(ast.VariableDeclaration)
	named := variable.Base.(ast.NamedTypeSpec)
	assert.Equal(t, "usize", named.Ident.Ident())
}

func TestRecordDeclaration(t *testing.T) {
	tree, diags := parse(t, "struct point { int x; int y; };\nstruct point p;")
	assert.Empty(t, diags)
	require.Len(t, tree.Declarations, 2)

	record := tree.Declarations[0].(ast.RecordDeclaration)
	assert.True(t, record.Record.HasBody)
	assert.Equal(t, "point", record.Record.Tag.Ident())
	require.Len(t, record.Record.Members, 2)
	assert.Equal(t, "y", record.Record.Members[1].Ident.Ident())

	variable := tree.Declarations[1].(ast.VariableDeclaration)
	reference := variable.Base.(ast.RecordTypeSpec)
	assert.False(t, reference.HasBody)
}

func TestEnumDeclaration(t *testing.T) {
	tree, diags := parse(t, "enum color { RED, GREEN = 5, BLUE };")
	assert.Empty(t, diags)

	enum := tree.Declarations[0].(ast.EnumDeclaration)
	require.Len(t, enum.Enum.Enumerators, 3)
	assert.Nil(t, enum.Enum.Enumerators[0].Value)
	assert.NotNil(t, enum.Enum.Enumerators[1].Value)
}

func TestOperatorPrecedence(t *testing.T) {
	tree, diags := parse(t, "int x = 1 + 2 * 3;")
	assert.Empty(t, diags)

	init := tree.Declarations[0].(ast.VariableDeclaration).Declarators[0].Initializer
	sum := init.(ast.InfixExpression)
	assert.Equal(t, ast.AddInfixOperator, sum.Operator)
	product := sum.Rhs.(ast.InfixExpression)
	assert.Equal(t, ast.MulInfixOperator, product.Operator)
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	tree, diags := parse(t, "void f(int a, int b, int c) { a = b = c; }")
	assert.Empty(t, diags)

	body := tree.Declarations[0].(ast.FunctionDefinition).Body
	expr := body.Statements[0].(ast.ExpressionStatement).Expression
	outer := expr.(ast.AssignExpression)
	assert.Equal(t, ast.AssignExpressionKind, outer.Rhs.Kind())
}

func TestCastExpression(t *testing.T) {
	tree, diags := parse(t, "void f(double d) { int x; x = (int)d + 1; }")
	assert.Empty(t, diags)

	body := tree.Declarations[0].(ast.FunctionDefinition).Body
	expr := body.Statements[1].(ast.ExpressionStatement).Expression
	sum := expr.(ast.AssignExpression).Rhs.(ast.InfixExpression)
	// the cast binds tighter than `+`
	cast := sum.Lhs.(ast.CastExpression)
	assert.Equal(t, ast.BaseTypeSpecKind, cast.Target.Kind())
}

func TestSizeofExpression(t *testing.T) {
	tree, diags := parse(t, "int a = sizeof(int*); int b = sizeof a;")
	assert.Empty(t, diags)

	first := tree.Declarations[0].(ast.VariableDeclaration).Declarators[0].Initializer.(ast.SizeofExpression)
	assert.NotNil(t, first.Target)
	assert.Nil(t, first.Operand)

	second := tree.Declarations[1].(ast.VariableDeclaration).Declarators[0].Initializer.(ast.SizeofExpression)
	assert.Nil(t, second.Target)
	assert.NotNil(t, second.Operand)
}

func TestControlFlowStatements(t *testing.T) {
	tree, diags := parse(t, `
void f(int n) {
	for (int i = 0; i < n; i++) {
		if (i % 2 == 0) continue;
		else break;
	}
	do n--; while (n > 0);
}`)
	assert.Empty(t, diags)

	body := tree.Declarations[0].(ast.FunctionDefinition).Body
	require.Len(t, body.Statements, 2)

	loop := body.Statements[0].(ast.ForStatement)
	assert.Equal(t, ast.DeclarationStatementKind, loop.Init.Kind())
	assert.NotNil(t, loop.Condition)
	assert.NotNil(t, loop.Post)

	assert.Equal(t, ast.DoWhileStatementKind, body.Statements[1].Kind())
}

//
// Recovery
//

func TestLexicalErrorDoesNotCascade(t *testing.T) {
	tree, diags := parse(t, "int x = 5 @ 3;")

	// one lexical diagnostic and no follow-up syntax noise
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.IllegalCharacter, diags[0].Code)
	assert.Equal(t, diagnostic.PhaseLexical, diags[0].Phase)

	require.Len(t, tree.Declarations, 1)
	declarator := tree.Declarations[0].(ast.VariableDeclaration).Declarators[0]
	assert.Equal(t, ast.ErrorExpressionKind, declarator.Initializer.Kind())
}

func TestBrokenStatementKeepsFunction(t *testing.T) {
	tree, diags := parse(t, "int f() { return ; int x = ; }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.ExpectedExpression, diags[0].Code)

	function := tree.Declarations[0].(ast.FunctionDefinition)
	require.NotNil(t, function.Body)
	require.Len(t, function.Body.Statements, 2)

	// `return ;` is a bare return, not an error
	ret := function.Body.Statements[0].(ast.ReturnStatement)
	assert.Nil(t, ret.Value)

	declarator := function.Body.Statements[1].(ast.DeclarationStatement).
		Declaration.(ast.VariableDeclaration).Declarators[0]
	assert.Equal(t, ast.ErrorExpressionKind, declarator.Initializer.Kind())
}

func TestTopLevelGarbageIsSkippedOnce(t *testing.T) {
	tree, diags := parse(t, "&&& int y = 2;")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.ExpectedDeclaration, diags[0].Code)
	assert.NotEmpty(t, diags[0].Recovery)

	require.Len(t, tree.Declarations, 2)
	assert.Equal(t, ast.ErrorDeclarationKind, tree.Declarations[0].Kind())
	assert.Equal(t, ast.VariableDeclarationKind, tree.Declarations[1].Kind())
}

func TestFileScopeBlock(t *testing.T) {
	tree, diags := parse(t, "int a; { int a; }")
	assert.Empty(t, diags)
	require.Len(t, tree.Declarations, 2)

	// the block's contents stay inside the block declaration instead of
	// leaking into the translation unit
	block := tree.Declarations[1].(ast.BlockDeclaration)
	require.Len(t, block.Block.Statements, 1)
	assert.Equal(t, ast.DeclarationStatementKind, block.Block.Statements[0].Kind())
}

func TestGarbageBeforeBlockDoesNotLeakContents(t *testing.T) {
	tree, diags := parse(t, "&&& { int a; }")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.ExpectedDeclaration, diags[0].Code)

	require.Len(t, tree.Declarations, 2)
	assert.Equal(t, ast.ErrorDeclarationKind, tree.Declarations[0].Kind())
	assert.Equal(t, ast.BlockDeclarationKind, tree.Declarations[1].Kind())
}

func TestRootSurvivesPureGarbage(t *testing.T) {
	tree, diags := parse(t, "@@@")
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.IllegalCharacter, diags[0].Code)
	assert.Empty(t, tree.Declarations)
}

func TestMissingSemicolonDoesNotDiscard(t *testing.T) {
	tree, diags := parse(t, "int x = 1\nint y = 2;")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.ExpectedToken, diags[0].Code)

	// both declarations survive
	require.Len(t, tree.Declarations, 2)
	assert.Equal(t, "x", tree.Declarations[0].(ast.VariableDeclaration).Declarators[0].Ident.Ident())
	assert.Equal(t, "y", tree.Declarations[1].(ast.VariableDeclaration).Declarators[0].Ident.Ident())
}

func TestUnclosedBlock(t *testing.T) {
	tree, diags := parse(t, "int f() { int x = 1;")

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.ExpectedToken, diags[0].Code)

	function := tree.Declarations[0].(ast.FunctionDefinition)
	require.NotNil(t, function.Body)
	assert.Len(t, function.Body.Statements, 1)
}

func TestDiagnosticsAreOrdered(t *testing.T) {
	_, diags := parse(t, "int = 1;\nint y = ;")
	require.NotEmpty(t, diags)
	for i := 1; i < len(diags); i++ {
		assert.LessOrEqual(t, diags[i-1].Span.Start.Index, diags[i].Span.Start.Index)
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	diags := diagnostic.NewCollector()
	lex := lexer.NewLexer("int x = 1;", "test.c", diags)
	parser := NewParser(ctx, lex, "test.c", diags)

	_, err := parser.Parse()
	require.NotNil(t, err)
}
