package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, content string) *ProgramAst {
	tokens, err := Tokenize(bytes.NewReader([]byte(content)))
	require.Nil(t, err, content)
	program, err := Parse(tokens)
	require.Nil(t, err, content)
	return program
}

func TestParser_Declarations(t *testing.T) {
	program := parseString(t, `
		int g;
		struct Point {
			int x;
			int y;
		};
		struct Point p;
		int main() {
			return 0;
		}
	`)
	require.Len(t, program.Decls, 4)
	assert.Equal(t, VarDeclTP, program.Decls[0].TP)
	assert.Equal(t, StructDeclTP, program.Decls[1].TP)
	assert.Equal(t, VarDeclTP, program.Decls[2].TP)
	assert.Equal(t, FnDeclTP, program.Decls[3].TP)

	structDecl := program.Decls[1].Decl.(*StructDeclAst)
	assert.Equal(t, "Point", structDecl.Name.Identifier().Name)
	require.Len(t, structDecl.Fields, 2)

	varDecl := program.Decls[2].Decl.(*VarDeclAst)
	assert.Equal(t, StructTypeTP, varDecl.VarType.TP)
	assert.Equal(t, "Point", varDecl.VarType.StructName.Identifier().Name)
}

func TestParser_FnDecl(t *testing.T) {
	program := parseString(t, `
		int add(int a, int b) {
			int c;
			c = a + b;
			return c;
		}
	`)
	require.Len(t, program.Decls, 1)
	fnDecl := program.Decls[0].Decl.(*FnDeclAst)
	assert.Equal(t, "add", fnDecl.Name.Identifier().Name)
	require.Len(t, fnDecl.Formals, 2)
	assert.Equal(t, "a", fnDecl.Formals[0].Name.Identifier().Name)
	assert.Equal(t, "b", fnDecl.Formals[1].Name.Identifier().Name)
	require.Len(t, fnDecl.Body.Decls, 1)
	require.Len(t, fnDecl.Body.Stmts, 2)
	assert.Equal(t, AssignStatementTP, fnDecl.Body.Stmts[0].TP)
	assert.Equal(t, ReturnStatementTP, fnDecl.Body.Stmts[1].TP)
}

func TestParser_Statements(t *testing.T) {
	program := parseString(t, `
		void main() {
			int i;
			++i;
			--i;
			receive >> i;
			print << i + 1;
			if (i < 10) {
				i = 0;
			}
			if (i == 0) {
				++i;
			} else {
				--i;
			}
			while (tru) {
				int j;
				j = i;
			}
			repeat (3) {
				print << "x";
			}
			main();
			return;
		}
	`)
	fnDecl := program.Decls[0].Decl.(*FnDeclAst)
	expected := []StatementTP{
		PreIncStatementTP, PreDecStatementTP, ReceiveStatementTP, PrintStatementTP,
		IfStatementTP, IfElseStatementTP, WhileStatementTP, RepeatStatementTP,
		CallStatementTP, ReturnStatementTP,
	}
	require.Len(t, fnDecl.Body.Stmts, len(expected))
	for i, tp := range expected {
		assert.Equal(t, tp, fnDecl.Body.Stmts[i].TP)
	}
	while := fnDecl.Body.Stmts[6].Statement.(*WhileStatementAst)
	assert.Len(t, while.Body.Decls, 1)
}

func TestParser_ExpressionPrecedence(t *testing.T) {
	testData := []struct {
		exp      string
		expected string
	}{
		{exp: "1 + 2 * 3", expected: "(1 + (2 * 3))"},
		{exp: "1 * 2 + 3", expected: "((1 * 2) + 3)"},
		{exp: "1 + 2 - 3", expected: "((1 + 2) - 3)"},
		{exp: "a < b == c > d", expected: "((a < b) == (c > d))"},
		{exp: "tru || fls && tru", expected: "(tru || (fls && tru))"},
		{exp: "!tru && fls", expected: "((!tru) && fls)"},
		{exp: "-1 + 2", expected: "((-1) + 2)"},
		{exp: "a = b = 1", expected: "(a = (b = 1))"},
		{exp: "a.b.c + 1", expected: "(a.b.c + 1)"},
		{exp: "f(1, 2 + 3)", expected: "f(1, (2 + 3))"},
	}
	for _, data := range testData {
		program := parseString(t, "void f() { print << "+data.exp+"; }")
		fnDecl := program.Decls[0].Decl.(*FnDeclAst)
		printStmt := fnDecl.Body.Stmts[0].Statement.(*PrintStatementAst)
		assert.Equal(t, data.expected, UnparseExpression(printStmt.Exp), data.exp)
	}
}

func TestParser_AssignTargetMustBeLoc(t *testing.T) {
	tokens, err := Tokenize(bytes.NewReader([]byte("void f() { 1 = 2; }")))
	require.Nil(t, err)
	_, err = Parse(tokens)
	assert.NotNil(t, err)
}

func TestParser_SyntaxErrors(t *testing.T) {
	testData := []string{
		"int x",
		"int f( {}",
		"struct S {};",
		"void f() { if tru {} }",
		"void f() { f(; }",
	}
	for _, content := range testData {
		tokens, err := Tokenize(bytes.NewReader([]byte(content)))
		require.Nil(t, err, content)
		_, err = Parse(tokens)
		assert.NotNil(t, err, content)
	}
}

func TestParser_UnparseRoundTrip(t *testing.T) {
	source := `int g;
struct Point {
    int x;
    int y;
};
int dist(struct Point p) {
    return (p.x + p.y);
}
int main() {
    struct Point q;
    int d;
    d = dist(q);
    print << d;
    return 0;
}
`
	first := Unparse(parseString(t, source))
	second := Unparse(parseString(t, first))
	assert.Equal(t, first, second)
}
