package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkString(t *testing.T, content string) *ErrorSink {
	program, sink := analyzeString(t, content)
	TypeCheck(program, sink)
	return sink
}

// Declarations shared by the table driven checker tests below.
const checkerPrelude = `struct S {
	int a;
};
struct S s1;
struct S s2;
int x;
void v() {
	print << 0;
}
int f(int a, int b) {
	return a;
}
`

func checkBody(t *testing.T, body string) *ErrorSink {
	return checkString(t, checkerPrelude+"int main() {\nbool flag;\n"+body+"\nreturn 0;\n}")
}

func TestTypeChecker_CleanProgram(t *testing.T) {
	sink := checkString(t, `
		int g;
		bool flag;
		int add(int a, int b) {
			return a + b;
		}
		void show(int v) {
			print << v;
			print << "done\n";
			return;
		}
		int main() {
			receive >> g;
			flag = g < 10;
			if (flag && !(g == 0)) {
				show(add(g, 1));
			}
			while (g > 0) {
				--g;
			}
			repeat (g * 2) {
				++g;
			}
			return 0;
		}
	`)
	assert.Empty(t, sink.Errors)
}

func TestTypeChecker_ArithmeticErrorDoesNotCascade(t *testing.T) {
	sink := checkString(t, "int main() {\nint a;\nbool b;\na = a + b;\nreturn 0;\n}")
	require.Len(t, sink.Errors, 1)
	assert.Equal(t, SemanticError{Line: 4, Col: 9, Msg: "Arithmetic operator applied to non-numeric operand"}, sink.Errors[0])
}

func TestTypeChecker_BothOperandsReportedSeparately(t *testing.T) {
	sink := checkString(t, "int main() {\nprint << tru + fls;\nreturn 0;\n}")
	require.Len(t, sink.Errors, 2)
	assert.Equal(t, SemanticError{Line: 2, Col: 10, Msg: "Arithmetic operator applied to non-numeric operand"}, sink.Errors[0])
	assert.Equal(t, SemanticError{Line: 2, Col: 16, Msg: "Arithmetic operator applied to non-numeric operand"}, sink.Errors[1])
}

func TestTypeChecker_Operators(t *testing.T) {
	testData := []struct {
		body     string
		expected []string
	}{
		{body: "flag = 1 && tru;", expected: []string{"Logical operator applied to non-bool operand"}},
		{body: "flag = tru || 0;", expected: []string{"Logical operator applied to non-bool operand"}},
		{body: "flag = tru < 1;", expected: []string{"Relational operator applied to non-numeric operand"}},
		{body: "flag = !1;", expected: []string{"Logical operator applied to non-bool operand"}},
		{body: "x = -tru;", expected: []string{"Arithmetic operator applied to non-numeric operand"}},
		{body: "++flag;", expected: []string{"Arithmetic operator applied to non-numeric operand"}},
		{body: "--flag;", expected: []string{"Arithmetic operator applied to non-numeric operand"}},
		{body: "x = 1 + 2 * 3 / 4 - 5;", expected: nil},
		{body: "flag = !flag && 1 < 2;", expected: nil},
	}
	for _, data := range testData {
		sink := checkBody(t, data.body)
		require.Len(t, sink.Errors, len(data.expected), data.body)
		for i, msg := range data.expected {
			assert.Equal(t, msg, sink.Errors[i].Msg, data.body)
		}
	}
}

func TestTypeChecker_Equality(t *testing.T) {
	testData := []struct {
		body     string
		expected []string
	}{
		{body: "flag = v() == v();", expected: []string{"Equality operator applied to void functions"}},
		{body: "flag = f == f;", expected: []string{"Equality operator applied to functions"}},
		{body: "flag = S == S;", expected: []string{"Equality operator applied to struct names"}},
		{body: "flag = s1 == s2;", expected: []string{"Equality operator applied to struct variables"}},
		{body: "flag = 1 == tru;", expected: []string{"Type mismatch"}},
		{body: "flag = 1 != 2;", expected: nil},
		{body: "flag = s1.a == s2.a;", expected: nil},
	}
	for _, data := range testData {
		sink := checkBody(t, data.body)
		require.Len(t, sink.Errors, len(data.expected), data.body)
		for i, msg := range data.expected {
			assert.Equal(t, msg, sink.Errors[i].Msg, data.body)
		}
	}
}

func TestTypeChecker_Assignment(t *testing.T) {
	testData := []struct {
		body     string
		expected []string
	}{
		{body: "f = f;", expected: []string{"Function assignment"}},
		{body: "S = S;", expected: []string{"Struct name assignment"}},
		{body: "s1 = s2;", expected: []string{"Struct variable assignment"}},
		{body: "x = tru;", expected: []string{"Type mismatch"}},
		{body: "s1.a = fls;", expected: []string{"Type mismatch"}},
		{body: "s1.a = s2.a;", expected: nil},
		{body: "x = s1.a = 3;", expected: nil},
	}
	for _, data := range testData {
		sink := checkBody(t, data.body)
		require.Len(t, sink.Errors, len(data.expected), data.body)
		for i, msg := range data.expected {
			assert.Equal(t, msg, sink.Errors[i].Msg, data.body)
		}
	}
}

func TestTypeChecker_Calls(t *testing.T) {
	testData := []struct {
		body     string
		expected []string
	}{
		{body: "x(1);", expected: []string{"Attempt to call a non-function"}},
		// A wrong arg count suppresses per-arg checking.
		{body: "f(tru);", expected: []string{"Function call with wrong number of args"}},
		{body: "f(1, tru);", expected: []string{"Type of actual does not match type of formal"}},
		{body: "f(tru, fls);", expected: []string{"Type of actual does not match type of formal", "Type of actual does not match type of formal"}},
		{body: "x = f(1, 2);", expected: nil},
		{body: "v();", expected: nil},
	}
	for _, data := range testData {
		sink := checkBody(t, data.body)
		require.Len(t, sink.Errors, len(data.expected), data.body)
		for i, msg := range data.expected {
			assert.Equal(t, msg, sink.Errors[i].Msg, data.body)
		}
	}
}

func TestTypeChecker_ReadAndWrite(t *testing.T) {
	testData := []struct {
		body     string
		expected []string
	}{
		{body: "receive >> f;", expected: []string{"Attempt to read a function"}},
		{body: "receive >> S;", expected: []string{"Attempt to read a struct name"}},
		{body: "receive >> s1;", expected: []string{"Attempt to read a struct variable"}},
		{body: "print << f;", expected: []string{"Attempt to write a function"}},
		{body: "print << S;", expected: []string{"Attempt to write a struct name"}},
		{body: "print << s1;", expected: []string{"Attempt to write a struct variable"}},
		{body: "print << v();", expected: []string{"Attempt to write void"}},
		{body: "receive >> s1.a;", expected: nil},
		{body: "print << s1.a;", expected: nil},
		{body: "print << flag;", expected: nil},
	}
	for _, data := range testData {
		sink := checkBody(t, data.body)
		require.Len(t, sink.Errors, len(data.expected), data.body)
		for i, msg := range data.expected {
			assert.Equal(t, msg, sink.Errors[i].Msg, data.body)
		}
	}
}

func TestTypeChecker_Conditions(t *testing.T) {
	testData := []struct {
		body     string
		expected []string
	}{
		{body: "if (1) {\nx = 0;\n}", expected: []string{"Non-bool expression used as an if condition"}},
		{body: "if (x) {\nx = 0;\n} else {\nx = 1;\n}", expected: []string{"Non-bool expression used as an if condition"}},
		{body: "while (0) {\nx = 0;\n}", expected: []string{"Non-bool expression used as a while condition"}},
		{body: "repeat (tru) {\nx = 0;\n}", expected: []string{"Non-integer expression used as a repeat clause"}},
		{body: "repeat (x + 1) {\nx = 0;\n}", expected: nil},
	}
	for _, data := range testData {
		sink := checkBody(t, data.body)
		require.Len(t, sink.Errors, len(data.expected), data.body)
		for i, msg := range data.expected {
			assert.Equal(t, msg, sink.Errors[i].Msg, data.body)
		}
	}
}

func TestTypeChecker_Returns(t *testing.T) {
	sink := checkString(t, "void f() {\nreturn 1;\n}\nint main() {\nreturn 0;\n}")
	require.Len(t, sink.Errors, 1)
	assert.Equal(t, "Return with a value in a void function", sink.Errors[0].Msg)

	sink = checkString(t, "int main() {\nreturn;\n}")
	require.Len(t, sink.Errors, 1)
	assert.Equal(t, SemanticError{Line: 0, Col: 0, Msg: "Missing return value"}, sink.Errors[0])

	sink = checkString(t, "int main() {\nreturn tru;\n}")
	require.Len(t, sink.Errors, 1)
	assert.Equal(t, "Bad return value", sink.Errors[0].Msg)
}

func TestTypeChecker_UndeclaredStaysQuiet(t *testing.T) {
	// Name analysis reports the unknown identifier once; every typing rule
	// that sees the error type afterwards holds its tongue.
	sink := checkString(t, "int main() {\nint a;\na = missing + 1;\nif (missing) {\na = 0;\n}\nreturn missing;\n}")
	require.Len(t, sink.Errors, 3)
	for _, err := range sink.Errors {
		assert.Equal(t, "Undeclared identifier", err.Msg)
	}
}

func TestTypeChecker_RecordsIoTypes(t *testing.T) {
	program, sink := analyzeString(t, "int main() {\nint a;\nreceive >> a;\nprint << \"hi\";\nprint << a;\nreturn 0;\n}")
	TypeCheck(program, sink)
	require.Empty(t, sink.Errors)
	mainDecl := program.Decls[0].Decl.(*FnDeclAst)
	receive := mainDecl.Body.Stmts[0].Statement.(*ReceiveStatementAst)
	assert.True(t, receive.LocType.IsInt())
	printStr := mainDecl.Body.Stmts[1].Statement.(*PrintStatementAst)
	assert.True(t, printStr.ExpType.IsString())
	printInt := mainDecl.Body.Stmts[2].Statement.(*PrintStatementAst)
	assert.True(t, printInt.ExpType.IsInt())
}
