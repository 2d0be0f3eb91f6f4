package internal

import (
	"fmt"
	"strings"
)

// Unparse renders the AST back to canonical b source, one declaration or
// statement per line, indented with four spaces per nesting level.
func Unparse(program *ProgramAst) string {
	unparser := &unparser{}
	for _, decl := range program.Decls {
		unparser.unparseDecl(decl)
	}
	return unparser.buf.String()
}

type unparser struct {
	buf    strings.Builder
	indent int
}

func (u *unparser) writeLine(format string, args ...interface{}) {
	u.buf.WriteString(strings.Repeat("    ", u.indent))
	fmt.Fprintf(&u.buf, format, args...)
	u.buf.WriteByte('\n')
}

func (u *unparser) unparseDecl(decl *DeclAst) {
	switch decl.TP {
	case VarDeclTP:
		u.unparseVarDecl(decl.Decl.(*VarDeclAst))
	case FnDeclTP:
		u.unparseFnDecl(decl.Decl.(*FnDeclAst))
	case StructDeclTP:
		u.unparseStructDecl(decl.Decl.(*StructDeclAst))
	}
}

func (u *unparser) unparseVarDecl(decl *VarDeclAst) {
	u.writeLine("%s %s;", unparseType(decl.VarType), decl.Name.Identifier().Name)
}

func (u *unparser) unparseStructDecl(decl *StructDeclAst) {
	u.writeLine("struct %s {", decl.Name.Identifier().Name)
	u.indent++
	for _, field := range decl.Fields {
		u.unparseVarDecl(field)
	}
	u.indent--
	u.writeLine("};")
}

func (u *unparser) unparseFnDecl(decl *FnDeclAst) {
	formals := make([]string, len(decl.Formals))
	for i, formal := range decl.Formals {
		formals[i] = unparseType(formal.ParamType) + " " + formal.Name.Identifier().Name
	}
	u.writeLine("%s %s(%s) {", unparseType(decl.RetType), decl.Name.Identifier().Name,
		strings.Join(formals, ", "))
	u.indent++
	u.unparseBlockBody(decl.Body)
	u.indent--
	u.writeLine("}")
}

func (u *unparser) unparseBlockBody(block *BlockAst) {
	for _, decl := range block.Decls {
		u.unparseVarDecl(decl)
	}
	for _, stmt := range block.Stmts {
		u.unparseStatement(stmt)
	}
}

func (u *unparser) unparseNestedBlock(head string, cond *ExpressionAst, block *BlockAst) {
	u.writeLine("%s (%s) {", head, UnparseExpression(cond))
	u.indent++
	u.unparseBlockBody(block)
	u.indent--
	u.writeLine("}")
}

func (u *unparser) unparseStatement(stmt *StatementAst) {
	switch stmt.TP {
	case AssignStatementTP:
		assign := stmt.Statement.(*AssignStatementAst).Assign.Exp.(*AssignExp)
		u.writeLine("%s = %s;", UnparseExpression(assign.Lhs), UnparseExpression(assign.Rhs))
	case PreIncStatementTP:
		u.writeLine("++%s;", UnparseExpression(stmt.Statement.(*PreIncStatementAst).Loc))
	case PreDecStatementTP:
		u.writeLine("--%s;", UnparseExpression(stmt.Statement.(*PreDecStatementAst).Loc))
	case ReceiveStatementTP:
		u.writeLine("receive >> %s;", UnparseExpression(stmt.Statement.(*ReceiveStatementAst).Loc))
	case PrintStatementTP:
		u.writeLine("print << %s;", UnparseExpression(stmt.Statement.(*PrintStatementAst).Exp))
	case IfStatementTP:
		ifStmt := stmt.Statement.(*IfStatementAst)
		u.unparseNestedBlock("if", ifStmt.Cond, ifStmt.Body)
	case IfElseStatementTP:
		ifElse := stmt.Statement.(*IfElseStatementAst)
		u.writeLine("if (%s) {", UnparseExpression(ifElse.Cond))
		u.indent++
		u.unparseBlockBody(ifElse.Then)
		u.indent--
		u.writeLine("} else {")
		u.indent++
		u.unparseBlockBody(ifElse.Else)
		u.indent--
		u.writeLine("}")
	case WhileStatementTP:
		while := stmt.Statement.(*WhileStatementAst)
		u.unparseNestedBlock("while", while.Cond, while.Body)
	case RepeatStatementTP:
		repeat := stmt.Statement.(*RepeatStatementAst)
		u.unparseNestedBlock("repeat", repeat.Count, repeat.Body)
	case CallStatementTP:
		u.writeLine("%s;", UnparseExpression(stmt.Statement.(*CallStatementAst).Call))
	case ReturnStatementTP:
		ret := stmt.Statement.(*ReturnStatementAst)
		if ret.Exp == nil {
			u.writeLine("return;")
		} else {
			u.writeLine("return %s;", UnparseExpression(ret.Exp))
		}
	}
}

func unparseType(typeAst *TypeAst) string {
	switch typeAst.TP {
	case IntTypeTP:
		return "int"
	case BoolTypeTP:
		return "bool"
	case VoidTypeTP:
		return "void"
	case StructTypeTP:
		return "struct " + typeAst.StructName.Identifier().Name
	}
	return "unknown"
}

var opSpellings = map[OpTP]string{
	AddOpTP:          "+",
	SubOpTP:          "-",
	MulOpTP:          "*",
	DivOpTP:          "/",
	AndOpTP:          "&&",
	OrOpTP:           "||",
	EqualOpTP:        "==",
	NotEqualOpTP:     "!=",
	LessOpTP:         "<",
	GreaterOpTP:      ">",
	LessEqualOpTP:    "<=",
	GreaterEqualOpTP: ">=",
	NegOpTP:          "-",
	NotOpTP:          "!",
}

// UnparseExpression renders a single expression, fully parenthesized at every
// binary and assignment node so precedence is explicit.
func UnparseExpression(exp *ExpressionAst) string {
	switch exp.TP {
	case IntConstExpTP:
		return fmt.Sprintf("%d", exp.Exp.(*IntConstExp).Value)
	case StringConstExpTP:
		return exp.Exp.(*StringConstExp).Value
	case TrueExpTP:
		return "tru"
	case FalseExpTP:
		return "fls"
	case IdentifierExpTP:
		return exp.Identifier().Name
	case DotAccessExpTP:
		access := exp.DotAccess()
		return UnparseExpression(access.Loc) + "." + UnparseExpression(access.Field)
	case AssignExpTP:
		assign := exp.Exp.(*AssignExp)
		return "(" + UnparseExpression(assign.Lhs) + " = " + UnparseExpression(assign.Rhs) + ")"
	case CallExpTP:
		call := exp.Exp.(*CallExp)
		args := make([]string, len(call.Args))
		for i, arg := range call.Args {
			args[i] = UnparseExpression(arg)
		}
		return UnparseExpression(call.Fn) + "(" + strings.Join(args, ", ") + ")"
	case UnaryExpTP:
		unary := exp.Exp.(*UnaryExp)
		return "(" + opSpellings[unary.Op] + UnparseExpression(unary.Operand) + ")"
	case BinaryExpTP:
		binary := exp.Exp.(*BinaryExp)
		return "(" + UnparseExpression(binary.Left) + " " + opSpellings[binary.Op] + " " +
			UnparseExpression(binary.Right) + ")"
	}
	return "unknown"
}
