package internal

import "fmt"

// TypeChecker computes a type for every expression and enforces the typing
// rules. An operand that already failed carries the error type, which equals
// nothing, so one fault produces exactly one diagnostic.
type TypeChecker struct {
	sink *ErrorSink
}

func TypeCheck(program *ProgramAst, sink *ErrorSink) {
	checker := &TypeChecker{sink: sink}
	for _, decl := range program.Decls {
		if decl.TP != FnDeclTP {
			continue
		}
		fnDecl := decl.Decl.(*FnDeclAst)
		checker.checkFnDecl(fnDecl)
	}
}

func (checker *TypeChecker) checkFnDecl(decl *FnDeclAst) {
	retType := *decl.Sym.Type.Ret
	checker.checkBlock(decl.Body, retType)
}

func (checker *TypeChecker) checkBlock(block *BlockAst, retType Type) {
	for _, stmt := range block.Stmts {
		checker.checkStatement(stmt, retType)
	}
}

func (checker *TypeChecker) checkStatement(stmt *StatementAst, retType Type) {
	switch stmt.TP {
	case AssignStatementTP:
		checker.checkExpression(stmt.Statement.(*AssignStatementAst).Assign)
	case PreIncStatementTP:
		checker.checkIncDecOperand(stmt.Statement.(*PreIncStatementAst).Loc)
	case PreDecStatementTP:
		checker.checkIncDecOperand(stmt.Statement.(*PreDecStatementAst).Loc)
	case ReceiveStatementTP:
		receive := stmt.Statement.(*ReceiveStatementAst)
		locType := checker.checkExpression(receive.Loc)
		switch {
		case locType.IsFn():
			checker.sink.Fatal(receive.Loc.Line, receive.Loc.Col, "Attempt to read a function")
		case locType.IsStructDef():
			checker.sink.Fatal(receive.Loc.Line, receive.Loc.Col, "Attempt to read a struct name")
		case locType.IsStruct():
			checker.sink.Fatal(receive.Loc.Line, receive.Loc.Col, "Attempt to read a struct variable")
		}
		receive.LocType = locType
	case PrintStatementTP:
		print := stmt.Statement.(*PrintStatementAst)
		expType := checker.checkExpression(print.Exp)
		switch {
		case expType.IsFn():
			checker.sink.Fatal(print.Exp.Line, print.Exp.Col, "Attempt to write a function")
		case expType.IsStructDef():
			checker.sink.Fatal(print.Exp.Line, print.Exp.Col, "Attempt to write a struct name")
		case expType.IsStruct():
			checker.sink.Fatal(print.Exp.Line, print.Exp.Col, "Attempt to write a struct variable")
		case expType.IsVoid():
			checker.sink.Fatal(print.Exp.Line, print.Exp.Col, "Attempt to write void")
		}
		print.ExpType = expType
	case IfStatementTP:
		ifStmt := stmt.Statement.(*IfStatementAst)
		checker.checkCondition(ifStmt.Cond, "Non-bool expression used as an if condition")
		checker.checkBlock(ifStmt.Body, retType)
	case IfElseStatementTP:
		ifElse := stmt.Statement.(*IfElseStatementAst)
		checker.checkCondition(ifElse.Cond, "Non-bool expression used as an if condition")
		checker.checkBlock(ifElse.Then, retType)
		checker.checkBlock(ifElse.Else, retType)
	case WhileStatementTP:
		while := stmt.Statement.(*WhileStatementAst)
		checker.checkCondition(while.Cond, "Non-bool expression used as a while condition")
		checker.checkBlock(while.Body, retType)
	case RepeatStatementTP:
		repeat := stmt.Statement.(*RepeatStatementAst)
		countType := checker.checkExpression(repeat.Count)
		if !countType.IsError() && !countType.IsInt() {
			checker.sink.Fatal(repeat.Count.Line, repeat.Count.Col, "Non-integer expression used as a repeat clause")
		}
		checker.checkBlock(repeat.Body, retType)
	case CallStatementTP:
		checker.checkExpression(stmt.Statement.(*CallStatementAst).Call)
	case ReturnStatementTP:
		checker.checkReturn(stmt.Statement.(*ReturnStatementAst), retType)
	}
}

func (checker *TypeChecker) checkIncDecOperand(loc *ExpressionAst) {
	locType := checker.checkExpression(loc)
	if !locType.IsError() && !locType.IsInt() {
		checker.sink.Fatal(loc.Line, loc.Col, "Arithmetic operator applied to non-numeric operand")
	}
}

func (checker *TypeChecker) checkCondition(cond *ExpressionAst, msg string) {
	condType := checker.checkExpression(cond)
	if !condType.IsError() && !condType.IsBool() {
		checker.sink.Fatal(cond.Line, cond.Col, msg)
	}
}

func (checker *TypeChecker) checkReturn(ret *ReturnStatementAst, retType Type) {
	if retType.IsVoid() {
		if ret.Exp != nil {
			checker.checkExpression(ret.Exp)
			checker.sink.Fatal(ret.Exp.Line, ret.Exp.Col, "Return with a value in a void function")
		}
		return
	}
	if ret.Exp == nil {
		checker.sink.Fatal(0, 0, "Missing return value")
		return
	}
	expType := checker.checkExpression(ret.Exp)
	if !expType.IsError() && !expType.Equal(retType) {
		checker.sink.Fatal(ret.Exp.Line, ret.Exp.Col, "Bad return value")
	}
}

func (checker *TypeChecker) checkExpression(exp *ExpressionAst) Type {
	switch exp.TP {
	case IntConstExpTP:
		return IntType
	case StringConstExpTP:
		return StringType
	case TrueExpTP, FalseExpTP:
		return BoolType
	case IdentifierExpTP:
		sym := exp.Identifier().Sym
		if sym == nil {
			return ErrorType
		}
		return sym.Type
	case DotAccessExpTP:
		access := exp.DotAccess()
		if access.BadAccess {
			return ErrorType
		}
		fieldSym := access.Field.Identifier().Sym
		if fieldSym == nil {
			return ErrorType
		}
		return fieldSym.Type
	case AssignExpTP:
		return checker.checkAssign(exp)
	case CallExpTP:
		return checker.checkCall(exp)
	case UnaryExpTP:
		return checker.checkUnary(exp)
	case BinaryExpTP:
		return checker.checkBinary(exp)
	}
	panic(fmt.Sprintf("unknown expression: %d", exp.TP))
}

func (checker *TypeChecker) checkAssign(exp *ExpressionAst) Type {
	assign := exp.Exp.(*AssignExp)
	lhsType := checker.checkExpression(assign.Lhs)
	rhsType := checker.checkExpression(assign.Rhs)
	switch {
	case lhsType.IsFn() && rhsType.IsFn():
		checker.sink.Fatal(exp.Line, exp.Col, "Function assignment")
		return ErrorType
	case lhsType.IsStructDef() && rhsType.IsStructDef():
		checker.sink.Fatal(exp.Line, exp.Col, "Struct name assignment")
		return ErrorType
	case lhsType.IsStruct() && rhsType.IsStruct():
		checker.sink.Fatal(exp.Line, exp.Col, "Struct variable assignment")
		return ErrorType
	}
	if lhsType.IsError() || rhsType.IsError() {
		return ErrorType
	}
	if !lhsType.Equal(rhsType) {
		checker.sink.Fatal(exp.Line, exp.Col, "Type mismatch")
		return ErrorType
	}
	return rhsType
}

func (checker *TypeChecker) checkCall(exp *ExpressionAst) Type {
	call := exp.Exp.(*CallExp)
	fnSym := call.Fn.Identifier().Sym
	if fnSym == nil {
		return ErrorType
	}
	if !fnSym.Type.IsFn() {
		checker.sink.Fatal(call.Fn.Line, call.Fn.Col, "Attempt to call a non-function")
		return ErrorType
	}
	retType := *fnSym.Type.Ret
	if len(call.Args) != len(fnSym.Fn.ParamTypes) {
		checker.sink.Fatal(call.Fn.Line, call.Fn.Col, "Function call with wrong number of args")
		return retType
	}
	for i, arg := range call.Args {
		argType := checker.checkExpression(arg)
		if !argType.IsError() && !argType.Equal(fnSym.Fn.ParamTypes[i]) {
			checker.sink.Fatal(arg.Line, arg.Col, "Type of actual does not match type of formal")
		}
	}
	return retType
}

func (checker *TypeChecker) checkUnary(exp *ExpressionAst) Type {
	unary := exp.Exp.(*UnaryExp)
	operandType := checker.checkExpression(unary.Operand)
	switch unary.Op {
	case NegOpTP:
		if operandType.IsError() {
			return ErrorType
		}
		if !operandType.IsInt() {
			checker.sink.Fatal(unary.Operand.Line, unary.Operand.Col, "Arithmetic operator applied to non-numeric operand")
			return ErrorType
		}
		return IntType
	case NotOpTP:
		if operandType.IsError() {
			return ErrorType
		}
		if !operandType.IsBool() {
			checker.sink.Fatal(unary.Operand.Line, unary.Operand.Col, "Logical operator applied to non-bool operand")
			return ErrorType
		}
		return BoolType
	}
	panic(fmt.Sprintf("unknown unary operator: %d", unary.Op))
}

func (checker *TypeChecker) checkBinary(exp *ExpressionAst) Type {
	binary := exp.Exp.(*BinaryExp)
	leftType := checker.checkExpression(binary.Left)
	rightType := checker.checkExpression(binary.Right)
	switch binary.Op {
	case AddOpTP, SubOpTP, MulOpTP, DivOpTP:
		return checker.checkOperandKinds(binary, leftType, rightType, Type.IsInt,
			"Arithmetic operator applied to non-numeric operand", IntType)
	case AndOpTP, OrOpTP:
		return checker.checkOperandKinds(binary, leftType, rightType, Type.IsBool,
			"Logical operator applied to non-bool operand", BoolType)
	case LessOpTP, GreaterOpTP, LessEqualOpTP, GreaterEqualOpTP:
		return checker.checkOperandKinds(binary, leftType, rightType, Type.IsInt,
			"Relational operator applied to non-numeric operand", BoolType)
	case EqualOpTP, NotEqualOpTP:
		return checker.checkEquality(exp, leftType, rightType)
	}
	panic(fmt.Sprintf("unknown binary operator: %d", binary.Op))
}

// checkOperandKinds reports each operand of the wrong kind at its own
// position and yields result only when both operands pass.
func (checker *TypeChecker) checkOperandKinds(binary *BinaryExp, leftType, rightType Type,
	kind func(Type) bool, msg string, result Type) Type {
	ok := true
	if !leftType.IsError() && !kind(leftType) {
		checker.sink.Fatal(binary.Left.Line, binary.Left.Col, msg)
		ok = false
	}
	if !rightType.IsError() && !kind(rightType) {
		checker.sink.Fatal(binary.Right.Line, binary.Right.Col, msg)
		ok = false
	}
	if !ok || leftType.IsError() || rightType.IsError() {
		return ErrorType
	}
	return result
}

func (checker *TypeChecker) checkEquality(exp *ExpressionAst, leftType, rightType Type) Type {
	switch {
	case leftType.IsVoid() && rightType.IsVoid():
		checker.sink.Fatal(exp.Line, exp.Col, "Equality operator applied to void functions")
		return ErrorType
	case leftType.IsFn() && rightType.IsFn():
		checker.sink.Fatal(exp.Line, exp.Col, "Equality operator applied to functions")
		return ErrorType
	case leftType.IsStructDef() && rightType.IsStructDef():
		checker.sink.Fatal(exp.Line, exp.Col, "Equality operator applied to struct names")
		return ErrorType
	case leftType.IsStruct() && rightType.IsStruct():
		checker.sink.Fatal(exp.Line, exp.Col, "Equality operator applied to struct variables")
		return ErrorType
	}
	if leftType.IsError() || rightType.IsError() {
		return ErrorType
	}
	if !leftType.Equal(rightType) {
		checker.sink.Fatal(exp.Line, exp.Col, "Type mismatch")
		return ErrorType
	}
	return BoolType
}
