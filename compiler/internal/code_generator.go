package internal

import (
	"fmt"
	"strconv"
)

// CodeGenerator lowers the checked AST to MIPS style stack machine assembly.
// Every expression leaves exactly one word on the expression stack; statements
// leave it balanced. Struct values are not lowered: a dot access target never
// produces a store and a dot access value pushes a zero placeholder word so
// the stack discipline holds.
type CodeGenerator struct {
	emitter   *Emitter
	currentFn string
}

func GenerateCode(program *ProgramAst) string {
	generator := &CodeGenerator{emitter: NewEmitter()}
	for _, decl := range program.Decls {
		switch decl.TP {
		case VarDeclTP:
			generator.genGlobalVar(decl.Decl.(*VarDeclAst))
		case FnDeclTP:
			generator.genFnDecl(decl.Decl.(*FnDeclAst))
		}
	}
	return generator.emitter.String()
}

func (generator *CodeGenerator) genGlobalVar(decl *VarDeclAst) {
	generator.emitter.Generate(".data")
	generator.emitter.Generate(".align", "2")
	generator.emitter.GenerateLabeled("_" + decl.Name.Identifier().Name)
	generator.emitter.Generate(".space", "4")
}

func (generator *CodeGenerator) genFnDecl(decl *FnDeclAst) {
	name := decl.Name.Identifier().Name
	generator.currentFn = name
	generator.emitter.Generate(".text")
	if name == "main" {
		generator.emitter.Generate(".globl", "main")
		generator.emitter.GenerateLabeled("main")
		generator.emitter.GenerateLabeled("__start")
	} else {
		generator.emitter.GenerateLabeled("_" + name)
	}
	generator.emitter.GenPush(RegRA)
	generator.emitter.GenPush(RegFP)
	generator.emitter.Generate("addu", RegFP, RegSP, "8")
	generator.emitter.Generate("subu", RegSP, RegSP, strconv.Itoa(decl.Sym.Fn.LocalFrameBytes))
	generator.genBlock(decl.Body)
	generator.genFnExit()
}

// genFnExit restores the caller frame. The saved return address sits at
// 0($fp), the control link at -4($fp); $sp comes back from the callee's $fp
// (the $sp value at entry), copied to $t0 before $fp is reloaded.
func (generator *CodeGenerator) genFnExit() {
	generator.emitter.Generate("lw", RegRA, "0("+RegFP+")")
	generator.emitter.Generate("move", RegT0, RegFP)
	generator.emitter.Generate("lw", RegFP, "-4("+RegFP+")")
	generator.emitter.Generate("move", RegSP, RegT0)
	if generator.currentFn == "main" {
		generator.emitter.Generate("li", RegV0, "10")
		generator.emitter.Generate("syscall")
	} else {
		generator.emitter.Generate("jr", RegRA)
	}
}

func (generator *CodeGenerator) genBlock(block *BlockAst) {
	for _, stmt := range block.Stmts {
		generator.genStatement(stmt)
	}
}

func (generator *CodeGenerator) genStatement(stmt *StatementAst) {
	switch stmt.TP {
	case AssignStatementTP:
		generator.genExpression(stmt.Statement.(*AssignStatementAst).Assign)
		generator.emitter.GenPop(RegT0)
	case CallStatementTP:
		generator.genExpression(stmt.Statement.(*CallStatementAst).Call)
		generator.emitter.GenPop(RegT0)
	case PreIncStatementTP:
		generator.genIncDec(stmt.Statement.(*PreIncStatementAst).Loc, "add")
	case PreDecStatementTP:
		generator.genIncDec(stmt.Statement.(*PreDecStatementAst).Loc, "sub")
	case ReceiveStatementTP:
		generator.genReceive(stmt.Statement.(*ReceiveStatementAst))
	case PrintStatementTP:
		generator.genPrint(stmt.Statement.(*PrintStatementAst))
	case IfStatementTP:
		generator.genIf(stmt.Statement.(*IfStatementAst))
	case IfElseStatementTP:
		generator.genIfElse(stmt.Statement.(*IfElseStatementAst))
	case WhileStatementTP:
		generator.genWhile(stmt.Statement.(*WhileStatementAst))
	case RepeatStatementTP:
		generator.genRepeat(stmt.Statement.(*RepeatStatementAst))
	case ReturnStatementTP:
		ret := stmt.Statement.(*ReturnStatementAst)
		if ret.Exp != nil {
			generator.genExpression(ret.Exp)
			generator.emitter.GenPop(RegV0)
		}
		generator.genFnExit()
	}
}

func (generator *CodeGenerator) genIncDec(loc *ExpressionAst, op string) {
	if loc.TP == DotAccessExpTP {
		return
	}
	generator.genLocAddress(loc)
	generator.emitter.GenPop(RegT0)
	generator.emitter.Generate("lw", RegT1, "0("+RegT0+")")
	generator.emitter.Generate(op, RegT1, RegT1, "1")
	generator.emitter.Generate("sw", RegT1, "0("+RegT0+")")
}

func (generator *CodeGenerator) genReceive(receive *ReceiveStatementAst) {
	generator.emitter.Generate("li", RegV0, "5")
	generator.emitter.Generate("syscall")
	if receive.Loc.TP == DotAccessExpTP {
		return
	}
	generator.genLocAddress(receive.Loc)
	generator.emitter.GenPop(RegT0)
	generator.emitter.Generate("sw", RegV0, "0("+RegT0+")")
}

func (generator *CodeGenerator) genPrint(print *PrintStatementAst) {
	generator.genExpression(print.Exp)
	generator.emitter.GenPop(RegA0)
	if print.ExpType.IsString() {
		generator.emitter.Generate("li", RegV0, "4")
	} else {
		generator.emitter.Generate("li", RegV0, "1")
	}
	generator.emitter.Generate("syscall")
}

func (generator *CodeGenerator) genIf(ifStmt *IfStatementAst) {
	generator.genExpression(ifStmt.Cond)
	generator.emitter.GenPop(RegT0)
	generator.emitter.Generate("li", RegT1, "0")
	endLabel := generator.emitter.NextLabel()
	generator.emitter.Generate("beq", RegT0, RegT1, endLabel)
	generator.genBlock(ifStmt.Body)
	generator.emitter.GenerateLabeled(endLabel)
}

func (generator *CodeGenerator) genIfElse(ifElse *IfElseStatementAst) {
	generator.genExpression(ifElse.Cond)
	generator.emitter.GenPop(RegT0)
	generator.emitter.Generate("li", RegT1, "0")
	elseLabel := generator.emitter.NextLabel()
	exitLabel := generator.emitter.NextLabel()
	generator.emitter.Generate("beq", RegT0, RegT1, elseLabel)
	generator.genBlock(ifElse.Then)
	generator.emitter.Generate("b", exitLabel)
	generator.emitter.GenerateLabeled(elseLabel)
	generator.genBlock(ifElse.Else)
	generator.emitter.GenerateLabeled(exitLabel)
}

func (generator *CodeGenerator) genWhile(while *WhileStatementAst) {
	topLabel := generator.emitter.NextLabel()
	generator.emitter.GenerateLabeled(topLabel)
	generator.genExpression(while.Cond)
	generator.emitter.GenPop(RegT0)
	generator.emitter.Generate("li", RegT1, "0")
	endLabel := generator.emitter.NextLabel()
	generator.emitter.Generate("beq", RegT0, RegT1, endLabel)
	generator.genBlock(while.Body)
	generator.emitter.Generate("b", topLabel)
	generator.emitter.GenerateLabeled(endLabel)
}

// genRepeat lowers repeat (e) { body } as a counted loop. The remaining count
// lives on the expression stack across iterations; each pass tests count > 0,
// decrements, and the leftover word is discarded at the end.
func (generator *CodeGenerator) genRepeat(repeat *RepeatStatementAst) {
	generator.genExpression(repeat.Count)
	topLabel := generator.emitter.NextLabel()
	endLabel := generator.emitter.NextLabel()
	generator.emitter.GenerateLabeled(topLabel)
	generator.emitter.GenPop(RegT0)
	generator.emitter.Generate("li", RegT1, "0")
	generator.emitter.Generate("sgt", RegT1, RegT0, RegT1)
	generator.emitter.Generate("sub", RegT0, RegT0, "1")
	generator.emitter.GenPush(RegT0)
	generator.emitter.Generate("li", RegT0, "0")
	generator.emitter.Generate("beq", RegT1, RegT0, endLabel)
	generator.genBlock(repeat.Body)
	generator.emitter.Generate("b", topLabel)
	generator.emitter.GenerateLabeled(endLabel)
	generator.emitter.GenPop(RegT0)
}

func (generator *CodeGenerator) genExpression(exp *ExpressionAst) {
	switch exp.TP {
	case IntConstExpTP:
		generator.emitter.Generate("li", RegT0, strconv.Itoa(exp.Exp.(*IntConstExp).Value))
		generator.emitter.GenPush(RegT0)
	case StringConstExpTP:
		label := generator.emitter.InternString(exp.Exp.(*StringConstExp).Value)
		generator.emitter.Generate("la", RegT0, label)
		generator.emitter.GenPush(RegT0)
	case TrueExpTP:
		generator.emitter.Generate("li", RegT0, "1")
		generator.emitter.GenPush(RegT0)
	case FalseExpTP:
		generator.emitter.Generate("li", RegT0, "0")
		generator.emitter.GenPush(RegT0)
	case IdentifierExpTP:
		sym := exp.Identifier().Sym
		if sym.Storage == GlobalStorage {
			generator.emitter.Generate("lw", RegT0, "_"+sym.Name)
		} else {
			generator.emitter.Generate("lw", RegT0, frameOperand(sym.Offset))
		}
		generator.emitter.GenPush(RegT0)
	case DotAccessExpTP:
		generator.emitter.Generate("li", RegT0, "0")
		generator.emitter.GenPush(RegT0)
	case AssignExpTP:
		generator.genAssign(exp.Exp.(*AssignExp))
	case CallExpTP:
		generator.genCall(exp.Exp.(*CallExp))
	case UnaryExpTP:
		generator.genUnary(exp.Exp.(*UnaryExp))
	case BinaryExpTP:
		generator.genBinary(exp.Exp.(*BinaryExp))
	}
}

// genLocAddress pushes the address of an identifier.
func (generator *CodeGenerator) genLocAddress(loc *ExpressionAst) {
	if loc.TP != IdentifierExpTP {
		panic(fmt.Sprintf("address of unexpected node: %d", loc.TP))
	}
	sym := loc.Identifier().Sym
	if sym.Storage == GlobalStorage {
		generator.emitter.Generate("la", RegT0, "_"+sym.Name)
	} else {
		generator.emitter.Generate("la", RegT0, frameOperand(sym.Offset))
	}
	generator.emitter.GenPush(RegT0)
}

func frameOperand(offset int) string {
	return fmt.Sprintf("%d(%s)", offset, RegFP)
}

// genAssign leaves the assigned value on the stack, so an assignment works as
// an expression. A dot access target stores nothing.
func (generator *CodeGenerator) genAssign(assign *AssignExp) {
	generator.genExpression(assign.Rhs)
	if assign.Lhs.TP == DotAccessExpTP {
		return
	}
	generator.genLocAddress(assign.Lhs)
	generator.emitter.GenPop(RegT0)
	generator.emitter.GenPop(RegT1)
	generator.emitter.Generate("sw", RegT1, "0("+RegT0+")")
	generator.emitter.GenPush(RegT1)
}

func (generator *CodeGenerator) genCall(call *CallExp) {
	for _, arg := range call.Args {
		generator.genExpression(arg)
	}
	name := call.Fn.Identifier().Name
	if name == "main" {
		generator.emitter.Generate("jal", "main")
	} else {
		generator.emitter.Generate("jal", "_"+name)
	}
	generator.emitter.Generate("addu", RegSP, RegSP, strconv.Itoa(4*len(call.Args)))
	generator.emitter.GenPush(RegV0)
}

func (generator *CodeGenerator) genUnary(unary *UnaryExp) {
	generator.genExpression(unary.Operand)
	generator.emitter.GenPop(RegT0)
	switch unary.Op {
	case NegOpTP:
		generator.emitter.Generate("li", RegT1, "0")
		generator.emitter.Generate("sub", RegT0, RegT1, RegT0)
	case NotOpTP:
		// 1 - x for x in {0,1}.
		generator.emitter.Generate("li", RegT1, "1")
		generator.emitter.Generate("neg", RegT0, RegT0)
		generator.emitter.Generate("add", RegT0, RegT1, RegT0)
	default:
		panic(fmt.Sprintf("unknown unary operator: %d", unary.Op))
	}
	generator.emitter.GenPush(RegT0)
}

var binaryMnemonics = map[OpTP]string{
	AddOpTP:          "add",
	SubOpTP:          "sub",
	MulOpTP:          "mul",
	DivOpTP:          "div",
	EqualOpTP:        "seq",
	NotEqualOpTP:     "sne",
	LessOpTP:         "slt",
	GreaterOpTP:      "sgt",
	LessEqualOpTP:    "sle",
	GreaterEqualOpTP: "sge",
}

func (generator *CodeGenerator) genBinary(binary *BinaryExp) {
	switch binary.Op {
	case AndOpTP:
		generator.genAnd(binary)
		return
	case OrOpTP:
		generator.genOr(binary)
		return
	}
	// The right operand is evaluated first so the left ends up on top.
	generator.genExpression(binary.Right)
	generator.genExpression(binary.Left)
	generator.emitter.GenPop(RegT0)
	generator.emitter.GenPop(RegT1)
	generator.emitter.Generate(binaryMnemonics[binary.Op], RegT0, RegT0, RegT1)
	generator.emitter.GenPush(RegT0)
}

// genAnd short-circuits: a false left side skips the right operand and pushes
// the zero already in $t0.
func (generator *CodeGenerator) genAnd(binary *BinaryExp) {
	generator.genExpression(binary.Left)
	generator.emitter.GenPop(RegT0)
	generator.emitter.Generate("li", RegT1, "0")
	falseLabel := generator.emitter.NextLabel()
	exitLabel := generator.emitter.NextLabel()
	generator.emitter.Generate("beq", RegT0, RegT1, falseLabel)
	generator.genExpression(binary.Right)
	generator.emitter.GenPop(RegT1)
	generator.emitter.Generate("li", RegT0, "1")
	generator.emitter.Generate("and", RegT0, RegT0, RegT1)
	generator.emitter.GenPush(RegT0)
	generator.emitter.Generate("b", exitLabel)
	generator.emitter.GenerateLabeled(falseLabel)
	generator.emitter.GenPush(RegT0)
	generator.emitter.GenerateLabeled(exitLabel)
}

func (generator *CodeGenerator) genOr(binary *BinaryExp) {
	generator.genExpression(binary.Left)
	generator.emitter.GenPop(RegT0)
	generator.emitter.Generate("li", RegT1, "1")
	trueLabel := generator.emitter.NextLabel()
	exitLabel := generator.emitter.NextLabel()
	generator.emitter.Generate("beq", RegT0, RegT1, trueLabel)
	generator.genExpression(binary.Right)
	generator.emitter.GenPop(RegT1)
	generator.emitter.Generate("li", RegT0, "0")
	generator.emitter.Generate("or", RegT0, RegT0, RegT1)
	generator.emitter.GenPush(RegT0)
	generator.emitter.Generate("b", exitLabel)
	generator.emitter.GenerateLabeled(trueLabel)
	generator.emitter.GenPush(RegT0)
	generator.emitter.GenerateLabeled(exitLabel)
}
