package internal

import "fmt"

// NameAnalyzer binds every identifier use to its declaration, enforces the
// scoping rules and assigns frame offsets. Diagnostics go to the sink; the
// walk never stops at the first error, it only suppresses dependent work on
// the failed node and moves on to siblings.
type NameAnalyzer struct {
	table *SymbolTable
	sink  *ErrorSink
	// localOffsetCounter counts the local slots of the function being
	// analyzed, nested scopes included. Reset on every function declaration.
	localOffsetCounter int
	inFunction         bool
}

func AnalyzeProgram(program *ProgramAst, sink *ErrorSink) *SymbolTable {
	analyzer := &NameAnalyzer{table: NewSymbolTable(), sink: sink}
	analyzer.table.PushScope()
	for _, decl := range program.Decls {
		analyzer.analyzeDecl(decl)
	}
	mainSym := analyzer.table.LookupGlobal("main")
	if mainSym == nil || !mainSym.IsFn() {
		sink.Fatal(0, 0, "No main function")
	}
	return analyzer.table
}

func (analyzer *NameAnalyzer) analyzeDecl(decl *DeclAst) {
	switch decl.TP {
	case VarDeclTP:
		analyzer.analyzeVarDecl(decl.Decl.(*VarDeclAst), analyzer.table)
	case FnDeclTP:
		analyzer.analyzeFnDecl(decl.Decl.(*FnDeclAst))
	case StructDeclTP:
		analyzer.analyzeStructDecl(decl.Decl.(*StructDeclAst))
	}
}

// resolveDeclType turns a declared type into a Type value, reporting an
// invalid struct type name. The second result is false when the type is
// unusable for a declaration.
func (analyzer *NameAnalyzer) resolveDeclType(typeAst *TypeAst) (Type, bool) {
	switch typeAst.TP {
	case IntTypeTP:
		return IntType, true
	case BoolTypeTP:
		return BoolType, true
	case VoidTypeTP:
		return VoidType, true
	case StructTypeTP:
		name := typeAst.StructName.Identifier()
		def := analyzer.table.LookupGlobal(name.Name)
		if def == nil || !def.IsStructDef() {
			analyzer.sink.Fatal(typeAst.StructName.Line, typeAst.StructName.Col, "Invalid name of struct type")
			return ErrorType, false
		}
		name.Sym = def
		return MakeStructType(def), true
	}
	panic(fmt.Sprintf("unknown declared type: %d", typeAst.TP))
}

// analyzeVarDecl handles variable declarations at global scope, in function
// bodies and in struct field lists; target is the table the name is inserted
// into (the field table for struct fields, the main table otherwise).
func (analyzer *NameAnalyzer) analyzeVarDecl(decl *VarDeclAst, target *SymbolTable) bool {
	name := decl.Name.Identifier()
	bad := false
	if decl.VarType.TP == VoidTypeTP {
		analyzer.sink.Fatal(decl.Name.Line, decl.Name.Col, "Non-function declared void")
		bad = true
	}
	declType := ErrorType
	if !bad {
		var ok bool
		declType, ok = analyzer.resolveDeclType(decl.VarType)
		bad = !ok
	}
	if target.LookupLocal(name.Name) != nil {
		analyzer.sink.Fatal(decl.Name.Line, decl.Name.Col, "Multiply declared identifier")
		bad = true
	}
	if bad {
		return false
	}
	desc := &SymbolDesc{Name: name.Name, Type: declType, Storage: GlobalStorage}
	if declType.IsStruct() {
		desc.StructVarDef = declType.Def
	}
	if analyzer.inFunction {
		desc.Storage = LocalStorage
		desc.Offset = -(8 + 4*analyzer.localOffsetCounter)
		analyzer.localOffsetCounter++
	}
	if err := target.InsertLocal(name.Name, desc); err != nil {
		panic(fmt.Sprintf("insert %s: %v", name.Name, err))
	}
	name.Sym = desc
	return true
}

func (analyzer *NameAnalyzer) analyzeFnDecl(decl *FnDeclAst) {
	name := decl.Name.Identifier()
	retType, _ := analyzer.resolveDeclType(decl.RetType)
	fnDesc := &SymbolDesc{Name: name.Name, Storage: GlobalStorage, Fn: &FnSymbolDesc{}}
	if analyzer.table.LookupLocal(name.Name) != nil {
		// Still analyze the body so its diagnostics are not lost.
		analyzer.sink.Fatal(decl.Name.Line, decl.Name.Col, "Multiply declared identifier")
	} else {
		if err := analyzer.table.InsertLocal(name.Name, fnDesc); err != nil {
			panic(fmt.Sprintf("insert %s: %v", name.Name, err))
		}
		name.Sym = fnDesc
	}
	decl.Sym = fnDesc
	analyzer.localOffsetCounter = 0
	analyzer.inFunction = true
	analyzer.table.PushScope()
	fnDesc.Fn.ParamTypes = analyzer.analyzeFormals(decl.Formals)
	fnDesc.Type = MakeFnType(fnDesc.Fn.ParamTypes, retType)
	analyzer.analyzeBlock(decl.Body, false)
	fnDesc.Fn.LocalFrameBytes = 4 * analyzer.localOffsetCounter
	if _, err := analyzer.table.PopScope(); err != nil {
		panic(err)
	}
	analyzer.inFunction = false
}

// analyzeFormals declares the formals in the freshly pushed function scope.
// The first formal gets the highest offset: with N formals, formal i sits at
// 4*(N-i) above the frame pointer.
func (analyzer *NameAnalyzer) analyzeFormals(formals []*FormalDeclAst) []Type {
	paramTypes := make([]Type, 0, len(formals))
	count := len(formals)
	for i, formal := range formals {
		name := formal.Name.Identifier()
		bad := false
		if formal.ParamType.TP == VoidTypeTP {
			analyzer.sink.Fatal(formal.Name.Line, formal.Name.Col, "Non-function declared void")
			bad = true
		}
		paramType := ErrorType
		if !bad {
			var ok bool
			paramType, ok = analyzer.resolveDeclType(formal.ParamType)
			bad = !ok
		}
		if analyzer.table.LookupLocal(name.Name) != nil {
			analyzer.sink.Fatal(formal.Name.Line, formal.Name.Col, "Multiply declared identifier")
			bad = true
		}
		if bad {
			continue
		}
		desc := &SymbolDesc{
			Name:    name.Name,
			Type:    paramType,
			Storage: ParamStorage,
			Offset:  4 * (count - i),
		}
		if paramType.IsStruct() {
			desc.StructVarDef = paramType.Def
		}
		if err := analyzer.table.InsertLocal(name.Name, desc); err != nil {
			panic(fmt.Sprintf("insert %s: %v", name.Name, err))
		}
		name.Sym = desc
		paramTypes = append(paramTypes, paramType)
	}
	return paramTypes
}

func (analyzer *NameAnalyzer) analyzeStructDecl(decl *StructDeclAst) {
	name := decl.Name.Identifier()
	bad := false
	if analyzer.table.LookupLocal(name.Name) != nil {
		analyzer.sink.Fatal(decl.Name.Line, decl.Name.Col, "Multiply declared identifier")
		bad = true
	}
	fields := NewSymbolTable()
	fields.PushScope()
	defDesc := &SymbolDesc{Name: name.Name, Storage: GlobalStorage, StructDef: &StructDefDesc{Fields: fields}}
	defDesc.Type = MakeStructDefType(defDesc)
	// Field types are resolved against the outer table, so a struct may embed
	// previously declared structs but not itself.
	wasInFunction := analyzer.inFunction
	analyzer.inFunction = false
	fieldIndex := 0
	for _, field := range decl.Fields {
		if analyzer.analyzeVarDecl(field, fields) {
			field.Name.Identifier().Sym.Offset = 4 * fieldIndex
			fieldIndex++
		} else {
			bad = true
		}
	}
	analyzer.inFunction = wasInFunction
	if bad {
		return
	}
	if err := analyzer.table.InsertLocal(name.Name, defDesc); err != nil {
		panic(fmt.Sprintf("insert %s: %v", name.Name, err))
	}
	name.Sym = defDesc
}

// analyzeBlock analyzes a declaration list plus statement list. ownScope is
// set for the nested blocks of if, while and repeat, which open a scope of
// their own; a function body shares the scope its formals were declared in.
func (analyzer *NameAnalyzer) analyzeBlock(block *BlockAst, ownScope bool) {
	if ownScope {
		analyzer.table.PushScope()
	}
	for _, decl := range block.Decls {
		analyzer.analyzeVarDecl(decl, analyzer.table)
	}
	for _, stmt := range block.Stmts {
		analyzer.analyzeStatement(stmt)
	}
	if ownScope {
		if _, err := analyzer.table.PopScope(); err != nil {
			panic(err)
		}
	}
}

func (analyzer *NameAnalyzer) analyzeStatement(stmt *StatementAst) {
	switch stmt.TP {
	case AssignStatementTP:
		analyzer.analyzeExpression(stmt.Statement.(*AssignStatementAst).Assign)
	case PreIncStatementTP:
		analyzer.analyzeExpression(stmt.Statement.(*PreIncStatementAst).Loc)
	case PreDecStatementTP:
		analyzer.analyzeExpression(stmt.Statement.(*PreDecStatementAst).Loc)
	case ReceiveStatementTP:
		analyzer.analyzeExpression(stmt.Statement.(*ReceiveStatementAst).Loc)
	case PrintStatementTP:
		analyzer.analyzeExpression(stmt.Statement.(*PrintStatementAst).Exp)
	case IfStatementTP:
		ifStmt := stmt.Statement.(*IfStatementAst)
		analyzer.analyzeExpression(ifStmt.Cond)
		analyzer.analyzeBlock(ifStmt.Body, true)
	case IfElseStatementTP:
		ifElse := stmt.Statement.(*IfElseStatementAst)
		analyzer.analyzeExpression(ifElse.Cond)
		analyzer.analyzeBlock(ifElse.Then, true)
		analyzer.analyzeBlock(ifElse.Else, true)
	case WhileStatementTP:
		while := stmt.Statement.(*WhileStatementAst)
		analyzer.analyzeExpression(while.Cond)
		analyzer.analyzeBlock(while.Body, true)
	case RepeatStatementTP:
		repeat := stmt.Statement.(*RepeatStatementAst)
		analyzer.analyzeExpression(repeat.Count)
		analyzer.analyzeBlock(repeat.Body, true)
	case CallStatementTP:
		analyzer.analyzeExpression(stmt.Statement.(*CallStatementAst).Call)
	case ReturnStatementTP:
		ret := stmt.Statement.(*ReturnStatementAst)
		if ret.Exp != nil {
			analyzer.analyzeExpression(ret.Exp)
		}
	}
}

func (analyzer *NameAnalyzer) analyzeExpression(exp *ExpressionAst) {
	switch exp.TP {
	case IntConstExpTP, StringConstExpTP, TrueExpTP, FalseExpTP:
	case IdentifierExpTP:
		id := exp.Identifier()
		sym := analyzer.table.LookupGlobal(id.Name)
		if sym == nil {
			analyzer.sink.Fatal(exp.Line, exp.Col, "Undeclared identifier")
			return
		}
		id.Sym = sym
	case DotAccessExpTP:
		analyzer.analyzeDotAccess(exp)
	case AssignExpTP:
		assign := exp.Exp.(*AssignExp)
		analyzer.analyzeExpression(assign.Lhs)
		analyzer.analyzeExpression(assign.Rhs)
	case CallExpTP:
		call := exp.Exp.(*CallExp)
		analyzer.analyzeExpression(call.Fn)
		for _, arg := range call.Args {
			analyzer.analyzeExpression(arg)
		}
	case UnaryExpTP:
		analyzer.analyzeExpression(exp.Exp.(*UnaryExp).Operand)
	case BinaryExpTP:
		binary := exp.Exp.(*BinaryExp)
		analyzer.analyzeExpression(binary.Left)
		analyzer.analyzeExpression(binary.Right)
	}
}

// analyzeDotAccess resolves loc.field. The left side must name a struct
// variable whose definition supplies the field table; once any part of the
// chain fails, BadAccess keeps the rest of the chain quiet.
func (analyzer *NameAnalyzer) analyzeDotAccess(exp *ExpressionAst) {
	access := exp.DotAccess()
	analyzer.analyzeExpression(access.Loc)
	var fields *SymbolTable
	switch access.Loc.TP {
	case IdentifierExpTP:
		sym := access.Loc.Identifier().Sym
		if sym == nil {
			access.BadAccess = true
			return
		}
		if !sym.IsStructVar() {
			analyzer.sink.Fatal(access.Loc.Line, access.Loc.Col, "Dot-access of non-struct type")
			access.BadAccess = true
			return
		}
		fields = sym.StructVarDef.StructDef.Fields
	case DotAccessExpTP:
		inner := access.Loc.DotAccess()
		if inner.BadAccess {
			access.BadAccess = true
			return
		}
		if inner.FieldDef == nil {
			analyzer.sink.Fatal(access.Loc.Line, access.Loc.Col, "Dot-access of non-struct type")
			access.BadAccess = true
			return
		}
		fields = inner.FieldDef.StructDef.Fields
	default:
		panic(fmt.Sprintf("dot access on unexpected node: %d", access.Loc.TP))
	}
	field := access.Field.Identifier()
	fieldSym := fields.LookupGlobal(field.Name)
	if fieldSym == nil {
		analyzer.sink.Fatal(access.Field.Line, access.Field.Col, "Invalid struct field name")
		access.BadAccess = true
		return
	}
	field.Sym = fieldSym
	if fieldSym.IsStructVar() {
		exp.DotAccess().FieldDef = fieldSym.StructVarDef
	}
}
