package internal

import "strconv"

// A recursive descent parser for b. The grammar:
// program:    decl*
// decl:       varDecl | fnDecl | structDecl
// varDecl:    type id ; | struct id id ;
// structDecl: struct id { varDecl+ } ;
// fnDecl:     type id ( formals? ) { varDecl* stmt* }
// stmt:       assignExp ; | ++ loc ; | -- loc ; | receive >> loc ;
//             | print << exp ; | if ( exp ) block (else block)?
//             | while ( exp ) block | repeat ( exp ) block
//             | call ; | return exp? ;
// Assignment is right associative and the lowest binding expression; then
// ||, &&, equality, relational, additive, multiplicative, prefix - and !,
// and dot access binds tightest.

type Parser struct {
	tokens []*Token
	pos    int
}

func Parse(tokens []*Token) (*ProgramAst, error) {
	parser := &Parser{tokens: tokens}
	return parser.parseProgram()
}

func (parser *Parser) hasNext() bool {
	return parser.pos < len(parser.tokens)
}

func (parser *Parser) current() *Token {
	return parser.tokens[parser.pos]
}

func (parser *Parser) match(tp TokenType) bool {
	return parser.hasNext() && parser.current().TP == tp
}

func (parser *Parser) matchAt(offset int, tp TokenType) bool {
	return parser.pos+offset < len(parser.tokens) && parser.tokens[parser.pos+offset].TP == tp
}

func (parser *Parser) expectToken(tp TokenType, what string) (*Token, error) {
	if !parser.hasNext() {
		return nil, makeSyntaxError("unexpected end of input, expect %s", what)
	}
	token := parser.current()
	if token.TP != tp {
		return nil, makeSyntaxError("line %d:%d: expect %s, but got %s", token.Line, token.Col, what, token.Content)
	}
	parser.pos++
	return token, nil
}

func (parser *Parser) parseProgram() (*ProgramAst, error) {
	program := &ProgramAst{}
	for parser.hasNext() {
		decl, err := parser.parseDecl()
		if err != nil {
			return nil, err
		}
		program.Decls = append(program.Decls, decl)
	}
	return program, nil
}

func (parser *Parser) parseDecl() (*DeclAst, error) {
	// struct id { ... is a type declaration, struct id id ; declares a variable.
	if parser.match(StructTP) && parser.matchAt(2, LeftBraceTP) {
		structDecl, err := parser.parseStructDecl()
		if err != nil {
			return nil, err
		}
		return &DeclAst{TP: StructDeclTP, Decl: structDecl}, nil
	}
	declType, err := parser.parseType()
	if err != nil {
		return nil, err
	}
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if parser.match(LeftParenTP) {
		fnDecl, err := parser.parseFnDeclRest(declType, name)
		if err != nil {
			return nil, err
		}
		return &DeclAst{TP: FnDeclTP, Decl: fnDecl}, nil
	}
	_, err = parser.expectToken(SemiColonTP, ";")
	if err != nil {
		return nil, err
	}
	return &DeclAst{TP: VarDeclTP, Decl: &VarDeclAst{VarType: declType, Name: name}}, nil
}

func (parser *Parser) parseType() (*TypeAst, error) {
	if !parser.hasNext() {
		return nil, makeSyntaxError("unexpected end of input, expect a type")
	}
	token := parser.current()
	switch token.TP {
	case IntTP:
		parser.pos++
		return &TypeAst{TP: IntTypeTP}, nil
	case BoolTP:
		parser.pos++
		return &TypeAst{TP: BoolTypeTP}, nil
	case VoidTP:
		parser.pos++
		return &TypeAst{TP: VoidTypeTP}, nil
	case StructTP:
		parser.pos++
		name, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		return &TypeAst{TP: StructTypeTP, StructName: name}, nil
	}
	return nil, makeSyntaxError("line %d:%d: expect a type, but got %s", token.Line, token.Col, token.Content)
}

func (parser *Parser) parseIdentifier() (*ExpressionAst, error) {
	token, err := parser.expectToken(IdentifierTP, "an identifier")
	if err != nil {
		return nil, err
	}
	return &ExpressionAst{
		TP:   IdentifierExpTP,
		Exp:  &IdentifierExp{Name: token.Content},
		Line: token.Line,
		Col:  token.Col,
	}, nil
}

func (parser *Parser) parseStructDecl() (*StructDeclAst, error) {
	_, err := parser.expectToken(StructTP, "struct")
	if err != nil {
		return nil, err
	}
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(LeftBraceTP, "{")
	if err != nil {
		return nil, err
	}
	structDecl := &StructDeclAst{Name: name}
	for !parser.match(RightBraceTP) {
		field, err := parser.parseVarDecl()
		if err != nil {
			return nil, err
		}
		structDecl.Fields = append(structDecl.Fields, field)
	}
	if len(structDecl.Fields) == 0 {
		token := parser.current()
		return nil, makeSyntaxError("line %d:%d: struct %s has no fields", token.Line, token.Col,
			name.Identifier().Name)
	}
	parser.pos++
	_, err = parser.expectToken(SemiColonTP, ";")
	if err != nil {
		return nil, err
	}
	return structDecl, nil
}

func (parser *Parser) parseVarDecl() (*VarDeclAst, error) {
	declType, err := parser.parseType()
	if err != nil {
		return nil, err
	}
	name, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(SemiColonTP, ";")
	if err != nil {
		return nil, err
	}
	return &VarDeclAst{VarType: declType, Name: name}, nil
}

func (parser *Parser) parseFnDeclRest(retType *TypeAst, name *ExpressionAst) (*FnDeclAst, error) {
	_, err := parser.expectToken(LeftParenTP, "(")
	if err != nil {
		return nil, err
	}
	fnDecl := &FnDeclAst{RetType: retType, Name: name}
	for !parser.match(RightParenTP) {
		if len(fnDecl.Formals) > 0 {
			_, err = parser.expectToken(CommaTP, ",")
			if err != nil {
				return nil, err
			}
		}
		paramType, err := parser.parseType()
		if err != nil {
			return nil, err
		}
		paramName, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		fnDecl.Formals = append(fnDecl.Formals, &FormalDeclAst{ParamType: paramType, Name: paramName})
	}
	parser.pos++
	fnDecl.Body, err = parser.parseBlock()
	if err != nil {
		return nil, err
	}
	return fnDecl, nil
}

// parseBlock parses { varDecl* stmt* }.
func (parser *Parser) parseBlock() (*BlockAst, error) {
	_, err := parser.expectToken(LeftBraceTP, "{")
	if err != nil {
		return nil, err
	}
	block := &BlockAst{}
	for parser.startsVarDecl() {
		decl, err := parser.parseVarDecl()
		if err != nil {
			return nil, err
		}
		block.Decls = append(block.Decls, decl)
	}
	for !parser.match(RightBraceTP) {
		stmt, err := parser.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	parser.pos++
	return block, nil
}

func (parser *Parser) startsVarDecl() bool {
	if !parser.hasNext() {
		return false
	}
	switch parser.current().TP {
	case IntTP, BoolTP, VoidTP, StructTP:
		return true
	}
	return false
}

func (parser *Parser) parseStatement() (*StatementAst, error) {
	if !parser.hasNext() {
		return nil, makeSyntaxError("unexpected end of input, expect a statement")
	}
	token := parser.current()
	switch token.TP {
	case PlusPlusTP:
		return parser.parsePreIncDec(PreIncStatementTP)
	case MinusMinusTP:
		return parser.parsePreIncDec(PreDecStatementTP)
	case ReceiveTP:
		return parser.parseReceive()
	case PrintTP:
		return parser.parsePrint()
	case IfTP:
		return parser.parseIf()
	case WhileTP:
		return parser.parseCondBlock(WhileTP, WhileStatementTP)
	case RepeatTP:
		return parser.parseCondBlock(RepeatTP, RepeatStatementTP)
	case ReturnTP:
		return parser.parseReturn()
	case IdentifierTP:
		return parser.parseAssignOrCall()
	}
	return nil, makeSyntaxError("line %d:%d: expect a statement, but got %s", token.Line, token.Col, token.Content)
}

func (parser *Parser) parsePreIncDec(tp StatementTP) (*StatementAst, error) {
	parser.pos++
	loc, err := parser.parseLoc()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(SemiColonTP, ";")
	if err != nil {
		return nil, err
	}
	if tp == PreIncStatementTP {
		return &StatementAst{TP: tp, Statement: &PreIncStatementAst{Loc: loc}}, nil
	}
	return &StatementAst{TP: tp, Statement: &PreDecStatementAst{Loc: loc}}, nil
}

func (parser *Parser) parseReceive() (*StatementAst, error) {
	parser.pos++
	_, err := parser.expectToken(ReadTP, ">>")
	if err != nil {
		return nil, err
	}
	loc, err := parser.parseLoc()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(SemiColonTP, ";")
	if err != nil {
		return nil, err
	}
	return &StatementAst{TP: ReceiveStatementTP, Statement: &ReceiveStatementAst{Loc: loc}}, nil
}

func (parser *Parser) parsePrint() (*StatementAst, error) {
	parser.pos++
	_, err := parser.expectToken(WriteTP, "<<")
	if err != nil {
		return nil, err
	}
	exp, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(SemiColonTP, ";")
	if err != nil {
		return nil, err
	}
	return &StatementAst{TP: PrintStatementTP, Statement: &PrintStatementAst{Exp: exp}}, nil
}

func (parser *Parser) parseIf() (*StatementAst, error) {
	parser.pos++
	cond, err := parser.parseParenExpression()
	if err != nil {
		return nil, err
	}
	body, err := parser.parseBlock()
	if err != nil {
		return nil, err
	}
	if !parser.match(ElseTP) {
		return &StatementAst{TP: IfStatementTP, Statement: &IfStatementAst{Cond: cond, Body: body}}, nil
	}
	parser.pos++
	elseBody, err := parser.parseBlock()
	if err != nil {
		return nil, err
	}
	return &StatementAst{
		TP:        IfElseStatementTP,
		Statement: &IfElseStatementAst{Cond: cond, Then: body, Else: elseBody},
	}, nil
}

func (parser *Parser) parseCondBlock(keyword TokenType, tp StatementTP) (*StatementAst, error) {
	parser.pos++
	cond, err := parser.parseParenExpression()
	if err != nil {
		return nil, err
	}
	body, err := parser.parseBlock()
	if err != nil {
		return nil, err
	}
	if tp == WhileStatementTP {
		return &StatementAst{TP: tp, Statement: &WhileStatementAst{Cond: cond, Body: body}}, nil
	}
	return &StatementAst{TP: tp, Statement: &RepeatStatementAst{Count: cond, Body: body}}, nil
}

func (parser *Parser) parseParenExpression() (*ExpressionAst, error) {
	_, err := parser.expectToken(LeftParenTP, "(")
	if err != nil {
		return nil, err
	}
	exp, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(RightParenTP, ")")
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func (parser *Parser) parseReturn() (*StatementAst, error) {
	parser.pos++
	if parser.match(SemiColonTP) {
		parser.pos++
		return &StatementAst{TP: ReturnStatementTP, Statement: &ReturnStatementAst{}}, nil
	}
	exp, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(SemiColonTP, ";")
	if err != nil {
		return nil, err
	}
	return &StatementAst{TP: ReturnStatementTP, Statement: &ReturnStatementAst{Exp: exp}}, nil
}

func (parser *Parser) parseAssignOrCall() (*StatementAst, error) {
	token := parser.current()
	exp, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	_, err = parser.expectToken(SemiColonTP, ";")
	if err != nil {
		return nil, err
	}
	switch exp.TP {
	case AssignExpTP:
		return &StatementAst{TP: AssignStatementTP, Statement: &AssignStatementAst{Assign: exp}}, nil
	case CallExpTP:
		return &StatementAst{TP: CallStatementTP, Statement: &CallStatementAst{Call: exp}}, nil
	}
	return nil, makeSyntaxError("line %d:%d: expect an assignment or a call statement", token.Line, token.Col)
}

func (parser *Parser) parseLoc() (*ExpressionAst, error) {
	id, err := parser.parseIdentifier()
	if err != nil {
		return nil, err
	}
	return parser.parseDotChain(id)
}

func (parser *Parser) parseDotChain(loc *ExpressionAst) (*ExpressionAst, error) {
	for parser.match(DotTP) {
		parser.pos++
		field, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		loc = &ExpressionAst{
			TP:   DotAccessExpTP,
			Exp:  &DotAccessExp{Loc: loc, Field: field},
			Line: loc.Line,
			Col:  loc.Col,
		}
	}
	return loc, nil
}

func (parser *Parser) parseExpression() (*ExpressionAst, error) {
	return parser.parseAssignExp()
}

func (parser *Parser) parseAssignExp() (*ExpressionAst, error) {
	lhs, err := parser.parseOrExp()
	if err != nil {
		return nil, err
	}
	if !parser.match(AssignTP) {
		return lhs, nil
	}
	if !lhs.IsLoc() {
		token := parser.current()
		return nil, makeSyntaxError("line %d:%d: left side of = is not assignable", token.Line, token.Col)
	}
	parser.pos++
	rhs, err := parser.parseAssignExp()
	if err != nil {
		return nil, err
	}
	return &ExpressionAst{
		TP:   AssignExpTP,
		Exp:  &AssignExp{Lhs: lhs, Rhs: rhs},
		Line: lhs.Line,
		Col:  lhs.Col,
	}, nil
}

func (parser *Parser) parseBinaryLevel(next func() (*ExpressionAst, error), ops map[TokenType]OpTP) (*ExpressionAst, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for parser.hasNext() {
		op, ok := ops[parser.current().TP]
		if !ok {
			break
		}
		parser.pos++
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ExpressionAst{
			TP:   BinaryExpTP,
			Exp:  &BinaryExp{Op: op, Left: left, Right: right},
			Line: left.Line,
			Col:  left.Col,
		}
	}
	return left, nil
}

var (
	orOps             = map[TokenType]OpTP{OrTP: OrOpTP}
	andOps            = map[TokenType]OpTP{AndTP: AndOpTP}
	equalityOps       = map[TokenType]OpTP{EqualTP: EqualOpTP, NotEqualTP: NotEqualOpTP}
	relationalOps     = map[TokenType]OpTP{LessTP: LessOpTP, GreaterTP: GreaterOpTP, LessEqualTP: LessEqualOpTP, GreaterEqualTP: GreaterEqualOpTP}
	additiveOps       = map[TokenType]OpTP{AddTP: AddOpTP, MinusTP: SubOpTP}
	multiplicativeOps = map[TokenType]OpTP{MultiplyTP: MulOpTP, DivideTP: DivOpTP}
)

func (parser *Parser) parseOrExp() (*ExpressionAst, error) {
	return parser.parseBinaryLevel(parser.parseAndExp, orOps)
}

func (parser *Parser) parseAndExp() (*ExpressionAst, error) {
	return parser.parseBinaryLevel(parser.parseEqualityExp, andOps)
}

func (parser *Parser) parseEqualityExp() (*ExpressionAst, error) {
	return parser.parseBinaryLevel(parser.parseRelationalExp, equalityOps)
}

func (parser *Parser) parseRelationalExp() (*ExpressionAst, error) {
	return parser.parseBinaryLevel(parser.parseAdditiveExp, relationalOps)
}

func (parser *Parser) parseAdditiveExp() (*ExpressionAst, error) {
	return parser.parseBinaryLevel(parser.parseMultiplicativeExp, additiveOps)
}

func (parser *Parser) parseMultiplicativeExp() (*ExpressionAst, error) {
	return parser.parseBinaryLevel(parser.parseUnaryExp, multiplicativeOps)
}

func (parser *Parser) parseUnaryExp() (*ExpressionAst, error) {
	if parser.match(MinusTP) || parser.match(NotTP) {
		token := parser.current()
		op := NegOpTP
		if token.TP == NotTP {
			op = NotOpTP
		}
		parser.pos++
		operand, err := parser.parseUnaryExp()
		if err != nil {
			return nil, err
		}
		return &ExpressionAst{
			TP:   UnaryExpTP,
			Exp:  &UnaryExp{Op: op, Operand: operand},
			Line: token.Line,
			Col:  token.Col,
		}, nil
	}
	return parser.parseTerm()
}

func (parser *Parser) parseTerm() (*ExpressionAst, error) {
	if !parser.hasNext() {
		return nil, makeSyntaxError("unexpected end of input, expect an expression")
	}
	token := parser.current()
	switch token.TP {
	case IntConstTP:
		parser.pos++
		value, err := strconv.Atoi(token.Content)
		if err != nil {
			return nil, makeSyntaxError("line %d:%d: integer literal overflow: %s", token.Line, token.Col, token.Content)
		}
		return &ExpressionAst{TP: IntConstExpTP, Exp: &IntConstExp{Value: value}, Line: token.Line, Col: token.Col}, nil
	case StringConstTP:
		parser.pos++
		return &ExpressionAst{TP: StringConstExpTP, Exp: &StringConstExp{Value: token.Content}, Line: token.Line, Col: token.Col}, nil
	case TrueTP:
		parser.pos++
		return &ExpressionAst{TP: TrueExpTP, Line: token.Line, Col: token.Col}, nil
	case FalseTP:
		parser.pos++
		return &ExpressionAst{TP: FalseExpTP, Line: token.Line, Col: token.Col}, nil
	case LeftParenTP:
		return parser.parseParenExpression()
	case IdentifierTP:
		id, err := parser.parseIdentifier()
		if err != nil {
			return nil, err
		}
		if parser.match(LeftParenTP) {
			return parser.parseCallRest(id)
		}
		return parser.parseDotChain(id)
	}
	return nil, makeSyntaxError("line %d:%d: expect an expression, but got %s", token.Line, token.Col, token.Content)
}

func (parser *Parser) parseCallRest(fn *ExpressionAst) (*ExpressionAst, error) {
	parser.pos++
	call := &CallExp{Fn: fn}
	for !parser.match(RightParenTP) {
		if len(call.Args) > 0 {
			_, err := parser.expectToken(CommaTP, ",")
			if err != nil {
				return nil, err
			}
		}
		arg, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	parser.pos++
	return &ExpressionAst{TP: CallExpTP, Exp: call, Line: fn.Line, Col: fn.Col}, nil
}
