package internal

import (
	"bufio"
	"io"
	"strconv"

	"b_to_mips_compiler/util"
)

// A simple Tokenizer for b.

// b has those elements:
// * KeyWord: int, bool, void, tru, fls, struct, receive, print, if, else,
//   while, repeat, return.
// * Symbol: {, }, (, ), ;, ,, ., <<, >>, ++, --, +, -, *, /, !, &&, ||, =,
//   ==, !=, <, >, <=, >=.
// * Constant: integer, string ("xxx")
// * Identifier: letters, digits, underscore, not starting with a digit.
// * Comment: //, # until end of line.

type TokenType int

const (
	IntTP          TokenType = iota // int
	BoolTP                         // bool
	VoidTP                         // void
	TrueTP                         // tru
	FalseTP                        // fls
	StructTP                       // struct
	ReceiveTP                      // receive
	PrintTP                        // print
	IfTP                           // if
	ElseTP                         // else
	WhileTP                        // while
	RepeatTP                       // repeat
	ReturnTP                       // return
	LeftBraceTP                    // {
	RightBraceTP                   // }
	LeftParenTP                    // (
	RightParenTP                   // )
	SemiColonTP                    // ;
	CommaTP                        // ,
	DotTP                          // .
	WriteTP                        // <<
	ReadTP                         // >>
	PlusPlusTP                     // ++
	MinusMinusTP                   // --
	AddTP                          // +
	MinusTP                        // -
	MultiplyTP                     // *
	DivideTP                       // /
	NotTP                          // !
	AndTP                          // &&
	OrTP                           // ||
	AssignTP                       // =
	EqualTP                        // ==
	NotEqualTP                     // !=
	LessTP                         // <
	GreaterTP                      // >
	LessEqualTP                    // <=
	GreaterEqualTP                 // >=
	IntConstTP                     // 1010
	StringConstTP                  // "xxx"
	IdentifierTP                   // varA
)

// keyWordTokenTPMap is the mapping from keyWord to the corresponding TokenTP.
var keyWordTokenTPMap = map[string]TokenType{
	"int":     IntTP,
	"bool":    BoolTP,
	"void":    VoidTP,
	"tru":     TrueTP,
	"fls":     FalseTP,
	"struct":  StructTP,
	"receive": ReceiveTP,
	"print":   PrintTP,
	"if":      IfTP,
	"else":    ElseTP,
	"while":   WhileTP,
	"repeat":  RepeatTP,
	"return":  ReturnTP,
}

// simpleSymbolTokenTPMap holds the symbols which are a single character and
// never the prefix of a longer symbol.
var simpleSymbolTokenTPMap = map[byte]TokenType{
	'{': LeftBraceTP,
	'}': RightBraceTP,
	'(': LeftParenTP,
	')': RightParenTP,
	';': SemiColonTP,
	',': CommaTP,
	'.': DotTP,
	'*': MultiplyTP,
}

type Token struct {
	Content string
	Line    int
	Col     int
	TP      TokenType
}

type Tokenizer struct {
	currentPos  int
	currentLine int
	line        []byte
	tokens      []*Token
}

// Tokenize reads b source from reader and returns the token stream. Line and
// column numbers are 1 based.
func Tokenize(reader io.Reader) ([]*Token, error) {
	tokenizer := &Tokenizer{}
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		tokenizer.currentLine++
		tokenizer.currentPos = 0
		tokenizer.line = scanner.Bytes()
		err := tokenizer.tokenizeLine()
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tokenizer.tokens, nil
}

func (tokenizer *Tokenizer) tokenizeLine() error {
	for {
		token, err := tokenizer.getNextToken()
		if err != nil {
			return err
		}
		if token == nil {
			return nil
		}
		tokenizer.tokens = append(tokenizer.tokens, token)
	}
}

// getNextToken returns the next token on the current line, nil when the line
// is exhausted or the rest is a comment.
func (tokenizer *Tokenizer) getNextToken() (*Token, error) {
	tokenizer.trimSpace()
	if !tokenizer.hasRemainCharacters() {
		return nil, nil
	}
	ch := tokenizer.line[tokenizer.currentPos]
	switch {
	case ch == '#':
		tokenizer.currentPos = len(tokenizer.line)
		return nil, nil
	case ch == '/':
		return tokenizer.tokenCommentOrDivide()
	case ch == '"':
		return tokenizer.tokenString()
	case util.IsNumber(ch):
		return tokenizer.tokenNumber()
	case util.IsLetterOrUnderscore(ch):
		return tokenizer.tokenKeywordOrIdentifier()
	default:
		return tokenizer.tokenSymbol()
	}
}

func (tokenizer *Tokenizer) trimSpace() {
	for tokenizer.hasRemainCharacters() && util.IsSpace(tokenizer.line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters() bool {
	return tokenizer.currentPos < len(tokenizer.line)
}

func (tokenizer *Tokenizer) makeToken(content string, startPos int, tp TokenType) *Token {
	return &Token{
		Content: content,
		Line:    tokenizer.currentLine,
		Col:     startPos + 1,
		TP:      tp,
	}
}

func (tokenizer *Tokenizer) tokenCommentOrDivide() (*Token, error) {
	startPos := tokenizer.currentPos
	if startPos+1 < len(tokenizer.line) && tokenizer.line[startPos+1] == '/' {
		tokenizer.currentPos = len(tokenizer.line)
		return nil, nil
	}
	tokenizer.currentPos++
	return tokenizer.makeToken("/", startPos, DivideTP), nil
}

func (tokenizer *Tokenizer) tokenString() (*Token, error) {
	startPos := tokenizer.currentPos
	pos := startPos + 1
	for pos < len(tokenizer.line) {
		ch := tokenizer.line[pos]
		if ch == '"' {
			content := string(tokenizer.line[startPos : pos+1])
			tokenizer.currentPos = pos + 1
			return tokenizer.makeToken(content, startPos, StringConstTP), nil
		}
		if ch == '\\' {
			if pos+1 >= len(tokenizer.line) || !isStringEscape(tokenizer.line[pos+1]) {
				return nil, makeSyntaxError("line %d:%d: bad escape in string literal", tokenizer.currentLine, pos+1)
			}
			pos += 2
			continue
		}
		pos++
	}
	return nil, makeSyntaxError("line %d:%d: unterminated string literal", tokenizer.currentLine, startPos+1)
}

func isStringEscape(b byte) bool {
	switch b {
	case 'n', 't', '"', '\\', '\'', '?':
		return true
	}
	return false
}

func (tokenizer *Tokenizer) tokenNumber() (*Token, error) {
	startPos := tokenizer.currentPos
	pos := startPos
	for pos < len(tokenizer.line) && util.IsNumber(tokenizer.line[pos]) {
		pos++
	}
	tokenizer.currentPos = pos
	return tokenizer.makeToken(string(tokenizer.line[startPos:pos]), startPos, IntConstTP), nil
}

func (tokenizer *Tokenizer) tokenKeywordOrIdentifier() (*Token, error) {
	startPos := tokenizer.currentPos
	pos := startPos
	for pos < len(tokenizer.line) && util.IsLetterOrUnderscoreOrNumber(tokenizer.line[pos]) {
		pos++
	}
	tokenizer.currentPos = pos
	content := string(tokenizer.line[startPos:pos])
	if tp, ok := keyWordTokenTPMap[content]; ok {
		return tokenizer.makeToken(content, startPos, tp), nil
	}
	return tokenizer.makeToken(content, startPos, IdentifierTP), nil
}

func (tokenizer *Tokenizer) tokenSymbol() (*Token, error) {
	startPos := tokenizer.currentPos
	ch := tokenizer.line[startPos]
	if tp, ok := simpleSymbolTokenTPMap[ch]; ok {
		tokenizer.currentPos++
		return tokenizer.makeToken(string(ch), startPos, tp), nil
	}
	next := byte(0)
	if startPos+1 < len(tokenizer.line) {
		next = tokenizer.line[startPos+1]
	}
	makeTwo := func(tp TokenType) (*Token, error) {
		tokenizer.currentPos += 2
		return tokenizer.makeToken(string(tokenizer.line[startPos:startPos+2]), startPos, tp), nil
	}
	makeOne := func(tp TokenType) (*Token, error) {
		tokenizer.currentPos++
		return tokenizer.makeToken(string(ch), startPos, tp), nil
	}
	switch ch {
	case '<':
		if next == '<' {
			return makeTwo(WriteTP)
		}
		if next == '=' {
			return makeTwo(LessEqualTP)
		}
		return makeOne(LessTP)
	case '>':
		if next == '>' {
			return makeTwo(ReadTP)
		}
		if next == '=' {
			return makeTwo(GreaterEqualTP)
		}
		return makeOne(GreaterTP)
	case '+':
		if next == '+' {
			return makeTwo(PlusPlusTP)
		}
		return makeOne(AddTP)
	case '-':
		if next == '-' {
			return makeTwo(MinusMinusTP)
		}
		return makeOne(MinusTP)
	case '=':
		if next == '=' {
			return makeTwo(EqualTP)
		}
		return makeOne(AssignTP)
	case '!':
		if next == '=' {
			return makeTwo(NotEqualTP)
		}
		return makeOne(NotTP)
	case '&':
		if next == '&' {
			return makeTwo(AndTP)
		}
	case '|':
		if next == '|' {
			return makeTwo(OrTP)
		}
	}
	return nil, makeSyntaxError("line %d:%d: illegal character: %s", tokenizer.currentLine, startPos+1,
		strconv.Quote(string(ch)))
}
