package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenizeString(t *testing.T, content string) []*Token {
	tokens, err := Tokenize(bytes.NewReader([]byte(content)))
	require.Nil(t, err, content)
	return tokens
}

func TestTokenizer_Keywords(t *testing.T) {
	testData := []struct {
		content  string
		expected TokenType
	}{
		{content: "int", expected: IntTP},
		{content: "bool", expected: BoolTP},
		{content: "void", expected: VoidTP},
		{content: "tru", expected: TrueTP},
		{content: "fls", expected: FalseTP},
		{content: "struct", expected: StructTP},
		{content: "receive", expected: ReceiveTP},
		{content: "print", expected: PrintTP},
		{content: "if", expected: IfTP},
		{content: "else", expected: ElseTP},
		{content: "while", expected: WhileTP},
		{content: "repeat", expected: RepeatTP},
		{content: "return", expected: ReturnTP},
	}
	for _, data := range testData {
		tokens := tokenizeString(t, data.content)
		require.Len(t, tokens, 1, data.content)
		assert.Equal(t, data.expected, tokens[0].TP, data.content)
		assert.Equal(t, data.content, tokens[0].Content)
	}
}

func TestTokenizer_Symbols(t *testing.T) {
	testData := []struct {
		content  string
		expected []TokenType
	}{
		{content: "{ } ( ) ; , . *", expected: []TokenType{LeftBraceTP, RightBraceTP, LeftParenTP, RightParenTP, SemiColonTP, CommaTP, DotTP, MultiplyTP}},
		{content: "<< >> ++ -- && ||", expected: []TokenType{WriteTP, ReadTP, PlusPlusTP, MinusMinusTP, AndTP, OrTP}},
		{content: "= == != < > <= >=", expected: []TokenType{AssignTP, EqualTP, NotEqualTP, LessTP, GreaterTP, LessEqualTP, GreaterEqualTP}},
		{content: "+ - / !", expected: []TokenType{AddTP, MinusTP, DivideTP, NotTP}},
		{content: "a=b", expected: []TokenType{IdentifierTP, AssignTP, IdentifierTP}},
		{content: "a==b", expected: []TokenType{IdentifierTP, EqualTP, IdentifierTP}},
		{content: "x<<1", expected: []TokenType{IdentifierTP, WriteTP, IntConstTP}},
	}
	for _, data := range testData {
		tokens := tokenizeString(t, data.content)
		require.Len(t, tokens, len(data.expected), data.content)
		for i, tp := range data.expected {
			assert.Equal(t, tp, tokens[i].TP, data.content)
		}
	}
}

func TestTokenizer_Positions(t *testing.T) {
	tokens := tokenizeString(t, "int x;\nx = 10;")
	require.Len(t, tokens, 7)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 1, tokens[0].Col)
	assert.Equal(t, 1, tokens[1].Line)
	assert.Equal(t, 5, tokens[1].Col)
	assert.Equal(t, 2, tokens[3].Line)
	assert.Equal(t, 1, tokens[3].Col)
	assert.Equal(t, 2, tokens[5].Line)
	assert.Equal(t, 5, tokens[5].Col)
	assert.Equal(t, "10", tokens[5].Content)
	assert.Equal(t, IntConstTP, tokens[5].TP)
}

func TestTokenizer_Comments(t *testing.T) {
	testData := []struct {
		content  string
		expected int
	}{
		{content: "// nothing here", expected: 0},
		{content: "# nothing here either", expected: 0},
		{content: "int x; // trailing", expected: 3},
		{content: "int x; # trailing", expected: 3},
		{content: "a / b // not a comment start", expected: 3},
	}
	for _, data := range testData {
		tokens := tokenizeString(t, data.content)
		assert.Len(t, tokens, data.expected, data.content)
	}
}

func TestTokenizer_StringLiterals(t *testing.T) {
	tokens := tokenizeString(t, `print << "hello\n";`)
	require.Len(t, tokens, 4)
	assert.Equal(t, StringConstTP, tokens[2].TP)
	assert.Equal(t, `"hello\n"`, tokens[2].Content)

	_, err := Tokenize(bytes.NewReader([]byte(`"not closed`)))
	assert.NotNil(t, err)

	_, err = Tokenize(bytes.NewReader([]byte(`"bad \x escape"`)))
	assert.NotNil(t, err)
}

func TestTokenizer_IllegalCharacter(t *testing.T) {
	testData := []string{"int x; @", "a & b", "a | b", "x $ y"}
	for _, content := range testData {
		_, err := Tokenize(bytes.NewReader([]byte(content)))
		assert.NotNil(t, err, content)
	}
}

func TestTokenizer_IdentifiersAndNumbers(t *testing.T) {
	tokens := tokenizeString(t, "_under score9 007")
	require.Len(t, tokens, 3)
	assert.Equal(t, IdentifierTP, tokens[0].TP)
	assert.Equal(t, "_under", tokens[0].Content)
	assert.Equal(t, IdentifierTP, tokens[1].TP)
	assert.Equal(t, "score9", tokens[1].Content)
	assert.Equal(t, IntConstTP, tokens[2].TP)
	assert.Equal(t, "007", tokens[2].Content)
}
