package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllBasicComparison(t *testing.T) {
	tokens, err := All("Age gt 30")
	require.NoError(t, err)
	require.Len(t, tokens, 4)

	assert.Equal(t, Property, tokens[0].Kind)
	assert.Equal(t, "Age", tokens[0].Value)
	assert.Equal(t, Operator, tokens[1].Kind)
	assert.Equal(t, "gt", tokens[1].Value)
	assert.Equal(t, Literal, tokens[2].Kind)
	assert.Equal(t, "30", tokens[2].Value)
	assert.Equal(t, End, tokens[3].Kind)
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	tokens, err := All("Name EQ 'Bob' AND Age GT 1")
	require.NoError(t, err)

	var kinds []Kind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Contains(t, kinds, Logical)
	assert.Equal(t, "and", tokens[3].Value)
}

func TestQuotedStringWithEscapedQuote(t *testing.T) {
	tokens, err := All(`Name eq 'O\'Brien'`)
	require.NoError(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, "O'Brien", tokens[2].Value)
}

func TestStringFunctionKeyword(t *testing.T) {
	tokens, err := All("contains(Name, 'an')")
	require.NoError(t, err)

	assert.Equal(t, StringFn, tokens[0].Kind)
	assert.Equal(t, LParen, tokens[1].Kind)
	assert.Equal(t, Property, tokens[2].Kind)
	assert.Equal(t, Comma, tokens[3].Kind)
	assert.Equal(t, Literal, tokens[4].Kind)
	assert.Equal(t, RParen, tokens[5].Kind)
}

func TestUnterminatedStringIsSyntaxError(t *testing.T) {
	_, err := All("Name eq 'unterminated")
	assert.Error(t, err)
}

func TestUnexpectedCharacterIsSyntaxError(t *testing.T) {
	_, err := All("Name eq @")
	assert.Error(t, err)
}

func TestEmptyInputYieldsSingleEndToken(t *testing.T) {
	tokens, err := All("")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, End, tokens[0].Kind)
}

func TestNestedPropertyPathKeepsDot(t *testing.T) {
	tokens, err := All("Address.City eq 'Oslo'")
	require.NoError(t, err)
	assert.Equal(t, "Address.City", tokens[0].Value)
}
