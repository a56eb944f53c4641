package tokenizer

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terms(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Term)
	}
	return out
}

func TestDelimit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"simple lowercase", "hello world", []string{"hello", "world"}},
		{"with punctuation", "hello, world!", []string{"hello", "world"}},
		{"leading/trailing spaces", "  hello world  ", []string{"hello", "world"}},
		{"camelCase", "theOffice", []string{"the", "office"}},
		{"acronym then camelCase", "HTTPRequestManager", []string{"http", "request", "manager"}},
		{"string with underscore", "my_variable_name", []string{"my", "variable", "name"}},
		{"mixed with numbers and symbols", "API_v1.0-beta!", []string{"api", "v1", "0", "beta"}},
		{"only symbols", "!@#$%^", []string{}},
		{"repeated words", "to be or not to be", []string{"to", "be", "or", "not", "to", "be"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := terms(Delimit{}.Tokenize(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Delimit.Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDelimit_Positions(t *testing.T) {
	tokens := Delimit{}.Tokenize("to be or not to be")
	require.Len(t, tokens, 6)
	for i, tok := range tokens {
		assert.Equal(t, uint32(i), tok.Position)
	}
}

func TestPrefixNGrams(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  []string
	}{
		{"empty token", "", []string{}},
		{"single character", "a", []string{"a"}},
		{"short token", "cat", []string{"c", "ca", "cat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrefixNGrams(tt.token)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PrefixNGrams(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestDelimitPrefix(t *testing.T) {
	tokens := DelimitPrefix{}.Tokenize("cat dog")
	assert.Equal(t, []string{"c", "ca", "cat", "d", "do", "dog"}, terms(tokens))
	assert.Equal(t, uint32(0), tokens[2].Position)
	assert.Equal(t, uint32(1), tokens[5].Position)
}

func TestNone(t *testing.T) {
	assert.Empty(t, None{}.Tokenize(""))
	assert.Equal(t, []Token{{Term: "Hello World"}}, None{}.Tokenize("Hello World"))
	assert.Equal(t, []Token{{Term: "hello world"}}, None{Normalize: true}.Tokenize("Hello World"))
}

func TestUnicode(t *testing.T) {
	u := NewUnicode()
	tokens := u.Tokenize("Hello, World")
	assert.Equal(t, []string{"hello", "world"}, terms(tokens))
	assert.Equal(t, uint32(0), tokens[0].Position)
	assert.Equal(t, uint32(1), tokens[1].Position)

	assert.Empty(t, u.Tokenize(""))
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		tok, err := New(name, false)
		require.NoError(t, err, name)
		assert.Equal(t, name, tok.Name())
	}

	tok, err := New("", false)
	require.NoError(t, err)
	assert.Equal(t, NameDelimit, tok.Name())

	_, err = New("bigram", false)
	assert.Error(t, err)
}

type countingTokenizer struct {
	calls int
}

func (c *countingTokenizer) Name() string { return "counting" }

func (c *countingTokenizer) Tokenize(text string) []Token {
	c.calls++
	return Delimit{}.Tokenize(text)
}

func TestCached(t *testing.T) {
	inner := &countingTokenizer{}
	cached, err := NewCached(inner, 2)
	require.NoError(t, err)

	first := cached.Tokenize("hello world")
	second := cached.Tokenize("hello world")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "counting", cached.Name())

	cached.Tokenize("a")
	cached.Tokenize("b")
	assert.Equal(t, 2, cached.Len())

	cached.Tokenize("hello world")
	assert.Equal(t, 4, inner.calls, "evicted entry is tokenized again")
}
