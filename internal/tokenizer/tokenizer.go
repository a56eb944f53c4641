// Package tokenizer extracts index terms from text values.
package tokenizer

import (
	"fmt"
	"regexp"
	"strings"
)

// Names of the available tokenizers, as used in column settings.
const (
	NameDelimit       = "delimit"
	NameDelimitPrefix = "delimit_prefix"
	NameUnicode       = "unicode"
	NameNone          = "none"
)

// Token is a term and its 0-based position in the source text.
type Token struct {
	Term     string
	Position uint32
}

// Tokenizer turns a text value into tokens. Implementations must be safe
// for concurrent use.
type Tokenizer interface {
	Name() string
	Tokenize(text string) []Token
}

// nonAlphanumericRegex matches sequences of non-alphanumeric characters.
var nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// acronymRegex handles cases like "HTTPRequest" -> "HTTP Request"
var acronymRegex = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)

// camelCaseRegex handles cases like "theOffice" -> "the Office"
var camelCaseRegex = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// Delimit splits camel/PascalCase, lowercases, and splits on anything
// that is not an ASCII letter or digit.
type Delimit struct{}

func (Delimit) Name() string { return NameDelimit }

func (Delimit) Tokenize(text string) []Token {
	words := splitWords(text)
	tokens := make([]Token, 0, len(words))
	for i, w := range words {
		tokens = append(tokens, Token{Term: w, Position: uint32(i)})
	}
	return tokens
}

func splitWords(text string) []string {
	processed := acronymRegex.ReplaceAllString(text, "$1 $2")
	processed = camelCaseRegex.ReplaceAllString(processed, "$1 $2")

	split := nonAlphanumericRegex.Split(strings.ToLower(processed), -1)
	words := make([]string, 0, len(split))
	for _, s := range split {
		if s != "" {
			words = append(words, s)
		}
	}
	return words
}

// DelimitPrefix behaves like Delimit and additionally emits every prefix
// of each word at the word's position, enabling prefix lookups.
type DelimitPrefix struct{}

func (DelimitPrefix) Name() string { return NameDelimitPrefix }

func (DelimitPrefix) Tokenize(text string) []Token {
	var tokens []Token
	for i, w := range splitWords(text) {
		for _, prefix := range PrefixNGrams(w) {
			tokens = append(tokens, Token{Term: prefix, Position: uint32(i)})
		}
	}
	return tokens
}

// PrefixNGrams returns the prefixes of token from length 1 up to the whole token.
// For "cat" it produces "c", "ca", "cat".
func PrefixNGrams(token string) []string {
	ngrams := make([]string, 0, len(token))
	for i := 1; i <= len(token); i++ {
		ngrams = append(ngrams, token[:i])
	}
	return ngrams
}

// None keeps the whole text as a single term.
type None struct {
	Normalize bool
}

func (None) Name() string { return NameNone }

func (n None) Tokenize(text string) []Token {
	if text == "" {
		return nil
	}
	if n.Normalize {
		text = strings.ToLower(text)
	}
	return []Token{{Term: text}}
}

// New returns the tokenizer registered under name.
// An empty name selects Delimit.
func New(name string, normalize bool) (Tokenizer, error) {
	switch name {
	case "", NameDelimit:
		return Delimit{}, nil
	case NameDelimitPrefix:
		return DelimitPrefix{}, nil
	case NameUnicode:
		return NewUnicode(), nil
	case NameNone:
		return None{Normalize: normalize}, nil
	}
	return nil, fmt.Errorf("unknown tokenizer '%s'", name)
}

// Names lists the tokenizers accepted by New.
func Names() []string {
	return []string{NameDelimit, NameDelimitPrefix, NameUnicode, NameNone}
}
