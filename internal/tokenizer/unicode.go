package tokenizer

import (
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	bleveunicode "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// Unicode segments text on Unicode word boundaries (UAX #29) and
// lowercases the result, using bleve's analysis pipeline. Unlike Delimit it
// does not drop non-ASCII letters.
type Unicode struct {
	tokenizer analysis.Tokenizer
	filter    analysis.TokenFilter
}

func NewUnicode() *Unicode {
	return &Unicode{
		tokenizer: bleveunicode.NewUnicodeTokenizer(),
		filter:    lowercase.NewLowerCaseFilter(),
	}
}

func (u *Unicode) Name() string { return NameUnicode }

func (u *Unicode) Tokenize(text string) []Token {
	if text == "" {
		return nil
	}
	stream := u.filter.Filter(u.tokenizer.Tokenize([]byte(text)))
	tokens := make([]Token, 0, len(stream))
	for i, tok := range stream {
		pos := i
		if tok.Position > 0 {
			pos = tok.Position - 1
		}
		tokens = append(tokens, Token{Term: string(tok.Term), Position: uint32(pos)})
	}
	return tokens
}
