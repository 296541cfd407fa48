package recognizer

import (
	"github.com/ecolang/eco/dfa"
	"github.com/ecolang/eco/streamview"
	"github.com/ecolang/eco/tree"
)

// LexSource lexes a terminal chain on demand with a dfa.Lexer and
// presents the result as a TokenSource, the Go equivalent of
// get_token_iter(startnode) feeding Recognizer.next_token in
// autolboxdetector.py. A lex error ends the source exactly like
// running out of chain: both collapse to Next returning ok=false, so
// the recognizer sees a single FinishSymbol-shaped EOS either way.
type LexSource struct {
	view *streamview.View
	lex  *dfa.Lexer
	pos  int
}

// NewLexSource starts lexing the chain at start.
func NewLexSource(start *tree.Node, lex *dfa.Lexer) *LexSource {
	return &LexSource{view: streamview.New(start), lex: lex}
}

// Next implements TokenSource.
func (s *LexSource) Next() (Token, bool) {
	if _, _, ok := s.view.RuneAt(s.pos); !ok {
		return Token{}, false
	}
	tok, err := s.lex.Next(s.view, s.pos)
	if err != nil {
		return Token{}, false
	}
	text := s.view.Text()[tok.Start:tok.End]
	node, _ := s.view.NodeAt(tok.End - 1)
	_, offset, hasSplit := s.view.SplitIndex(tok.End)
	split := 0
	if hasSplit {
		split = offset
	}
	s.pos = tok.End
	return Token{Kind: tok.Kind, Text: text, LastRead: node, Split: split}, true
}
