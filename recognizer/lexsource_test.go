package recognizer

import (
	"testing"

	"github.com/ecolang/eco/dfa"
	"github.com/ecolang/eco/tree"
)

func buildWordLexer(t *testing.T) *dfa.Lexer {
	t.Helper()
	tbl, err := dfa.CompileRules([]dfa.Rule{
		{Kind: "WORD", Pattern: "[a-zA-Z]+", Priority: 1},
		{Kind: "", Pattern: "[ ]+", Priority: 1},
	})
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	return dfa.NewLexer(tbl)
}

func TestLexSourceYieldsTokensFromChain(t *testing.T) {
	tr := tree.NewTree()
	foo := tr.NewTerminal("WORD", "foo")
	tr.InsertAfter(tr.BOS, foo)
	bar := tr.NewTerminal("WORD", "bar")
	tr.InsertAfter(foo, bar)

	src := NewLexSource(foo, buildWordLexer(t))
	var got []string
	for {
		tok, ok := src.Next()
		if !ok {
			break
		}
		got = append(got, tok.Text)
	}
	if len(got) != 2 || got[0] != "foo" || got[1] != "bar" {
		t.Fatalf("got %v, want [foo bar]", got)
	}
}

func TestLexSourceStopsOnLexError(t *testing.T) {
	tr := tree.NewTree()
	bad := tr.NewTerminal("WORD", "a$b")
	tr.InsertAfter(tr.BOS, bad)

	src := NewLexSource(bad, buildWordLexer(t))
	tok, ok := src.Next()
	if !ok || tok.Text != "a" {
		t.Fatalf("first token = %q, %v, want a, true", tok.Text, ok)
	}
	if _, ok := src.Next(); ok {
		t.Fatal("expected the lex error on '$' to end the source")
	}
}
