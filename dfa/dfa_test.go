package dfa

import (
	"errors"
	"strings"
	"testing"
)

func lexAll(t *testing.T, l *Lexer, src string) []Token {
	t.Helper()
	var toks []Token
	pos := 0
	for pos < len(src) {
		tok, err := l.Next(StringSource(src), pos)
		if err != nil {
			t.Fatalf("Next(%d) error: %v", pos, err)
		}
		toks = append(toks, tok)
		if tok.End <= pos {
			t.Fatalf("lexer did not advance at pos %d", pos)
		}
		pos = tok.End
	}
	return toks
}

func TestLexerIntAndID(t *testing.T) {
	table, err := CompileRules([]Rule{
		{Kind: "INT", Pattern: "[0-9]+", Priority: 0},
		{Kind: "ID", Pattern: "[a-z]+", Priority: 1},
	})
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	l := NewLexer(table)
	toks := lexAll(t, l, "ab12cd")

	wantKinds := []string{"ID", "INT", "ID"}
	wantTexts := []string{"ab", "12", "cd"}
	wantLookahead := []int{1, 1, 0}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3: %+v", len(toks), toks)
	}
	for i, tok := range toks {
		if tok.Kind != wantKinds[i] {
			t.Errorf("token %d kind = %q, want %q", i, tok.Kind, wantKinds[i])
		}
		if got := "ab12cd"[tok.Start:tok.End]; got != wantTexts[i] {
			t.Errorf("token %d text = %q, want %q", i, got, wantTexts[i])
		}
		if tok.Lookahead != wantLookahead[i] {
			t.Errorf("token %d lookahead = %d, want %d", i, tok.Lookahead, wantLookahead[i])
		}
	}
}

func TestLexerSkipsWhitespace(t *testing.T) {
	table, err := CompileRules([]Rule{
		{Kind: "", Pattern: "[ \t]+", Priority: 0},
		{Kind: "WORD", Pattern: "[a-z]+", Priority: 1},
	})
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	l := NewLexer(table)
	toks := lexAll(t, l, "foo  bar")
	if len(toks) != 2 || toks[0].Kind != "WORD" || toks[1].Kind != "WORD" {
		t.Fatalf("got %+v", toks)
	}
}

func TestLexerPriorityTieBreak(t *testing.T) {
	// Two rules that can both match "if": a keyword and a generic
	// identifier. The keyword rule (priority 0) must win.
	table, err := CompileRules([]Rule{
		{Kind: "KW_IF", Pattern: "if", Priority: 0},
		{Kind: "ID", Pattern: "[a-z]+", Priority: 1},
	})
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	l := NewLexer(table)
	tok, err := l.Next(StringSource("if"), 0)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Kind != "KW_IF" {
		t.Fatalf("kind = %q, want KW_IF", tok.Kind)
	}

	tok, err = l.Next(StringSource("iffy"), 0)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Kind != "ID" || tok.End != 4 {
		t.Fatalf("got %+v, want longest match ID over all of 'iffy'", tok)
	}
}

func TestLexerNoMatchReturnsLexingError(t *testing.T) {
	table, err := CompileRules([]Rule{
		{Kind: "INT", Pattern: "[0-9]+", Priority: 0},
	})
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	l := NewLexer(table)
	_, err = l.Next(StringSource("@@@"), 0)
	if err == nil {
		t.Fatal("expected LexingError, got nil")
	}
	var lexErr *LexingError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *LexingError, got %T: %v", err, err)
	}
	if lexErr.Pos != 0 {
		t.Fatalf("Pos = %d, want 0", lexErr.Pos)
	}
	if !errors.Is(err, ErrLexing) {
		t.Fatalf("expected errors.Is(err, ErrLexing)")
	}
}

func TestCharClassNegationAndShorthand(t *testing.T) {
	table, err := CompileRules([]Rule{
		{Kind: "NUM", Pattern: `\d+`, Priority: 0},
		{Kind: "NONNUM", Pattern: `[^0-9]+`, Priority: 1},
	})
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	l := NewLexer(table)
	toks := lexAll(t, l, "12ab")
	if len(toks) != 2 || toks[0].Kind != "NUM" || toks[1].Kind != "NONNUM" {
		t.Fatalf("got %+v", toks)
	}
}

func TestParseGrammar(t *testing.T) {
	src := `%<indentation=true>
_ = [ \t]+
KW_IF = if
ID = [a-z]+
`
	rules, indentation, err := ParseGrammar(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseGrammar: %v", err)
	}
	if !indentation {
		t.Fatal("expected indentation=true to be parsed")
	}
	if len(rules) != 3 {
		t.Fatalf("got %d rules, want 3: %+v", len(rules), rules)
	}
	if rules[0].Kind != "" || rules[1].Kind != "KW_IF" || rules[1].Priority != 1 {
		t.Fatalf("unexpected rules: %+v", rules)
	}
}
