package recognizer

import "testing"

func TestIndentSourceSynthesizesNewlineAndIndent(t *testing.T) {
	// "foo\n  bar" tokenized as WORD <return> <ws> WORD, with no
	// trailing newline. A <return> on a logical line queues NEWLINE
	// immediately, so NEWLINE drains before the next physical token
	// (the following <ws>) is even read; EOS then drains a final
	// NEWLINE plus one DEDENT per open indent level.
	inner := &sliceSource{toks: []Token{
		{Kind: "WORD", Text: "foo"},
		{Kind: "<return>", Text: "\n"},
		{Kind: "<ws>", Text: "  "},
		{Kind: "WORD", Text: "bar"},
	}}
	src := NewIndentSource(inner)

	var got []string
	for {
		tok, ok := src.Next()
		if !ok {
			break
		}
		got = append(got, tok.Kind)
	}

	want := []string{"WORD", "<return>", "NEWLINE", "<ws>", "INDENT", "WORD", "NEWLINE", "DEDENT"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestIndentSourceSameLevelNoIndent(t *testing.T) {
	inner := &sliceSource{toks: []Token{
		{Kind: "WORD", Text: "foo"},
		{Kind: "<return>", Text: "\n"},
		{Kind: "WORD", Text: "bar"},
	}}
	src := NewIndentSource(inner)

	var got []string
	for {
		tok, ok := src.Next()
		if !ok {
			break
		}
		got = append(got, tok.Kind)
	}
	want := []string{"WORD", "<return>", "NEWLINE", "WORD", "NEWLINE"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
