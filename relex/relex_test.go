package relex

import (
	"testing"

	"github.com/ecolang/eco/dfa"
	"github.com/ecolang/eco/tree"
)

func buildLexer(t *testing.T) *dfa.Lexer {
	t.Helper()
	tbl, err := dfa.CompileRules([]dfa.Rule{
		{Kind: "ID", Pattern: "[a-zA-Z]+", Priority: 1},
		{Kind: "NUM", Pattern: "[0-9]+", Priority: 1},
		{Kind: "WS", Pattern: "[ ]+", Priority: 1},
	})
	if err != nil {
		t.Fatalf("CompileRules: %v", err)
	}
	return dfa.NewLexer(tbl)
}

// chain builds BOS -> nodes... -> EOS and returns the tree.
func chain(tr *tree.Tree, nodes ...*tree.Node) {
	prev := tr.BOS
	for _, n := range nodes {
		tr.InsertAfter(prev, n)
		prev = n
	}
}

func TestRelexSplitsStaleNode(t *testing.T) {
	tr := tree.NewTree()
	foo := tr.NewTerminal("ID", "foo")
	ws := tr.NewTerminal("WS", " ")
	stale := tr.NewTerminal("ID", "bar123") // wrong: should be ID "bar" + NUM "123"
	chain(tr, foo, ws, stale)

	lex := buildLexer(t)
	res, err := Relex(OriginNode, tr, stale, lex)
	if err != nil {
		t.Fatalf("Relex: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected Relex to report a change")
	}

	var kinds, texts []string
	for n := tr.BOS.NextTerm; n != nil && n != tr.EOS; n = n.NextTerm {
		kinds = append(kinds, n.Symbol)
		texts = append(texts, n.Text)
	}
	wantKinds := []string{"ID", "WS", "ID", "NUM"}
	wantTexts := []string{"foo", " ", "bar", "123"}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("got kinds %v, want %v", kinds, wantKinds)
	}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] || texts[i] != wantTexts[i] {
			t.Fatalf("token %d = (%q,%q), want (%q,%q)", i, kinds[i], texts[i], wantKinds[i], wantTexts[i])
		}
	}
}

func TestRelexNoopWhenAlreadyCorrect(t *testing.T) {
	tr := tree.NewTree()
	foo := tr.NewTerminal("ID", "foo")
	chain(tr, foo)

	lex := buildLexer(t)
	res, err := Relex(OriginNode, tr, foo, lex)
	if err != nil {
		t.Fatalf("Relex: %v", err)
	}
	if res.Changed {
		t.Fatal("expected no change when the node already lexes to itself")
	}
	if tr.BOS.NextTerm != foo {
		t.Fatal("expected the original node to remain in the chain untouched")
	}
}

func TestRelexSalvagesUnlexableTextAsErrorTokens(t *testing.T) {
	tr := tree.NewTree()
	bad := tr.NewTerminal("ID", "foo$$bar")
	chain(tr, bad)

	lex := buildLexer(t)
	res, err := Relex(OriginNode, tr, bad, lex)
	if err == nil {
		t.Fatal("expected a lexing error for the unrecognized \"$$\" text")
	}
	if res.State != StateErrorReraised {
		t.Fatalf("State = %v, want StateErrorReraised", res.State)
	}

	var kinds []string
	for n := tr.BOS.NextTerm; n != nil && n != tr.EOS; n = n.NextTerm {
		kinds = append(kinds, n.Symbol)
	}
	if len(kinds) == 0 || kinds[0] != "ID" {
		t.Fatalf("expected the leading \"foo\" to still lex as ID, got %v", kinds)
	}
	foundSalvaged := false
	for _, k := range kinds {
		if k == "<E>" {
			foundSalvaged = true
		}
	}
	if !foundSalvaged {
		t.Fatalf("expected at least one salvaged <E> token, got %v", kinds)
	}
}

// TestRelexPreservesMagicChildWhenEditingElsewhereInComposite covers
// the S4 shape directly: an existing composite already has a box
// stitched into it, and an edit to its leading plain-text child (not
// the box) forces a real restructuring merge, not the sameAsWindow
// no-op. The embedded box must come out the other side of mergeBack
// still attached to the chain, wrapped in whatever composite the
// relex produces, rather than orphaned along with the rest of the old
// composite's content.
func TestRelexPreservesMagicChildWhenEditingElsewhereInComposite(t *testing.T) {
	tr := tree.NewTree()
	pre := tr.NewTerminal("ID", "he")
	magic := tr.NewMagic("calc")
	post := tr.NewTerminal("ID", "llo")
	str := tr.NewComposite("ID")
	str.Children = []*tree.Node{pre, magic, post}
	str.Text = pre.Text + magic.Text + post.Text
	pre.Parent, magic.Parent, post.Parent = str, str, str
	chain(tr, str)

	// Edit "he" to "he1", plain text elsewhere in the composite: this
	// does not touch magic at all, but splits the leading run into an
	// ID and a NUM, forcing the merge past the composite's own
	// boundary into magic and post.
	pre.Text = "he1"
	str.Text = pre.Text + magic.Text + post.Text
	str.Lookback = -1
	str.MarkChanged()

	// The magic byte itself never matches any lexer rule, so the
	// salvage path always reraises a lexing error here once scanning
	// reaches it — the same StateErrorReraised shape
	// TestRelexSalvagesUnlexableTextAsErrorTokens exercises.
	lex := buildLexer(t)
	res, err := Relex(OriginNode, tr, str, lex)
	if err == nil {
		t.Fatal("expected a lexing error once scanning reaches the magic marker byte")
	}
	if res.State != StateErrorReraised {
		t.Fatalf("State = %v, want StateErrorReraised", res.State)
	}

	if got := tr.BOS.NextTerm; got == nil || got == str {
		t.Fatalf("expected the stale composite to be replaced, BOS.NextTerm = %v", got)
	}

	foundMagic := false
	for n := tr.BOS.NextTerm; n != nil && n != tr.EOS; n = n.NextTerm {
		if n.Kind == tree.KindMagic {
			foundMagic = true
		}
		for _, c := range n.Children {
			if c.Kind == tree.KindMagic {
				foundMagic = true
			}
		}
	}
	if !foundMagic {
		t.Fatal("expected the embedded language box to survive the edit, found none in the resulting chain")
	}
}

func TestFindOriginWalksBackByLookback(t *testing.T) {
	tr := tree.NewTree()
	a := tr.NewTerminal("ID", "a")
	b := tr.NewTerminal("ID", "b")
	c := tr.NewTerminal("ID", "c")
	chain(tr, a, b, c)

	a.Lookback = 0
	b.Lookback = 2 // claims two preceding terminals must be revisited
	c.Lookback = -1

	got := findOrigin(c)
	if got != a {
		t.Fatalf("findOrigin(c) = %v, want a (walked back 2 terminals from b)", got.Text)
	}
}
