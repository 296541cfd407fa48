package streamview

import (
	"testing"

	"github.com/ecolang/eco/dfa"
	"github.com/ecolang/eco/tree"
)

func TestViewFlattensChainSkippingPseudo(t *testing.T) {
	tr := tree.NewTree()
	a := tr.NewTerminal("ID", "ab")
	nl := &tree.Node{Kind: tree.KindIndentPseudo, Symbol: "NEWLINE"}
	b := tr.NewTerminal("INT", "12")
	tr.InsertAfter(tr.BOS, a)
	tr.InsertAfter(a, nl)
	tr.InsertAfter(nl, b)

	v := New(a)
	v.ensure(4)
	if got, want := v.Text(), "ab12"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func TestViewNodeAtAndSplitIndex(t *testing.T) {
	tr := tree.NewTree()
	a := tr.NewTerminal("ID", "abc")
	b := tr.NewTerminal("INT", "123")
	tr.InsertAfter(tr.BOS, a)
	tr.InsertAfter(a, b)

	v := New(a)
	node, off := v.NodeAt(4)
	if node != b || off != 1 {
		t.Fatalf("NodeAt(4) = (%v, %d), want (b, 1)", node, off)
	}

	_, splitOff, ok := v.SplitIndex(4)
	if !ok || splitOff != 1 {
		t.Fatalf("SplitIndex(4) = (%d, %v), want (1, true)", splitOff, ok)
	}
	if _, _, ok := v.SplitIndex(3); ok {
		t.Fatalf("SplitIndex(3) should land on a node boundary (ok=false)")
	}
}

func TestViewConsumedNodes(t *testing.T) {
	tr := tree.NewTree()
	a := tr.NewTerminal("ID", "ab")
	b := tr.NewTerminal("ID", "cd")
	c := tr.NewTerminal("ID", "ef")
	tr.InsertAfter(tr.BOS, a)
	tr.InsertAfter(a, b)
	tr.InsertAfter(b, c)

	v := New(a)
	nodes := v.ConsumedNodes(1, 5) // spans tail of a, all of b, head of c
	if len(nodes) != 3 || nodes[0] != a || nodes[1] != b || nodes[2] != c {
		t.Fatalf("ConsumedNodes = %v, want [a b c]", nodes)
	}
}

func TestViewSatisfiesDFASource(t *testing.T) {
	tr := tree.NewTree()
	a := tr.NewTerminal("ID", "hello")
	tr.InsertAfter(tr.BOS, a)
	var src dfa.Source = New(a)
	r, size, ok := src.RuneAt(0)
	if !ok || r != 'h' || size != 1 {
		t.Fatalf("RuneAt(0) = (%q, %d, %v)", r, size, ok)
	}
}

func TestViewFlattensCompositeChildrenIncludingMagic(t *testing.T) {
	tr := tree.NewTree()
	pre := tr.NewTerminal("STR_PART", "a")
	magic := tr.NewMagic("calc")
	post := tr.NewTerminal("STR_PART", "b")
	str := tr.NewComposite("STRING")
	str.Children = []*tree.Node{pre, magic, post}
	str.Text = pre.Text + magic.Text + post.Text
	pre.Parent, magic.Parent, post.Parent = str, str, str
	tr.InsertAfter(tr.BOS, str)

	v := New(str)
	v.ensure(len(str.Text))
	if got, want := v.Text(), str.Text; got != want {
		t.Fatalf("Text() = %q, want %q (composite's own cached Text, reassembled from its children)", got, want)
	}

	node, off := v.NodeAt(0)
	if node != pre || off != 0 {
		t.Fatalf("NodeAt(0) = (%v, %d), want (pre, 0)", node, off)
	}
	node, off = v.NodeAt(len(pre.Text))
	if node != magic || off != 0 {
		t.Fatalf("NodeAt(%d) = (%v, %d), want (magic, 0): composite must flatten to its leaf children, never surface itself as a segment", len(pre.Text), node, off)
	}
	node, off = v.NodeAt(len(pre.Text) + len(magic.Text))
	if node != post || off != 0 {
		t.Fatalf("NodeAt after magic = (%v, %d), want (post, 0)", node, off)
	}

	consumed := v.ConsumedNodes(0, len(str.Text))
	if len(consumed) != 3 || consumed[0] != pre || consumed[1] != magic || consumed[2] != post {
		t.Fatalf("ConsumedNodes = %v, want [pre magic post] (leaves, not the wrapping composite)", consumed)
	}
}

func TestSplitResidueAvoidsSplittingCRLF(t *testing.T) {
	before, after := SplitResidue("ab\r\ncd", 3) // offset 3 falls inside "\r\n"
	if before != "ab" || after != "\r\ncd" {
		t.Fatalf("SplitResidue = (%q, %q), want (\"ab\", \"\\r\\ncd\")", before, after)
	}
}

func TestSplitResidueExactBoundary(t *testing.T) {
	before, after := SplitResidue("ab\r\ncd", 2)
	if before != "ab" || after != "\r\ncd" {
		t.Fatalf("SplitResidue = (%q, %q), want (\"ab\", \"\\r\\ncd\")", before, after)
	}
}
