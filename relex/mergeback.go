package relex

import (
	"github.com/ecolang/eco/streamview"
	"github.com/ecolang/eco/tree"
)

// descriptor is the comparable (kind, text) shape of a node, used to
// decide whether a freshly generated token sequence actually differs
// from what the tree already has there.
type descriptor struct {
	kind string
	text string
}

func describeOld(n *tree.Node) descriptor {
	return descriptor{kind: n.Symbol, text: n.Text}
}

// mergeBack replaces the original nodes spanning gen's combined range
// with freshly built ones, but only when the generated sequence
// actually differs from what is already there — an unaffected window
// is left untouched. A generated token whose span covered a magic
// (language-box) terminal is wrapped in a freshly spliced composite
// rather than flattened into plain text, so the box survives as a
// live child: the S4 scenario where a box is inserted inside what was
// a single string token and the string becomes a composite. Grounded
// on merge_back in inclexer.py, including its "new mt"/"finish mt"
// composite-boundary handling; the lockstep diff there (which can
// reuse old node identity across length mismatches) is simplified
// here to a whole-window compare-then-splice, since this core has no
// GUI-facing reason to preserve node identity across an edit the way
// the original does.
func mergeBack(tr *tree.Tree, v *streamview.View, gen []generated) (bool, map[*tree.Node]bool) {
	relexed := map[*tree.Node]bool{}
	if len(gen) == 0 {
		return false, relexed
	}

	windowNodes := v.ConsumedNodes(gen[0].Start, gen[len(gen)-1].End)
	if len(windowNodes) == 0 {
		return false, relexed
	}
	if sameAsWindow(windowNodes, gen) {
		return false, relexed
	}

	before := chainPrev(windowNodes[0])
	after := chainNext(windowNodes[len(windowNodes)-1])

	built := make([]*tree.Node, 0, len(gen))
	for _, g := range gen {
		consumed := v.ConsumedNodes(g.Start, g.End)
		var fresh *tree.Node
		if hasMagic(consumed) {
			fresh = tr.NewComposite(g.Kind)
			fresh.Text = g.Text
			fresh.Children = consumed
			for _, c := range consumed {
				c.Parent = fresh
			}
		} else {
			fresh = tr.NewTerminal(g.Kind, g.Text)
		}
		fresh.MarkChanged()
		relexed[fresh] = true
		built = append(built, fresh)
	}

	cur := before
	for _, fresh := range built {
		fresh.PrevTerm = cur
		if cur != nil {
			cur.NextTerm = fresh
		}
		cur = fresh
	}
	cur.NextTerm = after
	if after != nil {
		after.PrevTerm = cur
	}

	for _, n := range windowNodes {
		n.PrevTerm, n.NextTerm = nil, nil
	}

	return true, relexed
}

// chainPrev and chainNext return the real chain neighbor of n, the
// node mergeBack must splice fresh content next to. ConsumedNodes now
// always answers with a leaf (tree/chain.go's renderText pattern,
// mirrored by streamview.pushLeaves), and a composite's own children
// are never independently linked into the BOS..EOS chain — only the
// composite itself is, via its own PrevTerm/NextTerm. So a leaf with
// no chain link of its own defers to its nearest composite ancestor,
// the unit actually sitting in the chain.
func chainPrev(n *tree.Node) *tree.Node {
	for n != nil && n.PrevTerm == nil && n.Parent != nil {
		n = n.Parent
	}
	if n == nil {
		return nil
	}
	return n.PrevTerm
}

func chainNext(n *tree.Node) *tree.Node {
	for n != nil && n.NextTerm == nil && n.Parent != nil {
		n = n.Parent
	}
	if n == nil {
		return nil
	}
	return n.NextTerm
}

func sameAsWindow(windowNodes []*tree.Node, gen []generated) bool {
	if len(windowNodes) != len(gen) {
		return false
	}
	for i, n := range windowNodes {
		if n.Kind == tree.KindMagic {
			return false
		}
		if describeOld(n) != (descriptor{kind: gen[i].Kind, text: gen[i].Text}) {
			return false
		}
	}
	return true
}

func hasMagic(nodes []*tree.Node) bool {
	for _, n := range nodes {
		if nodeHasMagic(n) {
			return true
		}
	}
	return false
}

// nodeHasMagic reports whether n is a magic node or a composite that
// contains one anywhere in its children, recursively: a composite one
// level (or more) removed from the merge window still carries a live
// box subtree that must survive as a composite child rather than be
// flattened into a plain terminal.
func nodeHasMagic(n *tree.Node) bool {
	if n.Kind == tree.KindMagic {
		return true
	}
	if n.Kind != tree.KindComposite {
		return false
	}
	for _, c := range n.Children {
		if nodeHasMagic(c) {
			return true
		}
	}
	return false
}
