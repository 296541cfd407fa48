package lbox

import (
	"github.com/google/uuid"

	"github.com/ecolang/eco/tree"
)

func attrParent(n *tree.Node, version uuid.UUID, t *tree.Tree) *tree.Node {
	v, _ := n.Attr("parent", version, t).(*tree.Node)
	return v
}

func attrLeft(n *tree.Node, version uuid.UUID, t *tree.Tree) *tree.Node {
	v, _ := n.Attr("left", version, t).(*tree.Node)
	return v
}

func attrChildren(n *tree.Node, version uuid.UUID, t *tree.Tree) []*tree.Node {
	v, _ := n.Attr("children", version, t).([]*tree.Node)
	return v
}

// findTerminalVersioned is findTerminal's version-aware counterpart,
// used by historyHeuristic to walk the tree as it looked at the
// previous parse rather than the live tree. It additionally climbs
// through empty nonterminals via their recorded left sibling, the way
// find_terminal's defensive loop does, bailing out (returning nil)
// rather than looping forever if that climb ever returns to start —
// the original's cycle guard.
func findTerminalVersioned(n *tree.Node, version uuid.UUID, t *tree.Tree) *tree.Node {
	start := n
	for n != nil && n.Kind != tree.KindSentinel {
		children := attrChildren(n, version, t)
		if len(children) > 0 {
			n = children[len(children)-1]
			continue
		}
		if n.Kind != tree.KindNonterminal {
			break
		}
		for {
			left := attrLeft(n, version, t)
			if left != nil {
				n = left
				break
			}
			n = attrParent(n, version, t)
			if n == nil || n == start {
				return nil
			}
		}
	}
	if n == nil {
		return nil
	}
	return n.NextTerm
}
