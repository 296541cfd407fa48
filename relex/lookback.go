package relex

import "github.com/ecolang/eco/tree"

// laEntry tracks one still-live lookahead as the forward sweep passes
// through it: lookahead counts down by each node's length, count is
// how many nodes back it originated.
type laEntry struct {
	lookahead int
	count     int
}

// propagateLookback walks forward from node, recomputing each
// terminal's Lookback as the largest count among still-live lookaheads
// reaching into it, and stops early once it reaches a node whose
// Lookback already holds that value and wasn't itself just relexed —
// everything past that point is necessarily already correct. Grounded
// on update_lookback in inclexer.py.
func propagateLookback(node, startnode *tree.Node, relexed map[*tree.Node]bool) {
	var window []laEntry
	pastNode := false
	n := node

	for {
		if n == startnode {
			pastNode = true
		}
		for n.Kind == tree.KindIndentPseudo {
			n = n.NextTerm
		}
		if n.Kind == tree.KindSentinel {
			break
		}

		kept := window[:0]
		for _, e := range window {
			if e.lookahead > 0 {
				kept = append(kept, e)
			}
		}
		window = kept

		newLookback := 0
		for _, e := range window {
			if e.count > newLookback {
				newLookback = e.count
			}
		}

		if !relexed[n] && n.Lookback == newLookback && pastNode {
			break
		}
		n.Lookback = newLookback

		offset := n.TextLength()
		for i := range window {
			window[i].lookahead -= offset
			window[i].count++
		}
		window = append(window, laEntry{lookahead: n.Lookahead, count: 1})

		if n.NextTerm == nil {
			break
		}
		n = n.NextTerm
	}
}
