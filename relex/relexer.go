// Package relex incrementally re-lexes the stretch of the terminal
// chain an edit touched, merges the result back into the tree, and
// propagates lookback counts forward past the edit. Grounded on
// IncrementalLexerCF in original_source/lib/eco/inclexer/inclexer.py.
package relex

import (
	"errors"

	"github.com/ecolang/eco/dfa"
	"github.com/ecolang/eco/streamview"
	"github.com/ecolang/eco/tree"
)

// Origin selects how Relex locates the start of the region it
// rescans. OriginLookback walks backward using stored Lookback counts
// — the usual path after an edit, since earlier nodes may have had
// lookahead into the changed text. OriginNode starts directly at the
// given node — used for freshly inserted content that nothing could
// yet have a lookahead into (the engine's initial load). This
// unifies relex/relex_from_node from inclexer.py into one entry point.
type Origin int

const (
	OriginLookback Origin = iota
	OriginNode
)

// relexState names the stage a Relex call reached.
type relexState int

const (
	StateScanning relexState = iota
	StateSalvaging
	StateMergingBack
	StatePropagatingLookback
	StateDone
	StateErrorReraised
)

// Result reports what Relex did.
type Result struct {
	Changed bool
	State   relexState
}

// generated is one token produced by re-lexing, in streamview
// coordinates relative to the View Relex built for this call.
type generated struct {
	Kind       string
	Text       string
	Start, End int
}

// Relex re-lexes starting from origin (derived from node per origin),
// merges the freshly generated tokens back into the tree, and
// propagates lookback counts forward past node. It returns whether
// anything in the tree actually changed. If the lexer could not
// recover from an error, the partial merge is still applied (so the
// tree reflects everything that could be salvaged) and the error is
// returned alongside it — callers recognize this case via
// errors.Is(err, dfa.ErrLexing).
func Relex(origin Origin, tr *tree.Tree, node *tree.Node, lex *dfa.Lexer) (Result, error) {
	start := node
	if origin == OriginLookback {
		start = findOrigin(node)
	}
	if start == nil || start == tr.EOS {
		return Result{State: StateDone}, nil
	}

	view, gen, relexErr := scan(start, node, lex)

	if relexErr != nil && start != node {
		// The lookback-derived origin hit trouble before ever reaching
		// the edited node. Retry once directly from node, mirroring
		// inclexer.py's "continue lexing from startnode onwards".
		view, gen, relexErr = scan(node, node, lex)
	}

	if len(gen) == 0 {
		if relexErr != nil {
			return Result{State: StateErrorReraised}, relexErr
		}
		return Result{State: StateDone}, nil
	}

	changed, relexed := mergeBack(tr, view, gen)
	propagateLookback(start, node, relexed)

	if relexErr != nil {
		return Result{Changed: changed, State: StateErrorReraised}, relexErr
	}
	return Result{Changed: changed, State: StateDone}, nil
}

// scan runs the generated/read accumulation loop: it re-lexes
// forward from start until one of three conditions ends it — the
// stream runs out (a clean end), the lexer hits an error it cannot
// step past (salvaged into <E> chunks and returned alongside the
// error), or a freshly generated token exactly reproduces an
// already-correct old node once scanning has passed node (the
// optimization that stops relexing once nothing further could change).
func scan(start, node *tree.Node, lex *dfa.Lexer) (*streamview.View, []generated, error) {
	view := streamview.New(start)
	var gen []generated
	pos := 0
	pastStart := node == start

	for {
		if _, _, ok := view.RuneAt(pos); !ok {
			return view, gen, nil
		}

		tok, err := lex.Next(view, pos)
		if err != nil {
			var lexErr *dfa.LexingError
			if errors.As(err, &lexErr) {
				gen = append(gen, salvageRemainder(view, pos)...)
				return view, gen, err
			}
			return view, gen, err
		}

		for _, c := range view.ConsumedNodes(tok.Start, tok.End) {
			if c == node {
				pastStart = true
			}
		}

		text := view.Text()[tok.Start:tok.End]
		gen = append(gen, generated{Kind: tok.Kind, Text: text, Start: tok.Start, End: tok.End})

		if pastStart {
			if _, ok := exactNodeMatch(view, tok, text); ok {
				return view, gen, nil
			}
		}
		pos = tok.End
	}
}

// exactNodeMatch reports whether tok's span covers exactly one old
// node, unsplit at either edge, whose kind and text already equal the
// freshly generated token — meaning relexing it produced no change.
func exactNodeMatch(v *streamview.View, tok dfa.Token, text string) (*tree.Node, bool) {
	consumed := v.ConsumedNodes(tok.Start, tok.End)
	if len(consumed) != 1 {
		return nil, false
	}
	n := consumed[0]
	if n.Kind == tree.KindMagic {
		return nil, false
	}
	if n.Symbol != tok.Kind || n.Text != text {
		return nil, false
	}
	if _, _, ok := v.SplitIndex(tok.Start); ok {
		return nil, false
	}
	if _, _, ok := v.SplitIndex(tok.End); ok {
		return nil, false
	}
	return n, true
}

// findOrigin walks backward from node using stored Lookback counts to
// find the farthest node whose lexing could depend on node's text,
// skipping indentation pseudo-terminals along the way. Grounded on
// find_preceeding_node in inclexer.py.
func findOrigin(node *tree.Node) *tree.Node {
	original := node
	n := node
	if n.Lookback == -1 {
		n = n.PrevTerm
		for n.Kind == tree.KindIndentPseudo {
			n = n.PrevTerm
		}
	}
	if n.Kind == tree.KindMagic && n.Lookback <= 0 {
		return original
	}
	for i := 0; i < n.Lookback; i++ {
		for n.Kind == tree.KindIndentPseudo {
			n = n.PrevTerm
		}
		n = n.PrevTerm
	}
	if n.Kind == tree.KindSentinel && n.Symbol == "BOS" {
		n = n.NextTerm
	}
	return n
}
