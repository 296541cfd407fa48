package recognizer

import (
	"github.com/ecolang/eco/syntaxtable"
	"github.com/ecolang/eco/tree"
)

// Incremental is the C6 incremental recognizer: it can be
// pre-positioned to the exact LR state the real parser has at a
// chosen cut point (Preparse), then asked whether a small amount of
// surrounding input still parses from there (ParseSingle/ParseAfter).
// Grounded on IncrementalRecognizer in
// original_source/lib/eco/autolboxdetector.py.
type Incremental struct {
	*Recognizer
}

// NewIncremental wraps table in an incremental recognizer.
func NewIncremental(table syntaxtable.Table) *Incremental {
	return &Incremental{Recognizer: New(table)}
}

// Preparse replays the parse from outerRoot, collapsing every sibling
// subtree not on the ancestor path to stop into a single Shift/Goto
// keyed on that subtree's own root symbol (never descending into it),
// and descending one level at a time along the path to stop. The
// result is the exact LR state stack the real parser would have
// immediately before stop. Returns false if a collapsed subtree's
// symbol is not accepted by the table at its point in the stack,
// meaning the state cannot be reconstructed.
func (inc *Incremental) Preparse(stop *tree.Node) bool {
	inc.Reset()
	path := map[*tree.Node]bool{}
	root := stop
	for p := stop.Parent; p != nil; p = p.Parent {
		path[p] = true
		root = p
	}

	node := root
	for {
		if node == stop {
			return true
		}
		if node.Deleted {
			return false
		}
		children := node.Children
		advanced := false
		for _, c := range children {
			if c.Deleted {
				continue
			}
			if c == stop || path[c] {
				node = c
				advanced = true
				break
			}
			if !inc.replaySubtree(c) {
				return false
			}
		}
		if !advanced {
			return false
		}
	}
}

// replaySubtree issues one action for n's root symbol without
// descending into n's own children, performing whatever reductions
// are needed first.
func (inc *Incremental) replaySubtree(n *tree.Node) bool {
	sym := syntaxtable.Symbol(n.Symbol)
	for {
		action := inc.Recognizer.Table.Lookup(inc.Recognizer.top(), sym)
		switch action.Kind {
		case syntaxtable.ActionShift, syntaxtable.ActionGoto:
			inc.Recognizer.absParseDistance += n.TextLength()
			inc.Recognizer.state = append(inc.Recognizer.state, action.State)
			return true
		case syntaxtable.ActionReduce:
			inc.Recognizer.popReduce(action.Production)
			continue
		default:
			return false
		}
	}
}

// ParseSingle advances by one terminal, performing all reductions
// needed first. Returns false if la cannot be shifted from the
// current state.
func (inc *Incremental) ParseSingle(la Token) bool {
	symbol := syntaxtable.Symbol(la.Kind)
	for {
		action := inc.Recognizer.Table.Lookup(inc.Recognizer.top(), symbol)
		switch action.Kind {
		case syntaxtable.ActionReduce:
			inc.Recognizer.popReduce(action.Production)
			continue
		case syntaxtable.ActionShift:
			inc.Recognizer.state = append(inc.Recognizer.state, action.State)
			return true
		case syntaxtable.ActionAccept:
			return true
		default:
			return false
		}
	}
}

// ParseAfter consumes tokens from src, freely shifting whitespace,
// counting non-whitespace terminals shifted, and succeeds when either
// the limits (maxTokens non-whitespace terminals AND maxDist
// characters) are both met, Accept fires, or at least one
// non-whitespace terminal was shifted before getting stuck. If la's
// LastRead is the error node registered via SetErrorNode and the
// table admits Shift or Accept there, SeenError is set — the box
// fixed the error without needing to wrap it.
func (inc *Incremental) ParseAfter(src TokenSource, maxTokens, maxDist int) bool {
	parsedTokens := 0
	parsedDistance := 0
	tok, ok := src.Next()
	for {
		symbol := EOS
		if ok {
			symbol = syntaxtable.Symbol(tok.Kind)
		}
		action := inc.Recognizer.Table.Lookup(inc.Recognizer.top(), symbol)

		if ok && inc.Recognizer.errorNode != nil && tok.LastRead == inc.Recognizer.errorNode &&
			(action.Kind == syntaxtable.ActionShift || action.Kind == syntaxtable.ActionAccept) {
			inc.Recognizer.seenError = true
		}

		switch action.Kind {
		case syntaxtable.ActionReduce:
			inc.Recognizer.popReduce(action.Production)
			continue
		case syntaxtable.ActionShift:
			inc.Recognizer.state = append(inc.Recognizer.state, action.State)
			inc.Recognizer.absParseDistance += len(tok.Text)
			isWhitespace := tok.Kind == "<ws>" || tok.Kind == "<return>"
			if !isWhitespace {
				parsedTokens++
			}
			parsedDistance += len(tok.Text)
			if parsedTokens >= maxTokens && parsedDistance >= maxDist {
				return true
			}
			tok, ok = src.Next()
			continue
		case syntaxtable.ActionAccept:
			return true
		default:
			return parsedTokens > 0
		}
	}
}
