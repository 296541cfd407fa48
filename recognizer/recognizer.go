// Package recognizer simulates LR parsing over a terminal stream
// without ever building a parse tree, so the language-box detector
// can cheaply ask "would this input parse?" Grounded on the
// Recognizer/RecognizerIndent/IncrementalRecognizer classes in
// original_source/lib/eco/autolboxdetector.py, reshaped around
// syntaxtable.Table and tree.Node instead of the original's dynamic
// syntax-table objects and node wrappers.
package recognizer

import (
	"github.com/ecolang/eco/syntaxtable"
	"github.com/ecolang/eco/tree"
)

// EOS is the lookahead symbol used once the token source is
// exhausted (or a lex error ends it) — "FinishSymbol" in the original.
const EOS syntaxtable.Symbol = "$"

// Token is one lexed unit as the recognizer needs it: a grammar
// symbol, its text length (to accumulate parse distance), the last
// tree node its text came from, and the stream split index (the
// position within that node where the token's span ends, for
// candidates whose boundary falls mid-node).
type Token struct {
	Kind     string
	Text     string
	LastRead *tree.Node
	Split    int
}

// TokenSource supplies tokens to a Recognizer. Next returns ok=false
// both at genuine end of input and on a lex error — the recognizer
// treats both identically as EOS, matching the original's collapsing
// of StopIteration and LexingError into FinishSymbol.
type TokenSource interface {
	Next() (Token, bool)
}

// PossibleEnd is a point at which the recognizer, after all possible
// reductions, could reach Accept on end-of-input.
type PossibleEnd struct {
	Node          *tree.Node
	ParseDistance int
	Split         int
}

// Recognizer is the C5 state-machine recognizer: Shift/Reduce/Goto
// over a syntaxtable.Table, recording possible_ends at every shift
// that leaves the automaton able to reach Accept.
type Recognizer struct {
	Table syntaxtable.Table

	// AutoAllows implements the host grammar's auto_allows(lang,
	// token_kind) rule consulted by ValidStart. Nil means "always
	// allow" (useful for grammar-only tests that don't model a host).
	AutoAllows func(tokenKind string) bool

	// LimitTokensNew mirrors mode_limit_tokens_new: when true, a
	// possible end is only recorded if its node's version is at or
	// after MinVersion.
	LimitTokensNew bool
	MinVersion     int

	state            []int
	reachedEOS       bool
	seenError        bool
	possibleEnds     []PossibleEnd
	lastRead         *tree.Node
	lastTokenLen     int
	lastSplit        int
	absParseDistance int
	errorNode        *tree.Node

	// isFinished is the finished-check run() consults at every shift.
	// Indent overrides this (rather than relying on method override,
	// which embedding can't give it) to require a shiftable NEWLINE.
	isFinished func() bool
}

// New creates a Recognizer at the grammar's start state (state 0).
func New(table syntaxtable.Table) *Recognizer {
	r := &Recognizer{Table: table}
	r.isFinished = r.IsFinished
	r.Reset()
	return r
}

// Reset clears all per-parse state so the recognizer can be reused
// for the next validation. Recognizers are reusable per embedded
// language and must be reset before each use.
func (r *Recognizer) Reset() {
	r.state = []int{0}
	r.reachedEOS = false
	r.seenError = false
	r.possibleEnds = nil
	r.lastRead = nil
	r.lastTokenLen = 0
	r.lastSplit = 0
	r.absParseDistance = 0
}

func (r *Recognizer) top() int { return r.state[len(r.state)-1] }

// PossibleEnds returns the ends recorded by the most recent Parse.
func (r *Recognizer) PossibleEnds() []PossibleEnd { return r.possibleEnds }

// SeenError reports whether errorNode (set via SetErrorNode before
// Parse) was itself successfully shifted during the parse — meaning
// the candidate under test fixed the error without needing to wrap
// the error node in the box.
func (r *Recognizer) SeenError() bool { return r.seenError }

// SetErrorNode records which node Parse should watch for being
// shifted, to compute SeenError.
func (r *Recognizer) SetErrorNode(n *tree.Node) { r.errorNode = n }

// AbsParseDistance returns the number of characters shifted so far in
// the most recent parse (or replay), the budget the detector's
// reach-based ranking sorts and compares candidates by.
func (r *Recognizer) AbsParseDistance() int { return r.absParseDistance }

// ValidStart rejects pure-whitespace starts and consults AutoAllows.
func (r *Recognizer) ValidStart(tok Token, ok bool) bool {
	if !ok {
		return true
	}
	if tok.Kind == "<ws>" || tok.Kind == "<return>" {
		return false
	}
	if r.AutoAllows != nil && !r.AutoAllows(tok.Kind) {
		return false
	}
	return true
}

// Parse feeds tokens from src, performing Shift/Reduce/Goto until
// Accept, a lex error, or an invalid action. It returns the last
// fully-lexed node and true on Accept; (nil, false) otherwise.
func (r *Recognizer) Parse(src TokenSource) (*tree.Node, bool) {
	r.Reset()
	tok, ok := src.Next()
	if !r.ValidStart(tok, ok) {
		return nil, false
	}
	return r.run(src, tok, ok)
}

func (r *Recognizer) run(src TokenSource, tok Token, ok bool) (*tree.Node, bool) {
	for {
		symbol := EOS
		if ok {
			symbol = syntaxtable.Symbol(tok.Kind)
			r.lastRead = tok.LastRead
			r.lastTokenLen = len(tok.Text)
			r.lastSplit = tok.Split
		} else {
			r.reachedEOS = true
		}

		action := r.Table.Lookup(r.top(), symbol)
		switch action.Kind {
		case syntaxtable.ActionShift:
			if ok && r.errorNode != nil && tok.LastRead == r.errorNode {
				r.seenError = true
			}
			r.absParseDistance += r.lastTokenLen
			r.state = append(r.state, action.State)
			if r.isFinished() && r.lastRead != nil {
				if !r.LimitTokensNew || nodeVersion(r.lastRead) >= r.MinVersion {
					r.possibleEnds = append(r.possibleEnds, PossibleEnd{
						Node:          r.lastRead,
						ParseDistance: r.absParseDistance,
						Split:         r.lastSplit,
					})
				}
				r.lastRead = nil
			}
			tok, ok = src.Next()
			continue
		case syntaxtable.ActionReduce:
			r.popReduce(action.Production)
			continue
		case syntaxtable.ActionAccept:
			return r.lastRead, true
		default:
			return nil, false
		}
	}
}

// popReduce pops Production.Amount() states and pushes the Goto
// target for Production.Left from the state now exposed.
func (r *Recognizer) popReduce(prod *syntaxtable.Production) {
	n := prod.Amount()
	r.state = r.state[:len(r.state)-n]
	goto_ := r.Table.Lookup(r.top(), prod.Left)
	r.state = append(r.state, goto_.State)
}

// IsFinished reports whether, from the current state, the automaton
// could reach Accept on EOS after all pending reductions (without
// mutating the recognizer's real state stack).
func (r *Recognizer) IsFinished() bool {
	states := append([]int(nil), r.state...)
	result := r.Table.Lookup(states[len(states)-1], EOS)
	for result.Kind == syntaxtable.ActionReduce {
		n := result.Production.Amount()
		states = states[:len(states)-n]
		g := r.Table.Lookup(states[len(states)-1], result.Production.Left)
		states = append(states, g.State)
		result = r.Table.Lookup(states[len(states)-1], EOS)
	}
	return result.Kind == syntaxtable.ActionAccept
}

// tempParse advances a caller-owned state stack by one symbol,
// performing any reductions needed first, without touching r's own
// state. It is the building block ParseLexSingle and Indent's
// finished-check use to try symbols without committing to them.
func (r *Recognizer) tempParse(states []int, symbol syntaxtable.Symbol) ([]int, bool) {
	return TempParse(r.Table, states, symbol)
}

// TempParse advances a caller-owned state stack by one symbol against
// table, performing any reductions needed first. It is the
// table-driven core of (*Recognizer).tempParse, exposed standalone so
// callers that only have a reconstructed stack and no live Recognizer
// (lbox.CheckRemoveLbox replaying a removed box's content against the
// outer grammar) can reuse it.
func TempParse(table syntaxtable.Table, states []int, symbol syntaxtable.Symbol) ([]int, bool) {
	for {
		top := states[len(states)-1]
		action := table.Lookup(top, symbol)
		switch action.Kind {
		case syntaxtable.ActionShift:
			return append(states, action.State), true
		case syntaxtable.ActionReduce:
			n := action.Production.Amount()
			states = states[:len(states)-n]
			g := table.Lookup(states[len(states)-1], action.Production.Left)
			states = append(states, g.State)
			continue
		default:
			return states, false
		}
	}
}

// ParseLexSingle lexes from node and feeds tokens into the
// recognizer's live state stack (not a scratch copy) until either a
// token fails to advance the automaton (false) or lexing moves past
// node itself (true) — used to check that a single node still lexes
// consistently with the live parse state after a local edit.
func (r *Recognizer) ParseLexSingle(src TokenSource, node *tree.Node) bool {
	tok, ok := src.Next()
	for {
		symbol := EOS
		if ok {
			symbol = syntaxtable.Symbol(tok.Kind)
		}
		var advanced bool
		r.state, advanced = r.tempParse(r.state, symbol)
		if !advanced {
			return false
		}
		if ok {
			r.lastRead = tok.LastRead
		}
		tok, ok = src.Next()
		if !ok || r.lastRead != node {
			return true
		}
	}
}

func nodeVersion(n *tree.Node) int {
	if n == nil {
		return 0
	}
	return n.Version
}
