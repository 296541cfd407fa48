// Package dfa implements a longest-match, priority-tie-break DFA
// lexer, plus the grammar file format that configures it.
package dfa

import "errors"

// ErrLexing is returned (wrapped with position detail) when no rule
// matches at the current position. It carries the farthest position
// reached so partial progress can be salvaged.
var ErrLexing = errors.New("dfa: no rule matched")

// LexingError is ErrLexing with the extra position detail a caller
// needs to salvage a partial match.
type LexingError struct {
	Pos int // farthest byte position reached before no rule matched
}

func (e *LexingError) Error() string {
	return "dfa: lexing failed; farthest position reached was " + itoa(e.Pos)
}

func (e *LexingError) Unwrap() error { return ErrLexing }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// LexTransition maps an inclusive rune range to a next state, mirroring
// gotreesitter/language.go's LexTransition.
type LexTransition struct {
	Lo, Hi    rune
	NextState int
}

// LexState is one DFA state: an accepting token kind ("" when the
// state does not accept, or accepts a skip rule), a Skip flag for
// whitespace/ignored rules, and the
// transitions out of this state. Shape matches gotreesitter's
// LexState, the teacher's table-driven lexer representation.
type LexState struct {
	AcceptKind string // "" if this state doesn't accept or accepts a skip rule
	Priority   int    // priority of the rule that produced AcceptKind, for tie-break bookkeeping at build time
	Skip       bool
	Transitions []LexTransition
}

// Table is a compiled DFA: a flat list of states, state 0 is the
// start state.
type Table struct {
	States        []LexState
	Indentation   bool // parsed from the grammar file's %<indentation=true> header
}

// Rule is one priority-ordered lexer rule: Kind is the token name
// emitted on a match (the empty string means "skip", i.e. whitespace),
// Pattern is the regex source, and Priority breaks ties between rules
// that match the same length (smaller wins).
type Rule struct {
	Kind     string
	Pattern  string
	Priority int
}
