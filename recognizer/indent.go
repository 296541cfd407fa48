package recognizer

import (
	"github.com/ecolang/eco/syntaxtable"
	"github.com/ecolang/eco/tree"
)

// IndentSource wraps a TokenSource for an indentation-sensitive
// grammar, synthesizing INDENT/DEDENT/NEWLINE pseudo-tokens on
// logical-line transitions the way RecognizerIndent.next_token does:
// a line is "logical" once it has produced a non-whitespace,
// non-<return> token; crossing into a new logical line compares its
// leading whitespace width against an indent stack.
type IndentSource struct {
	inner TokenSource

	todo        []Token
	indents     []int
	lastWS      int
	logicalLine bool
	exhausted   bool
}

// NewIndentSource wraps inner with indent-tracking.
func NewIndentSource(inner TokenSource) *IndentSource {
	return &IndentSource{inner: inner, indents: []int{0}}
}

func isLogical(kind string) bool {
	return kind != "<ws>" && kind != "<return>"
}

// Next implements TokenSource.
func (s *IndentSource) Next() (Token, bool) {
	if len(s.todo) > 0 {
		tok := s.todo[0]
		s.todo = s.todo[1:]
		return tok, true
	}
	if s.exhausted {
		return Token{}, false
	}

	tok, ok := s.inner.Next()
	if !ok {
		s.exhausted = true
		s.todo = append(s.todo, Token{Kind: "NEWLINE"})
		for s.indents[len(s.indents)-1] != 0 {
			s.todo = append(s.todo, Token{Kind: "DEDENT"})
			s.indents = s.indents[:len(s.indents)-1]
		}
		return s.Next()
	}

	if tok.Kind == "<return>" {
		if s.logicalLine {
			s.todo = append(s.todo, Token{Kind: "NEWLINE"})
			s.logicalLine = false
			s.lastWS = 0
		}
		return tok, true
	}

	if tok.Kind == "<ws>" {
		s.lastWS = len(tok.Text)
		return tok, true
	}

	if isLogical(tok.Kind) && !s.logicalLine {
		s.logicalLine = true
		top := s.indents[len(s.indents)-1]
		switch {
		case s.lastWS > top:
			s.todo = append(s.todo, Token{Kind: "INDENT"})
			s.indents = append(s.indents, s.lastWS)
		case s.lastWS == top:
			// same indentation level, nothing to synthesize
		default:
			for s.lastWS < s.indents[len(s.indents)-1] {
				s.todo = append(s.todo, Token{Kind: "DEDENT"})
				s.indents = s.indents[:len(s.indents)-1]
			}
		}
		s.todo = append(s.todo, tok)
		first := s.todo[0]
		s.todo = s.todo[1:]
		return first, true
	}
	return tok, true
}

// Indent is the indentation-aware recognizer variant: IsFinished
// additionally requires that a NEWLINE (and, failing that, a DEDENT)
// could be shifted before reaching Accept — logical lines must end
// cleanly, not mid-expression.
type Indent struct {
	*Recognizer
}

// NewIndent wraps table in an indentation-aware recognizer.
func NewIndent(table syntaxtable.Table) *Indent {
	ind := &Indent{Recognizer: New(table)}
	ind.Recognizer.isFinished = ind.isFinishedLogical
	return ind
}

// Parse runs the base Shift/Reduce/Goto loop, wrapping src in an
// IndentSource so <ws>/<return> tokens become INDENT/DEDENT/NEWLINE.
func (ind *Indent) Parse(src TokenSource) (*tree.Node, bool) {
	return ind.Recognizer.Parse(NewIndentSource(src))
}

// isFinishedLogical is the indent-aware finished-check: a logical
// line is only "finished" if shifting NEWLINE (or NEWLINE then
// DEDENT) from the current state could still reach Accept.
func (ind *Indent) isFinishedLogical() bool {
	table := ind.Recognizer.Table
	acceptsOnEOS := func(states []int) bool {
		states = append([]int(nil), states...)
		result := table.Lookup(states[len(states)-1], EOS)
		for result.Kind == syntaxtable.ActionReduce {
			states = states[:len(states)-result.Production.Amount()]
			states = append(states, table.Lookup(states[len(states)-1], result.Production.Left).State)
			result = table.Lookup(states[len(states)-1], EOS)
		}
		return result.Kind == syntaxtable.ActionAccept
	}
	states := append([]int(nil), ind.Recognizer.state...)
	var ok bool
	states, ok = ind.Recognizer.tempParse(states, "NEWLINE")
	if !ok {
		return false
	}
	if acceptsOnEOS(states) {
		return true
	}
	states, ok = ind.Recognizer.tempParse(states, "DEDENT")
	return ok && acceptsOnEOS(states)
}
