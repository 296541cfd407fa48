package dfa

import "unicode/utf8"

// Source is the rune-at-a-time view the lexer scans over. streamview
// implements this by flattening a token-tree chain into characters
// while tracking which underlying node each position came from; tests
// in this package use the simpler StringSource.
type Source interface {
	// RuneAt returns the rune starting at stream position pos, its
	// width in stream positions, and whether one was available (false
	// at end of stream).
	RuneAt(pos int) (r rune, width int, ok bool)
}

// StringSource is a Source over a plain string, for tests and for
// callers that don't need node-aware streaming.
type StringSource string

func (s StringSource) RuneAt(pos int) (rune, int, bool) {
	if pos < 0 || pos >= len(s) {
		return 0, 0, false
	}
	r, size := utf8.DecodeRuneInString(string(s)[pos:])
	return r, size, true
}

// Token is one lexed unit: its token kind, the stream span [Start,End)
// it covers, and Lookahead — how many stream positions past End the
// DFA read before it got stuck deciding End was the longest match.
// Next never returns a token for a skip rule (Kind == ""); it
// consumes and loops past those internally.
type Token struct {
	Kind      string
	Start     int
	End       int
	Lookahead int
}

// Lexer scans a Source with a compiled Table, maximal-munch style.
type Lexer struct {
	table *Table
}

// NewLexer wraps a compiled Table for scanning.
func NewLexer(t *Table) *Lexer {
	return &Lexer{table: t}
}

// Next scans the next non-skip token starting at pos. It returns
// *LexingError (via the error return) when no rule matches at the
// current position, carrying the farthest position the DFA reached so
// the caller can decide how to salvage the gap.
func (l *Lexer) Next(src Source, pos int) (Token, error) {
	for {
		tok, farthest, matched := l.scan(src, pos)
		if !matched {
			return Token{}, &LexingError{Pos: farthest}
		}
		if tok.Kind == "" {
			if tok.End <= pos {
				// zero-width skip match; force progress.
				if _, w, ok := src.RuneAt(pos); ok {
					pos += w
				} else {
					return Token{}, &LexingError{Pos: pos}
				}
				continue
			}
			pos = tok.End
			continue
		}
		return tok, nil
	}
}

// scan runs the DFA from state 0 at pos. It returns the best match
// found (if any), the farthest stream position reached regardless of
// whether that position was accepting (a rune the DFA peeked at and
// rejected is not counted), and whether any accept was found at all.
func (l *Lexer) scan(src Source, start int) (Token, int, bool) {
	if len(l.table.States) == 0 {
		return Token{}, start, false
	}
	state := 0
	scanPos := start
	reached := start

	acceptPos := -1
	acceptKind := ""

	st := &l.table.States[state]
	if st.AcceptKind != "" || st.Skip {
		acceptPos = scanPos
		acceptKind = st.AcceptKind
	}

	for {
		r, width, ok := src.RuneAt(scanPos)
		if !ok {
			// End of input: nothing left to peek at, so this contributes
			// no lookahead beyond wherever the DFA last landed.
			break
		}
		next := -1
		for _, tr := range l.table.States[state].Transitions {
			if r >= tr.Lo && r <= tr.Hi {
				next = tr.NextState
				break
			}
		}
		if next < 0 {
			// The DFA had to look at r to discover there was no way
			// forward; that peek counts toward lookahead even though
			// it isn't part of the match.
			scanPos += width
			break
		}
		scanPos += width
		reached = scanPos
		state = next
		ns := &l.table.States[state]
		if ns.AcceptKind != "" || ns.Skip {
			acceptPos = scanPos
			acceptKind = ns.AcceptKind
		}
	}

	if acceptPos < 0 {
		return Token{}, reached, false
	}
	return Token{
		Kind:      acceptKind,
		Start:     start,
		End:       acceptPos,
		Lookahead: scanPos - acceptPos,
	}, reached, true
}
