package relex

import (
	"strings"

	"github.com/ecolang/eco/streamview"
)

// salvageRemainder takes whatever text the stream has left past from
// and turns it into <E> chunks split on "\r" (so a run of unlexable
// text never merges two logical lines into one node), matching the
// leftover-handling inclexer.py does on a LexingError it cannot step
// past. This core gives up after a single salvage pass rather than
// retrying position-by-position the way the original's generator-based
// lexer does — a deliberate simplification for a core that is not
// expected to resynchronize mid-error the way the interactive editor
// does.
func salvageRemainder(v *streamview.View, from int) []generated {
	text := remainderText(v, from)
	if text == "" {
		return nil
	}
	var out []generated
	pos := from
	for _, part := range splitOnCR(text) {
		if part == "" {
			continue
		}
		out = append(out, generated{Kind: "<E>", Text: part, Start: pos, End: pos + len(part)})
		pos += len(part)
	}
	return out
}

func remainderText(v *streamview.View, from int) string {
	pos := from
	for {
		_, w, ok := v.RuneAt(pos)
		if !ok {
			break
		}
		pos += w
	}
	return v.Text()[from:pos]
}

// splitOnCR breaks s into line-bounded chunks the way inclexer.py's
// re.split("(\r)", name) breaks a salvaged run at every "\r", but
// cutting through streamview.SplitResidue instead of a bare index so a
// "\r\n" pair is never torn across two chunks: SplitResidue refuses to
// land a cut inside the pair's grapheme cluster and nudges back to the
// byte before the "\r", so a lone "\r" still ends its own chunk while
// one immediately followed by "\n" is not a cut point at all: the pair
// stays inside the current chunk, together with the text before it.
func splitOnCR(s string) []string {
	var out []string
	chunkStart := 0
	search := 0
	for {
		rel := strings.IndexByte(s[search:], '\r')
		if rel < 0 {
			if chunkStart < len(s) {
				out = append(out, s[chunkStart:])
			}
			return out
		}
		i := search + rel
		before, _ := streamview.SplitResidue(s[chunkStart:], i+1-chunkStart)
		cut := chunkStart + len(before)
		if cut == i+1 {
			out = append(out, s[chunkStart:cut])
			chunkStart = cut
			search = cut
			continue
		}
		// this "\r" sits inside a cluster SplitResidue wouldn't tear
		// (a "\r\n" pair): it isn't a valid cut point, keep scanning.
		search = i + 1
	}
}
