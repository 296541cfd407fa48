package streamview

import (
	"bufio"
	"bytes"

	"github.com/clipperhouse/uax29/v2/graphemes"
)

// SplitResidue splits text at byte offset at, nudging the cut point
// back to the nearest grapheme cluster boundary at or before at so a
// carriage-return/line-feed pair (or any other cluster) is never torn
// in two. This matters when a partial relex leaves a residue of
// un-reconsumed characters that must be handed back to the tree as a
// node boundary.
func SplitResidue(text string, at int) (before, after string) {
	if at <= 0 {
		return "", text
	}
	if at >= len(text) {
		return text, ""
	}

	scanner := bufio.NewScanner(bytes.NewReader([]byte(text)))
	scanner.Split(graphemes.SplitFunc)
	scanner.Buffer(make([]byte, 0, 64), len(text)+1)

	pos := 0
	cut := 0
	for scanner.Scan() {
		tok := scanner.Bytes()
		next := pos + len(tok)
		if next > at {
			break
		}
		cut = next
		pos = next
		if pos >= len(text) {
			break
		}
	}
	return text[:cut], text[cut:]
}
