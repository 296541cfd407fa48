// Package streamview presents a node-tree chain as a flat character
// stream for the DFA lexer to scan, tracking which underlying node
// (and offset within it) backs each stream position so the relexer
// can translate a new token's span back into consumed-node and
// split-index information.
package streamview

import (
	"unicode/utf8"

	"github.com/ecolang/eco/dfa"
	"github.com/ecolang/eco/tree"
)

// segment records that view positions [Start, Start+len(Text)) came
// from Node's text.
type segment struct {
	Node  *tree.Node
	Start int
	Text  string
}

// View is a windowed, node-aware dfa.Source. It starts at a given
// terminal and lazily pulls more of the chain into its buffer as
// RuneAt is asked for positions past what has been read so far,
// mirroring the lookahead-without-losing-state idiom of a peekable
// lexer wrapper.
type View struct {
	next *tree.Node // next terminal chain node to pull in, or nil when exhausted
	buf  []byte
	segs []segment
}

// New builds a View starting at start (inclusive). start is typically
// the relex origin; pseudo-terminals and tombstoned nodes between
// start and the first real content are skipped automatically.
func New(start *tree.Node) *View {
	return &View{next: start}
}

// RuneAt implements dfa.Source.
func (v *View) RuneAt(pos int) (rune, int, bool) {
	v.ensure(pos + utf8.UTFMax)
	if pos < 0 || pos >= len(v.buf) {
		return 0, 0, false
	}
	r, size := utf8.DecodeRune(v.buf[pos:])
	return r, size, true
}

// ensure pulls chain nodes into the buffer until it has at least
// upto bytes buffered or the chain is exhausted.
func (v *View) ensure(upto int) {
	for len(v.buf) < upto && v.next != nil {
		n := v.next
		v.next = n.NextTerm
		if n.Deleted || n.IsPseudo() || n.Kind == tree.KindSentinel {
			continue
		}
		v.pushLeaves(n)
	}
}

// pushLeaves appends one segment per leaf reachable from n, descending
// into a KindComposite's Children the same way tree.renderText does
// instead of trusting n's own cached Text. A composite's Text can only
// ever be a concatenation of its children, including any KindMagic
// child's one-character marker — if ensure took it as a single opaque
// segment, that child would never surface as its own segment.Node and
// every node-aware consumer downstream (NodeAt, ConsumedNodes,
// SplitIndex) would see the whole composite where it needs the actual
// leaf. A KindMagic node is still pushed as one leaf segment holding
// its own marker text, not its Box's rendered source: the host stream
// must see a box as a single atomic token, never its guest content.
func (v *View) pushLeaves(n *tree.Node) {
	if n.Kind == tree.KindComposite {
		for _, c := range n.Children {
			v.pushLeaves(c)
		}
		return
	}
	text := n.Text
	if text == "" {
		return
	}
	v.segs = append(v.segs, segment{Node: n, Start: len(v.buf), Text: text})
	v.buf = append(v.buf, text...)
}

// Text returns everything buffered so far (for tests/diagnostics); it
// does not force further reads.
func (v *View) Text() string { return string(v.buf) }

// NodeAt locates the node backing stream position pos and pos's
// offset within that node's text, pulling in more of the chain if
// needed. Returns (nil, 0) past the end of the stream.
func (v *View) NodeAt(pos int) (*tree.Node, int) {
	v.ensure(pos + 1)
	if seg := v.segAt(pos); seg != nil {
		return seg.Node, pos - seg.Start
	}
	return nil, 0
}

func (v *View) segAt(pos int) *segment {
	// linear scan is fine: a single lex call only ever spans a handful
	// of nodes, this is not a whole-document structure.
	for i := range v.segs {
		s := &v.segs[i]
		if pos >= s.Start && pos < s.Start+len(s.Text) {
			return s
		}
	}
	return nil
}

// ConsumedNodes returns, in chain order, every distinct node whose
// text contributed any byte to the stream span [start, end).
func (v *View) ConsumedNodes(start, end int) []*tree.Node {
	v.ensure(end)
	var out []*tree.Node
	var last *tree.Node
	for i := range v.segs {
		s := &v.segs[i]
		segEnd := s.Start + len(s.Text)
		if segEnd <= start || s.Start >= end {
			continue
		}
		if s.Node != last {
			out = append(out, s.Node)
			last = s.Node
		}
	}
	return out
}

// SplitIndex reports, for a token boundary landing at pos, the node
// it lands inside of and the byte offset within that node's own text
// where the boundary falls — the information relex's merge-back step
// needs to split an old composite/terminal whose span a new token
// only partially overlaps. Ok is false when pos lands exactly on a
// node boundary (no split needed) or past the end of the stream.
func (v *View) SplitIndex(pos int) (node *tree.Node, offset int, ok bool) {
	v.ensure(pos + 1)
	seg := v.segAt(pos)
	if seg == nil {
		return nil, 0, false
	}
	off := pos - seg.Start
	if off == 0 {
		return seg.Node, 0, false
	}
	return seg.Node, off, true
}

var _ dfa.Source = (*View)(nil)
