package tree

// Tree owns the terminal chain (BOS ... EOS) and the parse tree built
// over it. It is the only state a session keeps: nothing about an
// edit is persisted outside the tree itself.
type Tree struct {
	arena *Arena
	BOS   *Node
	EOS   *Node
	Root  *Node

	current  *Snapshot
	previous *Snapshot

	nextVersion int
}

// NewTree builds an empty chain: BOS directly followed by EOS.
func NewTree() *Tree {
	a := NewArena()
	bos := a.Alloc()
	*bos = Node{Kind: KindSentinel, Symbol: "BOS", Lookback: -1}
	eos := a.Alloc()
	*eos = Node{Kind: KindSentinel, Symbol: "EOS", Lookback: -1}
	bos.NextTerm = eos
	eos.PrevTerm = bos
	return &Tree{arena: a, BOS: bos, EOS: eos}
}

// NewTerminal allocates a terminal node from the tree's arena. It is
// not linked into the chain; callers splice it in explicitly (see
// InsertAfter).
func (t *Tree) NewTerminal(symbol, text string) *Node {
	n := t.arena.Alloc()
	*n = Node{Kind: KindTerminal, Symbol: symbol, Text: text, Lookback: -1, Version: t.nextStamp()}
	return n
}

// NewComposite allocates an empty composite node.
func (t *Tree) NewComposite(symbol string) *Node {
	n := t.arena.Alloc()
	*n = Node{Kind: KindComposite, Symbol: symbol, Lookback: -1, Version: t.nextStamp()}
	return n
}

// NewMagic allocates a language-box marker node.
func (t *Tree) NewMagic(lang string) *Node {
	n := t.arena.Alloc()
	*n = Node{Kind: KindMagic, Symbol: "<" + lang + ">", Text: "\x81", Lookback: -1, Version: t.nextStamp()}
	return n
}

func (t *Tree) nextStamp() int {
	t.nextVersion++
	return t.nextVersion
}

// InsertAfter splices fresh after prev in the terminal chain. fresh
// must not already be linked.
func (t *Tree) InsertAfter(prev, fresh *Node) {
	next := prev.NextTerm
	prev.NextTerm = fresh
	fresh.PrevTerm = prev
	fresh.NextTerm = next
	if next != nil {
		next.PrevTerm = fresh
	}
	if next == t.EOS || next == nil {
		// nothing extra; EOS stays EOS
		_ = next
	}
}

// Remove unlinks n from the terminal chain in place, without
// tombstoning it. Callers that need to skip a removed node during an
// in-progress iteration should use MarkDeleted instead.
func (t *Tree) Remove(n *Node) {
	prev, next := n.PrevTerm, n.NextTerm
	if prev != nil {
		prev.NextTerm = next
	}
	if next != nil {
		next.PrevTerm = prev
	}
	n.PrevTerm, n.NextTerm = nil, nil
}

// MarkDeleted tombstones n: it stays linked (so in-flight iterators
// holding a pointer to it can still find NextTerm/PrevTerm) but is
// skipped by traversal helpers below and must be unlinked later by a
// call to Remove once no iterator can still be referencing it.
func (n *Node) MarkDeleted() {
	n.Deleted = true
}

// NextSkipPseudo returns the next terminal after n that is neither a
// tombstone nor an indentation pseudo-terminal, nor BOS (BOS is only
// ever a start sentinel, never a "next").
func NextSkipPseudo(n *Node) *Node {
	for cur := n.NextTerm; cur != nil; cur = cur.NextTerm {
		if cur.Deleted {
			continue
		}
		if cur.Kind == KindIndentPseudo {
			continue
		}
		return cur
	}
	return nil
}

// PrevSkipPseudo is the mirror of NextSkipPseudo.
func PrevSkipPseudo(n *Node) *Node {
	for cur := n.PrevTerm; cur != nil; cur = cur.PrevTerm {
		if cur.Deleted {
			continue
		}
		if cur.Kind == KindIndentPseudo {
			continue
		}
		return cur
	}
	return nil
}

// Text reconstructs the document by concatenating terminal text in
// chain order, excluding pseudo-terminals and rendering language-box
// markers as their embedded subtree's source. The result always
// equals the edited document, regardless of how many boxes it embeds.
func (t *Tree) Text() string {
	var b []byte
	for cur := t.BOS.NextTerm; cur != nil && cur != t.EOS; cur = cur.NextTerm {
		if cur.Deleted || cur.IsPseudo() {
			continue
		}
		b = append(b, renderText(cur)...)
	}
	return string(b)
}

func renderText(n *Node) string {
	switch n.Kind {
	case KindMagic:
		if n.Box != nil {
			return boxText(n.Box)
		}
		return ""
	case KindComposite:
		var b []byte
		for _, c := range n.Children {
			b = append(b, renderText(c)...)
		}
		return string(b)
	default:
		return n.Text
	}
}

// BoxText renders the source text of n's embedded subtree, the way
// Text renders a magic node's box inline. It returns "" for anything
// that isn't a KindMagic node with a Box, which lets callers use it
// without a separate Kind check when they already expect to skip
// non-boxes.
func (n *Node) BoxText() string {
	if n.Kind != KindMagic || n.Box == nil {
		return ""
	}
	return boxText(n.Box)
}

func boxText(root *Node) string {
	var b []byte
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil || n.Deleted {
			return
		}
		if n.Kind == KindNonterminal {
			for _, c := range n.Children {
				walk(c)
			}
			return
		}
		b = append(b, renderText(n)...)
	}
	walk(root)
	return string(b)
}
