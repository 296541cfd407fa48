// Package tree implements the token-tree data model shared by the
// incremental lexer and the language-box detector: a doubly linked
// sequence of terminal nodes interleaved with parent nonterminal nodes,
// plus composite nodes that group several terminals lexed together.
package tree

// Kind tags the variant a Node represents. Terminals, composites,
// magic (language-box) markers and sentinels share this struct instead
// of an inheritance hierarchy; callers switch on Kind rather than type
// assert.
type Kind uint8

const (
	// KindTerminal is an ordinary lexed token.
	KindTerminal Kind = iota
	// KindComposite is a multi-text node whose Text is the
	// concatenation of its children's text (e.g. a string literal that
	// may contain language boxes).
	KindComposite
	// KindMagic is a language-box marker: kind "<lang>", text
	// conceptually one character wide, owning an embedded-language
	// subtree via Box.
	KindMagic
	// KindSentinel is BOS or EOS.
	KindSentinel
	// KindIndentPseudo is INDENT/DEDENT/NEWLINE: carries no source
	// characters and is skipped by streamview.
	KindIndentPseudo
	// KindNonterminal is a parent node in the parse tree.
	KindNonterminal
)

// AutoboxState is the tri-state an error node's auto-box suggestion
// can be in: no suggestion computed yet, a list of candidates, or
// "reverted" meaning the user undid a previous auto-inserted box and
// no further suggestions should be offered at this node.
type AutoboxState uint8

const (
	AutoboxUnset AutoboxState = iota
	AutoboxList
	AutoboxReverted
)

// Node is a terminal, composite, magic marker, sentinel or
// nonterminal in the token/parse tree. Fields that do not apply to a
// given Kind are simply left at their zero value (e.g. Lookahead is
// meaningless on a KindNonterminal).
type Node struct {
	Kind Kind

	// Symbol is the lexer token name (terminal) or grammar production
	// name (nonterminal). For KindMagic it is the "<lang>" name.
	Symbol string

	// Text is the source text this node covers. For KindComposite it
	// is the concatenation of the children's text, kept in sync by
	// the relexer's merge-back step.
	Text string

	// Lookahead is the number of characters the DFA consumed past the
	// end of this node's text when deciding its match.
	Lookahead int

	// Lookback is how many preceding terminals must be revisited when
	// this node changes. -1 means "unknown", the value a freshly
	// inserted node starts with before relex computes it.
	Lookback int

	Changed bool
	Deleted bool

	// Version is a monotonically increasing creation-order stamp,
	// assigned once when the node is allocated. The recognizer uses it
	// (via auto_limit_new: LimitTokensNew/MinVersion) to tell
	// freshly-relexed nodes apart from ones that survived unchanged from
	// an earlier parse.
	Version int

	// State is the LR parser state this node was shifted in, as set by
	// whatever parses the tree; lbox's history heuristic reads it. The
	// recognizer package never sets it.
	State int

	Parent   *Node
	PrevTerm *Node
	NextTerm *Node

	// Children holds, for KindComposite, the terminal/magic children
	// whose concatenated text equals Text; for KindNonterminal, the
	// full child list of the parse tree.
	Children []*Node

	// Box is set on a KindMagic node: the root of the embedded
	// language's subtree.
	Box *Node

	// Autobox records the detector's most recent suggestion state for
	// an error node.
	Autobox        AutoboxState
	AutoboxChoices []Candidate
}

// Candidate is a language-box suggestion attached to an error node.
// It mirrors lbox.Candidate but lives here too so tree.Node doesn't
// need to import the lbox package (which imports tree).
type Candidate struct {
	Start, End *Node
	Language   string
}

// IsPseudo reports whether n carries no source characters and should
// be skipped by the stream view (sentinels and indentation tokens).
func (n *Node) IsPseudo() bool {
	return n.Kind == KindSentinel || n.Kind == KindIndentPseudo
}

// IsMultiChild reports whether n is a terminal-like child of a
// composite node.
func (n *Node) IsMultiChild() bool {
	return n.Parent != nil && n.Parent.Kind == KindComposite
}

// TextLength returns len(n.Text), skipping pseudo-terminals (which
// carry no source characters even though they may have non-empty
// Text for debugging).
func (n *Node) TextLength() int {
	if n.IsPseudo() {
		return 0
	}
	return len(n.Text)
}

// MarkChanged sets Changed on n and every ancestor, so a later pass
// over the tree can find every node touched by an edit without a full
// walk.
func (n *Node) MarkChanged() {
	for cur := n; cur != nil; cur = cur.Parent {
		cur.Changed = true
	}
}
