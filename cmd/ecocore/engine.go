package main

import (
	"errors"

	"github.com/google/uuid"

	"github.com/ecolang/eco/dfa"
	"github.com/ecolang/eco/hostbridge"
	"github.com/ecolang/eco/langregistry"
	"github.com/ecolang/eco/lbox"
	"github.com/ecolang/eco/relex"
	"github.com/ecolang/eco/streamview"
	"github.com/ecolang/eco/syntaxtable"
	"github.com/ecolang/eco/tree"
)

// Engine owns one document's tree and wires relex and lbox.Detector
// together behind the narrow hostbridge.Core interface, the way a
// real session's controller would sit between the editor and the
// core packages. Building and maintaining the live parse tree itself
// (assigning states to shifted nodes, wrapping reductions in
// nonterminal nodes) is the LR parser's reduce engine, an external
// collaborator this core does not implement; Engine only runs the
// lexer and the C5-C7 recognizer/detector over whatever flat terminal
// chain relex produces.
type Engine struct {
	tr       *tree.Tree
	lex      *dfa.Lexer
	detector *lbox.Detector

	hostVersion uuid.UUID
}

// NewEngine lexes text into a fresh tree and wires a detector over it
// using table as the host grammar and reg/hostLang to resolve
// embeddable guest languages.
func NewEngine(text string, lex *dfa.Lexer, table syntaxtable.Table, reg *langregistry.Registry, hostLang string) (*Engine, error) {
	tr := tree.NewTree()
	placeholder := tr.NewTerminal("", text)
	tr.InsertAfter(tr.BOS, placeholder)

	_, err := relex.Relex(relex.OriginNode, tr, placeholder, lex)
	if err != nil && !errors.Is(err, dfa.ErrLexing) {
		return nil, err
	}
	tr.Commit()

	e := &Engine{
		tr:       tr,
		lex:      lex,
		detector: lbox.NewDetector(tr, reg, hostLang, table, lex, lbox.DefaultConfig()),
	}
	return e, nil
}

// nodeAt locates the terminal covering byte offset pos in the
// document, BOS counting as position 0 since it contributes no text.
func (e *Engine) nodeAt(pos int) *tree.Node {
	n, _ := streamview.New(e.tr.BOS).NodeAt(pos)
	return n
}

// offsetOf sums terminal text lengths from the start of the document
// up to n, the inverse of nodeAt. Linear in document length, the same
// trade-off lbox.Detector's own documentOffset makes for small
// documents. n must be chain-linked (BOS..EOS) — a composite's own
// children are not, use offsetOfLeaf for whatever nodeAt returns.
func (e *Engine) offsetOf(n *tree.Node) int {
	off := 0
	for cur := e.tr.BOS.NextTerm; cur != nil && cur != n; cur = cur.NextTerm {
		off += cur.TextLength()
	}
	return off
}

// offsetOfLeaf generalizes offsetOf to whatever nodeAt can return. A
// leaf nested inside a composite (a box stitched mid-token, the S4
// merge shape) is addressed only through its parent's Children, never
// its own PrevTerm/NextTerm — those are nil, since only the composite
// itself is spliced into the chain. Its offset is its parent's offset
// plus its position among its siblings.
func (e *Engine) offsetOfLeaf(leaf *tree.Node) int {
	if leaf.Parent == nil || leaf.Parent.Kind != tree.KindComposite {
		return e.offsetOf(leaf)
	}
	off := e.offsetOf(leaf.Parent)
	for _, c := range leaf.Parent.Children {
		if c == leaf {
			break
		}
		off += len(c.Text)
	}
	return off
}

// compositeText recomputes a composite's own cached Text (node.go's
// "concatenation of the children's text" invariant) after one child
// was just patched in place, so the cache doesn't go stale before
// relex gets a chance to rebuild the composite properly.
func compositeText(n *tree.Node) string {
	var b []byte
	for _, c := range n.Children {
		b = append(b, c.Text...)
	}
	return string(b)
}

// Edit implements hostbridge.Core: it patches the text of the leaf
// covering offset in place (a single-node-span simplification; a
// multi-node-spanning edit is the editor's job to normalize into
// per-node patches before calling here), re-lexes from there, and
// reports what changed. A leaf living inside a composite is patched
// at the leaf itself, with the composite's Text cache resynced, and
// relexed starting from the composite: the composite, not the leaf,
// is the unit streamview/relex can actually walk the chain from.
func (e *Engine) Edit(offset, removed int, inserted string) hostbridge.EditResult {
	leaf := e.nodeAt(offset)
	if leaf == nil || leaf == e.tr.EOS || leaf.Kind == tree.KindMagic {
		return hostbridge.EditResult{}
	}
	leafStart := e.offsetOfLeaf(leaf)
	within := offset - leafStart
	if within < 0 || within+removed > len(leaf.Text) {
		return hostbridge.EditResult{}
	}

	relexNode := leaf
	if leaf.Parent != nil && leaf.Parent.Kind == tree.KindComposite {
		relexNode = leaf.Parent
	}
	nodeStart := e.offsetOf(relexNode)

	e.tr.RecordPriorState(relexNode)
	leaf.Text = leaf.Text[:within] + inserted + leaf.Text[within+removed:]
	if relexNode != leaf {
		relexNode.Text = compositeText(relexNode)
	}
	relexNode.Lookback = -1
	relexNode.MarkChanged()

	result, relexErr := relex.Relex(relex.OriginLookback, e.tr, relexNode, e.lex)
	e.tr.Commit()

	out := hostbridge.EditResult{}
	if result.Changed {
		out.Changed = []hostbridge.NodeChanged{{
			Start: nodeStart,
			End:   nodeStart + len(relexNode.Text),
			Text:  relexNode.Text,
		}}
	}

	out.Removable = e.checkNearbyBoxes(relexNode)

	if relexErr != nil {
		if autobox, ok := e.detectAt(relexNode); ok {
			out.Autobox = &autobox
		}
	}
	return out
}

// checkNearbyBoxes looks at the language-box markers immediately
// before, at and after node (the only ones an edit this close could have
// affected) and reports any whose content now reparses cleanly enough
// into the outer grammar to be removed.
func (e *Engine) checkNearbyBoxes(node *tree.Node) []hostbridge.BoxTBD {
	var out []hostbridge.BoxTBD
	for _, cand := range []*tree.Node{node.PrevTerm, node, node.NextTerm} {
		if cand == nil || cand.Kind != tree.KindMagic {
			continue
		}
		if !e.detector.CheckRemoveLbox(cand) {
			continue
		}
		start := e.offsetOf(cand)
		out = append(out, hostbridge.BoxTBD{
			Start:  start,
			End:    start + len(cand.BoxText()),
			Action: "remove",
		})
	}
	return out
}

// detectAt runs the detector at node, treating it as the node a parse
// error was just raised on, and converts the result to the bridge's
// wire shape.
func (e *Engine) detectAt(node *tree.Node) (hostbridge.NodeAutobox, bool) {
	candidates := e.detector.Detect(node)
	if len(candidates) == 0 {
		return hostbridge.NodeAutobox{}, false
	}
	at := e.offsetOf(node)
	choices := make([]hostbridge.AutoboxChoice, len(candidates))
	for i, c := range candidates {
		choices[i] = hostbridge.AutoboxChoice{
			Start:    e.offsetOf(c.Start),
			End:      e.offsetOf(c.End) + c.End.TextLength(),
			Language: c.Language,
		}
	}
	return hostbridge.NodeAutobox{At: at, Choices: choices}, true
}

// ReportError implements hostbridge.Core.
func (e *Engine) ReportError(offset int) (hostbridge.NodeAutobox, bool) {
	node := e.nodeAt(offset)
	if node == nil {
		return hostbridge.NodeAutobox{}, false
	}
	return e.detectAt(node)
}

// SetPreviousVersion implements hostbridge.Core. The tree keeps its
// own version ids, minted by Commit; this records the host's own tag
// for the version it last synced, for bookkeeping across a
// reconnect, rather than feeding back into the tree's snapshot model.
func (e *Engine) SetPreviousVersion(version uuid.UUID) {
	e.hostVersion = version
}

// Text returns the document's current text, for the CLI's one-shot
// report.
func (e *Engine) Text() string { return e.tr.Text() }
