// Package lbox implements the automatic language-box detector (C7):
// on a parse failure it proposes candidate (start, end, language)
// boxes using three heuristics over the parser stack, parse history
// and current line, each validated by replaying LR moves with the
// incremental recognizer. Grounded on NewAutoLboxDetector in
// original_source/lib/eco/autolboxdetector.py.
package lbox

import (
	"sort"

	"github.com/ecolang/eco/dfa"
	"github.com/ecolang/eco/langregistry"
	"github.com/ecolang/eco/recognizer"
	"github.com/ecolang/eco/syntaxtable"
	"github.com/ecolang/eco/tree"
)

// Candidate is one proposed language box, carrying enough of the C5
// recognizer's result to both rank it (ParseDistance) and resume a
// following parse past it (Split).
type Candidate struct {
	Start, End    *tree.Node
	Language      string
	ParseDistance int
	Split         int
	ErrorNode     *tree.Node
	SeenError     bool

	// Heuristic names which of the three heuristics produced this
	// candidate ("stack", "history", "line"), used only for Stats
	// bookkeeping.
	Heuristic string
}

// Config gates which heuristics run and bounds how far validation
// looks past a candidate's end, mirroring AUTOLBOX_HEURISTIC_HIST/
// STACK/LINE and PARSE_AFTER_TOKENS from config.py.
type Config struct {
	EnableHistory bool
	EnableStack   bool
	EnableLine    bool

	// MaxTokens is how many non-whitespace terminals validation tries
	// to parse past a candidate before declaring it good enough.
	MaxTokens int
}

// DefaultConfig enables all three heuristics with the original's
// PARSE_AFTER_TOKENS budget.
func DefaultConfig() Config {
	return Config{EnableHistory: true, EnableStack: true, EnableLine: true, MaxTokens: 10}
}

// Stats counts, across calls to Detect, how many raw candidates each
// heuristic contributed and how often the accepted candidate(s) came
// from which heuristic. A much lighter replacement for the fuzz
// harness in original_source/lib/eco/fuzzylboxstats.py, which this
// core does not implement (fuzz-replacement testing is out of scope).
type Stats struct {
	HistoryCandidates int
	StackCandidates   int
	LineCandidates    int

	Accepted            int
	AcceptedFromHistory int
	AcceptedFromStack   int
	AcceptedFromLine    int
}

// Detector holds everything needed to propose and validate language
// boxes for one host document: the token tree, the language registry
// (for included_langs/auto_allows), the host's own compiled table and
// lexer, and a cache of per-guest-language recognizers (the original's
// "self.langs" map).
type Detector struct {
	Tree       *tree.Tree
	Registry   *langregistry.Registry
	HostLang   string
	OuterTable syntaxtable.Table
	OuterLex   *dfa.Lexer
	Config     Config

	Stats Stats

	subs map[string]*subLang
}

// NewDetector builds a Detector for one host document.
func NewDetector(tr *tree.Tree, reg *langregistry.Registry, hostLang string, outerTable syntaxtable.Table, outerLex *dfa.Lexer, cfg Config) *Detector {
	return &Detector{
		Tree:       tr,
		Registry:   reg,
		HostLang:   hostLang,
		OuterTable: outerTable,
		OuterLex:   outerLex,
		Config:     cfg,
		subs:       map[string]*subLang{},
	}
}

// subLang is a cached per-guest-language recognizer, the Go stand-in
// for a dict entry in self.langs: one instance is reused (after
// Reset) across every candidate the heuristics try for that language,
// exactly as the original never reconstructs a Recognizer per call.
type subLang struct {
	indent bool
	rec    *recognizer.Recognizer
	ind    *recognizer.Indent
	base   *recognizer.Recognizer
	lex    *dfa.Lexer
}

func (s *subLang) reset() { s.base.Reset() }

func (s *subLang) parse(src recognizer.TokenSource) (*tree.Node, bool) {
	if s.indent {
		return s.ind.Parse(src)
	}
	return s.rec.Parse(src)
}

// subLang looks up (and lazily builds) the cached recognizer for a
// guest language, wiring the host descriptor's auto_allows rule into
// it by partial application on the guest's own name.
func (d *Detector) subLang(lang string) (*subLang, bool) {
	if s, ok := d.subs[lang]; ok {
		return s, true
	}
	desc, ok := d.Registry.Get(lang)
	if !ok || desc.Load == nil {
		return nil, false
	}
	tables, err := desc.Load()
	if err != nil || tables.Syntax == nil || tables.Lex == nil {
		return nil, false
	}
	s := &subLang{}
	if tables.Lex.Indentation {
		s.indent = true
		s.ind = recognizer.NewIndent(tables.Syntax)
		s.base = s.ind.Recognizer
	} else {
		s.rec = recognizer.New(tables.Syntax)
		s.base = s.rec
	}
	if host, ok := d.Registry.Get(d.HostLang); ok && host.AutoAllows != nil {
		sub := lang
		s.base.AutoAllows = func(tokenKind string) bool { return host.AutoAllows(sub, tokenKind) }
	}
	s.base.LimitTokensNew = desc.AutoLimitNew
	s.lex = dfa.NewLexer(tables.Lex)
	d.subs[lang] = s
	return s, true
}

// candidateLangs returns the set of guest languages the host
// descriptor is willing to embed (included_langs).
func (d *Detector) candidateLangs() []string {
	host, ok := d.Registry.Get(d.HostLang)
	if !ok {
		return nil
	}
	return host.IncludedLangs
}

func tableAdmits(table syntaxtable.Table, state int, symbol syntaxtable.Symbol) bool {
	k := table.Lookup(state, symbol).Kind
	return k == syntaxtable.ActionShift || k == syntaxtable.ActionReduce
}

// findTerminal returns the first terminal at or after n's subtree:
// descend through n's last children until a non-nonterminal leaf, then
// step one terminal further. Mirrors find_terminal's live-tree path;
// the version-aware empty-nonterminal left-climbing it also performs
// is only needed by historyHeuristic (findTerminalVersioned) since
// stack/line positions are always non-empty real stack frames.
func findTerminal(n *tree.Node) *tree.Node {
	for n != nil && n.Kind == tree.KindNonterminal {
		if len(n.Children) == 0 {
			return nil
		}
		n = n.Children[len(n.Children)-1]
	}
	if n == nil {
		return nil
	}
	return n.NextTerm
}

// tryRecognize runs the C5 recognizer for lang starting at start,
// turning each recorded possible end into a Candidate (skipping ends
// that land on whitespace/newline, which can never be a useful box
// boundary).
func (d *Detector) tryRecognize(lang string, start, errNode *tree.Node) []Candidate {
	s, ok := d.subLang(lang)
	if !ok || start == nil {
		return nil
	}
	s.reset()
	s.base.SetErrorNode(errNode)
	src := recognizer.NewLexSource(start, s.lex)
	s.parse(src)

	var out []Candidate
	for _, pe := range s.base.PossibleEnds() {
		if pe.Node != nil && (pe.Node.Symbol == "<ws>" || pe.Node.Symbol == "<return>") {
			continue
		}
		out = append(out, Candidate{
			Start:         start,
			End:           pe.Node,
			Language:      lang,
			ParseDistance: pe.ParseDistance,
			Split:         pe.Split,
			ErrorNode:     errNode,
			SeenError:     s.base.SeenError(),
		})
	}
	return out
}

// stackHeuristic walks the live ancestor chain of the node just
// before errNode (errNode itself is typically not yet attached to
// the tree, since the parser never got to shift it) up to the root —
// each ancestor's State field is the LR state the real parser had at
// that stack frame — asking at each frame whether the host grammar
// can shift a box of each candidate language there.
func (d *Detector) stackHeuristic(errNode *tree.Node) []Candidate {
	if !d.Config.EnableStack {
		return nil
	}
	var out []Candidate
	langs := d.candidateLangs()
	for n := errNode.PrevTerm; n != nil; n = n.Parent {
		for _, lang := range langs {
			sym := syntaxtable.Symbol("<" + lang + ">")
			if !tableAdmits(d.OuterTable, n.State, sym) {
				continue
			}
			term := findTerminal(n)
			if term == nil || term == d.Tree.EOS {
				continue
			}
			cands := d.tryRecognize(lang, term, errNode)
			for i := range cands {
				cands[i].Heuristic = "stack"
			}
			out = append(out, cands...)
		}
	}
	return out
}

// lineHeuristic scans backwards from errNode, terminal by terminal,
// until a newline, BOS or a composite boundary, testing box
// admissibility at every position along the way.
func (d *Detector) lineHeuristic(errNode *tree.Node) []Candidate {
	if !d.Config.EnableLine {
		return nil
	}
	var out []Candidate
	langs := d.candidateLangs()
	node := errNode.PrevTerm
	for node != nil {
		for _, lang := range langs {
			sym := syntaxtable.Symbol("<" + lang + ">")
			if tableAdmits(d.OuterTable, node.State, sym) {
				start := node.NextTerm
				if start != nil {
					cands := d.tryRecognize(lang, start, errNode)
					for i := range cands {
						cands[i].Heuristic = "line"
					}
					out = append(out, cands...)
				}
			}
		}
		if node.Symbol == "<return>" || node.Kind == tree.KindSentinel || node.IsMultiChild() {
			break
		}
		node = node.PrevTerm
	}
	return out
}

// historyHeuristic walks up from errNode through its previous-parse
// ancestors, testing box admissibility at each ancestor's left
// sibling (descending through empty nonterminals), guarded by a
// second admissibility check at the sibling's own rightmost terminal
// to catch staleness from an isolated error.
func (d *Detector) historyHeuristic(errNode *tree.Node) []Candidate {
	if !d.Config.EnableHistory {
		return nil
	}
	version := d.Tree.PreviousVersion()
	var out []Candidate
	searched := map[*tree.Node]bool{}
	for _, lang := range d.candidateLangs() {
		sym := syntaxtable.Symbol("<" + lang + ">")
		parent := errNode.Parent
		for parent != nil {
			var left *tree.Node
			if attrParent(parent, version, d.Tree) == nil {
				children := attrChildren(parent, version, d.Tree)
				if len(children) > 0 {
					left = children[0]
				}
			} else {
				left = attrLeft(parent, version, d.Tree)
			}
			for left != nil && left.Kind == tree.KindNonterminal && len(attrChildren(left, version, d.Tree)) == 0 {
				left = attrLeft(left, version, d.Tree)
			}

			if left != nil && tableAdmits(d.OuterTable, left.State, sym) {
				term := findTerminalVersioned(left, version, d.Tree)
				if term != nil && !searched[term] {
					if term == d.Tree.EOS {
						parent = attrParent(parent, version, d.Tree)
						continue
					}
					tleft := term.PrevTerm
					for term != nil && (term.Symbol == "<ws>" || term.Symbol == "<return>") {
						term = term.NextTerm
					}
					if tleft == nil || !tableAdmits(d.OuterTable, tleft.State, sym) {
						parent = attrParent(parent, version, d.Tree)
						continue
					}
					searched[term] = true
					cands := d.tryRecognize(lang, term, errNode)
					for i := range cands {
						cands[i].Heuristic = "history"
					}
					out = append(out, cands...)
				}
			}
			parent = attrParent(parent, version, d.Tree)
		}
	}
	return out
}

// documentOffset sums terminal text lengths from the start of the
// document up to (not including) n, an O(document length) stand-in
// for the stored absolute "position" attribute the original's nodes
// carry; acceptable given the small candidate lists this core ranks.
func (d *Detector) documentOffset(n *tree.Node) int {
	off := 0
	for cur := d.Tree.BOS.NextTerm; cur != nil && cur != n; cur = cur.NextTerm {
		off += cur.TextLength()
	}
	return off
}

func (d *Detector) reach(c Candidate) int {
	return d.documentOffset(c.Start) + c.ParseDistance
}

// containsErrorNode reports whether errNode lies in [start, end] of
// the terminal chain.
func containsErrorNode(start, end, errNode *tree.Node) bool {
	n := start
	for n != end && n != nil {
		if n == errNode {
			return true
		}
		n = n.NextTerm
	}
	return n == errNode
}

// validate replays candidate c with the incremental recognizer:
// reconstruct the outer state stack up to c.Start, shift the box
// marker, then try to parse past c.End until at least maxTokens more
// non-whitespace terminals and at least maxDist characters have been
// parsed (0 adds no distance requirement). A candidate
// survives only if that succeeds and either it fixed the error
// directly (SeenError) or it wraps the error node.
func (d *Detector) validate(c Candidate, errNode *tree.Node, maxDist int) (bool, int) {
	inc := recognizer.NewIncremental(d.OuterTable)
	inc.SetErrorNode(errNode)
	if !inc.Preparse(c.Start) {
		return false, 0
	}
	marker := recognizer.Token{Kind: "<" + c.Language + ">"}
	if !inc.ParseSingle(marker) {
		return false, 0
	}
	afterEnd := c.End.NextTerm
	if afterEnd == nil {
		return false, 0
	}
	src := recognizer.NewLexSource(afterEnd, d.OuterLex)
	if !inc.ParseAfter(src, d.Config.MaxTokens, maxDist) {
		return false, 0
	}
	if !inc.SeenError() && !containsErrorNode(c.Start, c.End, errNode) {
		return false, 0
	}
	return true, inc.AbsParseDistance() + c.ParseDistance
}

// candidateKey identifies a candidate by the tuple the original's
// `filtered` set dedupes on, so the same (start, end, lang, split)
// proposed independently by more than one heuristic is only kept once.
type candidateKey struct {
	start, end *tree.Node
	lang       string
	split      int
}

func keyOf(c Candidate) candidateKey {
	return candidateKey{c.Start, c.End, c.Language, c.Split}
}

// rankAndFilter sorts candidates by decreasing reach and keeps the
// first one that validates, then keeps every later candidate whose
// validated reach matches or exceeds that first one's, deduping
// identical (start, end, lang, split) tuples along the way.
func (d *Detector) rankAndFilter(valid []Candidate, errNode *tree.Node) []Candidate {
	sort.SliceStable(valid, func(i, j int) bool {
		return d.reach(valid[i]) > d.reach(valid[j])
	})
	var accepted []Candidate
	seen := map[candidateKey]bool{}
	maxReach := 0
	for _, c := range valid {
		if seen[keyOf(c)] {
			continue
		}
		if maxReach == 0 {
			if ok, measured := d.validate(c, errNode, 0); ok {
				maxReach = measured
				accepted = append(accepted, c)
				seen[keyOf(c)] = true
			}
			continue
		}
		newDist := maxReach - d.documentOffset(c.Start) - c.ParseDistance
		if ok, measured := d.validate(c, errNode, newDist); ok && measured >= maxReach {
			accepted = append(accepted, c)
			seen[keyOf(c)] = true
		}
	}
	return accepted
}

func toTreeCandidates(cs []Candidate) []tree.Candidate {
	out := make([]tree.Candidate, len(cs))
	for i, c := range cs {
		out[i] = tree.Candidate{Start: c.Start, End: c.End, Language: c.Language}
	}
	return out
}

// Detect runs all three heuristics against errNode, ranks and
// validates the candidates they produce, and stores the surviving
// list on errNode.Autobox/AutoboxChoices for the UI to offer. A prior
// user revert (errNode.Autobox == AutoboxReverted) short-circuits
// detection entirely.
func (d *Detector) Detect(errNode *tree.Node) []Candidate {
	if errNode.Autobox == tree.AutoboxReverted {
		return nil
	}

	hist := d.historyHeuristic(errNode)
	stack := d.stackHeuristic(errNode)
	line := d.lineHeuristic(errNode)
	d.Stats.HistoryCandidates += len(hist)
	d.Stats.StackCandidates += len(stack)
	d.Stats.LineCandidates += len(line)

	valid := make([]Candidate, 0, len(hist)+len(stack)+len(line))
	valid = append(valid, hist...)
	valid = append(valid, stack...)
	valid = append(valid, line...)

	accepted := d.rankAndFilter(valid, errNode)
	d.Stats.Accepted += len(accepted)
	for _, c := range accepted {
		switch c.Heuristic {
		case "history":
			d.Stats.AcceptedFromHistory++
		case "stack":
			d.Stats.AcceptedFromStack++
		case "line":
			d.Stats.AcceptedFromLine++
		}
	}

	if len(accepted) > 0 {
		errNode.Autobox = tree.AutoboxList
		errNode.AutoboxChoices = toTreeCandidates(accepted)
	} else {
		errNode.Autobox = tree.AutoboxUnset
		errNode.AutoboxChoices = nil
	}
	return accepted
}

// CheckRemoveLbox is the inverse of Detect: given a language-box
// marker, replay the outer grammar across its embedded content from
// the live parser stack position and report whether it parses
// cleanly into the outer grammar, meaning the box could be deleted
// without the outer parse noticing. It does not mutate magic or the
// tree; emitting the box.tbd = "remove" host event on a true result
// belongs to hostbridge.
func (d *Detector) CheckRemoveLbox(magic *tree.Node) bool {
	if magic.Kind != tree.KindMagic || magic.Box == nil {
		return false
	}
	states := liveStackStates(magic)
	text := magic.BoxText()
	src := dfa.StringSource(text)
	pos := 0
	for {
		if _, _, ok := src.RuneAt(pos); !ok {
			return true
		}
		tok, err := d.OuterLex.Next(src, pos)
		if err != nil {
			return false
		}
		var advanced bool
		states, advanced = recognizer.TempParse(d.OuterTable, states, syntaxtable.Symbol(tok.Kind))
		if !advanced {
			return false
		}
		pos = tok.End
	}
}

// liveStackStates reconstructs the live parser's state stack (bottom
// to top) by walking magic's ancestor chain to the root and reading
// each ancestor's State field, the Go stand-in for the original's
// direct access to the parser's own stack of parse items.
func liveStackStates(n *tree.Node) []int {
	var ancestors []int
	for cur := n; cur != nil; cur = cur.Parent {
		ancestors = append(ancestors, cur.State)
	}
	out := make([]int, 0, len(ancestors)+1)
	out = append(out, 0)
	for i := len(ancestors) - 1; i >= 0; i-- {
		out = append(out, ancestors[i])
	}
	return out
}
