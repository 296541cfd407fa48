// Package langregistry maps language names and filenames to the
// tables a guest language needs to be embedded as a language box:
// a syntax table for the recognizer and a DFA lexer table, plus the
// host grammar's auto_allows/auto_limit_new rules. Grounded on
// LangEntry/Register/DetectLanguage in grammars/registry.go, reshaped
// around an explicit Registry value instead of a package-level slice
// (design note: no package-level global registry).
package langregistry

import (
	"strings"

	"github.com/ecolang/eco/dfa"
	"github.com/ecolang/eco/syntaxtable"
)

// Tables is what a Descriptor's Load returns: everything a recognizer
// needs to treat this language as a parseable guest.
type Tables struct {
	Syntax syntaxtable.Table
	Lex    *dfa.Table
}

// Descriptor is one registered language, mirroring LanguageDescriptor:
// load() -> (parser, lexer), included_langs, auto_allows, auto_limit_new.
type Descriptor struct {
	Name       string
	Extensions []string
	Shebangs   []string

	// Load lazily builds this language's tables. Called at most once
	// per Registry lookup site that needs them; descriptors for
	// languages that are never actually entered as a box pay nothing.
	Load func() (Tables, error)

	// IncludedLangs names the languages this one is willing to host
	// as a nested box (spec's included_langs set).
	IncludedLangs []string

	// AutoAllows mirrors the host grammar's auto_allows(sub,
	// token_kind) rule: given the name of a candidate guest language
	// and a token kind, reports whether this (the host) descriptor
	// permits starting that guest there. lbox.Detector partially
	// applies this with a fixed sub name to build the single-argument
	// closure recognizer.Recognizer.AutoAllows expects, since one
	// Recognizer instance is already scoped to one guest language.
	// Nil means "always allow".
	AutoAllows func(sub, tokenKind string) bool

	// AutoLimitNew mirrors auto_limit_new: when true, a candidate
	// language box may only end on nodes whose Version is at or after
	// a threshold the caller supplies (recognizer.LimitTokensNew and
	// MinVersion).
	AutoLimitNew bool
}

// Includes reports whether sub is in d's IncludedLangs.
func (d Descriptor) Includes(sub string) bool {
	for _, name := range d.IncludedLangs {
		if name == sub {
			return true
		}
	}
	return false
}

// Registry holds the descriptors a session has registered, in
// registration order. Callers thread a *Registry through explicitly
// (lbox.Detector, recognizer construction sites) rather than reaching
// for a package-level global, per design note.
type Registry struct {
	byName map[string]*Descriptor
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]*Descriptor{}}
}

// DefaultRegistry returns the process-wide set of languages this core
// ships loaders for, the way grammars.AllLanguages() does for the
// teacher's process. Grammar-to-LR-table compilation is an external
// collaborator this core does not implement, so there is no language
// this package can build tables for without a caller supplying its
// own compiled syntaxtable.Table and dfa.Table; DefaultRegistry
// therefore starts empty and callers Register() their own
// descriptors once they have tables to hand.
func DefaultRegistry() *Registry {
	return NewRegistry()
}

// Register adds or replaces a descriptor by name.
func (r *Registry) Register(d Descriptor) {
	if _, exists := r.byName[d.Name]; !exists {
		r.order = append(r.order, d.Name)
	}
	cp := d
	r.byName[d.Name] = &cp
}

// Get looks up a descriptor by name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// DetectByFilename matches by extension, longest suffix first so a
// more specific extension (".test.go") beats a shorter one (".go")
// when both are registered.
func (r *Registry) DetectByFilename(filename string) (*Descriptor, bool) {
	var best *Descriptor
	bestLen := -1
	for _, name := range r.order {
		d := r.byName[name]
		for _, ext := range d.Extensions {
			if strings.HasSuffix(filename, ext) && len(ext) > bestLen {
				best = d
				bestLen = len(ext)
			}
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// DetectByShebang checks a file's first line against registered
// shebangs.
func (r *Registry) DetectByShebang(firstLine string) (*Descriptor, bool) {
	for _, name := range r.order {
		d := r.byName[name]
		for _, shebang := range d.Shebangs {
			if strings.HasPrefix(firstLine, shebang) {
				return d, true
			}
		}
	}
	return nil, false
}

// All returns every registered descriptor in registration order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.byName[name])
	}
	return out
}
