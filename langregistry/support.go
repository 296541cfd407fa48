package langregistry

// Backend names what this core can actually do with a language's
// tables once loaded.
type Backend string

const (
	BackendUnsupported Backend = "unsupported"
	BackendDFA         Backend = "dfa"
)

// Support summarizes whether a Descriptor can be used as an
// embeddable guest language, repurposing EvaluateParseSupport's
// "can this language parse at all" report into "can this language be
// loaded as a box guest" — this core never drives a TokenSourceFactory
// backend the way the teacher's editor does for languages with hand
// written scanners, so Backend only ever resolves to dfa or
// unsupported.
type Support struct {
	Name       string
	Backend    Backend
	Reason     string
	HasLexer   bool
	HasSyntax  bool
	LoadErr    error
}

// EvaluateSupport loads d's tables (if Load is set) and reports
// whether the result is usable as a box guest. Grounded on
// EvaluateParseSupport in grammars/support.go.
func EvaluateSupport(d Descriptor) Support {
	report := Support{Name: d.Name, Backend: BackendUnsupported}

	if d.Load == nil {
		report.Reason = "descriptor has no Load function"
		return report
	}

	tables, err := d.Load()
	if err != nil {
		report.LoadErr = err
		report.Reason = "Load failed: " + err.Error()
		return report
	}

	report.HasSyntax = tables.Syntax != nil
	report.HasLexer = tables.Lex != nil && len(tables.Lex.States) > 0

	if !report.HasSyntax {
		report.Reason = "missing syntax table"
		return report
	}
	if !report.HasLexer {
		report.Reason = "missing DFA lexer states"
		return report
	}

	report.Backend = BackendDFA
	report.Reason = "dfa lexer + syntax table"
	return report
}

// AuditSupport evaluates every descriptor in r.
func AuditSupport(r *Registry) []Support {
	all := r.All()
	out := make([]Support, 0, len(all))
	for _, d := range all {
		out = append(out, EvaluateSupport(d))
	}
	return out
}
