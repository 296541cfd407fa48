package langregistry

import (
	"errors"
	"strings"
	"testing"

	"github.com/ecolang/eco/dfa"
	"github.com/ecolang/eco/syntaxtable"
)

func tinyTables() Tables {
	tbl := syntaxtable.NewStaticTable()
	tbl.SetAccept(0, "$")
	lex := &dfa.Table{States: []dfa.LexState{{AcceptKind: "WORD"}}}
	return Tables{Syntax: tbl, Lex: lex}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(Descriptor{Name: "json", Extensions: []string{".json"}})
	d, ok := r.Get("json")
	if !ok || d.Name != "json" {
		t.Fatalf("Get(json) = %v, %v", d, ok)
	}
	if _, ok := r.Get("yaml"); ok {
		t.Fatal("expected yaml to be absent")
	}
}

func TestDetectByFilenamePrefersLongestExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(Descriptor{Name: "go", Extensions: []string{".go"}})
	r.Register(Descriptor{Name: "gotest", Extensions: []string{"_test.go"}})

	d, ok := r.DetectByFilename("widget_test.go")
	if !ok {
		t.Fatal("expected a match")
	}
	if d.Name != "gotest" {
		t.Fatalf("DetectByFilename = %s, want gotest (longer suffix)", d.Name)
	}
}

func TestDetectByFilenameNoMatch(t *testing.T) {
	r := NewRegistry()
	r.Register(Descriptor{Name: "go", Extensions: []string{".go"}})
	if _, ok := r.DetectByFilename("main.py"); ok {
		t.Fatal("expected no match for unregistered extension")
	}
}

func TestDetectByShebang(t *testing.T) {
	r := NewRegistry()
	r.Register(Descriptor{Name: "python", Shebangs: []string{"#!/usr/bin/env python"}})
	d, ok := r.DetectByShebang("#!/usr/bin/env python3\n")
	if !ok || d.Name != "python" {
		t.Fatalf("DetectByShebang = %v, %v", d, ok)
	}
}

func TestDescriptorIncludes(t *testing.T) {
	d := Descriptor{Name: "html", IncludedLangs: []string{"css", "js"}}
	if !d.Includes("css") {
		t.Fatal("expected html to include css")
	}
	if d.Includes("python") {
		t.Fatal("expected html not to include python")
	}
}

func TestEvaluateSupportReportsDFABackend(t *testing.T) {
	d := Descriptor{Name: "json", Load: func() (Tables, error) { return tinyTables(), nil }}
	sup := EvaluateSupport(d)
	if sup.Backend != BackendDFA {
		t.Fatalf("Backend = %v, want dfa (reason: %s)", sup.Backend, sup.Reason)
	}
}

func TestEvaluateSupportNoLoad(t *testing.T) {
	sup := EvaluateSupport(Descriptor{Name: "stub"})
	if sup.Backend != BackendUnsupported {
		t.Fatalf("Backend = %v, want unsupported", sup.Backend)
	}
}

func TestEvaluateSupportMissingLexStates(t *testing.T) {
	d := Descriptor{Name: "empty", Load: func() (Tables, error) {
		tbl := syntaxtable.NewStaticTable()
		return Tables{Syntax: tbl, Lex: &dfa.Table{}}, nil
	}}
	sup := EvaluateSupport(d)
	if sup.Backend != BackendUnsupported {
		t.Fatalf("Backend = %v, want unsupported (no lex states)", sup.Backend)
	}
	if !strings.Contains(sup.Reason, "lexer") {
		t.Fatalf("Reason = %q, want it to mention the missing lexer", sup.Reason)
	}
}

func TestEvaluateSupportLoadError(t *testing.T) {
	wantErr := errors.New("boom")
	d := Descriptor{Name: "broken", Load: func() (Tables, error) { return Tables{}, wantErr }}
	sup := EvaluateSupport(d)
	if !errors.Is(sup.LoadErr, wantErr) {
		t.Fatalf("LoadErr = %v, want %v", sup.LoadErr, wantErr)
	}
}

func TestConfigBuildWiresLoaders(t *testing.T) {
	cfg := Config{Languages: []LanguageConfig{
		{Name: "json", Extensions: []string{".json"}},
		{Name: "noloader", Extensions: []string{".nl"}},
	}}
	loaders := Loaders{
		"json": {Load: func() (Tables, error) { return tinyTables(), nil }},
	}
	reg := cfg.Build(loaders)

	d, ok := reg.Get("json")
	if !ok || d.Load == nil {
		t.Fatal("expected json to have a Load func wired from loaders")
	}
	if sup := EvaluateSupport(*d); sup.Backend != BackendDFA {
		t.Fatalf("json Backend = %v, want dfa", sup.Backend)
	}

	nl, ok := reg.Get("noloader")
	if !ok || nl.Load != nil {
		t.Fatal("expected noloader to register with a nil Load")
	}
	if sup := EvaluateSupport(*nl); sup.Backend != BackendUnsupported {
		t.Fatalf("noloader Backend = %v, want unsupported", sup.Backend)
	}
}
