// Command ecocore drives the incremental lexer and language-box
// detector over a single document from the command line, letting a
// developer exercise the pipeline without a GUI: load a lexer
// grammar and a source file, lex it into a tree, and either print a
// one-shot detection report, serve the tree over hostbridge, or
// expose the same operations as MCP tools.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ecolang/eco/dfa"
	"github.com/ecolang/eco/hostbridge"
	"github.com/ecolang/eco/langregistry"
	"github.com/ecolang/eco/recognizer"
	"github.com/ecolang/eco/syntaxtable"
)

func main() {
	lexPath := flag.String("lex", "", "path to a dfa lexer grammar file (see dfa.ParseGrammar)")
	sourcePath := flag.String("source", "", "path to the source file to load")
	at := flag.Int("at", -1, "byte offset to simulate a parse error at and run detection (-1 = skip)")
	serve := flag.String("serve", "", "address to serve the hostbridge websocket endpoint on (empty = don't serve)")
	mcpAddr := flag.String("mcp", "", "start an MCP tool server over stdio instead of a one-shot report (value is informational)")
	flag.Parse()

	if *lexPath == "" || *sourcePath == "" {
		fmt.Fprintln(os.Stderr, "ecocore: -lex and -source are required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lex, err := loadLexer(*lexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ecocore: %v\n", err)
		os.Exit(1)
	}
	source, err := os.ReadFile(*sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ecocore: %v\n", err)
		os.Exit(1)
	}

	table, reg := demoGrammar()
	engine, err := NewEngine(string(source), lex, table, reg, "host")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ecocore: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *mcpAddr != "":
		if err := serveMCP(engine); err != nil {
			fmt.Fprintf(os.Stderr, "ecocore: mcp: %v\n", err)
			os.Exit(1)
		}
	case *serve != "":
		if err := serveBridge(ctx, engine, *serve); err != nil {
			fmt.Fprintf(os.Stderr, "ecocore: serve: %v\n", err)
			os.Exit(1)
		}
	default:
		report(engine, *at)
	}
}

// loadLexer parses a grammar file into compiled DFA rules.
func loadLexer(path string) (*dfa.Lexer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rules, indentation, err := dfa.ParseGrammar(f)
	if err != nil {
		return nil, err
	}
	table, err := dfa.CompileRules(rules)
	if err != nil {
		return nil, err
	}
	table.Indentation = indentation
	return dfa.NewLexer(table), nil
}

// demoGrammar builds the illustrative host/guest pair this command
// ships with, since compiling a real LR table from a grammar file is
// the external collaborator spec.md names as out of scope: a host
// table that shifts ID, NUM and OP tokens (or a "<calc>" box) back to its
// own start state and accepts on end of input, plus one registered
// guest language ("calc") accepting a bare NUM, the same shape
// lbox's own tests exercise.
func demoGrammar() (*syntaxtable.StaticTable, *langregistry.Registry) {
	host := syntaxtable.NewStaticTable()
	for _, kind := range []syntaxtable.Symbol{"ID", "NUM", "OP", "<calc>"} {
		host.SetShift(0, kind, 0)
	}
	host.SetAccept(0, recognizer.EOS)

	guest := syntaxtable.NewStaticTable()
	guest.SetShift(0, "NUM", 1)
	guest.SetAccept(1, recognizer.EOS)
	guestLexTable, err := dfa.CompileRules([]dfa.Rule{
		{Kind: "NUM", Pattern: "[0-9]+", Priority: 1},
		{Kind: "", Pattern: "[ \t]+", Priority: 1},
	})
	if err != nil {
		panic("ecocore: demo guest grammar failed to compile: " + err.Error())
	}

	reg := langregistry.NewRegistry()
	reg.Register(langregistry.Descriptor{Name: "host", IncludedLangs: []string{"calc"}})
	reg.Register(langregistry.Descriptor{Name: "calc", Load: func() (langregistry.Tables, error) {
		return langregistry.Tables{Syntax: guest, Lex: guestLexTable}, nil
	}})
	return host, reg
}

// report prints the loaded document's size and, if at >= 0, the
// detector's ranked candidates there.
func report(e *Engine, at int) {
	text := e.Text()
	fmt.Printf("loaded %d bytes\n", len(text))
	if at < 0 {
		return
	}
	autobox, ok := e.ReportError(at)
	if !ok {
		fmt.Printf("no language-box candidates at offset %d\n", at)
		return
	}
	fmt.Printf("candidates at offset %d:\n", autobox.At)
	for _, c := range autobox.Choices {
		fmt.Printf("  [%d,%d) language=%s\n", c.Start, c.End, c.Language)
	}
}

// serveBridge hosts the engine over hostbridge until ctx is canceled,
// grounded on mane's main.go http.Server+signal.NotifyContext
// shutdown pattern.
func serveBridge(ctx context.Context, e *Engine, addr string) error {
	srv := hostbridge.NewServer(e)
	httpSrv := &http.Server{Addr: addr, Handler: srv}

	go func() {
		<-ctx.Done()
		httpSrv.Close()
	}()

	fmt.Printf("ecocore: hostbridge listening on %s\n", addr)
	err := httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// serveMCP exposes the same detect/check-remove operations as MCP
// tools over stdio, generalizing mcp_integration.go's tool-registration
// pattern from editor-navigation tools to this core's operations.
func serveMCP(e *Engine) error {
	s := mcpserver.NewMCPServer("ecocore", "0.1.0")

	detectTool := mcp.NewTool("detect_lbox",
		mcp.WithDescription("Run the language-box detector at a byte offset, as if a parse error were raised there"),
		mcp.WithNumber("offset", mcp.Required(), mcp.Description("byte offset of the simulated parse error")),
	)
	s.AddTool(detectTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		offset, err := intArg(req, "offset")
		if err != nil {
			return nil, err
		}
		autobox, ok := e.ReportError(offset)
		if !ok {
			return mcp.NewToolResultText("no candidates"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%+v", autobox)), nil
	})

	checkRemoveTool := mcp.NewTool("check_remove_lbox",
		mcp.WithDescription("Report whether the language box covering a byte offset can be removed"),
		mcp.WithNumber("offset", mcp.Required(), mcp.Description("byte offset inside the box's marker")),
	)
	s.AddTool(checkRemoveTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		offset, err := intArg(req, "offset")
		if err != nil {
			return nil, err
		}
		node := e.nodeAt(offset)
		if node == nil {
			return mcp.NewToolResultText("no node at offset"), nil
		}
		removable := e.detector.CheckRemoveLbox(node)
		return mcp.NewToolResultText(fmt.Sprintf("removable=%v", removable)), nil
	})

	return mcpserver.ServeStdio(s)
}

func intArg(req mcp.CallToolRequest, name string) (int, error) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("missing arguments")
	}
	v, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("argument %q must be a number", name)
	}
	return int(f), nil
}
