// Command braid is the CLI entry point wiring a Loader, a Parser, and
// a prelude-bootstrapped Context together (spec.md §1 lists "CLI
// framing, REPL, file-watch loop" as out of scope for the core,
// specified only by the interface "eval one AST against a mutable
// Context" — this command is that collaborator, not part of CORE).
//
// Grounded on the teacher's own cmd/funxy/main.go for the overall
// shape (flags, stdin/file dispatch, TTY-aware output), generalized
// from funxy's text source to braid's AST-only surface since no
// parser ships with this module.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/braidql/braid/internal/ast"
	"github.com/braidql/braid/internal/braiderr"
	"github.com/braidql/braid/internal/config"
	"github.com/braidql/braid/internal/prelude"
	"github.com/braidql/braid/internal/resource"
	"github.com/braidql/braid/internal/rng"
	"github.com/braidql/braid/internal/value"
)

// noParser reports Unimplemented for every call: this command wires
// a Parser slot (spec.md §6's `parse(text) -> AST`) but no concrete
// grammar ships with this module (§1 Non-goals / out-of-scope list).
// A real deployment supplies its own Parser implementation here.
type noParser struct{}

func (noParser) Parse(text string) (ast.Expression, error) {
	return nil, braiderr.New(braiderr.Unimplemented, "no parser is wired into this build of braid")
}

func main() {
	configPath := flag.String("config", "braid.yaml", "path to project configuration")
	flag.Parse()

	cfg := config.Default()
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var src rng.Source
	if cfg.Seed != nil {
		src = rng.NewDeterministic(*cfg.Seed)
	} else {
		src = rng.New()
	}

	loader, err := resource.NewFileLoader(cfg.CachePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	loader.SearchPaths = cfg.StdlibPaths

	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	path := "."
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	ctx, err := prelude.CreateCtx(path, prelude.Options{
		Out:    os.Stdout,
		RNG:    src,
		Loader: loader,
		Parser: noParser{},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	printBanner(ctx, isTTY)
}

func printBanner(ctx *value.Context, isTTY bool) {
	prefix := "::"
	if isTTY {
		prefix = "∷" // a plain Unicode geometric-proportion glyph, not an ANSI color code
	}
	fmt.Fprintf(ctx.Out, "%s braid ready at %s (no parser wired — load a Context and call eval.EvalExp directly)\n", prefix, ctx.Path)
}
