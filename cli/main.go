package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/RobertP-SyndicateLabs/sic/compiler"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: sic <command> [args]")
		os.Exit(1)
	}

	cmd := os.Args[1]
	rest := os.Args[2:]

	switch cmd {
	case "lex":
		doLex(rest)
	case "parse":
		doParse(rest)
	case "analyze":
		doAnalyze(rest)
	case "run":
		doRun(rest)
	case "repl":
		doRepl(rest)
	default:
		fmt.Println("unknown command:", cmd)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("error reading file:", err)
		os.Exit(1)
	}
	return string(data)
}

func doLex(args []string) {
	fs := flag.NewFlagSet("lex", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Println("usage: sic lex <file.sic>")
		os.Exit(1)
	}
	filename := fs.Arg(0)
	src := readFile(filename)

	toks, err := compiler.Lex(src, filename)
	if err != nil {
		fmt.Println("lex error:", err)
		os.Exit(1)
	}
	for _, tok := range toks {
		fmt.Printf("%-12s %-20q (%s:%d:%d)\n", tok.Type, tok.Lexeme, tok.File, tok.Line, tok.Column)
	}
}

func doParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Println("usage: sic parse <file.sic>")
		os.Exit(1)
	}
	filename := fs.Arg(0)
	src := readFile(filename)

	toks, err := compiler.Lex(src, filename)
	if err != nil {
		fmt.Println("lex error:", err)
		os.Exit(1)
	}
	tree, err := compiler.ParseSource(toks)
	if err != nil {
		fmt.Println("parse error:", err)
		os.Exit(1)
	}
	fmt.Println(compiler.PrintAST(tree))
}

func doAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Println("usage: sic analyze <file.sic>")
		os.Exit(1)
	}
	filename := fs.Arg(0)
	src := readFile(filename)

	tree, err := parseFile(src, filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	ir, err := compiler.AnalyzeSource(tree)
	if err != nil {
		fmt.Println("analyze error:", err)
		os.Exit(1)
	}
	fmt.Println(compiler.PrintIR(ir))
}

func doRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	verbose := fs.Bool("v", false, "enable debug logging")
	skipAnalyze := fs.Bool("no-analyze", false, "skip semantic analysis before running")
	fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Println("usage: sic run [-v] [-no-analyze] <file.sic>")
		os.Exit(1)
	}
	filename := fs.Arg(0)
	src := readFile(filename)
	logger := newLogger(*verbose)

	tree, err := parseFile(src, filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if !*skipAnalyze {
		if _, err := compiler.AnalyzeSource(tree); err != nil {
			fmt.Println("analyze error:", err)
			os.Exit(1)
		}
	}

	scope := compiler.NewGlobalScope(logger)
	result, err := compiler.EvaluateSource(tree, scope, logger)
	if err != nil {
		fmt.Println("evaluate error:", err)
		os.Exit(1)
	}
	logger.Debug("program finished", slog.String("result", result.String()))
}

func parseFile(src, filename string) (*compiler.Source, error) {
	toks, err := compiler.Lex(src, filename)
	if err != nil {
		return nil, fmt.Errorf("lex error: %w", err)
	}
	tree, err := compiler.ParseSource(toks)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree, nil
}
