package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/RobertP-SyndicateLabs/sic/compiler"
)

const (
	replHistoryFile = ".sic_history"
	replPromptMain  = "sic> "
	replPromptCont  = " ... "
)

// doRepl is an interactive read-eval-print loop over a persistent
// global scope: a liner-backed prompt with history under $HOME,
// Ctrl+C aborting the current line, SIGTERM/SIGHUP flushing history on
// exit, and a read-until-it-parses probe so a statement can span
// multiple lines before its terminating `;`.
func doRepl(args []string) {
	fmt.Println("sic REPL. Ctrl+D exits. Type :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, replHistoryFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	logger := newLogger(false)
	scope := compiler.NewGlobalScope(logger)

	for {
		code, ok := readStmtByParseProbe(ln, replPromptMain, replPromptCont)
		if !ok {
			fmt.Println()
			return
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.ToLower(trimmed) == ":quit" {
				return
			}
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		tree, err := parseFile(code, "<repl>")
		if err != nil {
			fmt.Println(err)
			continue
		}

		result, err := compiler.EvaluateSource(tree, scope, logger)
		if err != nil {
			fmt.Println("evaluate error:", err)
			continue
		}
		fmt.Println(result.String())
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readStmtByParseProbe reads lines until the accumulated text parses as
// a Source, or the user aborts (EOF). A parse failure caused by running
// out of tokens mid-statement is treated as "need another line"; any
// other parse failure is reported as-is without reprompting, mirroring
// readByParseProbe's try-then-continue shape.
func readStmtByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var acc strings.Builder

	for {
		var line string
		var err error
		if acc.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if acc.Len() > 0 {
			acc.WriteByte('\n')
		}
		acc.WriteString(line)

		code := acc.String()
		trimmed := strings.TrimSpace(code)
		if trimmed == "" || strings.HasPrefix(trimmed, ":") {
			return code, true
		}

		toks, lexErr := compiler.Lex(code, "<repl>")
		if lexErr != nil {
			return code, true
		}
		if _, parseErr := compiler.ParseSource(toks); parseErr != nil {
			var pe *compiler.ParseError
			if errors.As(parseErr, &pe) && pe.Token.Type == compiler.TOK_EOF {
				continue // statement is incomplete; read another line
			}
			return code, true
		}
		return code, true
	}
}
