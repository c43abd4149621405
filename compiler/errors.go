package compiler

import "fmt"

// LexError reports a failure during tokenization, referring to the byte
// offset of the failing position.
type LexError struct {
	Message string
	Offset  int
	File    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error: %s (%s:offset %d)", e.Message, e.File, e.Offset)
}

// ParseError reports a failure during parsing, referring to the
// offending token (or EOF).
type ParseError struct {
	Message string
	Token   Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s (got %s)", e.Message, e.Token.String())
}

// AnalyzeError reports a failure during semantic analysis, referring to
// the offending AST node.
type AnalyzeError struct {
	Message string
	Node    Node
}

func (e *AnalyzeError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("analyze error: %s (at %s)", e.Message, e.Node.Pos().String())
	}
	return fmt.Sprintf("analyze error: %s", e.Message)
}

// EvaluateError reports a failure during evaluation, referring to the
// offending AST node.
type EvaluateError struct {
	Message string
	Node    Node
}

func (e *EvaluateError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("evaluate error: %s (at %s)", e.Message, e.Node.Pos().String())
	}
	return fmt.Sprintf("evaluate error: %s", e.Message)
}
