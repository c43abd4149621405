package compiler

import (
	"fmt"
	"strings"
)

// PrintAST renders a parsed Source as an indented s-expression tree,
// for `sic parse`'s output.
func PrintAST(src *Source) string {
	var sb strings.Builder
	sb.WriteString("(source\n")
	for _, s := range src.Statements {
		printStmt(&sb, s, 1)
	}
	sb.WriteString(")")
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func printStmt(sb *strings.Builder, s Stmt, depth int) {
	indent(sb, depth)
	switch n := s.(type) {
	case *LetStmt:
		sb.WriteString(fmt.Sprintf("(let %s", n.Name))
		if n.HasDeclaredType {
			sb.WriteString(fmt.Sprintf(" : %s", n.DeclaredType))
		}
		if n.Value != nil {
			sb.WriteString(" ")
			printExprInline(sb, n.Value)
		}
		sb.WriteString(")\n")
	case *DefStmt:
		sb.WriteString(fmt.Sprintf("(def %s (%s)", n.Name, printParams(n.Params)))
		if n.HasReturnType {
			sb.WriteString(fmt.Sprintf(" : %s", n.ReturnTypeName))
		}
		sb.WriteString("\n")
		printBody(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString(")\n")
	case *IfStmt:
		sb.WriteString("(if ")
		printExprInline(sb, n.Cond)
		sb.WriteString("\n")
		printBody(sb, n.ThenBody, depth+1)
		if n.ElseBody != nil {
			indent(sb, depth)
			sb.WriteString("else\n")
			printBody(sb, n.ElseBody, depth+1)
		}
		indent(sb, depth)
		sb.WriteString(")\n")
	case *ForStmt:
		sb.WriteString(fmt.Sprintf("(for %s in ", n.Name))
		printExprInline(sb, n.Expr)
		sb.WriteString("\n")
		printBody(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString(")\n")
	case *ReturnStmt:
		sb.WriteString("(return")
		if n.Value != nil {
			sb.WriteString(" ")
			printExprInline(sb, n.Value)
		}
		sb.WriteString(")\n")
	case *ExpressionStmt:
		printExprInline(sb, n.Expr)
		sb.WriteString("\n")
	case *AssignmentStmt:
		sb.WriteString("(assign ")
		printExprInline(sb, n.Target)
		sb.WriteString(" ")
		printExprInline(sb, n.Value)
		sb.WriteString(")\n")
	default:
		sb.WriteString(fmt.Sprintf("(unknown-stmt %T)\n", n))
	}
}

func printBody(sb *strings.Builder, body []Stmt, depth int) {
	for _, s := range body {
		printStmt(sb, s, depth)
	}
}

func printParams(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if p.HasType {
			parts[i] = fmt.Sprintf("%s:%s", p.Name, p.TypeName)
		} else {
			parts[i] = p.Name
		}
	}
	return strings.Join(parts, " ")
}

// printExprInline renders an expression as a single-line s-expression.
func printExprInline(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *LiteralExpr:
		sb.WriteString(n.Value.String())
	case *GroupExpr:
		sb.WriteString("(group ")
		printExprInline(sb, n.Inner)
		sb.WriteString(")")
	case *BinaryExpr:
		sb.WriteString(fmt.Sprintf("(%s ", n.Op))
		printExprInline(sb, n.Left)
		sb.WriteString(" ")
		printExprInline(sb, n.Right)
		sb.WriteString(")")
	case *VariableExpr:
		sb.WriteString(n.Name)
	case *PropertyExpr:
		sb.WriteString("(. ")
		printExprInline(sb, n.Receiver)
		sb.WriteString(" " + n.Name + ")")
	case *FunctionExpr:
		sb.WriteString(fmt.Sprintf("(call %s", n.Name))
		for _, a := range n.Args {
			sb.WriteString(" ")
			printExprInline(sb, a)
		}
		sb.WriteString(")")
	case *MethodExpr:
		sb.WriteString("(method-call ")
		printExprInline(sb, n.Receiver)
		sb.WriteString(" " + n.Name)
		for _, a := range n.Args {
			sb.WriteString(" ")
			printExprInline(sb, a)
		}
		sb.WriteString(")")
	case *ObjectExpr:
		name := n.Name
		if name == "" {
			name = "<anon>"
		}
		sb.WriteString(fmt.Sprintf("(object %s fields=%d methods=%d)", name, len(n.Fields), len(n.Methods)))
	default:
		sb.WriteString(fmt.Sprintf("(unknown-expr %T)", n))
	}
}
