package compiler

import (
	"fmt"
	"strings"
)

// PrintIR renders an analyzed IRSource as an indented s-expression
// tree, annotating every expression with its resolved type, for
// `sic analyze`'s output.
func PrintIR(ir *IRSource) string {
	var sb strings.Builder
	sb.WriteString("(source\n")
	for _, s := range ir.Statements {
		printIRStmt(&sb, s, 1)
	}
	sb.WriteString(")")
	return sb.String()
}

func printIRStmt(sb *strings.Builder, s IRStmt, depth int) {
	indent(sb, depth)
	switch n := s.(type) {
	case *IRLet:
		sb.WriteString(fmt.Sprintf("(let %s : %s", n.Name, n.VarType))
		if n.Value != nil {
			sb.WriteString(" ")
			printIRExprInline(sb, n.Value)
		}
		sb.WriteString(")\n")
	case *IRDef:
		sb.WriteString(fmt.Sprintf("(def %s : %s\n", n.Name, n.FuncType))
		printIRBody(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString(")\n")
	case *IRIf:
		sb.WriteString("(if ")
		printIRExprInline(sb, n.Cond)
		sb.WriteString("\n")
		printIRBody(sb, n.ThenBody, depth+1)
		if n.ElseBody != nil {
			indent(sb, depth)
			sb.WriteString("else\n")
			printIRBody(sb, n.ElseBody, depth+1)
		}
		indent(sb, depth)
		sb.WriteString(")\n")
	case *IRFor:
		sb.WriteString(fmt.Sprintf("(for %s in ", n.Name))
		printIRExprInline(sb, n.Expr)
		sb.WriteString("\n")
		printIRBody(sb, n.Body, depth+1)
		indent(sb, depth)
		sb.WriteString(")\n")
	case *IRReturn:
		sb.WriteString("(return")
		if n.Value != nil {
			sb.WriteString(" ")
			printIRExprInline(sb, n.Value)
		}
		sb.WriteString(")\n")
	case *IRExpressionStmt:
		printIRExprInline(sb, n.Expr)
		sb.WriteString("\n")
	case *IRAssignVariable:
		sb.WriteString(fmt.Sprintf("(assign %s ", n.Name))
		printIRExprInline(sb, n.Value)
		sb.WriteString(")\n")
	case *IRAssignProperty:
		sb.WriteString("(assign (. ")
		printIRExprInline(sb, n.Receiver)
		sb.WriteString(" " + n.Name + ") ")
		printIRExprInline(sb, n.Value)
		sb.WriteString(")\n")
	default:
		sb.WriteString(fmt.Sprintf("(unknown-stmt %T)\n", n))
	}
}

func printIRBody(sb *strings.Builder, body []IRStmt, depth int) {
	for _, s := range body {
		printIRStmt(sb, s, depth)
	}
}

func printIRExprInline(sb *strings.Builder, e IRExpr) {
	switch n := e.(type) {
	case *IRLiteral:
		sb.WriteString(fmt.Sprintf("%s:%s", n.Value.String(), n.Typ))
	case *IRGroup:
		sb.WriteString("(group ")
		printIRExprInline(sb, n.Inner)
		sb.WriteString(")")
	case *IRBinary:
		sb.WriteString(fmt.Sprintf("(%s:%s ", n.Op, n.Typ))
		printIRExprInline(sb, n.Left)
		sb.WriteString(" ")
		printIRExprInline(sb, n.Right)
		sb.WriteString(")")
	case *IRVariable:
		sb.WriteString(fmt.Sprintf("%s:%s", n.Name, n.Typ))
	case *IRProperty:
		sb.WriteString("(. ")
		printIRExprInline(sb, n.Receiver)
		sb.WriteString(fmt.Sprintf(" %s):%s", n.Name, n.Typ))
	case *IRFunctionCall:
		sb.WriteString(fmt.Sprintf("(call %s", n.Name))
		for _, a := range n.Args {
			sb.WriteString(" ")
			printIRExprInline(sb, a)
		}
		sb.WriteString(fmt.Sprintf("):%s", n.Typ))
	case *IRMethodCall:
		sb.WriteString("(method-call ")
		printIRExprInline(sb, n.Receiver)
		sb.WriteString(" " + n.Name)
		for _, a := range n.Args {
			sb.WriteString(" ")
			printIRExprInline(sb, a)
		}
		sb.WriteString(fmt.Sprintf("):%s", n.Typ))
	case *IRObject:
		name := n.Name
		if name == "" {
			name = "<anon>"
		}
		sb.WriteString(fmt.Sprintf("(object %s fields=%d methods=%d):%s", name, len(n.Fields), len(n.Methods), n.Typ))
	default:
		sb.WriteString(fmt.Sprintf("(unknown-expr %T)", n))
	}
}
