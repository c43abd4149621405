package compiler

import (
	"fmt"
	"log/slog"
	"math/big"
)

// Evaluator walks the AST directly, independent of the
// IR the analyzer builds — an interpreter can run a source that never
// passed through Analyze at all. Return is implemented by threading a
// (value, returned, err) triple back up through every statement-
// executing function rather than using panic/recover for control flow.
type Evaluator struct {
	logger *slog.Logger
}

func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// EvaluateSource runs every statement of src in scope, returning the
// value of a top-level `return`, if any, or NullValue otherwise.
func EvaluateSource(src *Source, scope *Scope[Value], logger *slog.Logger) (Value, error) {
	e := NewEvaluator(logger)
	v, returned, err := e.execBlock(src.Statements, scope)
	if err != nil {
		return nil, err
	}
	if returned {
		return v, nil
	}
	return NullValue{}, nil
}

// execBlock runs stmts in scope in order. If a return is hit, it stops
// immediately and reports (value, true, nil); scopes nested deeper than
// the block (If/For bodies) unwind naturally since each owns its own
// child Scope that simply goes out of use once its exec call returns.
func (e *Evaluator) execBlock(stmts []Stmt, scope *Scope[Value]) (Value, bool, error) {
	for _, s := range stmts {
		v, returned, err := e.execStmt(s, scope)
		if err != nil {
			return nil, false, err
		}
		if returned {
			return v, true, nil
		}
	}
	return NullValue{}, false, nil
}

func (e *Evaluator) execStmt(s Stmt, scope *Scope[Value]) (Value, bool, error) {
	switch n := s.(type) {
	case *LetStmt:
		return e.execLet(n, scope)
	case *DefStmt:
		return e.execDef(n, scope)
	case *IfStmt:
		return e.execIf(n, scope)
	case *ForStmt:
		return e.execFor(n, scope)
	case *ReturnStmt:
		return e.execReturn(n, scope)
	case *ExpressionStmt:
		if _, err := e.eval(n.Expr, scope); err != nil {
			return nil, false, err
		}
		return NullValue{}, false, nil
	case *AssignmentStmt:
		return e.execAssignment(n, scope)
	default:
		return nil, false, &EvaluateError{Message: "unsupported statement", Node: s}
	}
}

func (e *Evaluator) execLet(n *LetStmt, scope *Scope[Value]) (Value, bool, error) {
	var v Value = NullValue{}
	if n.Value != nil {
		val, err := e.eval(n.Value, scope)
		if err != nil {
			return nil, false, err
		}
		v = val
	}
	if !scope.Define(n.Name, v) {
		return nil, false, &EvaluateError{Message: fmt.Sprintf("%q is already defined in this scope", n.Name), Node: n}
	}
	return NullValue{}, false, nil
}

// execDef binds a closure over the defining scope: the
// Invoke function captures `scope` by reference, so later assignments
// visible to the definition site are visible inside the call too.
func (e *Evaluator) execDef(n *DefStmt, scope *Scope[Value]) (Value, bool, error) {
	fn := e.makeClosure(n, scope)
	if !scope.Define(n.Name, fn) {
		return nil, false, &EvaluateError{Message: fmt.Sprintf("%q is already defined in this scope", n.Name), Node: n}
	}
	return NullValue{}, false, nil
}

func (e *Evaluator) makeClosure(n *DefStmt, defScope *Scope[Value]) FuncValue {
	return e.makeClosureWithReceiver(n, defScope, false)
}

// makeMethodClosure builds the closure bound into an object's own scope
// for a method definition. A method closure expects `receiver :: args…`:
// the caller (evalMethodCall) always prepends the receiver as args[0].
// It rejects `this` as an explicit parameter name and binds `this` to
// the receiver in the parameter scope.
func (e *Evaluator) makeMethodClosure(n *DefStmt, defScope *Scope[Value]) FuncValue {
	return e.makeClosureWithReceiver(n, defScope, true)
}

func (e *Evaluator) makeClosureWithReceiver(n *DefStmt, defScope *Scope[Value], isMethod bool) FuncValue {
	return FuncValue{
		Name: n.Name,
		Invoke: func(args []Value) (Value, error) {
			want := len(n.Params)
			if isMethod {
				want++
			}
			if len(args) != want {
				return nil, &EvaluateError{Message: fmt.Sprintf("%s expects %d argument(s), got %d", n.Name, want, len(args)), Node: n}
			}
			callScope := NewScope[Value](defScope)
			if isMethod {
				for _, p := range n.Params {
					if p.Name == "this" {
						return nil, &EvaluateError{Message: `"this" used as explicit parameter name`, Node: n}
					}
				}
				callScope.Define("this", args[0])
				for i, p := range n.Params {
					callScope.Define(p.Name, args[i+1])
				}
			} else {
				for i, p := range n.Params {
					callScope.Define(p.Name, args[i])
				}
			}
			e.logger.Debug("push call frame", slog.String("function", n.Name), slog.Int("args", len(args)))
			v, returned, err := e.execBlock(n.Body, callScope)
			e.logger.Debug("pop call frame", slog.String("function", n.Name))
			if err != nil {
				return nil, err
			}
			if returned {
				return v, nil
			}
			return NullValue{}, nil
		},
	}
}

func (e *Evaluator) execIf(n *IfStmt, scope *Scope[Value]) (Value, bool, error) {
	cond, err := e.eval(n.Cond, scope)
	if err != nil {
		return nil, false, err
	}
	b, ok := cond.(BoolValue)
	if !ok {
		return nil, false, &EvaluateError{Message: "if condition must evaluate to Boolean", Node: n}
	}
	if bool(b) {
		return e.execBlock(n.ThenBody, NewScope[Value](scope))
	}
	if n.ElseBody != nil {
		return e.execBlock(n.ElseBody, NewScope[Value](scope))
	}
	return NullValue{}, false, nil
}

func (e *Evaluator) execFor(n *ForStmt, scope *Scope[Value]) (Value, bool, error) {
	iterable, err := e.eval(n.Expr, scope)
	if err != nil {
		return nil, false, err
	}
	it, ok := iterable.(IterValue)
	if !ok {
		return nil, false, &EvaluateError{Message: "for expression must evaluate to an iterable", Node: n}
	}
	for _, elem := range it.Elements {
		loopScope := NewScope[Value](scope)
		loopScope.Define(n.Name, elem)
		v, returned, err := e.execBlock(n.Body, loopScope)
		if err != nil {
			return nil, false, err
		}
		if returned {
			return v, true, nil
		}
	}
	return NullValue{}, false, nil
}

func (e *Evaluator) execReturn(n *ReturnStmt, scope *Scope[Value]) (Value, bool, error) {
	if n.Value == nil {
		return NullValue{}, true, nil
	}
	v, err := e.eval(n.Value, scope)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (e *Evaluator) execAssignment(n *AssignmentStmt, scope *Scope[Value]) (Value, bool, error) {
	v, err := e.eval(n.Value, scope)
	if err != nil {
		return nil, false, err
	}
	switch target := n.Target.(type) {
	case *VariableExpr:
		if !scope.Assign(target.Name, v) {
			return nil, false, &EvaluateError{Message: fmt.Sprintf("assignment to undefined variable %q", target.Name), Node: n}
		}
		return NullValue{}, false, nil
	case *PropertyExpr:
		recv, err := e.eval(target.Receiver, scope)
		if err != nil {
			return nil, false, err
		}
		obj, ok := recv.(*ObjectValue)
		if !ok {
			return nil, false, &EvaluateError{Message: "cannot assign property on a non-object", Node: n}
		}
		if !obj.Scope.Assign(target.Name, v) {
			return nil, false, &EvaluateError{Message: fmt.Sprintf("object has no property %q", target.Name), Node: n}
		}
		return NullValue{}, false, nil
	default:
		return nil, false, &EvaluateError{Message: "invalid assignment target", Node: n}
	}
}

// ---- Expressions ----

func (e *Evaluator) eval(expr Expr, scope *Scope[Value]) (Value, error) {
	switch n := expr.(type) {
	case *LiteralExpr:
		return n.Value, nil
	case *GroupExpr:
		return e.eval(n.Inner, scope)
	case *BinaryExpr:
		return e.evalBinary(n, scope)
	case *VariableExpr:
		v, ok := scope.Resolve(n.Name, false)
		if !ok {
			return nil, &EvaluateError{Message: fmt.Sprintf("undefined variable %q", n.Name), Node: n}
		}
		return v, nil
	case *PropertyExpr:
		recv, err := e.eval(n.Receiver, scope)
		if err != nil {
			return nil, err
		}
		v, ok := e.lookupProperty(recv, n.Name)
		if !ok {
			return nil, &EvaluateError{Message: fmt.Sprintf("undefined property %q", n.Name), Node: n}
		}
		return v, nil
	case *FunctionExpr:
		return e.evalFunctionCall(n, scope)
	case *MethodExpr:
		return e.evalMethodCall(n, scope)
	case *ObjectExpr:
		return e.evalObject(n, scope)
	default:
		return nil, &EvaluateError{Message: "unsupported expression", Node: expr}
	}
}

// lookupProperty walks the prototype chain, via the
// explicit "prototype" binding in each object's own scope, bounded by
// maxPrototypeDepth to tolerate accidental cycles defensively.
func (e *Evaluator) lookupProperty(recv Value, name string) (Value, bool) {
	obj, ok := recv.(*ObjectValue)
	if !ok {
		return nil, false
	}
	depth := 0
	for obj != nil && depth < maxPrototypeDepth {
		if v, ok := obj.Scope.Resolve(name, true); ok {
			return v, true
		}
		proto, ok := obj.Scope.Resolve("prototype", true)
		if !ok {
			return nil, false
		}
		next, ok := proto.(*ObjectValue)
		if !ok {
			return nil, false
		}
		obj = next
		depth++
	}
	return nil, false
}

func (e *Evaluator) evalArgs(exprs []Expr, scope *Scope[Value]) ([]Value, error) {
	args := make([]Value, len(exprs))
	for i, ex := range exprs {
		v, err := e.eval(ex, scope)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (e *Evaluator) evalFunctionCall(n *FunctionExpr, scope *Scope[Value]) (Value, error) {
	v, ok := scope.Resolve(n.Name, false)
	if !ok {
		return nil, &EvaluateError{Message: fmt.Sprintf("undefined function %q", n.Name), Node: n}
	}
	fn, ok := v.(FuncValue)
	if !ok {
		return nil, &EvaluateError{Message: fmt.Sprintf("%q is not a function", n.Name), Node: n}
	}
	args, err := e.evalArgs(n.Args, scope)
	if err != nil {
		return nil, err
	}
	result, err := fn.Invoke(args)
	if err != nil {
		return nil, &EvaluateError{Message: err.Error(), Node: n}
	}
	return result, nil
}

func (e *Evaluator) evalMethodCall(n *MethodExpr, scope *Scope[Value]) (Value, error) {
	recv, err := e.eval(n.Receiver, scope)
	if err != nil {
		return nil, err
	}
	member, ok := e.lookupProperty(recv, n.Name)
	if !ok {
		return nil, &EvaluateError{Message: fmt.Sprintf("undefined method %q", n.Name), Node: n}
	}
	fn, ok := member.(FuncValue)
	if !ok {
		return nil, &EvaluateError{Message: fmt.Sprintf("%q is not a method", n.Name), Node: n}
	}
	args, err := e.evalArgs(n.Args, scope)
	if err != nil {
		return nil, err
	}
	// Methods prepend the current receiver as an implicit first
	// argument; the callee's closure binds it under `this`.
	callArgs := append([]Value{recv}, args...)
	result, err := fn.Invoke(callArgs)
	if err != nil {
		return nil, &EvaluateError{Message: err.Error(), Node: n}
	}
	return result, nil
}

func (e *Evaluator) evalObject(n *ObjectExpr, scope *Scope[Value]) (Value, error) {
	obj := &ObjectValue{Name: n.Name, Scope: NewScope[Value](nil)}
	memberScope := NewScope[Value](scope)
	for _, f := range n.Fields {
		if _, _, err := e.execLet(f, memberScope); err != nil {
			return nil, err
		}
		v, _ := memberScope.Resolve(f.Name, true)
		obj.Scope.Define(f.Name, v)
	}
	for _, m := range n.Methods {
		fn := e.makeMethodClosure(m, memberScope)
		obj.Scope.Define(m.Name, fn)
	}
	return obj, nil
}

func (e *Evaluator) evalBinary(n *BinaryExpr, scope *Scope[Value]) (Value, error) {
	if n.Op == "AND" || n.Op == "OR" {
		return e.evalShortCircuit(n, scope)
	}

	left, err := e.eval(n.Left, scope)
	if err != nil {
		return nil, err
	}
	right, err := e.eval(n.Right, scope)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "==":
		return BoolValue(valuesEqual(left, right)), nil
	case "!=":
		return BoolValue(!valuesEqual(left, right)), nil
	case "<", "<=", ">", ">=":
		return e.evalCompare(n, left, right)
	case "+":
		if ls, ok := left.(StrValue); ok {
			return ls + StrValue(right.String()), nil
		}
		if rs, ok := right.(StrValue); ok {
			return StrValue(left.String()) + rs, nil
		}
		return e.evalArith(n, left, right)
	case "-", "*", "/":
		return e.evalArith(n, left, right)
	default:
		return nil, &EvaluateError{Message: fmt.Sprintf("unknown operator %q", n.Op), Node: n}
	}
}

// evalShortCircuit implements AND/OR without evaluating the right
// operand unless needed.
func (e *Evaluator) evalShortCircuit(n *BinaryExpr, scope *Scope[Value]) (Value, error) {
	left, err := e.eval(n.Left, scope)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(BoolValue)
	if !ok {
		return nil, &EvaluateError{Message: fmt.Sprintf("%s requires Boolean operands", n.Op), Node: n}
	}
	if n.Op == "AND" && !bool(lb) {
		return BoolValue(false), nil
	}
	if n.Op == "OR" && bool(lb) {
		return BoolValue(true), nil
	}
	right, err := e.eval(n.Right, scope)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(BoolValue)
	if !ok {
		return nil, &EvaluateError{Message: fmt.Sprintf("%s requires Boolean operands", n.Op), Node: n}
	}
	return rb, nil
}

// floorDivInt computes floor(a/b), unlike big.Int's Quo (truncated) or
// Div (Euclidean, always non-negative remainder).
func floorDivInt(a, b *big.Int) *big.Int {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return q
}

func asFloat(v Value) (*big.Float, bool) {
	switch t := v.(type) {
	case IntValue:
		return new(big.Float).SetMode(big.ToNearestEven).SetPrec(200).SetInt(t.V), true
	case DecValue:
		return t.V, true
	default:
		return nil, false
	}
}

func (e *Evaluator) evalCompare(n *BinaryExpr, left, right Value) (Value, error) {
	var cmp int
	switch l := left.(type) {
	case IntValue:
		r, ok := right.(IntValue)
		if ok {
			cmp = l.V.Cmp(r.V)
		} else if rf, ok := asFloat(right); ok {
			lf, _ := asFloat(left)
			cmp = lf.Cmp(rf)
		} else {
			return nil, &EvaluateError{Message: fmt.Sprintf("%s requires Comparable operands", n.Op), Node: n}
		}
	case DecValue:
		rf, ok := asFloat(right)
		if !ok {
			return nil, &EvaluateError{Message: fmt.Sprintf("%s requires Comparable operands", n.Op), Node: n}
		}
		cmp = l.V.Cmp(rf)
	case CharValue:
		r, ok := right.(CharValue)
		if !ok {
			return nil, &EvaluateError{Message: fmt.Sprintf("%s requires Comparable operands", n.Op), Node: n}
		}
		cmp = int(l) - int(r)
	case StrValue:
		r, ok := right.(StrValue)
		if !ok {
			return nil, &EvaluateError{Message: fmt.Sprintf("%s requires Comparable operands", n.Op), Node: n}
		}
		cmp = stringCompare(string(l), string(r))
	case BoolValue:
		r, ok := right.(BoolValue)
		if !ok {
			return nil, &EvaluateError{Message: fmt.Sprintf("%s requires Comparable operands", n.Op), Node: n}
		}
		cmp = boolCompare(bool(l), bool(r))
	default:
		return nil, &EvaluateError{Message: fmt.Sprintf("%s requires Comparable operands", n.Op), Node: n}
	}

	switch n.Op {
	case "<":
		return BoolValue(cmp < 0), nil
	case "<=":
		return BoolValue(cmp <= 0), nil
	case ">":
		return BoolValue(cmp > 0), nil
	case ">=":
		return BoolValue(cmp >= 0), nil
	default:
		return nil, &EvaluateError{Message: fmt.Sprintf("unknown comparison %q", n.Op), Node: n}
	}
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a && b:
		return -1
	default:
		return 1
	}
}

// evalArith implements + - * / over Integer/Decimal operands. Both
// operands must be the same numeric kind: Integer division floors
// toward negative infinity, Decimal arithmetic runs through
// big.Float at fixed precision with banker's rounding.
func (e *Evaluator) evalArith(n *BinaryExpr, left, right Value) (Value, error) {
	li, lIsInt := left.(IntValue)
	ri, rIsInt := right.(IntValue)
	if lIsInt && rIsInt {
		switch n.Op {
		case "+":
			return IntValue{new(big.Int).Add(li.V, ri.V)}, nil
		case "-":
			return IntValue{new(big.Int).Sub(li.V, ri.V)}, nil
		case "*":
			return IntValue{new(big.Int).Mul(li.V, ri.V)}, nil
		case "/":
			if ri.V.Sign() == 0 {
				return nil, &EvaluateError{Message: "division by zero", Node: n}
			}
			return IntValue{floorDivInt(li.V, ri.V)}, nil
		}
	}

	ld, lIsDec := left.(DecValue)
	rd, rIsDec := right.(DecValue)
	if !(lIsDec && rIsDec) {
		return nil, &EvaluateError{Message: fmt.Sprintf("%s requires both operands to be the same numeric kind", n.Op), Node: n}
	}
	lf, _ := asFloat(ld)
	rf, _ := asFloat(rd)
	result := new(big.Float).SetMode(big.ToNearestEven).SetPrec(200)
	switch n.Op {
	case "+":
		result.Add(lf, rf)
	case "-":
		result.Sub(lf, rf)
	case "*":
		result.Mul(lf, rf)
	case "/":
		if rf.Sign() == 0 {
			return nil, &EvaluateError{Message: "division by zero", Node: n}
		}
		result.Quo(lf, rf)
	}
	return DecValue{result}, nil
}
