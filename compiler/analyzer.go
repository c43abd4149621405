package compiler

import "fmt"

// Analyzer walks an AST, resolving every name and literal to a Type and
// producing the IR. It owns its own Scope[*Type] chain, separate from
// (and not sharing structure with) the evaluator's runtime Scope[Value]
// chain: the analyzer resolves properties against an object's own scope
// only, while the evaluator walks the prototype chain. This is a
// deliberate asymmetry, not an oversight.
type Analyzer struct {
	scope *Scope[*Type]
	// retType is the declared return type of the innermost enclosing
	// Def, used to check Return statements; nil at top level.
	retType *Type
}

func NewAnalyzer() *Analyzer {
	a := &Analyzer{scope: NewScope[*Type](nil)}
	installBuiltinTypes(a.scope)
	return a
}

func (a *Analyzer) fail(n Node, format string, args ...any) error {
	return &AnalyzeError{Message: fmt.Sprintf(format, args...), Node: n}
}

func (a *Analyzer) resolveTypeName(n Node, name string) (*Type, error) {
	switch name {
	case "Any":
		return ANY, nil
	case "Nil":
		return NIL, nil
	case "Dynamic":
		return DYNAMIC, nil
	case "Boolean":
		return BOOLEAN, nil
	case "Integer":
		return INTEGER, nil
	case "Decimal":
		return DECIMAL, nil
	case "Character":
		return CHARACTER, nil
	case "String":
		return STRING, nil
	case "Equatable":
		return EQUATABLE, nil
	case "Comparable":
		return COMPARABLE, nil
	case "Iterable":
		return ITERABLE, nil
	}
	if t, ok := a.scope.Resolve(name, false); ok {
		return t, nil
	}
	return nil, a.fail(n, "unknown type %q", name)
}

// AnalyzeSource is the entry point: analyze a parsed Source into IR.
func AnalyzeSource(src *Source) (*IRSource, error) {
	a := NewAnalyzer()
	return a.analyzeSource(src)
}

func (a *Analyzer) analyzeSource(src *Source) (*IRSource, error) {
	out := &IRSource{Token: src.Token}
	for _, s := range src.Statements {
		irs, err := a.analyzeStmt(s)
		if err != nil {
			return nil, err
		}
		out.Statements = append(out.Statements, irs)
	}
	return out, nil
}

func (a *Analyzer) analyzeBlock(stmts []Stmt) ([]IRStmt, error) {
	var out []IRStmt
	for _, s := range stmts {
		irs, err := a.analyzeStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, irs)
	}
	return out, nil
}

func (a *Analyzer) analyzeStmt(s Stmt) (IRStmt, error) {
	switch n := s.(type) {
	case *LetStmt:
		return a.analyzeLet(n)
	case *DefStmt:
		return a.analyzeDef(n)
	case *IfStmt:
		return a.analyzeIf(n)
	case *ForStmt:
		return a.analyzeFor(n)
	case *ReturnStmt:
		return a.analyzeReturn(n)
	case *ExpressionStmt:
		e, err := a.analyzeExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return &IRExpressionStmt{Token: n.Token, Expr: e}, nil
	case *AssignmentStmt:
		return a.analyzeAssignment(n)
	default:
		return nil, a.fail(s, "unsupported statement")
	}
}

func (a *Analyzer) analyzeLet(n *LetStmt) (IRStmt, error) {
	var declared *Type
	if n.HasDeclaredType {
		t, err := a.resolveTypeName(n, n.DeclaredType)
		if err != nil {
			return nil, err
		}
		declared = t
	}

	var value IRExpr
	var valueType *Type
	if n.Value != nil {
		v, err := a.analyzeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		value = v
		valueType = v.Type()
	}

	varType := declared
	switch {
	case declared != nil && value != nil:
		if !Subtype(valueType, declared) {
			return nil, a.fail(n, "cannot assign %s to declared type %s", valueType, declared)
		}
	case declared == nil && value != nil:
		varType = valueType
	case declared == nil && value == nil:
		varType = DYNAMIC
	}

	if !a.scope.Define(n.Name, varType) {
		return nil, a.fail(n, "%q is already defined in this scope", n.Name)
	}

	return &IRLet{Token: n.Token, Name: n.Name, VarType: varType, Value: value}, nil
}

func (a *Analyzer) analyzeDef(n *DefStmt) (IRStmt, error) {
	return a.analyzeDefOrMethod(n, nil)
}

// analyzeDefOrMethod analyzes a Def. When receiverType is non-nil, n is a
// method bound to an object's own scope: an explicit `this` parameter is
// rejected, and `this` is bound to receiverType inside the method's body
// scope so that a method may reference its receiver's members.
func (a *Analyzer) analyzeDefOrMethod(n *DefStmt, receiverType *Type) (IRStmt, error) {
	if receiverType != nil {
		for _, p := range n.Params {
			if p.Name == "this" {
				return nil, a.fail(n, "%q used as explicit parameter name", "this")
			}
		}
	}

	paramTypes := make([]*Type, len(n.Params))
	for i, p := range n.Params {
		if p.HasType {
			t, err := a.resolveTypeName(n, p.TypeName)
			if err != nil {
				return nil, err
			}
			paramTypes[i] = t
		} else {
			paramTypes[i] = DYNAMIC
		}
	}

	retType := DYNAMIC
	if n.HasReturnType {
		t, err := a.resolveTypeName(n, n.ReturnTypeName)
		if err != nil {
			return nil, err
		}
		retType = t
	}

	funcType := FunctionType(paramTypes, retType)
	if !a.scope.Define(n.Name, funcType) {
		return nil, a.fail(n, "%q is already defined in this scope", n.Name)
	}

	inner := &Analyzer{scope: NewScope[*Type](a.scope), retType: retType}
	if receiverType != nil {
		inner.scope.Define("this", receiverType)
	}
	paramNames := make([]string, len(n.Params))
	for i, p := range n.Params {
		paramNames[i] = p.Name
		if !inner.scope.Define(p.Name, paramTypes[i]) {
			return nil, inner.fail(n, "duplicate parameter %q", p.Name)
		}
	}
	// $RETURN is a synthetic binding recording the function's return type
	// inside its own body; Return statements are checked against retType.
	inner.scope.Define("$RETURN", retType)

	body, err := inner.analyzeBlock(n.Body)
	if err != nil {
		return nil, err
	}

	return &IRDef{
		Token: n.Token, Name: n.Name, ParamNames: paramNames,
		ParamTypes: paramTypes, ReturnType: retType, Body: body, FuncType: funcType,
	}, nil
}

func (a *Analyzer) analyzeIf(n *IfStmt) (IRStmt, error) {
	cond, err := a.analyzeExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	if !Subtype(cond.Type(), BOOLEAN) {
		return nil, a.fail(n, "if condition must be Boolean, got %s", cond.Type())
	}

	thenScope := &Analyzer{scope: NewScope[*Type](a.scope), retType: a.retType}
	thenBody, err := thenScope.analyzeBlock(n.ThenBody)
	if err != nil {
		return nil, err
	}

	var elseBody []IRStmt
	if n.ElseBody != nil {
		elseScope := &Analyzer{scope: NewScope[*Type](a.scope), retType: a.retType}
		elseBody, err = elseScope.analyzeBlock(n.ElseBody)
		if err != nil {
			return nil, err
		}
	}

	return &IRIf{Token: n.Token, Cond: cond, ThenBody: thenBody, ElseBody: elseBody}, nil
}

func (a *Analyzer) analyzeFor(n *ForStmt) (IRStmt, error) {
	expr, err := a.analyzeExpr(n.Expr)
	if err != nil {
		return nil, err
	}
	if !Subtype(expr.Type(), ITERABLE) {
		return nil, a.fail(n, "for expression must be Iterable, got %s", expr.Type())
	}

	inner := &Analyzer{scope: NewScope[*Type](a.scope), retType: a.retType}
	// The loop variable always binds INTEGER: the only built-in Iterable
	// producer is range(), and this keeps the common case type-checked
	// without a general element-type inference step.
	inner.scope.Define(n.Name, INTEGER)

	body, err := inner.analyzeBlock(n.Body)
	if err != nil {
		return nil, err
	}
	return &IRFor{Token: n.Token, Name: n.Name, Expr: expr, Body: body}, nil
}

func (a *Analyzer) analyzeReturn(n *ReturnStmt) (IRStmt, error) {
	if a.retType == nil {
		return nil, a.fail(n, "return outside of a function")
	}
	var value IRExpr
	if n.Value != nil {
		v, err := a.analyzeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		if !Subtype(v.Type(), a.retType) {
			return nil, a.fail(n, "return type %s incompatible with declared %s", v.Type(), a.retType)
		}
		value = v
	} else if !Subtype(NIL, a.retType) {
		return nil, a.fail(n, "bare return incompatible with declared return type %s", a.retType)
	}
	return &IRReturn{Token: n.Token, Value: value}, nil
}

func (a *Analyzer) analyzeAssignment(n *AssignmentStmt) (IRStmt, error) {
	value, err := a.analyzeExpr(n.Value)
	if err != nil {
		return nil, err
	}
	switch target := n.Target.(type) {
	case *VariableExpr:
		declared, ok := a.scope.Resolve(target.Name, false)
		if !ok {
			return nil, a.fail(n, "assignment to undefined variable %q", target.Name)
		}
		if !Subtype(value.Type(), declared) {
			return nil, a.fail(n, "cannot assign %s to %q of type %s", value.Type(), target.Name, declared)
		}
		return &IRAssignVariable{Token: n.Token, Name: target.Name, Value: value}, nil
	case *PropertyExpr:
		recv, err := a.analyzeExpr(target.Receiver)
		if err != nil {
			return nil, err
		}
		memberType, err := a.propertyType(n, recv.Type(), target.Name)
		if err != nil {
			return nil, err
		}
		if !Subtype(value.Type(), memberType) {
			return nil, a.fail(n, "cannot assign %s to %q of type %s", value.Type(), target.Name, memberType)
		}
		return &IRAssignProperty{Token: n.Token, Receiver: recv, Name: target.Name, Value: value}, nil
	default:
		return nil, a.fail(n, "invalid assignment target")
	}
}

// ---- Expressions ----

func (a *Analyzer) analyzeExpr(e Expr) (IRExpr, error) {
	switch n := e.(type) {
	case *LiteralExpr:
		return &IRLiteral{Token: n.Token, Value: n.Value, Typ: literalType(n.Value)}, nil
	case *GroupExpr:
		inner, err := a.analyzeExpr(n.Inner)
		if err != nil {
			return nil, err
		}
		return &IRGroup{Token: n.Token, Inner: inner}, nil
	case *BinaryExpr:
		return a.analyzeBinary(n)
	case *VariableExpr:
		t, ok := a.scope.Resolve(n.Name, false)
		if !ok {
			return nil, a.fail(n, "undefined variable %q", n.Name)
		}
		return &IRVariable{Token: n.Token, Name: n.Name, Typ: t}, nil
	case *PropertyExpr:
		recv, err := a.analyzeExpr(n.Receiver)
		if err != nil {
			return nil, err
		}
		typ, err := a.propertyType(n, recv.Type(), n.Name)
		if err != nil {
			return nil, err
		}
		return &IRProperty{Token: n.Token, Receiver: recv, Name: n.Name, Typ: typ}, nil
	case *FunctionExpr:
		return a.analyzeFunctionCall(n)
	case *MethodExpr:
		return a.analyzeMethodCall(n)
	case *ObjectExpr:
		return a.analyzeObject(n)
	default:
		return nil, a.fail(e, "unsupported expression")
	}
}

// propertyType resolves a member type off an ObjectType's own scope. It
// does not walk prototype chains at compile time, unlike the evaluator.
// A Dynamic receiver defers the check to runtime and resolves to Dynamic;
// anything else must be an object type with the name bound in its scope.
func (a *Analyzer) propertyType(n Node, receiver *Type, name string) (*Type, error) {
	if receiver.Kind == KindDynamic {
		return DYNAMIC, nil
	}
	if receiver.Kind != KindObject {
		return nil, a.fail(n, "cannot access property %q on non-object type %s", name, receiver)
	}
	if receiver.Scope == nil {
		return nil, a.fail(n, "object %s has no property %q", receiver, name)
	}
	t, ok := receiver.Scope.Resolve(name, true)
	if !ok {
		return nil, a.fail(n, "object %s has no property %q", receiver, name)
	}
	return t, nil
}

func literalType(v Value) *Type {
	switch v.(type) {
	case NullValue:
		return NIL
	case BoolValue:
		return BOOLEAN
	case IntValue:
		return INTEGER
	case DecValue:
		return DECIMAL
	case CharValue:
		return CHARACTER
	case StrValue:
		return STRING
	default:
		return DYNAMIC
	}
}

var logicalOps = map[string]bool{"AND": true, "OR": true}
var compareOpSet = map[string]bool{"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true}
var arithOps = map[string]bool{"+": true, "-": true, "*": true, "/": true}

func (a *Analyzer) analyzeBinary(n *BinaryExpr) (IRExpr, error) {
	left, err := a.analyzeExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := a.analyzeExpr(n.Right)
	if err != nil {
		return nil, err
	}

	var resultType *Type
	switch {
	case logicalOps[n.Op]:
		if !Subtype(left.Type(), BOOLEAN) || !Subtype(right.Type(), BOOLEAN) {
			return nil, a.fail(n, "%s requires Boolean operands", n.Op)
		}
		resultType = BOOLEAN
	case n.Op == "==" || n.Op == "!=":
		if !Subtype(left.Type(), EQUATABLE) || !Subtype(right.Type(), EQUATABLE) {
			return nil, a.fail(n, "%s requires Equatable operands", n.Op)
		}
		resultType = BOOLEAN
	case compareOpSet[n.Op]:
		if !Subtype(left.Type(), COMPARABLE) || !Subtype(right.Type(), COMPARABLE) {
			return nil, a.fail(n, "%s requires Comparable operands", n.Op)
		}
		resultType = BOOLEAN
	case n.Op == "+" && (left.Type().Kind == KindString || right.Type().Kind == KindString):
		resultType = STRING
	case arithOps[n.Op]:
		if !isNumeric(left.Type()) || !isNumeric(right.Type()) {
			return nil, a.fail(n, "%s requires numeric operands", n.Op)
		}
		if left.Type().Kind == KindDecimal || right.Type().Kind == KindDecimal {
			resultType = DECIMAL
		} else {
			resultType = INTEGER
		}
	default:
		return nil, a.fail(n, "unknown operator %q", n.Op)
	}

	return &IRBinary{Token: n.Token, Op: n.Op, Left: left, Right: right, Typ: resultType}, nil
}

func (a *Analyzer) analyzeFunctionCall(n *FunctionExpr) (IRExpr, error) {
	t, ok := a.scope.Resolve(n.Name, false)
	if !ok {
		return nil, a.fail(n, "undefined function %q", n.Name)
	}
	if t.Kind != KindFunction {
		return nil, a.fail(n, "%q is not a function", n.Name)
	}
	args, err := a.analyzeCallArgs(n, n.Args, t.Parameters)
	if err != nil {
		return nil, err
	}
	return &IRFunctionCall{Token: n.Token, Name: n.Name, Args: args, Typ: t.Returns}, nil
}

func (a *Analyzer) analyzeMethodCall(n *MethodExpr) (IRExpr, error) {
	recv, err := a.analyzeExpr(n.Receiver)
	if err != nil {
		return nil, err
	}
	memberType, err := a.propertyType(n, recv.Type(), n.Name)
	if err != nil {
		return nil, err
	}
	var params []*Type
	returns := DYNAMIC
	if memberType.Kind == KindFunction {
		params = memberType.Parameters
		returns = memberType.Returns
	} else if memberType.Kind != KindDynamic {
		return nil, a.fail(n, "%q is not callable on %s", n.Name, recv.Type())
	}
	args, err := a.analyzeCallArgs(n, n.Args, params)
	if err != nil {
		return nil, err
	}
	return &IRMethodCall{Token: n.Token, Receiver: recv, Name: n.Name, Args: args, Typ: returns}, nil
}

func (a *Analyzer) analyzeCallArgs(n Node, exprs []Expr, paramTypes []*Type) ([]IRExpr, error) {
	if paramTypes != nil && len(exprs) != len(paramTypes) {
		return nil, a.fail(n, "expected %d argument(s), got %d", len(paramTypes), len(exprs))
	}
	args := make([]IRExpr, len(exprs))
	for i, e := range exprs {
		arg, err := a.analyzeExpr(e)
		if err != nil {
			return nil, err
		}
		if paramTypes != nil && !Subtype(arg.Type(), paramTypes[i]) {
			return nil, a.fail(n, "argument %d: cannot pass %s where %s expected", i, arg.Type(), paramTypes[i])
		}
		args[i] = arg
	}
	return args, nil
}

func (a *Analyzer) analyzeObject(n *ObjectExpr) (IRExpr, error) {
	objType := NewObjectType(n.Name)
	var fields []*IRLet
	var methods []*IRDef

	memberAnalyzer := &Analyzer{scope: NewScope[*Type](a.scope)}

	for _, f := range n.Fields {
		irs, err := memberAnalyzer.analyzeLet(f)
		if err != nil {
			return nil, err
		}
		let := irs.(*IRLet)
		fields = append(fields, let)
		objType.Scope.Define(f.Name, let.VarType)
	}
	for _, m := range n.Methods {
		irs, err := memberAnalyzer.analyzeDefOrMethod(m, objType)
		if err != nil {
			return nil, err
		}
		def := irs.(*IRDef)
		methods = append(methods, def)
		objType.Scope.Define(m.Name, def.FuncType)
	}

	return &IRObject{Token: n.Token, Name: n.Name, Fields: fields, Methods: methods, Typ: objType}, nil
}

// installBuiltinTypes seeds the top-level scope with built-in function
// types, mirroring builtins.go's runtime counterpart. log returns
// DYNAMIC since it passes its argument straight through; debug returns
// NIL since it prints rather than produces a usable value.
func installBuiltinTypes(scope *Scope[*Type]) {
	scope.Define("print", FunctionType([]*Type{ANY}, NIL))
	scope.Define("log", FunctionType([]*Type{ANY}, DYNAMIC))
	scope.Define("debug", FunctionType([]*Type{ANY}, NIL))
	scope.Define("range", FunctionType([]*Type{INTEGER, INTEGER}, ITERABLE))

	// Testing helpers for exercising non-literal types: a plain
	// variable, nullary/unary functions, and an example object with
	// methods and a prototype link.
	scope.Define("variable", STRING)
	scope.Define("function", FunctionType([]*Type{}, NIL))
	scope.Define("functionAny", FunctionType([]*Type{ANY}, ANY))
	scope.Define("functionString", FunctionType([]*Type{STRING}, STRING))

	prototype := NewObjectType("Prototype")
	prototype.Scope.Define("inherited_property", STRING)
	prototype.Scope.Define("inherited_method", FunctionType([]*Type{}, NIL))

	object := NewObjectType("Object")
	object.Scope.Define("prototype", prototype)
	object.Scope.Define("method", FunctionType([]*Type{}, NIL))
	object.Scope.Define("methodAny", FunctionType([]*Type{ANY}, ANY))
	object.Scope.Define("methodString", FunctionType([]*Type{STRING}, STRING))
	scope.Define("object", object)
}
