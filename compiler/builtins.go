package compiler

import (
	"fmt"
	"log/slog"
)

// installBuiltins seeds a runtime Scope[Value] with the host-provided
// default environment: printing, a pass-through `log`, a debug trace,
// a range()-style iterable constructor, and the testing-helper
// variable/function/object fixtures mirroring the built-in type scope.
func installBuiltins(scope *Scope[Value], logger *slog.Logger) {
	scope.Define("print", FuncValue{
		Name: "print",
		Invoke: func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("print expects 1 argument, got %d", len(args))
			}
			fmt.Println(args[0].String())
			return NullValue{}, nil
		},
	})

	// log prints its argument and returns it unchanged, so it can be
	// wrapped around any expression without changing the program's
	// result.
	scope.Define("log", FuncValue{
		Name: "log",
		Invoke: func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("log expects 1 argument, got %d", len(args))
			}
			fmt.Println(args[0].String())
			logger.Debug("log", slog.String("value", args[0].String()))
			return args[0], nil
		},
	})

	scope.Define("debug", FuncValue{
		Name: "debug",
		Invoke: func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("debug expects 1 argument, got %d", len(args))
			}
			logger.Debug("debug", slog.String("type", fmt.Sprintf("%T", args[0])), slog.String("value", args[0].String()))
			return NullValue{}, nil
		},
	})

	scope.Define("range", FuncValue{
		Name: "range",
		Invoke: func(args []Value) (Value, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("range expects 2 arguments, got %d", len(args))
			}
			lo, ok := args[0].(IntValue)
			if !ok {
				return nil, fmt.Errorf("range expects Integer bounds")
			}
			hi, ok := args[1].(IntValue)
			if !ok {
				return nil, fmt.Errorf("range expects Integer bounds")
			}
			var elems []Value
			for i := lo.V.Int64(); i < hi.V.Int64(); i++ {
				elems = append(elems, NewInt(i))
			}
			return IterValue{Elements: elems}, nil
		},
	})

	installTestingHelpers(scope)
}

// installTestingHelpers binds the fixture set used to exercise
// non-literal types at runtime: a plain variable, nullary/unary
// functions, and an example object with methods and a prototype link.
// Each method value expects `receiver :: args…`, matching the
// receiver-prepending convention evalMethodCall uses for every method
// call.
func installTestingHelpers(scope *Scope[Value]) {
	scope.Define("variable", StrValue("variable"))

	scope.Define("function", FuncValue{
		Name: "function",
		Invoke: func(args []Value) (Value, error) {
			if len(args) != 0 {
				return nil, fmt.Errorf("function expects 0 argument(s), got %d", len(args))
			}
			return NullValue{}, nil
		},
	})
	scope.Define("functionAny", FuncValue{
		Name: "functionAny",
		Invoke: func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("functionAny expects 1 argument(s), got %d", len(args))
			}
			return args[0], nil
		},
	})
	scope.Define("functionString", FuncValue{
		Name: "functionString",
		Invoke: func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("functionString expects 1 argument(s), got %d", len(args))
			}
			if _, ok := args[0].(StrValue); !ok {
				return nil, fmt.Errorf("functionString expects a String argument")
			}
			return args[0], nil
		},
	})

	prototype := &ObjectValue{Name: "Prototype", Scope: NewScope[Value](nil)}
	prototype.Scope.Define("inherited_property", StrValue("inherited"))
	prototype.Scope.Define("inherited_method", FuncValue{
		Name: "inherited_method",
		Invoke: func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("inherited_method expects 0 argument(s), got %d", len(args)-1)
			}
			return NullValue{}, nil
		},
	})

	object := &ObjectValue{Name: "Object", Scope: NewScope[Value](nil)}
	object.Scope.Define("prototype", prototype)
	object.Scope.Define("method", FuncValue{
		Name: "method",
		Invoke: func(args []Value) (Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("method expects 0 argument(s), got %d", len(args)-1)
			}
			return NullValue{}, nil
		},
	})
	object.Scope.Define("methodAny", FuncValue{
		Name: "methodAny",
		Invoke: func(args []Value) (Value, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("methodAny expects 1 argument(s), got %d", len(args)-1)
			}
			return args[1], nil
		},
	})
	object.Scope.Define("methodString", FuncValue{
		Name: "methodString",
		Invoke: func(args []Value) (Value, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("methodString expects 1 argument(s), got %d", len(args)-1)
			}
			if _, ok := args[1].(StrValue); !ok {
				return nil, fmt.Errorf("methodString expects a String argument")
			}
			return args[1], nil
		},
	})
	scope.Define("object", object)
}

// NewGlobalScope builds the top-level runtime scope every program
// evaluates against, with the built-in environment installed.
func NewGlobalScope(logger *slog.Logger) *Scope[Value] {
	scope := NewScope[Value](nil)
	installBuiltins(scope, logger)
	return scope
}
