package compiler

import (
	"fmt"
	"math/big"
	"strings"
)

// Value is the runtime value model: primitives, iterables, function
// closures, and objects. Modeled as an interface with one concrete type
// per variant rather than a single tagged wrapper struct, since the
// value space is closed and small.
type Value interface {
	valueTag()
	String() string
}

type NullValue struct{}

func (NullValue) valueTag()      {}
func (NullValue) String() string { return "nil" }

type BoolValue bool

func (BoolValue) valueTag() {}
func (b BoolValue) String() string {
	if b {
		return "true"
	}
	return "false"
}

// IntValue wraps an arbitrary-precision integer.
type IntValue struct{ V *big.Int }

func NewInt(i int64) IntValue { return IntValue{big.NewInt(i)} }

func (IntValue) valueTag()      {}
func (v IntValue) String() string { return v.V.String() }

// DecValue wraps an arbitrary-precision decimal. Division uses
// big.ToNearestEven (banker's rounding).
type DecValue struct{ V *big.Float }

func NewDec(f float64) DecValue {
	return DecValue{new(big.Float).SetMode(big.ToNearestEven).SetPrec(200).SetFloat64(f)}
}

func (DecValue) valueTag() {}
func (v DecValue) String() string {
	return v.V.Text('f', -1)
}

type CharValue rune

func (CharValue) valueTag()      {}
func (c CharValue) String() string { return string(rune(c)) }

type StrValue string

func (StrValue) valueTag()      {}
func (s StrValue) String() string { return string(s) }

// IterValue wraps a host-iterable sequence of values, e.g. the result
// of the built-in `range`.
type IterValue struct{ Elements []Value }

func (IterValue) valueTag() {}
func (v IterValue) String() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FuncValue is a closure: name, for diagnostics, and an invoke
// function that runs the call. Defining-scope capture is
// the responsibility of whoever builds Invoke (see evaluator.go).
type FuncValue struct {
	Name   string
	Invoke func(args []Value) (Value, error)
}

func (FuncValue) valueTag()      {}
func (f FuncValue) String() string { return fmt.Sprintf("<function %s>", f.Name) }

// ObjectValue owns a scope of its own members. Inheritance is obtained
// via an explicit "prototype" binding in that scope.
type ObjectValue struct {
	Name  string
	Scope *Scope[Value]
}

func (*ObjectValue) valueTag() {}
func (o *ObjectValue) String() string {
	if o.Name != "" {
		return fmt.Sprintf("<object %s>", o.Name)
	}
	return "<object>"
}

// maxPrototypeDepth bounds prototype-chain traversal so a cyclic
// prototype binding fails instead of looping forever.
const maxPrototypeDepth = 1000

// valuesEqual implements the evaluator's `==`/`!=` structural equality.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case NullValue:
		_, ok := b.(NullValue)
		return ok
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av == bv
	case IntValue:
		bv, ok := b.(IntValue)
		return ok && av.V.Cmp(bv.V) == 0
	case DecValue:
		bv, ok := b.(DecValue)
		return ok && av.V.Cmp(bv.V) == 0
	case CharValue:
		bv, ok := b.(CharValue)
		return ok && av == bv
	case StrValue:
		bv, ok := b.(StrValue)
		return ok && av == bv
	case *ObjectValue:
		bv, ok := b.(*ObjectValue)
		return ok && av == bv
	case FuncValue:
		bv, ok := b.(FuncValue)
		return ok && av.Name == bv.Name
	default:
		return false
	}
}
