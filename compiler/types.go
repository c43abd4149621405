package compiler

import "strings"

// Kind discriminates the Type tagged union. Modeled as a closed enum
// since the lattice of built-in types and the two composite variants
// (Function, ObjectType) is small and fixed.
type Kind int

const (
	KindAny Kind = iota
	KindNil
	KindDynamic
	KindBoolean
	KindInteger
	KindDecimal
	KindCharacter
	KindString
	KindEquatable
	KindComparable
	KindIterable
	KindFunction
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "Any"
	case KindNil:
		return "Nil"
	case KindDynamic:
		return "Dynamic"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindDecimal:
		return "Decimal"
	case KindCharacter:
		return "Character"
	case KindString:
		return "String"
	case KindEquatable:
		return "Equatable"
	case KindComparable:
		return "Comparable"
	case KindIterable:
		return "Iterable"
	case KindFunction:
		return "Function"
	case KindObject:
		return "Object"
	default:
		return "?"
	}
}

// Type is the tagged union. Built-in primitives are
// singleton identities; Function and ObjectType carry extra payload.
type Type struct {
	Kind Kind

	// Function
	Parameters []*Type
	Returns    *Type

	// ObjectType
	Name  string
	Scope *Scope[*Type]
}

func (t *Type) String() string {
	switch t.Kind {
	case KindFunction:
		parts := make([]string, len(t.Parameters))
		for i, p := range t.Parameters {
			parts[i] = p.String()
		}
		return "(" + strings.Join(parts, ", ") + ") -> " + t.Returns.String()
	case KindObject:
		if t.Name != "" {
			return "object " + t.Name
		}
		return "object"
	default:
		return t.Kind.String()
	}
}

// Singleton primitive identities.
var (
	ANY        = &Type{Kind: KindAny}
	NIL        = &Type{Kind: KindNil}
	DYNAMIC    = &Type{Kind: KindDynamic}
	BOOLEAN    = &Type{Kind: KindBoolean}
	INTEGER    = &Type{Kind: KindInteger}
	DECIMAL    = &Type{Kind: KindDecimal}
	CHARACTER  = &Type{Kind: KindCharacter}
	STRING     = &Type{Kind: KindString}
	EQUATABLE  = &Type{Kind: KindEquatable}
	COMPARABLE = &Type{Kind: KindComparable}
	ITERABLE   = &Type{Kind: KindIterable}
)

func FunctionType(params []*Type, returns *Type) *Type {
	return &Type{Kind: KindFunction, Parameters: params, Returns: returns}
}

func NewObjectType(name string) *Type {
	return &Type{Kind: KindObject, Name: name, Scope: NewScope[*Type](nil)}
}

func isNumeric(t *Type) bool {
	return t.Kind == KindInteger || t.Kind == KindDecimal
}

func isComparablePrimitive(t *Type) bool {
	switch t.Kind {
	case KindBoolean, KindInteger, KindDecimal, KindCharacter, KindString:
		return true
	default:
		return false
	}
}

// Subtype implements the relation.
func Subtype(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	switch {
	case b.Kind == KindAny:
		return true
	case a.Kind == KindDynamic || b.Kind == KindDynamic:
		return true
	case a == b:
		return true
	case isNumeric(a) && isNumeric(b):
		return true
	case b.Kind == KindComparable && isComparablePrimitive(a):
		return true
	case b.Kind == KindEquatable:
		if a.Kind == KindNil || a.Kind == KindIterable {
			return true
		}
		if Subtype(a, COMPARABLE) {
			return true
		}
		return false
	default:
		return false
	}
}
