package compiler

import "testing"

func TestScopeDefineAndResolve(t *testing.T) {
	s := NewScope[int](nil)
	if !s.Define("x", 1) {
		t.Fatalf("first Define should succeed")
	}
	v, ok := s.Resolve("x", false)
	if !ok || v != 1 {
		t.Fatalf("got (%v, %v), want (1, true)", v, ok)
	}
}

func TestScopeDefineDuplicateFails(t *testing.T) {
	s := NewScope[int](nil)
	s.Define("x", 1)
	if s.Define("x", 2) {
		t.Fatalf("redefining x in the same scope should fail")
	}
	v, _ := s.Resolve("x", false)
	if v != 1 {
		t.Fatalf("failed Define should not overwrite the existing binding, got %v", v)
	}
}

func TestScopeResolveWalksParent(t *testing.T) {
	parent := NewScope[int](nil)
	parent.Define("x", 1)
	child := NewScope[int](parent)
	v, ok := child.Resolve("x", false)
	if !ok || v != 1 {
		t.Fatalf("got (%v, %v), want (1, true)", v, ok)
	}
}

func TestScopeResolveCurrentOnlyDoesNotWalkParent(t *testing.T) {
	parent := NewScope[int](nil)
	parent.Define("x", 1)
	child := NewScope[int](parent)
	if _, ok := child.Resolve("x", true); ok {
		t.Fatalf("currentOnly Resolve should not see parent bindings")
	}
}

func TestScopeChildShadowsParent(t *testing.T) {
	parent := NewScope[int](nil)
	parent.Define("x", 1)
	child := NewScope[int](parent)
	child.Define("x", 2)
	v, _ := child.Resolve("x", false)
	if v != 2 {
		t.Fatalf("child binding should shadow parent, got %v", v)
	}
	pv, _ := parent.Resolve("x", false)
	if pv != 1 {
		t.Fatalf("parent binding should be unaffected by shadowing, got %v", pv)
	}
}

func TestScopeAssignWritesOwningScope(t *testing.T) {
	parent := NewScope[int](nil)
	parent.Define("x", 1)
	child := NewScope[int](parent)
	if !child.Assign("x", 99) {
		t.Fatalf("Assign should find x in the parent scope")
	}
	pv, _ := parent.Resolve("x", false)
	if pv != 99 {
		t.Fatalf("Assign should write through to the owning scope, got %v", pv)
	}
}

func TestScopeAssignUnboundFails(t *testing.T) {
	s := NewScope[int](nil)
	if s.Assign("never-defined", 1) {
		t.Fatalf("Assign to an unbound name should fail")
	}
}
