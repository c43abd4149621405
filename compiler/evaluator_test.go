package compiler

import (
	"io"
	"log/slog"
	"testing"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runSrc(t *testing.T, src string) Value {
	t.Helper()
	tree := parseSrc(t, src)
	scope := NewGlobalScope(silentLogger())
	v, err := EvaluateSource(tree, scope, silentLogger())
	if err != nil {
		t.Fatalf("Evaluate(%q) error: %v", src, err)
	}
	return v
}

func runSrcExpectError(t *testing.T, src string) error {
	t.Helper()
	tree := parseSrc(t, src)
	scope := NewGlobalScope(silentLogger())
	_, err := EvaluateSource(tree, scope, silentLogger())
	return err
}

func TestEvaluateArithmetic(t *testing.T) {
	v := runSrc(t, "return 2 + 3 * 4;")
	iv, ok := v.(IntValue)
	if !ok || iv.V.Int64() != 14 {
		t.Fatalf("got %v, want 14", v)
	}
}

func TestEvaluateIntegerDivisionFloors(t *testing.T) {
	v := runSrc(t, "return -7 / 2;")
	iv, ok := v.(IntValue)
	if !ok || iv.V.Int64() != -4 {
		t.Fatalf("got %v, want -4 (floor division)", v)
	}
}

func TestEvaluateDivisionByZeroFails(t *testing.T) {
	err := runSrcExpectError(t, "return 1 / 0;")
	if err == nil {
		t.Fatalf("expected a division-by-zero error")
	}
}

func TestEvaluateDecimalDivision(t *testing.T) {
	v := runSrc(t, "return 1.0 / 4.0;")
	dv, ok := v.(DecValue)
	if !ok {
		t.Fatalf("got %T, want DecValue", v)
	}
	f, _ := dv.V.Float64()
	if f != 0.25 {
		t.Fatalf("got %v, want 0.25", f)
	}
}

func TestEvaluateStringConcatenation(t *testing.T) {
	v := runSrc(t, `return "a" + "b";`)
	sv, ok := v.(StrValue)
	if !ok || string(sv) != "ab" {
		t.Fatalf("got %v, want \"ab\"", v)
	}
}

func TestEvaluateComparison(t *testing.T) {
	v := runSrc(t, "return 1 < 2;")
	if bv, ok := v.(BoolValue); !ok || !bool(bv) {
		t.Fatalf("got %v, want true", v)
	}
}

func TestEvaluateAndShortCircuits(t *testing.T) {
	// The right operand references an undefined variable; if AND did not
	// short-circuit on a false left operand, this would error instead
	// of returning false.
	v := runSrc(t, "return false AND undefinedName;")
	if bv, ok := v.(BoolValue); !ok || bool(bv) {
		t.Fatalf("got %v, want false", v)
	}
}

func TestEvaluateOrShortCircuits(t *testing.T) {
	v := runSrc(t, "return true OR undefinedName;")
	if bv, ok := v.(BoolValue); !ok || !bool(bv) {
		t.Fatalf("got %v, want true", v)
	}
}

func TestEvaluateIfElse(t *testing.T) {
	v := runSrc(t, `if 1 < 2 do
		return "then";
	else
		return "else";
	end`)
	if sv, ok := v.(StrValue); !ok || string(sv) != "then" {
		t.Fatalf("got %v", v)
	}
}

func TestEvaluateForAccumulates(t *testing.T) {
	v := runSrc(t, `let total = 0;
	for i in range(0, 5) do
		total = total + i;
	end
	return total;`)
	iv, ok := v.(IntValue)
	if !ok || iv.V.Int64() != 10 {
		t.Fatalf("got %v, want 10", v)
	}
}

func TestEvaluateFunctionCallAndReturn(t *testing.T) {
	v := runSrc(t, `def square(x: Integer): Integer do
		return x * x;
	end
	return square(6);`)
	iv, ok := v.(IntValue)
	if !ok || iv.V.Int64() != 36 {
		t.Fatalf("got %v, want 36", v)
	}
}

func TestEvaluateReturnEscapesNestedBlocks(t *testing.T) {
	v := runSrc(t, `def f(): Integer do
		for i in range(0, 10) do
			if i == 3 do
				return i;
			end
		end
		return -1;
	end
	return f();`)
	iv, ok := v.(IntValue)
	if !ok || iv.V.Int64() != 3 {
		t.Fatalf("got %v, want 3 (return should escape the for/if nesting)", v)
	}
}

func TestEvaluateGuardedReturn(t *testing.T) {
	v := runSrc(t, `def sign(x: Integer): String do
		return "positive" if x > 0;
		return "non-positive";
	end
	return sign(5);`)
	if sv, ok := v.(StrValue); !ok || string(sv) != "positive" {
		t.Fatalf("got %v", v)
	}
}

func TestEvaluateClosureCapturesDefiningScope(t *testing.T) {
	v := runSrc(t, `let n = 10;
	def addN(x: Integer): Integer do
		return x + n;
	end
	n = 20;
	return addN(1);`)
	iv, ok := v.(IntValue)
	if !ok || iv.V.Int64() != 21 {
		t.Fatalf("got %v, want 21 (closure should see the later assignment to n)", v)
	}
}

func TestEvaluateObjectFieldsAndMethods(t *testing.T) {
	v := runSrc(t, `let p = object Point do
		let x: Integer = 3;
		let y: Integer = 4;
		def sum(): Integer do
			return x + y;
		end
	end;
	return p.sum();`)
	iv, ok := v.(IntValue)
	if !ok || iv.V.Int64() != 7 {
		t.Fatalf("got %v, want 7", v)
	}
}

func TestEvaluatePrototypeChainLookup(t *testing.T) {
	v := runSrc(t, `let base = object do
		def greet(): String do
			return "hi";
		end
	end;
	let child = object do
		let prototype = base;
	end;
	return child.greet();`)
	if sv, ok := v.(StrValue); !ok || string(sv) != "hi" {
		t.Fatalf("got %v, want \"hi\" resolved through the prototype chain", v)
	}
}

func TestEvaluateMethodBindsImplicitThis(t *testing.T) {
	v := runSrc(t, `let o = object do
		let x = 1;
		def get() do
			return this.x;
		end
	end;
	return o.get();`)
	iv, ok := v.(IntValue)
	if !ok || iv.V.Int64() != 1 {
		t.Fatalf("got %v, want 1 (this.x should resolve the receiver's own field)", v)
	}
}

func TestEvaluateMethodRejectsThisAsParameterName(t *testing.T) {
	err := runSrcExpectError(t, `let o = object do
		def bad(this) do
			return this;
		end
	end;
	return o.bad(1);`)
	if err == nil {
		t.Fatalf("expected an error using this as an explicit parameter name")
	}
}

func TestEvaluatePropertyAssignmentOnObject(t *testing.T) {
	v := runSrc(t, `let p = object do
		let x: Integer = 1;
	end;
	p.x = 99;
	return p.x;`)
	iv, ok := v.(IntValue)
	if !ok || iv.V.Int64() != 99 {
		t.Fatalf("got %v, want 99", v)
	}
}

func TestEvaluatePropertyAssignmentToUndeclaredFieldFails(t *testing.T) {
	err := runSrcExpectError(t, `let p = object do
		let x: Integer = 1;
	end;
	p.neverDeclared = 1;
	return p.x;`)
	if err == nil {
		t.Fatalf("expected an error assigning to a property that was never declared")
	}
}

func TestEvaluateMixedNumericKindArithmeticFails(t *testing.T) {
	err := runSrcExpectError(t, "return 1 - 2.5;")
	if err == nil {
		t.Fatalf("expected an error subtracting a Decimal from an Integer")
	}
}

func TestEvaluateUndefinedVariableFails(t *testing.T) {
	err := runSrcExpectError(t, "return neverDefined;")
	if err == nil {
		t.Fatalf("expected an error referencing an undefined variable")
	}
}

func TestEvaluateDuplicateLetInSameScopeFails(t *testing.T) {
	err := runSrcExpectError(t, "let x = 1; let x = 2; return x;")
	if err == nil {
		t.Fatalf("expected an error redefining x in the same scope")
	}
}

func TestEvaluateLogReturnsItsArgument(t *testing.T) {
	v := runSrc(t, "return log(3);")
	iv, ok := v.(IntValue)
	if !ok || iv.V.Int64() != 3 {
		t.Fatalf("got %v, want 3 (log should pass its argument through unchanged)", v)
	}
}

func TestEvaluateRangeBuiltin(t *testing.T) {
	v := runSrc(t, "return range(0, 3);")
	it, ok := v.(IterValue)
	if !ok || len(it.Elements) != 3 {
		t.Fatalf("got %v, want a 3-element iterable", v)
	}
}
