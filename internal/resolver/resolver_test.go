package resolver

import (
	"testing"

	"github.com/cwbudde/rox/internal/ast"
	"github.com/cwbudde/rox/internal/lexer"
	"github.com/cwbudde/rox/internal/parser"
	"github.com/kr/pretty"
)

func resolveSource(t *testing.T, src string) (*ast.Program, *Resolver) {
	t.Helper()
	p := parser.New(lexer.New(src))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	r := New()
	r.Resolve(program)
	return program, r
}

func TestResolveGlobalIsUnresolved(t *testing.T) {
	_, r := resolveSource(t, "var x = 1; x;")
	if len(r.Depths()) != 0 {
		t.Errorf("expected no resolved depths for a global reference, got %v", r.Depths())
	}
	if len(r.Errors()) != 0 {
		t.Errorf("unexpected resolver errors: %v", r.Errors())
	}
}

func TestResolveLocalBlockDepth(t *testing.T) {
	program, r := resolveSource(t, "{ var x = 1; x; }")
	block := program.Statements[0].(*ast.Block)
	exprStmt := block.Statements[1].(*ast.ExpressionStatement)
	v := exprStmt.Expression.(*ast.Variable)

	depth, ok := r.Depths()[v.ID]
	if !ok {
		t.Fatal("expected a resolved depth for local variable x")
	}
	if depth != 0 {
		t.Errorf("depth = %d, want 0", depth)
	}
}

func TestNestedBlockReferenceDepth(t *testing.T) {
	program, r := resolveSource(t, "{ var x = 1; { x; } }")
	outer := program.Statements[0].(*ast.Block)
	inner := outer.Statements[1].(*ast.Block)
	exprStmt := inner.Statements[0].(*ast.ExpressionStatement)
	v := exprStmt.Expression.(*ast.Variable)

	depth := r.Depths()[v.ID]
	if depth != 1 {
		t.Errorf("depth = %d, want 1 (one block hop up)", depth)
	}
}

func TestReadOwnInitializerIsError(t *testing.T) {
	p := parser.New(lexer.New("{ var a = a; }"))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	r := New()
	r.Resolve(program)
	if len(r.Errors()) == 0 {
		t.Fatal("expected an error reading a variable in its own initializer")
	}
}

func TestRedeclarationInSameScopeIsError(t *testing.T) {
	_, r := resolveSource(t, "{ var a = 1; var a = 2; }")
	if len(r.Errors()) == 0 {
		t.Fatal("expected a redeclaration error")
	}
}

func TestThisOutsideClassIsError(t *testing.T) {
	p := parser.New(lexer.New("print this;"))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	r := New()
	r.Resolve(program)
	if len(r.Errors()) == 0 {
		t.Fatal("expected an error using this outside a class")
	}
}

func TestSelfInheritanceIsError(t *testing.T) {
	_, r := resolveSource(t, "class A < A {}")
	if len(r.Errors()) == 0 {
		t.Fatal("expected a self-inheritance error")
	}
}

func TestSuperWithoutSuperclassIsError(t *testing.T) {
	_, r := resolveSource(t, "class A { m() { super.m(); } }")
	if len(r.Errors()) == 0 {
		t.Fatal("expected an error using super without a superclass")
	}
}

func TestReturnValueFromInitializerIsError(t *testing.T) {
	_, r := resolveSource(t, "class A { init() { return 1; } }")
	if len(r.Errors()) == 0 {
		t.Fatal("expected an error returning a value from an initializer")
	}
}

func TestBareReturnFromInitializerIsOK(t *testing.T) {
	_, r := resolveSource(t, "class A { init() { return; } }")
	if len(r.Errors()) != 0 {
		t.Errorf("unexpected errors: %v", r.Errors())
	}
}

func TestClosureCaptureShadowingScenario(t *testing.T) {
	// Mirrors spec scenario 5: an inner function defined before a
	// redeclaration must bind to the outer name.
	src := `var a = "global";
{ fun showA() { return a; } var a = "block"; }`
	program, r := resolveSource(t, src)

	block := program.Statements[1].(*ast.Block)
	fn := block.Statements[0].(*ast.FunctionDecl)
	ret := fn.Body[0].(*ast.Return)
	v := ret.Value.(*ast.Variable)

	if _, ok := r.Depths()[v.ID]; ok {
		t.Errorf("expected showA's reference to 'a' to resolve as global (unresolved), got depth %d", r.Depths()[v.ID])
	}
}

// TestDepthsTableMatchesExpectedShape resolves a small nested-block
// program and checks the whole ExprID->depth side table at once rather
// than one expression at a time, printing a field-by-field diff via
// kr/pretty on mismatch so a failure here is actually readable (the
// table is otherwise just a map keyed by an opaque int id).
func TestDepthsTableMatchesExpectedShape(t *testing.T) {
	program, r := resolveSource(t, "{ var x = 1; { var y = 2; x; y; } }")

	outer := program.Statements[0].(*ast.Block)
	inner := outer.Statements[1].(*ast.Block)
	xRef := inner.Statements[1].(*ast.ExpressionStatement).Expression.(*ast.Variable)
	yRef := inner.Statements[2].(*ast.ExpressionStatement).Expression.(*ast.Variable)

	got := r.Depths()
	want := map[ast.ExprID]int{
		xRef.ID: 1,
		yRef.ID: 0,
	}

	if len(got) != len(want) || got[xRef.ID] != want[xRef.ID] || got[yRef.ID] != want[yRef.ID] {
		for _, line := range pretty.Diff(want, got) {
			t.Error(line)
		}
	}
}
