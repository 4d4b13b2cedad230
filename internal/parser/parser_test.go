package parser

import (
	"testing"

	"github.com/cwbudde/rox/internal/ast"
	"github.com/cwbudde/rox/internal/lexer"
)

func testParser(input string) *Parser {
	return New(lexer.New(input))
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errs := p.Errors()
	if len(errs) == 0 {
		return
	}
	for _, e := range errs {
		t.Errorf("parser error: %s", e.Error())
	}
	t.FailNow()
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"5;", 5},
		{"10;", 10},
		{"0;", 0},
		{"1.5;", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := testParser(tt.input)
			program := p.ParseProgram()
			checkParserErrors(t, p)

			if len(program.Statements) != 1 {
				t.Fatalf("program has wrong number of statements. got=%d", len(program.Statements))
			}

			stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
			if !ok {
				t.Fatalf("statement is not ast.ExpressionStatement. got=%T", program.Statements[0])
			}

			lit, ok := stmt.Expression.(*ast.NumberLiteral)
			if !ok {
				t.Fatalf("expression is not ast.NumberLiteral. got=%T", stmt.Expression)
			}
			if lit.Value != tt.expected {
				t.Errorf("lit.Value = %v, want %v", lit.Value, tt.expected)
			}
		})
	}
}

func TestVarDeclaration(t *testing.T) {
	p := testParser("var x = 5;")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	if len(program.Statements) != 1 {
		t.Fatalf("program has wrong number of statements. got=%d", len(program.Statements))
	}

	decl, ok := program.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("statement is not ast.VarDecl. got=%T", program.Statements[0])
	}
	if decl.Name != "x" {
		t.Errorf("decl.Name = %q, want %q", decl.Name, "x")
	}
	if _, ok := decl.Init.(*ast.NumberLiteral); !ok {
		t.Errorf("decl.Init is not ast.NumberLiteral. got=%T", decl.Init)
	}
}

func TestVarDeclarationNoInit(t *testing.T) {
	p := testParser("var x;")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	decl, ok := program.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("statement is not ast.VarDecl. got=%T", program.Statements[0])
	}
	if decl.Init != nil {
		t.Errorf("expected nil Init, got %v", decl.Init)
	}
}

func TestAssignmentDistinctFromEquality(t *testing.T) {
	p := testParser("x = 1; x == 1;")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}

	stmt1 := program.Statements[0].(*ast.ExpressionStatement)
	if _, ok := stmt1.Expression.(*ast.Assign); !ok {
		t.Errorf("statement 1 is not ast.Assign. got=%T", stmt1.Expression)
	}

	stmt2 := program.Statements[1].(*ast.ExpressionStatement)
	if _, ok := stmt2.Expression.(*ast.Binary); !ok {
		t.Errorf("statement 2 is not ast.Binary. got=%T", stmt2.Expression)
	}
}

func TestCompoundAssign(t *testing.T) {
	p := testParser("x += 1;")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	ca, ok := stmt.Expression.(*ast.CompoundAssign)
	if !ok {
		t.Fatalf("expression is not ast.CompoundAssign. got=%T", stmt.Expression)
	}
	if ca.Operator != "+=" {
		t.Errorf("ca.Operator = %q, want %q", ca.Operator, "+=")
	}
}

func TestSetPropertyAssignment(t *testing.T) {
	p := testParser("a.b = 1;")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	if _, ok := stmt.Expression.(*ast.SetProperty); !ok {
		t.Fatalf("expression is not ast.SetProperty. got=%T", stmt.Expression)
	}
}

func TestSetIndexAssignment(t *testing.T) {
	p := testParser("a[0] = 1;")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	if _, ok := stmt.Expression.(*ast.SetIndex); !ok {
		t.Fatalf("expression is not ast.SetIndex. got=%T", stmt.Expression)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	p := testParser("1 = 2;")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected an error for invalid assignment target")
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3;", "(1 + (2 * 3))"},
		{"(1 + 2) * 3;", "(((1 + 2)) * 3)"},
		{"1 < 2 == 3 < 4;", "((1 < 2) == (3 < 4))"},
		{"1 | 2 & 3;", "(1 | (2 & 3))"},
		{"-1 + 2;", "((-1) + 2)"},
		{"!true == false;", "((!true) == false)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := testParser(tt.input)
			program := p.ParseProgram()
			checkParserErrors(t, p)
			stmt := program.Statements[0].(*ast.ExpressionStatement)
			if got := stmt.Expression.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogicalShortCircuitNodes(t *testing.T) {
	p := testParser("true and false or true;")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	top, ok := stmt.Expression.(*ast.Logical)
	if !ok {
		t.Fatalf("expected top-level ast.Logical, got %T", stmt.Expression)
	}
	if top.Operator != "or" {
		t.Errorf("top.Operator = %q, want %q", top.Operator, "or")
	}
	if _, ok := top.Left.(*ast.Logical); !ok {
		t.Errorf("top.Left is not ast.Logical. got=%T", top.Left)
	}
}

func TestCallExpression(t *testing.T) {
	p := testParser("foo(1, 2, 3);")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	call, ok := stmt.Expression.(*ast.Call)
	if !ok {
		t.Fatalf("expression is not ast.Call. got=%T", stmt.Expression)
	}
	if len(call.Arguments) != 3 {
		t.Errorf("len(call.Arguments) = %d, want 3", len(call.Arguments))
	}
	if call.ID == 0 {
		t.Error("expected a nonzero ExprID on the call")
	}
}

func TestGetPropertyAndIndexChaining(t *testing.T) {
	p := testParser("a.b[0].c;")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	outer, ok := stmt.Expression.(*ast.GetProperty)
	if !ok {
		t.Fatalf("expression is not ast.GetProperty. got=%T", stmt.Expression)
	}
	if outer.Name != "c" {
		t.Errorf("outer.Name = %q, want %q", outer.Name, "c")
	}
	if _, ok := outer.Object.(*ast.GetIndex); !ok {
		t.Errorf("outer.Object is not ast.GetIndex. got=%T", outer.Object)
	}
}

func TestFunctionDeclaration(t *testing.T) {
	p := testParser("fun add(a, b) { return a + b; }")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	fn, ok := program.Statements[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("statement is not ast.FunctionDecl. got=%T", program.Statements[0])
	}
	if fn.Name != "add" {
		t.Errorf("fn.Name = %q, want %q", fn.Name, "add")
	}
	if len(fn.Parameters) != 2 {
		t.Errorf("len(fn.Parameters) = %d, want 2", len(fn.Parameters))
	}
	if len(fn.Body) != 1 {
		t.Fatalf("len(fn.Body) = %d, want 1", len(fn.Body))
	}
	if _, ok := fn.Body[0].(*ast.Return); !ok {
		t.Errorf("fn.Body[0] is not ast.Return. got=%T", fn.Body[0])
	}
}

func TestClassDeclarationWithSuperclass(t *testing.T) {
	p := testParser("class Dog < Animal { speak() { print \"woof\"; } }")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	class, ok := program.Statements[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("statement is not ast.ClassDecl. got=%T", program.Statements[0])
	}
	if class.Name != "Dog" {
		t.Errorf("class.Name = %q, want %q", class.Name, "Dog")
	}
	if class.Superclass == nil || class.Superclass.Name != "Animal" {
		t.Errorf("expected superclass Animal, got %v", class.Superclass)
	}
	if len(class.Methods) != 1 || class.Methods[0].Name != "speak" {
		t.Fatalf("unexpected methods: %+v", class.Methods)
	}
}

func TestIfElseStatement(t *testing.T) {
	p := testParser("if (true) { print 1; } else { print 2; }")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt, ok := program.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("statement is not ast.If. got=%T", program.Statements[0])
	}
	if stmt.Else == nil {
		t.Error("expected an else branch")
	}
}

func TestForLoopAllClausesOptional(t *testing.T) {
	p := testParser("for (;;) { break; }")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt, ok := program.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("statement is not ast.For. got=%T", program.Statements[0])
	}
	if stmt.Init != nil || stmt.Condition != nil || stmt.Post != nil {
		t.Error("expected all for-clauses to be nil")
	}
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	p := testParser("break;")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected an error for break outside a loop")
	}
}

func TestContinueOutsideLoopIsError(t *testing.T) {
	p := testParser("continue;")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected an error for continue outside a loop")
	}
}

func TestReturnOutsideFunctionIsError(t *testing.T) {
	p := testParser("return 1;")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatal("expected an error for return outside a function")
	}
}

func TestReturnInsideFunctionIsOK(t *testing.T) {
	p := testParser("fun f() { return; }")
	p.ParseProgram()
	checkParserErrors(t, p)
}

func TestTryCatch(t *testing.T) {
	p := testParser(`try { throw "boom"; } catch (e) { print e; }`)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	tryStmt, ok := program.Statements[0].(*ast.Try)
	if !ok {
		t.Fatalf("statement is not ast.Try. got=%T", program.Statements[0])
	}
	if tryStmt.CatchName != "e" {
		t.Errorf("CatchName = %q, want %q", tryStmt.CatchName, "e")
	}
}

func TestExportWrapsDeclaration(t *testing.T) {
	p := testParser("export var x = 1;")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	exp, ok := program.Statements[0].(*ast.Export)
	if !ok {
		t.Fatalf("statement is not ast.Export. got=%T", program.Statements[0])
	}
	if _, ok := exp.Decl.(*ast.VarDecl); !ok {
		t.Errorf("exp.Decl is not ast.VarDecl. got=%T", exp.Decl)
	}
}

func TestListLiteral(t *testing.T) {
	p := testParser("[1, 2, 3];")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	list, ok := stmt.Expression.(*ast.ListLiteral)
	if !ok {
		t.Fatalf("expression is not ast.ListLiteral. got=%T", stmt.Expression)
	}
	if len(list.Elements) != 3 {
		t.Errorf("len(list.Elements) = %d, want 3", len(list.Elements))
	}
}

func TestDictLiteral(t *testing.T) {
	p := testParser(`{"a": 1, "b": 2};`)
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	dict, ok := stmt.Expression.(*ast.DictLiteral)
	if !ok {
		t.Fatalf("expression is not ast.DictLiteral. got=%T", stmt.Expression)
	}
	if len(dict.Entries) != 2 {
		t.Errorf("len(dict.Entries) = %d, want 2", len(dict.Entries))
	}
}

func TestTupleLiteral(t *testing.T) {
	p := testParser("(1, 2);")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	tup, ok := stmt.Expression.(*ast.TupleLiteral)
	if !ok {
		t.Fatalf("expression is not ast.TupleLiteral. got=%T", stmt.Expression)
	}
	if len(tup.Elements) != 2 {
		t.Errorf("len(tup.Elements) = %d, want 2", len(tup.Elements))
	}
}

func TestGroupingIsNotATuple(t *testing.T) {
	p := testParser("(1);")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	if _, ok := stmt.Expression.(*ast.Grouping); !ok {
		t.Fatalf("expression is not ast.Grouping. got=%T", stmt.Expression)
	}
}

func TestEmptyTupleLiteral(t *testing.T) {
	p := testParser("();")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	stmt := program.Statements[0].(*ast.ExpressionStatement)
	tup, ok := stmt.Expression.(*ast.TupleLiteral)
	if !ok {
		t.Fatalf("expression is not ast.TupleLiteral. got=%T", stmt.Expression)
	}
	if len(tup.Elements) != 0 {
		t.Errorf("len(tup.Elements) = %d, want 0", len(tup.Elements))
	}
}

func TestLambdaExpression(t *testing.T) {
	p := testParser("var f = fun(x) { return x; };")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	decl := program.Statements[0].(*ast.VarDecl)
	lambda, ok := decl.Init.(*ast.Lambda)
	if !ok {
		t.Fatalf("decl.Init is not ast.Lambda. got=%T", decl.Init)
	}
	if len(lambda.Parameters) != 1 {
		t.Errorf("len(lambda.Parameters) = %d, want 1", len(lambda.Parameters))
	}
}

func TestThisAndSuperHaveExprIDs(t *testing.T) {
	p := testParser("class C < B { m() { this.x; super.m(); } }")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	class := program.Statements[0].(*ast.ClassDecl)
	method := class.Methods[0]

	exprStmt1 := method.Body[0].(*ast.ExpressionStatement)
	getProp := exprStmt1.Expression.(*ast.GetProperty)
	this, ok := getProp.Object.(*ast.This)
	if !ok {
		t.Fatalf("getProp.Object is not ast.This. got=%T", getProp.Object)
	}
	if this.ID == 0 {
		t.Error("expected a nonzero ExprID on this")
	}

	exprStmt2 := method.Body[1].(*ast.ExpressionStatement)
	call := exprStmt2.Expression.(*ast.Call)
	super, ok := call.Callee.(*ast.Super)
	if !ok {
		t.Fatalf("call.Callee is not ast.Super. got=%T", call.Callee)
	}
	if super.ID == 0 {
		t.Error("expected a nonzero ExprID on super")
	}
	if super.Method != "m" {
		t.Errorf("super.Method = %q, want %q", super.Method, "m")
	}
}

func TestVariableExprIDsAreDistinct(t *testing.T) {
	p := testParser("x; y;")
	program := p.ParseProgram()
	checkParserErrors(t, p)

	v1 := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.Variable)
	v2 := program.Statements[1].(*ast.ExpressionStatement).Expression.(*ast.Variable)
	if v1.ID == v2.ID {
		t.Errorf("expected distinct ExprIDs, both were %d", v1.ID)
	}
}
