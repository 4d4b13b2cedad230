// Package resolver performs static scope analysis over a parsed Rox
// program: for every name-bearing expression it computes how many
// environment hops separate the reference from its declaration, so the
// evaluator never has to search the environment chain at run time.
package resolver

import (
	"fmt"

	"github.com/cwbudde/rox/internal/ast"
	"github.com/cwbudde/rox/internal/lexer"
)

// Error is a single static-analysis error.
type Error struct {
	Message string
	Line    int
}

func (e Error) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Line, e.Message)
}

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classKind int

const (
	classNone classKind = iota
	classClass
	classSubclass
)

type loopKind int

const (
	loopNone loopKind = iota
	loopLoop
)

// Resolver walks an AST and produces a side table mapping each
// name-bearing expression's ExprID to the scope depth at which it
// resolves. Absence of an entry means "treat as global".
type Resolver struct {
	scopes []map[string]bool
	depths map[ast.ExprID]int
	errors []Error

	currentFunction functionKind
	currentClass    classKind
	currentLoop     loopKind
}

// New creates an empty Resolver.
func New() *Resolver {
	return &Resolver{depths: make(map[ast.ExprID]int)}
}

// Depths returns the resolved ExprID -> depth side table.
func (r *Resolver) Depths() map[ast.ExprID]int {
	return r.depths
}

// Errors returns every static error found.
func (r *Resolver) Errors() []Error {
	return r.errors
}

// Resolve runs static analysis over an entire program.
func (r *Resolver) Resolve(program *ast.Program) {
	r.resolveStatements(program.Statements)
}

func (r *Resolver) errorAt(pos lexer.Position, msg string) {
	r.errors = append(r.errors, Error{Message: msg, Line: pos.Line})
}

// ---------------------------------------------------------------------
// Scope stack
// ---------------------------------------------------------------------

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) currentScope() map[string]bool {
	if len(r.scopes) == 0 {
		return nil
	}
	return r.scopes[len(r.scopes)-1]
}

// declare inserts name into the top scope as not-yet-defined. The global
// scope is implicit (not represented in the stack), so at global scope
// this is a no-op.
func (r *Resolver) declare(name string, pos lexer.Position) {
	scope := r.currentScope()
	if scope == nil {
		return
	}
	if _, exists := scope[name]; exists {
		r.errorAt(pos, "already a variable with this name in this scope")
		return
	}
	scope[name] = false
}

func (r *Resolver) define(name string) {
	scope := r.currentScope()
	if scope == nil {
		return
	}
	scope[name] = true
}

// resolveLocal walks the scope stack top-down looking for name, recording
// the hop count into the side table when found.
func (r *Resolver) resolveLocal(id ast.ExprID, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.depths[id] = len(r.scopes) - 1 - i
			return
		}
	}
	// Not found in any scope: treat as global, leave unresolved.
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (r *Resolver) resolveStatements(stmts []ast.Statement) {
	for _, s := range stmts {
		r.resolveStatement(s)
	}
}

func (r *Resolver) resolveStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		r.resolveExpr(s.Expression)
	case *ast.VarDecl:
		r.declare(s.Name, s.Token.Pos)
		if s.Init != nil {
			r.resolveExpr(s.Init)
		}
		r.define(s.Name)
	case *ast.FunctionDecl:
		r.declare(s.Name, s.Token.Pos)
		r.define(s.Name)
		r.resolveFunction(s, fnFunction)
	case *ast.ClassDecl:
		r.resolveClass(s)
	case *ast.Block:
		r.beginScope()
		r.resolveStatements(s.Statements)
		r.endScope()
	case *ast.If:
		r.resolveExpr(s.Condition)
		r.resolveStatement(s.Then)
		if s.Else != nil {
			r.resolveStatement(s.Else)
		}
	case *ast.While:
		r.resolveExpr(s.Condition)
		enclosingLoop := r.currentLoop
		r.currentLoop = loopLoop
		r.resolveStatement(s.Body)
		r.currentLoop = enclosingLoop
	case *ast.For:
		r.beginScope()
		if s.Init != nil {
			r.resolveStatement(s.Init)
		}
		if s.Condition != nil {
			r.resolveExpr(s.Condition)
		}
		if s.Post != nil {
			r.resolveExpr(s.Post)
		}
		enclosingLoop := r.currentLoop
		r.currentLoop = loopLoop
		r.resolveStatement(s.Body)
		r.currentLoop = enclosingLoop
		r.endScope()
	case *ast.Print:
		r.resolveExpr(s.Value)
	case *ast.Return:
		if r.currentFunction == fnNone {
			r.errorAt(s.Token.Pos, "can't return from top-level code")
		}
		if s.Value != nil {
			if r.currentFunction == fnInitializer {
				r.errorAt(s.Token.Pos, "can't return a value from an initializer")
			}
			r.resolveExpr(s.Value)
		}
	case *ast.Try:
		r.resolveStatement(s.Block)
		r.beginScope()
		r.declare(s.CatchName, s.Token.Pos)
		r.define(s.CatchName)
		r.resolveStatement(s.CatchBlock)
		r.endScope()
	case *ast.Throw:
		r.resolveExpr(s.Value)
	case *ast.Break:
		if r.currentLoop == loopNone {
			r.errorAt(s.Token.Pos, "'break' outside of a loop")
		}
	case *ast.Continue:
		if r.currentLoop == loopNone {
			r.errorAt(s.Token.Pos, "'continue' outside of a loop")
		}
	case *ast.Export:
		r.resolveStatement(s.Decl)
	case *ast.Empty:
		// no-op
	default:
		panic(fmt.Sprintf("resolver: unhandled statement type %T", stmt))
	}
}

func (r *Resolver) resolveFunction(fn *ast.FunctionDecl, kind functionKind) {
	enclosingFunction := r.currentFunction
	enclosingLoop := r.currentLoop
	r.currentFunction = kind
	r.currentLoop = loopNone

	r.beginScope()
	for _, param := range fn.Parameters {
		r.declare(param, fn.Token.Pos)
		r.define(param)
	}
	r.resolveStatements(fn.Body)
	r.endScope()

	r.currentFunction = enclosingFunction
	r.currentLoop = enclosingLoop
}

func (r *Resolver) resolveClass(decl *ast.ClassDecl) {
	enclosingClass := r.currentClass
	r.currentClass = classClass

	r.declare(decl.Name, decl.Token.Pos)
	r.define(decl.Name)

	if decl.Superclass != nil {
		if decl.Superclass.Name == decl.Name {
			r.errorAt(decl.Superclass.Token.Pos, "a class can't inherit from itself")
		}
		r.currentClass = classSubclass
		r.resolveExpr(decl.Superclass)

		r.beginScope()
		r.currentScope()["super"] = true
	}

	r.beginScope()
	r.currentScope()["this"] = true

	for _, method := range decl.Methods {
		kind := fnMethod
		if method.Name == "init" {
			kind = fnInitializer
		}
		r.resolveFunction(method, kind)
	}

	r.endScope() // this

	if decl.Superclass != nil {
		r.endScope() // super
	}

	r.currentClass = enclosingClass
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

func (r *Resolver) resolveExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BooleanLiteral, *ast.NilLiteral:
		// no names
	case *ast.ListLiteral:
		for _, el := range e.Elements {
			r.resolveExpr(el)
		}
	case *ast.TupleLiteral:
		for _, el := range e.Elements {
			r.resolveExpr(el)
		}
	case *ast.DictLiteral:
		for _, entry := range e.Entries {
			r.resolveExpr(entry.Key)
			r.resolveExpr(entry.Value)
		}
	case *ast.Variable:
		if scope := r.currentScope(); scope != nil {
			if defined, declared := scope[e.Name]; declared && !defined {
				r.errorAt(e.Token.Pos, "can't read local variable in its own initializer")
			}
		}
		r.resolveLocal(e.ID, e.Name)
	case *ast.This:
		if r.currentClass == classNone {
			r.errorAt(e.Token.Pos, "can't use 'this' outside of a class")
			return
		}
		r.resolveLocal(e.ID, "this")
	case *ast.Super:
		if r.currentClass == classNone {
			r.errorAt(e.Token.Pos, "can't use 'super' outside of a class")
			return
		}
		if r.currentClass != classSubclass {
			r.errorAt(e.Token.Pos, "can't use 'super' in a class with no superclass")
			return
		}
		r.resolveLocal(e.ID, "super")
	case *ast.Assign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e.ID, e.Name)
	case *ast.CompoundAssign:
		r.resolveExpr(e.Value)
		r.resolveLocal(e.ID, e.Name)
	case *ast.SetProperty:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *ast.SetIndex:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Collection)
		r.resolveExpr(e.Index)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Unary:
		r.resolveExpr(e.Right)
	case *ast.Grouping:
		r.resolveExpr(e.Expression)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Arguments {
			r.resolveExpr(arg)
		}
	case *ast.GetProperty:
		r.resolveExpr(e.Object)
	case *ast.GetIndex:
		r.resolveExpr(e.Collection)
		r.resolveExpr(e.Index)
	case *ast.Lambda:
		enclosingFunction, enclosingLoop := r.currentFunction, r.currentLoop
		r.currentFunction, r.currentLoop = fnFunction, loopNone
		r.beginScope()
		for _, param := range e.Parameters {
			r.declare(param, e.Token.Pos)
			r.define(param)
		}
		r.resolveStatements(e.Body)
		r.endScope()
		r.currentFunction, r.currentLoop = enclosingFunction, enclosingLoop
	default:
		panic(fmt.Sprintf("resolver: unhandled expression type %T", expr))
	}
}
