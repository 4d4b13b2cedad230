// Package interp is the tree-walking evaluator: it walks a parsed Rox
// program, consults the resolver's scope-depth side table for every
// name reference, and mutates a chain of Environments to produce values
// and side effects.
package interp

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/cwbudde/rox/internal/ast"
	"github.com/cwbudde/rox/internal/errors"
	"github.com/cwbudde/rox/internal/lexer"
	"github.com/cwbudde/rox/internal/parser"
	"github.com/cwbudde/rox/internal/resolver"
)

// Interpreter owns the two persistent environment pointers (globals and
// current), the resolver's depth side table for whichever program/module
// is currently executing, the module loader, and the per-module
// export-name stack.
type Interpreter struct {
	globals *Environment
	current *Environment

	depths map[ast.ExprID]int

	modules     *moduleLoader
	exportNames []map[string]bool

	stdout io.Writer
	stack  errors.StackTrace
}

// New creates an interpreter rooted at entryDir (the directory relative
// imports resolve against) that writes `print` output to stdout.
func New(entryDir string, stdout io.Writer) *Interpreter {
	i := &Interpreter{
		globals: NewEnvironment(nil),
		modules: newModuleLoader(entryDir),
		depths:  make(map[ast.ExprID]int),
		stdout:  stdout,
	}
	i.current = i.globals
	i.installNatives(i.globals)
	return i
}

// parseModule lexes and parses source, returning every lex/parse error
// collected (nil on success).
func (i *Interpreter) parseModule(source string) (*ast.Program, []*errors.CompilerError) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	var errs []*errors.CompilerError
	for _, lexErr := range l.Errors() {
		errs = append(errs, errors.NewCompilerError(lexErr.Pos, lexErr.Message, source, ""))
	}
	for _, parseErr := range p.Errors() {
		errs = append(errs, errors.NewCompilerError(lexer.Position{Line: parseErr.Line}, parseErr.Message, source, ""))
	}
	return program, errs
}

// resolveAndRun runs the resolver over program, installs its depth table
// as the active one (saving/restoring the caller's, so nested module
// loads don't clobber an outer program's table), and executes every
// top-level statement. Resolver failures are reported as CompilerErrors
// (source carries the program's text for caret rendering); a nil signal
// with no errors means normal completion, and a sigError signal reports
// an uncaught runtime error.
func (i *Interpreter) resolveAndRun(program *ast.Program, source string) (*signal, []*errors.CompilerError) {
	r := resolver.New()
	r.Resolve(program)
	if errs := r.Errors(); len(errs) != 0 {
		out := make([]*errors.CompilerError, len(errs))
		for idx, e := range errs {
			out[idx] = errors.NewCompilerError(lexer.Position{Line: e.Line}, e.Message, source, "")
		}
		return nil, out
	}

	savedDepths := i.depths
	i.depths = r.Depths()
	defer func() { i.depths = savedDepths }()

	return i.executeStatements(program.Statements), nil
}

// Stack returns the call stack at the moment of the most recent uncaught
// error (empty after a run that ended without one).
func (i *Interpreter) Stack() errors.StackTrace {
	return i.stack
}

// RunSource lexes, parses, resolves, and executes source as a top-level
// program (not a module): the entry-point path for the CLI's `run`
// subcommand and each accepted REPL line.
func (i *Interpreter) RunSource(source string) ([]*errors.CompilerError, *RuntimeError) {
	i.stack = nil
	program, errs := i.parseModule(source)
	if len(errs) != 0 {
		return errs, nil
	}
	sig, resolveErrs := i.resolveAndRun(program, source)
	if len(resolveErrs) != 0 {
		return resolveErrs, nil
	}
	if sig != nil && sig.kind == sigError {
		return nil, sig.err
	}
	return nil, nil
}

// ---------------------------------------------------------------------
// Statement execution
// ---------------------------------------------------------------------

func (i *Interpreter) executeStatements(stmts []ast.Statement) *signal {
	for _, s := range stmts {
		if sig := i.executeStatement(s); sig != nil {
			return sig
		}
	}
	return nil
}

func (i *Interpreter) executeStatement(stmt ast.Statement) *signal {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		_, rerr := i.evaluate(s.Expression)
		if rerr != nil {
			return errorSignal(rerr)
		}
		return nil

	case *ast.VarDecl:
		var value Value = theNil
		if s.Init != nil {
			v, rerr := i.evaluate(s.Init)
			if rerr != nil {
				return errorSignal(rerr)
			}
			value = v
		}
		i.current.Define(s.Name, value)
		return nil

	case *ast.FunctionDecl:
		fn := &FunctionValue{Name: s.Name, Parameters: s.Parameters, Body: s.Body, Closure: i.current}
		i.current.Define(s.Name, fn)
		return nil

	case *ast.ClassDecl:
		return i.executeClassDecl(s)

	case *ast.Block:
		return i.executeBlock(s.Statements, NewEnvironment(i.current))

	case *ast.If:
		cond, rerr := i.evaluate(s.Condition)
		if rerr != nil {
			return errorSignal(rerr)
		}
		if IsTruthy(cond) {
			return i.executeStatement(s.Then)
		}
		if s.Else != nil {
			return i.executeStatement(s.Else)
		}
		return nil

	case *ast.While:
		for {
			cond, rerr := i.evaluate(s.Condition)
			if rerr != nil {
				return errorSignal(rerr)
			}
			if !IsTruthy(cond) {
				return nil
			}
			sig := i.executeStatement(s.Body)
			if sig == nil {
				continue
			}
			if sig.kind == sigBreak {
				return nil
			}
			if sig.kind == sigContinue {
				continue
			}
			return sig
		}

	case *ast.For:
		return i.executeFor(s)

	case *ast.Print:
		v, rerr := i.evaluate(s.Value)
		if rerr != nil {
			return errorSignal(rerr)
		}
		fmt.Fprintln(i.stdout, v.String())
		return nil

	case *ast.Return:
		if s.Value == nil {
			return returnSignal(theNil)
		}
		v, rerr := i.evaluate(s.Value)
		if rerr != nil {
			return errorSignal(rerr)
		}
		return returnSignal(v)

	case *ast.Try:
		stackDepth := len(i.stack)
		sig := i.executeStatement(s.Block)
		if sig == nil {
			return nil
		}
		if sig.isControlFlow() {
			return sig
		}
		// The error is handled here: drop the frames the try block left
		// on the stack (they were kept in place so --trace could see
		// them at the point of the throw, but the throw is no longer
		// propagating past this catch).
		i.stack = i.stack[:stackDepth]
		catchEnv := NewEnvironment(i.current)
		catchEnv.Define(s.CatchName, &StringValue{Value: sig.err.Message})
		return i.executeBlock(s.CatchBlock.Statements, NewEnvironment(catchEnv))

	case *ast.Throw:
		v, rerr := i.evaluate(s.Value)
		if rerr != nil {
			return errorSignal(rerr)
		}
		return errorSignal(&RuntimeError{Message: v.String(), Pos: s.Token.Pos, Thrown: true, Value: v})

	case *ast.Break:
		return breakSignal()

	case *ast.Continue:
		return continueSignal()

	case *ast.Export:
		sig := i.executeStatement(s.Decl)
		if sig != nil {
			return sig
		}
		if len(i.exportNames) > 0 {
			i.exportNames[len(i.exportNames)-1][exportedName(s.Decl)] = true
		}
		return nil

	case *ast.Empty:
		return nil

	default:
		panic(fmt.Sprintf("interp: unhandled statement type %T", stmt))
	}
}

// exportedName extracts the declared name from the statement an Export
// node wraps, per spec.md's "export must precede a var/fun/class decl".
func exportedName(decl ast.Statement) string {
	switch d := decl.(type) {
	case *ast.VarDecl:
		return d.Name
	case *ast.FunctionDecl:
		return d.Name
	case *ast.ClassDecl:
		return d.Name
	default:
		return ""
	}
}

// executeBlock runs stmts in env, always restoring i.current to the
// caller's environment before returning — spec.md §5's "finally-style
// discipline": normal completion, an error, and a control-flow signal
// all take this same path out.
func (i *Interpreter) executeBlock(stmts []ast.Statement, env *Environment) *signal {
	previous := i.current
	i.current = env
	defer func() { i.current = previous }()
	return i.executeStatements(stmts)
}

func (i *Interpreter) executeFor(s *ast.For) *signal {
	env := NewEnvironment(i.current)
	previous := i.current
	i.current = env
	defer func() { i.current = previous }()

	if s.Init != nil {
		if sig := i.executeStatement(s.Init); sig != nil {
			return sig
		}
	}

	for {
		if s.Condition != nil {
			cond, rerr := i.evaluate(s.Condition)
			if rerr != nil {
				return errorSignal(rerr)
			}
			if !IsTruthy(cond) {
				return nil
			}
		}

		sig := i.executeStatement(s.Body)
		if sig != nil {
			if sig.kind == sigBreak {
				return nil
			}
			if sig.kind != sigContinue {
				return sig
			}
		}

		if s.Post != nil {
			if _, rerr := i.evaluate(s.Post); rerr != nil {
				return errorSignal(rerr)
			}
		}
	}
}

func (i *Interpreter) executeClassDecl(s *ast.ClassDecl) *signal {
	var superclass *ClassValue
	if s.Superclass != nil {
		v, rerr := i.evaluate(s.Superclass)
		if rerr != nil {
			return errorSignal(rerr)
		}
		sc, ok := v.(*ClassValue)
		if !ok {
			return errorSignal(newRuntimeError(s.Superclass.Token.Pos, "superclass must be a class"))
		}
		superclass = sc
	}

	classEnv := i.current
	if superclass != nil {
		classEnv = NewEnvironment(i.current)
		classEnv.Define("super", superclass)
	}

	methods := make(map[string]*FunctionValue, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name] = &FunctionValue{
			Name:          m.Name,
			Parameters:    m.Parameters,
			Body:          m.Body,
			Closure:       classEnv,
			IsInitializer: m.Name == "init",
		}
	}

	class := &ClassValue{Name: s.Name, Methods: methods, Superclass: superclass}
	i.current.Define(s.Name, class)
	return nil
}

// ---------------------------------------------------------------------
// Expression evaluation
// ---------------------------------------------------------------------

func (i *Interpreter) evaluate(expr ast.Expression) (Value, *RuntimeError) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return &NumberValue{Value: e.Value}, nil
	case *ast.StringLiteral:
		return &StringValue{Value: e.Value}, nil
	case *ast.BooleanLiteral:
		return boolValue(e.Value), nil
	case *ast.NilLiteral:
		return theNil, nil

	case *ast.ListLiteral:
		elems := make([]Value, len(e.Elements))
		for idx, el := range e.Elements {
			v, rerr := i.evaluate(el)
			if rerr != nil {
				return nil, rerr
			}
			elems[idx] = v
		}
		return &ListValue{Elements: elems}, nil

	case *ast.TupleLiteral:
		elems := make([]Value, len(e.Elements))
		for idx, el := range e.Elements {
			v, rerr := i.evaluate(el)
			if rerr != nil {
				return nil, rerr
			}
			elems[idx] = v
		}
		return &TupleValue{Elements: elems}, nil

	case *ast.DictLiteral:
		dict := NewDictValue()
		for _, entry := range e.Entries {
			k, rerr := i.evaluate(entry.Key)
			if rerr != nil {
				return nil, rerr
			}
			v, rerr := i.evaluate(entry.Value)
			if rerr != nil {
				return nil, rerr
			}
			dict.Set(StringKeyOf(k), v)
		}
		return dict, nil

	case *ast.Variable:
		return i.lookupVariable(e.ID, e.Name, e.Token.Pos)

	case *ast.This:
		return i.lookupVariable(e.ID, "this", e.Token.Pos)

	case *ast.Super:
		return i.evalSuper(e)

	case *ast.Assign:
		v, rerr := i.evaluate(e.Value)
		if rerr != nil {
			return nil, rerr
		}
		if rerr := i.assignVariable(e.ID, e.Name, v); rerr != nil {
			return nil, rerr
		}
		return v, nil

	case *ast.CompoundAssign:
		return i.evalCompoundAssign(e)

	case *ast.SetProperty:
		return i.evalSetProperty(e)

	case *ast.SetIndex:
		return i.evalSetIndex(e)

	case *ast.Binary:
		return i.evalBinary(e)

	case *ast.Logical:
		return i.evalLogical(e)

	case *ast.Unary:
		return i.evalUnary(e)

	case *ast.Grouping:
		return i.evaluate(e.Expression)

	case *ast.Call:
		return i.evalCall(e)

	case *ast.GetProperty:
		return i.evalGetProperty(e)

	case *ast.GetIndex:
		return i.evalGetIndex(e)

	case *ast.Lambda:
		return &FunctionValue{Name: "", Parameters: e.Parameters, Body: e.Body, Closure: i.current}, nil

	default:
		panic(fmt.Sprintf("interp: unhandled expression type %T", expr))
	}
}

// lookupVariable implements spec.md §4.4's variable-lookup rule: resolved
// references walk straight to their depth; unresolved ones fall back to
// globals only.
func (i *Interpreter) lookupVariable(id ast.ExprID, name string, pos lexer.Position) (Value, *RuntimeError) {
	if depth, ok := i.depths[id]; ok {
		return i.current.GetAt(depth, name), nil
	}
	if v, ok := i.globals.Get(name); ok {
		return v, nil
	}
	return nil, newRuntimeError(pos, "undefined variable '%s'", name)
}

func (i *Interpreter) assignVariable(id ast.ExprID, name string, value Value) *RuntimeError {
	if depth, ok := i.depths[id]; ok {
		i.current.AssignAt(depth, name, value)
		return nil
	}
	if i.globals.Assign(name, value) {
		return nil
	}
	return newRuntimeError(lexer.Position{}, "undefined variable '%s'", name)
}

func (i *Interpreter) evalSuper(e *ast.Super) (Value, *RuntimeError) {
	depth, ok := i.depths[e.ID]
	if !ok {
		return nil, newRuntimeError(e.Token.Pos, "internal error: unresolved 'super'")
	}
	superclass := i.current.GetAt(depth, "super").(*ClassValue)
	// `this` is always exactly one scope closer than `super` (spec.md §3
	// invariant: the this-scope is nested one level inside the super-scope).
	instance := i.current.GetAt(depth-1, "this").(*InstanceValue)

	method := superclass.FindMethod(e.Method)
	if method == nil {
		return nil, newRuntimeError(e.Token.Pos, "undefined property '%s'", e.Method)
	}
	return method.Bind(instance), nil
}

func (i *Interpreter) evalCompoundAssign(e *ast.CompoundAssign) (Value, *RuntimeError) {
	current, rerr := i.lookupVariable(e.ID, e.Name, e.Token.Pos)
	if rerr != nil {
		return nil, rerr
	}
	rhs, rerr := i.evaluate(e.Value)
	if rerr != nil {
		return nil, rerr
	}
	op := strings.TrimSuffix(e.Operator, "=")
	result, rerr := applyArithmetic(op, current, rhs, e.Token.Pos)
	if rerr != nil {
		return nil, rerr
	}
	if rerr := i.assignVariable(e.ID, e.Name, result); rerr != nil {
		return nil, rerr
	}
	return result, nil
}

func (i *Interpreter) evalSetProperty(e *ast.SetProperty) (Value, *RuntimeError) {
	obj, rerr := i.evaluate(e.Object)
	if rerr != nil {
		return nil, rerr
	}
	instance, ok := obj.(*InstanceValue)
	if !ok {
		return nil, newRuntimeError(e.Token.Pos, "only instances have settable properties")
	}
	value, rerr := i.evaluate(e.Value)
	if rerr != nil {
		return nil, rerr
	}
	instance.Set(e.Name, value)
	return value, nil
}

func (i *Interpreter) evalSetIndex(e *ast.SetIndex) (Value, *RuntimeError) {
	coll, rerr := i.evaluate(e.Collection)
	if rerr != nil {
		return nil, rerr
	}
	idx, rerr := i.evaluate(e.Index)
	if rerr != nil {
		return nil, rerr
	}
	value, rerr := i.evaluate(e.Value)
	if rerr != nil {
		return nil, rerr
	}

	switch c := coll.(type) {
	case *ListValue:
		n, ok := idx.(*NumberValue)
		if !ok {
			return nil, newRuntimeError(e.Token.Pos, "list index must be a number")
		}
		idxInt := int(n.Value)
		if idxInt < 0 || idxInt >= len(c.Elements) {
			return nil, newRuntimeError(e.Token.Pos, "list index out of range")
		}
		c.Elements[idxInt] = value
		return value, nil
	case *DictValue:
		c.Set(StringKeyOf(idx), value)
		return value, nil
	default:
		return nil, newRuntimeError(e.Token.Pos, "cannot index-assign a %s", coll.Type())
	}
}

func (i *Interpreter) evalBinary(e *ast.Binary) (Value, *RuntimeError) {
	left, rerr := i.evaluate(e.Left)
	if rerr != nil {
		return nil, rerr
	}
	right, rerr := i.evaluate(e.Right)
	if rerr != nil {
		return nil, rerr
	}

	switch e.Operator {
	case "==":
		return boolValue(ValuesEqual(left, right)), nil
	case "!=":
		return boolValue(!ValuesEqual(left, right)), nil
	case "<", "<=", ">", ">=":
		return compareNumbers(e.Operator, left, right, e.Token.Pos)
	case "&", "|", "^":
		return bitwiseOp(e.Operator, left, right, e.Token.Pos)
	default:
		return applyArithmetic(e.Operator, left, right, e.Token.Pos)
	}
}

func compareNumbers(op string, left, right Value, pos lexer.Position) (Value, *RuntimeError) {
	l, lok := left.(*NumberValue)
	r, rok := right.(*NumberValue)
	if !lok || !rok {
		return nil, newRuntimeError(pos, "comparison operands must be numbers")
	}
	switch op {
	case "<":
		return boolValue(l.Value < r.Value), nil
	case "<=":
		return boolValue(l.Value <= r.Value), nil
	case ">":
		return boolValue(l.Value > r.Value), nil
	case ">=":
		return boolValue(l.Value >= r.Value), nil
	}
	panic("unreachable")
}

func bitwiseOp(op string, left, right Value, pos lexer.Position) (Value, *RuntimeError) {
	l, lok := left.(*NumberValue)
	r, rok := right.(*NumberValue)
	if !lok || !rok {
		return nil, newRuntimeError(pos, "bitwise operands must be numbers")
	}
	li, ri := int64(l.Value), int64(r.Value)
	var result int64
	switch op {
	case "&":
		result = li & ri
	case "|":
		result = li | ri
	case "^":
		result = li ^ ri
	}
	return &NumberValue{Value: float64(result)}, nil
}

// applyArithmetic implements `+ - * / %` per spec.md §4.4: numbers for
// all four/five, with `+` additionally overloaded on strings (concat),
// lists (in-place extension of the left operand), tuples (concat), and
// dicts (right-biased merge).
func applyArithmetic(op string, left, right Value, pos lexer.Position) (Value, *RuntimeError) {
	if op == "+" {
		if v, ok, rerr := applyPlusOverload(left, right, pos); ok || rerr != nil {
			return v, rerr
		}
	}

	l, lok := left.(*NumberValue)
	r, rok := right.(*NumberValue)
	if !lok || !rok {
		return nil, newRuntimeError(pos, "operator %q requires numbers", op)
	}

	switch op {
	case "+":
		return &NumberValue{Value: l.Value + r.Value}, nil
	case "-":
		return &NumberValue{Value: l.Value - r.Value}, nil
	case "*":
		return &NumberValue{Value: l.Value * r.Value}, nil
	case "/":
		if r.Value == 0 {
			return nil, newRuntimeError(pos, "division by zero")
		}
		return &NumberValue{Value: l.Value / r.Value}, nil
	case "%":
		if r.Value == 0 {
			return nil, newRuntimeError(pos, "modulo by zero")
		}
		return &NumberValue{Value: math.Mod(l.Value, r.Value)}, nil
	default:
		return nil, newRuntimeError(pos, "unknown operator %q", op)
	}
}

// applyPlusOverload handles `+`'s non-numeric overloads. ok is false
// (with a nil error) when neither operand matches one of these shapes,
// signalling the caller to fall through to numeric addition (and its
// type-mismatch error if that fails too).
func applyPlusOverload(left, right Value, pos lexer.Position) (Value, bool, *RuntimeError) {
	switch l := left.(type) {
	case *StringValue:
		r, ok := right.(*StringValue)
		if !ok {
			return nil, false, newRuntimeError(pos, "cannot concatenate String with %s", right.Type())
		}
		return &StringValue{Value: l.Value + r.Value}, true, nil
	case *ListValue:
		r, ok := right.(*ListValue)
		if !ok {
			return nil, false, newRuntimeError(pos, "cannot concatenate List with %s", right.Type())
		}
		l.Elements = append(l.Elements, r.Elements...)
		return l, true, nil
	case *TupleValue:
		r, ok := right.(*TupleValue)
		if !ok {
			return nil, false, newRuntimeError(pos, "cannot concatenate Tuple with %s", right.Type())
		}
		elems := make([]Value, 0, len(l.Elements)+len(r.Elements))
		elems = append(elems, l.Elements...)
		elems = append(elems, r.Elements...)
		return &TupleValue{Elements: elems}, true, nil
	case *DictValue:
		r, ok := right.(*DictValue)
		if !ok {
			return nil, false, newRuntimeError(pos, "cannot merge Dict with %s", right.Type())
		}
		merged := NewDictValue()
		for _, k := range l.Order {
			merged.Set(k, l.Entries[k])
		}
		for _, k := range r.Order {
			merged.Set(k, r.Entries[k])
		}
		return merged, true, nil
	default:
		switch right.(type) {
		case *StringValue, *ListValue, *TupleValue, *DictValue:
			return nil, false, newRuntimeError(pos, "cannot add %s to %s", left.Type(), right.Type())
		}
		return nil, false, nil
	}
}

func (i *Interpreter) evalLogical(e *ast.Logical) (Value, *RuntimeError) {
	left, rerr := i.evaluate(e.Left)
	if rerr != nil {
		return nil, rerr
	}
	switch e.Operator {
	case "||", "or":
		if IsTruthy(left) {
			return left, nil
		}
	case "&&", "and":
		if !IsTruthy(left) {
			return left, nil
		}
	}
	return i.evaluate(e.Right)
}

func (i *Interpreter) evalUnary(e *ast.Unary) (Value, *RuntimeError) {
	right, rerr := i.evaluate(e.Right)
	if rerr != nil {
		return nil, rerr
	}
	switch e.Operator {
	case "-":
		n, ok := right.(*NumberValue)
		if !ok {
			return nil, newRuntimeError(e.Token.Pos, "unary '-' requires a number")
		}
		return &NumberValue{Value: -n.Value}, nil
	case "!":
		return boolValue(!IsTruthy(right)), nil
	case "~":
		n, ok := right.(*NumberValue)
		if !ok {
			return nil, newRuntimeError(e.Token.Pos, "unary '~' requires a number")
		}
		return &NumberValue{Value: float64(^int64(n.Value))}, nil
	default:
		return nil, newRuntimeError(e.Token.Pos, "unknown unary operator %q", e.Operator)
	}
}

func (i *Interpreter) evalGetProperty(e *ast.GetProperty) (Value, *RuntimeError) {
	obj, rerr := i.evaluate(e.Object)
	if rerr != nil {
		return nil, rerr
	}

	switch o := obj.(type) {
	case *InstanceValue:
		if v, ok := o.Get(e.Name); ok {
			return v, nil
		}
		return nil, newRuntimeError(e.Token.Pos, "undefined property '%s'", e.Name)
	case *ModuleValue:
		if v, ok := o.Exports[e.Name]; ok {
			return v, nil
		}
		if !o.Initialised {
			return nil, newRuntimeError(e.Token.Pos, "circular dependency: module not yet initialised when '%s' was accessed", e.Name)
		}
		return nil, newRuntimeError(e.Token.Pos, "module has no export '%s'", e.Name)
	default:
		if m, ok := lookupNativeMethod(obj, e.Name); ok {
			return m, nil
		}
		return nil, newRuntimeError(e.Token.Pos, "%s has no property '%s'", obj.Type(), e.Name)
	}
}

func (i *Interpreter) evalGetIndex(e *ast.GetIndex) (Value, *RuntimeError) {
	coll, rerr := i.evaluate(e.Collection)
	if rerr != nil {
		return nil, rerr
	}
	idx, rerr := i.evaluate(e.Index)
	if rerr != nil {
		return nil, rerr
	}

	switch c := coll.(type) {
	case *ListValue:
		n, ok := idx.(*NumberValue)
		if !ok || n.Value < 0 || int(n.Value) >= len(c.Elements) {
			return nil, newRuntimeError(e.Token.Pos, "list index out of range")
		}
		return c.Elements[int(n.Value)], nil
	case *TupleValue:
		n, ok := idx.(*NumberValue)
		if !ok || n.Value < 0 || int(n.Value) >= len(c.Elements) {
			return nil, newRuntimeError(e.Token.Pos, "tuple index out of range")
		}
		return c.Elements[int(n.Value)], nil
	case *DictValue:
		v, ok := c.Entries[StringKeyOf(idx)]
		if !ok {
			return theNil, nil
		}
		return v, nil
	case *StringValue:
		n, ok := idx.(*NumberValue)
		if !ok || n.Value < 0 || int(n.Value) >= len(c.Value) {
			return nil, newRuntimeError(e.Token.Pos, "string index out of range")
		}
		return &StringValue{Value: string(c.Value[int(n.Value)])}, nil
	default:
		return nil, newRuntimeError(e.Token.Pos, "%s is not indexable", coll.Type())
	}
}

func (i *Interpreter) evalCall(e *ast.Call) (Value, *RuntimeError) {
	callee, rerr := i.evaluate(e.Callee)
	if rerr != nil {
		return nil, rerr
	}

	args := make([]Value, len(e.Arguments))
	for idx, a := range e.Arguments {
		v, rerr := i.evaluate(a)
		if rerr != nil {
			return nil, rerr
		}
		args[idx] = v
	}

	return i.callValue(callee, args, e.Token.Pos)
}

// callValue dispatches a call across every callable value kind (spec.md
// §4.4 "Calls"). It is also used directly by native implementations
// (e.g. list.map/filter) that invoke a Rox callback value.
func (i *Interpreter) callValue(callee Value, args []Value, pos lexer.Position) (Value, *RuntimeError) {
	switch c := callee.(type) {
	case *FunctionValue:
		return i.callFunction(c, args, pos)
	case *ClassValue:
		return i.instantiate(c, args, pos)
	case *NativeFunction:
		if c.Arity >= 0 && len(args) != c.Arity {
			return nil, newRuntimeError(pos, "%s expects %d argument(s), got %d", c.Name, c.Arity, len(args))
		}
		return c.Fn(i, args)
	case *BoundNativeMethod:
		full := append([]Value{c.Receiver}, args...)
		if c.Method.Arity >= 0 && len(args) != c.Method.Arity {
			return nil, newRuntimeError(pos, "%s expects %d argument(s), got %d", c.Method.Name, c.Method.Arity, len(args))
		}
		return c.Method.Fn(i, full)
	default:
		return nil, newRuntimeError(pos, "%s is not callable", callee.Type())
	}
}

func (i *Interpreter) callFunction(fn *FunctionValue, args []Value, pos lexer.Position) (retVal Value, retErr *RuntimeError) {
	if len(args) != len(fn.Parameters) {
		return nil, newRuntimeError(pos, "%s expects %d argument(s), got %d", displayName(fn.Name), len(fn.Parameters), len(args))
	}

	callEnv := NewEnvironment(fn.Closure)
	for idx, param := range fn.Parameters {
		callEnv.Define(param, args[idx])
	}

	framePos := pos
	i.stack = append(i.stack, errors.NewStackFrame(displayName(fn.Name), &framePos))
	// Only pop this frame on a normal/control-flow return: an error
	// return leaves the frame in place so the stack at the moment the
	// error unwinds back to RunSource/Try still shows the full call
	// chain that raised it, for --trace.
	defer func() {
		if retErr == nil {
			i.stack = i.stack[:len(i.stack)-1]
		}
	}()

	sig := i.executeBlock(fn.Body, callEnv)
	if sig == nil {
		if fn.IsInitializer {
			return fn.Closure.GetAt(0, "this"), nil
		}
		return theNil, nil
	}
	if sig.kind == sigError {
		return nil, sig.err
	}
	if sig.kind == sigReturn {
		if fn.IsInitializer {
			return fn.Closure.GetAt(0, "this"), nil
		}
		return sig.value, nil
	}
	// A break/continue escaping a function body is a resolver/parser bug.
	return nil, newRuntimeError(pos, "internal error: %v escaped function body", sig.kind)
}

func (i *Interpreter) instantiate(class *ClassValue, args []Value, pos lexer.Position) (Value, *RuntimeError) {
	instance := NewInstance(class)
	init := class.FindMethod("init")
	if init == nil {
		if len(args) != 0 {
			return nil, newRuntimeError(pos, "class '%s' takes no arguments", class.Name)
		}
		return instance, nil
	}
	bound := init.Bind(instance)
	if _, rerr := i.callFunction(bound, args, pos); rerr != nil {
		return nil, rerr
	}
	return instance, nil
}
