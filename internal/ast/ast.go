// Package ast defines the Abstract Syntax Tree node types for Rox.
package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/cwbudde/rox/internal/lexer"
)

// ExprID uniquely identifies a name-bearing expression within a single
// parse session. It is the sole key linking resolver output (scope depth)
// to evaluator input; keeping it out of the node itself as anything but a
// plain int lets the AST stay immutable after parsing.
type ExprID int

// Node is the base interface every AST node implements.
type Node interface {
	// TokenLiteral returns the literal text of the token the node is
	// anchored on, useful for error messages.
	TokenLiteral() string
	// String renders the node for debugging and the `rox fmt`/`parse`
	// commands.
	String() string
	// Pos returns the node's source position for diagnostics.
	Pos() lexer.Position
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action without producing a value.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of the AST: an ordered sequence of statements.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() lexer.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return lexer.Position{}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// ---------------------------------------------------------------------
// Literals
// ---------------------------------------------------------------------

type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Lexeme }
func (n *NumberLiteral) Pos() lexer.Position  { return n.Token.Pos }
func (n *NumberLiteral) String() string       { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Lexeme }
func (s *StringLiteral) Pos() lexer.Position  { return s.Token.Pos }
func (s *StringLiteral) String() string       { return strconv.Quote(s.Value) }

type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Lexeme }
func (b *BooleanLiteral) Pos() lexer.Position  { return b.Token.Pos }
func (b *BooleanLiteral) String() string       { return strconv.FormatBool(b.Value) }

type NilLiteral struct {
	Token lexer.Token
}

func (n *NilLiteral) expressionNode()      {}
func (n *NilLiteral) TokenLiteral() string { return n.Token.Lexeme }
func (n *NilLiteral) Pos() lexer.Position  { return n.Token.Pos }
func (n *NilLiteral) String() string       { return "nil" }

// ListLiteral is a `[e1, e2, ...]` expression.
type ListLiteral struct {
	Token    lexer.Token
	Elements []Expression
}

func (l *ListLiteral) expressionNode()      {}
func (l *ListLiteral) TokenLiteral() string { return l.Token.Lexeme }
func (l *ListLiteral) Pos() lexer.Position  { return l.Token.Pos }
func (l *ListLiteral) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TupleLiteral is a `(e1, e2, ...)` expression, distinguished from a
// grouped expression by having zero or 2+ elements (or a trailing comma).
type TupleLiteral struct {
	Token    lexer.Token
	Elements []Expression
}

func (t *TupleLiteral) expressionNode()      {}
func (t *TupleLiteral) TokenLiteral() string { return t.Token.Lexeme }
func (t *TupleLiteral) Pos() lexer.Position  { return t.Token.Pos }
func (t *TupleLiteral) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// DictEntry is one `key: value` pair inside a DictLiteral.
type DictEntry struct {
	Key   Expression
	Value Expression
}

// DictLiteral is a `{k: v, ...}` expression.
type DictLiteral struct {
	Token   lexer.Token
	Entries []DictEntry
}

func (d *DictLiteral) expressionNode()      {}
func (d *DictLiteral) TokenLiteral() string { return d.Token.Lexeme }
func (d *DictLiteral) Pos() lexer.Position  { return d.Token.Pos }
func (d *DictLiteral) String() string {
	parts := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		parts[i] = e.Key.String() + ": " + e.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ---------------------------------------------------------------------
// Name references
// ---------------------------------------------------------------------

// Variable is a bare-identifier reference; it reads a name and so carries
// an ExprID the resolver can key on.
type Variable struct {
	Token lexer.Token
	Name  string
	ID    ExprID
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Token.Lexeme }
func (v *Variable) Pos() lexer.Position  { return v.Token.Pos }
func (v *Variable) String() string       { return v.Name }

// This is the `this` expression inside a method body.
type This struct {
	Token lexer.Token
	ID    ExprID
}

func (t *This) expressionNode()      {}
func (t *This) TokenLiteral() string { return t.Token.Lexeme }
func (t *This) Pos() lexer.Position  { return t.Token.Pos }
func (t *This) String() string       { return "this" }

// Super is a `super.method` expression.
type Super struct {
	Token  lexer.Token
	Method string
	ID     ExprID
}

func (s *Super) expressionNode()      {}
func (s *Super) TokenLiteral() string { return s.Token.Lexeme }
func (s *Super) Pos() lexer.Position  { return s.Token.Pos }
func (s *Super) String() string       { return "super." + s.Method }

// ---------------------------------------------------------------------
// Assignment
// ---------------------------------------------------------------------

// Assign is `name = value`.
type Assign struct {
	Token lexer.Token
	Name  string
	Value Expression
	ID    ExprID
}

func (a *Assign) expressionNode()      {}
func (a *Assign) TokenLiteral() string { return a.Token.Lexeme }
func (a *Assign) Pos() lexer.Position  { return a.Token.Pos }
func (a *Assign) String() string       { return a.Name + " = " + a.Value.String() }

// CompoundAssign is `name += value` (and -=, *=, /=).
type CompoundAssign struct {
	Token    lexer.Token
	Name     string
	Operator string
	Value    Expression
	ID       ExprID
}

func (c *CompoundAssign) expressionNode()      {}
func (c *CompoundAssign) TokenLiteral() string { return c.Token.Lexeme }
func (c *CompoundAssign) Pos() lexer.Position  { return c.Token.Pos }
func (c *CompoundAssign) String() string {
	return c.Name + " " + c.Operator + " " + c.Value.String()
}

// SetProperty is `object.name = value`.
type SetProperty struct {
	Token  lexer.Token
	Object Expression
	Name   string
	Value  Expression
}

func (s *SetProperty) expressionNode()      {}
func (s *SetProperty) TokenLiteral() string { return s.Token.Lexeme }
func (s *SetProperty) Pos() lexer.Position  { return s.Token.Pos }
func (s *SetProperty) String() string {
	return s.Object.String() + "." + s.Name + " = " + s.Value.String()
}

// SetIndex is `collection[index] = value`.
type SetIndex struct {
	Token      lexer.Token
	Collection Expression
	Index      Expression
	Value      Expression
}

func (s *SetIndex) expressionNode()      {}
func (s *SetIndex) TokenLiteral() string { return s.Token.Lexeme }
func (s *SetIndex) Pos() lexer.Position  { return s.Token.Pos }
func (s *SetIndex) String() string {
	return s.Collection.String() + "[" + s.Index.String() + "] = " + s.Value.String()
}

// ---------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------

type Binary struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (b *Binary) expressionNode()      {}
func (b *Binary) TokenLiteral() string { return b.Token.Lexeme }
func (b *Binary) Pos() lexer.Position  { return b.Token.Pos }
func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

// Logical is `&&`/`and` and `||`/`or`, kept distinct from Binary because
// its operands short-circuit.
type Logical struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (l *Logical) expressionNode()      {}
func (l *Logical) TokenLiteral() string { return l.Token.Lexeme }
func (l *Logical) Pos() lexer.Position  { return l.Token.Pos }
func (l *Logical) String() string {
	return "(" + l.Left.String() + " " + l.Operator + " " + l.Right.String() + ")"
}

type Unary struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (u *Unary) expressionNode()      {}
func (u *Unary) TokenLiteral() string { return u.Token.Lexeme }
func (u *Unary) Pos() lexer.Position  { return u.Token.Pos }
func (u *Unary) String() string       { return "(" + u.Operator + u.Right.String() + ")" }

type Grouping struct {
	Token      lexer.Token
	Expression Expression
}

func (g *Grouping) expressionNode()      {}
func (g *Grouping) TokenLiteral() string { return g.Token.Lexeme }
func (g *Grouping) Pos() lexer.Position  { return g.Token.Pos }
func (g *Grouping) String() string       { return "(" + g.Expression.String() + ")" }

// ---------------------------------------------------------------------
// Calls, properties, indexing
// ---------------------------------------------------------------------

// Call is a function/method/class-constructor invocation. It carries an
// ExprID like other expressions, but the resolver records no depth for
// it: a Call never itself resolves a name (its Callee, typically a
// Variable, does that).
type Call struct {
	Token     lexer.Token
	Callee    Expression
	Arguments []Expression
	ID        ExprID
}

func (c *Call) expressionNode()      {}
func (c *Call) TokenLiteral() string { return c.Token.Lexeme }
func (c *Call) Pos() lexer.Position  { return c.Callee.Pos() }
func (c *Call) String() string {
	parts := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		parts[i] = a.String()
	}
	return c.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}

// GetProperty is `object.name`.
type GetProperty struct {
	Token  lexer.Token
	Object Expression
	Name   string
}

func (g *GetProperty) expressionNode()      {}
func (g *GetProperty) TokenLiteral() string { return g.Token.Lexeme }
func (g *GetProperty) Pos() lexer.Position  { return g.Object.Pos() }
func (g *GetProperty) String() string       { return g.Object.String() + "." + g.Name }

// GetIndex is `collection[index]`.
type GetIndex struct {
	Token      lexer.Token
	Collection Expression
	Index      Expression
}

func (g *GetIndex) expressionNode()      {}
func (g *GetIndex) TokenLiteral() string { return g.Token.Lexeme }
func (g *GetIndex) Pos() lexer.Position  { return g.Collection.Pos() }
func (g *GetIndex) String() string {
	return g.Collection.String() + "[" + g.Index.String() + "]"
}

// Lambda is an anonymous function expression: `fun(params) { body }`.
type Lambda struct {
	Token      lexer.Token
	Parameters []string
	Body       []Statement
}

func (l *Lambda) expressionNode()      {}
func (l *Lambda) TokenLiteral() string { return l.Token.Lexeme }
func (l *Lambda) Pos() lexer.Position  { return l.Token.Pos }
func (l *Lambda) String() string {
	return "fun(" + strings.Join(l.Parameters, ", ") + ") { ... }"
}
