package ast

import (
	"strings"

	"github.com/cwbudde/rox/internal/lexer"
)

// ExpressionStatement wraps a bare expression used for its side effects.
type ExpressionStatement struct {
	Token      lexer.Token
	Expression Expression
}

func (e *ExpressionStatement) statementNode()      {}
func (e *ExpressionStatement) TokenLiteral() string { return e.Token.Lexeme }
func (e *ExpressionStatement) Pos() lexer.Position  { return e.Token.Pos }
func (e *ExpressionStatement) String() string        { return e.Expression.String() + ";" }

// VarDecl is `var name = init;` (init may be nil).
type VarDecl struct {
	Token lexer.Token
	Name  string
	Init  Expression
}

func (v *VarDecl) statementNode()      {}
func (v *VarDecl) TokenLiteral() string { return v.Token.Lexeme }
func (v *VarDecl) Pos() lexer.Position  { return v.Token.Pos }
func (v *VarDecl) String() string {
	if v.Init == nil {
		return "var " + v.Name + ";"
	}
	return "var " + v.Name + " = " + v.Init.String() + ";"
}

// FunctionDecl is `fun name(params) { body }`, also used (with Name set)
// for methods inside a ClassDecl.
type FunctionDecl struct {
	Token      lexer.Token
	Name       string
	Parameters []string
	Body       []Statement
}

func (f *FunctionDecl) statementNode()      {}
func (f *FunctionDecl) TokenLiteral() string { return f.Token.Lexeme }
func (f *FunctionDecl) Pos() lexer.Position  { return f.Token.Pos }
func (f *FunctionDecl) String() string {
	return "fun " + f.Name + "(" + strings.Join(f.Parameters, ", ") + ") { ... }"
}

// ClassDecl is `class Name < Super { methods }`. Superclass is a Variable,
// or nil if there is none.
type ClassDecl struct {
	Token      lexer.Token
	Name       string
	Superclass *Variable
	Methods    []*FunctionDecl
}

func (c *ClassDecl) statementNode()      {}
func (c *ClassDecl) TokenLiteral() string { return c.Token.Lexeme }
func (c *ClassDecl) Pos() lexer.Position  { return c.Token.Pos }
func (c *ClassDecl) String() string {
	var sb strings.Builder
	sb.WriteString("class ")
	sb.WriteString(c.Name)
	if c.Superclass != nil {
		sb.WriteString(" < ")
		sb.WriteString(c.Superclass.Name)
	}
	sb.WriteString(" { ... }")
	return sb.String()
}

// Block is a `{ ... }` statement sequence introducing its own scope.
type Block struct {
	Token      lexer.Token
	Statements []Statement
}

func (b *Block) statementNode()      {}
func (b *Block) TokenLiteral() string { return b.Token.Lexeme }
func (b *Block) Pos() lexer.Position  { return b.Token.Pos }
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Statements {
		sb.WriteString("  ")
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// If is `if (cond) then else else` (Else may be nil).
type If struct {
	Token     lexer.Token
	Condition Expression
	Then      Statement
	Else      Statement
}

func (i *If) statementNode()      {}
func (i *If) TokenLiteral() string { return i.Token.Lexeme }
func (i *If) Pos() lexer.Position  { return i.Token.Pos }
func (i *If) String() string {
	s := "if (" + i.Condition.String() + ") " + i.Then.String()
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}

// While is `while (cond) body`.
type While struct {
	Token     lexer.Token
	Condition Expression
	Body      Statement
}

func (w *While) statementNode()      {}
func (w *While) TokenLiteral() string { return w.Token.Lexeme }
func (w *While) Pos() lexer.Position  { return w.Token.Pos }
func (w *While) String() string {
	return "while (" + w.Condition.String() + ") " + w.Body.String()
}

// For is a C-style `for (init; cond; post) body`. Init, Condition, and Post
// may each be nil.
type For struct {
	Token     lexer.Token
	Init      Statement
	Condition Expression
	Post      Expression
	Body      Statement
}

func (f *For) statementNode()      {}
func (f *For) TokenLiteral() string { return f.Token.Lexeme }
func (f *For) Pos() lexer.Position  { return f.Token.Pos }
func (f *For) String() string {
	return "for (...) " + f.Body.String()
}

// Print is `print expr;`.
type Print struct {
	Token lexer.Token
	Value Expression
}

func (p *Print) statementNode()      {}
func (p *Print) TokenLiteral() string { return p.Token.Lexeme }
func (p *Print) Pos() lexer.Position  { return p.Token.Pos }
func (p *Print) String() string       { return "print " + p.Value.String() + ";" }

// Return is `return expr;` (Value may be nil for a bare return).
type Return struct {
	Token lexer.Token
	Value Expression
}

func (r *Return) statementNode()      {}
func (r *Return) TokenLiteral() string { return r.Token.Lexeme }
func (r *Return) Pos() lexer.Position  { return r.Token.Pos }
func (r *Return) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}

// Try is `try block catch (name) block`.
type Try struct {
	Token        lexer.Token
	Block        *Block
	CatchName    string
	CatchBlock   *Block
}

func (t *Try) statementNode()      {}
func (t *Try) TokenLiteral() string { return t.Token.Lexeme }
func (t *Try) Pos() lexer.Position  { return t.Token.Pos }
func (t *Try) String() string {
	return "try " + t.Block.String() + " catch (" + t.CatchName + ") " + t.CatchBlock.String()
}

// Throw is `throw expr;`.
type Throw struct {
	Token lexer.Token
	Value Expression
}

func (t *Throw) statementNode()      {}
func (t *Throw) TokenLiteral() string { return t.Token.Lexeme }
func (t *Throw) Pos() lexer.Position  { return t.Token.Pos }
func (t *Throw) String() string       { return "throw " + t.Value.String() + ";" }

// Break is a `break;` statement.
type Break struct {
	Token lexer.Token
}

func (b *Break) statementNode()      {}
func (b *Break) TokenLiteral() string { return b.Token.Lexeme }
func (b *Break) Pos() lexer.Position  { return b.Token.Pos }
func (b *Break) String() string       { return "break;" }

// Continue is a `continue;` statement.
type Continue struct {
	Token lexer.Token
}

func (c *Continue) statementNode()      {}
func (c *Continue) TokenLiteral() string { return c.Token.Lexeme }
func (c *Continue) Pos() lexer.Position  { return c.Token.Pos }
func (c *Continue) String() string       { return "continue;" }

// Export wraps a var/fun/class declaration that should be published to a
// module's exports map when executed inside an import()-loaded module.
type Export struct {
	Token lexer.Token
	Decl  Statement
}

func (e *Export) statementNode()      {}
func (e *Export) TokenLiteral() string { return e.Token.Lexeme }
func (e *Export) Pos() lexer.Position  { return e.Token.Pos }
func (e *Export) String() string       { return "export " + e.Decl.String() }

// Empty is a bare `;` with no effect.
type Empty struct {
	Token lexer.Token
}

func (e *Empty) statementNode()      {}
func (e *Empty) TokenLiteral() string { return e.Token.Lexeme }
func (e *Empty) Pos() lexer.Position  { return e.Token.Pos }
func (e *Empty) String() string       { return ";" }
