package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cwbudde/rox/internal/ast"
	"github.com/cwbudde/rox/internal/lexer"
	"github.com/cwbudde/rox/internal/parser"
	"github.com/spf13/cobra"
)

var (
	parseExpression bool
	parseDumpAST    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse Rox source code and display the AST",
	Long: `Parse Rox source code and display the Abstract Syntax Tree (AST).

If no file is provided, reads from stdin.
Use -e to parse a single expression from the command line.
Use --dump-ast to show the full tree structure rather than the
re-rendered source form.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression from the command line")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "dump the full AST structure")
}

func runParse(cmd *cobra.Command, args []string) error {
	var input string

	if parseExpression {
		if len(args) == 0 {
			return fail(exitUsage, "no expression provided")
		}
		input = args[0]
		if !strings.HasSuffix(strings.TrimSpace(input), ";") {
			input += ";"
		}
	} else if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fail(exitUsage, "error reading file: %v", err)
		}
		input = string(data)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fail(exitUsage, "error reading stdin: %v", err)
		}
		input = string(data)
	}

	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "Parser errors:\n")
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
		return fail(exitFailure, "parsing failed with %d error(s)", len(errs))
	}

	if parseDumpAST {
		fmt.Println("Abstract Syntax Tree:")
		fmt.Println("=====================")
		for _, stmt := range program.Statements {
			dumpASTNode(stmt, 0)
		}
	} else {
		fmt.Println(program.String())
	}

	return nil
}

// dumpASTNode prints a one-node-per-line tree, recursing into every
// child field a node carries. Every node already knows how to render
// itself compactly via String(); this adds the type name and indent
// depth on top of that rather than re-deriving each node's shape.
func dumpASTNode(node ast.Node, indent int) {
	pad := ""
	for i := 0; i < indent; i++ {
		pad += "  "
	}

	switch n := node.(type) {
	case *ast.ExpressionStatement:
		fmt.Printf("%sExpressionStatement\n", pad)
		dumpASTNode(n.Expression, indent+1)
	case *ast.VarDecl:
		fmt.Printf("%sVarDecl %s\n", pad, n.Name)
		if n.Init != nil {
			dumpASTNode(n.Init, indent+1)
		}
	case *ast.FunctionDecl:
		fmt.Printf("%sFunctionDecl %s(%v)\n", pad, n.Name, n.Parameters)
		for _, s := range n.Body {
			dumpASTNode(s, indent+1)
		}
	case *ast.ClassDecl:
		super := ""
		if n.Superclass != nil {
			super = " < " + n.Superclass.Name
		}
		fmt.Printf("%sClassDecl %s%s\n", pad, n.Name, super)
		for _, m := range n.Methods {
			dumpASTNode(m, indent+1)
		}
	case *ast.Block:
		fmt.Printf("%sBlock (%d statements)\n", pad, len(n.Statements))
		for _, s := range n.Statements {
			dumpASTNode(s, indent+1)
		}
	case *ast.If:
		fmt.Printf("%sIf\n", pad)
		dumpASTNode(n.Condition, indent+1)
		dumpASTNode(n.Then, indent+1)
		if n.Else != nil {
			dumpASTNode(n.Else, indent+1)
		}
	case *ast.While:
		fmt.Printf("%sWhile\n", pad)
		dumpASTNode(n.Condition, indent+1)
		dumpASTNode(n.Body, indent+1)
	case *ast.For:
		fmt.Printf("%sFor\n", pad)
		dumpASTNode(n.Body, indent+1)
	case *ast.Print:
		fmt.Printf("%sPrint\n", pad)
		dumpASTNode(n.Value, indent+1)
	case *ast.Return:
		fmt.Printf("%sReturn\n", pad)
		if n.Value != nil {
			dumpASTNode(n.Value, indent+1)
		}
	case *ast.Try:
		fmt.Printf("%sTry catch(%s)\n", pad, n.CatchName)
		dumpASTNode(n.Block, indent+1)
		dumpASTNode(n.CatchBlock, indent+1)
	case *ast.Throw:
		fmt.Printf("%sThrow\n", pad)
		dumpASTNode(n.Value, indent+1)
	case *ast.Break:
		fmt.Printf("%sBreak\n", pad)
	case *ast.Continue:
		fmt.Printf("%sContinue\n", pad)
	case *ast.Export:
		fmt.Printf("%sExport\n", pad)
		dumpASTNode(n.Decl, indent+1)
	case *ast.Empty:
		fmt.Printf("%sEmpty\n", pad)
	case *ast.Binary:
		fmt.Printf("%sBinary (%s)\n", pad, n.Operator)
		dumpASTNode(n.Left, indent+1)
		dumpASTNode(n.Right, indent+1)
	case *ast.Logical:
		fmt.Printf("%sLogical (%s)\n", pad, n.Operator)
		dumpASTNode(n.Left, indent+1)
		dumpASTNode(n.Right, indent+1)
	case *ast.Unary:
		fmt.Printf("%sUnary (%s)\n", pad, n.Operator)
		dumpASTNode(n.Right, indent+1)
	case *ast.Grouping:
		fmt.Printf("%sGrouping\n", pad)
		dumpASTNode(n.Expression, indent+1)
	case *ast.Call:
		fmt.Printf("%sCall (%d args)\n", pad, len(n.Arguments))
		dumpASTNode(n.Callee, indent+1)
		for _, a := range n.Arguments {
			dumpASTNode(a, indent+1)
		}
	case *ast.GetProperty:
		fmt.Printf("%sGetProperty .%s\n", pad, n.Name)
		dumpASTNode(n.Object, indent+1)
	case *ast.GetIndex:
		fmt.Printf("%sGetIndex\n", pad)
		dumpASTNode(n.Collection, indent+1)
		dumpASTNode(n.Index, indent+1)
	case *ast.SetProperty:
		fmt.Printf("%sSetProperty .%s\n", pad, n.Name)
		dumpASTNode(n.Object, indent+1)
		dumpASTNode(n.Value, indent+1)
	case *ast.SetIndex:
		fmt.Printf("%sSetIndex\n", pad)
		dumpASTNode(n.Collection, indent+1)
		dumpASTNode(n.Index, indent+1)
		dumpASTNode(n.Value, indent+1)
	case *ast.Assign:
		fmt.Printf("%sAssign %s\n", pad, n.Name)
		dumpASTNode(n.Value, indent+1)
	case *ast.CompoundAssign:
		fmt.Printf("%sCompoundAssign %s %s\n", pad, n.Name, n.Operator)
		dumpASTNode(n.Value, indent+1)
	case *ast.Lambda:
		fmt.Printf("%sLambda(%v)\n", pad, n.Parameters)
		for _, s := range n.Body {
			dumpASTNode(s, indent+1)
		}
	case *ast.ListLiteral:
		fmt.Printf("%sListLiteral (%d elements)\n", pad, len(n.Elements))
		for _, e := range n.Elements {
			dumpASTNode(e, indent+1)
		}
	case *ast.TupleLiteral:
		fmt.Printf("%sTupleLiteral (%d elements)\n", pad, len(n.Elements))
		for _, e := range n.Elements {
			dumpASTNode(e, indent+1)
		}
	case *ast.DictLiteral:
		fmt.Printf("%sDictLiteral (%d entries)\n", pad, len(n.Entries))
		for _, entry := range n.Entries {
			dumpASTNode(entry.Key, indent+1)
			dumpASTNode(entry.Value, indent+1)
		}
	case *ast.Variable:
		fmt.Printf("%sVariable %s\n", pad, n.Name)
	case *ast.This:
		fmt.Printf("%sThis\n", pad)
	case *ast.Super:
		fmt.Printf("%sSuper.%s\n", pad, n.Method)
	case *ast.NumberLiteral:
		fmt.Printf("%sNumberLiteral %v\n", pad, n.Value)
	case *ast.StringLiteral:
		fmt.Printf("%sStringLiteral %q\n", pad, n.Value)
	case *ast.BooleanLiteral:
		fmt.Printf("%sBooleanLiteral %v\n", pad, n.Value)
	case *ast.NilLiteral:
		fmt.Printf("%sNilLiteral\n", pad)
	default:
		fmt.Printf("%s%T: %s\n", pad, node, node.String())
	}
}
