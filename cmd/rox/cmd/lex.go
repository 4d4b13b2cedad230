package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/rox/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	lexEval       string
	lexShowPos    bool
	lexShowType   bool
	lexOnlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Rox file or expression",
	Long: `Tokenize (lex) a Rox program and print the resulting tokens.

This command is useful for debugging the lexer and understanding how
Rox source code is tokenized.

Examples:
  # Tokenize a script file
  rox lex script.rox

  # Tokenize an inline expression
  rox lex -e "var x = 42;"

  # Show token types and positions
  rox lex --show-type --show-pos script.rox

  # Show only illegal tokens
  rox lex --only-errors script.rox`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexShowType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&lexOnlyErrors, "only-errors", false, "show only illegal tokens")
}

func lexScript(cmd *cobra.Command, args []string) error {
	var input, filename string

	if lexEval != "" {
		input = lexEval
		filename = "<eval>"
	} else if len(args) == 1 {
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fail(exitUsage, "failed to read file %s: %v", filename, err)
		}
		input = string(content)
	} else {
		return fail(exitUsage, "either provide a file path or use -e for inline code")
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(input)

	tokenCount, errorCount := 0, 0
	for {
		tok := l.NextToken()

		if lexOnlyErrors && tok.Type != lexer.ILLEGAL {
			if tok.Type == lexer.EOF {
				break
			}
			continue
		}

		tokenCount++
		if tok.Type == lexer.ILLEGAL {
			errorCount++
		}

		printToken(tok)

		if tok.Type == lexer.EOF {
			break
		}
	}

	if verbose {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", tokenCount)
		if errorCount > 0 {
			fmt.Printf("Errors: %d\n", errorCount)
		}
	}

	if errorCount > 0 {
		return fail(exitFailure, "found %d illegal token(s)", errorCount)
	}
	return nil
}

func printToken(tok lexer.Token) {
	var output string

	if lexShowType {
		output = fmt.Sprintf("[%-12s]", tok.Type)
	}

	switch {
	case tok.Type == lexer.EOF:
		output += " EOF"
	case tok.Type == lexer.ILLEGAL:
		output += fmt.Sprintf(" ILLEGAL: %q", tok.Lexeme)
	case tok.Literal.HasStr:
		output += fmt.Sprintf(" %q", tok.Literal.Str)
	case tok.Literal.HasNum:
		output += fmt.Sprintf(" %v", tok.Literal.Num)
	default:
		output += fmt.Sprintf(" %s", tok.Lexeme)
	}

	if lexShowPos {
		output += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}

	fmt.Println(output)
}
