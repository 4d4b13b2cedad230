package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/rox/internal/ast"
	"github.com/cwbudde/rox/internal/lexer"
	"github.com/cwbudde/rox/internal/parser"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var (
	fmtWrite     bool
	fmtList      bool
	fmtDiff      bool
	fmtRecursive bool
	fmtJSON      bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files or directories...]",
	Short: "Format Rox source files",
	Long: `Format Rox source files by parsing them and re-printing the AST.

By default, fmt formats the files named on the command line and writes
the result to standard output. If no path is provided, it reads from
standard input.

Flags:
  -w         write result to (source) file instead of stdout
  -l         list files whose formatting differs
  -d         display diffs instead of rewriting files
  -r         process directories recursively
  --json     dump the parsed AST as indented JSON instead of source

Examples:
  rox fmt hello.rox                # Format a single file to stdout
  rox fmt -w file1.rox file2.rox   # Format and overwrite files
  cat script.rox | rox fmt         # Format from stdin
  rox fmt -l -r src/               # List all files that need formatting
  rox fmt -d script.rox            # Show what would change
  rox fmt --json script.rox        # Pretty-print the AST as JSON`,
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result to (source) file instead of stdout")
	fmtCmd.Flags().BoolVarP(&fmtList, "list", "l", false, "list files whose formatting differs")
	fmtCmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false, "display diffs instead of rewriting files")
	fmtCmd.Flags().BoolVarP(&fmtRecursive, "recursive", "r", false, "process directories recursively")
	fmtCmd.Flags().BoolVar(&fmtJSON, "json", false, "dump the parsed AST as indented JSON instead of source")
}

func runFmt(cmd *cobra.Command, args []string) error {
	if fmtWrite && fmtList {
		return fail(exitUsage, "cannot use -w and -l together")
	}
	if fmtWrite && fmtDiff {
		return fail(exitUsage, "cannot use -w and -d together")
	}

	if len(args) == 0 {
		return formatStdin()
	}

	hasErrors := false
	for _, path := range args {
		if err := processPath(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", path, err)
			hasErrors = true
		}
	}
	if hasErrors {
		return fail(exitFailure, "formatting failed for one or more files")
	}
	return nil
}

func processPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		if fmtRecursive {
			return processDirectory(path)
		}
		return fmt.Errorf("%s is a directory (use -r to process recursively)", path)
	}
	return formatFile(path)
}

func processDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".rox") {
			return nil
		}
		if err := formatFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting %s: %v\n", path, err)
		}
		return nil
	})
}

func formatStdin() error {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("error reading stdin: %w", err)
	}
	formatted, err := formatSource(string(src))
	if err != nil {
		return err
	}
	fmt.Print(formatted)
	return nil
}

func formatFile(filename string) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}
	original := string(src)

	formatted, err := formatSource(original)
	if err != nil {
		return err
	}
	changed := original != formatted

	switch {
	case fmtList:
		if changed {
			fmt.Println(filename)
		}
	case fmtDiff:
		if changed {
			fmt.Printf("--- %s (original)\n", filename)
			fmt.Printf("+++ %s (formatted)\n", filename)
			showDiff(original, formatted)
		}
	case fmtWrite:
		if changed {
			if err := os.WriteFile(filename, []byte(formatted), 0644); err != nil {
				return fmt.Errorf("error writing file: %w", err)
			}
		}
	default:
		fmt.Print(formatted)
	}
	return nil
}

// formatSource parses source and renders it back out: as re-printed Rox
// (via every node's String()) by default, or as indented JSON when
// --json is set.
func formatSource(source string) (string, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) > 0 {
		var sb strings.Builder
		sb.WriteString("Parse errors:\n")
		for _, e := range errs {
			sb.WriteString(fmt.Sprintf("  %s\n", e))
		}
		return "", fmt.Errorf("%s", sb.String())
	}

	if fmtJSON {
		return astToJSON(program)
	}
	return program.String(), nil
}

// astToJSON renders the program as one indented JSON object via
// tidwall/pretty: the root node's Go type, its re-rendered source text
// and its line. Child nodes are not broken out into nested objects.
func astToJSON(program *ast.Program) (string, error) {
	raw, err := json.Marshal(jsonNode(program))
	if err != nil {
		return "", err
	}
	opts := *pretty.DefaultOptions
	opts.Indent = "  "
	return string(pretty.PrettyOptions(raw, &opts)) + "\n", nil
}

func jsonNode(n ast.Node) map[string]any {
	return map[string]any{
		"type": fmt.Sprintf("%T", n),
		"text": n.String(),
		"line": n.Pos().Line,
	}
}

func showDiff(original, formatted string) {
	origLines := strings.Split(original, "\n")
	fmtLines := strings.Split(formatted, "\n")

	maxLines := len(origLines)
	if len(fmtLines) > maxLines {
		maxLines = len(fmtLines)
	}

	for i := 0; i < maxLines; i++ {
		var origLine, fmtLine string
		if i < len(origLines) {
			origLine = origLines[i]
		}
		if i < len(fmtLines) {
			fmtLine = fmtLines[i]
		}
		if origLine != fmtLine {
			if origLine != "" {
				fmt.Printf("- %s\n", origLine)
			}
			if fmtLine != "" {
				fmt.Printf("+ %s\n", fmtLine)
			}
		}
	}
}
