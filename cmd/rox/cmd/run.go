package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/rox/internal/errors"
	"github.com/cwbudde/rox/internal/interp"
	"github.com/spf13/cobra"
)

var (
	evalExpr    string
	showModules bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Rox file or expression",
	Long: `Execute a Rox program from a file or inline expression.

Examples:
  # Run a script file
  rox run script.rox

  # Evaluate an inline expression
  rox run -e "print 1 + 1;"

  # Run with an execution stack trace on uncaught errors
  rox run --trace script.rox

  # List every module loaded via import() after execution
  rox run --show-modules script.rox`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if evalExpr != "" {
			return runFile(cmd, "<eval>", &evalExpr)
		}
		if len(args) == 1 {
			return runFile(cmd, args[0], nil)
		}
		return fail(exitUsage, "either provide a file path or use -e for inline code")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&showModules, "show-modules", false, "list every module loaded via import() after execution")
}

// runFile is the shared entry point for both `rox <script>` (root level)
// and `rox run <script>`/`rox run -e ...`. source, when non-nil, is
// inline code to run instead of reading filename from disk (filename is
// then purely a label, conventionally "<eval>").
func runFile(cmd *cobra.Command, filename string, source *string) error {
	var input string
	entryDir := "."

	if source != nil {
		input = *source
	} else {
		if filepath.Ext(filename) != ".rox" {
			return fail(exitUsage, "failed to read file %s: not a .rox file", filename)
		}
		content, err := os.ReadFile(filename)
		if err != nil {
			return fail(exitUsage, "failed to read file %s: %v", filename, err)
		}
		input = string(content)
		entryDir = filepath.Dir(filename)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fail(exitUsage, "failed to load config: %v", err)
	}

	trace, _ := cmd.Flags().GetBool("trace")
	trace = trace || cfg.Trace
	showModules = showModules || cfg.ShowModules

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(os.Stderr, "Running: %s\n", filename)
	}

	interpreter := interp.New(entryDir, os.Stdout)

	compileErrs, runtimeErr := interpreter.RunSource(input)
	if len(compileErrs) > 0 {
		fmt.Fprint(os.Stderr, errors.FormatErrors(compileErrs, true))
		fmt.Fprintln(os.Stderr)
		return fail(exitFailure, "compilation failed with %d error(s)", len(compileErrs))
	}

	if showModules {
		for _, path := range interpreter.ListLoadedModules() {
			fmt.Fprintf(os.Stderr, "module: %s\n", path)
		}
	}

	if runtimeErr != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %s\n", runtimeErr.Error())
		if trace {
			if st := interpreter.Stack(); st.Depth() > 0 {
				fmt.Fprintln(os.Stderr, "Stack trace (most recent call first):")
				fmt.Fprintln(os.Stderr, st.String())
			}
		}
		return fail(exitFailure, "execution failed")
	}

	return nil
}
