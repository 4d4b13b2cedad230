package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "rox [script]",
	Short: "Rox interpreter",
	Long: `rox is a tree-walking interpreter for Rox, a small dynamically-typed
C-family scripting language: numbers, strings, booleans, nil, lists,
tuples and dicts; functions and closures; classes with single
inheritance; and a module system driven by import().

With no arguments, rox starts an interactive REPL. Given a script path,
it runs that file and exits. The run/lex/parse/fmt subcommands expose
each phase of the pipeline individually for debugging.`,
	Version:      Version,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runREPL(cmd)
		}
		return runFile(cmd, args[0], nil)
	},
}

// ExecuteCode runs the root command and returns the process exit code per
// spec.md §6 (0 success, 1 runtime/compile error, 64 usage), without
// itself calling os.Exit — so a test harness (e.g. a testscript
// subprocess command) can invoke the same dispatch logic as main() and
// observe the code instead of having its process torn down.
func ExecuteCode(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return int(exitOK)
	}
	if ee, ok := err.(*exitError); ok {
		return int(ee.code)
	}
	fmt.Fprintln(os.Stderr, err)
	return int(exitUsage)
}

// Execute is the real CLI entry point: run the command and exit the
// process with the resulting code.
func Execute() {
	os.Exit(ExecuteCode(os.Args[1:]))
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("trace", false, "print a stack trace on uncaught runtime errors")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default: search ./rox.yaml, then ~/.rox.yaml)")
}

// exitCode mirrors spec.md's §6 process-exit contract.
type exitCode int

const (
	exitOK      exitCode = 0
	exitFailure exitCode = 1
	exitUsage   exitCode = 64
)

// exitError carries a process exit code through cobra's error-returning
// RunE without cobra printing its own "Error: ..." wrapper (SilenceErrors
// is set on rootCmd for exactly this reason).
type exitError struct {
	code exitCode
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func fail(code exitCode, msg string, args ...any) error {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	return &exitError{code: code}
}
