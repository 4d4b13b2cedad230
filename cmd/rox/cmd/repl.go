package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/cwbudde/rox/internal/errors"
	"github.com/cwbudde/rox/internal/interp"
	"github.com/spf13/cobra"
)

const replPrompt = "rox> "

// runREPL implements the interactive front end: a single long-lived
// Interpreter is reused across lines so that `var`/`fun`/`class`
// declarations made on one line stay visible to the next (spec.md §6).
// Unlike the teacher's panic-recovery REPL, RunSource already turns every
// failure into a returned error rather than a panic, so the loop just
// reports and continues.
func runREPL(cmd *cobra.Command) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fail(exitUsage, "failed to load config: %v", err)
	}

	historyFile := cfg.HistoryFile
	if historyFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			historyFile = filepath.Join(home, ".rox_history")
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fail(exitFailure, "failed to start REPL: %v", err)
	}
	defer rl.Close()

	trace, _ := cmd.Flags().GetBool("trace")
	trace = trace || cfg.Trace

	wd, _ := os.Getwd()
	interpreter := interp.New(wd, rl.Stdout())

	fmt.Fprintln(rl.Stdout(), "Rox REPL. Enter Rox statements, or Ctrl-D to exit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fail(exitFailure, "%v", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		compileErrs, runtimeErr := interpreter.RunSource(line)
		if len(compileErrs) > 0 {
			fmt.Fprint(rl.Stderr(), errors.FormatErrors(compileErrs, true))
			fmt.Fprintln(rl.Stderr())
			continue
		}
		if runtimeErr != nil {
			fmt.Fprintf(rl.Stderr(), "Runtime error: %s\n", runtimeErr.Error())
			if trace {
				if st := interpreter.Stack(); st.Depth() > 0 {
					fmt.Fprintln(rl.Stderr(), st.String())
				}
			}
		}
	}
}
