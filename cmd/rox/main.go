// Command rox is the Rox interpreter's CLI: run scripts, drop into a
// REPL, or inspect any single phase of the pipeline (lex/parse/fmt) in
// isolation.
package main

import "github.com/cwbudde/rox/cmd/rox/cmd"

func main() {
	cmd.Execute()
}
