package cmd

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain lets `go test` double as the `rox` binary for the duration of
// a testscript run: a script line like `rox run foo.rox` spawns this
// same test binary with TESTSCRIPT_COMMAND=rox set, which testscript.RunMain
// dispatches into runRoxMain below instead of re-running the test suite.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"rox": runRoxMain,
	}))
}

func runRoxMain() int {
	return ExecuteCode(os.Args[1:])
}

// TestCLIScripts drives the built CLI end to end via the txtar scripts
// under testdata/script, the same integration-testing shape the teacher
// pack uses go-internal/testscript for.
func TestCLIScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
