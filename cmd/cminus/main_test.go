package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain lets `go test` also run this binary's own subcommands as a
// subprocess under the registered "cminus" name, the way the teacher's
// tests exercise its CLI end to end rather than only the library code
// behind it.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"cminus": cminusMain,
	}))
}

func cminusMain() int {
	main()
	return 0
}

func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{Dir: "testdata/script"})
}
