// Command calcsheet evaluates formulas and computes calculation sheets.
package main

import (
	"fmt"
	"os"
)

// These variables are populated via the Go linker.
var (
	version = "unknown"
	commit  = "unknown"
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
