// Command jsctl inspects and edits persisted object graphs.
package main

import (
	"os"

	"github.com/roach88/jsgraph/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
