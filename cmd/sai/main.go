// Command sai resolves overloaded host methods and argument conversions
// for script calls.
package main

import (
	"os"

	"github.com/anatawa12/sai/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	os.Exit(cli.GetExitCode(err))
}
