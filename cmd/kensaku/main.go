// Command kensaku runs the hybrid retrieval server and talks to it from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/hyperjump/kensaku/cmd/kensaku/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
