// Command kmemtest compiles the PIP-OS kernel memory primitives for the host
// and checks them through a foreign-function binding.
package main

import (
	"fmt"
	"os"

	"github.com/pipos/kmemtest/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
