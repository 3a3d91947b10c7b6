// Command smx manages a git tracked folder of scripts and dotfiles.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/smx-cli/smx"
	"github.com/smx-cli/smx/cmd/smx/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		if errors.Is(err, smx.ErrWriteConfig) || errors.Is(err, smx.ErrCreateConfigDir) {
			fmt.Fprintf(os.Stderr, "failed to save configuration: %s\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}
