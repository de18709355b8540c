// File: cmd/tizonia/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Grounded on the teacher's cli/main.go entry point (resolve root command,
// execute, exit non-zero on error) and cli/cmd/root.go's persistent-flag and
// colored-status shape (github.com/fatih/color, github.com/mattn/go-isatty
// to decide when to colorize, github.com/spf13/cobra + pflag for the
// command tree).

package main

import (
	"fmt"
	"os"

	"github.com/momentics/tizonia-go/cmd/tizonia/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
