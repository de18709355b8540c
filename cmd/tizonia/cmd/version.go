// File: cmd/tizonia/cmd/version.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags; "dev" otherwise.
var Version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the tizonia version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, Version)
			return nil
		},
	}
}
