// File: cmd/tizonia/cmd/root.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Grounded on the teacher's cli/cmd/root.go: a package-level RootCmd,
// persistent flags for verbosity/config, and color.Output/color.Error
// swapped in instead of os.Stdout/os.Stderr so Windows gets the
// go-colorable wrapping fatih/color already carries.

package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/momentics/tizonia-go/logging"
	"github.com/momentics/tizonia-go/metrics"
)

var (
	stdout = color.Output
	stderr = color.Error

	verbosity  int
	configPath string

	log *logging.Logger
)

// NewRootCmd builds the tizonia command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tizonia",
		Short: "tizonia is a command-line cloud music player",
		Long:  `tizonia plays audio tracks through a small graph of tunneled IL-style components.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.New(stderr, verbosity)
			logging.SetDefault(log)
			metrics.SetDefault(metrics.New())
		},
	}

	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase logging verbosity (repeatable)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a tizonia config file")

	root.AddCommand(newPlayCmd())
	root.AddCommand(newProbeCmd())
	root.AddCommand(newVersionCmd())
	return root
}
