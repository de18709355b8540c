// File: cmd/tizonia/cmd/probe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// probe prints the introspection surface of the component shell and the
// MPRIS-style control surface (spec §6 "Introspection surface"), the CLI
// equivalent of the teacher's `linkerd check` diagnostic commands.

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/momentics/tizonia-go/introspect"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "print the component and control-surface introspection record",
		RunE: func(cmd *cobra.Command, args []string) error {
			record := struct {
				Component introspect.Interface `json:"component"`
				Control   introspect.Interface `json:"control"`
			}{
				Component: introspect.ComponentShellInterface("generic"),
				Control:   introspect.MPRISInterface(),
			}
			out, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(out))
			return nil
		},
	}
}
