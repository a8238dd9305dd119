package main

import (
	"fmt"

	"github.com/spf13/cobra"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/value"
)

func newSynthCmd(root *rootOptions) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "synth SCHEMA_FILE",
		Short: "Print the default value of a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadSchemaFile(args[0])
			if err != nil {
				return err
			}
			v, iss := skemaform.NewWalker(root.resolver()).Synthesize(doc.Root, doc.Defs)
			reportIssues(iss)
			out, err := value.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if strict && len(iss) > 0 {
				return iss
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a reference cannot be resolved")
	return cmd
}
