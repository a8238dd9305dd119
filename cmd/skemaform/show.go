package main

import (
	"github.com/spf13/cobra"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/render"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	var noColor bool
	cmd := &cobra.Command{
		Use:   "show FIELD",
		Short: "Print the stored value of a field as an outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, st := root.collaborators(args[0])
			s, err := root.openSession(cmd.Context(), args[0], discard{st}, provider)
			if err != nil {
				return err
			}
			reportIssues(s.Issues())

			out := cmd.OutOrStdout()
			colors := render.AutoColors(out)
			if noColor {
				colors = nil
			}
			doc := s.Schema()
			o := render.Outline{Walker: skemaform.NewWalker(root.resolver()), Colors: colors}
			return o.Write(out, doc.Root, doc.Defs, s.Value())
		},
	}
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}
