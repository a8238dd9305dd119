package main

import (
	"fmt"

	"github.com/spf13/cobra"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/schema"
)

func newResolveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve SCHEMA_FILE [REF]",
		Short: "Check every reference of a schema, or resolve a single one",
		Example: `  skemaform resolve person.json
  skemaform resolve person.json '#/$defs/Address'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadSchemaFile(args[0])
			if err != nil {
				return err
			}
			w := skemaform.NewWalker(root.resolver())
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				iss := w.Check(doc.Root, doc.Defs)
				for _, it := range iss {
					fmt.Fprintf(out, "%s\t%s\t%s\n", it.Path, it.Code, it.Message)
				}
				if len(iss) > 0 {
					return iss
				}
				fmt.Fprintln(out, "ok")
				return nil
			}

			if _, err := schema.ParsePointer(args[1]); err != nil {
				return err
			}
			spec, err := w.Dispatch(&schema.Ref{Ref: args[1]}, doc.Defs)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, describe(spec))
			return nil
		},
	}
}

func describe(spec skemaform.Spec) string {
	title := spec.Meta().Title
	if title != "" {
		title = " " + fmt.Sprintf("%q", title)
	}
	switch s := spec.(type) {
	case skemaform.FieldSpec:
		return s.Kind.String() + title
	case skemaform.ObjectSpec:
		return fmt.Sprintf("object%s %v", title, s.PropertyOrder())
	case skemaform.ArraySpec:
		return "array" + title
	case skemaform.UnsupportedSpec:
		return "unsupported " + s.Type + title
	}
	return "?"
}
