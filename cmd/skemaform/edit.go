package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	skemaform "github.com/reoring/skemaform"
	log "github.com/reoring/skemaform/internal/logging"
	"github.com/reoring/skemaform/store"
	"github.com/reoring/skemaform/value"
)

// discard drops writes; used for read-only commands and dry runs.
type discard struct{ skemaform.ValueStore }

func (discard) Set(context.Context, value.Value) error { return nil }

// editOp is one parsed --op argument.
type editOp struct {
	kind string
	path value.Path
	key  string
	val  value.Value
	from int
	to   int
}

// parseOp parses
//
//	set:/a="text"      set the primitive at /a
//	prop:/obj/key=1    set property key of the object at /obj
//	insert:/list       append a default item
//	remove:/list/2     remove item 2
//	move:/list/0=2     move item 0 to index 2
func parseOp(s string) (editOp, error) {
	kind, arg, ok := strings.Cut(s, ":")
	if !ok {
		return editOp{}, fmt.Errorf("op %q: expected KIND:ARGS", s)
	}
	op := editOp{kind: kind}
	ptr, rhs, hasRHS := strings.Cut(arg, "=")
	path, err := value.ParsePointer(ptr)
	if err != nil {
		return editOp{}, fmt.Errorf("op %q: %w", s, err)
	}

	needRHS := kind == "set" || kind == "prop" || kind == "move"
	if needRHS != hasRHS {
		return editOp{}, fmt.Errorf("op %q: malformed arguments", s)
	}
	switch kind {
	case "set", "prop":
		v, err := value.Unmarshal([]byte(rhs))
		if err != nil {
			return editOp{}, fmt.Errorf("op %q: value: %w", s, err)
		}
		op.val = v
	case "insert":
	case "remove", "move":
	default:
		return editOp{}, fmt.Errorf("op %q: unknown kind %q", s, kind)
	}

	switch kind {
	case "prop", "remove", "move":
		if len(path) == 0 {
			return editOp{}, fmt.Errorf("op %q: path needs a trailing key or index", s)
		}
		last := path[len(path)-1]
		op.path = path[:len(path)-1]
		if kind == "prop" {
			op.key = last
			break
		}
		idx, ok := value.AsIndex(last)
		if !ok {
			return editOp{}, fmt.Errorf("op %q: %q is not an index", s, last)
		}
		op.from = idx
		if kind == "move" {
			if op.to, err = strconv.Atoi(rhs); err != nil {
				return editOp{}, fmt.Errorf("op %q: target index: %w", s, err)
			}
		}
	default:
		op.path = path
	}
	return op, nil
}

func (op editOp) apply(s *skemaform.Session) error {
	switch op.kind {
	case "set":
		prim, ok := op.val.(*value.Primitive)
		if !ok {
			return fmt.Errorf("set %s: value must be a primitive", op.path)
		}
		return s.SetPrimitive(op.path, prim)
	case "prop":
		return s.SetObjectProperty(op.path, op.key, op.val)
	case "insert":
		return s.InsertArrayItem(op.path)
	case "remove":
		return s.RemoveArrayItem(op.path, op.from)
	case "move":
		return s.MoveArrayItem(op.path, op.from, op.to)
	}
	return fmt.Errorf("unknown op %q", op.kind)
}

type editOptions struct {
	ops     []string
	dryRun  bool
	diff    bool
	patch   bool
	journal string
}

func newEditCmd(root *rootOptions) *cobra.Command {
	o := &editOptions{}
	cmd := &cobra.Command{
		Use:   "edit FIELD --op KIND:ARGS [--op ...]",
		Short: "Apply schema-aware edits to the stored value of a field",
		Example: `  skemaform edit person --op 'set:/name="Ann"' --op insert:/tags --op 'set:/tags/0="x"' --diff
  skemaform edit person --op remove:/tags/0 --patch --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), root, args[0], cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&o.ops, "op", nil, "edit to apply, in order (set, prop, insert, remove, move)")
	f.BoolVar(&o.dryRun, "dry-run", false, "do not write the result back")
	f.BoolVar(&o.diff, "diff", false, "print a line diff of the value")
	f.BoolVar(&o.patch, "patch", false, "print the RFC 6902 JSON Patch of the edit")
	f.StringVar(&o.journal, "journal", "", "append the JSON Patch of every write to this file")
	return cmd
}

func (o *editOptions) run(ctx context.Context, root *rootOptions, field string, out io.Writer) error {
	ops := make([]editOp, 0, len(o.ops))
	for _, s := range o.ops {
		op, err := parseOp(s)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}

	provider, st := root.collaborators(field)
	var journal *store.Journal
	switch {
	case o.dryRun:
		st = discard{st}
	case o.journal != "":
		journal = store.NewJournal(st)
		st = journal
	}

	s, err := root.openSession(ctx, field, st, provider)
	if err != nil {
		return err
	}
	reportIssues(s.Issues())
	initial := s.Value()
	before, err := value.MarshalIndent(initial, "", "  ")
	if err != nil {
		return err
	}

	for _, op := range ops {
		if err := op.apply(s); err != nil {
			_ = s.Close(ctx)
			return err
		}
	}
	if err := s.Close(ctx); err != nil {
		return err
	}
	if n := s.WriteFailures(); n > 0 {
		log.Warn().Int64("failures", n).Msg("some background writes failed; the final write succeeded")
	}

	final := s.Value()
	after, err := value.MarshalIndent(final, "", "  ")
	if err != nil {
		return err
	}
	if o.diff {
		fmt.Fprint(out, lineDiff(string(before), string(after)))
	}
	if o.patch {
		p, err := store.Diff(initial, final)
		if err != nil {
			return fmt.Errorf("json patch: %w", err)
		}
		fmt.Fprintln(out, string(p))
	}
	if !o.diff && !o.patch {
		fmt.Fprintln(out, string(after))
	}
	if journal != nil {
		return appendJournal(o.journal, journal)
	}
	return nil
}

func appendJournal(path string, j *store.Journal) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, p := range j.Patches() {
		if _, err := fmt.Fprintln(f, string(p)); err != nil {
			return err
		}
	}
	return nil
}

// lineDiff renders a line-oriented diff with "+"/"-"/" " prefixes.
func lineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix + line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
