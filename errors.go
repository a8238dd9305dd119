package skemaform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/skemaform/i18n"
	"github.com/reoring/skemaform/schema"
	"github.com/reoring/skemaform/value"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnresolvedRef    = "unresolved_ref"
	CodeCyclicRef        = "cyclic_ref"
	CodeUnsupportedType  = "unsupported_type"
	CodePathTypeMismatch = "path_type_mismatch"
	CodeStoreFailure     = "store_failure"
	CodeParseError       = "parse_error"
	CodeDuplicateKey     = "duplicate_key"
)

var (
	// ErrPathTypeMismatch reports an edit whose target does not have the
	// shape the operation needs and cannot be coerced.
	ErrPathTypeMismatch = errors.New("path type mismatch")
	// ErrStoreFailure reports a failed SchemaProvider or ValueStore call.
	ErrStoreFailure = errors.New("store failure")
	// ErrNotReady is returned by Session edits outside the Ready state.
	ErrNotReady = errors.New("session not ready")
	// ErrSchemaNotFound means no provided schema matches the field.
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrAmbiguousSchema means several provided schemas match the field.
	ErrAmbiguousSchema = errors.New("ambiguous schema")
)

// Issue represents a single contained failure.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
}

// Issues is a collection of contained failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. unresolved_ref at /home
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// refIssue converts a resolution failure at p into an Issue.
func refIssue(p value.Path, err error) Issue {
	code := CodeUnresolvedRef
	if errors.Is(err, schema.ErrCyclicReference) {
		code = CodeCyclicRef
	}
	data := map[string]string{}
	var re *schema.RefError
	if errors.As(err, &re) {
		data["ref"] = re.Ref
	}
	return Issue{Path: p.Pointer(), Code: code, Message: i18n.T(code, data), Cause: err}
}

// MismatchError reports a SetPrimitive target or value whose shape disagrees
// with the schema.
type MismatchError struct {
	Path     string // JSON Pointer of the target
	Expected string
	Got      string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v at %s: expected %s, got %s", ErrPathTypeMismatch, e.Path, e.Expected, e.Got)
}

func (e *MismatchError) Unwrap() error { return ErrPathTypeMismatch }

// Issue renders the error in the Issue model.
func (e *MismatchError) Issue() Issue {
	return Issue{
		Path:    e.Path,
		Code:    CodePathTypeMismatch,
		Message: i18n.T(CodePathTypeMismatch, map[string]string{"expected": e.Expected, "got": e.Got}),
		Cause:   e,
	}
}

// StoreError wraps a collaborator failure.
type StoreError struct {
	Op  string // "list_schemas", "get" or "set"
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%v: %s: %v", ErrStoreFailure, e.Op, e.Err) }

// Unwrap exposes both ErrStoreFailure and the underlying error to errors.Is.
func (e *StoreError) Unwrap() []error { return []error{ErrStoreFailure, e.Err} }
