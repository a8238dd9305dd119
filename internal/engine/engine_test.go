package engine

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// outline renders decoded trees compactly so tests can assert on key order.
type outline struct{}

func (outline) Null() string { return "null" }
func (outline) String(s string) string { return "'" + s + "'" }
func (outline) Number(text string) (string, error) { return text, nil }
func (outline) Bool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
func (outline) Object(keys []string, vals []string) string {
	parts := make([]string, len(keys))
	for i := range keys {
		parts[i] = keys[i] + ":" + vals[i]
	}
	return "{" + strings.Join(parts, ",") + "}"
}
func (outline) Array(vals []string) string { return "[" + strings.Join(vals, ",") + "]" }

func TestDecode_PreservesKeyOrder(t *testing.T) {
	got, err := Decode[string](NewBytes([]byte(`{"z":1,"a":{"y":true,"b":null},"m":["x",2.5]}`)), outline{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "{z:1,a:{y:true,b:null},m:['x',2.5]}"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestDecode_TrailingData(t *testing.T) {
	_, err := Decode[string](NewBytes([]byte(`{"a":1} {"b":2}`)), outline{})
	if !errors.Is(err, ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
}

func TestDecode_Truncated(t *testing.T) {
	_, err := Decode[string](NewBytes([]byte(``)), outline{})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected EOF, got %v", err)
	}
}

func TestEnforce_DuplicateKey(t *testing.T) {
	src := WrapWithEnforcement(NewBytes([]byte(`{"p":{"a":1,"a":2}}`)), EnforceOptions{OnDuplicate: DupError})
	_, err := Decode[string](src, outline{})
	var ie IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != "duplicate_key" || ie.Path != "/p/a" {
		t.Fatalf("unexpected issue: %+v", ie.SimpleIssue)
	}
}

func TestEnforce_DuplicateKeyIgnored(t *testing.T) {
	src := WrapWithEnforcement(NewBytes([]byte(`{"a":1,"a":2}`)), EnforceOptions{})
	if _, err := Decode[string](src, outline{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnforce_MaxDepth(t *testing.T) {
	src := WrapWithEnforcement(NewBytes([]byte(`{"a":[{"b":{}}]}`)), EnforceOptions{MaxDepth: 3})
	_, err := Decode[string](src, outline{})
	var ie IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Path != "/a/0/b" {
		t.Fatalf("unexpected path: %s", ie.Path)
	}
}
