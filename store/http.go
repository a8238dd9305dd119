package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/schema"
	"github.com/reoring/skemaform/value"
)

// DefaultLocale is the locale unwrapped from localized entry fields.
const DefaultLocale = "en-US"

// HTTPClient talks to a content store exposing
//
//	GET {BaseURL}/entries?content_type=<ContentType>
//	GET {BaseURL}/values/{field}
//	PUT {BaseURL}/values/{field}
//
// Requests carry "Authorization: Bearer <Token>" when Token is set.
type HTTPClient struct {
	BaseURL     string
	ContentType string
	Locale      string
	Token       string
	Client      *http.Client
}

// HTTPError is a non-2xx response.
type HTTPError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, strings.TrimSpace(e.Body))
}

func (c *HTTPClient) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body []byte) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

func (c *HTTPClient) endpoint(parts ...string) string {
	esc := make([]string, len(parts))
	for i, p := range parts {
		esc[i] = url.PathEscape(p)
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.Join(esc, "/")
}

type entriesResponse struct {
	Items []struct {
		Fields struct {
			Title  json.RawMessage `json:"title"`
			Schema json.RawMessage `json:"schema"`
		} `json:"fields"`
	} `json:"items"`
}

// HTTPProvider lists schema entries of the configured content type. Each
// entry's title becomes the schema name.
type HTTPProvider struct {
	*HTTPClient
}

// ListSchemas implements skemaform.SchemaProvider.
func (p HTTPProvider) ListSchemas(ctx context.Context) ([]skemaform.NamedSchema, error) {
	u := p.endpoint("entries") + "?" + url.Values{"content_type": {p.ContentType}}.Encode()
	data, status, err := p.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &HTTPError{Method: http.MethodGet, URL: u, Status: status, Body: string(data)}
	}
	var resp entriesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("entries: %w", err)
	}
	out := make([]skemaform.NamedSchema, 0, len(resp.Items))
	for i, it := range resp.Items {
		title, err := p.localizedString(it.Fields.Title)
		if err != nil {
			return nil, fmt.Errorf("entries[%d].title: %w", i, err)
		}
		doc, err := p.localizedSchema(it.Fields.Schema)
		if err != nil {
			return nil, fmt.Errorf("entries[%d].schema: %w", i, err)
		}
		doc.Name = title
		out = append(out, skemaform.NamedSchema{Name: title, Document: doc})
	}
	return out, nil
}

func (c *HTTPClient) locale() string {
	if c.Locale == "" {
		return DefaultLocale
	}
	return c.Locale
}

// localizedString accepts "x" or {"<locale>": "x"}.
func (c *HTTPClient) localizedString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}
	s, ok := m[c.locale()]
	if !ok {
		return "", fmt.Errorf("no %s value", c.locale())
	}
	return s, nil
}

// localizedSchema accepts a schema object, a JSON string holding one, or
// either wrapped in {"<locale>": ...}.
func (c *HTTPClient) localizedSchema(raw json.RawMessage) (*schema.Document, error) {
	v, err := value.Unmarshal(raw, value.DecodeOpt{RejectDuplicateKeys: true})
	if err != nil {
		return nil, err
	}
	if obj, ok := v.(*value.Object); ok && obj.Len() == 1 {
		if inner, ok := obj.Get(c.locale()); ok {
			v = inner
		}
	}
	if prim, ok := v.(*value.Primitive); ok {
		if s, ok := prim.Str(); ok {
			return schema.Parse([]byte(s))
		}
	}
	return schema.FromValue(v)
}

// HTTPStore keeps the value of Field at {BaseURL}/values/{Field}. A 404
// means nothing is stored.
type HTTPStore struct {
	*HTTPClient
	Field string
}

// Get implements skemaform.ValueStore.
func (s HTTPStore) Get(ctx context.Context) (value.Value, bool, error) {
	u := s.endpoint("values", s.Field)
	data, status, err := s.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, false, nil
	case status != http.StatusOK:
		return nil, false, &HTTPError{Method: http.MethodGet, URL: u, Status: status, Body: string(data)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false, nil
	}
	v, err := value.Unmarshal(data)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set implements skemaform.ValueStore.
func (s HTTPStore) Set(ctx context.Context, v value.Value) error {
	body, err := value.Marshal(v)
	if err != nil {
		return err
	}
	u := s.endpoint("values", s.Field)
	data, status, err := s.do(ctx, http.MethodPut, u, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &HTTPError{Method: http.MethodPut, URL: u, Status: status, Body: string(data)}
	}
	return nil
}
