package store

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/skemaform/schema"
	"github.com/reoring/skemaform/value"
)

type contentServer struct {
	mu     sync.Mutex
	values map[string][]byte
	auth   []string
}

func (s *contentServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	if r.Header.Get("Authorization") != "Bearer secret" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	switch {
	case r.URL.Path == "/entries":
		if r.URL.Query().Get("content_type") != "jsonSchema" {
			http.Error(w, "bad content type", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"items":[
		  {"fields":{"title":{"en-US":"address"},"schema":{"en-US":{"type":"object","properties":{"street":{"type":"string"},"city":{"type":"string"}}}}}},
		  {"fields":{"title":"plain","schema":"{\"type\":\"string\"}"}}
		]}`)
	case len(r.URL.Path) > len("/values/") && r.URL.Path[:len("/values/")] == "/values/":
		field := r.URL.Path[len("/values/"):]
		switch r.Method {
		case http.MethodGet:
			b, ok := s.values[field]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(b)
		case http.MethodPut:
			b, _ := io.ReadAll(r.Body)
			s.values[field] = b
			w.WriteHeader(http.StatusNoContent)
		}
	default:
		http.NotFound(w, r)
	}
}

func TestHTTPProviderAndStore(t *testing.T) {
	srv := &contentServer{values: map[string][]byte{}}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	ctx := context.Background()

	client := &HTTPClient{BaseURL: ts.URL + "/", ContentType: "jsonSchema", Token: "secret"}

	schemas, err := HTTPProvider{client}.ListSchemas(ctx)
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	require.Equal(t, "address", schemas[0].Name)
	obj, ok := schemas[0].Document.Root.(*schema.Object)
	require.True(t, ok)
	require.Equal(t, []string{"street", "city"}, obj.PropertyNames())
	require.Equal(t, "plain", schemas[1].Name)
	require.Equal(t, schema.KindString, schemas[1].Document.Root.Kind())

	st := HTTPStore{HTTPClient: client, Field: "address"}
	_, found, err := st.Get(ctx)
	require.NoError(t, err)
	require.False(t, found)

	v := value.MustFromAny(map[string]any{"city": "Oslo"})
	require.NoError(t, st.Set(ctx, v))
	got, found, err := st.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, value.Equal(v, got))

	for _, a := range srv.auth {
		require.Equal(t, "Bearer secret", a)
	}
}

func TestHTTPStore_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(&contentServer{values: map[string][]byte{}})
	defer ts.Close()

	st := HTTPStore{HTTPClient: &HTTPClient{BaseURL: ts.URL}, Field: "x"}
	_, _, err := st.Get(context.Background())
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnauthorized, he.Status)

	_, err = HTTPProvider{st.HTTPClient}.ListSchemas(context.Background())
	require.ErrorAs(t, err, &he)
}
