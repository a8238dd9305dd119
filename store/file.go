package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	skemaform "github.com/reoring/skemaform"
	"github.com/reoring/skemaform/internal/logging"
	"github.com/reoring/skemaform/schema"
	"github.com/reoring/skemaform/value"
)

// DirProvider loads every .json, .yaml and .yml file in Dir. A schema is
// named by its root title, or by the file name without extension when the
// title is empty. YAML files may hold several documents separated by "---".
type DirProvider struct {
	Dir string
}

// ListSchemas implements skemaform.SchemaProvider.
func (p DirProvider) ListSchemas(ctx context.Context) ([]skemaform.NamedSchema, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []skemaform.NamedSchema
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs, err := loadFile(filepath.Join(p.Dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		for i, doc := range docs {
			n := doc.Title()
			if n == "" {
				n = base
				if len(docs) > 1 {
					n = fmt.Sprintf("%s#%d", base, i)
				}
			}
			for _, w := range doc.Warnings {
				logging.Debug().Str("file", name).Str("schema", n).Msg(w)
			}
			doc.Name = n
			out = append(out, skemaform.NamedSchema{Name: n, Document: doc})
		}
	}
	return out, nil
}

func loadFile(path string) ([]*schema.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		doc, err := schema.ParseJSON(data)
		if err != nil {
			return nil, err
		}
		return []*schema.Document{doc}, nil
	}
	return schema.ParseYAMLBundle(data)
}

// FileStore keeps a value as an indented JSON file. A missing file means
// nothing is stored.
type FileStore struct {
	Path string
}

// Get implements skemaform.ValueStore.
func (s FileStore) Get(context.Context) (value.Value, bool, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	v, err := value.Unmarshal(data)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", s.Path, err)
	}
	return v, true, nil
}

// Set implements skemaform.ValueStore. The file is replaced atomically.
func (s FileStore) Set(_ context.Context, v value.Value) error {
	data, err := value.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}
