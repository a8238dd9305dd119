package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/skemaform/value"
)

// ParseYAML loads a single YAML schema document. Mapping order is preserved,
// so properties keep their declared order.
func ParseYAML(data []byte, opts ...LoadOpt) (*Document, error) {
	opt := loadOpt(opts)
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("schema: invalid YAML: %w", err)
	}
	v, err := yamlToValue(&node, opt.MaxDepth, 0)
	if err != nil {
		return nil, err
	}
	return FromValue(v)
}

// ParseYAMLBundle loads every document of a multi-document YAML stream.
// Documents are named after their root title.
func ParseYAMLBundle(data []byte, opts ...LoadOpt) ([]*Document, error) {
	opt := loadOpt(opts)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []*Document
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("schema: invalid YAML: %w", err)
		}
		v, err := yamlToValue(&node, opt.MaxDepth, 0)
		if err != nil {
			return nil, err
		}
		if v.Kind() == value.KindNull {
			// empty document between separators
			continue
		}
		doc, err := FromValue(v)
		if err != nil {
			return nil, fmt.Errorf("schema: document %d: %w", len(docs), err)
		}
		doc.Name = doc.Title()
		docs = append(docs, doc)
	}
	return docs, nil
}

// yamlToValue converts a yaml.v3 node tree into an ordered value tree.
func yamlToValue(n *yaml.Node, maxDepth, depth int) (value.Value, error) {
	if depth > maxDepth {
		return nil, &DocumentError{Path: fmt.Sprintf("line %d", n.Line), Msg: "max depth exceeded"}
	}
	switch n.Kind {
	case 0:
		return value.Null(), nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Null(), nil
		}
		return yamlToValue(n.Content[0], maxDepth, depth)
	case yaml.AliasNode:
		return yamlToValue(n.Alias, maxDepth, depth+1)
	case yaml.MappingNode:
		o := value.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, &DocumentError{Path: fmt.Sprintf("line %d", k.Line), Msg: "mapping keys must be scalars"}
			}
			if o.Has(k.Value) {
				return nil, &DocumentError{Path: fmt.Sprintf("line %d", k.Line), Msg: "key '" + k.Value + "' duplicated"}
			}
			v, err := yamlToValue(n.Content[i+1], maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			o.Set(k.Value, v)
		}
		return o, nil
	case yaml.SequenceNode:
		a := value.NewArray()
		for _, c := range n.Content {
			v, err := yamlToValue(c, maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			a.Append(v)
		}
		return a, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return nil, &DocumentError{Path: fmt.Sprintf("line %d", n.Line), Msg: "unsupported YAML node"}
}

func yamlScalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return value.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return value.Number(f), nil
	default:
		return value.String(n.Value), nil
	}
}
