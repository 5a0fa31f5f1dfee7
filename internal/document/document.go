// Package document provides the tree model for interface-description
// documents: an explicit tagged union of mappings, sequences, and scalars
// with mapping key order preserved from the source.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrParse marks input that could not be parsed into a Document.
var ErrParse = errors.New("document parse error")

// Kind discriminates the three node shapes.
type Kind int

const (
	KindMapping Kind = iota
	KindSequence
	KindScalar
)

// Pair is one ordered key/value entry of a mapping.
type Pair struct {
	Key   string
	Value *Document
}

// Document is a node in the tree. Exactly one of Pairs, Items, or Value is
// meaningful, selected by Kind. Scalar values are string, int64, uint64,
// float64, bool, or nil.
type Document struct {
	Kind  Kind
	Pairs []Pair
	Items []*Document
	Value interface{}
}

// NewMapping returns an empty mapping node.
func NewMapping() *Document {
	return &Document{Kind: KindMapping}
}

// NewSequence returns an empty sequence node.
func NewSequence() *Document {
	return &Document{Kind: KindSequence}
}

// NewScalar returns a scalar node holding v.
func NewScalar(v interface{}) *Document {
	return &Document{Kind: KindScalar, Value: v}
}

// String returns a scalar string node.
func String(s string) *Document {
	return NewScalar(s)
}

// IsMapping reports whether d is a non-nil mapping node.
func (d *Document) IsMapping() bool {
	return d != nil && d.Kind == KindMapping
}

// Get returns the value for key in a mapping node.
func (d *Document) Get(key string) (*Document, bool) {
	if !d.IsMapping() {
		return nil, false
	}
	for _, p := range d.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Has reports whether key exists in a mapping node.
func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Set inserts or replaces key in a mapping node, preserving the position of
// an existing key and appending new keys at the end.
func (d *Document) Set(key string, value *Document) {
	if !d.IsMapping() {
		return
	}
	for i, p := range d.Pairs {
		if p.Key == key {
			d.Pairs[i].Value = value
			return
		}
	}
	d.Pairs = append(d.Pairs, Pair{Key: key, Value: value})
}

// Keys returns the mapping keys in source order.
func (d *Document) Keys() []string {
	if !d.IsMapping() {
		return nil
	}
	keys := make([]string, 0, len(d.Pairs))
	for _, p := range d.Pairs {
		keys = append(keys, p.Key)
	}
	return keys
}

// Len returns the entry count of a mapping or sequence node.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	switch d.Kind {
	case KindMapping:
		return len(d.Pairs)
	case KindSequence:
		return len(d.Items)
	}
	return 0
}

// Append adds an item to a sequence node.
func (d *Document) Append(item *Document) {
	if d == nil || d.Kind != KindSequence {
		return
	}
	d.Items = append(d.Items, item)
}

// StringValue returns the scalar string value, or "" if d is not a string
// scalar.
func (d *Document) StringValue() string {
	if d == nil || d.Kind != KindScalar {
		return ""
	}
	s, _ := d.Value.(string)
	return s
}

// Clone returns a deep copy of the tree.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Kind: d.Kind, Value: d.Value}
	if len(d.Pairs) > 0 {
		out.Pairs = make([]Pair, len(d.Pairs))
		for i, p := range d.Pairs {
			out.Pairs[i] = Pair{Key: p.Key, Value: p.Value.Clone()}
		}
	}
	if len(d.Items) > 0 {
		out.Items = make([]*Document, len(d.Items))
		for i, item := range d.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse parses YAML or JSON bytes into a Document. YAML is a superset of
// JSON, so one decoder covers both; a leading UTF-8 BOM is tolerated.
func Parse(data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		// Empty input decodes to an empty mapping.
		return NewMapping(), nil
	}
	doc, err := fromYAMLNode(root.Content[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return doc, nil
}

func fromYAMLNode(n *yaml.Node) (*Document, error) {
	switch n.Kind {
	case yaml.MappingNode:
		doc := NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			val, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			doc.Pairs = append(doc.Pairs, Pair{Key: key.Value, Value: val})
		}
		return doc, nil

	case yaml.SequenceNode:
		doc := NewSequence()
		for _, c := range n.Content {
			item, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			doc.Items = append(doc.Items, item)
		}
		return doc, nil

	case yaml.ScalarNode:
		v, err := scalarValue(n)
		if err != nil {
			return nil, err
		}
		return NewScalar(v), nil

	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	}
	return nil, fmt.Errorf("unsupported node kind %d at line %d", n.Kind, n.Line)
}

func scalarValue(n *yaml.Node) (interface{}, error) {
	switch n.Tag {
	case "!!null", "":
		if n.Tag == "" && n.Value != "" {
			return n.Value, nil
		}
		return nil, nil
	case "!!bool":
		return strconv.ParseBool(n.Value)
	case "!!int":
		if v, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return v, nil
		}
		// Integers above the int64 ceiling (uint64 maxima show up in
		// real documents) still carry the int tag.
		return strconv.ParseUint(n.Value, 0, 64)
	case "!!float":
		return strconv.ParseFloat(n.Value, 64)
	default:
		// Strings and anything exotic (timestamps, binary) keep the raw form.
		return n.Value, nil
	}
}

// ToYAMLNode rebuilds a yaml.Node tree for encoding.
func (d *Document) ToYAMLNode() *yaml.Node {
	if d == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch d.Kind {
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range d.Pairs {
			key := &yaml.Node{Kind: yaml.ScalarNode}
			key.SetString(p.Key)
			n.Content = append(n.Content, key, p.Value.ToYAMLNode())
		}
		return n

	case KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range d.Items {
			n.Content = append(n.Content, item.ToYAMLNode())
		}
		return n
	}

	n := &yaml.Node{Kind: yaml.ScalarNode}
	switch v := d.Value.(type) {
	case nil:
		n.Tag = "!!null"
		n.Value = "null"
	case string:
		n.SetString(v)
	case bool:
		n.Tag = "!!bool"
		n.Value = strconv.FormatBool(v)
	case int64:
		n.Tag = "!!int"
		n.Value = strconv.FormatInt(v, 10)
	case int:
		n.Tag = "!!int"
		n.Value = strconv.Itoa(v)
	case uint64:
		n.Tag = "!!int"
		n.Value = strconv.FormatUint(v, 10)
	case float64:
		n.Tag = "!!float"
		n.Value = strconv.FormatFloat(v, 'g', -1, 64)
	default:
		n.SetString(fmt.Sprintf("%v", v))
	}
	return n
}
