package document

import (
	"bytes"
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"
)

// EncodeYAML serializes the tree as YAML with source key ordering.
func (d *Document) EncodeYAML() ([]byte, error) {
	return yaml.Marshal(d.ToYAMLNode())
}

// EncodeJSON serializes the tree as 2-space indented JSON with source key
// ordering.
func (d *Document) EncodeJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, d, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, d *Document, prefix, indent string) error {
	if d == nil {
		buf.WriteString("null")
		return nil
	}
	switch d.Kind {
	case KindMapping:
		if len(d.Pairs) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		inner := prefix + indent
		for i, p := range d.Pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
			buf.WriteString(inner)
			key, err := json.Marshal(p.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteString(": ")
			if err := writeJSON(buf, p.Value, inner, indent); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		buf.WriteString(prefix)
		buf.WriteByte('}')
		return nil

	case KindSequence:
		if len(d.Items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		inner := prefix + indent
		for i, item := range d.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
			buf.WriteString(inner)
			if err := writeJSON(buf, item, inner, indent); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		buf.WriteString(prefix)
		buf.WriteByte(']')
		return nil
	}

	val, err := json.Marshal(d.Value)
	if err != nil {
		return err
	}
	buf.Write(val)
	return nil
}

// Canonical returns compact JSON with recursively sorted mapping keys.
// Structurally equal trees produce identical canonical bytes regardless of
// source key order.
func (d *Document) Canonical() []byte {
	var buf bytes.Buffer
	canonicalWrite(&buf, d)
	return buf.Bytes()
}

func canonicalWrite(buf *bytes.Buffer, d *Document) {
	if d == nil {
		buf.WriteString("null")
		return
	}
	switch d.Kind {
	case KindMapping:
		idx := make([]int, len(d.Pairs))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool {
			return d.Pairs[idx[a]].Key < d.Pairs[idx[b]].Key
		})
		buf.WriteByte('{')
		for i, j := range idx {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(d.Pairs[j].Key)
			buf.Write(key)
			buf.WriteByte(':')
			canonicalWrite(buf, d.Pairs[j].Value)
		}
		buf.WriteByte('}')

	case KindSequence:
		buf.WriteByte('[')
		for i, item := range d.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			canonicalWrite(buf, item)
		}
		buf.WriteByte(']')

	default:
		val, _ := json.Marshal(d.Value)
		buf.Write(val)
	}
}

// Digest returns the BLAKE3 hash of the canonical form.
func (d *Document) Digest() [32]byte {
	return blake3.Sum256(d.Canonical())
}

// Equal reports structural equality, ignoring mapping key order.
func Equal(a, b *Document) bool {
	return bytes.Equal(a.Canonical(), b.Canonical())
}
