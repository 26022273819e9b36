package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Count is one key of a breakdown mapping.
type Count struct {
	Name  string
	Value int
}

// Breakdown is a name→count mapping that remembers the order in which
// the server emitted its keys. Go maps do not, and charts are drawn in
// server order.
type Breakdown []Count

// UnmarshalJSON decodes a JSON object, keeping key order. A null or
// missing object decodes to an empty breakdown.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("breakdown: expected object, got %v", tok)
	}

	var out Breakdown
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("breakdown: expected key, got %v", tok)
		}

		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("breakdown %q: %w", name, err)
		}
		v, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return fmt.Errorf("breakdown %q: %w", name, err)
			}
			if f != math.Trunc(f) {
				return fmt.Errorf("breakdown %q: count %s is not an integer", name, n)
			}
			v = int64(f)
		}

		// Duplicate keys: last one wins, first position is kept.
		if idx, dup := seen[name]; dup {
			out[idx].Value = int(v)
			continue
		}
		seen[name] = len(out)
		out = append(out, Count{Name: name, Value: int(v)})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*b = out
	return nil
}

// MarshalJSON encodes the breakdown as a JSON object in its stored order.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", c.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the count stored under name.
func (b Breakdown) Get(name string) (int, bool) {
	for _, c := range b {
		if c.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}
