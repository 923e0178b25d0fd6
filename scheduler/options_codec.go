package scheduler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a mapping, keeping the document's key order.
// Strings and numbers become Arg, true becomes Switch, false and null Unset.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("options: expected a mapping, got %s", node.Tag)
	}
	decoded := NewOptions()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("options: value of %q must be a scalar (line %d)", key.Value, val.Line)
		}
		switch val.ShortTag() {
		case "!!null":
			decoded.Set(key.Value, Unset())
		case "!!bool":
			var b bool
			if err := val.Decode(&b); err != nil {
				return err
			}
			decoded.Set(key.Value, boolValue(b))
		default:
			decoded.Set(key.Value, Arg(val.Value))
		}
	}
	*o = *decoded
	return nil
}

// UnmarshalJSON decodes an object, keeping the document's key order.
func (o *Options) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = Options{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("options: expected a JSON object")
	}
	decoded := NewOptions()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case nil:
			decoded.Set(key, Unset())
		case bool:
			decoded.Set(key, boolValue(v))
		case string:
			decoded.Set(key, Arg(v))
		case json.Number:
			decoded.Set(key, Arg(v.String()))
		default:
			return fmt.Errorf("options: value of %q must be a string, number, boolean or null", key)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = *decoded
	return nil
}

// MarshalJSON encodes o as an object in stored order.
func (o *Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v := o.values[key]
		switch v.kind {
		case Absent:
			buf.WriteString("false")
		case Flag:
			buf.WriteString("true")
		case FlagWithArg:
			s, err := json.Marshal(v.arg)
			if err != nil {
				return nil, err
			}
			buf.Write(s)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func boolValue(b bool) Value {
	if b {
		return Switch()
	}
	return Unset()
}
