// Package jsonval models JSON documents as a closed tagged-variant type.
//
// Tokenizer fixtures store expected token streams as arbitrary JSON, and the
// doubleEscaped flag plus the forgiving UTF-8 round trip both require a
// recursive transform over every string in such a document (keys included).
// Rather than walking untyped interface{} trees, the harness uses a sealed
// Value interface with one arm per JSON variant so each transform handles
// every shape explicitly.
package jsonval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Value is a sealed interface over the six JSON variants.
// Only Null, String, Number, Bool, Array and Object implement it.
type Value interface {
	jsonValue()
}

// Null represents JSON null.
type Null struct{}

func (Null) jsonValue() {}

// String represents a JSON string. It may hold generalized UTF-8
// (unpaired surrogates) after double-escape decoding; see internal/wtf8.
type String string

func (String) jsonValue() {}

// Number represents a JSON number, kept as its literal text so documents
// re-marshal byte-identically. Comparison is numeric, not textual.
type Number string

func (Number) jsonValue() {}

// Bool represents a JSON boolean.
type Bool bool

func (Bool) jsonValue() {}

// Array represents a JSON array.
type Array []Value

func (Array) jsonValue() {}

// Object represents a JSON object.
type Object map[string]Value

func (Object) jsonValue() {}

// Decode parses raw JSON into a Value tree.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json value: %w", err)
	}
	// Reject trailing garbage after the first JSON value.
	if dec.More() {
		return nil, fmt.Errorf("decode json value: trailing data after value")
	}
	return fromAny(raw)
}

func fromAny(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null{}, nil
	case string:
		return String(v), nil
	case json.Number:
		return Number(v), nil
	case bool:
		return Bool(v), nil
	case []any:
		arr := make(Array, len(v))
		for i, elem := range v {
			e, err := fromAny(elem)
			if err != nil {
				return nil, err
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(v))
		for k, elem := range v {
			e, err := fromAny(elem)
			if err != nil {
				return nil, err
			}
			obj[k] = e
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("decode json value: unsupported type %T", raw)
	}
}

// MarshalJSON renders Null as null.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON renders the string with HTML escaping disabled.
func (s String) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(string(s)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalJSON emits the preserved literal text.
func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("0"), nil
	}
	return []byte(n), nil
}

// MarshalJSON renders the boolean.
func (b Bool) MarshalJSON() ([]byte, error) { return json.Marshal(bool(b)) }

// MarshalJSON renders the array elements in order.
func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := json.Marshal(elem)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON renders object members in sorted key order for stable output.
func (o Object) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kd, err := String(k).MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(kd)
		buf.WriteByte(':')
		vd, err := json.Marshal(o[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vd)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MapStrings applies f to every string in the tree, including object keys,
// and returns the rewritten tree. Non-string leaves pass through unchanged.
func MapStrings(v Value, f func(string) string) Value {
	switch t := v.(type) {
	case Null, Number, Bool:
		return t
	case String:
		return String(f(string(t)))
	case Array:
		out := make(Array, len(t))
		for i, elem := range t {
			out[i] = MapStrings(elem, f)
		}
		return out
	case Object:
		out := make(Object, len(t))
		for k, elem := range t {
			out[f(k)] = MapStrings(elem, f)
		}
		return out
	default:
		return v
	}
}

// Equal reports structural equality. Numbers compare numerically so that
// differing literal spellings of the same value (1 vs 1.0) still match.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Number:
		y, ok := b.(Number)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		xf, errX := strconv.ParseFloat(string(x), 64)
		yf, errY := strconv.ParseFloat(string(y), 64)
		return errX == nil && errY == nil && xf == yf
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Object:
		y, ok := b.(Object)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, present := y[k]
			if !present || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
