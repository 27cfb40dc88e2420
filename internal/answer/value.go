package answer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNone Kind = iota
	KindIndex
	KindText
	KindList
)

// Value is a stored solution or a submitted answer. Depending on the
// question type it is an option index, a code string, or an ordered list of
// indices/strings. The zero Value is KindNone.
type Value struct {
	kind  Kind
	index int64
	text  string
	list  []Value
}

// Index returns an index Value.
func Index(i int64) Value { return Value{kind: KindIndex, index: i} }

// Text returns a text Value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// List returns an ordered list Value. Nested lists are allowed but are
// compared by their string form.
func List(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// Indices is a convenience for List of Index values.
func Indices(is ...int64) Value {
	items := make([]Value, len(is))
	for i, v := range is {
		items[i] = Index(v)
	}
	return Value{kind: KindList, list: items}
}

// Texts is a convenience for List of Text values.
func Texts(ss ...string) Value {
	items := make([]Value, len(ss))
	for i, v := range ss {
		items[i] = Text(v)
	}
	return Value{kind: KindList, list: items}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is absent.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Items returns the elements of a list value, or nil.
func (v Value) Items() []Value { return v.list }

// Scalar returns the textual form of an index or text value. ok is false for
// lists and absent values.
func (v Value) Scalar() (s string, ok bool) {
	switch v.kind {
	case KindIndex:
		return strconv.FormatInt(v.index, 10), true
	case KindText:
		return v.text, true
	default:
		return "", false
	}
}

// String renders the value the way it is compared: indices in base 10, text
// verbatim, lists as "[a, b]" and absent values as "null".
func (v Value) String() string {
	switch v.kind {
	case KindIndex, KindText:
		s, _ := v.Scalar()
		return s
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "null"
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindIndex:
		return []byte(strconv.FormatInt(v.index, 10)), nil
	case KindText:
		return json.Marshal(v.text)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, string, array or null. Integral numbers
// become indices; other numbers keep their literal text so that nothing is
// lost on a round trip. Any other well-formed JSON, such as an object,
// decodes to None, which never matches a solution.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode answer value: %w", err)
	}
	parsed, err := FromAny(raw)
	if err != nil {
		parsed = Value{}
	}
	*v = parsed
	return nil
}

// FromAny converts a decoded JSON/YAML value into a Value.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return Text(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Index(i), nil
		}
		return Text(x.String()), nil
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return Index(int64(x)), nil
		}
		return Text(strconv.FormatFloat(x, 'f', -1, 64)), nil
	case int:
		return Index(int64(x)), nil
	case int64:
		return Index(x), nil
	case bool:
		return Text(strconv.FormatBool(x)), nil
	case []any:
		items := make([]Value, 0, len(x))
		for i, item := range x {
			iv, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, iv)
		}
		return Value{kind: KindList, list: items}, nil
	default:
		return Value{}, fmt.Errorf("unsupported answer value of type %T", raw)
	}
}
