package codec

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Decode parses stored text into a value of type T.
func Decode[T any](text string) (T, error) {
	var zero T
	d, err := DescribeFor[T]()
	if err != nil {
		return zero, err
	}
	v, err := DecodeValue(text, d)
	if err != nil {
		return zero, err
	}
	out, _ := v.Interface().(T)
	return out, nil
}

// DecodeValue parses stored text into a value of d.Type. Primitive text is coerced to the
// declared type; anything else is parsed as JSON. An untyped (any) value is JSON when the text
// parses as JSON and the raw string otherwise.
func DecodeValue(text string, d *Descriptor) (reflect.Value, error) {
	if d.Nullable {
		inner, err := DecodeValue(text, d.Inner)
		if err != nil {
			return reflect.Value{}, err
		}
		return pointerTo(inner, d.Type), nil
	}

	switch d.Kind {
	case KindPrimitive:
		return parsePrimitive(text, d.Type)
	case KindAny:
		out := reflect.New(d.Type).Elem()
		var x any
		if err := json.Unmarshal([]byte(text), &x); err != nil {
			out.Set(reflect.ValueOf(text))
			return out, nil
		}
		if x != nil {
			out.Set(reflect.ValueOf(x))
		}
		return out, nil
	}

	return decodeJSON([]byte(text), d)
}

func decodeJSON(raw []byte, d *Descriptor) (reflect.Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return reflect.Value{}, newError(ErrTypeMismatch, "empty value for %s", d)
	}
	if bytes.Equal(raw, []byte("null")) {
		return reflect.New(d.Type).Elem(), nil
	}
	if d.Nullable {
		inner, err := decodeJSON(raw, d.Inner)
		if err != nil {
			return reflect.Value{}, err
		}
		return pointerTo(inner, d.Type), nil
	}

	switch d.Kind {
	case KindPrimitive:
		if raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return reflect.Value{}, newError(ErrTypeMismatch, "%s: %v", d, err)
			}
			return parsePrimitive(s, d.Type)
		}
		return parsePrimitive(string(raw), d.Type)

	case KindAny:
		out := reflect.New(d.Type).Elem()
		var x any
		if err := json.Unmarshal(raw, &x); err != nil {
			return reflect.Value{}, newError(ErrTypeMismatch, "%s: %v", d, err)
		}
		if x != nil {
			out.Set(reflect.ValueOf(x))
		}
		return out, nil

	case KindList:
		items, err := jsonArray(raw, d)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeSlice(d.Type, len(items), len(items))
		for i, item := range items {
			ev, err := decodeJSON(item, d.Elem)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case KindSet:
		items, err := jsonArray(raw, d)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.MakeMapWithSize(d.Type, len(items))
		member := reflect.New(d.Type.Elem()).Elem()
		for _, item := range items {
			ev, err := decodeJSON(item, d.Elem)
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(ev, member)
		}
		return out, nil

	case KindTuple:
		items, err := jsonArray(raw, d)
		if err != nil {
			return reflect.Value{}, err
		}
		if len(items) != len(d.Elems) {
			return reflect.Value{}, newError(ErrTypeMismatch, "%s expects %d elements, got %d",
				d, len(d.Elems), len(items))
		}
		out := reflect.New(d.Type).Elem()
		for i, item := range items {
			ev, err := decodeJSON(item, d.Elems[i])
			if err != nil {
				return reflect.Value{}, err
			}
			if out.Kind() == reflect.Array {
				out.Index(i).Set(ev)
			} else {
				out.FieldByIndex(d.Fields[i].Index).Set(ev)
			}
		}
		return out, nil

	case KindDict:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return reflect.Value{}, newError(ErrTypeMismatch, "%s: %v", d, err)
		}
		out := reflect.MakeMapWithSize(d.Type, len(obj))
		for k, item := range obj {
			kv, err := parsePrimitive(k, d.Type.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			ev, err := decodeJSON(item, d.Elem)
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(kv, ev)
		}
		return out, nil

	case KindRecord:
		// nested records may arrive as a JSON string holding an object
		if raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return reflect.Value{}, newError(ErrTypeMismatch, "%s: %v", d, err)
			}
			raw = bytes.TrimSpace([]byte(s))
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return reflect.Value{}, newError(ErrTypeMismatch, "%s: %v", d, err)
		}
		out := reflect.New(d.Type).Elem()
		for _, f := range d.Fields {
			item, ok := obj[f.Name]
			if !ok {
				continue
			}
			fv, err := decodeJSON(item, f.Desc)
			if err != nil {
				return reflect.Value{}, err
			}
			out.FieldByIndex(f.Index).Set(fv)
		}
		return out, nil
	}

	return reflect.Value{}, newError(ErrUnsupportedType, "%s", d)
}

func jsonArray(raw []byte, d *Descriptor) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, newError(ErrTypeMismatch, "%s: %v", d, err)
	}
	return items, nil
}

func pointerTo(v reflect.Value, t reflect.Type) reflect.Value {
	ptr := reflect.New(t.Elem())
	ptr.Elem().Set(v)
	return ptr
}

// parsePrimitive coerces text to the primitive type t.
func parsePrimitive(text string, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()

	if t == timeType {
		ts, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return reflect.Value{}, newError(ErrTypeMismatch, "%q is not a timestamp", text)
		}
		out.Set(reflect.ValueOf(ts))
		return out, nil
	}

	switch t.Kind() {
	case reflect.String:
		out.SetString(text)
	case reflect.Bool:
		switch strings.ToLower(text) {
		case "true":
			out.SetBool(true)
		case "false":
			out.SetBool(false)
		default:
			return reflect.Value{}, newError(ErrTypeMismatch, "%q is not a bool", text)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, newError(ErrTypeMismatch, "%q is not a %s", text, t)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(text, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, newError(ErrTypeMismatch, "%q is not a %s", text, t)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, t.Bits())
		if err != nil {
			return reflect.Value{}, newError(ErrTypeMismatch, "%q is not a %s", text, t)
		}
		out.SetFloat(f)
	default:
		return reflect.Value{}, newError(ErrUnsupportedType, "%s is not a primitive", t)
	}
	return out, nil
}
