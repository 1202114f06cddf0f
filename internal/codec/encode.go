package codec

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"
)

// Encode returns the stored text of v. Primitives are written as literal text, everything
// else as JSON. A nil pointer, slice, map or interface encodes as "null"; callers that skip
// absent fields should check IsNull first.
func Encode(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	rv := reflect.ValueOf(v)
	d, err := Describe(rv.Type())
	if err != nil {
		return "", err
	}
	return EncodeValue(rv, d)
}

// EncodeValue is Encode for a value already described by d.
func EncodeValue(v reflect.Value, d *Descriptor) (string, error) {
	if IsNull(v) {
		return "null", nil
	}
	if d.Nullable {
		return EncodeValue(v.Elem(), d.Inner)
	}

	switch d.Kind {
	case KindPrimitive:
		return primitiveText(v)
	case KindAny:
		elem := v.Elem()
		ed, err := Describe(elem.Type())
		if err != nil {
			return "", err
		}
		return EncodeValue(elem, ed)
	}

	var buf bytes.Buffer
	if err := encodeJSON(&buf, v, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// IsNull reports whether v holds nothing to store.
func IsNull(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	case reflect.Invalid:
		return true
	}
	return false
}

func encodeJSON(buf *bytes.Buffer, v reflect.Value, d *Descriptor) error {
	if IsNull(v) {
		buf.WriteString("null")
		return nil
	}
	if d.Nullable {
		return encodeJSON(buf, v.Elem(), d.Inner)
	}

	switch d.Kind {
	case KindPrimitive:
		return encodePrimitiveJSON(buf, v)

	case KindAny:
		elem := v.Elem()
		ed, err := Describe(elem.Type())
		if err != nil {
			return err
		}
		return encodeJSON(buf, elem, ed)

	case KindList:
		buf.WriteByte('[')
		for i := range v.Len() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSON(buf, v.Index(i), d.Elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case KindSet:
		items := make([]string, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			var item bytes.Buffer
			if err := encodePrimitiveJSON(&item, iter.Key()); err != nil {
				return err
			}
			items = append(items, item.String())
		}
		sort.Strings(items)
		buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(item)
		}
		buf.WriteByte(']')
		return nil

	case KindTuple:
		buf.WriteByte('[')
		for i, ed := range d.Elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			var elem reflect.Value
			if v.Kind() == reflect.Array {
				elem = v.Index(i)
			} else {
				elem = v.FieldByIndex(d.Fields[i].Index)
			}
			if err := encodeJSON(buf, elem, ed); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case KindDict:
		type entry struct {
			key   string
			value reflect.Value
		}
		entries := make([]entry, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key, err := primitiveText(iter.Key())
			if err != nil {
				return err
			}
			entries = append(entries, entry{key: key, value: iter.Value()})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

		buf.WriteByte('{')
		for i, e := range entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, e.key)
			buf.WriteByte(':')
			if err := encodeJSON(buf, e.value, d.Elem); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case KindRecord:
		buf.WriteByte('{')
		first := true
		for _, f := range d.Fields {
			fv := v.FieldByIndex(f.Index)
			if IsNull(fv) {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeJSONString(buf, f.Name)
			buf.WriteByte(':')
			if err := encodeJSON(buf, fv, f.Desc); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	}

	return newError(ErrUnsupportedType, "%s", d)
}

func encodePrimitiveJSON(buf *bytes.Buffer, v reflect.Value) error {
	if v.Type() == timeType || v.Kind() == reflect.String {
		text, err := primitiveText(v)
		if err != nil {
			return err
		}
		writeJSONString(buf, text)
		return nil
	}
	if v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64 {
		if f := v.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return newError(ErrUnsupportedType, "non-finite float %v in JSON", f)
		}
	}
	text, err := primitiveText(v)
	if err != nil {
		return err
	}
	buf.WriteString(text)
	return nil
}

// primitiveText renders a primitive as its stored literal.
func primitiveText(v reflect.Value) (string, error) {
	if v.Type() == timeType {
		// stored in UTC: the zone name and monotonic reading do not survive a round trip
		return v.Interface().(time.Time).UTC().Format(time.RFC3339Nano), nil
	}
	switch v.Kind() {
	case reflect.String:
		if !utf8.ValidString(v.String()) {
			return "", newError(ErrTypeMismatch, "%q is not valid UTF-8", v.String())
		}
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	}
	return "", newError(ErrUnsupportedType, "%s is not a primitive", v.Type())
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encoding a string never fails.
	_ = enc.Encode(s)
	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
}
