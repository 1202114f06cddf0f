// Package codec converts Go values to and from the textual payloads stored in wide-column
// cells.
//
// Every Go type is described once by a Descriptor, one of a closed set of kinds, and the
// descriptor drives both directions. Primitives are stored as their literal text; containers
// and nested records are stored as JSON.
package codec

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// Kind is the semantic shape of a type.
type Kind int

const (
	KindPrimitive Kind = iota
	KindList
	KindSet
	KindTuple
	KindDict
	KindRecord
	KindAny
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindTuple:
		return "tuple"
	case KindDict:
		return "dict"
	case KindRecord:
		return "record"
	case KindAny:
		return "any"
	}
	return "unknown"
}

// Tuple marks a struct as a heterogeneous tuple when embedded. Its fields are encoded by
// position as a JSON array:
//
//	type Point struct {
//		codec.Tuple
//		X int
//		Label string
//	}
type Tuple struct{}

// Descriptor describes how values of one Go type are encoded.
type Descriptor struct {
	Kind Kind
	// Type is the Go type described, including the pointer for nullable types.
	Type reflect.Type
	// Nullable is set for *T; Inner then describes T.
	Nullable bool
	Inner    *Descriptor
	// Elem describes list and set elements and dict values.
	Elem *Descriptor
	// Key describes dict keys.
	Key *Descriptor
	// Elems describes tuple positions.
	Elems []*Descriptor
	// Fields lists record fields, and the positional fields of struct tuples.
	Fields []Field
}

// Field is one named field of a record.
type Field struct {
	Name  string
	Index []int
	Desc  *Descriptor
}

// Field returns the record field with the given name.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (d *Descriptor) String() string {
	if d.Nullable {
		return "optional<" + d.Inner.String() + ">"
	}
	switch d.Kind {
	case KindList:
		return "list<" + d.Elem.String() + ">"
	case KindSet:
		return "set<" + d.Elem.String() + ">"
	case KindDict:
		return "dict<" + d.Key.String() + "," + d.Elem.String() + ">"
	case KindTuple:
		parts := make([]string, len(d.Elems))
		for i, e := range d.Elems {
			parts[i] = e.String()
		}
		return "tuple<" + strings.Join(parts, ",") + ">"
	case KindAny:
		return "any"
	}
	return d.Type.String()
}

var (
	timeType        = reflect.TypeFor[time.Time]()
	tupleMarkerType = reflect.TypeFor[Tuple]()
	emptyStructType = reflect.TypeFor[struct{}]()

	cache sync.Map // reflect.Type -> *Descriptor
)

// DescribeFor returns the descriptor of T.
func DescribeFor[T any]() (*Descriptor, error) {
	return Describe(reflect.TypeFor[T]())
}

// Describe returns the descriptor of t, building and caching it on first use.
func Describe(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, newError(ErrUnsupportedType, "nil type")
	}
	if d, ok := cache.Load(t); ok {
		return d.(*Descriptor), nil
	}
	b := &builder{seen: make(map[reflect.Type]*Descriptor)}
	d, err := b.describe(t)
	if err != nil {
		return nil, err
	}
	actual, _ := cache.LoadOrStore(t, d)
	return actual.(*Descriptor), nil
}

// builder tracks descriptors under construction so recursive types terminate.
type builder struct {
	seen map[reflect.Type]*Descriptor
}

func (b *builder) describe(t reflect.Type) (*Descriptor, error) {
	if d, ok := b.seen[t]; ok {
		return d, nil
	}
	if t == timeType {
		return &Descriptor{Kind: KindPrimitive, Type: t}, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			return nil, newError(ErrUnsupportedType, "pointer to pointer %s", t)
		}
		d := &Descriptor{Type: t, Nullable: true}
		b.seen[t] = d
		inner, err := b.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		d.Kind = inner.Kind
		d.Inner = inner
		return d, nil

	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return &Descriptor{Kind: KindPrimitive, Type: t}, nil

	case reflect.Interface:
		if t.NumMethod() != 0 {
			return nil, newError(ErrUnsupportedType, "interface %s has methods", t)
		}
		return &Descriptor{Kind: KindAny, Type: t}, nil

	case reflect.Slice:
		d := &Descriptor{Kind: KindList, Type: t}
		b.seen[t] = d
		elem, err := b.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		d.Elem = elem
		return d, nil

	case reflect.Array:
		d := &Descriptor{Kind: KindTuple, Type: t}
		b.seen[t] = d
		elem, err := b.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		d.Elems = make([]*Descriptor, t.Len())
		for i := range d.Elems {
			d.Elems[i] = elem
		}
		return d, nil

	case reflect.Map:
		key, err := b.describe(t.Key())
		if err != nil {
			return nil, err
		}
		if key.Kind != KindPrimitive || key.Nullable {
			return nil, newError(ErrUnsupportedType, "map key %s is not a primitive", t.Key())
		}
		if t.Elem() == emptyStructType {
			return &Descriptor{Kind: KindSet, Type: t, Elem: key}, nil
		}
		d := &Descriptor{Kind: KindDict, Type: t, Key: key}
		b.seen[t] = d
		elem, err := b.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		d.Elem = elem
		return d, nil

	case reflect.Struct:
		if isTuple(t) {
			return b.describeTuple(t)
		}
		return b.describeRecord(t)
	}

	return nil, newError(ErrUnsupportedType, "%s (%s)", t, t.Kind())
}

func (b *builder) describeTuple(t reflect.Type) (*Descriptor, error) {
	d := &Descriptor{Kind: KindTuple, Type: t}
	b.seen[t] = d
	for i := range t.NumField() {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == tupleMarkerType {
			continue
		}
		if !sf.IsExported() {
			continue
		}
		fd, err := b.describe(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("tuple %s position %s: %w", t, sf.Name, err)
		}
		d.Elems = append(d.Elems, fd)
		d.Fields = append(d.Fields, Field{Name: sf.Name, Index: sf.Index, Desc: fd})
	}
	return d, nil
}

func (b *builder) describeRecord(t reflect.Type) (*Descriptor, error) {
	d := &Descriptor{Kind: KindRecord, Type: t}
	b.seen[t] = d
	fields, err := b.collectFields(t, nil)
	if err != nil {
		return nil, err
	}
	d.Fields = fields
	return d, nil
}

// collectFields walks exported fields, promoting untagged embedded structs like encoding/json.
func (b *builder) collectFields(t reflect.Type, prefix []int) ([]Field, error) {
	var fields []Field
	for i := range t.NumField() {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		index := append(append([]int(nil), prefix...), i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && tagName(tag) == "" {
			promoted, err := b.collectFields(sf.Type, index)
			if err != nil {
				return nil, err
			}
			fields = append(fields, promoted...)
			continue
		}
		if !sf.IsExported() {
			continue
		}

		fd, err := b.describe(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t, sf.Name, err)
		}
		fields = append(fields, Field{Name: jsonFieldName(&sf), Index: index, Desc: fd})
	}
	return fields, nil
}

func isTuple(t reflect.Type) bool {
	for i := range t.NumField() {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == tupleMarkerType {
			return true
		}
	}
	return false
}

// jsonFieldName returns the JSON field name for a struct field.
func jsonFieldName(field *reflect.StructField) string {
	if name := tagName(field.Tag.Get("json")); name != "" {
		return name
	}
	return field.Name
}

func tagName(tag string) string {
	if i := strings.IndexByte(tag, ','); i >= 0 {
		return tag[:i]
	}
	return tag
}
