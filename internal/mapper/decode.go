package mapper

import (
	"fmt"
	"reflect"

	"github.com/litetable/litetable-mapper/internal/codec"
)

// decodeField turns a stored cell value into a value of f's type.
func (m *Mapper[T]) decodeField(f *field, raw []byte) (reflect.Value, error) {
	text, err := m.decodeText(raw)
	if err != nil {
		return reflect.Value{}, err
	}
	if f.deserialize == nil {
		return codec.DecodeValue(text, f.desc)
	}

	v, err := f.deserialize(text)
	if err != nil {
		return reflect.Value{}, err
	}
	if v == nil {
		return reflect.Zero(f.desc.Type), nil
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(f.desc.Type):
		return rv, nil
	case f.desc.Nullable && rv.Type().AssignableTo(f.desc.Type.Elem()):
		ptr := reflect.New(f.desc.Type.Elem())
		ptr.Elem().Set(rv)
		return ptr, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: deserializer returned %s, want %s", codec.ErrTypeMismatch,
		rv.Type(), f.desc.Type)
}
