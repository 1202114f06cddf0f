package codec

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type address struct {
	Street string `json:"street"`
	Zip    *int   `json:"zip"`
}

type point struct {
	Tuple
	X     int
	Label string
}

type node struct {
	Name     string `json:"name"`
	Next     *node  `json:"next"`
	Children []node `json:"children"`
}

type base struct {
	ID string `json:"id"`
}

type withEmbedded struct {
	base
	Name    string `json:"name"`
	Skipped string `json:"-"`
	hidden  string
}

func roundTrip[T any](t *testing.T, v T) {
	t.Helper()
	req := require.New(t)

	text, err := Encode(v)
	req.NoError(err)

	got, err := Decode[T](text)
	req.NoError(err)
	req.Equal(v, got, "stored as %q", text)
}

func TestTimeIsStoredInUTC(t *testing.T) {
	req := require.New(t)
	local := time.Date(2024, 1, 2, 8, 4, 5, 6, time.FixedZone("PKT", 5*60*60))

	text, err := Encode(local)
	req.NoError(err)
	req.Equal("2024-01-02T03:04:05.000000006Z", text)

	got, err := Decode[time.Time](text)
	req.NoError(err)
	req.True(local.Equal(got))
	req.Equal(local.UTC(), got)

	now := time.Now()
	text, err = Encode(now)
	req.NoError(err)
	got, err = Decode[time.Time](text)
	req.NoError(err)
	req.Equal(now.UTC(), got)
}

func TestRoundTrip(t *testing.T) {
	zip := 10001
	name := "bob"

	tests := map[string]func(t *testing.T){
		"string":         func(t *testing.T) { roundTrip(t, "hello world") },
		"empty string":   func(t *testing.T) { roundTrip(t, "") },
		"int":            func(t *testing.T) { roundTrip(t, -42) },
		"uint8":          func(t *testing.T) { roundTrip(t, uint8(255)) },
		"float64":        func(t *testing.T) { roundTrip(t, 0.1) },
		"float32":        func(t *testing.T) { roundTrip(t, float32(1.25)) },
		"bool":           func(t *testing.T) { roundTrip(t, true) },
		"time":           func(t *testing.T) { roundTrip(t, time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)) },
		"nullable":       func(t *testing.T) { roundTrip(t, &name) },
		"list":           func(t *testing.T) { roundTrip(t, []string{"a", "b,c", `"q"`}) },
		"empty list":     func(t *testing.T) { roundTrip(t, []int{}) },
		"nested list":    func(t *testing.T) { roundTrip(t, [][]int{{1}, {2, 3}}) },
		"set":            func(t *testing.T) { roundTrip(t, map[string]struct{}{"x": {}, "y": {}}) },
		"array tuple":    func(t *testing.T) { roundTrip(t, [3]float64{1, 2.5, -3}) },
		"struct tuple":   func(t *testing.T) { roundTrip(t, point{X: 7, Label: "seven"}) },
		"dict":           func(t *testing.T) { roundTrip(t, map[string][]int{"a": {1}, "b": nil}) },
		"int keyed dict": func(t *testing.T) { roundTrip(t, map[int]string{1: "one", 2: "two"}) },
		"record":         func(t *testing.T) { roundTrip(t, address{Street: "Main", Zip: &zip}) },
		"record omits nil": func(t *testing.T) {
			roundTrip(t, address{Street: "Main"})
		},
		"list of records": func(t *testing.T) {
			roundTrip(t, []address{{Street: "a"}, {Street: "b", Zip: &zip}})
		},
		"recursive record": func(t *testing.T) {
			roundTrip(t, node{
				Name:     "root",
				Next:     &node{Name: "next"},
				Children: []node{{Name: "c1"}, {Name: "c2", Children: []node{{Name: "leaf"}}}},
			})
		},
		"embedded fields": func(t *testing.T) {
			roundTrip(t, withEmbedded{base: base{ID: "1"}, Name: "n"})
		},
		"json native any": func(t *testing.T) {
			roundTrip[any](t, map[string]any{"a": 1.5, "b": []any{"x", true}})
		},
	}

	for name, fn := range tests {
		t.Run(name, fn)
	}
}

func TestEncode(t *testing.T) {
	tests := map[string]struct {
		value    any
		expected string
	}{
		"string is raw":    {value: "hello", expected: "hello"},
		"int":              {value: 42, expected: "42"},
		"bool":             {value: false, expected: "false"},
		"float":            {value: 1.5, expected: "1.5"},
		"list":             {value: []int{1, 2}, expected: "[1,2]"},
		"set is sorted":    {value: map[string]struct{}{"b": {}, "a": {}}, expected: `["a","b"]`},
		"dict is sorted":   {value: map[string]int{"b": 2, "a": 1}, expected: `{"a":1,"b":2}`},
		"tuple":            {value: point{X: 1, Label: "a"}, expected: `[1,"a"]`},
		"record":           {value: address{Street: "Main"}, expected: `{"street":"Main"}`},
		"html is kept":     {value: []string{"<a&b>"}, expected: `["<a&b>"]`},
		"nil slice":        {value: []int(nil), expected: "null"},
		"embedded promote": {value: withEmbedded{base: base{ID: "1"}, Name: "n", Skipped: "x"}, expected: `{"id":"1","name":"n"}`},
		"time":             {value: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), expected: "2024-01-02T03:04:05Z"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Encode(tc.value)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestEncode_InvalidUTF8(t *testing.T) {
	tests := map[string]any{
		"string":   "caf\xe9",
		"list":     []string{"ok", "\xff"},
		"dict key": map[string]int{"\xfe": 1},
		"record":   address{Street: "\xc3"},
	}

	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Encode(value)
			require.ErrorIs(t, err, ErrTypeMismatch)
		})
	}
}

func TestDecode_Coercion(t *testing.T) {
	req := require.New(t)

	b, err := Decode[bool]("TRUE")
	req.NoError(err)
	req.True(b)

	b, err = Decode[bool]("False")
	req.NoError(err)
	req.False(b)

	_, err = Decode[bool]("yes")
	req.ErrorIs(err, ErrTypeMismatch)

	_, err = Decode[int]("abc")
	req.ErrorIs(err, ErrTypeMismatch)

	_, err = Decode[int8]("300")
	req.ErrorIs(err, ErrTypeMismatch)

	// elements that are not JSON strings are taken as their raw text
	list, err := Decode[[]string](`[1,"a",true]`)
	req.NoError(err)
	req.Equal([]string{"1", "a", "true"}, list)

	// a nested record may be stored as a string holding its JSON
	addr, err := Decode[address](`"{\"street\":\"x\"}"`)
	req.NoError(err)
	req.Equal(address{Street: "x"}, addr)

	_, err = Decode[point](`[1]`)
	req.ErrorIs(err, ErrTypeMismatch)

	_, err = Decode[[]int](`not json`)
	req.ErrorIs(err, ErrTypeMismatch)
}

func TestDecode_Any(t *testing.T) {
	req := require.New(t)

	v, err := Decode[any]("hello")
	req.NoError(err)
	req.Equal("hello", v)

	v, err = Decode[any](`{"a":1}`)
	req.NoError(err)
	req.Equal(map[string]any{"a": float64(1)}, v)

	v, err = Decode[any]("null")
	req.NoError(err)
	req.Nil(v)
}

func TestDescribe(t *testing.T) {
	req := require.New(t)

	d, err := DescribeFor[map[string][]int]()
	req.NoError(err)
	req.Equal(KindDict, d.Kind)
	req.Equal("dict<string,list<int>>", d.String())

	d, err = DescribeFor[*[]string]()
	req.NoError(err)
	req.True(d.Nullable)
	req.Equal(KindList, d.Kind)
	req.Equal("optional<list<string>>", d.String())

	d, err = DescribeFor[withEmbedded]()
	req.NoError(err)
	_, ok := d.Field("id")
	req.True(ok)
	_, ok = d.Field("hidden")
	req.False(ok)
	_, ok = d.Field("Skipped")
	req.False(ok)

	again, err := DescribeFor[withEmbedded]()
	req.NoError(err)
	req.Same(d, again)
}

func TestUnsupported(t *testing.T) {
	tests := map[string]reflect.Type{
		"channel":          reflect.TypeFor[chan int](),
		"func":             reflect.TypeFor[func()](),
		"complex":          reflect.TypeFor[complex128](),
		"struct map key":   reflect.TypeFor[map[address]int](),
		"pointer pointer":  reflect.TypeFor[**int](),
		"method interface": reflect.TypeFor[error](),
		"nested channel":   reflect.TypeFor[struct{ C chan int }](),
	}

	for name, typ := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Describe(typ)
			require.ErrorIs(t, err, ErrUnsupportedType)
		})
	}

	t.Run("non-finite float inside JSON", func(t *testing.T) {
		_, err := Encode([]float64{math.Inf(1)})
		require.ErrorIs(t, err, ErrUnsupportedType)
	})
}
