package litetable

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRow(t *testing.T) {
	req := require.New(t)

	var nilRow *Row
	req.True(nilRow.IsEmpty())
	_, ok := nilRow.Latest("main", "name")
	req.False(ok)

	row := &Row{
		Key: "r1",
		Columns: map[string]VersionedQualifier{
			"main":  {"name": {{Value: []byte("new"), Timestamp: 2}, {Value: []byte("old"), Timestamp: 1}}},
			"extra": {"tags": {}},
		},
	}
	req.False(row.IsEmpty())
	req.Equal([]string{"extra", "main"}, row.Families())

	latest, ok := row.Latest("main", "name")
	req.True(ok)
	req.Equal("new", string(latest.Value))

	clone := row.Clone()
	clone.Columns["main"]["name"][0].Value[0] = 'N'
	req.Equal("new", string(row.Columns["main"]["name"][0].Value))

	req.True((&Row{Columns: map[string]VersionedQualifier{"main": {"a": nil}}}).IsEmpty())
}

func TestSortVersions(t *testing.T) {
	values := []TimestampedValue{{Timestamp: 1}, {Timestamp: 3}, {Timestamp: 2}}
	SortVersions(values)
	require.Equal(t, []TimestampedValue{{Timestamp: 3}, {Timestamp: 2}, {Timestamp: 1}}, values)
}

type recorder struct {
	calls []string
	fail  string
}

func (r *recorder) Put(_ context.Context, rowKey string, _ []Mutation) error {
	r.calls = append(r.calls, "put "+rowKey)
	if rowKey == r.fail {
		return errors.New("boom")
	}
	return nil
}

func (r *recorder) Delete(_ context.Context, rowKey string) error {
	r.calls = append(r.calls, "delete "+rowKey)
	return nil
}

func TestSerialBatch_Flush(t *testing.T) {
	tests := map[string]struct {
		cancel        bool
		expectedCalls []string
		expectedErr   string
	}{
		"applies in order and keeps going": {
			expectedCalls: []string{"put a", "put b", "delete a"},
			expectedErr:   "row b: boom",
		},
		"cancelled context": {
			cancel:      true,
			expectedErr: context.Canceled.Error(),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			w := &recorder{fail: "b"}
			b := NewSerialBatch(w)
			b.Put("a", []Mutation{{Family: "main", Qualifier: "q"}})
			b.Put("b", nil)
			b.Delete("a")

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tc.cancel {
				cancel()
			}

			require.EqualError(t, b.Flush(ctx), tc.expectedErr)
			require.Equal(t, tc.expectedCalls, w.calls)

			// entries are consumed by Flush
			w.calls = nil
			require.NoError(t, b.Flush(context.Background()))
			require.Empty(t, w.calls)
		})
	}
}
