package query

import (
	"testing"

	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/stretchr/testify/require"
)

func testRow() *litetable.Row {
	return &litetable.Row{
		Key: "B0001",
		Columns: map[string]litetable.VersionedQualifier{
			"main": {
				"name": {{Value: []byte("Bob2"), Timestamp: 2_500_000_000}, {Value: []byte("Bob1"), Timestamp: 1_200_000_000}},
				"city": {{Value: []byte("NY"), Timestamp: 1_100_000_000}},
			},
			"legacy": {
				"age": {{Value: []byte("40"), Timestamp: 900}},
			},
		},
	}
}

func TestApply(t *testing.T) {
	tests := map[string]struct {
		filter Filter
		check  func(req *require.Assertions, got *litetable.Row)
	}{
		"nil filter passes everything": {
			filter: nil,
			check: func(req *require.Assertions, got *litetable.Row) {
				req.Len(got.Columns["main"]["name"], 2)
				req.Len(got.Columns["legacy"], 1)
			},
		},
		"latest cell per column": {
			filter: CellsColumnLimit{N: 1},
			check: func(req *require.Assertions, got *litetable.Row) {
				req.Len(got.Columns["main"]["name"], 1)
				req.Equal("Bob2", string(got.Columns["main"]["name"][0].Value))
			},
		},
		"timestamp range selects one version": {
			filter: TimestampRange{Start: VersionTimestamp(1), End: VersionTimestamp(2)},
			check: func(req *require.Assertions, got *litetable.Row) {
				req.Equal("Bob1", string(got.Columns["main"]["name"][0].Value))
				req.Equal("NY", string(got.Columns["main"]["city"][0].Value))
				req.NotContains(got.Columns, "legacy")
			},
		},
		"qualifier union": {
			filter: Or(Qualifier("name"), Qualifier("age")),
			check: func(req *require.Assertions, got *litetable.Row) {
				req.Contains(got.Columns["main"], "name")
				req.NotContains(got.Columns["main"], "city")
				req.Contains(got.Columns["legacy"], "age")
			},
		},
		"family projection": {
			filter: Family("legacy"),
			check: func(req *require.Assertions, got *litetable.Row) {
				req.Len(got.Columns, 1)
				req.Contains(got.Columns, "legacy")
			},
		},
		"row key prefix miss drops the row": {
			filter: And(RowKeyPrefix("A"), CellsColumnLimit{N: 1}),
			check: func(req *require.Assertions, got *litetable.Row) {
				req.Nil(got)
			},
		},
		"row key prefix hit": {
			filter: And(RowKeyPrefix("B0"), Family("main")),
			check: func(req *require.Assertions, got *litetable.Row) {
				req.NotNil(got)
				req.Len(got.Columns, 1)
			},
		},
		"chain with nothing left is absent": {
			filter: And(Family("main"), Qualifier("age")),
			check: func(req *require.Assertions, got *litetable.Row) {
				req.Nil(got)
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			row := testRow()
			got := Apply(tc.filter, row)
			tc.check(req, got)

			// the input row is never mutated
			req.Len(row.Columns["main"]["name"], 2)
		})
	}
}

func TestNewQualifierRegex(t *testing.T) {
	req := require.New(t)

	f, err := NewQualifierRegex("na.*")
	req.NoError(err)
	got := Apply(f, testRow())
	req.Contains(got.Columns["main"], "name")
	req.NotContains(got.Columns["main"], "city")

	_, err = NewQualifierRegex("(")
	req.Error(err)
}

func TestOrWithPassAll(t *testing.T) {
	require.Equal(t, PassAll{}, Or(Family("main"), PassAll{}))
	require.Equal(t, PassAll{}, And())
}

func TestScanPrefix(t *testing.T) {
	req := require.New(t)

	prefix, ok := ScanPrefix(And(RowKeyPrefix("user#"), CellsColumnLimit{N: 1}))
	req.True(ok)
	req.Equal("user#", prefix)

	pattern, ok := RowKeyPattern(And(RowKeyPrefix("a.b"), CellsColumnLimit{N: 1}))
	req.True(ok)
	req.Equal(`^a\.b.*`, pattern)

	re, err := NewRowKeyRegex("^x[0-9]+$")
	req.NoError(err)
	_, ok = ScanPrefix(re)
	req.False(ok)

	_, ok = RowKeyPattern(CellsColumnLimit{N: 1})
	req.False(ok)
}
