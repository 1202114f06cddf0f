package migration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(map[string]Rule{
		"age":      {OldFamily: "legacy", NewFamily: "main", Status: StatusMoving},
		"nickname": {OldFamily: "legacy", Status: StatusDeprecated},
	})
	require.NoError(t, err)
	return table
}

func TestNewTable(t *testing.T) {
	tests := map[string]struct {
		rules       map[string]Rule
		expectedErr string
	}{
		"valid": {
			rules: map[string]Rule{"a": {OldFamily: "x", NewFamily: "y", Status: StatusMoving}},
		},
		"missing families": {
			rules:       map[string]Rule{"a": {Status: StatusMoving}},
			expectedErr: "field a: old family is required\nfield a: new family is required",
		},
		"same family": {
			rules:       map[string]Rule{"a": {OldFamily: "x", NewFamily: "x", Status: StatusMoving}},
			expectedErr: "field a: old and new family are both x",
		},
		"no status": {
			rules:       map[string]Rule{"a": {OldFamily: "x", NewFamily: "y"}},
			expectedErr: "field a: invalid status 0",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewTable(tc.rules)
			if tc.expectedErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tc.expectedErr)
		})
	}
}

func TestTable_Resolve(t *testing.T) {
	table := testTable(t)

	tests := map[string]struct {
		field    string
		observed []string
		governed bool
		expected Resolution
	}{
		"no rule": {
			field:    "name",
			observed: []string{"main"},
		},
		"legacy only": {
			field:    "age",
			observed: []string{"legacy"},
			governed: true,
			expected: Resolution{Family: "legacy"},
		},
		"new only": {
			field:    "age",
			observed: []string{"main"},
			governed: true,
			expected: Resolution{Family: "main", Migrated: true},
		},
		"both present schedules cleanup": {
			field:    "age",
			observed: []string{"legacy", "main"},
			governed: true,
			expected: Resolution{Family: "main", Migrated: true, Cleanup: "legacy"},
		},
		"absent": {
			field:    "age",
			governed: true,
		},
		"deprecated hides legacy data": {
			field:    "nickname",
			observed: []string{"legacy"},
			governed: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, governed := table.Resolve(tc.field, func(family string) bool {
				for _, f := range tc.observed {
					if f == family {
						return true
					}
				}
				return false
			})
			require.Equal(t, tc.governed, governed)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestTable_Lookups(t *testing.T) {
	req := require.New(t)
	table := testTable(t)

	req.True(table.HasMoving())
	req.True(table.Deprecated("nickname"))
	req.False(table.Deprecated("age"))
	req.Equal([]string{"age", "nickname"}, table.Fields())

	family, ok := table.WriteFamily("age")
	req.True(ok)
	req.Equal("main", family)

	_, ok = table.WriteFamily("nickname")
	req.False(ok)

	families, ok := table.Families("age")
	req.True(ok)
	req.Equal([]string{"legacy", "main"}, families)

	var empty *Table
	req.False(empty.HasMoving())
	req.Nil(empty.Fields())
	_, ok = empty.Rule("age")
	req.False(ok)
}
