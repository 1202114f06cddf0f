package litetable

import (
	"context"
	"sort"
)

// Operation identifies the kind of change applied to a cell.
type Operation int

const (
	OperationUnknown Operation = iota
	OperationRead
	OperationWrite
	OperationDelete
)

// TimestampedValue stores a value with its timestamp (Unix nanoseconds).
type TimestampedValue struct {
	Value     []byte `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

// VersionedQualifier maps qualifiers to their timestamped values, newest first.
type VersionedQualifier map[string][]TimestampedValue

// Data is the in-memory shape of a table: rowKey -> family -> qualifier -> versions.
type Data map[string]map[string]VersionedQualifier

// Row defines a row of data in LiteTable:
//
// Example:
//
//	Row{
//	  Key: "row1",
//	  Columns: map[string]VersionedQualifier{
//	    "family1": {
//	      "qualifier1": {{Value: []byte("value1"), Timestamp: 2}},
//	      "qualifier2": {{Value: []byte("value2"), Timestamp: 2}},
//	    },
//	    "family2": {
//	      "qualifier1": {{Value: []byte("value3"), Timestamp: 1}},
//	    },
//	  },
//	}
//
// This represents a row with key "row1" containing two families: "family1" and "family2",
// each with their respective qualifiers and values.
type Row struct {
	Key     string                        `json:"key"`
	Columns map[string]VersionedQualifier `json:"cols"` // family → qualifier → []TimestampedValue
}

// Latest returns the newest value stored under family/qualifier.
func (r *Row) Latest(family, qualifier string) (TimestampedValue, bool) {
	if r == nil {
		return TimestampedValue{}, false
	}
	values := r.Columns[family][qualifier]
	if len(values) == 0 {
		return TimestampedValue{}, false
	}
	return values[0], true
}

// Families returns the family names present in the row, sorted.
func (r *Row) Families() []string {
	families := make([]string, 0, len(r.Columns))
	for family := range r.Columns {
		families = append(families, family)
	}
	sort.Strings(families)
	return families
}

// IsEmpty reports whether the row holds no cell at all.
func (r *Row) IsEmpty() bool {
	if r == nil {
		return true
	}
	for _, qualifiers := range r.Columns {
		for _, values := range qualifiers {
			if len(values) > 0 {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of the row, so callers can hand it out without holding a lock.
func (r *Row) Clone() *Row {
	out := &Row{
		Key:     r.Key,
		Columns: make(map[string]VersionedQualifier, len(r.Columns)),
	}
	for family, qualifiers := range r.Columns {
		vq := make(VersionedQualifier, len(qualifiers))
		for qualifier, values := range qualifiers {
			copied := make([]TimestampedValue, len(values))
			for i, v := range values {
				copied[i] = TimestampedValue{
					Value:     append([]byte(nil), v.Value...),
					Timestamp: v.Timestamp,
				}
			}
			vq[qualifier] = copied
		}
		out.Columns[family] = vq
	}
	return out
}

// SortVersions orders every qualifier's values newest first.
func SortVersions(values []TimestampedValue) {
	sort.SliceStable(values, func(i, j int) bool {
		return values[i].Timestamp > values[j].Timestamp
	})
}

// Mutation is a single cell write. Timestamp is used only when HasTimestamp is set; otherwise
// the store assigns "now". Zero is a valid explicit timestamp.
type Mutation struct {
	Family       string
	Qualifier    string
	Value        []byte
	Timestamp    int64
	HasTimestamp bool
}

// Batch accumulates single-row writes and deletes that are sent together on Flush. Each row
// is applied atomically; the batch as a whole is not.
type Batch interface {
	Put(rowKey string, mutations []Mutation)
	Delete(rowKey string)
	Flush(ctx context.Context) error
}

// Event describes one changed cell. Stores emit events so change data capture can stream them.
type Event struct {
	Operation Operation
	RowKey    string
	Family    string
	Qualifier string
	Value     []byte
	Timestamp int64
	Tombstone bool
}
