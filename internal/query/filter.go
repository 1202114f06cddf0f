// Package query builds row filters for a versioned wide-column store and evaluates them.
//
// A Filter is one of a closed set of variants. Every store implementation evaluates filters
// through Apply, so a filter means the same thing whether the store is in-process or remote.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/litetable/litetable-mapper/internal/litetable"
)

// Filter selects cells from a row.
type Filter interface {
	// apply returns the cells of columns that survive the filter. It never mutates columns.
	apply(rowKey string, columns map[string]litetable.VersionedQualifier) map[string]litetable.VersionedQualifier
	String() string
}

// Apply evaluates f against row and returns the surviving cells, or nil when none survive.
// A nil filter passes everything.
func Apply(f Filter, row *litetable.Row) *litetable.Row {
	if row == nil {
		return nil
	}
	columns := row.Columns
	if f != nil {
		columns = f.apply(row.Key, columns)
	}
	out := &litetable.Row{Key: row.Key, Columns: columns}
	if out.IsEmpty() {
		return nil
	}
	return out
}

// PassAll keeps every cell.
type PassAll struct{}

func (PassAll) apply(_ string, columns map[string]litetable.VersionedQualifier) map[string]litetable.VersionedQualifier {
	return columns
}

func (PassAll) String() string { return "pass_all" }

// TimestampRange keeps cells with Start <= timestamp < End. A zero End is unbounded.
type TimestampRange struct {
	Start int64
	End   int64
}

func (t TimestampRange) apply(_ string, columns map[string]litetable.VersionedQualifier) map[string]litetable.VersionedQualifier {
	return mapValues(columns, func(values []litetable.TimestampedValue) []litetable.TimestampedValue {
		var kept []litetable.TimestampedValue
		for _, v := range values {
			if v.Timestamp < t.Start {
				continue
			}
			if t.End != 0 && v.Timestamp >= t.End {
				continue
			}
			kept = append(kept, v)
		}
		return kept
	})
}

func (t TimestampRange) String() string {
	return fmt.Sprintf("timestamp_range[%d,%d)", t.Start, t.End)
}

// CellsColumnLimit keeps the N newest cells of every column.
type CellsColumnLimit struct {
	N int
}

func (c CellsColumnLimit) apply(_ string, columns map[string]litetable.VersionedQualifier) map[string]litetable.VersionedQualifier {
	return mapValues(columns, func(values []litetable.TimestampedValue) []litetable.TimestampedValue {
		if c.N <= 0 || len(values) <= c.N {
			return values
		}
		return values[:c.N]
	})
}

func (c CellsColumnLimit) String() string { return fmt.Sprintf("cells_per_column(%d)", c.N) }

// QualifierRegex keeps columns whose qualifier fully matches the pattern.
type QualifierRegex struct {
	re *regexp.Regexp
}

// NewQualifierRegex compiles pattern as a full-match qualifier filter.
func NewQualifierRegex(pattern string) (QualifierRegex, error) {
	re, err := compileAnchored(pattern)
	if err != nil {
		return QualifierRegex{}, err
	}
	return QualifierRegex{re: re}, nil
}

// Qualifier keeps the column with exactly this qualifier.
func Qualifier(name string) QualifierRegex {
	return QualifierRegex{re: regexp.MustCompile("^" + regexp.QuoteMeta(name) + "$")}
}

func (q QualifierRegex) apply(_ string, columns map[string]litetable.VersionedQualifier) map[string]litetable.VersionedQualifier {
	out := make(map[string]litetable.VersionedQualifier)
	for family, qualifiers := range columns {
		for qualifier, values := range qualifiers {
			if !q.re.MatchString(qualifier) {
				continue
			}
			if out[family] == nil {
				out[family] = make(litetable.VersionedQualifier)
			}
			out[family][qualifier] = values
		}
	}
	return out
}

func (q QualifierRegex) String() string { return "qualifier=~" + q.re.String() }

// FamilyRegex keeps the families whose name fully matches the pattern.
type FamilyRegex struct {
	re *regexp.Regexp
}

// Family keeps exactly one family.
func Family(name string) FamilyRegex {
	return FamilyRegex{re: regexp.MustCompile("^" + regexp.QuoteMeta(name) + "$")}
}

func (f FamilyRegex) apply(_ string, columns map[string]litetable.VersionedQualifier) map[string]litetable.VersionedQualifier {
	out := make(map[string]litetable.VersionedQualifier)
	for family, qualifiers := range columns {
		if f.re.MatchString(family) {
			out[family] = qualifiers
		}
	}
	return out
}

func (f FamilyRegex) String() string { return "family=~" + f.re.String() }

// RowKeyRegex keeps every cell of rows whose key matches the pattern.
type RowKeyRegex struct {
	re *regexp.Regexp
	// prefix is set when the filter was built from a literal prefix; stores use it to seek.
	prefix string
}

// NewRowKeyRegex compiles an arbitrary row key pattern.
func NewRowKeyRegex(pattern string) (RowKeyRegex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return RowKeyRegex{}, fmt.Errorf("invalid row key pattern %q: %w", pattern, err)
	}
	return RowKeyRegex{re: re}, nil
}

// RowKeyPrefix matches row keys starting with prefix, expressed as an anchored regex.
func RowKeyPrefix(prefix string) RowKeyRegex {
	return RowKeyRegex{
		re:     regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + ".*"),
		prefix: prefix,
	}
}

func (r RowKeyRegex) apply(rowKey string, columns map[string]litetable.VersionedQualifier) map[string]litetable.VersionedQualifier {
	if r.re.MatchString(rowKey) {
		return columns
	}
	return nil
}

func (r RowKeyRegex) String() string { return "row_key=~" + r.re.String() }

// Pattern returns the regular expression source.
func (r RowKeyRegex) Pattern() string { return r.re.String() }

// Chain applies its filters in sequence; a cell survives only if every filter keeps it.
type Chain struct {
	Filters []Filter
}

func (c Chain) apply(rowKey string, columns map[string]litetable.VersionedQualifier) map[string]litetable.VersionedQualifier {
	for _, f := range c.Filters {
		if len(columns) == 0 {
			return nil
		}
		columns = f.apply(rowKey, columns)
	}
	return columns
}

func (c Chain) String() string { return "chain(" + join(c.Filters) + ")" }

// Union keeps a cell if any of its filters keeps it.
type Union struct {
	Filters []Filter
}

func (u Union) apply(rowKey string, columns map[string]litetable.VersionedQualifier) map[string]litetable.VersionedQualifier {
	out := make(map[string]litetable.VersionedQualifier)
	for _, f := range u.Filters {
		merge(out, f.apply(rowKey, columns))
	}
	return out
}

func (u Union) String() string { return "union(" + join(u.Filters) + ")" }

// And returns the conjunction of filters, collapsing trivial cases.
func And(filters ...Filter) Filter {
	filters = compact(filters)
	switch len(filters) {
	case 0:
		return PassAll{}
	case 1:
		return filters[0]
	}
	return Chain{Filters: filters}
}

// Or returns the disjunction of filters, collapsing trivial cases.
func Or(filters ...Filter) Filter {
	for _, f := range filters {
		if _, ok := f.(PassAll); ok {
			return PassAll{}
		}
	}
	filters = compact(filters)
	switch len(filters) {
	case 0:
		return PassAll{}
	case 1:
		return filters[0]
	}
	return Union{Filters: filters}
}

// ScanPrefix returns the literal row key prefix a filter requires, if it has one.
func ScanPrefix(f Filter) (string, bool) {
	switch v := f.(type) {
	case RowKeyRegex:
		return v.prefix, v.prefix != ""
	case Chain:
		for _, inner := range v.Filters {
			if prefix, ok := ScanPrefix(inner); ok {
				return prefix, true
			}
		}
	}
	return "", false
}

// RowKeyPattern returns the row key regex a filter requires, if it has one.
func RowKeyPattern(f Filter) (string, bool) {
	switch v := f.(type) {
	case RowKeyRegex:
		return v.Pattern(), true
	case Chain:
		for _, inner := range v.Filters {
			if pattern, ok := RowKeyPattern(inner); ok {
				return pattern, true
			}
		}
	}
	return "", false
}

func compileAnchored(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}

func mapValues(
	columns map[string]litetable.VersionedQualifier,
	fn func([]litetable.TimestampedValue) []litetable.TimestampedValue,
) map[string]litetable.VersionedQualifier {
	out := make(map[string]litetable.VersionedQualifier, len(columns))
	for family, qualifiers := range columns {
		for qualifier, values := range qualifiers {
			kept := fn(values)
			if len(kept) == 0 {
				continue
			}
			if out[family] == nil {
				out[family] = make(litetable.VersionedQualifier)
			}
			out[family][qualifier] = kept
		}
	}
	return out
}

// merge adds the cells of src into dst, dropping duplicate timestamps.
func merge(dst, src map[string]litetable.VersionedQualifier) {
	for family, qualifiers := range src {
		if dst[family] == nil {
			dst[family] = make(litetable.VersionedQualifier)
		}
		for qualifier, values := range qualifiers {
			existing := dst[family][qualifier]
			seen := make(map[int64]struct{}, len(existing))
			for _, v := range existing {
				seen[v.Timestamp] = struct{}{}
			}
			for _, v := range values {
				if _, ok := seen[v.Timestamp]; ok {
					continue
				}
				existing = append(existing, v)
			}
			litetable.SortVersions(existing)
			dst[family][qualifier] = existing
		}
	}
}

func compact(filters []Filter) []Filter {
	out := filters[:0:0]
	for _, f := range filters {
		if f == nil {
			continue
		}
		if _, ok := f.(PassAll); ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

func join(filters []Filter) string {
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}
