package memstore

import (
	"context"
	"regexp"

	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/query"
)

// Get returns the cells of rowKey that survive filter, or nil when there are none.
func (m *Manager) Get(ctx context.Context, rowKey string, filter query.Filter) (*litetable.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := m.cloneRow(rowKey)
	if row == nil {
		return nil, nil
	}
	return query.Apply(filter, row), nil
}

// Scan returns up to limit rows, in row key order, with at least one cell surviving filter.
// A limit of 0 or less is unbounded. A row-key prefix in filter is used to seek the key index
// instead of visiting every row.
func (m *Manager) Scan(ctx context.Context, filter query.Filter, limit int) ([]*litetable.Row, error) {
	prefix, _ := query.ScanPrefix(filter)

	var rows []*litetable.Row
	for _, key := range m.keys.keys(prefix) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := query.Apply(filter, m.cloneRow(key))
		if row == nil {
			continue
		}
		rows = append(rows, row)
		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	return rows, nil
}

// ScanRegex returns the rows whose key matches pattern, in row key order.
func (m *Manager) ScanRegex(ctx context.Context, pattern string, filter query.Filter) ([]*litetable.Row, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	var rows []*litetable.Row
	for _, key := range m.keys.keys("") {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if !re.MatchString(key) {
			continue
		}
		if row := query.Apply(filter, m.cloneRow(key)); row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// cloneRow copies a row out of its shard so filters run without holding the lock.
func (m *Manager) cloneRow(rowKey string) *litetable.Row {
	s := m.shardFor(rowKey)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	columns, exists := s.data[rowKey]
	if !exists {
		return nil
	}
	return (&litetable.Row{Key: rowKey, Columns: columns}).Clone()
}
