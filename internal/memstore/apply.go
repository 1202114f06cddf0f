package memstore

import (
	"context"
	"fmt"

	"github.com/litetable/litetable-mapper/internal/litetable"
)

// Put writes every mutation to rowKey as one atomic row update. Mutations without HasTimestamp
// are written at the current time; a write at an existing timestamp replaces that version.
func (m *Manager) Put(ctx context.Context, rowKey string, mutations []litetable.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rowKey == "" {
		return fmt.Errorf("row key is required")
	}
	if len(mutations) == 0 {
		return nil
	}

	// validate the whole row before touching it
	for _, mut := range mutations {
		if !m.IsFamilyAllowed(mut.Family) {
			return fmt.Errorf("%w: %s", ErrFamilyNotAllowed, mut.Family)
		}
		if mut.Qualifier == "" {
			return fmt.Errorf("qualifier is required for family %s", mut.Family)
		}
	}

	now := m.now()
	events := make([]*litetable.Event, 0, len(mutations))

	s := m.shardFor(rowKey)
	s.mutex.Lock()

	row, exists := s.data[rowKey]
	if !exists {
		row = make(map[string]litetable.VersionedQualifier)
		s.data[rowKey] = row
	}

	for _, mut := range mutations {
		ts := now
		if mut.HasTimestamp {
			ts = mut.Timestamp
		}

		if _, ok := row[mut.Family]; !ok {
			row[mut.Family] = make(litetable.VersionedQualifier)
		}
		value := litetable.TimestampedValue{
			Value:     append([]byte(nil), mut.Value...),
			Timestamp: ts,
		}
		row[mut.Family][mut.Qualifier] = m.insertVersion(row[mut.Family][mut.Qualifier], value)

		events = append(events, &litetable.Event{
			Operation: litetable.OperationWrite,
			RowKey:    rowKey,
			Family:    mut.Family,
			Qualifier: mut.Qualifier,
			Value:     value.Value,
			Timestamp: ts,
		})
	}
	if !exists {
		m.keys.add(rowKey)
	}
	s.mutex.Unlock()

	for _, event := range events {
		m.emit(event)
	}
	return nil
}

// insertVersion adds v keeping values newest first, replacing a version with the same
// timestamp and trimming to maxVersions.
func (m *Manager) insertVersion(values []litetable.TimestampedValue, v litetable.TimestampedValue) []litetable.TimestampedValue {
	for i := range values {
		if values[i].Timestamp == v.Timestamp {
			values[i] = v
			return values
		}
	}

	values = append(values, v)
	litetable.SortVersions(values)

	if m.maxVersions > 0 && len(values) > m.maxVersions {
		values = values[:m.maxVersions]
	}
	return values
}
