package memstore

import (
	"context"

	"github.com/litetable/litetable-mapper/internal/litetable"
)

// Delete removes a whole row. Deleting an absent row is not an error.
func (m *Manager) Delete(ctx context.Context, rowKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := m.shardFor(rowKey)
	s.mutex.Lock()
	row, exists := s.data[rowKey]
	if exists {
		delete(s.data, rowKey)
		m.keys.remove(rowKey)
	}
	s.mutex.Unlock()

	if !exists {
		return nil
	}

	for family, qualifiers := range row {
		for qualifier := range qualifiers {
			m.emit(&litetable.Event{
				Operation: litetable.OperationDelete,
				RowKey:    rowKey,
				Family:    family,
				Qualifier: qualifier,
				Tombstone: true,
			})
		}
	}
	return nil
}

// DeleteCells removes every version of the given qualifiers in family, or the whole family
// when no qualifier is given. A row left without cells is removed.
func (m *Manager) DeleteCells(ctx context.Context, rowKey, family string, qualifiers ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var removed []string

	s := m.shardFor(rowKey)
	s.mutex.Lock()
	row, exists := s.data[rowKey]
	if !exists {
		s.mutex.Unlock()
		return nil
	}
	fam, exists := row[family]
	if !exists {
		s.mutex.Unlock()
		return nil
	}

	if len(qualifiers) == 0 {
		for q := range fam {
			removed = append(removed, q)
		}
		delete(row, family)
	} else {
		for _, q := range qualifiers {
			if _, ok := fam[q]; ok {
				delete(fam, q)
				removed = append(removed, q)
			}
		}
		if len(fam) == 0 {
			delete(row, family)
		}
	}

	if len(row) == 0 {
		delete(s.data, rowKey)
		m.keys.remove(rowKey)
	}
	s.mutex.Unlock()

	for _, q := range removed {
		m.emit(&litetable.Event{
			Operation: litetable.OperationDelete,
			RowKey:    rowKey,
			Family:    family,
			Qualifier: q,
			Tombstone: true,
		})
	}
	return nil
}
