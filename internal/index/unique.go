package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/litetable/litetable-mapper/internal/mapper"
	"github.com/rs/zerolog/log"
)

// ErrDuplicateKey is returned when a unique index key already points at another row.
var ErrDuplicateKey = errors.New("index key already taken")

// UniqueManager is a single-valued index: the entry is stored under the bare index key, so one
// point read resolves it.
type UniqueManager[T any] struct {
	entries  *mapper.Mapper[Entry]
	rowKey   func(record T) string
	indexKey func(record T) string
}

// NewUnique creates a unique index over records of type T.
func NewUnique[T any](cfg *Config[T]) (*UniqueManager[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	entries, err := mapper.New(&mapper.Config[Entry]{
		Store:         cfg.Store,
		RowKey:        func(e Entry) string { return e.IndexKey },
		DefaultFamily: cfg.Family,
	})
	if err != nil {
		return nil, err
	}
	return &UniqueManager[T]{
		entries:  entries,
		rowKey:   cfg.RowKey,
		indexKey: cfg.IndexKey,
	}, nil
}

// IndexKey returns the indexed attribute of record.
func (m *UniqueManager[T]) IndexKey(record T) string {
	return m.indexKey(record)
}

// SaveIndex points the index key of record at its row. It fails with ErrDuplicateKey when the
// key already belongs to another row.
func (m *UniqueManager[T]) SaveIndex(ctx context.Context, prev *T, record T) error {
	rowKey := m.rowKey(record)
	if rowKey == "" {
		return mapper.ErrEmptyRowKey
	}
	indexKey := m.indexKey(record)

	if indexKey != "" {
		owner, err := m.owner(ctx, indexKey)
		if err != nil {
			return err
		}
		if owner != "" && owner != rowKey {
			return fmt.Errorf("%w: %s belongs to row %s", ErrDuplicateKey, indexKey, owner)
		}
	}

	if prev != nil {
		if old := m.indexKey(*prev); old != "" && old != indexKey {
			if err := m.release(ctx, old, rowKey); err != nil {
				return err
			}
		}
	}

	if indexKey == "" {
		return nil
	}
	return m.entries.Save(ctx, Entry{RowKey: rowKey, IndexKey: indexKey}, mapper.WithExclude(indexKeyField))
}

// DeleteIndex removes the entry of record if it still points at the record's row.
func (m *UniqueManager[T]) DeleteIndex(ctx context.Context, record T) error {
	indexKey := m.indexKey(record)
	if indexKey == "" {
		return nil
	}
	return m.release(ctx, indexKey, m.rowKey(record))
}

// Lookup returns the row key indexed under indexKey, if any.
func (m *UniqueManager[T]) Lookup(ctx context.Context, indexKey string, _ int) ([]string, error) {
	if indexKey == "" {
		return nil, nil
	}
	owner, err := m.owner(ctx, indexKey)
	if err != nil || owner == "" {
		return nil, err
	}
	return []string{owner}, nil
}

func (m *UniqueManager[T]) owner(ctx context.Context, indexKey string) (string, error) {
	e, err := m.entries.Read(ctx, indexKey)
	if err != nil || e == nil {
		return "", err
	}
	return e.RowKey, nil
}

// release deletes the entry under indexKey unless another row has taken it over.
func (m *UniqueManager[T]) release(ctx context.Context, indexKey, rowKey string) error {
	owner, err := m.owner(ctx, indexKey)
	if err != nil {
		return err
	}
	if owner != rowKey {
		log.Debug().Str("indexKey", indexKey).Str("rowKey", rowKey).Str("owner", owner).
			Msg("index entry not owned by row, keeping it")
		return nil
	}
	return m.entries.Delete(ctx, Entry{RowKey: rowKey, IndexKey: indexKey})
}
