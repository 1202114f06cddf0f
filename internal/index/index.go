// Package index keeps a secondary index of records in its own table. Each entry is a row whose
// key is "{indexKey}#{rowKey}", so every record carrying an index key is found with one prefix
// scan. Entries are never reconciled against the data table; readers skip stale ones.
package index

import (
	"context"
	"errors"

	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/mapper"
	"github.com/litetable/litetable-mapper/internal/query"
	"github.com/rs/zerolog/log"
)

const (
	separator     = "#"
	indexKeyField = "index_key"
)

type store interface {
	Get(ctx context.Context, rowKey string, filter query.Filter) (*litetable.Row, error)
	Scan(ctx context.Context, filter query.Filter, limit int) ([]*litetable.Row, error)
	Put(ctx context.Context, rowKey string, mutations []litetable.Mutation) error
	Delete(ctx context.Context, rowKey string) error
	DeleteCells(ctx context.Context, rowKey, family string, qualifiers ...string) error
	NewBatch() litetable.Batch
}

// Entry points an index key at one data row. Only RowKey is stored; IndexKey is part of the
// entry's own row key.
type Entry struct {
	RowKey   string `json:"rowkey"`
	IndexKey string `json:"index_key"`
}

func entryRowKey(e Entry) string {
	return e.IndexKey + separator + e.RowKey
}

type Config[T any] struct {
	// Store holds the index table.
	Store store
	// Family is the column family of index entries.
	Family string
	// RowKey derives the data row key of a record.
	RowKey func(record T) string
	// IndexKey derives the indexed attribute of a record. Records with an empty index key are
	// not indexed.
	IndexKey func(record T) string
}

func (c *Config[T]) validate() error {
	var errGrp []error
	if c.Store == nil {
		errGrp = append(errGrp, errors.New("store is required"))
	}
	if c.Family == "" {
		errGrp = append(errGrp, errors.New("family is required"))
	}
	if c.RowKey == nil {
		errGrp = append(errGrp, errors.New("row key function is required"))
	}
	if c.IndexKey == nil {
		errGrp = append(errGrp, errors.New("index key function is required"))
	}
	return errors.Join(errGrp...)
}

// Manager is a multi-valued index: any number of records may share an index key.
type Manager[T any] struct {
	entries  *mapper.Mapper[Entry]
	rowKey   func(record T) string
	indexKey func(record T) string
}

// New creates an index over records of type T.
func New[T any](cfg *Config[T]) (*Manager[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	entries, err := mapper.New(&mapper.Config[Entry]{
		Store:         cfg.Store,
		RowKey:        entryRowKey,
		DefaultFamily: cfg.Family,
	})
	if err != nil {
		return nil, err
	}
	return &Manager[T]{
		entries:  entries,
		rowKey:   cfg.RowKey,
		indexKey: cfg.IndexKey,
	}, nil
}

// IndexKey returns the indexed attribute of record.
func (m *Manager[T]) IndexKey(record T) string {
	return m.indexKey(record)
}

func (m *Manager[T]) entry(record T) Entry {
	return Entry{RowKey: m.rowKey(record), IndexKey: m.indexKey(record)}
}

// SaveIndex writes the entry of record. When prev was indexed under another key, that entry is
// removed first.
func (m *Manager[T]) SaveIndex(ctx context.Context, prev *T, record T) error {
	e := m.entry(record)
	if e.RowKey == "" {
		return mapper.ErrEmptyRowKey
	}

	if prev != nil {
		old := m.entry(*prev)
		if old.IndexKey != "" && old != e {
			log.Debug().Str("rowKey", old.RowKey).Str("from", old.IndexKey).Str("to", e.IndexKey).
				Msg("index key changed")
			if err := m.entries.Delete(ctx, old); err != nil {
				return err
			}
		}
	}

	if e.IndexKey == "" {
		return nil
	}
	return m.entries.Save(ctx, e, mapper.WithExclude(indexKeyField))
}

// DeleteIndex removes the entry of record.
func (m *Manager[T]) DeleteIndex(ctx context.Context, record T) error {
	e := m.entry(record)
	if e.IndexKey == "" || e.RowKey == "" {
		return nil
	}
	return m.entries.Delete(ctx, e)
}

// ScanIndex returns the entries stored under indexKey, in row key order.
func (m *Manager[T]) ScanIndex(ctx context.Context, indexKey string, opts ...mapper.Option) ([]Entry, error) {
	if indexKey == "" {
		return nil, nil
	}
	entries, err := m.entries.Scan(ctx, indexKey+separator, opts...)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].IndexKey = indexKey
	}
	return entries, nil
}

// Lookup returns up to limit row keys indexed under indexKey. A limit of 0 or less is
// unbounded.
func (m *Manager[T]) Lookup(ctx context.Context, indexKey string, limit int) ([]string, error) {
	entries, err := m.ScanIndex(ctx, indexKey, mapper.WithLimit(limit))
	if err != nil {
		return nil, err
	}
	return rowKeys(entries), nil
}

func rowKeys(entries []Entry) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.RowKey != "" {
			out = append(out, e.RowKey)
		}
	}
	return out
}
