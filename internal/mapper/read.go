package mapper

import (
	"context"
	"fmt"
	"reflect"

	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/query"
	"github.com/litetable/litetable-mapper/internal/reaper"
	"github.com/rs/zerolog/log"
)

// Read returns the record stored under rowKey, or nil when the row does not exist.
//
// Fields without a live cell keep their zero value. Legacy cells made obsolete by a migration
// are queued for deletion; the result never depends on that cleanup.
func (m *Mapper[T]) Read(ctx context.Context, rowKey string, opts ...Option) (*T, error) {
	o := newOptions(opts)
	filter, err := m.filter(o, "")
	if err != nil {
		return nil, err
	}

	row, err := m.store.Get(ctx, rowKey, filter)
	if err != nil {
		return nil, err
	}
	if row.IsEmpty() {
		log.Debug().Str("rowKey", rowKey).Msg("row not found")
		return nil, nil
	}
	return m.assemble(rowKey, row, o.fields)
}

// ReadMany reads rowKeys in the order given. Absent rows are skipped.
func (m *Mapper[T]) ReadMany(ctx context.Context, rowKeys []string, opts ...Option) ([]T, error) {
	if len(rowKeys) == 0 {
		return nil, nil
	}
	o := newOptions(opts)
	filter, err := m.filter(o, "")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rowKeys))
	var out []T
	for _, rowKey := range rowKeys {
		if _, dup := seen[rowKey]; dup {
			continue
		}
		seen[rowKey] = struct{}{}

		row, err := m.store.Get(ctx, rowKey, filter)
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		record, err := m.assemble(rowKey, row, o.fields)
		if err != nil {
			return nil, err
		}
		out = append(out, *record)
	}
	return out, nil
}

// Scan returns the records whose row key starts with prefix, in store order. An empty prefix
// returns nothing.
func (m *Mapper[T]) Scan(ctx context.Context, prefix string, opts ...Option) ([]T, error) {
	if prefix == "" {
		return nil, nil
	}
	o := newOptions(opts)
	filter, err := m.filter(o, prefix)
	if err != nil {
		return nil, err
	}

	rows, err := m.store.Scan(ctx, filter, o.limit)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if row.IsEmpty() {
			continue
		}
		record, err := m.assemble(row.Key, row, o.fields)
		if err != nil {
			return nil, err
		}
		out = append(out, *record)
	}
	return out, nil
}

// Query returns the records indexed under indexKey. Index entries whose row is gone are
// skipped; when every field is read, so are records that no longer carry indexKey.
func (m *Mapper[T]) Query(ctx context.Context, indexKey string, opts ...Option) ([]T, error) {
	if m.indexer == nil {
		return nil, ErrNoIndexer
	}
	o := newOptions(opts)

	rowKeys, err := m.indexer.Lookup(ctx, indexKey, o.limit)
	if err != nil {
		return nil, fmt.Errorf("lookup index %s: %w", indexKey, err)
	}
	if len(rowKeys) == 0 {
		return nil, nil
	}

	records, err := m.ReadMany(ctx, rowKeys, opts...)
	if err != nil {
		return nil, err
	}
	if len(o.fields) > 0 {
		return records, nil
	}

	out := records[:0]
	for _, record := range records {
		if m.indexer.IndexKey(record) != indexKey {
			log.Debug().Str("indexKey", indexKey).Str("rowKey", m.rowKey(record)).Msg("skipping stale index entry")
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (m *Mapper[T]) filter(o *options, prefix string) (query.Filter, error) {
	for _, name := range o.fields {
		if _, ok := m.byName[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
	}
	return m.engine.Build(query.Params{
		Version: o.version,
		Fields:  o.fields,
		Prefix:  prefix,
		Extra:   o.filters,
	}), nil
}

// assemble decodes a row into a record and queues cleanup of obsolete legacy cells.
func (m *Mapper[T]) assemble(rowKey string, row *litetable.Row, fields []string) (*T, error) {
	var record T
	rv := reflect.ValueOf(&record).Elem()
	cleanup := make(map[string][]string)

	for _, f := range m.selected(fields) {
		family := f.family
		if res, governed := m.migrations.Resolve(f.name, func(family string) bool {
			_, ok := row.Latest(family, f.name)
			return ok
		}); governed {
			if res.Migrated {
				log.Debug().Str("rowKey", rowKey).Str("field", f.name).Str("family", res.Family).
					Msg("field served from its migrated family")
			}
			if res.Cleanup != "" {
				cleanup[res.Cleanup] = append(cleanup[res.Cleanup], f.name)
			}
			family = res.Family
		}
		if family == "" {
			continue
		}

		cell, ok := row.Latest(family, f.name)
		if !ok {
			continue
		}
		value, err := m.decodeField(f, cell.Value)
		if err != nil {
			return nil, fmt.Errorf("row %s field %s: %w", rowKey, f.name, err)
		}
		rv.FieldByIndex(f.index).Set(value)
	}

	m.dispatchCleanup(rowKey, cleanup)
	return &record, nil
}

func (m *Mapper[T]) selected(fields []string) []*field {
	if len(fields) == 0 {
		return m.fields
	}
	out := make([]*field, 0, len(fields))
	for _, name := range fields {
		if f, ok := m.byName[name]; ok {
			out = append(out, f)
		}
	}
	return out
}

func (m *Mapper[T]) dispatchCleanup(rowKey string, cleanup map[string][]string) {
	if m.cleaner == nil {
		return
	}
	for family, qualifiers := range cleanup {
		if !m.cleaner.Reap(reaper.Task{RowKey: rowKey, Family: family, Qualifiers: qualifiers}) {
			log.Warn().Str("rowKey", rowKey).Str("family", family).Msg("legacy cell cleanup not scheduled")
		}
	}
}
