package mapper

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/litetable/litetable-mapper/internal/codec"
	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/query"
	"github.com/rs/zerolog/log"
)

// Save writes every non-nil field of record as one atomic row update, then updates the index.
// An index failure is returned but the data write stands.
func (m *Mapper[T]) Save(ctx context.Context, record T, opts ...Option) error {
	o := newOptions(opts)

	rowKey := m.rowKey(record)
	if rowKey == "" {
		return ErrEmptyRowKey
	}
	mutations, err := m.mutations(record, o)
	if err != nil {
		return fmt.Errorf("row %s: %w", rowKey, err)
	}

	prev, err := m.previous(ctx, rowKey)
	if err != nil {
		return err
	}

	if len(mutations) > 0 {
		if err = m.store.Put(ctx, rowKey, mutations); err != nil {
			return err
		}
	}

	if m.indexer != nil {
		if err = m.indexer.SaveIndex(ctx, prev, record); err != nil {
			return fmt.Errorf("save index of row %s: %w", rowKey, err)
		}
	}
	return nil
}

// SaveMany writes all records in one batch. Each row is atomic; the batch is not, so on error
// a subset of rows may have been written.
func (m *Mapper[T]) SaveMany(ctx context.Context, records []T, opts ...Option) error {
	if len(records) == 0 {
		return nil
	}
	o := newOptions(opts)

	batch := m.store.NewBatch()
	prevs := make([]*T, len(records))
	for i, record := range records {
		rowKey := m.rowKey(record)
		if rowKey == "" {
			return ErrEmptyRowKey
		}
		mutations, err := m.mutations(record, o)
		if err != nil {
			return fmt.Errorf("row %s: %w", rowKey, err)
		}
		if prevs[i], err = m.previous(ctx, rowKey); err != nil {
			return err
		}
		if len(mutations) > 0 {
			batch.Put(rowKey, mutations)
		}
	}

	if err := batch.Flush(ctx); err != nil {
		return err
	}
	if m.indexer == nil {
		return nil
	}

	var errGrp []error
	for i, record := range records {
		if err := m.indexer.SaveIndex(ctx, prevs[i], record); err != nil {
			errGrp = append(errGrp, fmt.Errorf("save index of row %s: %w", m.rowKey(record), err))
		}
	}
	return errors.Join(errGrp...)
}

// previous reads the stored record when an index has to be kept in step with it. A stored row
// that no longer decodes yields nil so that saving over it still works; its old index entry, if
// any, is left behind.
func (m *Mapper[T]) previous(ctx context.Context, rowKey string) (*T, error) {
	if m.indexer == nil {
		return nil, nil
	}
	filter, err := m.filter(newOptions(nil), "")
	if err != nil {
		return nil, err
	}
	row, err := m.store.Get(ctx, rowKey, filter)
	if err != nil {
		return nil, fmt.Errorf("read previous version of row %s: %w", rowKey, err)
	}
	if row.IsEmpty() {
		return nil, nil
	}
	prev, err := m.assemble(rowKey, row, nil)
	if err != nil {
		log.Warn().Err(err).Str("rowKey", rowKey).Msg("previous version does not decode, overwriting")
		return nil, nil
	}
	return prev, nil
}

// mutations encodes the fields of record that o lets through.
func (m *Mapper[T]) mutations(record T, o *options) ([]litetable.Mutation, error) {
	var timestamp int64
	hasTimestamp := o.version != nil
	if hasTimestamp {
		timestamp = query.VersionTimestamp(*o.version)
	}

	rv := reflect.ValueOf(&record).Elem()
	mutations := make([]litetable.Mutation, 0, len(m.fields))
	for _, f := range m.fields {
		if _, skip := o.exclude[f.name]; skip {
			continue
		}
		if m.migrations.Deprecated(f.name) {
			continue
		}
		fv := rv.FieldByIndex(f.index)
		if codec.IsNull(fv) {
			continue
		}
		family := m.writeFamily(f)
		if o.families != nil {
			if _, ok := o.families[family]; !ok {
				continue
			}
		}

		text, err := codec.EncodeValue(fv, f.desc)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		value, err := m.encodeText(text)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		mutations = append(mutations, litetable.Mutation{
			Family:       family,
			Qualifier:    f.name,
			Value:        value,
			Timestamp:    timestamp,
			HasTimestamp: hasTimestamp,
		})
	}

	log.Debug().Int("cells", len(mutations)).Msg("encoded record")
	return mutations, nil
}
