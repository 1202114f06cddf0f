package mapper

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Delete removes the index entry of record and then its row. An index failure does not stop
// the row deletion unless ctx is done; it is returned once the row is gone.
func (m *Mapper[T]) Delete(ctx context.Context, record T) error {
	rowKey := m.rowKey(record)
	if rowKey == "" {
		return ErrEmptyRowKey
	}

	indexErr := m.deleteIndex(ctx, rowKey, record)
	if indexErr != nil && ctx.Err() != nil {
		return errors.Join(indexErr, ctx.Err())
	}

	if err := m.store.Delete(ctx, rowKey); err != nil {
		return errors.Join(indexErr, err)
	}
	return indexErr
}

// DeleteMany removes the index entries of records and then their rows in one batch.
func (m *Mapper[T]) DeleteMany(ctx context.Context, records []T) error {
	if len(records) == 0 {
		return nil
	}

	var errGrp []error
	batch := m.store.NewBatch()
	for _, record := range records {
		rowKey := m.rowKey(record)
		if rowKey == "" {
			return ErrEmptyRowKey
		}
		if err := m.deleteIndex(ctx, rowKey, record); err != nil {
			errGrp = append(errGrp, err)
		}
		batch.Delete(rowKey)
	}

	if err := ctx.Err(); err != nil {
		return errors.Join(append(errGrp, err)...)
	}
	if err := batch.Flush(ctx); err != nil {
		errGrp = append(errGrp, err)
	}
	return errors.Join(errGrp...)
}

func (m *Mapper[T]) deleteIndex(ctx context.Context, rowKey string, record T) error {
	if m.indexer == nil {
		return nil
	}
	if err := m.indexer.DeleteIndex(ctx, record); err != nil {
		log.Error().Err(err).Str("rowKey", rowKey).Msg("failed to delete index entry")
		return fmt.Errorf("delete index of row %s: %w", rowKey, err)
	}
	return nil
}
