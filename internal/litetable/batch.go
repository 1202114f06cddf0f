package litetable

import (
	"context"
	"errors"
	"fmt"
)

// RowWriter applies single-row updates.
type RowWriter interface {
	Put(ctx context.Context, rowKey string, mutations []Mutation) error
	Delete(ctx context.Context, rowKey string) error
}

type batchEntry struct {
	rowKey    string
	mutations []Mutation
	delete    bool
}

// SerialBatch collects row writes and deletes and applies them in order on Flush. Every row is
// atomic on its own; a failing row does not stop the others.
type SerialBatch struct {
	w       RowWriter
	entries []batchEntry
}

// NewSerialBatch starts an empty batch that flushes to w.
func NewSerialBatch(w RowWriter) *SerialBatch {
	return &SerialBatch{w: w}
}

func (b *SerialBatch) Put(rowKey string, mutations []Mutation) {
	b.entries = append(b.entries, batchEntry{rowKey: rowKey, mutations: mutations})
}

func (b *SerialBatch) Delete(rowKey string) {
	b.entries = append(b.entries, batchEntry{rowKey: rowKey, delete: true})
}

// Flush applies every entry and returns the joined errors of the rows that failed. It stops
// early only when ctx is done.
func (b *SerialBatch) Flush(ctx context.Context) error {
	entries := b.entries
	b.entries = nil

	var errGrp []error
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errGrp, err)...)
		}
		var err error
		if e.delete {
			err = b.w.Delete(ctx, e.rowKey)
		} else {
			err = b.w.Put(ctx, e.rowKey, e.mutations)
		}
		if err != nil {
			errGrp = append(errGrp, fmt.Errorf("row %s: %w", e.rowKey, err))
		}
	}
	return errors.Join(errGrp...)
}
