package mapper

import "context"

// Indexer maintains a secondary index over records of type T.
//
// Index and data writes are not transactional. Entries may point at rows that no longer
// exist or no longer carry the indexed value, and readers must skip them.
type Indexer[T any] interface {
	// IndexKey is the indexed attribute of record.
	IndexKey(record T) string
	// SaveIndex writes the entry of record. prev is the previously stored version of the
	// record, if any, so an entry under a changed index key can be removed.
	SaveIndex(ctx context.Context, prev *T, record T) error
	// DeleteIndex removes the entry of record.
	DeleteIndex(ctx context.Context, record T) error
	// Lookup returns the row keys indexed under indexKey. A limit of 0 or less is unbounded.
	Lookup(ctx context.Context, indexKey string, limit int) ([]string, error)
}
