// Package mapper projects Go structs onto a versioned wide-column store.
//
// Every exported field of a record is one cell qualifier. A field lives in the mapper's default
// family unless it is overridden, and a migration rule can move it to another family: new
// writes go to the new family while reads keep decoding the legacy cell until a newer one
// exists, at which point the legacy cell is handed to a cleaner for deletion.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/litetable/litetable-mapper/internal/codec"
	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/migration"
	"github.com/litetable/litetable-mapper/internal/query"
	"github.com/litetable/litetable-mapper/internal/reaper"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

//go:generate mockgen -destination=./mapper_mock.go -package=mapper -source=mapper.go

const defaultEncoding = "utf-8"

type store interface {
	Get(ctx context.Context, rowKey string, filter query.Filter) (*litetable.Row, error)
	Scan(ctx context.Context, filter query.Filter, limit int) ([]*litetable.Row, error)
	Put(ctx context.Context, rowKey string, mutations []litetable.Mutation) error
	Delete(ctx context.Context, rowKey string) error
	DeleteCells(ctx context.Context, rowKey, family string, qualifiers ...string) error
	NewBatch() litetable.Batch
}

type cleaner interface {
	Reap(t reaper.Task) bool
}

// DeserializeFunc replaces the codec for one field. The returned value must be assignable to
// the field's type.
type DeserializeFunc func(text string) (any, error)

// Mapper saves and reads records of type T. It is immutable after New and safe for
// concurrent use.
type Mapper[T any] struct {
	store         store
	rowKey        func(record T) string
	defaultFamily string
	fields        []*field
	byName        map[string]*field
	allFamilies   []string
	migrations    *migration.Table
	engine        *query.Engine
	encoding      encoding.Encoding
	cleaner       cleaner
	indexer       Indexer[T]
}

type field struct {
	name        string
	index       []int
	desc        *codec.Descriptor
	family      string
	deserialize DeserializeFunc
}

type Config[T any] struct {
	// Store holds the rows.
	Store store
	// RowKey derives the row key of a record.
	RowKey func(record T) string
	// DefaultFamily holds every field without an override.
	DefaultFamily string
	// Families overrides the family of individual fields.
	Families map[string]string
	// Migrations moves or retires fields.
	Migrations map[string]migration.Rule
	// Deserializers replace the codec for individual fields.
	Deserializers map[string]DeserializeFunc
	// Encoding is the text encoding of cell values, by WHATWG name. Defaults to utf-8. String
	// values must be valid UTF-8; anything else fails to encode with codec.ErrTypeMismatch.
	Encoding string
	// Cleaner deletes legacy cells. Required when a field is moving between families.
	Cleaner cleaner
	// Indexer maintains a secondary index. Optional.
	Indexer Indexer[T]
}

func (c *Config[T]) validate() error {
	var errGrp []error
	if c.Store == nil {
		errGrp = append(errGrp, errors.New("store is required"))
	}
	if c.RowKey == nil {
		errGrp = append(errGrp, errors.New("row key function is required"))
	}
	if c.DefaultFamily == "" {
		errGrp = append(errGrp, errors.New("default family is required"))
	}
	return errors.Join(errGrp...)
}

// New creates a mapper for T, which must be a struct.
func New[T any](cfg *Config[T]) (*Mapper[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	desc, err := codec.DescribeFor[T]()
	if err != nil {
		return nil, err
	}
	if desc.Kind != codec.KindRecord || desc.Nullable {
		return nil, fmt.Errorf("record type %s must be a struct", desc)
	}
	if len(desc.Fields) == 0 {
		return nil, fmt.Errorf("record type %s has no fields", desc)
	}

	migrations, err := migration.NewTable(cfg.Migrations)
	if err != nil {
		return nil, err
	}

	encName := cfg.Encoding
	if encName == "" {
		encName = defaultEncoding
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		return nil, fmt.Errorf("text encoding %q: %w", encName, err)
	}

	m := &Mapper[T]{
		store:         cfg.Store,
		rowKey:        cfg.RowKey,
		defaultFamily: cfg.DefaultFamily,
		byName:        make(map[string]*field, len(desc.Fields)),
		migrations:    migrations,
		encoding:      enc,
		cleaner:       cfg.Cleaner,
		indexer:       cfg.Indexer,
	}
	for _, f := range desc.Fields {
		fi := &field{name: f.Name, index: f.Index, desc: f.Desc, family: cfg.DefaultFamily}
		m.fields = append(m.fields, fi)
		m.byName[f.Name] = fi
	}

	var errGrp []error
	for name, family := range cfg.Families {
		fi, ok := m.byName[name]
		if !ok {
			errGrp = append(errGrp, fmt.Errorf("family override: %w: %s", ErrUnknownField, name))
			continue
		}
		if family == "" {
			errGrp = append(errGrp, fmt.Errorf("family override for %s is empty", name))
			continue
		}
		fi.family = family
	}
	for name, fn := range cfg.Deserializers {
		fi, ok := m.byName[name]
		if !ok {
			errGrp = append(errGrp, fmt.Errorf("deserializer: %w: %s", ErrUnknownField, name))
			continue
		}
		fi.deserialize = fn
	}
	for _, name := range migrations.Fields() {
		if _, ok := m.byName[name]; !ok {
			errGrp = append(errGrp, fmt.Errorf("migration: %w: %s", ErrUnknownField, name))
		}
	}
	if migrations.HasMoving() && cfg.Cleaner == nil {
		errGrp = append(errGrp, errors.New("a cleaner is required when fields are moving between families"))
	}
	if err = errors.Join(errGrp...); err != nil {
		return nil, err
	}

	m.allFamilies = m.collectFamilies()
	m.engine, err = query.NewEngine(&query.Config{
		FamiliesOf:  m.readFamilies,
		AllFamilies: m.allFamilies,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RowKey returns the row key of record.
func (m *Mapper[T]) RowKey(record T) string {
	return m.rowKey(record)
}

// Families returns every family a record of T can occupy, sorted.
func (m *Mapper[T]) Families() []string {
	return append([]string(nil), m.allFamilies...)
}

// writeFamily is where new cells of f go.
func (m *Mapper[T]) writeFamily(f *field) string {
	if family, ok := m.migrations.WriteFamily(f.name); ok {
		return family
	}
	return f.family
}

// readFamilies are the families a field can be read from.
func (m *Mapper[T]) readFamilies(name string) []string {
	if families, ok := m.migrations.Families(name); ok {
		return families
	}
	if f, ok := m.byName[name]; ok {
		return []string{f.family}
	}
	return []string{m.defaultFamily}
}

func (m *Mapper[T]) collectFamilies() []string {
	set := make(map[string]struct{})
	for _, f := range m.fields {
		if m.migrations.Deprecated(f.name) {
			continue
		}
		for _, family := range m.readFamilies(f.name) {
			set[family] = struct{}{}
		}
	}
	if len(set) == 0 {
		set[m.defaultFamily] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for family := range set {
		out = append(out, family)
	}
	sort.Strings(out)
	return out
}

func (m *Mapper[T]) encodeText(text string) ([]byte, error) {
	b, err := m.encoding.NewEncoder().String(text)
	if err != nil {
		return nil, err
	}
	return []byte(b), nil
}

func (m *Mapper[T]) decodeText(b []byte) (string, error) {
	out, err := m.encoding.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
