package query

import (
	"errors"
	"sort"
	"time"
)

// VersionTimestamp maps a logical version to the start of its one-second window, in Unix
// nanoseconds. Writes at version v use this timestamp; reads at version v accept
// [VersionTimestamp(v), VersionTimestamp(v+1)).
func VersionTimestamp(version int64) int64 {
	return version * int64(time.Second)
}

// Params describes one read.
type Params struct {
	// Version restricts the read to one logical version; nil reads the latest cell per column.
	Version *int64
	// Fields projects the read onto these qualifiers; empty reads every field.
	Fields []string
	// Prefix restricts a scan to row keys with this prefix.
	Prefix string
	// Extra filters are ANDed ahead of everything else.
	Extra []Filter
}

// Engine builds filters for one record layout.
type Engine struct {
	familiesOf  func(field string) []string
	allFamilies []string
}

type Config struct {
	// FamiliesOf returns the families a field can occupy.
	FamiliesOf func(field string) []string
	// AllFamilies are the families any field of the record can occupy.
	AllFamilies []string
}

func (c *Config) validate() error {
	var errGrp []error
	if c.FamiliesOf == nil {
		errGrp = append(errGrp, errors.New("families lookup is required"))
	}
	if len(c.AllFamilies) == 0 {
		errGrp = append(errGrp, errors.New("at least one family is required"))
	}
	return errors.Join(errGrp...)
}

// NewEngine creates a query engine.
func NewEngine(cfg *Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	all := append([]string(nil), cfg.AllFamilies...)
	sort.Strings(all)
	return &Engine{
		familiesOf:  cfg.FamiliesOf,
		allFamilies: all,
	}, nil
}

// Build returns the conjunction of the constraints p asks for, in this order: row key and
// extra filters, version, field projection, family projection.
func (e *Engine) Build(p Params) Filter {
	var filters []Filter

	if p.Prefix != "" {
		filters = append(filters, RowKeyPrefix(p.Prefix))
	}
	filters = append(filters, p.Extra...)

	if p.Version != nil {
		filters = append(filters, TimestampRange{
			Start: VersionTimestamp(*p.Version),
			End:   VersionTimestamp(*p.Version + 1),
		})
	} else {
		filters = append(filters, CellsColumnLimit{N: 1})
	}

	if len(p.Fields) > 0 {
		qualifiers := make([]Filter, 0, len(p.Fields))
		for _, field := range p.Fields {
			qualifiers = append(qualifiers, Qualifier(field))
		}
		filters = append(filters, Or(qualifiers...))
	}

	families := e.families(p.Fields)
	familyFilters := make([]Filter, 0, len(families))
	for _, family := range families {
		familyFilters = append(familyFilters, Family(family))
	}
	filters = append(filters, Or(familyFilters...))

	return And(filters...)
}

// families returns the sorted families the given fields can occupy, or every family when no
// field is given.
func (e *Engine) families(fields []string) []string {
	if len(fields) == 0 {
		return e.allFamilies
	}
	set := make(map[string]struct{})
	for _, field := range fields {
		for _, family := range e.familiesOf(field) {
			set[family] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for family := range set {
		out = append(out, family)
	}
	sort.Strings(out)
	return out
}
