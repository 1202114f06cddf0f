// Package migration decides, per field and per row, which column family a value is read from
// while the field moves between families.
package migration

import (
	"errors"
	"fmt"
	"sort"
)

// Status is the state of a migration rule.
type Status int

const (
	// StatusMoving means the field is written to NewFamily and still read from OldFamily until
	// a newer cell exists.
	StatusMoving Status = iota + 1
	// StatusDeprecated means the field is retired: never written and never read.
	StatusDeprecated
)

func (s Status) String() string {
	switch s {
	case StatusMoving:
		return "moving"
	case StatusDeprecated:
		return "deprecated"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Rule moves one field from OldFamily to NewFamily, or retires it.
type Rule struct {
	OldFamily string
	NewFamily string
	Status    Status
}

func (r Rule) validate(field string) error {
	var errGrp []error
	if r.OldFamily == "" {
		errGrp = append(errGrp, fmt.Errorf("field %s: old family is required", field))
	}
	switch r.Status {
	case StatusMoving:
		if r.NewFamily == "" {
			errGrp = append(errGrp, fmt.Errorf("field %s: new family is required", field))
		} else if r.NewFamily == r.OldFamily {
			errGrp = append(errGrp, fmt.Errorf("field %s: old and new family are both %s", field,
				r.OldFamily))
		}
	case StatusDeprecated:
	default:
		errGrp = append(errGrp, fmt.Errorf("field %s: invalid status %d", field, r.Status))
	}
	return errors.Join(errGrp...)
}

// Table is an immutable set of rules keyed by field name.
type Table struct {
	rules map[string]Rule
}

// NewTable validates and copies rules.
func NewTable(rules map[string]Rule) (*Table, error) {
	var errGrp []error
	copied := make(map[string]Rule, len(rules))
	for field, rule := range rules {
		if err := rule.validate(field); err != nil {
			errGrp = append(errGrp, err)
			continue
		}
		copied[field] = rule
	}
	if err := errors.Join(errGrp...); err != nil {
		return nil, err
	}
	return &Table{rules: copied}, nil
}

// Rule returns the rule for field.
func (t *Table) Rule(field string) (Rule, bool) {
	if t == nil {
		return Rule{}, false
	}
	r, ok := t.rules[field]
	return r, ok
}

// Fields returns the sorted names of every field with a rule.
func (t *Table) Fields() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.rules))
	for field := range t.rules {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Deprecated reports whether field is retired.
func (t *Table) Deprecated(field string) bool {
	r, ok := t.Rule(field)
	return ok && r.Status == StatusDeprecated
}

// HasMoving reports whether any field is still being moved, which is when cleanup can occur.
func (t *Table) HasMoving() bool {
	if t == nil {
		return false
	}
	for _, r := range t.rules {
		if r.Status == StatusMoving {
			return true
		}
	}
	return false
}

// WriteFamily returns the family new writes of field go to when a moving rule exists.
func (t *Table) WriteFamily(field string) (string, bool) {
	r, ok := t.Rule(field)
	if !ok || r.Status != StatusMoving {
		return "", false
	}
	return r.NewFamily, true
}

// Families returns the families a field governed by a moving rule can be read from.
func (t *Table) Families(field string) ([]string, bool) {
	r, ok := t.Rule(field)
	if !ok || r.Status != StatusMoving {
		return nil, false
	}
	return []string{r.OldFamily, r.NewFamily}, true
}

// Resolution says where to decode a field from for one row.
type Resolution struct {
	// Family to decode from; empty when the field must not be produced.
	Family string
	// Migrated is set when the value comes from the rule's new family.
	Migrated bool
	// Cleanup names the legacy family whose cell is obsolete and should be deleted.
	Cleanup string
}

// Resolve picks the source family of a migrating field given the families in which a live
// cell was observed. A cell in the new family always wins; a legacy-only cell is read from
// the old family; the legacy cell is marked for cleanup only when both exist.
func (t *Table) Resolve(field string, observed func(family string) bool) (Resolution, bool) {
	r, ok := t.Rule(field)
	if !ok {
		return Resolution{}, false
	}
	if r.Status == StatusDeprecated {
		return Resolution{}, true
	}

	inOld := observed(r.OldFamily)
	inNew := observed(r.NewFamily)
	switch {
	case inNew && inOld:
		return Resolution{Family: r.NewFamily, Migrated: true, Cleanup: r.OldFamily}, true
	case inNew:
		return Resolution{Family: r.NewFamily, Migrated: true}, true
	case inOld:
		return Resolution{Family: r.OldFamily}, true
	}
	return Resolution{}, true
}
