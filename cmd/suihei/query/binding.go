package query

import (
	"errors"
	"fmt"
	"strings"

	serrors "github.com/tjper/suihei/cmd/suihei/errors"

	"gorm.io/gorm/clause"
)

var errInvalidBinding = errors.New("invalid binding")

// Filter builds the condition applied for a direct filter value.
type Filter func(value interface{}) clause.Expression

// Relation is a filter whose value is a reference token to a record of Kind.
// Cond builds the condition applied once the token resolves to id.
type Relation struct {
	Kind string
	Cond func(id int64) clause.Expression
}

// Binding configures how the records of one kind are queried.
type Binding struct {
	// Kind is the record kind name.
	Kind string
	// Table is the table holding records of Kind.
	Table string
	// Order maps orderable API field names to SQL expressions. An empty
	// expression orders by the table column named after the field.
	Order map[string]string
	// Filters are the direct filters, keyed by filter name.
	Filters map[string]Filter
	// Relations are the relational filters, keyed by filter name.
	Relations map[string]Relation
	// Timestamp is the column grouped by date truncation. Kinds without a
	// Timestamp may not be grouped by date.
	Timestamp string
	// Values maps API value names to the columns that may be grouped by value.
	Values map[string]string
	// Preload lists the associations loaded with each record.
	Preload []string
}

// Column returns the quoted, table-qualified name of column.
func (b Binding) Column(column string) string {
	return quote(b.Table, column)
}

func (b Binding) validate() error {
	switch {
	case b.Kind == "":
		return fmt.Errorf("kind required: %w", errInvalidBinding)
	case b.Table == "":
		return fmt.Errorf("%s: table required: %w", b.Kind, errInvalidBinding)
	}
	if _, ok := b.Order["id"]; !ok {
		return fmt.Errorf("%s: id must be orderable: %w", b.Kind, errInvalidBinding)
	}
	for name := range b.Filters {
		if _, ok := b.Relations[name]; ok {
			return fmt.Errorf("%s: filter %q bound twice: %w", b.Kind, name, errInvalidBinding)
		}
	}
	return nil
}

// NewRegistry creates a Registry of bindings. Bindings are validated, and
// each relational filter must reference a registered kind.
func NewRegistry(bindings ...Binding) (*Registry, error) {
	r := &Registry{bindings: make(map[string]*Binding, len(bindings))}

	for i := range bindings {
		b := bindings[i]
		if err := b.validate(); err != nil {
			return nil, err
		}
		if _, ok := r.bindings[b.Kind]; ok {
			return nil, fmt.Errorf("%s: kind bound twice: %w", b.Kind, errInvalidBinding)
		}
		r.bindings[b.Kind] = &b
	}

	for _, b := range r.bindings {
		for name, rel := range b.Relations {
			if _, ok := r.bindings[rel.Kind]; !ok {
				return nil, fmt.Errorf(
					"%s: relation %q references %s: %w",
					b.Kind,
					name,
					rel.Kind,
					serrors.ErrUnknownKind,
				)
			}
		}
	}

	return r, nil
}

// Registry is the closed set of record kinds that may be queried.
type Registry struct {
	bindings map[string]*Binding
}

// Lookup retrieves the Binding of kind.
func (r Registry) Lookup(kind string) (*Binding, error) {
	b, ok := r.bindings[kind]
	if !ok {
		return nil, fmt.Errorf("%q: %w", kind, serrors.ErrUnknownKind)
	}
	return b, nil
}

// --- filter constructors ---

// Eq filters column for equality with the filter value.
func Eq(table, column string) Filter {
	return func(v interface{}) clause.Expression {
		return clause.Eq{Column: clause.Column{Table: table, Name: column}, Value: v}
	}
}

// Gt filters column for values greater than the filter value.
func Gt(table, column string) Filter {
	return func(v interface{}) clause.Expression {
		return clause.Gt{Column: clause.Column{Table: table, Name: column}, Value: v}
	}
}

// Gte filters column for values greater than or equal to the filter value.
func Gte(table, column string) Filter {
	return func(v interface{}) clause.Expression {
		return clause.Gte{Column: clause.Column{Table: table, Name: column}, Value: v}
	}
}

// Lte filters column for values less than or equal to the filter value.
func Lte(table, column string) Filter {
	return func(v interface{}) clause.Expression {
		return clause.Lte{Column: clause.Column{Table: table, Name: column}, Value: v}
	}
}

// Contains filters column for values containing the filter value.
func Contains(table, column string) Filter {
	return func(v interface{}) clause.Expression {
		return clause.Like{
			Column: clause.Column{Table: table, Name: column},
			Value:  "%" + escapeLike(fmt.Sprint(v)) + "%",
		}
	}
}

// Year filters column for timestamps within the filter value's year.
func Year(table, column string) Filter {
	return extract("YEAR", table, column)
}

// Month filters column for timestamps within the filter value's month of the
// year.
func Month(table, column string) Filter {
	return extract("MONTH", table, column)
}

func extract(field, table, column string) Filter {
	return func(v interface{}) clause.Expression {
		return clause.Expr{
			SQL:  fmt.Sprintf("EXTRACT(%s FROM ?) = ?", field),
			Vars: []interface{}{clause.Column{Table: table, Name: column}, v},
		}
	}
}

// Exists filters for records for which sql, an EXISTS subquery with a single
// placeholder, matches the filter value.
func Exists(sql string) Filter {
	return func(v interface{}) clause.Expression {
		return clause.Expr{SQL: "EXISTS (" + sql + ")", Vars: []interface{}{v}}
	}
}

// RelEq builds relational conditions comparing column with the resolved id.
func RelEq(table, column string) func(int64) clause.Expression {
	return func(id int64) clause.Expression {
		return clause.Eq{Column: clause.Column{Table: table, Name: column}, Value: id}
	}
}

// RelExists builds relational conditions from sql, an EXISTS subquery with a
// single placeholder for the resolved id.
func RelExists(sql string) func(int64) clause.Expression {
	return func(id int64) clause.Expression {
		return clause.Expr{SQL: "EXISTS (" + sql + ")", Vars: []interface{}{id}}
	}
}

// --- helpers ---

func quote(table, column string) string {
	return `"` + table + `"."` + column + `"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
