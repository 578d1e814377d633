// Package query composes ordered, filtered and paginated queries over the
// record kinds bound in a Registry.
package query

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/iancoleman/strcase"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrFinalized indicates a RecordSet was executed more than once.
	ErrFinalized = errors.New("record set already finalized")

	// ErrUnknownField indicates an order field is not orderable for the kind.
	ErrUnknownField = errors.New("unknown order field")

	// ErrUnknownFilter indicates a filter is not bound for the kind.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrKindMismatch indicates a RecordSet was materialized into records of
	// another kind.
	ErrKindMismatch = errors.New("record kind mismatch")

	// ErrNotGroupable indicates a RecordSet may not be grouped as requested.
	ErrNotGroupable = errors.New("not groupable")
)

// RecordSet creates a RecordSet over every record of kind. No query is
// executed until the RecordSet is finalized by Paginate, List, TruncDate or
// TruncValue.
func (r Registry) RecordSet(db *gorm.DB, kind string) (*RecordSet, error) {
	b, err := r.Lookup(kind)
	if err != nil {
		return nil, err
	}
	return &RecordSet{binding: b, db: db}, nil
}

// RecordSet is a lazily evaluated handle to the records of one kind. Every
// builder method returns a new RecordSet, leaving the receiver untouched.
type RecordSet struct {
	binding *Binding
	db      *gorm.DB

	conds []clause.Expression
	order []orderKey
	none  bool

	finalized int32
}

type orderKey struct {
	expr string
	desc bool
}

// Kind returns the record kind of the RecordSet.
func (rs *RecordSet) Kind() string {
	return rs.binding.Kind
}

// Binding returns the Binding of the RecordSet's kind.
func (rs *RecordSet) Binding() *Binding {
	return rs.binding
}

// Where narrows the RecordSet to records matching every expression.
func (rs *RecordSet) Where(exprs ...clause.Expression) *RecordSet {
	cp := rs.clone()
	cp.conds = append(cp.conds, exprs...)
	return cp
}

// None returns an empty RecordSet. Finalizing it executes no query.
func (rs *RecordSet) None() *RecordSet {
	cp := rs.clone()
	cp.none = true
	return cp
}

// IsNone checks if the RecordSet is known to be empty.
func (rs *RecordSet) IsNone() bool {
	return rs.none
}

// Order sorts the RecordSet by spec. Each entry is an orderable field name,
// prefixed with "-" for descending order. Null values sort last in either
// direction. Unless spec orders by id, records are finally ordered by
// descending id so that ordering is deterministic across pages. An empty spec
// returns the RecordSet unchanged.
func (rs *RecordSet) Order(spec []string) (*RecordSet, error) {
	if len(spec) == 0 {
		return rs, nil
	}

	keys := make([]orderKey, 0, len(spec)+1)
	var hasID bool
	for _, entry := range spec {
		field := strings.TrimPrefix(entry, "-")
		expr, ok := rs.binding.Order[field]
		if !ok {
			return nil, fmt.Errorf("%s.%s: %w", rs.binding.Kind, field, ErrUnknownField)
		}
		if expr == "" {
			expr = rs.binding.Column(strcase.ToSnake(field))
		}
		if field == "id" {
			hasID = true
		}
		keys = append(keys, orderKey{expr: expr, desc: strings.HasPrefix(entry, "-")})
	}
	if !hasID {
		keys = append(keys, orderKey{expr: rs.binding.Column("id"), desc: true})
	}

	cp := rs.clone()
	cp.order = keys
	return cp, nil
}

func (rs *RecordSet) clone() *RecordSet {
	return &RecordSet{
		binding: rs.binding,
		db:      rs.db,
		conds:   append([]clause.Expression(nil), rs.conds...),
		order:   append([]orderKey(nil), rs.order...),
		none:    rs.none,
	}
}

func (rs *RecordSet) finalize() error {
	if !atomic.CompareAndSwapInt32(&rs.finalized, 0, 1) {
		return ErrFinalized
	}
	return nil
}

// scope applies the RecordSet's table and conditions to tx.
func (rs *RecordSet) scope(tx *gorm.DB) *gorm.DB {
	q := tx.Table(rs.binding.Table)
	if len(rs.conds) > 0 {
		q = q.Clauses(clause.Where{Exprs: rs.conds})
	}
	return q
}

// orderBy builds the ORDER BY clause. All keys share one expression, since
// gorm merges consecutive OrderBy expressions by replacement.
func (rs *RecordSet) orderBy() (clause.OrderBy, bool) {
	if len(rs.order) == 0 {
		return clause.OrderBy{}, false
	}

	parts := make([]string, len(rs.order))
	for i, key := range rs.order {
		dir := "ASC"
		if key.desc {
			dir = "DESC"
		}
		parts[i] = key.expr + " " + dir + " NULLS LAST"
	}

	return clause.OrderBy{
		Expression: clause.Expr{SQL: strings.Join(parts, ", ")},
	}, true
}
