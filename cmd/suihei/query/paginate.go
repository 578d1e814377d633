package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tjper/suihei/cmd/suihei/model"

	"gorm.io/gorm"
)

// Window is an optional limit and offset over a RecordSet. Negative values
// are clamped to zero.
type Window struct {
	Limit  *int
	Offset *int
}

// Page is a window of records along with the number of records matching the
// RecordSet regardless of the window.
type Page[T any] struct {
	TotalCount int64
	Records    []T
}

// Paginate finalizes rs, counting its records and retrieving the records
// within w. Both statements run in one read-only transaction so that
// TotalCount is consistent with Records. Records follow the RecordSet's
// order.
func Paginate[T model.Record](ctx context.Context, rs *RecordSet, w Window) (*Page[T], error) {
	var zero T
	if zero.RecordKind() != rs.Kind() {
		return nil, fmt.Errorf("paginate %s as %s: %w", rs.Kind(), zero.RecordKind(), ErrKindMismatch)
	}
	if err := rs.finalize(); err != nil {
		return nil, err
	}

	page := &Page[T]{Records: []T{}}
	if rs.none {
		return page, nil
	}

	limit, offset := clamp(w.Limit), clamp(w.Offset)

	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rs.scope(tx).Count(&page.TotalCount).Error; err != nil {
			return fmt.Errorf("count %s; error: %w", rs.Kind(), err)
		}
		if limit != nil && *limit == 0 {
			return nil
		}

		q := rs.scope(tx)
		if ob, ok := rs.orderBy(); ok {
			q = q.Clauses(ob)
		}
		for _, preload := range rs.binding.Preload {
			q = q.Preload(preload)
		}
		if offset != nil && *offset > 0 {
			q = q.Offset(*offset)
		}
		if limit != nil {
			q = q.Limit(*limit)
		}

		if err := q.Find(&page.Records).Error; err != nil {
			return fmt.Errorf("find %s; error: %w", rs.Kind(), err)
		}
		return nil
	}, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}

	return page, nil
}

// Request describes a list query: filters, order and window.
type Request struct {
	Args    Args
	OrderBy []string
	Window  Window
}

// List filters, orders and paginates rs as req describes.
func List[T model.Record](ctx context.Context, rs *RecordSet, req Request, resolver Resolver) (*Page[T], error) {
	rs, err := ApplyFilter(ctx, rs, req.Args, resolver)
	if err != nil {
		return nil, err
	}

	rs, err = rs.Order(req.OrderBy)
	if err != nil {
		return nil, err
	}

	return Paginate[T](ctx, rs, req.Window)
}

func clamp(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	if n < 0 {
		n = 0
	}
	return &n
}
