package graph

import (
	"context"

	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/cmd/suihei/query"
)

// connection is a page of nodes along with the number of nodes matching the
// query regardless of the page.
type connection[N any] struct {
	totalCount int64
	edges      []*edge[N]
}

func (c *connection[N]) TotalCount() int32 {
	return int32(c.totalCount)
}

func (c *connection[N]) Edges() []*edge[N] {
	return c.edges
}

type edge[N any] struct {
	node N
}

func (e *edge[N]) Node() N {
	return e.node
}

func newConnection[T any, N any](page *query.Page[T], wrap func(T) N) *connection[N] {
	edges := make([]*edge[N], 0, len(page.Records))
	for _, record := range page.Records {
		edges = append(edges, &edge[N]{node: wrap(record)})
	}
	return &connection[N]{totalCount: page.TotalCount, edges: edges}
}

// list resolves a paginated list query over the records of kind T.
func list[T model.Record, N any](
	ctx context.Context,
	r *Resolver,
	req query.Request,
	wrap func(T) N,
) (*connection[N], error) {
	var zero T
	rs, err := r.store.Query(zero.RecordKind())
	if err != nil {
		return nil, err
	}

	page, err := query.List[T](ctx, rs, req, r.store)
	if err != nil {
		return nil, err
	}
	return newConnection(page, wrap), nil
}

// request builds the query.Request of a list query from its common
// arguments.
func request(orderBy *[]string, limit, offset *int32, args query.Args) query.Request {
	req := query.Request{Args: args}
	if orderBy != nil {
		req.OrderBy = *orderBy
	}
	if limit != nil {
		n := int(*limit)
		req.Window.Limit = &n
	}
	if offset != nil {
		n := int(*offset)
		req.Window.Offset = &n
	}
	return req
}

// set adds the filter name to args when v is present.
func set[V any](args query.Args, name string, v *V) {
	if v != nil {
		args[name] = *v
	}
}
