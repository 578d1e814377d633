package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/tjper/suihei/internal/token"

	graphql "github.com/graph-gophers/graphql-go"
)

// Args maps filter names to caller supplied values. Nil values are ignored.
type Args map[string]interface{}

// Resolver checks that the record referenced by a relational filter exists.
type Resolver interface {
	Exists(ctx context.Context, kind string, id int64) (bool, error)
}

// ApplyFilter narrows rs by the direct and relational filters present in
// args. A relational filter whose token is malformed, references another
// kind, or references a record that does not exist yields an empty
// RecordSet rather than an error. Store errors raised while resolving a
// relational filter are returned. When no filter applies, rs is returned
// unchanged.
func ApplyFilter(ctx context.Context, rs *RecordSet, args Args, resolver Resolver) (*RecordSet, error) {
	names := make([]string, 0, len(args))
	for name, value := range args {
		if value == nil {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return rs, nil
	}
	sort.Strings(names)

	out := rs
	for _, name := range names {
		value := args[name]

		if filter, ok := rs.binding.Filters[name]; ok {
			out = out.Where(filter(value))
			continue
		}

		rel, ok := rs.binding.Relations[name]
		if !ok {
			return nil, fmt.Errorf("%s.%s: %w", rs.binding.Kind, name, ErrUnknownFilter)
		}

		tok, ok := tokenOf(value)
		if !ok {
			return rs.None(), nil
		}
		id, err := token.DecodeKind(tok, rel.Kind)
		if err != nil {
			return rs.None(), nil
		}

		exists, err := resolver.Exists(ctx, rel.Kind, id)
		if err != nil {
			return nil, fmt.Errorf("resolve %s filter; error: %w", name, err)
		}
		if !exists {
			return rs.None(), nil
		}

		out = out.Where(rel.Cond(id))
	}

	return out, nil
}

func tokenOf(value interface{}) (graphql.ID, bool) {
	switch v := value.(type) {
	case graphql.ID:
		return v, true
	case string:
		return graphql.ID(v), true
	case *graphql.ID:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}
