package query

import (
	"context"
	"errors"
	"testing"

	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/model"
	igorm "github.com/tjper/suihei/internal/gorm"
	"github.com/tjper/suihei/internal/token"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const starCountSQL = `(SELECT COUNT(*) FROM "stars" WHERE "stars"."puzzle_id" = "puzzles"."id")`

func TestNewRegistry(t *testing.T) {
	user := Binding{Kind: model.KindUser, Table: "users", Order: map[string]string{"id": ""}}

	tests := map[string]struct {
		bindings []Binding
		err      error
	}{
		"valid": {
			bindings: []Binding{user},
		},
		"id not orderable": {
			bindings: []Binding{{Kind: model.KindUser, Table: "users", Order: map[string]string{}}},
			err:      errInvalidBinding,
		},
		"missing table": {
			bindings: []Binding{{Kind: model.KindUser, Order: map[string]string{"id": ""}}},
			err:      errInvalidBinding,
		},
		"kind bound twice": {
			bindings: []Binding{user, user},
			err:      errInvalidBinding,
		},
		"relation to unknown kind": {
			bindings: []Binding{{
				Kind:      model.KindHint,
				Table:     "hints",
				Order:     map[string]string{"id": ""},
				Relations: map[string]Relation{"puzzle": {Kind: model.KindPuzzle, Cond: RelEq("hints", "puzzle_id")}},
			}},
			err: serrors.ErrUnknownKind,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(test.bindings...)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
				return
			}
			require.Nil(t, err)
		})
	}
}

func TestLookupUnknownKind(t *testing.T) {
	reg := testRegistry(t)

	_, err := reg.Lookup("Wiki")
	require.ErrorIs(t, err, serrors.ErrUnknownKind)

	_, err = reg.RecordSet(dryRun(t), "Wiki")
	require.ErrorIs(t, err, serrors.ErrUnknownKind)
}

func TestOrder(t *testing.T) {
	tests := map[string]struct {
		spec     []string
		expected string
		err      error
	}{
		"descending with tiebreaker": {
			spec:     []string{"-created"},
			expected: `ORDER BY "puzzles"."created" DESC NULLS LAST, "puzzles"."id" DESC NULLS LAST`,
		},
		"ascending nulls last": {
			spec:     []string{"dazedOn"},
			expected: `ORDER BY "puzzles"."dazed_on" ASC NULLS LAST, "puzzles"."id" DESC NULLS LAST`,
		},
		"explicit id ascending": {
			spec:     []string{"created", "id"},
			expected: `ORDER BY "puzzles"."created" ASC NULLS LAST, "puzzles"."id" ASC NULLS LAST`,
		},
		"explicit id descending": {
			spec:     []string{"-id"},
			expected: `ORDER BY "puzzles"."id" DESC NULLS LAST`,
		},
		"computed field": {
			spec:     []string{"-starCount"},
			expected: `ORDER BY ` + starCountSQL + ` DESC NULLS LAST, "puzzles"."id" DESC NULLS LAST`,
		},
		"unknown field": {
			spec: []string{"-solution"},
			err:  ErrUnknownField,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			rs := puzzles(t)

			ordered, err := rs.Order(test.spec)
			if test.err != nil {
				require.ErrorIs(t, err, test.err)
				return
			}
			require.Nil(t, err)

			sql, _ := selectSQL(t, ordered)
			require.Contains(t, sql, test.expected)

			// The receiver is left unordered.
			sql, _ = selectSQL(t, rs)
			require.NotContains(t, sql, "ORDER BY")
		})
	}
}

func TestOrderEmptySpec(t *testing.T) {
	rs := puzzles(t)

	ordered, err := rs.Order(nil)
	require.Nil(t, err)
	require.Same(t, rs, ordered)
}

func TestApplyFilter(t *testing.T) {
	userToken := token.Encode(model.KindUser, 7)

	tests := map[string]struct {
		args     Args
		resolver *resolverMock
		contains []string
		vars     []interface{}
		none     bool
		err      bool
		errIs    error
	}{
		"direct filters": {
			args: Args{"status": int32(1), "title__contains": "50%_off"},
			contains: []string{
				`"puzzles"."status" = $1`,
				`"puzzles"."title" LIKE $2`,
			},
			vars: []interface{}{int32(1), `%50\%\_off%`},
		},
		"nil values ignored": {
			args:     Args{"status": nil, "status__gt": int32(0)},
			contains: []string{`"puzzles"."status" > $1`},
			vars:     []interface{}{int32(0)},
		},
		"year": {
			args:     Args{"created__year": int32(2018)},
			contains: []string{`EXTRACT(YEAR FROM "puzzles"."created") = $1`},
			vars:     []interface{}{int32(2018)},
		},
		"relational filter": {
			args:     Args{"user": userToken},
			resolver: &resolverMock{exists: true},
			contains: []string{`"puzzles"."user_id" = $1`},
			vars:     []interface{}{int64(7)},
		},
		"relational filter as string": {
			args:     Args{"user": string(userToken)},
			resolver: &resolverMock{exists: true},
			contains: []string{`"puzzles"."user_id" = $1`},
			vars:     []interface{}{int64(7)},
		},
		"malformed token": {
			args:     Args{"user": "not-a-token"},
			resolver: &resolverMock{exists: true},
			none:     true,
		},
		"kind mismatch": {
			args:     Args{"user": token.Encode(model.KindPuzzle, 7)},
			resolver: &resolverMock{exists: true},
			none:     true,
		},
		"record dne": {
			args:     Args{"user": userToken},
			resolver: &resolverMock{exists: false},
			none:     true,
		},
		"store error": {
			args:     Args{"user": userToken},
			resolver: &resolverMock{err: errors.New("connection reset")},
			err:      true,
		},
		"unknown filter": {
			args:  Args{"memo": "x"},
			err:   true,
			errIs: ErrUnknownFilter,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			resolver := test.resolver
			if resolver == nil {
				resolver = &resolverMock{}
			}

			rs, err := ApplyFilter(context.Background(), puzzles(t), test.args, resolver)
			if test.err {
				require.Error(t, err)
				if test.errIs != nil {
					require.ErrorIs(t, err, test.errIs)
				}
				return
			}
			require.Nil(t, err)
			require.Equal(t, test.none, rs.IsNone())
			if test.none {
				return
			}

			sql, vars := selectSQL(t, rs)
			for _, fragment := range test.contains {
				require.Contains(t, sql, fragment)
			}
			require.Equal(t, test.vars, vars)
		})
	}
}

func TestApplyFilterNoFilters(t *testing.T) {
	rs := puzzles(t)

	filtered, err := ApplyFilter(context.Background(), rs, Args{}, &resolverMock{})
	require.Nil(t, err)
	require.Same(t, rs, filtered)
}

func TestPaginateNone(t *testing.T) {
	rs := puzzles(t).None()

	page, err := Paginate[model.Puzzle](context.Background(), rs, Window{Limit: intPtr(10)})
	require.Nil(t, err)
	require.Equal(t, int64(0), page.TotalCount)
	require.Empty(t, page.Records)

	_, err = Paginate[model.Puzzle](context.Background(), rs, Window{})
	require.ErrorIs(t, err, ErrFinalized)
}

func TestPaginateKindMismatch(t *testing.T) {
	_, err := Paginate[model.User](context.Background(), puzzles(t), Window{})
	require.ErrorIs(t, err, ErrKindMismatch)
}

func TestGroupable(t *testing.T) {
	ctx := context.Background()

	users, err := testRegistry(t).RecordSet(dryRun(t), model.KindUser)
	require.Nil(t, err)

	_, err = TruncDate(ctx, users, UnitDay)
	require.ErrorIs(t, err, ErrNotGroupable)

	_, err = TruncDate(ctx, puzzles(t), Unit("week"))
	require.ErrorIs(t, err, ErrNotGroupable)

	_, err = TruncValue(ctx, puzzles(t), "title")
	require.ErrorIs(t, err, ErrNotGroupable)

	groups, err := TruncDate(ctx, puzzles(t).None(), UnitMonth)
	require.Nil(t, err)
	require.Empty(t, groups)

	values, err := TruncValue(ctx, puzzles(t).None(), "genre")
	require.Nil(t, err)
	require.Empty(t, values)
}

func TestClamp(t *testing.T) {
	require.Nil(t, clamp(nil))
	require.Equal(t, 0, *clamp(intPtr(-3)))
	require.Equal(t, 4, *clamp(intPtr(4)))
}

// --- helpers ---

func testRegistry(t *testing.T) *Registry {
	t.Helper()

	reg, err := NewRegistry(
		Binding{
			Kind:  model.KindUser,
			Table: "users",
			Order: map[string]string{"id": "", "username": ""},
		},
		Binding{
			Kind:  model.KindPuzzle,
			Table: "puzzles",
			Order: map[string]string{
				"id":        "",
				"created":   "",
				"dazedOn":   "",
				"starCount": starCountSQL,
			},
			Filters: map[string]Filter{
				"status":          Eq("puzzles", "status"),
				"status__gt":      Gt("puzzles", "status"),
				"title__contains": Contains("puzzles", "title"),
				"created__year":   Year("puzzles", "created"),
			},
			Relations: map[string]Relation{
				"user": {Kind: model.KindUser, Cond: RelEq("puzzles", "user_id")},
			},
			Timestamp: "created",
			Values:    map[string]string{"genre": "genre"},
		},
	)
	require.Nil(t, err)

	return reg
}

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := igorm.OpenDryRun()
	require.Nil(t, err)

	return db
}

func puzzles(t *testing.T) *RecordSet {
	t.Helper()

	rs, err := testRegistry(t).RecordSet(dryRun(t), model.KindPuzzle)
	require.Nil(t, err)

	return rs
}

func selectSQL(t *testing.T, rs *RecordSet) (string, []interface{}) {
	t.Helper()

	q := rs.scope(rs.db)
	if ob, ok := rs.orderBy(); ok {
		q = q.Clauses(ob)
	}
	stmt := q.Find(&[]model.Puzzle{}).Statement
	require.Nil(t, stmt.Error)

	return stmt.SQL.String(), stmt.Vars
}

func intPtr(i int) *int { return &i }

// --- mocks ---

type resolverMock struct {
	exists bool
	err    error
}

func (m *resolverMock) Exists(context.Context, string, int64) (bool, error) {
	return m.exists, m.err
}
