package query

import (
	"context"
	"fmt"
	"time"
)

// Unit is the granularity timestamps are truncated to when grouping.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// DateGroup is the number of records whose timestamp truncates to Date.
type DateGroup struct {
	Date  time.Time
	Count int64
}

// TruncDate finalizes rs, counting its records grouped by their timestamp
// truncated to unit. Groups are ordered by date.
func TruncDate(ctx context.Context, rs *RecordSet, unit Unit) ([]DateGroup, error) {
	if rs.binding.Timestamp == "" {
		return nil, fmt.Errorf("%s by date: %w", rs.Kind(), ErrNotGroupable)
	}
	switch unit {
	case UnitDay, UnitMonth, UnitYear:
	default:
		return nil, fmt.Errorf("%s by %q: %w", rs.Kind(), unit, ErrNotGroupable)
	}
	if err := rs.finalize(); err != nil {
		return nil, err
	}

	groups := []DateGroup{}
	if rs.none {
		return groups, nil
	}

	col := rs.binding.Column(rs.binding.Timestamp)
	res := rs.scope(rs.db.WithContext(ctx)).
		Select(fmt.Sprintf("date_trunc('%s', %s) AS date, COUNT(*) AS count", unit, col)).
		Group("date").
		Order("date").
		Scan(&groups)
	if res.Error != nil {
		return nil, fmt.Errorf("group %s by date; error: %w", rs.Kind(), res.Error)
	}

	return groups, nil
}

// ValueGroup is the number of records whose grouped column equals Value.
type ValueGroup struct {
	Value string
	Count int64
}

// TruncValue finalizes rs, counting its records grouped by the distinct
// values of the column bound to value. Groups are ordered by value.
func TruncValue(ctx context.Context, rs *RecordSet, value string) ([]ValueGroup, error) {
	column, ok := rs.binding.Values[value]
	if !ok {
		return nil, fmt.Errorf("%s by %q: %w", rs.Kind(), value, ErrNotGroupable)
	}
	if err := rs.finalize(); err != nil {
		return nil, err
	}

	groups := []ValueGroup{}
	if rs.none {
		return groups, nil
	}

	col := rs.binding.Column(column)
	res := rs.scope(rs.db.WithContext(ctx)).
		Select(fmt.Sprintf(`CAST(%s AS TEXT) AS "value", COUNT(*) AS count`, col)).
		Group("value").
		Order(`"value"`).
		Scan(&groups)
	if res.Error != nil {
		return nil, fmt.Errorf("group %s by %s; error: %w", rs.Kind(), value, res.Error)
	}

	return groups, nil
}
