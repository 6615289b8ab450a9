// Package dbtest provides an in-memory db.Querier that answers queries by
// matching fragments of their SQL.
package dbtest

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/aidenappl/retail-core/db"
)

// Route answers every query containing all of Match.
type Route struct {
	Match []string
	Rows  [][]any
	Err   error
}

// Call is one recorded query.
type Call struct {
	SQL  string
	Args []any
}

// Querier returns canned rows for the first matching route. Queries without
// a matching route return no rows.
type Querier struct {
	mu     sync.Mutex
	routes []Route
	calls  []Call
}

// New returns an empty fake.
func New() *Querier {
	return &Querier{}
}

// On registers rows for queries containing every fragment of match.
func (q *Querier) On(rows [][]any, match ...string) *Querier {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.routes = append(q.routes, Route{Match: match, Rows: rows})
	return q
}

// Fail makes queries containing every fragment of match return err.
func (q *Querier) Fail(err error, match ...string) *Querier {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.routes = append(q.routes, Route{Match: match, Err: err})
	return q
}

// Calls returns the queries received so far.
func (q *Querier) Calls() []Call {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Call(nil), q.calls...)
}

// Query implements db.Querier.
func (q *Querier) Query(ctx context.Context, query string, args ...any) (db.Rows, error) {
	q.mu.Lock()
	q.calls = append(q.calls, Call{SQL: query, Args: args})
	routes := q.routes
	q.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, r := range routes {
		if matches(query, r.Match) {
			if r.Err != nil {
				return nil, r.Err
			}
			return &rows{data: r.Rows, pos: -1}, nil
		}
	}
	return &rows{pos: -1}, nil
}

func matches(query string, fragments []string) bool {
	for _, f := range fragments {
		if !strings.Contains(query, f) {
			return false
		}
	}
	return true
}

type rows struct {
	data [][]any
	pos  int
}

func (r *rows) Next() bool {
	r.pos++
	return r.pos < len(r.data)
}

func (r *rows) Err() error   { return nil }
func (r *rows) Close() error { return nil }

func (r *rows) Scan(dest ...any) error {
	row := r.data[r.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return fmt.Errorf("scan column %d: %w", i, err)
		}
	}
	return nil
}

// assign stores v into the pointer d, converting numeric kinds and wrapping
// plain values for pointer destinations.
func assign(d, v any) error {
	dv := reflect.ValueOf(d)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("destination %T is not a pointer", d)
	}
	dv = dv.Elem()

	if v == nil {
		dv.Set(reflect.Zero(dv.Type()))
		return nil
	}

	vv := reflect.ValueOf(v)
	target := dv.Type()
	if target.Kind() == reflect.Pointer && vv.Kind() != reflect.Pointer {
		target = target.Elem()
	}
	if !vv.Type().ConvertibleTo(target) {
		return fmt.Errorf("cannot assign %T to %s", v, dv.Type())
	}

	converted := vv.Convert(target)
	if target != dv.Type() {
		p := reflect.New(target)
		p.Elem().Set(converted)
		dv.Set(p)
		return nil
	}
	dv.Set(converted)
	return nil
}
