package query

import (
	sq "github.com/Masterminds/squirrel"
)

// JoinKind says how the SKU classification lookup is attached.
type JoinKind int

const (
	NoJoin JoinKind = iota
	// InnerJoin drops rows without a classification (tipe filter present).
	InnerJoin
	// LeftJoin keeps them; their tipe is NULL (tipe grouped or listed only).
	LeftJoin
)

// Tables holds fully qualified table names.
type Tables struct {
	Sales          string
	Transactions   string
	Classification string
	Promo          string
	Campaigns      string
}

// DefaultTables qualifies the standard table names with database.
func DefaultTables(database string) Tables {
	qualify := func(name string) string {
		if database == "" {
			return name
		}
		return database + "." + name
	}
	return Tables{
		Sales:          qualify("sales_daily"),
		Transactions:   qualify("sales_txn"),
		Classification: qualify("sku_classification"),
		Promo:          qualify("promo_daily"),
		Campaigns:      qualify("promo_campaign"),
	}
}

// Plan is a typed description of one SELECT. Render it with ToSql.
type Plan struct {
	Source   Source
	From     string
	Join     JoinKind
	JoinOn   string
	Columns  []string
	Distinct bool
	Where    PredicateSet
	Extra    []sq.Sqlizer
	GroupBy  []string
	Having   []string
	OrderBy  []string
	Limit    uint64
	Offset   uint64
}

// Builder returns the squirrel builder with '?' placeholders, suitable for
// nesting with FromSelect.
func (p Plan) Builder() sq.SelectBuilder {
	b := sq.Select(p.Columns...).From(p.From)
	if p.Distinct {
		b = b.Distinct()
	}

	switch p.Join {
	case InnerJoin:
		b = b.JoinClause("ANY INNER JOIN " + p.JoinOn)
	case LeftJoin:
		b = b.JoinClause("ANY LEFT JOIN " + p.JoinOn)
	}

	if len(p.Where.Predicates) > 0 {
		b = b.Where(p.Where)
	}
	for _, extra := range p.Extra {
		b = b.Where(extra)
	}

	if len(p.GroupBy) > 0 {
		b = b.GroupBy(p.GroupBy...)
	}
	for _, having := range p.Having {
		b = b.Having(having)
	}
	if len(p.OrderBy) > 0 {
		b = b.OrderBy(p.OrderBy...)
	}
	if p.Limit > 0 {
		b = b.Limit(p.Limit)
	}
	if p.Offset > 0 {
		b = b.Offset(p.Offset)
	}
	return b
}

// ToSql renders the statement with numbered $1..$n placeholders.
func (p Plan) ToSql() (string, []any, error) {
	return p.Builder().PlaceholderFormat(sq.Dollar).ToSql()
}
