package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Source identifies the fact table a predicate set is built for.
type Source string

const (
	SaleLine    Source = "sale-line"
	Transaction Source = "transaction"
	Promo       Source = "promo"
)

// Op is the comparison a predicate renders.
type Op string

const (
	OpIn      Op = "in"
	OpGte     Op = "gte"
	OpLte     Op = "lte"
	OpSearch  Op = "search"
	OpExclude Op = "exclude"
)

// Pseudo dimensions tagging predicates that are not categorical filters.
const (
	DimDate    Dimension = "date"
	DimSearch  Dimension = "q"
	DimExclude Dimension = "exclude"
)

var dateColumns = map[Source]string{
	SaleLine:    "d.sale_date",
	Transaction: "t.sale_date",
	Promo:       "p.sale_date",
}

var sourceColumns = map[Source]map[Dimension]string{
	SaleLine: {
		DimBranch:  "d.branch",
		DimStore:   "d.toko",
		DimSeries:  "d.series",
		DimGender:  "d.gender",
		DimTier:    "d.tier",
		DimColor:   "d.color",
		DimSize:    "d.size",
		DimTipe:    "k.tipe",
		DimVersion: "d.version",
	},
	Transaction: {
		DimBranch:  "t.branch",
		DimStore:   "t.toko",
		DimPayment: "t.payment_type",
	},
	Promo: {
		DimBranch:   "p.branch",
		DimStore:    "p.toko",
		DimCampaign: "p.campaign_code",
	},
}

// joinedDimensions live in the SKU classification lookup, not on the fact row.
var joinedDimensions = map[Source]map[Dimension]bool{
	SaleLine: {DimTipe: true},
}

// nonMerchPatterns match gift-with-purchase, voucher, bag, hanger and
// membership lines.
var nonMerchPatterns = []string{
	"%gwp%",
	"%gift%",
	"%voucher%",
	"%shopbag%",
	"%paperbag%",
	"%paper bag%",
	"%shopping bag%",
	"%hanger%",
	"%membership%",
}

// packagingPatterns are added when the packaging exclusion flag is set.
var packagingPatterns = []string{
	"%box%",
}

var nonMerchColumns = []string{"d.article", "d.kode_besar", "d.kode"}

// Column returns the column expression for dim on src.
func Column(src Source, dim Dimension) (string, bool) {
	col, ok := sourceColumns[src][dim]
	return col, ok
}

// IsJoined reports whether dim on src is resolved through the classification join.
func IsJoined(src Source, dim Dimension) bool {
	return joinedDimensions[src][dim]
}

// Predicate is one tagged WHERE fragment.
type Predicate struct {
	Dimension Dimension
	Op        Op
	Columns   []string
	Values    []any
}

// ToSql implements squirrel.Sqlizer with '?' placeholders.
func (p Predicate) ToSql() (string, []any, error) {
	switch p.Op {
	case OpIn:
		if len(p.Values) == 0 {
			return "", nil, fmt.Errorf("empty IN list for %s", p.Dimension)
		}
		return sq.Eq{p.Columns[0]: p.Values}.ToSql()
	case OpGte:
		return sq.GtOrEq{p.Columns[0]: p.Values[0]}.ToSql()
	case OpLte:
		return sq.LtOrEq{p.Columns[0]: p.Values[0]}.ToSql()
	case OpSearch:
		or := make(sq.Or, 0, len(p.Columns))
		for _, col := range p.Columns {
			or = append(or, sq.ILike{col: p.Values[0]})
		}
		return or.ToSql()
	case OpExclude:
		and := make(sq.And, 0, len(p.Columns)*len(p.Values))
		for _, col := range p.Columns {
			for _, pattern := range p.Values {
				and = append(and, sq.NotILike{fmt.Sprintf("ifNull(%s, '')", col): pattern})
			}
		}
		return and.ToSql()
	default:
		return "", nil, fmt.Errorf("unsupported predicate op: %s", p.Op)
	}
}

// PredicateSet is the ordered WHERE fragments for one source.
type PredicateSet struct {
	Source     Source
	Predicates []Predicate
	// NeedsJoin is set when a filter resolves through the classification
	// lookup; the query must INNER JOIN it.
	NeedsJoin bool
}

// ToSql renders the AND of all fragments with '?' placeholders. An empty set
// renders to an empty string.
func (s PredicateSet) ToSql() (string, []any, error) {
	if len(s.Predicates) == 0 {
		return "", nil, nil
	}
	and := make(sq.And, len(s.Predicates))
	for i, p := range s.Predicates {
		and[i] = p
	}
	return and.ToSql()
}

// Render renders the set with numbered $1..$n placeholders.
func (s PredicateSet) Render() (string, []any, error) {
	sql, args, err := s.ToSql()
	if err != nil {
		return "", nil, err
	}
	sql, err = sq.Dollar.ReplacePlaceholders(sql)
	return sql, args, err
}

// Has reports whether the set contains a fragment for dim.
func (s PredicateSet) Has(dim Dimension) bool {
	for _, p := range s.Predicates {
		if p.Dimension == dim {
			return true
		}
	}
	return false
}

// BuildPredicates turns f into the fragments src can honour. Dimensions the
// source does not carry are skipped.
func BuildPredicates(f *Filter, src Source) PredicateSet {
	set := PredicateSet{Source: src}

	dateCol := dateColumns[src]
	if !f.From.IsZero() {
		set.Predicates = append(set.Predicates, Predicate{
			Dimension: DimDate,
			Op:        OpGte,
			Columns:   []string{dateCol},
			Values:    []any{f.From.Format(dateLayout)},
		})
	}
	if !f.To.IsZero() {
		set.Predicates = append(set.Predicates, Predicate{
			Dimension: DimDate,
			Op:        OpLte,
			Columns:   []string{dateCol},
			Values:    []any{f.To.Format(dateLayout)},
		})
	}

	for _, dim := range FilterDimensions {
		values := f.Values[dim]
		if len(values) == 0 {
			continue
		}
		col, ok := sourceColumns[src][dim]
		if !ok {
			continue
		}
		if joinedDimensions[src][dim] {
			set.NeedsJoin = true
		}
		set.Predicates = append(set.Predicates, Predicate{
			Dimension: dim,
			Op:        OpIn,
			Columns:   []string{col},
			Values:    toAny(values),
		})
	}

	if src != SaleLine {
		return set
	}

	if f.Search != "" {
		codeCol := "d.kode"
		if f.Mode == ModeKodeBesar {
			codeCol = "d.kode_besar"
		}
		set.Predicates = append(set.Predicates, Predicate{
			Dimension: DimSearch,
			Op:        OpSearch,
			Columns:   []string{codeCol, "d.article", "d.toko"},
			Values:    []any{"%" + escapeLike(f.Search) + "%"},
		})
	}

	patterns := nonMerchPatterns
	if f.ExcludePackaging {
		patterns = append(append([]string{}, nonMerchPatterns...), packagingPatterns...)
	}
	set.Predicates = append(set.Predicates, Predicate{
		Dimension: DimExclude,
		Op:        OpExclude,
		Columns:   nonMerchColumns,
		Values:    toAny(patterns),
	})

	return set
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
