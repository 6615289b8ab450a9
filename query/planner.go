package query

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	sumRevenue = "toFloat64(sum(d.revenue)) AS sum_revenue"
	sumPairs   = "toFloat64(sum(d.pairs)) AS sum_pairs"
	sumTxn     = "toFloat64(sum(t.txn_count)) AS sum_txn"
	avgPrice   = "if(sum(d.pairs) > 0, sum(d.revenue) / sum(d.pairs), 0)"
)

// promoMeasures are selected in this order by every promo aggregate.
var promoMeasures = []string{
	"toFloat64(sum(p.qty_all)) AS sum_qty_all",
	"toFloat64(sum(p.qty_promo)) AS sum_qty_promo",
	"toFloat64(sum(p.revenue)) AS sum_revenue",
	"toFloat64(sum(p.discount_total)) AS sum_discount",
	"toFloat64(sum(p.txn_count)) AS sum_txn",
}

// TopArticleLimit is the dashboard ranking size.
const TopArticleLimit = 100

// StaffLimit bounds the SPG leaderboard.
const StaffLimit = 50

// Planner builds the aggregate statements of every view from one Filter.
type Planner struct {
	Tables Tables
}

// NewPlanner returns a planner over the tables of database.
func NewPlanner(database string) Planner {
	return Planner{Tables: DefaultTables(database)}
}

// PeriodExpr truncates col to the period start.
func PeriodExpr(period Period, col string) string {
	switch period {
	case PeriodWeekly:
		return "toMonday(" + col + ")"
	case PeriodMonthly:
		return "toStartOfMonth(" + col + ")"
	default:
		return col
	}
}

func (p Planner) sales(f *Filter) Plan {
	where := BuildPredicates(f, SaleLine)
	plan := Plan{
		Source: SaleLine,
		From:   p.Tables.Sales + " AS d",
		Where:  where,
	}
	if where.NeedsJoin {
		p.classify(&plan, InnerJoin)
	}
	return plan
}

// classify attaches the classification lookup unless a stricter join is
// already present.
func (p Planner) classify(plan *Plan, kind JoinKind) {
	if plan.Join == InnerJoin {
		return
	}
	plan.Join = kind
	plan.JoinOn = p.Tables.Classification + " AS k ON d.kode_besar = k.kode_besar"
}

func (p Planner) transactions(f *Filter) Plan {
	return Plan{
		Source: Transaction,
		From:   p.Tables.Transactions + " AS t",
		Where:  BuildPredicates(f, Transaction),
	}
}

func (p Planner) promo(f *Filter) Plan {
	return Plan{
		Source: Promo,
		From:   p.Tables.Promo + " AS p",
		Where:  BuildPredicates(f, Promo),
	}
}

// SalesTotals is one row of summed revenue and pairs.
func (p Planner) SalesTotals(f *Filter) Plan {
	plan := p.sales(f)
	plan.Columns = []string{sumRevenue, sumPairs}
	return plan
}

// TransactionTotals is one row of summed transactions, filtered only by the
// dimensions the transaction fact carries.
func (p Planner) TransactionTotals(f *Filter) Plan {
	plan := p.transactions(f)
	plan.Columns = []string{sumTxn}
	return plan
}

// LastUpdate is the latest sale date regardless of filters.
func (p Planner) LastUpdate() Plan {
	return Plan{
		Source:  SaleLine,
		From:    p.Tables.Sales + " AS d",
		Columns: []string{"max(d.sale_date) AS last_date"},
	}
}

// TimeSeries groups revenue and pairs by truncated sale date, ascending.
func (p Planner) TimeSeries(f *Filter) Plan {
	plan := p.sales(f)
	plan.Columns = []string{PeriodExpr(f.Period, "d.sale_date") + " AS period", sumRevenue, sumPairs}
	plan.GroupBy = []string{"period"}
	plan.OrderBy = []string{"period ASC"}
	return plan
}

// TransactionSeries groups transactions by truncated sale date, ascending.
func (p Planner) TransactionSeries(f *Filter) Plan {
	plan := p.transactions(f)
	plan.Columns = []string{PeriodExpr(f.Period, "t.sale_date") + " AS period", sumTxn}
	plan.GroupBy = []string{"period"}
	plan.OrderBy = []string{"period ASC"}
	return plan
}

// StoreSales is the sale line half of the store breakdown.
func (p Planner) StoreSales(f *Filter) Plan {
	plan := p.sales(f)
	plan.Columns = []string{"d.toko AS toko", "max(d.branch) AS store_branch", sumRevenue, sumPairs}
	plan.GroupBy = []string{"d.toko"}
	plan.OrderBy = []string{"sum_revenue DESC", "toko ASC"}
	return plan
}

// StoreTransactions is the transaction half of the store breakdown.
func (p Planner) StoreTransactions(f *Filter) Plan {
	plan := p.transactions(f)
	plan.Columns = []string{"t.toko AS toko", sumTxn}
	plan.GroupBy = []string{"t.toko"}
	return plan
}

// Breakdown groups the sale line fact by a single dimension. Branch sorts by
// revenue, tier by its own value, everything else by pairs.
func (p Planner) Breakdown(f *Filter, dim Dimension) Plan {
	plan := p.sales(f)
	col, _ := Column(SaleLine, dim)
	if IsJoined(SaleLine, dim) {
		p.classify(&plan, LeftJoin)
	}
	plan.Columns = []string{col + " AS value", sumRevenue, sumPairs}
	plan.GroupBy = []string{col}

	switch dim {
	case DimBranch:
		plan.OrderBy = []string{"sum_revenue DESC NULLS LAST", "value ASC"}
	case DimTier:
		plan.OrderBy = []string{"value ASC NULLS LAST"}
	default:
		plan.OrderBy = []string{"sum_pairs DESC NULLS LAST", "value ASC"}
	}
	return plan
}

// ProductPrices is revenue and pairs per product code, for price bucketing.
func (p Planner) ProductPrices(f *Filter) Plan {
	plan := p.sales(f)
	plan.Columns = []string{"d.kode AS kode", sumRevenue, sumPairs}
	plan.GroupBy = []string{"d.kode"}
	plan.Having = []string{"sum(d.pairs) > 0"}
	return plan
}

// TopArticles ranks articles by revenue.
func (p Planner) TopArticles(f *Filter, limit uint64) Plan {
	plan := p.sales(f)
	plan.Columns = []string{
		"coalesce(d.article, d.kode_besar) AS article_label",
		"d.kode_mix AS kode_mix",
		sumRevenue,
		sumPairs,
	}
	plan.GroupBy = []string{"d.article", "d.kode_besar", "d.kode_mix"}
	plan.OrderBy = []string{"sum_revenue DESC NULLS LAST", "article_label ASC"}
	plan.Limit = limit
	return plan
}

// detailKeys are the grouping expressions per mode, selected under the
// alias of the same name.
var detailKeys = map[Mode][][2]string{
	ModeKode: {
		{"d.toko", "toko"},
		{"d.kode", "kode"},
		{"d.kode_besar", "kode_besar"},
		{"d.article", "article"},
		{"d.gender", "gender"},
		{"d.series", "series"},
		{"d.color", "color"},
		{"k.tipe", "tipe"},
		{"d.tier", "tier"},
	},
	ModeKodeBesar: {
		{"d.toko", "toko"},
		{"d.kode_besar", "kode_besar"},
		{"d.article", "article"},
		{"d.gender", "gender"},
		{"d.series", "series"},
		{"d.color", "color"},
		{"k.tipe", "tipe"},
		{"d.tier", "tier"},
	},
}

// DetailKeys returns the alias names of the grouping columns for mode.
func DetailKeys(mode Mode) []string {
	keys := make([]string, 0, len(detailKeys[mode]))
	for _, k := range detailKeys[mode] {
		keys = append(keys, k[1])
	}
	return keys
}

func detailOrder(f *Filter) []string {
	dir := " DESC"
	if !f.Desc {
		dir = " ASC"
	}

	var primary string
	switch f.Sort {
	case "pairs":
		primary = "sum_pairs" + dir + " NULLS LAST"
	case "revenue":
		primary = "sum_revenue" + dir + " NULLS LAST"
	case "avg_price":
		primary = avgPrice + dir + " NULLS LAST"
	default:
		// already validated against the mode allow-list
		primary = f.Sort + dir
	}

	code := "kode"
	if f.Mode == ModeKodeBesar {
		code = "kode_besar"
	}
	return []string{primary, "toko ASC", code + " ASC"}
}

// DetailRows groups by store, product code and descriptive attributes. When
// paged is false every matching group is returned (export).
func (p Planner) DetailRows(f *Filter, paged bool) Plan {
	plan := p.detailGroups(f)
	plan.OrderBy = detailOrder(f)
	if paged {
		plan.Limit = uint64(f.Limit)
		plan.Offset = uint64(f.Offset())
	}
	return plan
}

func (p Planner) detailGroups(f *Filter) Plan {
	plan := p.sales(f)
	p.classify(&plan, LeftJoin)

	keys := detailKeys[f.Mode]
	plan.Columns = make([]string, 0, len(keys)+2)
	plan.GroupBy = make([]string, 0, len(keys))
	for _, k := range keys {
		plan.Columns = append(plan.Columns, k[0]+" AS "+k[1])
		plan.GroupBy = append(plan.GroupBy, k[0])
	}
	plan.Columns = append(plan.Columns, sumRevenue, sumPairs)
	return plan
}

// DetailCount counts the detail groups and totals their measures.
func (p Planner) DetailCount(f *Filter) sq.Sqlizer {
	return sq.Select(
		"count() AS total",
		"toFloat64(sum(sub.sum_pairs)) AS total_pairs",
		"toFloat64(sum(sub.sum_revenue)) AS total_revenue",
	).
		FromSelect(p.detailGroups(f).Builder(), "sub").
		PlaceholderFormat(sq.Dollar)
}

// Options lists distinct non-empty values of dim on src, filtered by every
// other active dimension.
func (p Planner) Options(f *Filter, src Source, dim Dimension) Plan {
	scoped := f.Without(dim)

	var plan Plan
	switch src {
	case Transaction:
		plan = p.transactions(scoped)
	case Promo:
		plan = p.promo(scoped)
	default:
		plan = p.sales(scoped)
	}

	col, _ := Column(src, dim)
	if IsJoined(src, dim) {
		p.classify(&plan, InnerJoin)
	}
	plan.Columns = []string{col + " AS value"}
	plan.Distinct = true
	plan.Extra = []sq.Sqlizer{
		sq.Expr(col + " IS NOT NULL"),
		sq.NotEq{col: ""},
	}
	plan.OrderBy = []string{"value ASC"}
	return plan
}

func (p Planner) promoGrouped(f *Filter, keys []string, groupBy []string) Plan {
	plan := p.promo(f)
	plan.Columns = append(append([]string{}, keys...), promoMeasures...)
	plan.GroupBy = groupBy
	return plan
}

// PromoTotals is one row of promo measures.
func (p Planner) PromoTotals(f *Filter) Plan {
	return p.promoGrouped(f, nil, nil)
}

// PromoSeries groups promo measures by truncated sale date.
func (p Planner) PromoSeries(f *Filter) Plan {
	plan := p.promoGrouped(f, []string{PeriodExpr(f.Period, "p.sale_date") + " AS period"}, []string{"period"})
	plan.OrderBy = []string{"period ASC"}
	return plan
}

// PromoByCampaign groups promo measures by campaign code.
func (p Planner) PromoByCampaign(f *Filter) Plan {
	plan := p.promoGrouped(f, []string{"p.campaign_code AS campaign"}, []string{"p.campaign_code"})
	plan.OrderBy = []string{"sum_revenue DESC", "campaign ASC"}
	return plan
}

// PromoStores groups promo measures by store.
func (p Planner) PromoStores(f *Filter) Plan {
	plan := p.promoGrouped(f, []string{"p.toko AS toko", "p.branch AS branch"}, []string{"p.toko", "p.branch"})
	plan.OrderBy = []string{"sum_revenue DESC", "toko ASC"}
	return plan
}

// PromoStaff ranks attributed sales staff by promo quantity.
func (p Planner) PromoStaff(f *Filter) Plan {
	plan := p.promoGrouped(f, []string{"p.spg AS spg"}, []string{"p.spg"})
	plan.Extra = []sq.Sqlizer{sq.NotEq{"p.spg": "Unknown"}}
	plan.OrderBy = []string{"sum_qty_promo DESC", "spg ASC"}
	plan.Limit = StaffLimit
	return plan
}

// CampaignOptions lists campaigns that appear in the promo fact.
func (p Planner) CampaignOptions() Plan {
	return Plan{
		Source:  Promo,
		From:    p.Tables.Campaigns + " AS pc",
		Columns: []string{"pc.campaign_code AS code", "pc.campaign_name AS name"},
		Extra: []sq.Sqlizer{
			sq.Expr("pc.campaign_code IN (SELECT DISTINCT campaign_code FROM " + p.Tables.Promo + ")"),
		},
		OrderBy: []string{"name ASC"},
	}
}
