package query

import (
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
)

func render(t *testing.T, s sq.Sqlizer) (string, []any) {
	t.Helper()
	sql, args, err := s.ToSql()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	checkDollarParity(t, sql, args)
	return sql, args
}

func contains(t *testing.T, sql string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(sql, p) {
			t.Errorf("expected %q in:\n%s", p, sql)
		}
	}
}

func excludes(t *testing.T, sql string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if strings.Contains(sql, p) {
			t.Errorf("unexpected %q in:\n%s", p, sql)
		}
	}
}

var planner = NewPlanner("retail")

func TestDefaultTables(t *testing.T) {
	tables := DefaultTables("retail")
	if tables.Sales != "retail.sales_daily" || tables.Classification != "retail.sku_classification" {
		t.Errorf("unexpected tables: %+v", tables)
	}
	if DefaultTables("").Promo != "promo_daily" {
		t.Error("empty database should leave names unqualified")
	}
}

func TestPlanner_SalesTotals(t *testing.T) {
	sql, _ := render(t, planner.SalesTotals(parse(t, "from=2025-01-01")))

	contains(t, sql,
		"SELECT toFloat64(sum(d.revenue)) AS sum_revenue, toFloat64(sum(d.pairs)) AS sum_pairs",
		"FROM retail.sales_daily AS d",
		"d.sale_date >= $1",
	)
	excludes(t, sql, "JOIN", "GROUP BY")
}

func TestPlanner_TipeFilterForcesInnerJoin(t *testing.T) {
	f := parse(t, "tipe=jepit")

	sql, args := render(t, planner.SalesTotals(f))
	contains(t, sql,
		"ANY INNER JOIN retail.sku_classification AS k ON d.kode_besar = k.kode_besar",
		"k.tipe IN ($1)",
	)
	if args[0] != "jepit" {
		t.Errorf("expected jepit as first arg, got %v", args[0])
	}

	// the breakdown must not weaken the join to LEFT
	sql, _ = render(t, planner.Breakdown(f, DimTipe))
	contains(t, sql, "ANY INNER JOIN")
	excludes(t, sql, "LEFT JOIN")

	sql, _ = render(t, planner.TransactionTotals(f))
	excludes(t, sql, "JOIN", "tipe")
}

func TestPlanner_TipeBreakdownUsesLeftJoin(t *testing.T) {
	sql, _ := render(t, planner.Breakdown(parse(t, ""), DimTipe))
	contains(t, sql,
		"SELECT k.tipe AS value",
		"ANY LEFT JOIN retail.sku_classification AS k",
		"GROUP BY k.tipe",
		"ORDER BY sum_pairs DESC NULLS LAST",
	)

	sql, _ = render(t, planner.Breakdown(parse(t, ""), DimSeries))
	excludes(t, sql, "JOIN")
}

func TestPlanner_BreakdownOrdering(t *testing.T) {
	tests := []struct {
		dim   Dimension
		order string
	}{
		{DimBranch, "ORDER BY sum_revenue DESC NULLS LAST"},
		{DimTier, "ORDER BY value ASC NULLS LAST"},
		{DimGender, "ORDER BY sum_pairs DESC NULLS LAST"},
		{DimColor, "ORDER BY sum_pairs DESC NULLS LAST"},
		{DimSize, "ORDER BY sum_pairs DESC NULLS LAST"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dim), func(t *testing.T) {
			sql, _ := render(t, planner.Breakdown(parse(t, ""), tt.dim))
			contains(t, sql, tt.order)
		})
	}
}

func TestPlanner_TimeSeriesPeriods(t *testing.T) {
	tests := []struct {
		raw  string
		expr string
	}{
		{"", "d.sale_date AS period"},
		{"period=weekly", "toMonday(d.sale_date) AS period"},
		{"period=monthly", "toStartOfMonth(d.sale_date) AS period"},
		{"period=hourly", "d.sale_date AS period"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			sql, _ := render(t, planner.TimeSeries(parse(t, tt.raw)))
			contains(t, sql, tt.expr, "GROUP BY period", "ORDER BY period ASC")
		})
	}

	sql, _ := render(t, planner.TransactionSeries(parse(t, "period=weekly")))
	contains(t, sql, "toMonday(t.sale_date) AS period", "FROM retail.sales_txn AS t")
}

func TestPlanner_StoreHalves(t *testing.T) {
	f := parse(t, "series=X&store=S1")

	sql, _ := render(t, planner.StoreSales(f))
	contains(t, sql, "d.toko AS toko", "max(d.branch) AS store_branch", "GROUP BY d.toko", "d.series IN")

	sql, args := render(t, planner.StoreTransactions(f))
	contains(t, sql, "t.toko AS toko", "GROUP BY t.toko", "t.toko IN ($1)")
	excludes(t, sql, "series")
	if len(args) != 1 {
		t.Errorf("expected only the store arg, got %v", args)
	}
}

func TestPlanner_StoreSalesBranchFilter(t *testing.T) {
	sql, args := render(t, planner.StoreSales(parse(t, "branch=North")))
	contains(t, sql, "d.branch IN ($1)", "max(d.branch) AS store_branch")
	// an aggregate aliased to a filtered column breaks the WHERE clause
	excludes(t, sql, "AS branch")
	if len(args) == 0 || args[0] != "North" {
		t.Errorf("unexpected args %v", args)
	}
}

func TestPlanner_VersionFilter(t *testing.T) {
	sql, _ := render(t, planner.SalesTotals(parse(t, "version=v2,v1")))
	contains(t, sql, "d.version IN ($1,$2)")

	sql, _ = render(t, planner.TransactionTotals(parse(t, "version=v1")))
	excludes(t, sql, "version")
}

func TestPlanner_ProductPricesAndTopArticles(t *testing.T) {
	sql, _ := render(t, planner.ProductPrices(parse(t, "")))
	contains(t, sql, "GROUP BY d.kode", "HAVING sum(d.pairs) > 0")

	sql, _ = render(t, planner.TopArticles(parse(t, ""), TopArticleLimit))
	contains(t, sql,
		"coalesce(d.article, d.kode_besar) AS article_label",
		"GROUP BY d.article, d.kode_besar, d.kode_mix",
		"ORDER BY sum_revenue DESC NULLS LAST",
		"LIMIT 100",
	)
}

func TestPlanner_DetailRows(t *testing.T) {
	sql, _ := render(t, planner.DetailRows(parse(t, "sort=DROP%20TABLE&page=3&limit=20"), true))
	contains(t, sql,
		"ANY LEFT JOIN retail.sku_classification AS k",
		"d.kode AS kode",
		"GROUP BY d.toko, d.kode, d.kode_besar",
		"ORDER BY sum_revenue DESC NULLS LAST, toko ASC, kode ASC",
		"LIMIT 20 OFFSET 40",
	)
	excludes(t, sql, "DROP")

	sql, _ = render(t, planner.DetailRows(parse(t, "mode=kode_besar&sort=avg_price&dir=asc"), false))
	contains(t, sql,
		"ORDER BY if(sum(d.pairs) > 0, sum(d.revenue) / sum(d.pairs), 0) ASC NULLS LAST, toko ASC, kode_besar ASC",
	)
	excludes(t, sql, "d.kode AS kode", "LIMIT", "OFFSET")

	sql, _ = render(t, planner.DetailRows(parse(t, "sort=article&dir=asc"), true))
	contains(t, sql, "ORDER BY article ASC, toko ASC")

	if keys := DetailKeys(ModeKodeBesar); keys[1] != "kode_besar" || len(keys) != 8 {
		t.Errorf("unexpected kode_besar keys %v", keys)
	}
}

func TestPlanner_DetailCount(t *testing.T) {
	f := parse(t, "branch=A,B&from=2025-01-01&q=abc")
	sql, args := render(t, planner.DetailCount(f))

	contains(t, sql,
		"count() AS total",
		"toFloat64(sum(sub.sum_pairs)) AS total_pairs",
		"FROM (SELECT",
		") AS sub",
		"d.branch IN ($2,$3)",
	)
	excludes(t, sql, "ORDER BY", "LIMIT")

	_, rowArgs := render(t, planner.DetailRows(f, false))
	if len(args) != len(rowArgs) {
		t.Errorf("count and rows should bind the same args: %d vs %d", len(args), len(rowArgs))
	}
}

func TestPlanner_OptionsExcludeOwnDimension(t *testing.T) {
	f := parse(t, "branch=A&store=S")

	sql, _ := render(t, planner.Options(f, SaleLine, DimBranch))
	contains(t, sql,
		"SELECT DISTINCT d.branch AS value",
		"d.toko IN",
		"d.branch IS NOT NULL",
		"d.branch <> $",
		"ORDER BY value ASC",
	)
	excludes(t, sql, "d.branch IN")

	sql, _ = render(t, planner.Options(f, SaleLine, DimTipe))
	contains(t, sql, "SELECT DISTINCT k.tipe AS value", "ANY INNER JOIN")

	sql, _ = render(t, planner.Options(f, Transaction, DimPayment))
	contains(t, sql, "SELECT DISTINCT t.payment_type AS value", "FROM retail.sales_txn AS t", "t.branch IN")
}

func TestPlanner_Promo(t *testing.T) {
	f := parse(t, "campaign=C1&store=S&series=X")

	sql, args := render(t, planner.PromoTotals(f))
	contains(t, sql, "FROM retail.promo_daily AS p", "p.toko IN ($1)", "p.campaign_code IN ($2)", "sum_qty_promo")
	excludes(t, sql, "GROUP BY", "series")
	if len(args) != 2 {
		t.Errorf("expected 2 args, got %v", args)
	}

	sql, _ = render(t, planner.PromoStaff(f))
	contains(t, sql, "p.spg AS spg", "p.spg <> $3", "ORDER BY sum_qty_promo DESC", "LIMIT 50")

	sql, _ = render(t, planner.PromoSeries(parse(t, "period=monthly")))
	contains(t, sql, "toStartOfMonth(p.sale_date) AS period")

	sql, _ = render(t, planner.CampaignOptions())
	contains(t, sql, "FROM retail.promo_campaign AS pc", "pc.campaign_code IN (SELECT DISTINCT campaign_code FROM retail.promo_daily)")
}
