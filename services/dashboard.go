package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aidenappl/retail-core/db"
	"github.com/aidenappl/retail-core/query"
	"github.com/aidenappl/retail-core/structs"
)

// Dashboard computes every aggregate of the dashboard view concurrently. The
// first failing query cancels the rest and fails the whole response.
func (s *Service) Dashboard(ctx context.Context, f *query.Filter) (*structs.Dashboard, error) {
	f = f.Aggregate()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out := structs.NewDashboard()
	g, ctx := errgroup.WithContext(ctx)

	var (
		totals   salesTotals
		txnTotal float64
		last     time.Time
		series   []PeriodSales
		stores   []StoreSales
		storeTxn []KeyedCount
		products []ProductSales
	)

	g.Go(func() error { return s.salesTotals(ctx, f, &totals) })
	g.Go(func() error { return s.transactionTotal(ctx, f, &txnTotal) })
	g.Go(func() error { return s.lastUpdate(ctx, &last) })
	g.Go(func() error { return s.salesSeries(ctx, f, &series) })
	g.Go(func() error { return s.storeSales(ctx, f, &stores) })
	g.Go(func() error { return s.storeTransactions(ctx, f, &storeTxn) })
	g.Go(func() error { return s.productPrices(ctx, f, &products) })
	g.Go(func() error { return s.topArticles(ctx, f, &out.RankByArticle) })

	breakdowns := []struct {
		dim query.Dimension
		dst *[]structs.BreakdownRow
	}{
		{query.DimBranch, &out.ByBranch},
		{query.DimSeries, &out.BySeries},
		{query.DimGender, &out.ByGender},
		{query.DimTier, &out.ByTier},
		{query.DimTipe, &out.ByTipe},
		{query.DimSize, &out.BySize},
		{query.DimColor, &out.ByColor},
	}
	for _, b := range breakdowns {
		b := b
		g.Go(func() error { return s.breakdown(ctx, f, b.dim, b.dst) })
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.KPIs = structs.KPIs{
		Revenue:      totals.Revenue,
		Pairs:        totals.Pairs,
		Transactions: txnTotal,
		ATU:          ATU(totals.Pairs, txnTotal),
		ASP:          ASP(totals.Revenue, totals.Pairs),
		ATV:          ATV(totals.Revenue, txnTotal),
	}
	if !last.IsZero() && last.Unix() > 0 {
		date := formatDate(last)
		out.LastUpdate = &date
	}
	for _, p := range series {
		out.TimeSeries = append(out.TimeSeries, structs.SeriesPoint{Period: p.Period, Revenue: p.Revenue, Pairs: p.Pairs})
	}
	out.Stores = MergeStores(stores, storeTxn)
	out.ByPrice = BucketPrices(products)

	return out, nil
}

// DashboardBody is Dashboard encoded, served from the cache when possible.
func (s *Service) DashboardBody(ctx context.Context, f *query.Filter) ([]byte, bool, error) {
	f = f.Aggregate()
	return s.cached(ctx, "dashboard:"+f.Key(), s.cfg.DashboardTTL, func(ctx context.Context) (any, error) {
		return s.Dashboard(ctx, f)
	})
}

func (s *Service) lastUpdate(ctx context.Context, out *time.Time) error {
	return s.run(ctx, s.planner.LastUpdate(), func(r db.Rows) error {
		return r.Scan(out)
	})
}

func (s *Service) breakdown(ctx context.Context, f *query.Filter, dim query.Dimension, out *[]structs.BreakdownRow) error {
	rows := []structs.BreakdownRow{}
	err := s.run(ctx, s.planner.Breakdown(f, dim), func(r db.Rows) error {
		row := structs.BreakdownRow{Dimension: string(dim)}
		if err := r.Scan(&row.Value, &row.Revenue, &row.Pairs); err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	})
	*out = rows
	return err
}

func (s *Service) productPrices(ctx context.Context, f *query.Filter, out *[]ProductSales) error {
	return s.run(ctx, s.planner.ProductPrices(f), func(r db.Rows) error {
		var (
			kode *string
			p    ProductSales
		)
		if err := r.Scan(&kode, &p.Revenue, &p.Pairs); err != nil {
			return err
		}
		p.Kode = deref(kode)
		*out = append(*out, p)
		return nil
	})
}

func (s *Service) topArticles(ctx context.Context, f *query.Filter, out *[]structs.ArticleRank) error {
	rows := []structs.ArticleRank{}
	err := s.run(ctx, s.planner.TopArticles(f, query.TopArticleLimit), func(r db.Rows) error {
		var a structs.ArticleRank
		if err := r.Scan(&a.Article, &a.KodeMix, &a.Revenue, &a.Pairs); err != nil {
			return err
		}
		rows = append(rows, a)
		return nil
	})
	*out = rows
	return err
}
