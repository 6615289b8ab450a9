package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aidenappl/retail-core/db"
	"github.com/aidenappl/retail-core/query"
	"github.com/aidenappl/retail-core/structs"
)

// Promo computes promo KPIs and breakdowns, plus the unrestricted sales KPIs
// of the same period, branch and store for comparison. At most
// PromoParallel of its queries are in flight at once.
func (s *Service) Promo(ctx context.Context, f *query.Filter) (*structs.Promo, error) {
	f = f.Aggregate()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out := structs.NewPromo()
	overall := f.Only(query.DimBranch, query.DimStore)

	var (
		promoTotals structs.PromoMeasures
		sales       salesTotals
		txnTotal    float64
		salesSeries []PeriodSales
		txnSeries   []KeyedCount
		stores      []StoreSales
		storeTxn    []KeyedCount
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.PromoParallel)

	g.Go(func() error {
		return s.run(ctx, s.planner.PromoTotals(f), func(r db.Rows) error {
			return scanMeasures(r, nil, &promoTotals)
		})
	})
	g.Go(func() error { return s.promoSeries(ctx, f, &out.TimeSeries) })
	g.Go(func() error { return s.promoByCampaign(ctx, f, &out.ByCampaign) })
	g.Go(func() error { return s.promoStores(ctx, f, &out.Stores) })
	g.Go(func() error { return s.promoStaff(ctx, f, &out.SPGLeaderboard) })
	g.Go(func() error { return s.campaignOptions(ctx, &out.CampaignOptions) })

	g.Go(func() error { return s.salesTotals(ctx, overall, &sales) })
	g.Go(func() error { return s.transactionTotal(ctx, overall, &txnTotal) })
	g.Go(func() error { return s.salesSeries(ctx, overall, &salesSeries) })
	g.Go(func() error { return s.transactionSeries(ctx, overall, &txnSeries) })
	g.Go(func() error { return s.storeSales(ctx, overall, &stores) })
	g.Go(func() error { return s.storeTransactions(ctx, overall, &storeTxn) })

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.PromoKPIs = structs.PromoKPIs{
		PromoMeasures: promoTotals,
		PromoShare:    PromoShare(promoTotals.QtyPromo, promoTotals.QtyAll),
		ATU:           ATU(promoTotals.QtyAll, promoTotals.TxnCount),
		ASP:           ASP(promoTotals.Revenue, promoTotals.QtyAll),
		ATV:           ATV(promoTotals.Revenue, promoTotals.TxnCount),
	}
	out.OverallKPIs = structs.OverallKPIs{
		Pairs:    sales.Pairs,
		Revenue:  sales.Revenue,
		TxnCount: txnTotal,
		ATU:      ATU(sales.Pairs, txnTotal),
		ASP:      ASP(sales.Revenue, sales.Pairs),
		ATV:      ATV(sales.Revenue, txnTotal),
	}
	out.OverallTimeSeries = MergeSeries(salesSeries, txnSeries)
	for _, row := range MergeStores(stores, storeTxn) {
		out.OverallStores = append(out.OverallStores, structs.OverallStoreRow{
			Toko:     row.Toko,
			Branch:   row.Branch,
			Pairs:    row.Pairs,
			Revenue:  row.Revenue,
			TxnCount: row.Transactions,
		})
	}

	return out, nil
}

// PromoBody is Promo encoded, served from the cache when possible.
func (s *Service) PromoBody(ctx context.Context, f *query.Filter) ([]byte, bool, error) {
	f = f.Aggregate()
	return s.cached(ctx, "promo:"+f.Key(), s.cfg.PromoTTL, func(ctx context.Context) (any, error) {
		return s.Promo(ctx, f)
	})
}

// scanMeasures scans the leading keys, then the promo measures in select order.
func scanMeasures(r db.Rows, keys []any, m *structs.PromoMeasures) error {
	dest := append(keys, &m.QtyAll, &m.QtyPromo, &m.Revenue, &m.DiscountTotal, &m.TxnCount)
	return r.Scan(dest...)
}

func (s *Service) promoSeries(ctx context.Context, f *query.Filter, out *[]structs.PromoSeriesPoint) error {
	return s.run(ctx, s.planner.PromoSeries(f), func(r db.Rows) error {
		var (
			period time.Time
			p      structs.PromoSeriesPoint
		)
		if err := scanMeasures(r, []any{&period}, &p.PromoMeasures); err != nil {
			return err
		}
		p.Period = formatDate(period)
		*out = append(*out, p)
		return nil
	})
}

func (s *Service) promoByCampaign(ctx context.Context, f *query.Filter, out *[]structs.CampaignRow) error {
	return s.run(ctx, s.planner.PromoByCampaign(f), func(r db.Rows) error {
		var c structs.CampaignRow
		if err := scanMeasures(r, []any{&c.Campaign}, &c.PromoMeasures); err != nil {
			return err
		}
		*out = append(*out, c)
		return nil
	})
}

func (s *Service) promoStores(ctx context.Context, f *query.Filter, out *[]structs.PromoStoreRow) error {
	return s.run(ctx, s.planner.PromoStores(f), func(r db.Rows) error {
		var st structs.PromoStoreRow
		if err := scanMeasures(r, []any{&st.Toko, &st.Branch}, &st.PromoMeasures); err != nil {
			return err
		}
		*out = append(*out, st)
		return nil
	})
}

func (s *Service) promoStaff(ctx context.Context, f *query.Filter, out *[]structs.StaffRow) error {
	return s.run(ctx, s.planner.PromoStaff(f), func(r db.Rows) error {
		var (
			m   structs.PromoMeasures
			spg *string
		)
		if err := scanMeasures(r, []any{&spg}, &m); err != nil {
			return err
		}
		*out = append(*out, structs.StaffRow{
			SPG:      spg,
			QtyPromo: m.QtyPromo,
			QtyAll:   m.QtyAll,
			Revenue:  m.Revenue,
			TxnCount: m.TxnCount,
		})
		return nil
	})
}

func (s *Service) campaignOptions(ctx context.Context, out *[]structs.CampaignOption) error {
	return s.run(ctx, s.planner.CampaignOptions(), func(r db.Rows) error {
		var c structs.CampaignOption
		if err := r.Scan(&c.Code, &c.Name); err != nil {
			return err
		}
		*out = append(*out, c)
		return nil
	})
}
