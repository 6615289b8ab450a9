package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/aidenappl/retail-core/db"
	"github.com/aidenappl/retail-core/query"
	"github.com/aidenappl/retail-core/structs"
)

// FilterOptions lists the distinct values of every filter dimension under
// the current filters. Each dimension ignores its own selection so its
// options are not narrowed by themselves.
func (s *Service) FilterOptions(ctx context.Context, f *query.Filter) (*structs.FilterOptions, error) {
	f = f.Aggregate()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out := &structs.FilterOptions{}
	lists := []struct {
		src query.Source
		dim query.Dimension
		dst *[]string
	}{
		{query.SaleLine, query.DimBranch, &out.Branches},
		{query.SaleLine, query.DimStore, &out.Stores},
		{query.SaleLine, query.DimGender, &out.Genders},
		{query.SaleLine, query.DimSeries, &out.Series},
		{query.SaleLine, query.DimColor, &out.Colors},
		{query.SaleLine, query.DimTier, &out.Tiers},
		{query.SaleLine, query.DimTipe, &out.Tipes},
		{query.Transaction, query.DimPayment, &out.Payments},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, l := range lists {
		l := l
		g.Go(func() error { return s.options(ctx, f, l.src, l.dim, l.dst) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FilterOptionsBody is FilterOptions encoded, served from the cache when
// possible.
func (s *Service) FilterOptionsBody(ctx context.Context, f *query.Filter) ([]byte, bool, error) {
	f = f.Aggregate()
	return s.cached(ctx, "filter-options:"+f.Key(), s.cfg.OptionsTTL, func(ctx context.Context) (any, error) {
		return s.FilterOptions(ctx, f)
	})
}

func (s *Service) options(ctx context.Context, f *query.Filter, src query.Source, dim query.Dimension, out *[]string) error {
	values := []string{}
	err := s.run(ctx, s.planner.Options(f, src, dim), func(r db.Rows) error {
		var v *string
		if err := r.Scan(&v); err != nil {
			return err
		}
		if v != nil && *v != "" {
			values = append(values, *v)
		}
		return nil
	})
	*out = values
	return err
}
