package services

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/aidenappl/retail-core/db"
	"github.com/aidenappl/retail-core/query"
	"github.com/aidenappl/retail-core/structs"
)

// Detail returns one page of store/product groups with the overall count and
// totals. With f.Export every group is returned on a single page.
func (s *Service) Detail(ctx context.Context, f *query.Filter) (*structs.Detail, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out := &structs.Detail{Rows: []structs.DetailRow{}, Page: f.Page}

	if f.Export {
		if err := s.detailRows(ctx, f, false, &out.Rows); err != nil {
			return nil, err
		}
		out.Total = uint64(len(out.Rows))
		out.Page = 1
		out.Pages = 1
		for _, row := range out.Rows {
			out.Totals.Pairs += row.Pairs
			out.Totals.Revenue += row.Revenue
		}
		return out, nil
	}

	// count and page may run on different snapshots; both are read-only
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.run(ctx, s.planner.DetailCount(f), func(r db.Rows) error {
			return r.Scan(&out.Total, &out.Totals.Pairs, &out.Totals.Revenue)
		})
	})
	g.Go(func() error { return s.detailRows(ctx, f, true, &out.Rows) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Pages = int(math.Ceil(float64(out.Total) / float64(f.Limit)))
	return out, nil
}

// DetailBody is Detail encoded. Exports bypass the cache.
func (s *Service) DetailBody(ctx context.Context, f *query.Filter) ([]byte, bool, error) {
	ttl := s.cfg.DetailTTL
	if f.Export {
		ttl = 0
	}
	return s.cached(ctx, "detail:"+f.Key(), ttl, func(ctx context.Context) (any, error) {
		return s.Detail(ctx, f)
	})
}

func (s *Service) detailRows(ctx context.Context, f *query.Filter, paged bool, out *[]structs.DetailRow) error {
	rows := []structs.DetailRow{}
	err := s.run(ctx, s.planner.DetailRows(f, paged), func(r db.Rows) error {
		var row structs.DetailRow
		dest := []any{&row.Toko}
		if f.Mode == query.ModeKode {
			dest = append(dest, &row.Kode)
		}
		dest = append(dest,
			&row.KodeBesar,
			&row.Article,
			&row.Gender,
			&row.Series,
			&row.Color,
			&row.Tipe,
			&row.Tier,
			&row.Revenue,
			&row.Pairs,
		)
		if err := r.Scan(dest...); err != nil {
			return err
		}
		row.AvgPrice = ASP(row.Revenue, row.Pairs)
		rows = append(rows, row)
		return nil
	})
	*out = rows
	return err
}
