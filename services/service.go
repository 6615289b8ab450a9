package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/aidenappl/retail-core/cache"
	"github.com/aidenappl/retail-core/db"
	"github.com/aidenappl/retail-core/query"
)

// Config tunes a Service
type Config struct {
	Database      string
	Timeout       time.Duration // whole-request budget, 0 means none
	PromoParallel int           // concurrent promo queries, 1 runs them in order

	DashboardTTL time.Duration
	DetailTTL    time.Duration
	OptionsTTL   time.Duration
	PromoTTL     time.Duration
}

// Service runs the aggregate queries of every endpoint and caches their
// encoded results.
type Service struct {
	db      db.Querier
	cache   cache.Cache
	planner query.Planner
	cfg     Config
}

// New returns a Service reading through q. c may be nil to disable caching.
func New(q db.Querier, c cache.Cache, cfg Config) *Service {
	if cfg.PromoParallel < 1 {
		cfg.PromoParallel = 1
	}
	return &Service{
		db:      q,
		cache:   c,
		planner: query.NewPlanner(cfg.Database),
		cfg:     cfg,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

// cached returns the encoded body stored under key, computing and storing it
// on a miss. The bool reports a hit.
func (s *Service) cached(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (any, error)) ([]byte, bool, error) {
	if s.cache != nil && ttl > 0 {
		if body, ok := s.cache.Get(ctx, key); ok {
			return body, true, nil
		}
	}

	v, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}

	body, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode response: %w", err)
	}

	if s.cache != nil && ttl > 0 {
		s.cache.Set(ctx, key, body, ttl)
	}
	return body, false, nil
}

// run executes one statement and hands every row to scan.
func (s *Service) run(ctx context.Context, stmt sq.Sqlizer, scan func(db.Rows) error) error {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration failed: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// salesTotals are summed sale line measures
type salesTotals struct {
	Revenue float64
	Pairs   float64
}

func (s *Service) salesTotals(ctx context.Context, f *query.Filter, out *salesTotals) error {
	return s.run(ctx, s.planner.SalesTotals(f), func(r db.Rows) error {
		return r.Scan(&out.Revenue, &out.Pairs)
	})
}

func (s *Service) transactionTotal(ctx context.Context, f *query.Filter, out *float64) error {
	return s.run(ctx, s.planner.TransactionTotals(f), func(r db.Rows) error {
		return r.Scan(out)
	})
}

func (s *Service) salesSeries(ctx context.Context, f *query.Filter, out *[]PeriodSales) error {
	*out = []PeriodSales{}
	return s.run(ctx, s.planner.TimeSeries(f), func(r db.Rows) error {
		var (
			period time.Time
			p      PeriodSales
		)
		if err := r.Scan(&period, &p.Revenue, &p.Pairs); err != nil {
			return err
		}
		p.Period = formatDate(period)
		*out = append(*out, p)
		return nil
	})
}

func (s *Service) transactionSeries(ctx context.Context, f *query.Filter, out *[]KeyedCount) error {
	*out = []KeyedCount{}
	return s.run(ctx, s.planner.TransactionSeries(f), func(r db.Rows) error {
		var (
			period time.Time
			n      float64
		)
		if err := r.Scan(&period, &n); err != nil {
			return err
		}
		*out = append(*out, KeyedCount{Key: formatDate(period), Count: n})
		return nil
	})
}

func (s *Service) storeSales(ctx context.Context, f *query.Filter, out *[]StoreSales) error {
	*out = []StoreSales{}
	return s.run(ctx, s.planner.StoreSales(f), func(r db.Rows) error {
		var (
			toko *string
			row  StoreSales
		)
		if err := r.Scan(&toko, &row.Branch, &row.Revenue, &row.Pairs); err != nil {
			return err
		}
		row.Toko = deref(toko)
		*out = append(*out, row)
		return nil
	})
}

func (s *Service) storeTransactions(ctx context.Context, f *query.Filter, out *[]KeyedCount) error {
	*out = []KeyedCount{}
	return s.run(ctx, s.planner.StoreTransactions(f), func(r db.Rows) error {
		var (
			toko *string
			n    float64
		)
		if err := r.Scan(&toko, &n); err != nil {
			return err
		}
		*out = append(*out, KeyedCount{Key: deref(toko), Count: n})
		return nil
	})
}
