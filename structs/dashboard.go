package structs

import "encoding/json"

// KPIs are the headline totals of the dashboard
type KPIs struct {
	Revenue      float64 `json:"revenue"`
	Pairs        float64 `json:"pairs"`
	Transactions float64 `json:"transactions"`
	ATU          float64 `json:"atu"`
	ASP          float64 `json:"asp"`
	ATV          float64 `json:"atv"`
}

// SeriesPoint is one period of the sales time series
type SeriesPoint struct {
	Period  string  `json:"period"` // YYYY-MM-DD start of period
	Revenue float64 `json:"revenue"`
	Pairs   float64 `json:"pairs"`
}

// StoreRow is one store of the merged store breakdown
type StoreRow struct {
	Toko         string  `json:"toko"`
	Branch       *string `json:"branch"`
	Pairs        float64 `json:"pairs"`
	Revenue      float64 `json:"revenue"`
	Transactions float64 `json:"transactions"`
	ATU          float64 `json:"atu"`
	ASP          float64 `json:"asp"`
	ATV          float64 `json:"atv"`
}

// BreakdownRow is one value of a single-dimension breakdown. It is encoded
// under the dimension's own name, e.g. {"series":"X","pairs":3,"revenue":9}.
type BreakdownRow struct {
	Dimension string  `json:"-"`
	Value     *string `json:"-"` // nil for rows without a value (unclassified)
	Pairs     float64 `json:"-"`
	Revenue   float64 `json:"-"`
}

// MarshalJSON encodes the row keyed by its dimension.
func (r BreakdownRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		r.Dimension: r.Value,
		"pairs":     r.Pairs,
		"revenue":   r.Revenue,
	})
}

// PriceBand is the units sold by products whose average price falls in one band
type PriceBand struct {
	Label string  `json:"label"`
	Pairs float64 `json:"pairs"`
}

// ArticleRank is one row of the top articles ranking
type ArticleRank struct {
	Article *string `json:"article"`
	KodeMix *string `json:"kode_mix"`
	Pairs   float64 `json:"pairs"`
	Revenue float64 `json:"revenue"`
}

// Dashboard is the response of GET /v1/dashboard
type Dashboard struct {
	KPIs          KPIs           `json:"kpis"`
	LastUpdate    *string        `json:"lastUpdate"`
	TimeSeries    []SeriesPoint  `json:"timeSeries"`
	Stores        []StoreRow     `json:"stores"`
	ByBranch      []BreakdownRow `json:"byBranch"`
	BySeries      []BreakdownRow `json:"bySeries"`
	ByGender      []BreakdownRow `json:"byGender"`
	ByTier        []BreakdownRow `json:"byTier"`
	ByTipe        []BreakdownRow `json:"byTipe"`
	BySize        []BreakdownRow `json:"bySize"`
	ByColor       []BreakdownRow `json:"byColor"`
	ByPrice       []PriceBand    `json:"byPrice"`
	RankByArticle []ArticleRank  `json:"rankByArticle"`
}

// NewDashboard returns a dashboard with every list initialised
func NewDashboard() *Dashboard {
	return &Dashboard{
		TimeSeries:    []SeriesPoint{},
		Stores:        []StoreRow{},
		ByBranch:      []BreakdownRow{},
		BySeries:      []BreakdownRow{},
		ByGender:      []BreakdownRow{},
		ByTier:        []BreakdownRow{},
		ByTipe:        []BreakdownRow{},
		BySize:        []BreakdownRow{},
		ByColor:       []BreakdownRow{},
		ByPrice:       []PriceBand{},
		RankByArticle: []ArticleRank{},
	}
}
