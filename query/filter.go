package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Dimension is a categorical filter/grouping attribute. Its value doubles as
// the query parameter name.
type Dimension string

const (
	DimBranch   Dimension = "branch"
	DimStore    Dimension = "store"
	DimSeries   Dimension = "series"
	DimGender   Dimension = "gender"
	DimTier     Dimension = "tier"
	DimColor    Dimension = "color"
	DimTipe     Dimension = "tipe"
	DimSize     Dimension = "size"
	DimPayment  Dimension = "payment"
	DimCampaign Dimension = "campaign"
	DimVersion  Dimension = "version"
)

// FilterDimensions are the dimensions accepted as multi-valued filters, in
// the order their predicates are emitted.
var FilterDimensions = []Dimension{
	DimBranch,
	DimStore,
	DimSeries,
	DimGender,
	DimTier,
	DimColor,
	DimPayment,
	DimCampaign,
	DimTipe,
	DimVersion,
}

// Period selects the date truncation used for time series.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Mode selects the detail table grouping granularity.
type Mode string

const (
	ModeKode      Mode = "kode"
	ModeKodeBesar Mode = "kode_besar"
)

const (
	DefaultSort  = "revenue"
	DefaultLimit = 50
	MaxLimit     = 200
	dateLayout   = "2006-01-02"
)

// sortKeys are the detail sort keys allowed per mode.
var sortKeys = map[Mode]map[string]bool{
	ModeKode: {
		"toko": true, "kode": true, "article": true, "series": true, "gender": true,
		"tier": true, "color": true, "tipe": true, "pairs": true, "revenue": true, "avg_price": true,
	},
	ModeKodeBesar: {
		"toko": true, "kode_besar": true, "article": true, "series": true, "gender": true,
		"tier": true, "color": true, "tipe": true, "pairs": true, "revenue": true, "avg_price": true,
	},
}

// Filter is the normalized form of one request's query parameters.
type Filter struct {
	From time.Time // zero means unbounded
	To   time.Time // zero means unbounded

	Values map[Dimension][]string

	Search           string
	ExcludePackaging bool

	Period Period
	Mode   Mode
	Sort   string
	Desc   bool
	Page   int
	Limit  int
	Export bool
}

// ParseFilter normalizes a flat parameter map. It never fails: anything it
// cannot use falls back to a safe default.
func ParseFilter(q url.Values) *Filter {
	f := &Filter{
		Values: make(map[Dimension][]string),
		Period: PeriodDaily,
		Mode:   ModeKode,
		Sort:   DefaultSort,
		Desc:   true,
		Page:   1,
		Limit:  DefaultLimit,
	}

	f.From = parseDate(q.Get("from"))
	f.To = parseDate(q.Get("to"))

	for _, dim := range FilterDimensions {
		if values := splitMulti(q.Get(string(dim))); len(values) > 0 {
			f.Values[dim] = values
		}
	}

	f.Search = strings.TrimSpace(q.Get("q"))
	f.ExcludePackaging = q.Get("excludeNonSku") == "1"

	switch Period(q.Get("period")) {
	case PeriodWeekly:
		f.Period = PeriodWeekly
	case PeriodMonthly:
		f.Period = PeriodMonthly
	}

	if Mode(q.Get("mode")) == ModeKodeBesar {
		f.Mode = ModeKodeBesar
	}

	if sort := q.Get("sort"); sortKeys[f.Mode][sort] {
		f.Sort = sort
	}
	f.Desc = q.Get("dir") != "asc"

	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		f.Page = max(page, 1)
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = min(max(limit, 1), MaxLimit)
	}

	f.Export = q.Get("export") == "all"

	return f
}

// Has reports whether dim carries at least one value.
func (f *Filter) Has(dim Dimension) bool {
	return len(f.Values[dim]) > 0
}

// Offset is the row offset for the current page.
func (f *Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Clone returns a deep copy.
func (f *Filter) Clone() *Filter {
	c := *f
	c.Values = make(map[Dimension][]string, len(f.Values))
	for dim, values := range f.Values {
		c.Values[dim] = slices.Clone(values)
	}
	return &c
}

// Without returns a copy with dim removed.
func (f *Filter) Without(dim Dimension) *Filter {
	c := f.Clone()
	delete(c.Values, dim)
	return c
}

// Only returns a copy keeping the date range and the listed dimensions.
// Search and the packaging flag are dropped.
func (f *Filter) Only(dims ...Dimension) *Filter {
	c := f.Clone()
	for dim := range c.Values {
		if !slices.Contains(dims, dim) {
			delete(c.Values, dim)
		}
	}
	c.Search = ""
	c.ExcludePackaging = false
	return c
}

// Aggregate returns a copy with the detail table fields (search, mode, sort,
// paging and export) reset to their defaults. Views that do not page or
// search are computed and cached from it.
func (f *Filter) Aggregate() *Filter {
	c := f.Clone()
	c.Search = ""
	c.Mode = ModeKode
	c.Sort = DefaultSort
	c.Desc = true
	c.Page = 1
	c.Limit = DefaultLimit
	c.Export = false
	return c
}

// Key is a deterministic serialization of every normalized field.
func (f *Filter) Key() string {
	v := url.Values{}
	if !f.From.IsZero() {
		v.Set("from", f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		v.Set("to", f.To.Format(dateLayout))
	}
	for dim, values := range f.Values {
		v.Set(string(dim), strings.Join(values, ","))
	}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	if f.ExcludePackaging {
		v.Set("excludeNonSku", "1")
	}
	v.Set("period", string(f.Period))
	v.Set("mode", string(f.Mode))
	v.Set("sort", f.Sort)
	v.Set("dir", f.Dir())
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	if f.Export {
		v.Set("export", "all")
	}
	return v.Encode()
}

// Dir is the sort direction as a query parameter value.
func (f *Filter) Dir() string {
	if f.Desc {
		return "desc"
	}
	return "asc"
}

func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// splitMulti splits a comma list, dropping blank tokens and duplicates.
func splitMulti(s string) []string {
	if s == "" {
		return nil
	}
	var values []string
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			values = append(values, token)
		}
	}
	slices.Sort(values)
	return slices.Compact(values)
}
