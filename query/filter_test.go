package query

import (
	"net/url"
	"slices"
	"testing"
)

func parse(t *testing.T, raw string) *Filter {
	t.Helper()
	q, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("bad test query %q: %v", raw, err)
	}
	return ParseFilter(q)
}

func TestParseFilter_Defaults(t *testing.T) {
	f := parse(t, "")

	if !f.From.IsZero() || !f.To.IsZero() {
		t.Errorf("expected unbounded date range, got %v..%v", f.From, f.To)
	}
	if len(f.Values) != 0 {
		t.Errorf("expected no dimension filters, got %v", f.Values)
	}
	if f.Period != PeriodDaily {
		t.Errorf("expected period daily, got %s", f.Period)
	}
	if f.Mode != ModeKode {
		t.Errorf("expected mode kode, got %s", f.Mode)
	}
	if f.Sort != "revenue" || !f.Desc {
		t.Errorf("expected revenue desc, got %s %s", f.Sort, f.Dir())
	}
	if f.Page != 1 || f.Limit != 50 {
		t.Errorf("expected page 1 limit 50, got %d %d", f.Page, f.Limit)
	}
	if f.Export || f.ExcludePackaging || f.Search != "" {
		t.Errorf("expected no flags, got %+v", f)
	}
}

func TestParseFilter_MultiValue(t *testing.T) {
	f := parse(t, "branch=+B+,+,A,B&series=&gender=%20%20")

	if got := f.Values[DimBranch]; !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("expected [A B], got %v", got)
	}
	if f.Has(DimSeries) {
		t.Error("empty series parameter should not be a filter")
	}
	if f.Has(DimGender) {
		t.Error("whitespace gender parameter should not be a filter")
	}
}

func TestParseFilter_Dates(t *testing.T) {
	f := parse(t, "from=2025-01-01&to=not-a-date")

	if got := f.From.Format("2006-01-02"); got != "2025-01-01" {
		t.Errorf("expected from 2025-01-01, got %s", got)
	}
	if !f.To.IsZero() {
		t.Errorf("unparsable to should be unbounded, got %v", f.To)
	}
}

func TestParseFilter_Sort(t *testing.T) {
	tests := []struct {
		raw  string
		sort string
		desc bool
	}{
		{"sort=DROP%20TABLE", "revenue", true},
		{"sort=pairs&dir=asc", "pairs", false},
		{"sort=avg_price&dir=sideways", "avg_price", true},
		{"sort=kode", "kode", true},
		{"mode=kode_besar&sort=kode", "revenue", true},
		{"mode=kode_besar&sort=kode_besar", "kode_besar", true},
		{"sort=kode_besar", "revenue", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f := parse(t, tt.raw)
			if f.Sort != tt.sort {
				t.Errorf("expected sort %s, got %s", tt.sort, f.Sort)
			}
			if f.Desc != tt.desc {
				t.Errorf("expected desc=%v, got %v", tt.desc, f.Desc)
			}
		})
	}
}

func TestParseFilter_Paging(t *testing.T) {
	tests := []struct {
		raw   string
		page  int
		limit int
	}{
		{"page=0", 1, 50},
		{"page=-4", 1, 50},
		{"page=abc", 1, 50},
		{"page=3", 3, 50},
		{"limit=0", 1, 1},
		{"limit=500", 1, 200},
		{"limit=abc", 1, 50},
		{"limit=25&page=2", 2, 25},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f := parse(t, tt.raw)
			if f.Page != tt.page || f.Limit != tt.limit {
				t.Errorf("expected page %d limit %d, got %d %d", tt.page, tt.limit, f.Page, f.Limit)
			}
		})
	}

	if off := parse(t, "page=3&limit=20").Offset(); off != 40 {
		t.Errorf("expected offset 40, got %d", off)
	}
}

func TestParseFilter_PeriodAndMode(t *testing.T) {
	if p := parse(t, "period=weekly").Period; p != PeriodWeekly {
		t.Errorf("expected weekly, got %s", p)
	}
	if p := parse(t, "period=monthly").Period; p != PeriodMonthly {
		t.Errorf("expected monthly, got %s", p)
	}
	if p := parse(t, "period=yearly").Period; p != PeriodDaily {
		t.Errorf("expected fallback daily, got %s", p)
	}
	if m := parse(t, "mode=sku").Mode; m != ModeKode {
		t.Errorf("expected fallback kode, got %s", m)
	}
}

func TestFilter_KeyIsCanonical(t *testing.T) {
	a := parse(t, "branch=B,A&store=X&from=2025-01-01")
	b := parse(t, "from=2025-01-01&store=X&branch=A,B,A")

	if a.Key() != b.Key() {
		t.Errorf("expected equal keys:\n%s\n%s", a.Key(), b.Key())
	}

	c := parse(t, "branch=A&store=X&from=2025-01-01")
	if a.Key() == c.Key() {
		t.Error("different filters must not share a key")
	}

	if parse(t, "page=1").Key() == parse(t, "page=2").Key() {
		t.Error("page must be part of the key")
	}
}

func TestFilter_WithoutAndOnly(t *testing.T) {
	f := parse(t, "branch=A&store=S&series=X&q=abc&excludeNonSku=1&from=2025-01-01")

	w := f.Without(DimBranch)
	if w.Has(DimBranch) {
		t.Error("Without should drop branch")
	}
	if !f.Has(DimBranch) {
		t.Error("Without must not modify the receiver")
	}
	if !w.Has(DimStore) || !w.Has(DimSeries) {
		t.Error("Without should keep other dimensions")
	}

	o := f.Only(DimBranch, DimStore)
	if o.Has(DimSeries) {
		t.Error("Only should drop series")
	}
	if !o.Has(DimBranch) || !o.Has(DimStore) {
		t.Error("Only should keep listed dimensions")
	}
	if o.Search != "" || o.ExcludePackaging {
		t.Error("Only should drop search and packaging flag")
	}
	if o.From != f.From {
		t.Error("Only should keep the date range")
	}
}

func TestFilter_Aggregate(t *testing.T) {
	f := parse(t, "branch=A&from=2025-01-01&period=weekly&excludeNonSku=1&q=abc&mode=kode_besar&sort=pairs&dir=asc&page=3&limit=10&export=all")
	a := f.Aggregate()

	if a.Search != "" || a.Mode != ModeKode || a.Sort != DefaultSort || !a.Desc || a.Page != 1 || a.Limit != DefaultLimit || a.Export {
		t.Errorf("detail fields not reset: %+v", a)
	}
	if !a.Has(DimBranch) || a.From.IsZero() || a.Period != PeriodWeekly || !a.ExcludePackaging {
		t.Errorf("aggregate fields lost: %+v", a)
	}
	if f.Search != "abc" || f.Page != 3 {
		t.Error("Aggregate must not modify the receiver")
	}

	plain := parse(t, "branch=A&from=2025-01-01&period=weekly&excludeNonSku=1")
	if a.Key() != plain.Aggregate().Key() {
		t.Errorf("expected equal keys:\n%s\n%s", a.Key(), plain.Aggregate().Key())
	}
}

func TestParseFilter_Version(t *testing.T) {
	f := parse(t, "version=v2,v1,v2")
	if got := f.Values[DimVersion]; len(got) != 2 || got[0] != "v1" || got[1] != "v2" {
		t.Errorf("unexpected version values %v", got)
	}
}
