package services

import (
	"github.com/aidenappl/retail-core/structs"
)

// StoreSales is the sale line half of one store row
type StoreSales struct {
	Toko    string
	Branch  *string
	Pairs   float64
	Revenue float64
}

// PeriodSales is the sale line half of one time series point
type PeriodSales struct {
	Period  string
	Pairs   float64
	Revenue float64
}

// KeyedCount is a transaction count grouped by store or period
type KeyedCount struct {
	Key   string
	Count float64
}

func countsByKey(counts []KeyedCount) map[string]float64 {
	m := make(map[string]float64, len(counts))
	for _, c := range counts {
		m[c.Key] += c.Count
	}
	return m
}

// MergeStores joins per-store sales with per-store transaction counts. Every
// sales store is kept once, in input order; a store without transactions
// gets a count of 0.
func MergeStores(sales []StoreSales, txns []KeyedCount) []structs.StoreRow {
	byStore := countsByKey(txns)

	out := make([]structs.StoreRow, 0, len(sales))
	for _, s := range sales {
		n := byStore[s.Toko]
		out = append(out, structs.StoreRow{
			Toko:         s.Toko,
			Branch:       s.Branch,
			Pairs:        s.Pairs,
			Revenue:      s.Revenue,
			Transactions: n,
			ATU:          ATU(s.Pairs, n),
			ASP:          ASP(s.Revenue, s.Pairs),
			ATV:          ATV(s.Revenue, n),
		})
	}
	return out
}

// MergeSeries joins per-period sales with per-period transaction counts the
// same way MergeStores does.
func MergeSeries(sales []PeriodSales, txns []KeyedCount) []structs.OverallSeriesPoint {
	byPeriod := countsByKey(txns)

	out := make([]structs.OverallSeriesPoint, 0, len(sales))
	for _, s := range sales {
		out = append(out, structs.OverallSeriesPoint{
			Period:   s.Period,
			Pairs:    s.Pairs,
			Revenue:  s.Revenue,
			TxnCount: byPeriod[s.Period],
		})
	}
	return out
}
