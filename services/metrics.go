package services

import (
	"math"

	"github.com/aidenappl/retail-core/structs"
)

// ratio divides, returning exactly 0 for a zero denominator
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// ATU is units per transaction
func ATU(pairs, transactions float64) float64 { return ratio(pairs, transactions) }

// ASP is revenue per unit
func ASP(revenue, pairs float64) float64 { return ratio(revenue, pairs) }

// ATV is revenue per transaction
func ATV(revenue, transactions float64) float64 { return ratio(revenue, transactions) }

// PromoShare is the fraction of units sold under a promotion
func PromoShare(qtyPromo, qtyAll float64) float64 { return ratio(qtyPromo, qtyAll) }

// PriceBand is an inclusive price range. Max < 0 means unbounded.
type PriceBand struct {
	Label string
	Min   float64
	Max   float64
}

// PriceBands are the fixed bands average product prices are bucketed into.
var PriceBands = []PriceBand{
	{Label: "0-50K", Min: 0, Max: 50000},
	{Label: "50-100K", Min: 50001, Max: 100000},
	{Label: "100-150K", Min: 100001, Max: 150000},
	{Label: "150-200K", Min: 150001, Max: 200000},
	{Label: "200-300K", Min: 200001, Max: 300000},
	{Label: "300-500K", Min: 300001, Max: 500000},
	{Label: "500K+", Min: 500001, Max: -1},
}

// ProductSales are the summed measures of one product code
type ProductSales struct {
	Kode    string
	Revenue float64
	Pairs   float64
}

// bandIndex returns the band of a rounded price. Prices below the first
// band are counted in it.
func bandIndex(price float64) int {
	for i, band := range PriceBands {
		if band.Max < 0 || price <= band.Max {
			return i
		}
	}
	return len(PriceBands) - 1
}

// BucketPrices sums pairs per price band. A product's price is its rounded
// average selling price; products without pairs are skipped. Bands with no
// pairs are left out.
func BucketPrices(products []ProductSales) []structs.PriceBand {
	sums := make([]float64, len(PriceBands))
	for _, p := range products {
		if p.Pairs <= 0 {
			continue
		}
		price := math.Round(p.Revenue / p.Pairs)
		sums[bandIndex(price)] += p.Pairs
	}

	out := []structs.PriceBand{}
	for i, band := range PriceBands {
		if sums[i] > 0 {
			out = append(out, structs.PriceBand{Label: band.Label, Pairs: sums[i]})
		}
	}
	return out
}
