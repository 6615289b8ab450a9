package structs

// DetailRow is one store/product group of the detail table
type DetailRow struct {
	Toko      *string `json:"toko"`
	Kode      *string `json:"kode,omitempty"` // kode mode only
	KodeBesar *string `json:"kode_besar"`
	Article   *string `json:"article"`
	Gender    *string `json:"gender"`
	Series    *string `json:"series"`
	Color     *string `json:"color"`
	Tipe      *string `json:"tipe"`
	Tier      *string `json:"tier"`
	Pairs     float64 `json:"pairs"`
	Revenue   float64 `json:"revenue"`
	AvgPrice  float64 `json:"avg_price"`
}

// DetailTotals are the measures summed over every matching group
type DetailTotals struct {
	Pairs   float64 `json:"pairs"`
	Revenue float64 `json:"revenue"`
}

// Detail is the response of GET /v1/detail
type Detail struct {
	Rows   []DetailRow  `json:"rows"`
	Total  uint64       `json:"total"`
	Page   int          `json:"page"`
	Pages  int          `json:"pages"`
	Totals DetailTotals `json:"totals"`
}
