package structs

// PromoMeasures are the summed promo fact measures of one group
type PromoMeasures struct {
	QtyAll        float64 `json:"qtyAll"`
	QtyPromo      float64 `json:"qtyPromo"`
	Revenue       float64 `json:"revenue"`
	DiscountTotal float64 `json:"discountTotal"`
	TxnCount      float64 `json:"txnCount"`
}

// PromoKPIs are the promo totals and their ratios
type PromoKPIs struct {
	PromoMeasures
	PromoShare float64 `json:"promoShare"`
	ATU        float64 `json:"atu"`
	ASP        float64 `json:"asp"`
	ATV        float64 `json:"atv"`
}

// OverallKPIs are sales totals over the same period, branch and store
// without any promo restriction
type OverallKPIs struct {
	Pairs    float64 `json:"pairs"`
	Revenue  float64 `json:"revenue"`
	TxnCount float64 `json:"txnCount"`
	ATU      float64 `json:"atu"`
	ASP      float64 `json:"asp"`
	ATV      float64 `json:"atv"`
}

type PromoSeriesPoint struct {
	Period string `json:"period"`
	PromoMeasures
}

type OverallSeriesPoint struct {
	Period   string  `json:"period"`
	Pairs    float64 `json:"pairs"`
	Revenue  float64 `json:"revenue"`
	TxnCount float64 `json:"txnCount"`
}

type CampaignRow struct {
	Campaign *string `json:"campaign"`
	PromoMeasures
}

type PromoStoreRow struct {
	Toko   *string `json:"toko"`
	Branch *string `json:"branch"`
	PromoMeasures
}

type OverallStoreRow struct {
	Toko     string  `json:"toko"`
	Branch   *string `json:"branch"`
	Pairs    float64 `json:"pairs"`
	Revenue  float64 `json:"revenue"`
	TxnCount float64 `json:"txnCount"`
}

// StaffRow is one sales promotion staff member of the leaderboard
type StaffRow struct {
	SPG      *string `json:"spg"`
	QtyPromo float64 `json:"qtyPromo"`
	QtyAll   float64 `json:"qtyAll"`
	Revenue  float64 `json:"revenue"`
	TxnCount float64 `json:"txnCount"`
}

type CampaignOption struct {
	Code *string `json:"code"`
	Name *string `json:"name"`
}

// Promo is the response of GET /v1/promo
type Promo struct {
	PromoKPIs         PromoKPIs            `json:"promoKpis"`
	OverallKPIs       OverallKPIs          `json:"overallKpis"`
	TimeSeries        []PromoSeriesPoint   `json:"timeSeries"`
	OverallTimeSeries []OverallSeriesPoint `json:"overallTimeSeries"`
	ByCampaign        []CampaignRow        `json:"byCampaign"`
	Stores            []PromoStoreRow      `json:"stores"`
	OverallStores     []OverallStoreRow    `json:"overallStores"`
	SPGLeaderboard    []StaffRow           `json:"spgLeaderboard"`
	CampaignOptions   []CampaignOption     `json:"campaignOptions"`
}

// NewPromo returns a promo response with every list initialised
func NewPromo() *Promo {
	return &Promo{
		TimeSeries:        []PromoSeriesPoint{},
		OverallTimeSeries: []OverallSeriesPoint{},
		ByCampaign:        []CampaignRow{},
		Stores:            []PromoStoreRow{},
		OverallStores:     []OverallStoreRow{},
		SPGLeaderboard:    []StaffRow{},
		CampaignOptions:   []CampaignOption{},
	}
}
