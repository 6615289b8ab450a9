package structs

// FilterOptions lists the selectable values of every filter dimension
type FilterOptions struct {
	Branches []string `json:"branches"`
	Stores   []string `json:"stores"`
	Genders  []string `json:"genders"`
	Series   []string `json:"series"`
	Colors   []string `json:"colors"`
	Tiers    []string `json:"tiers"`
	Tipes    []string `json:"tipes"`
	Payments []string `json:"payments"`
}
