package model

// House is one card on the board. Colors is the upstream colour string
// already split into individual CSS colour candidates.
type House struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Animal  string   `json:"animal"`
	Colors  []string `json:"colors"`
	Founder string   `json:"founder"`
	Traits  []Trait  `json:"traits"`
}

type Trait struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
