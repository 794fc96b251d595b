package models

// MatchType identifies which search strategy produced a match.
type MatchType string

const (
	MatchTypeDirect   MatchType = "direct_match"
	MatchTypePrice    MatchType = "price_extraction"
	MatchTypeSelector MatchType = "css_selector"
	MatchTypePattern  MatchType = "pattern_match"
)

// SearchMatch is one candidate mention of the tracked entity.
type SearchMatch struct {
	Type       MatchType
	Text       string
	Context    string
	Selector   string
	Pattern    string
	Position   int
	Confidence float64
}

// MarketData holds labeled market-style fields pulled from page text.
type MarketData struct {
	Price     string `json:"price,omitempty"`
	Change24h string `json:"change_24h,omitempty"`
	MarketCap string `json:"market_cap,omitempty"`
	Volume    string `json:"volume,omitempty"`
}

// Empty reports whether no market field was found.
func (m MarketData) Empty() bool {
	return m.Price == "" && m.Change24h == "" && m.MarketCap == "" && m.Volume == ""
}

// SearchResult is the item search engine's output for one page.
type SearchResult struct {
	ItemName   string
	Category   Category
	Matches    []SearchMatch
	BestPrice  string
	AllPrices  []string
	MarketData MarketData
	Confidence float64
}
