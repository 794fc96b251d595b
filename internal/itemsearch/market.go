package itemsearch

import (
	"strings"

	"github.com/RahulJ0hn/Clarifi/internal/models"
)

// ExtractMarketData pulls labeled price / 24h-change / market-cap / volume
// fields from page text. It is independent of entity name matching; absent
// fields stay empty.
func ExtractMarketData(content string) models.MarketData {
	var data models.MarketData

	for _, re := range marketPriceRes {
		if m := re.FindStringSubmatch(content); m != nil {
			data.Price = "$" + m[1]
			break
		}
	}

	for _, re := range marketCapRes {
		if m := re.FindStringSubmatch(content); m != nil {
			data.MarketCap = "$" + m[1]
			break
		}
	}

	for _, re := range marketVolumeRes {
		if m := re.FindStringSubmatch(content); m != nil {
			data.Volume = "$" + m[1]
			break
		}
	}

	for _, re := range marketChangeRes {
		if m := re.FindStringSubmatch(content); m != nil {
			data.Change24h = m[1] + m[2] + "%"
			break
		}
	}

	return data
}

// FormatSearchValue renders a search result as the canonical stored value for
// an item-search monitor: best price when one was found, market data and top
// matches otherwise.
func FormatSearchValue(result models.SearchResult) string {
	parts := make([]string, 0, 4)

	if result.BestPrice != "" {
		parts = append(parts, "Price: "+result.BestPrice)
	}

	if !result.MarketData.Empty() {
		md := make([]string, 0, 3)
		if result.MarketData.Price != "" && result.BestPrice == "" {
			md = append(md, "Price: "+result.MarketData.Price)
		}
		if result.MarketData.Change24h != "" {
			md = append(md, "24h: "+result.MarketData.Change24h)
		}
		if result.MarketData.MarketCap != "" {
			md = append(md, "Market Cap: "+result.MarketData.MarketCap)
		}
		if len(md) > 0 {
			parts = append(parts, strings.Join(md, " | "))
		}
	}

	if len(parts) == 0 {
		limit := len(result.Matches)
		if limit > 3 {
			limit = 3
		}
		for _, m := range result.Matches[:limit] {
			parts = append(parts, m.Text)
		}
	}

	if len(parts) == 0 {
		return "No data found"
	}
	return strings.Join(parts, " | ")
}
