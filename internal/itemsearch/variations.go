package itemsearch

import (
	"regexp"
	"strings"

	"github.com/RahulJ0hn/Clarifi/internal/models"
)

// cryptoAliases maps canonical coin names to their common variations.
var cryptoAliases = map[string][]string{
	"bitcoin":      {"btc", "bitcoin", "bit coin"},
	"ethereum":     {"eth", "ethereum"},
	"cardano":      {"ada", "cardano"},
	"solana":       {"sol", "solana"},
	"polkadot":     {"dot", "polkadot"},
	"binance coin": {"bnb", "binance", "binance coin"},
	"ripple":       {"xrp", "ripple"},
}

// NameVariations expands an entity name into the set of strings worth
// matching: crypto names gain their tickers and aliases, short stock names
// gain their upper/lower-case ticker forms.
func NameVariations(itemName string, category models.Category) []string {
	variations := []string{itemName}
	itemLower := strings.ToLower(itemName)

	switch category {
	case models.CategoryCrypto:
		for canonical, aliases := range cryptoAliases {
			if strings.Contains(itemLower, canonical) || containsAny(itemLower, aliases) {
				variations = append(variations, aliases...)
				break
			}
		}
	case models.CategoryStock:
		if len(itemName) <= 5 {
			variations = append(variations, strings.ToUpper(itemName), strings.ToLower(itemName))
		}
	}

	return dedupe(variations)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

var tickerRe = regexp.MustCompile(`^[A-Za-z]{1,5}$`)

var cryptoKeywords = []string{"bitcoin", "btc", "ethereum", "eth", "cardano", "ada", "solana", "sol", "crypto"}

var productKeywords = []string{"iphone", "samsung", "laptop", "phone", "product"}

// DetectCategory resolves CategoryAuto from the entity name. Unknown names
// default to news.
func DetectCategory(itemName string) models.Category {
	itemLower := strings.ToLower(itemName)

	for _, kw := range cryptoKeywords {
		if strings.Contains(itemLower, kw) {
			return models.CategoryCrypto
		}
	}

	if tickerRe.MatchString(itemName) && itemName == strings.ToUpper(itemName) {
		return models.CategoryStock
	}
	if strings.Contains(itemLower, "stock") || strings.Contains(itemLower, "share") {
		return models.CategoryStock
	}

	for _, kw := range productKeywords {
		if strings.Contains(itemLower, kw) {
			return models.CategoryProduct
		}
	}

	return models.CategoryNews
}
