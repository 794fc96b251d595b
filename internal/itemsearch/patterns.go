package itemsearch

import (
	"regexp"

	"github.com/RahulJ0hn/Clarifi/internal/models"
)

// PricePattern is one entry in the priority-ordered price extraction table.
// Priority is an explicit field: higher tiers win over lower tiers regardless
// of match position. Categories limits applicability; empty means all.
type PricePattern struct {
	Name       string
	Expr       *regexp.Regexp
	Priority   int
	Categories []models.Category
}

// AppliesTo reports whether the pattern participates for a category.
func (p PricePattern) AppliesTo(category models.Category) bool {
	if len(p.Categories) == 0 {
		return true
	}
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// PricePatterns is the ordered extraction table. Tiers, highest first:
// entity-prefixed amounts, explicit price/value labels, currency-symbol
// amounts, grouped large numbers, bare numbers.
var PricePatterns = []PricePattern{
	{
		Name:       "bitcoin_prefixed",
		Expr:       regexp.MustCompile(`(?i)Bitcoin.{0,40}?[\$€£¥₹]?\s*[\d,]+\.?\d*`),
		Priority:   100,
		Categories: []models.Category{models.CategoryCrypto},
	},
	{
		Name:       "btc_prefixed",
		Expr:       regexp.MustCompile(`(?i)BTC.{0,40}?[\$€£¥₹]?\s*[\d,]+\.?\d*`),
		Priority:   100,
		Categories: []models.Category{models.CategoryCrypto},
	},
	{
		Name:       "ethereum_prefixed",
		Expr:       regexp.MustCompile(`(?i)Ethereum.{0,40}?[\$€£¥₹]?\s*[\d,]+\.?\d*`),
		Priority:   100,
		Categories: []models.Category{models.CategoryCrypto},
	},
	{
		Name:       "eth_prefixed",
		Expr:       regexp.MustCompile(`(?i)ETH.{0,40}?[\$€£¥₹]?\s*[\d,]+\.?\d*`),
		Priority:   100,
		Categories: []models.Category{models.CategoryCrypto},
	},
	{
		Name:     "price_label",
		Expr:     regexp.MustCompile(`(?i)Price:\s*[\$€£¥₹]?\s*[\d,]+\.?\d*`),
		Priority: 80,
	},
	{
		Name:     "current_price_label",
		Expr:     regexp.MustCompile(`(?i)Current Price:\s*[\$€£¥₹]?\s*[\d,]+\.?\d*`),
		Priority: 80,
	},
	{
		Name:     "value_label",
		Expr:     regexp.MustCompile(`(?i)Value:\s*[\$€£¥₹]?\s*[\d,]+\.?\d*`),
		Priority: 80,
	},
	{
		Name:       "cost_label",
		Expr:       regexp.MustCompile(`(?i)Cost:\s*[\$€£¥₹]?\s*[\d,]+\.?\d*`),
		Priority:   80,
		Categories: []models.Category{models.CategoryProduct},
	},
	{
		Name:     "currency_symbol",
		Expr:     regexp.MustCompile(`[\$€£¥₹]\s*[\d,]+\.?\d*`),
		Priority: 60,
	},
	{
		Name:     "currency_code",
		Expr:     regexp.MustCompile(`[\d,]+\.?\d*\s*(?:USD|EUR|GBP|JPY|INR|BTC|ETH)`),
		Priority: 60,
	},
	{
		Name:       "grouped_number",
		Expr:       regexp.MustCompile(`[\$€£¥₹]?\s*\d{1,3}(?:,\d{3})+\.?\d*`),
		Priority:   40,
		Categories: []models.Category{models.CategoryCrypto},
	},
	{
		Name:     "bare_number",
		Expr:     regexp.MustCompile(`[\d,]+\.?\d*`),
		Priority: 20,
	},
}

// categoryPatterns are the generic per-category patterns for the
// pattern-near-entity strategy.
var categoryPatterns = map[models.Category][]*regexp.Regexp{
	models.CategoryCrypto: {
		regexp.MustCompile(`(?i)bitcoin|btc|ethereum|eth|cardano|ada|solana|sol|polkadot|dot|binance|bnb|ripple|xrp`),
		regexp.MustCompile(`[\$€£¥₹]\s*[\d,]+\.?\d*`),
		regexp.MustCompile(`[\d,]+\.?\d*\s*(?:USD|EUR|GBP|JPY|INR|BTC|ETH)`),
	},
	models.CategoryStock: {
		regexp.MustCompile(`(?i)stock|share|trading|market cap`),
		regexp.MustCompile(`[\$€£¥₹]\s*[\d,]+\.?\d*`),
		regexp.MustCompile(`[\d,]+\.?\d*\s*(?:USD|EUR|GBP|JPY|INR)`),
	},
	models.CategoryProduct: {
		regexp.MustCompile(`(?i)product|item|buy|purchase|price`),
		regexp.MustCompile(`[\$€£¥₹]\s*[\d,]+\.?\d*`),
	},
	models.CategoryNews: {
		regexp.MustCompile(`(?i)headline|title|article|news`),
	},
}

// categorySelectors are the structural-match CSS selectors per category.
var categorySelectors = map[models.Category][]string{
	models.CategoryCrypto: {
		".price", ".value", "[data-price]", ".crypto-price", ".coin-price", ".current-price", ".price-value",
	},
	models.CategoryStock: {
		".price", ".value", "[data-price]", ".stock-price", ".current-price", ".price-value",
	},
	models.CategoryProduct: {
		".price", ".product-price", "[data-price]", ".sale-price", ".current-price",
	},
	models.CategoryNews: {
		".title", ".headline", ".article-title", "h1", "h2",
	},
}

// Market-data block extraction: labeled fields independent of name matching.
var (
	marketPriceRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Price[:\s]*\$([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)Value[:\s]*\$([\d,]+\.?\d*)`),
		regexp.MustCompile(`\$([\d,]+\.?\d*)`),
	}
	marketCapRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Market Cap[:\s]*\$([\d,]+\.?\d*[KMB]?)`),
		regexp.MustCompile(`(?i)Cap[:\s]*\$([\d,]+\.?\d*[KMB]?)`),
		regexp.MustCompile(`(?i)\$([\d,]+\.?\d*[KMB]?)\s*Market Cap`),
	}
	marketVolumeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Volume[:\s]*\$([\d,]+\.?\d*[KMB]?)`),
		regexp.MustCompile(`(?i)24h Vol[:\s]*\$([\d,]+\.?\d*[KMB]?)`),
		regexp.MustCompile(`(?i)\$([\d,]+\.?\d*[KMB]?)\s*Volume`),
	}
	marketChangeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)24h[:\s]*([+-]?)(\d+\.?\d*)%`),
		regexp.MustCompile(`(?i)Change[:\s]*([+-]?)(\d+\.?\d*)%`),
		regexp.MustCompile(`([+-]?)(\d+\.?\d*)%`),
	}
)
