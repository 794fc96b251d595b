package itemsearch

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RahulJ0hn/Clarifi/internal/models"
	"github.com/RahulJ0hn/Clarifi/internal/normalizer"
	"github.com/rs/zerolog"
)

const (
	directMatchConfidence   = 0.9
	priceMatchConfidence    = 0.8
	selectorMatchConfidence = 0.7
	patternMatchConfidence  = 0.6
	marketDataConfidence    = 0.7

	// Characters of surrounding text kept with each match, and the window
	// used to decide whether a price sits near an entity mention.
	matchContextChars = 150
	nearWindowChars   = 200
)

// Engine locates mentions and market-style values of a named entity in page
// content. It is stateless; one instance serves all monitors.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine creates a new item search engine.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		logger: logger.With().Str("component", "ItemSearchEngine").Logger(),
	}
}

// Search runs all strategies in priority order against the page and returns
// ranked, deduplicated matches plus the best price candidate.
func (e *Engine) Search(markup, plainText, itemName string, category models.Category) models.SearchResult {
	if category == models.CategoryAuto || category == "" {
		category = DetectCategory(itemName)
		e.logger.Debug().Str("item", itemName).Str("category", string(category)).Msg("Auto-detected item category")
	}

	variations := NameVariations(itemName, category)
	result := models.SearchResult{
		ItemName: itemName,
		Category: category,
	}

	result.Matches = append(result.Matches, e.directMatches(plainText, variations)...)

	candidates := e.collectPriceCandidates(plainText, category, variations)
	for _, c := range candidates {
		result.Matches = append(result.Matches, models.SearchMatch{
			Type:       models.MatchTypePrice,
			Text:       c.cleaned,
			Context:    contextAround(plainText, c.position, len(c.raw)),
			Pattern:    c.pattern,
			Position:   c.position,
			Confidence: priceMatchConfidence,
		})
		result.AllPrices = append(result.AllPrices, c.cleaned)
	}
	result.BestPrice = selectBestPrice(candidates, category)

	if markup != "" {
		result.Matches = append(result.Matches, e.structuralMatches(markup, category, variations)...)
	}

	result.Matches = append(result.Matches, e.patternMatches(plainText, category, variations)...)

	if category == models.CategoryCrypto || category == models.CategoryStock {
		result.MarketData = ExtractMarketData(plainText)
		if !result.MarketData.Empty() {
			result.Confidence = marketDataConfidence
		}
	}

	result.Matches = dedupeMatches(result.Matches)
	sort.SliceStable(result.Matches, func(i, j int) bool {
		if result.Matches[i].Confidence != result.Matches[j].Confidence {
			return result.Matches[i].Confidence > result.Matches[j].Confidence
		}
		return result.Matches[i].Position < result.Matches[j].Position
	})

	for _, m := range result.Matches {
		if m.Confidence > result.Confidence {
			result.Confidence = m.Confidence
		}
	}

	return result
}

// directMatches finds literal occurrences of name variations with context.
func (e *Engine) directMatches(content string, variations []string) []models.SearchMatch {
	var matches []models.SearchMatch
	contentLower := strings.ToLower(content)

	for _, variation := range variations {
		needle := strings.ToLower(variation)
		for start := 0; ; {
			pos := strings.Index(contentLower[start:], needle)
			if pos < 0 {
				break
			}
			pos += start
			matches = append(matches, models.SearchMatch{
				Type:       models.MatchTypeDirect,
				Text:       content[pos : pos+len(needle)],
				Context:    contextAround(content, pos, len(needle)),
				Position:   pos,
				Confidence: directMatchConfidence,
			})
			start = pos + 1
		}
	}
	return matches
}

type priceCandidate struct {
	cleaned  string
	raw      string
	position int
	priority int
	pattern  string
	numeric  float64
}

// collectPriceCandidates walks the priority-ordered pattern table and keeps
// cleaned, validated amounts whose surrounding context mentions the entity.
func (e *Engine) collectPriceCandidates(content string, category models.Category, variations []string) []priceCandidate {
	var candidates []priceCandidate

	for _, pattern := range PricePatterns {
		if !pattern.AppliesTo(category) {
			continue
		}
		for _, loc := range pattern.Expr.FindAllStringIndex(content, -1) {
			raw := content[loc[0]:loc[1]]
			cleaned := normalizer.Clean(amountIn(raw))
			if cleaned == "" || !normalizer.Validate(cleaned, category) {
				continue
			}
			if !nearVariation(content, loc[0], variations) {
				continue
			}
			candidates = append(candidates, priceCandidate{
				cleaned:  cleaned,
				raw:      raw,
				position: loc[0],
				priority: pattern.Priority,
				pattern:  pattern.Name,
				numeric:  normalizer.ToNumeric(cleaned),
			})
		}
	}
	return candidates
}

// selectBestPrice applies the tie-break rule: higher pattern tier first;
// within a tier crypto prefers the largest plausible value (candidates at or
// below $10 discarded), other categories the earliest occurrence.
func selectBestPrice(candidates []priceCandidate, category models.Category) string {
	if len(candidates) == 0 {
		return ""
	}

	pool := candidates
	if category == models.CategoryCrypto {
		plausible := make([]priceCandidate, 0, len(candidates))
		for _, c := range candidates {
			if normalizer.IsLikelyCryptoPrice(c.cleaned) {
				plausible = append(plausible, c)
			}
		}
		if len(plausible) > 0 {
			pool = plausible
		}
	}

	best := pool[0]
	for _, c := range pool[1:] {
		if c.priority != best.priority {
			if c.priority > best.priority {
				best = c
			}
			continue
		}
		if category == models.CategoryCrypto {
			if c.numeric > best.numeric {
				best = c
			}
		} else if c.position < best.position {
			best = c
		}
	}
	return best.cleaned
}

// structuralMatches evaluates the category's CSS selectors against the markup
// and keeps elements whose text mentions the entity.
func (e *Engine) structuralMatches(markup string, category models.Category, variations []string) []models.SearchMatch {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		e.logger.Debug().Err(err).Msg("Skipping structural match, markup unparsable")
		return nil
	}

	var matches []models.SearchMatch
	for _, selector := range categorySelectors[category] {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if text == "" || !containsVariation(text, variations) {
				return
			}
			matches = append(matches, models.SearchMatch{
				Type:       models.MatchTypeSelector,
				Text:       text,
				Selector:   selector,
				Confidence: selectorMatchConfidence,
			})
		})
	}
	return matches
}

// patternMatches keeps generic category pattern hits that sit near an entity mention.
func (e *Engine) patternMatches(content string, category models.Category, variations []string) []models.SearchMatch {
	var matches []models.SearchMatch
	for _, re := range categoryPatterns[category] {
		for _, loc := range re.FindAllStringIndex(content, -1) {
			if !nearVariation(content, loc[0], variations) {
				continue
			}
			matches = append(matches, models.SearchMatch{
				Type:       models.MatchTypePattern,
				Text:       content[loc[0]:loc[1]],
				Pattern:    re.String(),
				Position:   loc[0],
				Confidence: patternMatchConfidence,
			})
		}
	}
	return matches
}

// BestPriceFromText extracts the single best price from free text without
// requiring entity proximity. It is used to canonicalize stored monitor
// values, where the text is already scoped to the entity.
func (e *Engine) BestPriceFromText(text string, category models.Category) string {
	if text == "" {
		return ""
	}

	if category == models.CategoryCrypto {
		if price := entityLinePrice(text); price != "" {
			return price
		}
	}

	var candidates []priceCandidate
	for _, pattern := range PricePatterns {
		if !pattern.AppliesTo(category) {
			continue
		}
		for _, loc := range pattern.Expr.FindAllStringIndex(text, -1) {
			raw := text[loc[0]:loc[1]]
			cleaned := normalizer.Clean(amountIn(raw))
			if cleaned == "" || !normalizer.Validate(cleaned, category) {
				continue
			}
			candidates = append(candidates, priceCandidate{
				cleaned:  cleaned,
				raw:      raw,
				position: loc[0],
				priority: pattern.Priority,
				pattern:  pattern.Name,
				numeric:  normalizer.ToNumeric(cleaned),
			})
		}
	}
	return selectBestPrice(candidates, category)
}

// entityLinePrice handles market listing layouts where the coin name sits on
// one line and its price on the same or the following line.
func entityLinePrice(text string) string {
	lines := strings.Split(text, "\n")
	symbolAmount := PricePatterns[indexOfPattern("currency_symbol")].Expr

	for i, line := range lines {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "bitcoin") && !strings.Contains(lower, "btc") {
			continue
		}
		for _, candidate := range []string{line, lineAt(lines, i+1)} {
			if candidate == "" {
				continue
			}
			if raw := symbolAmount.FindString(candidate); raw != "" {
				cleaned := normalizer.Clean(raw)
				if cleaned != "" && normalizer.Validate(cleaned, models.CategoryCrypto) {
					return cleaned
				}
			}
		}
	}
	return ""
}

var amountRe = regexp.MustCompile(`[\$€£¥₹]\s*[\d,]+\.?\d*|[\d,]+\.?\d*`)

// amountIn isolates the monetary amount inside a pattern match, which for the
// entity-prefixed tiers includes the entity text itself.
func amountIn(raw string) string {
	return amountRe.FindString(raw)
}

func lineAt(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[i])
}

func indexOfPattern(name string) int {
	for i, p := range PricePatterns {
		if p.Name == name {
			return i
		}
	}
	return 0
}

// nearVariation reports whether any name variation occurs within the window
// around a position.
func nearVariation(content string, pos int, variations []string) bool {
	start := pos - nearWindowChars
	if start < 0 {
		start = 0
	}
	end := pos + nearWindowChars
	if end > len(content) {
		end = len(content)
	}
	window := strings.ToLower(content[start:end])
	for _, v := range variations {
		if strings.Contains(window, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

func containsVariation(text string, variations []string) bool {
	lower := strings.ToLower(text)
	for _, v := range variations {
		if strings.Contains(lower, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

func contextAround(content string, pos, matchLen int) string {
	start := pos - matchContextChars
	if start < 0 {
		start = 0
	}
	end := pos + matchLen + matchContextChars
	if end > len(content) {
		end = len(content)
	}
	return content[start:end]
}

func dedupeMatches(matches []models.SearchMatch) []models.SearchMatch {
	seen := make(map[string]struct{}, len(matches))
	out := make([]models.SearchMatch, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.Text]; ok {
			continue
		}
		seen[m.Text] = struct{}{}
		out = append(out, m)
	}
	return out
}
