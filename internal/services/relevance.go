package services

import (
	"regexp"
	"strings"

	"marketpulse/internal/models"
)

// Relevance scoring is a pure keyword-overlap heuristic: no I/O, no state.
// The title carries more weight than the body, and a literal symbol mention
// in the title earns a flat bonus.

const (
	titleOverlapWeight = 0.6
	bodyOverlapWeight  = 0.4
	symbolTitleBonus   = 0.15
	minTokenLength     = 3
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]+`)

// BuildAssetKeywords collects the lowercased terms that identify an asset:
// its symbol, the significant words of its name, and any metadata aliases.
func BuildAssetKeywords(asset *models.Asset) map[string]struct{} {
	keywords := make(map[string]struct{})
	if asset == nil {
		return keywords
	}

	if asset.Symbol != "" {
		keywords[strings.ToLower(asset.Symbol)] = struct{}{}
	}
	for _, w := range tokenize(asset.Name) {
		keywords[w] = struct{}{}
	}
	for _, alias := range asset.Metadata.Aliases {
		if a := strings.TrimSpace(alias); a != "" {
			keywords[strings.ToLower(a)] = struct{}{}
		}
	}

	return keywords
}

// tokenize lowercases, strips non-alphanumeric characters, splits on
// whitespace and drops short words.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	cleaned := nonAlphanumeric.ReplaceAllString(strings.ToLower(text), "")

	var tokens []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) >= minTokenLength {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// overlapRatio counts token hits against the keyword set, normalized by the
// keyword-set size. Repeated hits count repeatedly; the final score clamp
// bounds the effect.
func overlapRatio(tokens []string, keywords map[string]struct{}) float64 {
	if len(tokens) == 0 || len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, t := range tokens {
		if _, ok := keywords[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

// ComputeRelevance scores how strongly an article pertains to an asset,
// in [0, 1].
func ComputeRelevance(asset *models.Asset, article *models.NewsArticle) float64 {
	keywords := BuildAssetKeywords(asset)
	if len(keywords) == 0 {
		return 0
	}

	titleTokens := tokenize(article.Title)
	bodyTokens := tokenize(article.Text)

	score := titleOverlapWeight*overlapRatio(titleTokens, keywords) +
		bodyOverlapWeight*overlapRatio(bodyTokens, keywords)

	// Only title mentions earn the bonus; body mentions deliberately do not.
	if asset.Symbol != "" {
		symbol := strings.ToLower(asset.Symbol)
		for _, t := range titleTokens {
			if t == symbol {
				score += symbolTitleBonus
				break
			}
		}
	}

	return clamp01(score)
}

// clamp01 bounds v into [0, 1].
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
