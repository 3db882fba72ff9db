// Keyword and topic derivation for logged chef chat interactions.
package app

import (
	"regexp"
	"strings"
)

var reWord = regexp.MustCompile(`\b\w{3,}\b`)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "have": {}, "has": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"what": {}, "how": {}, "why": {}, "can": {}, "could": {}, "would": {}, "should": {},
	"may": {}, "might": {}, "must": {}, "shall": {},
}

const maxKeywords = 15

// extractKeywords collects distinct non-stopword tokens of three or more
// characters across the given texts, capped at maxKeywords.
func extractKeywords(texts ...string) []string {
	seen := map[string]struct{}{}
	var keywords []string
	for _, text := range texts {
		for _, word := range reWord.FindAllString(strings.ToLower(text), -1) {
			if _, stop := stopwords[word]; stop {
				continue
			}
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			keywords = append(keywords, word)
			if len(keywords) == maxKeywords {
				return keywords
			}
		}
	}
	return keywords
}

// extractTopic buckets a user query into a coarse topic label.
func extractTopic(query string) string {
	q := strings.ToLower(query)

	switch {
	case strings.Contains(q, "ingredient") || strings.Contains(q, "substitute"):
		return "ingredient_substitution"
	case strings.Contains(q, "technique") || strings.Contains(q, "how to"):
		return "cooking_technique"
	case strings.Contains(q, "nutrition") || strings.Contains(q, "calorie"):
		return "nutrition"
	case strings.Contains(q, "pairing") || strings.Contains(q, "wine") || strings.Contains(q, "side"):
		return "food_pairing"
	case strings.Contains(q, "diet") || strings.Contains(q, "vegan") || strings.Contains(q, "gluten"):
		return "dietary_restriction"
	case strings.Contains(q, "recipe") || strings.Contains(q, "make"):
		return "recipe_help"
	case strings.Contains(q, "storage") || strings.Contains(q, "preserve"):
		return "storage_preservation"
	default:
		return "general_cooking_advice"
	}
}
