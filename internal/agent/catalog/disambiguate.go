package catalog

import (
	"strings"

	"github.com/catalog-assistant/server/internal/agent/model"
)

// keywordRule prefers a search hit of one product family when the
// instruction names that family.
type keywordRule struct {
	name    string
	words   []string
	exclude []string
}

// keywordRules are evaluated in order; the first rule that matches both the
// instruction and at least one hit wins.
var keywordRules = []keywordRule{
	{name: "topper", words: []string{"topper", "ανώστρωμα", "ανωστρωμα"}},
	{name: "pillow", words: []string{"pillow", "μαξιλάρι", "μαξιλαρι"}},
	{name: "headboard", words: []string{"headboard", "κεφαλάρι", "κεφαλαρι"}},
	{name: "duvet", words: []string{"duvet", "quilt", "πάπλωμα", "παπλωμα"}},
	{name: "sofa", words: []string{"sofa", "couch", "καναπέ", "καναπε"}},
	{name: "bed", words: []string{"bed frame", "κρεβάτι", "κρεβατι"}},
	// "mattress" alone must not pick the topper of the same model.
	{name: "mattress", words: []string{"mattress", "στρώμα", "στρωμα"}, exclude: []string{"topper", "ανώστρωμα", "ανωστρωμα"}},
}

// Disambiguate picks one product from a non-empty result list: the first hit
// by default, the first hit containing a model token when there is one, and
// finally the first matching keyword rule.
func Disambiguate(results []model.CatalogProduct, modelTokens []string, instruction string) model.CatalogProduct {
	chosen := results[0]
	if hit, ok := firstWithToken(results, modelTokens); ok {
		chosen = hit
	}

	text := strings.ToLower(instruction)
	for _, rule := range keywordRules {
		if !containsAny(text, rule.words) {
			continue
		}
		var family []model.CatalogProduct
		for _, r := range results {
			name := strings.ToLower(r.Name)
			if containsAny(name, rule.words) && !containsAny(name, rule.exclude) {
				family = append(family, r)
			}
		}
		if len(family) == 0 {
			continue
		}
		if hit, ok := firstWithToken(family, modelTokens); ok {
			return hit
		}
		return family[0]
	}
	return chosen
}

func firstWithToken(results []model.CatalogProduct, tokens []string) (model.CatalogProduct, bool) {
	for _, token := range tokens {
		token = strings.ToLower(token)
		for _, r := range results {
			if strings.Contains(strings.ToLower(r.Name), token) {
				return r, true
			}
		}
	}
	return model.CatalogProduct{}, false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
