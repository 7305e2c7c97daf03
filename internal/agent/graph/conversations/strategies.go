package conversations

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reLatinToken   = regexp.MustCompile(`[A-Za-z][A-Za-z0-9\-]*`)
	reQuoted       = regexp.MustCompile(`["“”«»]([^"“”«»\n]{2,80})["“”«»]`)
	reModelMarker  = regexp.MustCompile(`(?i)\bmodel\s*:\s*([^\n,;]+)`)
	minModelLength = 3
	maxMarkedRunes = 60
)

// stopwords are Latin tokens that never name a product model: common English
// words, verbs operators use in requests and keys of the JSON contract.
var stopwords = toSet(
	// english
	"the", "and", "for", "with", "from", "this", "that", "these", "those", "what", "which", "who",
	"how", "why", "when", "where", "can", "could", "would", "should", "will", "please", "thanks",
	"thank", "you", "your", "our", "all", "any", "are", "was", "were", "has", "have", "had", "its",
	"into", "onto", "about", "also", "but", "not", "now", "new", "old", "again", "check", "show",
	"tell", "give", "get", "set", "make", "let", "want", "need", "like", "one", "two", "each",
	"every", "per", "cent", "percent", "euro", "euros", "eur", "usd", "size", "sizes", "width",
	"color", "colour", "only", "just", "more", "less", "than", "then", "there", "here", "them",
	"they", "him", "her", "his", "she", "hello", "yes", "okay", "product", "products", "item",
	"items", "variation", "variations", "stock", "model", "models", "type", "cm", "much", "many",
	"cost", "costs", "some", "does", "did", "done", "very", "well", "good", "best", "same", "other",
	"another", "still", "over", "under", "after", "before", "back", "out", "off", "see", "look",
	"find", "know", "think", "say", "said", "use", "money", "today", "week", "month", "year", "day",
	"time", "times", "total", "both",
	// request verbs and pricing vocabulary
	"raise", "increase", "decrease", "reduce", "lower", "drop", "add", "remove", "change", "update",
	"convert", "put", "write", "rewrite", "improve", "price", "prices", "pricing", "regular",
	"sale", "sales", "discount", "offer", "description", "descriptions", "short", "long", "seo",
	"title", "meta", "text", "copy", "content", "amount", "value",
	// json contract keys
	"message", "action", "details", "status", "pending", "changeamount", "changedirection",
	"direction", "pricetype", "filterwidth", "widthfilter", "productname", "shortdescription",
	"metatitle", "metadescription", "regularpriceincrease", "true", "false", "null",
	"price_update", "bulk_update_price", "convert_to_sale", "update_description",
)

type category struct {
	Query string
	// Latin forms match whole tokens (plural "s"/"es" tolerated); other forms
	// match as substrings so inflected stems are caught.
	Forms []string
}

// lexicon is the fixed set of category nouns the store sells.
var lexicon = []category{
	{Query: "mattress", Forms: []string{"mattress"}},
	{Query: "στρώμα", Forms: []string{"στρώμα", "στρωμα", "στρώματ", "στρωματ"}},
	{Query: "topper", Forms: []string{"topper"}},
	{Query: "ανώστρωμα", Forms: []string{"ανώστρωμ", "ανωστρωμ"}},
	{Query: "bed", Forms: []string{"bed"}},
	{Query: "κρεβάτι", Forms: []string{"κρεβάτ", "κρεβατ"}},
	{Query: "pillow", Forms: []string{"pillow"}},
	{Query: "μαξιλάρι", Forms: []string{"μαξιλάρ", "μαξιλαρ"}},
	{Query: "headboard", Forms: []string{"headboard"}},
	{Query: "κεφαλάρι", Forms: []string{"κεφαλάρ", "κεφαλαρ"}},
	{Query: "sofa", Forms: []string{"sofa", "couch"}},
	{Query: "καναπές", Forms: []string{"καναπ"}},
	{Query: "duvet", Forms: []string{"duvet", "quilt"}},
	{Query: "πάπλωμα", Forms: []string{"πάπλωμ", "παπλωμ"}},
}

// ModelTokens returns Latin-script tokens of at least three characters that
// are neither stopwords nor category nouns, in order of appearance.
func ModelTokens(text string) []string {
	var out []string
	for _, tok := range reLatinToken.FindAllString(text, -1) {
		tok = strings.Trim(tok, "-")
		if len(tok) < minModelLength {
			continue
		}
		lower := strings.ToLower(tok)
		if _, stop := stopwords[lower]; stop {
			continue
		}
		if isCategoryToken(lower) {
			continue
		}
		out = append(out, tok)
	}
	return dedupe(out)
}

// Categories returns the canonical query of every lexicon category mentioned.
func Categories(text string) []string {
	lower := strings.ToLower(text)
	tokens := make(map[string]struct{})
	for _, tok := range reLatinToken.FindAllString(lower, -1) {
		tokens[singular(tok)] = struct{}{}
	}
	var out []string
	for _, c := range lexicon {
		for _, form := range c.Forms {
			if matchesForm(lower, tokens, form) {
				out = append(out, c.Query)
				break
			}
		}
	}
	return out
}

// QuotedPhrases returns text enclosed in double quotes, curly quotes or guillemets.
func QuotedPhrases(text string) []string {
	var out []string
	for _, m := range reQuoted.FindAllStringSubmatch(text, -1) {
		if s := strings.TrimSpace(m[1]); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MarkedModels returns the text following an explicit "model:" marker.
func MarkedModels(text string) []string {
	var out []string
	for _, m := range reModelMarker.FindAllStringSubmatch(text, -1) {
		s := strings.TrimSpace(strings.TrimRight(m[1], ". "))
		if r := []rune(s); len(r) > maxMarkedRunes {
			s = strings.TrimSpace(string(r[:maxMarkedRunes]))
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CategoryModelQueries combines each detected category with each model token.
func CategoryModelQueries(categories, models []string) []string {
	var out []string
	for _, c := range categories {
		for _, m := range models {
			out = append(out, c+" "+m)
		}
	}
	return out
}

// CategoryOnlyQueries falls back to bare categories when no model was found.
func CategoryOnlyQueries(categories, models []string) []string {
	if len(models) > 0 {
		return nil
	}
	return categories
}

func isCategoryToken(lower string) bool {
	s := singular(lower)
	for _, c := range lexicon {
		for _, form := range c.Forms {
			if isLatin(form) && s == form {
				return true
			}
		}
	}
	return false
}

func matchesForm(lower string, tokens map[string]struct{}, form string) bool {
	if isLatin(form) {
		_, ok := tokens[form]
		return ok
	}
	return strings.Contains(lower, form)
}

func singular(tok string) string {
	switch {
	case strings.HasSuffix(tok, "sses"), strings.HasSuffix(tok, "shes"), strings.HasSuffix(tok, "ches"):
		return tok[:len(tok)-2]
	case strings.HasSuffix(tok, "ss"):
		return tok
	case strings.HasSuffix(tok, "s") && len(tok) > 3:
		return tok[:len(tok)-1]
	}
	return tok
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// dedupe drops case-insensitive repeats, keeping the first spelling.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
