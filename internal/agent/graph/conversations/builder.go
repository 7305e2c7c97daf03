package conversations

import (
	"github.com/catalog-assistant/server/internal/agent/model"
	logx "github.com/catalog-assistant/server/pkg/logger"
)

const (
	defaultHistoryWindow    = 4
	defaultShortInstruction = 40
	defaultMaxQueries       = 8
)

// hints are the detections shared by the query strategies.
type hints struct {
	text       string
	models     []string
	categories []string
}

// queryStrategies run in this fixed order; each may contribute nothing.
// Category detection itself emits no query: it only feeds the combinations.
// None of them runs unless a model token or a category was detected.
var queryStrategies = []struct {
	name string
	run  func(h hints) []string
}{
	{"model_tokens", func(h hints) []string { return h.models }},
	{"quoted", func(h hints) []string { return QuotedPhrases(h.text) }},
	{"model_marker", func(h hints) []string { return MarkedModels(h.text) }},
	{"category_model", func(h hints) []string { return CategoryModelQueries(h.categories, h.models) }},
	{"category_only", func(h hints) []string { return CategoryOnlyQueries(h.categories, h.models) }},
}

// Builder derives candidate catalog queries from an instruction.
type Builder struct {
	window     int
	shortRunes int
	maxQueries int
}

func NewBuilder(cfg model.ContextConfig) *Builder {
	b := &Builder{
		window:     cfg.HistoryWindow,
		shortRunes: cfg.ShortInstruction,
		maxQueries: cfg.MaxCandidateQueries,
	}
	if b.window <= 0 {
		b.window = defaultHistoryWindow
	}
	if b.shortRunes <= 0 {
		b.shortRunes = defaultShortInstruction
	}
	if b.maxQueries <= 0 {
		b.maxQueries = defaultMaxQueries
	}
	return b
}

// Build never fails: an instruction matching nothing yields an empty plan.
func (b *Builder) Build(in model.Instruction) model.QueryPlan {
	history := FilterHistory(in.History, b.window)
	text := WorkingText(in.Text, history, b.shortRunes)

	h := hints{
		text:       text,
		models:     ModelTokens(text),
		categories: Categories(text),
	}

	var queries []string
	if len(h.models) == 0 && len(h.categories) == 0 {
		logx.Debug().Msg("no model token or category in instruction")
		return model.QueryPlan{WorkingText: text, History: history}
	}
	for _, s := range queryStrategies {
		found := s.run(h)
		if len(found) == 0 {
			continue
		}
		logx.Debug().Str("strategy", s.name).Strs("queries", found).Msg("candidate queries")
		queries = append(queries, found...)
	}
	queries = dedupe(queries)
	if len(queries) > b.maxQueries {
		queries = queries[:b.maxQueries]
	}

	return model.QueryPlan{
		Queries:     queries,
		ModelTokens: h.models,
		Categories:  h.categories,
		WorkingText: text,
		History:     history,
	}
}
