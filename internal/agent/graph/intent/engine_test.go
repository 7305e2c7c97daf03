package intent

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error
	seen  []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.seen = input
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

var testPrompt = model.PromptConfig{StoreName: "Sleepwell", Language: "English", Currency: "EUR"}

func TestGenerateRendersPromptAndCost(t *testing.T) {
	fake := &fakeChatModel{reply: &schema.Message{
		Role:    schema.Assistant,
		Content: `{"message":"ok"}`,
		ResponseMeta: &schema.ResponseMeta{Usage: &schema.TokenUsage{
			PromptTokens: 1_000_000, CompletionTokens: 0, TotalTokens: 1_000_000,
		}},
	}}
	engine, err := NewEngine(fake, "gemini-2.5-flash", testPrompt)
	require.NoError(t, err)

	plan := model.QueryPlan{
		Queries: []string{"Venice"},
		History: []model.Message{{Role: model.RoleUser, Content: "hi"}, {Role: model.RoleAssistant, Content: "hello"}},
	}
	snap := &model.CatalogSnapshot{
		Product:    model.CatalogProduct{ID: 42, Name: "Venice"},
		Variations: []model.Variation{{ID: 1, Attributes: map[string]string{"pa_width": "160"}, RegularPrice: 500}},
	}
	res, err := engine.Generate(t.Context(), plan, "raise Venice 160 by 100", snap)
	require.NoError(t, err)

	assert.Equal(t, `{"message":"ok"}`, res.Content)
	assert.InDelta(t, 0.30, res.CostUSD, 1e-9)

	require.Len(t, fake.seen, 4)
	assert.Equal(t, schema.System, fake.seen[0].Role)
	assert.Contains(t, fake.seen[0].Content, "Sleepwell")
	assert.Equal(t, schema.Assistant, fake.seen[2].Role)
	last := fake.seen[3]
	assert.Equal(t, schema.User, last.Role)
	assert.Contains(t, last.Content, "raise Venice 160 by 100")
	assert.Contains(t, last.Content, "[160]")
	assert.Contains(t, last.Content, "Respond with a single JSON object only.")
}

func TestGenerateWrapsBackendFailure(t *testing.T) {
	engine, err := NewEngine(&fakeChatModel{err: errors.New("quota exceeded")}, "gemini-2.5-flash", testPrompt)
	require.NoError(t, err)

	_, err = engine.Generate(t.Context(), model.QueryPlan{}, "hello", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrGenerationUnavailable))

	engine, err = NewEngine(&fakeChatModel{}, "gemini-2.5-flash", testPrompt)
	require.NoError(t, err)
	_, err = engine.Generate(t.Context(), model.QueryPlan{}, "hello", nil)
	assert.True(t, errors.Is(err, errx.ErrGenerationUnavailable))
}

func TestNewEngineRequiresModel(t *testing.T) {
	_, err := NewEngine(nil, "x", testPrompt)
	assert.Error(t, err)
}
