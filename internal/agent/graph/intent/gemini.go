package intent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/catalog-assistant/server/internal/agent/model"
	logx "github.com/catalog-assistant/server/pkg/logger"
)

// GeminiConfig holds what is needed to reach the Gemini API.
type GeminiConfig struct {
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`
	// ThinkingBudget caps reasoning tokens; 0 disables thinking.
	ThinkingBudget int32 `envconfig:"GEMINI_THINKING_BUDGET" default:"0"`
}

// NewGeminiChatModel builds the production intent chat model.
func NewGeminiChatModel(ctx context.Context, cfg GeminiConfig, modelCfg model.IntentModelConfig) (*gemini.ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	temperature := modelCfg.Temperature
	maxTokens := modelCfg.MaxTokens
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       modelCfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(cfg.ThinkingBudget),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating intent model")
		return nil, fmt.Errorf("error creating intent model: %w", err)
	}
	return chatModel, nil
}
