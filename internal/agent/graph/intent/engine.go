package intent

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/catalog-assistant/server/internal/agent/graph/prompts"
	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
	logx "github.com/catalog-assistant/server/pkg/logger"
)

// NodeIntentChatModel names the chat model in callback run info.
const NodeIntentChatModel = "IntentChatModel"

// Result is one generation: the raw text plus what it cost.
type Result struct {
	Content string
	Usage   *schema.TokenUsage
	CostUSD float64
}

// Engine asks the generation backend to classify an instruction against the
// catalog snapshot. It never retries.
type Engine struct {
	chatModel einomodel.BaseChatModel
	modelName string
	prompt    model.PromptConfig
}

func NewEngine(chatModel einomodel.BaseChatModel, modelName string, prompt model.PromptConfig) (*Engine, error) {
	if chatModel == nil {
		return nil, errors.New("intent chat model is nil")
	}
	return &Engine{chatModel: chatModel, modelName: modelName, prompt: prompt}, nil
}

// Generate renders the prompt and calls the chat model once. Failures are
// wrapped as ErrGenerationUnavailable.
func (e *Engine) Generate(ctx context.Context, plan model.QueryPlan, instruction string, snap *model.CatalogSnapshot) (Result, error) {
	msgs, err := prompts.RenderIntentMessages(ctx, e.prompt, plan, instruction, snap)
	if err != nil {
		return Result{}, errx.Wrap(errx.ErrGenerationUnavailable, err)
	}

	ctx = callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      NodeIntentChatModel,
		Type:      e.modelName,
		Component: components.ComponentOfChatModel,
	})
	out, err := e.chatModel.Generate(ctx, msgs)
	if err != nil {
		return Result{}, errx.Wrap(errx.ErrGenerationUnavailable, err)
	}
	if out == nil {
		return Result{}, errx.Wrap(errx.ErrGenerationUnavailable, fmt.Errorf("%s returned no message", e.modelName))
	}

	res := Result{Content: out.Content}
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		res.Usage = out.ResponseMeta.Usage
		inC, outC, totalC := model.ComputeCost(res.Usage, model.ResolvePricing(e.modelName))
		res.CostUSD = totalC
		logx.Debug().
			Str("node", NodeIntentChatModel).
			Str("model", e.modelName).
			Int("prompt_tokens", res.Usage.PromptTokens).
			Int("completion_tokens", res.Usage.CompletionTokens).
			Int("total_tokens", res.Usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", totalC).
			Msg("LLM usage")
	}
	return res, nil
}
