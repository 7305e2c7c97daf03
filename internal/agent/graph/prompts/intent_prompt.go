package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/catalog-assistant/server/internal/agent/model"
)

//go:embed template/intent_prompt.txt
var intentSystemPrompt string

const jsonOnlyDirective = "Respond with a single JSON object only."

// RenderIntentMessages renders the full intent conversation: system prompt,
// filtered history and the instruction with its catalog snapshot. Rendering
// goes through the Eino prompt component so prompt callbacks fire.
func RenderIntentMessages(ctx context.Context, cfg model.PromptConfig, plan model.QueryPlan, instruction string, snap *model.CatalogSnapshot) ([]*schema.Message, error) {
	// Only known tokens are replaced; the JSON examples keep their braces.
	system := strings.NewReplacer(
		"{store_name}", cfg.StoreName,
		"{language}", cfg.Language,
		"{currency}", cfg.Currency,
	).Replace(intentSystemPrompt)

	history := make([]*schema.Message, 0, len(plan.History))
	for _, m := range plan.History {
		switch m.Role {
		case model.RoleUser:
			history = append(history, schema.UserMessage(m.Content))
		case model.RoleAssistant:
			history = append(history, schema.AssistantMessage(m.Content, nil))
		}
	}

	var request strings.Builder
	request.WriteString("Operator instruction:\n")
	request.WriteString(strings.TrimSpace(instruction))
	request.WriteString("\n\nCatalog data:\n")
	request.WriteString(FormatSnapshot(snap, plan.Queries, cfg.Currency))
	request.WriteString("\n\n")
	request.WriteString(jsonOnlyDirective)

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system", false),
		schema.MessagesPlaceholder("history", true),
		schema.MessagesPlaceholder("request", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system":  []*schema.Message{schema.SystemMessage(system)},
		"history": history,
		"request": []*schema.Message{schema.UserMessage(request.String())},
	})
	if err != nil {
		return nil, fmt.Errorf("intent prompt render: %w", err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("intent prompt render: empty result")
	}
	return msgs, nil
}
