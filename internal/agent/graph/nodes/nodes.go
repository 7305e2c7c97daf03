package nodes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/catalog-assistant/server/internal/agent/catalog"
	"github.com/catalog-assistant/server/internal/agent/graph/actions"
	"github.com/catalog-assistant/server/internal/agent/graph/conversations"
	"github.com/catalog-assistant/server/internal/agent/graph/intent"
	"github.com/catalog-assistant/server/internal/agent/graph/parsers"
	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
	logx "github.com/catalog-assistant/server/pkg/logger"
)

// NewInputNode turns the request into a fresh Turn.
func NewInputNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, req model.AssistantRequest) (*model.Turn, error) {
		in := req.Instruction()
		logx.Debug().
			Str("business_id", in.BusinessID).
			Int("history", len(in.History)).
			Msg("New instruction")
		return &model.Turn{Instruction: in}, nil
	})
}

// NewCredentialsNode binds a catalog client to the turn. Missing credentials
// end the turn with an informational message.
func NewCredentialsNode(resolver model.CredentialResolver, factory model.CatalogClientFactory) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.Turn, error) {
		creds, err := resolver.ResolveCredentials(ctx, turn.Instruction.BusinessID)
		if err == nil && !creds.Valid() {
			err = errx.Wrap(errx.ErrConfiguration, nil)
		}
		if err != nil {
			logx.Warn().Err(err).
				Str("business_id", turn.Instruction.BusinessID).
				Str("node", NodeCredentials).
				Msg("Catalog credentials unavailable")
			return turn.Finish(MessageCatalogNotConnected), nil
		}
		turn.Catalog = factory(creds)
		return turn, nil
	})
}

// NewQueryBuilderNode derives candidate search queries from the instruction.
func NewQueryBuilderNode(builder *conversations.Builder) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.Turn, error) {
		turn.Plan = builder.Build(turn.Instruction)
		logx.Debug().
			Strs("queries", turn.Plan.Queries).
			Strs("model_tokens", turn.Plan.ModelTokens).
			Msg("Candidate queries")
		return turn, nil
	})
}

// NewCatalogNode runs the search cascade. A turn without candidate queries
// goes on without a snapshot; one whose queries all miss or fail ends here.
func NewCatalogNode(resolver *catalog.Resolver) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.Turn, error) {
		if len(turn.Plan.Queries) == 0 {
			return turn, nil
		}
		snap, err := resolver.Resolve(ctx, turn.Catalog, turn.Plan, turn.Instruction.Text)
		if err != nil {
			logx.Warn().Err(err).Str("node", NodeCatalog).Msg("Every catalog search failed")
		}
		if snap == nil {
			return turn.Finish(fmt.Sprintf(MessageNoProductsFound, strings.Join(turn.Plan.Queries, ", "))), nil
		}
		turn.Snapshot = snap
		return turn, nil
	})
}

// NewIntentNode calls the generation backend once.
func NewIntentNode(engine *intent.Engine) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.Turn, error) {
		res, err := engine.Generate(ctx, turn.Plan, turn.Instruction.Text, turn.Snapshot)
		if err != nil {
			logx.Error().Err(err).Str("node", NodeIntent).Msg("Generation failed")
			return turn.Finish(MessageGenerationFailed), nil
		}
		turn.RawOutput = res.Content
		return turn, nil
	})
}

// NewParserNode recovers {message, action} from the raw output and
// normalizes the action into an intent.
func NewParserNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.Turn, error) {
		turn.Parsed = parsers.ParseModelOutput(turn.RawOutput)
		turn.Message = turn.Parsed.Message

		source := turn.Parsed.Action
		if source == nil {
			source = turn.Parsed.Root
		}
		in, err := actions.NormalizeIntent(source)
		if err != nil {
			logx.Warn().Err(err).Str("node", NodeParser).Str("strategy", turn.Parsed.Strategy).Msg("Dropping model action")
			return turn, nil
		}
		turn.Intent = in
		return turn, nil
	})
}

// NewMaterializerNode recomputes the intent against catalog data. Without a
// snapshot it retries resolution by the declared product name and the
// fallback keywords.
func NewMaterializerNode(resolver *catalog.Resolver) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.Turn, error) {
		if turn.Intent == nil {
			return turn, nil
		}

		snap := turn.Snapshot
		if snap == nil {
			var err error
			snap, err = resolver.ResolveByName(ctx, turn.Catalog, actions.IntentProductName(turn.Intent), turn.Instruction.Text)
			if err != nil {
				logx.Warn().Err(err).Str("node", NodeMaterializer).Msg("Fallback product resolution failed")
			}
		}
		if snap == nil {
			turn.Notes = append(turn.Notes, NoteProductNotFound)
			return turn, nil
		}
		if snap.VariationsUnavailable && turn.Intent.IntentType() != model.ActionUpdateDescription {
			turn.Notes = append(turn.Notes, fmt.Sprintf(NoteVariationsUnavailable, snap.Product.Name))
			return turn, nil
		}

		action, err := actions.Materialize(turn.Intent, snap, turn.Instruction.Text)
		switch {
		case errors.Is(err, actions.ErrNoMatchingVariations):
			width := actions.ResolveWidthFilter(widthOf(turn.Intent), turn.Instruction.Text)
			turn.Notes = append(turn.Notes, fmt.Sprintf(NoteNoMatchingVariations, snap.Product.Name, width))
			return turn, nil
		case err != nil:
			logx.Warn().Err(err).Str("node", NodeMaterializer).Msg("Dropping action")
			return turn, nil
		case action == nil:
			return turn, nil
		}

		logx.Info().
			Str("business_id", turn.Instruction.BusinessID).
			Str("type", string(action.Type)).
			Int64("product_id", snap.Product.ID).
			Msg("Action materialized")
		turn.Snapshot = snap
		turn.Action = action
		// Numbers shown to the operator come from the recomputed action, never the model text.
		turn.Message = action.Summary
		return turn, nil
	})
}

// NewValidatorNode produces the outbound response.
func NewValidatorNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn *model.Turn) (*model.AssistantResponse, error) {
		message := strings.TrimSpace(actions.UnwrapMessage(turn.Message))
		if len(turn.Notes) > 0 {
			message = strings.TrimSpace(message + "\n\n" + strings.Join(turn.Notes, "\n"))
		}
		message, action := actions.Validate(message, turn.Action)
		return &model.AssistantResponse{Message: message, Action: action}, nil
	})
}

// NewDoneCondition routes finished turns straight to the validator.
func NewDoneCondition(next string) func(context.Context, *model.Turn) (string, error) {
	return func(ctx context.Context, turn *model.Turn) (string, error) {
		if turn.Done {
			logx.Debug().Str("message", turn.Message).Msg("Turn finished early - routing to validator")
			return NodeValidator, nil
		}
		return next, nil
	}
}

func widthOf(in model.ActionIntent) string {
	switch x := in.(type) {
	case model.PriceChangeIntent:
		return x.WidthFilter
	case model.SaleConversionIntent:
		return x.WidthFilter
	default:
		return ""
	}
}
