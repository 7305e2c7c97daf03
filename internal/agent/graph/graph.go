package graph

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	"github.com/catalog-assistant/server/internal/agent/catalog"
	"github.com/catalog-assistant/server/internal/agent/graph/conversations"
	"github.com/catalog-assistant/server/internal/agent/graph/intent"
	"github.com/catalog-assistant/server/internal/agent/graph/nodes"
	"github.com/catalog-assistant/server/internal/agent/graph/observers"
	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
	logx "github.com/catalog-assistant/server/pkg/logger"
)

// maxRunSteps bounds one invocation.
const maxRunSteps = 20

// Runner executes the compiled pipeline for one request.
type Runner interface {
	Handle(ctx context.Context, req model.AssistantRequest) (*model.AssistantResponse, error)
}

// Config holds everything needed to compose the pipeline end-to-end.
// This is a convenience layer over GraphConfig that also constructs the
// query builder, catalog resolver and intent engine.
type Config struct {
	Credentials   model.CredentialResolver
	ClientFactory model.CatalogClientFactory
	ChatModel     einomodel.BaseChatModel
	ModelName     string
	Context       model.ContextConfig
	Catalog       model.CatalogConfig
	Prompt        model.PromptConfig
}

// GraphConfig holds all components the graph nodes are built from.
type GraphConfig struct {
	Credentials   model.CredentialResolver
	ClientFactory model.CatalogClientFactory
	Builder       *conversations.Builder
	Resolver      *catalog.Resolver
	Engine        *intent.Engine
}

// GraphBuilder handles the construction of the pipeline graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.AssistantRequest, *model.AssistantResponse]
}

type graphRunner struct {
	runnable compose.Runnable[model.AssistantRequest, *model.AssistantResponse]
}

// Handle validates the request and runs the graph. Panics and graph errors
// are the only hard failures.
func (r *graphRunner) Handle(ctx context.Context, req model.AssistantRequest) (resp *model.AssistantResponse, err error) {
	if strings.TrimSpace(req.BusinessID) == "" {
		return nil, errx.BadRequest("businessId is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, errx.BadRequest("message is required")
	}

	defer func() {
		if rec := recover(); rec != nil {
			logx.Error().Interface("panic", rec).Str("business_id", req.BusinessID).Msg("Pipeline panicked")
			resp, err = nil, errx.Internal(fmt.Errorf("pipeline panic: %v", rec))
		}
	}()

	out, err := r.runnable.Invoke(ctx, req, compose.WithCallbacks(observers.NewAllCallbacks()...))
	if err != nil {
		logx.Error().Err(err).Str("business_id", req.BusinessID).Msg("Pipeline failed")
		return nil, errx.Internal(err)
	}
	if out == nil {
		return nil, errx.Internal(fmt.Errorf("pipeline returned no response"))
	}
	return out, nil
}

// BuildPipeline constructs the pipeline components, builds the graph and
// returns a Runner.
func BuildPipeline(ctx context.Context, cfg Config) (Runner, error) {
	engine, err := intent.NewEngine(cfg.ChatModel, cfg.ModelName, cfg.Prompt)
	if err != nil {
		return nil, err
	}

	runnable, err := BuildGraph(ctx, &GraphConfig{
		Credentials:   cfg.Credentials,
		ClientFactory: cfg.ClientFactory,
		Builder:       conversations.NewBuilder(cfg.Context),
		Resolver:      catalog.NewResolver(cfg.Catalog),
		Engine:        engine,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Assistant pipeline built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled pipeline graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.AssistantRequest, *model.AssistantResponse], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.Credentials == nil || config.ClientFactory == nil {
		return nil, fmt.Errorf("catalog access is not configured")
	}
	if config.Builder == nil || config.Resolver == nil || config.Engine == nil {
		return nil, fmt.Errorf("pipeline components are not properly initialized")
	}

	builder := &GraphBuilder{
		config: config,
		graph:  compose.NewGraph[model.AssistantRequest, *model.AssistantResponse](),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() error {
	lambdas := []struct {
		key    string
		lambda *compose.Lambda
	}{
		{nodes.NodeInput, nodes.NewInputNode()},
		{nodes.NodeCredentials, nodes.NewCredentialsNode(b.config.Credentials, b.config.ClientFactory)},
		{nodes.NodeQueryBuilder, nodes.NewQueryBuilderNode(b.config.Builder)},
		{nodes.NodeCatalog, nodes.NewCatalogNode(b.config.Resolver)},
		{nodes.NodeIntent, nodes.NewIntentNode(b.config.Engine)},
		{nodes.NodeParser, nodes.NewParserNode()},
		{nodes.NodeMaterializer, nodes.NewMaterializerNode(b.config.Resolver)},
		{nodes.NodeValidator, nodes.NewValidatorNode()},
	}
	for _, l := range lambdas {
		if err := b.graph.AddLambdaNode(l.key, l.lambda, compose.WithNodeName(l.key)); err != nil {
			logx.Error().Err(err).Str("node", l.key).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", l.key, err)
		}
	}
	return nil
}

// addEdges creates the main flow connections between nodes.
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeInput},
		{nodes.NodeInput, nodes.NodeCredentials},
		{nodes.NodeQueryBuilder, nodes.NodeCatalog},
		{nodes.NodeParser, nodes.NodeMaterializer},
		{nodes.NodeMaterializer, nodes.NodeValidator},
		{nodes.NodeValidator, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches lets the credentials, catalog and intent stages end a turn early.
func (b *GraphBuilder) addBranches() error {
	branches := [][2]string{
		{nodes.NodeCredentials, nodes.NodeQueryBuilder},
		{nodes.NodeCatalog, nodes.NodeIntent},
		{nodes.NodeIntent, nodes.NodeParser},
	}
	for _, br := range branches {
		from, next := br[0], br[1]
		branch := compose.NewGraphBranch(
			nodes.NewDoneCondition(next),
			map[string]bool{
				next:                true,
				nodes.NodeValidator: true,
			},
		)
		if err := b.graph.AddBranch(from, branch); err != nil {
			logx.Error().Err(err).Str("node", from).Msg("Error adding early-exit branch")
			return fmt.Errorf("error adding early-exit branch after %s: %w", from, err)
		}
	}
	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.AssistantRequest, *model.AssistantResponse], error) {
	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName("CatalogAssistant"),
		compose.WithMaxRunSteps(maxRunSteps),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
