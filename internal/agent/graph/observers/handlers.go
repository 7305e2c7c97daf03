package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewAllCallbacks returns every observer handler for one pipeline run.
func NewAllCallbacks() []einocb.Handler {
	componentHandler := callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler()).
		Prompt(newPromptHandler()).
		Handler()

	return []einocb.Handler{componentHandler, newNodeHandler()}
}
