package actions

import (
	"encoding/json"
	"strings"

	"github.com/catalog-assistant/server/internal/agent/model"
	logx "github.com/catalog-assistant/server/pkg/logger"
)

const maxMessageUnwrap = 3

// FallbackMessage is used when neither the generator nor an action produced text.
const FallbackMessage = "I could not prepare a change for that request. Please name the product and what to change."

// Validate is the last gate before the response leaves the service: the
// action type must be allowlisted, the status is forced to pending and the
// message is unwrapped from nested JSON and never left empty.
func Validate(message string, action *model.MaterializedAction) (string, *model.MaterializedAction) {
	if action != nil && !action.Type.IsAllowed() {
		logx.Warn().Str("type", string(action.Type)).Msg("dropping action with disallowed type")
		action = nil
	}
	if action != nil {
		action.Status = model.StatusPending
	}

	message = strings.TrimSpace(UnwrapMessage(message))
	if message == "" && action != nil {
		message = action.Summary
		if message == "" {
			message = action.Description
		}
	}
	if message == "" {
		message = FallbackMessage
	}
	return message, action
}

// UnwrapMessage peels a message that is itself a JSON object with a "message"
// field, up to three levels deep.
func UnwrapMessage(message string) string {
	for range maxMessageUnwrap {
		trimmed := strings.TrimSpace(message)
		if !strings.HasPrefix(trimmed, "{") {
			return message
		}
		var inner map[string]any
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return message
		}
		next, ok := inner["message"].(string)
		if !ok {
			return message
		}
		message = next
	}
	return message
}
