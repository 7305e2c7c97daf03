package model

// Role tags a history turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prior turn of the operator conversation.
type Message struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// Instruction is the operator request for the current turn. It is built once
// per request and never mutated.
type Instruction struct {
	Text       string
	History    []Message
	BusinessID string
}

// AssistantRequest is the inbound payload.
type AssistantRequest struct {
	Message    string    `json:"message" validate:"required"`
	BusinessID string    `json:"businessId" validate:"required"`
	History    []Message `json:"history" validate:"omitempty,dive"`
}

// Instruction converts the request into the pipeline's immutable input.
func (r AssistantRequest) Instruction() Instruction {
	history := make([]Message, len(r.History))
	copy(history, r.History)
	return Instruction{
		Text:       r.Message,
		History:    history,
		BusinessID: r.BusinessID,
	}
}

// AssistantResponse is the success-class outbound payload.
type AssistantResponse struct {
	Message string              `json:"message"`
	Action  *MaterializedAction `json:"action,omitempty"`
}

// QueryPlan is the Context Builder output: ranked candidate search strings
// (most specific first) plus the hints that produced them.
type QueryPlan struct {
	Queries     []string
	ModelTokens []string
	Categories  []string
	// WorkingText is the instruction, optionally prefixed by filtered history.
	WorkingText string
	// History is the filtered window handed to the intent engine.
	History []Message
}
