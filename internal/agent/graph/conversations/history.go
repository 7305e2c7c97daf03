package conversations

import (
	"regexp"
	"strings"

	"github.com/catalog-assistant/server/internal/agent/model"
)

var (
	reHTMLTag    = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>`)
	jsonKeyHints = []string{`{"`, `"action"`, `"type":`, `"type" :`, `"message":`, `"changeAmount"`}
)

// looksStructured reports whether a turn carries prior structured output
// (JSON, HTML or code) that would pollute search terms.
func looksStructured(content string) bool {
	if strings.Contains(content, "```") {
		return true
	}
	for _, hint := range jsonKeyHints {
		if strings.Contains(content, hint) {
			return true
		}
	}
	return reHTMLTag.MatchString(content)
}

// FilterHistory keeps the last window turns and drops empty or structured ones.
func FilterHistory(history []model.Message, window int) []model.Message {
	recent := trimTail(history, window)
	out := make([]model.Message, 0, len(recent))
	for _, msg := range recent {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		if msg.Role != model.RoleUser && msg.Role != model.RoleAssistant {
			continue
		}
		if looksStructured(content) {
			continue
		}
		out = append(out, model.Message{Role: msg.Role, Content: content})
	}
	return out
}

// WorkingText folds history into the instruction when the instruction is too
// short to stand on its own ("check again").
func WorkingText(text string, history []model.Message, shortRunes int) string {
	text = strings.TrimSpace(text)
	if len([]rune(text)) >= shortRunes || len(history) == 0 {
		return text
	}
	var sb strings.Builder
	for _, msg := range history {
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	sb.WriteString(text)
	return sb.String()
}

func trimTail(messages []model.Message, maxTurns int) []model.Message {
	if maxTurns <= 0 {
		return nil
	}
	if len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}
