package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/catalog-assistant/server/internal/agent/model"
	logx "github.com/catalog-assistant/server/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 128 * 1024 // 128KB
	maxErrSnippet = 200        // limit error snippet size
)

// ParseModelOutput recovers {message, action} from free model text. It never
// panics and never fails: strategies run in order (strict slice, brace
// repair, field regex, raw text) and the first usable result wins.
func ParseModelOutput(content string) (out model.ParsedOutput) {
	meta := map[string]any{}
	addErr := func(msg string) {
		v, _ := meta["parsing_errors"].([]string)
		meta["parsing_errors"] = append(v, msg)
	}

	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "response_parser").Msgf("panic recovered: %v", r)
			addErr(fmt.Sprintf("panic: %v", r))
			out = rawTextOutput(content, meta)
		}
	}()

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "response_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
		meta["truncated"] = true
	}

	root, err := ParseStrict(content)
	if err == nil {
		return fromRoot(root, model.StrategyStrict, meta)
	}
	addErr("strict: " + err.Error())

	root, err = ParseRepaired(content)
	if err == nil {
		return fromRoot(root, model.StrategyRepaired, meta)
	}
	addErr("repaired: " + err.Error())

	if msg, action, ok := ExtractFields(content); ok {
		meta["strategy"] = model.StrategyRegex
		return model.ParsedOutput{
			Message:         msg,
			Action:          action,
			Strategy:        model.StrategyRegex,
			ParsingMetadata: meta,
		}
	}
	addErr("regex: no recoverable fields")

	return rawTextOutput(content, meta)
}

// ParseStrict slices from the first '{' to the last '}' and decodes it.
func ParseStrict(content string) (map[string]any, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 {
		return nil, fmt.Errorf("no opening brace")
	}
	if end <= start {
		return nil, fmt.Errorf("no closing brace after opening brace")
	}
	return decodeObject(content[start : end+1])
}

// ParseRepaired treats the text from the first '{' as truncated JSON, closes
// it and decodes the result.
func ParseRepaired(content string) (map[string]any, error) {
	start := strings.Index(content, "{")
	if start < 0 {
		return nil, fmt.Errorf("no opening brace")
	}
	repaired := RepairTruncated(content[start:])
	return decodeObject(repaired)
}

// decodeObject reads the first JSON value of s; trailing text is ignored.
func decodeObject(s string) (map[string]any, error) {
	var root map[string]any
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode %q: %w", safeSnippet(s), err)
	}
	if root == nil {
		return nil, fmt.Errorf("decoded value is not an object")
	}
	return root, nil
}

func fromRoot(root map[string]any, strategy string, meta map[string]any) model.ParsedOutput {
	meta["strategy"] = strategy
	out := model.ParsedOutput{
		Root:            root,
		Strategy:        strategy,
		ParsingMetadata: meta,
	}
	if msg, ok := root["message"].(string); ok {
		out.Message = strings.TrimSpace(msg)
	}
	switch action := root["action"].(type) {
	case map[string]any:
		out.Action = action
	case nil:
		// a bare action object without the envelope
		if _, ok := root["type"]; ok {
			out.Action = root
		}
	}
	return out
}

func rawTextOutput(content string, meta map[string]any) model.ParsedOutput {
	meta["strategy"] = model.StrategyRawText
	return model.ParsedOutput{
		Message:         strings.TrimSpace(content),
		Strategy:        model.StrategyRawText,
		ParsingMetadata: meta,
	}
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
