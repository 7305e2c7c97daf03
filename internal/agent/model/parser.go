package model

// Recovery strategies, in the order they are attempted.
const (
	StrategyStrict   = "strict"
	StrategyRepaired = "repaired"
	StrategyRegex    = "regex"
	StrategyRawText  = "raw_text"
)

// ParsedOutput is what the response recovery parser salvaged from model text.
type ParsedOutput struct {
	Message string
	// Root is the decoded JSON object (nil for regex and raw-text strategies).
	Root map[string]any
	// Action is the object to normalize into an ActionIntent, if any.
	Action          map[string]any
	Strategy        string
	ParsingMetadata map[string]any
}
