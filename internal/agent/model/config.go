package model

// ================ Config ================
type ContextConfig struct {
	HistoryWindow       int `envconfig:"CONTEXT_HISTORY_WINDOW" default:"4"`
	ShortInstruction    int `envconfig:"CONTEXT_SHORT_INSTRUCTION_RUNES" default:"40"`
	MaxCandidateQueries int `envconfig:"CONTEXT_MAX_CANDIDATE_QUERIES" default:"8"`
}

type IntentModelConfig struct {
	Model       string  `envconfig:"INTENT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"INTENT_MAX_TOKENS" default:"4096"`
	Temperature float32 `envconfig:"INTENT_TEMPERATURE" default:"0.2"`
}

type PromptConfig struct {
	StoreName string `envconfig:"PROMPT_STORE_NAME" default:"our store"`
	Language  string `envconfig:"PROMPT_LANGUAGE" default:"the language of the operator's message"`
	Currency  string `envconfig:"PROMPT_CURRENCY" default:"EUR"`
}

type CatalogConfig struct {
	SearchPageSize    int      `envconfig:"CATALOG_SEARCH_PAGE_SIZE" default:"10"`
	VariationPageSize int      `envconfig:"CATALOG_VARIATIONS_PAGE_SIZE" default:"100"`
	TimeoutSeconds    int      `envconfig:"CATALOG_TIMEOUT_SECONDS" default:"15"`
	FallbackKeywords  []string `envconfig:"CATALOG_FALLBACK_KEYWORDS" default:"venice,diana,bella,roma,milano"`
}

// StaticCredentialsConfig is used when no Redis is configured (local runs).
type StaticCredentialsConfig struct {
	BaseURL        string `envconfig:"CATALOG_BASE_URL"`
	ConsumerKey    string `envconfig:"CATALOG_CONSUMER_KEY"`
	ConsumerSecret string `envconfig:"CATALOG_CONSUMER_SECRET"`
}
