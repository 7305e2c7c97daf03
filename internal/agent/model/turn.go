package model

// Turn is the per-request value threaded through the pipeline nodes. Each
// request gets its own Turn; nothing here is shared between requests.
type Turn struct {
	Instruction Instruction
	Catalog     CatalogClient

	Plan     QueryPlan
	Snapshot *CatalogSnapshot

	RawOutput string
	Parsed    ParsedOutput
	Intent    ActionIntent
	Action    *MaterializedAction

	// Message is the operator-facing reply assembled so far.
	Message string
	// Notes are appended to the reply (dropped actions, failed searches).
	Notes []string
	// Done short-circuits the remaining stages straight to the response.
	Done bool
}

// Finish marks the turn as complete with an informational message.
func (t *Turn) Finish(message string) *Turn {
	t.Message = message
	t.Done = true
	return t
}
