package types

import "context"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ChatTurn is one exchanged message in a connection's transcript.
type ChatTurn struct {
	Role    string
	Content string
}

// TurnResult is what the agent produces for a single user message.
type TurnResult struct {
	Reply     string
	Memory    string   // replacement for the session's running summary
	Mutated   bool     // whether any store-mutating tool fired this turn
	ToolCalls []string // tool names invoked, in order, for tracing
}

// Agent turns a transcript plus memory summary into a reply, possibly
// calling task tools along the way.
type Agent interface {
	Respond(ctx context.Context, transcript []ChatTurn, memory string) (TurnResult, error)
	Name() string
}

// Tool is a named capability the agent may invoke. Execute returns a
// human-readable result string; store failures are folded into that
// string rather than returned as errors, so the agent can relay them
// conversationally.
type Tool interface {
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
	Manifest() ToolManifest
}

type ToolManifest struct {
	Name        string
	Description string
	Mutating    bool
	Parameters  map[string]interface{} // JSON-schema properties
	Required    []string
}
