package provider

import "context"

// RunStatus is the lifecycle state of a remote assistant run.
type RunStatus string

const (
	StatusQueued         RunStatus = "queued"
	StatusInProgress     RunStatus = "in_progress"
	StatusRequiresAction RunStatus = "requires_action"
	StatusCompleted      RunStatus = "completed"
	StatusFailed         RunStatus = "failed"
	StatusCancelled      RunStatus = "cancelled"
	StatusExpired        RunStatus = "expired"
)

// RunError carries the backend's reported failure for a failed run.
type RunError struct {
	Code    string
	Message string
}

// Run is a single invocation of a persona against a thread.
type Run struct {
	ID        string
	Status    RunStatus
	LastError *RunError
}

// ThreadMessage is one message in a remote thread.
type ThreadMessage struct {
	Role    string
	Content string
}

// Provider is the boundary to the remote assistant service. Implementations
// must return thread messages newest-first from ListMessages.
type Provider interface {
	CreateAssistant(ctx context.Context, name, instructions, model string) (string, error)
	CreateThread(ctx context.Context) (string, error)
	AddMessage(ctx context.Context, threadID, role, content string) error
	ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error)
	CreateRun(ctx context.Context, threadID, assistantID, instructions string) (string, error)
	GetRun(ctx context.Context, threadID, runID string) (Run, error)
	// SubmitToolOutputs acknowledges a requires_action run. The interview
	// never registers tools, so callers pass an empty set.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error
}

// ToolOutput is a tool invocation result echoed back to a run.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}
