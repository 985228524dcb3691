package assistant

import "context"

// RunState is the remote run's lifecycle state.
type RunState string

const (
	RunQueued         RunState = "queued"
	RunInProgress     RunState = "in_progress"
	RunRequiresAction RunState = "requires_action"
	RunCompleted      RunState = "completed"
	RunFailed         RunState = "failed"
	RunCancelled      RunState = "cancelled"
	RunExpired        RunState = "expired"
)

// Terminal reports whether the state ends the run.
func (s RunState) Terminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunCancelled, RunExpired:
		return true
	}
	return false
}

// ToolCall is one pending function-invocation request emitted by a run.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolOutput correlates a serialized handler result to its tool call.
// Output must already be a string; the transport accepts nothing else.
type ToolOutput struct {
	ToolCallID string
	Output     string
}

// RunStatus is one observation of a run.
// PendingCalls is populated only when State is RunRequiresAction; every call
// in it must be answered in the same submission batch.
type RunStatus struct {
	RunID        string
	State        RunState
	PendingCalls []ToolCall
	LastError    string
}

// Message is one thread message as reported by the remote service,
// text parts already joined.
type Message struct {
	ID      string
	Role    string
	Content string
}

// Client is the remote conversational-agent service contract.
// Implementations translate these calls onto the provider's thread/run API.
type Client interface {
	CreateThread(ctx context.Context) (string, error)
	AppendMessage(ctx context.Context, threadID, role, content string) (string, error)
	StartRun(ctx context.Context, threadID, agentID string) (*RunStatus, error)
	GetRunStatus(ctx context.Context, threadID, runID string) (*RunStatus, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*RunStatus, error)
	// ListMessages returns up to limit messages, newest first.
	ListMessages(ctx context.Context, threadID string, limit int) ([]Message, error)

	// Agent management, used by the course-agent tool handlers.
	CreateAgent(ctx context.Context, name, instructions string) (string, error)
	UpdateAgentInstructions(ctx context.Context, agentID, instructions string) error
}
