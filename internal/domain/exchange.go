package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ExchangeRole discriminates rows in the per-thread audit log.
type ExchangeRole string

const (
	ExchangeUser      ExchangeRole = "user"
	ExchangeAssistant ExchangeRole = "assistant"
	ExchangeTool      ExchangeRole = "tool"
)

// ToolCallRecord captures one executed tool call for audit.
type ToolCallRecord struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Output    string `json:"output"`
}

// Exchange is one append-only audit row for a thread binding.
// Tool rows carry ToolCall and no Content; they are excluded from the
// conversation history projection but retained for audit.
type Exchange struct {
	ID              uuid.UUID       `json:"id"`
	ThreadID        uuid.UUID       `json:"thread_id"`
	Role            ExchangeRole    `json:"role"`
	Content         string          `json:"content,omitempty"`
	ToolCall        *ToolCallRecord `json:"tool_call,omitempty"`
	RemoteMessageID string          `json:"remote_message_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ExchangeRepository is the append-only audit log for thread exchanges.
type ExchangeRepository interface {
	Append(ctx context.Context, exchange *Exchange) error
	// History returns exchanges in chronological order. Tool rows are
	// excluded unless includeTool is set.
	History(ctx context.Context, threadID uuid.UUID, includeTool bool, limit, offset int) ([]Exchange, error)
}
