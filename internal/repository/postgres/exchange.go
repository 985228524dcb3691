package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teachme/platform/internal/domain"
)

// ExchangeRepository implements domain.ExchangeRepository
type ExchangeRepository struct {
	pool *pgxpool.Pool
}

// NewExchangeRepository creates a new exchange repository
func NewExchangeRepository(pool *pgxpool.Pool) *ExchangeRepository {
	return &ExchangeRepository{pool: pool}
}

// Append inserts one audit row.
func (r *ExchangeRepository) Append(ctx context.Context, exchange *domain.Exchange) error {
	query := `
		INSERT INTO chat_messages (id, thread_id, role, content, tool_call, remote_message_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var toolCallJSON []byte
	if exchange.ToolCall != nil {
		var err error
		toolCallJSON, err = json.Marshal(exchange.ToolCall)
		if err != nil {
			return fmt.Errorf("failed to marshal tool call: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx, query,
		exchange.ID,
		exchange.ThreadID,
		exchange.Role,
		exchange.Content,
		toolCallJSON,
		exchange.RemoteMessageID,
		exchange.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append exchange: %w", err)
	}
	return nil
}

// History returns exchanges in chronological order. Tool rows are kept for
// audit but excluded from the conversation projection unless requested.
func (r *ExchangeRepository) History(ctx context.Context, threadID uuid.UUID, includeTool bool, limit, offset int) ([]domain.Exchange, error) {
	query := `
		SELECT id, thread_id, role, content, tool_call, remote_message_id, created_at
		FROM chat_messages
		WHERE thread_id = $1 AND ($2 OR role <> 'tool')
		ORDER BY created_at
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, threadID, includeTool, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []domain.Exchange
	for rows.Next() {
		var e domain.Exchange
		var roleStr string
		var toolCallJSON []byte

		if err := rows.Scan(
			&e.ID,
			&e.ThreadID,
			&roleStr,
			&e.Content,
			&toolCallJSON,
			&e.RemoteMessageID,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		e.Role = domain.ExchangeRole(roleStr)

		if len(toolCallJSON) > 0 {
			var tc domain.ToolCallRecord
			if err := json.Unmarshal(toolCallJSON, &tc); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tool call: %w", err)
			}
			e.ToolCall = &tc
		}

		exchanges = append(exchanges, e)
	}
	return exchanges, nil
}
