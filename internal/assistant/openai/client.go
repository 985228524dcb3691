package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/teachme/platform/internal/assistant"
	"github.com/teachme/platform/internal/config"
)

// Client implements assistant.Client against the OpenAI Assistants API.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a new OpenAI-backed assistant client.
func NewClient(cfg config.OpenAIConfig) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.OrgID != "" {
		clientCfg.OrgID = cfg.OrgID
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{
		api:   openai.NewClientWithConfig(clientCfg),
		model: model,
	}
}

// CreateThread creates an empty remote conversation thread.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	return thread.ID, nil
}

// AppendMessage appends a message to a thread and returns its remote ID.
func (c *Client) AppendMessage(ctx context.Context, threadID, role, content string) (string, error) {
	msg, err := c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    role,
		Content: content,
	})
	if err != nil {
		return "", fmt.Errorf("failed to append message: %w", err)
	}
	return msg.ID, nil
}

// StartRun starts an agent run against a thread.
func (c *Client) StartRun(ctx context.Context, threadID, agentID string) (*assistant.RunStatus, error) {
	run, err := c.api.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: agentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return convertRun(run), nil
}

// GetRunStatus fetches the current state of a run.
func (c *Client) GetRunStatus(ctx context.Context, threadID, runID string) (*assistant.RunStatus, error) {
	run, err := c.api.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve run: %w", err)
	}
	return convertRun(run), nil
}

// SubmitToolOutputs answers a requires_action batch.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []assistant.ToolOutput) (*assistant.RunStatus, error) {
	toolOutputs := make([]openai.ToolOutput, len(outputs))
	for i, out := range outputs {
		toolOutputs[i] = openai.ToolOutput{
			ToolCallID: out.ToolCallID,
			Output:     out.Output,
		}
	}
	run, err := c.api.SubmitToolOutputs(ctx, threadID, runID, openai.SubmitToolOutputsRequest{
		ToolOutputs: toolOutputs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit tool outputs: %w", err)
	}
	return convertRun(run), nil
}

// ListMessages returns up to limit thread messages, newest first.
func (c *Client) ListMessages(ctx context.Context, threadID string, limit int) ([]assistant.Message, error) {
	order := "desc"
	list, err := c.api.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]assistant.Message, 0, len(list.Messages))
	for _, msg := range list.Messages {
		var chunks []string
		for _, part := range msg.Content {
			if part.Type == "text" && part.Text != nil {
				chunks = append(chunks, part.Text.Value)
			}
		}
		messages = append(messages, assistant.Message{
			ID:      msg.ID,
			Role:    msg.Role,
			Content: strings.TrimSpace(strings.Join(chunks, "\n")),
		})
	}
	return messages, nil
}

// CreateAgent provisions a new remote assistant and returns its ID.
func (c *Client) CreateAgent(ctx context.Context, name, instructions string) (string, error) {
	created, err := c.api.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        c.model,
		Name:         &name,
		Instructions: &instructions,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create assistant: %w", err)
	}
	return created.ID, nil
}

// UpdateAgentInstructions replaces a remote assistant's instructions.
func (c *Client) UpdateAgentInstructions(ctx context.Context, agentID, instructions string) error {
	_, err := c.api.ModifyAssistant(ctx, agentID, openai.AssistantRequest{
		Model:        c.model,
		Instructions: &instructions,
	})
	if err != nil {
		return fmt.Errorf("failed to modify assistant: %w", err)
	}
	return nil
}

func convertRun(run openai.Run) *assistant.RunStatus {
	status := &assistant.RunStatus{
		RunID: run.ID,
		State: assistant.RunState(run.Status),
	}
	if run.LastError != nil {
		status.LastError = run.LastError.Message
	}
	if run.Status == openai.RunStatusRequiresAction &&
		run.RequiredAction != nil &&
		run.RequiredAction.SubmitToolOutputs != nil {
		for _, tc := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
			status.PendingCalls = append(status.PendingCalls, assistant.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}
	return status
}
