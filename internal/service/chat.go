package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/teachme/platform/internal/assistant"
	"github.com/teachme/platform/internal/domain"
	"github.com/teachme/platform/internal/tool"
)

// placeholderGreeting is the stock reply the remote agent sometimes emits
// as a leftover turn. The reconciler skips it unless nothing else exists.
const placeholderGreeting = "Hello! How can I assist you today?"

// SendLimiter is the admission-control contract guarding chat sends.
type SendLimiter interface {
	Allow(ctx context.Context, key string) (bool, int, error)
}

// PollConfig bounds the run poll loop.
type PollConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	RunTimeout   time.Duration
}

// SendResult is the canonical reply for one chat send.
type SendResult struct {
	MessageID string `json:"id,omitempty"`
	Content   string `json:"content"`
}

// ChatService drives one full agent-run life cycle per send: append the
// message, start a run, poll with bounded backoff, dispatch tool calls,
// and reconcile exactly one reply.
type ChatService struct {
	sessions  *SessionService
	threads   *ThreadService
	agents    domain.AgentRepository
	exchanges domain.ExchangeRepository
	threadRep domain.ThreadRepository
	registry  *tool.Registry
	client    assistant.Client
	limiter   SendLimiter
	poll      PollConfig
}

// NewChatService creates a new chat service
func NewChatService(
	sessions *SessionService,
	threads *ThreadService,
	agents domain.AgentRepository,
	exchanges domain.ExchangeRepository,
	threadRep domain.ThreadRepository,
	registry *tool.Registry,
	client assistant.Client,
	limiter SendLimiter,
	poll PollConfig,
) *ChatService {
	return &ChatService{
		sessions:  sessions,
		threads:   threads,
		agents:    agents,
		exchanges: exchanges,
		threadRep: threadRep,
		registry:  registry,
		client:    client,
		limiter:   limiter,
		poll:      poll,
	}
}

// Send processes one inbound chat message end to end and returns the
// single canonical reply.
func (s *ChatService) Send(ctx context.Context, userID, bindingID uuid.UUID, message string) (*SendResult, error) {
	// Admission control first: a rejected send consumes no remote resources.
	allowed, _, err := s.limiter.Allow(ctx, userID.String())
	if err != nil {
		// A broken limiter fails open; the remote service has its own caps.
		log.Warn().Err(err).Msg("rate limit check failed, allowing send")
	} else if !allowed {
		return nil, ErrRateLimited
	}

	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	binding, err := s.threads.Get(ctx, userID, bindingID)
	if err != nil {
		return nil, err
	}
	if binding.Archived() {
		return nil, ErrThreadArchived
	}

	agent, err := s.agents.GetByID(ctx, binding.AgentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}

	if _, err := s.client.AppendMessage(ctx, binding.RemoteThreadID, "user", message); err != nil {
		return nil, &TransportError{Op: "append_message", Err: err}
	}

	s.audit(ctx, &domain.Exchange{
		ID:        uuid.New(),
		ThreadID:  binding.ID,
		Role:      domain.ExchangeUser,
		Content:   message,
		CreatedAt: time.Now().UTC(),
	})
	if err := s.threadRep.TouchLastMessage(ctx, binding.ID); err != nil {
		log.Warn().Err(err).Stringer("thread_id", binding.ID).Msg("failed to touch thread timestamp")
	}

	status, err := s.client.StartRun(ctx, binding.RemoteThreadID, agent.RemoteAgentID)
	if err != nil {
		return nil, &TransportError{Op: "start_run", Err: err}
	}

	tc := &tool.Context{
		CallerID: userID,
		Session:  session,
		Binding:  binding,
		OrgID:    binding.OrgID,
		CourseID: binding.CourseID,
	}

	return s.driveRun(ctx, binding, status, tc)
}

// driveRun polls the run to a terminal state, resolving tool batches as
// they appear. Backoff grows multiplicatively up to a cap; the whole loop
// is bounded by a wall-clock ceiling and cancellable via ctx.
func (s *ChatService) driveRun(ctx context.Context, binding *domain.ThreadBinding, status *assistant.RunStatus, tc *tool.Context) (*SendResult, error) {
	deadline := time.Now().Add(s.poll.RunTimeout)
	delay := s.poll.InitialDelay
	var lastFailure *tool.Result

	for {
		if status.State.Terminal() {
			break
		}

		// The ceiling covers every non-terminal iteration, tool-batch
		// cycles included: handler time spends the run's budget too.
		if time.Now().After(deadline) {
			log.Warn().
				Stringer("thread_id", binding.ID).
				Str("state", string(status.State)).
				Msg("run exceeded wall-clock ceiling")
			return nil, ErrRunTimeout
		}

		if status.State == assistant.RunRequiresAction {
			next, override, failure, err := s.resolveToolBatch(ctx, binding, status, tc)
			if err != nil {
				return nil, err
			}
			if failure != nil {
				lastFailure = failure
			}
			// A handler marked its confirmation authoritative: persist it
			// as the reply and return without waiting for the run to
			// finish, so the agent cannot re-ask for supplied arguments.
			if override != "" {
				return s.persistReply(ctx, binding, "", override)
			}
			status = next
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = delay * 3 / 2
		if delay > s.poll.MaxDelay {
			delay = s.poll.MaxDelay
		}

		next, err := s.client.GetRunStatus(ctx, binding.RemoteThreadID, status.RunID)
		if err != nil {
			return nil, &TransportError{Op: "get_run_status", Err: err}
		}
		status = next
	}

	switch status.State {
	case assistant.RunCompleted:
		return s.reconcile(ctx, binding)
	default:
		if lastFailure != nil && lastFailure.Code == tool.CodeAuthorization {
			return nil, fmt.Errorf("%w: %s", ErrForbidden, lastFailure.Err)
		}
		return nil, &RunFailedError{State: string(status.State), Reason: status.LastError}
	}
}

// resolveToolBatch executes every pending call and submits all outputs in
// one batch. A failing or panicking handler yields an ok:false output for
// its call; the batch always completes.
func (s *ChatService) resolveToolBatch(ctx context.Context, binding *domain.ThreadBinding, status *assistant.RunStatus, tc *tool.Context) (next *assistant.RunStatus, override string, lastFailure *tool.Result, err error) {
	outputs := make([]assistant.ToolOutput, 0, len(status.PendingCalls))

	for _, call := range status.PendingCalls {
		inv := tool.Invocation{
			CallID:       call.ID,
			Name:         call.Name,
			RawArguments: call.Arguments,
		}
		res, msg, hasOverride := s.registry.Dispatch(ctx, tc, inv)
		if !res.OK {
			failure := res
			lastFailure = &failure
		}
		if hasOverride && override == "" {
			override = msg
		}

		serialized := res.String()
		s.audit(ctx, &domain.Exchange{
			ID:       uuid.New(),
			ThreadID: binding.ID,
			Role:     domain.ExchangeTool,
			ToolCall: &domain.ToolCallRecord{
				Name:      call.Name,
				Arguments: call.Arguments,
				Output:    serialized,
			},
			CreatedAt: time.Now().UTC(),
		})

		outputs = append(outputs, assistant.ToolOutput{
			ToolCallID: call.ID,
			Output:     serialized,
		})
	}

	next, submitErr := s.client.SubmitToolOutputs(ctx, binding.RemoteThreadID, status.RunID, outputs)
	if submitErr != nil {
		return nil, "", lastFailure, &TransportError{Op: "submit_tool_outputs", Err: submitErr}
	}
	return next, override, lastFailure, nil
}

// reconcile derives the single canonical reply from the thread: the
// newest assistant message that is not the placeholder greeting, falling
// back to the newest assistant message when every candidate is the
// placeholder.
func (s *ChatService) reconcile(ctx context.Context, binding *domain.ThreadBinding) (*SendResult, error) {
	messages, err := s.client.ListMessages(ctx, binding.RemoteThreadID, 20)
	if err != nil {
		return nil, &TransportError{Op: "list_messages", Err: err}
	}

	var chosen, newest *assistant.Message
	for i := range messages {
		m := &messages[i]
		if m.Role != "assistant" {
			continue
		}
		if newest == nil {
			newest = m
		}
		if strings.TrimSpace(m.Content) != placeholderGreeting {
			chosen = m
			break
		}
	}
	if chosen == nil {
		chosen = newest
	}
	if chosen == nil {
		return nil, &TransportError{Op: "list_messages", Err: fmt.Errorf("run completed but no assistant message found")}
	}

	return s.persistReply(ctx, binding, chosen.ID, chosen.Content)
}

// persistReply appends the assistant exchange and builds the result.
func (s *ChatService) persistReply(ctx context.Context, binding *domain.ThreadBinding, remoteMessageID, content string) (*SendResult, error) {
	s.audit(ctx, &domain.Exchange{
		ID:              uuid.New(),
		ThreadID:        binding.ID,
		Role:            domain.ExchangeAssistant,
		Content:         content,
		RemoteMessageID: remoteMessageID,
		CreatedAt:       time.Now().UTC(),
	})
	return &SendResult{MessageID: remoteMessageID, Content: content}, nil
}

// audit appends one exchange row, logging instead of failing the send:
// losing an audit row is better than losing the reply.
func (s *ChatService) audit(ctx context.Context, exchange *domain.Exchange) {
	if err := s.exchanges.Append(ctx, exchange); err != nil {
		log.Error().Err(err).
			Stringer("thread_id", exchange.ThreadID).
			Str("role", string(exchange.Role)).
			Msg("failed to append exchange")
	}
}
