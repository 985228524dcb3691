package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/teachme/platform/internal/assistant"
	"github.com/teachme/platform/internal/domain"
)

// MockSessionStore mocks domain.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionStore) Put(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockUserRepository mocks domain.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GlobalRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]string), args.Error(1)
}

// MockMembershipRepository mocks domain.MembershipRepository
type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Add(ctx context.Context, membership *domain.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) Role(ctx context.Context, userID, orgID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID, orgID)
	return args.String(0), args.Error(1)
}

func (m *MockMembershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Membership, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Membership), args.Error(1)
}

// MockThreadRepository mocks domain.ThreadRepository
type MockThreadRepository struct {
	mock.Mock
}

func (m *MockThreadRepository) Create(ctx context.Context, binding *domain.ThreadBinding) error {
	args := m.Called(ctx, binding)
	return args.Error(0)
}

func (m *MockThreadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ThreadBinding, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ThreadBinding), args.Error(1)
}

func (m *MockThreadRepository) GetActive(ctx context.Context, userID, agentID uuid.UUID) (*domain.ThreadBinding, error) {
	args := m.Called(ctx, userID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ThreadBinding), args.Error(1)
}

func (m *MockThreadRepository) ListByUser(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID, limit, offset int) ([]domain.ThreadBinding, error) {
	args := m.Called(ctx, userID, courseID, limit, offset)
	return args.Get(0).([]domain.ThreadBinding), args.Error(1)
}

func (m *MockThreadRepository) Rename(ctx context.Context, id, userID uuid.UUID, title string) error {
	args := m.Called(ctx, id, userID, title)
	return args.Error(0)
}

func (m *MockThreadRepository) SetArchived(ctx context.Context, id, userID uuid.UUID, archived bool) error {
	args := m.Called(ctx, id, userID, archived)
	return args.Error(0)
}

func (m *MockThreadRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockThreadRepository) TouchLastMessage(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockExchangeRepository mocks domain.ExchangeRepository
type MockExchangeRepository struct {
	mock.Mock
}

func (m *MockExchangeRepository) Append(ctx context.Context, exchange *domain.Exchange) error {
	args := m.Called(ctx, exchange)
	return args.Error(0)
}

func (m *MockExchangeRepository) History(ctx context.Context, threadID uuid.UUID, includeTool bool, limit, offset int) ([]domain.Exchange, error) {
	args := m.Called(ctx, threadID, includeTool, limit, offset)
	return args.Get(0).([]domain.Exchange), args.Error(1)
}

// MockAgentRepository mocks domain.AgentRepository
type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	args := m.Called(ctx, agent)
	return args.Error(0)
}

func (m *MockAgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *MockAgentRepository) GetByCourse(ctx context.Context, courseID uuid.UUID) (*domain.Agent, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *MockAgentRepository) UpdateInstructions(ctx context.Context, id uuid.UUID, instructions string) error {
	args := m.Called(ctx, id, instructions)
	return args.Error(0)
}

// MockAssistantClient mocks assistant.Client
type MockAssistantClient struct {
	mock.Mock
}

func (m *MockAssistantClient) CreateThread(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAssistantClient) AppendMessage(ctx context.Context, threadID, role, content string) (string, error) {
	args := m.Called(ctx, threadID, role, content)
	return args.String(0), args.Error(1)
}

func (m *MockAssistantClient) StartRun(ctx context.Context, threadID, agentID string) (*assistant.RunStatus, error) {
	args := m.Called(ctx, threadID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistant.RunStatus), args.Error(1)
}

func (m *MockAssistantClient) GetRunStatus(ctx context.Context, threadID, runID string) (*assistant.RunStatus, error) {
	args := m.Called(ctx, threadID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistant.RunStatus), args.Error(1)
}

func (m *MockAssistantClient) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []assistant.ToolOutput) (*assistant.RunStatus, error) {
	args := m.Called(ctx, threadID, runID, outputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assistant.RunStatus), args.Error(1)
}

func (m *MockAssistantClient) ListMessages(ctx context.Context, threadID string, limit int) ([]assistant.Message, error) {
	args := m.Called(ctx, threadID, limit)
	return args.Get(0).([]assistant.Message), args.Error(1)
}

func (m *MockAssistantClient) CreateAgent(ctx context.Context, name, instructions string) (string, error) {
	args := m.Called(ctx, name, instructions)
	return args.String(0), args.Error(1)
}

func (m *MockAssistantClient) UpdateAgentInstructions(ctx context.Context, agentID, instructions string) error {
	args := m.Called(ctx, agentID, instructions)
	return args.Error(0)
}
