package tool

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/teachme/platform/internal/assistant"
	"github.com/teachme/platform/internal/domain"
)

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

// MockOrganizationRepository mocks domain.OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) GetByName(ctx context.Context, name string) (*domain.Organization, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Organization), args.Error(1)
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

// MockInviteRepository mocks domain.InviteRepository
type MockInviteRepository struct {
	mock.Mock
}

func (m *MockInviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *MockInviteRepository) PendingExists(ctx context.Context, email string, orgID, courseID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, orgID, courseID)
	return args.Bool(0), args.Error(1)
}

// MockCourseRepository mocks domain.CourseRepository
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, course *domain.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCourseRepository) GetByTitle(ctx context.Context, orgID uuid.UUID, title string) (*domain.Course, error) {
	args := m.Called(ctx, orgID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCourseRepository) SetAgent(ctx context.Context, courseID, agentID uuid.UUID) error {
	args := m.Called(ctx, courseID, agentID)
	return args.Error(0)
}

func (m *MockCourseRepository) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

// MockDocumentRepository mocks domain.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
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

// MockStatsRepository mocks domain.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Collect(ctx context.Context) (*domain.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformStats), args.Error(1)
}

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

// MockMailer mocks the Mailer delivery contract.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendInvite(ctx context.Context, to, role, orgName, courseTitle string) error {
	args := m.Called(ctx, to, role, orgName, courseTitle)
	return args.Error(0)
}
