package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teachme/platform/internal/domain"
)

type threadFixture struct {
	threads     *MockThreadRepository
	exchanges   *MockExchangeRepository
	agents      *MockAgentRepository
	memberships *MockMembershipRepository
	client      *MockAssistantClient
	svc         *ThreadService

	session *domain.Session
	agent   *domain.Agent
}

func newThreadFixture() *threadFixture {
	f := &threadFixture{
		threads:     new(MockThreadRepository),
		exchanges:   new(MockExchangeRepository),
		agents:      new(MockAgentRepository),
		memberships: new(MockMembershipRepository),
		client:      new(MockAssistantClient),
	}
	f.svc = NewThreadService(f.threads, f.exchanges, f.agents, f.memberships, f.client)

	orgID := uuid.New()
	f.session = &domain.Session{
		UserID:      uuid.New(),
		ActiveRole:  domain.RoleTeacher,
		ActiveOrgID: &orgID,
		Roles: []domain.RoleBinding{
			{Scope: domain.ScopeOrganization, Role: domain.RoleTeacher, OrgID: &orgID},
		},
	}
	f.agent = &domain.Agent{
		ID:            uuid.New(),
		Scope:         domain.AgentScopeRole,
		Role:          domain.RoleTeacher,
		Name:          "Teacher Assistant",
		RemoteAgentID: "asst_teacher",
		IsActive:      true,
	}
	return f
}

func TestThreadService_ResolveOrCreate(t *testing.T) {
	t.Run("returns existing active binding without remote calls", func(t *testing.T) {
		f := newThreadFixture()
		existing := &domain.ThreadBinding{
			ID:             uuid.New(),
			UserID:         f.session.UserID,
			AgentID:        f.agent.ID,
			RemoteThreadID: "thread_existing",
		}
		f.threads.On("GetActive", mock.Anything, f.session.UserID, f.agent.ID).Return(existing, nil)

		binding, err := f.svc.ResolveOrCreate(context.Background(), f.session, f.agent.ID)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, binding.ID)
		f.client.AssertNotCalled(t, "CreateThread", mock.Anything)
		f.threads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates remote thread and binding when none exists", func(t *testing.T) {
		f := newThreadFixture()

		f.threads.On("GetActive", mock.Anything, f.session.UserID, f.agent.ID).Return(nil, nil).Once()
		f.agents.On("GetByID", mock.Anything, f.agent.ID).Return(f.agent, nil)
		f.client.On("CreateThread", mock.Anything).Return("thread_new", nil)
		f.threads.On("Create", mock.Anything, mock.AnythingOfType("*domain.ThreadBinding")).Return(nil)

		binding, err := f.svc.ResolveOrCreate(context.Background(), f.session, f.agent.ID)
		require.NoError(t, err)
		assert.Equal(t, "thread_new", binding.RemoteThreadID)
		assert.Equal(t, f.session.UserID, binding.UserID)
		assert.Equal(t, f.session.ActiveOrgID, binding.OrgID)
		assert.Equal(t, domain.RoleTeacher, binding.Role)
		assert.Equal(t, "New conversation", binding.Title)
	})

	t.Run("losing a concurrent create race resolves to the winning binding", func(t *testing.T) {
		f := newThreadFixture()
		winner := &domain.ThreadBinding{
			ID:             uuid.New(),
			UserID:         f.session.UserID,
			AgentID:        f.agent.ID,
			RemoteThreadID: "thread_winner",
		}

		f.threads.On("GetActive", mock.Anything, f.session.UserID, f.agent.ID).Return(nil, nil).Once()
		f.agents.On("GetByID", mock.Anything, f.agent.ID).Return(f.agent, nil)
		f.client.On("CreateThread", mock.Anything).Return("thread_loser", nil)
		// The live-binding unique index rejects the insert; the re-read
		// surfaces the row the other request won with.
		f.threads.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicate)
		f.threads.On("GetActive", mock.Anything, f.session.UserID, f.agent.ID).Return(winner, nil)

		binding, err := f.svc.ResolveOrCreate(context.Background(), f.session, f.agent.ID)
		require.NoError(t, err)
		assert.Equal(t, winner.ID, binding.ID)
		assert.Equal(t, "thread_winner", binding.RemoteThreadID)
	})

	t.Run("remote thread creation failure is a transport error", func(t *testing.T) {
		f := newThreadFixture()
		f.threads.On("GetActive", mock.Anything, f.session.UserID, f.agent.ID).Return(nil, nil)
		f.agents.On("GetByID", mock.Anything, f.agent.ID).Return(f.agent, nil)
		f.client.On("CreateThread", mock.Anything).Return("", assert.AnError)

		_, err := f.svc.ResolveOrCreate(context.Background(), f.session, f.agent.ID)
		require.Error(t, err)
		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, "create_thread", transportErr.Op)
		f.threads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestThreadService_Get(t *testing.T) {
	t.Run("owner reads their binding", func(t *testing.T) {
		f := newThreadFixture()
		binding := &domain.ThreadBinding{ID: uuid.New(), UserID: f.session.UserID}
		f.threads.On("GetByID", mock.Anything, binding.ID).Return(binding, nil)

		got, err := f.svc.Get(context.Background(), f.session.UserID, binding.ID)
		require.NoError(t, err)
		assert.Equal(t, binding.ID, got.ID)
	})

	t.Run("foreign binding is forbidden", func(t *testing.T) {
		f := newThreadFixture()
		binding := &domain.ThreadBinding{ID: uuid.New(), UserID: uuid.New()}
		f.threads.On("GetByID", mock.Anything, binding.ID).Return(binding, nil)

		_, err := f.svc.Get(context.Background(), f.session.UserID, binding.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("legacy ownerless binding remains readable", func(t *testing.T) {
		f := newThreadFixture()
		binding := &domain.ThreadBinding{ID: uuid.New(), UserID: uuid.Nil}
		f.threads.On("GetByID", mock.Anything, binding.ID).Return(binding, nil)

		got, err := f.svc.Get(context.Background(), f.session.UserID, binding.ID)
		require.NoError(t, err)
		assert.Equal(t, binding.ID, got.ID)
	})
}

func TestThreadService_List(t *testing.T) {
	f := newThreadFixture()
	userID := uuid.New()

	// Out-of-range limits collapse to the default page size.
	f.threads.On("ListByUser", mock.Anything, userID, (*uuid.UUID)(nil), 50, 0).
		Return([]domain.ThreadBinding{}, nil).Twice()
	f.threads.On("ListByUser", mock.Anything, userID, (*uuid.UUID)(nil), 25, 10).
		Return([]domain.ThreadBinding{}, nil).Once()

	_, err := f.svc.List(context.Background(), userID, nil, 0, 0)
	require.NoError(t, err)
	_, err = f.svc.List(context.Background(), userID, nil, 500, 0)
	require.NoError(t, err)
	_, err = f.svc.List(context.Background(), userID, nil, 25, 10)
	require.NoError(t, err)

	f.threads.AssertExpectations(t)
}

func TestThreadService_History(t *testing.T) {
	t.Run("excludes tool audit rows and checks ownership first", func(t *testing.T) {
		f := newThreadFixture()
		binding := &domain.ThreadBinding{ID: uuid.New(), UserID: f.session.UserID}
		history := []domain.Exchange{
			{ID: uuid.New(), ThreadID: binding.ID, Role: domain.ExchangeUser, Content: "hi", CreatedAt: time.Now()},
			{ID: uuid.New(), ThreadID: binding.ID, Role: domain.ExchangeAssistant, Content: "hello", CreatedAt: time.Now()},
		}
		f.threads.On("GetByID", mock.Anything, binding.ID).Return(binding, nil)
		f.exchanges.On("History", mock.Anything, binding.ID, false, 50, 0).Return(history, nil)

		got, err := f.svc.History(context.Background(), f.session.UserID, binding.ID, 0, 0)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("foreign thread history is forbidden", func(t *testing.T) {
		f := newThreadFixture()
		binding := &domain.ThreadBinding{ID: uuid.New(), UserID: uuid.New()}
		f.threads.On("GetByID", mock.Anything, binding.ID).Return(binding, nil)

		_, err := f.svc.History(context.Background(), f.session.UserID, binding.ID, 0, 0)
		assert.ErrorIs(t, err, ErrForbidden)
		f.exchanges.AssertNotCalled(t, "History", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
