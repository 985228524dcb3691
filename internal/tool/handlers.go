package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/teachme/platform/internal/assistant"
	"github.com/teachme/platform/internal/domain"
)

// Mailer delivers invitation emails. Delivery failure is reported
// separately from invite creation; the invite row stands either way.
type Mailer interface {
	SendInvite(ctx context.Context, to, role, orgName, courseTitle string) error
}

// Handlers owns the side-effecting capability implementations and their
// dependencies. RegisterAll wires them into a registry.
type Handlers struct {
	users       domain.UserRepository
	orgs        domain.OrganizationRepository
	memberships domain.MembershipRepository
	invites     domain.InviteRepository
	courses     domain.CourseRepository
	documents   domain.DocumentRepository
	agents      domain.AgentRepository
	stats       domain.StatsRepository
	sessions    domain.SessionStore
	assistant   assistant.Client
	mailer      Mailer
	log         zerolog.Logger
}

// NewHandlers creates the capability handler set.
func NewHandlers(
	users domain.UserRepository,
	orgs domain.OrganizationRepository,
	memberships domain.MembershipRepository,
	invites domain.InviteRepository,
	courses domain.CourseRepository,
	documents domain.DocumentRepository,
	agents domain.AgentRepository,
	stats domain.StatsRepository,
	sessions domain.SessionStore,
	client assistant.Client,
	mailer Mailer,
	log zerolog.Logger,
) *Handlers {
	return &Handlers{
		users:       users,
		orgs:        orgs,
		memberships: memberships,
		invites:     invites,
		courses:     courses,
		documents:   documents,
		agents:      agents,
		stats:       stats,
		sessions:    sessions,
		assistant:   client,
		mailer:      mailer,
		log:         log.With().Str("component", "tool_handlers").Logger(),
	}
}

// RegisterAll installs every handler with its aliases and override policy.
// Overrides exist for the side-effecting confirmations the agent has been
// observed to re-ask about after a successful call.
func (h *Handlers) RegisterAll(r *Registry) {
	r.Register(Registration{
		Name:    "create_organization",
		Aliases: []string{"create_org", "new_organization"},
		Handler: h.CreateOrganization,
		Override: func(args map[string]any, _ Result) (string, bool) {
			name := optionalStringArg(args, "name")
			return fmt.Sprintf("Organization %q has been created.", name), name != ""
		},
	})
	r.Register(Registration{
		Name:     "invite_organization_admin",
		Aliases:  []string{"invite_org_admin", "invite_admin"},
		Handler:  h.InviteOrganizationAdmin,
		Override: inviteOverride("Organization Admin"),
	})
	r.Register(Registration{
		Name:     "invite_teacher",
		Handler:  h.InviteTeacher,
		Override: inviteOverride("Teacher"),
	})
	r.Register(Registration{
		Name:     "invite_student",
		Handler:  h.InviteStudent,
		Override: inviteOverride("Student"),
	})
	r.Register(Registration{
		Name:    "create_course",
		Aliases: []string{"new_course"},
		Handler: h.CreateCourse,
		Override: func(args map[string]any, _ Result) (string, bool) {
			title := optionalStringArg(args, "title")
			return fmt.Sprintf("Course %q has been created.", title), title != ""
		},
	})
	r.Register(Registration{
		Name:    "create_course_agent",
		Aliases: []string{"create_course_assistant"},
		Handler: h.CreateCourseAgent,
	})
	r.Register(Registration{
		Name:    "ingest_course_content",
		Aliases: []string{"upload_course_content", "add_course_content"},
		Handler: h.IngestCourseContent,
	})
	r.Register(Registration{
		Name:    "update_course_agent_instructions",
		Aliases: []string{"update_course_assistant_instructions"},
		Handler: h.UpdateCourseAgentInstructions,
	})
	r.Register(Registration{
		Name:    "get_platform_stats",
		Aliases: []string{"platform_statistics", "get_platform_statistics"},
		Handler: h.GetPlatformStats,
	})
	r.Register(Registration{
		Name:    "get_me",
		Aliases: []string{"whoami", "get_current_user"},
		Handler: h.GetMe,
	})
	r.Register(Registration{
		Name:    "switch_role",
		Aliases: []string{"switch_active_role"},
		Handler: h.SwitchRole,
	})
}

func inviteOverride(roleLabel string) OverrideFunc {
	return func(args map[string]any, res Result) (string, bool) {
		email := optionalStringArg(args, "email")
		if email == "" {
			return "", false
		}
		if payload, ok := res.Payload.(inviteOutcome); ok && !payload.EmailSent {
			return fmt.Sprintf("Invitation created for %s as %s, but the notification email could not be delivered.", email, roleLabel), true
		}
		return fmt.Sprintf("Invitation sent to %s as %s.", email, roleLabel), true
	}
}

type inviteOutcome struct {
	InviteID  uuid.UUID `json:"invite_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	EmailSent bool      `json:"email_sent"`
}

// CreateOrganization creates a tenant. Super admin only.
func (h *Handlers) CreateOrganization(ctx context.Context, tc *Context, args map[string]any) Result {
	name, ok := stringArg(args, "name")
	if !ok {
		return Fail(CodeValidation, "name is required")
	}
	if !tc.Session.IsSuperAdmin() {
		return Fail(CodeAuthorization, "only a super admin can create organizations")
	}

	existing, err := h.orgs.GetByName(ctx, name)
	if err != nil {
		return Fail(CodeInternal, err.Error())
	}
	if existing != nil {
		return Fail(CodeValidation, fmt.Sprintf("organization %q already exists", name))
	}

	org := &domain.Organization{
		ID:        uuid.New(),
		Name:      name,
		CreatedBy: tc.CallerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.orgs.Create(ctx, org); err != nil {
		return Fail(CodeInternal, err.Error())
	}
	h.log.Info().Str("org", name).Stringer("created_by", tc.CallerID).Msg("organization created")
	return OKResult(org)
}

// InviteOrganizationAdmin invites an admin into an organization.
// Super admin only; the target organization may come from an argument
// or from the ambient scope.
func (h *Handlers) InviteOrganizationAdmin(ctx context.Context, tc *Context, args map[string]any) Result {
	email, ok := stringArg(args, "email")
	if !ok {
		return Fail(CodeValidation, "email is required")
	}
	if !tc.Session.IsSuperAdmin() {
		return Fail(CodeAuthorization, "only a super admin can invite organization admins")
	}
	orgID, res := h.resolveOrg(ctx, tc, args)
	if !res.OK {
		return res
	}
	return h.createInvite(ctx, tc, email, domain.RoleOrgAdmin, &orgID, nil)
}

// InviteTeacher invites a teacher into the caller's organization.
func (h *Handlers) InviteTeacher(ctx context.Context, tc *Context, args map[string]any) Result {
	email, ok := stringArg(args, "email")
	if !ok {
		return Fail(CodeValidation, "email is required")
	}
	orgID, res := h.resolveOrg(ctx, tc, args)
	if !res.OK {
		return res
	}
	if allowed := h.canAdminister(ctx, tc, orgID); !allowed {
		return Fail(CodeAuthorization, "inviting teachers requires organization admin rights")
	}
	return h.createInvite(ctx, tc, email, domain.RoleTeacher, &orgID, nil)
}

// InviteStudent invites a student into a course, resolved by title.
func (h *Handlers) InviteStudent(ctx context.Context, tc *Context, args map[string]any) Result {
	email, ok := stringArg(args, "email")
	if !ok {
		return Fail(CodeValidation, "email is required")
	}
	course, res := h.resolveCourse(ctx, tc, args)
	if !res.OK {
		return res
	}
	if allowed := h.canTeach(ctx, tc, course.OrgID); !allowed {
		return Fail(CodeAuthorization, "inviting students requires a teacher or admin role in the course's organization")
	}
	return h.createInvite(ctx, tc, email, domain.RoleStudent, &course.OrgID, &course.ID)
}

func (h *Handlers) createInvite(ctx context.Context, tc *Context, email, role string, orgID, courseID *uuid.UUID) Result {
	pending, err := h.invites.PendingExists(ctx, email, orgID, courseID)
	if err != nil {
		return Fail(CodeInternal, err.Error())
	}
	if pending {
		return Fail(CodeValidation, fmt.Sprintf("a pending invitation for %s already exists", email))
	}

	invite := &domain.Invite{
		ID:           uuid.New(),
		Inviter:      tc.CallerID,
		InviteeEmail: email,
		Role:         role,
		OrgID:        orgID,
		CourseID:     courseID,
		Status:       domain.InvitePending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.invites.Create(ctx, invite); err != nil {
		return Fail(CodeInternal, err.Error())
	}

	orgName, courseTitle := "", ""
	if orgID != nil {
		if org, err := h.orgs.GetByID(ctx, *orgID); err == nil {
			orgName = org.Name
		}
	}
	if courseID != nil {
		if course, err := h.courses.GetByID(ctx, *courseID); err == nil {
			courseTitle = course.Title
		}
	}

	// Delivery failure does not undo the invite; it is reported separately.
	emailSent := true
	if err := h.mailer.SendInvite(ctx, email, role, orgName, courseTitle); err != nil {
		emailSent = false
		h.log.Warn().Err(err).Str("email", email).Msg("invite email delivery failed")
	}

	return OKResult(inviteOutcome{
		InviteID:  invite.ID,
		Email:     email,
		Role:      role,
		EmailSent: emailSent,
	})
}

// CreateCourse creates a course in the caller's organization. Duplicate
// titles within the organization fail cleanly instead of duplicating.
func (h *Handlers) CreateCourse(ctx context.Context, tc *Context, args map[string]any) Result {
	title, ok := stringArg(args, "title")
	if !ok {
		return Fail(CodeValidation, "title is required")
	}
	orgID, res := h.resolveOrg(ctx, tc, args)
	if !res.OK {
		return res
	}
	if allowed := h.canTeach(ctx, tc, orgID); !allowed {
		return Fail(CodeAuthorization, "creating courses requires a teacher or admin role in the organization")
	}

	existing, err := h.courses.GetByTitle(ctx, orgID, title)
	if err != nil {
		return Fail(CodeInternal, err.Error())
	}
	if existing != nil {
		return Fail(CodeValidation, fmt.Sprintf("course %q already exists in this organization", title))
	}

	course := &domain.Course{
		ID:          uuid.New(),
		OrgID:       orgID,
		Title:       title,
		Description: optionalStringArg(args, "description"),
		Status:      "active",
		CreatedBy:   tc.CallerID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.courses.Create(ctx, course); err != nil {
		return Fail(CodeInternal, err.Error())
	}
	h.log.Info().Str("course", title).Stringer("org_id", orgID).Msg("course created")
	return OKResult(course)
}

// CreateCourseAgent provisions a dedicated remote assistant for a course.
func (h *Handlers) CreateCourseAgent(ctx context.Context, tc *Context, args map[string]any) Result {
	instructions, ok := stringArg(args, "instructions")
	if !ok {
		return Fail(CodeValidation, "instructions are required")
	}
	course, res := h.resolveCourse(ctx, tc, args)
	if !res.OK {
		return res
	}
	if allowed := h.canTeach(ctx, tc, course.OrgID); !allowed {
		return Fail(CodeAuthorization, "managing course agents requires a teacher or admin role in the course's organization")
	}
	if existing, err := h.agents.GetByCourse(ctx, course.ID); err != nil {
		return Fail(CodeInternal, err.Error())
	} else if existing != nil {
		return Fail(CodeValidation, fmt.Sprintf("course %q already has an agent", course.Title))
	}

	name := optionalStringArg(args, "name")
	if name == "" {
		name = course.Title + " Assistant"
	}

	remoteID, err := h.assistant.CreateAgent(ctx, name, instructions)
	if err != nil {
		return Fail(CodeInternal, fmt.Sprintf("remote agent creation failed: %v", err))
	}

	agent := &domain.Agent{
		ID:            uuid.New(),
		Scope:         domain.AgentScopeCourse,
		OrgID:         &course.OrgID,
		CourseID:      &course.ID,
		Name:          name,
		RemoteAgentID: remoteID,
		Instructions:  instructions,
		IsActive:      true,
		CreatedBy:     tc.CallerID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.agents.Create(ctx, agent); err != nil {
		return Fail(CodeInternal, err.Error())
	}
	if err := h.courses.SetAgent(ctx, course.ID, agent.ID); err != nil {
		return Fail(CodeInternal, err.Error())
	}
	h.log.Info().Str("course", course.Title).Str("remote_agent", remoteID).Msg("course agent created")
	return OKResult(agent)
}

// IngestCourseContent stores one piece of course material.
func (h *Handlers) IngestCourseContent(ctx context.Context, tc *Context, args map[string]any) Result {
	content, ok := stringArg(args, "content")
	if !ok {
		return Fail(CodeValidation, "content is required")
	}
	course, res := h.resolveCourse(ctx, tc, args)
	if !res.OK {
		return res
	}
	if allowed := h.canTeach(ctx, tc, course.OrgID); !allowed {
		return Fail(CodeAuthorization, "ingesting content requires a teacher or admin role in the course's organization")
	}

	title := optionalStringArg(args, "title")
	if title == "" {
		title = "Untitled document"
	}
	contentType := optionalStringArg(args, "content_type")
	if contentType == "" {
		contentType = "text/plain"
	}

	doc := &domain.Document{
		ID:          uuid.New(),
		CourseID:    course.ID,
		Title:       title,
		ContentType: contentType,
		Content:     content,
		CreatedBy:   tc.CallerID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.documents.Create(ctx, doc); err != nil {
		return Fail(CodeInternal, err.Error())
	}
	return OKResult(map[string]any{
		"document_id":  doc.ID,
		"course_id":    course.ID,
		"course_title": course.Title,
		"title":        doc.Title,
	})
}

// UpdateCourseAgentInstructions rewrites a course agent's instructions,
// both remotely and in the local record.
func (h *Handlers) UpdateCourseAgentInstructions(ctx context.Context, tc *Context, args map[string]any) Result {
	instructions, ok := stringArg(args, "instructions")
	if !ok {
		return Fail(CodeValidation, "instructions are required")
	}
	course, res := h.resolveCourse(ctx, tc, args)
	if !res.OK {
		return res
	}
	if allowed := h.canTeach(ctx, tc, course.OrgID); !allowed {
		return Fail(CodeAuthorization, "managing course agents requires a teacher or admin role in the course's organization")
	}
	agent, err := h.agents.GetByCourse(ctx, course.ID)
	if err != nil {
		return Fail(CodeInternal, err.Error())
	}
	if agent == nil {
		return Fail(CodeNotFound, fmt.Sprintf("course %q has no agent", course.Title))
	}

	if err := h.assistant.UpdateAgentInstructions(ctx, agent.RemoteAgentID, instructions); err != nil {
		return Fail(CodeInternal, fmt.Sprintf("remote agent update failed: %v", err))
	}
	if err := h.agents.UpdateInstructions(ctx, agent.ID, instructions); err != nil {
		return Fail(CodeInternal, err.Error())
	}
	return OKResult(map[string]any{
		"agent_id":     agent.ID,
		"course_title": course.Title,
	})
}

// GetPlatformStats returns the read-only platform aggregation. Any
// authenticated caller may read it.
func (h *Handlers) GetPlatformStats(ctx context.Context, tc *Context, _ map[string]any) Result {
	stats, err := h.stats.Collect(ctx)
	if err != nil {
		return Fail(CodeInternal, err.Error())
	}
	return OKResult(stats)
}

// GetMe reports the caller's identity and scope as the session sees it.
func (h *Handlers) GetMe(ctx context.Context, tc *Context, _ map[string]any) Result {
	user, err := h.users.GetByID(ctx, tc.CallerID)
	if err != nil {
		return Fail(CodeInternal, err.Error())
	}
	return OKResult(map[string]any{
		"user_id":       user.ID,
		"email":         user.Email,
		"full_name":     user.FullName,
		"roles":         tc.Session.Roles,
		"active_role":   tc.Session.ActiveRole,
		"active_org_id": tc.Session.ActiveOrgID,
	})
}

// SwitchRole changes the session's active role, validated against the
// roles the session actually holds.
func (h *Handlers) SwitchRole(ctx context.Context, tc *Context, args map[string]any) Result {
	role, ok := stringArg(args, "role")
	if !ok {
		return Fail(CodeValidation, "role is required")
	}

	var target *domain.RoleBinding
	orgName := optionalStringArg(args, "organization_name")
	for i := range tc.Session.Roles {
		b := &tc.Session.Roles[i]
		if b.Role != role {
			continue
		}
		if orgName != "" && b.OrgName != orgName {
			continue
		}
		target = b
		break
	}
	if target == nil {
		return Fail(CodeAuthorization, fmt.Sprintf("you do not hold the role %q", role))
	}

	tc.Session.ActiveRole = target.Role
	tc.Session.ActiveOrgID = target.OrgID
	if err := h.sessions.Put(ctx, tc.Session); err != nil {
		return Fail(CodeInternal, err.Error())
	}
	return OKResult(map[string]any{
		"active_role":   tc.Session.ActiveRole,
		"active_org_id": tc.Session.ActiveOrgID,
	})
}

// resolveOrg finds the organization in scope: explicit organization_name
// argument first, then the ambient context.
func (h *Handlers) resolveOrg(ctx context.Context, tc *Context, args map[string]any) (uuid.UUID, Result) {
	if name := optionalStringArg(args, "organization_name"); name != "" {
		org, err := h.orgs.GetByName(ctx, name)
		if err != nil {
			return uuid.Nil, Fail(CodeInternal, err.Error())
		}
		if org == nil {
			return uuid.Nil, Fail(CodeNotFound, fmt.Sprintf("organization %q not found", name))
		}
		return org.ID, Result{OK: true}
	}
	if id := tc.ActiveOrg(); id != nil {
		return *id, Result{OK: true}
	}
	return uuid.Nil, Fail(CodeValidation, "no organization in scope; provide organization_name")
}

// resolveCourse finds the course in scope: explicit course_title argument
// resolved within the active organization, then the ambient context.
func (h *Handlers) resolveCourse(ctx context.Context, tc *Context, args map[string]any) (*domain.Course, Result) {
	if title := optionalStringArg(args, "course_title"); title != "" {
		orgID, res := h.resolveOrg(ctx, tc, args)
		if !res.OK {
			return nil, res
		}
		course, err := h.courses.GetByTitle(ctx, orgID, title)
		if err != nil {
			return nil, Fail(CodeInternal, err.Error())
		}
		if course == nil {
			return nil, Fail(CodeNotFound, fmt.Sprintf("course %q not found", title))
		}
		return course, Result{OK: true}
	}
	if tc.CourseID != nil {
		course, err := h.courses.GetByID(ctx, *tc.CourseID)
		if err != nil {
			return nil, Fail(CodeInternal, err.Error())
		}
		return course, Result{OK: true}
	}
	if tc.Binding != nil && tc.Binding.CourseID != nil {
		course, err := h.courses.GetByID(ctx, *tc.Binding.CourseID)
		if err != nil {
			return nil, Fail(CodeInternal, err.Error())
		}
		return course, Result{OK: true}
	}
	return nil, Fail(CodeValidation, "no course in scope; provide course_title")
}

// canAdminister reports admin rights over the organization.
func (h *Handlers) canAdminister(ctx context.Context, tc *Context, orgID uuid.UUID) bool {
	if tc.Session.IsSuperAdmin() {
		return true
	}
	if tc.Session.OrgRole(orgID) == domain.RoleOrgAdmin {
		return true
	}
	role, err := h.memberships.Role(ctx, tc.CallerID, orgID)
	return err == nil && role == domain.RoleOrgAdmin
}

// canTeach reports teacher-or-admin rights over the organization.
func (h *Handlers) canTeach(ctx context.Context, tc *Context, orgID uuid.UUID) bool {
	if h.canAdminister(ctx, tc, orgID) {
		return true
	}
	if tc.Session.OrgRole(orgID) == domain.RoleTeacher {
		return true
	}
	role, err := h.memberships.Role(ctx, tc.CallerID, orgID)
	return err == nil && role == domain.RoleTeacher
}
