package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/events"
	"github.com/spec-kit/intake-service/internal/intake"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

type memRequestRepo struct {
	seq      int
	requests map[string]domain.Request
	now      func() time.Time
}

func newMemRequestRepo(now func() time.Time) *memRequestRepo {
	return &memRequestRepo{requests: map[string]domain.Request{}, now: now}
}

func (m *memRequestRepo) Create(ctx context.Context, request *domain.Request) error {
	m.seq++
	request.ID = fmt.Sprintf("req-%d", m.seq)
	request.StageEnteredAt = m.now()
	request.CreatedAt = m.now()
	request.UpdatedAt = request.CreatedAt
	m.requests[request.ID] = *request
	return nil
}

func (m *memRequestRepo) Update(ctx context.Context, request *domain.Request) error {
	if _, ok := m.requests[request.ID]; !ok {
		return pgx.ErrNoRows
	}
	request.UpdatedAt = m.now()
	m.requests[request.ID] = *request
	return nil
}

func (m *memRequestRepo) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &request, nil
}

func (m *memRequestRepo) GetByNumber(ctx context.Context, number string) (*domain.Request, error) {
	for _, request := range m.requests {
		if request.RequestNumber == number {
			r := request
			return &r, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memRequestRepo) ListWithFilter(ctx context.Context, filter repository.RequestFilter) ([]domain.Request, error) {
	var out []domain.Request
	for _, request := range m.requests {
		if filter.ClientID != nil {
			if request.ClientID == nil || *request.ClientID != *filter.ClientID {
				continue
			}
		}
		out = append(out, request)
	}
	return out, nil
}

type memProjectRepo struct {
	seq      int
	projects map[string]domain.Project
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{projects: map[string]domain.Project{}}
}

func (m *memProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	m.seq++
	project.ID = fmt.Sprintf("proj-%d", m.seq)
	m.projects[project.ID] = *project
	return nil
}

func (m *memProjectRepo) Update(ctx context.Context, project *domain.Project) error {
	if _, ok := m.projects[project.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.projects[project.ID] = *project
	return nil
}

func (m *memProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &project, nil
}

func (m *memProjectRepo) ListWithFilter(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	var out []domain.Project
	for _, project := range m.projects {
		out = append(out, project)
	}
	return out, nil
}

type memTicketRepo struct {
	seq     int
	tickets map[string]domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (m *memTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	m.seq++
	ticket.ID = fmt.Sprintf("tck-%d", m.seq)
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *memTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if _, ok := m.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *memTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (m *memTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range m.tickets {
		out = append(out, ticket)
	}
	return out, nil
}

type memClientRepo struct {
	clients map[string]domain.Client
}

func (m *memClientRepo) Create(ctx context.Context, client *domain.Client) error {
	m.clients[client.ID] = *client
	return nil
}

func (m *memClientRepo) Update(ctx context.Context, client *domain.Client) error {
	m.clients[client.ID] = *client
	return nil
}

func (m *memClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	client, ok := m.clients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &client, nil
}

func (m *memClientRepo) List(ctx context.Context, includeInactive bool) ([]domain.Client, error) {
	var out []domain.Client
	for _, client := range m.clients {
		out = append(out, client)
	}
	return out, nil
}

type memUserRepo struct {
	users map[string]domain.User
}

func (m *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.users[user.ID] = *user
	return nil
}

func (m *memUserRepo) Update(ctx context.Context, user *domain.User) error {
	m.users[user.ID] = *user
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var out []domain.User
	for _, user := range m.users {
		out = append(out, user)
	}
	return out, nil
}

type memCommentRepo struct {
	seq      int
	comments []domain.RequestComment
}

func (m *memCommentRepo) Create(ctx context.Context, comment *domain.RequestComment) error {
	m.seq++
	comment.ID = fmt.Sprintf("cmt-%d", m.seq)
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *memCommentRepo) ListByRequest(ctx context.Context, requestID string) ([]domain.RequestComment, error) {
	var out []domain.RequestComment
	for _, comment := range m.comments {
		if comment.RequestID == requestID {
			out = append(out, comment)
		}
	}
	return out, nil
}

type memHistoryRepo struct {
	entries []domain.RequestHistory
}

func (m *memHistoryRepo) Create(ctx context.Context, history *domain.RequestHistory) error {
	m.entries = append(m.entries, *history)
	return nil
}

func (m *memHistoryRepo) ListByRequest(ctx context.Context, requestID string, limit, offset int) ([]domain.RequestHistory, error) {
	var out []domain.RequestHistory
	for _, entry := range m.entries {
		if entry.RequestID == requestID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type intakeFixture struct {
	service  *IntakeService
	requests *memRequestRepo
	projects *memProjectRepo
	tickets  *memTicketRepo
	history  *memHistoryRepo
	comments *memCommentRepo
	events   []events.Event
	now      time.Time
}

func newIntakeFixture(t *testing.T) *intakeFixture {
	t.Helper()
	fixture := &intakeFixture{
		projects: newMemProjectRepo(),
		tickets:  newMemTicketRepo(),
		history:  &memHistoryRepo{},
		comments: &memCommentRepo{},
		now:      time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC),
	}
	fixture.requests = newMemRequestRepo(func() time.Time { return fixture.now })
	clients := &memClientRepo{clients: map[string]domain.Client{
		"client-1":   {ID: "client-1", Name: "Acme", IsActive: true},
		"client-2":   {ID: "client-2", Name: "Globex", IsActive: true},
		"client-off": {ID: "client-off", Name: "Gone", IsActive: false},
	}}
	users := &memUserRepo{users: map[string]domain.User{
		"staff-1":  {ID: "staff-1", Role: domain.RoleAdmin, IsInternal: true, Status: domain.UserStatusActive},
		"staff-pm": {ID: "staff-pm", Role: domain.RoleEditor, IsInternal: true, Status: domain.UserStatusActive},
		"user-1":   {ID: "user-1", Role: domain.RoleClient, ClientID: strPtr("client-1"), Status: domain.UserStatusActive},
	}}
	dispatcher := events.NewInMemoryDispatcher(nil)
	for _, eventType := range []events.EventType{
		events.EventRequestCreated, events.EventRequestStageChanged, events.EventRequestEstimated,
		events.EventRequestConverted, events.EventRequestCancelled, events.EventRequestPmAssigned,
		events.EventRequestCommented, events.EventTicketCreated, events.EventProjectCreated,
	} {
		dispatcher.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			fixture.events = append(fixture.events, event)
			return nil
		})
	}
	fixture.service = NewIntakeService(IntakeDependencies{
		RequestRepo: fixture.requests,
		ProjectRepo: fixture.projects,
		TicketRepo:  fixture.tickets,
		ClientRepo:  clients,
		UserRepo:    users,
		CommentRepo: fixture.comments,
		HistoryRepo: fixture.history,
		Dispatcher:  dispatcher,
		Now:         func() time.Time { return fixture.now },
	})
	return fixture
}

func (f *intakeFixture) eventTypes() []events.EventType {
	out := make([]events.EventType, 0, len(f.events))
	for _, event := range f.events {
		out = append(out, event.Type)
	}
	return out
}

func strPtr(s string) *string { return &s }

func staffActor() *domain.User {
	return &domain.User{ID: "staff-1", Role: domain.RoleAdmin, IsInternal: true}
}

func clientActor() *domain.User {
	return &domain.User{ID: "user-1", Role: domain.RoleClient, ClientID: strPtr("client-1")}
}

func TestCreateRequestDefaults(t *testing.T) {
	fixture := newIntakeFixture(t)

	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{
		Title:    "  New portal  ",
		ClientID: strPtr("client-1"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StageInTreatment, request.Stage)
	require.Equal(t, domain.RequestTypeOther, request.Type)
	require.Equal(t, domain.RequestPriorityMedium, request.Priority)
	require.Equal(t, "New portal", request.Title)
	require.Regexp(t, `^REQ-[0-9A-F]{8}$`, request.RequestNumber)
	require.Equal(t, []events.EventType{events.EventRequestCreated}, fixture.eventTypes())
}

func TestCreateRequestValidation(t *testing.T) {
	fixture := newIntakeFixture(t)

	_, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{Title: "  "})
	require.Error(t, err)

	_, err = fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{
		Title:    "For inactive",
		ClientID: strPtr("client-off"),
	})
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestTransitionResetsStageEnteredAt(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{Title: "Job"})
	require.NoError(t, err)

	fixture.now = fixture.now.Add(30 * time.Hour)
	updated, err := fixture.service.Transition(context.Background(), staffActor(), request.ID, domain.StageEstimation)
	require.NoError(t, err)
	require.Equal(t, domain.StageEstimation, updated.Stage)
	require.Equal(t, fixture.now, updated.StageEnteredAt)

	stored, err := fixture.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StageEstimation, stored.Stage)
	require.Equal(t, fixture.now, stored.StageEnteredAt)
}

func TestTransitionRejectedByTable(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{Title: "Job"})
	require.NoError(t, err)

	_, err = fixture.service.Transition(context.Background(), staffActor(), request.ID, domain.StageReady)
	require.Error(t, err)
	require.Equal(t, "INVALID_TRANSITION", apperrors.ToDomainError(err).Code)

	stored, err := fixture.requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StageInTreatment, stored.Stage)
}

func TestHoldRequiresReasonAndResumeClears(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{Title: "Job"})
	require.NoError(t, err)

	_, err = fixture.service.Hold(context.Background(), staffActor(), request.ID, "  ")
	require.Error(t, err)

	held, err := fixture.service.Hold(context.Background(), staffActor(), request.ID, "waiting on client")
	require.NoError(t, err)
	require.Equal(t, domain.StageOnHold, held.Stage)
	require.NotNil(t, held.HoldReason)
	require.Equal(t, "waiting on client", *held.HoldReason)

	resumed, err := fixture.service.Resume(context.Background(), staffActor(), request.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StageInTreatment, resumed.Stage)
	require.Nil(t, resumed.HoldReason)
}

func TestEstimateKeepsStage(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{Title: "Job"})
	require.NoError(t, err)
	_, err = fixture.service.Transition(context.Background(), staffActor(), request.ID, domain.StageEstimation)
	require.NoError(t, err)

	estimated, err := fixture.service.Estimate(context.Background(), staffActor(), request.ID, 13, domain.ConfidenceMedium, nil)
	require.NoError(t, err)
	require.Equal(t, domain.StageEstimation, estimated.Stage)
	require.NotNil(t, estimated.StoryPoints)
	require.Equal(t, 13, *estimated.StoryPoints)
	require.NotNil(t, estimated.EstimatedAt)

	// estimate unlocks the ready stage
	ready, err := fixture.service.Transition(context.Background(), staffActor(), request.ID, domain.StageReady)
	require.NoError(t, err)
	require.Equal(t, domain.StageReady, ready.Stage)
}

func TestEstimateRejectsOutOfRange(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{Title: "Job"})
	require.NoError(t, err)

	for _, points := range []int{0, -1, 101} {
		_, err = fixture.service.Estimate(context.Background(), staffActor(), request.ID, points, domain.ConfidenceHigh, nil)
		require.Errorf(t, err, "points %d", points)
	}
}

func TestConvertFollowsRecommendation(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{
		Title: "Big build", Type: domain.RequestTypeFeature,
	})
	require.NoError(t, err)
	_, err = fixture.service.Transition(context.Background(), staffActor(), request.ID, domain.StageEstimation)
	require.NoError(t, err)
	_, err = fixture.service.Estimate(context.Background(), staffActor(), request.ID, 21, domain.ConfidenceHigh, nil)
	require.NoError(t, err)

	converted, targetID, err := fixture.service.Convert(context.Background(), staffActor(), request.ID, ConvertInput{
		Destination: domain.RouteToProject,
	})
	require.NoError(t, err)
	require.True(t, converted.IsConverted)
	require.NotNil(t, converted.ConvertedTo)
	require.Equal(t, domain.RouteToProject, *converted.ConvertedTo)

	project, err := fixture.projects.GetByID(context.Background(), targetID)
	require.NoError(t, err)
	require.Equal(t, "Big build", project.Name)
	require.NotNil(t, project.SourceRequest)
	require.Equal(t, request.ID, *project.SourceRequest)

	// terminal now: no further transitions or conversions
	_, err = fixture.service.Transition(context.Background(), staffActor(), request.ID, domain.StageInTreatment)
	require.Error(t, err)
	_, _, err = fixture.service.Convert(context.Background(), staffActor(), request.ID, ConvertInput{Destination: domain.RouteToTicket})
	require.Error(t, err)
}

func TestConvertAgainstRecommendationNeedsOverride(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{
		Title: "Small fix", Type: domain.RequestTypeBug,
	})
	require.NoError(t, err)
	_, err = fixture.service.Transition(context.Background(), staffActor(), request.ID, domain.StageEstimation)
	require.NoError(t, err)
	_, err = fixture.service.Estimate(context.Background(), staffActor(), request.ID, 3, domain.ConfidenceHigh, nil)
	require.NoError(t, err)

	// recommendation is ticket; project without override is rejected
	_, _, err = fixture.service.Convert(context.Background(), staffActor(), request.ID, ConvertInput{
		Destination: domain.RouteToProject,
	})
	require.Error(t, err)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	// override without a reason is rejected
	_, _, err = fixture.service.Convert(context.Background(), staffActor(), request.ID, ConvertInput{
		Destination:     domain.RouteToProject,
		OverrideRouting: true,
	})
	require.Error(t, err)

	converted, targetID, err := fixture.service.Convert(context.Background(), staffActor(), request.ID, ConvertInput{
		Destination:     domain.RouteToProject,
		OverrideRouting: true,
		OverrideReason:  "strategic account",
	})
	require.NoError(t, err)
	require.True(t, converted.IsConverted)
	_, err = fixture.projects.GetByID(context.Background(), targetID)
	require.NoError(t, err)

	var convertEntry *domain.RequestHistory
	for i := range fixture.history.entries {
		if fixture.history.entries[i].ChangeType == domain.ChangeTypeConvert {
			convertEntry = &fixture.history.entries[i]
		}
	}
	require.NotNil(t, convertEntry)
	require.Equal(t, "strategic account", convertEntry.NewValue["override_reason"])
}

func TestConvertChangeRequestRoutesToTicket(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{
		Title: "Tweak copy", Type: domain.RequestTypeChangeRequest,
	})
	require.NoError(t, err)
	_, err = fixture.service.Transition(context.Background(), staffActor(), request.ID, domain.StageEstimation)
	require.NoError(t, err)
	_, err = fixture.service.Estimate(context.Background(), staffActor(), request.ID, 40, domain.ConfidenceLow, nil)
	require.NoError(t, err)

	// even at 40 points a change request still recommends a ticket
	converted, targetID, err := fixture.service.Convert(context.Background(), staffActor(), request.ID, ConvertInput{
		Destination: domain.RouteToTicket,
	})
	require.NoError(t, err)
	require.Equal(t, domain.RouteToTicket, *converted.ConvertedTo)

	ticket, err := fixture.tickets.GetByID(context.Background(), targetID)
	require.NoError(t, err)
	require.Regexp(t, `^TCK-[0-9A-F]{8}$`, ticket.TicketNumber)
	require.Equal(t, domain.TicketStatusOpen, ticket.Status)
}

func TestCancelBlocksFurtherWork(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{Title: "Job"})
	require.NoError(t, err)

	cancelled, err := fixture.service.Cancel(context.Background(), staffActor(), request.ID)
	require.NoError(t, err)
	require.True(t, cancelled.IsCancelled)
	require.Equal(t, domain.StageInTreatment, cancelled.Stage)

	_, err = fixture.service.Cancel(context.Background(), staffActor(), request.ID)
	require.Error(t, err)
	_, err = fixture.service.Transition(context.Background(), staffActor(), request.ID, domain.StageEstimation)
	require.Error(t, err)
}

func TestAssignPmRequiresInternalTarget(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{Title: "Job"})
	require.NoError(t, err)

	_, err = fixture.service.AssignPm(context.Background(), staffActor(), request.ID, "user-1")
	require.Error(t, err)

	assigned, err := fixture.service.AssignPm(context.Background(), staffActor(), request.ID, "staff-pm")
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedPmID)
	require.Equal(t, "staff-pm", *assigned.AssignedPmID)
}

func TestClientScoping(t *testing.T) {
	fixture := newIntakeFixture(t)
	mine, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{
		Title: "Mine", ClientID: strPtr("client-1"),
	})
	require.NoError(t, err)
	other, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{
		Title: "Theirs", ClientID: strPtr("client-2"),
	})
	require.NoError(t, err)

	_, err = fixture.service.GetRequest(context.Background(), clientActor(), other.ID)
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	listed, _, err := fixture.service.ListRequests(context.Background(), clientActor(), repository.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, mine.ID, listed[0].ID)
}

func TestInternalCommentsHiddenFromClients(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{
		Title: "Job", ClientID: strPtr("client-1"),
	})
	require.NoError(t, err)

	_, err = fixture.service.AddComment(context.Background(), clientActor(), request.ID, "note", true)
	require.Error(t, err)

	_, err = fixture.service.AddComment(context.Background(), staffActor(), request.ID, "internal triage", true)
	require.NoError(t, err)
	_, err = fixture.service.AddComment(context.Background(), clientActor(), request.ID, "any update?", false)
	require.NoError(t, err)

	staffView, err := fixture.service.GetRequest(context.Background(), staffActor(), request.ID)
	require.NoError(t, err)
	require.Len(t, staffView.Comments, 2)

	clientView, err := fixture.service.GetRequest(context.Background(), clientActor(), request.ID)
	require.NoError(t, err)
	require.Len(t, clientView.Comments, 1)
	require.False(t, clientView.Comments[0].IsInternal)
}

func TestGetRequestReportsAging(t *testing.T) {
	fixture := newIntakeFixture(t)
	request, err := fixture.service.CreateRequest(context.Background(), staffActor(), RequestCreateInput{Title: "Job"})
	require.NoError(t, err)

	fixture.now = fixture.now.Add(30 * time.Hour)
	detail, err := fixture.service.GetRequest(context.Background(), staffActor(), request.ID)
	require.NoError(t, err)
	require.Equal(t, intake.AgingWarning, detail.Aging)

	fixture.now = fixture.now.Add(30 * time.Hour)
	detail, err = fixture.service.GetRequest(context.Background(), staffActor(), request.ID)
	require.NoError(t, err)
	require.Equal(t, intake.AgingCritical, detail.Aging)
}
