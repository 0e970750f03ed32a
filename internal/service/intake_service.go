package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/events"
	"github.com/spec-kit/intake-service/internal/intake"
	"github.com/spec-kit/intake-service/internal/repository"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// IntakeService coordinates the request pipeline: stage transitions,
// estimation, routing and conversion into projects or tickets.
type IntakeService struct {
	requests   repository.RequestRepository
	projects   repository.ProjectRepository
	tickets    repository.TicketRepository
	clients    repository.ClientRepository
	users      repository.UserRepository
	comments   repository.RequestCommentRepository
	history    repository.RequestHistoryRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// IntakeDependencies bundles repositories for the intake service.
type IntakeDependencies struct {
	RequestRepo repository.RequestRepository
	ProjectRepo repository.ProjectRepository
	TicketRepo  repository.TicketRepository
	ClientRepo  repository.ClientRepository
	UserRepo    repository.UserRepository
	CommentRepo repository.RequestCommentRepository
	HistoryRepo repository.RequestHistoryRepository
	Dispatcher  events.Dispatcher
	Now         func() time.Time
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &IntakeService{
		requests:   deps.RequestRepo,
		projects:   deps.ProjectRepo,
		tickets:    deps.TicketRepo,
		clients:    deps.ClientRepo,
		users:      deps.UserRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// RequestCreateInput describes request creation payload.
type RequestCreateInput struct {
	Title       string
	Description string
	Type        domain.RequestType
	Priority    domain.RequestPriority
	ClientID    *string
}

// ConvertInput describes conversion parameters.
type ConvertInput struct {
	Destination     domain.RoutingDestination
	ProjectID       *string
	OverrideRouting bool
	OverrideReason  string
}

// RequestDetail bundles a request with its thread and audit trail.
type RequestDetail struct {
	Request  *domain.Request
	Aging    intake.AgingLevel
	Comments []domain.RequestComment
	History  []domain.RequestHistory
}

// CreateRequest opens a new intake request in the in_treatment stage.
func (s *IntakeService) CreateRequest(ctx context.Context, actor *domain.User, input RequestCreateInput) (*domain.Request, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if input.ClientID != nil {
		client, err := s.clients.GetByID(ctx, *input.ClientID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if !client.IsActive {
			return nil, apperrors.NewConflict("client inactive", map[string]any{"client_id": *input.ClientID})
		}
	}

	request := &domain.Request{
		RequestNumber: generateRequestNumber(),
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		Type:          input.Type,
		Priority:      input.Priority,
		Stage:         domain.StageInTreatment,
		ClientID:      input.ClientID,
		CreatedByID:   actor.ID,
	}
	if request.Type == "" {
		request.Type = domain.RequestTypeOther
	}
	if request.Priority == "" {
		request.Priority = domain.RequestPriorityMedium
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		ActorID:   actor.ID,
		Payload: events.RequestCreatedPayload{
			RequestNumber: request.RequestNumber,
			Type:          request.Type,
			Priority:      request.Priority,
			ClientID:      request.ClientID,
			Title:         request.Title,
		},
	})
	return request, nil
}

// ListRequests returns filtered requests with their aging status. Client
// accounts only see their own client's requests and no internal comments.
func (s *IntakeService) ListRequests(ctx context.Context, actor *domain.User, filter repository.RequestFilter) ([]domain.Request, []intake.AgingLevel, error) {
	if !actor.IsInternal {
		if actor.ClientID == nil {
			return nil, nil, apperrors.NewForbidden("no client scope")
		}
		filter.ClientID = actor.ClientID
	}
	requests, err := s.requests.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	now := s.now()
	aging := make([]intake.AgingLevel, len(requests))
	for i := range requests {
		aging[i] = intake.AgingStatus(requests[i].Stage, requests[i].StageEnteredAt, now)
	}
	return requests, aging, nil
}

// GetRequest fetches a request with comments and history.
func (s *IntakeService) GetRequest(ctx context.Context, actor *domain.User, requestID string) (*RequestDetail, error) {
	request, err := s.loadScoped(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByRequest(ctx, request.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.IsInternal {
		visible := make([]domain.RequestComment, 0, len(comments))
		for _, comment := range comments {
			if !comment.IsInternal {
				visible = append(visible, comment)
			}
		}
		comments = visible
	}
	history, err := s.history.ListByRequest(ctx, request.ID, 100, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &RequestDetail{
		Request:  request,
		Aging:    intake.AgingStatus(request.Stage, request.StageEnteredAt, s.now()),
		Comments: comments,
		History:  history,
	}, nil
}

// Transition moves a request to a new stage, resetting StageEnteredAt.
func (s *IntakeService) Transition(ctx context.Context, actor *domain.User, requestID string, target domain.RequestStage) (*domain.Request, error) {
	request, err := s.loadScoped(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, actor, request, target, nil)
}

// Hold parks a request with a mandatory reason.
func (s *IntakeService) Hold(ctx context.Context, actor *domain.User, requestID, reason string) (*domain.Request, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("hold reason required", nil)
	}
	request, err := s.loadScoped(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, actor, request, domain.StageOnHold, &reason)
}

// Resume returns a held request to treatment and clears the hold reason.
func (s *IntakeService) Resume(ctx context.Context, actor *domain.User, requestID string) (*domain.Request, error) {
	request, err := s.loadScoped(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	return s.applyTransition(ctx, actor, request, domain.StageInTreatment, nil)
}

func (s *IntakeService) applyTransition(ctx context.Context, actor *domain.User, request *domain.Request, target domain.RequestStage, holdReason *string) (*domain.Request, error) {
	if err := intake.ValidateTransition(request, target); err != nil {
		return nil, err
	}
	oldStage := request.Stage
	request.Stage = target
	request.StageEnteredAt = s.now()
	switch target {
	case domain.StageOnHold:
		request.HoldReason = holdReason
	default:
		request.HoldReason = nil
	}
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordHistory(ctx, actor, request.ID, domain.ChangeTypeStage,
		map[string]any{"stage": oldStage},
		map[string]any{"stage": target, "hold_reason": request.HoldReason},
	); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestStageChanged,
		RequestID: request.ID,
		ActorID:   actor.ID,
		Payload: events.StageChangedPayload{
			OldStage:   oldStage,
			NewStage:   target,
			HoldReason: request.HoldReason,
		},
	})
	return request, nil
}

// Estimate records story points and confidence. The stage is untouched; the
// caller transitions to ready separately once the estimate is accepted.
func (s *IntakeService) Estimate(ctx context.Context, actor *domain.User, requestID string, storyPoints int, confidence domain.EstimateConfidence, notes *string) (*domain.Request, error) {
	if err := intake.ValidateEstimate(storyPoints, confidence); err != nil {
		return nil, err
	}
	request, err := s.loadScoped(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if request.Terminal() {
		return nil, apperrors.NewConflict("request is converted or cancelled", nil)
	}

	oldPoints := request.StoryPoints
	now := s.now()
	request.StoryPoints = &storyPoints
	request.Confidence = &confidence
	request.EstimationNotes = notes
	request.EstimatedAt = &now
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordHistory(ctx, actor, request.ID, domain.ChangeTypeEstimate,
		map[string]any{"story_points": oldPoints},
		map[string]any{"story_points": storyPoints, "confidence": confidence},
	); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestEstimated,
		RequestID: request.ID,
		ActorID:   actor.ID,
		Payload: events.EstimatedPayload{
			StoryPoints: storyPoints,
			Confidence:  confidence,
			Recommended: intake.RecommendRouting(&storyPoints, request.Type),
		},
	})
	return request, nil
}

// Convert marks the request converted and creates the destination project or
// ticket. A destination that disagrees with the routing recommendation needs
// an explicit override with a reason.
func (s *IntakeService) Convert(ctx context.Context, actor *domain.User, requestID string, input ConvertInput) (*domain.Request, string, error) {
	if input.Destination != domain.RouteToTicket && input.Destination != domain.RouteToProject {
		return nil, "", apperrors.NewValidationError("destination must be ticket or project", nil)
	}
	request, err := s.loadScoped(ctx, actor, requestID)
	if err != nil {
		return nil, "", err
	}
	if request.Terminal() {
		return nil, "", apperrors.NewConflict("request is converted or cancelled", nil)
	}

	recommended := intake.RecommendRouting(request.StoryPoints, request.Type)
	overridden := input.Destination != recommended
	if overridden {
		if !input.OverrideRouting {
			return nil, "", apperrors.NewConflict("destination conflicts with routing recommendation", map[string]any{
				"recommended": recommended,
				"requested":   input.Destination,
			})
		}
		if strings.TrimSpace(input.OverrideReason) == "" {
			return nil, "", apperrors.NewValidationError("override reason required", nil)
		}
	}

	var targetID string
	switch input.Destination {
	case domain.RouteToProject:
		project := &domain.Project{
			Name:          request.Title,
			Description:   request.Description,
			ClientID:      request.ClientID,
			PmID:          request.AssignedPmID,
			Status:        domain.ProjectStatusPlanning,
			StoryPoints:   request.StoryPoints,
			SourceRequest: &request.ID,
		}
		if err := s.projects.Create(ctx, project); err != nil {
			return nil, "", apperrors.MapError(err)
		}
		targetID = project.ID
		request.RelatedProjectID = &project.ID
		s.publishEvent(ctx, events.Event{
			Type:      events.EventProjectCreated,
			RequestID: request.ID,
			ActorID:   actor.ID,
			Payload:   events.ConvertedPayload{Destination: input.Destination, TargetID: targetID, Overridden: overridden},
		})
	case domain.RouteToTicket:
		ticket := &domain.Ticket{
			TicketNumber:  generateTicketNumber(),
			Title:         request.Title,
			Description:   request.Description,
			ClientID:      request.ClientID,
			ProjectID:     input.ProjectID,
			Status:        domain.TicketStatusOpen,
			Priority:      request.Priority,
			SourceRequest: &request.ID,
		}
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return nil, "", apperrors.MapError(err)
		}
		targetID = ticket.ID
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketCreated,
			RequestID: request.ID,
			ActorID:   actor.ID,
			Payload:   events.ConvertedPayload{Destination: input.Destination, TargetID: targetID, Overridden: overridden},
		})
	}

	destination := input.Destination
	request.IsConverted = true
	request.ConvertedTo = &destination
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, "", apperrors.MapError(err)
	}
	newValue := map[string]any{
		"destination": destination,
		"target_id":   targetID,
		"overridden":  overridden,
	}
	if overridden {
		newValue["override_reason"] = strings.TrimSpace(input.OverrideReason)
	}
	if err := s.recordHistory(ctx, actor, request.ID, domain.ChangeTypeConvert,
		map[string]any{"recommended": recommended},
		newValue,
	); err != nil {
		return nil, "", apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestConverted,
		RequestID: request.ID,
		ActorID:   actor.ID,
		Payload:   events.ConvertedPayload{Destination: destination, TargetID: targetID, Overridden: overridden},
	})
	return request, targetID, nil
}

// Cancel flags the request cancelled. The stage is left as-is; the flag
// alone blocks any further transitions.
func (s *IntakeService) Cancel(ctx context.Context, actor *domain.User, requestID string) (*domain.Request, error) {
	request, err := s.loadScoped(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if request.Terminal() {
		return nil, apperrors.NewConflict("request is converted or cancelled", nil)
	}
	request.IsCancelled = true
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordHistory(ctx, actor, request.ID, domain.ChangeTypeCancel,
		map[string]any{"is_cancelled": false},
		map[string]any{"is_cancelled": true},
	); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCancelled,
		RequestID: request.ID,
		ActorID:   actor.ID,
	})
	return request, nil
}

// AssignPm sets the responsible project manager; the target must be an
// internal account.
func (s *IntakeService) AssignPm(ctx context.Context, actor *domain.User, requestID, pmID string) (*domain.Request, error) {
	pm, err := s.users.GetByID(ctx, pmID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !pm.IsInternal {
		return nil, apperrors.NewConflict("assigned PM must be internal staff", map[string]any{"user_id": pmID})
	}
	request, err := s.loadScoped(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if request.Terminal() {
		return nil, apperrors.NewConflict("request is converted or cancelled", nil)
	}
	oldPm := request.AssignedPmID
	request.AssignedPmID = &pm.ID
	if err := s.requests.Update(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordHistory(ctx, actor, request.ID, domain.ChangeTypeAssignPm,
		map[string]any{"assigned_pm_id": oldPm},
		map[string]any{"assigned_pm_id": pm.ID},
	); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestPmAssigned,
		RequestID: request.ID,
		ActorID:   actor.ID,
		Payload:   events.PmAssignedPayload{OldPmID: oldPm, NewPmID: pm.ID},
	})
	return request, nil
}

// AddComment appends a comment to the request thread. Only internal staff
// may post internal comments.
func (s *IntakeService) AddComment(ctx context.Context, actor *domain.User, requestID, body string, internal bool) (*domain.RequestComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}
	if internal && !actor.IsInternal {
		return nil, apperrors.NewForbidden("internal comments are staff only")
	}
	request, err := s.loadScoped(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	comment := &domain.RequestComment{
		RequestID:  request.ID,
		AuthorID:   actor.ID,
		Body:       body,
		IsInternal: internal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCommented,
		RequestID: request.ID,
		ActorID:   actor.ID,
		Payload: events.CommentedPayload{
			CommentID:   comment.ID,
			IsInternal:  comment.IsInternal,
			BodyPreview: stringPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

func (s *IntakeService) loadScoped(ctx context.Context, actor *domain.User, requestID string) (*domain.Request, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !actor.IsInternal {
		if actor.ClientID == nil || request.ClientID == nil || *actor.ClientID != *request.ClientID {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	return request, nil
}

func (s *IntakeService) recordHistory(ctx context.Context, actor *domain.User, requestID string, changeType domain.RequestChangeType, oldValue, newValue map[string]any) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.RequestHistory{
		RequestID:   requestID,
		ChangedByID: &actor.ID,
		ChangeType:  changeType,
		OldValue:    oldValue,
		NewValue:    newValue,
	})
}

func (s *IntakeService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateRequestNumber() string {
	return "REQ-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func generateTicketNumber() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
