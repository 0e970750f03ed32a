package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/dto"
	"github.com/spec-kit/intake-service/internal/auth"
	"github.com/spec-kit/intake-service/internal/domain"
	"github.com/spec-kit/intake-service/internal/intake"
	"github.com/spec-kit/intake-service/internal/repository"
	"github.com/spec-kit/intake-service/internal/service"
	apperrors "github.com/spec-kit/intake-service/pkg/util/errorutil"
)

// RequestsHandler manages intake request endpoints.
type RequestsHandler struct {
	service *service.IntakeService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(intakeService *service.IntakeService) *RequestsHandler {
	return &RequestsHandler{service: intakeService}
}

// CreateRequest POST /requests.
func (h *RequestsHandler) CreateRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.RequestCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		ClientID:    req.ClientID,
	}
	request, err := h.service.CreateRequest(c.Context(), principal.User, input)
	if err != nil {
		return err
	}
	aging := intake.AgingStatus(request.Stage, request.StageEnteredAt, time.Now())
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestSummary(request, aging)})
}

// ListRequests GET /requests.
func (h *RequestsHandler) ListRequests(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	filter := parseRequestQuery(c)
	requests, aging, err := h.service.ListRequests(c.Context(), principal.User, filter)
	if err != nil {
		return err
	}
	items := make([]dto.RequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, requestSummary(&requests[i], aging[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRequest GET /requests/:id.
func (h *RequestsHandler) GetRequest(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	detail, err := h.service.GetRequest(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(detail)})
}

// Transition PATCH /requests/:id/transition.
func (h *RequestsHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Stage == "" {
		return apperrors.NewValidationError("stage required", nil)
	}
	request, err := h.service.Transition(c.Context(), principal.User, c.Params("id"), req.Stage)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summaryNow(request)})
}

// Hold POST /requests/:id/hold.
func (h *RequestsHandler) Hold(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.HoldRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	request, err := h.service.Hold(c.Context(), principal.User, c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summaryNow(request)})
}

// Resume POST /requests/:id/resume.
func (h *RequestsHandler) Resume(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	request, err := h.service.Resume(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summaryNow(request)})
}

// Estimate POST /requests/:id/estimate.
func (h *RequestsHandler) Estimate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.EstimateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	request, err := h.service.Estimate(c.Context(), principal.User, c.Params("id"), req.StoryPoints, req.Confidence, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summaryNow(request)})
}

// Convert POST /requests/:id/convert.
func (h *RequestsHandler) Convert(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ConvertRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.ConvertInput{
		Destination:     req.Destination,
		ProjectID:       req.ProjectID,
		OverrideRouting: req.OverrideRouting,
		OverrideReason:  req.OverrideReason,
	}
	request, targetID, err := h.service.Convert(c.Context(), principal.User, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ConvertResponse{
		Request:     h.summaryNow(request),
		Destination: *request.ConvertedTo,
		TargetID:    targetID,
	}})
}

// Cancel POST /requests/:id/cancel.
func (h *RequestsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	request, err := h.service.Cancel(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summaryNow(request)})
}

// AssignPm POST /requests/:id/assign-pm.
func (h *RequestsHandler) AssignPm(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignPmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PmID == "" {
		return apperrors.NewValidationError("pm_id required", nil)
	}
	request, err := h.service.AssignPm(c.Context(), principal.User, c.Params("id"), req.PmID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.summaryNow(request)})
}

// AddComment POST /requests/:id/comments.
func (h *RequestsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.Context(), principal.User, c.Params("id"), req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

func (h *RequestsHandler) summaryNow(request *domain.Request) dto.RequestSummary {
	return requestSummary(request, intake.AgingStatus(request.Stage, request.StageEnteredAt, time.Now()))
}

func parseRequestQuery(c *fiber.Ctx) repository.RequestFilter {
	filter := repository.RequestFilter{}
	if stageStr := c.Query("stage"); stageStr != "" {
		for _, part := range strings.Split(stageStr, ",") {
			filter.Stages = append(filter.Stages, domain.RequestStage(strings.TrimSpace(part)))
		}
	}
	if typeStr := c.Query("type"); typeStr != "" {
		for _, part := range strings.Split(typeStr, ",") {
			filter.Types = append(filter.Types, domain.RequestType(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.RequestPriority(strings.TrimSpace(part)))
		}
	}
	if clientID := c.Query("client_id"); clientID != "" {
		filter.ClientID = &clientID
	}
	if pmID := c.Query("assigned_pm"); pmID != "" {
		filter.AssignedPm = &pmID
	}
	if converted := parseBool(c.Query("converted")); converted != nil {
		filter.Converted = converted
	}
	if cancelled := parseBool(c.Query("cancelled")); cancelled != nil {
		filter.Cancelled = cancelled
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseBool(val string) *bool {
	if val == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &parsed
}

func requestSummary(request *domain.Request, aging intake.AgingLevel) dto.RequestSummary {
	return dto.RequestSummary{
		ID:             request.ID,
		RequestNumber:  request.RequestNumber,
		Title:          request.Title,
		Type:           request.Type,
		Priority:       request.Priority,
		Stage:          request.Stage,
		StageEnteredAt: request.StageEnteredAt,
		Aging:          aging,
		HoldReason:     request.HoldReason,
		StoryPoints:    request.StoryPoints,
		ClientID:       request.ClientID,
		AssignedPmID:   request.AssignedPmID,
		IsConverted:    request.IsConverted,
		IsCancelled:    request.IsCancelled,
		ConvertedTo:    request.ConvertedTo,
		CreatedAt:      request.CreatedAt,
		UpdatedAt:      request.UpdatedAt,
	}
}

func requestDetail(detail *service.RequestDetail) dto.RequestDetailResponse {
	request := detail.Request
	comments := make([]dto.CommentResponse, 0, len(detail.Comments))
	for i := range detail.Comments {
		comments = append(comments, commentResponse(&detail.Comments[i]))
	}
	history := make([]dto.HistoryResponse, 0, len(detail.History))
	for _, entry := range detail.History {
		history = append(history, dto.HistoryResponse{
			ID:          entry.ID,
			ChangeType:  entry.ChangeType,
			ChangedByID: entry.ChangedByID,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return dto.RequestDetailResponse{
		RequestSummary:  requestSummary(request, detail.Aging),
		Description:     request.Description,
		Confidence:      request.Confidence,
		EstimationNotes: request.EstimationNotes,
		EstimatedAt:     request.EstimatedAt,
		Recommended:     intake.RecommendRouting(request.StoryPoints, request.Type),
		Comments:        comments,
		History:         history,
	}
}

func commentResponse(comment *domain.RequestComment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		AuthorID:   comment.AuthorID,
		Body:       comment.Body,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}
