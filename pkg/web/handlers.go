package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/registry"
	"github.com/haldesk/haldesk/pkg/workflow"
)

type APIHandlers struct {
	orchestrator *workflow.Orchestrator
	registry     *registry.Registry
	persistence  persistence.Persistence
	validator    *validator.Validate
}

func NewAPIHandlers(
	orchestrator *workflow.Orchestrator,
	registry *registry.Registry,
	persistence persistence.Persistence,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		orchestrator: orchestrator,
		registry:     registry,
		persistence:  persistence,
		validator:    validator,
	}
}

// ExecuteTransition fires a transition against a ticket on behalf of a user.
func (h *APIHandlers) ExecuteTransition(c fiber.Ctx) error {
	ticketID := c.Params("id")
	transitionID := c.Params("transitionId")

	if ticketID == "" || transitionID == "" {
		return badRequest(c, "Ticket ID and transition ID are required")
	}

	var req ExecuteTransitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.orchestrator.ExecuteTransition(c.Context(), ticketID, transitionID, req.UserID, workflow.TransitionRequest{
		Comment:    req.Comment,
		AssigneeID: req.AssigneeID,
		Context:    req.Context,
	})
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(result)
}

// AvailableTransitions lists the transitions a user may currently fire
// against a ticket, conditions included.
func (h *APIHandlers) AvailableTransitions(c fiber.Ctx) error {
	ticketID := c.Params("id")
	if ticketID == "" {
		return badRequest(c, "Ticket ID is required")
	}

	userID := c.Query("user_id")

	transitions, err := h.orchestrator.AvailableTransitions(c.Context(), ticketID, userID)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"ticket_id":   ticketID,
		"transitions": transitions,
	})
}

// TicketHistory returns one ticket's transition attempts, newest first.
func (h *APIHandlers) TicketHistory(c fiber.Ctx) error {
	ticketID := c.Params("id")
	if ticketID == "" {
		return badRequest(c, "Ticket ID is required")
	}

	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return badRequest(c, "Invalid limit parameter")
	}

	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return badRequest(c, "Invalid offset parameter")
	}

	history, total, err := h.orchestrator.History(c.Context(), ticketID, limit, offset)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"history":     history,
		"total_count": total,
		"pagination": fiber.Map{
			"limit":  limit,
			"offset": offset,
		},
	})
}

// TypeStats aggregates transition outcomes per destination status for one
// workflow type over an optional from/to range.
func (h *APIHandlers) TypeStats(c fiber.Ctx) error {
	workflowTypeID := c.Params("id")
	if workflowTypeID == "" {
		return badRequest(c, "Workflow type ID is required")
	}

	from, to, err := queryTimeRange(c)
	if err != nil {
		return badRequest(c, "Invalid time range: "+err.Error())
	}

	stats, err := h.orchestrator.TypeStats(c.Context(), workflowTypeID, from, to)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflow_type_id": workflowTypeID,
		"stats":            stats,
	})
}

// SuccessRate summarizes committed versus failed transition attempts for one
// workflow type over an optional from/to range.
func (h *APIHandlers) SuccessRate(c fiber.Ctx) error {
	workflowTypeID := c.Params("id")
	if workflowTypeID == "" {
		return badRequest(c, "Workflow type ID is required")
	}

	from, to, err := queryTimeRange(c)
	if err != nil {
		return badRequest(c, "Invalid time range: "+err.Error())
	}

	rate, err := h.orchestrator.SuccessRate(c.Context(), workflowTypeID, from, to)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(rate)
}

// ExportConfiguration serializes a workflow type's full definition graph.
func (h *APIHandlers) ExportConfiguration(c fiber.Ctx) error {
	workflowTypeID := c.Params("id")
	if workflowTypeID == "" {
		return badRequest(c, "Workflow type ID is required")
	}

	export, err := h.orchestrator.ExportConfiguration(c.Context(), workflowTypeID)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(export)
}

// ImportConfiguration recreates an exported definition graph as a new
// workflow type.
func (h *APIHandlers) ImportConfiguration(c fiber.Ctx) error {
	var req ImportConfigurationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflowType, err := h.orchestrator.ImportConfiguration(c.Context(), req.Configuration, req.ActorID)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(workflowType)
}

// SnapshotVersion snapshots a workflow type's current definition graph as the
// next immutable version.
func (h *APIHandlers) SnapshotVersion(c fiber.Ctx) error {
	workflowTypeID := c.Params("id")
	if workflowTypeID == "" {
		return badRequest(c, "Workflow type ID is required")
	}

	var req SnapshotVersionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	version, err := h.orchestrator.SnapshotVersion(c.Context(), workflowTypeID, req.ActorID)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(version)
}

// ListVersions lists a workflow type's snapshots in ascending version order.
func (h *APIHandlers) ListVersions(c fiber.Ctx) error {
	workflowTypeID := c.Params("id")
	if workflowTypeID == "" {
		return badRequest(c, "Workflow type ID is required")
	}

	versions, err := h.persistence.Definitions().VersionsForType(c.Context(), workflowTypeID)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflow_type_id": workflowTypeID,
		"versions":         versions,
	})
}

// RestoreVersion rewrites a workflow type's definitions from a snapshot.
func (h *APIHandlers) RestoreVersion(c fiber.Ctx) error {
	versionID := c.Params("id")
	if versionID == "" {
		return badRequest(c, "Version ID is required")
	}

	var req RestoreVersionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflowType, err := h.orchestrator.RestoreVersion(c.Context(), versionID, req.ActorID)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(workflowType)
}

// AvailableActions lists the registered action types.
func (h *APIHandlers) AvailableActions(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"actions": h.registry.AvailableActions(),
	})
}

// ActionSchema returns the JSON schema of one action type's configuration.
func (h *APIHandlers) ActionSchema(c fiber.Ctx) error {
	actionType := c.Params("type")
	if actionType == "" {
		return badRequest(c, "Action type is required")
	}

	schema, err := h.registry.ActionSchema(actionType)
	if err != nil {
		return notFound(c, "Unknown action type: "+actionType)
	}

	return c.JSON(schema)
}

// HealthCheck reports the health of the storage layer.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	httpStatus := http.StatusOK

	storeErr := h.persistence.HealthCheck(c.Context())
	if storeErr != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	response := fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	}

	if storeErr != nil {
		response["error"] = storeErr.Error()
	}

	return c.Status(httpStatus).JSON(response)
}

func queryInt(c fiber.Ctx, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}

	return strconv.Atoi(raw)
}

func queryTimeRange(c fiber.Ctx) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, nil, err
		}

		from = &parsed
	}

	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, nil, err
		}

		to = &parsed
	}

	return from, to, nil
}
