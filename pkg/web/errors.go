package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/haldesk/haldesk/pkg/persistence"
	"github.com/haldesk/haldesk/pkg/workflow"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusBadRequest).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusNotFound).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(fiber.StatusInternalServerError).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleWorkflowError maps orchestrator and store errors onto RFC 7807
// problem responses.
func handleWorkflowError(c fiber.Ctx, err error) error {
	var conditionsErr *workflow.ConditionsError

	switch {
	case errors.As(err, &conditionsErr):
		problem := problems.NewStatusProblem(fiber.StatusUnprocessableEntity).
			WithInstance(c.Path()).
			WithType("conditions_not_met").
			WithDetail(conditionsErr.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"type":              problem.Type,
			"title":             problem.Title,
			"status":            problem.Status,
			"detail":            problem.Detail,
			"instance":          problem.Instance,
			"failed_groups":     conditionsErr.FailedGroups,
			"condition_results": conditionsErr.Results,
		})

	case errors.Is(err, workflow.ErrForbidden):
		problem := problems.NewStatusProblem(fiber.StatusForbidden).
			WithInstance(c.Path()).
			WithType("forbidden").
			WithDetail(err.Error())

		return c.Status(fiber.StatusForbidden).JSON(problem)

	case errors.Is(err, workflow.ErrInvalidTransition):
		problem := problems.NewStatusProblem(fiber.StatusConflict).
			WithInstance(c.Path()).
			WithType("invalid_transition").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.Is(err, workflow.ErrPreconditionFailed):
		problem := problems.NewStatusProblem(fiber.StatusPreconditionFailed).
			WithInstance(c.Path()).
			WithType("precondition_failed").
			WithDetail(err.Error())

		return c.Status(fiber.StatusPreconditionFailed).JSON(problem)

	case errors.Is(err, workflow.ErrConfiguration):
		problem := problems.NewStatusProblem(fiber.StatusBadRequest).
			WithInstance(c.Path()).
			WithType("configuration_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.Is(err, workflow.ErrNotFound), persistence.IsNotFound(err):
		problem := problems.NewStatusProblem(fiber.StatusNotFound).
			WithInstance(c.Path()).
			WithType("not_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case persistence.IsConstraintViolation(err):
		problem := problems.NewStatusProblem(fiber.StatusConflict).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	default:
		return internalError(c, err)
	}
}
