// Package conditions evaluates transition guard conditions against a ticket
// snapshot, the acting user and the caller-supplied context.
package conditions

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/haldesk/haldesk/pkg/expr"
	"github.com/haldesk/haldesk/pkg/models"
)

// Evaluator decides pass/fail for individual conditions and condition groups.
// It is stateless apart from its logger and clock; Evaluate never returns an
// error to callers — any internal failure is logged and counts as false.
type Evaluator struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewEvaluator creates an evaluator using the wall clock.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{logger: logger, now: time.Now}
}

// NewEvaluatorAt creates an evaluator with a fixed clock, for tests.
func NewEvaluatorAt(logger *slog.Logger, now func() time.Time) *Evaluator {
	return &Evaluator{logger: logger, now: now}
}

// GroupResult is the outcome of evaluating one transition's condition set.
type GroupResult struct {
	Passed       bool            `json:"passed"`
	Results      map[string]bool `json:"results"`
	FailedGroups []int           `json:"failed_groups,omitempty"`
}

// Evaluate checks a single condition. Internal evaluation errors are treated
// as a failed condition (fail-closed) and logged at warn level so they remain
// distinguishable from a clean false.
func (e *Evaluator) Evaluate(ctx context.Context, condition *models.WorkflowCondition, executionCtx *models.ExecutionContext) bool {
	passed, err := e.evaluate(condition, executionCtx)
	if err != nil {
		e.logger.WarnContext(ctx, "condition evaluation error, treating as false",
			"condition_id", condition.ID,
			"condition_type", condition.ConditionType,
			"error", err,
		)

		return false
	}

	return passed
}

// EvaluateGroups applies the grouping rule: conditions are partitioned by
// ConditionGroup, the transition passes only if every group has at least one
// passing condition. Zero conditions always pass.
func (e *Evaluator) EvaluateGroups(ctx context.Context, conds []*models.WorkflowCondition, executionCtx *models.ExecutionContext) GroupResult {
	result := GroupResult{Passed: true, Results: make(map[string]bool, len(conds))}

	groups := make(map[int]bool)

	for _, condition := range conds {
		passed := e.Evaluate(ctx, condition, executionCtx)
		result.Results[condition.ID] = passed

		if _, seen := groups[condition.ConditionGroup]; !seen {
			groups[condition.ConditionGroup] = false
		}

		if passed {
			groups[condition.ConditionGroup] = true
		}
	}

	for group, passed := range groups {
		if !passed {
			result.Passed = false
			result.FailedGroups = append(result.FailedGroups, group)
		}
	}

	sort.Ints(result.FailedGroups)

	return result
}

func (e *Evaluator) evaluate(condition *models.WorkflowCondition, executionCtx *models.ExecutionContext) (bool, error) {
	switch condition.ConditionType {
	case models.ConditionField:
		return e.evaluateField(condition, executionCtx)
	case models.ConditionRole:
		return e.evaluateRole(condition, executionCtx)
	case models.ConditionTime:
		return e.evaluateTime(condition, executionCtx)
	case models.ConditionSLA:
		return e.evaluateSLA(condition, executionCtx)
	case models.ConditionAssignment:
		return e.evaluateAssignment(condition, executionCtx)
	case models.ConditionCustom:
		return e.evaluateCustom(condition, executionCtx)
	default:
		return false, fmt.Errorf("%w: %s", models.ErrConditionTypeInvalid, condition.ConditionType)
	}
}

func (e *Evaluator) evaluateField(condition *models.WorkflowCondition, executionCtx *models.ExecutionContext) (bool, error) {
	if condition.FieldName == "" {
		return false, models.ErrConditionFieldRequired
	}

	var (
		value any
		found bool
	)

	if executionCtx.Ticket != nil {
		value, found = expr.Lookup(executionCtx.Ticket.Snapshot(), condition.FieldName)
	}

	// A path missing on the ticket falls back to the same-named context key.
	if !found && executionCtx.Context != nil {
		value, found = expr.Lookup(executionCtx.Context, condition.FieldName)
	}

	if !found {
		value = nil
	}

	return applyOperator(condition.Operator, value, condition.ParsedExpectedValue())
}

func (e *Evaluator) evaluateRole(condition *models.WorkflowCondition, executionCtx *models.ExecutionContext) (bool, error) {
	if executionCtx.User == nil || executionCtx.User.Role == "" {
		return false, nil
	}

	role := executionCtx.User.Role
	expected := condition.ParsedExpectedValue()

	switch condition.Operator {
	case models.OpEquals, "":
		return strings.EqualFold(role, expr.Stringify(expected)), nil
	case models.OpIn, models.OpNotIn:
		list, ok := expected.([]any)
		if !ok {
			return false, fmt.Errorf("role %s condition requires a list expected value", condition.Operator)
		}

		member := false

		for _, item := range list {
			if strings.EqualFold(role, expr.Stringify(item)) {
				member = true

				break
			}
		}

		if condition.Operator == models.OpNotIn {
			return !member, nil
		}

		return member, nil
	default:
		return false, fmt.Errorf("unsupported role operator %q", condition.Operator)
	}
}

func (e *Evaluator) evaluateTime(condition *models.WorkflowCondition, executionCtx *models.ExecutionContext) (bool, error) {
	if executionCtx.Ticket == nil {
		return false, nil
	}

	fieldName := condition.FieldName
	if fieldName == "" {
		fieldName = "created_at"
	}

	raw, found := expr.Lookup(executionCtx.Ticket.Snapshot(), fieldName)
	if !found {
		return false, fmt.Errorf("time condition field %q not found on ticket", fieldName)
	}

	timestamp, err := coerceTime(raw)
	if err != nil {
		return false, err
	}

	elapsedMinutes := e.now().Sub(timestamp).Minutes()

	return applyOperator(condition.Operator, elapsedMinutes, condition.ParsedExpectedValue())
}

func (e *Evaluator) evaluateSLA(condition *models.WorkflowCondition, executionCtx *models.ExecutionContext) (bool, error) {
	ticket := executionCtx.Ticket
	if ticket == nil {
		return false, nil
	}

	breached := ticket.SLABreached
	if !breached && ticket.SLADueAt != nil {
		breached = e.now().After(*ticket.SLADueAt)
	}

	expected := true
	if parsed, ok := condition.ParsedExpectedValue().(bool); ok {
		expected = parsed
	}

	if condition.Operator == models.OpNotEquals {
		return breached != expected, nil
	}

	return breached == expected, nil
}

func (e *Evaluator) evaluateAssignment(condition *models.WorkflowCondition, executionCtx *models.ExecutionContext) (bool, error) {
	ticket := executionCtx.Ticket
	if ticket == nil {
		return false, nil
	}

	switch condition.Operator {
	case models.OpIsEmpty:
		return ticket.AssignedToID == nil || *ticket.AssignedToID == "", nil
	case models.OpIsNotEmpty:
		return ticket.AssignedToID != nil && *ticket.AssignedToID != "", nil
	case models.OpEquals, "":
		if ticket.AssignedToID == nil {
			return false, nil
		}

		return *ticket.AssignedToID == expr.Stringify(condition.ParsedExpectedValue()), nil
	case models.OpNotEquals:
		if ticket.AssignedToID == nil {
			return true, nil
		}

		return *ticket.AssignedToID != expr.Stringify(condition.ParsedExpectedValue()), nil
	default:
		return false, fmt.Errorf("unsupported assignment operator %q", condition.Operator)
	}
}

func (e *Evaluator) evaluateCustom(condition *models.WorkflowCondition, executionCtx *models.ExecutionContext) (bool, error) {
	program, err := expr.Parse(condition.ExpectedValue)
	if err != nil {
		return false, fmt.Errorf("invalid custom expression: %w", err)
	}

	return program.EvalBool(executionCtx.TemplateData())
}

func applyOperator(operator models.ConditionOperator, value, expected any) (bool, error) {
	switch operator {
	case models.OpEquals, "":
		return looseEqual(value, expected), nil
	case models.OpNotEquals:
		return !looseEqual(value, expected), nil
	case models.OpContains:
		return stringContains(value, expected), nil
	case models.OpNotContains:
		return !stringContains(value, expected), nil
	case models.OpStartsWith:
		return strings.HasPrefix(lower(value), lower(expected)), nil
	case models.OpEndsWith:
		return strings.HasSuffix(lower(value), lower(expected)), nil
	case models.OpGreaterThan, models.OpLessThan, models.OpGreaterOrEqual, models.OpLessOrEqual:
		return compareOrdered(operator, value, expected)
	case models.OpIn, models.OpNotIn:
		list, ok := expected.([]any)
		if !ok {
			return false, fmt.Errorf("%s operator requires the expected value to be a list", operator)
		}

		member := false

		for _, item := range list {
			if looseEqual(value, item) {
				member = true

				break
			}
		}

		if operator == models.OpNotIn {
			return !member, nil
		}

		return member, nil
	case models.OpRegex:
		pattern, err := regexp.Compile(expr.Stringify(expected))
		if err != nil {
			return false, fmt.Errorf("invalid regex pattern: %w", err)
		}

		return pattern.MatchString(expr.Stringify(value)), nil
	case models.OpIsEmpty:
		return isEmpty(value), nil
	case models.OpIsNotEmpty:
		return !isEmpty(value), nil
	case models.OpBetween:
		bounds, ok := expected.([]any)
		if !ok || len(bounds) != 2 {
			return false, fmt.Errorf("between operator requires a two-element list")
		}

		lowOK, err := compareOrdered(models.OpGreaterOrEqual, value, bounds[0])
		if err != nil {
			return false, err
		}

		highOK, err := compareOrdered(models.OpLessOrEqual, value, bounds[1])
		if err != nil {
			return false, err
		}

		return lowOK && highOK, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", operator)
	}
}

func compareOrdered(operator models.ConditionOperator, value, expected any) (bool, error) {
	left, leftOK := expr.ToNumber(value)
	right, rightOK := expr.ToNumber(expected)

	if !leftOK || !rightOK {
		return false, fmt.Errorf("%s operator requires numeric operands", operator)
	}

	switch operator {
	case models.OpGreaterThan:
		return left > right, nil
	case models.OpLessThan:
		return left < right, nil
	case models.OpGreaterOrEqual:
		return left >= right, nil
	default:
		return left <= right, nil
	}
}

func looseEqual(value, expected any) bool {
	if value == nil || expected == nil {
		return isEmpty(value) && isEmpty(expected)
	}

	if left, ok := expr.ToNumber(value); ok {
		if right, ok := expr.ToNumber(expected); ok {
			return left == right
		}
	}

	return strings.EqualFold(expr.Stringify(value), expr.Stringify(expected))
}

func stringContains(value, expected any) bool {
	return strings.Contains(lower(value), lower(expected))
}

func lower(value any) string {
	return strings.ToLower(expr.Stringify(value))
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func coerceTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("cannot parse %q as timestamp: %w", v, err)
		}

		return parsed, nil
	default:
		return time.Time{}, fmt.Errorf("cannot coerce %T to timestamp", value)
	}
}
