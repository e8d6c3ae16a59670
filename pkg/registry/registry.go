// Package registry maps action type names to their factories and validates
// action configuration against each factory's schema before instantiation.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/haldesk/haldesk/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

// Registry holds the registered action factories.
type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:          log,
		actionFactories: make(map[string]protocol.ActionFactory),
	}
}

// RegisterAction registers a factory under its own ID, replacing any previous
// registration.
func (r *Registry) RegisterAction(actionFactory protocol.ActionFactory) {
	r.actionFactories[actionFactory.ID()] = actionFactory
}

// CreateAction validates config against the factory's schema and builds the
// action. The action's own ID is injected into the config after validation;
// schemas never declare it.
func (r *Registry) CreateAction(actionType, actionID string, config map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	if err := r.validate(factory, config); err != nil {
		return nil, fmt.Errorf("invalid configuration for action type '%s': %w", actionType, err)
	}

	enriched := make(map[string]any, len(config)+1)
	for key, value := range config {
		enriched[key] = value
	}

	enriched["id"] = actionID

	return factory.Create(enriched)
}

// ValidateAction checks config against the registered schema without building
// the action.
func (r *Registry) ValidateAction(actionType string, config map[string]any) error {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return fmt.Errorf("action type '%s' not registered", actionType)
	}

	return r.validate(factory, config)
}

// AvailableActions returns the registered action type names, sorted.
func (r *Registry) AvailableActions() []string {
	types := make([]string, 0, len(r.actionFactories))
	for actionType := range r.actionFactories {
		types = append(types, actionType)
	}

	sort.Strings(types)

	return types
}

// ActionSchema returns the configuration schema for one action type.
func (r *Registry) ActionSchema(actionType string) (map[string]any, error) {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	return factory.Schema(), nil
}

func (r *Registry) validate(factory protocol.ActionFactory, config map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(factory.Schema())
	documentLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("%s", strings.Join(details, "; "))
	}

	return nil
}
