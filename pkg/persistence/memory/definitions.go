package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/haldesk/haldesk/pkg/models"
	"github.com/haldesk/haldesk/pkg/persistence"
)

type definitionStore Persistence

func (s *definitionStore) SaveWorkflowType(_ context.Context, workflowType *models.WorkflowType) error {
	if err := workflowType.Validate(); err != nil {
		return persistence.NewStoreError("SaveWorkflowType", workflowType.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.types {
		if existing.Name == workflowType.Name && existing.ID != workflowType.ID {
			return persistence.NewStoreError("SaveWorkflowType", workflowType.Name, persistence.ErrDuplicateTypeName)
		}
	}

	now := time.Now().UTC()
	if workflowType.CreatedAt.IsZero() {
		workflowType.CreatedAt = now
	}

	workflowType.UpdatedAt = now

	if workflowType.ID == "" {
		workflowType.ID = uuid.NewString()
	}

	s.types[workflowType.ID] = workflowType

	return nil
}

func (s *definitionStore) WorkflowTypeByID(_ context.Context, id string) (*models.WorkflowType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workflowType, ok := s.types[id]
	if !ok || workflowType.DeletedAt != nil {
		return nil, persistence.NewStoreError("WorkflowTypeByID", id, persistence.ErrWorkflowTypeNotFound)
	}

	return workflowType, nil
}

func (s *definitionStore) WorkflowTypeByName(_ context.Context, name string) (*models.WorkflowType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, workflowType := range s.types {
		if workflowType.Name == name && workflowType.DeletedAt == nil {
			return workflowType, nil
		}
	}

	return nil, persistence.NewStoreError("WorkflowTypeByName", name, persistence.ErrWorkflowTypeNotFound)
}

func (s *definitionStore) WorkflowTypes(_ context.Context) ([]*models.WorkflowType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var workflowTypes []*models.WorkflowType

	for _, workflowType := range s.types {
		if workflowType.DeletedAt == nil {
			workflowTypes = append(workflowTypes, workflowType)
		}
	}

	sort.Slice(workflowTypes, func(i, j int) bool {
		return workflowTypes[i].Name < workflowTypes[j].Name
	})

	return workflowTypes, nil
}

func (s *definitionStore) DeactivateWorkflowType(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	workflowType, ok := s.types[id]
	if !ok {
		return persistence.NewStoreError("DeactivateWorkflowType", id, persistence.ErrWorkflowTypeNotFound)
	}

	now := time.Now().UTC()
	workflowType.IsActive = false
	workflowType.DeletedAt = &now

	return nil
}

func (s *definitionStore) SaveStatus(_ context.Context, status *models.WorkflowStatus) error {
	if err := status.Validate(); err != nil {
		return persistence.NewStoreError("SaveStatus", status.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.types[status.WorkflowTypeID]; !ok {
		return persistence.NewStoreError("SaveStatus", status.Name, persistence.ErrWorkflowTypeNotFound)
	}

	for _, existing := range s.statuses {
		if existing.ID == status.ID {
			continue
		}

		if existing.WorkflowTypeID != status.WorkflowTypeID {
			continue
		}

		if existing.Name == status.Name {
			return persistence.NewStoreError("SaveStatus", status.Name, persistence.ErrDuplicateStatusName)
		}

		if status.IsInitial && existing.IsInitial {
			return persistence.NewStoreError("SaveStatus", status.Name, persistence.ErrDuplicateInitialStatus)
		}
	}

	if status.ID == "" {
		status.ID = uuid.NewString()
	}

	s.statuses[status.ID] = status

	return nil
}

func (s *definitionStore) StatusByID(_ context.Context, id string) (*models.WorkflowStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[id]
	if !ok {
		return nil, persistence.NewStoreError("StatusByID", id, persistence.ErrStatusNotFound)
	}

	return status, nil
}

func (s *definitionStore) StatusesForType(_ context.Context, workflowTypeID string) ([]*models.WorkflowStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var statuses []*models.WorkflowStatus

	for _, status := range s.statuses {
		if status.WorkflowTypeID == workflowTypeID {
			statuses = append(statuses, status)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].SortOrder != statuses[j].SortOrder {
			return statuses[i].SortOrder < statuses[j].SortOrder
		}

		return statuses[i].Name < statuses[j].Name
	})

	return statuses, nil
}

func (s *definitionStore) InitialStatus(_ context.Context, workflowTypeID string) (*models.WorkflowStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, status := range s.statuses {
		if status.WorkflowTypeID == workflowTypeID && status.IsInitial {
			return status, nil
		}
	}

	return nil, persistence.NewStoreError("InitialStatus", workflowTypeID, persistence.ErrStatusNotFound)
}

func (s *definitionStore) SaveTransition(_ context.Context, transition *models.WorkflowTransition) error {
	if err := transition.Validate(); err != nil {
		return persistence.NewStoreError("SaveTransition", transition.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.types[transition.WorkflowTypeID]; !ok {
		return persistence.NewStoreError("SaveTransition", transition.Name, persistence.ErrWorkflowTypeNotFound)
	}

	target, ok := s.statuses[transition.ToStatusID]
	if !ok {
		return persistence.NewStoreError("SaveTransition", transition.Name, persistence.ErrStatusNotFound)
	}

	if target.WorkflowTypeID != transition.WorkflowTypeID {
		return persistence.NewStoreError("SaveTransition", transition.Name, persistence.ErrStatusTypeMismatch)
	}

	if transition.FromStatusID != nil {
		source, ok := s.statuses[*transition.FromStatusID]
		if !ok {
			return persistence.NewStoreError("SaveTransition", transition.Name, persistence.ErrStatusNotFound)
		}

		if source.WorkflowTypeID != transition.WorkflowTypeID {
			return persistence.NewStoreError("SaveTransition", transition.Name, persistence.ErrStatusTypeMismatch)
		}
	}

	if transition.ID == "" {
		transition.ID = uuid.NewString()
	}

	for _, condition := range transition.Conditions {
		if condition.ID == "" {
			condition.ID = uuid.NewString()
		}

		condition.TransitionID = transition.ID
	}

	for _, action := range transition.Actions {
		if action.ID == "" {
			action.ID = uuid.NewString()
		}

		action.TransitionID = transition.ID
	}

	s.transitions[transition.ID] = transition

	return nil
}

func (s *definitionStore) TransitionByID(_ context.Context, id string) (*models.WorkflowTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transition, ok := s.transitions[id]
	if !ok {
		return nil, persistence.NewStoreError("TransitionByID", id, persistence.ErrTransitionNotFound)
	}

	return transition, nil
}

func (s *definitionStore) TransitionsForType(_ context.Context, workflowTypeID string) ([]*models.WorkflowTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var transitions []*models.WorkflowTransition

	for _, transition := range s.transitions {
		if transition.WorkflowTypeID == workflowTypeID {
			transitions = append(transitions, transition)
		}
	}

	sort.Slice(transitions, func(i, j int) bool {
		if transitions[i].SortOrder != transitions[j].SortOrder {
			return transitions[i].SortOrder < transitions[j].SortOrder
		}

		return transitions[i].Name < transitions[j].Name
	})

	return transitions, nil
}

func (s *definitionStore) SaveVersion(_ context.Context, version *models.WorkflowVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version.ID == "" {
		version.ID = uuid.NewString()
	}

	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}

	s.versions[version.ID] = version

	return nil
}

func (s *definitionStore) VersionByID(_ context.Context, id string) (*models.WorkflowVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[id]
	if !ok {
		return nil, persistence.NewStoreError("VersionByID", id, persistence.ErrVersionNotFound)
	}

	return version, nil
}

func (s *definitionStore) VersionsForType(_ context.Context, workflowTypeID string) ([]*models.WorkflowVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var versions []*models.WorkflowVersion

	for _, version := range s.versions {
		if version.WorkflowTypeID == workflowTypeID {
			versions = append(versions, version)
		}
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Version < versions[j].Version
	})

	return versions, nil
}
