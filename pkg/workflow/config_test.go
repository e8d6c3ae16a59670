package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	export, err := f.orch.ExportConfiguration(ctx, f.workflowType.ID)
	require.NoError(t, err)
	require.Len(t, export.Statuses, 5)
	require.Len(t, export.Transitions, 5)

	// Stable names are unique system-wide, so the copy needs its own.
	export.Type.Name = "incident_copy"

	imported, err := f.orch.ImportConfiguration(ctx, export, "admin-1")
	require.NoError(t, err)
	assert.NotEqual(t, f.workflowType.ID, imported.ID)
	assert.Equal(t, "admin-1", imported.CreatedBy)

	statuses, err := f.store.Definitions().StatusesForType(ctx, imported.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 5)

	transitions, err := f.store.Definitions().TransitionsForType(ctx, imported.ID)
	require.NoError(t, err)
	require.Len(t, transitions, 5)

	statusNames := map[string]string{}
	for _, status := range statuses {
		statusNames[status.ID] = status.Name
	}

	originalNames := map[string]bool{}
	for _, status := range export.Statuses {
		originalNames[status.Name] = true
	}

	for _, name := range statusNames {
		assert.True(t, originalNames[name], "unexpected status %q", name)
	}

	// Endpoint references were remapped into the new type's status IDs.
	for _, transition := range transitions {
		assert.Equal(t, imported.ID, transition.WorkflowTypeID)
		assert.Contains(t, statusNames, transition.ToStatusID)

		if transition.FromStatusID != nil {
			assert.Contains(t, statusNames, *transition.FromStatusID)
		}
	}
}

func TestImportConfigurationRejectsDanglingReference(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	export, err := f.orch.ExportConfiguration(ctx, f.workflowType.ID)
	require.NoError(t, err)

	export.Type.Name = "incident_broken"
	export.Transitions[0].ToStatusID = "no-such-status"

	_, err = f.orch.ImportConfiguration(ctx, export, "admin-1")
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestSnapshotAndRestoreVersion(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	version, err := f.orch.SnapshotVersion(ctx, f.workflowType.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, version.Version)

	// Drift the live definitions after the snapshot.
	assignTransition := f.transitions["assign"]
	assignTransition.IsActive = false
	require.NoError(t, f.store.Definitions().SaveTransition(ctx, assignTransition))

	newStatus := f.statuses["new"]
	newStatus.DisplayName = map[string]string{"en": "brand new"}
	require.NoError(t, f.store.Definitions().SaveStatus(ctx, newStatus))

	restored, err := f.orch.RestoreVersion(ctx, version.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, f.workflowType.ID, restored.ID)

	transition, err := f.store.Definitions().TransitionByID(ctx, assignTransition.ID)
	require.NoError(t, err)
	assert.True(t, transition.IsActive)

	status, err := f.store.Definitions().StatusByID(ctx, newStatus.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", status.DisplayName["en"])

	next, err := f.orch.SnapshotVersion(ctx, f.workflowType.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.Version)
}
