package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgstructure/internal/apperror"
	"orgstructure/internal/models"
)

// recordingDeleter is a fakeTree that remembers which removal ran.
type recordingDeleter struct {
	*fakeTree
	cascaded   []uint
	reassigned map[uint]uint
}

func newRecordingDeleter() *recordingDeleter {
	return &recordingDeleter{fakeTree: newFakeTree(), reassigned: map[uint]uint{}}
}

func (d *recordingDeleter) GetForUpdate(_ context.Context, id uint) (*models.Department, error) {
	return d.load(id, false, false)
}

func (d *recordingDeleter) NextID(context.Context) (uint, error) {
	return uint(len(d.departments)) + 1, nil
}

func (d *recordingDeleter) SiblingNameExists(context.Context, *uint, string, *uint) (bool, error) {
	return false, nil
}

func (d *recordingDeleter) CascadeDelete(_ context.Context, id uint) error {
	d.cascaded = append(d.cascaded, id)
	return nil
}

func (d *recordingDeleter) ReassignDelete(_ context.Context, id uint, targetID uint) error {
	d.reassigned[id] = targetID
	return nil
}

func TestDeletionRunsTheRequestedMode(t *testing.T) {
	ctx := context.Background()
	deleter := newRecordingDeleter()
	deleter.add(1, nil)
	deleter.add(2, uintPtr(1))
	deleter.add(3, nil)

	var orchestrator DeletionOrchestrator
	require.NoError(t, orchestrator.Delete(ctx, deleter, 2, DeleteModeCascade, nil))
	require.NoError(t, orchestrator.Delete(ctx, deleter, 2, DeleteModeReassign, uintPtr(3)))

	assert.Equal(t, []uint{2}, deleter.cascaded)
	assert.Equal(t, map[uint]uint{2: 3}, deleter.reassigned)
}

func TestDeletionUnknownModeRemovesNothing(t *testing.T) {
	ctx := context.Background()
	deleter := newRecordingDeleter()
	deleter.add(1, nil)

	var orchestrator DeletionOrchestrator
	for _, mode := range []DeleteMode{"", "archive", "CASCADE"} {
		err := orchestrator.Delete(ctx, deleter, 1, mode, nil)
		require.Equal(t, apperror.CodeValidation, apperror.GetCode(err))
	}
	assert.Empty(t, deleter.cascaded)
	assert.Empty(t, deleter.reassigned)
	assert.Empty(t, deleter.fetches)
}
