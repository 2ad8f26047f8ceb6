package service

import (
	"context"
	"fmt"
)

type subtreeDeleter interface {
	departmentLookup
	CascadeDelete(ctx context.Context, id uint) error
	ReassignDelete(ctx context.Context, id uint, targetID uint) error
}

// DeletionOrchestrator removes a department subtree. The caller owns the
// transaction; validation and removal share it so a concurrent move cannot
// slip in between.
type DeletionOrchestrator struct {
	validator Validator
}

func (o DeletionOrchestrator) Delete(ctx context.Context, departments subtreeDeleter, id uint, mode DeleteMode, reassignTo *uint) error {
	if err := o.validator.ValidateDelete(ctx, departments, id, mode, reassignTo); err != nil {
		return err
	}

	switch mode {
	case DeleteModeReassign:
		if err := departments.ReassignDelete(ctx, id, *reassignTo); err != nil {
			return fmt.Errorf("reassign and delete department: %w", err)
		}
	case DeleteModeCascade:
		if err := departments.CascadeDelete(ctx, id); err != nil {
			return fmt.Errorf("cascade delete department: %w", err)
		}
	default:
		return invalidDeleteMode()
	}
	return nil
}
