package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"orgstructure/internal/apperror"
	"orgstructure/internal/models"
)

type departmentLookup interface {
	childrenReader
	GetForUpdate(ctx context.Context, id uint) (*models.Department, error)
	NextID(ctx context.Context) (uint, error)
	SiblingNameExists(ctx context.Context, parentID *uint, name string, excludeID *uint) (bool, error)
}

// Validator checks tree invariants against the current store state. It must
// run inside the same transaction as the write it guards.
type Validator struct{}

// ValidateCreate checks a new department named name under parentID.
// name must already be normalized.
func (Validator) ValidateCreate(ctx context.Context, departments departmentLookup, name string, parentID *uint) error {
	if parentID != nil {
		nextID, err := departments.NextID(ctx)
		if err != nil {
			return err
		}
		if *parentID == nextID {
			return apperror.Invariant("department cannot be parent of itself", *parentID)
		}

		if err := ensureDepartment(ctx, departments, *parentID); err != nil {
			return err
		}
	}

	return ensureUniqueSibling(ctx, departments, parentID, name, nil)
}

// ValidateUpdate checks moving and renaming department id and returns its
// current row. name is nil when the name is unchanged and must already be
// normalized otherwise.
func (Validator) ValidateUpdate(ctx context.Context, departments departmentLookup, id uint, name *string, parentIDSet bool, parentID *uint) (*models.Department, error) {
	department, err := departments.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load department: %w", err)
	}
	if department == nil {
		return nil, apperror.NotFound("department", id)
	}

	newParentID := department.ParentID
	if parentIDSet {
		newParentID = parentID
	}

	if parentIDSet && parentID != nil {
		if err := ensureDepartment(ctx, departments, *parentID); err != nil {
			return nil, err
		}
		if *parentID == id {
			return nil, apperror.Invariant("department cannot be parent of itself", id)
		}

		descendant, err := isDescendant(ctx, departments, id, *parentID)
		if err != nil {
			return nil, err
		}
		if descendant {
			return nil, apperror.Invariant("department cannot be moved under its own descendant", *parentID)
		}
	}

	newName := department.Name
	if name != nil {
		newName = *name
	}
	if newName != department.Name || !equalUintPtr(newParentID, department.ParentID) {
		if err := ensureUniqueSibling(ctx, departments, newParentID, newName, &id); err != nil {
			return nil, err
		}
	}

	return department, nil
}

// ValidateDelete checks removing department id. reassignTo is only read in
// reassign mode, where it must name a department outside the removed subtree.
func (Validator) ValidateDelete(ctx context.Context, departments departmentLookup, id uint, mode DeleteMode, reassignTo *uint) error {
	if err := validateDeleteRequest(mode, reassignTo); err != nil {
		return err
	}
	if err := ensureDepartment(ctx, departments, id); err != nil {
		return err
	}
	if mode != DeleteModeReassign {
		return nil
	}

	targetID := *reassignTo
	if err := ensureDepartment(ctx, departments, targetID); err != nil {
		return err
	}
	if targetID == id {
		return apperror.Invariant("employees cannot be reassigned to the department being deleted", targetID)
	}

	inside, err := isDescendant(ctx, departments, id, targetID)
	if err != nil {
		return err
	}
	if inside {
		return apperror.Invariant("employees cannot be reassigned into the subtree being deleted", targetID)
	}
	return nil
}

// validateDeleteRequest checks the request shape without touching the store.
func validateDeleteRequest(mode DeleteMode, reassignTo *uint) error {
	switch mode {
	case DeleteModeCascade:
		return nil
	case DeleteModeReassign:
		if reassignTo == nil {
			return apperror.New(apperror.CodeValidation, "reassign_to_department_id is required when mode=reassign")
		}
		return nil
	default:
		return invalidDeleteMode()
	}
}

func invalidDeleteMode() error {
	return apperror.New(apperror.CodeValidation, "mode must be one of: cascade, reassign")
}

func ensureDepartment(ctx context.Context, departments departmentLookup, id uint) error {
	department, err := departments.GetForUpdate(ctx, id)
	if err != nil {
		return fmt.Errorf("check department existence: %w", err)
	}
	if department == nil {
		return apperror.NotFound("department", id)
	}
	return nil
}

func ensureUniqueSibling(ctx context.Context, departments departmentLookup, parentID *uint, name string, excludeID *uint) error {
	exists, err := departments.SiblingNameExists(ctx, parentID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		var id uint
		if parentID != nil {
			id = *parentID
		}
		return apperror.Invariant("department name must be unique under the same parent", id)
	}
	return nil
}

func normalizeRequiredString(raw string, field string) (string, error) {
	value := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(value)
	if length < models.MinTitleLength || length > models.MaxTitleLength {
		return "", apperror.New(apperror.CodeValidation,
			fmt.Sprintf("%s length must be in range %d..%d", field, models.MinTitleLength, models.MaxTitleLength))
	}
	return value, nil
}
