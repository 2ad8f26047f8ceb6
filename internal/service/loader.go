package service

import (
	"context"
	"fmt"

	"orgstructure/internal/apperror"
	"orgstructure/internal/models"
)

type departmentTreeReader interface {
	childrenReader
	Get(ctx context.Context, id uint) (*models.Department, error)
	GetWithEmployees(ctx context.Context, id uint) (*models.Department, error)
	GetWithEmployeesAndChildren(ctx context.Context, id uint) (*models.Department, error)
}

// TreeLoader assembles depth-bounded department trees. Every node costs one
// fetch of its own row with direct children and, optionally, employees.
type TreeLoader struct {
	departments departmentTreeReader
}

func NewTreeLoader(departments departmentTreeReader) TreeLoader {
	return TreeLoader{departments: departments}
}

func validateDepth(depth int) error {
	if depth < MinDepth || depth > MaxDepth {
		return apperror.New(apperror.CodeValidation, fmt.Sprintf("depth must be in range %d..%d", MinDepth, MaxDepth))
	}
	return nil
}

// Load returns the tree rooted at rootID expanded maxDepth levels down.
// Depth is checked before any read.
func (l TreeLoader) Load(ctx context.Context, rootID uint, maxDepth int, includeEmployees bool) (DepartmentTree, error) {
	if err := validateDepth(maxDepth); err != nil {
		return DepartmentTree{}, err
	}

	tree, err := l.load(ctx, rootID, maxDepth, includeEmployees)
	if err != nil {
		return DepartmentTree{}, err
	}
	if tree == nil {
		return DepartmentTree{}, apperror.NotFound("department", rootID)
	}
	return *tree, nil
}

// load returns nil when id is gone, which for a child means it was removed
// between the parent's fetch and its own.
func (l TreeLoader) load(ctx context.Context, id uint, depth int, includeEmployees bool) (*DepartmentTree, error) {
	department, err := l.fetch(ctx, id, depth > 0, includeEmployees)
	if err != nil {
		return nil, fmt.Errorf("load department %d: %w", id, err)
	}
	if department == nil {
		return nil, nil
	}

	node := DepartmentTree{Department: departmentToDTO(*department)}
	if includeEmployees {
		employees := make([]EmployeeDTO, 0, len(department.Employees))
		for _, employee := range department.Employees {
			employees = append(employees, employeeToDTO(employee))
		}
		node.Employees = &employees
	}

	if depth == 0 {
		return &node, nil
	}

	node.Children = make([]DepartmentTree, 0, len(department.Children))
	for _, child := range department.Children {
		childNode, err := l.load(ctx, child.ID, depth-1, includeEmployees)
		if err != nil {
			return nil, err
		}
		if childNode != nil {
			node.Children = append(node.Children, *childNode)
		}
	}
	return &node, nil
}

func (l TreeLoader) fetch(ctx context.Context, id uint, expand bool, includeEmployees bool) (*models.Department, error) {
	switch {
	case expand && includeEmployees:
		return l.departments.GetWithEmployeesAndChildren(ctx, id)
	case expand:
		return l.departments.GetWithChildren(ctx, id)
	case includeEmployees:
		return l.departments.GetWithEmployees(ctx, id)
	default:
		return l.departments.Get(ctx, id)
	}
}
