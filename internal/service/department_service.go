package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"orgstructure/internal/apperror"
	"orgstructure/internal/models"
	"orgstructure/internal/store"
)

var _ Manager = (*DepartmentService)(nil)

type DepartmentService struct {
	store     *store.Store
	logger    *zap.Logger
	validator Validator
	deletion  DeletionOrchestrator
}

func NewDepartmentService(st *store.Store, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{
		store:  st,
		logger: logger.Named("departments"),
	}
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, input CreateDepartmentInput) (DepartmentDTO, error) {
	name, err := normalizeRequiredString(input.Name, "name")
	if err != nil {
		return DepartmentDTO{}, err
	}

	department := models.Department{Name: name, ParentID: input.ParentID}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.LockTree(ctx); err != nil {
			return err
		}
		departments := tx.Departments()
		if err := s.validator.ValidateCreate(ctx, departments, name, input.ParentID); err != nil {
			return err
		}
		return departments.Create(ctx, &department)
	})
	if err != nil {
		return DepartmentDTO{}, err
	}

	s.logger.Info("department created",
		zap.Uint("id", department.ID),
		zap.String("name", department.Name),
		zap.Uintp("parent_id", department.ParentID),
	)
	return departmentToDTO(department), nil
}

func (s *DepartmentService) CreateEmployee(ctx context.Context, departmentID uint, input CreateEmployeeInput) (EmployeeDTO, error) {
	fullName, err := normalizeRequiredString(input.FullName, "full_name")
	if err != nil {
		return EmployeeDTO{}, err
	}

	position, err := normalizeRequiredString(input.Position, "position")
	if err != nil {
		return EmployeeDTO{}, err
	}

	employee := models.Employee{
		DepartmentID: departmentID,
		FullName:     fullName,
		Position:     position,
		HiredAt:      input.HiredAt,
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		department, err := tx.Departments().GetForUpdate(ctx, departmentID)
		if err != nil {
			return fmt.Errorf("load department: %w", err)
		}
		if department == nil {
			return apperror.NotFound("department", departmentID)
		}
		return tx.Employees().Create(ctx, &employee)
	})
	if err != nil {
		return EmployeeDTO{}, err
	}

	s.logger.Info("employee created",
		zap.Uint("id", employee.ID),
		zap.Uint("department_id", employee.DepartmentID),
	)
	return employeeToDTO(employee), nil
}

func (s *DepartmentService) GetEmployee(ctx context.Context, employeeID uint) (EmployeeDTO, error) {
	employee, err := s.store.Employees().Get(ctx, employeeID)
	if err != nil {
		return EmployeeDTO{}, fmt.Errorf("load employee: %w", err)
	}
	if employee == nil {
		return EmployeeDTO{}, apperror.NotFound("employee", employeeID)
	}
	return employeeToDTO(*employee), nil
}

func (s *DepartmentService) GetDepartment(ctx context.Context, departmentID uint, options GetDepartmentOptions) (DepartmentTree, error) {
	return NewTreeLoader(s.store.Departments()).Load(ctx, departmentID, options.Depth, options.IncludeEmployees)
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, departmentID uint, input UpdateDepartmentInput) (DepartmentDTO, error) {
	var name *string
	if input.Name != nil {
		normalized, err := normalizeRequiredString(*input.Name, "name")
		if err != nil {
			return DepartmentDTO{}, err
		}
		name = &normalized
	}

	var department models.Department
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.LockTree(ctx); err != nil {
			return err
		}
		departments := tx.Departments()

		current, err := s.validator.ValidateUpdate(ctx, departments, departmentID, name, input.ParentIDSet, input.ParentID)
		if err != nil {
			return err
		}

		fields := store.DepartmentFields{}
		if name != nil && *name != current.Name {
			fields.Name = name
		}
		if input.ParentIDSet && !equalUintPtr(current.ParentID, input.ParentID) {
			fields.ParentIDSet = true
			fields.ParentID = input.ParentID
		}
		if fields.Name == nil && !fields.ParentIDSet {
			department = *current
			return nil
		}

		updated, err := departments.Update(ctx, departmentID, fields)
		if err != nil {
			return err
		}
		if updated == nil {
			return apperror.NotFound("department", departmentID)
		}
		department = *updated
		return nil
	})
	if err != nil {
		return DepartmentDTO{}, err
	}

	s.logger.Info("department updated",
		zap.Uint("id", department.ID),
		zap.String("name", department.Name),
		zap.Uintp("parent_id", department.ParentID),
	)
	return departmentToDTO(department), nil
}

func (s *DepartmentService) DeleteDepartment(ctx context.Context, departmentID uint, mode DeleteMode, reassignToDepartmentID *uint) error {
	if err := validateDeleteRequest(mode, reassignToDepartmentID); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.LockTree(ctx); err != nil {
			return err
		}
		return s.deletion.Delete(ctx, tx.Departments(), departmentID, mode, reassignToDepartmentID)
	})
	if err != nil {
		return err
	}

	fields := []zap.Field{zap.Uint("id", departmentID), zap.String("mode", string(mode))}
	if mode == DeleteModeReassign {
		fields = append(fields, zap.Uint("reassigned_to", *reassignToDepartmentID))
	}
	s.logger.Info("department deleted", fields...)
	return nil
}

func departmentToDTO(department models.Department) DepartmentDTO {
	return DepartmentDTO{
		ID:        department.ID,
		Name:      department.Name,
		ParentID:  department.ParentID,
		CreatedAt: department.CreatedAt,
	}
}

func employeeToDTO(employee models.Employee) EmployeeDTO {
	var hiredAt *string
	if employee.HiredAt != nil {
		formatted := employee.HiredAt.Format("2006-01-02")
		hiredAt = &formatted
	}

	return EmployeeDTO{
		ID:           employee.ID,
		DepartmentID: employee.DepartmentID,
		FullName:     employee.FullName,
		Position:     employee.Position,
		HiredAt:      hiredAt,
		CreatedAt:    employee.CreatedAt,
	}
}
