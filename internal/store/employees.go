package store

import (
	"context"

	"orgstructure/internal/models"
)

var _ Repository[models.Employee] = (*EmployeeRepository)(nil)

type EmployeeRepository struct {
	baseRepository[models.Employee]
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	return MapError(r.store.query(ctx).Create(employee).Error)
}
