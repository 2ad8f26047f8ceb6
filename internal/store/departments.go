package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"orgstructure/internal/models"
)

var _ Repository[models.Department] = (*DepartmentRepository)(nil)

type DepartmentRepository struct {
	baseRepository[models.Department]
}

// DepartmentFields holds a partial update. ParentIDSet distinguishes an
// explicit null parent from an absent one.
type DepartmentFields struct {
	Name        *string
	ParentIDSet bool
	ParentID    *uint
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func orderByFullName(db *gorm.DB) *gorm.DB {
	return db.Order("full_name ASC, id ASC")
}

// GetWithChildren loads the department and its direct children.
func (r *DepartmentRepository) GetWithChildren(ctx context.Context, id uint) (*models.Department, error) {
	return r.first(r.store.query(ctx).Preload("Children", orderByID), id)
}

// GetWithEmployeesAndChildren loads the department, its direct children and
// its direct employees.
func (r *DepartmentRepository) GetWithEmployeesAndChildren(ctx context.Context, id uint) (*models.Department, error) {
	return r.first(r.store.query(ctx).
		Preload("Children", orderByID).
		Preload("Employees", orderByFullName), id)
}

// GetWithEmployees loads the department and its direct employees only.
func (r *DepartmentRepository) GetWithEmployees(ctx context.Context, id uint) (*models.Department, error) {
	return r.first(r.store.query(ctx).Preload("Employees", orderByFullName), id)
}

// NextID is the id the next inserted department is expected to receive:
// the current maximum id plus one, or 1 for an empty table.
func (r *DepartmentRepository) NextID(ctx context.Context) (uint, error) {
	var maxID int64
	if err := r.store.query(ctx).
		Model(&models.Department{}).
		Select("COALESCE(MAX(id), 0)").
		Row().
		Scan(&maxID); err != nil {
		return 0, fmt.Errorf("compute next department id: %w", err)
	}
	return uint(maxID) + 1, nil
}

// SiblingNameExists reports whether a child of parentID (roots when nil)
// already carries name. excludeID, when set, is left out of the check.
func (r *DepartmentRepository) SiblingNameExists(ctx context.Context, parentID *uint, name string, excludeID *uint) (bool, error) {
	query := r.store.query(ctx).Model(&models.Department{}).Where("name = ?", name)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check sibling uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	return MapError(r.store.query(ctx).Omit("Children", "Employees").Create(department).Error)
}

// Update applies fields and returns the reloaded row, or nil when id is absent.
func (r *DepartmentRepository) Update(ctx context.Context, id uint, fields DepartmentFields) (*models.Department, error) {
	updates := map[string]interface{}{}
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.ParentIDSet {
		updates["parent_id"] = fields.ParentID
	}

	if len(updates) > 0 {
		result := r.store.query(ctx).Model(&models.Department{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, MapError(result.Error)
		}
	}
	return r.Get(ctx, id)
}

// CascadeDelete removes the department, its descendants and every employee
// attached to any of them. Levels are deleted bottom-up so the statement order
// holds on drivers that check foreign keys per row.
func (r *DepartmentRepository) CascadeDelete(ctx context.Context, id uint) error {
	levels, err := r.subtreeLevels(ctx, id)
	if err != nil {
		return err
	}

	db := r.store.query(ctx)
	for i := len(levels) - 1; i >= 0; i-- {
		if err := db.Where("department_id IN ?", levels[i]).Delete(&models.Employee{}).Error; err != nil {
			return MapError(err)
		}
		if err := db.Where("id IN ?", levels[i]).Delete(&models.Department{}).Error; err != nil {
			return MapError(err)
		}
	}
	return nil
}

// ReassignDelete moves the direct employees of id to targetID and then
// cascade-deletes the subtree rooted at id.
func (r *DepartmentRepository) ReassignDelete(ctx context.Context, id uint, targetID uint) error {
	if err := r.store.query(ctx).
		Model(&models.Employee{}).
		Where("department_id = ?", id).
		Update("department_id", targetID).Error; err != nil {
		return MapError(err)
	}
	return r.CascadeDelete(ctx, id)
}

// subtreeLevels returns the ids under id grouped by distance from it, the
// root level first. One query is issued per level.
func (r *DepartmentRepository) subtreeLevels(ctx context.Context, id uint) ([][]uint, error) {
	levels := [][]uint{{id}}
	seen := map[uint]bool{id: true}

	frontier := []uint{id}
	for len(frontier) > 0 {
		var childIDs []uint
		if err := r.store.query(ctx).
			Model(&models.Department{}).
			Where("parent_id IN ?", frontier).
			Order("id ASC").
			Pluck("id", &childIDs).Error; err != nil {
			return nil, fmt.Errorf("load subtree level: %w", err)
		}

		next := make([]uint, 0, len(childIDs))
		for _, childID := range childIDs {
			if !seen[childID] {
				seen[childID] = true
				next = append(next, childID)
			}
		}
		if len(next) > 0 {
			levels = append(levels, next)
		}
		frontier = next
	}
	return levels, nil
}
