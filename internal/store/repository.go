package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the capability set shared by every entity repository.
type Repository[T any] interface {
	Get(ctx context.Context, id uint) (*T, error)
	BulkCreate(ctx context.Context, entities []T) error
	Dump(ctx context.Context) ([]T, error)
}

type baseRepository[T any] struct {
	store *Store
}

func newBaseRepository[T any](s *Store) baseRepository[T] {
	return baseRepository[T]{store: s}
}

// Get returns nil without error when no row has the given id.
func (r baseRepository[T]) Get(ctx context.Context, id uint) (*T, error) {
	return r.first(r.store.query(ctx), id)
}

// GetForUpdate is Get with a row lock held until the transaction ends.
func (r baseRepository[T]) GetForUpdate(ctx context.Context, id uint) (*T, error) {
	return r.first(r.store.forUpdate(ctx), id)
}

func (r baseRepository[T]) first(db *gorm.DB, id uint) (*T, error) {
	var entity T
	if err := db.First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

func (r baseRepository[T]) BulkCreate(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}
	return MapError(r.store.query(ctx).Omit(clause.Associations).CreateInBatches(entities, 100).Error)
}

func (r baseRepository[T]) Dump(ctx context.Context) ([]T, error) {
	var entities []T
	if err := r.store.query(ctx).Order("id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}
