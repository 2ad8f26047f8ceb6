package store

import (
	"context"
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orgstructure/internal/apperror"
	"orgstructure/internal/models"
)

// treeLockKey identifies the advisory lock guarding structural writes on postgres.
const treeLockKey int64 = 0x6f72675f74726565

// Store is the persistence handle. A Store returned inside Transaction is bound
// to that transaction and must not outlive the callback.
type Store struct {
	db   *gorm.DB
	inTx bool
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Departments() *DepartmentRepository {
	return &DepartmentRepository{baseRepository: newBaseRepository[models.Department](s)}
}

func (s *Store) Employees() *EmployeeRepository {
	return &EmployeeRepository{baseRepository: newBaseRepository[models.Employee](s)}
}

// Transaction runs fn inside one database transaction. It commits when fn
// returns nil and rolls back on error or panic.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

// LockTree serializes structural writes for the rest of the current
// transaction. It is a no-op outside a transaction and on sqlite, whose
// writers are already serialized.
func (s *Store) LockTree(ctx context.Context) error {
	if !s.inTx {
		return nil
	}

	switch s.db.Dialector.Name() {
	case "postgres":
		if err := s.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", treeLockKey).Error; err != nil {
			return MapError(err)
		}
	case "mysql":
		var ids []uint
		if err := s.db.WithContext(ctx).
			Table("departments").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("id ASC").
			Pluck("id", &ids).Error; err != nil {
			return MapError(err)
		}
	}
	return nil
}

// SyncSequences moves the postgres id sequences past rows inserted with
// explicit ids. Other drivers derive the next id from the table itself.
func (s *Store) SyncSequences(ctx context.Context) error {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"departments", "employees"} {
		if err := s.query(ctx).Exec(
			"SELECT setval(pg_get_serial_sequence(?, 'id'), COALESCE((SELECT MAX(id) FROM "+table+"), 0) + 1, false)",
			table,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) query(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// forUpdate adds a row lock when running in a transaction on a driver that
// supports it.
func (s *Store) forUpdate(ctx context.Context) *gorm.DB {
	db := s.query(ctx)
	if !s.inTx {
		return db
	}
	switch s.db.Dialector.Name() {
	case "postgres", "mysql":
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// MapError translates storage constraint violations into application errors.
// Anything it does not recognize is returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return apperror.Wrap(err, apperror.CodeNotFound, "referenced department does not exist")
		case "23505":
			return apperror.Wrap(err, apperror.CodeConflict, "resource with the same unique attributes already exists")
		case "23514":
			return apperror.Wrap(err, apperror.CodeValidation, "value violates a length constraint")
		case "40001", "40P01":
			return apperror.Wrap(err, apperror.CodeConflict, "concurrent modification of the department tree")
		}
		return err
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1452:
			return apperror.Wrap(err, apperror.CodeNotFound, "referenced department does not exist")
		case 1062:
			return apperror.Wrap(err, apperror.CodeConflict, "resource with the same unique attributes already exists")
		case 1213:
			return apperror.Wrap(err, apperror.CodeConflict, "concurrent modification of the department tree")
		}
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperror.Wrap(err, apperror.CodeNotFound, "referenced department does not exist")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Wrap(err, apperror.CodeConflict, "resource with the same unique attributes already exists")
	}
	return err
}
