// Package seed loads department and employee fixtures into an empty store.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"time"
	"unicode/utf8"

	"orgstructure/internal/models"
	"orgstructure/internal/store"
)

const (
	DepartmentsFile = "departments.json"
	EmployeesFile   = "employees.json"
	dateLayout      = "2006-01-02"
)

//go:embed fixtures/*.json
var embedded embed.FS

// Fixtures returns the fixture set bundled with the binary.
func Fixtures() fs.FS {
	sub, err := fs.Sub(embedded, "fixtures")
	if err != nil {
		panic(err)
	}
	return sub
}

type departmentFixture struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ParentID *uint  `json:"parent_id"`
}

type employeeFixture struct {
	ID           uint    `json:"id"`
	DepartmentID uint    `json:"department_id"`
	FullName     string  `json:"full_name"`
	Position     string  `json:"position"`
	HiredAt      *string `json:"hired_at"`
}

type Result struct {
	Departments int
	Employees   int
}

// Load inserts the fixtures found in fsys within one transaction. Departments
// go first and must be listed parents before children.
func Load(ctx context.Context, st *store.Store, fsys fs.FS) (Result, error) {
	departments, err := readDepartments(fsys)
	if err != nil {
		return Result{}, err
	}
	employees, err := readEmployees(fsys)
	if err != nil {
		return Result{}, err
	}

	err = st.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.Departments().BulkCreate(ctx, departments); err != nil {
			return fmt.Errorf("insert departments: %w", err)
		}
		if err := tx.Employees().BulkCreate(ctx, employees); err != nil {
			return fmt.Errorf("insert employees: %w", err)
		}
		return tx.SyncSequences(ctx)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Departments: len(departments), Employees: len(employees)}, nil
}

func readDepartments(fsys fs.FS) ([]models.Department, error) {
	var fixtures []departmentFixture
	if err := readFixture(fsys, DepartmentsFile, &fixtures); err != nil {
		return nil, err
	}

	type sibling struct {
		parentID uint
		name     string
	}
	seen := make(map[sibling]uint, len(fixtures))

	departments := make([]models.Department, 0, len(fixtures))
	for _, fixture := range fixtures {
		name, err := normalizeTitle(fixture.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: department %d: name: %w", DepartmentsFile, fixture.ID, err)
		}

		// roots share the zero parent key, as in the sibling index
		key := sibling{name: name}
		if fixture.ParentID != nil {
			key.parentID = *fixture.ParentID
		}
		if otherID, ok := seen[key]; ok {
			return nil, fmt.Errorf("%s: department %d: name %q already used by sibling %d", DepartmentsFile, fixture.ID, name, otherID)
		}
		seen[key] = fixture.ID

		departments = append(departments, models.Department{
			ID:       fixture.ID,
			Name:     name,
			ParentID: fixture.ParentID,
		})
	}
	return departments, nil
}

func readEmployees(fsys fs.FS) ([]models.Employee, error) {
	var fixtures []employeeFixture
	if err := readFixture(fsys, EmployeesFile, &fixtures); err != nil {
		return nil, err
	}

	employees := make([]models.Employee, 0, len(fixtures))
	for _, fixture := range fixtures {
		fullName, err := normalizeTitle(fixture.FullName)
		if err != nil {
			return nil, fmt.Errorf("%s: employee %d: full_name: %w", EmployeesFile, fixture.ID, err)
		}
		position, err := normalizeTitle(fixture.Position)
		if err != nil {
			return nil, fmt.Errorf("%s: employee %d: position: %w", EmployeesFile, fixture.ID, err)
		}

		employee := models.Employee{
			ID:           fixture.ID,
			DepartmentID: fixture.DepartmentID,
			FullName:     fullName,
			Position:     position,
		}
		if fixture.HiredAt != nil && *fixture.HiredAt != "" {
			hiredAt, err := time.Parse(dateLayout, *fixture.HiredAt)
			if err != nil {
				return nil, fmt.Errorf("%s: employee %d: hired_at: %w", EmployeesFile, fixture.ID, err)
			}
			employee.HiredAt = &hiredAt
		}
		employees = append(employees, employee)
	}
	return employees, nil
}

// normalizeTitle applies the same trim and length bounds the API enforces.
func normalizeTitle(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(value)
	if length < models.MinTitleLength || length > models.MaxTitleLength {
		return "", fmt.Errorf("length must be in range %d..%d", models.MinTitleLength, models.MaxTitleLength)
	}
	return value, nil
}

func readFixture(fsys fs.FS, name string, target interface{}) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode fixture %s: %w", name, err)
	}
	return nil
}
