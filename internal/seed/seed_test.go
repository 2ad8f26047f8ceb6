package seed

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgstructure/internal/models"
	"orgstructure/internal/store"
	"orgstructure/internal/testutil"
)

func TestLoadEmbeddedFixtures(t *testing.T) {
	st := store.New(testutil.NewDB(t))
	ctx := context.Background()

	result, err := Load(ctx, st, Fixtures())
	require.NoError(t, err)
	assert.Equal(t, Result{Departments: 8, Employees: 9}, result)

	departments, err := st.Departments().Dump(ctx)
	require.NoError(t, err)
	require.Len(t, departments, 8)
	assert.Nil(t, departments[0].ParentID)
	assert.Equal(t, uint(4), *departments[5].ParentID)

	employees, err := st.Employees().Dump(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 9)
	require.NotNil(t, employees[0].HiredAt)
	assert.Equal(t, "2015-04-01", employees[0].HiredAt.Format(dateLayout))
	assert.Nil(t, employees[3].HiredAt)
	assert.Nil(t, employees[7].HiredAt)

	// new rows continue after the seeded ids
	created := models.Department{Name: "Legal"}
	require.NoError(t, st.Departments().Create(ctx, &created))
	assert.Equal(t, uint(9), created.ID)
}

func TestLoadRejectsBadDate(t *testing.T) {
	st := store.New(testutil.NewDB(t))
	fsys := fstest.MapFS{
		DepartmentsFile: {Data: []byte(`[{"id":1,"name":"Root"}]`)},
		EmployeesFile:   {Data: []byte(`[{"id":1,"department_id":1,"full_name":"A","position":"B","hired_at":"01.02.2020"}]`)},
	}

	_, err := Load(context.Background(), st, fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hired_at")
}

func TestLoadNormalizesNames(t *testing.T) {
	st := store.New(testutil.NewDB(t))
	ctx := context.Background()
	fsys := fstest.MapFS{
		DepartmentsFile: {Data: []byte(`[{"id":1,"name":"  Root "},{"id":2,"name":"\tSales","parent_id":1}]`)},
		EmployeesFile:   {Data: []byte(`[{"id":1,"department_id":2,"full_name":" Ada ","position":"Engineer  "}]`)},
	}

	_, err := Load(ctx, st, fsys)
	require.NoError(t, err)

	departments, err := st.Departments().Dump(ctx)
	require.NoError(t, err)
	require.Len(t, departments, 2)
	assert.Equal(t, "Root", departments[0].Name)
	assert.Equal(t, "Sales", departments[1].Name)

	employees, err := st.Employees().Dump(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Ada", employees[0].FullName)
	assert.Equal(t, "Engineer", employees[0].Position)
}

func TestLoadRejectsInvalidNames(t *testing.T) {
	long := strings.Repeat("x", models.MaxTitleLength+1)
	tests := []struct {
		name        string
		departments string
		employees   string
		message     string
	}{
		{
			name:        "blank department",
			departments: `[{"id":1,"name":"   "}]`,
			employees:   `[]`,
			message:     "department 1: name",
		},
		{
			name:        "long department",
			departments: `[{"id":1,"name":"` + long + `"}]`,
			employees:   `[]`,
			message:     "department 1: name",
		},
		{
			name:        "duplicate sibling",
			departments: `[{"id":1,"name":"Root"},{"id":2,"name":"Sales","parent_id":1},{"id":3,"name":" Sales","parent_id":1}]`,
			employees:   `[]`,
			message:     "already used by sibling 2",
		},
		{
			name:        "duplicate root",
			departments: `[{"id":1,"name":"Root"},{"id":2,"name":"Root"}]`,
			employees:   `[]`,
			message:     "already used by sibling 1",
		},
		{
			name:        "blank position",
			departments: `[{"id":1,"name":"Root"}]`,
			employees:   `[{"id":1,"department_id":1,"full_name":"Ada","position":""}]`,
			message:     "employee 1: position",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.New(testutil.NewDB(t))
			ctx := context.Background()
			fsys := fstest.MapFS{
				DepartmentsFile: {Data: []byte(tt.departments)},
				EmployeesFile:   {Data: []byte(tt.employees)},
			}

			_, err := Load(ctx, st, fsys)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)

			departments, err := st.Departments().Dump(ctx)
			require.NoError(t, err)
			assert.Empty(t, departments)
		})
	}
}

func TestLoadMissingFixture(t *testing.T) {
	st := store.New(testutil.NewDB(t))
	fsys := fstest.MapFS{
		DepartmentsFile: {Data: []byte(`[]`)},
	}

	_, err := Load(context.Background(), st, fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EmployeesFile)
}

func TestLoadRollsBackOnFailure(t *testing.T) {
	st := store.New(testutil.NewDB(t))
	ctx := context.Background()
	fsys := fstest.MapFS{
		DepartmentsFile: {Data: []byte(`[{"id":1,"name":"Root"},{"id":2,"name":"Child","parent_id":1}]`)},
		EmployeesFile: {Data: []byte(`[
			{"id":1,"department_id":1,"full_name":"A","position":"B"},
			{"id":1,"department_id":2,"full_name":"C","position":"D"}
		]`)},
	}

	_, err := Load(ctx, st, fsys)
	require.Error(t, err)

	departments, err := st.Departments().Dump(ctx)
	require.NoError(t, err)
	assert.Empty(t, departments)
}
