package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"orgstructure/internal/models"
	"orgstructure/internal/store"
)

type dumpOutput struct {
	Departments []models.Department `json:"departments"`
	Employees   []models.Employee   `json:"employees"`
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print all departments and employees as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			st := store.New(a.db)
			departments, err := st.Departments().Dump(cmd.Context())
			if err != nil {
				return err
			}
			employees, err := st.Employees().Dump(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(dumpOutput{Departments: departments, Employees: employees})
		},
	}
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
