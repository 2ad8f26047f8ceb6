package main

import (
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orgstructure/internal/seed"
	"orgstructure/internal/store"
)

func newSeedCmd() *cobra.Command {
	var (
		dir     string
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load department and employee fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if migrate {
				if err := a.migrate(cmd.Context()); err != nil {
					return err
				}
			}

			var fixtures fs.FS = seed.Fixtures()
			if dir != "" {
				fixtures = os.DirFS(dir)
			}

			result, err := seed.Load(cmd.Context(), store.New(a.db), fixtures)
			if err != nil {
				return err
			}
			a.logger.Info("fixtures loaded",
				zap.Int("departments", result.Departments),
				zap.Int("employees", result.Employees),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory with departments.json and employees.json (default: bundled fixtures)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply migrations before seeding")
	return cmd
}
