package cmd

import (
	"github.com/nimasrn/trader-ledger/internal/app"
	"github.com/nimasrn/trader-ledger/internal/config"
	"github.com/nimasrn/trader-ledger/pkg/pg"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var (
		dir    string
		status bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending postgres migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config.Get()
			if c.StoreBackend != config.BackendPostgres {
				return errors.Errorf("migrations only apply to the postgres backend, got %q", c.StoreBackend)
			}
			if dir == "" {
				dir = c.MigrationsDir
			}
			_, write := app.PostgresConfigs(c)
			if status {
				return pg.MigrationStatus(write, dir)
			}
			return pg.Migrate(write, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (default MIGRATIONS_DIR)")
	cmd.Flags().BoolVar(&status, "status", false, "print migration status instead of applying")
	return cmd
}
