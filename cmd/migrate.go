package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rentmatch/config"
	"github.com/kilianp07/rentmatch/infra/logger"
	"github.com/kilianp07/rentmatch/infra/memory"
	"github.com/kilianp07/rentmatch/infra/postgres"
)

var seedFixture bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply PostgreSQL migrations and optionally seed the directory",
	RunE:  migrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&seedFixture, "seed", false, "load directory.fixture into the accounts and equipment tables")
	rootCmd.AddCommand(migrateCmd)
}

func migrate(_ *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Type != config.BackendPostgres {
		return fmt.Errorf("migrate needs store.type %q, got %q", config.BackendPostgres, cfg.Store.Type)
	}
	log := logger.New("migrate")
	pool, err := postgres.Connect(ctx, cfg.Store.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		log.Infof("schema up to date")
	}
	for _, v := range applied {
		log.Infof("applied %s", v)
	}

	if !seedFixture {
		return nil
	}
	if cfg.Directory.Fixture == "" {
		return fmt.Errorf("--seed needs directory.fixture")
	}
	fx, err := memory.LoadFixture(cfg.Directory.Fixture)
	if err != nil {
		return err
	}
	accounts, equipment := fx.Snapshot()
	if err := postgres.NewDirectory(pool).Seed(ctx, accounts, equipment); err != nil {
		return err
	}
	log.Infof("seeded %d accounts and %d equipment entries", len(accounts), len(equipment))
	return nil
}
