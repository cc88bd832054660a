package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/orris-inc/f2fpay/internal/infrastructure/config"
	"github.com/orris-inc/f2fpay/internal/infrastructure/database"
	"github.com/orris-inc/f2fpay/internal/infrastructure/migration"
	"github.com/orris-inc/f2fpay/internal/shared/constants"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

const (
	toolGoose         = "goose"
	toolGolangMigrate = "golang-migrate"
)

var (
	env        string
	configPath string
	tool       string
	name       string
	steps      int
	version    int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage the payments schema: apply or roll back migrations, check status, and create new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().StringVar(&tool, "tool", toolGoose, "Migration tool for MySQL (goose, golang-migrate)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newForceCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func newForceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "force",
		Short: "Force the golang-migrate version after a failed migration",
		RunE:  runForce,
	}

	cmd.Flags().IntVar(&version, "version", 0, "Version to record (required)")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new golang-migrate up/down script pair",
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

type migrateEnv struct {
	cfg *config.Config
	db  *gorm.DB
	log logger.Interface
}

func initEnv(withDB bool) (*migrateEnv, error) {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	menv := &migrateEnv{cfg: cfg, log: logger.NewLogger().Named("migrate")}
	if !withDB {
		return menv, nil
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	menv.db = database.Get()

	return menv, nil
}

func scriptsPath(rel string) string {
	abs, err := filepath.Abs(rel)
	if err != nil {
		return rel
	}
	return abs
}

func (m *migrateEnv) isSQLite() bool {
	return m.cfg.Database.Driver == database.DriverSQLite
}

func (m *migrateEnv) goose() *migration.GooseStrategy {
	return migration.NewGooseStrategy(scriptsPath(migration.DefaultGooseScriptsPath), "mysql", m.log)
}

func (m *migrateEnv) golangMigrate() *migration.GolangMigrateStrategy {
	return migration.NewGolangMigrateStrategy(scriptsPath(migration.DefaultMigrateScriptsPath), m.log).(*migration.GolangMigrateStrategy)
}

func runUp(cmd *cobra.Command, args []string) error {
	menv, err := initEnv(true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	var strategy migration.Strategy
	switch {
	case menv.isSQLite():
		strategy = migration.NewGormAutoMigrateStrategy(menv.log)
	case tool == toolGolangMigrate:
		strategy = menv.golangMigrate()
	case tool == toolGoose:
		strategy = menv.goose()
	default:
		return fmt.Errorf("unknown migration tool %q", tool)
	}

	menv.log.Infow("running up migrations", "environment", env, "strategy", strategy.GetName())
	if err := migration.NewManagerWithStrategy(strategy, menv.log).Migrate(menv.db); err != nil {
		return err
	}

	menv.log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	menv, err := initEnv(true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	if menv.isSQLite() {
		return fmt.Errorf("down migrations are not supported for sqlite")
	}

	menv.log.Infow("running down migrations", "environment", env, "steps", steps, "tool", tool)

	switch tool {
	case toolGolangMigrate:
		err = menv.golangMigrate().MigrateDown(menv.db, steps)
	case toolGoose:
		err = menv.goose().MigrateDown(menv.db, steps)
	default:
		return fmt.Errorf("unknown migration tool %q", tool)
	}
	if err != nil {
		return fmt.Errorf("down migration failed: %w", err)
	}

	menv.log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	menv, err := initEnv(true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	if menv.isSQLite() {
		fmt.Println("sqlite schema is managed by AutoMigrate; no versioned migrations")
		return nil
	}

	goose := menv.goose()
	current, err := goose.GetVersion(menv.db)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Environment:     %s\n", env)
	fmt.Printf("  Current Version: %d\n", current)

	return goose.Status(menv.db)
}

func runForce(cmd *cobra.Command, args []string) error {
	menv, err := initEnv(true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	if err := menv.golangMigrate().Force(menv.db, version); err != nil {
		return fmt.Errorf("force failed: %w", err)
	}

	menv.log.Infow("migration version forced", "version", version)
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	menv, err := initEnv(false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	generator := migration.NewGenerator(scriptsPath(migration.DefaultMigrateScriptsPath), menv.log)
	upPath, downPath, err := generator.CreateMigration(name)
	if err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	fmt.Printf("Created %s\nCreated %s\n", upPath, downPath)
	return nil
}
