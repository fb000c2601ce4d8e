package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/migrations"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
)

const defaultConfigPath = "config.toml"

func main() {
	root := &cobra.Command{
		Use:          "scheduling-service",
		Short:        "Appointment scheduling service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer log.Close()

			if cfg.Storage.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate requires storage.driver = %q", config.DriverPostgres)
			}

			db, err := openDatabase(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			return migrations.Up(cmd.Context(), db, log)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", defaultConfigPath, "path to config file")
	return cmd
}

// bootstrap загружает конфигурацию и инициализирует логгер
func bootstrap(configPath string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Info("Configuration loaded from %s", configPath)
	return cfg, log, nil
}

// openDatabase открывает пул соединений и проверяет доступность базы
func openDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	return db, nil
}
