package main

import (
	"fmt"
	"strings"

	"github.com/hairizuanbinnoorazman/testcase-generator/database"
	"github.com/hairizuanbinnoorazman/testcase-generator/settings"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration commands",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *gorm.DB, driver string) error {
			if err := database.Migrate(db, driver, &settings.Setting{}); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *gorm.DB, driver string) error {
			if strings.ToLower(driver) != database.DriverMySQL {
				if err := db.Migrator().DropTable(&settings.Setting{}); err != nil {
					return fmt.Errorf("failed to drop settings table: %w", err)
				}
			} else {
				sqlDB, err := db.DB()
				if err != nil {
					return fmt.Errorf("failed to get database instance: %w", err)
				}
				if err := database.RollbackMigration(sqlDB); err != nil {
					return fmt.Errorf("failed to rollback migration: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration rolled back successfully")
			return nil
		})
	},
}

func withDatabase(fn func(db *gorm.DB, driver string) error) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	return fn(db, cfg.Database.Driver)
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	rootCmd.AddCommand(migrateCmd)
}
