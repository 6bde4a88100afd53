package main

import (
	"errors"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/storefront-api/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply or roll back the storefront schema in the PostgreSQL database named by DATABASE_URL.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("Migrations rolled back")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				cmd.Printf("version %d (dirty: %t)\n", v, dirty)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) (err error) {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	databaseURL := c.GetDatabaseURL()
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL is required")
	}

	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, m.Close())
	}()

	return fn(m)
}
