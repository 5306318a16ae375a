package main

import (
	"fmt"

	"inkwell/internal/bootstrap"
	"inkwell/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply the schema according to DB_SCHEMA_MODE",
		Args:  cobra.NoArgs,
		RunE:  migrateUp,
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest SQL migration",
		Args:  cobra.NoArgs,
		RunE:  migrateDown,
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema policy and pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE:  migrateStatus,
	})
	return migrateCmd
}

func openRuntime(cmd *cobra.Command, opts bootstrap.Options) (*bootstrap.Runtime, error) {
	return bootstrap.InitRuntime(cmd.Context(), cfg, opts)
}

func migrateUp(cmd *cobra.Command, _ []string) error {
	// InitRuntime applies the schema.
	rt, err := openRuntime(cmd, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	fmt.Fprintf(cmd.OutOrStdout(), "schema applied (mode=%s driver=%s)\n", cfg.DBSchemaMode, cfg.DBDriver)
	return nil
}

func migrateDown(cmd *cobra.Command, _ []string) error {
	if cfg.DBDriver == "sqlite" {
		return fmt.Errorf("sqlite databases are managed by AutoMigrate and have no SQL migrations to roll back")
	}

	rt, err := openRuntime(cmd, bootstrap.Options{SkipSchema: true})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	m, err := database.RollbackLatest(cmd.Context(), rt.DB)
	if err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	if m == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "no applied migrations")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rolled back %06d_%s\n", m.Version, m.Name)
	return nil
}

func migrateStatus(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd, bootstrap.Options{SkipSchema: true})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	status, err := database.GetSchemaStatus(cmd.Context(), rt.DB, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "mode=%s driver=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
		status.Mode, status.Driver, status.WillRunSQL, status.WillRunAutoMigrate,
		len(status.AppliedVersions), len(status.PendingMigrations))
	for _, m := range status.PendingMigrations {
		fmt.Fprintf(out, "pending: %06d_%s\n", m.Version, m.Name)
	}
	return nil
}
