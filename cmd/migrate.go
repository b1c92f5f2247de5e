// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/canonical/provisioning-service/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|status|check] [version]",
	Short: "Run database migrations",
	Long:  `Apply or roll back the schema of organizations, invitations and tenant links. The DSN falls back to the DSN environment variable.`,
	Args:  validateMigrateArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().String("dsn", "", "PostgreSQL DSN connection string")
	migrateCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")

	rootCmd.AddCommand(migrateCmd)
}

func validateMigrateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(0, 2)(cmd, args); err != nil {
		return err
	}

	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "up", "down", "status", "check":
	default:
		return fmt.Errorf("invalid migration command: %q", args[0])
	}

	if len(args) == 2 {
		if args[0] != "down" {
			return fmt.Errorf("only down accepts a target version, got %q", args)
		}

		if v, err := strconv.ParseInt(args[1], 10, 64); err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %q", args[1])
		}
	}

	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	target := int64(-1)
	if len(args) > 1 {
		target, _ = strconv.ParseInt(args[1], 10, 64)
	}

	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		dsn = os.Getenv("DSN")
	}
	if dsn == "" {
		return fmt.Errorf("a DSN is required, use --dsn or the DSN environment variable")
	}

	format, _ := cmd.Flags().GetString("format")

	db, err := openMigrationDB(cmd.Context(), dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := newMigrator(db, format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	return m.run(cmd.Context(), command, target)
}

func openMigrationDB(ctx context.Context, dsn string) (*sql.DB, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("DSN validation failed: %v", err)
	}

	db := stdlib.OpenDB(*config)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("DB connection failed: %v", err)
	}

	return db, nil
}

type migrator struct {
	provider *goose.Provider
	json     bool
	out      io.Writer
}

func newMigrator(db *sql.DB, format string, out io.Writer) (*migrator, error) {
	m := &migrator{json: format == "json", out: out}

	var opts []goose.ProviderOption
	if m.json {
		opts = append(opts, goose.WithLogger(goose.NopLogger()))
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.EmbedMigrations, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}
	m.provider = provider

	return m, nil
}

func (m *migrator) run(ctx context.Context, command string, target int64) error {
	switch command {
	case "up":
		results, err := m.provider.Up(ctx)
		if err != nil {
			return err
		}
		return m.printResults(results)
	case "down":
		return m.down(ctx, target)
	case "status":
		return m.status(ctx)
	case "check":
		return m.check(ctx)
	}

	return fmt.Errorf("unknown migration command %q", command)
}

func (m *migrator) down(ctx context.Context, target int64) error {
	if target >= 0 {
		results, err := m.provider.DownTo(ctx, target)
		if err != nil {
			return err
		}
		return m.printResults(results)
	}

	result, err := m.provider.Down(ctx)
	if err != nil {
		return err
	}

	return m.printResults([]*goose.MigrationResult{result})
}

func (m *migrator) printResults(results []*goose.MigrationResult) error {
	if results == nil {
		results = []*goose.MigrationResult{}
	}

	if m.json {
		return json.NewEncoder(m.out).Encode(map[string]any{"applied": results})
	}

	for _, r := range results {
		fmt.Fprintln(m.out, r.String())
	}

	return nil
}

func (m *migrator) status(ctx context.Context) error {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return err
	}

	if m.json {
		return json.NewEncoder(m.out).Encode(statuses)
	}

	w := tabwriter.NewWriter(m.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "APPLIED AT\tMIGRATION")
	for _, s := range statuses {
		appliedAt := "Pending"
		if s.State == goose.StateApplied {
			appliedAt = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\n", appliedAt, s.Source.Path)
	}

	return w.Flush()
}

func (m *migrator) check(ctx context.Context) error {
	pending, err := m.provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}

	current, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	state := "ok"
	if pending {
		state = "pending"
	}

	if m.json {
		return json.NewEncoder(m.out).Encode(map[string]any{"status": state, "version": current})
	}

	if pending {
		return fmt.Errorf("migrations are pending: current version %d", current)
	}

	fmt.Fprintf(m.out, "Database is up to date (version %d)\n", current)
	return nil
}
