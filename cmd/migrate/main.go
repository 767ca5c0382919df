package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/migrations"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/services"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func main() {
	_ = godotenv.Load()
	utils.InitLogger("hostel-migrate")

	rootCmd := &cobra.Command{
		Use:   "hostel-migrate",
		Short: "Schema migrations and bootstrap tasks for the hostel service",
	}
	rootCmd.PersistentFlags().String("db-url", "", "Postgres URL (defaults to DB_URL)")

	rootCmd.AddCommand(upCmd(), statusCmd(), seedAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func connect(cmd *cobra.Command) (*pgx.Conn, error) {
	url, _ := cmd.Flags().GetString("db-url")
	if url == "" {
		url = os.Getenv("DB_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("no database URL: pass --db-url or set DB_URL")
	}
	conn, err := pgx.Connect(cmd.Context(), url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err := conn.Exec(cmd.Context(), createMigrationsTable); err != nil {
		conn.Close(context.Background())
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return conn, nil
}

func appliedVersions(ctx context.Context, conn *pgx.Conn) (map[string]bool, error) {
	rows, err := conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close(context.Background())

			files, err := migrations.All()
			if err != nil {
				return fmt.Errorf("load migrations: %w", err)
			}
			applied, err := appliedVersions(ctx, conn)
			if err != nil {
				return fmt.Errorf("read applied migrations: %w", err)
			}

			count := 0
			for _, f := range files {
				if applied[f.Name] {
					continue
				}
				if err := applyOne(ctx, conn, f); err != nil {
					return err
				}
				utils.Logger.Infof("Applied %s", f.Name)
				count++
			}
			utils.Logger.Infof("%d migration(s) applied", count)
			return nil
		},
	}
}

func applyOne(ctx context.Context, conn *pgx.Conn, f migrations.File) (err error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, f.SQL); err != nil {
		return fmt.Errorf("apply %s: %w", f.Name, err)
	}
	if _, err = tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, f.Name); err != nil {
		return fmt.Errorf("record %s: %w", f.Name, err)
	}
	return tx.Commit(ctx)
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close(context.Background())

			files, err := migrations.All()
			if err != nil {
				return fmt.Errorf("load migrations: %w", err)
			}
			applied, err := appliedVersions(ctx, conn)
			if err != nil {
				return fmt.Errorf("read applied migrations: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-30s  %-8s\n", "Version", "Status")
			for _, f := range files {
				status := "Pending"
				if applied[f.Name] {
					status = "Applied"
				}
				fmt.Fprintf(out, "%-30s  %-8s\n", f.Name, status)
			}
			return nil
		},
	}
}

// seedAdminCmd creates the first admin; later admins are created through the API.
func seedAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			password := os.Getenv("ADMIN_PASSWORD")
			if password == "" {
				return fmt.Errorf("ADMIN_PASSWORD must be set")
			}

			conn, err := connect(cmd)
			if err != nil {
				return err
			}
			defer conn.Close(context.Background())

			admin, err := services.CreateAdmin(cmd.Context(), repositories.NewAdminRepository(conn), email, name, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Admin email")
	cmd.Flags().String("name", "", "Admin full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
