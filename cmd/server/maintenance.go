package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	jwttoken "discadian/internal/jwt_token"
)

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass over every verified identity and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, log, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.scheduler.RunOnce(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Convert a legacy Discord-keyed verification cache to the UUID-keyed layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openIdentities(log)
			if err != nil {
				return err
			}
			meta := store.Metadata()
			if meta.MigratedAt == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "verification cache at %s needs no migration (version %s)\n",
					cfg.VerificationCachePath(), meta.Version)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "verification cache at version %s, migrated %s\n",
				meta.Version, meta.MigratedAt.Time.Format(time.RFC3339))
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every verified identity as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openIdentities(log)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return store.WriteCSV(cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := store.WriteCSV(f); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file, stdout when empty")
	return cmd
}

func newRebuildIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild-indexes",
		Short: "Recompute the verification cache lookup tables from its records",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openIdentities(log)
			if err != nil {
				return err
			}
			if err := store.RebuildIndexes(cmd.Context()); err != nil {
				return err
			}
			return printJSON(cmd, store.Stats().MappingTables)
		},
	}
}

func newCleanupCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove identities verified more than --days ago",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return errors.New("--days must be positive")
			}
			store, err := openIdentities(log)
			if err != nil {
				return err
			}
			removed, err := store.CleanupOlderThan(cmd.Context(), time.Duration(days)*24*time.Hour)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d identities\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "Maximum age in days")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		name string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <admin-discord-id>",
		Short: "Issue an admin bearer token for the control API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer).
				GenerateAdminToken(args[0], name, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
