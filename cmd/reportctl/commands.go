package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/locvowork/enrollment_report/internal/bootstrap"
	"github.com/locvowork/enrollment_report/internal/config"
	"github.com/locvowork/enrollment_report/internal/logger"
	"github.com/locvowork/enrollment_report/internal/service"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reportctl",
		Short:         "Build and export the weekly enrollment report",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newExportCommand())
	cmd.AddCommand(newTablesCommand())
	cmd.AddCommand(newLayoutCommand())

	return cmd
}

func newExportCommand() *cobra.Command {
	var cookies []string
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the report workbook to a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := loadService(ctx)
			if err != nil {
				return err
			}
			jar, err := parseCookies(cookies)
			if err != nil {
				return err
			}

			filename, data, err := svc.ExportReport(ctx, jar)
			if err != nil {
				return fmt.Errorf("export report: %w", err)
			}

			path := filepath.Join(outDir, filename)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&cookies, "cookie", nil, "Session cookie forwarded to the datastore (name=value, repeatable)")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	return cmd
}

func newTablesCommand() *cobra.Command {
	var cookies []string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the assembled report tables as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := loadService(ctx)
			if err != nil {
				return err
			}
			jar, err := parseCookies(cookies)
			if err != nil {
				return err
			}

			rep, err := svc.BuildReport(ctx, jar)
			if err != nil {
				return fmt.Errorf("build report: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}

	cmd.Flags().StringArrayVar(&cookies, "cookie", nil, "Session cookie forwarded to the datastore (name=value, repeatable)")
	return cmd
}

func newLayoutCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the effective report table layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := config.LoadLayout(file)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(layout)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Layout file (defaults to the embedded layout)")
	return cmd
}

func loadService(ctx context.Context) (*service.ReportService, error) {
	if err := config.LoadEnvConfig(); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}
	env := config.DefaultEnvConfig
	logger.InitLogging(env.LOG_FILE_PATH, env.LOG_LEVEL)

	layout, err := bootstrap.LoadLayout(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load report layout: %w", err)
	}
	logger.DebugLog(ctx, "Loaded layout with %d tables", len(layout.Tables))
	return bootstrap.NewReportService(env, layout)
}

func parseCookies(values []string) ([]*http.Cookie, error) {
	cookies := make([]*http.Cookie, 0, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid cookie %q, expected name=value", v)
		}
		cookies = append(cookies, &http.Cookie{Name: strings.TrimSpace(name), Value: value})
	}
	return cookies, nil
}
