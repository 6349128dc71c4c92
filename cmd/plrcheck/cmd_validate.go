package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plrcheck/internal/app/pipeline"
	"plrcheck/internal/domain/validation"
	"plrcheck/internal/imports"
)

func newValidateCommand(logger func() *zap.Logger) *cobra.Command {
	var (
		backend    string
		tracking   bool
		timeout    time.Duration
		saveReport bool
		reportDir  string
	)

	cmd := &cobra.Command{
		Use:   "validate <script-path-or-source>",
		Short: "Validate one automation script and print the report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			defer log.Sync()

			resolver, err := imports.DefaultResolver()
			if err != nil {
				return fmt.Errorf("load import resolver: %w", err)
			}

			registry, err := buildRegistry(backend)
			if err != nil {
				return err
			}

			service := pipeline.NewService(resolver, registry, log)
			defer service.Close()

			report := service.Validate(cmd.Context(), validation.Submission{
				ID:    uuid.NewString(),
				Input: args[0],
				Options: validation.Options{
					EnableTracking: tracking,
					Timeout:        timeout,
					SaveReport:     saveReport,
					ReportDir:      reportDir,
				},
			})

			encoded, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

			if !report.Success {
				return fmt.Errorf("validation failed with %d error(s)", len(report.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", string(defaultBackend()), "sandbox backend (docker or process)")
	cmd.Flags().BoolVar(&tracking, "tracking", false, "enable tip and volume tracking in the simulated run")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "sandbox execution timeout (0 uses the default)")
	cmd.Flags().BoolVar(&saveReport, "save-report", false, "persist the report as a JSON document")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "directory for persisted reports (defaults to the system temp dir)")

	return cmd
}
