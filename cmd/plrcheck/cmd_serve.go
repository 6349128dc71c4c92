package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plrcheck/internal/app/pipeline"
	"plrcheck/internal/domain/validation"
	"plrcheck/internal/imports"
	kafkainfra "plrcheck/internal/infra/kafka"
)

func newServeCommand(logger func() *zap.Logger) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Consume script submissions from Kafka and publish validation reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := loadAppConfig()

			resolver, err := imports.DefaultResolver()
			if err != nil {
				return fmt.Errorf("load import resolver: %w", err)
			}

			registry, err := buildRegistry(backend)
			if err != nil {
				return err
			}

			service := pipeline.NewService(resolver, registry, log)
			defer func() {
				if cerr := service.Close(); cerr != nil {
					log.Warn("failed to close validation service", zap.Error(cerr))
				}
			}()

			consumer, err := kafkainfra.NewConsumer(kafkainfra.Config{
				Brokers: cfg.KafkaBrokers,
				Topic:   cfg.ScriptsTopic,
				GroupID: cfg.GroupID,
			})
			if err != nil {
				return fmt.Errorf("initialize kafka consumer: %w", err)
			}
			defer func() {
				if cerr := consumer.Close(); cerr != nil {
					log.Warn("failed to close kafka consumer", zap.Error(cerr))
				}
			}()

			publisher, err := kafkainfra.NewPublisher(kafkainfra.PublisherConfig{
				Brokers: cfg.KafkaBrokers,
				Topic:   cfg.ReportsTopic,
			})
			if err != nil {
				return fmt.Errorf("initialize kafka publisher: %w", err)
			}
			defer func() {
				if cerr := publisher.Close(); cerr != nil {
					log.Warn("failed to close kafka publisher", zap.Error(cerr))
				}
			}()

			log.Info("validator started",
				zap.Strings("brokers", cfg.KafkaBrokers),
				zap.String("scripts_topic", cfg.ScriptsTopic),
				zap.String("reports_topic", cfg.ReportsTopic),
				zap.Int("max_parallel", cfg.MaxParallel))

			onReport := func(event validation.ReportEvent) {
				if err := publisher.PublishReport(ctx, event); err != nil {
					log.Error("failed to publish report",
						zap.String("submission_id", event.Submission.ID),
						zap.Error(err))
				}
			}

			if err := service.ValidateFromSource(ctx, consumer, cfg.MaxSubmissions, cfg.MaxParallel, onReport); err != nil {
				return fmt.Errorf("validation loop: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", string(defaultBackend()), "sandbox backend (docker or process)")

	return cmd
}
