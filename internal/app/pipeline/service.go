// Package pipeline validates automation scripts end to end: syntax check,
// import resolution, simulation rewrite, sandboxed execution, and report
// synthesis. Stages short-circuit on fatal failures; everything else is
// accumulated so one report carries every problem found.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"plrcheck/internal/domain/validation"
	"plrcheck/internal/imports"
	"plrcheck/internal/ports"
	"plrcheck/internal/pysrc"
	"plrcheck/internal/transform"
)

// libraryToken marks import paths that belong to the automation library.
const libraryToken = "pylabrobot"

// Service coordinates the validation pipeline.
type Service struct {
	checker  *pysrc.Checker
	resolver ports.SymbolResolver
	executor ports.Executor
	logger   *zap.Logger
}

// NewService constructs a Service with the provided dependencies.
func NewService(resolver ports.SymbolResolver, executor ports.Executor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		checker:  pysrc.NewChecker(),
		resolver: resolver,
		executor: executor,
		logger:   logger,
	}
}

// run carries the mutable state of one validation pass. Only the pipeline
// goroutine writes to it; the sandbox reports back through the returned
// ExecResult, merged in after execution finishes.
type run struct {
	submission validation.Submission
	started    time.Time
	outcome    validation.Outcome
	summary    validation.Summary
	errors     []string
	warnings   []string
}

// Validate runs the full pipeline over one submission. It always returns
// a report; internal failures become report errors rather than escaping
// to the caller.
func (s *Service) Validate(ctx context.Context, sub validation.Submission) *validation.Report {
	r := &run{
		submission: sub,
		started:    time.Now(),
		outcome:    validation.Outcome{TrackingEnabled: sub.Options.EnableTracking},
		errors:     []string{},
		warnings:   []string{},
	}

	source, ok := s.resolveSubmission(r)
	if !ok {
		return s.finish(r, false)
	}

	tree, ok := s.checkSyntax(ctx, r, source)
	if !ok {
		return s.finish(r, false)
	}

	s.checkImports(tree, r)
	tree.Close()

	transformed := transform.Apply(source, sub.Options.EnableTracking)
	s.execute(ctx, r, transformed)

	success := r.outcome.SyntaxValid && r.outcome.ImportsValid && r.outcome.SimulationSuccessful
	return s.finish(r, success)
}

func (s *Service) resolveSubmission(r *run) (string, bool) {
	source, info, err := resolveInput(r.submission.Input)
	r.outcome.InputType = info.Type
	r.outcome.FilePath = info.Path
	if err != nil {
		r.errors = append(r.errors, err.Error())
		return "", false
	}

	if strings.TrimSpace(source) == "" {
		r.errors = append(r.errors, "Script content is empty")
		return "", false
	}

	return source, true
}

func (s *Service) checkSyntax(ctx context.Context, r *run, source string) (*pysrc.Tree, bool) {
	tree, err := s.checker.Parse(ctx, []byte(source))
	if err != nil {
		var syntaxErr *pysrc.SyntaxError
		if errors.As(err, &syntaxErr) {
			r.errors = append(r.errors, fmt.Sprintf("Syntax Error: %v", syntaxErr))
		} else {
			r.errors = append(r.errors, fmt.Sprintf("Error parsing script: %v", err))
		}
		s.logger.Debug("syntax check failed",
			zap.String("submission", r.submission.ID),
			zap.Error(err))
		return nil, false
	}

	r.outcome.SyntaxValid = true
	return tree, true
}

func (s *Service) checkImports(tree *pysrc.Tree, r *run) {
	refs := pysrc.CollectImports(tree, libraryToken)
	result := imports.Validate(s.resolver, refs)

	r.outcome.ImportsValid = result.Success()
	r.errors = append(r.errors, result.Errors...)
	r.warnings = append(r.warnings, result.Warnings...)

	s.logger.Debug("import resolution finished",
		zap.String("submission", r.submission.ID),
		zap.Int("references", len(refs)),
		zap.Int("errors", len(result.Errors)),
		zap.Int("warnings", len(result.Warnings)))
}

func (s *Service) execute(ctx context.Context, r *run, transformed string) {
	timeout := r.submission.Options.EffectiveTimeout()

	result, err := s.executor.Execute(ctx, transformed, validation.RunLimits{TimeLimit: timeout})
	if err != nil {
		r.errors = append(r.errors, fmt.Sprintf("Script execution failed: %v", err))
		return
	}

	r.summary.ExecutionTime = result.Duration.Seconds()

	switch {
	case result.Status == validation.StatusTimeLimit:
		r.errors = append(r.errors,
			fmt.Sprintf("Script execution timed out after %d seconds", int(timeout.Seconds())))
	case result.Status == validation.StatusMemoryLimit:
		r.errors = append(r.errors, "Script execution exceeded the memory limit")
	case result.Run == nil:
		r.errors = append(r.errors, "Script execution completed but returned no result")
	case result.Run.Error != "":
		r.errors = append(r.errors, fmt.Sprintf("Script execution failed: %s", result.Run.Error))
	default:
		r.outcome.SimulationSuccessful = true
		r.summary.OperationsPerformed = result.Run.OperationsPerformed
		r.summary.TipsUsed = result.Run.TipsUsed
		r.summary.LiquidTransferred = result.Run.LiquidTransferred
		r.warnings = append(r.warnings, result.Run.Warnings...)
	}

	s.logger.Debug("sandboxed execution finished",
		zap.String("submission", r.submission.ID),
		zap.String("status", string(result.Status)),
		zap.Duration("duration", result.Duration))
}

// finish stamps the total elapsed time, persists the report when
// requested, and seals the result. Persistence failure is downgraded to a
// warning and never affects success.
func (s *Service) finish(r *run, success bool) *validation.Report {
	r.summary.TotalExecutionTime = time.Since(r.started).Seconds()

	report := &validation.Report{
		Success:          success,
		TestResults:      r.outcome,
		ExecutionSummary: r.summary,
		Errors:           r.errors,
		Warnings:         r.warnings,
	}

	if r.submission.Options.SaveReport {
		path, err := persistReport(report, r.submission.Options.ReportDir, time.Now())
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Failed to save test report: %v", err))
			s.logger.Warn("report persistence failed",
				zap.String("submission", r.submission.ID),
				zap.Error(err))
		} else {
			report.ReportPath = path
		}
	}

	s.logger.Info("validation finished",
		zap.String("submission", r.submission.ID),
		zap.Bool("success", report.Success),
		zap.Int("errors", len(report.Errors)),
		zap.Int("warnings", len(report.Warnings)))

	return report
}

// Close releases the sandbox executor.
func (s *Service) Close() error {
	return s.executor.Close()
}
