package kafka

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"plrcheck/internal/domain/validation"
)

const (
	messageTypeSubmission = "submission"
	messageTypeDone       = "done"
)

type submissionEnvelope struct {
	Type    string             `json:"type"`
	ID      string             `json:"id"`
	Input   string             `json:"input"`
	Options *submissionOptions `json:"options,omitempty"`
}

type submissionOptions struct {
	EnableTracking bool   `json:"enable_tracking"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	SaveTestReport bool   `json:"save_test_report"`
	TestReportDir  string `json:"test_report_dir,omitempty"`
}

type reportEnvelope struct {
	ID               string             `json:"id"`
	Success          bool               `json:"success"`
	TestResults      validation.Outcome `json:"test_results"`
	ExecutionSummary validation.Summary `json:"execution_summary"`
	Errors           []string           `json:"errors"`
	Warnings         []string           `json:"warnings"`
	TestReportPath   string             `json:"test_report_path,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
}

func decodeSubmissionMessage(msg kafkago.Message) (validation.Submission, error) {
	var envelope submissionEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return validation.Submission{}, fmt.Errorf("decode message: %w", err)
	}

	msgType := envelope.Type
	if msgType == "" {
		msgType = messageTypeSubmission
	}

	switch msgType {
	case messageTypeSubmission:
		return envelope.toSubmission(msg)
	case messageTypeDone:
		return validation.Submission{}, io.EOF
	default:
		return validation.Submission{}, fmt.Errorf("unknown message type %q", msgType)
	}
}

func (e submissionEnvelope) toSubmission(msg kafkago.Message) (validation.Submission, error) {
	if e.Input == "" {
		return validation.Submission{}, fmt.Errorf("submission message missing input")
	}

	id := e.ID
	if id == "" {
		id = string(msg.Key)
	}
	if id == "" {
		id = uuid.NewString()
	}

	return validation.Submission{
		ID:      id,
		Input:   e.Input,
		Options: e.toOptions(),
	}, nil
}

func (e submissionEnvelope) toOptions() validation.Options {
	if e.Options == nil {
		return validation.Options{}
	}

	options := validation.Options{
		EnableTracking: e.Options.EnableTracking,
		SaveReport:     e.Options.SaveTestReport,
		ReportDir:      e.Options.TestReportDir,
	}
	if e.Options.TimeoutSeconds > 0 {
		options.Timeout = time.Duration(e.Options.TimeoutSeconds) * time.Second
	}
	return options
}

func encodeReportEvent(event validation.ReportEvent) ([]byte, error) {
	payload, err := json.Marshal(makeReportEnvelope(event))
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return payload, nil
}

func makeReportEnvelope(event validation.ReportEvent) reportEnvelope {
	envelope := reportEnvelope{
		ID:        event.Submission.ID,
		Timestamp: time.Now().UTC(),
	}

	if event.Report != nil {
		envelope.Success = event.Report.Success
		envelope.TestResults = event.Report.TestResults
		envelope.ExecutionSummary = event.Report.ExecutionSummary
		envelope.Errors = event.Report.Errors
		envelope.Warnings = event.Report.Warnings
		envelope.TestReportPath = event.Report.ReportPath
	}

	return envelope
}
