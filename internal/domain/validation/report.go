package validation

// Input kinds recorded in the outcome after submission resolution.
const (
	InputTypeFile   = "file"
	InputTypeString = "string"
)

// Outcome holds the per-stage flags of one validation run. Flags only move
// from false to true; once a stage records a failure no later stage resets
// it.
type Outcome struct {
	SyntaxValid          bool   `json:"syntax_valid"`
	ImportsValid         bool   `json:"imports_valid"`
	SimulationSuccessful bool   `json:"simulation_successful"`
	TrackingEnabled      bool   `json:"tracking_enabled"`
	InputType            string `json:"input_type,omitempty"`
	FilePath             string `json:"file_path,omitempty"`
}

// Summary aggregates counters from the sandboxed run. Operation counters
// stay zero until the simulation backend exposes reliable runtime
// statistics; TotalExecutionTime is stamped on every run regardless of
// outcome.
type Summary struct {
	OperationsPerformed int     `json:"operations_performed"`
	TipsUsed            int     `json:"tips_used"`
	LiquidTransferred   float64 `json:"liquid_transferred"`
	ExecutionTime       float64 `json:"execution_time"`
	TotalExecutionTime  float64 `json:"total_execution_time"`
}

// Report is the terminal artifact of one validation run. It is immutable
// once constructed and is written at most once to storage.
type Report struct {
	Success          bool     `json:"success"`
	TestResults      Outcome  `json:"test_results"`
	ExecutionSummary Summary  `json:"execution_summary"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
	ReportPath       string   `json:"test_report_path,omitempty"`
}

// ReportEvent pairs a report with the submission that produced it, for
// publication to external systems.
type ReportEvent struct {
	Submission Submission
	Report     *Report
}
