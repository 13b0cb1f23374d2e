// Package analysis coordinates the full pipeline: discovery, declaration,
// dependency, and linking. Failures in individual files degrade the report
// instead of aborting the run.
package analysis

import (
	"time"

	"codegraph/internal/engine/parser"
)

type Status string

const (
	StatusPending             Status = "pending"
	StatusInProgress          Status = "in_progress"
	StatusCompleted           Status = "completed"
	StatusCompletedWithIssues Status = "completed_with_issues"
	StatusFailed              Status = "failed"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one finding attached to the report: a skipped file, a dangling
// edge, a wildcard import the resolver cannot follow.
type Issue struct {
	Severity Severity
	Message  string
	File     string
	Position *parser.SourcePosition
}

type Metrics struct {
	FilesProcessed int
	FilesFailed    int
	NodesCreated   int
	EdgesCreated   int
	Duration       time.Duration
}

// Report is the outcome of one analysis run. It is always produced, even
// when the run fails outright.
type Report struct {
	Status  Status
	Issues  []Issue
	Metrics Metrics
	Started time.Time
}

func NewReport() *Report {
	return &Report{
		Status:  StatusPending,
		Started: time.Now(),
	}
}

func (r *Report) AddError(message, file string, pos *parser.SourcePosition) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityError, Message: message, File: file, Position: pos})
}

func (r *Report) AddWarning(message, file string, pos *parser.SourcePosition) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityWarning, Message: message, File: file, Position: pos})
}

func (r *Report) AddInfo(message, file string, pos *parser.SourcePosition) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityInfo, Message: message, File: file, Position: pos})
}

// Errors counts error-severity issues.
func (r *Report) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// finish stamps the duration and derives the terminal status. File-scoped
// failures are contained as issues; StatusFailed is reserved for an error
// escaping a whole phase.
func (r *Report) finish() {
	r.Metrics.Duration = time.Since(r.Started)
	switch {
	case r.Status == StatusFailed:
	case r.Metrics.FilesFailed > 0 || r.Errors() > 0:
		r.Status = StatusCompletedWithIssues
	default:
		r.Status = StatusCompleted
	}
}
