package pipeline

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a pipeline that cannot be assembled, such as one
// without a source or with colliding step ids.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "pipeline configuration: " + e.Reason
}

// SchemaValidationError reports data whose columns do not match what a step
// declared or required.
type SchemaValidationError struct {
	StepID     string
	Missing    []string
	Extra      []string
	Mismatched map[string][2]string // column -> {actual, expected}
	Detail     string
}

func (e *SchemaValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing columns: %v", e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("extra columns: %v", e.Extra))
	}
	if len(e.Mismatched) > 0 {
		parts = append(parts, fmt.Sprintf("type mismatches: %v", e.Mismatched))
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	msg := "schema validation failed"
	if e.StepID != "" {
		msg += " in step " + e.StepID
	}
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, "; ")
	}
	return msg
}

// StepExecutionError wraps the failure of a single step with its id.
type StepExecutionError struct {
	StepID string
	Err    error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.StepID, e.Err)
}

func (e *StepExecutionError) Unwrap() error {
	return e.Err
}

// ResourceError reports a transactional resource that is missing or whose
// lifecycle operation (acquire, release, rollback) failed.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	if e.Err == nil {
		return "resource " + e.Op
	}
	return fmt.Sprintf("resource %s: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}
