package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType classifies tracker and merge failures
type ErrorType string

const (
	// 数据错误
	ErrorTypeDataFormat  ErrorType = "data_format"
	ErrorTypeDataMissing ErrorType = "data_missing"

	// 系统级错误
	ErrorTypeWrite  ErrorType = "write"
	ErrorTypeConfig ErrorType = "config"
	ErrorTypeProbe  ErrorType = "probe"
)

// ErrorSeverity 错误严重程度
type ErrorSeverity int

const (
	SeverityLow    ErrorSeverity = iota // 可忽略, skip and continue
	SeverityMedium                      // 功能降级
	SeverityHigh                        // abort the current merge cycle
)

// TrackerError carries classification for merge-pipeline error policy:
// low-severity errors are logged and skipped, high-severity errors abort
// the cycle and leave the source bucket intact.
type TrackerError struct {
	Type      ErrorType
	Severity  ErrorSeverity
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *TrackerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TrackerError) Unwrap() error {
	return e.Cause
}

// NewWriteError wraps a durable-write failure. These must abort the merge
// cycle so the source bucket is never deleted after a partial write.
func NewWriteError(msg string, cause error) *TrackerError {
	return &TrackerError{
		Type:      ErrorTypeWrite,
		Severity:  SeverityHigh,
		Message:   msg,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// NewDataFormatError wraps a malformed persisted row. Skippable.
func NewDataFormatError(msg string, cause error) *TrackerError {
	return &TrackerError{
		Type:      ErrorTypeDataFormat,
		Severity:  SeverityLow,
		Message:   msg,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// NewDataMissingError marks a source bucket that is already gone at merge
// time, which a prior run may have consumed. Skippable.
func NewDataMissingError(msg string) *TrackerError {
	return &TrackerError{
		Type:      ErrorTypeDataMissing,
		Severity:  SeverityLow,
		Message:   msg,
		Timestamp: time.Now(),
	}
}

// IsFatal reports whether err must abort the current merge cycle.
func IsFatal(err error) bool {
	var te *TrackerError
	if errors.As(err, &te) {
		return te.Severity >= SeverityHigh
	}
	return err != nil
}
