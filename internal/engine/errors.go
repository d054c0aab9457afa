package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/masterylens/internal/combatlog"
)

// DiagnosticCode categorizes per-event data problems.
type DiagnosticCode string

const (
	// DiagMissingField indicates a required numeric field was absent.
	DiagMissingField DiagnosticCode = "MISSING_FIELD"

	// DiagZeroMaxHealth indicates a heal on a target reporting zero max health.
	DiagZeroMaxHealth DiagnosticCode = "ZERO_MAX_HEALTH"

	// DiagNonFinite indicates NaN or infinite values in the mastery math.
	DiagNonFinite DiagnosticCode = "NON_FINITE"

	// DiagHealthOutOfRange indicates a pre-heal health outside [0,100]%; the
	// value was clamped and the heal still attributed.
	DiagHealthOutOfRange DiagnosticCode = "HEALTH_OUT_OF_RANGE"

	// DiagDispatchAfterSummary indicates Dispatch after Summarize. Processing
	// continues; earlier reports are stale.
	DiagDispatchAfterSummary DiagnosticCode = "DISPATCH_AFTER_SUMMARY"
)

// Diagnostic records a non-fatal problem with one event.
type Diagnostic struct {
	Seq       int64               `json:"seq"`
	Code      DiagnosticCode      `json:"code"`
	Message   string              `json:"message"`
	EventType combatlog.EventType `json:"event_type,omitempty"`
	SpellID   combatlog.SpellID   `json:"spell_id,omitempty"`
	Timestamp int64               `json:"timestamp,omitempty"`
}

// String formats the diagnostic for logs and text output.
func (d Diagnostic) String() string {
	if d.SpellID != 0 {
		return fmt.Sprintf("seq=%d %s: %s (spell=%d)", d.Seq, d.Code, d.Message, d.SpellID)
	}
	return fmt.Sprintf("seq=%d %s: %s", d.Seq, d.Code, d.Message)
}

// ConfigErrorCode categorizes engine construction errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidActor indicates a missing or unknown tracked actor ID.
	ErrCodeInvalidActor ConfigErrorCode = "INVALID_ACTOR"

	// ErrCodeInvalidMastery indicates unusable mastery constants or rating.
	ErrCodeInvalidMastery ConfigErrorCode = "INVALID_MASTERY"

	// ErrCodeMissingCatalog indicates a nil spell catalog.
	ErrCodeMissingCatalog ConfigErrorCode = "MISSING_CATALOG"
)

// ConfigError is returned by New when the engine cannot be constructed.
type ConfigError struct {
	Code    ConfigErrorCode
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError returns true if err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func newConfigError(code ConfigErrorCode, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Message: fmt.Sprintf(format, args...)}
}
