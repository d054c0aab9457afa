package catalog

import (
	"errors"
	"fmt"

	"github.com/roach88/masterylens/internal/combatlog"
)

// ConfigErrorCode categorizes catalog configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeDuplicateSpell indicates a spell ID listed twice across heal lists.
	ErrCodeDuplicateSpell ConfigErrorCode = "DUPLICATE_SPELL"

	// ErrCodeDuplicateBuff indicates a buff ID listed twice.
	ErrCodeDuplicateBuff ConfigErrorCode = "DUPLICATE_BUFF"

	// ErrCodeInvalidID indicates a zero or negative ID.
	ErrCodeInvalidID ConfigErrorCode = "INVALID_ID"

	// ErrCodeSchema indicates a catalog file that does not match the schema.
	ErrCodeSchema ConfigErrorCode = "SCHEMA"
)

// ConfigError is a fatal catalog construction error. It signals a mistake in
// static configuration, never noise in log data.
type ConfigError struct {
	Code    ConfigErrorCode
	Message string
	SpellID combatlog.SpellID
	Source  string // file path, when loaded from disk
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.SpellID != 0 {
		msg = fmt.Sprintf("%s (spell=%d)", msg, e.SpellID)
	}
	if e.Source != "" {
		msg = fmt.Sprintf("%s: %s", e.Source, msg)
	}
	return msg
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// NewDuplicateSpellError reports id listed under two classes (or twice in one).
func NewDuplicateSpellError(id combatlog.SpellID, first, second Class) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeDuplicateSpell,
		Message: fmt.Sprintf("spell listed as %s and %s", first, second),
		SpellID: id,
	}
}

// NewDuplicateBuffError reports a repeated buff ID.
func NewDuplicateBuffError(id combatlog.SpellID) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeDuplicateBuff,
		Message: "buff listed twice",
		SpellID: id,
	}
}

// NewInvalidIDError reports a non-positive ID.
func NewInvalidIDError(id combatlog.SpellID, list string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidID,
		Message: fmt.Sprintf("id %d in %s must be positive", id, list),
	}
}
