package highlight

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by ConfigurationError.
var (
	ErrInvalidPattern       = errors.New("invalid pattern")
	ErrDuplicateRegionState = errors.New("duplicate region state")
	ErrInvalidRegionState   = errors.New("region state must be positive")
	ErrInvalidCaptureGroup  = errors.New("capture group not in pattern")
	ErrUnknownStyle         = errors.New("unknown style")
)

// ConfigurationError reports a rule that prevented a RuleSet from being built.
type ConfigurationError struct {
	// Language is the Definition name, may be empty.
	Language string
	// Kind is "keyword", "operator", "brace", "rule" or "multiline".
	Kind string
	// Index is the position of the offending entry within its Kind.
	Index int
	// Pattern is the source text of the offending pattern, if any.
	Pattern string
	Err     error
}

func (e *ConfigurationError) Error() string {
	prefix := e.Kind
	if e.Language != "" {
		prefix = e.Language + ": " + prefix
	}
	if e.Pattern != "" {
		return fmt.Sprintf("%s %d (%q): %v", prefix, e.Index, e.Pattern, e.Err)
	}
	return fmt.Sprintf("%s %d: %v", prefix, e.Index, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
