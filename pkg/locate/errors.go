package locate

import (
	"fmt"
)

// ❌ SpecError reports a malformed locator. It is never retried.
type SpecError struct {
	Spec   string
	Reason string
	Err    error
}

func (e *SpecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid locator %s: %s: %v", e.Spec, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid locator %s: %s", e.Spec, e.Reason)
}

func (e *SpecError) Unwrap() error {
	return e.Err
}

func specErrorf(s Spec, format string, args ...any) *SpecError {
	return &SpecError{Spec: s.String(), Reason: fmt.Sprintf(format, args...)}
}
