package commands

import (
	"fmt"

	"github.com/walteh/patchrc/pkg/operation"
)

// ExitError carries a non-zero exit code for outcomes that are already reported
type ExitError struct {
	Code    int
	Summary operation.Summary
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d: %s", e.Code, e.Summary)
}
