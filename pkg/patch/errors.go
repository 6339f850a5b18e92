package patch

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrNotFound is matched by every *NotFoundError
var ErrNotFound = errors.New("block not found")

// NotFoundError reports that no strategy located the block
type NotFoundError struct {
	Attempts []Attempt
}

func (e *NotFoundError) Error() string {
	tried := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		tried = append(tried, a.Strategy)
	}
	return fmt.Sprintf("block not found (tried %s)", strings.Join(tried, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AmbiguousError reports more than one candidate span. The engine never picks one.
type AmbiguousError struct {
	Count    int
	Strategy string
}

func (e *AmbiguousError) Error() string {
	if e.Strategy != "" {
		return fmt.Sprintf("ambiguous: %s matched %d blocks", e.Strategy, e.Count)
	}
	return fmt.Sprintf("ambiguous: %d blocks matched", e.Count)
}
