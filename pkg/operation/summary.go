package operation

import (
	"fmt"

	"github.com/walteh/patchrc/pkg/transaction"
)

// Process exit codes
const (
	ExitOK        = 0
	ExitError     = 1
	ExitNotFound  = 2
	ExitAmbiguous = 3
)

// 📊 Summary counts results per kind
type Summary struct {
	Applied        int
	AlreadyApplied int
	NotFound       int
	Ambiguous      int
	Written        int
	// Discarded counts applied results dropped after a failure on the same path
	Discarded int
}

// Summarize counts results
func Summarize(results []*transaction.Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Kind {
		case transaction.KindApplied:
			if r.Discarded {
				s.Discarded++
				continue
			}
			s.Applied++
			if r.Written {
				s.Written++
			}
		case transaction.KindAlreadyApplied:
			s.AlreadyApplied++
		case transaction.KindNotFound:
			s.NotFound++
		case transaction.KindAmbiguous:
			s.Ambiguous++
		}
	}
	return s
}

// ExitCode maps the summary to a process exit code. An ambiguous result
// outranks a missing one.
func (s Summary) ExitCode() int {
	switch {
	case s.Ambiguous > 0:
		return ExitAmbiguous
	case s.NotFound > 0:
		return ExitNotFound
	}
	return ExitOK
}

// OK reports whether every result left its file patched
func (s Summary) OK() bool {
	return s.ExitCode() == ExitOK
}

func (s Summary) String() string {
	str := fmt.Sprintf("%d applied, %d already applied, %d not found, %d ambiguous", s.Applied, s.AlreadyApplied, s.NotFound, s.Ambiguous)
	if s.Discarded > 0 {
		str += fmt.Sprintf(", %d discarded", s.Discarded)
	}
	return str
}
