package builder

import (
	"sort"
)

// MaxReportedErrors caps the validation errors kept in a Summary.
const MaxReportedErrors = 100

// Summary reports what a build read and skipped.
type Summary struct {
	Files   int
	Read    int
	Valid   int
	Skipped int
	Reasons map[string]int
	// Errors holds the first MaxReportedErrors validation errors.
	Errors []*ValidationError
	// Chains is the number of records with a parsed narrator chain.
	Chains int
}

func newSummary() *Summary {
	return &Summary{Reasons: make(map[string]int)}
}

func (s *Summary) skip(err *ValidationError) {
	s.Skipped++
	s.Reasons[err.Reason]++
	if len(s.Errors) < MaxReportedErrors {
		s.Errors = append(s.Errors, err)
	}
}

// ReasonNames returns the skip reasons in sorted order.
func (s *Summary) ReasonNames() []string {
	out := make([]string, 0, len(s.Reasons))
	for r := range s.Reasons {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
