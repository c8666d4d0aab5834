package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig matches every ValidationError via errors.Is.
var ErrInvalidConfig = errors.New("invalid config")

// Problem is one offending config key, e.g. "site.site_url".
type Problem struct {
	Key    string
	Reason string
}

func (p Problem) String() string {
	if p.Key == "" {
		return p.Reason
	}
	return p.Key + " " + p.Reason
}

// ValidationError collects every config problem found in one pass.
type ValidationError struct {
	Problems []Problem
}

func (e ValidationError) Error() string {
	switch len(e.Problems) {
	case 0:
		return ErrInvalidConfig.Error()
	case 1:
		return fmt.Sprintf("%s: %s", ErrInvalidConfig, e.Problems[0])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d problems):", ErrInvalidConfig, len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.String())
	}
	return b.String()
}

func (e *ValidationError) Add(key, reason string) {
	e.Problems = append(e.Problems, Problem{Key: key, Reason: reason})
}

func (e *ValidationError) Addf(key, format string, args ...any) {
	e.Add(key, fmt.Sprintf(format, args...))
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Err returns nil when nothing was reported.
func (e ValidationError) Err() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Keys lists the offending keys in report order, without duplicates.
func (e ValidationError) Keys() []string {
	out := make([]string, 0, len(e.Problems))
	seen := make(map[string]bool, len(e.Problems))
	for _, p := range e.Problems {
		if seen[p.Key] {
			continue
		}
		seen[p.Key] = true
		out = append(out, p.Key)
	}
	return out
}
