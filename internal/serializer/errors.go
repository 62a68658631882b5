package serializer

import "fmt"

// NoProviderError is raised when no strategy provider matches a value. It is
// the only error the core serializer raises loudly; every other failure mode
// downgrades the affected entry to comparable=false instead (see §7 of
// SPEC_FULL.md). Callers should treat a NoProviderError as a bug in strategy
// coverage — internal/coverage exists to catch this ahead of time, statically.
type NoProviderError struct {
	Value any
}

func (e *NoProviderError) Error() string {
	return fmt.Sprintf("serializer: no provider for value %#v", e.Value)
}
