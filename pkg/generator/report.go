package generator

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-templateer/pkg/stub"
)

// ModuleResult describes one successfully processed template module.
type ModuleResult struct {
	Module string
	Stub   stub.Stub
	Merge  stub.Report

	// StubPath is the manifest location that was written (or confirmed
	// unchanged). OutputPath is set in generate mode only.
	StubPath   string
	OutputPath string
}

// ModuleError pairs a module name with the error that stopped it. One broken
// module never hides failures in the rest of the run.
type ModuleError struct {
	Module string
	Err    error
}

func (e ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, e.Err)
}

func (e ModuleError) Unwrap() error {
	return e.Err
}

// Report aggregates the outcome of one generation run.
type Report struct {
	Results  []ModuleResult
	Failures []ModuleError
}

// Err returns the aggregate failure, or nil when every module succeeded. The
// run itself fails only after every module was attempted.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, failure := range r.Failures {
		errs = append(errs, failure)
	}
	return fmt.Errorf("generator: %d of %d modules failed: %w",
		len(r.Failures), len(r.Failures)+len(r.Results), errors.Join(errs...))
}

// Result looks up a module's result by name.
func (r Report) Result(module string) (ModuleResult, bool) {
	for _, result := range r.Results {
		if result.Module == module {
			return result, true
		}
	}
	return ModuleResult{}, false
}
