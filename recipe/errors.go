package recipe

import (
	"fmt"
	"strings"
)

// DuplicateOptionError is returned when an option name is declared twice.
type DuplicateOptionError struct {
	Name string
}

func (e *DuplicateOptionError) Error() string {
	return fmt.Sprintf("option %q already declared", e.Name)
}

// InvalidValueError is returned when a value is outside an option's domain.
type InvalidValueError struct {
	Name   string
	Value  string
	Domain Domain
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for option %q: allowed %s", e.Value, e.Name, e.Domain)
}

// UnknownOptionError is returned when an operation names an undeclared option.
type UnknownOptionError struct {
	Name string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option %q", e.Name)
}

// FrozenConfigurationError is returned when options are mutated after Resolve.
type FrozenConfigurationError struct {
	Op   string
	Name string
}

func (e *FrozenConfigurationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: configuration is frozen", e.Op)
	}
	return fmt.Sprintf("%s %q: configuration is frozen", e.Op, e.Name)
}

// UnresolvedDependencyError is returned when a requirement cannot be turned
// into exactly one concrete package.
type UnresolvedDependencyError struct {
	Name       string
	Constraint string
	Err        error
}

func (e *UnresolvedDependencyError) Error() string {
	msg := fmt.Sprintf("unresolved dependency %s/%s", e.Name, e.Constraint)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnresolvedDependencyError) Unwrap() error { return e.Err }

// BuildFailedError is returned when the external build tool exits non-zero
// or cannot be run at all. ExitCode is -1 when no process exit status exists.
type BuildFailedError struct {
	ExitCode int
	Output   []byte
	Err      error
}

func (e *BuildFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "build failed (exit code %d)", e.ExitCode)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *BuildFailedError) Unwrap() error { return e.Err }

// PackagingIOError is returned on filesystem failures while packaging.
type PackagingIOError struct {
	Path string
	Err  error
}

func (e *PackagingIOError) Error() string {
	return fmt.Sprintf("packaging %s: %v", e.Path, e.Err)
}

func (e *PackagingIOError) Unwrap() error { return e.Err }
