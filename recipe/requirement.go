package recipe

import (
	"context"
	"slices"
)

// Scope tells whether a requirement is needed at link time or only to build.
type Scope int

const (
	ScopeRuntime Scope = iota
	ScopeBuild
)

func (s Scope) String() string {
	if s == ScopeBuild {
		return "build"
	}
	return "runtime"
}

// Requirement is a dependency on another package.
type Requirement struct {
	Name       string
	Constraint string
	// Propagate marks requirements whose public headers must be visible to
	// consumers of this package.
	Propagate bool
	Scope     Scope
}

func (r Requirement) String() string {
	return r.Name + "/" + r.Constraint
}

// Guard decides from the resolved options whether a requirement applies.
type Guard func(OptionSet) bool

// WhenOption returns a Guard that holds when the boolean option name is
// active and true.
func WhenOption(name string) Guard {
	return func(opts OptionSet) bool {
		return opts.Bool(name)
	}
}

type guardedRequirement struct {
	req   Requirement
	guard Guard
}

// Requirements is a declarative list of predicate-guarded requirements.
// The concrete list is a pure function of the resolved options, see Compute.
type Requirements struct {
	entries []guardedRequirement
}

// Add appends an unconditional runtime requirement.
func (r *Requirements) Add(name, constraint string, propagate bool) {
	r.AddIf(nil, name, constraint, propagate)
}

// AddIf appends a runtime requirement that applies only when guard holds.
// A nil guard always holds.
func (r *Requirements) AddIf(guard Guard, name, constraint string, propagate bool) {
	r.entries = append(r.entries, guardedRequirement{
		req:   Requirement{Name: name, Constraint: constraint, Propagate: propagate, Scope: ScopeRuntime},
		guard: guard,
	})
}

// AddBuild appends a build-only requirement that applies when the boolean
// option guardOption resolves to true. An empty guardOption always applies.
func (r *Requirements) AddBuild(name, constraint, guardOption string) {
	var guard Guard
	if guardOption != "" {
		guard = WhenOption(guardOption)
	}
	r.entries = append(r.entries, guardedRequirement{
		req:   Requirement{Name: name, Constraint: constraint, Scope: ScopeBuild},
		guard: guard,
	})
}

// Len returns the number of declared entries, guarded or not.
func (r *Requirements) Len() int {
	return len(r.entries)
}

// Clone returns an independent copy of r.
func (r *Requirements) Clone() *Requirements {
	return &Requirements{entries: slices.Clone(r.entries)}
}

// Compute evaluates the guards against opts. Runtime requirements come
// first, then build requirements, each in declaration order.
func (r *Requirements) Compute(opts OptionSet) []Requirement {
	var runtime, build []Requirement
	for _, e := range r.entries {
		if e.guard != nil && !e.guard(opts) {
			continue
		}
		if e.req.Scope == ScopeBuild {
			build = append(build, e.req)
		} else {
			runtime = append(runtime, e.req)
		}
	}
	return append(runtime, build...)
}

// -----------------------------------------------------------------------------

// ResolvedPackage is a concrete installed package returned by a Resolver.
type ResolvedPackage struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	InstallPath string   `json:"install_path"`
	Headers     string   `json:"headers,omitempty"`
	Libraries   []string `json:"libraries,omitempty"`
}

// Resolver turns a name and a version constraint into exactly one package.
type Resolver interface {
	Resolve(ctx context.Context, name, constraint string) (*ResolvedPackage, error)
}

// ResolvedRequirement pairs a requirement with the package chosen for it.
type ResolvedRequirement struct {
	Requirement
	Package *ResolvedPackage
}

// ResolveAll resolves every requirement in order. The first failure aborts
// the whole resolution with an *UnresolvedDependencyError; no partial list
// is returned.
func ResolveAll(ctx context.Context, resolver Resolver, reqs []Requirement) ([]ResolvedRequirement, error) {
	resolved := make([]ResolvedRequirement, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, &UnresolvedDependencyError{Name: req.Name, Constraint: req.Constraint, Err: err}
		}
		pkg, err := resolver.Resolve(ctx, req.Name, req.Constraint)
		if err != nil {
			return nil, &UnresolvedDependencyError{Name: req.Name, Constraint: req.Constraint, Err: err}
		}
		if pkg == nil {
			return nil, &UnresolvedDependencyError{Name: req.Name, Constraint: req.Constraint}
		}
		resolved = append(resolved, ResolvedRequirement{Requirement: req, Package: pkg})
	}
	return resolved, nil
}
