package recipe

import (
	"slices"
	"strings"
)

// ConsumerMetadata is what a downstream project needs to link against a
// package.
type ConsumerMetadata struct {
	LibraryNames    []string `json:"libs" yaml:"libs"`
	SystemLibraries []string `json:"system_libs,omitempty" yaml:"system_libs,omitempty"`
	LinkFlags       []string `json:"link_flags,omitempty" yaml:"link_flags,omitempty"`
	// Requires lists the requirements whose headers consumers must see.
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// Publish returns the consumer metadata of r built with reqs.
func Publish(r *Recipe, reqs []ResolvedRequirement) ConsumerMetadata {
	md := ConsumerMetadata{
		LibraryNames:    slices.Clone(r.Libs),
		SystemLibraries: slices.Clone(r.SystemLibs),
		LinkFlags:       slices.Clone(r.LinkFlags),
	}
	for _, req := range reqs {
		if req.Propagate && req.Scope == ScopeRuntime {
			md.Requires = append(md.Requires, req.Name)
		}
	}
	return md
}

// Flags renders the metadata as compiler driver link flags, pkg-config style.
func (m ConsumerMetadata) Flags() string {
	var parts []string
	parts = append(parts, m.LinkFlags...)
	for _, lib := range m.LibraryNames {
		parts = append(parts, "-l"+lib)
	}
	for _, lib := range m.SystemLibraries {
		parts = append(parts, "-l"+lib)
	}
	return strings.Join(parts, " ")
}
