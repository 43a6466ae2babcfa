package recipe

import "fmt"

// PackagingRule selects build outputs by glob and places them in the
// install layout.
//
// Pattern is matched under Src (relative to the artifact root). A literal
// file name ("block.h") selects only that file directly under Src. A
// wildcard pattern without a "/" ("*.h") matches file names at any depth;
// a pattern with a "/" is matched against the path below Src, where "**"
// spans directories. Matches are copied under Dst (relative to the install
// root); Flatten drops the matched file's directories below Src.
type PackagingRule struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Src     string `json:"src,omitempty" yaml:"src,omitempty"`
	Dst     string `json:"dst" yaml:"dst"`
	Flatten bool   `json:"flatten" yaml:"flatten"`
}

func (r PackagingRule) String() string {
	mode := "keep-path"
	if r.Flatten {
		mode = "flatten"
	}
	return fmt.Sprintf("%s:%s -> %s (%s)", r.Src, r.Pattern, r.Dst, mode)
}

// ArtifactSet is the read-only output tree of a successful build.
type ArtifactSet struct {
	Root string
}
