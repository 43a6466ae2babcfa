// Package versions compares package versions and evaluates version
// constraints such as "1.9.4", ">=1.1,<4" or "[>=1.1 <4]".
package versions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goplus/recipe/pkgs/gnu"
	"golang.org/x/mod/semver"
)

var (
	// ErrNoMatch is returned by Select when no candidate satisfies the constraint.
	ErrNoMatch = errors.New("no matching version")
	// ErrAmbiguous is returned by Select when distinct candidates tie for the best match.
	ErrAmbiguous = errors.New("ambiguous version")
)

// Compare compares two versions and returns -1, 0 or +1. Versions that are
// valid semantic versions once prefixed with "v" ("1.1", "20230125.3")
// compare by semver precedence; anything else ("cci.20130801") falls back
// to GNU version ordering.
func Compare(a, b string) int {
	ca, cb := canonical(a), canonical(b)
	if ca != "" && cb != "" {
		return semver.Compare(ca, cb)
	}
	return gnu.Compare(strings.TrimPrefix(a, "v"), strings.TrimPrefix(b, "v"))
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if semver.IsValid(v) {
		return v
	}
	return ""
}

// -----------------------------------------------------------------------------

type term struct {
	op      string
	version string
}

func (t term) match(v string) bool {
	c := Compare(v, t.version)
	switch t.op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	}
	return false
}

// Constraint is a conjunction of version comparisons.
type Constraint struct {
	raw   string
	terms []term
}

var ops = []string{">=", "<=", "==", "!=", ">", "<", "="}

// ParseConstraint parses a constraint. Terms are separated by commas or
// spaces and may be enclosed in brackets; a bare version means "==", and
// "" or "*" matches everything.
func ParseConstraint(s string) (Constraint, error) {
	c := Constraint{raw: s}
	body := strings.TrimSpace(s)
	if strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]") {
		body = strings.TrimSpace(body[1 : len(body)-1])
	}
	if body == "" || body == "*" {
		return c, nil
	}

	fields := strings.FieldsFunc(body, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		op := ""
		for _, o := range ops {
			if strings.HasPrefix(f, o) {
				op = o
				break
			}
		}
		ver := strings.TrimSpace(f[len(op):])
		if ver == "" && op != "" && i+1 < len(fields) {
			// operator separated from its version: ">= 1.1"
			i++
			ver = fields[i]
		}
		if ver == "" {
			return Constraint{}, fmt.Errorf("invalid version constraint %q: missing version after %q", s, op)
		}
		switch op {
		case "", "=":
			op = "=="
		}
		c.terms = append(c.terms, term{op: op, version: ver})
	}
	return c, nil
}

// Match reports whether v satisfies every term of c.
func (c Constraint) Match(v string) bool {
	for _, t := range c.terms {
		if !t.match(v) {
			return false
		}
	}
	return true
}

// Pinned returns the version c pins when c is a single exact version.
func (c Constraint) Pinned() (string, bool) {
	if len(c.terms) == 1 && c.terms[0].op == "==" {
		return c.terms[0].version, true
	}
	return "", false
}

func (c Constraint) String() string {
	return c.raw
}

// Select returns the highest candidate matching c. It fails with ErrNoMatch
// when nothing matches, and with ErrAmbiguous when distinct candidates
// compare equal at the top ("1.1" and "1.1.0").
func (c Constraint) Select(candidates []string) (string, error) {
	var best []string
	for _, v := range candidates {
		if !c.Match(v) {
			continue
		}
		if len(best) == 0 {
			best = []string{v}
			continue
		}
		switch cmp := Compare(v, best[0]); {
		case cmp > 0:
			best = []string{v}
		case cmp == 0 && v != best[0]:
			best = append(best, v)
		}
	}
	switch len(best) {
	case 0:
		return "", fmt.Errorf("%w for %q", ErrNoMatch, c.raw)
	case 1:
		return best[0], nil
	}
	return "", fmt.Errorf("%w for %q: %s", ErrAmbiguous, c.raw, strings.Join(best, ", "))
}
