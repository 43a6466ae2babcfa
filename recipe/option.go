package recipe

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------

// Domain is the set of legal values of an option.
type Domain struct {
	values  []string
	boolean bool
}

// Bool returns the boolean domain {false, true}.
func Bool() Domain {
	return Domain{values: []string{"false", "true"}, boolean: true}
}

// OneOf returns a domain made of the given values.
func OneOf(values ...string) Domain {
	return Domain{values: slices.Clone(values)}
}

// IsBool reports whether d is the boolean domain.
func (d Domain) IsBool() bool {
	return d.boolean
}

// Values returns the allowed values.
func (d Domain) Values() []string {
	return slices.Clone(d.values)
}

// Normalize returns the canonical spelling of v, and whether v belongs to d.
// Boolean domains accept every spelling strconv.ParseBool does ("True",
// "1", ...) and canonicalize it to "true" or "false".
func (d Domain) Normalize(v string) (string, bool) {
	if d.boolean {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return "", false
		}
		return strconv.FormatBool(b), true
	}
	if slices.Contains(d.values, v) {
		return v, true
	}
	return "", false
}

func (d Domain) String() string {
	return "{" + strings.Join(d.values, ", ") + "}"
}

// -----------------------------------------------------------------------------

// Option is a named build option with its domain and current value.
type Option struct {
	Name   string
	Domain Domain
	Value  string
}

// Bool returns the value of a boolean option.
func (o Option) Bool() bool {
	return o.Domain.IsBool() && o.Value == "true"
}

// Removal drops an option from the active set when When holds.
type Removal struct {
	Name string
	When Condition
}

// Options is the mutable option registry of one recipe invocation.
// It is frozen by Resolve.
type Options struct {
	decls    []Option
	index    map[string]int
	removals []Removal
	frozen   bool
}

// NewOptions returns an empty option registry.
func NewOptions() *Options {
	return &Options{index: make(map[string]int)}
}

// Declare registers an option with its domain and default value.
func (o *Options) Declare(name string, domain Domain, def string) error {
	if o.frozen {
		return &FrozenConfigurationError{Op: "declare option", Name: name}
	}
	if _, ok := o.index[name]; ok {
		return &DuplicateOptionError{Name: name}
	}
	v, ok := domain.Normalize(def)
	if !ok {
		return &InvalidValueError{Name: name, Value: def, Domain: domain}
	}
	o.index[name] = len(o.decls)
	o.decls = append(o.decls, Option{Name: name, Domain: domain, Value: v})
	return nil
}

// DeclareBool registers a boolean option.
func (o *Options) DeclareBool(name string, def bool) error {
	return o.Declare(name, Bool(), strconv.FormatBool(def))
}

// Remove drops name from the active set when cond holds for the target
// platform. Removing an option that is not declared is a no-op.
func (o *Options) Remove(name string, cond Condition) error {
	if o.frozen {
		return &FrozenConfigurationError{Op: "remove option", Name: name}
	}
	if cond == nil {
		cond = Always
	}
	o.removals = append(o.removals, Removal{Name: name, When: cond})
	return nil
}

// SetDefault changes the current value of a declared option. The stored
// value is left untouched on error.
func (o *Options) SetDefault(name, value string) error {
	if o.frozen {
		return &FrozenConfigurationError{Op: "set option", Name: name}
	}
	i, ok := o.index[name]
	if !ok {
		return &UnknownOptionError{Name: name}
	}
	decl := &o.decls[i]
	v, ok := decl.Domain.Normalize(value)
	if !ok {
		return &InvalidValueError{Name: name, Value: value, Domain: decl.Domain}
	}
	decl.Value = v
	return nil
}

// Value returns the current value of a declared option.
func (o *Options) Value(name string) (string, bool) {
	i, ok := o.index[name]
	if !ok {
		return "", false
	}
	return o.decls[i].Value, true
}

// Frozen reports whether Resolve has been called.
func (o *Options) Frozen() bool {
	return o.frozen
}

// Resolve computes the active option set for platform p and freezes o.
// It may be called only once.
func (o *Options) Resolve(p Platform) (OptionSet, error) {
	if o.frozen {
		return OptionSet{}, &FrozenConfigurationError{Op: "resolve"}
	}
	o.frozen = true
	return OptionSet{opts: ActiveOptions(o.decls, o.removals, p)}, nil
}

// ActiveOptions returns decls without the options removed on platform p.
// Declaration order is kept. The inputs are not modified.
func ActiveOptions(decls []Option, removals []Removal, p Platform) []Option {
	removed := make(map[string]bool)
	for _, r := range removals {
		if r.When(p) {
			removed[r.Name] = true
		}
	}
	active := make([]Option, 0, len(decls))
	for _, d := range decls {
		if !removed[d.Name] {
			active = append(active, d)
		}
	}
	return active
}

// -----------------------------------------------------------------------------

// OptionSet is an immutable, resolved set of options.
type OptionSet struct {
	opts []Option
}

// NewOptionSet returns an OptionSet holding opts.
func NewOptionSet(opts ...Option) OptionSet {
	return OptionSet{opts: slices.Clone(opts)}
}

// Get returns the named option.
func (s OptionSet) Get(name string) (Option, bool) {
	for _, o := range s.opts {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// Has reports whether name is in the active set.
func (s OptionSet) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Bool returns the value of a boolean option, false when absent.
func (s OptionSet) Bool(name string) bool {
	o, ok := s.Get(name)
	return ok && o.Bool()
}

// Value returns the value of an option, "" when absent.
func (s OptionSet) Value(name string) string {
	o, _ := s.Get(name)
	return o.Value
}

// All returns a copy of the active options in declaration order.
func (s OptionSet) All() []Option {
	return slices.Clone(s.opts)
}

// Len returns the number of active options.
func (s OptionSet) Len() int {
	return len(s.opts)
}

func (s OptionSet) String() string {
	parts := make([]string, len(s.opts))
	for i, o := range s.opts {
		parts[i] = o.Name + "=" + o.Value
	}
	return strings.Join(parts, ",")
}

// -----------------------------------------------------------------------------

// Assignment is a user-supplied option value.
type Assignment struct {
	Name  string
	Value string
}

func (a Assignment) String() string {
	return a.Name + "=" + a.Value
}

// ParseAssignment parses "name=value".
func ParseAssignment(s string) (Assignment, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Assignment{}, fmt.Errorf("invalid option assignment %q: want name=value", s)
	}
	return Assignment{Name: name, Value: strings.TrimSpace(value)}, nil
}

// Set applies the assignments in order. It stops at the first failure.
func (o *Options) Set(values ...Assignment) error {
	for _, a := range values {
		if err := o.SetDefault(a.Name, a.Value); err != nil {
			return err
		}
	}
	return nil
}
