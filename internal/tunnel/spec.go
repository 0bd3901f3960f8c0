package tunnel

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// PortPlaceholder is replaced by the local port in every command.
const PortPlaceholder = "{port}"

// URLCallback is invoked once per tunnel with the URL it discovered.
// Callbacks may read the tunnel's state but must not call Start, Stop,
// Reset or AddTunnel, since Stop waits for them to return.
type URLCallback func(url, note string)

// Definition is the registration record for one tunnel. Exactly one of
// Pattern and Regexp is needed; a string pattern is compiled on registration.
type Definition struct {
	Command  string
	Pattern  string
	Regexp   *regexp.Regexp
	Name     string
	Note     string
	Callback URLCallback
}

// Spec is a validated tunnel definition. It is immutable once registered.
type Spec struct {
	Command  string
	Pattern  *regexp.Regexp
	Name     string
	Note     string
	Callback URLCallback
}

// RenderCommand substitutes the port placeholder.
func (s Spec) RenderCommand(port int) string {
	return strings.ReplaceAll(s.Command, PortPlaceholder, fmt.Sprintf("%d", port))
}

// Registry holds the ordered set of tunnel specs.
type Registry struct {
	mu    sync.RWMutex
	specs []Spec
	names map[string]struct{}
}

// NewRegistry builds a registry from defs. It is atomic: if any definition
// is invalid no registry is returned.
func NewRegistry(defs ...Definition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, ErrNoTunnels
	}
	r := &Registry{names: make(map[string]struct{})}
	for i, def := range defs {
		if err := r.Add(def); err != nil {
			return nil, fmt.Errorf("tunnel definition %d: %w", i, err)
		}
	}
	return r, nil
}

// Add validates def and appends it. Nothing is appended on error.
func (r *Registry) Add(def Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.names == nil {
		r.names = make(map[string]struct{})
	}
	spec, err := r.validate(def)
	if err != nil {
		return err
	}
	r.specs = append(r.specs, spec)
	r.names[spec.Name] = struct{}{}
	return nil
}

func (r *Registry) validate(def Definition) (Spec, error) {
	verr := &ValidationError{Subject: "tunnel"}
	if def.Name != "" {
		verr.Subject = fmt.Sprintf("tunnel %q", def.Name)
	}

	if strings.TrimSpace(def.Command) == "" {
		verr.add("command", "is required")
	}

	name := strings.TrimSpace(def.Name)
	if name == "" {
		verr.add("name", "is required")
	} else if _, dup := r.names[name]; dup {
		verr.add("name", "must be unique")
	}

	re := def.Regexp
	switch {
	case re != nil && def.Pattern != "":
		verr.add("pattern", "set either a string pattern or a compiled regexp, not both")
	case re == nil && def.Pattern == "":
		verr.add("pattern", "is required")
	case re == nil:
		compiled, err := regexp.Compile(def.Pattern)
		if err != nil {
			verr.add("pattern", err.Error())
		}
		re = compiled
	}

	if verr.hasErrors() {
		return Spec{}, verr
	}
	return Spec{
		Command:  def.Command,
		Pattern:  re,
		Name:     name,
		Note:     def.Note,
		Callback: def.Callback,
	}, nil
}

// Specs returns a copy of the registered specs in registration order.
func (r *Registry) Specs() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Len returns the number of registered specs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}
