package detector

import "fmt"

// Check is the part every heuristic shares: a stable name
type Check interface {
	Name() string
}

// TextCheck scores raw text together with its extracted features
type TextCheck interface {
	Check
	Evaluate(text string, features TextFeatures) Contribution
}

// ImageCheck scores extracted image features
type ImageCheck interface {
	Check
	Evaluate(features ImageFeatures) Contribution
}

type registeredCheck[C Check] struct {
	check   C
	enabled bool
}

// Registry keeps heuristic checks in registration order. Evidence is
// emitted in that order, so appending a check never reorders existing output.
type Registry[C Check] struct {
	checks  []registeredCheck[C]
	enabled []C
}

// NewRegistry creates a registry holding the given checks, all enabled
func NewRegistry[C Check](checks ...C) *Registry[C] {
	r := &Registry[C]{}
	for _, c := range checks {
		r.checks = append(r.checks, registeredCheck[C]{check: c, enabled: true})
	}
	r.refreshEnabled()
	return r
}

// Register appends a check. Names must be unique.
func (r *Registry[C]) Register(check C) error {
	for _, rc := range r.checks {
		if rc.check.Name() == check.Name() {
			return fmt.Errorf("check %s already registered", check.Name())
		}
	}
	r.checks = append(r.checks, registeredCheck[C]{check: check, enabled: true})
	r.refreshEnabled()
	return nil
}

// Enabled returns enabled checks in registration order
func (r *Registry[C]) Enabled() []C {
	return r.enabled
}

// Get returns a check by name
func (r *Registry[C]) Get(name string) (C, error) {
	for _, rc := range r.checks {
		if rc.check.Name() == name {
			return rc.check, nil
		}
	}
	var zero C
	return zero, fmt.Errorf("check %s not found", name)
}

// Names returns the names of enabled checks
func (r *Registry[C]) Names() []string {
	names := make([]string, len(r.enabled))
	for i, c := range r.enabled {
		names[i] = c.Name()
	}
	return names
}

// Enable enables a check by name
func (r *Registry[C]) Enable(name string) error {
	return r.setEnabled(name, true)
}

// Disable disables a check by name
func (r *Registry[C]) Disable(name string) error {
	return r.setEnabled(name, false)
}

func (r *Registry[C]) setEnabled(name string, enabled bool) error {
	for i := range r.checks {
		if r.checks[i].check.Name() == name {
			r.checks[i].enabled = enabled
			r.refreshEnabled()
			return nil
		}
	}
	return fmt.Errorf("check %s not found", name)
}

func (r *Registry[C]) refreshEnabled() {
	r.enabled = make([]C, 0, len(r.checks))
	for _, rc := range r.checks {
		if rc.enabled {
			r.enabled = append(r.enabled, rc.check)
		}
	}
}
