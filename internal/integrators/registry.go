package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/softsim/internal/dynamo"
)

var constructors = map[string]func() dynamo.Integrator{
	"symplectic":    func() dynamo.Integrator { return NewSemiImplicitEuler() },
	"semi-implicit": func() dynamo.Integrator { return NewSemiImplicitEuler() },
	"euler":         func() dynamo.Integrator { return NewEuler() },
	"leapfrog":      func() dynamo.Integrator { return NewLeapfrog() },
}

// Get returns a fresh integrator by name. An empty name selects the
// semi-implicit scheme.
func Get(name string) (dynamo.Integrator, error) {
	if name == "" {
		return NewSemiImplicitEuler(), nil
	}
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
