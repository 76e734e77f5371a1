package driver

import "fmt"

// Registry resolves a submission's declared type to its Driver.
type Registry struct {
	drivers map[string]Driver
}

// NewRegistry builds a registry from a fixed set of drivers, keyed by
// their own Name().
func NewRegistry(drivers ...Driver) *Registry {
	m := make(map[string]Driver, len(drivers))
	for _, d := range drivers {
		m[d.Name()] = d
	}
	return &Registry{drivers: m}
}

// Resolve looks up the driver for a submission type. An unknown type
// returns an error before anything is staged or spawned; the runner
// turns that error into a sandbox_error verdict.
func (r *Registry) Resolve(submissionType string) (Driver, error) {
	d, ok := r.drivers[submissionType]
	if !ok {
		return nil, fmt.Errorf("unsupported submission type %q", submissionType)
	}
	return d, nil
}
