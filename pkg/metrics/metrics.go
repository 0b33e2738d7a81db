// Package metrics defines named, self-describing computations over analysis
// results. Team statistics and rating factors are expressed as metrics so
// reports can list them with their display names and descriptions.
package metrics

import "sort"

// Metric categories.
const (
	TypeAggregate = "aggregate"
	TypeLeader    = "leader"
	TypeFactor    = "factor"
)

// Metric is a named computation from In to Out.
type Metric[In, Out any] interface {
	// Name returns the machine-readable identifier (snake_case, unique).
	Name() string

	// DisplayName returns a human-readable name for reports.
	DisplayName() string

	// Description explains what the value measures.
	Description() string

	// Type returns the metric category.
	Type() string

	// Compute calculates the metric value from input data.
	Compute(input In) Out
}

// MetricMeta holds the common metadata for a metric.
// Embed this in metric implementations to satisfy metadata methods.
type MetricMeta struct {
	MetricName        string
	MetricDisplayName string
	MetricDescription string
	MetricType        string
}

// Name returns the machine-readable identifier.
func (m MetricMeta) Name() string { return m.MetricName }

// DisplayName returns a human-readable name for reports.
func (m MetricMeta) DisplayName() string { return m.MetricDisplayName }

// Description returns the metric documentation.
func (m MetricMeta) Description() string { return m.MetricDescription }

// Type returns the metric category.
func (m MetricMeta) Type() string { return m.MetricType }

// Info is the serializable description of a registered metric.
type Info struct {
	Name        string `json:"name"         yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Description string `json:"description"  yaml:"description"`
	Type        string `json:"type"         yaml:"type"`
}

type describer interface {
	Name() string
	DisplayName() string
	Description() string
	Type() string
}

// Registry holds metrics in registration order.
type Registry struct {
	metrics map[string]any
	order   []string
}

// NewRegistry creates an empty metric registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]any)}
}

// Register adds a metric to the registry, replacing any metric with the same name.
func Register[In, Out any](r *Registry, m Metric[In, Out]) {
	if _, exists := r.metrics[m.Name()]; !exists {
		r.order = append(r.order, m.Name())
	}

	r.metrics[m.Name()] = m
}

// Get retrieves a metric by name.
func (r *Registry) Get(name string) (any, bool) {
	m, ok := r.metrics[name]

	return m, ok
}

// Lookup retrieves a metric by name with its concrete signature.
func Lookup[In, Out any](r *Registry, name string) (Metric[In, Out], bool) {
	m, ok := r.metrics[name]
	if !ok {
		return nil, false
	}

	typed, ok := m.(Metric[In, Out])

	return typed, ok
}

// Names returns all registered metric names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// SortedNames returns all registered metric names alphabetically.
func (r *Registry) SortedNames() []string {
	names := r.Names()
	sort.Strings(names)

	return names
}

// Describe returns the metadata of every registered metric in registration order.
func (r *Registry) Describe() []Info {
	infos := make([]Info, 0, len(r.order))

	for _, name := range r.order {
		d, ok := r.metrics[name].(describer)
		if !ok {
			continue
		}

		infos = append(infos, Info{
			Name:        d.Name(),
			DisplayName: d.DisplayName(),
			Description: d.Description(),
			Type:        d.Type(),
		})
	}

	return infos
}
