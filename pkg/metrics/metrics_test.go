package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test constants to avoid magic strings/numbers.
const (
	testMetricName        = "test_metric"
	testMetricName2       = "test_metric_2"
	testMetricDisplayName = "Test Metric"
	testMetricDescription = "A test metric for unit testing"
	testInputValue        = 42
	testOutputMultiplier  = 2
)

// testMetric is a concrete implementation for testing the Metric interface.
type testMetric struct {
	MetricMeta
}

// Compute doubles the input value.
func (m *testMetric) Compute(input int) int {
	return input * testOutputMultiplier
}

func newTestMetric(name string) *testMetric {
	return &testMetric{
		MetricMeta: MetricMeta{
			MetricName:        name,
			MetricDisplayName: testMetricDisplayName,
			MetricDescription: testMetricDescription,
			MetricType:        TypeAggregate,
		},
	}
}

func TestMetricMeta_Accessors(t *testing.T) {
	t.Parallel()

	m := newTestMetric(testMetricName)

	assert.Equal(t, testMetricName, m.Name())
	assert.Equal(t, testMetricDisplayName, m.DisplayName())
	assert.Equal(t, testMetricDescription, m.Description())
	assert.Equal(t, TypeAggregate, m.Type())
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	Register[int, int](r, newTestMetric(testMetricName2))
	Register[int, int](r, newTestMetric(testMetricName))

	assert.Equal(t, []string{testMetricName2, testMetricName}, r.Names())
	assert.Equal(t, []string{testMetricName, testMetricName2}, r.SortedNames())

	m, ok := Lookup[int, int](r, testMetricName)
	require.True(t, ok)
	assert.Equal(t, testInputValue*testOutputMultiplier, m.Compute(testInputValue))

	_, ok = Lookup[string, int](r, testMetricName)
	assert.False(t, ok)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_ReRegisterKeepsOrder(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	Register[int, int](r, newTestMetric(testMetricName))
	Register[int, int](r, newTestMetric(testMetricName2))
	Register[int, int](r, newTestMetric(testMetricName))

	assert.Equal(t, []string{testMetricName, testMetricName2}, r.Names())
}

func TestRegistry_Describe(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	Register[int, int](r, newTestMetric(testMetricName))

	infos := r.Describe()
	require.Len(t, infos, 1)
	assert.Equal(t, Info{
		Name:        testMetricName,
		DisplayName: testMetricDisplayName,
		Description: testMetricDescription,
		Type:        TypeAggregate,
	}, infos[0])
}
