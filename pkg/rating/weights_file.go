package rating

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed weights.schema.json
var weightsSchema []byte

const rootField = "(root)"

// LoadWeightsFile reads a JSON or YAML weights file. Entries are either plain
// numbers or objects with a numeric "weight" key. Names are not checked
// against the known factors here.
func LoadWeightsFile(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadWeights, err)
	}

	return ParseWeights(data)
}

// ParseWeights decodes and validates weights file content.
func ParseWeights(data []byte) (map[string]float64, error) {
	var doc any

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWeightsFile, err)
	}

	if doc == nil {
		return map[string]float64{}, nil
	}

	if err := validateWeights(doc); err != nil {
		return nil, err
	}

	entries, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrInvalidWeightsFile)
	}

	out := make(map[string]float64, len(entries))

	for name, raw := range entries {
		if obj, isObj := raw.(map[string]any); isObj {
			raw = obj["weight"]
		}

		value, err := ParseValue(name, raw)
		if err != nil {
			return nil, err
		}

		out[name] = value
	}

	return out, nil
}

func validateWeights(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(weightsSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWeightsFile, err)
	}

	if result.Valid() {
		return nil
	}

	var (
		fields  []string
		rootErr bool
	)

	for _, re := range result.Errors() {
		if re.Field() == rootField {
			rootErr = true

			continue
		}

		fields = append(fields, re.Field())
	}

	if rootErr && len(fields) == 0 {
		return fmt.Errorf("%w: top level must be a mapping", ErrInvalidWeightsFile)
	}

	return fmt.Errorf("%w: %s", ErrInvalidWeightValue, strings.Join(dedupe(fields), ", "))
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]

	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}

		seen[it] = struct{}{}
		out = append(out, it)
	}

	return out
}
