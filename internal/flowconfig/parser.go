package flowconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse loads a pipeline document from disk, validates its shape, and
// returns it ready for Resolve.
func Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flowconfig: read %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("flowconfig: parse %s: %w", path, err)
	}

	if err := validateDocument(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}
