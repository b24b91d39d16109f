// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// Manifest describes one stage output artifact: what produced it and
// from which inputs. Written next to the artifact for human review.
type Manifest struct {
	Stage            string    `yaml:"stage"`
	RunID            string    `yaml:"run_id"`
	InputFingerprint string    `yaml:"input_fingerprint"`
	Inputs           []string  `yaml:"inputs"`
	Output           string    `yaml:"output"`
	ProducedAt       time.Time `yaml:"produced_at"`
}

// WriteManifest writes the manifest as YAML to path.
func WriteManifest(path string, m Manifest) error {
	if m.ProducedAt.IsZero() {
		m.ProducedAt = time.Now().UTC()
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadManifest reads a stage manifest. A missing file yields nil, nil.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}
