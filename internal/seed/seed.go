// Package seed carries the demo property catalog.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

//go:embed properties.yaml
var propertiesYAML []byte

// Properties decodes and validates the embedded catalog.
func Properties() ([]models.Property, error) {
	return Decode(bytes.NewReader(propertiesYAML))
}

// Decode reads a YAML list of properties. Unknown fields, duplicate ids and
// records failing validation are rejected.
func Decode(r io.Reader) ([]models.Property, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var props []models.Property
	if err := dec.Decode(&props); err != nil {
		if err == io.EOF {
			return []models.Property{}, nil
		}
		return nil, fmt.Errorf("failed to decode seed catalog: %w", err)
	}

	seen := make(map[int64]bool, len(props))
	for i := range props {
		p := &props[i]
		if p.ID <= 0 {
			return nil, fmt.Errorf("seed entry %d: id must be positive", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("seed entry %d: duplicate id %d", i, p.ID)
		}
		seen[p.ID] = true
		if p.Status == "" {
			p.Status = models.ListingStatusActive
		}
		if p.Images == nil {
			p.Images = []string{}
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("seed property %d: %w", p.ID, err)
		}
	}
	return props, nil
}
