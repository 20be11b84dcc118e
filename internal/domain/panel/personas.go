package panel

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var defaultPersonasYAML []byte

// Persona parameterizes one simulated consumer archetype. Description is
// what an LLM chooser sees; the numeric fields drive the heuristic chooser.
type Persona struct {
	Name             string             `yaml:"name"`
	Description      string             `yaml:"description"`
	PriceSensitivity float64            `yaml:"price_sensitivity"`
	BrandAffinity    map[string]float64 `yaml:"brand_affinity"`
	NoneThreshold    float64            `yaml:"none_threshold"`
}

type personaFile struct {
	Personas []Persona `yaml:"personas"`
}

// LoadPersonas reads persona definitions from the given YAML file, or the
// embedded defaults when path is empty.
func LoadPersonas(path string) ([]Persona, error) {
	data := defaultPersonasYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read personas file: %w", err)
		}
	}

	var file personaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse personas: %w", err)
	}
	if len(file.Personas) == 0 {
		return nil, errors.New("personas file defines no personas")
	}
	for i, p := range file.Personas {
		if p.Name == "" {
			return nil, fmt.Errorf("persona %d: name is required", i+1)
		}
	}
	return file.Personas, nil
}
