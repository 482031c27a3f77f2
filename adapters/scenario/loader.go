// Package scenario loads workflow scenario definitions from YAML. Unknown
// fields are rejected so a typo in a parameter name fails loudly instead of
// silently sampling a zero.
package scenario

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"carepath/domain/carepath"
	"carepath/domain/core"
	"carepath/internal/errors"
)

// RunDefaults is the optional run block of a scenario file. Zero values
// defer to the application configuration.
type RunDefaults struct {
	SampleSize int    `yaml:"sample_size,omitempty"`
	Seed       int64  `yaml:"seed,omitempty"`
	OutputDir  string `yaml:"output_dir,omitempty"`
}

// File is the top-level YAML document: a list of named scenarios plus
// optional run defaults.
type File struct {
	Scenarios []*carepath.ScenarioConfig `yaml:"scenarios"`
	Run       RunDefaults                `yaml:"run,omitempty"`
}

// Load parses a scenario file from a reader and validates every scenario.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "scenario file is not valid YAML")
	}
	if len(f.Scenarios) == 0 {
		return nil, errors.ConfigInvalid("scenario file declares no scenarios")
	}
	if f.Run.SampleSize < 0 {
		return nil, errors.ConfigInvalidf("run.sample_size must be >= 0 (got %d)", f.Run.SampleSize)
	}

	seen := make(map[core.ScenarioName]bool, len(f.Scenarios))
	for _, cfg := range f.Scenarios {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if seen[cfg.Name] {
			return nil, errors.ConfigInvalidf("duplicate scenario name %q", cfg.Name)
		}
		seen[cfg.Name] = true
	}
	return &f, nil
}

// LoadFile reads and parses a scenario file from disk.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open scenario file %s", path)
	}
	defer fh.Close()
	return Load(fh)
}

// Resolve finds a scenario by name, checking the file first and falling back
// to the built-in bundles. The file may be nil.
func Resolve(f *File, name core.ScenarioName) (*carepath.ScenarioConfig, error) {
	if f != nil {
		for _, cfg := range f.Scenarios {
			if cfg.Name == name {
				return cfg, nil
			}
		}
	}
	if cfg, ok := carepath.BuiltinScenario(name); ok {
		return cfg, nil
	}
	return nil, errors.NotFound("scenario " + name.String())
}
