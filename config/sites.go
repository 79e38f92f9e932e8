package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/menuhound/menuhound/models"
)

// sitesFile is the on-disk shape of the YAML site list.
type sitesFile struct {
	Sites []models.Site `yaml:"sites"`
}

// LoadSites reads and validates the YAML site list.
//
// Validation is strict on the fields the pipeline depends on (name, url,
// consent step types) so a typo in the config fails at startup rather than
// mid-batch.
func LoadSites(path string) ([]models.Site, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site list: %w", err)
	}

	var f sitesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse site list %s: %w", path, err)
	}
	if len(f.Sites) == 0 {
		return nil, fmt.Errorf("site list %s contains no sites", path)
	}

	seen := make(map[string]struct{}, len(f.Sites))
	for i, s := range f.Sites {
		if s.Name == "" {
			return nil, fmt.Errorf("site %d: missing name", i)
		}
		if s.URL == "" {
			return nil, fmt.Errorf("site %q: missing url", s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("site %q: duplicate name", s.Name)
		}
		seen[s.Name] = struct{}{}

		for j, step := range s.ConsentSteps {
			switch step.Type {
			case models.ConsentStepClick:
				if step.Selector == "" {
					return nil, fmt.Errorf("site %q: consent step %d: click requires a selector", s.Name, j)
				}
			case models.ConsentStepWait:
				if step.Selector == "" && step.Milliseconds <= 0 {
					return nil, fmt.Errorf("site %q: consent step %d: wait requires a selector or milliseconds", s.Name, j)
				}
			case models.ConsentStepScroll:
				// Pixels defaults to one viewport at execution time.
			default:
				return nil, fmt.Errorf("site %q: consent step %d: unknown type %q", s.Name, j, step.Type)
			}
		}
	}

	return f.Sites, nil
}
