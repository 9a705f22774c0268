package analysis

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Theme is one entry of the closed theme enumeration.
type Theme struct {
	Key      string   `yaml:"key"`
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// ThemeCatalog holds the allowed themes; analysis output may only use
// keys from here.
type ThemeCatalog struct {
	Themes []Theme `yaml:"themes"`
	keys   map[string]struct{}
}

// LoadThemes reads the theme catalog file.
func LoadThemes(path string) (*ThemeCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "analysis: read theme catalog %s", path)
	}

	var cat ThemeCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, eris.Wrapf(err, "analysis: parse theme catalog %s", path)
	}
	if len(cat.Themes) == 0 {
		return nil, eris.Errorf("analysis: theme catalog %s is empty", path)
	}

	cat.keys = make(map[string]struct{}, len(cat.Themes))
	for _, th := range cat.Themes {
		cat.keys[th.Key] = struct{}{}
	}
	return &cat, nil
}

// Allowed reports whether key is in the enumeration.
func (c *ThemeCatalog) Allowed(key string) bool {
	_, ok := c.keys[key]
	return ok
}
