// Package feed collects candidate articles from the configured RSS and
// Atom sources.
package feed

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/eic-hr/eic/internal/model"
)

type catalogFile struct {
	Sources []model.Source `yaml:"sources"`
}

// LoadSources reads a source catalog file. Sources without a feed URL
// are rejected; an unset source type defaults to "other".
func LoadSources(path string) ([]model.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "feed: read source catalog %s", path)
	}

	var cat catalogFile
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, eris.Wrapf(err, "feed: parse source catalog %s", path)
	}

	for i := range cat.Sources {
		if cat.Sources[i].URL == "" {
			return nil, eris.Errorf("feed: source %q in %s has no url", cat.Sources[i].Key, path)
		}
		if cat.Sources[i].SourceType == "" {
			cat.Sources[i].SourceType = model.TypeOther
		}
		if cat.Sources[i].Language == "" {
			cat.Sources[i].Language = "unknown"
		}
	}

	return cat.Sources, nil
}
