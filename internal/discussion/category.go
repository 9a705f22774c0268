package discussion

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

type categoryConfig struct {
	DailyDigestCategoryID string `json:"daily_digest_category_id"`
}

// LoadCategoryID reads the discussion category identifier from a JSON
// config file. An absent file is not an error; publication will fail
// later with a clear message if the ID is still empty.
func LoadCategoryID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", eris.Wrapf(err, "discussion: read category config %s", path)
	}

	var cfg categoryConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return "", eris.Wrapf(err, "discussion: parse category config %s", path)
	}
	return cfg.DailyDigestCategoryID, nil
}
