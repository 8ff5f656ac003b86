package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UserGrant is one entry of the user grants file: an account identity and
// the profile it is granted per API.
//
//	- user: someone@example.com
//	  apis:
//	    gmail: send
//	    youtube: read
type UserGrant struct {
	User string            `yaml:"user"`
	APIs map[string]string `yaml:"apis"`
}

// LoadUserGrants reads the per-user grants list. The file is read-only
// input; a missing file is reported, not defaulted, because commands that
// need grants cannot do anything useful without them.
func LoadUserGrants(path string) ([]UserGrant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read user grants from %s: %w", path, err)
	}

	var grants []UserGrant
	if err := yaml.Unmarshal(data, &grants); err != nil {
		return nil, fmt.Errorf("failed to parse user grants from %s: %w", path, err)
	}

	return grants, nil
}
