package consent

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// loadClientConfig reads a Google-style client_secret.json and builds the
// oauth2.Config for the requested scopes. Any failure to locate, read, or
// parse the file surfaces as *MissingClientCredentialsError so the caller
// can point the user at the required setup step.
func loadClientConfig(path string, scopes []string) (*oauth2.Config, error) {
	if path == "" {
		return nil, &MissingClientCredentialsError{
			Path: path,
			Err:  fmt.Errorf("no client credentials path configured"),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MissingClientCredentialsError{Path: path, Err: err}
	}

	conf, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, &MissingClientCredentialsError{
			Path: path,
			Err:  fmt.Errorf("not a valid client credentials file: %w", err),
		}
	}

	return conf, nil
}
