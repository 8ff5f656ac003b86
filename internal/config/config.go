// Package config loads gauth's external configuration: tool settings,
// the scope profile table location, the per-user grants file, and the
// client credentials path with its environment override. All inputs are
// read-only and loaded once per run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"gauth/pkg/logging"
)

const (
	userConfigDir  = ".config/gauth"
	configFileName = "config.yaml"

	scopesFileName       = "scopes.yaml"
	usersFileName        = "users.yaml"
	clientSecretFileName = "client_secret.json"
	tokenDirName         = "tokens"
)

// EnvClientSecret overrides the client credentials file path.
const EnvClientSecret = "GAUTH_CLIENT_SECRET"

// Config is the top-level configuration structure for gauth. Relative
// paths are resolved against the config directory.
type Config struct {
	// ScopesFile is the YAML scope profile table (api -> profile -> scopes).
	ScopesFile string `yaml:"scopesFile,omitempty"`

	// UsersFile lists per-user API grants.
	UsersFile string `yaml:"usersFile,omitempty"`

	// ClientSecretFile is the provider-issued client credentials artifact.
	ClientSecretFile string `yaml:"clientSecretFile,omitempty"`

	// TokenDir is where credential records are cached.
	TokenDir string `yaml:"tokenDir,omitempty"`
}

// GetDefaultConfigPathOrPanic returns the per-user config directory.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}
	return filepath.Join(homeDir, userConfigDir)
}

// GetDefaultConfig returns the default configuration rooted at configPath.
func GetDefaultConfig(configPath string) Config {
	return Config{
		ScopesFile:       filepath.Join(configPath, scopesFileName),
		UsersFile:        filepath.Join(configPath, usersFileName),
		ClientSecretFile: filepath.Join(configPath, clientSecretFileName),
		TokenDir:         filepath.Join(configPath, tokenDirName),
	}
}

// LoadConfig loads configuration from the specified directory. A missing
// config.yaml is not an error; defaults apply. A malformed one is.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig(configPath)

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("Config", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	config.resolveRelative(configPath)
	logging.Info("Config", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// resolveRelative anchors relative file paths at the config directory.
func (c *Config) resolveRelative(configPath string) {
	for _, p := range []*string{&c.ScopesFile, &c.UsersFile, &c.ClientSecretFile, &c.TokenDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configPath, *p)
		}
	}
}

// ResolveClientSecret picks the client credentials path: an explicit flag
// value wins, then the environment override, then the configured default.
// Existence is not checked here; the consent launcher reports a missing
// file as a typed, user-actionable error.
func (c Config) ResolveClientSecret(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvClientSecret); env != "" {
		return env
	}
	return c.ClientSecretFile
}
