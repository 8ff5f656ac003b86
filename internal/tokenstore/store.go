package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gauth/internal/identity"
)

// KeySeparator joins the normalized identity, API name, and profile name
// into a cache key. Normalized identities never contain '@' or '.', and
// API/profile names are embedded verbatim, so distinct triples produce
// distinct keys.
const KeySeparator = "__"

// File and directory permissions for stored credentials. Tokens are
// secrets: owner read/write only.
const (
	filePerms = 0o600
	dirPerms  = 0o700
)

// ErrNotFound is returned by Load when no credential is stored under the
// requested key.
var ErrNotFound = errors.New("no stored credential")

// CorruptRecordError reports a token file that exists but cannot be
// decoded. Callers treat this as a cache miss but should log the
// distinction: a corrupt file means something interfered with the store,
// not that the user never authenticated.
type CorruptRecordError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt credential record at %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}

// Key derives the cache key for an (identity, api, profile) triple:
//
//	normalize(identity) + "__" + api + "__" + profile
//
// The key doubles as the token filename (with a .json extension), so it is
// a stable on-disk contract.
func Key(account, api, profile string) string {
	return identity.Normalize(account) + KeySeparator + api + KeySeparator + profile
}

// Store persists credential records as one JSON file per cache key inside
// a dedicated directory.
//
// SECURITY: this store handles OAuth credentials. Files are created with
// 0600 permissions before any token bytes are written, the directory is
// created with 0700, and token values are never logged.
type Store struct {
	dir string
}

// StoreConfig configures the token store.
type StoreConfig struct {
	// Dir is the directory for token files. It is created (0700) if it
	// does not exist.
	Dir string
}

// NewStore creates a token store rooted at cfg.Dir.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("token store directory must not be empty")
	}
	if err := os.MkdirAll(cfg.Dir, dirPerms); err != nil {
		return nil, fmt.Errorf("failed to create token storage directory: %w", err)
	}
	return &Store{dir: cfg.Dir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the on-disk location for a cache key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load reads and decodes the record stored under key. Returns ErrNotFound
// when no file exists and *CorruptRecordError when a file exists but does
// not decode.
func (s *Store) Load(key string) (*Record, error) {
	path := s.Path(key)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &CorruptRecordError{Path: path, Err: err}
	}
	if rec.AccessToken == "" && rec.RefreshToken == "" {
		return nil, &CorruptRecordError{Path: path, Err: errors.New("record carries no tokens")}
	}

	return &rec, nil
}

// Save writes the record under key, atomically replacing any previous
// record. The write goes to a temp file in the same directory (chmod 0600
// before any bytes are written), is synced, and is then renamed over the
// final path, so a crash mid-write never leaves a half-written record and
// no other process ever observes the file with loose permissions.
func (s *Store) Save(key string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpPath := tmp.Name()

	// Clean up the temp file on any error path.
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(filePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict token file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	// Flush to stable storage before rename so a power loss cannot leave an
	// empty file at the final path.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close token file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path(key)); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	success = true
	return nil
}

// Delete removes the record stored under key. Deleting a key that has no
// record is not an error.
func (s *Store) Delete(key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// List returns every decodable record in the store along with its cache
// key. Corrupt or foreign files are skipped.
func (s *Store) List() (map[string]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read token directory: %w", err)
	}

	out := make(map[string]*Record)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		key := strings.TrimSuffix(entry.Name(), ".json")
		rec, err := s.Load(key)
		if err != nil {
			continue
		}
		out[key] = rec
	}

	return out, nil
}
