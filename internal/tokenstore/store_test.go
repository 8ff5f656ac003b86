package tokenstore

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(StoreConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	return store
}

func testRecord() *Record {
	return &Record{
		AccessToken:   "access-token",
		RefreshToken:  "refresh-token",
		TokenType:     "Bearer",
		GrantedScopes: []string{"scope-a", "scope-b"},
		Expiry:        time.Now().Add(1 * time.Hour).UTC().Truncate(time.Second),
		Identity:      "user@x.com",
		API:           "gmail",
		Profile:       "send",
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "user_at_x_dot_com__gmail__send", Key("user@x.com", "gmail", "send"))
}

func TestKey_DistinctTriples(t *testing.T) {
	triples := [][3]string{
		{"a@x.com", "gmail", "send"},
		{"a@x.com", "gmail", "read"},
		{"a@x.com", "youtube", "send"},
		{"b@x.com", "gmail", "send"},
		{"a@x.org", "gmail", "send"},
		{"a-x_com", "gmail", "send"},
	}

	seen := make(map[string][3]string)
	for _, triple := range triples {
		key := Key(triple[0], triple[1], triple[2])
		if prev, ok := seen[key]; ok {
			t.Errorf("triples %v and %v collide on key %q", prev, triple, key)
		}
		seen[key] = triple
	}
}

func TestNewStore_EmptyDir(t *testing.T) {
	_, err := NewStore(StoreConfig{})
	require.Error(t, err)
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tokens")
	_, err := NewStore(StoreConfig{Dir: dir})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	key := Key("user@x.com", "gmail", "send")
	rec := testRecord()

	require.NoError(t, store.Save(key, rec))

	loaded, err := store.Load(key)
	require.NoError(t, err)
	assert.Equal(t, rec.AccessToken, loaded.AccessToken)
	assert.Equal(t, rec.RefreshToken, loaded.RefreshToken)
	assert.Equal(t, rec.TokenType, loaded.TokenType)
	assert.Equal(t, rec.GrantedScopes, loaded.GrantedScopes)
	assert.True(t, rec.Expiry.Equal(loaded.Expiry))
	assert.Equal(t, rec.Identity, loaded.Identity)
	assert.Equal(t, rec.API, loaded.API)
	assert.Equal(t, rec.Profile, loaded.Profile)
	assert.True(t, rec.CreatedAt.Equal(loaded.CreatedAt))
}

func TestStore_LoadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("missing__gmail__send")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LoadCorrupt(t *testing.T) {
	store := newTestStore(t)
	key := "user_at_x_dot_com__gmail__send"
	require.NoError(t, os.WriteFile(store.Path(key), []byte("{not json"), 0o600))

	_, err := store.Load(key)
	var corrupt *CorruptRecordError
	require.ErrorAs(t, err, &corrupt)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestStore_LoadEmptyRecordIsCorrupt(t *testing.T) {
	store := newTestStore(t)
	key := "user_at_x_dot_com__gmail__send"
	require.NoError(t, os.WriteFile(store.Path(key), []byte("{}"), 0o600))

	_, err := store.Load(key)
	var corrupt *CorruptRecordError
	require.ErrorAs(t, err, &corrupt)
}

func TestStore_SavePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file permissions are not meaningful on windows")
	}

	store := newTestStore(t)
	key := Key("user@x.com", "gmail", "send")
	require.NoError(t, store.Save(key, testRecord()))

	info, err := os.Stat(store.Path(key))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	key := Key("user@x.com", "gmail", "send")
	require.NoError(t, store.Save(key, testRecord()))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, key+".json", entries[0].Name())
}

func TestStore_SaveReplacesWhole(t *testing.T) {
	store := newTestStore(t)
	key := Key("user@x.com", "gmail", "send")

	first := testRecord()
	require.NoError(t, store.Save(key, first))

	second := testRecord()
	second.AccessToken = "new-access-token"
	second.RefreshToken = ""
	second.GrantedScopes = []string{"scope-c"}
	require.NoError(t, store.Save(key, second))

	loaded, err := store.Load(key)
	require.NoError(t, err)
	assert.Equal(t, "new-access-token", loaded.AccessToken)
	assert.Empty(t, loaded.RefreshToken)
	assert.Equal(t, []string{"scope-c"}, loaded.GrantedScopes)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	key := Key("user@x.com", "gmail", "send")
	require.NoError(t, store.Save(key, testRecord()))

	require.NoError(t, store.Delete(key))

	_, err := store.Load(key)
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error.
	require.NoError(t, store.Delete(key))
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		rec := testRecord()
		rec.Identity = fmt.Sprintf("user%d@x.com", i)
		key := Key(rec.Identity, rec.API, rec.Profile)
		require.NoError(t, store.Save(key, rec))
	}

	// A corrupt file and a foreign file are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "broken__gmail__send.json"), []byte("oops"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "README.txt"), []byte("hi"), 0o600))

	records, err := store.List()
	require.NoError(t, err)
	assert.Len(t, records, 3)
	for key := range records {
		assert.False(t, strings.HasPrefix(key, "broken"))
	}
}
