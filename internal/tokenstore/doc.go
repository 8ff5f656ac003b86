// Package tokenstore persists OAuth credential records, one JSON file per
// (identity, api, profile) cache key.
//
// # Key scheme
//
// Keys are derived as normalize(identity) + "__" + api + "__" + profile
// and double as filenames:
//
//	~/.config/gauth/tokens/user_at_x_dot_com__gmail__send.json
//
// The scheme is a stable contract shared with the identity normalizer;
// changing either orphans previously cached tokens.
//
// # Atomicity and permissions
//
// Saves are all-or-nothing: records are written to a temp file in the
// token directory, restricted to 0600 before any token bytes land on
// disk, synced, and renamed over the final path. A concurrent reader sees
// either the old record or the new one, never a torn write.
package tokenstore
