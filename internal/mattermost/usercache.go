package mattermost

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UserCache is an on-disk cache of user profiles keyed by id, so repeated
// lookups across command runs do not refetch.
type UserCache struct {
	path  string
	users map[string]User
}

// LoadUserCache reads the cache file at path. A missing file yields an
// empty cache, not an error.
func LoadUserCache(path string) (*UserCache, error) {
	uc := &UserCache{
		path:  path,
		users: make(map[string]User),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return uc, nil
	}
	if err != nil {
		return uc, fmt.Errorf("reading user cache: %w", err)
	}

	if err := json.Unmarshal(data, &uc.users); err != nil {
		// A corrupt cache is rebuilt from scratch rather than kept broken.
		uc.users = make(map[string]User)
		return uc, fmt.Errorf("parsing user cache: %w", err)
	}
	return uc, nil
}

// Get returns the cached profile for id.
func (uc *UserCache) Get(id string) (User, bool) {
	u, ok := uc.users[id]
	return u, ok
}

// Put stores a profile in the cache.
func (uc *UserCache) Put(u User) {
	if u.ID == "" {
		return
	}
	uc.users[u.ID] = u
}

// Len returns the number of cached profiles.
func (uc *UserCache) Len() int {
	return len(uc.users)
}

// Save writes the cache to disk, creating parent directories as needed.
func (uc *UserCache) Save() error {
	dir := filepath.Dir(uc.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(uc.users, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling user cache: %w", err)
	}

	if err := os.WriteFile(uc.path, data, 0644); err != nil {
		return fmt.Errorf("writing user cache: %w", err)
	}
	return nil
}

// UserGetter fetches a single user profile. *Client implements it.
type UserGetter interface {
	GetUser(ctx context.Context, userID string) (*User, error)
}

// UserDirectory resolves user profiles through the cache with API
// fallback. All lookups are best-effort: a failed fetch degrades to the
// bare user id rather than surfacing an error.
type UserDirectory struct {
	fetcher UserGetter
	cache   *UserCache
}

// NewUserDirectory creates a directory over the given fetcher and cache.
// A nil cache uses an in-memory one; a nil fetcher makes the directory
// cache-only, for commands that analyze a snapshot offline.
func NewUserDirectory(fetcher UserGetter, cache *UserCache) *UserDirectory {
	if cache == nil {
		cache = &UserCache{users: make(map[string]User)}
	}
	return &UserDirectory{fetcher: fetcher, cache: cache}
}

// Lookup returns the profile for id, consulting the cache first.
func (d *UserDirectory) Lookup(ctx context.Context, id string) (User, bool) {
	if id == "" {
		return User{}, false
	}
	if u, ok := d.cache.Get(id); ok {
		return u, true
	}
	if d.fetcher == nil {
		return User{}, false
	}

	u, err := d.fetcher.GetUser(ctx, id)
	if err != nil || u == nil {
		return User{}, false
	}
	d.cache.Put(*u)
	return *u, true
}

// DisplayName resolves id to the author display form: username, then
// email, then the id itself.
func (d *UserDirectory) DisplayName(ctx context.Context, id string) string {
	if u, ok := d.Lookup(ctx, id); ok {
		return u.DisplayName()
	}
	return id
}

// Identifier resolves id to the reaction listing form: email, then
// username, then the id itself.
func (d *UserDirectory) Identifier(ctx context.Context, id string) string {
	if u, ok := d.Lookup(ctx, id); ok {
		return u.Identifier()
	}
	return id
}
