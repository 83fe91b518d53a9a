package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DataDirName is the per-user data directory under $HOME.
	DataDirName = ".mmpulse"
	// CacheDirName holds refetchable data under the data directory.
	CacheDirName = "cache"
	// UserCacheFile is the cached user-profile map.
	UserCacheFile = "users.json"
	// SessionDBFile is the channel snapshot database.
	SessionDBFile = "session.db"
)

// DataDir returns the local data directory (~/.mmpulse). Callers create
// it on first write.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, DataDirName), nil
}

// UserCachePath returns the path to the user-profile cache file.
func UserCachePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CacheDirName, UserCacheFile), nil
}

// SessionDBPath returns the path to the snapshot database.
func SessionDBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SessionDBFile), nil
}
