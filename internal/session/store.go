// Package session persists channel fetch snapshots between command
// runs. A snapshot is the raw post list of one fetch plus its metadata;
// stats are always recomputed from the posts, never stored.
package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mmpulse/internal/mattermost"
)

// Store wraps the snapshot database.
type Store struct {
	db *sql.DB
}

// Meta describes one saved channel fetch.
type Meta struct {
	ID          int64     `json:"id"`
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name,omitempty"`
	TeamName    string    `json:"team_name,omitempty"`
	ServerURL   string    `json:"server_url,omitempty"`
	StartMs     int64     `json:"start_ms"`
	EndMs       int64     `json:"end_ms"`
	Enriched    bool      `json:"enriched"`
	FetchedAt   time.Time `json:"fetched_at"`
	PostCount   int       `json:"post_count"`
}

// Open opens or creates the snapshot database at the given path,
// creating parent directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- One row per channel fetch
		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			channel_id TEXT NOT NULL,
			channel_name TEXT,
			team_name TEXT,
			server_url TEXT,
			start_ms INTEGER NOT NULL,
			end_ms INTEGER NOT NULL,
			enriched INTEGER NOT NULL DEFAULT 0,
			fetched_at INTEGER NOT NULL,
			post_count INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_channel ON snapshots(channel_id, id);

		-- Raw posts of a snapshot in fetch order
		CREATE TABLE IF NOT EXISTS snapshot_posts (
			snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			post_id TEXT NOT NULL,
			user_id TEXT,
			message TEXT,
			create_at INTEGER NOT NULL,
			root_id TEXT,
			type TEXT,
			reactions_json TEXT,
			PRIMARY KEY (snapshot_id, seq)
		);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveSnapshot stores one fetch as the channel's newest snapshot and
// returns the stored metadata with its assigned id. FetchedAt defaults
// to now; PostCount is always derived from posts.
func (s *Store) SaveSnapshot(meta Meta, posts []mattermost.Post) (*Meta, error) {
	if meta.ChannelID == "" {
		return nil, fmt.Errorf("snapshot requires a channel id")
	}
	if meta.FetchedAt.IsZero() {
		meta.FetchedAt = time.Now()
	}
	meta.PostCount = len(posts)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO snapshots (
			channel_id, channel_name, team_name, server_url,
			start_ms, end_ms, enriched, fetched_at, post_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, meta.ChannelID, nullableStringValue(meta.ChannelName),
		nullableStringValue(meta.TeamName), nullableStringValue(meta.ServerURL),
		meta.StartMs, meta.EndMs, meta.Enriched,
		meta.FetchedAt.UnixMilli(), meta.PostCount)
	if err != nil {
		return nil, fmt.Errorf("inserting snapshot: %w", err)
	}

	meta.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading snapshot id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO snapshot_posts (
			snapshot_id, seq, post_id, user_id, message,
			create_at, root_id, type, reactions_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing post insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range posts {
		var reactionsJSON []byte
		if len(p.Reactions) > 0 {
			reactionsJSON, err = json.Marshal(p.Reactions)
			if err != nil {
				return nil, fmt.Errorf("marshaling reactions for %s: %w", p.ID, err)
			}
		}

		_, err = stmt.Exec(
			meta.ID, i, p.ID, p.UserID, p.Message,
			p.CreateAt, nullableStringValue(p.RootID),
			nullableStringValue(p.Type), nullableString(reactionsJSON),
		)
		if err != nil {
			return nil, fmt.Errorf("inserting post %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing snapshot: %w", err)
	}

	return &meta, nil
}

const selectMetaFields = `id, channel_id, channel_name, team_name, server_url,
	start_ms, end_ms, enriched, fetched_at, post_count`

// LatestSnapshot returns the newest snapshot for a channel, or the
// newest overall when channelID is empty. Returns nil metadata (not an
// error) when no snapshot is stored.
func (s *Store) LatestSnapshot(channelID string) (*Meta, []mattermost.Post, error) {
	var row *sql.Row
	if channelID == "" {
		row = s.db.QueryRow(`SELECT ` + selectMetaFields + ` FROM snapshots ORDER BY id DESC LIMIT 1`)
	} else {
		row = s.db.QueryRow(`SELECT `+selectMetaFields+` FROM snapshots WHERE channel_id = ? ORDER BY id DESC LIMIT 1`, channelID)
	}

	meta, err := scanMeta(row)
	if err != nil {
		return nil, nil, err
	}
	if meta == nil {
		return nil, nil, nil
	}

	posts, err := s.snapshotPosts(meta.ID)
	if err != nil {
		return nil, nil, err
	}
	return meta, posts, nil
}

// Count returns the number of stored snapshots.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count)
	return count, err
}

func (s *Store) snapshotPosts(snapshotID int64) ([]mattermost.Post, error) {
	rows, err := s.db.Query(`
		SELECT post_id, user_id, message, create_at, root_id, type, reactions_json
		FROM snapshot_posts
		WHERE snapshot_id = ?
		ORDER BY seq
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot posts: %w", err)
	}
	defer rows.Close()

	var posts []mattermost.Post
	for rows.Next() {
		var p mattermost.Post
		var userID, message, rootID, postType, reactionsJSON sql.NullString

		if err := rows.Scan(&p.ID, &userID, &message, &p.CreateAt, &rootID, &postType, &reactionsJSON); err != nil {
			return nil, err
		}
		p.UserID = userID.String
		p.Message = message.String
		p.RootID = rootID.String
		p.Type = postType.String

		if reactionsJSON.Valid && reactionsJSON.String != "" {
			if err := json.Unmarshal([]byte(reactionsJSON.String), &p.Reactions); err != nil {
				return nil, fmt.Errorf("parsing reactions JSON for %s: %w", p.ID, err)
			}
		}

		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMeta(s scanner) (*Meta, error) {
	var meta Meta
	var channelName, teamName, serverURL sql.NullString
	var fetchedAtMs int64

	err := s.Scan(
		&meta.ID, &meta.ChannelID, &channelName, &teamName, &serverURL,
		&meta.StartMs, &meta.EndMs, &meta.Enriched, &fetchedAtMs, &meta.PostCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	meta.ChannelName = channelName.String
	meta.TeamName = teamName.String
	meta.ServerURL = serverURL.String
	meta.FetchedAt = time.UnixMilli(fetchedAtMs)

	return &meta, nil
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableString(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
