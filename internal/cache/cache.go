// Package cache provides SQLite-backed caching of raw Canvas API
// collections. The cache is stored in .lateness/cache.db and keeps one
// entry per (course, resource kind, scope), where the scope is empty
// for students and assignments and is the assignment ID for per-
// assignment submission collections.
//
// Entries never expire; staleness is the caller's responsibility
// (see the cache clear command).
package cache

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Resource kinds stored in the cache.
const (
	KindStudents    = "students"
	KindAssignments = "assignments"
	KindSubmissions = "submissions"
)

// Cache manages the .lateness/cache.db SQLite database holding raw
// fetched collections.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database in the specified directory.
// It initializes the schema if the database is new.
func Open(dir string) (*Cache, error) {
	dbPath := filepath.Join(dir, "cache.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	cache := &Cache{db: db, dbPath: dbPath}

	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Read returns the cached payload for (courseID, kind, scopeID).
// A miss is not an error: it returns (nil, false, nil), signaling the
// caller must fetch from the network.
func (c *Cache) Read(courseID, kind, scopeID string) ([]byte, bool, error) {
	var payload []byte
	err := c.db.QueryRow(
		"SELECT payload FROM collections WHERE course_id = ? AND kind = ? AND scope_id = ?",
		courseID, kind, scopeID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	return payload, true, nil
}

// Write stores the payload for (courseID, kind, scopeID), replacing any
// existing entry. Last writer wins; the replace is atomic at the
// statement level, so readers never observe a partial entry.
func (c *Cache) Write(courseID, kind, scopeID string, payload []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO collections (course_id, kind, scope_id, payload, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(course_id, kind, scope_id)
		 DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		courseID, kind, scopeID, payload, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Clear removes all cached collections.
func (c *Cache) Clear() error {
	_, err := c.db.Exec("DELETE FROM collections")
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// ClearCourse removes all cached collections for one course.
func (c *Cache) ClearCourse(courseID string) error {
	_, err := c.db.Exec("DELETE FROM collections WHERE course_id = ?", courseID)
	if err != nil {
		return fmt.Errorf("clear course cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// DB returns the underlying database connection for advanced operations.
func (c *Cache) DB() *sql.DB {
	return c.db
}

// Stats holds cache entry counts per resource kind.
type Stats struct {
	Courses     int64
	Students    int64
	Assignments int64
	Submissions int64
}

// GetStats returns statistics about the cache contents. The submission
// count is the number of per-assignment entries, not submission records.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats

	err := c.db.QueryRow("SELECT COUNT(DISTINCT course_id) FROM collections").Scan(&stats.Courses)
	if err != nil {
		return nil, fmt.Errorf("count courses: %w", err)
	}

	rows, err := c.db.Query("SELECT kind, COUNT(*) FROM collections GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan entry count: %w", err)
		}
		switch kind {
		case KindStudents:
			stats.Students = count
		case KindAssignments:
			stats.Assignments = count
		case KindSubmissions:
			stats.Submissions = count
		}
	}
	return &stats, rows.Err()
}
