package cache

// schemaSQL defines the SQLite schema for the cache database.
// One row per fetched collection: students and assignments use an
// empty scope_id; submission collections use the assignment ID as
// scope_id so a partially fetched run keeps its completed assignments.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS collections (
    course_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    scope_id TEXT NOT NULL DEFAULT '',
    payload BLOB NOT NULL,
    fetched_at TEXT NOT NULL,
    PRIMARY KEY (course_id, kind, scope_id)
);

CREATE INDEX IF NOT EXISTS idx_collections_course ON collections(course_id);
`

// initSchema creates the database tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
