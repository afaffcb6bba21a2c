package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS notification_logs (
    user_address TEXT PRIMARY KEY,
    log BLOB NOT NULL
);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
