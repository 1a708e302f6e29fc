package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Classifications table - one row per recorded frame decision
		`CREATE TABLE IF NOT EXISTS classifications (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			source TEXT NOT NULL CHECK(source IN ('sentinel', 'learned', 'rules')),
			confidence REAL NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_classifications_created_at ON classifications(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_classifications_label ON classifications(label)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
