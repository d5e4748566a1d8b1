package database

// Migration bookkeeping
const (
	createMigrationsTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			migration_name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`

	selectMigrationsSQL = `SELECT migration_name FROM schema_migrations`

	insertMigrationSQL = `INSERT INTO schema_migrations (migration_name) VALUES ($1)`
)

// Session queries
const (
	GetSessionSQL = `
		SELECT token, role, current_user_json, updated_at
		FROM client_sessions WHERE terminal_id = $1`

	UpsertSessionSQL = `
		INSERT INTO client_sessions (terminal_id, token, role, current_user_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (terminal_id) DO UPDATE SET
			token = EXCLUDED.token,
			role = EXCLUDED.role,
			current_user_json = EXCLUDED.current_user_json,
			updated_at = NOW()`

	DeleteSessionSQL = `DELETE FROM client_sessions WHERE terminal_id = $1`
)
