package database

import "testing"

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "no placeholders",
			query:    "SELECT id FROM study_sessions",
			expected: "SELECT id FROM study_sessions",
		},
		{
			name:     "single placeholder",
			query:    "SELECT id FROM study_sessions WHERE id = ?",
			expected: "SELECT id FROM study_sessions WHERE id = $1",
		},
		{
			name:     "multiple placeholders",
			query:    "INSERT INTO attempts (id, session_id, client_event_id) VALUES (?, ?, ?)",
			expected: "INSERT INTO attempts (id, session_id, client_event_id) VALUES ($1, $2, $3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewritePlaceholdersToNumbered(tt.query); got != tt.expected {
				t.Errorf("rewritePlaceholdersToNumbered() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDialectDriverNames(t *testing.T) {
	tests := []struct {
		dialect Dialect
		driver  string
		subdir  string
	}{
		{NewSQLiteDialect(), "sqlite3", "sqlite"},
		{NewPostgresDialect(), "postgres", "postgres"},
		{NewMySQLDialect(), "mysql", "mysql"},
	}

	for _, tt := range tests {
		if got := tt.dialect.DriverName(); got != tt.driver {
			t.Errorf("DriverName() = %q, want %q", got, tt.driver)
		}
		if got := tt.dialect.MigrationsSubdir(); got != tt.subdir {
			t.Errorf("MigrationsSubdir() = %q, want %q", got, tt.subdir)
		}
	}
}

func TestSQLitePassthroughRewrite(t *testing.T) {
	query := "UPDATE match_states SET version = version + 1 WHERE session_id = ?"
	if got := NewSQLiteDialect().RewriteQuery(query); got != query {
		t.Errorf("sqlite rewrite changed the query: %q", got)
	}
	if got := NewMySQLDialect().RewriteQuery(query); got != query {
		t.Errorf("mysql rewrite changed the query: %q", got)
	}
}
