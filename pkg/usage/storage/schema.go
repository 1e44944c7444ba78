package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the usage database schema.
const Schema = `
CREATE TABLE IF NOT EXISTS usage_records (
    id TEXT PRIMARY KEY,
    recorded_at TIMESTAMP NOT NULL,
    fingerprint TEXT,
    provider TEXT NOT NULL,
    model TEXT,
    status TEXT NOT NULL,
    tokens_used INTEGER,
    response_time_ms INTEGER,
    cached BOOLEAN NOT NULL,
    scope TEXT,
    attempts INTEGER,
    error_message TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_recorded_at ON usage_records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_usage_provider ON usage_records(provider);
CREATE INDEX IF NOT EXISTS idx_usage_model ON usage_records(model);
CREATE INDEX IF NOT EXISTS idx_usage_status ON usage_records(status);
CREATE INDEX IF NOT EXISTS idx_usage_scope ON usage_records(scope);
CREATE INDEX IF NOT EXISTS idx_usage_fingerprint ON usage_records(fingerprint);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
