package store

// Schema contains the complete DDL for the glossary tables.
const Schema = `
-- User-authored glossary entries: one row per term with its aliases and
-- sanitized definition HTML
CREATE TABLE IF NOT EXISTS entries (
    id              TEXT PRIMARY KEY,
    term            TEXT NOT NULL,
    aliases         TEXT NOT NULL DEFAULT '[]',
    definition_html TEXT NOT NULL DEFAULT '',
    category        TEXT NOT NULL DEFAULT '',
    link            TEXT NOT NULL DEFAULT '',
    enabled         INTEGER NOT NULL DEFAULT 1,
    scope           TEXT NOT NULL DEFAULT '{}',
    updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_term ON entries(term);
CREATE INDEX IF NOT EXISTS idx_entries_enabled ON entries(enabled);
CREATE INDEX IF NOT EXISTS idx_entries_updated ON entries(updated_at DESC);
`
