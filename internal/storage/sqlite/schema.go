// ABOUTME: SQLite schema for the audit ledger
// ABOUTME: Creates all tables and indexes for signals, drafts, handshakes, and alerts
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Raw signals table (immutable intake log)
CREATE TABLE IF NOT EXISTS raw_signals (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    signal_type TEXT NOT NULL,
    channel TEXT NOT NULL,
    raw_text TEXT NOT NULL,
    normalized_text TEXT NOT NULL,
    metadata TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- OCR traces table (1:1 receipt extractions)
CREATE TABLE IF NOT EXISTS ocr_traces (
    raw_signal_id TEXT PRIMARY KEY REFERENCES raw_signals(id) ON DELETE CASCADE,
    merchant TEXT,
    amount REAL,
    currency TEXT,
    confidence REAL,
    raw_payload TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Task drafts table (one live draft per signal, last write wins)
CREATE TABLE IF NOT EXISTS task_drafts (
    raw_signal_id TEXT PRIMARY KEY REFERENCES raw_signals(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    module TEXT NOT NULL,
    status TEXT NOT NULL,
    confidence REAL DEFAULT 0,
    title TEXT,
    priority TEXT,
    merchant TEXT,
    amount REAL,
    currency TEXT,
    category TEXT,
    due_date DATETIME,
    draft_json TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Handshakes table (append-only event log; latest row per signal wins)
CREATE TABLE IF NOT EXISTS handshakes (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    raw_signal_id TEXT NOT NULL,
    module TEXT NOT NULL,
    status TEXT NOT NULL,
    confidence REAL DEFAULT 0,
    payload TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Deductions table (silent cross-domain inferences)
CREATE TABLE IF NOT EXISTS deductions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    source_module TEXT NOT NULL,
    target_module TEXT NOT NULL,
    summary TEXT NOT NULL,
    confidence REAL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Committed actions table (executed drafts, flattened for analytics)
CREATE TABLE IF NOT EXISTS committed_actions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    module TEXT NOT NULL,
    merchant TEXT,
    amount REAL,
    currency TEXT,
    category TEXT,
    title TEXT,
    payload TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Daily briefings table (one cached summary per user per day)
CREATE TABLE IF NOT EXISTS daily_briefings (
    user_id TEXT NOT NULL,
    briefing_date TEXT NOT NULL,
    generated_at DATETIME NOT NULL,
    expires_at DATETIME NOT NULL,
    priorities TEXT NOT NULL,
    PRIMARY KEY (user_id, briefing_date)
);

-- Proactive alerts table (dedupe key prevents repeat rows per period)
CREATE TABLE IF NOT EXISTS proactive_alerts (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    module TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    payload TEXT,
    expires_at DATETIME,
    dedupe_key TEXT NOT NULL UNIQUE,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_signals_user ON raw_signals(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_drafts_user_status ON task_drafts(user_id, status);
CREATE INDEX IF NOT EXISTS idx_drafts_due ON task_drafts(user_id, due_date);
CREATE INDEX IF NOT EXISTS idx_handshakes_signal ON handshakes(raw_signal_id);
CREATE INDEX IF NOT EXISTS idx_handshakes_user_status ON handshakes(user_id, status);
CREATE INDEX IF NOT EXISTS idx_actions_user_month ON committed_actions(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_alerts_user_status ON proactive_alerts(user_id, status);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
