// ABOUTME: Audit ledger over SQLite, the system of record for every signal
// ABOUTME: Implements the router, resolver, and briefing storage surfaces
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/cortex-standalone/internal/core"
	"github.com/harper/cortex-standalone/internal/models"
)

// Ledger persists the routing audit trail. All writes are synchronous;
// the router treats failures here as fatal.
type Ledger struct {
	db *DB
}

// NewLedger creates a ledger over an open database
func NewLedger(db *DB) *Ledger {
	return &Ledger{db: db}
}

// LogRawInput appends one immutable raw signal row
func (l *Ledger) LogRawInput(ctx context.Context, env models.SignalEnvelope, normalizedText string) (*models.RawSignal, error) {
	signal := models.RawSignal{
		ID:             uuid.New().String(),
		UserID:         env.UserID,
		SignalType:     env.SignalType,
		Channel:        env.Channel,
		RawText:        env.RawText,
		NormalizedText: normalizedText,
		Metadata:       env.Metadata,
		CreatedAt:      time.Now().UTC(),
	}

	var metadata sql.NullString
	if len(env.Metadata) > 0 {
		raw, err := json.Marshal(env.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshaling signal metadata: %w", err)
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := l.db.Exec(ctx, `
		INSERT INTO raw_signals (id, user_id, signal_type, channel, raw_text, normalized_text, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, signal.ID, signal.UserID, string(signal.SignalType), string(signal.Channel),
		signal.RawText, signal.NormalizedText, metadata, formatTime(signal.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting raw signal: %w", err)
	}
	return &signal, nil
}

// LogOcrTrace attaches the receipt extraction to its signal
func (l *Ledger) LogOcrTrace(ctx context.Context, rawSignalID string, trace *models.OcrTrace) error {
	_, err := l.db.Exec(ctx, `
		INSERT INTO ocr_traces (raw_signal_id, merchant, amount, currency, confidence, raw_payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(raw_signal_id) DO UPDATE SET
			merchant = excluded.merchant,
			amount = excluded.amount,
			currency = excluded.currency,
			confidence = excluded.confidence,
			raw_payload = excluded.raw_payload
	`, rawSignalID, trace.Merchant, trace.Amount, trace.Currency,
		trace.Confidence, trace.RawPayload, formatTime(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("inserting ocr trace: %w", err)
	}
	return nil
}

// LogTaskDraft upserts the live draft for a signal, last write wins
func (l *Ledger) LogTaskDraft(ctx context.Context, rawSignalID, userID string, status models.HandshakeStatus, draft *models.ModuleDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshaling draft: %w", err)
	}

	var (
		title, priority, merchant, currency, category sql.NullString
		amount                                        sql.NullFloat64
		dueDate                                       sql.NullString
	)
	switch {
	case draft.Finance != nil:
		merchant = sql.NullString{String: draft.Finance.Merchant, Valid: true}
		amount = sql.NullFloat64{Float64: draft.Finance.Amount, Valid: true}
		currency = sql.NullString{String: draft.Finance.Currency, Valid: true}
		category = sql.NullString{String: draft.Finance.Category, Valid: true}
	case draft.Todo != nil:
		title = sql.NullString{String: draft.Todo.Title, Valid: true}
		priority = sql.NullString{String: draft.Todo.Priority, Valid: true}
		if draft.Todo.DueDate != nil {
			dueDate = sql.NullString{String: formatTime(*draft.Todo.DueDate), Valid: true}
		}
	}

	_, err = l.db.Exec(ctx, `
		INSERT INTO task_drafts (raw_signal_id, user_id, module, status, confidence, title, priority, merchant, amount, currency, category, due_date, draft_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(raw_signal_id) DO UPDATE SET
			module = excluded.module,
			status = excluded.status,
			confidence = excluded.confidence,
			title = excluded.title,
			priority = excluded.priority,
			merchant = excluded.merchant,
			amount = excluded.amount,
			currency = excluded.currency,
			category = excluded.category,
			due_date = excluded.due_date,
			draft_json = excluded.draft_json,
			updated_at = excluded.updated_at
	`, rawSignalID, userID, string(draft.Module), string(status), draft.Confidence,
		title, priority, merchant, amount, currency, category, dueDate,
		string(raw), formatTime(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("upserting task draft: %w", err)
	}
	return nil
}

// LogHandshake appends one handshake event and syncs the draft status
func (l *Ledger) LogHandshake(ctx context.Context, userID string, hs *models.Handshake) (*models.StoredHandshakeEvent, error) {
	event := models.StoredHandshakeEvent{
		ID:          uuid.New().String(),
		UserID:      userID,
		RawSignalID: hs.RawSignalID,
		Module:      hs.Module,
		Status:      hs.Status,
		Confidence:  hs.Confidence,
		Payload:     hs.Payload,
		CreatedAt:   time.Now().UTC(),
	}

	var payload sql.NullString
	if len(hs.Payload) > 0 {
		raw, err := json.Marshal(hs.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling handshake payload: %w", err)
		}
		payload = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := l.db.Exec(ctx, `
		INSERT INTO handshakes (id, user_id, raw_signal_id, module, status, confidence, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.UserID, event.RawSignalID, string(event.Module),
		string(event.Status), event.Confidence, payload, formatTime(event.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting handshake: %w", err)
	}

	// Keep the draft's status column in step with the latest event
	_, err = l.db.Exec(ctx, `
		UPDATE task_drafts SET status = ?, updated_at = ? WHERE raw_signal_id = ?
	`, string(event.Status), formatTime(event.CreatedAt), event.RawSignalID)
	if err != nil {
		return nil, fmt.Errorf("syncing draft status: %w", err)
	}

	return &event, nil
}

// GetRecentGroundTruth returns the bounded history window for retrieval
func (l *Ledger) GetRecentGroundTruth(ctx context.Context, userID string, limit int) (*core.LedgerSnapshot, error) {
	snapshot := &core.LedgerSnapshot{}

	rows, err := l.db.Query(ctx, `
		SELECT id, user_id, signal_type, channel, raw_text, normalized_text, created_at
		FROM raw_signals WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent signals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			signal    models.RawSignal
			createdAt string
		)
		if err := rows.Scan(&signal.ID, &signal.UserID, &signal.SignalType, &signal.Channel,
			&signal.RawText, &signal.NormalizedText, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning signal: %w", err)
		}
		signal.CreatedAt = parseTime(createdAt)
		snapshot.Signals = append(snapshot.Signals, signal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating signals: %w", err)
	}

	traceRows, err := l.db.Query(ctx, `
		SELECT t.raw_signal_id, t.merchant, t.amount, t.currency, t.confidence
		FROM ocr_traces t
		JOIN raw_signals s ON s.id = t.raw_signal_id
		WHERE s.user_id = ? ORDER BY t.created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ocr traces: %w", err)
	}
	defer traceRows.Close()
	for traceRows.Next() {
		var trace models.OcrTrace
		if err := traceRows.Scan(&trace.RawSignalID, &trace.Merchant, &trace.Amount,
			&trace.Currency, &trace.Confidence); err != nil {
			return nil, fmt.Errorf("scanning ocr trace: %w", err)
		}
		snapshot.OcrTraces = append(snapshot.OcrTraces, trace)
	}
	if err := traceRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ocr traces: %w", err)
	}

	handshakes, err := l.queryHandshakes(ctx, `
		SELECT id, user_id, raw_signal_id, module, status, confidence, payload, created_at
		FROM handshakes WHERE user_id = ? ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	snapshot.Handshakes = handshakes

	return snapshot, nil
}

// GetRawSignal loads one signal by ID, nil when absent
func (l *Ledger) GetRawSignal(ctx context.Context, rawSignalID string) (*models.RawSignal, error) {
	var (
		signal    models.RawSignal
		createdAt string
	)
	err := l.db.QueryRow(ctx, `
		SELECT id, user_id, signal_type, channel, raw_text, normalized_text, created_at
		FROM raw_signals WHERE id = ?
	`, rawSignalID).Scan(&signal.ID, &signal.UserID, &signal.SignalType, &signal.Channel,
		&signal.RawText, &signal.NormalizedText, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying raw signal: %w", err)
	}
	signal.CreatedAt = parseTime(createdAt)
	return &signal, nil
}

// LatestHandshake returns the newest handshake event for a signal
func (l *Ledger) LatestHandshake(ctx context.Context, rawSignalID string) (*models.StoredHandshakeEvent, error) {
	events, err := l.queryHandshakes(ctx, `
		SELECT id, user_id, raw_signal_id, module, status, confidence, payload, created_at
		FROM handshakes WHERE raw_signal_id = ? ORDER BY rowid DESC LIMIT ?
	`, rawSignalID, 1)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

// PendingHandshakes returns signals whose latest event still awaits the user
func (l *Ledger) PendingHandshakes(ctx context.Context, userID string) ([]models.StoredHandshakeEvent, error) {
	return l.queryHandshakes(ctx, `
		SELECT id, user_id, raw_signal_id, module, status, confidence, payload, created_at
		FROM handshakes
		WHERE rowid IN (SELECT MAX(rowid) FROM handshakes GROUP BY raw_signal_id)
		  AND user_id = ? AND status = ?
		ORDER BY created_at
	`, userID, string(models.HandshakePendingConfirmation))
}

func (l *Ledger) queryHandshakes(ctx context.Context, query string, args ...interface{}) ([]models.StoredHandshakeEvent, error) {
	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying handshakes: %w", err)
	}
	defer rows.Close()

	var events []models.StoredHandshakeEvent
	for rows.Next() {
		var (
			event     models.StoredHandshakeEvent
			payload   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&event.ID, &event.UserID, &event.RawSignalID, &event.Module,
			&event.Status, &event.Confidence, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning handshake: %w", err)
		}
		if payload.Valid {
			if err := json.Unmarshal([]byte(payload.String), &event.Payload); err != nil {
				return nil, fmt.Errorf("decoding handshake payload: %w", err)
			}
		}
		event.CreatedAt = parseTime(createdAt)
		events = append(events, event)
	}
	return events, rows.Err()
}

// timeLayout is the stored format; lexicographic order matches time order
const timeLayout = "2006-01-02 15:04:05.000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
