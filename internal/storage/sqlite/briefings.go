// ABOUTME: Daily briefing and proactive alert persistence
// ABOUTME: Briefings upsert per (user, date); alerts dedupe on their key
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harper/cortex-standalone/internal/models"
)

// SaveBriefing upserts the cached briefing for (user, date)
func (l *Ledger) SaveBriefing(ctx context.Context, briefing *models.DailyBriefing) error {
	priorities, err := json.Marshal(briefing.TopPriorities)
	if err != nil {
		return fmt.Errorf("marshaling priorities: %w", err)
	}
	_, err = l.db.Exec(ctx, `
		INSERT INTO daily_briefings (user_id, briefing_date, generated_at, expires_at, priorities)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, briefing_date) DO UPDATE SET
			generated_at = excluded.generated_at,
			expires_at = excluded.expires_at,
			priorities = excluded.priorities
	`, briefing.UserID, briefing.BriefingDate, formatTime(briefing.GeneratedAt),
		formatTime(briefing.ExpiresAt), string(priorities))
	if err != nil {
		return fmt.Errorf("saving briefing: %w", err)
	}
	return nil
}

// GetBriefing loads the cached briefing for (user, date), nil on miss
func (l *Ledger) GetBriefing(ctx context.Context, userID, date string) (*models.DailyBriefing, error) {
	var (
		briefing               models.DailyBriefing
		generatedAt, expiresAt string
		priorities             string
	)
	err := l.db.QueryRow(ctx, `
		SELECT user_id, briefing_date, generated_at, expires_at, priorities
		FROM daily_briefings WHERE user_id = ? AND briefing_date = ?
	`, userID, date).Scan(&briefing.UserID, &briefing.BriefingDate,
		&generatedAt, &expiresAt, &priorities)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying briefing: %w", err)
	}
	briefing.GeneratedAt = parseTime(generatedAt)
	briefing.ExpiresAt = parseTime(expiresAt)
	if err := json.Unmarshal([]byte(priorities), &briefing.TopPriorities); err != nil {
		return nil, fmt.Errorf("decoding priorities: %w", err)
	}
	return &briefing, nil
}

// InsertAlert inserts an alert unless its dedupe key already exists.
// Returns whether a row was written.
func (l *Ledger) InsertAlert(ctx context.Context, alert *models.ProactiveAlert) (bool, error) {
	var payload sql.NullString
	if len(alert.Payload) > 0 {
		raw, err := json.Marshal(alert.Payload)
		if err != nil {
			return false, fmt.Errorf("marshaling alert payload: %w", err)
		}
		payload = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := l.db.Exec(ctx, `
		INSERT INTO proactive_alerts (id, user_id, kind, status, module, title, message, payload, expires_at, dedupe_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, alert.ID, alert.UserID, string(alert.Kind), string(alert.Status), string(alert.Module),
		alert.Title, alert.Message, payload, formatTime(alert.ExpiresAt),
		alert.DedupeKey, formatTime(alert.CreatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return false, nil
		}
		return false, fmt.Errorf("inserting alert: %w", err)
	}
	return true, nil
}

// PendingAlerts returns undelivered alerts for a user, oldest first
func (l *Ledger) PendingAlerts(ctx context.Context, userID string) ([]models.ProactiveAlert, error) {
	rows, err := l.db.Query(ctx, `
		SELECT id, user_id, kind, status, module, title, message, payload, expires_at, dedupe_key, created_at
		FROM proactive_alerts WHERE user_id = ? AND status = ? ORDER BY created_at
	`, userID, string(models.AlertPending))
	if err != nil {
		return nil, fmt.Errorf("querying pending alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.ProactiveAlert
	for rows.Next() {
		var (
			alert                models.ProactiveAlert
			payload              sql.NullString
			expiresAt, createdAt string
		)
		if err := rows.Scan(&alert.ID, &alert.UserID, &alert.Kind, &alert.Status, &alert.Module,
			&alert.Title, &alert.Message, &payload, &expiresAt, &alert.DedupeKey, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		if payload.Valid {
			if err := json.Unmarshal([]byte(payload.String), &alert.Payload); err != nil {
				return nil, fmt.Errorf("decoding alert payload: %w", err)
			}
		}
		alert.ExpiresAt = parseTime(expiresAt)
		alert.CreatedAt = parseTime(createdAt)
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// MarkAlertDelivered flips an alert to delivered; the transition is one-way
func (l *Ledger) MarkAlertDelivered(ctx context.Context, alertID string) error {
	_, err := l.db.Exec(ctx, `
		UPDATE proactive_alerts SET status = ? WHERE id = ? AND status = ?
	`, string(models.AlertDelivered), alertID, string(models.AlertPending))
	if err != nil {
		return fmt.Errorf("marking alert delivered: %w", err)
	}
	return nil
}
