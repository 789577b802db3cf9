// ABOUTME: Ledger queries backing the briefing engine and proactive alerts
// ABOUTME: Open tasks, monthly spend aggregates, and daily income-vs-expense totals
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harper/cortex-standalone/internal/core"
	"github.com/harper/cortex-standalone/internal/models"
)

// OpenTasks returns todo drafts that are still actionable: proposed,
// confirmed, or auto-committed, but never rejected or clarifying.
func (l *Ledger) OpenTasks(ctx context.Context, userID string) ([]core.TaskDigest, error) {
	rows, err := l.db.Query(ctx, `
		SELECT raw_signal_id, title, priority, status, due_date
		FROM task_drafts
		WHERE user_id = ? AND module = ? AND status IN (?, ?, ?)
		ORDER BY due_date
	`, userID, string(models.ModuleTodo),
		string(models.HandshakePendingConfirmation),
		string(models.HandshakeApproved),
		string(models.HandshakeAutoCommitted))
	if err != nil {
		return nil, fmt.Errorf("querying open tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.TaskDigest
	for rows.Next() {
		var (
			task            core.TaskDigest
			title, priority sql.NullString
			dueDate         sql.NullString
		)
		if err := rows.Scan(&task.RawSignalID, &title, &priority, &task.Status, &dueDate); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		task.Title = title.String
		task.Priority = priority.String
		if dueDate.Valid {
			due := parseTime(dueDate.String)
			task.DueDate = &due
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// MonthCategorySpend sums committed finance spend per category for a
// month given as YYYY-MM. Income rows are excluded.
func (l *Ledger) MonthCategorySpend(ctx context.Context, userID, month string) (map[string]float64, error) {
	rows, err := l.db.Query(ctx, `
		SELECT category, SUM(amount)
		FROM committed_actions
		WHERE user_id = ? AND module = ? AND category != ?
		  AND substr(created_at, 1, 7) = ?
		GROUP BY category
	`, userID, string(models.ModuleFinance), models.IncomeCategory, month)
	if err != nil {
		return nil, fmt.Errorf("querying month spend: %w", err)
	}
	defer rows.Close()

	spend := make(map[string]float64)
	for rows.Next() {
		var (
			category sql.NullString
			total    float64
		)
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scanning spend row: %w", err)
		}
		if category.Valid && category.String != "" {
			spend[category.String] = total
		}
	}
	return spend, rows.Err()
}

// DayIncomeExpense returns committed income and expense totals for a
// single day given as YYYY-MM-DD
func (l *Ledger) DayIncomeExpense(ctx context.Context, userID, date string) (float64, float64, error) {
	var income, expense sql.NullFloat64
	err := l.db.QueryRow(ctx, `
		SELECT
			SUM(CASE WHEN category = ? THEN amount ELSE 0 END),
			SUM(CASE WHEN category != ? THEN amount ELSE 0 END)
		FROM committed_actions
		WHERE user_id = ? AND module = ? AND substr(created_at, 1, 10) = ?
	`, models.IncomeCategory, models.IncomeCategory,
		userID, string(models.ModuleFinance), date).Scan(&income, &expense)
	if err != nil {
		return 0, 0, fmt.Errorf("querying day totals: %w", err)
	}
	return income.Float64, expense.Float64, nil
}

// InsertCommittedAction records one executed action
func (l *Ledger) InsertCommittedAction(ctx context.Context, action *models.CommittedAction) error {
	createdAt := action.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := l.db.Exec(ctx, `
		INSERT INTO committed_actions (id, user_id, module, merchant, amount, currency, category, title, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, action.ID, action.UserID, string(action.Module), action.Merchant, action.Amount,
		action.Currency, action.Category, action.Title, action.Payload, formatTime(createdAt))
	if err != nil {
		return fmt.Errorf("inserting committed action: %w", err)
	}
	return nil
}

// PersistDeductions appends silent cross-domain inferences
func (l *Ledger) PersistDeductions(ctx context.Context, deductions []models.Deduction) error {
	for _, d := range deductions {
		_, err := l.db.Exec(ctx, `
			INSERT INTO deductions (id, user_id, source_module, target_module, summary, confidence, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, d.ID, d.UserID, string(d.SourceModule), string(d.TargetModule),
			d.Summary, d.Confidence, formatTime(time.Now().UTC()))
		if err != nil {
			return fmt.Errorf("inserting deduction: %w", err)
		}
	}
	return nil
}
