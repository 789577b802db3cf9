// ABOUTME: Daily briefing and proactive alert engine over the audit ledger
// ABOUTME: Briefings cache per user per day; alerts dedupe per rule period
package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/models"
)

// maxBriefingPriorities caps the daily summary length
const maxBriefingPriorities = 3

// TaskDigest is a task draft row as the briefing engine reads it back
type TaskDigest struct {
	RawSignalID string
	Title       string
	Priority    string
	DueDate     *time.Time
	Status      models.HandshakeStatus
}

// BriefingLedger is the read/write surface the briefing engine needs
type BriefingLedger interface {
	PendingHandshakes(ctx context.Context, userID string) ([]models.StoredHandshakeEvent, error)
	OpenTasks(ctx context.Context, userID string) ([]TaskDigest, error)
	MonthCategorySpend(ctx context.Context, userID, month string) (map[string]float64, error)
	DayIncomeExpense(ctx context.Context, userID, date string) (income, expense float64, err error)
	SaveBriefing(ctx context.Context, briefing *models.DailyBriefing) error
	GetBriefing(ctx context.Context, userID, date string) (*models.DailyBriefing, error)
	InsertAlert(ctx context.Context, alert *models.ProactiveAlert) (bool, error)
	PendingAlerts(ctx context.Context, userID string) ([]models.ProactiveAlert, error)
	MarkAlertDelivered(ctx context.Context, alertID string) error
}

// BriefingEngine produces the morning summary and the proactive alert rules
type BriefingEngine struct {
	ledger BriefingLedger
	cfg    *config.Config
	now    func() time.Time
}

// NewBriefingEngine wires the engine against the ledger
func NewBriefingEngine(ledger BriefingLedger, cfg *config.Config) *BriefingEngine {
	return &BriefingEngine{ledger: ledger, cfg: cfg, now: time.Now}
}

// GetDailyBriefing returns the cached briefing for today, regenerating on
// expiry, cache miss, or force.
func (e *BriefingEngine) GetDailyBriefing(ctx context.Context, userID string, force bool) (*models.DailyBriefing, error) {
	now := e.now()
	date := now.Format("2006-01-02")

	if !force {
		cached, err := e.ledger.GetBriefing(ctx, userID, date)
		if err == nil && cached != nil && !cached.Expired(now) {
			return cached, nil
		}
	}

	briefing, err := e.generate(ctx, userID, now, date)
	if err != nil {
		return nil, err
	}
	if err := e.ledger.SaveBriefing(ctx, briefing); err != nil {
		return nil, fmt.Errorf("saving briefing: %w", err)
	}
	return briefing, nil
}

// generate builds the priority list in fixed precedence: overdue tasks,
// then pending handshakes, then yesterday's spending delta, else stable.
func (e *BriefingEngine) generate(ctx context.Context, userID string, now time.Time, date string) (*models.DailyBriefing, error) {
	var priorities []models.BriefingPriority

	tasks, err := e.ledger.OpenTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading open tasks: %w", err)
	}
	var overdue []TaskDigest
	for _, task := range tasks {
		if task.DueDate != nil && task.DueDate.Before(now) {
			overdue = append(overdue, task)
		}
	}
	if len(overdue) > 0 {
		sort.Slice(overdue, func(i, j int) bool { return overdue[i].DueDate.Before(*overdue[j].DueDate) })
		priorities = append(priorities, models.BriefingPriority{
			Kind:   models.PriorityOverdueTasks,
			Title:  fmt.Sprintf("%d tarefa(s) em atraso", len(overdue)),
			Detail: fmt.Sprintf("Mais antiga: %s", overdue[0].Title),
		})
	}

	pending, err := e.ledger.PendingHandshakes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading pending handshakes: %w", err)
	}
	if len(pending) > 0 {
		priorities = append(priorities, models.BriefingPriority{
			Kind:   models.PriorityPendingHandshakes,
			Title:  fmt.Sprintf("%d ação(ões) aguardando confirmação", len(pending)),
			Detail: fmt.Sprintf("Mais recente: %s", pending[len(pending)-1].Module),
		})
	}

	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	income, expense, err := e.ledger.DayIncomeExpense(ctx, userID, yesterday)
	if err != nil {
		return nil, fmt.Errorf("loading yesterday's totals: %w", err)
	}
	if expense > 0 && expense > income {
		priorities = append(priorities, models.BriefingPriority{
			Kind:   models.PrioritySpendingDelta,
			Title:  "Despesas de ontem acima do rendimento",
			Detail: fmt.Sprintf("%.2f gastos vs %.2f recebidos ontem", expense, income),
		})
	}

	if len(priorities) == 0 {
		priorities = append(priorities, models.BriefingPriority{
			Kind:  models.PriorityStable,
			Title: "Tudo em ordem",
		})
	}
	if len(priorities) > maxBriefingPriorities {
		priorities = priorities[:maxBriefingPriorities]
	}

	return &models.DailyBriefing{
		UserID:        userID,
		BriefingDate:  date,
		GeneratedAt:   now,
		ExpiresAt:     endOfDay(now),
		TopPriorities: priorities,
	}, nil
}

// GenerateAlerts runs the proactive rules and inserts new alerts, skipping
// any whose dedupe key already exists. Returns the count inserted.
func (e *BriefingEngine) GenerateAlerts(ctx context.Context, userID string) (int, error) {
	now := e.now()
	inserted := 0

	count, err := e.spendSpikeAlerts(ctx, userID, now)
	if err != nil {
		return inserted, err
	}
	inserted += count

	count, err = e.dueSoonAlerts(ctx, userID, now)
	if err != nil {
		return inserted, err
	}
	inserted += count

	return inserted, nil
}

func (e *BriefingEngine) spendSpikeAlerts(ctx context.Context, userID string, now time.Time) (int, error) {
	month := now.Format("2006-01")
	previous := now.AddDate(0, -1, 0).Format("2006-01")

	current, err := e.ledger.MonthCategorySpend(ctx, userID, month)
	if err != nil {
		return 0, fmt.Errorf("loading current month spend: %w", err)
	}
	baseline, err := e.ledger.MonthCategorySpend(ctx, userID, previous)
	if err != nil {
		return 0, fmt.Errorf("loading baseline spend: %w", err)
	}

	inserted := 0
	for category, spent := range current {
		prior, ok := baseline[category]
		if !ok || prior <= 0 {
			continue
		}
		if spent < prior*e.cfg.SpendAlertRatio {
			continue
		}
		alert := &models.ProactiveAlert{
			ID:     uuid.New().String(),
			UserID: userID,
			Kind:   models.AlertCategorySpendSpike,
			Status: models.AlertPending,
			Module: models.ModuleFinance,
			Title:  fmt.Sprintf("Gastos em %s perto do mês anterior", category),
			Message: fmt.Sprintf("Você já gastou %.2f em %s este mês (mês passado: %.2f).",
				spent, category, prior),
			Payload: map[string]interface{}{
				"category": category,
				"spent":    spent,
				"baseline": prior,
			},
			ExpiresAt: endOfMonth(now),
			DedupeKey: models.AlertDedupeKey(userID, models.AlertCategorySpendSpike, month, category),
			CreatedAt: now,
		}
		ok, err := e.ledger.InsertAlert(ctx, alert)
		if err != nil {
			return inserted, fmt.Errorf("inserting spend alert: %w", err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

func (e *BriefingEngine) dueSoonAlerts(ctx context.Context, userID string, now time.Time) (int, error) {
	tasks, err := e.ledger.OpenTasks(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("loading open tasks: %w", err)
	}

	deadline := now.Add(e.cfg.DueSoonWindow)
	inserted := 0
	for _, task := range tasks {
		if task.DueDate == nil || task.DueDate.After(deadline) || task.DueDate.Before(now) {
			continue
		}
		alert := &models.ProactiveAlert{
			ID:      uuid.New().String(),
			UserID:  userID,
			Kind:    models.AlertTaskDueSoon,
			Status:  models.AlertPending,
			Module:  models.ModuleTodo,
			Title:   fmt.Sprintf("Tarefa vence em breve: %s", task.Title),
			Message: fmt.Sprintf("%q vence em %s.", task.Title, task.DueDate.Format("02/01 15:04")),
			Payload: map[string]interface{}{
				"raw_signal_id": task.RawSignalID,
				"due_date":      task.DueDate.Format(time.RFC3339),
			},
			ExpiresAt: *task.DueDate,
			DedupeKey: models.AlertDedupeKey(userID, models.AlertTaskDueSoon,
				task.DueDate.Format("2006-01-02"), task.Title),
			CreatedAt: now,
		}
		ok, err := e.ledger.InsertAlert(ctx, alert)
		if err != nil {
			return inserted, fmt.Errorf("inserting due-soon alert: %w", err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

// ConsumeAlerts returns pending alerts and marks them delivered.
// Delivery is one-way; redelivery never happens.
func (e *BriefingEngine) ConsumeAlerts(ctx context.Context, userID string) ([]models.ProactiveAlert, error) {
	alerts, err := e.ledger.PendingAlerts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading pending alerts: %w", err)
	}
	for _, alert := range alerts {
		if err := e.ledger.MarkAlertDelivered(ctx, alert.ID); err != nil {
			return nil, fmt.Errorf("marking alert %s delivered: %w", alert.ID, err)
		}
	}
	return alerts, nil
}

func endOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
}

func endOfMonth(now time.Time) time.Time {
	firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	return firstOfNext.Add(-time.Second)
}
