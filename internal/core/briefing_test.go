// ABOUTME: Tests for the briefing cache, priority precedence, and alert rules
// ABOUTME: Uses an in-memory fake of the briefing ledger surface
package core

import (
	"context"
	"testing"
	"time"

	"github.com/harper/cortex-standalone/internal/config"
	"github.com/harper/cortex-standalone/internal/models"
)

type fakeBriefingLedger struct {
	pending      []models.StoredHandshakeEvent
	tasks        []TaskDigest
	spendByMonth map[string]map[string]float64
	totalsByDay  map[string][2]float64
	daysQueried  []string

	briefings map[string]*models.DailyBriefing
	alerts    map[string]*models.ProactiveAlert
	saves     int
}

func newFakeBriefingLedger() *fakeBriefingLedger {
	return &fakeBriefingLedger{
		spendByMonth: map[string]map[string]float64{},
		totalsByDay:  map[string][2]float64{},
		briefings:    map[string]*models.DailyBriefing{},
		alerts:       map[string]*models.ProactiveAlert{},
	}
}

func (l *fakeBriefingLedger) PendingHandshakes(ctx context.Context, userID string) ([]models.StoredHandshakeEvent, error) {
	return l.pending, nil
}

func (l *fakeBriefingLedger) OpenTasks(ctx context.Context, userID string) ([]TaskDigest, error) {
	return l.tasks, nil
}

func (l *fakeBriefingLedger) MonthCategorySpend(ctx context.Context, userID, month string) (map[string]float64, error) {
	return l.spendByMonth[month], nil
}

func (l *fakeBriefingLedger) DayIncomeExpense(ctx context.Context, userID, date string) (float64, float64, error) {
	l.daysQueried = append(l.daysQueried, date)
	totals := l.totalsByDay[date]
	return totals[0], totals[1], nil
}

func (l *fakeBriefingLedger) SaveBriefing(ctx context.Context, briefing *models.DailyBriefing) error {
	l.saves++
	l.briefings[briefing.UserID+"|"+briefing.BriefingDate] = briefing
	return nil
}

func (l *fakeBriefingLedger) GetBriefing(ctx context.Context, userID, date string) (*models.DailyBriefing, error) {
	return l.briefings[userID+"|"+date], nil
}

func (l *fakeBriefingLedger) InsertAlert(ctx context.Context, alert *models.ProactiveAlert) (bool, error) {
	if _, exists := l.alerts[alert.DedupeKey]; exists {
		return false, nil
	}
	l.alerts[alert.DedupeKey] = alert
	return true, nil
}

func (l *fakeBriefingLedger) PendingAlerts(ctx context.Context, userID string) ([]models.ProactiveAlert, error) {
	var out []models.ProactiveAlert
	for _, alert := range l.alerts {
		if alert.Status == models.AlertPending {
			out = append(out, *alert)
		}
	}
	return out, nil
}

func (l *fakeBriefingLedger) MarkAlertDelivered(ctx context.Context, alertID string) error {
	for _, alert := range l.alerts {
		if alert.ID == alertID {
			alert.Status = models.AlertDelivered
		}
	}
	return nil
}

func fixedEngine(ledger *fakeBriefingLedger, at time.Time) *BriefingEngine {
	engine := NewBriefingEngine(ledger, config.Default())
	engine.now = func() time.Time { return at }
	return engine
}

func TestBriefing_PriorityPrecedence(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	overdue := now.Add(-48 * time.Hour)
	ledger := newFakeBriefingLedger()
	ledger.tasks = []TaskDigest{{Title: "Pagar renda", DueDate: &overdue, Status: models.HandshakeApproved}}
	ledger.pending = []models.StoredHandshakeEvent{{Module: models.ModuleFinance, Status: models.HandshakePendingConfirmation}}
	ledger.totalsByDay["2026-03-09"] = [2]float64{100, 900}

	briefing, err := fixedEngine(ledger, now).GetDailyBriefing(context.Background(), "u1", false)
	if err != nil {
		t.Fatalf("GetDailyBriefing failed: %v", err)
	}

	expected := []models.PriorityKind{
		models.PriorityOverdueTasks,
		models.PriorityPendingHandshakes,
		models.PrioritySpendingDelta,
	}
	if len(briefing.TopPriorities) != len(expected) {
		t.Fatalf("Expected %d priorities, got %d", len(expected), len(briefing.TopPriorities))
	}
	for i, kind := range expected {
		if briefing.TopPriorities[i].Kind != kind {
			t.Errorf("Priority %d: expected %s, got %s", i, kind, briefing.TopPriorities[i].Kind)
		}
	}
}

func TestBriefing_SpendingDeltaReadsYesterdayOnly(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger := newFakeBriefingLedger()
	ledger.totalsByDay["2026-03-09"] = [2]float64{0, 60}
	// Today's totals must not influence the briefing
	ledger.totalsByDay["2026-03-10"] = [2]float64{1200, 0}

	briefing, err := fixedEngine(ledger, now).GetDailyBriefing(context.Background(), "u1", false)
	if err != nil {
		t.Fatalf("GetDailyBriefing failed: %v", err)
	}

	if len(ledger.daysQueried) != 1 || ledger.daysQueried[0] != "2026-03-09" {
		t.Fatalf("Expected a single query for 2026-03-09, got %v", ledger.daysQueried)
	}
	if len(briefing.TopPriorities) != 1 || briefing.TopPriorities[0].Kind != models.PrioritySpendingDelta {
		t.Fatalf("Expected a spending delta priority, got %v", briefing.TopPriorities)
	}
}

func TestBriefing_BalancedYesterdayStaysQuiet(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger := newFakeBriefingLedger()
	ledger.totalsByDay["2026-03-09"] = [2]float64{500, 60}

	briefing, err := fixedEngine(ledger, now).GetDailyBriefing(context.Background(), "u1", false)
	if err != nil {
		t.Fatalf("GetDailyBriefing failed: %v", err)
	}
	if len(briefing.TopPriorities) != 1 || briefing.TopPriorities[0].Kind != models.PriorityStable {
		t.Errorf("Expected stable fallback when income covered the spend, got %v", briefing.TopPriorities)
	}
}

func TestBriefing_StableFallback(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	briefing, err := fixedEngine(newFakeBriefingLedger(), now).GetDailyBriefing(context.Background(), "u1", false)
	if err != nil {
		t.Fatalf("GetDailyBriefing failed: %v", err)
	}
	if len(briefing.TopPriorities) != 1 || briefing.TopPriorities[0].Kind != models.PriorityStable {
		t.Errorf("Expected stable fallback, got %v", briefing.TopPriorities)
	}
}

func TestBriefing_CacheHitSkipsRegeneration(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger := newFakeBriefingLedger()
	engine := fixedEngine(ledger, now)
	ctx := context.Background()

	if _, err := engine.GetDailyBriefing(ctx, "u1", false); err != nil {
		t.Fatalf("First briefing failed: %v", err)
	}
	if _, err := engine.GetDailyBriefing(ctx, "u1", false); err != nil {
		t.Fatalf("Second briefing failed: %v", err)
	}
	if ledger.saves != 1 {
		t.Errorf("Expected 1 save with warm cache, got %d", ledger.saves)
	}

	if _, err := engine.GetDailyBriefing(ctx, "u1", true); err != nil {
		t.Fatalf("Forced briefing failed: %v", err)
	}
	if ledger.saves != 2 {
		t.Errorf("Force should regenerate, got %d saves", ledger.saves)
	}
}

func TestBriefing_ExpiredCacheRegenerates(t *testing.T) {
	morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger := newFakeBriefingLedger()
	engine := fixedEngine(ledger, morning)
	ctx := context.Background()

	if _, err := engine.GetDailyBriefing(ctx, "u1", false); err != nil {
		t.Fatalf("Briefing failed: %v", err)
	}

	// Next day, same stored date key is gone; expiry also triggers
	engine.now = func() time.Time { return morning.Add(25 * time.Hour) }
	if _, err := engine.GetDailyBriefing(ctx, "u1", false); err != nil {
		t.Fatalf("Briefing failed: %v", err)
	}
	if ledger.saves != 2 {
		t.Errorf("Expected regeneration after expiry, got %d saves", ledger.saves)
	}
}

func TestAlerts_SpendSpikeFiresAtRatio(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger := newFakeBriefingLedger()
	ledger.spendByMonth["2026-03"] = map[string]float64{"Alimentação": 270, "Lazer": 40}
	ledger.spendByMonth["2026-02"] = map[string]float64{"Alimentação": 300, "Lazer": 100}

	inserted, err := fixedEngine(ledger, now).GenerateAlerts(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GenerateAlerts failed: %v", err)
	}

	// 270 >= 0.9*300 fires; 40 < 0.9*100 does not
	if inserted != 1 {
		t.Fatalf("Expected 1 alert, got %d", inserted)
	}
	key := models.AlertDedupeKey("u1", models.AlertCategorySpendSpike, "2026-03", "Alimentação")
	if _, ok := ledger.alerts[key]; !ok {
		t.Errorf("Expected alert under dedupe key %s", key)
	}
}

func TestAlerts_DedupeAcrossRuns(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger := newFakeBriefingLedger()
	ledger.spendByMonth["2026-03"] = map[string]float64{"Alimentação": 300}
	ledger.spendByMonth["2026-02"] = map[string]float64{"Alimentação": 300}
	engine := fixedEngine(ledger, now)
	ctx := context.Background()

	first, err := engine.GenerateAlerts(ctx, "u1")
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	second, err := engine.GenerateAlerts(ctx, "u1")
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if first != 1 || second != 0 {
		t.Errorf("Expected 1 then 0 inserts, got %d then %d", first, second)
	}
}

func TestAlerts_TaskDueSoonWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	within := now.Add(6 * time.Hour)
	beyond := now.Add(48 * time.Hour)
	past := now.Add(-2 * time.Hour)
	ledger := newFakeBriefingLedger()
	ledger.tasks = []TaskDigest{
		{Title: "Entregar relatório", DueDate: &within},
		{Title: "Renovar seguro", DueDate: &beyond},
		{Title: "Já passou", DueDate: &past},
		{Title: "Sem prazo"},
	}

	inserted, err := fixedEngine(ledger, now).GenerateAlerts(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GenerateAlerts failed: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("Expected only the 6h task to alert, got %d", inserted)
	}
}

func TestAlerts_ConsumeIsOneWay(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	within := now.Add(6 * time.Hour)
	ledger := newFakeBriefingLedger()
	ledger.tasks = []TaskDigest{{Title: "Entregar relatório", DueDate: &within}}
	engine := fixedEngine(ledger, now)
	ctx := context.Background()

	if _, err := engine.GenerateAlerts(ctx, "u1"); err != nil {
		t.Fatalf("GenerateAlerts failed: %v", err)
	}
	delivered, err := engine.ConsumeAlerts(ctx, "u1")
	if err != nil {
		t.Fatalf("ConsumeAlerts failed: %v", err)
	}
	if len(delivered) != 1 {
		t.Fatalf("Expected 1 delivered alert, got %d", len(delivered))
	}

	again, err := engine.ConsumeAlerts(ctx, "u1")
	if err != nil {
		t.Fatalf("Second consume failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("Delivered alerts must not reappear, got %d", len(again))
	}
}
