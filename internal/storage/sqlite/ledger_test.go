// ABOUTME: Tests for the SQLite audit ledger using in-memory databases
// ABOUTME: Covers signals, drafts, handshakes, analytics, briefings, and alerts
package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harper/cortex-standalone/internal/models"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewLedger(db)
}

func logSignal(t *testing.T, ledger *Ledger, userID, text string) *models.RawSignal {
	t.Helper()
	signal, err := ledger.LogRawInput(context.Background(), models.SignalEnvelope{
		UserID: userID, SignalType: models.SignalTypeText, Channel: models.ChannelChat,
		RawText: text,
	}, text)
	if err != nil {
		t.Fatalf("LogRawInput failed: %v", err)
	}
	return signal
}

func TestLogRawInput_RoundTrip(t *testing.T) {
	ledger := testLedger(t)
	signal := logSignal(t, ledger, "u1", "continente 45 euros")

	loaded, err := ledger.GetRawSignal(context.Background(), signal.ID)
	if err != nil {
		t.Fatalf("GetRawSignal failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected signal, got nil")
	}
	if loaded.NormalizedText != "continente 45 euros" {
		t.Errorf("Expected normalized text preserved, got %q", loaded.NormalizedText)
	}
	if loaded.CreatedAt.IsZero() {
		t.Error("Expected created_at round-tripped")
	}
}

func TestGetRawSignal_MissingReturnsNil(t *testing.T) {
	ledger := testLedger(t)
	loaded, err := ledger.GetRawSignal(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetRawSignal failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil for missing signal, got %+v", loaded)
	}
}

func TestLogOcrTrace_LinksToSignal(t *testing.T) {
	ledger := testLedger(t)
	ctx := context.Background()
	signal := logSignal(t, ledger, "u1", "continente total 45.00")

	err := ledger.LogOcrTrace(ctx, signal.ID, &models.OcrTrace{
		Merchant: "Continente", Amount: 45, Currency: "EUR", Confidence: 0.93,
	})
	if err != nil {
		t.Fatalf("LogOcrTrace failed: %v", err)
	}

	snapshot, err := ledger.GetRecentGroundTruth(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("GetRecentGroundTruth failed: %v", err)
	}
	if len(snapshot.OcrTraces) != 1 {
		t.Fatalf("Expected 1 trace in snapshot, got %d", len(snapshot.OcrTraces))
	}
	if snapshot.OcrTraces[0].RawSignalID != signal.ID {
		t.Errorf("Trace not linked: %s vs %s", snapshot.OcrTraces[0].RawSignalID, signal.ID)
	}
}

func TestLogTaskDraft_LastWriteWins(t *testing.T) {
	ledger := testLedger(t)
	ctx := context.Background()
	signal := logSignal(t, ledger, "u1", "cria uma tarefa pagar renda amanha")

	due := time.Date(2026, 3, 11, 23, 59, 59, 0, time.UTC)
	first := &models.ModuleDraft{
		Module: models.ModuleTodo, Confidence: 0.5,
		Todo: &models.TodoDraft{Title: "pagar renda", Priority: "normal"},
	}
	second := &models.ModuleDraft{
		Module: models.ModuleTodo, Confidence: 0.8,
		Todo: &models.TodoDraft{Title: "Pagar renda", Priority: "high", DueDate: &due},
	}

	if err := ledger.LogTaskDraft(ctx, signal.ID, "u1", models.HandshakeClarifying, first); err != nil {
		t.Fatalf("First draft failed: %v", err)
	}
	if err := ledger.LogTaskDraft(ctx, signal.ID, "u1", models.HandshakePendingConfirmation, second); err != nil {
		t.Fatalf("Second draft failed: %v", err)
	}

	tasks, err := ledger.OpenTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("OpenTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 live draft per signal, got %d", len(tasks))
	}
	if tasks[0].Title != "Pagar renda" || tasks[0].Priority != "high" {
		t.Errorf("Expected latest draft fields, got %+v", tasks[0])
	}
	if tasks[0].DueDate == nil || !tasks[0].DueDate.Equal(due) {
		t.Errorf("Expected due date preserved, got %v", tasks[0].DueDate)
	}
}

func TestLogHandshake_SyncsDraftStatus(t *testing.T) {
	ledger := testLedger(t)
	ctx := context.Background()
	signal := logSignal(t, ledger, "u1", "cria uma tarefa pagar renda")

	draft := &models.ModuleDraft{
		Module: models.ModuleTodo, Confidence: 0.8,
		Todo: &models.TodoDraft{Title: "Pagar renda", Priority: "normal"},
	}
	if err := ledger.LogTaskDraft(ctx, signal.ID, "u1", models.HandshakePendingConfirmation, draft); err != nil {
		t.Fatalf("LogTaskDraft failed: %v", err)
	}
	if _, err := ledger.LogHandshake(ctx, "u1", &models.Handshake{
		RawSignalID: signal.ID, Module: models.ModuleTodo,
		Status: models.HandshakeRejected, Confidence: 0.8,
	}); err != nil {
		t.Fatalf("LogHandshake failed: %v", err)
	}

	tasks, err := ledger.OpenTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("OpenTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Rejected draft must leave open tasks, got %d", len(tasks))
	}
}

func TestLatestHandshake_AppendOnlyOrdering(t *testing.T) {
	ledger := testLedger(t)
	ctx := context.Background()
	signal := logSignal(t, ledger, "u1", "continente 45 euros")

	statuses := []models.HandshakeStatus{
		models.HandshakePendingConfirmation,
		models.HandshakeApproved,
	}
	for _, status := range statuses {
		if _, err := ledger.LogHandshake(ctx, "u1", &models.Handshake{
			RawSignalID: signal.ID, Module: models.ModuleFinance, Status: status, Confidence: 0.8,
			Payload: map[string]interface{}{"module": "finance"},
		}); err != nil {
			t.Fatalf("LogHandshake(%s) failed: %v", status, err)
		}
	}

	latest, err := ledger.LatestHandshake(ctx, signal.ID)
	if err != nil {
		t.Fatalf("LatestHandshake failed: %v", err)
	}
	if latest == nil || latest.Status != models.HandshakeApproved {
		t.Errorf("Expected latest row approved, got %+v", latest)
	}

	pending, err := ledger.PendingHandshakes(ctx, "u1")
	if err != nil {
		t.Fatalf("PendingHandshakes failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Approved signal must not appear pending, got %d", len(pending))
	}
}

func TestAggregates_SeparateIncomeFromSpend(t *testing.T) {
	ledger := testLedger(t)
	ctx := context.Background()
	march := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	february := time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)

	actions := []models.CommittedAction{
		{Module: models.ModuleFinance, Merchant: "Continente", Amount: 45, Category: "Alimentação", CreatedAt: march},
		{Module: models.ModuleFinance, Merchant: "Continente", Amount: 30, Category: "Alimentação", CreatedAt: march},
		{Module: models.ModuleFinance, Merchant: "Empresa", Amount: 1200, Category: models.IncomeCategory, CreatedAt: march},
		{Module: models.ModuleFinance, Merchant: "Farmácia", Amount: 20, Category: "Saúde", CreatedAt: february},
	}
	for i := range actions {
		actions[i].ID = uuid.New().String()
		actions[i].UserID = "u1"
		actions[i].Currency = "EUR"
		if err := ledger.InsertCommittedAction(ctx, &actions[i]); err != nil {
			t.Fatalf("InsertCommittedAction failed: %v", err)
		}
	}

	spend, err := ledger.MonthCategorySpend(ctx, "u1", "2026-03")
	if err != nil {
		t.Fatalf("MonthCategorySpend failed: %v", err)
	}
	if spend["Alimentação"] != 75 {
		t.Errorf("Expected 75 in Alimentação, got %.2f", spend["Alimentação"])
	}
	if _, ok := spend[models.IncomeCategory]; ok {
		t.Error("Income must not appear in category spend")
	}
	if _, ok := spend["Saúde"]; ok {
		t.Error("February spend must not leak into March")
	}

	income, expense, err := ledger.DayIncomeExpense(ctx, "u1", "2026-03-05")
	if err != nil {
		t.Fatalf("DayIncomeExpense failed: %v", err)
	}
	if income != 1200 || expense != 75 {
		t.Errorf("Expected income 1200 / expense 75, got %.2f / %.2f", income, expense)
	}

	income, expense, err = ledger.DayIncomeExpense(ctx, "u1", "2026-03-06")
	if err != nil {
		t.Fatalf("DayIncomeExpense failed: %v", err)
	}
	if income != 0 || expense != 0 {
		t.Errorf("Expected empty day to total zero, got %.2f / %.2f", income, expense)
	}
}

func TestBriefing_SaveAndReload(t *testing.T) {
	ledger := testLedger(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	briefing := &models.DailyBriefing{
		UserID: "u1", BriefingDate: "2026-03-10",
		GeneratedAt: now, ExpiresAt: now.Add(15 * time.Hour),
		TopPriorities: []models.BriefingPriority{
			{Kind: models.PriorityStable, Title: "Tudo em ordem"},
		},
	}
	if err := ledger.SaveBriefing(ctx, briefing); err != nil {
		t.Fatalf("SaveBriefing failed: %v", err)
	}

	loaded, err := ledger.GetBriefing(ctx, "u1", "2026-03-10")
	if err != nil {
		t.Fatalf("GetBriefing failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected briefing, got nil")
	}
	if len(loaded.TopPriorities) != 1 || loaded.TopPriorities[0].Kind != models.PriorityStable {
		t.Errorf("Priorities not round-tripped: %+v", loaded.TopPriorities)
	}
	if loaded.Expired(now) {
		t.Error("Fresh briefing must not be expired")
	}
	if !loaded.Expired(now.Add(16 * time.Hour)) {
		t.Error("Briefing must expire after expires_at")
	}
}

func TestInsertAlert_DedupeKey(t *testing.T) {
	ledger := testLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	alert := func() *models.ProactiveAlert {
		return &models.ProactiveAlert{
			ID: uuid.New().String(), UserID: "u1",
			Kind: models.AlertCategorySpendSpike, Status: models.AlertPending,
			Module: models.ModuleFinance, Title: "t", Message: "m",
			ExpiresAt: now.Add(time.Hour),
			DedupeKey: models.AlertDedupeKey("u1", models.AlertCategorySpendSpike, "2026-03", "Alimentação"),
			CreatedAt: now,
		}
	}

	inserted, err := ledger.InsertAlert(ctx, alert())
	if err != nil || !inserted {
		t.Fatalf("First insert: inserted=%v err=%v", inserted, err)
	}
	inserted, err = ledger.InsertAlert(ctx, alert())
	if err != nil {
		t.Fatalf("Duplicate insert errored: %v", err)
	}
	if inserted {
		t.Error("Duplicate dedupe key must not insert")
	}
}

func TestMarkAlertDelivered_OneWay(t *testing.T) {
	ledger := testLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	alert := &models.ProactiveAlert{
		ID: uuid.New().String(), UserID: "u1",
		Kind: models.AlertTaskDueSoon, Status: models.AlertPending,
		Module: models.ModuleTodo, Title: "t", Message: "m",
		ExpiresAt: now.Add(time.Hour),
		DedupeKey: models.AlertDedupeKey("u1", models.AlertTaskDueSoon, "2026-03-10", "t"),
		CreatedAt: now,
	}
	if _, err := ledger.InsertAlert(ctx, alert); err != nil {
		t.Fatalf("InsertAlert failed: %v", err)
	}
	if err := ledger.MarkAlertDelivered(ctx, alert.ID); err != nil {
		t.Fatalf("MarkAlertDelivered failed: %v", err)
	}

	pending, err := ledger.PendingAlerts(ctx, "u1")
	if err != nil {
		t.Fatalf("PendingAlerts failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Delivered alert must not be pending, got %d", len(pending))
	}
}
