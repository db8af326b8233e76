package eventstore

import (
	"fmt"
	"testing"
	"time"
)

func appendEvent(t *testing.T, store Store, event Event) {
	t.Helper()
	if err := store.Append(t.Context(), event.BuildID(), event.Type(), event.Payload(), event.Metadata()); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}
}

func TestBuildHistoryProjection_ApplyEvents(t *testing.T) {
	projection := NewBuildHistoryProjection(nil, 10)

	startEvent, err := NewBuildStarted(testBuildID, BuildStartedMeta{Trigger: "webhook"})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	projection.Apply(startEvent)

	summary, exists := projection.GetBuild(testBuildID)
	if !exists {
		t.Fatal("expected build to be tracked")
	}
	if summary.Status != "running" {
		t.Errorf("expected status running, got %q", summary.Status)
	}
	if summary.Trigger != "webhook" {
		t.Errorf("expected trigger webhook, got %q", summary.Trigger)
	}

	syncEvent, err := NewSourceSynced(testBuildID, "abc1234", "main", false, true, 120*time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	projection.Apply(syncEvent)

	summary, _ = projection.GetBuild(testBuildID)
	if summary.Commit != "abc1234" {
		t.Errorf("expected commit abc1234, got %q", summary.Commit)
	}
	if summary.Branch != "main" {
		t.Errorf("expected branch main, got %q", summary.Branch)
	}

	discoverEvent, err := NewPagesDiscovered(testBuildID, 42, 7, 5)
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	projection.Apply(discoverEvent)

	summary, _ = projection.GetBuild(testBuildID)
	if summary.Pages != 42 || summary.Assets != 7 || summary.Sections != 5 {
		t.Errorf("expected counts 42/7/5, got %d/%d/%d", summary.Pages, summary.Assets, summary.Sections)
	}

	completeEvent, err := NewBuildCompleted(testBuildID, "success", 230*time.Millisecond, ReportData{Pages: 42, RenderedPages: 42})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	projection.Apply(completeEvent)

	summary, _ = projection.GetBuild(testBuildID)
	if summary.Status != "success" {
		t.Errorf("expected status success, got %q", summary.Status)
	}
	if summary.CompletedAt == nil {
		t.Error("expected completion time to be set")
	}
	if summary.Duration != 230*time.Millisecond {
		t.Errorf("expected duration 230ms, got %v", summary.Duration)
	}
	if summary.Report == nil || summary.Report.RenderedPages != 42 {
		t.Errorf("expected report with 42 rendered pages, got %+v", summary.Report)
	}

	history := projection.GetHistory()
	if len(history) != 1 {
		t.Fatalf("expected 1 build in history, got %d", len(history))
	}
	if history[0].BuildID != testBuildID {
		t.Errorf("expected %s in history, got %s", testBuildID, history[0].BuildID)
	}
}

func TestBuildHistoryProjection_BuildFailed(t *testing.T) {
	projection := NewBuildHistoryProjection(nil, 10)

	startEvent, err := NewBuildStarted(testBuildID, BuildStartedMeta{Trigger: "manual"})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	projection.Apply(startEvent)

	failEvent, err := NewBuildFailed(testBuildID, "render", "template parse error")
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	projection.Apply(failEvent)

	summary, exists := projection.GetBuild(testBuildID)
	if !exists {
		t.Fatal("expected build to be tracked")
	}
	if summary.Status != "failed" {
		t.Errorf("expected status failed, got %q", summary.Status)
	}
	if summary.ErrorStage != "render" {
		t.Errorf("expected error stage render, got %q", summary.ErrorStage)
	}
	if summary.ErrorMessage != "template parse error" {
		t.Errorf("expected error message, got %q", summary.ErrorMessage)
	}
	if len(projection.GetHistory()) != 1 {
		t.Error("expected failed build in history")
	}
}

func TestBuildHistoryProjection_WarningOutcome(t *testing.T) {
	projection := NewBuildHistoryProjection(nil, 10)

	completeEvent, err := NewBuildCompleted(testBuildID, "warning", 90*time.Millisecond, ReportData{BrokenLinks: 3, Outcome: "warning"})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	projection.Apply(completeEvent)

	summary, exists := projection.GetBuild(testBuildID)
	if !exists {
		t.Fatal("expected build to be tracked")
	}
	if summary.Status != "warning" {
		t.Errorf("expected status warning, got %q", summary.Status)
	}
	if summary.Report == nil || summary.Report.BrokenLinks != 3 {
		t.Errorf("expected report with 3 broken links, got %+v", summary.Report)
	}
}

func TestBuildHistoryProjection_Rebuild(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	startA, err := NewBuildStarted("build-a", BuildStartedMeta{Trigger: "schedule"})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	appendEvent(t, store, startA)

	failA, err := NewBuildFailed("build-a", "sync", "remote unreachable")
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	appendEvent(t, store, failA)

	startB, err := NewBuildStarted("build-b", BuildStartedMeta{Trigger: "webhook"})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	appendEvent(t, store, startB)

	completeB, err := NewBuildCompleted("build-b", "success", 140*time.Millisecond, ReportData{Pages: 10})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	appendEvent(t, store, completeB)

	projection := NewBuildHistoryProjection(store, 10)
	if err := projection.Rebuild(t.Context()); err != nil {
		t.Fatalf("failed to rebuild projection: %v", err)
	}

	history := projection.GetHistory()
	if len(history) != 2 {
		t.Fatalf("expected 2 builds in history, got %d", len(history))
	}
	if history[0].BuildID != "build-b" {
		t.Errorf("expected newest build first, got %s", history[0].BuildID)
	}

	summaryA, exists := projection.GetBuild("build-a")
	if !exists {
		t.Fatal("expected build-a to be tracked")
	}
	if summaryA.Status != "failed" || summaryA.ErrorStage != "sync" {
		t.Errorf("expected failed at sync, got status=%q stage=%q", summaryA.Status, summaryA.ErrorStage)
	}

	summaryB, exists := projection.GetBuild("build-b")
	if !exists {
		t.Fatal("expected build-b to be tracked")
	}
	if summaryB.Status != "success" {
		t.Errorf("expected success, got %q", summaryB.Status)
	}
	if summaryB.Duration != 140*time.Millisecond {
		t.Errorf("expected duration from payload, got %v", summaryB.Duration)
	}
	if projection.LastSyncTime().IsZero() {
		t.Error("expected last sync time to be recorded")
	}
}

func TestBuildHistoryProjection_HistoryLimit(t *testing.T) {
	projection := NewBuildHistoryProjection(nil, 3)

	for i := range 5 {
		buildID := fmt.Sprintf("build-%d", i)

		startEvent, err := NewBuildStarted(buildID, BuildStartedMeta{Trigger: "schedule"})
		if err != nil {
			t.Fatalf("failed to create event: %v", err)
		}
		projection.Apply(startEvent)

		completeEvent, err := NewBuildCompleted(buildID, "success", 50*time.Millisecond, ReportData{})
		if err != nil {
			t.Fatalf("failed to create event: %v", err)
		}
		projection.Apply(completeEvent)
	}

	history := projection.GetHistory()
	if len(history) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(history))
	}
	if history[0].BuildID != "build-4" {
		t.Errorf("expected newest build first, got %s", history[0].BuildID)
	}

	// Builds that fell out of the bounded history are pruned entirely.
	if _, exists := projection.GetBuild("build-0"); exists {
		t.Error("expected build-0 to be pruned")
	}
	if _, exists := projection.GetBuild("build-4"); !exists {
		t.Error("expected build-4 to be retained")
	}
}

func TestBuildHistoryProjection_ActiveAndLastCompleted(t *testing.T) {
	projection := NewBuildHistoryProjection(nil, 10)

	startDone, err := NewBuildStarted("build-done", BuildStartedMeta{Trigger: "schedule"})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	projection.Apply(startDone)

	completeDone, err := NewBuildCompleted("build-done", "success", 60*time.Millisecond, ReportData{})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	projection.Apply(completeDone)

	startRunning, err := NewBuildStarted("build-running", BuildStartedMeta{Trigger: "webhook"})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	projection.Apply(startRunning)

	active := projection.GetActiveBuild()
	if active == nil {
		t.Fatal("expected an active build")
	}
	if active.BuildID != "build-running" {
		t.Errorf("expected build-running active, got %s", active.BuildID)
	}

	last := projection.GetLastCompletedBuild()
	if last == nil {
		t.Fatal("expected a completed build")
	}
	if last.BuildID != "build-done" {
		t.Errorf("expected build-done last completed, got %s", last.BuildID)
	}
}
