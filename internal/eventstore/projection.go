// Package eventstore records build lifecycle events and serves read models
// reconstructed from them.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

const (
	buildStatusRunning = "running"
	buildStatusSuccess = "success"
	buildStatusFailed  = "failed"
)

// BuildSummary is a read model summarizing one build, running or finished.
type BuildSummary struct {
	BuildID      string        `json:"build_id"`
	Status       string        `json:"status"` // "running", "success", "warning", "failed", "canceled"
	Trigger      string        `json:"trigger,omitempty"`
	Commit       string        `json:"commit,omitempty"`
	Branch       string        `json:"branch,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Pages        int           `json:"pages"`
	Assets       int           `json:"assets"`
	Sections     int           `json:"sections"`
	ErrorStage   string        `json:"error_stage,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Report       *ReportData   `json:"report,omitempty"`
}

// BuildHistoryProjection maintains an in-memory view of recent builds,
// reconstructed from the event store at startup and updated live as the
// daemon emits events.
type BuildHistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	builds   map[string]*BuildSummary // buildID -> summary
	history  []*BuildSummary          // ordered by start time, newest first
	maxSize  int
	lastSync time.Time
}

// NewBuildHistoryProjection creates a projection backed by the given store.
func NewBuildHistoryProjection(store Store, maxHistorySize int) *BuildHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &BuildHistoryProjection{
		store:   store,
		builds:  make(map[string]*BuildSummary),
		history: make([]*BuildSummary, 0, maxHistorySize),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
// Called once at daemon startup so history survives restarts.
func (p *BuildHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.builds = make(map[string]*BuildSummary)
	p.history = make([]*BuildSummary, 0, p.maxSize)

	for _, event := range events {
		p.applyEventLocked(event)
	}

	p.sortHistoryLocked()
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneBuildsLocked()

	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event as it is emitted.
func (p *BuildHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

// applyEventLocked updates the read model for one event.
// Caller must hold p.mu (write lock).
func (p *BuildHistoryProjection) applyEventLocked(event Event) {
	buildID := event.BuildID()
	if buildID == "" {
		return
	}

	summary, exists := p.builds[buildID]
	if !exists {
		summary = &BuildSummary{
			BuildID:   buildID,
			Status:    buildStatusRunning,
			StartedAt: event.Timestamp(),
		}
		p.builds[buildID] = summary
	}

	switch event.Type() {
	case "BuildStarted":
		summary.StartedAt = event.Timestamp()
		summary.Status = buildStatusRunning
		var payload struct {
			Trigger string `json:"trigger"`
			Commit  string `json:"commit"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Trigger = payload.Trigger
			if payload.Commit != "" {
				summary.Commit = payload.Commit
			}
		}

	case "SourceSynced":
		var payload struct {
			Commit string `json:"commit"`
			Branch string `json:"branch"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Commit = payload.Commit
			summary.Branch = payload.Branch
		}

	case "PagesDiscovered":
		var payload struct {
			Pages    int `json:"pages"`
			Assets   int `json:"assets"`
			Sections int `json:"sections"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Pages = payload.Pages
			summary.Assets = payload.Assets
			summary.Sections = payload.Sections
		}

	case "BuildCompleted":
		now := event.Timestamp()
		summary.CompletedAt = &now
		summary.Duration = now.Sub(summary.StartedAt)
		summary.Status = buildStatusSuccess
		var payload struct {
			Outcome    string      `json:"outcome"`
			DurationMS int64       `json:"duration_ms"`
			Report     *ReportData `json:"report"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			if payload.Outcome != "" {
				summary.Status = payload.Outcome
			}
			// The payload duration is precise; the timestamp difference
			// is only a fallback for events from older stores.
			if payload.DurationMS > 0 {
				summary.Duration = time.Duration(payload.DurationMS) * time.Millisecond
			}
			summary.Report = payload.Report
		}
		p.addToHistoryLocked(summary)

	case "BuildFailed":
		now := event.Timestamp()
		summary.CompletedAt = &now
		summary.Duration = now.Sub(summary.StartedAt)
		summary.Status = buildStatusFailed
		var payload struct {
			Stage string `json:"stage"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.ErrorStage = payload.Stage
			summary.ErrorMessage = payload.Error
		}
		p.addToHistoryLocked(summary)
	}
}

// addToHistoryLocked adds a finished build to history if not already present.
// Caller must hold p.mu (write lock).
func (p *BuildHistoryProjection) addToHistoryLocked(summary *BuildSummary) {
	for _, h := range p.history {
		if h.BuildID == summary.BuildID {
			return
		}
	}

	p.history = append([]*BuildSummary{summary}, p.history...)
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}

	p.pruneBuildsLocked()
}

// pruneBuildsLocked drops finished builds that fell out of the bounded
// history. Running builds are always kept. Caller must hold p.mu.
func (p *BuildHistoryProjection) pruneBuildsLocked() {
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		if h != nil {
			keep[h.BuildID] = struct{}{}
		}
	}

	for id, summary := range p.builds {
		if summary != nil && summary.Status == buildStatusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.builds, id)
		}
	}
}

// sortHistoryLocked sorts history by start time, newest first.
// Caller must hold p.mu.
func (p *BuildHistoryProjection) sortHistoryLocked() {
	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
}

// GetHistory returns the build history, newest first.
func (p *BuildHistoryProjection) GetHistory() []*BuildSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]*BuildSummary, len(p.history))
	copy(result, p.history)
	return result
}

// GetBuild returns the summary for a specific build.
func (p *BuildHistoryProjection) GetBuild(buildID string) (*BuildSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, exists := p.builds[buildID]
	if !exists {
		return nil, false
	}

	cp := *summary
	return &cp, true
}

// GetActiveBuild returns a currently running build, if any.
func (p *BuildHistoryProjection) GetActiveBuild() *BuildSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, summary := range p.builds {
		if summary.Status == buildStatusRunning {
			cp := *summary
			return &cp
		}
	}
	return nil
}

// GetLastCompletedBuild returns the most recently finished build, success
// or failure, or nil when no build has finished yet.
func (p *BuildHistoryProjection) GetLastCompletedBuild() *BuildSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.history) == 0 {
		return nil
	}

	cp := *p.history[0]
	return &cp
}

// LastSyncTime returns when the projection was last rebuilt from the store.
func (p *BuildHistoryProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
