package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/guideerr"
)

// BuildStartedMeta describes how a build was initiated.
type BuildStartedMeta struct {
	Trigger string `json:"trigger"`          // "webhook", "schedule", "manual", "reload"
	Commit  string `json:"commit,omitempty"` // commit queued for the build, when known up front
	Worker  int    `json:"worker,omitempty"` // daemon worker that picked up the job
}

// BuildStarted is emitted when a build begins.
type BuildStarted struct {
	BaseEvent
	Meta BuildStartedMeta `json:"meta"`
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID string, meta BuildStartedMeta) (*BuildStarted, error) {
	payload, err := json.Marshal(map[string]any{
		"trigger": meta.Trigger,
		"commit":  meta.Commit,
		"worker":  meta.Worker,
	})
	if err != nil {
		return nil, guideerr.InternalError("marshal BuildStarted payload", err).
			WithContext("build_id", buildID)
	}

	return &BuildStarted{
		BaseEvent: BaseEvent{
			EventBuildID:   buildID,
			EventType:      "BuildStarted",
			EventTimestamp: time.Now(),
			EventPayload:   payload,
		},
		Meta: meta,
	}, nil
}

// SourceSynced is emitted when the guide repository checkout is brought up
// to date with its remote.
type SourceSynced struct {
	BaseEvent
	Commit   string        `json:"commit"`
	Branch   string        `json:"branch"`
	Cloned   bool          `json:"cloned"`
	Changed  bool          `json:"changed"`
	Duration time.Duration `json:"duration_ms"`
}

// NewSourceSynced creates a SourceSynced event.
func NewSourceSynced(buildID, commit, branch string, cloned, changed bool, duration time.Duration) (*SourceSynced, error) {
	payload, err := json.Marshal(map[string]any{
		"commit":      commit,
		"branch":      branch,
		"cloned":      cloned,
		"changed":     changed,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		return nil, guideerr.InternalError("marshal SourceSynced payload", err).
			WithContext("build_id", buildID).
			WithContext("commit", commit)
	}

	return &SourceSynced{
		BaseEvent: BaseEvent{
			EventBuildID:   buildID,
			EventType:      "SourceSynced",
			EventTimestamp: time.Now(),
			EventPayload:   payload,
		},
		Commit:   commit,
		Branch:   branch,
		Cloned:   cloned,
		Changed:  changed,
		Duration: duration,
	}, nil
}

// PagesDiscovered is emitted after the content tree has been scanned.
type PagesDiscovered struct {
	BaseEvent
	Pages    int `json:"pages"`
	Assets   int `json:"assets"`
	Sections int `json:"sections"`
}

// NewPagesDiscovered creates a PagesDiscovered event.
func NewPagesDiscovered(buildID string, pages, assets, sections int) (*PagesDiscovered, error) {
	payload, err := json.Marshal(map[string]any{
		"pages":    pages,
		"assets":   assets,
		"sections": sections,
	})
	if err != nil {
		return nil, guideerr.InternalError("marshal PagesDiscovered payload", err).
			WithContext("build_id", buildID)
	}

	return &PagesDiscovered{
		BaseEvent: BaseEvent{
			EventBuildID:   buildID,
			EventType:      "PagesDiscovered",
			EventTimestamp: time.Now(),
			EventPayload:   payload,
		},
		Pages:    pages,
		Assets:   assets,
		Sections: sections,
	}, nil
}

// SiteRendered is emitted when the static tree has been written to the
// output directory. It is recorded for the audit trail; the history
// projection reads the same numbers from the final report instead.
type SiteRendered struct {
	BaseEvent
	OutputDir      string        `json:"output_dir"`
	RenderedPages  int           `json:"rendered_pages"`
	StubsGenerated int           `json:"stubs_generated"`
	AssetsCopied   int           `json:"assets_copied"`
	Duration       time.Duration `json:"duration_ms"`
}

// NewSiteRendered creates a SiteRendered event.
func NewSiteRendered(buildID, outputDir string, renderedPages, stubsGenerated, assetsCopied int, duration time.Duration) (*SiteRendered, error) {
	payload, err := json.Marshal(map[string]any{
		"output_dir":      outputDir,
		"rendered_pages":  renderedPages,
		"stubs_generated": stubsGenerated,
		"assets_copied":   assetsCopied,
		"duration_ms":     duration.Milliseconds(),
	})
	if err != nil {
		return nil, guideerr.InternalError("marshal SiteRendered payload", err).
			WithContext("build_id", buildID)
	}

	return &SiteRendered{
		BaseEvent: BaseEvent{
			EventBuildID:   buildID,
			EventType:      "SiteRendered",
			EventTimestamp: time.Now(),
			EventPayload:   payload,
		},
		OutputDir:      outputDir,
		RenderedPages:  renderedPages,
		StubsGenerated: stubsGenerated,
		AssetsCopied:   assetsCopied,
		Duration:       duration,
	}, nil
}

// ReportData carries the headline numbers from a finished build report.
type ReportData struct {
	Pages          int    `json:"pages"`
	Assets         int    `json:"assets"`
	Sections       int    `json:"sections"`
	RenderedPages  int    `json:"rendered_pages"`
	StubsGenerated int    `json:"stubs_generated"`
	AssetsCopied   int    `json:"assets_copied"`
	LinksChecked   int    `json:"links_checked"`
	BrokenLinks    int    `json:"broken_links"`
	Warnings       int    `json:"warnings"`
	Outcome        string `json:"outcome"`
}

// BuildCompleted is emitted when a build runs to a terminal state that is
// not a failure. Outcome is "success", "warning", or "canceled".
type BuildCompleted struct {
	BaseEvent
	Outcome  string        `json:"outcome"`
	Duration time.Duration `json:"duration_ms"`
	Report   ReportData    `json:"report"`
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID, outcome string, duration time.Duration, report ReportData) (*BuildCompleted, error) {
	payload, err := json.Marshal(map[string]any{
		"outcome":     outcome,
		"duration_ms": duration.Milliseconds(),
		"report":      report,
	})
	if err != nil {
		return nil, guideerr.InternalError("marshal BuildCompleted payload", err).
			WithContext("build_id", buildID)
	}

	return &BuildCompleted{
		BaseEvent: BaseEvent{
			EventBuildID:   buildID,
			EventType:      "BuildCompleted",
			EventTimestamp: time.Now(),
			EventPayload:   payload,
		},
		Outcome:  outcome,
		Duration: duration,
		Report:   report,
	}, nil
}

// BuildFailed is emitted when a build aborts with a fatal error.
type BuildFailed struct {
	BaseEvent
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// NewBuildFailed creates a BuildFailed event.
func NewBuildFailed(buildID, stage, errorMsg string) (*BuildFailed, error) {
	payload, err := json.Marshal(map[string]any{
		"stage": stage,
		"error": errorMsg,
	})
	if err != nil {
		return nil, guideerr.InternalError("marshal BuildFailed payload", err).
			WithContext("build_id", buildID).
			WithContext("stage", stage)
	}

	return &BuildFailed{
		BaseEvent: BaseEvent{
			EventBuildID:   buildID,
			EventType:      "BuildFailed",
			EventTimestamp: time.Now(),
			EventPayload:   payload,
		},
		Stage: stage,
		Error: errorMsg,
	}, nil
}
