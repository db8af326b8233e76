package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// ReportIssueCode enumerates machine-parseable issue identifiers. Codes
// are a stable contract: only append, never reuse.
type ReportIssueCode string

const (
	IssueNoPages           ReportIssueCode = "NO_PAGES"
	IssueDuplicatePrefix   ReportIssueCode = "DUPLICATE_PREFIX"
	IssueRouteCollision    ReportIssueCode = "ROUTE_COLLISION"
	IssueRenderFailure     ReportIssueCode = "RENDER_FAILURE"
	IssueAssetCopyFailure  ReportIssueCode = "ASSET_COPY_FAILURE"
	IssueBrokenLink        ReportIssueCode = "BROKEN_LINK"
	IssueCanceled          ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured taxonomy entry describing a discrete
// problem. Message is human-friendly; Code + Stage allow automated
// handling; Transient hints retry suitability.
type ReportIssue struct {
	Code      ReportIssueCode `json:"code"`
	Stage     StageName       `json:"stage"`
	Severity  IssueSeverity   `json:"severity"`
	Message   string          `json:"message"`
	Transient bool            `json:"transient"`
}

// TemplateInfo captures which source served a layout template.
// Source is "embedded" or "file"; Path is empty for embedded.
type TemplateInfo struct {
	Source string `json:"source"`
	Path   string `json:"path,omitempty"`
}

// StageCount aggregates outcome counts for a stage.
type StageCount struct {
	Success  int
	Warning  int
	Fatal    int
	Canceled int
}

// BuildReport captures metrics about one site generation run.
type BuildReport struct {
	SchemaVersion int
	BuildID       string
	Pages         int // markdown pages discovered
	Assets        int // assets discovered
	Sections      int // navigation sections (including stubs)
	Start         time.Time
	End           time.Time

	Errors   []error // fatal errors causing build abortion
	Warnings []error // non-fatal issues

	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount

	RenderedPages  int // pages written to the staging tree
	StubsGenerated int // section indexes synthesized for stub nodes
	AssetsCopied   int
	LinksChecked   int
	BrokenLinks    int

	Outcome  string       // string mirror for JSON consumers
	OutcomeT BuildOutcome // typed outcome (source of truth)

	Issues []ReportIssue

	// SkipReason is set when the pipeline was short-circuited
	// (e.g. "no_changes" in daemon mode). Empty when a full build ran.
	SkipReason string

	// TemplateSources records which source was used per layout template.
	TemplateSources map[string]TemplateInfo
}

func newBuildReport(buildID string) *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		BuildID:         buildID,
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
		TemplateSources: make(map[string]TemplateInfo),
	}
}

// AddIssue appends a structured issue and mirrors err into the legacy
// Errors/Warnings slices based on severity. Pass err=nil for purely
// informational issues.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, msg string, transient bool, err error) {
	r.Issues = append(r.Issues, ReportIssue{Code: code, Stage: stage, Severity: severity, Message: msg, Transient: transient})
	if err != nil {
		switch severity {
		case SeverityError:
			r.Errors = append(r.Errors, err)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, err)
		}
	}
}

// recordStageError updates per-stage classification bookkeeping.
func (r *BuildReport) recordStageError(se *StageError) {
	r.StageErrorKinds[se.Stage] = se.Kind
	sc := r.StageCounts[se.Stage]
	switch se.Kind {
	case StageErrorWarning:
		sc.Warning++
	case StageErrorCanceled:
		sc.Canceled++
	case StageErrorFatal:
		sc.Fatal++
	}
	r.StageCounts[se.Stage] = sc
}

func (r *BuildReport) finish() { r.End = time.Now() }

// deriveOutcome sets the outcome from recorded errors and warnings.
func (r *BuildReport) deriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			if se, ok := e.(*StageError); ok && se.Kind == StageErrorCanceled {
				r.setOutcome(OutcomeCanceled)
				return
			}
		}
		r.setOutcome(OutcomeFailed)
		return
	}
	if len(r.Warnings) > 0 {
		r.setOutcome(OutcomeWarning)
		return
	}
	r.setOutcome(OutcomeSuccess)
}

func (r *BuildReport) setOutcome(o BuildOutcome) {
	r.OutcomeT = o
	r.Outcome = string(o)
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("pages=%d assets=%d sections=%d duration=%s rendered=%d stubs=%d errors=%d warnings=%d broken_links=%d outcome=%s",
		r.Pages, r.Assets, r.Sections, dur.Truncate(time.Millisecond), r.RenderedPages, r.StubsGenerated, len(r.Errors), len(r.Warnings), r.BrokenLinks, r.Outcome)
}

// Persist writes the report atomically into the provided directory
// (the final output dir, not staging):
//
//	build-report.json  (machine readable)
//	build-report.txt   (human summary)
//
// Best effort; errors are returned for caller logging but do not change
// the build outcome.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.finish()
		r.deriveOutcome()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("ensure report dir: %w", err)
	}
	jb, err := json.MarshalIndent(r.serializable(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(root, "build-report.json")
	tmpJSON := jsonPath + ".tmp"
	// #nosec G306 -- build reports are public site artifacts
	if err := os.WriteFile(tmpJSON, jb, 0o644); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmpJSON, jsonPath); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}
	summaryPath := filepath.Join(root, "build-report.txt")
	tmpTxt := summaryPath + ".tmp"
	// #nosec G306 -- build reports are public site artifacts
	if err := os.WriteFile(tmpTxt, []byte(r.Summary()+"\n"), 0o644); err != nil {
		return fmt.Errorf("write temp report summary: %w", err)
	}
	if err := os.Rename(tmpTxt, summaryPath); err != nil {
		return fmt.Errorf("atomic rename summary: %w", err)
	}
	return nil
}

// serializable returns a copy with error fields converted to strings and
// typed map keys flattened for stable JSON.
func (r *BuildReport) serializable() *BuildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	kinds := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		kinds[string(k)] = string(v)
	}
	if r.StageDurations == nil {
		r.StageDurations = map[string]time.Duration{}
	}
	if r.TemplateSources == nil {
		r.TemplateSources = map[string]TemplateInfo{}
	}
	s := &BuildReportSerializable{
		SchemaVersion:   r.SchemaVersion,
		BuildID:         r.BuildID,
		Pages:           r.Pages,
		Assets:          r.Assets,
		Sections:        r.Sections,
		Start:           r.Start,
		End:             r.End,
		Errors:          make([]string, len(r.Errors)),
		Warnings:        make([]string, len(r.Warnings)),
		StageDurations:  r.StageDurations,
		StageErrorKinds: kinds,
		StageCounts:     stageCounts,
		RenderedPages:   r.RenderedPages,
		StubsGenerated:  r.StubsGenerated,
		AssetsCopied:    r.AssetsCopied,
		LinksChecked:    r.LinksChecked,
		BrokenLinks:     r.BrokenLinks,
		Outcome:         r.Outcome,
		Issues:          r.Issues,
		SkipReason:      r.SkipReason,
		TemplateSources: r.TemplateSources,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// BuildReportSerializable mirrors BuildReport with string errors for JSON.
type BuildReportSerializable struct {
	SchemaVersion   int                      `json:"schema_version"`
	BuildID         string                   `json:"build_id,omitempty"`
	Pages           int                      `json:"pages"`
	Assets          int                      `json:"assets"`
	Sections        int                      `json:"sections"`
	Start           time.Time                `json:"start"`
	End             time.Time                `json:"end"`
	Errors          []string                 `json:"errors"`
	Warnings        []string                 `json:"warnings"`
	StageDurations  map[string]time.Duration `json:"stage_durations"`
	StageErrorKinds map[string]string        `json:"stage_error_kinds"`
	StageCounts     map[string]StageCount    `json:"stage_counts"`
	RenderedPages   int                      `json:"rendered_pages"`
	StubsGenerated  int                      `json:"stubs_generated"`
	AssetsCopied    int                      `json:"assets_copied"`
	LinksChecked    int                      `json:"links_checked"`
	BrokenLinks     int                      `json:"broken_links"`
	Outcome         string                   `json:"outcome"`
	Issues          []ReportIssue            `json:"issues"`
	SkipReason      string                   `json:"skip_reason,omitempty"`
	TemplateSources map[string]TemplateInfo  `json:"template_sources,omitempty"`
}
