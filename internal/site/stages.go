package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
)

// Sentinel domain errors used to classify pipeline failures. They are
// always wrapped with contextual information at the call site.
var (
	ErrScan      = errors.New("guidebuilder: scan error")
	ErrNav       = errors.New("guidebuilder: nav error")
	ErrRender    = errors.New("guidebuilder: render error")
	ErrLinkCheck = errors.New("guidebuilder: linkcheck error")
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names.
const (
	StagePrepareStaging StageName = "prepare_staging"
	StageScanCorpus     StageName = "scan_corpus"
	StageResolveNav     StageName = "resolve_nav"
	StageRenderPages    StageName = "render_pages"
	StageCopyAssets     StageName = "copy_assets"
	StageIndexes        StageName = "indexes"
	StageVerifyLinks    StageName = "verify_links"
)

// StageErrorKind classifies the outcome of a stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Transient reports whether the underlying condition is likely to clear
// on a retry without operator action.
func (e *StageError) Transient() bool {
	if e == nil {
		return false
	}
	if e.Kind == StageErrorCanceled {
		return false
	}
	switch e.Stage {
	case StageVerifyLinks:
		return errors.Is(e.Err, ErrLinkCheck)
	case StageScanCorpus:
		return errors.Is(e.Err, ErrScan) && e.Kind == StageErrorWarning
	}
	return false
}

// NewFatalStageError creates a fatal stage error.
func NewFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

// NewWarnStageError creates a warning stage error; the pipeline continues.
func NewWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

// NewCanceledStageError wraps a context cancellation.
func NewCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ Defs []StageDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StageDef, 0, 8)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.Defs = append(p.Defs, StageDef{Name: name, Fn: fn})
	return p
}

// AddIf appends a stage only if cond is true.
func (p *Pipeline) AddIf(cond bool, name StageName, fn Stage) *Pipeline {
	if cond {
		p.Add(name, fn)
	}
	return p
}

// Build returns a defensive copy of the stage definitions slice.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.Defs))
	copy(out, p.Defs)
	return out
}

// runStages executes stages in order, recording timing and classification
// per stage. Warnings accumulate and the pipeline continues; fatal and
// canceled errors abort immediately.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := NewCanceledStageError(st.Name, ctx.Err())
			bs.Report.recordStageError(se)
			bs.Report.Errors = append(bs.Report.Errors, se)
			return se
		default:
		}
		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Timings[st.Name] = dur
		bs.Report.StageDurations[string(st.Name)] = dur
		bs.recorder().ObserveStageDuration(string(st.Name), dur)
		if err == nil {
			sc := bs.Report.StageCounts[st.Name]
			sc.Success++
			bs.Report.StageCounts[st.Name] = sc
			bs.recorder().IncStageResult(string(st.Name), metrics.ResultSuccess)
			continue
		}
		var se *StageError
		if !errors.As(err, &se) {
			// Unknown errors abort the build.
			se = NewFatalStageError(st.Name, err)
		}
		bs.Report.recordStageError(se)
		bs.recorder().IncStageResult(string(st.Name), metrics.ResultLabel(se.Kind))
		switch se.Kind {
		case StageErrorWarning:
			bs.Report.Warnings = append(bs.Report.Warnings, se)
			continue
		case StageErrorCanceled, StageErrorFatal:
			bs.Report.Errors = append(bs.Report.Errors, se)
			return se
		}
	}
	return nil
}
