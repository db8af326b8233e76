package site

import (
	"time"

	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
	"git.home.luguber.info/inful/guidebuilder/internal/metrics"
	"git.home.luguber.info/inful/guidebuilder/internal/nav"
)

// BuildState carries mutable state across stages of one build.
type BuildState struct {
	Builder *Builder
	Corpus  *corpus.Corpus
	Nav     *nav.Tree
	Report  *BuildReport
	Timings map[StageName]time.Duration
	start   time.Time
}

func newBuildState(b *Builder, report *BuildReport) *BuildState {
	return &BuildState{
		Builder: b,
		Report:  report,
		Timings: make(map[StageName]time.Duration),
		start:   time.Now(),
	}
}

func (bs *BuildState) recorder() metrics.Recorder {
	if bs.Builder == nil || bs.Builder.recorder == nil {
		return metrics.NoopRecorder{}
	}
	return bs.Builder.recorder
}
