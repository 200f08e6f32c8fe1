package summarize

// Stage names a step of a pipeline run.
type Stage string

const (
	StageExtracting  Stage = "extracting"
	StageDirect      Stage = "direct"
	StageChunking    Stage = "chunking"
	StageSummarizing Stage = "summarizing"
	StageCombining   Stage = "combining"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// Event is published to an Observer as a run progresses. Chunk events carry
// Chunk and Total; Err is set when the step failed.
type Event struct {
	Stage Stage
	Chunk int
	Total int
	OK    bool
	Err   error
}

// Observer receives progress events. Chunk events arrive from concurrent
// goroutines, so implementations must be safe for concurrent use.
type Observer func(Event)
