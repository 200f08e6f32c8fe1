// Package jobs runs summarization requests asynchronously for the API.
package jobs

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docsum/internal/summarize"
)

// JobStatus represents the state of a summarization job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusParsing     JobStatus = "parsing"
	StatusExtracting  JobStatus = "extracting"
	StatusSummarizing JobStatus = "summarizing"
	StatusCombining   JobStatus = "combining"
	StatusCompleted   JobStatus = "completed"
	StatusPartial     JobStatus = "partial"
	StatusFailed      JobStatus = "failed"
)

// Terminal reports whether no further transitions will happen.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// Job tracks the state of a single document summarization.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
	result   *summarize.Result
	cost     float64
}

// Progress tracks processing progress.
type Progress struct {
	TotalChunks     int      `json:"total_chunks"`
	ChunksProcessed int      `json:"chunks_processed"`
	ChunksFailed    int      `json:"chunks_failed"`
	Errors          []string `json:"errors"`
}

// NewJob creates a queued job for an uploaded file.
func NewJob(filename, title string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetTitle records the document title once parsing has found one.
func (j *Job) SetTitle(title string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = title
}

// SetContentHash records the hash of the parsed text.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// ChunkDone counts a finished chunk.
func (j *Job) ChunkDone(ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksProcessed++
	if !ok {
		j.Progress.ChunksFailed++
	}
	j.UpdatedAt = time.Now()
}

// SetTotalChunks records total chunk count.
func (j *Job) SetTotalChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChunks = n
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFileData drops the upload once it has been parsed.
func (j *Job) releaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// SetResult stores the finished run and aligns progress with it.
func (j *Job) SetResult(res *summarize.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.cost = res.TotalCost
	j.Progress.TotalChunks = res.ChunkCount
	j.Progress.ChunksProcessed = res.ChunkCount
	j.Progress.ChunksFailed = len(res.Failures)
	j.UpdatedAt = time.Now()
}

// SetCost records spend for a run that failed before producing a Result.
func (j *Job) SetCost(cost float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cost = cost
}

// Result returns the finished run, or nil.
func (j *Job) Result() *summarize.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Observe maps pipeline progress events onto job status and progress.
func (j *Job) Observe(ev summarize.Event) {
	finished := ev.OK || ev.Err != nil
	switch ev.Stage {
	case summarize.StageExtracting:
		if !finished {
			j.SetStatus(StatusExtracting, "extracting key info")
		}
	case summarize.StageDirect:
		j.SetTotalChunks(1)
		j.SetStatus(StatusSummarizing, "summarizing document")
	case summarize.StageChunking:
		j.SetStatus(StatusSummarizing, "chunking")
	case summarize.StageSummarizing:
		if !finished {
			j.mu.Lock()
			if j.Progress.TotalChunks != ev.Total {
				j.Progress.TotalChunks = ev.Total
				j.Phase = "summarizing chunks"
			}
			j.mu.Unlock()
			return
		}
		j.ChunkDone(ev.OK)
		if ev.Err != nil {
			j.AddError(fmt.Sprintf("chunk %d: %s", ev.Chunk, ev.Err))
		}
	case summarize.StageCombining:
		if !finished {
			j.SetStatus(StatusCombining, "combining summaries")
		} else if ev.Err != nil {
			j.AddError(fmt.Sprintf("combine: %s", ev.Err))
		}
	}
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string            `json:"job_id"`
	Status      JobStatus         `json:"status"`
	Phase       string            `json:"phase"`
	Filename    string            `json:"filename"`
	Title       string            `json:"title"`
	Progress    Progress          `json:"progress"`
	ContentHash string            `json:"content_hash,omitempty"`
	Cost        float64           `json:"cost"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Result      *summarize.Result `json:"result,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:       j.ID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Title:    j.Title,
		Progress: Progress{
			TotalChunks:     j.Progress.TotalChunks,
			ChunksProcessed: j.Progress.ChunksProcessed,
			ChunksFailed:    j.Progress.ChunksFailed,
			Errors:          errs,
		},
		ContentHash: j.ContentHash,
		Cost:        j.cost,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		Result:      j.result,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
