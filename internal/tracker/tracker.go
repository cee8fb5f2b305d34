// internal/tracker/tracker.go
package tracker

import "sync"

// Stage identifies where a diagnostic job is in the pipeline.
type Stage string

const (
	StageQueued     Stage = "queued"
	StageGenerating Stage = "generating"
	StagePersisting Stage = "persisting"
	StageRendering  Stage = "rendering"
	StageNotifying  Stage = "notifying"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"

	// StageProcessing is the placeholder answer for unknown job ids. A
	// client may poll before the submission handler has registered the
	// job, so an unknown id is never reported as not found.
	StageProcessing Stage = "processing"
)

// Terminal reports whether a stage accepts no further transitions.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// Status is the poll answer for one job.
type Status struct {
	Stage       Stage  `json:"status"`
	Progress    int    `json:"progress"`
	Error       string `json:"error,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Tracker keeps in-memory job status for polling clients. State lives only
// for the process lifetime, which matches how long a client keeps polling.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]Status
}

func New() *Tracker {
	return &Tracker{jobs: make(map[string]Status)}
}

// Create registers a job in the queued stage.
func (t *Tracker) Create(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[id] = Status{Stage: StageQueued, Progress: 0}
}

// Advance moves a job to a non-terminal stage with the given progress.
// Terminal jobs are left untouched.
func (t *Tracker) Advance(id string, stage Stage, progress int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.jobs[id]
	if ok && cur.Stage.Terminal() {
		return
	}
	t.jobs[id] = Status{Stage: stage, Progress: progress}
}

// Complete marks a job finished and records where the client should go next.
func (t *Tracker) Complete(id, redirectURL string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.jobs[id]
	if ok && cur.Stage.Terminal() {
		return
	}
	t.jobs[id] = Status{Stage: StageCompleted, Progress: 100, RedirectURL: redirectURL}
}

// Fail marks a job terminally failed with a client-facing error message.
func (t *Tracker) Fail(id, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.jobs[id]
	if ok && cur.Stage.Terminal() {
		return
	}
	t.jobs[id] = Status{Stage: StageFailed, Progress: cur.Progress, Error: message}
}

// Get returns the job status. Unknown ids get the processing placeholder.
func (t *Tracker) Get(id string) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if status, ok := t.jobs[id]; ok {
		return status
	}
	return Status{Stage: StageProcessing}
}
