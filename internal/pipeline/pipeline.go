// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"vitalscan/internal/common/logger"
	"vitalscan/internal/common/metrics"
	"vitalscan/internal/narrative"
	"vitalscan/internal/notify"
	"vitalscan/internal/profile"
	"vitalscan/internal/store"
	"vitalscan/internal/tracker"
)

// Generator produces the diagnostic narratives for a profile.
type Generator interface {
	Generate(ctx context.Context, p *profile.DiagnosticProfile) (narrative.Result, error)
}

// Persister stores and retrieves diagnostic records.
type Persister interface {
	Store(ctx context.Context, rec *store.StoredDiagnostic) error
}

// Renderer produces the PDF artifact for a stored record.
type Renderer interface {
	Render(ctx context.Context, rec *store.StoredDiagnostic) (string, error)
}

// Notifier fans the finished report out to the delivery channels.
type Notifier interface {
	Dispatch(msg *notify.ReportMessage) notify.Result
}

// Progress checkpoints reported to polling clients at each stage boundary.
const (
	progressGenerating = 10
	progressPersisting = 50
	progressRendering  = 65
	progressNotifying  = 80
)

// Options tunes the worker pool.
type Options struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

// Pipeline runs diagnostic jobs asynchronously on a fixed worker pool.
// Submit returns immediately with a job id; clients follow progress through
// the tracker.
type Pipeline struct {
	generator Generator
	persister Persister
	renderer  Renderer
	notifier  Notifier
	tracker   *tracker.Tracker
	logger    logger.Logger
	opts      Options

	queue  chan job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	// stopMu orders Submit against Stop: no enqueue and no wg.Add may
	// happen once the queue is closed.
	stopMu  sync.RWMutex
	stopped bool
}

type job struct {
	id      string
	profile *profile.DiagnosticProfile
}

func New(gen Generator, per Persister, ren Renderer, not Notifier, tr *tracker.Tracker, log logger.Logger, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		generator: gen,
		persister: per,
		renderer:  ren,
		notifier:  not,
		tracker:   tr,
		logger:    log,
		opts:      opts,
		queue:     make(chan job, opts.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the worker pool.
func (p *Pipeline) Start() {
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.logger.Info("pipeline started", map[string]interface{}{
		"workers":    p.opts.Workers,
		"queue_size": p.opts.QueueSize,
	})
}

// Stop drains in-flight jobs and shuts the pool down. Safe to call once;
// submissions arriving afterwards are rejected, not enqueued.
func (p *Pipeline) Stop() {
	p.stopMu.Lock()
	if p.stopped {
		p.stopMu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.stopMu.Unlock()

	p.wg.Wait()
	p.cancel()
	p.logger.Info("pipeline stopped", nil)
}

// Submit registers a new job for the raw submission and returns its id.
// When the queue is full the job still runs, on its own goroutine, so a
// burst of submissions degrades to unbounded concurrency rather than a
// blocked HTTP handler.
func (p *Pipeline) Submit(raw map[string]interface{}) string {
	id := uuid.New().String()
	prof := profile.Normalize(raw)

	p.tracker.Create(id)
	metrics.JobsSubmitted.Inc()

	j := job{id: id, profile: prof}

	// The read lock holds the queue open for the duration of the enqueue,
	// and wg.Add is ordered before Stop's wg.Wait. The buffered send never
	// blocks under the lock: a full queue takes the default branch.
	p.stopMu.RLock()
	if p.stopped {
		p.stopMu.RUnlock()
		p.logger.Warn("submission rejected, pipeline stopped", map[string]interface{}{
			"job_id": id,
		})
		p.fail(id, tracker.StageQueued, "The service is shutting down. Please try again later.")
		return id
	}

	select {
	case p.queue <- j:
		p.stopMu.RUnlock()
	default:
		p.wg.Add(1)
		p.stopMu.RUnlock()
		p.logger.Warn("job queue full, running job unpooled", map[string]interface{}{
			"job_id": id,
		})
		go func() {
			defer p.wg.Done()
			p.run(j)
		}()
	}

	return id
}

func (p *Pipeline) worker() {
	defer p.wg.Done()
	for j := range p.queue {
		p.run(j)
	}
}

// run executes all stages of one job. Generation and persistence failures
// are terminal; rendering and delivery degrade and the job still completes.
func (p *Pipeline) run(j job) {
	metrics.JobsActive.Inc()
	defer metrics.JobsActive.Dec()

	ctx, cancel := context.WithTimeout(p.ctx, p.opts.JobTimeout)
	defer cancel()

	log := p.logger.With(map[string]interface{}{"job_id": j.id})

	// Generation.
	p.tracker.Advance(j.id, tracker.StageGenerating, progressGenerating)
	genStart := time.Now()
	result, genErr := p.generator.Generate(ctx, j.profile)
	metrics.StageDuration.WithLabelValues(string(tracker.StageGenerating)).Observe(time.Since(genStart).Seconds())

	// Fallback texts still go into the record so the respondent's answers
	// are never lost, even when the job itself fails.
	j.profile.Diagnosis = result.Diagnosis
	j.profile.Recommendations = result.Recommendations

	rec := &store.StoredDiagnostic{
		ID:        j.id,
		Profile:   j.profile,
		CreatedAt: time.Now().UTC(),
	}

	if genErr != nil {
		log.WithError(genErr).Error("narrative generation failed", nil)
		if err := p.persister.Store(ctx, rec); err != nil {
			log.WithError(err).Error("could not persist record after generation failure", nil)
		}
		p.fail(j.id, tracker.StageGenerating, "We could not generate your diagnostic report. Please try again later.")
		return
	}

	// Persistence.
	p.tracker.Advance(j.id, tracker.StagePersisting, progressPersisting)
	perStart := time.Now()
	perErr := p.persister.Store(ctx, rec)
	metrics.StageDuration.WithLabelValues(string(tracker.StagePersisting)).Observe(time.Since(perStart).Seconds())
	if perErr != nil {
		log.WithError(perErr).Error("persistence failed", nil)
		p.fail(j.id, tracker.StagePersisting, "We could not save your diagnostic report. Please try again later.")
		return
	}

	// Rendering. A failure here degrades to text-only delivery.
	p.tracker.Advance(j.id, tracker.StageRendering, progressRendering)
	renStart := time.Now()
	pdfPath, renErr := p.renderer.Render(ctx, rec)
	metrics.StageDuration.WithLabelValues(string(tracker.StageRendering)).Observe(time.Since(renStart).Seconds())
	if renErr != nil {
		log.WithError(renErr).Warn("rendering failed, continuing without attachment", nil)
		pdfPath = ""
	}

	// Delivery, best effort on every channel.
	p.tracker.Advance(j.id, tracker.StageNotifying, progressNotifying)
	notStart := time.Now()
	delivery := p.notifier.Dispatch(&notify.ReportMessage{
		DiagnosticID: j.id,
		// Greetings address the respondent by first name.
		Name:    j.profile.Name,
		Email:   j.profile.Email,
		Phone:   j.profile.Phone,
		PDFPath: pdfPath,
	})
	metrics.StageDuration.WithLabelValues(string(tracker.StageNotifying)).Observe(time.Since(notStart).Seconds())
	if delivery.AllFailed() {
		log.Warn("every delivery channel failed", nil)
	}

	p.tracker.Complete(j.id, "/success/"+j.id)
	metrics.JobsCompleted.Inc()
	log.Info("job completed", map[string]interface{}{
		"pdf":             pdfPath != "",
		"email_attempted": delivery.EmailAttempted,
		"phone_attempted": delivery.PhoneAttempted,
	})
}

func (p *Pipeline) fail(id string, stage tracker.Stage, message string) {
	p.tracker.Fail(id, message)
	metrics.JobsFailed.WithLabelValues(string(stage)).Inc()
}
