package services

import (
	"context"
	"sync"

	"photo-journal-backend/internal/labels"

	"github.com/rs/zerolog/log"
)

// ImageClassifier is the vision model surface the enricher depends on.
// Implementations are fail-soft and return the "unknown" sentinel instead
// of an error.
type ImageClassifier interface {
	Classify(ctx context.Context, imageURL string) []string
}

// LabelMerger is the slice of the photo store the enricher writes through.
type LabelMerger interface {
	MergeLabels(ctx context.Context, ownerID, photoID string, labels []string) error
}

type enrichJob struct {
	ownerID string
	photoID string
	url     string
	done    chan struct{}
}

// Enricher is the background label-enrichment pipeline: an explicit queue
// and worker pool instead of bare detached goroutines, so enrichment is
// at-most-once per photo and drains cleanly on shutdown. Failures are
// swallowed; a photo that cannot be enriched simply keeps its save-time
// labels.
type Enricher struct {
	classifier ImageClassifier
	merger     LabelMerger

	jobs chan enrichJob
	wg   sync.WaitGroup

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewEnricher creates the pipeline. Call Start before enqueueing and Close
// to drain on shutdown.
func NewEnricher(classifier ImageClassifier, merger LabelMerger, queueSize int) *Enricher {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Enricher{
		classifier: classifier,
		merger:     merger,
		jobs:       make(chan enrichJob, queueSize),
		seen:       make(map[string]struct{}),
	}
}

// Start launches the worker pool. Workers run until Close.
func (e *Enricher) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			for job := range e.jobs {
				e.process(ctx, job)
				close(job.done)
			}
		}()
	}
}

// Enqueue schedules enrichment for a photo and returns a channel that is
// closed when the job completes, whether or not any labels were merged.
// A photo already enqueued once is never enqueued again; a full queue drops
// the job. Either way the caller is not blocked and sees no error.
func (e *Enricher) Enqueue(ownerID, photoID, url string) <-chan struct{} {
	done := make(chan struct{})

	key := ownerID + "/" + photoID
	e.mu.Lock()
	if _, dup := e.seen[key]; dup {
		e.mu.Unlock()
		close(done)
		return done
	}
	e.seen[key] = struct{}{}
	e.mu.Unlock()

	job := enrichJob{ownerID: ownerID, photoID: photoID, url: url, done: done}
	select {
	case e.jobs <- job:
	default:
		log.Warn().Str("photo_id", photoID).Msg("Enrichment queue full, dropping job")
		close(done)
	}
	return done
}

// Close stops accepting jobs and waits for in-flight ones to finish.
func (e *Enricher) Close() {
	close(e.jobs)
	e.wg.Wait()
}

func (e *Enricher) process(ctx context.Context, job enrichJob) {
	tags := e.classifier.Classify(ctx, job.url)
	phrases := labels.Normalize(labels.DropUnknown(tags))
	if len(phrases) == 0 {
		log.Debug().Str("photo_id", job.photoID).Msg("Classifier produced no usable labels")
		return
	}
	if err := e.merger.MergeLabels(ctx, job.ownerID, job.photoID, phrases); err != nil {
		log.Error().Err(err).Str("photo_id", job.photoID).Msg("Failed to merge enriched labels")
	}
}
