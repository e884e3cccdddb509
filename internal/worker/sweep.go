package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/internal/policy"
	"github.com/tripsentry/tripsentry/internal/safety"
	"github.com/tripsentry/tripsentry/internal/tracking"
)

// Alert is published when a tourist's safety score drops to or below the
// policy's alert threshold.
type Alert struct {
	TouristID   string    `json:"tourist_id"`
	Score       int       `json:"score"`
	Reasons     []string  `json:"reasons"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// AlertPublisher delivers alerts to the authority channel.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert Alert) error
}

// SweepJob evaluates stored tourist data and persists assessments.
type SweepJob struct {
	config      SweepConfig
	logger      zerolog.Logger
	itineraries *itinerary.Service
	trails      *tracking.Service
	policies    *policy.Service
	assessments safety.Repository
	resolver    safety.PlaceResolver
	alerts      AlertPublisher
}

// SweepJobConfig holds configuration for creating a SweepJob.
type SweepJobConfig struct {
	Config      SweepConfig
	Logger      zerolog.Logger
	Itineraries *itinerary.Service
	Trails      *tracking.Service
	Policies    *policy.Service
	Assessments safety.Repository

	// Resolver maps itinerary labels to coordinates during evaluation.
	// Optional.
	Resolver safety.PlaceResolver

	// Alerts receives an alert for each assessment at or below the policy
	// threshold. Optional.
	Alerts AlertPublisher
}

// NewSweepJob creates a new assessment sweep job processor.
func NewSweepJob(cfg SweepJobConfig) *SweepJob {
	return &SweepJob{
		config:      cfg.Config.withDefaults(),
		logger:      cfg.Logger,
		itineraries: cfg.Itineraries,
		trails:      cfg.Trails,
		policies:    cfg.Policies,
		assessments: cfg.Assessments,
		resolver:    cfg.Resolver,
		alerts:      cfg.Alerts,
	}
}

// SweepResult contains the result of one sweep run.
type SweepResult struct {
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	TotalTourists int
	Evaluated     int
	Skipped       int
	Failed        int
	Alerts        int
	Errors        []SweepError
}

// SweepError records a per-tourist failure.
type SweepError struct {
	TouristID string
	Error     string
}

// Run evaluates the given tourists. An empty list sweeps every tourist with a
// stored trail.
func (j *SweepJob) Run(ctx context.Context, touristIDs []string) *SweepResult {
	startTime := time.Now()
	result := &SweepResult{StartTime: startTime}

	if len(touristIDs) == 0 {
		ids, err := j.trails.ActiveTourists(ctx)
		if err != nil {
			j.logger.Error().Err(err).Msg("failed to list tourists for sweep")
			result.Errors = append(result.Errors, SweepError{Error: err.Error()})
			result.Failed++
			result.EndTime = time.Now()
			result.Duration = result.EndTime.Sub(startTime)
			return result
		}
		touristIDs = ids
	}
	result.TotalTourists = len(touristIDs)

	j.logger.Info().
		Int("tourists", result.TotalTourists).
		Int("concurrency", j.config.Concurrency).
		Msg("starting assessment sweep")

	idsChan := make(chan string, len(touristIDs))
	resultsChan := make(chan touristResult, len(touristIDs))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.sweepWorker(ctx, idsChan, resultsChan)
		}()
	}

	for _, id := range touristIDs {
		idsChan <- id
	}
	close(idsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for tr := range resultsChan {
		switch {
		case tr.err != nil:
			result.Failed++
			result.Errors = append(result.Errors, SweepError{TouristID: tr.touristID, Error: tr.err.Error()})
		case tr.skipped:
			result.Skipped++
		default:
			result.Evaluated++
			if tr.alerted {
				result.Alerts++
			}
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("evaluated", result.Evaluated).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Int("alerts", result.Alerts).
		Msg("assessment sweep completed")

	return result
}

// Prune removes location samples older than the retention window.
func (j *SweepJob) Prune(ctx context.Context) (int64, error) {
	pruned, err := j.trails.Prune(ctx, j.config.Retention)
	if err != nil {
		j.logger.Error().Err(err).Msg("trail prune failed")
		return 0, err
	}

	j.logger.Info().
		Int64("pruned", pruned).
		Dur("retention", j.config.Retention).
		Msg("trail prune completed")
	return pruned, nil
}

type touristResult struct {
	touristID string
	skipped   bool
	alerted   bool
	err       error
}

func (j *SweepJob) sweepWorker(ctx context.Context, ids <-chan string, results chan<- touristResult) {
	for id := range ids {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.sweepTourist(ctx, id)
		}
	}
}

// sweepTourist evaluates one tourist and persists the assessment.
func (j *SweepJob) sweepTourist(ctx context.Context, touristID string) touristResult {
	result := touristResult{touristID: touristID}

	touristCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	current, err := j.trails.Latest(touristCtx, touristID)
	if err != nil {
		if errors.Is(err, tracking.ErrNoSamples) {
			// Nothing to assess without a position.
			result.skipped = true
			return result
		}
		result.err = err
		return result
	}

	entries, err := j.itineraries.EvaluationEntries(touristCtx, touristID)
	if err != nil {
		result.err = err
		return result
	}

	history, err := j.trails.EvaluationHistory(touristCtx, touristID)
	if err != nil {
		result.err = err
		return result
	}

	settings := j.policies.Current(touristCtx)
	evaluator := safety.NewEvaluator(safety.EvaluatorConfig{
		Resolver: j.resolver,
		Policy:   settings.SafetyPolicy(),
		Logger:   j.logger,
	})

	assessment, err := evaluator.Evaluate(safety.EvaluationInput{
		Current:   *current,
		Itinerary: entries,
		History:   history,
		Now:       time.Now(),
	})
	if err != nil {
		result.err = err
		return result
	}

	rec := &safety.Record{
		ID:          "asm_" + uuid.New().String()[:22],
		TouristID:   touristID,
		Score:       assessment.Score,
		Reasons:     assessment.Reasons,
		EvaluatedAt: assessment.EvaluatedAt,
	}
	if err := j.assessments.Create(touristCtx, rec); err != nil {
		result.err = err
		return result
	}

	if assessment.Score <= settings.AlertScoreThreshold && j.alerts != nil {
		alert := Alert{
			TouristID:   touristID,
			Score:       assessment.Score,
			Reasons:     assessment.Reasons,
			EvaluatedAt: assessment.EvaluatedAt,
		}
		if err := j.alerts.PublishAlert(touristCtx, alert); err != nil {
			// The assessment is stored; a lost alert is logged, not fatal.
			j.logger.Error().
				Err(err).
				Str("tourist_id", touristID).
				Int("score", assessment.Score).
				Msg("failed to publish alert")
		} else {
			result.alerted = true
		}
	}

	j.logger.Debug().
		Str("tourist_id", touristID).
		Int("score", assessment.Score).
		Strs("reasons", assessment.Reasons).
		Msg("tourist assessed")

	return result
}
