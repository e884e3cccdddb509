package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubHandler consumes sweep job messages and publishes alerts.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	sweepJob         *SweepJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	SweepJob         *SweepJob
	Logger           zerolog.Logger
}

// JobMessage represents a worker job message.
type JobMessage struct {
	JobType string `json:"job_type"`

	// TouristIDs limits an assessment sweep to the listed tourists; empty
	// sweeps everyone with a stored trail.
	TouristIDs []string `json:"tourist_ids,omitempty"`
}

// Job types accepted on the subscription.
const (
	JobTypeAssessmentSweep = "assessment_sweep"
	JobTypeTrailPrune      = "trail_prune"
)

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		sweepJob:         cfg.SweepJob,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var job JobMessage
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch job.JobType {
	case JobTypeAssessmentSweep:
		err = h.handleAssessmentSweep(ctx, job)
	case JobTypeTrailPrune:
		_, err = h.sweepJob.Prune(ctx)
	default:
		logger.Warn().Str("job_type", job.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	duration := time.Since(startTime)
	logger.Info().
		Str("job_type", job.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleAssessmentSweep(ctx context.Context, job JobMessage) error {
	result := h.sweepJob.Run(ctx, job.TouristIDs)

	// Consider the run failed when failures outnumber evaluations.
	if result.Failed > result.Evaluated {
		return fmt.Errorf("too many sweep failures: %d/%d", result.Failed, result.TotalTourists)
	}
	return nil
}

// PubSubAlertPublisher publishes alerts to a Pub/Sub topic.
type PubSubAlertPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
	logger    zerolog.Logger
}

// NewPubSubAlertPublisher creates an alert publisher with its own client. The
// sweep job is wired to it before the subscription handler starts.
func NewPubSubAlertPublisher(ctx context.Context, projectID, topicName string, logger zerolog.Logger) (*PubSubAlertPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubAlertPublisher{
		client:    client,
		publisher: client.Publisher(topicName),
		topicName: topicName,
		logger:    logger,
	}, nil
}

// Close closes the publisher's Pub/Sub client.
func (p *PubSubAlertPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

// PublishAlert publishes one alert message and waits for confirmation.
func (p *PubSubAlertPublisher) PublishAlert(ctx context.Context, alert Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("encoding alert: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing alert to %s: %w", p.topicName, err)
	}

	p.logger.Debug().
		Str("tourist_id", alert.TouristID).
		Int("score", alert.Score).
		Msg("alert published")
	return nil
}
