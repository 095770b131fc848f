package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"call-center-simulator/pkg/config"
	"call-center-simulator/pkg/constants"
	"call-center-simulator/pkg/metrics"
	"call-center-simulator/pkg/models"
)

const drainTimeout = 5 * time.Second

// StreamPublisher queues events in memory and appends them to the
// simulation events Redis stream from a single goroutine.
type StreamPublisher struct {
	rdb      *redis.Client
	config   *config.Config
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	events   chan models.Event
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewStreamPublisher(rdb *redis.Client, config *config.Config, logger *logrus.Logger, metrics *metrics.Metrics) *StreamPublisher {
	bufferSize := config.EventBufferSize
	if bufferSize <= 0 {
		bufferSize = 1
	}

	return &StreamPublisher{
		rdb:     rdb,
		config:  config,
		logger:  logger,
		metrics: metrics,
		events:  make(chan models.Event, bufferSize),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

func (sp *StreamPublisher) Start(ctx context.Context) error {
	sp.logger.WithField("stream", constants.SimulationEventsStream).Info("Starting simulation event publisher")

	go sp.publishLoop(ctx)

	return nil
}

// Stop flushes queued events and waits for the publish loop to exit. It is
// safe to call more than once.
func (sp *StreamPublisher) Stop() {
	sp.stopOnce.Do(func() { close(sp.stopCh) })
	<-sp.doneCh
}

// Record queues event for publishing. Events are dropped when the queue is full.
func (sp *StreamPublisher) Record(event models.Event) {
	select {
	case sp.events <- event:
		sp.metrics.EventsPublished.WithLabelValues("queued").Inc()
	default:
		sp.metrics.EventsPublished.WithLabelValues("dropped").Inc()
		sp.logger.WithFields(logrus.Fields{
			"simulation_id": event.SimulationID,
			"type":          event.Type,
		}).Warn("Event queue full, dropping simulation event")
	}
}

func (sp *StreamPublisher) publishLoop(ctx context.Context) {
	defer close(sp.doneCh)

	for {
		select {
		case <-ctx.Done():
			sp.drain()
			return
		case <-sp.stopCh:
			sp.drain()
			return
		case event := <-sp.events:
			sp.publish(ctx, event)
		}
	}
}

func (sp *StreamPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case event := <-sp.events:
			sp.publish(ctx, event)
		default:
			return
		}
	}
}

func (sp *StreamPublisher) publish(ctx context.Context, event models.Event) {
	messageID, err := sp.publishEvent(ctx, event)
	if err != nil {
		sp.metrics.EventsPublished.WithLabelValues("error").Inc()
		sp.logger.WithError(err).WithFields(logrus.Fields{
			"simulation_id": event.SimulationID,
			"type":          event.Type,
		}).Error("Failed to publish simulation event")
		return
	}

	sp.metrics.EventsPublished.WithLabelValues("published").Inc()
	sp.logger.WithFields(logrus.Fields{
		"simulation_id": event.SimulationID,
		"type":          event.Type,
		"message_id":    messageID,
	}).Debug("Published simulation event to stream")
}

func (sp *StreamPublisher) publishEvent(ctx context.Context, event models.Event) (string, error) {
	eventData, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal simulation event: %w", err)
	}

	streamArgs := &redis.XAddArgs{
		Stream: constants.SimulationEventsStream,
		Values: map[string]interface{}{
			"simulation_id": event.SimulationID,
			"type":          event.Type,
			"occurred_at":   event.OccurredAt.UnixMilli(),
			"pod_id":        sp.config.PodID,
			"event_data":    string(eventData),
		},
	}

	messageID, err := sp.rdb.XAdd(ctx, streamArgs).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add message to stream: %w", err)
	}

	return messageID, nil
}
