package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"call-center-simulator/pkg/config"
	"call-center-simulator/pkg/constants"
	"call-center-simulator/pkg/metrics"
	"call-center-simulator/pkg/models"
)

// StreamConsumer reads simulation events through a consumer group and
// records them in metrics and the audit log.
type StreamConsumer struct {
	rdb          *redis.Client
	config       *config.Config
	logger       *logrus.Logger
	metrics      *metrics.Metrics
	consumerName string
	stopOnce     sync.Once
	stopCh       chan struct{}
}

func NewStreamConsumer(rdb *redis.Client, config *config.Config, logger *logrus.Logger, metrics *metrics.Metrics) *StreamConsumer {
	consumerName := fmt.Sprintf("consumer-%s", config.PodID)

	return &StreamConsumer{
		rdb:          rdb,
		config:       config,
		logger:       logger,
		metrics:      metrics,
		consumerName: consumerName,
		stopCh:       make(chan struct{}),
	}
}

func (sc *StreamConsumer) Start(ctx context.Context) error {
	sc.logger.WithField("consumer_name", sc.consumerName).Info("Starting simulation event consumer")

	if err := sc.createConsumerGroup(ctx); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	go sc.consumeLoop(ctx)
	go sc.pendingMessagesRecovery(ctx)

	return nil
}

func (sc *StreamConsumer) Stop() {
	sc.stopOnce.Do(func() { close(sc.stopCh) })
}

func (sc *StreamConsumer) createConsumerGroup(ctx context.Context) error {
	err := sc.rdb.XGroupCreateMkStream(ctx, constants.SimulationEventsStream, sc.config.EventConsumerGroup, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}

	sc.logger.WithField("consumer_group", sc.config.EventConsumerGroup).Info("Consumer group ready")
	return nil
}

func (sc *StreamConsumer) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sc.stopCh:
			return
		default:
			sc.consumeMessages(ctx)
		}
	}
}

func (sc *StreamConsumer) consumeMessages(ctx context.Context) {
	streams, err := sc.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    sc.config.EventConsumerGroup,
		Consumer: sc.consumerName,
		Streams:  []string{constants.SimulationEventsStream, ">"},
		Count:    10,
		Block:    1 * time.Second,
	}).Result()

	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			sc.logger.WithError(err).Error("Failed to read from stream")
			// avoid spinning while redis is unreachable
			time.Sleep(time.Second)
		}
		return
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			sc.processMessage(ctx, message)
		}
	}
}

func (sc *StreamConsumer) processMessage(ctx context.Context, message redis.XMessage) {
	event, err := parseEvent(message)
	if err != nil {
		sc.logger.WithError(err).WithField("message_id", message.ID).Error("Failed to parse simulation event")
		sc.metrics.StreamEventsProcessed.WithLabelValues("unknown", "parse_error").Inc()
		// malformed entries are acknowledged so they are not redelivered
		sc.acknowledgeMessage(ctx, message.ID)
		return
	}

	if err := sc.acknowledgeMessage(ctx, message.ID); err != nil {
		sc.logger.WithError(err).WithField("message_id", message.ID).Error("Failed to acknowledge message")
		sc.metrics.StreamEventsProcessed.WithLabelValues(event.Type, "ack_error").Inc()
		return
	}

	sc.metrics.StreamEventsProcessed.WithLabelValues(event.Type, "success").Inc()

	sc.logger.WithFields(logrus.Fields{
		"simulation_id": event.SimulationID,
		"type":          event.Type,
		"occurred_at":   event.OccurredAt,
		"message_id":    message.ID,
	}).Info("Simulation event received")
}

func parseEvent(message redis.XMessage) (*models.Event, error) {
	event := &models.Event{}

	if data, ok := message.Values["event_data"].(string); ok && data != "" {
		if err := json.Unmarshal([]byte(data), event); err != nil {
			return nil, fmt.Errorf("invalid event_data: %w", err)
		}
	}

	if id, ok := message.Values["simulation_id"].(string); ok && id != "" {
		event.SimulationID = id
	} else if event.SimulationID == "" {
		return nil, fmt.Errorf("missing or invalid simulation_id")
	}

	if eventType, ok := message.Values["type"].(string); ok && eventType != "" {
		event.Type = eventType
	} else if event.Type == "" {
		return nil, fmt.Errorf("missing or invalid type")
	}

	if occurredStr, ok := message.Values["occurred_at"].(string); ok {
		occurred, err := strconv.ParseInt(occurredStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid occurred_at format: %w", err)
		}
		event.OccurredAt = time.UnixMilli(occurred)
	}

	return event, nil
}

func (sc *StreamConsumer) acknowledgeMessage(ctx context.Context, messageID string) error {
	return sc.rdb.XAck(ctx, constants.SimulationEventsStream, sc.config.EventConsumerGroup, messageID).Err()
}

func (sc *StreamConsumer) pendingMessagesRecovery(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sc.stopCh:
			return
		case <-ticker.C:
			sc.processPendingMessages(ctx)
		}
	}
}

func (sc *StreamConsumer) processPendingMessages(ctx context.Context) {
	pending, err := sc.rdb.XPending(ctx, constants.SimulationEventsStream, sc.config.EventConsumerGroup).Result()
	if err != nil {
		sc.logger.WithError(err).Error("Failed to get pending messages")
		return
	}

	if pending.Count == 0 {
		return
	}

	sc.logger.WithField("pending_count", pending.Count).Info("Processing pending messages")

	messages, _, err := sc.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   constants.SimulationEventsStream,
		Group:    sc.config.EventConsumerGroup,
		Consumer: sc.consumerName,
		MinIdle:  1 * time.Minute,
		Count:    10,
		Start:    "0-0",
	}).Result()
	if err != nil {
		sc.logger.WithError(err).Error("Failed to auto-claim pending messages")
		return
	}

	for _, message := range messages {
		sc.processMessage(ctx, message)
	}
}
