package simulation

import (
	"sync"
	"time"

	"call-center-simulator/pkg/constants"
	"call-center-simulator/pkg/models"
)

// session is the registry-owned state of one simulated call.
type session struct {
	// turn serializes ProcessMessage calls so a reply is appended before the
	// next caller message of the same session is handled. It is never held
	// together with mu across the model call.
	turn sync.Mutex

	mu             sync.Mutex
	id             string
	startTime      time.Time
	endTime        *time.Time
	isActive       bool
	isRecording    bool
	status         string
	messages       []models.Message
	notes          []models.Note
	tags           []models.Tag
	transferredTo  *models.Agent
	transferReason *string
	quality        models.QualityMetrics
}

func newSession(id string, now time.Time) *session {
	return &session{
		id:        id,
		startTime: now,
		isActive:  true,
		status:    constants.StatusInProgress,
		messages:  []models.Message{},
		notes:     []models.Note{},
		tags:      []models.Tag{},
		quality: models.QualityMetrics{
			QualityScore: constants.DefaultQualityScore,
		},
	}
}

// chatHistory must be called with s.mu held.
func (s *session) chatHistory() []models.ChatMessage {
	history := make([]models.ChatMessage, len(s.messages))
	for i, m := range s.messages {
		history[i] = models.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return history
}

// durationSeconds must be called with s.mu held.
func (s *session) durationSeconds(now time.Time) *int64 {
	var elapsed time.Duration
	switch {
	case s.endTime != nil:
		elapsed = s.endTime.Sub(s.startTime)
	case s.isActive:
		elapsed = now.Sub(s.startTime)
	default:
		return nil
	}

	seconds := int64(elapsed.Seconds())
	return &seconds
}

// snapshot copies the session state. Must be called with s.mu held.
func (s *session) snapshot(now time.Time) models.SimulationDetails {
	details := models.SimulationDetails{
		SimulationID:   s.id,
		StartTime:      s.startTime,
		Duration:       s.durationSeconds(now),
		IsActive:       s.isActive,
		IsRecording:    s.isRecording,
		Status:         s.status,
		MessageCount:   len(s.messages),
		QualityMetrics: s.quality,
		Messages:       append(make([]models.Message, 0, len(s.messages)), s.messages...),
		Notes:          append(make([]models.Note, 0, len(s.notes)), s.notes...),
		Tags:           append(make([]models.Tag, 0, len(s.tags)), s.tags...),
	}

	if s.endTime != nil {
		end := *s.endTime
		details.EndTime = &end
	}
	if s.transferredTo != nil {
		agent := *s.transferredTo
		details.TransferredTo = &agent
	}
	if s.transferReason != nil {
		reason := *s.transferReason
		details.TransferReason = &reason
	}

	return details
}
