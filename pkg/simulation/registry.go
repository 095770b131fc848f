package simulation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"call-center-simulator/pkg/constants"
	"call-center-simulator/pkg/events"
	"call-center-simulator/pkg/metrics"
	"call-center-simulator/pkg/models"
	"call-center-simulator/pkg/scoring"
)

// Responder produces the assistant reply for a conversation. Implementations
// must not fail: errors are turned into a fallback reply.
type Responder interface {
	GetResponse(ctx context.Context, history []models.ChatMessage) string
}

// Registry owns every simulation session for the lifetime of the process.
// Operations never return errors: a missing session, an inactive session and
// an unexpected internal fault all collapse to the failure value and are
// logged.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session

	responder Responder
	agents    *AgentCatalog
	quality   *scoring.QualitySimulator
	sink      events.Sink
	logger    *logrus.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*Registry)

// WithEventSink publishes lifecycle events to sink.
func WithEventSink(sink events.Sink) Option {
	return func(r *Registry) {
		r.sink = sink
	}
}

// WithAgents replaces the default transfer target catalog.
func WithAgents(agents []models.Agent) Option {
	return func(r *Registry) {
		r.agents = NewAgentCatalog(agents)
	}
}

// WithQualitySimulator replaces the network condition sampler.
func WithQualitySimulator(qs *scoring.QualitySimulator) Option {
	return func(r *Registry) {
		r.quality = qs
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(responder Responder, logger *logrus.Logger, metrics *metrics.Metrics, opts ...Option) *Registry {
	r := &Registry{
		sessions:  make(map[string]*session),
		responder: responder,
		agents:    NewAgentCatalog(DefaultAgents()),
		quality:   scoring.NewQualitySimulator(logger),
		sink:      events.NoopSink{},
		logger:    logger,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// StartSimulation registers a new active session under id. It fails when id
// was already used.
func (r *Registry) StartSimulation(id string) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logFailure("Error starting simulation", id, rec)
			ok = false
		}
	}()

	now := r.now()
	if !r.register(id, now) {
		return false
	}

	r.metrics.SimulationsStarted.Inc()
	r.metrics.ActiveSimulations.Inc()
	r.emit(id, constants.EventSimulationStarted, now, nil)

	r.logger.WithField("simulation_id", id).Info("Started simulation")
	return true
}

func (r *Registry) register(id string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; exists {
		return false
	}
	r.sessions[id] = newSession(id, now)
	return true
}

// EndSimulation marks the session inactive with status reason ("completed"
// when empty). Ending an already ended session stamps it again.
func (r *Registry) EndSimulation(id, reason string) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logFailure("Error ending simulation", id, rec)
			ok = false
		}
	}()

	if reason == "" {
		reason = constants.StatusCompleted
	}

	s := r.lookup(id)
	if s == nil {
		return false
	}

	now := r.now()
	wasActive := r.endSession(s, reason, now)

	if wasActive {
		r.metrics.ActiveSimulations.Dec()
	}
	r.metrics.SimulationsEnded.WithLabelValues(endReasonLabel(reason)).Inc()
	r.emit(id, constants.EventSimulationEnded, now, map[string]string{"reason": reason})

	r.logger.WithFields(logrus.Fields{
		"simulation_id": id,
		"reason":        reason,
	}).Info("Ended simulation")
	return true
}

// endReasonLabel keeps the metric label set bounded. The raw reason stays in
// the session status, the log line and the event attributes.
func endReasonLabel(reason string) string {
	if reason == constants.StatusCompleted {
		return constants.StatusCompleted
	}
	return constants.EndReasonOther
}

func (r *Registry) endSession(s *session, reason string, now time.Time) (wasActive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive = s.isActive
	s.isActive = false
	s.endTime = &now
	s.status = reason
	return wasActive
}

// ProcessMessage records a caller message, refreshes the quality and
// sentiment metrics, and returns the assistant reply. The caller message is
// kept even if the reply turns out to be the fallback. It fails when the
// session is missing or inactive.
func (r *Registry) ProcessMessage(ctx context.Context, id, text string) (reply string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logFailure("Error processing message", id, rec)
			reply, ok = "", false
		}
	}()

	start := time.Now()

	s := r.lookup(id)
	if s == nil {
		return "", false
	}

	s.turn.Lock()
	defer s.turn.Unlock()

	history, quality, ok := r.recordUserMessage(s, text)
	if !ok {
		return "", false
	}

	r.metrics.QualityScore.Observe(quality.QualityScore)
	r.metrics.SentimentScore.Observe(quality.SentimentScore)

	reply = r.responder.GetResponse(ctx, history)

	r.recordAssistantMessage(s, reply)

	r.metrics.MessagesProcessed.Inc()
	r.metrics.MessageProcessingDuration.Observe(time.Since(start).Seconds())
	r.emit(id, constants.EventSimulationMessage, r.now(), nil)

	r.logger.WithFields(logrus.Fields{
		"simulation_id":   id,
		"quality_score":   quality.QualityScore,
		"sentiment_score": quality.SentimentScore,
	}).Debug("Processed simulation message")

	return reply, true
}

func (r *Registry) recordUserMessage(s *session, text string) ([]models.ChatMessage, models.QualityMetrics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isActive {
		return nil, models.QualityMetrics{}, false
	}

	s.messages = append(s.messages, models.Message{
		Role:      constants.RoleUser,
		Content:   text,
		Timestamp: r.now(),
	})

	r.quality.UpdateQualityMetrics(&s.quality, s.startTime, s.endTime)
	s.quality.SentimentScore = scoring.ScoreSentiment(text, r.logger)

	return s.chatHistory(), s.quality, true
}

func (r *Registry) recordAssistantMessage(s *session, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, models.Message{
		Role:      constants.RoleAssistant,
		Content:   reply,
		Timestamp: r.now(),
	})
}

// TransferCall hands an active session to a catalog agent and records a
// transfer note.
func (r *Registry) TransferCall(id, agentID, reason string) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logFailure("Error transferring call", id, rec)
			ok = false
		}
	}()

	s := r.lookup(id)
	if s == nil {
		return false
	}

	agent, found := r.agents.Find(agentID)
	if !found {
		return false
	}

	now := r.now()
	if !r.transferSession(s, agent, reason, now) {
		return false
	}

	r.metrics.CallsTransferred.WithLabelValues(agent.ID).Inc()
	r.emit(id, constants.EventSimulationTransferred, now, map[string]string{
		"agent_id": agent.ID,
		"reason":   reason,
	})

	r.logger.WithFields(logrus.Fields{
		"simulation_id": id,
		"agent_id":      agent.ID,
		"reason":        reason,
	}).Info("Transferred simulation")
	return true
}

func (r *Registry) transferSession(s *session, agent models.Agent, reason string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isActive {
		return false
	}

	s.transferredTo = &agent
	s.transferReason = &reason
	s.status = constants.StatusTransferred

	s.notes = append(s.notes, models.Note{
		Content:   transferNote(*s.transferredTo, *s.transferReason),
		Timestamp: now,
	})
	return true
}

func transferNote(agent models.Agent, reason string) string {
	return fmt.Sprintf("Call transferred to %s (%s) - Reason: %s", agent.Name, agent.Department, reason)
}

// AddNote appends a note. Ended sessions still accept notes.
func (r *Registry) AddNote(id, content string) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logFailure("Error adding note", id, rec)
			ok = false
		}
	}()

	s := r.lookup(id)
	if s == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = append(s.notes, models.Note{
		Content:   content,
		Timestamp: r.now(),
	})
	return true
}

// AddTag appends a tag, typed "default" when tagType is empty. Ended
// sessions still accept tags.
func (r *Registry) AddTag(id, name, tagType string) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logFailure("Error adding tag", id, rec)
			ok = false
		}
	}()

	if tagType == "" {
		tagType = constants.DefaultTagType
	}

	s := r.lookup(id)
	if s == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tags = append(s.tags, models.Tag{
		Name:      name,
		Type:      tagType,
		Timestamp: r.now(),
	})
	return true
}

// ToggleRecording flips recording on an active session and returns the new
// state. ok is false when the session is missing or inactive, so a false
// recording value with ok set means recording is now off.
func (r *Registry) ToggleRecording(id string) (recording bool, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logFailure("Error toggling recording", id, rec)
			recording, ok = false, false
		}
	}()

	s := r.lookup(id)
	if s == nil {
		return false, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isActive {
		return false, false
	}

	s.isRecording = !s.isRecording
	return s.isRecording, true
}

// GetSimulationDetails returns a snapshot of the session.
func (r *Registry) GetSimulationDetails(id string) (details *models.SimulationDetails, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logFailure("Error getting simulation details", id, rec)
			details, ok = nil, false
		}
	}()

	s := r.lookup(id)
	if s == nil {
		return nil, false
	}

	snapshot := r.snapshot(s)
	return &snapshot, true
}

// ListSimulations returns snapshots of every session, oldest first.
func (r *Registry) ListSimulations() []models.SimulationDetails {
	sessions := r.all()

	list := make([]models.SimulationDetails, 0, len(sessions))
	for _, s := range sessions {
		list = append(list, r.snapshot(s))
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].StartTime.Equal(list[j].StartTime) {
			return list[i].SimulationID < list[j].SimulationID
		}
		return list[i].StartTime.Before(list[j].StartTime)
	})

	return list
}

// ActiveCount returns the number of sessions that have not been ended.
func (r *Registry) ActiveCount() int {
	sessions := r.all()

	active := 0
	for _, s := range sessions {
		s.mu.Lock()
		if s.isActive {
			active++
		}
		s.mu.Unlock()
	}
	return active
}

// Agents returns the transfer target catalog.
func (r *Registry) Agents() []models.Agent {
	return r.agents.List()
}

func (r *Registry) snapshot(s *session) models.SimulationDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(r.now())
}

func (r *Registry) all() []*session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

func (r *Registry) lookup(id string) *session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

func (r *Registry) emit(id, eventType string, at time.Time, attributes map[string]string) {
	r.sink.Record(models.Event{
		SimulationID: id,
		Type:         eventType,
		OccurredAt:   at,
		Attributes:   attributes,
	})
}

func (r *Registry) logFailure(msg, id string, rec interface{}) {
	r.logger.WithFields(logrus.Fields{
		"simulation_id": id,
		"panic":         rec,
	}).Error(msg)
}
