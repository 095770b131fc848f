package models

import "time"

// Message is one turn of a simulated call conversation
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatMessage is the role/content view of a Message sent to the language model
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Note is a free-text annotation attached to a simulation
type Note struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Tag labels a simulation for later filtering
type Tag struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Agent is a transfer target from the static agent catalog
type Agent struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// QualityMetrics holds the simulated call-quality numbers of a session.
// None of these are measured from a real transport.
type QualityMetrics struct {
	Latency        float64 `json:"latency"`     // ms
	PacketLoss     float64 `json:"packet_loss"` // percent
	Jitter         float64 `json:"jitter"`      // ms
	QualityScore   float64 `json:"quality_score"`
	SentimentScore float64 `json:"sentiment_score"`
	ResolutionTime int64   `json:"resolution_time"` // seconds
}

// SimulationDetails is a point-in-time snapshot of a simulation session
type SimulationDetails struct {
	SimulationID   string         `json:"simulation_id"`
	StartTime      time.Time      `json:"start_time"`
	EndTime        *time.Time     `json:"end_time"`
	Duration       *int64         `json:"duration"` // seconds
	IsActive       bool           `json:"is_active"`
	IsRecording    bool           `json:"is_recording"`
	Status         string         `json:"status"`
	TransferredTo  *Agent         `json:"transferred_to"`
	TransferReason *string        `json:"transfer_reason"`
	MessageCount   int            `json:"message_count"`
	QualityMetrics QualityMetrics `json:"quality_metrics"`
	Messages       []Message      `json:"messages"`
	Notes          []Note         `json:"notes"`
	Tags           []Tag          `json:"tags"`
}

// Event describes a simulation lifecycle change published on the event stream
type Event struct {
	SimulationID string            `json:"simulation_id"`
	Type         string            `json:"type"`
	OccurredAt   time.Time         `json:"occurred_at"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}
