package constants

// Simulation status values
const (
	StatusInProgress  = "in-progress"
	StatusTransferred = "transferred"
	StatusCompleted   = "completed"

	// EndReasonOther is the simulations_ended_total label for any
	// caller-supplied reason other than StatusCompleted.
	EndReasonOther = "other"
)

// Message roles exchanged with the language model
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTagType is applied when a tag is added without a type
const DefaultTagType = "default"

// Default quality metric values for a freshly started simulation.
// Also used as fail-open fallbacks when scoring breaks.
const (
	DefaultQualityScore   = 100.0
	NeutralSentimentScore = 50.0
)

// Simulated network condition sampling bounds
const (
	MinLatencyMS     = 10.0
	MaxLatencyMS     = 100.0
	MinPacketLossPct = 0.0
	MaxPacketLossPct = 2.0
	MinJitterMS      = 0.0
	MaxJitterMS      = 20.0
)

// Redis stream names
const (
	SimulationEventsStream = "simulation_events"
)

// Event types published on the simulation events stream
const (
	EventSimulationStarted     = "simulation.started"
	EventSimulationEnded       = "simulation.ended"
	EventSimulationMessage     = "simulation.message"
	EventSimulationTransferred = "simulation.transferred"
)

// FallbackReply is returned to callers whenever the language model cannot answer
const FallbackReply = "I apologize, but I'm having trouble processing your request at the moment. Could you please repeat that?"

// SystemPrompt is prepended to every conversation sent to the language model
const SystemPrompt = "You are a helpful and professional call center AI assistant. " +
	"Your responses should be clear, concise, and focused on helping the caller. " +
	"Always maintain a professional and friendly tone."
