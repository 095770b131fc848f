package scoring

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"call-center-simulator/pkg/constants"
	"call-center-simulator/pkg/models"
)

// Composite quality score weights
const (
	latencyWeight    = 0.4
	packetLossWeight = 0.4
	jitterWeight     = 0.2
)

// QualitySimulator draws simulated network conditions and derives a
// call-quality score from them.
type QualitySimulator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *logrus.Logger
}

func NewQualitySimulator(logger *logrus.Logger) *QualitySimulator {
	return NewQualitySimulatorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())), logger)
}

// NewQualitySimulatorWithRand uses rng as the sampling source.
func NewQualitySimulatorWithRand(rng *rand.Rand, logger *logrus.Logger) *QualitySimulator {
	return &QualitySimulator{
		rng:    rng,
		logger: logger,
	}
}

// UpdateQualityMetrics resamples latency, packet loss and jitter into m and
// recomputes the quality score. When end is set the resolution time is
// refreshed as well. Any failure leaves QualityScore at 100.
func (qs *QualitySimulator) UpdateQualityMetrics(m *models.QualityMetrics, start time.Time, end *time.Time) {
	defer func() {
		if r := recover(); r != nil {
			qs.logger.WithField("panic", r).Error("Error updating quality metrics")
			m.QualityScore = constants.DefaultQualityScore
		}
	}()

	latency, packetLoss, jitter := qs.sample()

	m.Latency = latency
	m.PacketLoss = packetLoss
	m.Jitter = jitter
	m.QualityScore = QualityScore(latency, packetLoss, jitter)

	if end != nil {
		m.ResolutionTime = int64(end.Sub(start).Seconds())
	}
}

func (qs *QualitySimulator) sample() (latency, packetLoss, jitter float64) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	latency = qs.uniform(constants.MinLatencyMS, constants.MaxLatencyMS)
	packetLoss = qs.uniform(constants.MinPacketLossPct, constants.MaxPacketLossPct)
	jitter = qs.uniform(constants.MinJitterMS, constants.MaxJitterMS)
	return latency, packetLoss, jitter
}

// uniform must be called with qs.mu held.
func (qs *QualitySimulator) uniform(lo, hi float64) float64 {
	return lo + qs.rng.Float64()*(hi-lo)
}

// QualityScore combines network conditions into a 0-100 score.
func QualityScore(latency, packetLoss, jitter float64) float64 {
	latencyScore := math.Max(0, 100-latency)
	packetLossScore := math.Max(0, 100-packetLoss*50)
	jitterScore := math.Max(0, 100-jitter*5)

	return latencyScore*latencyWeight + packetLossScore*packetLossWeight + jitterScore*jitterWeight
}
