package scoring

import (
	"strings"

	"github.com/sirupsen/logrus"

	"call-center-simulator/pkg/constants"
)

var positiveWords = map[string]struct{}{
	"happy":     {},
	"great":     {},
	"excellent": {},
	"good":      {},
	"thanks":    {},
	"helpful":   {},
}

var negativeWords = map[string]struct{}{
	"bad":        {},
	"poor":       {},
	"terrible":   {},
	"unhappy":    {},
	"frustrated": {},
	"angry":      {},
}

// EstimateSentiment scores text on a 0-100 scale from keyword counts.
// 0 means every matched word was negative, 100 every matched word positive,
// and 50 is returned for balanced text or text without any keyword.
func EstimateSentiment(text string) float64 {
	var positive, negative int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if _, ok := positiveWords[word]; ok {
			positive++
		}
		if _, ok := negativeWords[word]; ok {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return constants.NeutralSentimentScore
	}

	balance := float64(positive-negative) / float64(total)
	return (balance + 1) * 50
}

// ScoreSentiment is EstimateSentiment with the fail-open policy applied:
// a panic while scoring yields the neutral score.
func ScoreSentiment(text string, logger *logrus.Logger) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Error analyzing sentiment")
			score = constants.NeutralSentimentScore
		}
	}()

	return EstimateSentiment(text)
}
