// Package analytics aggregates simulation snapshots into call statistics.
// It works on in-memory snapshots only; nothing is read from storage.
package analytics

import (
	"math"
	"time"

	"call-center-simulator/pkg/constants"
	"call-center-simulator/pkg/models"
)

type Statistics struct {
	TotalCalls            int     `json:"total_calls"`
	ActiveCalls           int     `json:"active_calls"`
	TransferredCalls      int     `json:"transferred_calls"`
	AverageDuration       float64 `json:"average_duration"` // seconds
	TotalMessages         int     `json:"total_messages"`
	AverageQualityScore   float64 `json:"average_quality_score"`
	AverageSentimentScore float64 `json:"average_sentiment_score"`
}

type CallDetails struct {
	Status        string        `json:"status"`
	Duration      *int64        `json:"duration"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       *time.Time    `json:"end_time"`
	TransferredTo *models.Agent `json:"transferred_to"`
}

type CallHistory struct {
	SimulationID string               `json:"simulation_id"`
	CallDetails  CallDetails          `json:"call_details"`
	Messages     []models.Message     `json:"messages"`
	Analysis     ConversationAnalysis `json:"analysis"`
}

type RoleCounts struct {
	User      int `json:"user"`
	Assistant int `json:"assistant"`
}

type RoleAverages struct {
	User      float64 `json:"user"`
	Assistant float64 `json:"assistant"`
}

type ConversationAnalysis struct {
	MessageCount          RoleCounts   `json:"message_count"`
	AverageResponseLength RoleAverages `json:"average_response_length"`
}

// CallStatistics summarizes simulations. Averages are rounded to two
// decimals; quality and sentiment averages only count sessions that have
// processed at least one message.
func CallStatistics(simulations []models.SimulationDetails) Statistics {
	var stats Statistics
	var durationTotal, qualityTotal, sentimentTotal float64
	var durationCount, scoredCount int

	for _, sim := range simulations {
		stats.TotalCalls++
		stats.TotalMessages += len(sim.Messages)

		if sim.IsActive {
			stats.ActiveCalls++
		}
		if sim.TransferredTo != nil {
			stats.TransferredCalls++
		}
		if sim.Duration != nil {
			durationTotal += float64(*sim.Duration)
			durationCount++
		}
		if len(sim.Messages) > 0 {
			qualityTotal += sim.QualityMetrics.QualityScore
			sentimentTotal += sim.QualityMetrics.SentimentScore
			scoredCount++
		}
	}

	stats.AverageDuration = average(durationTotal, durationCount)
	stats.AverageQualityScore = average(qualityTotal, scoredCount)
	stats.AverageSentimentScore = average(sentimentTotal, scoredCount)

	return stats
}

// BuildCallHistory returns the detail view of one simulation.
func BuildCallHistory(sim models.SimulationDetails) CallHistory {
	return CallHistory{
		SimulationID: sim.SimulationID,
		CallDetails: CallDetails{
			Status:        sim.Status,
			Duration:      sim.Duration,
			StartTime:     sim.StartTime,
			EndTime:       sim.EndTime,
			TransferredTo: sim.TransferredTo,
		},
		Messages: sim.Messages,
		Analysis: AnalyzeConversation(sim.Messages),
	}
}

// AnalyzeConversation counts messages per role and averages their length in
// characters.
func AnalyzeConversation(messages []models.Message) ConversationAnalysis {
	var analysis ConversationAnalysis
	var userChars, assistantChars int

	for _, m := range messages {
		length := len([]rune(m.Content))
		switch m.Role {
		case constants.RoleUser:
			analysis.MessageCount.User++
			userChars += length
		case constants.RoleAssistant:
			analysis.MessageCount.Assistant++
			assistantChars += length
		}
	}

	analysis.AverageResponseLength.User = average(float64(userChars), analysis.MessageCount.User)
	analysis.AverageResponseLength.Assistant = average(float64(assistantChars), analysis.MessageCount.Assistant)

	return analysis
}

func average(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(total/float64(count)*100) / 100
}
