package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"call-center-simulator/pkg/constants"
	"call-center-simulator/pkg/models"
)

func seconds(n int64) *int64 { return &n }

func msg(role, content string) models.Message {
	return models.Message{Role: role, Content: content, Timestamp: time.Now()}
}

func TestCallStatistics_Empty(t *testing.T) {
	assert.Equal(t, Statistics{}, CallStatistics(nil))
}

func TestCallStatistics(t *testing.T) {
	agent := models.Agent{ID: "agent2", Name: "Sarah Johnson", Department: "Billing"}
	sims := []models.SimulationDetails{
		{
			SimulationID:   "a",
			IsActive:       true,
			Duration:       seconds(10),
			Messages:       []models.Message{msg(constants.RoleUser, "hi"), msg(constants.RoleAssistant, "hello")},
			QualityMetrics: models.QualityMetrics{QualityScore: 80, SentimentScore: 50},
		},
		{
			SimulationID:   "b",
			Duration:       seconds(25),
			TransferredTo:  &agent,
			Messages:       []models.Message{msg(constants.RoleUser, "bad"), msg(constants.RoleAssistant, "sorry")},
			QualityMetrics: models.QualityMetrics{QualityScore: 60, SentimentScore: 0},
		},
		{
			SimulationID:   "c",
			Duration:       seconds(0),
			QualityMetrics: models.QualityMetrics{QualityScore: 100},
		},
	}

	stats := CallStatistics(sims)

	assert.Equal(t, 3, stats.TotalCalls)
	assert.Equal(t, 1, stats.ActiveCalls)
	assert.Equal(t, 1, stats.TransferredCalls)
	assert.Equal(t, 4, stats.TotalMessages)
	assert.Equal(t, 11.67, stats.AverageDuration)
	assert.Equal(t, 70.0, stats.AverageQualityScore)
	assert.Equal(t, 25.0, stats.AverageSentimentScore)
}

func TestAnalyzeConversation(t *testing.T) {
	analysis := AnalyzeConversation([]models.Message{
		msg(constants.RoleUser, "abcd"),
		msg(constants.RoleAssistant, "abcdefgh"),
		msg(constants.RoleUser, "ab"),
	})

	assert.Equal(t, RoleCounts{User: 2, Assistant: 1}, analysis.MessageCount)
	assert.Equal(t, 3.0, analysis.AverageResponseLength.User)
	assert.Equal(t, 8.0, analysis.AverageResponseLength.Assistant)
}

func TestAnalyzeConversation_NoMessages(t *testing.T) {
	analysis := AnalyzeConversation(nil)

	assert.Equal(t, RoleCounts{}, analysis.MessageCount)
	assert.Equal(t, RoleAverages{}, analysis.AverageResponseLength)
}

func TestBuildCallHistory(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)
	sim := models.SimulationDetails{
		SimulationID: "sim-1",
		StartTime:    start,
		EndTime:      &end,
		Duration:     seconds(60),
		Status:       constants.StatusCompleted,
		Messages:     []models.Message{msg(constants.RoleUser, "hello")},
	}

	history := BuildCallHistory(sim)

	assert.Equal(t, "sim-1", history.SimulationID)
	assert.Equal(t, constants.StatusCompleted, history.CallDetails.Status)
	assert.Equal(t, int64(60), *history.CallDetails.Duration)
	assert.Equal(t, start, history.CallDetails.StartTime)
	assert.Len(t, history.Messages, 1)
	assert.Equal(t, 1, history.Analysis.MessageCount.User)
}
