package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"call-center-simulator/pkg/analytics"
	"call-center-simulator/pkg/simulation"
)

type Handler struct {
	registry *simulation.Registry
	logger   *logrus.Logger
	podID    string
}

func NewHandler(registry *simulation.Registry, logger *logrus.Logger, podID string) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
		podID:    podID,
	}
}

type simulationRequest struct {
	SimulationID string `json:"simulation_id"`
	Reason       string `json:"reason"`
	Message      string `json:"message"`
	AgentID      string `json:"agent_id"`
	Content      string `json:"content"`
	Name         string `json:"name"`
	Type         string `json:"type"`
}

func (h *Handler) StartSimulation(w http.ResponseWriter, r *http.Request) {
	simulationID := uuid.New().String()

	if !h.registry.StartSimulation(simulationID) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"detail": "Could not start simulation"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"simulation_id": simulationID})
}

func (h *Handler) EndSimulation(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	if req.SimulationID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing simulation_id"})
		return
	}

	if !h.registry.EndSimulation(req.SimulationID, req.Reason) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"detail": "Simulation not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success"})
}

func (h *Handler) ProcessMessage(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	if req.SimulationID == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing required fields"})
		return
	}

	reply, ok := h.registry.ProcessMessage(r.Context(), req.SimulationID, req.Message)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"detail": "Simulation not found or inactive"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"response": reply})
}

func (h *Handler) TransferCall(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	if req.SimulationID == "" || req.AgentID == "" || req.Reason == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing required fields"})
		return
	}

	if !h.registry.TransferCall(req.SimulationID, req.AgentID, req.Reason) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Could not transfer call"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Call transferred successfully",
	})
}

func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	if req.SimulationID == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing required fields"})
		return
	}

	if !h.registry.AddNote(req.SimulationID, req.Content) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Could not add note"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Note added successfully",
	})
}

func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	if req.SimulationID == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing required fields"})
		return
	}

	if !h.registry.AddTag(req.SimulationID, req.Name, req.Type) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Could not add tag"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Tag added successfully",
	})
}

func (h *Handler) ToggleRecording(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	if req.SimulationID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing simulation_id"})
		return
	}

	recording, ok := h.registry.ToggleRecording(req.SimulationID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"detail": "Simulation not found or inactive"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"simulation_id": req.SimulationID,
		"is_recording":  recording,
	})
}

func (h *Handler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	simulationID := mux.Vars(r)["id"]

	details, ok := h.registry.GetSimulationDetails(simulationID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"detail": "Simulation not found"})
		return
	}

	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"simulations": h.registry.ListSimulations(),
	})
}

func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"agents": h.registry.Agents(),
	})
}

func (h *Handler) CallStatistics(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Fetching call statistics")
	writeJSON(w, http.StatusOK, analytics.CallStatistics(h.registry.ListSimulations()))
}

func (h *Handler) CallHistory(w http.ResponseWriter, r *http.Request) {
	simulationID := mux.Vars(r)["id"]
	h.logger.WithField("simulation_id", simulationID).Debug("Fetching call history")

	details, ok := h.registry.GetSimulationDetails(simulationID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"detail": "Call not found"})
		return
	}

	writeJSON(w, http.StatusOK, analytics.BuildCallHistory(*details))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "healthy",
		"pod_id":             h.podID,
		"active_simulations": h.registry.ActiveCount(),
		"timestamp":          time.Now(),
	})
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (simulationRequest, bool) {
	var req simulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
