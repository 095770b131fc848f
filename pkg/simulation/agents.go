package simulation

import "call-center-simulator/pkg/models"

// DefaultAgents is the transfer target catalog served by the simulator.
func DefaultAgents() []models.Agent {
	return []models.Agent{
		{ID: "agent1", Name: "John Smith", Department: "Technical Support"},
		{ID: "agent2", Name: "Sarah Johnson", Department: "Billing"},
		{ID: "agent3", Name: "Mike Wilson", Department: "Customer Service"},
	}
}

// AgentCatalog is a read-only lookup of transfer targets.
type AgentCatalog struct {
	agents []models.Agent
	byID   map[string]models.Agent
}

func NewAgentCatalog(agents []models.Agent) *AgentCatalog {
	c := &AgentCatalog{
		agents: make([]models.Agent, len(agents)),
		byID:   make(map[string]models.Agent, len(agents)),
	}
	copy(c.agents, agents)
	for _, a := range agents {
		c.byID[a.ID] = a
	}
	return c
}

func (c *AgentCatalog) Find(id string) (models.Agent, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// List returns a copy of the catalog in declaration order.
func (c *AgentCatalog) List() []models.Agent {
	out := make([]models.Agent, len(c.agents))
	copy(out, c.agents)
	return out
}
