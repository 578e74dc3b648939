package domain

// Department is a routing target (support team) used to populate Handoff nodes.
type Department struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Color    string   `json:"color" yaml:"color"`
	AgentIDs []string `json:"agent_ids" yaml:"agent_ids"`
}

// Assistant is an AI assistant selectable by a Message node in AI mode.
type Assistant struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Department string `json:"department" yaml:"department"`
}
