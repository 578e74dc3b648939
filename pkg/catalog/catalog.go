// Package catalog supplies departments and AI assistants to the editor.
// Without an external source the built-in defaults are used.
package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/flowbuilder/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultDepartments is the built-in catalog of six departments.
var DefaultDepartments = []domain.Department{
	{ID: "customer-service", Name: "Customer Service", Color: "#3b82f6", AgentIDs: []string{"agent-anna", "agent-erik"}},
	{ID: "technical-support", Name: "Technical Support", Color: "#ef4444", AgentIDs: []string{"agent-lars", "agent-maja"}},
	{ID: "sales", Name: "Sales", Color: "#22c55e", AgentIDs: []string{"agent-sofia"}},
	{ID: "billing", Name: "Billing", Color: "#f59e0b", AgentIDs: []string{"agent-oskar"}},
	{ID: "delivery", Name: "Delivery", Color: "#8b5cf6", AgentIDs: []string{"agent-elsa", "agent-nils"}},
	{ID: "kitchen", Name: "Kitchen", Color: "#ec4899", AgentIDs: []string{"agent-karin"}},
}

// StubAssistants stands in for a live assistant source.
var StubAssistants = []domain.Assistant{
	{ID: "asst-general", Name: "General Assistant", Department: "customer-service"},
	{ID: "asst-tech", Name: "Tech Helper", Department: "technical-support"},
	{ID: "asst-sales", Name: "Sales Advisor", Department: "sales"},
	{ID: "asst-billing", Name: "Billing Assistant", Department: "billing"},
}

// Static serves fixed lists. It implements ports.DepartmentCatalog and ports.AssistantCatalog.
type Static struct {
	DepartmentList []domain.Department `yaml:"departments"`
	AssistantList  []domain.Assistant  `yaml:"assistants"`
}

// Default returns the built-in catalog.
func Default() *Static {
	return &Static{
		DepartmentList: cloneDepartments(DefaultDepartments),
		AssistantList:  append([]domain.Assistant(nil), StubAssistants...),
	}
}

// Departments returns the department list in order.
func (s *Static) Departments(ctx context.Context) ([]domain.Department, error) {
	return cloneDepartments(s.DepartmentList), nil
}

// Assistants returns the assistant list.
func (s *Static) Assistants(ctx context.Context) ([]domain.Assistant, error) {
	return append([]domain.Assistant(nil), s.AssistantList...), nil
}

// Department finds a department by id.
func (s *Static) Department(id string) (domain.Department, bool) {
	for _, d := range s.DepartmentList {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Department{}, false
}

// LoadFile reads a YAML catalog. Missing sections fall back to the defaults.
//
//	departments:
//	  - id: sales
//	    name: Sales
//	    color: "#22c55e"
//	    agent_ids: [agent-sofia]
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Static, error) {
	var s Static
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[string]bool)
	for i, d := range s.DepartmentList {
		if d.ID == "" {
			return nil, fmt.Errorf("parse catalog: department %d has no id", i)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("parse catalog: duplicate department %q", d.ID)
		}
		seen[d.ID] = true
	}
	if len(s.DepartmentList) == 0 {
		s.DepartmentList = cloneDepartments(DefaultDepartments)
	}
	if len(s.AssistantList) == 0 {
		s.AssistantList = append([]domain.Assistant(nil), StubAssistants...)
	}
	return &s, nil
}

func cloneDepartments(in []domain.Department) []domain.Department {
	out := make([]domain.Department, len(in))
	for i, d := range in {
		d.AgentIDs = append([]string(nil), d.AgentIDs...)
		out[i] = d
	}
	return out
}
