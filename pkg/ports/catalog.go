package ports

import (
	"context"

	"github.com/aretw0/flowbuilder/pkg/domain"
)

// DepartmentCatalog supplies the ordered list of routing targets for Handoff nodes.
type DepartmentCatalog interface {
	Departments(ctx context.Context) ([]domain.Department, error)
}

// AssistantCatalog supplies the AI assistants selectable by Message nodes.
type AssistantCatalog interface {
	Assistants(ctx context.Context) ([]domain.Assistant, error)
}
