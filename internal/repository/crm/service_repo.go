package crm

import (
	"context"
	"fmt"

	"go-restaurant-onboarding/internal/domain"
)

type serviceRepository struct {
	client *Client
}

func NewServiceRepository(client *Client) domain.ServiceRepository {
	return &serviceRepository{client: client}
}

// ResolveNames maps service ids to display names in a single filtered query.
// Ids missing from the catalog are simply absent from the result.
func (r *serviceRepository) ResolveNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	var rows []struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	filters := []Filter{In("name", ids)}
	if err := r.client.List(ctx, DoctypeService, filters, []string{"name", "title"}, len(ids), &rows); err != nil {
		return nil, fmt.Errorf("resolve service names: %w", err)
	}

	names := make(map[string]string, len(rows))
	for _, row := range rows {
		names[row.Name] = row.Title
	}
	return names, nil
}

// List returns the full service catalog for the wizard
func (r *serviceRepository) List(ctx context.Context) ([]domain.CatalogService, error) {
	var services []domain.CatalogService
	fields := []string{"name", "title", "description"}
	if err := r.client.List(ctx, DoctypeService, nil, fields, 0, &services); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}
