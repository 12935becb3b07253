package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/pkg/logger"
)

type serviceWriter struct {
	serviceRepo domain.ServiceRepository
	leadRepo    domain.LeadRepository
	now         func() time.Time
}

func NewServiceWriter(serviceRepo domain.ServiceRepository, leadRepo domain.LeadRepository) domain.ServiceWriter {
	return &serviceWriter{
		serviceRepo: serviceRepo,
		leadRepo:    leadRepo,
		now:         time.Now,
	}
}

// SetServices replaces the Lead's whole service selection. An empty id list
// is an intentional deselect-all; callers distinguish that from "services not
// submitted" before ever reaching this method.
func (w *serviceWriter) SetServices(ctx context.Context, lead *domain.Lead, serviceIDs []string) (*domain.Lead, error) {
	if len(serviceIDs) == 0 {
		return w.leadRepo.Update(ctx, lead.Name, map[string]interface{}{
			"services":           []domain.ServiceSelection{},
			"service_names":      "",
			"service_names_list": "",
		})
	}

	// One filtered query resolves every display name; individual misses fall
	// back to the raw id so a catalog gap never blocks the selection
	names, err := w.serviceRepo.ResolveNames(ctx, serviceIDs)
	if err != nil {
		logger.Log.Warn("Service name resolution failed, falling back to ids", "error", err)
		names = map[string]string{}
	}

	today := w.now().Format(domain.DateFormat)
	rows := make([]domain.ServiceSelection, 0, len(serviceIDs))
	displayNames := make([]string, 0, len(serviceIDs))
	for i, id := range serviceIDs {
		name, ok := names[id]
		if !ok || strings.TrimSpace(name) == "" {
			name = id
		}
		rows = append(rows, domain.ServiceSelection{
			Service:       id,
			ServiceName:   name,
			SelectionDate: today,
			TermsAccepted: 1,
			Idx:           i + 1,
		})
		displayNames = append(displayNames, name)
	}

	joined := strings.Join(displayNames, ", ")
	return w.leadRepo.Update(ctx, lead.Name, map[string]interface{}{
		"services":           rows,
		"service_names":      joined,
		"service_names_list": strings.Join(displayNames, ","),
	})
}

// ListCatalog returns the service catalog for the wizard
func (w *serviceWriter) ListCatalog(ctx context.Context) ([]domain.CatalogService, error) {
	services, err := w.serviceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load service catalog: %w", err)
	}
	return services, nil
}
