package usecase_test

import (
	"context"
	"testing"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSetServices(t *testing.T) {
	ctx := context.Background()
	lead := &domain.Lead{Name: "CRM-LEAD-001"}

	t.Run("Selection replaces the whole child table", func(t *testing.T) {
		serviceRepo := new(MockServiceRepo)
		leadRepo := new(MockLeadRepo)
		w := usecase.NewServiceWriter(serviceRepo, leadRepo)

		serviceRepo.On("ResolveNames", ctx, []string{"SVC-001", "SVC-002"}).Return(map[string]string{
			"SVC-001": "Online Ordering",
			"SVC-002": "Delivery",
		}, nil)
		leadRepo.On("Update", ctx, "CRM-LEAD-001", mock.Anything).Return(lead, nil).Run(func(args mock.Arguments) {
			fields := args.Get(2).(map[string]interface{})
			rows := fields["services"].([]domain.ServiceSelection)
			assert.Len(t, rows, 2)
			assert.Equal(t, "SVC-001", rows[0].Service)
			assert.Equal(t, "Online Ordering", rows[0].ServiceName)
			assert.Equal(t, 1, rows[0].TermsAccepted)
			assert.Equal(t, 1, rows[0].Idx)
			assert.Equal(t, 2, rows[1].Idx)
			assert.Equal(t, "Online Ordering, Delivery", fields["service_names"])
		})

		_, err := w.SetServices(ctx, lead, []string{"SVC-001", "SVC-002"})
		assert.NoError(t, err)
		leadRepo.AssertExpectations(t)
	})

	t.Run("Empty selection clears the collection", func(t *testing.T) {
		serviceRepo := new(MockServiceRepo)
		leadRepo := new(MockLeadRepo)
		w := usecase.NewServiceWriter(serviceRepo, leadRepo)

		leadRepo.On("Update", ctx, "CRM-LEAD-001", mock.Anything).Return(lead, nil).Run(func(args mock.Arguments) {
			fields := args.Get(2).(map[string]interface{})
			assert.Empty(t, fields["services"])
			assert.Equal(t, "", fields["service_names"])
		})

		_, err := w.SetServices(ctx, lead, []string{})
		assert.NoError(t, err)
		serviceRepo.AssertNotCalled(t, "ResolveNames", mock.Anything, mock.Anything)
	})

	t.Run("Catalog gaps fall back to the raw id", func(t *testing.T) {
		serviceRepo := new(MockServiceRepo)
		leadRepo := new(MockLeadRepo)
		w := usecase.NewServiceWriter(serviceRepo, leadRepo)

		serviceRepo.On("ResolveNames", ctx, []string{"SVC-001", "SVC-GONE"}).Return(map[string]string{
			"SVC-001": "Online Ordering",
		}, nil)
		leadRepo.On("Update", ctx, "CRM-LEAD-001", mock.Anything).Return(lead, nil).Run(func(args mock.Arguments) {
			fields := args.Get(2).(map[string]interface{})
			rows := fields["services"].([]domain.ServiceSelection)
			assert.Equal(t, "SVC-GONE", rows[1].ServiceName)
		})

		_, err := w.SetServices(ctx, lead, []string{"SVC-001", "SVC-GONE"})
		assert.NoError(t, err)
	})

	t.Run("Resolution failure never blocks the selection", func(t *testing.T) {
		serviceRepo := new(MockServiceRepo)
		leadRepo := new(MockLeadRepo)
		w := usecase.NewServiceWriter(serviceRepo, leadRepo)

		serviceRepo.On("ResolveNames", ctx, []string{"SVC-001"}).Return(nil, assert.AnError)
		leadRepo.On("Update", ctx, "CRM-LEAD-001", mock.Anything).Return(lead, nil).Run(func(args mock.Arguments) {
			fields := args.Get(2).(map[string]interface{})
			rows := fields["services"].([]domain.ServiceSelection)
			assert.Equal(t, "SVC-001", rows[0].ServiceName)
		})

		_, err := w.SetServices(ctx, lead, []string{"SVC-001"})
		assert.NoError(t, err)
	})
}

func TestListCatalog(t *testing.T) {
	ctx := context.Background()

	serviceRepo := new(MockServiceRepo)
	w := usecase.NewServiceWriter(serviceRepo, new(MockLeadRepo))

	serviceRepo.On("List", ctx).Return([]domain.CatalogService{
		{Name: "SVC-001", Title: "Online Ordering"},
	}, nil)

	services, err := w.ListCatalog(ctx)
	assert.NoError(t, err)
	assert.Len(t, services, 1)
	assert.Equal(t, "Online Ordering", services[0].Title)
}
