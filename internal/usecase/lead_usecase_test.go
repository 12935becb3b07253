package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/internal/repository/crm"
	"go-restaurant-onboarding/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) Resolve(ctx context.Context, email string) (*domain.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func knownIdentity() *domain.Identity {
	return &domain.Identity{
		User: &domain.User{Name: "anna@example.com", Email: "anna@example.com", FirstName: "Anna"},
	}
}

func TestUpsertLeadCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create lead with defaults when none exists", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		leadRepo := new(MockLeadRepo)
		uc := usecase.NewLeadUsecase(identity, leadRepo, nil, nil, newTestValidator())

		identity.On("Resolve", ctx, "anna@example.com").Return(knownIdentity(), nil)
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(nil, nil)
		leadRepo.On("Create", ctx, mock.Anything).Return(&domain.Lead{Name: "CRM-LEAD-001"}, nil).Run(func(args mock.Arguments) {
			fields := args.Get(1).(map[string]interface{})
			assert.Equal(t, "anna@example.com", fields["email"])
			assert.Equal(t, domain.LeadStatusOpen, fields["status"])
			assert.Equal(t, domain.LeadTypeClient, fields["lead_type"])
			assert.Equal(t, domain.RegistrationInProgress, fields["registration_status"])
			assert.Equal(t, "Trattoria Roma", fields["lead_name"])
		})

		result, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{
			Email:       "Anna@Example.com",
			CompanyInfo: &domain.CompanyInfo{CompanyName: "Trattoria Roma", Street: "Main St 1", City: "Berlin"},
		})

		assert.NoError(t, err)
		assert.True(t, result.Summary.Created)
		leadRepo.AssertExpectations(t)
	})

	t.Run("Should fall back to first name for the lead name", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		leadRepo := new(MockLeadRepo)
		uc := usecase.NewLeadUsecase(identity, leadRepo, nil, nil, newTestValidator())

		identity.On("Resolve", ctx, "anna@example.com").Return(knownIdentity(), nil)
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(nil, nil)
		leadRepo.On("Create", ctx, mock.Anything).Return(&domain.Lead{Name: "CRM-LEAD-001"}, nil).Run(func(args mock.Arguments) {
			fields := args.Get(1).(map[string]interface{})
			assert.Equal(t, "Anna", fields["lead_name"])
		})

		_, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{Email: "anna@example.com"})
		assert.NoError(t, err)
	})

	t.Run("Should fail when no account exists for the email", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		leadRepo := new(MockLeadRepo)
		uc := usecase.NewLeadUsecase(identity, leadRepo, nil, nil, newTestValidator())

		identity.On("Resolve", ctx, "ghost@example.com").Return(nil, assert.AnError)

		_, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{Email: "ghost@example.com"})
		assert.Error(t, err)
		leadRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUpsertLeadSectionValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid business contact details are rejected before any write", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		leadRepo := new(MockLeadRepo)
		uc := usecase.NewLeadUsecase(identity, leadRepo, nil, nil, newTestValidator())

		_, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{
			Email: "anna@example.com",
			Businesses: &[]domain.BusinessLocation{
				{Name: "Shop", OwnerEmail: "definitely-not-an-email", OwnerPhone: "abc"},
			},
		})

		assert.Equal(t, http.StatusBadRequest, errorCode(t, err))
		identity.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
		leadRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("Document slots without a key are rejected", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		uc := usecase.NewLeadUsecase(identity, new(MockLeadRepo), nil, nil, newTestValidator())

		_, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{
			Email:     "anna@example.com",
			Documents: &[]domain.DocumentSlot{{Label: "Trade License", Uploaded: true}},
		})

		assert.Equal(t, http.StatusBadRequest, errorCode(t, err))
		identity.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("A nameless business passes validation and reaches the reconciler", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		leadRepo := new(MockLeadRepo)
		reconciler := new(MockReconciler)
		uc := usecase.NewLeadUsecase(identity, leadRepo, reconciler, nil, newTestValidator())

		existing := &domain.Lead{Name: "CRM-LEAD-001", Email: "anna@example.com"}
		identity.On("Resolve", ctx, "anna@example.com").Return(knownIdentity(), nil)
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(existing, nil)
		leadRepo.On("Update", ctx, "CRM-LEAD-001", mock.Anything).Return(existing, nil)
		reconciler.On("ReconcileBusinesses", ctx, mock.Anything, mock.Anything).
			Return(map[int]domain.BusinessStatus{0: {Address: domain.SectionStatus{OK: true}}})

		result, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{
			Email:      "anna@example.com",
			Businesses: &[]domain.BusinessLocation{{City: "Berlin", OwnerEmail: "anna@example.com"}},
		})

		assert.NoError(t, err)
		assert.True(t, result.Summary.Businesses[0].Address.OK)
		reconciler.AssertExpectations(t)
	})
}

func TestUpsertLeadPartialUpdate(t *testing.T) {
	ctx := context.Background()
	existing := &domain.Lead{Name: "CRM-LEAD-001", Email: "anna@example.com", CompanyName: "Trattoria Roma"}

	t.Run("Absent sections must not touch stored fields", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		leadRepo := new(MockLeadRepo)
		uc := usecase.NewLeadUsecase(identity, leadRepo, nil, nil, newTestValidator())

		identity.On("Resolve", ctx, "anna@example.com").Return(knownIdentity(), nil)
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(existing, nil)
		leadRepo.On("Update", ctx, "CRM-LEAD-001", mock.Anything).Return(existing, nil).Run(func(args mock.Arguments) {
			fields := args.Get(2).(map[string]interface{})
			assert.Equal(t, "DE89370400440532013000", fields["iban"])
			assert.Equal(t, "Anna Rossi", fields["account_holder"])
			// Only the submitted section may appear in the delta
			assert.NotContains(t, fields, "company_name")
			assert.NotContains(t, fields, "street")
			assert.NotContains(t, fields, "registration_status")
		})

		_, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{
			Email: "anna@example.com",
			PaymentInfo: &domain.PaymentInfo{
				AccountHolder: "Anna Rossi",
				IBAN:          "DE89 3704 0044 0532 0130 00",
			},
		})
		assert.NoError(t, err)
		leadRepo.AssertExpectations(t)
	})

	t.Run("Country names are normalized to English", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		leadRepo := new(MockLeadRepo)
		uc := usecase.NewLeadUsecase(identity, leadRepo, nil, nil, newTestValidator())

		identity.On("Resolve", ctx, "anna@example.com").Return(knownIdentity(), nil)
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(existing, nil)
		leadRepo.On("Update", ctx, "CRM-LEAD-001", mock.Anything).Return(existing, nil).Run(func(args mock.Arguments) {
			fields := args.Get(2).(map[string]interface{})
			assert.Equal(t, "Germany", fields["country"])
		})

		_, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{
			Email:       "anna@example.com",
			CompanyInfo: &domain.CompanyInfo{Country: "Deutschland", Street: "Main St 1"},
		})
		assert.NoError(t, err)
	})

	t.Run("Submitting with no sections is a no-op", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		leadRepo := new(MockLeadRepo)
		uc := usecase.NewLeadUsecase(identity, leadRepo, nil, nil, newTestValidator())

		identity.On("Resolve", ctx, "anna@example.com").Return(knownIdentity(), nil)
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(existing, nil)

		result, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{Email: "anna@example.com"})
		assert.NoError(t, err)
		assert.Equal(t, "CRM-LEAD-001", result.Lead.Name)
		leadRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpsertLeadDuplicateRace(t *testing.T) {
	ctx := context.Background()

	t.Run("Should recover from the email uniqueness race as an update", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		leadRepo := new(MockLeadRepo)
		uc := usecase.NewLeadUsecase(identity, leadRepo, nil, nil, newTestValidator())

		winner := &domain.Lead{Name: "CRM-LEAD-009", Email: "anna@example.com"}

		identity.On("Resolve", ctx, "anna@example.com").Return(knownIdentity(), nil)
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(nil, nil).Once()
		leadRepo.On("Create", ctx, mock.Anything).Return(nil, crm.ErrDuplicate)
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(winner, nil).Once()
		leadRepo.On("Update", ctx, "CRM-LEAD-009", mock.Anything).Return(winner, nil).Run(func(args mock.Arguments) {
			fields := args.Get(2).(map[string]interface{})
			// Creation defaults belong to the record that won the race
			assert.NotContains(t, fields, "status")
			assert.NotContains(t, fields, "lead_type")
			assert.NotContains(t, fields, "registration_status")
		})

		result, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{
			Email:       "anna@example.com",
			CompanyInfo: &domain.CompanyInfo{CompanyName: "Trattoria Roma", Street: "Main St 1"},
		})

		assert.NoError(t, err)
		assert.False(t, result.Summary.Created)
		leadRepo.AssertExpectations(t)
	})
}

func TestUpsertLeadServiceSelection(t *testing.T) {
	ctx := context.Background()
	existing := &domain.Lead{Name: "CRM-LEAD-001", Email: "anna@example.com"}

	t.Run("Empty services list is an intentional clear", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		leadRepo := new(MockLeadRepo)
		services := new(MockServiceWriter)
		uc := usecase.NewLeadUsecase(identity, leadRepo, nil, services, newTestValidator())

		identity.On("Resolve", ctx, "anna@example.com").Return(knownIdentity(), nil)
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(existing, nil)
		services.On("SetServices", ctx, existing, []string{}).Return(existing, nil)

		empty := []string{}
		result, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{
			Email:    "anna@example.com",
			Services: &empty,
		})

		assert.NoError(t, err)
		assert.True(t, result.Summary.Services.OK)
		services.AssertExpectations(t)
	})

	t.Run("Service write failure is reported, not thrown", func(t *testing.T) {
		identity := new(MockIdentityResolver)
		leadRepo := new(MockLeadRepo)
		services := new(MockServiceWriter)
		uc := usecase.NewLeadUsecase(identity, leadRepo, nil, services, newTestValidator())

		identity.On("Resolve", ctx, "anna@example.com").Return(knownIdentity(), nil)
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(existing, nil)
		services.On("SetServices", ctx, existing, []string{"SVC-001"}).Return(nil, assert.AnError)

		ids := []string{"SVC-001"}
		result, err := uc.UpsertLead(ctx, &domain.LeadUpsertRequest{
			Email:    "anna@example.com",
			Services: &ids,
		})

		assert.NoError(t, err)
		assert.False(t, result.Summary.Services.OK)
		assert.NotEmpty(t, result.Summary.Services.Error)
	})
}

func TestGetRegistrationStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown email reports not started", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := usecase.NewLeadUsecase(nil, leadRepo, nil, nil, newTestValidator())

		leadRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, nil)

		status, err := uc.GetRegistrationStatus(ctx, "Ghost@Example.com")
		assert.NoError(t, err)
		assert.False(t, status.Exists)
		assert.Equal(t, domain.RegistrationNotStarted, status.RegistrationStatus)
	})

	t.Run("Existing lead reports stored progress", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := usecase.NewLeadUsecase(nil, leadRepo, nil, nil, newTestValidator())

		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(&domain.Lead{
			Name:               "CRM-LEAD-001",
			CompanyName:        "Trattoria Roma",
			RegistrationStatus: domain.RegistrationPendingESign,
			DocumentProgress:   "2/3 documents received",
		}, nil)

		status, err := uc.GetRegistrationStatus(ctx, "anna@example.com")
		assert.NoError(t, err)
		assert.True(t, status.Exists)
		assert.Equal(t, domain.RegistrationPendingESign, status.RegistrationStatus)
		assert.Equal(t, "2/3 documents received", status.DocumentProgress)
	})

	t.Run("Blank email is rejected", func(t *testing.T) {
		uc := usecase.NewLeadUsecase(nil, new(MockLeadRepo), nil, nil, newTestValidator())
		_, err := uc.GetRegistrationStatus(ctx, "   ")
		assert.Error(t, err)
	})
}
