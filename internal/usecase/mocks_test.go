package usecase_test

import (
	"context"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/pkg/email"
	"go-restaurant-onboarding/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/mock"
)

// Mock Repositories

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Get(ctx context.Context, name string) (*domain.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) FindByUser(ctx context.Context, userID string) (*domain.RegistrationProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistrationProfile), args.Error(1)
}

type MockLeadRepo struct {
	mock.Mock
}

func (m *MockLeadRepo) FindByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepo) FindByToken(ctx context.Context, token string) (*domain.Lead, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepo) Get(ctx context.Context, name string) (*domain.Lead, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepo) Create(ctx context.Context, fields map[string]interface{}) (*domain.Lead, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepo) Update(ctx context.Context, name string, fields map[string]interface{}) (*domain.Lead, error) {
	args := m.Called(ctx, name, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepo) List(ctx context.Context, limit int) ([]domain.Lead, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lead), args.Error(1)
}

type MockAddressRepo struct {
	mock.Mock
}

func (m *MockAddressRepo) FindByTitleAndType(ctx context.Context, title, addrType string) (*domain.Address, error) {
	args := m.Called(ctx, title, addrType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *MockAddressRepo) Create(ctx context.Context, addr *domain.Address) (*domain.Address, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *MockAddressRepo) Update(ctx context.Context, name string, fields map[string]interface{}) (*domain.Address, error) {
	args := m.Called(ctx, name, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

type MockContactRepo struct {
	mock.Mock
}

func (m *MockContactRepo) FindByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockContactRepo) Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	args := m.Called(ctx, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockContactRepo) Update(ctx context.Context, name string, fields map[string]interface{}) (*domain.Contact, error) {
	args := m.Called(ctx, name, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

type MockServiceRepo struct {
	mock.Mock
}

func (m *MockServiceRepo) ResolveNames(ctx context.Context, ids []string) (map[string]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockServiceRepo) List(ctx context.Context) ([]domain.CatalogService, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogService), args.Error(1)
}

// Mock collaborators

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) ReconcileBilling(ctx context.Context, lead *domain.Lead, info *domain.CompanyInfo) domain.SectionStatus {
	args := m.Called(ctx, lead, info)
	return args.Get(0).(domain.SectionStatus)
}

func (m *MockReconciler) ReconcileBusinesses(ctx context.Context, lead *domain.Lead, businesses []domain.BusinessLocation) map[int]domain.BusinessStatus {
	args := m.Called(ctx, lead, businesses)
	return args.Get(0).(map[int]domain.BusinessStatus)
}

type MockServiceWriter struct {
	mock.Mock
}

func (m *MockServiceWriter) SetServices(ctx context.Context, lead *domain.Lead, serviceIDs []string) (*domain.Lead, error) {
	args := m.Called(ctx, lead, serviceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockServiceWriter) ListCatalog(ctx context.Context) ([]domain.CatalogService, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogService), args.Error(1)
}

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) UploadFile(ctx context.Context, doctype, docname, filename string, content []byte, isPrivate bool) (string, error) {
	args := m.Called(ctx, doctype, docname, filename, content, isPrivate)
	return args.String(0), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) IsConfigured() bool {
	return m.Called().Bool(0)
}

func (m *MockMailer) SendSigningInvite(toEmail string, data email.SigningInviteData) error {
	return m.Called(toEmail, data).Error(0)
}

type MockDocAI struct {
	mock.Mock
}

func (m *MockDocAI) CompleteJSON(ctx context.Context, instruction, userContent string) (string, error) {
	args := m.Called(ctx, instruction, userContent)
	return args.String(0), args.Error(1)
}

func (m *MockDocAI) ExtractTextFromImage(ctx context.Context, imageBase64, mimeType string) (string, error) {
	args := m.Called(ctx, imageBase64, mimeType)
	return args.String(0), args.Error(1)
}

func (m *MockDocAI) IsConfigured() bool {
	return m.Called().Bool(0)
}

// newTestValidator returns a validator with the custom rules registered
func newTestValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}
