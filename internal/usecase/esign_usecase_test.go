package usecase_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/internal/usecase"
	"go-restaurant-onboarding/pkg/apperror"
	"go-restaurant-onboarding/pkg/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testToken = "a3f1c2d4e5b6a7f8a3f1c2d4e5b6a7f8a3f1c2d4e5b6a7f8a3f1c2d4e5b6a7f8"

func newESignUC(leadRepo *MockLeadRepo, files *MockFileStorage) domain.ESignUsecase {
	var storage domain.FileStorage
	if files != nil {
		storage = files
	}
	return usecase.NewESignUsecase(leadRepo, storage, nil, audit.Init("onboarding-test", "test"), newTestValidator(), "https://app.example.com")
}

func errorCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.Code
}

func activeLead() *domain.Lead {
	return &domain.Lead{
		Name:             "CRM-LEAD-001",
		Email:            "anna@example.com",
		CompanyName:      "Trattoria Roma",
		LeadName:         "Anna Rossi",
		ESignatureToken:  testToken,
		ESignatureExpiry: time.Now().Add(48 * time.Hour).Format(domain.TimeFormat),
	}
}

func TestIssueToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Should 404 when no registration exists", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := newESignUC(leadRepo, nil)

		leadRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, nil)

		_, err := uc.Issue(ctx, "ghost@example.com")
		assert.Equal(t, http.StatusNotFound, errorCode(t, err))
	})

	t.Run("Should 409 when the contract is already signed", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := newESignUC(leadRepo, nil)

		signed := activeLead()
		signed.SignedAt = "2026-08-01 10:00:00"
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(signed, nil)

		_, err := uc.Issue(ctx, "anna@example.com")
		assert.Equal(t, http.StatusConflict, errorCode(t, err))
	})

	t.Run("Should bind a fresh token and move to pending e-signature", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := newESignUC(leadRepo, nil)

		lead := &domain.Lead{Name: "CRM-LEAD-001", Email: "anna@example.com"}
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(lead, nil)
		leadRepo.On("Update", ctx, "CRM-LEAD-001", mock.Anything).Return(lead, nil).Run(func(args mock.Arguments) {
			fields := args.Get(2).(map[string]interface{})
			token, _ := fields["esignature_token"].(string)
			assert.Len(t, token, 64)
			assert.NotEmpty(t, fields["esignature_expiry"])
			assert.Equal(t, domain.RegistrationPendingESign, fields["registration_status"])
		})

		result, err := uc.Issue(ctx, "Anna@Example.com")
		assert.NoError(t, err)
		assert.Contains(t, result.SigningURL, "https://app.example.com/e-signature-document/")
		assert.False(t, result.EmailSent)
		leadRepo.AssertExpectations(t)
	})

	t.Run("Reissuing supersedes the previous token by overwrite", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := newESignUC(leadRepo, nil)

		lead := activeLead()
		leadRepo.On("FindByEmail", ctx, "anna@example.com").Return(lead, nil)
		leadRepo.On("Update", ctx, "CRM-LEAD-001", mock.Anything).Return(lead, nil).Run(func(args mock.Arguments) {
			fields := args.Get(2).(map[string]interface{})
			assert.NotEqual(t, testToken, fields["esignature_token"])
		})

		_, err := uc.Issue(ctx, "anna@example.com")
		assert.NoError(t, err)
	})
}

func TestFetchForSigning(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown token is 404", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := newESignUC(leadRepo, nil)

		leadRepo.On("FindByToken", ctx, "bogus").Return(nil, nil)

		_, err := uc.FetchForSigning(ctx, "bogus", "203.0.113.9")
		assert.Equal(t, http.StatusNotFound, errorCode(t, err))
	})

	t.Run("Blank token is 404 without a lookup", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := newESignUC(leadRepo, nil)

		_, err := uc.FetchForSigning(ctx, "  ", "203.0.113.9")
		assert.Equal(t, http.StatusNotFound, errorCode(t, err))
		leadRepo.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
	})

	t.Run("Expired token is 410", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := newESignUC(leadRepo, nil)

		expired := activeLead()
		expired.ESignatureExpiry = time.Now().Add(-time.Hour).Format(domain.TimeFormat)
		leadRepo.On("FindByToken", ctx, testToken).Return(expired, nil)

		_, err := uc.FetchForSigning(ctx, testToken, "203.0.113.9")
		assert.Equal(t, http.StatusGone, errorCode(t, err))
	})

	t.Run("Signed lead with a stale token is 409", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := newESignUC(leadRepo, nil)

		signed := activeLead()
		signed.SignedAt = "2026-08-01 10:00:00"
		leadRepo.On("FindByToken", ctx, testToken).Return(signed, nil)

		_, err := uc.FetchForSigning(ctx, testToken, "203.0.113.9")
		assert.Equal(t, http.StatusConflict, errorCode(t, err))
	})

	t.Run("Valid token returns the rendered contract", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := newESignUC(leadRepo, nil)

		leadRepo.On("FindByToken", ctx, testToken).Return(activeLead(), nil)

		session, err := uc.FetchForSigning(ctx, testToken, "203.0.113.9")
		assert.NoError(t, err)
		assert.Equal(t, "Trattoria Roma", session.CompanyName)
		assert.Contains(t, session.Contract, "Trattoria Roma")
		assert.Contains(t, session.Contract, "SERVICE AGREEMENT")
	})
}

func TestConsumeToken(t *testing.T) {
	ctx := context.Background()
	signReq := &domain.SignRequest{
		SignatureImage: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("signature-bytes")),
		SignerName:     "Anna Rossi",
	}

	t.Run("Signing clears the token in the same update", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		files := new(MockFileStorage)
		uc := newESignUC(leadRepo, files)

		lead := activeLead()
		leadRepo.On("FindByToken", ctx, testToken).Return(lead, nil)
		files.On("UploadFile", ctx, "Lead", "CRM-LEAD-001", "signature-CRM-LEAD-001.png", []byte("signature-bytes"), true).
			Return("/private/files/signature-CRM-LEAD-001.png", nil)
		leadRepo.On("Update", ctx, "CRM-LEAD-001", mock.Anything).Return(&domain.Lead{
			Name:               "CRM-LEAD-001",
			RegistrationStatus: domain.RegistrationCompleted,
		}, nil).Run(func(args mock.Arguments) {
			fields := args.Get(2).(map[string]interface{})
			assert.Equal(t, "", fields["esignature_token"])
			assert.Equal(t, "", fields["esignature_expiry"])
			assert.Equal(t, domain.RegistrationCompleted, fields["registration_status"])
			assert.Equal(t, "/private/files/signature-CRM-LEAD-001.png", fields["signature_file"])
			assert.Equal(t, "Anna Rossi", fields["signer_name"])
			assert.Equal(t, "203.0.113.9", fields["signer_ip"])
			assert.NotEmpty(t, fields["signed_at"])
		})

		result, err := uc.Consume(ctx, testToken, signReq, "203.0.113.9")
		assert.NoError(t, err)
		assert.Equal(t, domain.RegistrationCompleted, result.RegistrationStatus)
		leadRepo.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("A consumed token looks exactly like a bogus one", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := newESignUC(leadRepo, nil)

		// Token was cleared by the first consume, so the lookup misses
		leadRepo.On("FindByToken", ctx, testToken).Return(nil, nil)

		_, err := uc.Consume(ctx, testToken, signReq, "203.0.113.9")
		assert.Equal(t, http.StatusNotFound, errorCode(t, err))
	})

	t.Run("Missing signature image is rejected before any lookup", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		uc := newESignUC(leadRepo, nil)

		_, err := uc.Consume(ctx, testToken, &domain.SignRequest{SignerName: "Anna Rossi"}, "203.0.113.9")
		assert.Equal(t, http.StatusBadRequest, errorCode(t, err))
		leadRepo.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
	})

	t.Run("Upload failure falls back to inline storage", func(t *testing.T) {
		leadRepo := new(MockLeadRepo)
		files := new(MockFileStorage)
		uc := newESignUC(leadRepo, files)

		lead := activeLead()
		leadRepo.On("FindByToken", ctx, testToken).Return(lead, nil)
		files.On("UploadFile", ctx, "Lead", "CRM-LEAD-001", "signature-CRM-LEAD-001.png", []byte("signature-bytes"), true).
			Return("", assert.AnError)
		leadRepo.On("Update", ctx, "CRM-LEAD-001", mock.Anything).Return(lead, nil).Run(func(args mock.Arguments) {
			fields := args.Get(2).(map[string]interface{})
			assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("signature-bytes")), fields["signature_file"])
		})

		_, err := uc.Consume(ctx, testToken, signReq, "203.0.113.9")
		assert.NoError(t, err)
	})
}
