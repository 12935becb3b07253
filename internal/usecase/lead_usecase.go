package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/internal/repository/crm"
	"go-restaurant-onboarding/pkg/apperror"
	"go-restaurant-onboarding/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type leadUsecase struct {
	identity   domain.IdentityResolver
	leadRepo   domain.LeadRepository
	reconciler domain.AddressReconciler
	services   domain.ServiceWriter
	validate   *validator.Validate
}

func NewLeadUsecase(
	identity domain.IdentityResolver,
	leadRepo domain.LeadRepository,
	reconciler domain.AddressReconciler,
	services domain.ServiceWriter,
	validate *validator.Validate,
) domain.LeadUsecase {
	return &leadUsecase{
		identity:   identity,
		leadRepo:   leadRepo,
		reconciler: reconciler,
		services:   services,
		validate:   validate,
	}
}

// UpsertLead reconciles one incremental wizard submission into the canonical
// Lead for the email. The primary Lead write is the only fatal path beyond
// identity resolution; address, contact and service writes are best-effort
// and reported through the summary.
func (u *leadUsecase) UpsertLead(ctx context.Context, req *domain.LeadUpsertRequest) (*domain.LeadUpsertResult, error) {
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Validation failed: " + err.Error())
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	// 1. Resolve identity - fatal when the User does not exist
	identity, err := u.identity.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	// 2. Locate the canonical Lead by email before any write
	existing, err := u.leadRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	// 3. Build the delta strictly from present sections
	delta := u.buildDelta(req)

	summary := &domain.UpsertSummary{}
	var lead *domain.Lead

	if existing == nil {
		u.applyCreateDefaults(delta, email, req, identity)
		lead, err = u.leadRepo.Create(ctx, delta)
		if errors.Is(err, crm.ErrDuplicate) {
			// Lost the uniqueness race against a concurrent submission for
			// the same email. Recover by re-querying and retrying as update.
			logger.Log.Warn("Duplicate lead create, retrying as update", "email", email)
			lead, err = u.retryAsUpdate(ctx, email, delta)
		} else {
			summary.Created = err == nil
		}
		if err != nil {
			return nil, apperror.Internal(err)
		}
	} else {
		if len(delta) > 0 {
			lead, err = u.leadRepo.Update(ctx, existing.Name, delta)
			if err != nil {
				return nil, apperror.Internal(err)
			}
		} else {
			lead = existing
		}
	}

	// 4. Secondary writes - never abort the step on failure
	if req.CompanyInfo != nil {
		status := u.reconciler.ReconcileBilling(ctx, lead, req.CompanyInfo)
		summary.BillingAddress = &status
	}
	if req.Businesses != nil {
		summary.Businesses = u.reconciler.ReconcileBusinesses(ctx, lead, *req.Businesses)
	}
	if req.Services != nil {
		updated, err := u.services.SetServices(ctx, lead, *req.Services)
		if err != nil {
			logger.Log.Error("Service selection write failed", "lead", lead.Name, "error", err)
			summary.Services = &domain.SectionStatus{OK: false, Error: "Failed to save service selection"}
		} else {
			lead = updated
			summary.Services = &domain.SectionStatus{OK: true, ID: lead.Name}
		}
	}

	return &domain.LeadUpsertResult{Lead: lead, Summary: summary}, nil
}

// retryAsUpdate re-queries the Lead that won the create race and applies the
// delta as an update against it
func (u *leadUsecase) retryAsUpdate(ctx context.Context, email string, delta map[string]interface{}) (*domain.Lead, error) {
	winner, err := u.leadRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("duplicate lead reported but none found for %s", email)
	}
	// Creation defaults belong to the record that won the race
	delete(delta, "status")
	delete(delta, "lead_type")
	delete(delta, "registration_status")
	return u.leadRepo.Update(ctx, winner.Name, delta)
}

// buildDelta maps present wizard sections onto CRM field writes. Absent
// sections contribute nothing, so previously stored values survive.
func (u *leadUsecase) buildDelta(req *domain.LeadUpsertRequest) map[string]interface{} {
	delta := map[string]interface{}{}

	if info := req.CompanyInfo; info != nil {
		setIfPresent(delta, "company_name", info.CompanyName)
		setIfPresent(delta, "phone", info.Phone)
		setIfPresent(delta, "city", info.City)
		setIfPresent(delta, "postal_code", info.PostalCode)
		setIfPresent(delta, "state", info.State)
		setIfPresent(delta, "country", NormalizeCountry(info.Country))

		street := strings.TrimSpace(info.Street)
		if street == "" {
			// The record must never carry a blank primary address line;
			// synthesize one from whatever fragments the wizard provided
			street = joinAddressFragments(info.City, info.PostalCode, NormalizeCountry(info.Country))
		}
		setIfPresent(delta, "street", street)
	}

	if req.Businesses != nil {
		serialized, err := json.Marshal(*req.Businesses)
		if err == nil {
			delta["business_locations"] = string(serialized)
		} else {
			logger.Log.Error("Failed to serialize business locations", "error", err)
		}
	}

	if pay := req.PaymentInfo; pay != nil {
		setIfPresent(delta, "account_holder", pay.AccountHolder)
		setIfPresent(delta, "iban", normalizeIBAN(pay.IBAN))
		setIfPresent(delta, "bic", strings.ToUpper(strings.TrimSpace(pay.BIC)))
	}

	if req.Documents != nil {
		slots := *req.Documents
		serialized, err := json.Marshal(slots)
		if err == nil {
			delta["documents"] = string(serialized)
			delta["document_progress"] = documentProgress(slots)
		} else {
			logger.Log.Error("Failed to serialize document slots", "error", err)
		}
	}

	return delta
}

// applyCreateDefaults fills the mandatory fields of a first-time Lead
func (u *leadUsecase) applyCreateDefaults(delta map[string]interface{}, email string, req *domain.LeadUpsertRequest, identity *domain.Identity) {
	delta["email"] = email
	delta["status"] = domain.LeadStatusOpen
	delta["lead_type"] = domain.LeadTypeClient
	delta["registration_status"] = domain.RegistrationInProgress
	delta["lead_name"] = deriveLeadName(req, identity, email)

	if identity.Profile != nil {
		setIfAbsent(delta, "phone", identity.Profile.Phone)
		setIfPresent(delta, "sales_person", identity.Profile.SalesPerson)
		setIfAbsent(delta, "company_name", identity.Profile.CompanyName)
	}
}

// deriveLeadName picks the display name for a new Lead:
// company name first, then the operator's first name, then the email
func deriveLeadName(req *domain.LeadUpsertRequest, identity *domain.Identity, email string) string {
	if req.CompanyInfo != nil && strings.TrimSpace(req.CompanyInfo.CompanyName) != "" {
		return strings.TrimSpace(req.CompanyInfo.CompanyName)
	}
	if identity.Profile != nil && strings.TrimSpace(identity.Profile.CompanyName) != "" {
		return strings.TrimSpace(identity.Profile.CompanyName)
	}
	if req.CompanyInfo != nil && strings.TrimSpace(req.CompanyInfo.FirstName) != "" {
		return strings.TrimSpace(req.CompanyInfo.FirstName)
	}
	if identity.User.FirstName != "" {
		return identity.User.FirstName
	}
	return email
}

// GetRegistrationStatus is the wizard-resume view of a Lead
func (u *leadUsecase) GetRegistrationStatus(ctx context.Context, email string) (*domain.RegistrationStatus, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, apperror.BadRequest("Email is required")
	}

	lead, err := u.leadRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if lead == nil {
		return &domain.RegistrationStatus{Exists: false, RegistrationStatus: domain.RegistrationNotStarted}, nil
	}

	status := lead.RegistrationStatus
	if status == "" {
		status = domain.RegistrationInProgress
	}
	return &domain.RegistrationStatus{
		Exists:             true,
		RegistrationStatus: status,
		CompanyName:        lead.CompanyName,
		DocumentProgress:   lead.DocumentProgress,
	}, nil
}

// --- helpers ---

func setIfPresent(delta map[string]interface{}, field, value string) {
	if strings.TrimSpace(value) != "" {
		delta[field] = strings.TrimSpace(value)
	}
}

func setIfAbsent(delta map[string]interface{}, field, value string) {
	if _, exists := delta[field]; exists {
		return
	}
	setIfPresent(delta, field, value)
}

func joinAddressFragments(fragments ...string) string {
	present := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f) != "" {
			present = append(present, strings.TrimSpace(f))
		}
	}
	return strings.Join(present, ", ")
}

func normalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}

// documentProgress renders the human-readable collection summary stored on
// the Lead, e.g. "3/5 documents received"
func documentProgress(slots []domain.DocumentSlot) string {
	if len(slots) == 0 {
		return ""
	}
	received := 0
	for _, s := range slots {
		if s.Uploaded {
			received++
		}
	}
	return fmt.Sprintf("%d/%d documents received", received, len(slots))
}
