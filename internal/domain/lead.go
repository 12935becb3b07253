package domain

import (
	"context"
	"time"
)

// TimeFormat is the datetime layout the CRM backend stores and returns
const TimeFormat = "2006-01-02 15:04:05"

// DateFormat is the date-only layout used for child-table date fields
const DateFormat = "2006-01-02"

// Registration status values. The lifecycle is monotonic except for explicit
// resets performed in the CRM itself.
const (
	RegistrationNotStarted   = "Not Started"
	RegistrationInProgress   = "In Progress"
	RegistrationPendingESign = "Pending E-Signature"
	RegistrationCompleted    = "Completed"
)

// Defaults applied when a Lead is first created
const (
	LeadStatusOpen = "Open"
	LeadTypeClient = "Client"
)

// Lead is the canonical record for one onboarding funnel instance.
// At most one Lead exists per email; every write locates the existing record
// by email filter before creating.
type Lead struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	CompanyName        string `json:"company_name"`
	LeadName           string `json:"lead_name"`
	Status             string `json:"status"`
	LeadType           string `json:"lead_type"`
	RegistrationStatus string `json:"registration_status"`
	Phone              string `json:"phone"`
	SalesPerson        string `json:"sales_person"`

	// Billing address of the company
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	State      string `json:"state"`
	Country    string `json:"country"`

	// Financial fields
	AccountHolder string `json:"account_holder"`
	IBAN          string `json:"iban"`
	BIC           string `json:"bic"`

	// Serialized list of business locations (JSON)
	BusinessLocations string `json:"business_locations"`

	// Selected services (child table) plus denormalized display names
	Services         []ServiceSelection `json:"services"`
	ServiceNames     string             `json:"service_names"`
	ServiceNamesList string             `json:"service_names_list"`

	// Required-document collection state (JSON) and progress summary
	Documents        string `json:"documents"`
	DocumentProgress string `json:"document_progress"`

	// E-signature fields. Token and expiry are cleared on signature capture.
	ESignatureToken  string `json:"esignature_token"`
	ESignatureExpiry string `json:"esignature_expiry"`
	SignedAt         string `json:"signed_at"`
	SignerName       string `json:"signer_name"`
	SignerIP         string `json:"signer_ip"`
	SignatureFile    string `json:"signature_file"`
}

// TokenExpired reports whether the signing-token expiry is in the past.
// A missing or malformed expiry counts as expired (fail closed).
func (l *Lead) TokenExpired(now time.Time) bool {
	if l.ESignatureExpiry == "" {
		return true
	}
	expiry, err := time.Parse(TimeFormat, l.ESignatureExpiry)
	if err != nil {
		return true
	}
	return expiry.Before(now)
}

// IsSigned reports whether a signature has already been captured
func (l *Lead) IsSigned() bool {
	return l.SignedAt != ""
}

// ServiceSelection is one child row of a service the Lead has opted into
type ServiceSelection struct {
	Service       string `json:"service"`
	ServiceName   string `json:"service_name"`
	SelectionDate string `json:"selection_date"`
	TermsAccepted int    `json:"terms_accepted"`
	Idx           int    `json:"idx"`
}

// BusinessLocation is one declared business location embedded on the Lead.
// A blank Name is allowed; the reconciler synthesizes "Business N" from the
// slice position.
type BusinessLocation struct {
	Name                string `json:"name"`
	OwnerFirstName      string `json:"owner_first_name"`
	OwnerLastName       string `json:"owner_last_name"`
	OwnerEmail          string `json:"owner_email" validate:"omitempty,email"`
	OwnerPhone          string `json:"owner_phone" validate:"omitempty,valid_phone"`
	HasDifferentContact bool   `json:"has_different_contact"`
	ContactFirstName    string `json:"contact_first_name"`
	ContactLastName     string `json:"contact_last_name"`
	ContactEmail        string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone        string `json:"contact_phone" validate:"omitempty,valid_phone"`
	Street              string `json:"street"`
	City                string `json:"city"`
	PostalCode          string `json:"postal_code"`
	State               string `json:"state"`
	Country             string `json:"country"`
}

// ============================================================================
// Wizard step payload (tri-state sections)
// ============================================================================

// CompanyInfo is the company/operator section of the wizard
type CompanyInfo struct {
	CompanyName string `json:"company_name" validate:"omitempty,valid_name"`
	FirstName   string `json:"first_name" validate:"omitempty,valid_name"`
	LastName    string `json:"last_name" validate:"omitempty,valid_name"`
	Phone       string `json:"phone" validate:"omitempty,valid_phone"`
	Street      string `json:"street"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	State       string `json:"state"`
	Country     string `json:"country"`
}

// PaymentInfo is the bank-details section of the wizard
type PaymentInfo struct {
	AccountHolder string `json:"account_holder" validate:"omitempty,valid_name"`
	IBAN          string `json:"iban" validate:"omitempty,iban"`
	BIC           string `json:"bic" validate:"omitempty,bic"`
}

// DocumentSlot records upload/acceptance state for one required document.
// Files themselves live in CRM file storage.
type DocumentSlot struct {
	Key      string `json:"key" validate:"required"`
	Label    string `json:"label"`
	Uploaded bool   `json:"uploaded"`
	Accepted bool   `json:"accepted"`
	FileURL  string `json:"file_url"`
}

// LeadUpsertRequest is one incremental wizard submission. Each section is a
// pointer so the engine can distinguish "absent" (leave stored data alone)
// from "present but empty" (an intentional clear, e.g. Services = []).
type LeadUpsertRequest struct {
	Email       string              `json:"email" validate:"required,email"`
	CompanyInfo *CompanyInfo        `json:"company_info,omitempty"`
	Businesses  *[]BusinessLocation `json:"businesses,omitempty" validate:"omitempty,dive"`
	PaymentInfo *PaymentInfo        `json:"payment_info,omitempty"`
	Documents   *[]DocumentSlot     `json:"documents,omitempty" validate:"omitempty,dive"`
	Services    *[]string           `json:"services,omitempty"`
}

// ============================================================================
// Upsert result / per-subsystem status summary
// ============================================================================

// SectionStatus reports one secondary write outcome. Secondary failures are
// surfaced here instead of failing the whole step.
type SectionStatus struct {
	OK    bool   `json:"ok"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// BusinessStatus aggregates the address and optional contact outcome for one
// declared business location
type BusinessStatus struct {
	Address SectionStatus  `json:"address"`
	Contact *SectionStatus `json:"contact,omitempty"`
}

// UpsertSummary is the per-subsystem status report returned with the Lead
type UpsertSummary struct {
	Created        bool                   `json:"created"`
	BillingAddress *SectionStatus         `json:"billing_address,omitempty"`
	Businesses     map[int]BusinessStatus `json:"businesses,omitempty"`
	Services       *SectionStatus         `json:"services,omitempty"`
}

// LeadUpsertResult is the post-write Lead plus the status summary
type LeadUpsertResult struct {
	Lead    *Lead          `json:"lead"`
	Summary *UpsertSummary `json:"summary"`
}

// RegistrationStatus is the wizard-resume view of a Lead
type RegistrationStatus struct {
	Exists             bool   `json:"exists"`
	RegistrationStatus string `json:"registration_status,omitempty"`
	CompanyName        string `json:"company_name,omitempty"`
	DocumentProgress   string `json:"document_progress,omitempty"`
}

// ============================================================================
// Repository / Usecase interfaces
// ============================================================================

type LeadRepository interface {
	// FindByEmail returns the Lead for an email, or nil when none exists
	FindByEmail(ctx context.Context, email string) (*Lead, error)
	// FindByToken returns the Lead holding an active signing token, or nil
	FindByToken(ctx context.Context, token string) (*Lead, error)
	Get(ctx context.Context, name string) (*Lead, error)
	// Create inserts a new Lead from a field delta. A duplicate-email race
	// surfaces as crm.ErrDuplicate for the caller to recover from.
	Create(ctx context.Context, fields map[string]interface{}) (*Lead, error)
	Update(ctx context.Context, name string, fields map[string]interface{}) (*Lead, error)
	// List returns leads for reporting, newest first
	List(ctx context.Context, limit int) ([]Lead, error)
}

type LeadUsecase interface {
	UpsertLead(ctx context.Context, req *LeadUpsertRequest) (*LeadUpsertResult, error)
	GetRegistrationStatus(ctx context.Context, email string) (*RegistrationStatus, error)
}
