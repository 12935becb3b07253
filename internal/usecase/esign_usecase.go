package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/internal/repository/crm"
	"go-restaurant-onboarding/pkg/apperror"
	"go-restaurant-onboarding/pkg/audit"
	"go-restaurant-onboarding/pkg/email"
	"go-restaurant-onboarding/pkg/imaging"
	"go-restaurant-onboarding/pkg/logger"

	"github.com/go-playground/validator/v10"
)

const (
	// tokenBytes gives 256 bits of entropy, hex-encoded to 64 characters
	tokenBytes = 32

	// inlineSignatureCap bounds the fallback inline-stored signature. Data
	// beyond the cap is lost - the fallback is best-effort, not a guarantee.
	inlineSignatureCap = 60 * 1024

	// signatureMaxDimension is the downscale target applied before falling
	// back to inline storage
	signatureMaxDimension = 640
)

// InviteMailer sends the signing link to the lead (best-effort)
type InviteMailer interface {
	IsConfigured() bool
	SendSigningInvite(toEmail string, data email.SigningInviteData) error
}

type esignUsecase struct {
	leadRepo   domain.LeadRepository
	files      domain.FileStorage
	mailer     InviteMailer
	audit      *audit.Logger
	validate   *validator.Validate
	appBaseURL string
	now        func() time.Time
}

func NewESignUsecase(
	leadRepo domain.LeadRepository,
	files domain.FileStorage,
	mailer InviteMailer,
	auditLog *audit.Logger,
	validate *validator.Validate,
	appBaseURL string,
) domain.ESignUsecase {
	return &esignUsecase{
		leadRepo:   leadRepo,
		files:      files,
		mailer:     mailer,
		audit:      auditLog,
		validate:   validate,
		appBaseURL: appBaseURL,
		now:        time.Now,
	}
}

// Issue binds a fresh signing token to the Lead resolved by email. Any prior
// unconsumed token is superseded by the overwrite - no explicit revoke step.
func (u *esignUsecase) Issue(ctx context.Context, leadEmail string) (*domain.IssueResult, error) {
	leadEmail = strings.TrimSpace(strings.ToLower(leadEmail))
	if leadEmail == "" {
		return nil, apperror.BadRequest("Email is required")
	}

	lead, err := u.leadRepo.FindByEmail(ctx, leadEmail)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if lead == nil {
		return nil, apperror.NotFound("No registration found for this email")
	}
	if lead.IsSigned() {
		return nil, apperror.Conflict("The contract for this registration has already been signed")
	}

	token, err := generateToken()
	if err != nil {
		return nil, apperror.Internal(err)
	}
	expiry := u.now().Add(domain.TokenValidityDays * 24 * time.Hour).Format(domain.TimeFormat)

	lead, err = u.leadRepo.Update(ctx, lead.Name, map[string]interface{}{
		"esignature_token":    token,
		"esignature_expiry":   expiry,
		"registration_status": domain.RegistrationPendingESign,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	signingURL := fmt.Sprintf("%s/e-signature-document/%s", u.appBaseURL, token)
	u.audit.TokenIssued(lead.Name, leadEmail, token, requestIDFrom(ctx))

	emailSent := false
	if u.mailer != nil && u.mailer.IsConfigured() {
		invite := email.SigningInviteData{
			RecipientName: lead.LeadName,
			CompanyName:   lead.CompanyName,
			SigningURL:    signingURL,
			ExpiryDate:    expiry,
		}
		if err := u.mailer.SendSigningInvite(leadEmail, invite); err != nil {
			logger.Log.Warn("Failed to send signing invite", "lead", lead.Name, "error", err)
		} else {
			emailSent = true
		}
	}

	return &domain.IssueResult{
		Lead:       lead.Name,
		SigningURL: signingURL,
		ExpiresAt:  expiry,
		EmailSent:  emailSent,
	}, nil
}

// FetchForSigning validates a token and returns the rendered contract.
// Consumed tokens have been cleared from the Lead, so they fail the lookup
// exactly like bogus ones - enumeration and replay look identical.
func (u *esignUsecase) FetchForSigning(ctx context.Context, token, clientIP string) (*domain.SigningSession, error) {
	lead, err := u.lookupToken(ctx, token, clientIP)
	if err != nil {
		return nil, err
	}

	u.audit.ContractViewed(lead.Name, token, clientIP, requestIDFrom(ctx))
	return &domain.SigningSession{
		Lead:        lead.Name,
		CompanyName: lead.CompanyName,
		Contract:    RenderContract(lead, u.now()),
		ExpiresAt:   lead.ESignatureExpiry,
	}, nil
}

// Consume re-validates the token from scratch - state may have changed since
// any earlier fetch - then captures the signature exactly once
func (u *esignUsecase) Consume(ctx context.Context, token string, req *domain.SignRequest, clientIP string) (*domain.SignResult, error) {
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Validation failed: " + err.Error())
	}

	lead, err := u.lookupToken(ctx, token, clientIP)
	if err != nil {
		return nil, err
	}

	signatureRef := u.persistSignature(ctx, lead, req.SignatureImage)
	signedAt := u.now().Format(domain.TimeFormat)

	// One update call: the signature lands, the status flips and the token
	// clears together. There is no intermediate state where the token still
	// looks valid but the contract is signed.
	updated, err := u.leadRepo.Update(ctx, lead.Name, map[string]interface{}{
		"signed_at":           signedAt,
		"signer_name":         strings.TrimSpace(req.SignerName),
		"signer_ip":           clientIP,
		"signature_file":      signatureRef,
		"registration_status": domain.RegistrationCompleted,
		"esignature_token":    "",
		"esignature_expiry":   "",
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u.audit.SignatureCaptured(updated.Name, token, req.SignerName, clientIP, requestIDFrom(ctx))
	return &domain.SignResult{
		Lead:               updated.Name,
		SignedAt:           signedAt,
		RegistrationStatus: updated.RegistrationStatus,
	}, nil
}

// lookupToken runs the shared token validation ladder: unknown/consumed (404),
// already signed (409), expired (410)
func (u *esignUsecase) lookupToken(ctx context.Context, token, clientIP string) (*domain.Lead, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.NotFound("Signing link is invalid")
	}

	lead, err := u.leadRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if lead == nil {
		u.audit.TokenRejected(token, clientIP, requestIDFrom(ctx), "unknown_or_consumed")
		return nil, apperror.NotFound("Signing link is invalid")
	}
	// Defensive double-check: a signed Lead should have had its token
	// cleared, but a stale reference can still land here
	if lead.IsSigned() {
		u.audit.Log(audit.Event{
			Event:     audit.EventReplayBlocked,
			Lead:      lead.Name,
			TokenHash: audit.HashToken(token),
			IP:        clientIP,
			RequestID: requestIDFrom(ctx),
		})
		return nil, apperror.Conflict("This contract has already been signed")
	}
	if lead.TokenExpired(u.now()) {
		u.audit.Log(audit.Event{
			Event:     audit.EventTokenExpired,
			Lead:      lead.Name,
			TokenHash: audit.HashToken(token),
			IP:        clientIP,
			RequestID: requestIDFrom(ctx),
		})
		return nil, apperror.Gone("This signing link has expired")
	}
	return lead, nil
}

// persistSignature stores the signature image. CRM file storage is the
// primary path; on failure the image falls back to size-capped inline base64.
func (u *esignUsecase) persistSignature(ctx context.Context, lead *domain.Lead, signatureBase64 string) string {
	raw := stripDataURIPrefix(signatureBase64)
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		logger.Log.Warn("Signature image is not valid base64, storing as-is capped", "lead", lead.Name)
		return capString(raw, inlineSignatureCap)
	}

	if u.files != nil {
		filename := fmt.Sprintf("signature-%s.png", lead.Name)
		fileURL, err := u.files.UploadFile(ctx, crm.DoctypeLead, lead.Name, filename, data, true)
		if err == nil {
			return fileURL
		}
		logger.Log.Warn("Signature upload failed, falling back to inline storage",
			"lead", lead.Name, "error", err)
	}

	// Inline fallback: downscale first, then cap hard
	if len(data) > inlineSignatureCap {
		if scaled, err := imaging.DownscalePNG(data, signatureMaxDimension); err == nil {
			data = scaled
		} else {
			logger.Log.Warn("Signature downscale failed", "lead", lead.Name, "error", err)
		}
	}
	return capString(base64.StdEncoding.EncodeToString(data), inlineSignatureCap)
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate signing token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func stripDataURIPrefix(s string) string {
	if idx := strings.Index(s, ";base64,"); idx >= 0 {
		return s[idx+len(";base64,"):]
	}
	return s
}

func capString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(domain.KeyRequestID).(string); ok {
		return id
	}
	return ""
}
