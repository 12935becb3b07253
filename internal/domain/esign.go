package domain

import "context"

// TokenValidityDays is the fixed validity window of a signing token
const TokenValidityDays = 7

// IssueResult is returned when a signing token is issued for a Lead
type IssueResult struct {
	Lead       string `json:"lead"`
	SigningURL string `json:"signing_url"`
	ExpiresAt  string `json:"expires_at"`
	// EmailSent reports whether the invitation mail went out (best-effort)
	EmailSent bool `json:"email_sent"`
}

// SigningSession is the contract view presented before signing
type SigningSession struct {
	Lead        string `json:"lead"`
	CompanyName string `json:"company_name"`
	Contract    string `json:"contract"`
	ExpiresAt   string `json:"expires_at"`
}

// SignRequest captures a signature for a valid token
type SignRequest struct {
	// SignatureImage is a base64-encoded PNG of the drawn signature
	SignatureImage string `json:"signature_image" validate:"required"`
	SignerName     string `json:"signer_name" validate:"required,valid_name"`
}

// SignResult is returned once the signature is captured and the token consumed
type SignResult struct {
	Lead               string `json:"lead"`
	SignedAt           string `json:"signed_at"`
	RegistrationStatus string `json:"registration_status"`
}

// FileStorage persists binary artifacts (signature images) against a record
// in the CRM's file store
type FileStorage interface {
	UploadFile(ctx context.Context, doctype, docname, filename string, content []byte, isPrivate bool) (string, error)
}

// ESignUsecase drives the single-use, time-limited signing token lifecycle:
// NoToken -> Issued -> Expired / Signed (terminal)
type ESignUsecase interface {
	// Issue binds a fresh token to the Lead resolved by email, superseding
	// any unconsumed prior token by overwrite
	Issue(ctx context.Context, email string) (*IssueResult, error)
	// FetchForSigning validates a token and returns the rendered contract.
	// Unknown and already-consumed tokens are indistinguishable (404).
	FetchForSigning(ctx context.Context, token, clientIP string) (*SigningSession, error)
	// Consume re-validates the token, persists the signature artifact and
	// atomically clears the token while marking the Lead completed
	Consume(ctx context.Context, token string, req *SignRequest, clientIP string) (*SignResult, error)
}
