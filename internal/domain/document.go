package domain

import "context"

// ValidateDocumentRequest asks for a structural verdict on an uploaded
// document. Either Text or Content (base64) must be present.
type ValidateDocumentRequest struct {
	DocumentType string `json:"document_type" validate:"required"`
	// Text is pre-extracted document text, when the caller already has it
	Text string `json:"text"`
	// Content is the raw document, base64-encoded, with its MIME type
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	// ReferenceText switches the check from "matches expected type" to
	// "structurally equals the reference template"
	ReferenceText string `json:"reference_text"`
}

// ValidationVerdict is the structural-match result. Unvalidatable marks a
// document that yielded no text through any extraction path - distinct from
// a document that was read and judged invalid.
type ValidationVerdict struct {
	IsValid       bool     `json:"is_valid"`
	Unvalidatable bool     `json:"unvalidatable,omitempty"`
	Message       string   `json:"message"`
	Reason        string   `json:"reason,omitempty"`
	Differences   []string `json:"differences,omitempty"`
}

// DocumentIntelligence is the external document-understanding service
// consumed for validation judgments and image text extraction
type DocumentIntelligence interface {
	CompleteJSON(ctx context.Context, instruction, userContent string) (string, error)
	ExtractTextFromImage(ctx context.Context, imageBase64, mimeType string) (string, error)
	IsConfigured() bool
}

type DocumentUsecase interface {
	Validate(ctx context.Context, req *ValidateDocumentRequest) (*ValidationVerdict, error)
}
