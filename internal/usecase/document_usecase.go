package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/pkg/apperror"
	"go-restaurant-onboarding/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/ledongthuc/pdf"
)

// textBudget caps how much document text is sent to the external service,
// which has its own input limits
const textBudget = 12000

const structuralCompareInstruction = `You are a document structure validator. Compare the UPLOADED document text against the REFERENCE document text. Judge ONLY whether the uploaded document follows the same structure and template as the reference (same sections, same kind of fields, same document type). Differing names, dates, numbers or addresses are expected and must NOT count as differences. Respond with JSON: {"is_valid": boolean, "message": short human-readable summary, "reason": short machine-readable reason, "differences": [list of structural differences, empty when valid]}.`

const typeMatchInstruction = `You are a document validator. Judge whether the UPLOADED document text plausibly is a document of the stated type. Respond with JSON: {"is_valid": boolean, "message": short human-readable summary, "reason": short machine-readable reason, "differences": [list of mismatches against the expected type, empty when valid]}.`

type documentUsecase struct {
	docai    domain.DocumentIntelligence
	validate *validator.Validate
}

func NewDocumentUsecase(docai domain.DocumentIntelligence, validate *validator.Validate) domain.DocumentUsecase {
	return &documentUsecase{
		docai:    docai,
		validate: validate,
	}
}

// Validate compares an uploaded document against a reference template, or
// against its declared type when no reference exists. An ambiguous verdict
// from the external service never silently passes - the check fails closed.
func (u *documentUsecase) Validate(ctx context.Context, req *domain.ValidateDocumentRequest) (*domain.ValidationVerdict, error) {
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Validation failed: " + err.Error())
	}
	if req.Text == "" && req.Content == "" {
		return nil, apperror.BadRequest("Either text or content must be provided")
	}
	if !u.docai.IsConfigured() {
		return nil, apperror.New(http.StatusServiceUnavailable, "Document validation is currently unavailable", nil)
	}

	text, err := u.acquireText(ctx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		// No extraction path yielded text. That is "unreadable", which is a
		// different statement than "read and judged invalid".
		return &domain.ValidationVerdict{
			IsValid:       false,
			Unvalidatable: true,
			Message:       "The document could not be read; no text could be extracted.",
			Reason:        "unreadable_document",
		}, nil
	}

	text = truncateText(text, textBudget)

	var instruction, userContent string
	if strings.TrimSpace(req.ReferenceText) != "" {
		instruction = structuralCompareInstruction
		userContent = fmt.Sprintf("Document type: %s\n\nREFERENCE:\n%s\n\nUPLOADED:\n%s",
			req.DocumentType, truncateText(req.ReferenceText, textBudget), text)
	} else {
		instruction = typeMatchInstruction
		userContent = fmt.Sprintf("Expected document type: %s\n\nUPLOADED:\n%s", req.DocumentType, text)
	}

	raw, err := u.docai.CompleteJSON(ctx, instruction, userContent)
	if err != nil {
		logger.Log.Error("Document validation call failed", "type", req.DocumentType, "error", err)
		return nil, apperror.New(http.StatusBadGateway, "Document validation failed", err)
	}

	return parseVerdict(raw), nil
}

// acquireText runs the extraction ladder: caller-provided text, then direct
// extraction from the content, then the image-based path
func (u *documentUsecase) acquireText(ctx context.Context, req *domain.ValidateDocumentRequest) (string, error) {
	if strings.TrimSpace(req.Text) != "" {
		return req.Text, nil
	}

	data, err := base64.StdEncoding.DecodeString(stripDataURIPrefix(req.Content))
	if err != nil {
		return "", apperror.BadRequest("Document content is not valid base64")
	}

	contentType := strings.ToLower(req.ContentType)
	switch {
	case strings.HasPrefix(contentType, "text/"):
		return string(data), nil
	case contentType == "application/pdf":
		// Scanned PDFs have no text layer. The image path only accepts
		// image payloads, so a textless PDF stops here as unreadable.
		text := extractPDFText(data)
		if strings.TrimSpace(text) == "" {
			logger.Log.Warn("PDF has no extractable text layer", "type", req.DocumentType)
		}
		return text, nil
	}

	// Direct extraction yielded nothing - the content is a plain image.
	mime := req.ContentType
	if mime == "" {
		mime = "image/png"
	}
	text, err := u.docai.ExtractTextFromImage(ctx, stripDataURIPrefix(req.Content), mime)
	if err != nil {
		logger.Log.Warn("Image text extraction failed", "type", req.DocumentType, "error", err)
		return "", nil
	}
	return text, nil
}

// extractPDFText pulls the embedded text layer out of a PDF. Scanned PDFs
// have no text layer and return empty.
func extractPDFText(data []byte) string {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return ""
	}
	return buf.String()
}

// parseVerdict decodes the service's JSON verdict, failing closed when the
// payload is missing or malformed
func parseVerdict(raw string) *domain.ValidationVerdict {
	var parsed struct {
		IsValid     *bool    `json:"is_valid"`
		Message     string   `json:"message"`
		Reason      string   `json:"reason"`
		Differences []string `json:"differences"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed.IsValid == nil {
		logger.Log.Warn("Unparseable validation verdict", "raw_length", len(raw))
		return &domain.ValidationVerdict{
			IsValid: false,
			Message: "The validation service returned an ambiguous result.",
			Reason:  "unparseable_verdict",
		}
	}

	verdict := &domain.ValidationVerdict{
		IsValid:     *parsed.IsValid,
		Message:     parsed.Message,
		Reason:      parsed.Reason,
		Differences: parsed.Differences,
	}
	if verdict.Message == "" {
		if verdict.IsValid {
			verdict.Message = "The document matches the expected structure."
		} else {
			verdict.Message = "The document does not match the expected structure."
		}
	}
	return verdict
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
