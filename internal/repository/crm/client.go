// Package crm implements the client for the external resource-oriented CRM
// store. All backend quirks (filter encoding, duplicate-entry sniffing, HTML
// error pages) are absorbed here so callers only see typed records and
// structured errors.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go-restaurant-onboarding/config"
)

// Doctype names of the CRM resources this funnel touches
const (
	DoctypeUser    = "User"
	DoctypeLead    = "Lead"
	DoctypeAddress = "Address"
	DoctypeContact = "Contact"
	DoctypeService = "Service"
	DoctypeProfile = "Restaurant Registration Profile"
)

// Sentinel errors mapped once at the client boundary. Callers test these with
// errors.Is instead of re-parsing backend exception strings.
var (
	ErrNotFound  = errors.New("crm: record not found")
	ErrDuplicate = errors.New("crm: duplicate entry")
)

// UpstreamError carries a sanitized view of an unexpected backend failure
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("crm: upstream error (status %d): %s", e.StatusCode, e.Message)
}

// Filter is one [field, operator, value] triple of the backend's filter DSL
type Filter struct {
	Field    string
	Operator string
	Value    interface{}
}

// MarshalJSON encodes the filter as the positional triple the backend expects
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{f.Field, f.Operator, f.Value})
}

// Eq is shorthand for an equality filter
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Operator: "=", Value: value}
}

// In is shorthand for a set-membership filter
func In(field string, values []string) Filter {
	return Filter{Field: field, Operator: "in", Value: values}
}

// Client performs generic typed operations against the CRM resource API
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.CRMBaseURL,
		token:   cfg.CRMAPIToken,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Get fetches a single record by name. Missing records map to ErrNotFound.
func (c *Client) Get(ctx context.Context, doctype, name string, out interface{}) error {
	endpoint := fmt.Sprintf("%s/api/resource/%s/%s",
		c.baseURL, url.PathEscape(doctype), url.PathEscape(name))
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

// List runs a filtered query. The result is decoded into out, which must be a
// pointer to a slice.
func (c *Client) List(ctx context.Context, doctype string, filters []Filter, fields []string, limit int, out interface{}) error {
	query := url.Values{}
	if len(filters) > 0 {
		encoded, err := json.Marshal(filters)
		if err != nil {
			return fmt.Errorf("crm: encode filters: %w", err)
		}
		query.Set("filters", string(encoded))
	}
	if len(fields) > 0 {
		encoded, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("crm: encode fields: %w", err)
		}
		query.Set("fields", string(encoded))
	}
	if limit > 0 {
		query.Set("limit_page_length", strconv.Itoa(limit))
	}

	endpoint := fmt.Sprintf("%s/api/resource/%s?%s",
		c.baseURL, url.PathEscape(doctype), query.Encode())
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

// FindName returns the record name of the first match for the filters, or
// ("", nil) when nothing matches. Filtered list queries do not return child
// tables, so callers follow up with Get for the full record.
func (c *Client) FindName(ctx context.Context, doctype string, filters []Filter) (string, error) {
	var rows []struct {
		Name string `json:"name"`
	}
	if err := c.List(ctx, doctype, filters, []string{"name"}, 1, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].Name, nil
}

// Create inserts a record. A uniqueness violation maps to ErrDuplicate so the
// caller can recover by re-querying.
func (c *Client) Create(ctx context.Context, doctype string, fields interface{}, out interface{}) error {
	endpoint := fmt.Sprintf("%s/api/resource/%s", c.baseURL, url.PathEscape(doctype))
	return c.do(ctx, http.MethodPost, endpoint, fields, out)
}

// Update applies a partial field update to an existing record
func (c *Client) Update(ctx context.Context, doctype, name string, fields interface{}, out interface{}) error {
	endpoint := fmt.Sprintf("%s/api/resource/%s/%s",
		c.baseURL, url.PathEscape(doctype), url.PathEscape(name))
	return c.do(ctx, http.MethodPut, endpoint, fields, out)
}

// UploadFile stores a file in CRM file storage attached to a record and
// returns the resulting file URL
func (c *Client) UploadFile(ctx context.Context, doctype, docname, filename string, content []byte, isPrivate bool) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("crm: build upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("crm: write upload content: %w", err)
	}
	_ = writer.WriteField("doctype", doctype)
	_ = writer.WriteField("docname", docname)
	private := "0"
	if isPrivate {
		private = "1"
	}
	_ = writer.WriteField("is_private", private)
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("crm: finalize upload form: %w", err)
	}

	endpoint := c.baseURL + "/api/method/upload_file"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("crm: build upload request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("crm: upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.mapError(resp)
	}

	var uploaded struct {
		Message struct {
			FileURL string `json:"file_url"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("crm: decode upload response: %w", err)
	}
	if uploaded.Message.FileURL == "" {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: "upload returned no file URL"}
	}
	return uploaded.Message.FileURL, nil
}

// do executes one request and decodes the {"data": ...} envelope into out
func (c *Client) do(ctx context.Context, method, endpoint string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("crm: encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("crm: build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("crm: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp)
	}

	if out == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("crm: decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("crm: decode record: %w", err)
	}
	return nil
}

// maxErrorBody caps how much of an upstream error body is read. Anything
// larger is almost certainly an HTML error page and is replaced wholesale.
const maxErrorBody = 4096

// mapError converts an upstream failure response into a structured error.
// Duplicate-entry detection lives here and only here.
func (c *Client) mapError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	bodyText := string(raw)

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode == http.StatusConflict || isDuplicateBody(bodyText) {
		return ErrDuplicate
	}

	message := extractErrorMessage(bodyText)
	return &UpstreamError{StatusCode: resp.StatusCode, Message: message}
}

// isDuplicateBody sniffs the backend's free-text uniqueness violation
func isDuplicateBody(body string) bool {
	return strings.Contains(body, "DuplicateEntryError") ||
		strings.Contains(body, "Duplicate entry")
}

// extractErrorMessage pulls a short, user-presentable message out of the
// error body. HTML pages and oversized payloads collapse to a generic string.
func extractErrorMessage(body string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || strings.HasPrefix(trimmed, "<") {
		return "backend request failed"
	}

	var parsed struct {
		Message   string `json:"message"`
		Exception string `json:"exception"`
		ExcType   string `json:"exc_type"`
	}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
		switch {
		case parsed.Message != "":
			trimmed = parsed.Message
		case parsed.ExcType != "":
			trimmed = parsed.ExcType
		case parsed.Exception != "":
			trimmed = parsed.Exception
		}
	}

	const maxMessage = 200
	if len(trimmed) > maxMessage {
		return "backend request failed"
	}
	return trimmed
}
