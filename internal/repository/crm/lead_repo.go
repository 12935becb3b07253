package crm

import (
	"context"
	"errors"
	"fmt"

	"go-restaurant-onboarding/internal/domain"
)

type leadRepository struct {
	client *Client
}

func NewLeadRepository(client *Client) domain.LeadRepository {
	return &leadRepository{client: client}
}

// FindByEmail locates the canonical Lead for an email. Filtered queries do
// not return child tables, so the hit is refetched by name.
func (r *leadRepository) FindByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	return r.findOne(ctx, []Filter{Eq("email", email)})
}

// FindByToken locates a Lead by its active signing token. A consumed token
// has been cleared from the record, so it no longer matches - by design.
func (r *leadRepository) FindByToken(ctx context.Context, token string) (*domain.Lead, error) {
	return r.findOne(ctx, []Filter{Eq("esignature_token", token)})
}

func (r *leadRepository) findOne(ctx context.Context, filters []Filter) (*domain.Lead, error) {
	name, err := r.client.FindName(ctx, DoctypeLead, filters)
	if err != nil {
		return nil, fmt.Errorf("find lead: %w", err)
	}
	if name == "" {
		return nil, nil
	}
	return r.Get(ctx, name)
}

func (r *leadRepository) Get(ctx context.Context, name string) (*domain.Lead, error) {
	var lead domain.Lead
	if err := r.client.Get(ctx, DoctypeLead, name, &lead); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &lead, nil
}

// Create inserts a new Lead. ErrDuplicate passes through untouched so the
// upsert engine can recover from the email-uniqueness race.
func (r *leadRepository) Create(ctx context.Context, fields map[string]interface{}) (*domain.Lead, error) {
	var lead domain.Lead
	if err := r.client.Create(ctx, DoctypeLead, fields, &lead); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("create lead: %w", err)
	}
	return &lead, nil
}

func (r *leadRepository) Update(ctx context.Context, name string, fields map[string]interface{}) (*domain.Lead, error) {
	var lead domain.Lead
	if err := r.client.Update(ctx, DoctypeLead, name, fields, &lead); err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}
	return &lead, nil
}

// List returns leads for reporting, newest first
func (r *leadRepository) List(ctx context.Context, limit int) ([]domain.Lead, error) {
	fields := []string{
		"name", "email", "company_name", "lead_name", "status",
		"registration_status", "city", "country", "service_names",
		"document_progress", "signed_at",
	}
	var leads []domain.Lead
	if err := r.client.List(ctx, DoctypeLead, nil, fields, limit, &leads); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}
