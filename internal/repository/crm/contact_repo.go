package crm

import (
	"context"
	"errors"
	"fmt"

	"go-restaurant-onboarding/internal/domain"
)

type contactRepository struct {
	client *Client
}

func NewContactRepository(client *Client) domain.ContactRepository {
	return &contactRepository{client: client}
}

// FindByEmail locates an existing Contact by email, the reconciler's
// deduplication key for people
func (r *contactRepository) FindByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	name, err := r.client.FindName(ctx, DoctypeContact, []Filter{Eq("email_id", email)})
	if err != nil {
		return nil, fmt.Errorf("find contact: %w", err)
	}
	if name == "" {
		return nil, nil
	}

	var contact domain.Contact
	if err := r.client.Get(ctx, DoctypeContact, name, &contact); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	var created domain.Contact
	if err := r.client.Create(ctx, DoctypeContact, contact, &created); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return &created, nil
}

func (r *contactRepository) Update(ctx context.Context, name string, fields map[string]interface{}) (*domain.Contact, error) {
	var updated domain.Contact
	if err := r.client.Update(ctx, DoctypeContact, name, fields, &updated); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return &updated, nil
}
