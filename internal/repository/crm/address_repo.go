package crm

import (
	"context"
	"errors"
	"fmt"

	"go-restaurant-onboarding/internal/domain"
)

type addressRepository struct {
	client *Client
}

func NewAddressRepository(client *Client) domain.AddressRepository {
	return &addressRepository{client: client}
}

// FindByTitleAndType locates an existing Address by the (title, type) pair
// the reconciler deduplicates on
func (r *addressRepository) FindByTitleAndType(ctx context.Context, title, addrType string) (*domain.Address, error) {
	name, err := r.client.FindName(ctx, DoctypeAddress, []Filter{
		Eq("address_title", title),
		Eq("address_type", addrType),
	})
	if err != nil {
		return nil, fmt.Errorf("find address: %w", err)
	}
	if name == "" {
		return nil, nil
	}

	var addr domain.Address
	if err := r.client.Get(ctx, DoctypeAddress, name, &addr); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &addr, nil
}

// Create inserts an Address with its link set embedded in the same call -
// the backend supports inline relation lists on create
func (r *addressRepository) Create(ctx context.Context, addr *domain.Address) (*domain.Address, error) {
	var created domain.Address
	if err := r.client.Create(ctx, DoctypeAddress, addr, &created); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return &created, nil
}

func (r *addressRepository) Update(ctx context.Context, name string, fields map[string]interface{}) (*domain.Address, error) {
	var updated domain.Address
	if err := r.client.Update(ctx, DoctypeAddress, name, fields, &updated); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}
	return &updated, nil
}
