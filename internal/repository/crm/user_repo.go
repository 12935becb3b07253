package crm

import (
	"context"
	"errors"
	"fmt"

	"go-restaurant-onboarding/internal/domain"
)

type userRepository struct {
	client *Client
}

func NewUserRepository(client *Client) domain.UserRepository {
	return &userRepository{client: client}
}

// Get fetches a User by primary key. User records are keyed by email.
func (r *userRepository) Get(ctx context.Context, name string) (*domain.User, error) {
	var user domain.User
	if err := r.client.Get(ctx, DoctypeUser, name, &user); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// FindByEmail is the filtered fallback lookup for when the direct key misses
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	name, err := r.client.FindName(ctx, DoctypeUser, []Filter{Eq("email", email)})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if name == "" {
		return nil, nil
	}
	return r.Get(ctx, name)
}

type profileRepository struct {
	client *Client
}

func NewProfileRepository(client *Client) domain.ProfileRepository {
	return &profileRepository{client: client}
}

// FindByUser returns the registration profile linked to a User, or nil
func (r *profileRepository) FindByUser(ctx context.Context, userID string) (*domain.RegistrationProfile, error) {
	name, err := r.client.FindName(ctx, DoctypeProfile, []Filter{Eq("user", userID)})
	if err != nil {
		return nil, fmt.Errorf("find registration profile: %w", err)
	}
	if name == "" {
		return nil, nil
	}

	var profile domain.RegistrationProfile
	if err := r.client.Get(ctx, DoctypeProfile, name, &profile); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get registration profile: %w", err)
	}
	return &profile, nil
}
