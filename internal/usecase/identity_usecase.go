package usecase

import (
	"context"
	"strings"

	"go-restaurant-onboarding/internal/domain"
	"go-restaurant-onboarding/pkg/apperror"
	"go-restaurant-onboarding/pkg/logger"
)

type identityResolver struct {
	userRepo    domain.UserRepository
	profileRepo domain.ProfileRepository
}

func NewIdentityResolver(userRepo domain.UserRepository, profileRepo domain.ProfileRepository) domain.IdentityResolver {
	return &identityResolver{
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

// Resolve maps an email to its User record and optional registration profile.
// User records are keyed by email, so the direct lookup is tried first and
// the filtered query is only a fallback.
func (r *identityResolver) Resolve(ctx context.Context, email string) (*domain.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, apperror.BadRequest("Email is required")
	}

	user, err := r.userRepo.Get(ctx, email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		user, err = r.userRepo.FindByEmail(ctx, email)
		if err != nil {
			return nil, apperror.Internal(err)
		}
	}
	if user == nil {
		// No User means no signup - registration cannot proceed
		return nil, apperror.NotFound("No account found for this email")
	}

	// The registration profile is supplementary; its absence is not an error
	profile, err := r.profileRepo.FindByUser(ctx, user.Name)
	if err != nil {
		logger.Log.Warn("Failed to load registration profile", "user", user.Name, "error", err)
		profile = nil
	}
	if profile == nil {
		logger.Log.Warn("No registration profile for user", "user", user.Name)
	}

	return &domain.Identity{User: user, Profile: profile}, nil
}
