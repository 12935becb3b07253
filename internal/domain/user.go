package domain

import "context"

// User is the identity anchor in the CRM. One User exists per signup email;
// registration cannot proceed without it.
type User struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	Phone     string `json:"phone"`
}

// RegistrationProfile holds supplementary signup fields captured before the
// wizard (phone, company name, referring sales person). Its absence is not an
// error - the wizard proceeds with empty supplementary data.
type RegistrationProfile struct {
	Name        string `json:"name"`
	User        string `json:"user"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
	SalesPerson string `json:"sales_person"`
}

// Identity is the result of resolving an email to its CRM records
type Identity struct {
	User    *User
	Profile *RegistrationProfile // nil when no profile record exists
}

type UserRepository interface {
	// Get fetches a User by primary key (User records are keyed by email)
	Get(ctx context.Context, name string) (*User, error)
	// FindByEmail is the fallback filtered lookup when the key miss could be
	// a casing or aliasing artifact
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type ProfileRepository interface {
	// FindByUser returns the registration profile linked to a User, or nil
	FindByUser(ctx context.Context, userID string) (*RegistrationProfile, error)
}

type IdentityResolver interface {
	// Resolve maps an email to its User and optional registration profile.
	// A missing User is fatal; a missing profile is not.
	Resolve(ctx context.Context, email string) (*Identity, error)
}
